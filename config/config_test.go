package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"roadnet/internal/infra/routing/topology"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadWithEnv_OverridesFromEnvironment(t *testing.T) {
	dir := t.TempDir()
	yaml := []byte("processing:\n  mergeOverlapDistance: 1\n  collapse: naive\nrouting:\n  maxDataAge: 5m\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "test.yaml"), yaml, 0o600))

	wd, err := os.Getwd()
	require.NoError(t, err)
	rel, err := filepath.Rel(wd, dir)
	require.NoError(t, err)

	t.Setenv("PROCESSING_MERGEOVERLAPDISTANCE", "2.5")

	cfg, err := LoadWithEnv[Config]("test", rel)
	require.NoError(t, err)

	require.NotNil(t, cfg.Processing)
	assert.Equal(t, 2.5, cfg.Processing.MergeOverlapDistance)
	assert.Equal(t, "naive", cfg.Processing.Collapse)
	require.NotNil(t, cfg.Routing)
	assert.Equal(t, 5*time.Minute, cfg.Routing.MaxDataAge)
}

func TestLoadWithEnv_MissingFile(t *testing.T) {
	_, err := LoadWithEnv[Config]("does-not-exist")
	assert.Error(t, err)
}

func TestProcessingConfig_Options(t *testing.T) {
	var nilCfg *ProcessingConfig
	assert.Equal(t, topology.DefaultOptions(), nilCfg.Options())

	cfg := &ProcessingConfig{
		MergeOverlap:         true,
		MergeOverlapDistance: 3,
		SensorMode:           "list",
		Collapse:             "forward-only",
		ConnectDistance:      10,
	}
	opts := cfg.Options()

	assert.Equal(t, topology.SensorList, opts.SensorMode)
	assert.Equal(t, topology.CollapseForwardOnly, opts.Collapse)
	assert.Equal(t, 3.0, opts.MergeOverlapDistance)
	assert.NoError(t, opts.Validate())
}
