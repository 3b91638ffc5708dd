package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"roadnet/internal/infra/routing/topology"

	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/pkg/errors"
)

const (
	defaultPath               = "."
	defaultMaxRequestBodySize = "1MB"
)

type Config struct {
	Env struct {
		Env         string `json:"env" yaml:"env"`
		ServiceName string `json:"serviceName" yaml:"serviceName"`
		Debug       bool   `json:"debug" yaml:"debug"`
		Log         Log    `json:"log" yaml:"log"`
	} `json:"env" yaml:"env"`

	HTTP struct {
		Port               int    `json:"port" yaml:"port"`
		MaxRequestBodySize string `json:"maxRequestBodySize" yaml:"maxRequestBodySize"`
		Timeouts           struct {
			ReadTimeout       time.Duration `json:"readTimeout" yaml:"readTimeout"`
			ReadHeaderTimeout time.Duration `json:"readHeaderTimeout" yaml:"readHeaderTimeout"`
			WriteTimeout      time.Duration `json:"writeTimeout" yaml:"writeTimeout"`
			IdleTimeout       time.Duration `json:"idleTimeout" yaml:"idleTimeout"`
		} `json:"timeouts" yaml:"timeouts"`
	} `json:"http" yaml:"http"`

	// Processing configures the graph build and simplification pipeline
	Processing *ProcessingConfig `json:"processing" yaml:"processing"`

	// Routing configuration for the route API
	Routing *RoutingConfig `json:"routing" yaml:"routing"`

	// Store selects and configures the sensor data store
	Store *StoreConfig `json:"store" yaml:"store"`

	// Aggregate configures the raw sensor aggregation pipeline
	Aggregate *AggregateConfig `json:"aggregate" yaml:"aggregate"`

	Metrics *MetricsConfig `json:"metrics" yaml:"metrics"`
}

type Log struct {
	Pretty bool   `json:"pretty" yaml:"pretty"`
	Level  string `json:"level" yaml:"level"`
}

// ProcessingConfig mirrors topology.Options
type ProcessingConfig struct {
	DedupRoads             bool    `json:"dedupRoads" yaml:"dedupRoads"`
	MaxDistanceFromSensors float64 `json:"maxDistanceFromSensors" yaml:"maxDistanceFromSensors"`
	MergeOverlap           bool    `json:"mergeOverlap" yaml:"mergeOverlap"`
	MergeOverlapDistance   float64 `json:"mergeOverlapDistance" yaml:"mergeOverlapDistance"`
	AssignSensors          bool    `json:"assignSensors" yaml:"assignSensors"`
	SensorMode             string  `json:"sensorMode" yaml:"sensorMode"`
	ConnectDisjoint        bool    `json:"connectDisjoint" yaml:"connectDisjoint"`
	ConnectDistance        float64 `json:"connectDistance" yaml:"connectDistance"`
	RemoveDisjoint         bool    `json:"removeDisjoint" yaml:"removeDisjoint"`
	DedupEdges             bool    `json:"dedupEdges" yaml:"dedupEdges"`
	Collapse               string  `json:"collapse" yaml:"collapse"`
	Workers                int     `json:"workers" yaml:"workers"`
}

// Options converts the section into pipeline options. A nil section yields the defaults.
func (c *ProcessingConfig) Options() topology.Options {
	if c == nil {
		return topology.DefaultOptions()
	}

	return topology.Options{
		DedupRoads:             c.DedupRoads,
		MaxDistanceFromSensors: c.MaxDistanceFromSensors,
		MergeOverlap:           c.MergeOverlap,
		MergeOverlapDistance:   c.MergeOverlapDistance,
		AssignSensors:          c.AssignSensors,
		SensorMode:             topology.SensorMode(c.SensorMode),
		ConnectDisjoint:        c.ConnectDisjoint,
		ConnectDistance:        c.ConnectDistance,
		RemoveDisjoint:         c.RemoveDisjoint,
		DedupEdges:             c.DedupEdges,
		Collapse:               topology.CollapseStrategy(c.Collapse),
		Workers:                c.Workers,
	}
}

// RoutingConfig defines routing engine configuration
type RoutingConfig struct {
	// Path of the processed graph file (.json, .bin or .bin.zst)
	GraphPath string `json:"graphPath" yaml:"graphPath"`

	// Speed in km/h assumed before the first edge with a speed limit
	DefaultSpeedKmh float64 `json:"defaultSpeedKmh" yaml:"defaultSpeedKmh"`

	// Speed in km/h for travel-time estimates on paths without sensor data
	NominalSpeedKmh float64 `json:"nominalSpeedKmh" yaml:"nominalSpeedKmh"`

	// Snap radius in metres for waypoint queries that do not set one
	MaxSnapDistanceM float64 `json:"maxSnapDistanceM" yaml:"maxSnapDistanceM"`

	// Maximum age of live sensor readings
	MaxDataAge time.Duration `json:"maxDataAge" yaml:"maxDataAge"`
}

// StoreConfig selects the sensor repository
type StoreConfig struct {
	// Driver is "badger" or "mongo"
	Driver string       `json:"driver" yaml:"driver"`
	Badger BadgerConfig `json:"badger" yaml:"badger"`
	Mongo  MongoConfig  `json:"mongo" yaml:"mongo"`
}

type BadgerConfig struct {
	Path string `json:"path" yaml:"path"`
	// InMemory keeps the store in memory; Path is ignored
	InMemory   bool          `json:"inMemory" yaml:"inMemory"`
	GCInterval time.Duration `json:"gcInterval" yaml:"gcInterval"`
}

type MongoConfig struct {
	URI              string        `json:"uri" yaml:"uri"`
	Database         string        `json:"database" yaml:"database"`
	SensorCollection string        `json:"sensorCollection" yaml:"sensorCollection"`
	DataCollection   string        `json:"dataCollection" yaml:"dataCollection"`
	RawCollection    string        `json:"rawCollection" yaml:"rawCollection"`
	ConnectTimeout   time.Duration `json:"connectTimeout" yaml:"connectTimeout"`
}

// AggregateConfig bounds the aggregation worker pool and writer
type AggregateConfig struct {
	Workers     int `json:"workers" yaml:"workers"`
	BatchSize   int `json:"batchSize" yaml:"batchSize"`
	QueueSize   int `json:"queueSize" yaml:"queueSize"`
	MaxInFlight int `json:"maxInFlight" yaml:"maxInFlight"`
}

type MetricsConfig struct {
	Enabled   bool   `json:"enabled" yaml:"enabled"`
	Namespace string `json:"namespace" yaml:"namespace"`
}

// LoadWithEnv loads .yaml files through koanf.
func LoadWithEnv[T any](currEnv string, configPath ...string) (*T, error) {
	cfg := new(T)
	koanfInstance := koanf.New(".")

	// Build list of paths to search for config file
	searchPaths := []string{defaultPath}
	if len(configPath) != 0 {
		pwd, err := os.Getwd()
		if err != nil {
			return nil, errors.Wrap(err, "os.Getwd")
		}
		for _, path := range configPath {
			abs := filepath.Join(pwd, path)
			searchPaths = append(searchPaths, abs)
		}
	}

	// Try to find and load the config file
	var configFile string
	var found bool
	for _, path := range searchPaths {
		candidate := filepath.Join(path, currEnv+".yaml")
		if _, err := os.Stat(candidate); err == nil {
			configFile = candidate
			found = true

			break
		}
	}

	if !found {
		return nil, errors.Errorf("config file %s.yaml not found in any search path", currEnv)
	}

	// Load YAML config file
	if err := koanfInstance.Load(file.Provider(configFile), yaml.Parser()); err != nil {
		return nil, errors.Wrapf(err, "read %s config failed", currEnv)
	}

	existingConfigMap := koanfInstance.Raw()

	// Load environment variables
	if err := koanfInstance.Load(env.Provider(".", env.Opt{
		TransformFunc: func(k, v string) (string, any) {
			// Convert ENV_VAR_NAME to path and align each segment with existing YAML keys.
			// Example: POSTGRES_SSLMODE -> postgres.sslMode (not postgres.sslmode)
			key := canonicalizeEnvKey(k, existingConfigMap)

			return key, v
		},
	}), nil); err != nil {
		return nil, errors.Wrap(err, "load env variables failed")
	}

	// Unmarshal into the config struct (case-insensitive to match env vars)
	if err := koanfInstance.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           cfg,
			WeaklyTypedInput: true,
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
			),
			MatchName: func(mapKey, fieldName string) bool {
				// Case-insensitive matching for env var overrides
				return strings.EqualFold(mapKey, fieldName)
			},
		},
	}); err != nil {
		return nil, errors.Wrapf(err, "unmarshal %s config failed", currEnv)
	}

	return cfg, nil
}

func New() (*Config, error) {
	cfg, err := LoadWithEnv[Config]("config", "config", "../config", "../../config")
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(cfg.HTTP.MaxRequestBodySize) == "" {
		cfg.HTTP.MaxRequestBodySize = defaultMaxRequestBodySize
	}

	return cfg, nil
}

func canonicalizeEnvKey(rawKey string, existing map[string]any) string {
	segments := strings.Split(strings.ToLower(rawKey), "_")
	canonical := make([]string, 0, len(segments))
	current := existing

	for _, segment := range segments {
		if segment == "" {
			continue
		}

		if matched, next, ok := findExistingSegment(current, segment); ok {
			canonical = append(canonical, matched)
			current = next
		} else {
			canonical = append(canonical, segment)
			current = nil
		}
	}

	return strings.Join(canonical, ".")
}

func findExistingSegment(current map[string]any, segment string) (matched string, next map[string]any, ok bool) {
	if len(current) == 0 {
		return "", nil, false
	}

	needle := normalizeToken(segment)
	for key, value := range current {
		if normalizeToken(key) != needle {
			continue
		}

		child, _ := value.(map[string]any)

		return key, child, true
	}

	return "", nil, false
}

func normalizeToken(s string) string {
	var normalized strings.Builder
	normalized.Grow(len(s))

	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			continue
		}
		normalized.WriteRune(unicode.ToLower(r))
	}

	return normalized.String()
}
