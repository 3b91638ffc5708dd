package roads

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/maptile"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSourcePath(t *testing.T) {
	tests := []struct {
		source      string
		wantBucket  string
		wantTileset string
	}{
		{"/data/tiles/sweden.pmtiles", "file:///data/tiles", "sweden"},
		{"file:///data/tiles/sweden.pmtiles", "file:///data/tiles", "sweden"},
		{"https://example.com/tiles/sweden.pmtiles", "https://example.com/tiles", "sweden"},
		{"s3://bucket/sweden.pmtiles", "s3://bucket", "sweden"},
	}

	for _, tt := range tests {
		t.Run(tt.source, func(t *testing.T) {
			bucket, tileset := parseSourcePath(tt.source)
			assert.Equal(t, tt.wantBucket, bucket)
			assert.Equal(t, tt.wantTileset, tileset)
		})
	}
}

func TestTilesForBound(t *testing.T) {
	p := orb.Point{18.0686, 59.3293}
	single := tilesForBound(orb.Bound{Min: p, Max: p}, 14)
	require.Len(t, single, 1)
	assert.Equal(t, maptile.At(p, 14), single[0])

	// A bound spanning two tiles in each direction.
	tile := maptile.At(p, 10)
	b := tile.Bound()
	span := orb.Bound{
		Min: orb.Point{b.Min.Lon() + b.Width()/2, b.Min.Lat() - b.Height()/2},
		Max: orb.Point{b.Max.Lon() + b.Width()/2, b.Max.Lat() - b.Height()/2},
	}
	tiles := tilesForBound(span, 10)
	assert.Len(t, tiles, 4)
	for _, got := range tiles {
		assert.Equal(t, maptile.Zoom(10), got.Z)
	}
}

func TestOpenPMTiles_RequiresSource(t *testing.T) {
	_, err := OpenPMTiles("", "", 0)
	assert.Error(t, err)
}
