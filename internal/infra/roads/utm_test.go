package roads

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUTMToWGS84(t *testing.T) {
	t.Run("equator on the central meridian", func(t *testing.T) {
		p := utmToWGS84(500000, 0, 33)
		assert.InDelta(t, 0, p.Latitude, 1e-9)
		assert.InDelta(t, 15, p.Longitude, 1e-9)
	})

	t.Run("sixty degrees north", func(t *testing.T) {
		// Meridian arc to 60°N is 6654072.8 m, scaled by k0.
		p := utmToWGS84(500000, 0.9996*6654072.8, 33)
		assert.InDelta(t, 60, p.Latitude, 1e-4)
		assert.InDelta(t, 15, p.Longitude, 1e-9)
	})

	t.Run("symmetric about the central meridian", func(t *testing.T) {
		east := utmToWGS84(600000, 6580000, 33)
		west := utmToWGS84(400000, 6580000, 33)
		assert.InDelta(t, east.Latitude, west.Latitude, 1e-9)
		assert.InDelta(t, 15-west.Longitude, east.Longitude-15, 1e-9)
		assert.Greater(t, east.Longitude, 16.0)
		assert.Less(t, east.Latitude, utmToWGS84(500000, 6580000, 33).Latitude)
	})

	t.Run("stockholm", func(t *testing.T) {
		p := utmToWGS84(674032.357, 6580821.991, 33)
		assert.InDelta(t, 59.3302, p.Latitude, 1e-4)
		assert.InDelta(t, 18.0592, p.Longitude, 1e-4)
	})

	t.Run("zone 34 central meridian", func(t *testing.T) {
		assert.InDelta(t, 21, utmToWGS84(500000, 6580000, 34).Longitude, 1e-9)
	})
}
