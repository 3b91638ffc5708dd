package geo

import (
	"math"
	"testing"

	"roadnet/internal/domain/entity"

	"github.com/stretchr/testify/assert"
)

var stockholm = entity.NewPoint(59.3293, 18.0686)

func TestDistance(t *testing.T) {
	uppsala := entity.NewPoint(59.8586, 17.6389)

	// Stockholm to Uppsala is roughly 64 km in a straight line.
	assert.InDelta(t, 64_000, Distance(stockholm, uppsala), 1_000)
	assert.Equal(t, 0.0, Distance(stockholm, stockholm))
	assert.InDelta(t, Distance(stockholm, uppsala), Distance(uppsala, stockholm), 1e-9)
}

func TestHeading(t *testing.T) {
	tests := []struct {
		name     string
		north    float64
		east     float64
		expected float64
	}{
		{"north", 100, 0, 0},
		{"east", 0, 100, 90},
		{"south", -100, 0, 180},
		{"west", 0, -100, -90},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			to := Offset(stockholm, tt.north, tt.east)
			assert.InDelta(t, tt.expected, Heading(stockholm, to), 0.1)
		})
	}
}

func TestNormalizeAngle(t *testing.T) {
	assert.Equal(t, 180.0, NormalizeAngle(-180))
	assert.Equal(t, 180.0, NormalizeAngle(180))
	assert.Equal(t, -90.0, NormalizeAngle(270))
	assert.Equal(t, 10.0, NormalizeAngle(370))
}

func TestAngleAverage(t *testing.T) {
	assert.InDelta(t, 0, AngleAverage([]float64{359, 1}), 1e-9)
	assert.InDelta(t, 180, math.Abs(AngleAverage([]float64{179, -179})), 1e-9)
	assert.InDelta(t, 45, AngleAverage([]float64{0, 90}), 1e-9)
	assert.Equal(t, 0.0, AngleAverage(nil))
}

func TestAngleDiff(t *testing.T) {
	assert.InDelta(t, -20, AngleDiff(170, -170), 1e-9)
	assert.InDelta(t, 20, AngleDiff(-170, 170), 1e-9)
	assert.InDelta(t, 5, AngleDiff(10, 5), 1e-9)
}

func TestHeadingInRange(t *testing.T) {
	assert.True(t, HeadingInRange(0, -180, 180))
	assert.True(t, HeadingInRange(0, 0, 90))
	assert.False(t, HeadingInRange(90, 0, 90))
	assert.True(t, HeadingInRange(90, 90, 180))
	assert.False(t, HeadingInRange(-170, 170, -170))
	assert.True(t, HeadingInRange(45, 0, 90))
	assert.False(t, HeadingInRange(100, 0, 90))

	// Wrapping range across south.
	assert.True(t, HeadingInRange(175, 170, -170))
	assert.True(t, HeadingInRange(-175, 170, -170))
	assert.False(t, HeadingInRange(0, 170, -170))
}

func TestPointSegmentDistance(t *testing.T) {
	a := stockholm
	b := Offset(stockholm, 0, 200)
	p := Offset(stockholm, 30, 100)

	exact := PointSegmentDistance(p, a, b)
	approx := PointSegmentDistanceApprox(p, a, b)

	assert.InDelta(t, 30, exact, 0.5)
	assert.InDelta(t, exact, approx, 0.5)

	// Beyond the segment end the distance is to the endpoint.
	beyond := Offset(stockholm, 0, 260)
	assert.InDelta(t, 60, PointSegmentDistanceApprox(beyond, a, b), 0.5)
	assert.InDelta(t, 60, PointSegmentDistance(beyond, a, b), 0.5)

	// Degenerate segment.
	assert.InDelta(t, Distance(p, a), PointSegmentDistance(p, a, a), 1e-9)
}

func TestProjectOntoSegment(t *testing.T) {
	a := stockholm
	b := Offset(stockholm, 0, 200)
	p := Offset(stockholm, 30, 100)

	proj := ProjectOntoSegment(p, a, b)
	assert.InDelta(t, 100, Distance(a, proj), 0.5)
}

func TestCentroidAndExtent(t *testing.T) {
	points := []entity.Point{{Latitude: 0, Longitude: 0}, {Latitude: 2, Longitude: 4}}

	assert.Equal(t, entity.Point{Latitude: 1, Longitude: 2}, Centroid(points))

	bound := Extent(points)
	assert.Equal(t, 0.0, bound.Min.Lat())
	assert.Equal(t, 4.0, bound.Max.Lon())
	assert.Equal(t, entity.Point{}, Centroid(nil))
}

func TestSpeedConversion(t *testing.T) {
	assert.InDelta(t, 10, KmhToMs(36), 1e-12)
	assert.InDelta(t, 72, MsToKmh(20), 1e-12)
}

func TestPolylineLength(t *testing.T) {
	points := []entity.Point{stockholm, Offset(stockholm, 100, 0), Offset(stockholm, 200, 0)}
	assert.InDelta(t, 200, PolylineLength(points), 0.1)
}
