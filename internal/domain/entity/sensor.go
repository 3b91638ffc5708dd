package entity

import (
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// ErrInvalidLane is returned when a lane label is not of the form "laneN".
var ErrInvalidLane = errors.New("invalid lane label")

// Side is the compass category a sensor measures traffic for.
type Side int8

const (
	SideUnknown Side = iota
	SideNorth
	SideSouth
	SideEast
	SideWest
	SideNorthEast
	SideNorthWest
	SideSouthEast
	SideSouthWest
)

var sideNames = [...]string{
	"unknown", "northBound", "southBound", "eastBound", "westBound",
	"northEastBound", "northWestBound", "southEastBound", "southWestBound",
}

func (s Side) String() string {
	if int(s) < 0 || int(s) >= len(sideNames) {
		return sideNames[0]
	}

	return sideNames[s]
}

// MarshalText encodes the side using the feed vocabulary.
func (s Side) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText decodes a side; unrecognised values become SideUnknown.
func (s *Side) UnmarshalText(text []byte) error {
	*s = ParseSide(string(text))

	return nil
}

// ParseSide maps a measurement side label onto a Side. Labels are matched
// case-insensitively and anything unrecognised is SideUnknown.
func ParseSide(label string) Side {
	for i, name := range sideNames {
		if strings.EqualFold(name, label) {
			return Side(i)
		}
	}

	return SideUnknown
}

// ParseLane parses lane labels such as "lane1".
func ParseLane(label string) (int32, error) {
	trimmed := strings.TrimPrefix(strings.ToLower(label), "lane")
	lane, err := strconv.ParseInt(trimmed, 10, 32)
	if err != nil {
		return 0, errors.Wrapf(ErrInvalidLane, "%q", label)
	}

	return int32(lane), nil
}

// SensorSample is a single traffic reading attached to a location.
type SensorSample struct {
	SiteID       int32   `json:"site_id"`
	FlowRate     float64 `json:"flow_rate"`
	AverageSpeed float64 `json:"average_speed"` // km/h
	Point        Point   `json:"point"`
	Lane         int32   `json:"lane"`
	Side         Side    `json:"side"`
}

// SensorKey identifies one physical measurement channel.
type SensorKey struct {
	SiteID      int32
	Side        Side
	Lane        int32
	VehicleType VehicleType
}

// SensorMetadata is a registered measurement channel in the sensor store.
type SensorMetadata struct {
	ID          string      `json:"id"`
	SiteID      int32       `json:"site_id"`
	Point       Point       `json:"point"`
	Side        Side        `json:"side"`
	VehicleType VehicleType `json:"vehicle_type"`
	Lane        int32       `json:"lane"`
	Period      int32       `json:"period"` // measurement period in seconds
}

// Key returns the identifying channel key of the metadata.
func (m SensorMetadata) Key() SensorKey {
	return SensorKey{SiteID: m.SiteID, Side: m.Side, Lane: m.Lane, VehicleType: m.VehicleType}
}

// DataPoint is one stored time-series reading of a sensor channel.
type DataPoint struct {
	ID           string    `json:"id"`
	OriginalID   string    `json:"original_id"`
	SensorID     string    `json:"sensor_id"`
	Time         time.Time `json:"time"`
	FlowRate     float64   `json:"flow_rate"`
	AverageSpeed float64   `json:"average_speed"`
}

// GeoJSONPoint is a {type, coordinates} location in lon/lat order.
type GeoJSONPoint struct {
	Type        string     `json:"type"`
	Coordinates [2]float64 `json:"coordinates"`
}

// Point returns the location as a Point.
func (g GeoJSONPoint) Point() Point {
	return Point{Latitude: g.Coordinates[1], Longitude: g.Coordinates[0]}
}

// RawSensorReading is one record of the raw traffic feed consumed by the aggregator.
type RawSensorReading struct {
	ID              string       `json:"id"`
	SiteID          int32        `json:"SiteId"`
	MeasurementTime time.Time    `json:"MeasurementTime"`
	Period          int32        `json:"MeasurementOrCalculationPeriod"`
	VehicleType     VehicleType  `json:"VehicleType"`
	FlowRate        float64      `json:"VehicleFlowRate"`
	AverageSpeed    float64      `json:"AverageVehicleSpeed"`
	ModifiedTime    time.Time    `json:"ModifiedTime"`
	SpecificLane    string       `json:"SpecificLane"`
	MeasurementSide string       `json:"MeasurementSide"`
	Location        GeoJSONPoint `json:"location"`
}

// Key derives the sensor channel key of the reading.
func (r RawSensorReading) Key() (SensorKey, error) {
	lane, err := ParseLane(r.SpecificLane)
	if err != nil {
		return SensorKey{}, err
	}

	return SensorKey{
		SiteID:      r.SiteID,
		Side:        ParseSide(r.MeasurementSide),
		Lane:        lane,
		VehicleType: r.VehicleType,
	}, nil
}

// Metadata builds the sensor metadata registered for the reading's channel.
func (r RawSensorReading) Metadata() (SensorMetadata, error) {
	key, err := r.Key()
	if err != nil {
		return SensorMetadata{}, err
	}

	return SensorMetadata{
		SiteID:      key.SiteID,
		Point:       r.Location.Point(),
		Side:        key.Side,
		VehicleType: key.VehicleType,
		Lane:        key.Lane,
		Period:      r.Period,
	}, nil
}
