package entity

import (
	"strings"

	"github.com/pkg/errors"
)

// ErrUnknownDirection is returned when a direction string cannot be parsed.
var ErrUnknownDirection = errors.New("unknown direction")

// RoadDirection describes which way traffic may travel along a road's vertex order.
type RoadDirection int8

const (
	DirectionForward RoadDirection = iota
	DirectionBackward
	DirectionBoth
	DirectionNone
)

var roadDirectionNames = [...]string{"Forward", "Backward", "Both", "None"}

func (d RoadDirection) String() string {
	if int(d) < 0 || int(d) >= len(roadDirectionNames) {
		return "Unknown"
	}

	return roadDirectionNames[d]
}

// MarshalText encodes the direction by name.
func (d RoadDirection) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText decodes a direction name (case-insensitive).
func (d *RoadDirection) UnmarshalText(text []byte) error {
	for i, name := range roadDirectionNames {
		if strings.EqualFold(name, string(text)) {
			*d = RoadDirection(i)

			return nil
		}
	}

	return errors.Wrapf(ErrUnknownDirection, "road direction %q", string(text))
}

// ParseRawRoadDirection maps the direction vocabulary of the raw road feed
// ("Med", "Mot" and compass bounds) onto a RoadDirection.
func ParseRawRoadDirection(s string) (RoadDirection, error) {
	switch s {
	case "Med", "northWestBound", "northBound", "westBound":
		return DirectionForward, nil
	case "Mot", "southEastBound", "southBound", "eastBound":
		return DirectionBackward, nil
	case "unknown":
		return DirectionBoth, nil
	default:
		return DirectionNone, errors.Wrapf(ErrUnknownDirection, "raw road direction %q", s)
	}
}

// RoadSegment is one road centerline as delivered by a road source.
type RoadSegment struct {
	Direction   RoadDirection `json:"direction"`
	MainNumber  int32         `json:"main_number"`
	SubNumber   int32         `json:"sub_number"`
	Coordinates []Point       `json:"coordinates"`
	Length      float64       `json:"length"`      // declared length in metres
	UniqueID    int32         `json:"unique_id"`   // source id, unique per input set
	SpeedLimit  float64       `json:"speed_limit"` // km/h, 0 when unknown
}

// SameRoadNumber reports whether both segments carry the same main/sub road number.
func (r RoadSegment) SameRoadNumber(other RoadSegment) bool {
	return r.MainNumber == other.MainNumber && r.SubNumber == other.SubNumber
}
