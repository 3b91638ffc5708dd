package roads

import (
	"encoding/json"
	"io"

	"roadnet/internal/domain/entity"
	"roadnet/internal/errors"
)

type rawRoad struct {
	Deleted   bool `json:"Deleted"`
	Direction struct {
		Code  int32  `json:"Code"`
		Value string `json:"Value"`
	} `json:"Direction"`
	Geometry struct {
		Coordinates []entity.Point `json:"Coordinates"`
	} `json:"Geometry"`
	Length         float64 `json:"Length"`
	RoadMainNumber int32   `json:"RoadMainNumber"`
	RoadSubNumber  int32   `json:"RoadSubNumber"`
}

type rawSensor struct {
	SiteID              int32   `json:"SiteId"`
	VehicleFlowRate     float64 `json:"VehicleFlowRate"`
	AverageVehicleSpeed float64 `json:"AverageVehicleSpeed"`
	Geometry            struct {
		Point entity.Point `json:"Point"`
	} `json:"Geometry"`
	SpecificLane    string `json:"SpecificLane"`
	MeasurementSide string `json:"MeasurementSide"`
}

// ParseRawRoads converts the raw road feed into road segments. A road's
// unique id is its index in the feed; deleted roads keep their index but
// are left out.
func ParseRawRoads(r io.Reader) ([]entity.RoadSegment, error) {
	var raw []rawRoad
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, errors.Wrap(err, "decode raw roads")
	}

	roads := make([]entity.RoadSegment, 0, len(raw))
	for i, rr := range raw {
		if rr.Deleted {
			continue
		}
		dir, err := entity.ParseRawRoadDirection(rr.Direction.Value)
		if err != nil {
			return nil, errors.Wrapf(err, "raw road %d", i)
		}

		roads = append(roads, entity.RoadSegment{
			Direction:   dir,
			MainNumber:  rr.RoadMainNumber,
			SubNumber:   rr.RoadSubNumber,
			Coordinates: rr.Geometry.Coordinates,
			Length:      rr.Length,
			UniqueID:    int32(i),
		})
	}

	return roads, nil
}

// ParseRawSensors converts raw sensor readings into sensor samples.
func ParseRawSensors(r io.Reader) ([]entity.SensorSample, error) {
	var raw []rawSensor
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, errors.Wrap(err, "decode raw sensors")
	}

	sensors := make([]entity.SensorSample, 0, len(raw))
	for i, rs := range raw {
		lane, err := entity.ParseLane(rs.SpecificLane)
		if err != nil {
			return nil, errors.Wrapf(err, "raw sensor %d", i)
		}

		sensors = append(sensors, entity.SensorSample{
			SiteID:       rs.SiteID,
			FlowRate:     rs.VehicleFlowRate,
			AverageSpeed: rs.AverageVehicleSpeed,
			Point:        rs.Geometry.Point,
			Lane:         lane,
			Side:         entity.ParseSide(rs.MeasurementSide),
		})
	}

	return sensors, nil
}
