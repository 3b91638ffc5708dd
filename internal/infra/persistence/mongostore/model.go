package mongostore

import (
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"roadnet/internal/domain/entity"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const geoJSONPoint = "Point"

type locationDocument struct {
	Type        string     `bson:"type"`
	Coordinates [2]float64 `bson:"coordinates"` // lon, lat
}

func toLocation(p entity.Point) locationDocument {
	return locationDocument{Type: geoJSONPoint, Coordinates: [2]float64{p.Longitude, p.Latitude}}
}

func (l locationDocument) point() entity.Point {
	return entity.NewPoint(l.Coordinates[1], l.Coordinates[0])
}

type sensorDocument struct {
	ID              primitive.ObjectID `bson:"_id,omitempty"`
	SiteID          int32              `bson:"SiteId"`
	Location        locationDocument   `bson:"location"`
	MeasurementSide string             `bson:"MeasurementSide"`
	VehicleType     string             `bson:"VehicleType"`
	SpecificLane    int32              `bson:"SpecificLane"`
	Period          int32              `bson:"Period"`
}

type dataPointDocument struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	OriginalID   string             `bson:"OriginalId,omitempty"`
	SensorID     primitive.ObjectID `bson:"SensorId"`
	Time         time.Time          `bson:"Time"`
	FlowRate     float64            `bson:"FlowRate"`
	AverageSpeed float64            `bson:"AverageSpeed"`
}

type rawDocument struct {
	ID              primitive.ObjectID `bson:"_id,omitempty"`
	SiteID          int32              `bson:"SiteId"`
	MeasurementTime time.Time          `bson:"MeasurementTime"`
	Period          int32              `bson:"MeasurementOrCalculationPeriod"`
	VehicleType     string             `bson:"VehicleType"`
	FlowRate        float64            `bson:"VehicleFlowRate"`
	AverageSpeed    float64            `bson:"AverageVehicleSpeed"`
	ModifiedTime    time.Time          `bson:"ModifiedTime"`
	SpecificLane    string             `bson:"SpecificLane"`
	MeasurementSide string             `bson:"MeasurementSide"`
	Location        locationDocument   `bson:"location"`
}

// sideName stores sides capitalised ("NorthBound").
func sideName(s entity.Side) string {
	name := s.String()
	r, size := utf8.DecodeRuneInString(name)

	return string(unicode.ToUpper(r)) + name[size:]
}

func toSensorDocument(m entity.SensorMetadata) (sensorDocument, error) {
	doc := sensorDocument{
		SiteID:          m.SiteID,
		Location:        toLocation(m.Point),
		MeasurementSide: sideName(m.Side),
		VehicleType:     string(m.VehicleType),
		SpecificLane:    m.Lane,
		Period:          m.Period,
	}
	if m.ID != "" {
		id, err := primitive.ObjectIDFromHex(m.ID)
		if err != nil {
			return sensorDocument{}, err
		}
		doc.ID = id
	}

	return doc, nil
}

func (d sensorDocument) metadata() entity.SensorMetadata {
	return entity.SensorMetadata{
		ID:          d.ID.Hex(),
		SiteID:      d.SiteID,
		Point:       d.Location.point(),
		Side:        entity.ParseSide(d.MeasurementSide),
		VehicleType: entity.VehicleType(d.VehicleType),
		Lane:        d.SpecificLane,
		Period:      d.Period,
	}
}

func (d dataPointDocument) dataPoint() entity.DataPoint {
	return entity.DataPoint{
		ID:           d.ID.Hex(),
		OriginalID:   d.OriginalID,
		SensorID:     d.SensorID.Hex(),
		Time:         d.Time.UTC(),
		FlowRate:     d.FlowRate,
		AverageSpeed: d.AverageSpeed,
	}
}

func (d rawDocument) reading() entity.RawSensorReading {
	return entity.RawSensorReading{
		ID:              d.ID.Hex(),
		SiteID:          d.SiteID,
		MeasurementTime: d.MeasurementTime.UTC(),
		Period:          d.Period,
		VehicleType:     entity.VehicleType(d.VehicleType),
		FlowRate:        d.FlowRate,
		AverageSpeed:    d.AverageSpeed,
		ModifiedTime:    d.ModifiedTime.UTC(),
		SpecificLane:    strings.TrimSpace(d.SpecificLane),
		MeasurementSide: d.MeasurementSide,
		Location:        entity.GeoJSONPoint{Type: d.Location.Type, Coordinates: d.Location.Coordinates},
	}
}
