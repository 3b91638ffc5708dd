// Package repository defines the interfaces for the persistence layer.
// These interfaces act as a contract between the domain/application layers and the infrastructure layer.
package repository

import (
	"context"
	"time"

	"roadnet/internal/domain/entity"
	"roadnet/internal/errors"
)

// Domain-specific errors for sensor persistence.
var (
	// ErrSensorNotFound is returned when a sensor channel is not registered.
	ErrSensorNotFound = errors.New("sensor not found")
	// ErrInvalidSensor is returned when sensor metadata cannot be stored as given.
	ErrInvalidSensor = errors.New("invalid sensor metadata")
)

// SensorRepository stores sensor channels and their time-series readings.
type SensorRepository interface {
	// GetAllSensors returns every registered sensor channel.
	GetAllSensors(ctx context.Context) ([]entity.SensorMetadata, error)

	// FindOrCreateSensor returns the registered channel matching meta's key,
	// registering it with a fresh id when it does not exist yet.
	FindOrCreateSensor(ctx context.Context, meta entity.SensorMetadata) (entity.SensorMetadata, error)

	// SaveDataPoints stores a batch of readings. Points with an empty id are assigned one.
	SaveDataPoints(ctx context.Context, points []entity.DataPoint) error

	// GetSensorDataAt returns, per site id, the newest reading of the given
	// sensors taken no later than at and no earlier than at minus maxAge.
	// Sites without such a reading are absent from the result.
	GetSensorDataAt(ctx context.Context, sensors []entity.SensorMetadata, at time.Time, maxAge time.Duration) (map[int32]entity.DataPoint, error)

	// DataPointTimes returns the distinct reading timestamps in [from, to], ascending.
	DataPointTimes(ctx context.Context, from, to time.Time) ([]time.Time, error)

	// SensorsNear returns the sensors within radius metres of p.
	SensorsNear(ctx context.Context, p entity.Point, radius float64) ([]entity.SensorMetadata, error)
}
