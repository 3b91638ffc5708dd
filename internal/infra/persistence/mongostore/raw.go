package mongostore

import (
	"context"

	"roadnet/config"
	"roadnet/internal/domain/entity"
	"roadnet/internal/errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const rawBatchSize = 10000

// RawFeed reads the raw traffic feed collection.
type RawFeed struct {
	raw *mongo.Collection
}

// NewRawFeed returns a reader over the raw collection of cfg.
func NewRawFeed(db *mongo.Database, cfg config.MongoConfig) *RawFeed {
	return &RawFeed{raw: db.Collection(or(cfg.RawCollection, defaultRaw))}
}

// Count estimates the number of raw records.
func (f *RawFeed) Count(ctx context.Context) (int64, error) {
	n, err := f.raw.EstimatedDocumentCount(ctx)

	return n, errors.Wrap(err, "failed to count raw records")
}

// Stream calls fn for every raw record until fn fails or ctx is done.
func (f *RawFeed) Stream(ctx context.Context, fn func(entity.RawSensorReading) error) error {
	cursor, err := f.raw.Find(ctx, bson.D{}, options.Find().SetBatchSize(rawBatchSize))
	if err != nil {
		return errors.Wrap(err, "failed to query raw records")
	}
	defer cursor.Close(ctx)

	for cursor.Next(ctx) {
		var doc rawDocument
		if err := cursor.Decode(&doc); err != nil {
			return errors.Wrap(err, "failed to decode raw record")
		}
		if err := fn(doc.reading()); err != nil {
			return err
		}
	}

	return errors.Wrap(cursor.Err(), "raw cursor")
}
