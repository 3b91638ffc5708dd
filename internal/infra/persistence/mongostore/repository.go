package mongostore

import (
	"context"
	"slices"
	"time"

	"roadnet/config"
	"roadnet/internal/domain/entity"
	"roadnet/internal/domain/repository"
	"roadnet/internal/errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// sensorRepository implements the repository.SensorRepository interface.
type sensorRepository struct {
	sensors    *mongo.Collection
	dataPoints *mongo.Collection
}

// NewSensorRepository is the constructor for sensorRepository.
func NewSensorRepository(db *mongo.Database, cfg config.MongoConfig) repository.SensorRepository {
	return &sensorRepository{
		sensors:    db.Collection(or(cfg.SensorCollection, defaultSensors)),
		dataPoints: db.Collection(or(cfg.DataCollection, defaultDataPoints)),
	}
}

// EnsureIndexes creates the channel, geo and time-series indexes the
// repository queries rely on.
func EnsureIndexes(ctx context.Context, db *mongo.Database, cfg config.MongoConfig) error {
	sensors := db.Collection(or(cfg.SensorCollection, defaultSensors))
	_, err := sensors.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "location", Value: "2dsphere"}}},
		{
			Keys:    channelKeys(),
			Options: options.Index().SetUnique(true),
		},
	})
	if err != nil {
		return errors.Wrap(err, "failed to create sensor indexes")
	}

	data := db.Collection(or(cfg.DataCollection, defaultDataPoints))
	_, err = data.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "SensorId", Value: 1}, {Key: "Time", Value: 1}},
	})

	return errors.Wrap(err, "failed to create data point index")
}

func channelKeys() bson.D {
	return bson.D{
		{Key: "SiteId", Value: 1},
		{Key: "VehicleType", Value: 1},
		{Key: "SpecificLane", Value: 1},
		{Key: "MeasurementSide", Value: 1},
	}
}

// channelFilter matches the sensor document of a channel.
func channelFilter(k entity.SensorKey) bson.D {
	return bson.D{
		{Key: "SiteId", Value: k.SiteID},
		{Key: "VehicleType", Value: string(k.VehicleType)},
		{Key: "SpecificLane", Value: k.Lane},
		{Key: "MeasurementSide", Value: sideName(k.Side)},
	}
}

// windowFilter matches the readings of one sensor in [at-maxAge, at].
func windowFilter(sensorID primitive.ObjectID, at time.Time, maxAge time.Duration) bson.D {
	window := bson.D{{Key: "$lte", Value: at}}
	if oldest := at.Add(-maxAge); !oldest.After(at) {
		window = append(window, bson.E{Key: "$gte", Value: oldest})
	}

	return bson.D{{Key: "SensorId", Value: sensorID}, {Key: "Time", Value: window}}
}

// GetAllSensors returns every registered sensor channel.
func (repo *sensorRepository) GetAllSensors(ctx context.Context) ([]entity.SensorMetadata, error) {
	cursor, err := repo.sensors.Find(ctx, bson.D{})
	if err != nil {
		return nil, errors.Wrap(err, "failed to list sensors")
	}

	var docs []sensorDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, errors.Wrap(err, "failed to decode sensors")
	}

	out := make([]entity.SensorMetadata, len(docs))
	for i, d := range docs {
		out[i] = d.metadata()
	}

	return out, nil
}

// FindOrCreateSensor returns the registered channel matching meta's key,
// inserting meta when it does not exist. A concurrent insert of the same
// channel loses on the unique index and reads the winner back.
func (repo *sensorRepository) FindOrCreateSensor(ctx context.Context, meta entity.SensorMetadata) (entity.SensorMetadata, error) {
	if !meta.Point.IsValid() {
		return entity.SensorMetadata{}, errors.Wrapf(errors.AtSite(repository.ErrInvalidSensor, meta.SiteID), "location %+v", meta.Point)
	}

	filter := channelFilter(meta.Key())
	if found, err := repo.findSensor(ctx, filter); err == nil || !errors.Is(err, repository.ErrSensorNotFound) {
		return found, err
	}

	meta.ID = ""
	doc, err := toSensorDocument(meta)
	if err != nil {
		return entity.SensorMetadata{}, errors.Wrap(repository.ErrInvalidSensor, err.Error())
	}

	res, err := repo.sensors.InsertOne(ctx, doc)
	if mongo.IsDuplicateKeyError(err) {
		return repo.findSensor(ctx, filter)
	}
	if err != nil {
		return entity.SensorMetadata{}, errors.Wrapf(err, "failed to insert sensor %d", meta.SiteID)
	}

	if id, ok := res.InsertedID.(primitive.ObjectID); ok {
		doc.ID = id
	}

	return doc.metadata(), nil
}

func (repo *sensorRepository) findSensor(ctx context.Context, filter bson.D) (entity.SensorMetadata, error) {
	var doc sensorDocument
	err := repo.sensors.FindOne(ctx, filter).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return entity.SensorMetadata{}, repository.ErrSensorNotFound
	}
	if err != nil {
		return entity.SensorMetadata{}, errors.Wrap(err, "failed to find sensor")
	}

	return doc.metadata(), nil
}

// SaveDataPoints inserts a batch of readings, unordered.
func (repo *sensorRepository) SaveDataPoints(ctx context.Context, points []entity.DataPoint) error {
	if len(points) == 0 {
		return nil
	}

	docs := make([]any, len(points))
	for i, p := range points {
		sensorID, err := primitive.ObjectIDFromHex(p.SensorID)
		if err != nil {
			return errors.AtSensor(repository.ErrSensorNotFound, p.SensorID)
		}
		doc := dataPointDocument{
			OriginalID:   p.OriginalID,
			SensorID:     sensorID,
			Time:         p.Time,
			FlowRate:     p.FlowRate,
			AverageSpeed: p.AverageSpeed,
		}
		if id, err := primitive.ObjectIDFromHex(p.ID); err == nil {
			doc.ID = id
		}
		docs[i] = doc
	}

	_, err := repo.dataPoints.InsertMany(ctx, docs, options.InsertMany().SetOrdered(false))

	return errors.Wrapf(err, "failed to insert %d data points", len(points))
}

// GetSensorDataAt returns, per site, the newest reading in [at-maxAge, at].
func (repo *sensorRepository) GetSensorDataAt(ctx context.Context, sensors []entity.SensorMetadata, at time.Time, maxAge time.Duration) (map[int32]entity.DataPoint, error) {
	out := make(map[int32]entity.DataPoint)
	newest := options.FindOne().SetSort(bson.D{{Key: "Time", Value: -1}})

	for _, s := range sensors {
		sensorID, err := primitive.ObjectIDFromHex(s.ID)
		if err != nil {
			return nil, errors.AtSensor(repository.ErrSensorNotFound, s.ID)
		}

		var doc dataPointDocument
		err = repo.dataPoints.FindOne(ctx, windowFilter(sensorID, at, maxAge), newest).Decode(&doc)
		if errors.Is(err, mongo.ErrNoDocuments) {
			continue
		}
		if err != nil {
			return nil, errors.Wrapf(err, "failed to read data of sensor %s", s.ID)
		}

		p := doc.dataPoint()
		if prev, seen := out[s.SiteID]; !seen || p.Time.After(prev.Time) {
			out[s.SiteID] = p
		}
	}

	return out, nil
}

// DataPointTimes returns the distinct reading times in [from, to], ascending.
func (repo *sensorRepository) DataPointTimes(ctx context.Context, from, to time.Time) ([]time.Time, error) {
	values, err := repo.dataPoints.Distinct(ctx, "Time", bson.D{{Key: "Time", Value: bson.D{
		{Key: "$gte", Value: from},
		{Key: "$lte", Value: to},
	}}})
	if err != nil {
		return nil, errors.Wrap(err, "failed to list data point times")
	}

	return distinctTimes(values), nil
}

// distinctTimes converts Distinct results into sorted times.
func distinctTimes(values []any) []time.Time {
	times := make([]time.Time, 0, len(values))
	for _, v := range values {
		switch t := v.(type) {
		case primitive.DateTime:
			times = append(times, t.Time().UTC())
		case time.Time:
			times = append(times, t.UTC())
		}
	}
	slices.SortFunc(times, func(a, b time.Time) int { return a.Compare(b) })

	return times
}

// SensorsNear returns the sensors within radius metres of p using the
// 2dsphere index.
func (repo *sensorRepository) SensorsNear(ctx context.Context, p entity.Point, radius float64) ([]entity.SensorMetadata, error) {
	filter := bson.D{{Key: "location", Value: bson.D{{Key: "$nearSphere", Value: bson.D{
		{Key: "$geometry", Value: toLocation(p)},
		{Key: "$maxDistance", Value: radius},
	}}}}}

	cursor, err := repo.sensors.Find(ctx, filter)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query sensors near point")
	}

	var docs []sensorDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, errors.Wrap(err, "failed to decode sensors")
	}

	out := make([]entity.SensorMetadata, len(docs))
	for i, d := range docs {
		out[i] = d.metadata()
	}

	return out, nil
}
