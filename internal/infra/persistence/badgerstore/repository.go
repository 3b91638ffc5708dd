package badgerstore

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"roadnet/internal/domain/entity"
	"roadnet/internal/domain/repository"
	"roadnet/internal/errors"
	"roadnet/internal/infra/routing/geo"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/kelindar/binary"
	"github.com/uber/h3-go/v4"
)

// Key layout:
//
//	s/<sensor id>                       sensor record
//	k/<site>/<side>/<lane>/<vehicle>    sensor id of a channel
//	h/<h3 cell>/<sensor id>             geo bucket membership
//	d/<sensor id>/<unix nanos>/<id>     data point record
//	t/<unix nanos>                      distinct reading times
const (
	prefixSensor  = "s/"
	prefixChannel = "k/"
	prefixCell    = "h/"
	prefixData    = "d/"
	prefixTime    = "t/"

	cellResolution = 9
	maxTxnRetries  = 5
)

type sensorRecord struct {
	ID          string
	SiteID      int32
	Latitude    float64
	Longitude   float64
	Side        int8
	VehicleType string
	Lane        int32
	Period      int32
}

type pointRecord struct {
	ID           string
	OriginalID   string
	FlowRate     float64
	AverageSpeed float64
}

// sensorRepository implements the repository.SensorRepository interface.
type sensorRepository struct {
	db *badger.DB
}

// NewSensorRepository is the constructor for sensorRepository.
func NewSensorRepository(db *badger.DB) repository.SensorRepository {
	return &sensorRepository{db: db}
}

func sensorKey(id string) []byte {
	return []byte(prefixSensor + id)
}

func channelKey(k entity.SensorKey) []byte {
	return fmt.Appendf(nil, "%s%d/%d/%d/%s", prefixChannel, k.SiteID, k.Side, k.Lane, k.VehicleType)
}

func cellOf(p entity.Point) h3.Cell {
	return h3.LatLngToCell(h3.NewLatLng(p.Latitude, p.Longitude), cellResolution)
}

func cellKey(cell h3.Cell, id string) []byte {
	return []byte(prefixCell + cell.String() + "/" + id)
}

// stamp renders t so that byte order matches time order. Times before
// 1970 clamp to zero.
func stamp(t time.Time) string {
	return fmt.Sprintf("%019d", max(t.UnixNano(), 0))
}

func parseStamp(s string) (time.Time, error) {
	nanos, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return time.Time{}, errors.Wrapf(err, "timestamp %q", s)
	}

	return time.Unix(0, nanos).UTC(), nil
}

func dataPrefix(sensorID string) string {
	return prefixData + sensorID + "/"
}

func toRecord(m entity.SensorMetadata) sensorRecord {
	return sensorRecord{
		ID:          m.ID,
		SiteID:      m.SiteID,
		Latitude:    m.Point.Latitude,
		Longitude:   m.Point.Longitude,
		Side:        int8(m.Side),
		VehicleType: string(m.VehicleType),
		Lane:        m.Lane,
		Period:      m.Period,
	}
}

func (r sensorRecord) metadata() entity.SensorMetadata {
	return entity.SensorMetadata{
		ID:          r.ID,
		SiteID:      r.SiteID,
		Point:       entity.NewPoint(r.Latitude, r.Longitude),
		Side:        entity.Side(r.Side),
		VehicleType: entity.VehicleType(r.VehicleType),
		Lane:        r.Lane,
		Period:      r.Period,
	}
}

func decodeSensor(item *badger.Item) (entity.SensorMetadata, error) {
	var rec sensorRecord
	err := item.Value(func(val []byte) error {
		return binary.Unmarshal(val, &rec)
	})
	if err != nil {
		return entity.SensorMetadata{}, errors.Wrapf(err, "decode sensor %q", item.Key())
	}

	return rec.metadata(), nil
}

func getSensor(txn *badger.Txn, id string) (entity.SensorMetadata, error) {
	item, err := txn.Get(sensorKey(id))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return entity.SensorMetadata{}, errors.AtSensor(repository.ErrSensorNotFound, id)
	}
	if err != nil {
		return entity.SensorMetadata{}, errors.WithStack(err)
	}

	return decodeSensor(item)
}

// GetAllSensors returns every registered sensor channel.
func (repo *sensorRepository) GetAllSensors(ctx context.Context) ([]entity.SensorMetadata, error) {
	var sensors []entity.SensorMetadata
	err := repo.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.IteratorOptions{Prefix: []byte(prefixSensor), PrefetchValues: true, PrefetchSize: 100})
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			m, err := decodeSensor(it.Item())
			if err != nil {
				return err
			}
			sensors = append(sensors, m)
		}

		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to list sensors")
	}

	return sensors, nil
}

// FindOrCreateSensor returns the channel registered under meta's key,
// registering meta with a fresh id when there is none.
func (repo *sensorRepository) FindOrCreateSensor(ctx context.Context, meta entity.SensorMetadata) (entity.SensorMetadata, error) {
	if !meta.Point.IsValid() {
		return entity.SensorMetadata{}, errors.Wrapf(errors.AtSite(repository.ErrInvalidSensor, meta.SiteID), "location %+v", meta.Point)
	}

	key := channelKey(meta.Key())
	for range maxTxnRetries {
		if err := ctx.Err(); err != nil {
			return entity.SensorMetadata{}, err
		}

		var found entity.SensorMetadata
		err := repo.db.Update(func(txn *badger.Txn) error {
			item, err := txn.Get(key)
			if err == nil {
				var id []byte
				if id, err = item.ValueCopy(nil); err != nil {
					return err
				}
				found, err = getSensor(txn, string(id))

				return err
			}
			if !errors.Is(err, badger.ErrKeyNotFound) {
				return err
			}

			found = meta
			found.ID = uuid.NewString()
			val, err := binary.Marshal(toRecord(found))
			if err != nil {
				return err
			}
			if err := txn.Set(sensorKey(found.ID), val); err != nil {
				return err
			}
			if err := txn.Set(key, []byte(found.ID)); err != nil {
				return err
			}

			return txn.Set(cellKey(cellOf(found.Point), found.ID), nil)
		})
		if errors.Is(err, badger.ErrConflict) {
			continue
		}
		if err != nil {
			return entity.SensorMetadata{}, errors.Wrapf(err, "failed to find or create sensor %d", meta.SiteID)
		}

		return found, nil
	}

	return entity.SensorMetadata{}, errors.Wrapf(badger.ErrConflict, "sensor %d after %d attempts", meta.SiteID, maxTxnRetries)
}

// SaveDataPoints stores a batch of readings through a write batch.
func (repo *sensorRepository) SaveDataPoints(ctx context.Context, points []entity.DataPoint) error {
	wb := repo.db.NewWriteBatch()
	defer wb.Cancel()

	for _, p := range points {
		if err := ctx.Err(); err != nil {
			return err
		}
		if p.SensorID == "" {
			return errors.Wrap(repository.ErrSensorNotFound, "data point without sensor id")
		}
		if p.ID == "" {
			p.ID = uuid.NewString()
		}

		val, err := binary.Marshal(pointRecord{ID: p.ID, OriginalID: p.OriginalID, FlowRate: p.FlowRate, AverageSpeed: p.AverageSpeed})
		if err != nil {
			return errors.Wrap(err, "encode data point")
		}
		ts := stamp(p.Time)
		if err := wb.Set([]byte(dataPrefix(p.SensorID)+ts+"/"+p.ID), val); err != nil {
			return errors.Wrap(err, "failed to queue data point")
		}
		if err := wb.Set([]byte(prefixTime+ts), nil); err != nil {
			return errors.Wrap(err, "failed to queue data point time")
		}
	}

	return errors.Wrap(wb.Flush(), "failed to save data points")
}

// GetSensorDataAt returns, per site, the newest reading in [at-maxAge, at]
// across the given sensors.
func (repo *sensorRepository) GetSensorDataAt(ctx context.Context, sensors []entity.SensorMetadata, at time.Time, maxAge time.Duration) (map[int32]entity.DataPoint, error) {
	oldest := at.Add(-maxAge)
	if maxAge == time.Duration(math.MaxInt64) || oldest.After(at) {
		oldest = time.Unix(0, 0)
	}

	out := make(map[int32]entity.DataPoint)
	err := repo.db.View(func(txn *badger.Txn) error {
		for _, s := range sensors {
			if err := ctx.Err(); err != nil {
				return err
			}

			p, ok, err := newestReading(txn, s.ID, at, oldest)
			if err != nil {
				return err
			}
			if !ok {
				continue
			}
			if prev, seen := out[s.SiteID]; !seen || p.Time.After(prev.Time) {
				out[s.SiteID] = p
			}
		}

		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to read sensor data")
	}

	return out, nil
}

func newestReading(txn *badger.Txn, sensorID string, at, oldest time.Time) (entity.DataPoint, bool, error) {
	prefix := []byte(dataPrefix(sensorID))
	it := txn.NewIterator(badger.IteratorOptions{Prefix: prefix, Reverse: true, PrefetchValues: false})
	defer it.Close()

	// Reverse seek lands on the last key <= seek; "0" sorts after "/".
	it.Seek([]byte(string(prefix) + stamp(at) + "0"))
	if !it.ValidForPrefix(prefix) {
		return entity.DataPoint{}, false, nil
	}

	item := it.Item()
	rest := strings.TrimPrefix(string(item.Key()), string(prefix))
	ts, _, _ := strings.Cut(rest, "/")
	t, err := parseStamp(ts)
	if err != nil {
		return entity.DataPoint{}, false, err
	}
	if t.Before(oldest) {
		return entity.DataPoint{}, false, nil
	}

	var rec pointRecord
	if err := item.Value(func(val []byte) error { return binary.Unmarshal(val, &rec) }); err != nil {
		return entity.DataPoint{}, false, errors.Wrap(err, "decode data point")
	}

	return entity.DataPoint{
		ID:           rec.ID,
		OriginalID:   rec.OriginalID,
		SensorID:     sensorID,
		Time:         t,
		FlowRate:     rec.FlowRate,
		AverageSpeed: rec.AverageSpeed,
	}, true, nil
}

// DataPointTimes returns the distinct reading times in [from, to].
func (repo *sensorRepository) DataPointTimes(ctx context.Context, from, to time.Time) ([]time.Time, error) {
	var times []time.Time
	err := repo.db.View(func(txn *badger.Txn) error {
		prefix := []byte(prefixTime)
		it := txn.NewIterator(badger.IteratorOptions{Prefix: prefix})
		defer it.Close()

		last := prefixTime + stamp(to)
		for it.Seek([]byte(prefixTime + stamp(from))); it.ValidForPrefix(prefix); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			key := string(it.Item().Key())
			if key > last {
				break
			}
			t, err := parseStamp(strings.TrimPrefix(key, prefixTime))
			if err != nil {
				return err
			}
			times = append(times, t)
		}

		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to list data point times")
	}

	return times, nil
}

// SensorsNear returns the sensors within radius metres of p. Candidates
// come from the h3 disk covering the radius and are filtered by distance.
func (repo *sensorRepository) SensorsNear(ctx context.Context, p entity.Point, radius float64) ([]entity.SensorMetadata, error) {
	var out []entity.SensorMetadata
	err := repo.db.View(func(txn *badger.Txn) error {
		for _, cell := range diskCovering(p, radius) {
			if err := ctx.Err(); err != nil {
				return err
			}

			prefix := []byte(prefixCell + cell.String() + "/")
			it := txn.NewIterator(badger.IteratorOptions{Prefix: prefix})
			for it.Rewind(); it.Valid(); it.Next() {
				id := strings.TrimPrefix(string(it.Item().Key()), string(prefix))
				m, err := getSensor(txn, id)
				if err != nil {
					it.Close()

					return err
				}
				if geo.Distance(p, m.Point) <= radius {
					out = append(out, m)
				}
			}
			it.Close()
		}

		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to query sensors near point")
	}

	return out, nil
}

// diskCovering returns the h3 disk around p's cell that contains every
// point within radius metres of p.
func diskCovering(p entity.Point, radius float64) []h3.Cell {
	origin := cellOf(p)

	edgeKm := math.Inf(1)
	for _, e := range origin.DirectedEdges() {
		edgeKm = min(edgeKm, h3.EdgeLengthKm(e))
	}
	if math.IsInf(edgeKm, 1) {
		edgeKm = h3.HexagonEdgeLengthAvgKm(cellResolution)
	}

	return h3.GridDisk(origin, diskRings(radius/1000, edgeKm))
}

// diskRings is the ring count k whose disk reaches radiusKm from any point
// of the centre cell. Cell centres at grid distance k lie on a hexagon whose
// inscribed radius is 1.5*k edge lengths, and both the query point and the
// target may sit up to one edge length off their cell centres.
func diskRings(radiusKm, edgeKm float64) int {
	return int(math.Ceil((max(radiusKm, 0) + 2*edgeKm) / (1.5 * edgeKm)))
}
