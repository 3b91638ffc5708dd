package roads

import (
	"encoding/csv"
	"io"
	"strconv"

	"roadnet/internal/domain/entity"
	"roadnet/internal/errors"
)

const sensorCSVColumns = 7

// ReadSensorCSV loads sensor samples from CSV.
// Expected format: site_id,latitude,longitude,flow_rate,average_speed,lane,side
func ReadSensorCSV(r io.Reader) ([]entity.SensorSample, error) {
	reader := csv.NewReader(r)

	// Skip header row
	if _, err := reader.Read(); err != nil {
		return nil, errors.WithStack(err)
	}

	var sensors []entity.SensorSample
	lineNum := 1

	for {
		record, readErr := reader.Read()
		if errors.Is(readErr, io.EOF) {
			break
		}
		if readErr != nil {
			return nil, errors.WithStack(readErr)
		}
		lineNum++

		if len(record) < sensorCSVColumns {
			return nil, errors.Wrapf(ErrInvalidRecord, "sensor csv line %d: expected %d columns, got %d", lineNum, sensorCSVColumns, len(record))
		}

		sensor, parseErr := parseSensorRecord(record)
		if parseErr != nil {
			return nil, errors.Wrapf(parseErr, "sensor csv line %d", lineNum)
		}

		sensors = append(sensors, sensor)
	}

	return sensors, nil
}

// WriteSensorCSV writes sensor samples in the format ReadSensorCSV reads.
func WriteSensorCSV(w io.Writer, sensors []entity.SensorSample) error {
	writer := csv.NewWriter(w)
	if err := writer.Write([]string{"site_id", "latitude", "longitude", "flow_rate", "average_speed", "lane", "side"}); err != nil {
		return errors.WithStack(err)
	}

	for _, s := range sensors {
		record := []string{
			strconv.FormatInt(int64(s.SiteID), 10),
			strconv.FormatFloat(s.Point.Latitude, 'f', -1, 64),
			strconv.FormatFloat(s.Point.Longitude, 'f', -1, 64),
			strconv.FormatFloat(s.FlowRate, 'f', -1, 64),
			strconv.FormatFloat(s.AverageSpeed, 'f', -1, 64),
			strconv.FormatInt(int64(s.Lane), 10),
			s.Side.String(),
		}
		if err := writer.Write(record); err != nil {
			return errors.WithStack(err)
		}
	}
	writer.Flush()

	return errors.WithStack(writer.Error())
}

func parseSensorRecord(record []string) (entity.SensorSample, error) {
	siteID, err := strconv.ParseInt(record[0], 10, 32)
	if err != nil {
		return entity.SensorSample{}, errors.WithStack(err)
	}

	lat, err := strconv.ParseFloat(record[1], 64)
	if err != nil {
		return entity.SensorSample{}, errors.WithStack(err)
	}

	lon, err := strconv.ParseFloat(record[2], 64)
	if err != nil {
		return entity.SensorSample{}, errors.WithStack(err)
	}

	flow, err := strconv.ParseFloat(record[3], 64)
	if err != nil {
		return entity.SensorSample{}, errors.WithStack(err)
	}

	speed, err := strconv.ParseFloat(record[4], 64)
	if err != nil {
		return entity.SensorSample{}, errors.WithStack(err)
	}

	// Accepts both "2" and "lane2".
	lane, err := entity.ParseLane(record[5])
	if err != nil {
		return entity.SensorSample{}, err
	}

	return entity.SensorSample{
		SiteID:       int32(siteID),
		Point:        entity.NewPoint(lat, lon),
		FlowRate:     flow,
		AverageSpeed: speed,
		Lane:         lane,
		Side:         entity.ParseSide(record[6]),
	}, nil
}
