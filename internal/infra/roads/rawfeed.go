package roads

import (
	"context"
	"encoding/json"
	"io"

	"roadnet/internal/domain/entity"
	"roadnet/internal/errors"
)

// RawFeedFile streams raw sensor readings stored as one JSON object per
// line, the export format of the raw flow collection.
type RawFeedFile struct {
	r io.Reader
}

// NewRawFeedFile wraps r.
func NewRawFeedFile(r io.Reader) *RawFeedFile {
	return &RawFeedFile{r: r}
}

// Stream decodes records one at a time and hands them to fn.
func (f *RawFeedFile) Stream(ctx context.Context, fn func(entity.RawSensorReading) error) error {
	dec := json.NewDecoder(f.r)
	for n := 1; ; n++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		var rec entity.RawSensorReading
		err := dec.Decode(&rec)
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return errors.Wrapf(err, "raw feed record %d", n)
		}

		if err := fn(rec); err != nil {
			return err
		}
	}
}
