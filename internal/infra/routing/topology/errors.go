package topology

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrRoadLengthMismatch marks two roads with identical coordinates but
	// different declared lengths. The input cannot be trusted past this point.
	ErrRoadLengthMismatch = errors.New("identical roads with different lengths")
	// ErrNoSensors is returned by passes that need at least one sensor.
	ErrNoSensors = errors.New("no sensors to seed from")
)

// RoadLengthMismatchError carries the offending road ids.
type RoadLengthMismatchError struct {
	FirstID, SecondID int32
	Difference        float64
}

func (e *RoadLengthMismatchError) Error() string {
	return fmt.Sprintf("roads %d and %d have identical coordinates but lengths differ by %g m",
		e.FirstID, e.SecondID, e.Difference)
}

func (e *RoadLengthMismatchError) Unwrap() error {
	return ErrRoadLengthMismatch
}
