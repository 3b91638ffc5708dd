package topology

import (
	"runtime"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
)

// CollapseStrategy selects how chains of pass-through nodes are folded.
type CollapseStrategy string

const (
	CollapseNone        CollapseStrategy = "none"
	CollapseNaive       CollapseStrategy = "naive"
	CollapseForwardOnly CollapseStrategy = "forward-only"
)

// SensorMode selects how several sensors mapped to one node are stored.
type SensorMode string

const (
	// SensorAverage folds every sensor of a node into one averaged reading.
	SensorAverage SensorMode = "average"
	// SensorList keeps each sensor in the sensor store and sets the node
	// reading to their average.
	SensorList SensorMode = "list"
)

// Options toggles and parameterises the simplification passes.
type Options struct {
	DedupRoads bool

	// MaxDistanceFromSensors removes nodes further than this many metres
	// from every sensor. Zero disables the pass.
	MaxDistanceFromSensors float64 `validate:"gte=0"`

	MergeOverlap         bool
	MergeOverlapDistance float64 `validate:"gte=0"`

	AssignSensors bool
	SensorMode    SensorMode `validate:"omitempty,oneof=average list"`

	ConnectDisjoint bool
	ConnectDistance float64 `validate:"gte=0"`

	RemoveDisjoint bool
	DedupEdges     bool

	Collapse CollapseStrategy `validate:"omitempty,oneof=none naive forward-only"`

	// Workers bounds the parallel read phases; zero means GOMAXPROCS.
	Workers int `validate:"gte=0"`
}

// DefaultOptions enables every pass with the thresholds the road feed is
// usually processed with.
func DefaultOptions() Options {
	return Options{
		DedupRoads:           true,
		MergeOverlap:         true,
		MergeOverlapDistance: 1,
		AssignSensors:        true,
		SensorMode:           SensorAverage,
		ConnectDisjoint:      true,
		ConnectDistance:      20,
		RemoveDisjoint:       true,
		DedupEdges:           true,
		Collapse:             CollapseNaive,
	}
}

var validate = validator.New()

// Validate checks the option ranges.
func (o Options) Validate() error {
	if err := validate.Struct(o); err != nil {
		return errors.Wrap(err, "invalid processing options")
	}
	if o.ConnectDisjoint && o.ConnectDistance <= 0 {
		return errors.New("invalid processing options: connect distance must be positive")
	}

	return nil
}

func (o Options) workers() int {
	if o.Workers > 0 {
		return o.Workers
	}

	return runtime.GOMAXPROCS(0)
}
