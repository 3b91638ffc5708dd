package errors

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

var errMissing = New("missing")

type nodeID int32

func TestLocationHelpers(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{name: "node", err: AtNode(errMissing, "start", nodeID(12)), want: "start 12: missing"},
		{name: "edge", err: AtEdge(errMissing, nodeID(3), nodeID(4)), want: "3 -> 4: missing"},
		{name: "site", err: AtSite(errMissing, 1401), want: "site 1401: missing"},
		{name: "sensor", err: AtSensor(errMissing, "a1"), want: `sensor id "a1": missing`},
		{name: "file", err: InFile(errMissing, "open graph", "data/g.bin"), want: "open graph data/g.bin: missing"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.EqualError(t, tt.err, tt.want)
			assert.ErrorIs(t, tt.err, errMissing)
			assert.Equal(t, errMissing, Cause(tt.err))
		})
	}
}

func TestLocationHelpers_NilStaysNil(t *testing.T) {
	assert.NoError(t, AtNode(nil, "start", nodeID(1)))
	assert.NoError(t, AtEdge[nodeID](nil, 1, 2))
	assert.NoError(t, InFile(nil, "close graph", "g.json"))
}

func TestAsType(t *testing.T) {
	err := Wrap(&customError{code: 7}, "outer")

	got, ok := AsType[*customError](err)
	assert.True(t, ok)
	assert.Equal(t, 7, got.code)

	_, ok = AsType[*customError](errMissing)
	assert.False(t, ok)
}

type customError struct{ code int }

func (e *customError) Error() string { return "custom" }
