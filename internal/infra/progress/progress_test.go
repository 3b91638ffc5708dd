package progress

import (
	"bytes"
	"log/slog"
	"testing"

	"roadnet/internal/infra/metrics"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

type recorder struct {
	events []string
}

func (r *recorder) StepStarted(step string, _ int)  { r.events = append(r.events, "start:"+step) }
func (r *recorder) Tick(step string, _ int)         { r.events = append(r.events, "tick:"+step) }
func (r *recorder) StepFinished(step string, _ int) { r.events = append(r.events, "finish:"+step) }

func TestMulti_FansOut(t *testing.T) {
	a, b := &recorder{}, &recorder{}
	m := Multi{a, b}

	m.StepStarted("dedup", 3)
	m.Tick("dedup", 1)
	m.StepFinished("dedup", 0)

	expected := []string{"start:dedup", "tick:dedup", "finish:dedup"}
	assert.Equal(t, expected, a.events)
	assert.Equal(t, expected, b.events)
}

func TestOrNoop(t *testing.T) {
	assert.Equal(t, Noop{}, OrNoop(nil))

	r := &recorder{}
	assert.Same(t, r, OrNoop(r))
}

func TestLogger_WritesStepLines(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(slog.New(slog.NewTextHandler(&buf, nil)))

	l.StepStarted("merge-overlap", 10)
	l.StepFinished("merge-overlap", 4)

	out := buf.String()
	assert.Contains(t, out, "step=merge-overlap")
	assert.Contains(t, out, "affected=4")
}

func TestConsole_DrawsBar(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsole(&buf)

	c.StepStarted("connect", 2)
	c.Tick("connect", 2)
	c.StepFinished("connect", 1)
	c.Tick("unknown", 1)

	assert.Contains(t, buf.String(), "connect")
}

func TestPrometheus_RecordsStep(t *testing.T) {
	m := metrics.New("test")
	p := NewPrometheus(m)

	p.StepStarted("collapse", 5)
	p.Tick("collapse", 3)
	p.Tick("collapse", 2)
	p.StepFinished("collapse", 7)

	assert.Equal(t, 5.0, testutil.ToFloat64(m.StepItems.WithLabelValues("collapse")))
	assert.Equal(t, 7.0, testutil.ToFloat64(m.StepAffected.WithLabelValues("collapse")))
}
