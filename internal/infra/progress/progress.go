// Package progress defines the observer the processing pipeline reports
// through, plus adapters that forward those reports to a logger, a console
// progress bar or prometheus.
package progress

import (
	"io"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"roadnet/internal/infra/metrics"

	"github.com/schollz/progressbar/v3"
)

// Observer receives step lifecycle events. Tick may be called concurrently
// from worker goroutines.
type Observer interface {
	// StepStarted announces a step that will visit about total items
	// (0 when unknown).
	StepStarted(step string, total int)
	// Tick reports n more visited items.
	Tick(step string, n int)
	// StepFinished closes the step with the number of nodes or edges it changed.
	StepFinished(step string, affected int)
}

// Noop discards every event.
type Noop struct{}

func (Noop) StepStarted(string, int)  {}
func (Noop) Tick(string, int)         {}
func (Noop) StepFinished(string, int) {}

// OrNoop returns o, or Noop when o is nil.
func OrNoop(o Observer) Observer {
	if o == nil {
		return Noop{}
	}

	return o
}

// Multi fans events out to several observers.
type Multi []Observer

func (m Multi) StepStarted(step string, total int) {
	for _, o := range m {
		o.StepStarted(step, total)
	}
}

func (m Multi) Tick(step string, n int) {
	for _, o := range m {
		o.Tick(step, n)
	}
}

func (m Multi) StepFinished(step string, affected int) {
	for _, o := range m {
		o.StepFinished(step, affected)
	}
}

// stepClock tracks step start times for the timing adapters.
type stepClock struct {
	mu      sync.Mutex
	started map[string]time.Time
}

func (c *stepClock) start(step string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.started == nil {
		c.started = make(map[string]time.Time)
	}
	c.started[step] = time.Now()
}

func (c *stepClock) stop(step string) time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()

	begin, ok := c.started[step]
	if !ok {
		return 0
	}
	delete(c.started, step)

	return time.Since(begin)
}

// Logger writes a log line when a step starts and when it finishes.
type Logger struct {
	logger *slog.Logger
	clock  stepClock
}

// NewLogger creates a Logger; nil falls back to slog.Default().
func NewLogger(logger *slog.Logger) *Logger {
	if logger == nil {
		logger = slog.Default()
	}

	return &Logger{logger: logger}
}

func (l *Logger) StepStarted(step string, total int) {
	l.clock.start(step)
	l.logger.Info("Step started", "step", step, "total", total)
}

func (l *Logger) Tick(string, int) {}

func (l *Logger) StepFinished(step string, affected int) {
	l.logger.Info("Step finished", "step", step, "affected", affected, "duration", l.clock.stop(step))
}

// Console draws one progress bar per step.
type Console struct {
	out  io.Writer
	mu   sync.Mutex
	bars map[string]*progressbar.ProgressBar
}

// NewConsole creates a Console writing to out.
func NewConsole(out io.Writer) *Console {
	return &Console{out: out, bars: make(map[string]*progressbar.ProgressBar)}
}

func (c *Console) StepStarted(step string, total int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if total <= 0 {
		total = -1
	}
	c.bars[step] = progressbar.NewOptions(total,
		progressbar.OptionSetWriter(c.out),
		progressbar.OptionSetWidth(30),
		progressbar.OptionShowCount(),
		progressbar.OptionSetDescription(step),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "=",
			SaucerHead:    ">",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
	)
}

func (c *Console) Tick(step string, n int) {
	c.mu.Lock()
	bar := c.bars[step]
	c.mu.Unlock()

	if bar != nil {
		_ = bar.Add(n)
	}
}

func (c *Console) StepFinished(step string, affected int) {
	c.mu.Lock()
	bar := c.bars[step]
	delete(c.bars, step)
	c.mu.Unlock()

	if bar == nil {
		return
	}
	bar.Describe(step + " (" + strconv.Itoa(affected) + " changed)")
	_ = bar.Finish()
	_, _ = io.WriteString(c.out, "\n")
}

// Prometheus records step durations, visited items and affected counts.
type Prometheus struct {
	m     *metrics.Metrics
	clock stepClock
}

// NewPrometheus creates an observer backed by m.
func NewPrometheus(m *metrics.Metrics) *Prometheus {
	return &Prometheus{m: m}
}

func (p *Prometheus) StepStarted(step string, _ int) {
	p.clock.start(step)
}

func (p *Prometheus) Tick(step string, n int) {
	p.m.StepItems.WithLabelValues(step).Add(float64(n))
}

func (p *Prometheus) StepFinished(step string, affected int) {
	p.m.StepDuration.WithLabelValues(step).Observe(p.clock.stop(step).Seconds())
	p.m.StepAffected.WithLabelValues(step).Set(float64(affected))
}
