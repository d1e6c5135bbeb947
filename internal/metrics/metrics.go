// Package metrics exposes probe outcomes as Prometheus metrics.
package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/smazurov/alsaprobe/internal/events"
	"github.com/smazurov/alsaprobe/internal/probe"
)

const namespace = "alsaprobe"

// Run results used as the "result" label of runs_total.
const (
	RunOK        = "ok"
	RunPartial   = "partial"
	RunFatal     = "fatal"
	RunCancelled = "cancelled"
)

// LastRun is a snapshot of the most recent completed run.
type LastRun struct {
	Cards    int
	Failed   int
	Duration time.Duration
	Result   string
	Error    string
	At       time.Time
}

// Recorder turns probe results into metrics.
type Recorder struct {
	steps    *prometheus.CounterVec
	releases prometheus.Counter
	runs     *prometheus.CounterVec
	cards    prometheus.Gauge
	duration prometheus.Histogram

	mu      sync.RWMutex
	last    LastRun
	hasLast bool
}

// NewRecorder registers the probe metrics on reg.
func NewRecorder(reg prometheus.Registerer) *Recorder {
	factory := promauto.With(reg)
	return &Recorder{
		steps: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "steps_total",
			Help:      "Probe steps attempted, by step and result",
		}, []string{"step", "result"}),

		releases: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "mixer_releases_total",
			Help:      "Mixer contexts released after probing",
		}),

		runs: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Completed probe runs, by result",
		}, []string{"result"}),

		cards: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "cards",
			Help:      "Cards found by the most recent run",
		}),

		duration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Duration of probe runs",
			Buckets:   []float64{.001, .005, .01, .05, .1, .5, 1, 5},
		}),
	}
}

// ObserveDevice records the steps of one probed card.
func (r *Recorder) ObserveDevice(result probe.ProbeResult) {
	for _, s := range result.Steps {
		outcome := "ok"
		if !s.OK() {
			outcome = "error"
		}
		r.steps.WithLabelValues(string(s.Step), outcome).Inc()
	}
	if result.MixerReleased {
		r.releases.Inc()
	}
}

// ObserveRun records a finished run.
func (r *Recorder) ObserveRun(ev events.ProbeRunEvent) {
	result := runResult(ev)
	r.runs.WithLabelValues(result).Inc()
	if result != RunFatal {
		r.cards.Set(float64(ev.Cards))
	}
	r.duration.Observe(ev.DurationMS / 1000)

	at, err := time.Parse(time.RFC3339Nano, ev.Timestamp)
	if err != nil {
		at = time.Now()
	}

	r.mu.Lock()
	r.last = LastRun{
		Cards:    ev.Cards,
		Failed:   ev.Failed,
		Duration: time.Duration(ev.DurationMS * float64(time.Millisecond)),
		Result:   result,
		Error:    ev.Error,
		At:       at,
	}
	r.hasLast = true
	r.mu.Unlock()
}

func runResult(ev events.ProbeRunEvent) string {
	switch {
	case ev.Fatal:
		return RunFatal
	case ev.Error != "":
		return RunCancelled
	case ev.Failed > 0:
		return RunPartial
	default:
		return RunOK
	}
}

// LastRun returns the most recent run, if any completed.
func (r *Recorder) LastRun() (LastRun, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.last, r.hasLast
}

// Attach subscribes the recorder to probe events on bus. Call the returned
// function to detach.
func (r *Recorder) Attach(bus *events.Bus) func() {
	unsubDevice := bus.Subscribe(func(e events.DeviceProbedEvent) {
		r.ObserveDevice(e.Result)
	})
	unsubRun := bus.Subscribe(func(e events.ProbeRunEvent) {
		r.ObserveRun(e)
	})
	return func() {
		unsubDevice()
		unsubRun()
	}
}
