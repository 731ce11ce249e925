package dashboard

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Cycle outcomes recorded on the cycles counter.
const (
	resultOK            = "ok"
	resultDisplayFailed = "display_failed"
	resultError         = "error"
)

// Stats exports render cycle counters. A nil *Stats records nothing.
type Stats struct {
	cycles          *prometheus.CounterVec
	metricFailures  *prometheus.CounterVec
	displayFailures prometheus.Counter
	fallbackWrites  prometheus.Counter
	duration        prometheus.Histogram
}

// NewStats creates the collectors and registers them with reg when reg is not nil.
func NewStats(reg prometheus.Registerer) *Stats {
	s := &Stats{
		cycles: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "inkdash_cycles_total",
				Help: "Render cycles by outcome",
			},
			[]string{"result"},
		),
		metricFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "inkdash_metric_failures_total",
				Help: "Metrics that resolved to their error token",
			},
			[]string{"metric"},
		),
		displayFailures: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "inkdash_display_failures_total",
				Help: "Frames the display driver rejected",
			},
		),
		fallbackWrites: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "inkdash_fallback_writes_total",
				Help: "Frames saved to the fallback PNG",
			},
		),
		duration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "inkdash_cycle_duration_seconds",
				Help:    "Wall time of one render cycle",
				Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
			},
		),
	}

	if reg != nil {
		reg.MustRegister(s.cycles, s.metricFailures, s.displayFailures, s.fallbackWrites, s.duration)
	}
	return s
}

func (s *Stats) observe(res *CycleResult, err error) {
	if s == nil || res == nil {
		return
	}

	switch {
	case err != nil:
		s.cycles.WithLabelValues(resultError).Inc()
	case res.DisplayErr != nil:
		s.cycles.WithLabelValues(resultDisplayFailed).Inc()
	default:
		s.cycles.WithLabelValues(resultOK).Inc()
	}

	for _, kind := range res.Values.Failed() {
		s.metricFailures.WithLabelValues(string(kind)).Inc()
	}
	if res.DisplayErr != nil {
		s.displayFailures.Inc()
	}
	if res.FallbackWritten {
		s.fallbackWrites.Inc()
	}
	s.duration.Observe(res.Duration.Seconds())
}
