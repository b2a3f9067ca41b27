package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "league"

// Metrics holds the engine collectors. A nil *Metrics records nothing.
type Metrics struct {
	matchesCompleted  *prometheus.CounterVec
	bracketResets     prometheus.Counter
	conflicts         prometheus.Counter
	eventsCompleted   prometheus.Counter
	completeDurations prometheus.Histogram
}

func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		matchesCompleted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "matches_completed_total",
			Help:      "Match results recorded, by bracket format.",
		}, []string{"elimination_type"}),
		bracketResets: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bracket_resets_total",
			Help:      "Bracket reset matches revealed after a grand final.",
		}),
		conflicts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "advancement_conflicts_total",
			Help:      "Results rejected because they would rewrite a started match.",
		}),
		eventsCompleted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_completed_total",
			Help:      "Events flipped to completed by the completion watcher.",
		}),
		completeDurations: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "complete_match_duration_seconds",
			Help:      "Time spent in the complete match transaction.",
			Buckets:   prometheus.DefBuckets,
		}),
	}

	reg.MustRegister(m.matchesCompleted, m.bracketResets, m.conflicts, m.eventsCompleted, m.completeDurations)
	return m
}

func (m *Metrics) MatchCompleted(eliminationType string) {
	if m == nil {
		return
	}
	m.matchesCompleted.WithLabelValues(eliminationType).Inc()
}

func (m *Metrics) BracketReset() {
	if m == nil {
		return
	}
	m.bracketResets.Inc()
}

func (m *Metrics) Conflict() {
	if m == nil {
		return
	}
	m.conflicts.Inc()
}

func (m *Metrics) EventCompleted() {
	if m == nil {
		return
	}
	m.eventsCompleted.Inc()
}

func (m *Metrics) ObserveCompleteMatch(start time.Time) {
	if m == nil {
		return
	}
	m.completeDurations.Observe(time.Since(start).Seconds())
}
