package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// ScoringMetrics captures scoring run health signals.
type ScoringMetrics struct {
	runsTotal       *prometheus.CounterVec
	runDuration     prometheus.Histogram
	contactsScored  prometheus.Counter
	contactsFailed  prometheus.Counter
	guardExclusions *prometheus.CounterVec
	trendAlerts     prometheus.Counter
	syncPasses      *prometheus.CounterVec
}

var (
	scoringMetricsOnce sync.Once
	scoringMetrics     *ScoringMetrics
)

// Scoring returns the singleton scoring metrics registry.
func Scoring() *ScoringMetrics {
	scoringMetricsOnce.Do(func() {
		scoringMetrics = newScoringMetrics(prometheus.DefaultRegisterer)
	})
	return scoringMetrics
}

// ResetScoringMetricsForTest resets the singleton for tests.
func ResetScoringMetricsForTest() {
	scoringMetricsOnce = sync.Once{}
	scoringMetrics = nil
}

func newScoringMetrics(registerer prometheus.Registerer) *ScoringMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	runsTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "leadpulse_scoring_runs_total",
		Help: "Scoring runs by terminal status.",
	}, []string{"status"})
	runDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "leadpulse_scoring_run_duration_seconds",
		Help:    "Wall time of one full scoring pass.",
		Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120, 300, 600},
	})
	contactsScored := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "leadpulse_scoring_contacts_scored_total",
		Help: "Contacts successfully scored across all runs.",
	})
	contactsFailed := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "leadpulse_scoring_contacts_failed_total",
		Help: "Per-contact scoring failures across all runs.",
	})
	guardExclusions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "leadpulse_guard_exclusions_total",
		Help: "Guard exclusions and neutralizations by reason.",
	}, []string{"reason"})
	trendAlerts := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "leadpulse_trend_alerts_total",
		Help: "Trend alerts emitted for large heat swings.",
	})
	syncPasses := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "leadpulse_feed_sync_total",
		Help: "CRM feed sync passes by outcome.",
	}, []string{"outcome"})

	for _, c := range []prometheus.Collector{
		runsTotal, runDuration, contactsScored, contactsFailed, guardExclusions, trendAlerts, syncPasses,
	} {
		if err := registerer.Register(c); err != nil {
			if already, ok := err.(prometheus.AlreadyRegisteredError); ok {
				_ = already
				continue
			}
		}
	}

	return &ScoringMetrics{
		runsTotal:       runsTotal,
		runDuration:     runDuration,
		contactsScored:  contactsScored,
		contactsFailed:  contactsFailed,
		guardExclusions: guardExclusions,
		trendAlerts:     trendAlerts,
		syncPasses:      syncPasses,
	}
}

func (m *ScoringMetrics) IncRun(status string) {
	m.runsTotal.WithLabelValues(status).Inc()
}

func (m *ScoringMetrics) ObserveRunDuration(d time.Duration) {
	m.runDuration.Observe(d.Seconds())
}

func (m *ScoringMetrics) AddContactsScored(n int) {
	m.contactsScored.Add(float64(n))
}

func (m *ScoringMetrics) AddContactsFailed(n int) {
	m.contactsFailed.Add(float64(n))
}

func (m *ScoringMetrics) IncGuardExclusion(reason string) {
	m.guardExclusions.WithLabelValues(reason).Inc()
}

func (m *ScoringMetrics) IncTrendAlert() {
	m.trendAlerts.Inc()
}

func (m *ScoringMetrics) IncSyncPass(outcome string) {
	m.syncPasses.WithLabelValues(outcome).Inc()
}
