package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/gokatarajesh/trivia-quiz/internal/question"
	"github.com/gokatarajesh/trivia-quiz/internal/quiz"
)

const namespace = "trivia_quiz"

// Metrics holds the Prometheus collectors for sessions and upstream fetches.
type Metrics struct {
	sessionsLoaded *prometheus.CounterVec
	activeSessions prometheus.Gauge
	commits        *prometheus.CounterVec
	finished       *prometheus.CounterVec
	fetchDuration  *prometheus.HistogramVec
}

var (
	_ quiz.Observer          = (*Metrics)(nil)
	_ question.FetchObserver = (*Metrics)(nil)
)

// New registers collectors on reg (prometheus.DefaultRegisterer in production).
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		sessionsLoaded: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_loaded_total",
			Help:      "Sessions whose question set settled, by resulting state.",
		}, []string{"state"}),
		activeSessions: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sessions_active",
			Help:      "Sessions currently held in the registry.",
		}),
		commits: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "answers_committed_total",
			Help:      "Committed answers, by result.",
		}, []string{"result"}),
		finished: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_finished_total",
			Help:      "Sessions that reached the results view, by remark.",
		}, []string{"remark"}),
		fetchDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "question_fetch_seconds",
			Help:      "Upstream question fetch latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"source", "result"}),
	}
}

func (m *Metrics) Loaded(state quiz.State) {
	m.sessionsLoaded.WithLabelValues(string(state)).Inc()
}

func (m *Metrics) Committed(correct bool) {
	result := "incorrect"
	if correct {
		result = "correct"
	}
	m.commits.WithLabelValues(result).Inc()
}

func (m *Metrics) Finished(summary quiz.Summary) {
	m.finished.WithLabelValues(summary.Remark).Inc()
}

func (m *Metrics) ObserveFetch(source string, err error, elapsed time.Duration) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.fetchDuration.WithLabelValues(source, result).Observe(elapsed.Seconds())
}

// SessionOpened and SessionClosed track the registry size.
func (m *Metrics) SessionOpened() { m.activeSessions.Inc() }

func (m *Metrics) SessionClosed() { m.activeSessions.Dec() }
