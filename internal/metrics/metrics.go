package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	// Registration
	MetricRegistrations = "registrations_total"
	// Login
	MetricLogins = "logins_total"
	// Voting
	MetricVotesCast      = "votes_cast_total"
	MetricVoteRejections = "vote_rejections_total"
	// Dashboard
	MetricDashboardDuration = "dashboard_render_seconds"
)

// MetricService owns a private registry so several instances (one per
// test server) can coexist.
type MetricService struct {
	MetricsMap map[string]prometheus.Collector
	registry   *prometheus.Registry
}

func NewMetricService() *MetricService {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	ms := make(map[string]prometheus.Collector)

	registrations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: MetricRegistrations,
		Help: "Completed registrations by role",
	}, []string{"role"})
	ms[MetricRegistrations] = registrations
	reg.MustRegister(registrations)

	logins := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: MetricLogins,
		Help: "Login attempts by result",
	}, []string{"result"})
	ms[MetricLogins] = logins
	reg.MustRegister(logins)

	votesCast := prometheus.NewCounter(prometheus.CounterOpts{
		Name: MetricVotesCast,
		Help: "Votes recorded",
	})
	ms[MetricVotesCast] = votesCast
	reg.MustRegister(votesCast)

	voteRejections := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: MetricVoteRejections,
		Help: "Vote submissions rejected by reason",
	}, []string{"reason"})
	ms[MetricVoteRejections] = voteRejections
	reg.MustRegister(voteRejections)

	dashboardDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name: MetricDashboardDuration,
		Help: "Time to compute one dashboard snapshot",
	})
	ms[MetricDashboardDuration] = dashboardDuration
	reg.MustRegister(dashboardDuration)

	return &MetricService{
		MetricsMap: ms,
		registry:   reg,
	}
}

// Handler serves the registry in the prometheus text format.
func (m *MetricService) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registration
func (m *MetricService) IncRegistration(role string) {
	m.MetricsMap[MetricRegistrations].(*prometheus.CounterVec).WithLabelValues(role).Inc()
}

// Login
func (m *MetricService) IncLogin(result string) {
	m.MetricsMap[MetricLogins].(*prometheus.CounterVec).WithLabelValues(result).Inc()
}

// Voting
func (m *MetricService) IncVoteCast() {
	m.MetricsMap[MetricVotesCast].(prometheus.Counter).Inc()
}

func (m *MetricService) IncVoteRejected(reason string) {
	m.MetricsMap[MetricVoteRejections].(*prometheus.CounterVec).WithLabelValues(reason).Inc()
}

// Dashboard
func (m *MetricService) ObserveDashboard(duration time.Duration) {
	m.MetricsMap[MetricDashboardDuration].(prometheus.Histogram).Observe(duration.Seconds())
}
