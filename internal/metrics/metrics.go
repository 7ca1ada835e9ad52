package metrics

import (
	"bufio"
	"errors"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/napolitain/citysim/internal/sim"
)

// Metrics holds the city and HTTP collectors
type Metrics struct {
	budget       *prometheus.GaugeVec
	population   *prometheus.GaugeVec
	clock        *prometheus.GaugeVec
	activeStages *prometheus.GaugeVec
	revenue      *prometheus.CounterVec
	placements   *prometheus.CounterVec

	httpRequestsTotal *prometheus.CounterVec
	httpDuration      *prometheus.HistogramVec

	gatherer prometheus.Gatherer
}

// NewMetrics creates the collectors and registers them with reg. A nil reg
// uses the default registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	var gatherer prometheus.Gatherer = prometheus.DefaultGatherer
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	} else if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	m := &Metrics{
		budget: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "citysim_budget",
			Help: "Current city budget.",
		}, []string{"session"}),
		population: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "citysim_population",
			Help: "Current resident count.",
		}, []string{"session"}),
		clock: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "citysim_clock_seconds",
			Help: "Simulated session time in seconds.",
		}, []string{"session"}),
		activeStages: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "citysim_active_stages",
			Help: "Number of activated timeline stages.",
		}, []string{"session"}),
		revenue: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "citysim_revenue_total",
			Help: "Total revenue credited by revenue passes.",
		}, []string{"session"}),
		placements: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "citysim_placements_total",
			Help: "Placement attempts by result.",
		}, []string{"result"}),
		httpRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "citysim_http_requests_total",
			Help: "Total count of HTTP requests processed by route and status.",
		}, []string{"route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "citysim_http_request_duration_seconds",
			Help:    "Histogram of HTTP request durations by route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
		gatherer: gatherer,
	}

	reg.MustRegister(
		m.budget,
		m.population,
		m.clock,
		m.activeStages,
		m.revenue,
		m.placements,
		m.httpRequestsTotal,
		m.httpDuration,
	)
	return m
}

// Handler serves the registered metrics
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

// RecordPlacement counts a placement attempt under its result code
func (m *Metrics) RecordPlacement(err error) {
	if m == nil {
		return
	}
	m.placements.WithLabelValues(sim.Code(err)).Inc()
}

// Forget drops the per-session series of a closed session
func (m *Metrics) Forget(session string) {
	if m == nil {
		return
	}
	m.budget.DeleteLabelValues(session)
	m.population.DeleteLabelValues(session)
	m.clock.DeleteLabelValues(session)
	m.activeStages.DeleteLabelValues(session)
	m.revenue.DeleteLabelValues(session)
}

// Publisher returns a per-tick service that refreshes the session gauges
func (m *Metrics) Publisher(session string) sim.Service {
	budget := m.budget.WithLabelValues(session)
	population := m.population.WithLabelValues(session)
	clock := m.clock.WithLabelValues(session)
	stages := m.activeStages.WithLabelValues(session)

	return sim.ServiceFunc(func(c *sim.City, _ time.Duration) {
		state := c.State()
		budget.Set(c.Budget())
		population.Set(float64(c.Population()))
		clock.Set(state.Clock.Seconds())
		stages.Set(float64(len(state.Timeline.ActiveStages())))
	})
}

// Observer returns an observer counting credited revenue for the session
func (m *Metrics) Observer(session string) sim.Observer {
	revenue := m.revenue.WithLabelValues(session)
	return sim.ObserverFunc(func(e sim.Event) {
		if e.Kind == sim.EventRevenueCredited && e.Amount > 0 {
			revenue.Add(e.Amount)
		}
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(status int) {
	s.status = status
	s.ResponseWriter.WriteHeader(status)
}

// Hijack lets websocket upgrades pass through the recorder
func (s *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := s.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response writer does not support hijacking")
	}
	return h.Hijack()
}

// WrapHandler records request counts and durations for a route
func (m *Metrics) WrapHandler(route string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()

		next.ServeHTTP(recorder, r)

		if m != nil {
			m.httpRequestsTotal.WithLabelValues(route, strconv.Itoa(recorder.status)).Inc()
			m.httpDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
		}
	})
}
