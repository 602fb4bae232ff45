// Package metrics expone métricas Prometheus del API: peticiones HTTP y
// llamadas a procedimientos almacenados.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Resultados posibles de una llamada a procedimiento
const (
	OutcomeOK     = "ok"
	OutcomeRaised = "raised"
	OutcomeFailed = "failed"
)

const (
	defaultNamespace   = "dicri"
	defaultSubsystem   = "api"
	procedureSubsystem = "db"
)

// Manager agrupa los colectores del servicio sobre un registro propio.
type Manager struct {
	namespace string
	registry  *prometheus.Registry
	buckets   []float64

	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	procedureCalls      *prometheus.CounterVec
	procedureDuration   *prometheus.HistogramVec
}

// Option configura un Manager
type Option func(*Manager)

// WithNamespace cambia el namespace de las métricas
func WithNamespace(ns string) Option {
	return func(m *Manager) {
		if ns != "" {
			m.namespace = ns
		}
	}
}

// WithBuckets define los buckets de los histogramas en segundos
func WithBuckets(b []float64) Option {
	return func(m *Manager) {
		if len(b) > 0 {
			m.buckets = b
		}
	}
}

// WithRuntimeCollectors registra los colectores de Go y del proceso
func WithRuntimeCollectors() Option {
	return func(m *Manager) {
		m.registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}
}

// NewManager crea un Manager con su propio registro
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace: defaultNamespace,
		registry:  prometheus.NewRegistry(),
		buckets:   prometheus.DefBuckets,
	}
	for _, opt := range opts {
		opt(m)
	}

	auto := promauto.With(m.registry)
	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: defaultSubsystem,
		Name:      "http_requests_total",
		Help:      "Total de peticiones HTTP atendidas",
	}, []string{"method", "route", "status"})

	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: defaultSubsystem,
		Name:      "http_request_duration_seconds",
		Help:      "Duración de las peticiones HTTP",
		Buckets:   m.buckets,
	}, []string{"method", "route"})

	m.procedureCalls = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: procedureSubsystem,
		Name:      "procedure_calls_total",
		Help:      "Total de llamadas a procedimientos almacenados",
	}, []string{"procedure", "outcome"})

	m.procedureDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: procedureSubsystem,
		Name:      "procedure_duration_seconds",
		Help:      "Duración de las llamadas a procedimientos almacenados",
		Buckets:   m.buckets,
	}, []string{"procedure"})

	return m
}

// ObserveHTTP registra una petición atendida
func (m *Manager) ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpRequestDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// ObserveProcedure registra una llamada a un procedimiento almacenado
func (m *Manager) ObserveProcedure(procedure, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.procedureCalls.WithLabelValues(procedure, outcome).Inc()
	m.procedureDuration.WithLabelValues(procedure).Observe(elapsed.Seconds())
}

// Registry retorna el registro subyacente
func (m *Manager) Registry() *prometheus.Registry {
	return m.registry
}

// Handler retorna el handler HTTP de exposición
func (m *Manager) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
