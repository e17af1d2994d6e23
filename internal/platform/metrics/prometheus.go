package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/Abdurahmanit/GroupProject/photocard-service/internal/platform/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	CacheHit  = "hit"
	CacheMiss = "miss"
	CacheFail = "error"
)

// MetricsManager holds the service's Prometheus collectors.
type MetricsManager struct {
	Registry               *prometheus.Registry
	ListingsCreatedTotal   prometheus.Counter
	ListingsDeletedTotal   prometheus.Counter
	PurchasesTotal         *prometheus.CounterVec // by outcome
	PhotocardsCreatedTotal prometheus.Counter
	PhotocardsDeletedTotal prometheus.Counter
	ImageCacheLookupsTotal *prometheus.CounterVec
	ObserverPanicsTotal    *prometheus.CounterVec
	ActiveSessions         prometheus.Gauge
	APIErrorsTotal         *prometheus.CounterVec
	APILatency             *prometheus.HistogramVec
}

func NewMetricsManager(namespace string) *MetricsManager {
	registry := prometheus.NewRegistry()

	m := &MetricsManager{
		Registry: registry,
		ListingsCreatedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "listings_created_total",
			Help:      "Total number of sale listings written to the market.",
		}),
		ListingsDeletedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "listings_deleted_total",
			Help:      "Total number of sale listings retired by their seller.",
		}),
		PurchasesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "purchases_total",
			Help:      "Total number of purchase attempts by outcome.",
		}, []string{"outcome"}),
		PhotocardsCreatedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "photocards_created_total",
			Help:      "Total number of photocards uploaded.",
		}),
		PhotocardsDeletedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "photocards_deleted_total",
			Help:      "Total number of photocards deleted.",
		}),
		ImageCacheLookupsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "image_cache_lookups_total",
			Help:      "Local image cache lookups by result.",
		}, []string{"result"}),
		ObserverPanicsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "observer_panics_total",
			Help:      "Subscribers that panicked while receiving a notification, by topic.",
		}, []string{"topic"}),
		ActiveSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_sessions",
			Help:      "Number of live user sessions.",
		}),
		APIErrorsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "api_errors_total",
			Help:      "Total number of API errors by route and status.",
		}, []string{"route", "status"}),
		APILatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "api_request_latency_seconds",
			Help:      "Latency of API requests by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
	}

	registry.MustRegister(
		m.ListingsCreatedTotal,
		m.ListingsDeletedTotal,
		m.PurchasesTotal,
		m.PhotocardsCreatedTotal,
		m.PhotocardsDeletedTotal,
		m.ImageCacheLookupsTotal,
		m.ObserverPanicsTotal,
		m.ActiveSessions,
		m.APIErrorsTotal,
		m.APILatency,
		prometheus.NewGoCollector(),
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
	)
	return m
}

// ObserverPanicked matches listener.PanicHook.
func (m *MetricsManager) ObserverPanicked(topic string) {
	m.ObserverPanicsTotal.WithLabelValues(topic).Inc()
}

func (m *MetricsManager) ImageCacheLookup(result string) {
	m.ImageCacheLookupsTotal.WithLabelValues(result).Inc()
}

// Server exposes the registry on /metrics until ctx is cancelled.
type Server struct {
	srv *http.Server
	log logger.Logger
}

func NewServer(port string, registry *prometheus.Registry, log logger.Logger) *Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	return &Server{
		srv: &http.Server{
			Addr:              ":" + port,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		},
		log: log,
	}
}

func (s *Server) Start() error {
	s.log.Infof("metrics server listening on %s/metrics", s.srv.Addr)
	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Stop(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
