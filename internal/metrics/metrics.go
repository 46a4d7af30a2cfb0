// Package metrics содержит Prometheus-метрики сервиса.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTP
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"route", "method", "status"},
	)
	RequestLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_requests_latency_seconds",
			Help:    "Latency of HTTP requests.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)

	// Журнал аудита
	AuditLogsRecorded = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "audit_logs_recorded_total",
			Help: "Audit log entries written",
		},
		[]string{"action", "entity_type"},
	)
	AuditLogsFailed = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "audit_logs_failed_total",
			Help: "Audit log writes that failed",
		},
	)
	AuditLogsPurged = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "audit_logs_purged_total",
			Help: "Audit log entries removed by retention",
		},
	)

	// Каталог RevenueCat
	CatalogFallbacks = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "revenuecat_catalog_fallbacks_total",
			Help: "Plan listings served from local data because the catalog was unavailable",
		},
		[]string{"reason"}, // not_configured|status|unavailable|error
	)

	initOnce sync.Once
)

// Handler отдаёт метрики для /metrics.
var Handler = promhttp.Handler

// Init регистрирует метрики в реестре по умолчанию. Повторные вызовы безопасны.
func Init() {
	initOnce.Do(func() {
		prometheus.MustRegister(
			RequestsTotal,
			RequestLatency,
			AuditLogsRecorded,
			AuditLogsFailed,
			AuditLogsPurged,
			CatalogFallbacks,
		)
	})
}
