package utils

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics содержит метрики приложения
type Metrics struct {
	mu sync.RWMutex

	// Метрики запросов
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Метрики кассовых смен
	operationsTotal *prometheus.CounterVec
	openedFences    prometheus.Counter
	closedFences    prometheus.Counter

	// Метрики ошибок
	ErrorCount    int64
	LastErrorTime time.Time
}

var (
	metrics     *Metrics
	metricsOnce sync.Once
)

// GetMetrics возвращает экземпляр метрик, регистрируя их в prometheus при первом вызове
func GetMetrics() *Metrics {
	metricsOnce.Do(func() {
		metrics = &Metrics{
			httpRequestsTotal: prometheus.NewCounterVec(
				prometheus.CounterOpts{
					Name: "cashcontrol_http_requests_total",
					Help: "Total number of HTTP requests",
				},
				[]string{"method", "endpoint", "status"},
			),
			httpRequestDuration: prometheus.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "cashcontrol_http_request_duration_seconds",
					Help:    "HTTP request duration in seconds",
					Buckets: prometheus.DefBuckets,
				},
				[]string{"method", "endpoint"},
			),
			operationsTotal: prometheus.NewCounterVec(
				prometheus.CounterOpts{
					Name: "cashcontrol_cash_fence_operations_total",
					Help: "Cash fence operations by result",
				},
				[]string{"operation", "result"},
			),
			openedFences: prometheus.NewCounter(prometheus.CounterOpts{
				Name: "cashcontrol_cash_fences_opened_total",
				Help: "Cash fences opened",
			}),
			closedFences: prometheus.NewCounter(prometheus.CounterOpts{
				Name: "cashcontrol_cash_fences_closed_total",
				Help: "Cash fences closed",
			}),
		}

		prometheus.MustRegister(
			metrics.httpRequestsTotal,
			metrics.httpRequestDuration,
			metrics.operationsTotal,
			metrics.openedFences,
			metrics.closedFences,
		)
	})
	return metrics
}

// RecordRequest записывает метрики HTTP-запроса
func (m *Metrics) RecordRequest(method, endpoint string, status int, duration time.Duration) {
	if endpoint == "" {
		endpoint = "unknown"
	}
	m.httpRequestsTotal.WithLabelValues(method, endpoint, strconv.Itoa(status)).Inc()
	m.httpRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// RecordCashFenceOperation записывает метрики операции с кассовой сменой
func (m *Metrics) RecordCashFenceOperation(operation string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
		m.RecordError()
	}
	m.operationsTotal.WithLabelValues(operation, result).Inc()

	if err != nil {
		return
	}
	switch operation {
	case "create":
		m.openedFences.Inc()
	case "close":
		m.closedFences.Inc()
	}
}

// RecordError записывает метрики ошибки
func (m *Metrics) RecordError() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.ErrorCount++
	m.LastErrorTime = time.Now()
}

// GetMetricsSnapshot возвращает снимок счетчиков ошибок
func (m *Metrics) GetMetricsSnapshot() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return map[string]interface{}{
		"error_count":     m.ErrorCount,
		"last_error_time": m.LastErrorTime,
	}
}

// RecordOperation записывает результат операции в общие метрики
func RecordOperation(operation string, err error) {
	GetMetrics().RecordCashFenceOperation(operation, err)
}
