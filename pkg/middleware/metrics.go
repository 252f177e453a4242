package middleware

import (
	"context"
	"errors"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/vango-dev/resumeup/pkg/upload"
)

// MetricsConfig configures the Prometheus metrics middleware.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "resumeup").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for upload duration.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// MetricsOption configures the Prometheus metrics middleware.
type MetricsOption func(*MetricsConfig)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) MetricsOption {
	return func(c *MetricsConfig) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the duration histogram buckets.
func WithBuckets(buckets []float64) MetricsOption {
	return func(c *MetricsConfig) {
		c.Buckets = buckets
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) MetricsOption {
	return func(c *MetricsConfig) {
		c.Registry = registry
	}
}

func defaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Namespace: "resumeup",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Upload status label values.
const (
	StatusSuccess  = "success"
	StatusRejected = "rejected"
	StatusError    = "error"
)

// Metrics holds the upload collectors.
type Metrics struct {
	uploadsTotal   *prometheus.CounterVec
	uploadDuration prometheus.Histogram
	uploadErrors   *prometheus.CounterVec
	requestBytes   prometheus.Histogram
	inFlight       prometheus.Gauge
}

// globalMetrics is created on the first call to Prometheus().
var (
	globalMetrics   *Metrics
	globalMetricsMu sync.Mutex
)

// NewMetrics creates and registers the upload collectors.
// It panics if they are already registered on the configured registry.
func NewMetrics(opts ...MetricsOption) *Metrics {
	config := defaultMetricsConfig()
	for _, opt := range opts {
		opt(&config)
	}
	factory := promauto.With(config.Registry)

	return &Metrics{
		uploadsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "uploads_total",
			Help:        "Total number of resume uploads by outcome",
			ConstLabels: config.ConstLabels,
		}, []string{"status"}),

		uploadDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "upload_duration_seconds",
			Help:        "Upload round trip duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}),

		uploadErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "upload_errors_total",
			Help:        "Total number of failed uploads by error type",
			ConstLabels: config.ConstLabels,
		}, []string{"error_type"}),

		requestBytes: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "upload_request_bytes",
			Help:        "Size of multipart upload bodies in bytes",
			ConstLabels: config.ConstLabels,
			Buckets:     []float64{1024, 10240, 102400, 1048576, 10485760}, // 1KB to 10MB
		}),

		inFlight: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "uploads_in_flight",
			Help:        "Number of uploads waiting for a response",
			ConstLabels: config.ConstLabels,
		}),
	}
}

// Prometheus creates middleware that collects upload metrics.
//
// Metrics collected:
//   - resumeup_uploads_total: Counter of uploads by status (success, rejected, error)
//   - resumeup_upload_duration_seconds: Histogram of round trip duration
//   - resumeup_upload_errors_total: Counter of failures by error type
//   - resumeup_upload_request_bytes: Histogram of body sizes
//   - resumeup_uploads_in_flight: Gauge of pending uploads
//
// The collectors are created once per process. Options only take effect on
// the first call; use NewMetrics for independent collector sets.
//
// Example:
//
//	h := upload.New(input, transport,
//	    upload.WithMiddleware(middleware.Prometheus(middleware.WithNamespace("careers"))),
//	)
func Prometheus(opts ...MetricsOption) upload.Middleware {
	globalMetricsMu.Lock()
	if globalMetrics == nil {
		globalMetrics = NewMetrics(opts...)
	}
	m := globalMetrics
	globalMetricsMu.Unlock()

	return m.Middleware()
}

// Middleware returns transport middleware recording into m.
func (m *Metrics) Middleware() upload.Middleware {
	return func(next upload.Transport) upload.Transport {
		return upload.TransportFunc(func(ctx context.Context, req *upload.Request) (*upload.Response, error) {
			if req.Size > 0 {
				m.requestBytes.Observe(float64(req.Size))
			}

			m.inFlight.Inc()
			start := time.Now()
			resp, err := next.RoundTrip(ctx, req)
			m.uploadDuration.Observe(time.Since(start).Seconds())
			m.inFlight.Dec()

			switch {
			case err != nil:
				m.uploadsTotal.WithLabelValues(StatusError).Inc()
				m.uploadErrors.WithLabelValues(categorizeError(err)).Inc()
			case resp == nil:
				m.uploadsTotal.WithLabelValues(StatusError).Inc()
				m.uploadErrors.WithLabelValues("no_response").Inc()
			case !resp.OK():
				m.uploadsTotal.WithLabelValues(StatusRejected).Inc()
				m.uploadErrors.WithLabelValues(categorizeStatus(resp.StatusCode)).Inc()
			default:
				m.uploadsTotal.WithLabelValues(StatusSuccess).Inc()
			}
			return resp, err
		})
	}
}

// categorizeError keeps error_type low-cardinality.
func categorizeError(err error) string {
	var dnsErr *net.DNSError
	var netErr net.Error
	switch {
	case errors.Is(err, context.Canceled):
		return "canceled"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.As(err, &dnsErr):
		return "dns"
	case errors.As(err, &netErr) && netErr.Timeout():
		return "timeout"
	}

	errStr := strings.ToLower(err.Error())
	switch {
	case strings.Contains(errStr, "timeout"):
		return "timeout"
	case strings.Contains(errStr, "connection refused"):
		return "connection_refused"
	case strings.Contains(errStr, "connection reset"), strings.Contains(errStr, "eof"):
		return "connection_reset"
	case strings.Contains(errStr, "tls"), strings.Contains(errStr, "certificate"):
		return "tls"
	default:
		return "transport"
	}
}

func categorizeStatus(code int) string {
	switch {
	case code == 413:
		return "too_large"
	case code >= 500:
		return "server_error"
	case code >= 400:
		return "client_error"
	default:
		return "unexpected_status"
	}
}
