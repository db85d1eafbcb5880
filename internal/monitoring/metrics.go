package monitoring

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics 监控指标
type Metrics struct {
	// HTTP 请求指标
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	HTTPRequestSize     *prometheus.HistogramVec
	HTTPResponseSize    *prometheus.HistogramVec

	// 消息指标
	MessagesDelivered *prometheus.CounterVec
	MessagesRejected  *prometheus.CounterVec
	InboxQueries      prometheus.Counter
	InboxCacheHits    prometheus.Counter

	// 用户指标
	UsersRegistered prometheus.Counter
	LoginAttempts   *prometheus.CounterVec

	// 私密链接指标
	PrivateLinksIssued prometheus.Counter
	PrivateLinkDenials prometheus.Counter

	// 错误指标
	ErrorsTotal *prometheus.CounterVec
	PanicsTotal prometheus.Counter
}

// NewMetrics 创建监控指标
func NewMetrics() *Metrics {
	return &Metrics{
		// HTTP 请求指标
		HTTPRequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "wazmoi_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "endpoint", "status_code"},
		),

		HTTPRequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "wazmoi_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "endpoint"},
		),

		HTTPRequestSize: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "wazmoi_http_request_size_bytes",
				Help:    "HTTP request size in bytes",
				Buckets: prometheus.ExponentialBuckets(100, 10, 8),
			},
			[]string{"method", "endpoint"},
		),

		HTTPResponseSize: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "wazmoi_http_response_size_bytes",
				Help:    "HTTP response size in bytes",
				Buckets: prometheus.ExponentialBuckets(100, 10, 8),
			},
			[]string{"method", "endpoint"},
		),

		// 消息指标
		MessagesDelivered: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "wazmoi_messages_delivered_total",
				Help: "Total number of messages delivered",
			},
			[]string{"anonymous"},
		),

		MessagesRejected: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "wazmoi_messages_rejected_total",
				Help: "Total number of message deliveries rejected",
			},
			[]string{"reason"},
		),

		InboxQueries: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "wazmoi_inbox_queries_total",
				Help: "Total number of inbox queries",
			},
		),

		InboxCacheHits: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "wazmoi_inbox_cache_hits_total",
				Help: "Total number of inbox queries served from cache",
			},
		),

		// 用户指标
		UsersRegistered: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "wazmoi_users_registered_total",
				Help: "Total number of users registered",
			},
		),

		LoginAttempts: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "wazmoi_login_attempts_total",
				Help: "Total number of login attempts",
			},
			[]string{"result"},
		),

		// 私密链接指标
		PrivateLinksIssued: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "wazmoi_private_links_issued_total",
				Help: "Total number of private links issued",
			},
		),

		PrivateLinkDenials: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "wazmoi_private_link_denials_total",
				Help: "Total number of private link accesses denied",
			},
		),

		// 错误指标
		ErrorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "wazmoi_errors_total",
				Help: "Total number of errors",
			},
			[]string{"type", "component"},
		),

		PanicsTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "wazmoi_panics_total",
				Help: "Total number of recovered panics",
			},
		),
	}
}

// RecordHTTPRequest 记录 HTTP 请求指标
func (m *Metrics) RecordHTTPRequest(method, endpoint, statusCode string, duration time.Duration, requestSize, responseSize int64) {
	m.HTTPRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
	m.HTTPRequestSize.WithLabelValues(method, endpoint).Observe(float64(requestSize))
	m.HTTPResponseSize.WithLabelValues(method, endpoint).Observe(float64(responseSize))
}

// RecordMessageDelivered 记录消息投递
func (m *Metrics) RecordMessageDelivered(anonymous bool) {
	label := "false"
	if anonymous {
		label = "true"
	}
	m.MessagesDelivered.WithLabelValues(label).Inc()
}

// RecordMessageRejected 记录消息投递拒绝
func (m *Metrics) RecordMessageRejected(reason string) {
	m.MessagesRejected.WithLabelValues(reason).Inc()
}

// RecordInboxQuery 记录收件箱查询
func (m *Metrics) RecordInboxQuery(cacheHit bool) {
	m.InboxQueries.Inc()
	if cacheHit {
		m.InboxCacheHits.Inc()
	}
}

// RecordUserRegistered 记录用户注册
func (m *Metrics) RecordUserRegistered() {
	m.UsersRegistered.Inc()
}

// RecordLoginAttempt 记录登录尝试
func (m *Metrics) RecordLoginAttempt(success bool) {
	result := "failure"
	if success {
		result = "success"
	}
	m.LoginAttempts.WithLabelValues(result).Inc()
}

// RecordPrivateLinkIssued 记录私密链接签发
func (m *Metrics) RecordPrivateLinkIssued() {
	m.PrivateLinksIssued.Inc()
}

// RecordPrivateLinkDenial 记录私密链接拒绝
func (m *Metrics) RecordPrivateLinkDenial() {
	m.PrivateLinkDenials.Inc()
}

// RecordError 记录错误
func (m *Metrics) RecordError(errorType, component string) {
	m.ErrorsTotal.WithLabelValues(errorType, component).Inc()
}

// RecordPanic 记录 panic
func (m *Metrics) RecordPanic() {
	m.PanicsTotal.Inc()
}

// HTTPHandler 返回 Prometheus HTTP 处理器
func (m *Metrics) HTTPHandler() http.Handler {
	return promhttp.Handler()
}
