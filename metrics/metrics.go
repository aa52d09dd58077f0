package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "checkout_survey"

// Collector giữ các metric của service trên một registry riêng.
// Mọi phương thức an toàn khi Collector là nil.
type Collector struct {
	registry *prometheus.Registry

	HTTPRequestsTotal     *prometheus.CounterVec
	HTTPRequestDuration   *prometheus.HistogramVec
	ResponseUpserts       *prometheus.CounterVec
	QuestionnaireSteps    *prometheus.CounterVec
	ExportJobs            *prometheus.CounterVec
	RateLimited           *prometheus.CounterVec
	QuestionnaireSessions *prometheus.CounterVec
}

func New() *Collector {
	reg := prometheus.NewRegistry()
	c := &Collector{
		registry: reg,
		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		}, []string{"method", "path", "status_code"}),
		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "path"}),
		ResponseUpserts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "response_upserts_total",
			Help:      "Buyer response upserts by result",
		}, []string{"result"}),
		QuestionnaireSteps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "questionnaire_steps_total",
			Help:      "Questionnaire session inputs by action and outcome",
		}, []string{"action", "outcome"}),
		ExportJobs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "export_jobs_total",
			Help:      "Finished export jobs by format and status",
		}, []string{"format", "status"}),
		RateLimited: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rate_limited_total",
			Help:      "Public requests rejected by the per-IP limiter",
		}, []string{"path"}),
		QuestionnaireSessions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "questionnaire_sessions_total",
			Help:      "Questionnaire session lifecycle events (started, finished, abandoned)",
		}, []string{"event"}),
	}
	reg.MustRegister(
		c.HTTPRequestsTotal,
		c.HTTPRequestDuration,
		c.ResponseUpserts,
		c.QuestionnaireSteps,
		c.ExportJobs,
		c.RateLimited,
		c.QuestionnaireSessions,
	)
	return c
}

// Handler phục vụ /metrics.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

func (c *Collector) Registry() *prometheus.Registry { return c.registry }

func (c *Collector) RecordHTTPRequest(method, path string, statusCode int, d time.Duration) {
	if c == nil {
		return
	}
	c.HTTPRequestsTotal.WithLabelValues(method, path, strconv.Itoa(statusCode)).Inc()
	c.HTTPRequestDuration.WithLabelValues(method, path).Observe(d.Seconds())
}

func (c *Collector) RecordUpsert(result string) {
	if c == nil {
		return
	}
	c.ResponseUpserts.WithLabelValues(result).Inc()
}

func (c *Collector) RecordStep(action, outcome string) {
	if c == nil {
		return
	}
	c.QuestionnaireSteps.WithLabelValues(action, outcome).Inc()
}

func (c *Collector) RecordExport(format, status string) {
	if c == nil {
		return
	}
	c.ExportJobs.WithLabelValues(format, status).Inc()
}

func (c *Collector) RecordRateLimited(path string) {
	if c == nil {
		return
	}
	c.RateLimited.WithLabelValues(path).Inc()
}

// SessionStarted đếm phiên mới. Phiên hết TTL không sinh sự kiện nào nên
// không có gauge "đang mở"; dùng started - finished - abandoned.
func (c *Collector) SessionStarted() { c.sessionEvent("started") }

func (c *Collector) SessionFinished() { c.sessionEvent("finished") }

// SessionAbandoned: phiên bị đóng trước khi tới trạng thái kết thúc.
func (c *Collector) SessionAbandoned() { c.sessionEvent("abandoned") }

func (c *Collector) sessionEvent(event string) {
	if c == nil {
		return
	}
	c.QuestionnaireSessions.WithLabelValues(event).Inc()
}
