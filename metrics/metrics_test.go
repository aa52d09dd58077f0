package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectorRecords(t *testing.T) {
	c := New()
	c.RecordHTTPRequest("GET", "/api/proxy/surveys", 200, 5*time.Millisecond)
	c.RecordUpsert("ok")
	c.RecordUpsert("ok")
	c.RecordUpsert("unknown_question")
	c.RecordStep("choose", "ok")
	c.RecordExport("csv", "done")
	c.SessionStarted()
	c.SessionStarted()
	c.SessionFinished()
	c.SessionAbandoned()

	assert.Equal(t, 2.0, testutil.ToFloat64(c.ResponseUpserts.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.ResponseUpserts.WithLabelValues("unknown_question")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.HTTPRequestsTotal.WithLabelValues("GET", "/api/proxy/surveys", "200")))
	assert.Equal(t, 2.0, testutil.ToFloat64(c.QuestionnaireSessions.WithLabelValues("started")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.QuestionnaireSessions.WithLabelValues("finished")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.QuestionnaireSessions.WithLabelValues("abandoned")))
}

func TestNilCollectorIsNoop(t *testing.T) {
	var c *Collector
	assert.NotPanics(t, func() {
		c.RecordHTTPRequest("GET", "/", 200, time.Millisecond)
		c.RecordUpsert("ok")
		c.RecordStep("advance", "ok")
		c.RecordExport("json", "failed")
		c.RecordRateLimited("/api/proxy/surveys")
		c.SessionStarted()
		c.SessionFinished()
		c.SessionAbandoned()
	})
}

func TestHandlerExposesMetrics(t *testing.T) {
	c := New()
	c.RecordExport("xlsx", "done")

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), `checkout_survey_export_jobs_total{format="xlsx",status="done"} 1`))
}
