package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRecorder() *Recorder {
	reg := prometheus.NewRegistry()
	return NewRecorderWith(reg, reg)
}

func TestRecorder_Outcomes(t *testing.T) {
	r := newTestRecorder()

	r.ObserveOutcome("resolve", "success", 20*time.Millisecond)
	r.ObserveOutcome("resolve", "success", 30*time.Millisecond)
	r.ObserveOutcome("promise_to_pay", "validation_error", time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(r.outcomes.WithLabelValues("resolve", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.outcomes.WithLabelValues("promise_to_pay", "validation_error")))
	assert.Equal(t, 2, testutil.CollectAndCount(r.outcomeDuration))
}

func TestRecorder_LookupsAndFieldChanges(t *testing.T) {
	r := newTestRecorder()

	r.ObserveLookup("cache_hit")
	r.ObserveLookup("success")
	r.ObserveLookup("success")
	r.ObserveFieldChanges("loan", 3)
	r.ObserveFieldChanges("customer", 0)

	assert.Equal(t, 2.0, testutil.ToFloat64(r.lookups.WithLabelValues("success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.lookups.WithLabelValues("cache_hit")))
	assert.Equal(t, 3.0, testutil.ToFloat64(r.fieldChanges.WithLabelValues("loan")))
	assert.Equal(t, 1, testutil.CollectAndCount(r.fieldChanges))
}

func TestRecorder_GinMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := newTestRecorder()

	router := gin.New()
	router.Use(r.GinMiddleware())
	router.GET("/api/fetch_user_profile_pre_call/", func(c *gin.Context) {
		c.Status(http.StatusNotFound)
	})

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/fetch_user_profile_pre_call/?caller_number=1", nil))
	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/nowhere", nil))

	assert.Equal(t, 1.0, testutil.ToFloat64(r.httpRequests.WithLabelValues(http.MethodGet, "/api/fetch_user_profile_pre_call/", "404")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.httpRequests.WithLabelValues(http.MethodGet, "unmatched", "404")))
}

func TestRecorder_Handler(t *testing.T) {
	r := NewRecorder()
	r.ObserveLookup("success")

	w := httptest.NewRecorder()
	r.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.True(t, strings.Contains(body, `callbridge_precall_lookups_total{result="success"} 1`))
	assert.Contains(t, body, "go_goroutines")
}

func TestRecorder_RegisterDBStats(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	r := newTestRecorder()
	require.NoError(t, r.RegisterDBStats(db, "callbridge"))
	assert.Error(t, r.RegisterDBStats(db, "callbridge"), "duplicate registration")

	w := httptest.NewRecorder()
	r.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Contains(t, w.Body.String(), `go_sql_max_open_connections{db_name="callbridge"}`)
}
