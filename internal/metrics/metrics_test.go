package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorder_ObserveOperation(t *testing.T) {
	r := NewRecorder()

	r.ObserveOperation("deploy", OutcomeSuccess, time.Second)
	r.ObserveOperation("deploy", OutcomeSuccess, 2*time.Second)
	r.ObserveOperation("cancel", OutcomeError, time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(r.operationsTotal.WithLabelValues("deploy", OutcomeSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.operationsTotal.WithLabelValues("cancel", OutcomeError)))
	assert.Equal(t, 2, testutil.CollectAndCount(r.operationDuration))
}

func TestRecorder_ObserveRelease(t *testing.T) {
	r := NewRecorder()

	r.ObserveRelease("client", nil)
	r.ObserveRelease("descriptor", errors.New("boom"))

	assert.Equal(t, 1.0, testutil.ToFloat64(r.releasesTotal.WithLabelValues("client", OutcomeSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.releasesTotal.WithLabelValues("descriptor", OutcomeError)))
}

func TestRecorder_NilIsNoop(t *testing.T) {
	var r *Recorder

	assert.NotPanics(t, func() {
		r.ObserveOperation("deploy", OutcomeSuccess, time.Second)
		r.ObserveRelease("client", nil)
	})
	assert.NotNil(t, r.Handler())
}

func TestRecorder_Handler(t *testing.T) {
	r := NewRecorder()
	r.ObserveOperation("shutdown", OutcomeSuccess, time.Second)

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), `sessionctl_operations_total{operation="shutdown",outcome="success"} 1`))
}
