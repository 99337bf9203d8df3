package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Counters(t *testing.T) {
	m := New()

	m.ObserveHTTP("GET", "/items/{id}", 200, 10*time.Millisecond)
	m.ObserveHTTP("GET", "/items/{id}", 200, 20*time.Millisecond)
	m.ObserveHTTP("POST", "/auth/sign-in", 400, time.Millisecond)
	require.Equal(t, 2.0, testutil.ToFloat64(m.RequestCount.WithLabelValues("GET", "/items/{id}", "200")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.RequestCount.WithLabelValues("POST", "/auth/sign-in", "400")))
	require.Equal(t, 2, testutil.CollectAndCount(m.RequestDuration))

	m.AuthEvent("sign_in", "ok")
	m.AuthEvent("sign_in", "INVALID_CREDENTIALS")
	m.AuthEvent("sign_in", "ok")
	require.Equal(t, 2.0, testutil.ToFloat64(m.AuthEvents.WithLabelValues("sign_in", "ok")))

	m.Propagated(2)
	m.Propagated(0)
	m.Propagated(3)
	require.Equal(t, 5.0, testutil.ToFloat64(m.Propagation))
}

func TestMetrics_Handler(t *testing.T) {
	m := New()
	m.Propagated(1)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	require.Equal(t, 200, rec.Code)

	body, _ := io.ReadAll(rec.Body)
	require.True(t, strings.Contains(string(body), "inventory_propagated_records_total 1"))
	require.True(t, strings.Contains(string(body), "go_goroutines"))
}
