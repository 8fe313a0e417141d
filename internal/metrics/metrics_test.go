package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveCheckout(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObserveCheckout("success", 120*time.Millisecond)
	m.ObserveCheckout("success", 80*time.Millisecond)
	m.ObserveCheckout("slot_conflict", 10*time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Checkouts.WithLabelValues("success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Checkouts.WithLabelValues("slot_conflict")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.CheckoutSeconds))
}

func TestHandlerExposesRegistry(t *testing.T) {
	m := New(prometheus.NewRegistry())
	m.ObserveRequest("/v1/checkout", http.StatusConflict, 5*time.Millisecond)
	m.ObserveRelay("written")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `drivein_http_requests_total{route="/v1/checkout",status="Conflict"} 1`)
	assert.Contains(t, body, `drivein_notifications_relayed_total{result="written"} 1`)
}
