package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Counters(t *testing.T) {
	m := New()

	m.ObserveRequest("/api/decks", "GET", 200, 5*time.Millisecond)
	m.ObserveRequest("/api/decks", "GET", 200, 5*time.Millisecond)
	m.ShareAccess("granted")
	m.ShareAccess("expired")
	m.Tracked("file_open")
	m.Uploaded(1024)
	m.Uploaded(-1)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.httpRequests.WithLabelValues("/api/decks", "GET", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.shareAccess.WithLabelValues("expired")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.tracked.WithLabelValues("file_open")))
	assert.Equal(t, 1024.0, testutil.ToFloat64(m.uploadBytes))
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.ObserveRequest("", "GET", 404, time.Millisecond)
		m.ShareAccess("granted")
		m.Tracked("page_view")
		m.Uploaded(10)
	})
	assert.Nil(t, m.Registry())
}

func TestMetrics_Handler(t *testing.T) {
	m := New()
	m.ShareAccess("granted")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `deckshare_share_access_total{outcome="granted"} 1`)
}
