package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics_NilReceiverIsNoop(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.ObserveHTTP("GET", "/x", 200, time.Millisecond)
		m.ObserveDBQuery("select", time.Millisecond, nil)
		m.CacheLookup("bookings", "hit")
		m.ForecastFailed()
		m.FallbackDays(3)
		m.PlaceholdersRegenerated(1, 2)
		m.DraftGesture("created")
	})
}

func TestMetrics_Counters(t *testing.T) {
	m := NewWithRegisterer("test", prometheus.NewRegistry())

	m.CacheLookup("bookings", "hit")
	m.CacheLookup("bookings", "hit")
	m.CacheLookup("bookings", "miss")
	m.ObserveDBQuery("exec", time.Millisecond, errors.New("boom"))
	m.FallbackDays(4)
	m.FallbackDays(0)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.cacheRequests.WithLabelValues("bookings", "hit")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.cacheRequests.WithLabelValues("bookings", "miss")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.dbQueries.WithLabelValues("exec", "error")))
	assert.Equal(t, 4.0, testutil.ToFloat64(m.fallbackDays))
}
