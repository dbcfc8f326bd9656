package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics_Counters(t *testing.T) {
	m := MustNew(prometheus.NewRegistry())

	m.Reservation("success")
	m.Reservation("conflict")
	m.Reservation("conflict")
	m.Transition("enrollment", "activate", "changed")
	m.RateLimitDenied("enrollment_cancel")

	assert.Equal(t, 1.0, testutil.ToFloat64(m.reservations.WithLabelValues("success")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.reservations.WithLabelValues("conflict")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.transitions.WithLabelValues("enrollment", "activate", "changed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.rateLimitDenials.WithLabelValues("enrollment_cancel")))
}

func TestMetrics_NilIsSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.Reservation("success")
		m.Transition("consultation", "confirm", "changed")
		m.RateLimitDenied("consultation_book")
	})
}
