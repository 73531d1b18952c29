package observability

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics_RecordRequest(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry(), "vote")

	m.RecordRequest("GET /api/infrastructures", 200, 12*time.Millisecond)
	m.RecordRequest("GET /api/infrastructures", 200, 3*time.Millisecond)
	m.RecordRequest("GET /api/infrastructures", 500, time.Millisecond)

	assert.Equal(t, float64(2), testutil.ToFloat64(m.RequestsTotal.WithLabelValues("GET /api/infrastructures", "200")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.RequestsTotal.WithLabelValues("GET /api/infrastructures", "500")))
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecordRequest("op", 200, time.Second)
		m.RecordOperation("op", true, time.Second)
	})
}
