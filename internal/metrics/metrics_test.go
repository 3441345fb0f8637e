package metrics

import (
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics(t *testing.T) {
	m := New()
	m.AttributeWritten("play")
	m.AttributeWritten("play")
	m.AttributeWritten("seek")
	m.WriteRejected()
	m.SetConnectedParticipants(3)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.attributeWrites.WithLabelValues("play")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.rejectedWrites))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.connectedParticipants))

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	assert.Contains(t, rec.Body.String(), `mediasync_attribute_writes_total{field="seek"} 1`)
}
