package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestNewMetrics_Shared(t *testing.T) {
	assert.Same(t, NewMetrics(), NewMetrics())
}

func TestRecord(t *testing.T) {
	m := NewMetrics()

	before := testutil.ToFloat64(m.Answers.WithLabelValues("correct"))
	m.RecordAnswer(true)
	assert.Equal(t, before+1, testutil.ToFloat64(m.Answers.WithLabelValues("correct")))

	before = testutil.ToFloat64(m.Generations.WithLabelValues("mock", "ok"))
	m.RecordGeneration("mock", "ok", 0.5)
	assert.Equal(t, before+1, testutil.ToFloat64(m.Generations.WithLabelValues("mock", "ok")))

	before = testutil.ToFloat64(m.DrawFailures)
	m.RecordDrawFailure()
	assert.Equal(t, before+1, testutil.ToFloat64(m.DrawFailures))
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecordGeneration("mock", "ok", 1)
		m.RecordProviderBuild("mock")
		m.RecordSessionStarted()
		m.RecordSessionEnded()
		m.RecordAnswer(false)
		m.RecordDrawFailure()
		m.RecordProficiencyUpdate(true)
		m.RecordHTTPRequest("GET", "/terms", "200", 0.01)
	})
}
