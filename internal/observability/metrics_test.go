package observability

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestNewMetrics_PrivateRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics("test", reg)

	m.ToolCallsTotal.WithLabelValues("dexscreener_token_details", "success").Inc()
	m.ToolCallsTotal.WithLabelValues("dexscreener_token_details", "success").Inc()

	assert.Equal(t, 2.0, testutil.ToFloat64(m.ToolCallsTotal.WithLabelValues("dexscreener_token_details", "success")))

	families, err := reg.Gather()
	assert.NoError(t, err)
	assert.NotEmpty(t, families)
}

func TestRecordAnalysis(t *testing.T) {
	before := testutil.ToFloat64(DefaultMetrics.EarlyExitsTotal)

	RecordAnalysis("CRITICAL", 1.5, true, 1700000000)

	assert.Equal(t, before+1, testutil.ToFloat64(DefaultMetrics.EarlyExitsTotal))
	assert.Equal(t, 1700000000.0, testutil.ToFloat64(DefaultMetrics.LastSuccessfulAnalysis))
}
