package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitIsIdempotent(t *testing.T) {
	Init()
	first := IngestionsTotal
	require.NotPanics(t, Init)
	assert.Same(t, first, IngestionsTotal)
}

func TestCountersIncrement(t *testing.T) {
	Init()

	c := IngestionsTotal.WithLabelValues("failed", "metrics_test")
	before := testutil.ToFloat64(c)
	c.Inc()
	assert.InDelta(t, before+1, testutil.ToFloat64(c), 0.0001)

	before = testutil.ToFloat64(AmenitiesFlagged)
	AmenitiesFlagged.Add(2)
	assert.InDelta(t, before+2, testutil.ToFloat64(AmenitiesFlagged), 0.0001)
}
