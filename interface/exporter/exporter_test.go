package exporter

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestUpdatesBeforeInitAreIgnored(t *testing.T) {
	require.Nil(t, GetCounter(METRIC_DEPOSIT_COUNT))
	IncErrorCount()
	SetGauge(METRIC_SHARE_PRICE, 1)
}

func TestCountersAndGauges(t *testing.T) {
	Init()
	Init()

	IncCounter(METRIC_DEPOSIT_COUNT)
	IncCounter(METRIC_DEPOSIT_COUNT)
	IncErrorCount()
	SetGauge(METRIC_SHARE_PRICE, 1.25)

	require.Equal(t, float64(2), testutil.ToFloat64(GetCounter(METRIC_DEPOSIT_COUNT)))
	require.Equal(t, float64(1), testutil.ToFloat64(GetCounter(METRIC_ERROR_COUNT)))
	require.Equal(t, 1.25, testutil.ToFloat64(gauges[METRIC_SHARE_PRICE]))
}
