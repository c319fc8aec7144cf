package exporter

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	METRIC_ERROR_COUNT    = "error_count"
	METRIC_DEPOSIT_COUNT  = "deposit_count"
	METRIC_WITHDRAW_COUNT = "withdraw_count"
	METRIC_REBASE_COUNT   = "rebase_count"
	METRIC_TRANSFER_COUNT = "transfer_count"

	METRIC_TOTAL_STAKED = "total_staked"
	METRIC_TOTAL_SHARES = "total_shares"
	METRIC_BUFFERED     = "buffered"
	METRIC_SHARE_PRICE  = "share_price"
)

var (
	once     sync.Once
	counters map[string]prometheus.Counter
	gauges   map[string]prometheus.Gauge
)

// Init registers the vault metrics with the default registry. Until it is
// called every update below is a no-op.
func Init() {
	once.Do(func() {
		c := make(map[string]prometheus.Counter)
		g := make(map[string]prometheus.Gauge)

		for name, help := range map[string]string{
			METRIC_ERROR_COUNT:    "Counts the number of failed vault operations",
			METRIC_DEPOSIT_COUNT:  "Counts the number of successful deposits",
			METRIC_WITHDRAW_COUNT: "Counts the number of successful withdrawals",
			METRIC_REBASE_COUNT:   "Counts the number of reconciliation passes",
			METRIC_TRANSFER_COUNT: "Counts the number of share transfers",
		} {
			counter := prometheus.NewCounter(prometheus.CounterOpts{
				Namespace: "hipo",
				Subsystem: "vault",
				Name:      name,
				Help:      help,
			})
			prometheus.MustRegister(counter)
			c[name] = counter
		}

		for name, help := range map[string]string{
			METRIC_TOTAL_STAKED: "Total underlying value claimed by all shares",
			METRIC_TOTAL_SHARES: "Total shares outstanding",
			METRIC_BUFFERED:     "Underlying held by the vault and not deployed",
			METRIC_SHARE_PRICE:  "Underlying value of one share",
		} {
			gauge := prometheus.NewGauge(prometheus.GaugeOpts{
				Namespace: "hipo",
				Subsystem: "vault",
				Name:      name,
				Help:      help,
			})
			prometheus.MustRegister(gauge)
			g[name] = gauge
		}

		counters = c
		gauges = g
	})
}

func GetCounter(name string) prometheus.Counter {
	return counters[name]
}

func IncErrorCount() {
	IncCounter(METRIC_ERROR_COUNT)
}

func IncCounter(name string) {
	if counter, ok := counters[name]; ok {
		counter.Inc()
	}
}

func SetGauge(name string, value float64) {
	if gauge, ok := gauges[name]; ok {
		gauge.Set(value)
	}
}
