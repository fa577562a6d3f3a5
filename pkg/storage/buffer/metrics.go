package buffer

import "github.com/prometheus/client_golang/prometheus"

type Metrics struct {
	hits      prometheus.Counter
	misses    prometheus.Counter
	evictions prometheus.Counter
	usedBytes prometheus.Gauge
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		hits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "navigatorx",
			Subsystem: "block_cache",
			Name:      "hits_total",
			Help:      "Block lookups served from the cache.",
		}),
		misses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "navigatorx",
			Subsystem: "block_cache",
			Name:      "misses_total",
			Help:      "Blocks read from the graph file and decoded.",
		}),
		evictions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "navigatorx",
			Subsystem: "block_cache",
			Name:      "evictions_total",
			Help:      "Blocks evicted to stay within the byte budget.",
		}),
		usedBytes: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "navigatorx",
			Subsystem: "block_cache",
			Name:      "used_bytes",
			Help:      "Estimated bytes held by decoded blocks.",
		}),
	}
	reg.MustRegister(m.hits, m.misses, m.evictions, m.usedBytes)
	return m
}
