package store

import "github.com/prometheus/client_golang/prometheus"

var collectionRecordsDesc = prometheus.NewDesc(
	"bossmachine_collection_records",
	"Number of records held per collection.",
	[]string{"collection"}, nil,
)

type collector struct {
	s *MemoryStore
}

// Collector exports the size of every collection as a gauge.
func (s *MemoryStore) Collector() prometheus.Collector {
	return collector{s: s}
}

func (c collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- collectionRecordsDesc
}

func (c collector) Collect(ch chan<- prometheus.Metric) {
	for name, n := range c.s.Counts() {
		ch <- prometheus.MustNewConstMetric(collectionRecordsDesc, prometheus.GaugeValue, float64(n), name)
	}
}
