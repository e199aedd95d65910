// control/metrics.go
// Author: momentics <momentics@gmail.com>
//
// Prometheus collector over the channels registered in a DebugProbes registry.
// Stats are read at scrape time; channels keep no metric state of their own.

package control

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Collector implements prometheus.Collector for registered channels.
type Collector struct {
	probes *DebugProbes

	buffered       *prometheus.Desc
	capacity       *prometheus.Desc
	blockedReaders *prometheus.Desc
	blockedWriters *prometheus.Desc
	waiters        *prometheus.Desc
	dropped        *prometheus.Desc
	closed         *prometheus.Desc
}

var _ prometheus.Collector = (*Collector)(nil)

// NewCollector creates a collector with metric names prefixed by namespace.
func NewCollector(namespace string, probes *DebugProbes) *Collector {
	label := []string{"channel"}
	return &Collector{
		probes:         probes,
		buffered:       prometheus.NewDesc(prometheus.BuildFQName(namespace, "channel", "buffered_items"), "Items currently buffered.", label, nil),
		capacity:       prometheus.NewDesc(prometheus.BuildFQName(namespace, "channel", "capacity"), "Configured capacity, -1 when unbounded.", label, nil),
		blockedReaders: prometheus.NewDesc(prometheus.BuildFQName(namespace, "channel", "blocked_readers"), "Readers parked waiting for an item.", label, nil),
		blockedWriters: prometheus.NewDesc(prometheus.BuildFQName(namespace, "channel", "blocked_writers"), "Writers parked waiting for space.", label, nil),
		waiters:        prometheus.NewDesc(prometheus.BuildFQName(namespace, "channel", "waiters"), "Notification waiters by direction.", []string{"channel", "direction"}, nil),
		dropped:        prometheus.NewDesc(prometheus.BuildFQName(namespace, "channel", "dropped_items_total"), "Items discarded by the overflow policy.", label, nil),
		closed:         prometheus.NewDesc(prometheus.BuildFQName(namespace, "channel", "closed"), "1 once the writer side completed.", label, nil),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.buffered
	ch <- c.capacity
	ch <- c.blockedReaders
	ch <- c.blockedWriters
	ch <- c.waiters
	ch <- c.dropped
	ch <- c.closed
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	names, stats := c.probes.channelStats()
	for i, name := range names {
		s := stats[i]
		closed := 0.0
		if s.Closed {
			closed = 1
		}
		ch <- prometheus.MustNewConstMetric(c.buffered, prometheus.GaugeValue, float64(s.Buffered), name)
		ch <- prometheus.MustNewConstMetric(c.capacity, prometheus.GaugeValue, float64(s.Capacity), name)
		ch <- prometheus.MustNewConstMetric(c.blockedReaders, prometheus.GaugeValue, float64(s.BlockedReaders), name)
		ch <- prometheus.MustNewConstMetric(c.blockedWriters, prometheus.GaugeValue, float64(s.BlockedWriters), name)
		ch <- prometheus.MustNewConstMetric(c.waiters, prometheus.GaugeValue, float64(s.WaitingReaders), name, "read")
		ch <- prometheus.MustNewConstMetric(c.waiters, prometheus.GaugeValue, float64(s.WaitingWriters), name, "write")
		ch <- prometheus.MustNewConstMetric(c.dropped, prometheus.CounterValue, float64(s.Dropped), name)
		ch <- prometheus.MustNewConstMetric(c.closed, prometheus.GaugeValue, closed, name)
	}
}
