package region

import "github.com/prometheus/client_golang/prometheus"

// Collector adapts a Pool's counters to Prometheus, for hosts that
// already scrape metrics from their process and want pool occupancy
// alongside everything else. It is entirely optional: a Pool used
// without ever calling NewCollector incurs no collection overhead.
type Collector struct {
	pool *Pool

	regions     *prometheus.Desc
	freeRegions *prometheus.Desc
	freeBlocks  *prometheus.Desc
}

// NewCollector returns a prometheus.Collector reporting p's region and
// block counters as gauges, with metric names prefixed by the given
// namespace/subsystem (either may be empty).
func NewCollector(p *Pool, namespace, subsystem string) *Collector {
	labels := prometheus.Labels(nil)
	return &Collector{
		pool: p,
		regions: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, subsystem, "regions_total"),
			"Number of regions ever created under this pool, including idle ones.",
			nil, labels,
		),
		freeRegions: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, subsystem, "free_regions"),
			"Number of cleared, idle regions cached for reuse.",
			nil, labels,
		),
		freeBlocks: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, subsystem, "free_blocks"),
			"Number of recyclable blocks cached for reuse.",
			nil, labels,
		),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.regions
	ch <- c.freeRegions
	ch <- c.freeBlocks
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	ch <- prometheus.MustNewConstMetric(c.regions, prometheus.GaugeValue, float64(c.pool.NumRegions()))
	ch <- prometheus.MustNewConstMetric(c.freeRegions, prometheus.GaugeValue, float64(c.pool.NumFreeRegions()))
	ch <- prometheus.MustNewConstMetric(c.freeBlocks, prometheus.GaugeValue, float64(c.pool.NumFreeBlocks()))
}
