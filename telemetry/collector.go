package telemetry

import (
	"sync"

	"github.com/encodeous/ripsim/core"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	labels     = []string{"router", "port"}
	descRoutes = prometheus.NewDesc(
		"ripsim_routes",
		"Routes held by the router, including unreachable ones",
		labels, nil,
	)
	descUnreachable = prometheus.NewDesc(
		"ripsim_unreachable_routes",
		"Routes held at the unreachable metric, waiting to be removed",
		labels, nil,
	)
	descRunning = prometheus.NewDesc(
		"ripsim_router_running",
		"1 if the router is running",
		labels, nil,
	)
	descLiveNeighbours = prometheus.NewDesc(
		"ripsim_live_neighbours",
		"Neighbours heard from within the expiration interval",
		labels, nil,
	)
)

// Collector reports gauges for every router the source returns at scrape time.
type Collector struct {
	sync.Mutex
	source func() []*core.Router
}

func NewCollector(source func() []*core.Router) *Collector {
	return &Collector{source: source}
}

func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	prometheus.DescribeByCollect(c, ch)
}

func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	c.Lock()
	defer c.Unlock()

	for _, r := range c.source() {
		lv := []string{r.Id.String(), portLabel(r.Port)}
		routes := r.Snapshot()
		unreachable := 0
		for _, e := range routes {
			if !e.Reachable() {
				unreachable++
			}
		}
		live := 0
		for _, n := range r.NeighbourStatus() {
			if n.Alive {
				live++
			}
		}
		running := 0.0
		if r.Running() {
			running = 1
		}
		ch <- prometheus.MustNewConstMetric(descRoutes, prometheus.GaugeValue, float64(len(routes)), lv...)
		ch <- prometheus.MustNewConstMetric(descUnreachable, prometheus.GaugeValue, float64(unreachable), lv...)
		ch <- prometheus.MustNewConstMetric(descRunning, prometheus.GaugeValue, running, lv...)
		ch <- prometheus.MustNewConstMetric(descLiveNeighbours, prometheus.GaugeValue, float64(live), lv...)
	}
}
