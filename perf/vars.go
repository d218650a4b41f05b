package perf

import (
	"expvar"
	"net/http"

	"github.com/encodeous/metric"
)

var (
	DispatchLatency        = metric.NewHistogram("1m1s")
	ResponseEntries        = metric.NewHistogram("10s1s")
	SentPacketPerSecond    = metric.NewCounter("10s1s")
	RecvPacketPerSecond    = metric.NewCounter("10s1s")
	SentBytesPerSecond     = metric.NewCounter("10s1s")
	RecvBytesPerSecond     = metric.NewCounter("10s1s")
	DroppedPacketPerSecond = metric.NewCounter("10s1s")
)

func init() {
	http.Handle("/debug/metrics", metric.Handler(metric.Exposed))
	expvar.Publish("ripsim:ResponseEntries", ResponseEntries)
	expvar.Publish("ripsim:SentPacket/s", SentPacketPerSecond)
	expvar.Publish("ripsim:RecvPacket/s", RecvPacketPerSecond)
	expvar.Publish("ripsim:SentBytes/s", SentBytesPerSecond)
	expvar.Publish("ripsim:RecvBytes/s", RecvBytesPerSecond)
	expvar.Publish("ripsim:DroppedPacket/s", DroppedPacketPerSecond)
	expvar.Publish("ripsim:DispatchLatency (µs)", DispatchLatency)
}
