package state

import "time"

const (
	// INF is the unreachable metric.
	INF = uint32(16)
	// MaxHopCount is the largest finite metric.
	MaxHopCount = INF - 1
)

var (
	DefaultRouters            = 5
	DefaultMaxRouters         = 20
	DefaultBasePort    uint16 = 8080
	DefaultIpPrefix           = "192.168.0."
	DefaultTopology           = "1-2, 5-4, 3-2, 5-1"

	UpdateInterval     = time.Millisecond * 300
	ExpirationInterval = time.Millisecond * 1000
	RemovalInterval    = time.Millisecond * 1400
	SweepInterval      = time.Millisecond * 300
	StartDelay         = time.Millisecond * 200

	// ReceiveSlack is added to the update interval to bound a single socket read.
	ReceiveSlack = time.Millisecond * 200

	DispatchBuffer = 128
	MaxPacketSize  = 65507 // largest UDP payload over IPv4
	EventBuffer    = 256
)
