//go:build integration

package integration

import (
	"context"
	"io"
	"log/slog"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/encodeous/ripsim/core"
	"github.com/encodeous/ripsim/state"
	"github.com/stretchr/testify/require"
)

// each harness gets its own block of ports so tests never share a socket
var nextBasePort atomic.Int32

func init() {
	nextBasePort.Store(41000)
}

// LoopbackHarness runs a real simulation on loopback with fast timers.
type LoopbackHarness struct {
	Cfg state.SimCfg
	Sim *core.Simulation
}

func NewHarness(t *testing.T, routers int, topology string) *LoopbackHarness {
	cfg := state.DefaultSimCfg()
	cfg.Routers = routers
	cfg.Topology = topology
	cfg.BasePort = uint16(nextBasePort.Add(int32(cfg.MaxRouters)) - int32(cfg.MaxRouters))
	cfg.UpdateInterval = 50 * time.Millisecond
	cfg.ExpirationInterval = 400 * time.Millisecond
	cfg.RemovalInterval = 700 * time.Millisecond
	cfg.SweepInterval = 50 * time.Millisecond
	cfg.StartDelay = 10 * time.Millisecond
	return &LoopbackHarness{Cfg: cfg}
}

func (h *LoopbackHarness) Start(t *testing.T) {
	var console io.Writer = io.Discard
	if testing.Verbose() {
		console = os.Stderr
	}
	sim, err := core.NewSimulation(h.Cfg, core.LogCfg{Level: slog.LevelInfo, Console: console})
	require.NoError(t, err)
	h.Sim = sim
	require.NoError(t, sim.StartAll(context.Background()))
}

func (h *LoopbackHarness) Stop() {
	if h.Sim != nil {
		_ = h.Sim.Close()
	}
}

func (h *LoopbackHarness) Router(t *testing.T, idx int) *core.Router {
	r, err := h.Sim.Router(idx)
	require.NoError(t, err)
	return r
}

func findRoute(r *core.Router, dst state.IP) (state.RouteEntry, bool) {
	for _, e := range r.Snapshot() {
		if e.Destination == dst {
			return e, true
		}
	}
	return state.RouteEntry{}, false
}

// Route returns the entry router idx holds for the router at dst, if any.
func (h *LoopbackHarness) Route(t *testing.T, idx, dst int) (state.RouteEntry, bool) {
	return findRoute(h.Router(t, idx), h.Router(t, dst).Id)
}

// WaitRoute waits until router idx reaches dst through gw at the given cost.
func (h *LoopbackHarness) WaitRoute(t *testing.T, idx, dst, gw int, cost uint32) {
	r := h.Router(t, idx)
	want := state.RouteEntry{
		Destination: h.Router(t, dst).Id,
		Gateway:     h.Router(t, gw).Id,
		Cost:        cost,
	}
	require.Eventuallyf(t, func() bool {
		e, ok := findRoute(r, want.Destination)
		return ok && e == want
	}, 5*time.Second, 20*time.Millisecond, "router %d never learned %s", idx, want)
}

// WaitGone waits until router idx holds no usable route to dst.
func (h *LoopbackHarness) WaitGone(t *testing.T, idx, dst int) {
	r := h.Router(t, idx)
	target := h.Router(t, dst).Id
	require.Eventuallyf(t, func() bool {
		e, ok := findRoute(r, target)
		return !ok || !e.Reachable()
	}, 5*time.Second, 20*time.Millisecond, "router %d still routes to router %d", idx, dst)
}
