//go:build integration

package integration

import (
	"errors"
	"testing"
	"time"

	"github.com/encodeous/ripsim/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestFailurePropagation(t *testing.T) {
	defer goleak.VerifyNone(t)
	// 1 --- 2 --- 3
	h := NewHarness(t, 3, "1-2, 2-3")
	h.Start(t)
	defer h.Stop()

	h.WaitRoute(t, 1, 3, 2, core.DirectCost+1)

	events := make(chan any, 1024)
	r1 := h.Router(t, 1)
	r1.Subscribe(events)
	defer r1.Unsubscribe(events)

	require.NoError(t, h.Sim.Stop(2))
	h.WaitGone(t, 1, 3)
	h.WaitGone(t, 1, 2)

	// both routes are eventually swept away
	ip2, ip3 := h.Router(t, 2).Id, h.Router(t, 3).Id
	require.Eventually(t, func() bool {
		for _, e := range r1.Snapshot() {
			if e.Destination == ip2 || e.Destination == ip3 {
				return false
			}
		}
		return true
	}, 5*time.Second, 20*time.Millisecond)

	removed := 0
	timeout := time.After(time.Second)
	for removed < 2 {
		select {
		case ev := <-events:
			if re, ok := ev.(core.RouteEvent); ok && re.Event == core.RouteRemoved {
				removed++
			}
		case <-timeout:
			t.Fatalf("saw %d removal events", removed)
		}
	}

	_, err := h.Sim.Trace(1, ip3)
	assert.True(t, errors.Is(err, core.ErrNoRoute))
}

func TestNeighbourLiveness(t *testing.T) {
	defer goleak.VerifyNone(t)
	h := NewHarness(t, 2, "1-2")
	h.Start(t)
	defer h.Stop()

	r1 := h.Router(t, 1)
	require.Eventually(t, func() bool {
		st := r1.NeighbourStatus()
		return len(st) == 1 && st[0].Alive
	}, 5*time.Second, 20*time.Millisecond)

	require.NoError(t, h.Sim.Stop(2))
	require.Eventually(t, func() bool {
		st := r1.NeighbourStatus()
		return len(st) == 1 && !st[0].Alive
	}, 5*time.Second, 20*time.Millisecond)
}
