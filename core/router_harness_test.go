package core

import (
	"fmt"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/encodeous/ripsim/state"
	"github.com/google/go-cmp/cmp"
)

type HarnessEvent struct {
	Message string
	Args    []any
}

func MakeEvent(msg string, args ...any) HarnessEvent {
	return HarnessEvent{
		Message: msg,
		Args:    args,
	}
}

type RouterHarness struct {
	actions []HarnessEvent
}

func (h *RouterHarness) RouteChanged(event RouterEvent, entry state.RouteEntry) {
	h.actions = append(h.actions, MakeEvent(event.String(), entry))
}

func (h *RouterHarness) Log(event RouterEvent, desc string, args ...any) {
	x := make([]any, 0)
	x = append(x, event)
	x = append(x, desc)
	x = append(x, args...)
	h.actions = append(h.actions, MakeEvent("LOG", x...))
}

type HarnessEvents []HarnessEvent

func (h HarnessEvents) String() string {
	out := make([]string, 0)
	for _, action := range h {
		cur := action.Message
		for _, arg := range action.Args {
			cur += " " + fmt.Sprint(arg)
		}
		out = append(out, cur)
	}
	slices.Sort(out)
	return strings.Join(out, "\n")
}

func (h *RouterHarness) GetActions() HarnessEvents {
	x := make([]HarnessEvent, 0)
	for _, action := range h.actions {
		if action.Message != "LOG" {
			x = append(x, action)
		}
	}

	h.actions = make([]HarnessEvent, 0)
	return x
}

func (e HarnessEvents) contains(msg string, args ...any) bool {
	for _, event := range e {
		if event.Message == msg {
			if len(event.Args) >= len(args) {
				match := true
				for i, arg := range args {
					if !cmp.Equal(event.Args[i], arg) {
						match = false
						break
					}
				}
				if match {
					return true
				}
			}
		}
	}
	return false
}

func (e HarnessEvents) AssertContains(t *testing.T, msg string, args ...any) {
	t.Helper()
	if e.contains(msg, args...) {
		return
	}
	t.Fatal("Expected event not found: ", msg, " with args: ", args, " in ", e)
}

func (e HarnessEvents) AssertNotContains(t *testing.T, msg string, args ...any) {
	t.Helper()
	if e.contains(msg, args...) {
		t.Fatal("Unexpected event found: ", msg, " with args: ", args, " in ", e)
	}
}

type FakeClock struct {
	now time.Time
}

func (c *FakeClock) Now() time.Time {
	return c.now
}

func (c *FakeClock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}

// MakeState builds a router state with a manually swept table driven by clock.
func MakeState(t *testing.T, id string, clock *FakeClock) *state.State {
	cfg := state.DefaultRouterCfg()
	s := &state.State{
		Env: &state.Env{
			RouterCfg: cfg,
		},
		Id:    state.MustParseIP(id),
		Table: state.NewRouteTable(0, cfg.RemovalInterval, state.WithClock(clock.Now)),
	}
	t.Cleanup(s.Table.Close)
	return s
}

func Route(dst, gw string, cost uint32) state.RouteEntry {
	return state.RouteEntry{
		Destination: state.MustParseIP(dst),
		Gateway:     state.MustParseIP(gw),
		Cost:        cost,
	}
}

// Advertise delivers a RESPONSE from sender carrying (destination, cost) pairs.
func (h *RouterHarness) Advertise(s *state.State, sender string, routes ...any) {
	entries := make([]state.RouteEntry, 0)
	for i := 0; i+1 < len(routes); i += 2 {
		entries = append(entries, state.RouteEntry{
			Destination: state.MustParseIP(routes[i].(string)),
			Gateway:     state.MustParseIP(sender),
			Cost:        uint32(routes[i+1].(int)),
		})
	}
	HandleResponse(s, h, state.MustParseIP(sender), entries)
}
