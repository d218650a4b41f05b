package core

import (
	"fmt"
	"time"

	"github.com/encodeous/ripsim/state"
)

type RouterEvent int

// route events

const (
	RouteAdded RouterEvent = iota
	RouteImproved
	RouteRefreshed
	RouteExpired
	RouteUnreachable
	RouteRemoved
)

// warn events

const (
	UnknownNeighbour RouterEvent = iota + 1000
	SendFailed
	MalformedPacket
)

func (e RouterEvent) String() string {
	switch e {
	case RouteAdded:
		return "ROUTE_ADDED"
	case RouteImproved:
		return "ROUTE_IMPROVED"
	case RouteRefreshed:
		return "ROUTE_REFRESHED"
	case RouteExpired:
		return "ROUTE_EXPIRED"
	case RouteUnreachable:
		return "ROUTE_UNREACHABLE"
	case RouteRemoved:
		return "ROUTE_REMOVED"
	case UnknownNeighbour:
		return "UNKNOWN_NEIGHBOUR"
	case SendFailed:
		return "SEND_FAILED"
	case MalformedPacket:
		return "MALFORMED_PACKET"
	default:
		return fmt.Sprintf("RouterEvent(%d)", int(e))
	}
}

// RouteEvents receives everything the algorithm decides.
type RouteEvents interface {
	RouteChanged(event RouterEvent, entry state.RouteEntry)
	Log(event RouterEvent, desc string, args ...any)
}

// DirectCost is the metric stored for a neighbour that answered us directly.
const DirectCost = uint32(0)

// HandleResponse merges a neighbour's advertised table into ours.
// The sender itself is inserted first; every advertised route costs one more hop
// through the sender. Routes to ourselves and routes longer than MaxHopCount are
// dropped. An existing route is replaced, and its hold timer refreshed, when the
// candidate is at least as cheap.
func HandleResponse(s *state.State, r RouteEvents, sender state.IP, advertised []state.RouteEntry) {
	routes := make([]state.RouteEntry, 0, len(advertised)+1)
	routes = append(routes, state.RouteEntry{
		Destination: sender,
		Gateway:     s.Id,
		Cost:        DirectCost,
	})
	for _, adv := range advertised {
		candidate := state.RouteEntry{
			Destination: adv.Destination,
			Gateway:     sender,
			Cost:        AddCost(adv.Cost, 1),
		}
		if candidate.Destination == s.Id {
			continue
		}
		if candidate.Cost > state.MaxHopCount {
			continue
		}
		routes = append(routes, candidate)
	}

	s.Table.Update(func(tx *state.RouteTx) {
		for _, candidate := range routes {
			idx := tx.IndexOf(candidate)
			if idx == -1 {
				tx.Add(candidate)
				r.RouteChanged(RouteAdded, candidate)
				continue
			}
			old := tx.Get(idx)
			if old.Cost < candidate.Cost {
				continue
			}
			tx.ReplaceWithRefresh(idx, candidate)
			if old.Cost > candidate.Cost || old.Gateway != candidate.Gateway {
				r.RouteChanged(RouteImproved, candidate)
			} else {
				r.RouteChanged(RouteRefreshed, candidate)
			}
		}
	})
}

func invalidateExpired(tx *state.RouteTx, r RouteEvents, expiration time.Duration) {
	now := tx.Now()
	for i := 0; i < tx.Len(); i++ {
		te := tx.GetWithTimestamp(i)
		if te.Age(now) > expiration && te.Entry.Cost != state.INF {
			tx.MutateCostOnly(i, state.INF)
			r.RouteChanged(RouteExpired, tx.Get(i))
		}
	}
}

func invalidateUnreachable(tx *state.RouteTx, r RouteEvents, self state.IP) {
	for i := 0; i < tx.Len(); i++ {
		entry := tx.Get(i)
		if entry.Cost == state.INF || entry.Gateway == self {
			continue
		}
		gw, ok := tx.Find(entry.Gateway)
		if ok && gw.Reachable() {
			continue
		}
		tx.MutateCostOnly(i, state.INF)
		r.RouteChanged(RouteUnreachable, tx.Get(i))
	}
}

// InvalidateExpired marks every route that has not been refreshed within the
// expiration interval as unreachable. Timestamps are left alone, so the table's
// sweep still removes the route on its original schedule.
func InvalidateExpired(s *state.State, r RouteEvents) {
	s.Table.Update(func(tx *state.RouteTx) {
		invalidateExpired(tx, r, s.ExpirationInterval)
	})
}

// InvalidateUnreachable marks routes whose gateway is neither us nor reachable.
func InvalidateUnreachable(s *state.State, r RouteEvents) {
	s.Table.Update(func(tx *state.RouteTx) {
		invalidateUnreachable(tx, r, s.Id)
	})
}

// InvalidateRoutes runs both invalidation steps under a single table lock.
func InvalidateRoutes(s *state.State, r RouteEvents) {
	s.Table.Update(func(tx *state.RouteTx) {
		invalidateExpired(tx, r, s.ExpirationInterval)
		invalidateUnreachable(tx, r, s.Id)
	})
}
