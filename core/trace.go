package core

import (
	"fmt"
	"time"

	"github.com/encodeous/ripsim/state"
)

// RouteEvent is published to subscribers for every table change a router makes.
type RouteEvent struct {
	Router state.IP
	Event  RouterEvent
	Entry  state.RouteEntry
	At     time.Time
}

func (e RouteEvent) String() string {
	return fmt.Sprintf("%s %s %s", e.Router, e.Event, e.Entry)
}
