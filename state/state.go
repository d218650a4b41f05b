package state

import (
	"context"
	"log/slog"
	"slices"
	"sync"
)

// State access must be done only on the router's dispatch goroutine,
// except Table, which carries its own lock.
type State struct {
	*Env
	Id         IP
	Port       uint16
	Neighbours []Neighbour
	Table      *RouteTable
}

func (s *State) GetNeighbour(ip IP) (Neighbour, bool) {
	idx := slices.IndexFunc(s.Neighbours, func(n Neighbour) bool {
		return n.Ip == ip
	})
	if idx == -1 {
		return Neighbour{}, false
	}
	return s.Neighbours[idx], true
}

// Env can be read from any goroutine. A fresh Env is made for every run of a router.
type Env struct {
	DispatchChannel chan<- func(s *State) error
	RouterCfg
	Context context.Context
	Cancel  context.CancelCauseFunc
	Log     *slog.Logger

	tasks sync.WaitGroup
}
