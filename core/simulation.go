package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/encodeous/ripsim/state"
)

var (
	ErrNoRoute  = errors.New("no route to destination")
	ErrHopLimit = errors.New("path exceeds the maximum hop count")
)

// Simulation owns a set of routers wired by a topology and runs each on its own goroutine.
type Simulation struct {
	Cfg      state.SimCfg
	Registry *Registry
	Routers  []*Router

	log *slog.Logger
	wg  sync.WaitGroup
}

// NewSimulation validates cfg, creates cfg.Routers routers and links them.
// Bad topology entries are logged and skipped.
func NewSimulation(cfg state.SimCfg, logs LogCfg) (*Simulation, error) {
	if err := state.SimConfigValidator(&cfg); err != nil {
		return nil, err
	}
	sim := &Simulation{
		Cfg:      cfg,
		Registry: NewRegistry(cfg, logs.Logger),
		log:      logs.Logger("sim"),
	}
	for i := 0; i < cfg.Routers; i++ {
		r, err := sim.Registry.CreateInstance()
		if err != nil {
			sim.Close()
			return nil, err
		}
		sim.Routers = append(sim.Routers, r)
	}
	if err := SetNeighbours(sim.Routers, cfg.Topology); err != nil {
		sim.log.Warn("skipped topology entries", "error", err)
	}
	for i, r := range sim.Routers {
		sim.log.Info("router ready", "index", i+1, "ip", r.Id, "port", r.Port, "neighbours", len(r.Neighbours))
	}
	return sim, nil
}

// Router returns the router at a 1-based index.
func (sim *Simulation) Router(idx int) (*Router, error) {
	if idx < 1 || idx > len(sim.Routers) {
		return nil, fmt.Errorf("router index %d out of range 1..%d", idx, len(sim.Routers))
	}
	return sim.Routers[idx-1], nil
}

// Start launches the router at idx in the background. The router counts as
// running once Start returns, so a following Stop always takes effect.
func (sim *Simulation) Start(idx int) error {
	r, err := sim.Router(idx)
	if err != nil {
		return err
	}
	if err := r.arm(); err != nil {
		return err
	}
	sim.wg.Add(1)
	go func() {
		defer sim.wg.Done()
		if err := r.run(); err != nil {
			sim.log.Error("router exited", "ip", r.Id, "error", err)
		}
	}()
	return nil
}

// StartAll starts every router in order, waiting StartDelay between them.
func (sim *Simulation) StartAll(ctx context.Context) error {
	for i := range sim.Routers {
		if i > 0 && sim.Cfg.StartDelay > 0 {
			select {
			case <-time.After(sim.Cfg.StartDelay):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		if err := sim.Start(i + 1); err != nil && !errors.Is(err, ErrRunning) {
			return err
		}
	}
	return nil
}

func (sim *Simulation) Stop(idx int) error {
	r, err := sim.Router(idx)
	if err != nil {
		return err
	}
	r.Stop()
	return nil
}

func (sim *Simulation) StopAll() {
	for _, r := range sim.Routers {
		r.Stop()
	}
}

// Wait blocks until every started router has returned.
func (sim *Simulation) Wait() {
	sim.wg.Wait()
}

func (sim *Simulation) Close() error {
	sim.StopAll()
	sim.Wait()
	return sim.Registry.Close()
}

// Trace follows forwarding decisions from the router at index from towards dst
// and returns every router visited, starting with the source.
func (sim *Simulation) Trace(from int, dst state.IP) ([]state.IP, error) {
	cur, err := sim.Router(from)
	if err != nil {
		return nil, err
	}
	path := []state.IP{cur.Id}
	for hops := 0; hops <= int(state.MaxHopCount); hops++ {
		if cur.Id == dst {
			return path, nil
		}
		route, ok := cur.Lookup(dst.Addr())
		if !ok {
			return path, fmt.Errorf("%s: %w %s", cur.Id, ErrNoRoute, dst)
		}
		next := route.Gateway
		if next == cur.Id {
			next = route.Destination
		}
		nr := sim.Registry.ByIP(next)
		if nr == nil {
			return path, fmt.Errorf("%s: %w %s", cur.Id, ErrNoRoute, dst)
		}
		path = append(path, next)
		cur = nr
	}
	return path, ErrHopLimit
}
