package core

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/encodeous/ripsim/state"
)

var ErrCapacity = errors.New("too many active instances")

// Registry hands out ports and synthetic addresses to routers.
// Ports are sequential from the base port; the address host part is (port mod max)+1.
type Registry struct {
	cfg       state.SimCfg
	newLogger func(prefix string) *slog.Logger
	log       *slog.Logger

	mu       sync.Mutex
	routers  []*Router
	nextPort int
}

func NewRegistry(cfg state.SimCfg, newLogger func(prefix string) *slog.Logger) *Registry {
	return &Registry{
		cfg:       cfg,
		newLogger: newLogger,
		log:       newLogger("registry"),
		nextPort:  int(cfg.BasePort),
	}
}

// CreateInstance allocates the next port and address and builds a stopped router.
func (g *Registry) CreateInstance() (*Router, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if len(g.routers) >= g.cfg.MaxRouters {
		g.log.Warn("too many active instances", "max", g.cfg.MaxRouters)
		return nil, ErrCapacity
	}
	if g.nextPort > 0xFFFF {
		return nil, fmt.Errorf("port %d is out of range", g.nextPort)
	}
	port := uint16(g.nextPort)
	id, err := state.ParseIP(fmt.Sprintf("%s%d", g.cfg.IpPrefix, g.nextPort%g.cfg.MaxRouters+1))
	if err != nil {
		return nil, fmt.Errorf("bad address for port %d: %w", port, err)
	}
	g.nextPort++

	r := NewRouter(id, port, g.cfg.RouterCfg, g.newLogger(id.String()))
	g.routers = append(g.routers, r)
	g.log.Debug("created router", "ip", id, "port", port)
	return r, nil
}

func (g *Registry) Routers() []*Router {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]*Router, len(g.routers))
	copy(out, g.routers)
	return out
}

func (g *Registry) ByIP(ip state.IP) *Router {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, r := range g.routers {
		if r.Id == ip {
			return r
		}
	}
	return nil
}

// Close stops and releases every router created by the registry.
func (g *Registry) Close() error {
	errs := make([]error, 0)
	for _, r := range g.Routers() {
		errs = append(errs, r.Close())
	}
	return errors.Join(errs...)
}

// SetNeighbours links routers according to a topology such as "1-2, 2-3".
// Indexes are 1-based into routers. Links are symmetric. Malformed entries,
// out-of-range indexes and self links are skipped and reported in the returned error;
// the remaining links are still applied.
func SetNeighbours(routers []*Router, descriptor string) error {
	links, err := state.ParseTopology(descriptor)
	errs := make([]error, 0)
	if err != nil {
		errs = append(errs, err)
	}
	for _, link := range links {
		if link.V1 > len(routers) || link.V2 > len(routers) {
			errs = append(errs, fmt.Errorf("link %d-%d: %w", link.V1, link.V2, state.ErrBadTopology))
			continue
		}
		if link.V1 == link.V2 {
			errs = append(errs, fmt.Errorf("link %d-%d: router cannot neighbour itself", link.V1, link.V2))
			continue
		}
		a, b := routers[link.V1-1], routers[link.V2-1]
		if err := a.AddNeighbour(state.Neighbour{Ip: b.Id, Port: b.Port}); err != nil {
			errs = append(errs, fmt.Errorf("link %d-%d: %w", link.V1, link.V2, err))
			continue
		}
		if err := b.AddNeighbour(state.Neighbour{Ip: a.Id, Port: a.Port}); err != nil {
			errs = append(errs, fmt.Errorf("link %d-%d: %w", link.V1, link.V2, err))
		}
	}
	return errors.Join(errs...)
}
