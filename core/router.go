package core

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/netip"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dustin/go-broadcast"
	"github.com/encodeous/ripsim/state"
	"github.com/gaissmai/bart"
	"github.com/jellydator/ttlcache/v3"
)

var (
	ErrRunning = errors.New("router is running")
	ErrClosed  = errors.New("router is closed")
	errStopped = errors.New("router stopped")
)

// Router is a single RIP instance bound to one loopback port.
// Protocol state is owned by the dispatch goroutine of the current run; the
// route table and neighbour liveness cache may be read from anywhere.
type Router struct {
	*state.State
	cfg state.RouterCfg
	log *slog.Logger

	mu      sync.Mutex // guards Neighbours against edits while a run is starting
	active  atomic.Bool
	running atomic.Bool
	closed  atomic.Bool
	runs    sync.WaitGroup
	conn    *net.UDPConn

	trace broadcast.Broadcaster
	seen  *ttlcache.Cache[state.IP, time.Time]
}

func NewRouter(id state.IP, port uint16, cfg state.RouterCfg, log *slog.Logger) *Router {
	r := &Router{
		cfg:   cfg,
		log:   log,
		trace: broadcast.NewBroadcaster(state.EventBuffer),
		seen: ttlcache.New[state.IP, time.Time](
			ttlcache.WithTTL[state.IP, time.Time](cfg.ExpirationInterval),
			ttlcache.WithDisableTouchOnHit[state.IP, time.Time](),
		),
	}
	r.State = &state.State{
		Env: &state.Env{
			RouterCfg: cfg,
			Log:       log,
		},
		Id:         id,
		Port:       port,
		Neighbours: make([]state.Neighbour, 0),
	}
	r.Table = state.NewRouteTable(cfg.SweepInterval, cfg.RemovalInterval, state.WithRemoveHook(func(e state.RouteEntry) {
		r.RouteChanged(RouteRemoved, e)
	}))
	return r
}

func (r *Router) Cfg() state.RouterCfg {
	return r.cfg
}

// AddNeighbour links n to this router. Links can only change while the router is stopped.
func (r *Router) AddNeighbour(n state.Neighbour) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.running.Load() {
		return ErrRunning
	}
	if n.Ip == r.Id {
		return fmt.Errorf("router %s cannot neighbour itself", r.Id)
	}
	if _, ok := r.GetNeighbour(n.Ip); ok {
		return nil
	}
	r.Neighbours = append(r.Neighbours, n)
	return nil
}

// Start runs the router until Stop is called. It binds the port, schedules
// advertisement and invalidation on the dispatch goroutine and reads packets on
// the calling goroutine.
func (r *Router) Start() error {
	if err := r.arm(); err != nil {
		return err
	}
	return r.run()
}

// arm marks the router as running. A Stop issued after arm returns ends the run
// that follows, even if run has not begun yet.
func (r *Router) arm() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed.Load() {
		return ErrClosed
	}
	if r.running.Load() {
		return ErrRunning
	}
	r.running.Store(true)
	r.active.Store(true)
	r.runs.Add(1)
	return nil
}

// run executes one armed run.
func (r *Router) run() error {
	defer r.runs.Done()
	defer r.running.Store(false)
	defer r.active.Store(false)

	conn, err := listenUDP(r.Port)
	if err != nil {
		r.log.Error("failed to bind", "port", r.Port, "error", err)
		return fmt.Errorf("failed to bind port %d: %w", r.Port, err)
	}
	defer conn.Close()

	ctx, cancel := context.WithCancelCause(context.Background())
	dispatch := make(chan func(*state.State) error, state.DispatchBuffer)
	env := &state.Env{
		DispatchChannel: dispatch,
		RouterCfg:       r.cfg,
		Context:         ctx,
		Cancel:          cancel,
		Log:             r.log,
	}
	r.State.Env = env
	r.conn = conn

	loopDone := make(chan struct{})
	go func() {
		defer close(loopDone)
		MainLoop(r.State, dispatch)
	}()
	env.RepeatTask(r.advertise, r.cfg.UpdateInterval)
	env.RepeatTask(r.invalidate, r.cfg.ExpirationInterval)
	r.log.Info("router started", "port", r.Port, "neighbours", len(r.Neighbours))

	r.receiveLoop(env, conn)

	cancel(errStopped)
	env.WaitTasks()
	<-loopDone
	r.log.Info("router stopped")
	return nil
}

// Stop asks the running router to exit. The receive loop notices within one read timeout.
func (r *Router) Stop() {
	r.active.Store(false)
}

func (r *Router) Running() bool {
	return r.running.Load()
}

// Wait blocks until the current run, if any, has returned.
func (r *Router) Wait() {
	r.runs.Wait()
}

// Close stops the router, waits for it, and releases the table sweep and event stream.
func (r *Router) Close() error {
	r.mu.Lock()
	if r.closed.Swap(true) {
		r.mu.Unlock()
		return nil
	}
	r.mu.Unlock()
	r.Stop()
	r.Wait()
	r.Table.Close()
	r.seen.DeleteAll()
	return r.trace.Close()
}

func (r *Router) Snapshot() []state.RouteEntry {
	return r.Table.Snapshot()
}

type AgedRoute struct {
	state.RouteEntry
	Age time.Duration
}

func (r *Router) SnapshotWithAge() []AgedRoute {
	now := time.Now()
	entries := r.Table.SnapshotWithTimestamps()
	out := make([]AgedRoute, len(entries))
	for i, e := range entries {
		out[i] = AgedRoute{RouteEntry: e.Entry, Age: e.Age(now)}
	}
	return out
}

// PrintRoutingTable writes a header followed by one line per entry, newest first.
func (r *Router) PrintRoutingTable(w io.Writer) error {
	entries := r.Snapshot()
	if _, err := fmt.Fprintf(w, "Router: %s Route entries: %d\n", r.Id, len(entries)); err != nil {
		return err
	}
	for i := len(entries) - 1; i >= 0; i-- {
		if _, err := fmt.Fprintln(w, entries[i].String()); err != nil {
			return err
		}
	}
	return nil
}

type NeighbourStatus struct {
	state.Neighbour
	Alive     bool
	LastHeard time.Time
}

// NeighbourStatus reports which neighbours responded within the expiration interval.
func (r *Router) NeighbourStatus() []NeighbourStatus {
	r.mu.Lock()
	neighs := slices.Clone(r.Neighbours)
	r.mu.Unlock()
	out := make([]NeighbourStatus, 0, len(neighs))
	for _, n := range neighs {
		st := NeighbourStatus{Neighbour: n}
		if item := r.seen.Get(n.Ip); item != nil {
			st.Alive = true
			st.LastHeard = item.Value()
		}
		out = append(out, st)
	}
	return out
}

// ForwardTable builds a longest-prefix-match table from every reachable route.
func (r *Router) ForwardTable() *bart.Table[state.RouteEntry] {
	tbl := new(bart.Table[state.RouteEntry])
	for _, e := range r.Snapshot() {
		if !e.Reachable() {
			continue
		}
		tbl.Insert(AddrToPrefix(e.Destination.Addr()), e)
	}
	return tbl
}

func (r *Router) Lookup(dst netip.Addr) (state.RouteEntry, bool) {
	return r.ForwardTable().Lookup(dst)
}

// Subscribe registers ch for RouteEvent values. Slow subscribers miss events.
func (r *Router) Subscribe(ch chan any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed.Load() {
		return
	}
	r.trace.Register(ch)
}

// Unsubscribe drains ch while unregistering so a full subscriber cannot stall the broadcaster.
func (r *Router) Unsubscribe(ch chan any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed.Load() {
		return
	}
	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-ch:
			case <-done:
				return
			}
		}
	}()
	r.trace.Unregister(ch)
	close(done)
}

func (r *Router) RouteChanged(event RouterEvent, entry state.RouteEntry) {
	r.log.Debug(fmt.Sprintf("%s %s", event.String(), entry.String()))
	r.trace.TrySubmit(RouteEvent{
		Router: r.Id,
		Event:  event,
		Entry:  entry,
		At:     time.Now(),
	})
}

func (r *Router) Log(event RouterEvent, desc string, args ...any) {
	r.log.Warn(fmt.Sprintf("%s %s", event.String(), desc), args...)
}
