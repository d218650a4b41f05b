package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"github.com/encodeous/ripsim/core"
	"github.com/encodeous/ripsim/state"
)

type command struct {
	name  string
	index int
	args  []string
}

// parseCommand splits "<name> <router> [args...]". Anything else is rejected.
func parseCommand(line string) (command, bool) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return command{}, false
	}
	if fields[0] == "quit" {
		return command{name: "quit"}, true
	}
	if len(fields) < 2 {
		return command{}, false
	}
	idx, err := strconv.Atoi(fields[1])
	if err != nil {
		return command{}, false
	}
	return command{name: fields[0], index: idx, args: fields[2:]}, true
}

// syncWriter serializes shell output with event output from watchers.
type syncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (s *syncWriter) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(p)
}

type watch struct {
	ch   chan any
	done chan struct{}
	wg   sync.WaitGroup
}

// shell drives a simulation from text commands, one per line.
type shell struct {
	sim *core.Simulation
	out io.Writer

	watches map[int]*watch
}

func newShell(sim *core.Simulation, out io.Writer) *shell {
	return &shell{
		sim:     sim,
		out:     &syncWriter{w: out},
		watches: make(map[int]*watch),
	}
}

// Run executes commands until quit, end of input, or ctx is done.
func (s *shell) Run(ctx context.Context, in *bufio.Scanner) error {
	lines := make(chan string)
	go func() {
		defer close(lines)
		for in.Scan() {
			select {
			case lines <- in.Text():
			case <-ctx.Done():
				return
			}
		}
	}()
	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				return in.Err()
			}
			if s.Exec(line) {
				return nil
			}
		}
	}
}

// Exec runs a single command line and reports whether the shell should quit.
// Malformed lines and out-of-range routers are ignored.
func (s *shell) Exec(line string) bool {
	c, ok := parseCommand(line)
	if !ok {
		return false
	}
	if c.name == "quit" {
		return true
	}
	r, err := s.sim.Router(c.index)
	if err != nil {
		return false
	}
	switch c.name {
	case "start":
		err = s.sim.Start(c.index)
		if errors.Is(err, core.ErrRunning) {
			err = nil
		}
	case "stop":
		err = s.sim.Stop(c.index)
	case "print":
		err = r.PrintRoutingTable(s.out)
	case "neigh":
		err = s.printNeighbours(r)
	case "trace":
		err = s.trace(c)
	case "watch":
		s.toggleWatch(c.index, r)
	}
	if err != nil {
		fmt.Fprintln(s.out, "Error:", err.Error())
	}
	return false
}

func (s *shell) printNeighbours(r *core.Router) error {
	_, err := fmt.Fprintf(s.out, "Router: %s Running: %t\n", r.Id, r.Running())
	if err != nil {
		return err
	}
	for _, n := range r.NeighbourStatus() {
		heard := "never"
		if n.Alive {
			heard = n.LastHeard.Format("15:04:05.000")
		}
		_, err = fmt.Fprintf(s.out, "Neighbour: %s Port: %d Alive: %t Last heard: %s\n", n.Ip, n.Port, n.Alive, heard)
		if err != nil {
			return err
		}
	}
	return nil
}

func (s *shell) trace(c command) error {
	if len(c.args) != 1 {
		return fmt.Errorf("usage: trace <router> <ip>")
	}
	dst, err := state.ParseIP(c.args[0])
	if err != nil {
		return err
	}
	path, err := s.sim.Trace(c.index, dst)
	hops := make([]string, len(path))
	for i, ip := range path {
		hops[i] = ip.String()
	}
	fmt.Fprintln(s.out, strings.Join(hops, " -> "))
	return err
}

// toggleWatch starts or stops printing route events of router idx.
func (s *shell) toggleWatch(idx int, r *core.Router) {
	if w, ok := s.watches[idx]; ok {
		delete(s.watches, idx)
		close(w.done)
		w.wg.Wait()
		r.Unsubscribe(w.ch)
		fmt.Fprintf(s.out, "Stopped watching %s\n", r.Id)
		return
	}
	w := &watch{
		ch:   make(chan any, state.EventBuffer),
		done: make(chan struct{}),
	}
	r.Subscribe(w.ch)
	s.watches[idx] = w
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		for {
			select {
			case ev := <-w.ch:
				fmt.Fprintln(s.out, ev)
			case <-w.done:
				return
			}
		}
	}()
	fmt.Fprintf(s.out, "Watching %s\n", r.Id)
}

// Close stops every watcher.
func (s *shell) Close() {
	for idx := range s.watches {
		r, err := s.sim.Router(idx)
		if err != nil {
			continue
		}
		s.toggleWatch(idx, r)
	}
}
