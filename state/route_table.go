package state

import (
	"sync"
	"time"
)

type TimestampedEntry struct {
	LastUpdated time.Time
	Entry       RouteEntry
}

func (e TimestampedEntry) Age(now time.Time) time.Duration {
	return now.Sub(e.LastUpdated)
}

type TableOption func(t *RouteTable)

// WithClock replaces time.Now for every timestamp the table takes or compares.
func WithClock(now func() time.Time) TableOption {
	return func(t *RouteTable) {
		t.now = now
	}
}

// WithRemoveHook is called, outside the table lock, for every entry that leaves the table.
func WithRemoveHook(fn func(RouteEntry)) TableOption {
	return func(t *RouteTable) {
		t.onRemove = fn
	}
}

// RouteTable is an ordered list of timestamped routes, keyed by destination.
// A background sweep deletes entries whose last refresh is older than the removal age.
// Every access takes the table lock; multi-step sequences must go through Update.
type RouteTable struct {
	mu         sync.Mutex
	entries    []TimestampedEntry
	removalAge time.Duration
	now        func() time.Time
	onRemove   func(RouteEntry)

	stop      chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

// NewRouteTable creates a table and, if sweepInterval > 0, starts its sweep.
// Close must be called to stop the sweep.
func NewRouteTable(sweepInterval, removalAge time.Duration, opts ...TableOption) *RouteTable {
	t := &RouteTable{
		entries:    make([]TimestampedEntry, 0),
		removalAge: removalAge,
		now:        time.Now,
		stop:       make(chan struct{}),
		done:       make(chan struct{}),
	}
	for _, opt := range opts {
		opt(t)
	}
	if sweepInterval > 0 {
		go t.sweep(sweepInterval)
	} else {
		close(t.done)
	}
	return t
}

func (t *RouteTable) sweep(interval time.Duration) {
	defer close(t.done)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			t.RemoveExpired()
		case <-t.stop:
			return
		}
	}
}

// Close stops the sweep and waits for it to exit. The table stays usable.
func (t *RouteTable) Close() {
	t.closeOnce.Do(func() {
		close(t.stop)
	})
	<-t.done
}

func (t *RouteTable) RemovalAge() time.Duration {
	return t.removalAge
}

// RemoveExpired deletes every entry with age >= the removal age and returns them.
func (t *RouteTable) RemoveExpired() []RouteEntry {
	var removed []RouteEntry
	t.Update(func(tx *RouteTx) {
		now := tx.Now()
		for i := tx.Len() - 1; i >= 0; i-- {
			if tx.GetWithTimestamp(i).Age(now) >= t.removalAge {
				removed = append(removed, tx.Get(i))
				tx.RemoveAt(i)
			}
		}
	})
	return removed
}

// Update runs fn with the table lock held for its whole duration.
// fn must not retain tx or call other RouteTable methods.
func (t *RouteTable) Update(fn func(tx *RouteTx)) {
	tx := &RouteTx{t: t}
	func() {
		t.mu.Lock()
		defer t.mu.Unlock()
		fn(tx)
	}()
	if t.onRemove != nil {
		for _, e := range tx.removed {
			t.onRemove(e)
		}
	}
}

func (t *RouteTable) Add(entry RouteEntry) {
	t.Update(func(tx *RouteTx) {
		tx.Add(entry)
	})
}

func (t *RouteTable) Get(i int) (entry RouteEntry, ok bool) {
	t.Update(func(tx *RouteTx) {
		if i >= 0 && i < tx.Len() {
			entry, ok = tx.Get(i), true
		}
	})
	return
}

// Set replaces the entry at i and refreshes its timestamp.
func (t *RouteTable) Set(i int, entry RouteEntry) bool {
	ok := false
	t.Update(func(tx *RouteTx) {
		if i >= 0 && i < tx.Len() {
			tx.ReplaceWithRefresh(i, entry)
			ok = true
		}
	})
	return ok
}

func (t *RouteTable) GetWithTimestamp(i int) (entry TimestampedEntry, ok bool) {
	t.Update(func(tx *RouteTx) {
		if i >= 0 && i < tx.Len() {
			entry, ok = tx.GetWithTimestamp(i), true
		}
	})
	return
}

func (t *RouteTable) Contains(entry RouteEntry) bool {
	return t.IndexOf(entry) != -1
}

func (t *RouteTable) IndexOf(entry RouteEntry) int {
	idx := -1
	t.Update(func(tx *RouteTx) {
		idx = tx.IndexOf(entry)
	})
	return idx
}

// RemoveAll removes every entry with the same destination as entry.
func (t *RouteTable) RemoveAll(entry RouteEntry) bool {
	found := false
	t.Update(func(tx *RouteTx) {
		found = tx.RemoveAll(entry)
	})
	return found
}

func (t *RouteTable) Len() int {
	n := 0
	t.Update(func(tx *RouteTx) {
		n = tx.Len()
	})
	return n
}

// Snapshot copies the entries in storage order.
func (t *RouteTable) Snapshot() []RouteEntry {
	var out []RouteEntry
	t.Update(func(tx *RouteTx) {
		out = tx.Entries()
	})
	return out
}

func (t *RouteTable) SnapshotWithTimestamps() []TimestampedEntry {
	var out []TimestampedEntry
	t.Update(func(tx *RouteTx) {
		out = make([]TimestampedEntry, len(t.entries))
		copy(out, t.entries)
	})
	return out
}

// RouteTx is a view of a locked RouteTable, valid only inside Update.
type RouteTx struct {
	t       *RouteTable
	removed []RouteEntry
}

func (tx *RouteTx) Now() time.Time {
	return tx.t.now()
}

func (tx *RouteTx) Len() int {
	return len(tx.t.entries)
}

func (tx *RouteTx) Get(i int) RouteEntry {
	return tx.t.entries[i].Entry
}

func (tx *RouteTx) GetWithTimestamp(i int) TimestampedEntry {
	return tx.t.entries[i]
}

func (tx *RouteTx) IndexOf(entry RouteEntry) int {
	for i, e := range tx.t.entries {
		if e.Entry.SameRoute(entry) {
			return i
		}
	}
	return -1
}

func (tx *RouteTx) Contains(entry RouteEntry) bool {
	return tx.IndexOf(entry) != -1
}

// Find returns the first entry routing to dst.
func (tx *RouteTx) Find(dst IP) (RouteEntry, bool) {
	idx := tx.IndexOf(RouteEntry{Destination: dst})
	if idx == -1 {
		return RouteEntry{}, false
	}
	return tx.Get(idx), true
}

// Add appends entry with a fresh timestamp. Callers keep destinations unique.
func (tx *RouteTx) Add(entry RouteEntry) {
	entry.Cost = NormalizeCost(entry.Cost)
	tx.t.entries = append(tx.t.entries, TimestampedEntry{
		LastUpdated: tx.Now(),
		Entry:       entry,
	})
}

// ReplaceWithRefresh stores entry at i and resets its hold timer.
func (tx *RouteTx) ReplaceWithRefresh(i int, entry RouteEntry) {
	entry.Cost = NormalizeCost(entry.Cost)
	tx.t.entries[i] = TimestampedEntry{
		LastUpdated: tx.Now(),
		Entry:       entry,
	}
}

// MutateCostOnly changes the cost at i and leaves the timestamp alone, so the
// entry is still removed on its original schedule.
func (tx *RouteTx) MutateCostOnly(i int, cost uint32) {
	tx.t.entries[i].Entry.Cost = NormalizeCost(cost)
}

func (tx *RouteTx) RemoveAt(i int) {
	tx.removed = append(tx.removed, tx.t.entries[i].Entry)
	tx.t.entries = append(tx.t.entries[:i], tx.t.entries[i+1:]...)
}

// RemoveAll removes every entry matching entry's destination and reports whether any existed.
func (tx *RouteTx) RemoveAll(entry RouteEntry) bool {
	found := false
	for i := len(tx.t.entries) - 1; i >= 0; i-- {
		if tx.t.entries[i].Entry.SameRoute(entry) {
			tx.RemoveAt(i)
			found = true
		}
	}
	return found
}

func (tx *RouteTx) Entries() []RouteEntry {
	out := make([]RouteEntry, len(tx.t.entries))
	for i, e := range tx.t.entries {
		out[i] = e.Entry
	}
	return out
}
