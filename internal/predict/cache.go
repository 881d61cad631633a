package predict

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/julianstephens/cadence/internal/models"
)

// Snapshot is one computed outcome for a category. Snapshots are never
// mutated after they are built.
type Snapshot struct {
	Generation uint64
	Clusters   []models.Cluster
	Prediction models.Prediction
	Available  bool // false means too little data for a prediction
	ComputedAt time.Time
}

// entry is the immutable cache value for one category. generation moves
// forward on every invalidation; value is the latest snapshot stored, which
// is fresh only while its generation matches.
type entry struct {
	born       uint64
	generation uint64
	value      *Snapshot
}

func (e *entry) fresh() bool {
	return e.value != nil && e.value.Generation == e.generation
}

// Cache maps category ids to their latest prediction snapshot. Each
// category's entry is replaced as a whole, so readers never see a partially
// written value, and categories never contend with one another. Entries exist
// only for categories that have stored a snapshot.
type Cache struct {
	entries sync.Map // category id -> *entry
	clock   atomic.Uint64
	// removed is the clock value of the latest Remove; snapshots computed
	// before it never recreate an entry.
	removed atomic.Uint64
}

// NewCache creates an empty cache.
func NewCache() *Cache {
	return &Cache{}
}

func (c *Cache) load(id string) (*entry, bool) {
	v, ok := c.entries.Load(id)
	if !ok {
		return nil, false
	}
	return v.(*entry), true
}

// Get returns the latest snapshot for id and whether it is still fresh.
func (c *Cache) Get(id string) (snap *Snapshot, fresh bool) {
	e, ok := c.load(id)
	if !ok {
		return nil, false
	}
	return e.value, e.fresh()
}

// Invalidate marks id's snapshot stale. The stale value is kept as a
// fallback until a newer one is stored. Without an entry only the clock
// moves, which keeps in-flight computations from storing a fresh value.
func (c *Cache) Invalidate(id string) {
	for {
		old, ok := c.load(id)
		if !ok {
			c.clock.Add(1)
			return
		}
		next := &entry{born: old.born, generation: c.clock.Add(1), value: old.value}
		if c.entries.CompareAndSwap(id, old, next) {
			return
		}
	}
}

// Remove drops id's entry entirely, stale value included.
func (c *Cache) Remove(id string) {
	c.removed.Store(c.clock.Add(1))
	c.entries.Delete(id)
}

// Keys returns every category id currently cached.
func (c *Cache) Keys() []string {
	var ids []string
	c.entries.Range(func(k, _ any) bool {
		ids = append(ids, k.(string))
		return true
	})
	return ids
}

// Len returns the number of cached categories.
func (c *Cache) Len() int {
	n := 0
	c.entries.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}

// generation returns the current invalidation generation for id without
// creating an entry.
func (c *Cache) generation(id string) uint64 {
	if e, ok := c.load(id); ok {
		return e.generation
	}
	return c.clock.Load()
}

// store records snap unless a snapshot at least as new is already present
// or the entry was removed after the computation started. It reports whether
// snap was written. A snapshot that creates the entry is fresh only when the
// clock has not moved since it was computed.
func (c *Cache) store(id string, snap *Snapshot) bool {
	for {
		old, ok := c.load(id)
		if !ok {
			if snap.Generation < c.removed.Load() {
				return false
			}
			e := &entry{born: snap.Generation, generation: c.clock.Load(), value: snap}
			if _, loaded := c.entries.LoadOrStore(id, e); !loaded {
				return true
			}
			continue
		}
		if snap.Generation < old.born {
			return false
		}
		if old.value != nil && old.value.Generation >= snap.Generation {
			return false
		}
		next := &entry{born: old.born, generation: old.generation, value: snap}
		if c.entries.CompareAndSwap(id, old, next) {
			return true
		}
	}
}
