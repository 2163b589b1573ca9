// Package dedupe tracks recently seen identifiers.
package dedupe

import (
	"context"
	"sync"
	"sync/atomic"
)

// Deduper records seen ids so that repeated announcements are handled once.
type Deduper interface {
	// SeenAndRecord reports whether id was already recorded and records it if not.
	// The empty id is never recorded.
	SeenAndRecord(ctx context.Context, id string) bool

	// Unrecord forgets id so that a later announcement is handled again.
	Unrecord(ctx context.Context, id string)

	Size() int64
}

// ringDeduper keeps the most recent ids. In bounded mode the oldest id is
// evicted when the ring is full; with maxSize <= 0 nothing is evicted.
type ringDeduper struct {
	mu      sync.Mutex
	seen    map[string]int // id -> ring slot, -1 in unbounded mode
	ring    []string
	next    int
	maxSize int
	size    atomic.Int64
}

// NewInMemoryDeduper creates a new in-memory deduper.
func NewInMemoryDeduper(opts ...Option) Deduper {
	d := &ringDeduper{
		maxSize: defaultMaxSize,
	}
	for _, opt := range opts {
		opt(d)
	}

	d.seen = make(map[string]int)
	if d.maxSize > 0 {
		d.ring = make([]string, d.maxSize)
	}
	return d
}

func (d *ringDeduper) SeenAndRecord(_ context.Context, id string) bool {
	if id == "" {
		return false
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.seen[id]; ok {
		return true
	}

	if d.ring == nil {
		d.seen[id] = -1
		d.size.Add(1)
		return false
	}

	if old := d.ring[d.next]; old != "" {
		delete(d.seen, old)
		d.size.Add(-1)
	}
	d.ring[d.next] = id
	d.seen[id] = d.next
	d.next = (d.next + 1) % len(d.ring)
	d.size.Add(1)
	return false
}

func (d *ringDeduper) Unrecord(_ context.Context, id string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	slot, ok := d.seen[id]
	if !ok {
		return
	}
	delete(d.seen, id)
	if slot >= 0 {
		d.ring[slot] = ""
	}
	d.size.Add(-1)
}

func (d *ringDeduper) Size() int64 {
	return d.size.Load()
}
