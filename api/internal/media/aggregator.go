// Package media coalesces attachments that the transport delivers as
// separate events sharing one media group id. A group is flushed once no
// new item arrived for the quiet interval.
package media

import (
	"log/slog"
	"sync"
	"time"

	"relay-bot/api/internal/dispatch"
)

const (
	DefaultDelay     = 1200 * time.Millisecond
	DefaultTombstone = time.Minute
)

// Batch is a flushed group, items in arrival order.
type Batch struct {
	Key     string
	Owner   dispatch.Sender
	Items   []dispatch.Attachment
	Caption string
}

type pendingGroup struct {
	owner   dispatch.Sender
	items   []dispatch.Attachment
	caption string
	timer   *time.Timer
	gen     uint64
}

// Aggregator buffers grouped attachments.
//
// Locking: table is read-locked by Append and for the whole duration of a
// flush (including the callback), and write-locked by Clear, so a clear
// never overlaps an append or a flush. groupsMu guards the maps and is held
// only for short critical sections.
type Aggregator struct {
	delay     time.Duration
	tombstone time.Duration
	onFlush   func(Batch)
	log       *slog.Logger
	now       func() time.Time

	table    sync.RWMutex
	groupsMu sync.Mutex
	groups   map[string]*pendingGroup
	closed   map[string]time.Time // key -> flushed at
	gen      uint64
}

type Option func(*Aggregator)

func WithDelay(d time.Duration) Option {
	return func(a *Aggregator) {
		if d > 0 {
			a.delay = d
		}
	}
}

// WithTombstone sets how long a flushed key keeps rejecting late items.
// Zero disables tombstones: a late item starts a new group.
func WithTombstone(d time.Duration) Option {
	return func(a *Aggregator) {
		if d >= 0 {
			a.tombstone = d
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(a *Aggregator) {
		if l != nil {
			a.log = l
		}
	}
}

func New(onFlush func(Batch), opts ...Option) *Aggregator {
	a := &Aggregator{
		delay:     DefaultDelay,
		tombstone: DefaultTombstone,
		onFlush:   onFlush,
		log:       slog.Default(),
		now:       time.Now,
		groups:    make(map[string]*pendingGroup),
		closed:    make(map[string]time.Time),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Append adds one item to the group under key and re-arms its flush timer.
// It returns false when the key was already flushed recently and the item
// was dropped.
func (a *Aggregator) Append(key string, item dispatch.Attachment, owner dispatch.Sender, caption string) bool {
	a.table.RLock()
	defer a.table.RUnlock()

	a.groupsMu.Lock()
	defer a.groupsMu.Unlock()

	if at, ok := a.closed[key]; ok {
		if a.now().Sub(at) < a.tombstone {
			a.log.Warn("late item for flushed media group dropped",
				"group", key, "user_id", owner.ID, "kind", item.Kind)
			return false
		}
		delete(a.closed, key)
	}

	g, ok := a.groups[key]
	if !ok {
		g = &pendingGroup{owner: owner}
		a.groups[key] = g
	}
	g.items = append(g.items, item)
	if g.caption == "" && caption != "" {
		g.caption = caption
	}

	// перезапуск таймера: старый срабатывать не должен
	if g.timer != nil {
		g.timer.Stop()
	}
	a.gen++
	gen := a.gen
	g.gen = gen
	g.timer = time.AfterFunc(a.delay, func() { a.flush(key, gen) })
	return true
}

// flush runs from the timer goroutine. A fire whose generation no longer
// matches lost a race with Append or Clear and does nothing.
func (a *Aggregator) flush(key string, gen uint64) {
	a.table.RLock()
	defer a.table.RUnlock()

	a.groupsMu.Lock()
	g, ok := a.groups[key]
	if !ok || g.gen != gen {
		a.groupsMu.Unlock()
		return
	}
	delete(a.groups, key)
	now := a.now()
	if a.tombstone > 0 {
		a.closed[key] = now
	}
	a.pruneLocked(now)
	a.groupsMu.Unlock()

	if a.onFlush == nil {
		return
	}
	// таймерная горутина: паника здесь уронила бы весь процесс
	defer func() {
		if rec := recover(); rec != nil {
			a.log.Error("media group callback panicked", "group", key, "user_id", g.owner.ID, "panic", rec)
		}
	}()
	a.onFlush(Batch{Key: key, Owner: g.owner, Items: g.items, Caption: g.caption})
}

func (a *Aggregator) pruneLocked(now time.Time) {
	for k, at := range a.closed {
		if now.Sub(at) >= a.tombstone {
			delete(a.closed, k)
		}
	}
}

// Clear drops every pending group and tombstone under exclusive access and
// runs hooks before releasing it. It waits for in-flight appends and
// flushes. Returns the number of groups discarded.
func (a *Aggregator) Clear(hooks ...func()) int {
	a.table.Lock()
	defer a.table.Unlock()

	a.groupsMu.Lock()
	n := len(a.groups)
	for _, g := range a.groups {
		if g.timer != nil {
			g.timer.Stop()
		}
	}
	a.groups = make(map[string]*pendingGroup)
	a.closed = make(map[string]time.Time)
	a.groupsMu.Unlock()

	for _, h := range hooks {
		h()
	}
	return n
}

// Pending returns the number of open groups.
func (a *Aggregator) Pending() int {
	a.groupsMu.Lock()
	defer a.groupsMu.Unlock()
	return len(a.groups)
}
