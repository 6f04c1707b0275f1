// Package reactive implements the signal engine behind compiled views.
// State lives in a Runtime instance; there is no process-wide registry, so
// two mounted documents never observe each other's writes. Updates are
// glitch-free: a flush visits each subscriber at most once per tick, in
// dependency order, and a write that does not change the value propagates
// nothing.
package reactive

import (
	"reflect"
	"sort"
	"sync"
)

// debugLog is set by platform-specific code
var debugLog func(args ...interface{})

// SetDebugLog sets the debug logging function
func SetDebugLog(fn func(args ...interface{})) {
	debugLog = fn
}

// SignalID identifies a signal within its Runtime.
type SignalID int

// signalState tracks where a signal is in the update cycle.
type signalState uint8

const (
	stateClean signalState = iota
	stateDirty
	stateReconciling
)

type signal struct {
	value any
	state signalState
	subs  map[int]*Subscription
}

type pendingWrite struct {
	id    SignalID
	value any
}

// Runtime owns a set of signals and their subscriptions. All methods are
// safe for concurrent use; flushes run on the writing goroutine.
type Runtime struct {
	mu       sync.Mutex
	signals  []*signal
	nextSub  int
	batching int
	flushing bool
	dirty    []SignalID
	deferred []pendingWrite
}

// NewRuntime returns an empty runtime.
func NewRuntime() *Runtime {
	return &Runtime{}
}

// Subscription connects a callback to one or more signals. Rank orders
// callbacks within a flush: lower ranks run first, so a derived computation
// ranks above everything it reads.
type Subscription struct {
	id     int
	rt     *Runtime
	rank   int
	ids    []SignalID
	notify func()
	closed bool
}

// NewSignal allocates a signal holding initial.
func (rt *Runtime) NewSignal(initial any) SignalID {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	id := SignalID(len(rt.signals))
	rt.signals = append(rt.signals, &signal{value: initial, subs: make(map[int]*Subscription)})
	return id
}

// Get returns the current value of a signal.
func (rt *Runtime) Get(id SignalID) any {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	return rt.signals[id].value
}

// Set writes a new value. An unchanged value (deep equality) is dropped
// before any propagation. Outside a batch the write flushes immediately;
// inside a batch it is collected for the single flush at batch end; during
// a flush it is deferred to the next tick so the current tick stays
// consistent.
func (rt *Runtime) Set(id SignalID, value any) {
	rt.mu.Lock()
	sig := rt.signals[id]
	if equalValues(sig.value, value) {
		rt.mu.Unlock()
		if debugLog != nil {
			debugLog("[Runtime] Set dropped, value unchanged for signal", id)
		}
		return
	}
	if rt.flushing {
		rt.deferred = append(rt.deferred, pendingWrite{id: id, value: value})
		rt.mu.Unlock()
		if debugLog != nil {
			debugLog("[Runtime] Set during flush deferred for signal", id)
		}
		return
	}
	sig.value = value
	rt.markDirtyLocked(id)
	start := rt.batching == 0
	rt.mu.Unlock()

	if start {
		rt.flush()
	}
}

// Update atomically reads, modifies and writes the value.
func (rt *Runtime) Update(id SignalID, fn func(any) any) {
	rt.mu.Lock()
	next := fn(rt.signals[id].value)
	rt.mu.Unlock()
	rt.Set(id, next)
}

// Batch runs fn as one logical update: every write inside it lands in the
// same tick, and each affected subscriber runs once when fn returns.
// Batches nest; only the outermost one flushes.
func (rt *Runtime) Batch(fn func()) {
	rt.mu.Lock()
	rt.batching++
	rt.mu.Unlock()

	defer func() {
		rt.mu.Lock()
		rt.batching--
		start := rt.batching == 0 && len(rt.dirty) > 0 && !rt.flushing
		rt.mu.Unlock()
		if start {
			rt.flush()
		}
	}()

	fn()
}

// Subscribe registers notify against every signal in ids. The callback runs
// during flushes, after every lower-ranked callback. Close the subscription
// to stop notifications; a closed subscription never fires again, even for
// a flush already in progress.
func (rt *Runtime) Subscribe(ids []SignalID, rank int, notify func()) *Subscription {
	sub := &Subscription{rt: rt, rank: rank, ids: ids, notify: notify}
	rt.mu.Lock()
	sub.id = rt.nextSub
	rt.nextSub++
	for _, id := range ids {
		rt.signals[id].subs[sub.id] = sub
	}
	rt.mu.Unlock()
	return sub
}

// Close removes the subscription synchronously. It is safe to call more
// than once and from inside a flush callback.
func (s *Subscription) Close() {
	if s == nil {
		return
	}
	s.rt.mu.Lock()
	defer s.rt.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	for _, id := range s.ids {
		delete(s.rt.signals[id].subs, s.id)
	}
}

func (rt *Runtime) markDirtyLocked(id SignalID) {
	sig := rt.signals[id]
	if sig.state == stateDirty {
		return
	}
	sig.state = stateDirty
	rt.dirty = append(rt.dirty, id)
}

// flush drains dirty signals tick by tick. Each tick: collect subscribers
// of every dirty signal, run them once each in rank order, mark the signals
// clean, then promote writes deferred during the tick into the next one.
func (rt *Runtime) flush() {
	for {
		rt.mu.Lock()
		if len(rt.dirty) == 0 {
			rt.mu.Unlock()
			return
		}
		rt.flushing = true
		tick := rt.dirty
		rt.dirty = nil

		seen := make(map[int]bool)
		var queue []*Subscription
		for _, id := range tick {
			sig := rt.signals[id]
			sig.state = stateReconciling
			for _, sub := range sig.subs {
				if !seen[sub.id] {
					seen[sub.id] = true
					queue = append(queue, sub)
				}
			}
		}
		sortSubs(queue)
		rt.mu.Unlock()

		if debugLog != nil {
			debugLog("[Runtime] Flushing tick:", len(tick), "signals,", len(queue), "subscribers")
		}

		for _, sub := range queue {
			rt.mu.Lock()
			closed := sub.closed
			rt.mu.Unlock()
			if closed {
				continue
			}
			sub.notify()
		}

		rt.mu.Lock()
		for _, id := range tick {
			rt.signals[id].state = stateClean
		}
		rt.flushing = false
		deferred := rt.deferred
		rt.deferred = nil
		for _, w := range deferred {
			sig := rt.signals[w.id]
			if equalValues(sig.value, w.value) {
				continue
			}
			sig.value = w.value
			rt.markDirtyLocked(w.id)
		}
		rt.mu.Unlock()
	}
}

// sortSubs orders by rank, then by subscription id for a stable tie-break.
func sortSubs(subs []*Subscription) {
	sort.Slice(subs, func(i, j int) bool {
		if subs[i].rank != subs[j].rank {
			return subs[i].rank < subs[j].rank
		}
		return subs[i].id < subs[j].id
	})
}

func equalValues(a, b any) bool {
	switch x := a.(type) {
	case float64:
		y, ok := b.(float64)
		return ok && x == y
	case string:
		y, ok := b.(string)
		return ok && x == y
	case bool:
		y, ok := b.(bool)
		return ok && x == y
	}
	return reflect.DeepEqual(a, b)
}
