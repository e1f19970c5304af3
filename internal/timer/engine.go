// Package timer provides the in-process alarm facility the reminder core
// schedules against. Entries are keyed by an integer request code; setting
// a key that already has a pending entry replaces it, so at most one entry
// exists per key at any time.
package timer

import (
	"container/heap"
	"errors"
	"sync"
	"sync/atomic"
	"time"
)

var (
	ErrInvalidTriggerTime = errors.New("timer: invalid trigger time")
	ErrStopped            = errors.New("timer: engine stopped")
)

// Payload is the opaque data attached at scheduling time and handed back
// verbatim when the entry fires. It is the wire contract between the alarm
// scheduler and the firing handler and must round-trip exactly.
type Payload struct {
	TaskID    string
	Title     string
	Repeat    string
	CreatedAt time.Time
}

// Firing is delivered on the engine's out channel when an entry comes due.
type Firing struct {
	Key       int32
	TriggerAt time.Time
	Exact     bool
	Payload   Payload
}

// Alarm is the capability surface the scheduler depends on.
type Alarm interface {
	SetExact(trigger time.Time, key int32, payload Payload) error
	SetInexact(trigger time.Time, key int32, payload Payload) error
	Cancel(key int32)
	CanScheduleExact() bool
}

type entry struct {
	firing Firing
	seq    uint64
}

type entryQueue []entry

func (q entryQueue) Len() int { return len(q) }

func (q entryQueue) Less(i, j int) bool {
	return q[i].firing.TriggerAt.Before(q[j].firing.TriggerAt)
}

func (q entryQueue) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
}

func (q *entryQueue) Push(x any) {
	*q = append(*q, x.(entry))
}

func (q *entryQueue) Pop() any {
	old := *q
	n := len(old)
	item := old[n-1]
	*q = old[0 : n-1]
	return item
}

type Options struct {
	// BufferSize is the capacity of the out channel. Firings that cannot
	// be delivered to a slow consumer are dropped and counted.
	BufferSize int
	// ExactAllowed models the platform's exact-scheduling capability.
	ExactAllowed bool
	// InexactSlack is added to the trigger of inexact entries.
	InexactSlack time.Duration
}

// Engine is a single-goroutine timer loop over a trigger-ordered heap.
// Replaced and cancelled entries stay in the heap and are discarded lazily
// when they surface; the live map is authoritative.
type Engine struct {
	mu      sync.Mutex
	queue   entryQueue
	live    map[int32]uint64
	nextSeq uint64
	out     chan Firing
	wakeup  chan struct{}
	stopCh  chan struct{}
	doneCh  chan struct{}
	started bool
	stopped bool
	dropped uint64

	exactAllowed bool
	inexactSlack time.Duration
}

func NewEngine(opts Options) *Engine {
	if opts.BufferSize <= 0 {
		opts.BufferSize = 1
	}
	return &Engine{
		queue:        make(entryQueue, 0),
		live:         make(map[int32]uint64),
		out:          make(chan Firing, opts.BufferSize),
		wakeup:       make(chan struct{}, 1),
		stopCh:       make(chan struct{}),
		doneCh:       make(chan struct{}),
		exactAllowed: opts.ExactAllowed,
		inexactSlack: opts.InexactSlack,
	}
}

func (e *Engine) C() <-chan Firing {
	return e.out
}

func (e *Engine) Start() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.started {
		return
	}
	e.started = true
	heap.Init(&e.queue)
	go e.loop()
}

func (e *Engine) Stop() {
	e.mu.Lock()
	if !e.started || e.stopped {
		e.mu.Unlock()
		return
	}
	e.stopped = true
	close(e.stopCh)
	e.mu.Unlock()
	<-e.doneCh
}

func (e *Engine) CanScheduleExact() bool {
	return e.exactAllowed
}

func (e *Engine) SetExact(trigger time.Time, key int32, payload Payload) error {
	return e.set(trigger, key, payload, true)
}

func (e *Engine) SetInexact(trigger time.Time, key int32, payload Payload) error {
	return e.set(trigger.Add(e.inexactSlack), key, payload, false)
}

// Cancel removes any pending entry for key. Cancelling a key with nothing
// pending is a no-op. An entry cancelled before delivery is never emitted.
func (e *Engine) Cancel(key int32) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, ok := e.live[key]; !ok {
		return
	}
	delete(e.live, key)
	e.signalWakeup()
}

// Pending reports whether an entry is outstanding for key.
func (e *Engine) Pending(key int32) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	_, ok := e.live[key]
	return ok
}

func (e *Engine) Dropped() uint64 {
	return atomic.LoadUint64(&e.dropped)
}

func (e *Engine) set(trigger time.Time, key int32, payload Payload, exact bool) error {
	if trigger.IsZero() {
		return ErrInvalidTriggerTime
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.stopped {
		return ErrStopped
	}

	e.nextSeq++
	e.live[key] = e.nextSeq
	heap.Push(&e.queue, entry{
		firing: Firing{Key: key, TriggerAt: trigger, Exact: exact, Payload: payload},
		seq:    e.nextSeq,
	})
	e.signalWakeup()
	return nil
}

func (e *Engine) loop() {
	defer close(e.doneCh)
	defer close(e.out)

	var tm *time.Timer
	for {
		next, hasNext := e.peek()
		if !hasNext {
			select {
			case <-e.wakeup:
				continue
			case <-e.stopCh:
				return
			}
		}

		wait := time.Until(next.TriggerAt)
		if wait < 0 {
			wait = 0
		}
		tm = resetTimer(tm, wait)

		select {
		case <-tm.C:
			for _, firing := range e.popDue(time.Now()) {
				select {
				case e.out <- firing:
				default:
					atomic.AddUint64(&e.dropped, 1)
				}
			}
		case <-e.wakeup:
			continue
		case <-e.stopCh:
			if tm != nil {
				stopTimer(tm)
			}
			return
		}
	}
}

func (e *Engine) signalWakeup() {
	select {
	case e.wakeup <- struct{}{}:
	default:
	}
}

// peek returns the earliest live entry, discarding replaced and cancelled
// entries from the top of the heap as it goes.
func (e *Engine) peek() (Firing, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for len(e.queue) > 0 {
		head := e.queue[0]
		if e.isLive(head) {
			return head.firing, true
		}
		heap.Pop(&e.queue)
	}
	return Firing{}, false
}

func (e *Engine) popDue(now time.Time) []Firing {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]Firing, 0)
	for len(e.queue) > 0 {
		head := e.queue[0]
		if !e.isLive(head) {
			heap.Pop(&e.queue)
			continue
		}
		if head.firing.TriggerAt.After(now) {
			break
		}
		heap.Pop(&e.queue)
		delete(e.live, head.firing.Key)
		out = append(out, head.firing)
	}
	return out
}

func (e *Engine) isLive(item entry) bool {
	seq, ok := e.live[item.firing.Key]
	return ok && seq == item.seq
}

func resetTimer(tm *time.Timer, d time.Duration) *time.Timer {
	if tm == nil {
		return time.NewTimer(d)
	}
	stopTimer(tm)
	tm.Reset(d)
	return tm
}

func stopTimer(tm *time.Timer) {
	if tm == nil {
		return
	}
	if !tm.Stop() {
		select {
		case <-tm.C:
		default:
		}
	}
}
