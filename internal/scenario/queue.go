package scenario

import (
	"container/heap"
	"time"
)

// Event is a scheduled action
type Event struct {
	Time     time.Duration
	Action   Action
	Sequence int64 // insertion order for stable sorting
}

// eventHeap implements heap.Interface for min-heap of Events
type eventHeap []Event

func (h eventHeap) Len() int { return len(h) }

func (h eventHeap) Less(i, j int) bool {
	if h[i].Time != h[j].Time {
		return h[i].Time < h[j].Time
	}
	pi, pj := priority(h[i].Action.Kind()), priority(h[j].Action.Kind())
	if pi != pj {
		return pi < pj
	}
	return h[i].Sequence < h[j].Sequence
}

func (h eventHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *eventHeap) Push(x any) {
	*h = append(*h, x.(Event))
}

func (h *eventHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[0 : n-1]
	return x
}

// EventQueue is a priority queue of scheduled actions.
// Events are sorted by (Time, Priority, Sequence) for deterministic ordering.
type EventQueue struct {
	h   eventHeap
	seq int64
}

// NewEventQueue creates a new empty event queue
func NewEventQueue() *EventQueue {
	q := &EventQueue{h: make(eventHeap, 0)}
	heap.Init(&q.h)
	return q
}

// Push schedules an action
func (q *EventQueue) Push(at time.Duration, a Action) {
	q.seq++
	heap.Push(&q.h, Event{Time: at, Action: a, Sequence: q.seq})
}

// Pop removes and returns the earliest event
func (q *EventQueue) Pop() (Event, bool) {
	if len(q.h) == 0 {
		return Event{}, false
	}
	return heap.Pop(&q.h).(Event), true
}

// Peek returns the earliest event without removing it
func (q *EventQueue) Peek() (Event, bool) {
	if len(q.h) == 0 {
		return Event{}, false
	}
	return q.h[0], true
}

// PopDue removes and returns, in order, every event due at or before now
func (q *EventQueue) PopDue(now time.Duration) []Event {
	var due []Event
	for {
		e, ok := q.Peek()
		if !ok || e.Time > now {
			return due
		}
		q.Pop()
		due = append(due, e)
	}
}

// Empty returns true if the queue has no events
func (q *EventQueue) Empty() bool {
	return len(q.h) == 0
}

// Len returns the number of events in the queue
func (q *EventQueue) Len() int {
	return len(q.h)
}
