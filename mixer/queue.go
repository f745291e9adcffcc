// SPDX-License-Identifier: EPL-2.0

package mixer

import "sync"

// commandQueue hands commands from the control thread to the render thread
// and notifications back. The render thread takes the lock once per
// callback.
type commandQueue struct {
	mu sync.Mutex

	inbound []Command

	buffers       uint64
	events        []Event
	droppedStarts int
	droppedEvents int
}

func newCommandQueue(eventCap int) *commandQueue {
	return &commandQueue{events: make([]Event, 0, eventCap)}
}

func (q *commandQueue) push(cmds ...Command) {
	q.mu.Lock()
	q.inbound = append(q.inbound, cmds...)
	q.mu.Unlock()
}

// exchange is called by the render thread. It moves the pending commands
// into work, which must be empty, and deposits one completed buffer plus the
// notifications gathered during the previous callback.
func (q *commandQueue) exchange(work []Command, events []Event, droppedStarts, droppedEvents int) []Command {
	q.mu.Lock()
	work, q.inbound = q.inbound, work

	q.buffers++
	q.depositLocked(events, droppedStarts, droppedEvents)
	q.mu.Unlock()

	return work
}

// deposit hands notifications over outside of a callback.
func (q *commandQueue) deposit(events []Event, droppedStarts, droppedEvents int) {
	q.mu.Lock()
	q.depositLocked(events, droppedStarts, droppedEvents)
	q.mu.Unlock()
}

// depositLocked copies what fits of events and counts the rest as dropped.
func (q *commandQueue) depositLocked(events []Event, droppedStarts, droppedEvents int) {
	n := copy(q.events[len(q.events):cap(q.events)], events)
	q.events = q.events[:len(q.events)+n]
	q.droppedEvents += droppedEvents + len(events) - n
	q.droppedStarts += droppedStarts
}

// drain is called by the control thread.
func (q *commandQueue) drain() Notifications {
	q.mu.Lock()
	defer q.mu.Unlock()

	n := Notifications{
		Buffers:       q.buffers,
		DroppedStarts: q.droppedStarts,
		DroppedEvents: q.droppedEvents,
	}
	if len(q.events) > 0 {
		n.Events = make([]Event, len(q.events))
		copy(n.Events, q.events)
	}

	q.buffers = 0
	q.events = q.events[:0]
	q.droppedStarts = 0
	q.droppedEvents = 0
	return n
}
