// SPDX-License-Identifier: EPL-2.0

package mixer

import "fmt"

// EventKind identifies a voice transition reported back to the control
// thread.
type EventKind uint8

const (
	// EventVoiceStarted fires when a quantized start takes effect.
	EventVoiceStarted EventKind = iota + 1
	// EventVoiceReleased fires when a voice enters its release tail.
	EventVoiceReleased
	// EventVoiceStopped fires when a voice reaches the stopped state.
	EventVoiceStopped
)

func (k EventKind) String() string {
	switch k {
	case EventVoiceStarted:
		return "started"
	case EventVoiceReleased:
		return "released"
	case EventVoiceStopped:
		return "stopped"
	default:
		return fmt.Sprintf("EventKind(%d)", int(k))
	}
}

// Event is a voice transition observed during one render callback.
// Buffer is the index of that callback, counted from zero.
type Event struct {
	Kind    EventKind
	VoiceID int
	Buffer  uint64
}

// Notifications is what the render thread left for the control thread since
// the previous Update.
//
// Events observed during a callback are handed over at the start of the
// next one, so they reach Update one buffer late. When no callback follows,
// the render side calls Manager.Flush to release them.
type Notifications struct {
	// Buffers is the number of render callbacks that ran.
	Buffers uint64
	Events  []Event
	// DroppedStarts counts start commands discarded because every voice
	// slot was busy.
	DroppedStarts int
	// DroppedEvents counts events lost because the event buffer was full.
	DroppedEvents int
}

// appendEvents expands the mask of v into events, returning the new slice
// and how many did not fit. It never grows events past its capacity.
func appendEvents(events []Event, v *Voice, buffer uint64) ([]Event, int) {
	dropped := 0
	for _, e := range [...]struct {
		bit  eventMask
		kind EventKind
	}{
		{maskStarted, EventVoiceStarted},
		{maskReleased, EventVoiceReleased},
		{maskStopped, EventVoiceStopped},
	} {
		if v.events&e.bit == 0 {
			continue
		}
		if len(events) == cap(events) {
			dropped++
			continue
		}
		events = append(events, Event{Kind: e.kind, VoiceID: v.id, Buffer: buffer})
	}
	v.events = 0
	return events, dropped
}
