// SPDX-License-Identifier: EPL-2.0

package mixer

import (
	"sync"
	"testing"
)

func TestCommandQueue_Exchange(t *testing.T) {
	t.Parallel()

	q := newCommandQueue(4)
	q.push(Stop{}, StopLoop{VoiceID: 1})
	q.push(SetVolume{VoiceID: 2, Volume: 0.5})

	work := q.exchange(make([]Command, 0, 8), nil, 0, 0)
	if len(work) != 3 {
		t.Fatalf("exchange() returned %d commands, want 3", len(work))
	}
	if _, ok := work[2].(SetVolume); !ok {
		t.Errorf("commands out of order: %#v", work)
	}

	events := []Event{{Kind: EventVoiceStarted, VoiceID: 1}}
	if again := q.exchange(work[:0], events, 2, 1); len(again) != 0 {
		t.Errorf("second exchange() returned %d commands", len(again))
	}

	n := q.drain()
	if n.Buffers != 2 || len(n.Events) != 1 || n.DroppedStarts != 2 || n.DroppedEvents != 1 {
		t.Errorf("drain() = %+v", n)
	}
}

func TestCommandQueue_EventCapacity(t *testing.T) {
	t.Parallel()

	q := newCommandQueue(2)
	events := make([]Event, 3)

	q.exchange(nil, events, 0, 0)
	q.exchange(nil, events, 0, 0)

	n := q.drain()
	if len(n.Events) != 2 || n.DroppedEvents != 4 {
		t.Errorf("events = %d, dropped = %d, want 2 and 4", len(n.Events), n.DroppedEvents)
	}
}

func TestCommandQueue_Concurrent(t *testing.T) {
	t.Parallel()

	q := newCommandQueue(16)

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 100 {
				q.push(Stop{})
			}
		}()
	}

	total := 0
	var work []Command
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	for {
		work = q.exchange(work[:0], nil, 0, 0)
		total += len(work)
		select {
		case <-done:
			work = q.exchange(work[:0], nil, 0, 0)
			total += len(work)
			if total != 800 {
				t.Errorf("received %d commands, want 800", total)
			}
			return
		default:
		}
	}
}
