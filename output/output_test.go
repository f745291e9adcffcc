// SPDX-License-Identifier: EPL-2.0

package output

import (
	"bytes"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ik5/loopmix/internal/audiotest"
	"github.com/ik5/loopmix/mixer"
)

// countingRenderer fills every byte with 0x11 and counts calls.
type countingRenderer struct {
	calls atomic.Int64
}

func (r *countingRenderer) Render(out []byte) {
	r.calls.Add(1)
	for i := range out {
		out[i] = 0x11
	}
}

func TestStream_WholeFrames(t *testing.T) {
	t.Parallel()

	spec := mixer.DeviceSpec{SampleRate: 8000, Channels: 2, BufferSize: 16, Format: mixer.Int16LE}
	r := &countingRenderer{}
	s := newStream(spec, r)

	tests := []struct {
		size int
		want int
	}{
		{64, 64},
		{66, 64},
		{3, 0},
	}

	for _, tt := range tests {
		n, err := s.Read(make([]byte, tt.size))
		if err != nil || n != tt.want {
			t.Errorf("Read(%d bytes) = %d, %v, want %d", tt.size, n, err, tt.want)
		}
	}
	if r.calls.Load() != 2 {
		t.Errorf("Render called %d times, want 2", r.calls.Load())
	}
}

func TestBufferDuration(t *testing.T) {
	t.Parallel()

	spec := mixer.DeviceSpec{SampleRate: 48000, Channels: 2, BufferSize: 480}
	if got := bufferDuration(spec); got != 10*time.Millisecond {
		t.Errorf("bufferDuration() = %v, want 10ms", got)
	}
}

func TestNewPump_Errors(t *testing.T) {
	t.Parallel()

	if _, err := NewPump(mixer.DefaultDeviceSpec(), nil, nil); !errors.Is(err, ErrNilRenderer) {
		t.Errorf("NewPump(nil renderer) error = %v", err)
	}
	if _, err := NewPump(mixer.DeviceSpec{}, &countingRenderer{}, nil); !errors.Is(err, mixer.ErrInvalidDeviceSpec) {
		t.Errorf("NewPump(zero spec) error = %v", err)
	}
}

func TestPump_StepWritesSink(t *testing.T) {
	t.Parallel()

	m, err := mixer.New(mixer.DeviceSpec{SampleRate: 8000, Channels: 1, BufferSize: 32, Format: mixer.Int16LE})
	if err != nil {
		t.Fatalf("mixer.New() error = %v", err)
	}
	if err := m.RegisterClipData("a", audiotest.Constant(100, 0.5), nil, 0); err != nil {
		t.Fatalf("RegisterClipData() error = %v", err)
	}
	id, _ := m.Clip("a")
	if err := m.Submit(mixer.StartLoop{Clip: id, VoiceID: 1, Volume: 1}); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}

	var sink bytes.Buffer
	p, err := NewPump(m.Spec(), m, &sink)
	if err != nil {
		t.Fatalf("NewPump() error = %v", err)
	}

	for range 3 {
		if err := p.Step(); err != nil {
			t.Fatalf("Step() error = %v", err)
		}
	}

	if sink.Len() != 3*64 {
		t.Errorf("sink has %d bytes, want %d", sink.Len(), 3*64)
	}
	if m.SamplePosition() != 96 {
		t.Errorf("SamplePosition() = %d, want 96", m.SamplePosition())
	}
	if n := m.Update(); n.Buffers != 3 {
		t.Errorf("Buffers = %d, want 3", n.Buffers)
	}
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("pipe closed") }

func TestPump_StartStop(t *testing.T) {
	t.Parallel()

	r := &countingRenderer{}
	spec := mixer.DeviceSpec{SampleRate: 8000, Channels: 1, BufferSize: 8}
	p, err := NewPump(spec, r, nil)
	if err != nil {
		t.Fatalf("NewPump() error = %v", err)
	}

	p.Start()
	p.Start()
	if !p.IsStarted() {
		t.Fatal("IsStarted() = false after Start")
	}

	deadline := time.Now().Add(2 * time.Second)
	for r.calls.Load() < 3 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}

	p.Stop()
	p.Stop()
	if p.IsStarted() {
		t.Error("IsStarted() = true after Stop")
	}
	if r.calls.Load() < 3 {
		t.Errorf("Render called %d times, want at least 3", r.calls.Load())
	}

	after := r.calls.Load()
	time.Sleep(10 * time.Millisecond)
	if r.calls.Load() != after {
		t.Error("Render called after Stop")
	}
}

func TestPump_SinkError(t *testing.T) {
	t.Parallel()

	spec := mixer.DeviceSpec{SampleRate: 8000, Channels: 1, BufferSize: 8}
	p, err := NewPump(spec, &countingRenderer{}, failingWriter{})
	if err != nil {
		t.Fatalf("NewPump() error = %v", err)
	}

	p.Start()
	deadline := time.Now().Add(2 * time.Second)
	for p.Err() == nil && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	p.Stop()

	if p.Err() == nil {
		t.Error("Err() = nil after a failing sink")
	}
}

func TestPump_StopFlushesEvents(t *testing.T) {
	t.Parallel()

	m, err := mixer.New(mixer.DeviceSpec{SampleRate: 8000, Channels: 1, BufferSize: 8, Format: mixer.Float32LE})
	if err != nil {
		t.Fatalf("mixer.New() error = %v", err)
	}
	if err := m.RegisterClipData("a", audiotest.Constant(4, 0.5), nil, 0); err != nil {
		t.Fatal(err)
	}
	id, _ := m.Clip("a")
	if err := m.Submit(mixer.OneShot{Clip: id, VoiceID: 1, Volume: 1}); err != nil {
		t.Fatal(err)
	}

	p, err := NewPump(m.Spec(), m, nil)
	if err != nil {
		t.Fatalf("NewPump() error = %v", err)
	}
	if err := p.Step(); err != nil {
		t.Fatalf("Step() error = %v", err)
	}
	p.Start()
	p.Stop()

	var kinds []mixer.EventKind
	for _, e := range m.Update().Events {
		kinds = append(kinds, e.Kind)
	}
	if len(kinds) != 2 || kinds[0] != mixer.EventVoiceStarted || kinds[1] != mixer.EventVoiceStopped {
		t.Errorf("event kinds = %v, want [started stopped]", kinds)
	}
}
