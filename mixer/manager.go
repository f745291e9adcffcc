// SPDX-License-Identifier: EPL-2.0

package mixer

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"sync"
	"sync/atomic"

	"github.com/ik5/loopmix/audio"
	"github.com/ik5/loopmix/formats"
	"github.com/ik5/loopmix/utils"
)

const (
	DefaultMaxVoices     = 64
	DefaultEventCapacity = 256
)

// Option configures a Manager.
type Option func(*Manager)

// WithDecoders replaces the decoder registry used by RegisterClip.
func WithDecoders(r *audio.Registry) Option {
	return func(m *Manager) {
		if r != nil {
			m.decoders = r
		}
	}
}

// WithMaxVoices sets how many voices can be live at once. Starts beyond
// that are dropped and counted in Notifications.DroppedStarts.
func WithMaxVoices(n int) Option {
	return func(m *Manager) {
		if n > 0 {
			m.maxVoices = n
		}
	}
}

// WithEventCapacity sets how many voice events are buffered between two
// calls to Update.
func WithEventCapacity(n int) Option {
	return func(m *Manager) {
		if n > 0 {
			m.eventCap = n
		}
	}
}

// Manager owns the clip registry and the live voices, and renders their mix
// for the output device.
//
// Registration, Submit, SubmitBatch and Update belong to the control thread
// and are safe for concurrent use. Render and RenderFloat belong to the
// render thread; only one call may run at a time. The inspectors
// SamplePosition, VoiceState and LiveVoices read render-thread state and
// must not race with Render.
//
// The sample position wraps modulo the longest registered head. Playing
// voices are carried across the wrap unchanged, but the trigger grid is
// anchored to the wrapped position: quantized starts and stops stay
// aligned across a wrap only when the trigger resolution divides
// MaxSampleCount.
type Manager struct {
	spec      DeviceSpec
	decoders  *audio.Registry
	maxVoices int
	eventCap  int

	regMu sync.Mutex
	clips atomic.Pointer[clipTable]

	queue     *commandQueue
	completed atomic.Uint64

	// Render thread only.
	voices        *voicePool
	samplePos     int
	calls         uint64
	buffer        uint64 // index of the callback in progress
	work          []Command
	mix           []float32
	events        []Event
	droppedStarts int
	droppedEvents int
}

// New returns a Manager rendering for spec.
func New(spec DeviceSpec, opts ...Option) (*Manager, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}

	m := &Manager{
		spec:      spec,
		maxVoices: DefaultMaxVoices,
		eventCap:  DefaultEventCapacity,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.decoders == nil {
		m.decoders = formats.NewRegistry()
	}

	m.clips.Store(&clipTable{byName: map[string]ClipID{}})
	m.queue = newCommandQueue(m.eventCap)
	m.voices = newVoicePool(m.maxVoices)
	m.work = make([]Command, 0, 64)
	m.mix = make([]float32, spec.BufferSamples())
	m.events = make([]Event, 0, m.eventCap)

	Logger().Info("mixer created",
		"sample_rate", spec.SampleRate,
		"channels", spec.Channels,
		"buffer_size", spec.BufferSize,
		"format", spec.Format.String(),
		"max_voices", m.maxVoices)

	return m, nil
}

func (m *Manager) Spec() DeviceSpec { return m.spec }
func (m *Manager) SampleRate() int  { return m.spec.SampleRate }
func (m *Manager) BufferSize() int  { return m.spec.BufferSize }
func (m *Manager) Channels() int    { return m.spec.Channels }

// MaxSampleCount is the head length of the longest registered clip. The
// absolute sample position wraps modulo this value.
func (m *Manager) MaxSampleCount() int { return m.clips.Load().maxHead }

// RegisterClipData registers a clip from interleaved samples already in the
// device format. Registering a name that exists is a no-op.
func (m *Manager) RegisterClipData(name string, head, tail []float32, fadeSamples int) error {
	m.regMu.Lock()
	defer m.regMu.Unlock()

	table := m.clips.Load()
	if _, ok := table.lookup(name); ok {
		return nil
	}

	ch := m.spec.Channels
	if len(head)%ch != 0 {
		return fmt.Errorf("%w: head of %q has %d samples, not a whole number of %d-channel frames",
			ErrFormatMismatch, name, len(head), ch)
	}
	tail = tail[:len(tail)-len(tail)%ch]
	if fadeSamples > 0 {
		fadeSamples -= fadeSamples % ch
	}

	clip, err := NewClip(name, head, tail, fadeSamples)
	if err != nil {
		return err
	}

	next := table.with(clip)
	m.clips.Store(next)

	Logger().Debug("clip registered",
		"clip", name,
		"id", next.byName[name],
		"head", clip.NumSamples(false),
		"tail", clip.TailLen(),
		"fade", clip.NumFadeSamples())
	return nil
}

// Clip returns the handle of the clip registered under name.
func (m *Manager) Clip(name string) (ClipID, bool) {
	return m.clips.Load().lookup(name)
}

// NumSamplesInClip returns the head length of the named clip, plus its tail
// when includeTail is set, or 0 for an unknown name.
func (m *Manager) NumSamplesInClip(name string, includeTail bool) int {
	table := m.clips.Load()
	id, ok := table.lookup(name)
	if !ok {
		return 0
	}
	return table.get(id).NumSamples(includeTail)
}

// Submit validates cmd and queues it for the next render callback.
func (m *Manager) Submit(cmd Command) error {
	if err := validateCommand(cmd, m.clips.Load(), m.spec.Channels); err != nil {
		Logger().Warn("command rejected", "command", fmt.Sprintf("%T", cmd), "err", err)
		return err
	}
	m.queue.push(cmd)
	return nil
}

// SubmitBatch queues every valid command of cmds under a single lock, so
// they take effect in the same render callback. Invalid commands are
// skipped; the returned error joins their rejections. An empty batch is
// rejected.
func (m *Manager) SubmitBatch(cmds []Command) error {
	if len(cmds) == 0 {
		return fmt.Errorf("%w: empty batch", ErrMalformedCommand)
	}

	clips := m.clips.Load()
	valid := make([]Command, 0, len(cmds))
	var errs []error
	for i, cmd := range cmds {
		if err := validateCommand(cmd, clips, m.spec.Channels); err != nil {
			errs = append(errs, fmt.Errorf("command %d: %w", i, err))
			continue
		}
		valid = append(valid, cmd)
	}

	if len(valid) > 0 {
		m.queue.push(valid...)
	}

	err := errors.Join(errs...)
	if err != nil {
		Logger().Warn("batch partially rejected", "submitted", len(cmds), "queued", len(valid), "err", err)
	}
	return err
}

// Update collects what the render thread left since the previous call.
func (m *Manager) Update() Notifications {
	n := m.queue.drain()
	m.completed.Add(n.Buffers)

	if n.DroppedStarts > 0 {
		Logger().Warn("voice pool exhausted, starts dropped", "count", n.DroppedStarts, "max_voices", m.maxVoices)
	}
	if n.DroppedEvents > 0 {
		Logger().Warn("event buffer full, events dropped", "count", n.DroppedEvents, "capacity", m.eventCap)
	}
	return n
}

// BuffersCompleted is the total number of render callbacks collected by
// Update so far.
func (m *Manager) BuffersCompleted() uint64 { return m.completed.Load() }

// Render is the output device callback. It fills out with the mix encoded
// in the device sample format. It does not allocate or block beyond one
// short lock acquisition.
func (m *Manager) Render(out []byte) {
	clear(out)

	if !m.begin() {
		return
	}

	bps := m.spec.Format.BytesPerSample()
	n := len(out) / bps
	pos := m.samplePos
	for off := 0; off < n; {
		k := min(len(m.mix), n-off)
		chunk := m.mix[:k]
		clear(chunk)
		m.mixVoices(chunk, pos+off)
		m.encode(out[off*bps:], chunk)
		off += k
	}

	m.finish(n)
}

// RenderFloat is Render for callers that want the raw float mix.
func (m *Manager) RenderFloat(out []float32) {
	clear(out)

	if !m.begin() {
		return
	}

	m.mixVoices(out, m.samplePos)
	m.finish(len(out))
}

// Flush hands the events of the last callback to the control thread
// without waiting for the next one. It belongs to the render thread and is
// meant for when no further callback will run soon, such as at the end of
// an offline render or once a pump has stopped.
func (m *Manager) Flush() {
	if len(m.events) == 0 && m.droppedStarts == 0 && m.droppedEvents == 0 {
		return
	}
	m.queue.deposit(m.events, m.droppedStarts, m.droppedEvents)
	m.events = m.events[:0]
	m.droppedStarts = 0
	m.droppedEvents = 0
}

// begin exchanges data with the control thread, prunes stopped voices and
// applies the queued commands. It reports whether any voice is live.
func (m *Manager) begin() bool {
	m.buffer = m.calls
	m.calls++

	m.work = m.queue.exchange(m.work, m.events, m.droppedStarts, m.droppedEvents)
	m.events = m.events[:0]
	m.droppedStarts = 0
	m.droppedEvents = 0

	m.voices.prune()

	clips := m.clips.Load()
	for i, cmd := range m.work {
		m.apply(cmd, clips)
		m.work[i] = nil
	}
	m.work = m.work[:0]

	return m.voices.len() > 0
}

func (m *Manager) mixVoices(dst []float32, pos int) {
	for i := range m.voices.len() {
		m.voices.at(i).Render(dst, pos)
	}
}

func (m *Manager) finish(n int) {
	for i := range m.voices.len() {
		v := m.voices.at(i)
		if v.events == 0 {
			continue
		}
		var dropped int
		m.events, dropped = appendEvents(m.events, v, m.buffer)
		m.droppedEvents += dropped
	}

	m.samplePos += n
	if limit := m.clips.Load().maxHead; limit > 0 && m.samplePos > limit {
		wrapped := m.samplePos % limit
		shift := m.samplePos - wrapped
		m.samplePos = wrapped

		// Move every playhead with the position so no voice skips.
		for i := range m.voices.len() {
			m.voices.at(i).rebase(shift)
		}
	}
}

func (m *Manager) encode(dst []byte, src []float32) {
	if m.spec.Format == Int16LE {
		utils.PutInt16LE(dst, src)
		return
	}
	for i, s := range src {
		binary.LittleEndian.PutUint32(dst[4*i:], math.Float32bits(s))
	}
}

func (m *Manager) apply(cmd Command, clips *clipTable) {
	switch c := cmd.(type) {
	case SetVolume:
		if v := m.voices.find(c.VoiceID); v != nil {
			v.SetVolume(c.Volume)
		}
	case Start:
		for i, clip := range clips.clips {
			m.start(clip, c.BaseID+i, c.Volume, c.TriggerRes, c.Loop)
		}
	case StartLoop:
		m.start(clips.get(c.Clip), c.VoiceID, c.Volume, c.TriggerRes, true)
	case OneShot:
		m.start(clips.get(c.Clip), c.VoiceID, c.Volume, c.TriggerRes, false)
	case Stop:
		for i := range m.voices.len() {
			m.voices.at(i).SetStopping(c.TriggerRes)
		}
	case StopLoop:
		if v := m.voices.find(c.VoiceID); v != nil {
			v.SetStopping(c.TriggerRes)
		}
	}
}

// start re-arms a live voice with the given id, or takes a new one from the
// pool.
func (m *Manager) start(clip *Clip, id int, vol float32, res int, loop bool) {
	if clip == nil {
		return
	}

	v := m.voices.find(id)
	if v == nil {
		v = m.voices.acquire(id, clip, vol)
		if v == nil {
			m.droppedStarts++
			return
		}
	}
	v.SetPending(res, loop)
}

// SamplePosition returns the absolute sample position of the next render.
func (m *Manager) SamplePosition() int { return m.samplePos }

// VoiceState returns the state of the live voice id.
func (m *Manager) VoiceState(id int) (State, bool) {
	v := m.voices.find(id)
	if v == nil {
		return StateStopped, false
	}
	return v.state, true
}

// LiveVoices returns how many voices occupy pool slots, stopped voices
// awaiting pruning included.
func (m *Manager) LiveVoices() int { return m.voices.len() }
