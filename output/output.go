// SPDX-License-Identifier: EPL-2.0

// Package output connects a mixer to the platform audio device.
//
// The default build plays through github.com/ebitengine/oto/v3. Building with
// the headless tag swaps in a Player that drives the renderer from a timer
// instead, for CI machines and servers without a sound card.
package output

import (
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/ik5/loopmix/mixer"
)

var (
	ErrNilRenderer = errors.New("output: nil renderer")

	// ErrContextInUse is returned when a second Player asks for a device
	// format that differs from the one already opened. The platform context
	// can only be created once per process.
	ErrContextInUse = errors.New("output: audio context already open with a different format")
)

// Renderer fills a device buffer. *mixer.Manager implements it.
type Renderer interface {
	Render(out []byte)
}

// flusher is implemented by renderers that hold notifications until the
// next callback, such as *mixer.Manager.
type flusher interface {
	Flush()
}

// stream adapts a Renderer to the io.Reader pulled by the device.
type stream struct {
	renderer   Renderer
	frameBytes int
}

func newStream(spec mixer.DeviceSpec, r Renderer) *stream {
	return &stream{
		renderer:   r,
		frameBytes: spec.Channels * spec.Format.BytesPerSample(),
	}
}

// Read renders as many whole frames as fit in p.
func (s *stream) Read(p []byte) (int, error) {
	n := len(p) - len(p)%s.frameBytes
	if n == 0 {
		return 0, nil
	}
	s.renderer.Render(p[:n])
	return n, nil
}

// bufferDuration is the playback time of one device buffer.
func bufferDuration(spec mixer.DeviceSpec) time.Duration {
	return time.Duration(spec.BufferSize) * time.Second / time.Duration(spec.SampleRate)
}

// Pump calls a Renderer once per buffer period from its own goroutine,
// standing in for a device callback. Rendered buffers are written to the
// sink when one is set.
type Pump struct {
	stream   *stream
	buf      []byte
	interval time.Duration
	sink     io.Writer

	mutex   sync.Mutex
	stop    chan struct{}
	done    chan struct{}
	started bool
	err     error
}

// NewPump returns a stopped Pump for spec. sink may be nil.
func NewPump(spec mixer.DeviceSpec, r Renderer, sink io.Writer) (*Pump, error) {
	if r == nil {
		return nil, ErrNilRenderer
	}
	if err := spec.Validate(); err != nil {
		return nil, err
	}

	return &Pump{
		stream:   newStream(spec, r),
		buf:      make([]byte, spec.BufferBytes()),
		interval: bufferDuration(spec),
		sink:     sink,
	}, nil
}

// Start begins pumping. Starting a running pump does nothing.
func (p *Pump) Start() {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	if p.started {
		return
	}
	p.started = true
	p.stop = make(chan struct{})
	p.done = make(chan struct{})
	go p.run(p.stop, p.done)
}

func (p *Pump) run(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if err := p.Step(); err != nil {
				p.mutex.Lock()
				p.err = err
				p.mutex.Unlock()
				return
			}
		}
	}
}

// Step renders one buffer synchronously and writes it to the sink.
func (p *Pump) Step() error {
	n, _ := p.stream.Read(p.buf)
	if p.sink == nil {
		return nil
	}
	if _, err := p.sink.Write(p.buf[:n]); err != nil {
		return fmt.Errorf("writing to sink: %w", err)
	}
	return nil
}

// Stop halts pumping and waits for the goroutine to exit. The renderer is
// flushed afterwards so the last buffer's notifications are not held back
// until a restart.
func (p *Pump) Stop() {
	p.mutex.Lock()
	if !p.started {
		p.mutex.Unlock()
		return
	}
	p.started = false
	stop, done := p.stop, p.done
	p.mutex.Unlock()

	close(stop)
	<-done

	if f, ok := p.stream.renderer.(flusher); ok {
		f.Flush()
	}
}

func (p *Pump) IsStarted() bool {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	return p.started
}

// Err returns the sink error that stopped the pump, if any.
func (p *Pump) Err() error {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	return p.err
}
