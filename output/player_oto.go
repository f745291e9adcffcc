// SPDX-License-Identifier: EPL-2.0

//go:build !headless

package output

import (
	"fmt"
	"sync"

	"github.com/ebitengine/oto/v3"
	"github.com/ik5/loopmix/mixer"
)

var (
	ctxMutex sync.Mutex
	ctx      *oto.Context
	ctxSpec  mixer.DeviceSpec
)

// openContext opens the process-wide oto context on first use.
func openContext(spec mixer.DeviceSpec) (*oto.Context, error) {
	ctxMutex.Lock()
	defer ctxMutex.Unlock()

	if ctx != nil {
		if ctxSpec != spec {
			return nil, fmt.Errorf("%w: have %+v, want %+v", ErrContextInUse, ctxSpec, spec)
		}
		return ctx, nil
	}

	format := oto.FormatFloat32LE
	if spec.Format == mixer.Int16LE {
		format = oto.FormatSignedInt16LE
	}

	c, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   spec.SampleRate,
		ChannelCount: spec.Channels,
		Format:       format,
		BufferSize:   bufferDuration(spec),
	})
	if err != nil {
		return nil, fmt.Errorf("opening audio device: %w", err)
	}
	<-ready

	ctx, ctxSpec = c, spec
	return ctx, nil
}

// Player plays a Renderer on the default audio device. The device pulls
// buffers from its own thread; each pull is one Render call.
type Player struct {
	player  *oto.Player
	started bool
	mutex   sync.Mutex
}

// NewPlayer opens the device for spec and attaches r. Playback starts
// with Start.
func NewPlayer(spec mixer.DeviceSpec, r Renderer) (*Player, error) {
	if r == nil {
		return nil, ErrNilRenderer
	}
	if err := spec.Validate(); err != nil {
		return nil, fmt.Errorf("%w", err)
	}

	c, err := openContext(spec)
	if err != nil {
		return nil, err
	}

	p := c.NewPlayer(newStream(spec, r))
	p.SetBufferSize(spec.BufferBytes())

	mixer.Logger().Info("audio device opened",
		"sample_rate", spec.SampleRate,
		"channels", spec.Channels,
		"buffer", bufferDuration(spec))

	return &Player{player: p}, nil
}

func (op *Player) Start() {
	op.mutex.Lock()
	defer op.mutex.Unlock()

	if !op.started && op.player != nil {
		op.player.Play()
		op.started = true
	}
}

// Stop pauses the device. The mixer keeps its position; Start resumes.
// The device may still be inside a callback when Pause returns, so the
// events of the last buffer reach Update after the next Start.
func (op *Player) Stop() {
	op.mutex.Lock()
	defer op.mutex.Unlock()

	if op.started && op.player != nil {
		op.player.Pause()
		op.started = false
	}
}

// PlayPause toggles playback and reports whether the device is now
// playing.
func (op *Player) PlayPause() bool {
	if op.IsStarted() {
		op.Stop()
		return false
	}
	op.Start()
	return op.IsStarted()
}

func (op *Player) Close() error {
	op.Stop()

	op.mutex.Lock()
	defer op.mutex.Unlock()

	if op.player == nil {
		return nil
	}
	err := op.player.Close()
	op.player = nil
	if err != nil {
		return fmt.Errorf("closing player: %w", err)
	}
	return nil
}

func (op *Player) IsStarted() bool {
	op.mutex.Lock()
	defer op.mutex.Unlock()
	return op.started
}
