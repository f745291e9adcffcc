// SPDX-License-Identifier: EPL-2.0

package loopmix

import (
	"errors"
	"fmt"
	"io"

	"github.com/ik5/loopmix/formats/wav"
	"github.com/ik5/loopmix/mixer"
	"github.com/ik5/loopmix/utils"
)

var (
	ErrInvalidFrames = errors.New("loopmix: frame count must be positive")

	// ErrStopBounce may be returned by a buffer hook to end a bounce early.
	// What was rendered so far is kept.
	ErrStopBounce = errors.New("loopmix: bounce stopped")
)

// BufferHook runs on the control side before each buffer is rendered. buffer
// counts from zero.
type BufferHook func(buffer int) error

type bounceConfig struct {
	hook BufferHook
}

// BounceOption configures Render16 and Bounce.
type BounceOption func(*bounceConfig)

// WithBufferHook calls fn before every buffer. A script host uses this to
// submit commands and collect notifications between callbacks, as it would
// against a live device.
func WithBufferHook(fn BufferHook) BounceOption {
	return func(c *bounceConfig) {
		c.hook = fn
	}
}

// Render16 drives m for the given number of frames, one device buffer at a
// time, and returns the mix as interleaved 16-bit PCM. The last buffer is
// truncated to the requested length.
func Render16(m *mixer.Manager, frames int, opts ...BounceOption) ([]int16, error) {
	if frames <= 0 {
		return nil, ErrInvalidFrames
	}

	var cfg bounceConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	total := frames * m.Channels()
	pcm16 := make([]int16, 0, total)
	buf := make([]float32, m.BufferSize()*m.Channels())

	for buffer := 0; len(pcm16) < total; buffer++ {
		if cfg.hook != nil {
			if err := cfg.hook(buffer); err != nil {
				if errors.Is(err, ErrStopBounce) {
					break
				}
				return nil, fmt.Errorf("buffer %d: %w", buffer, err)
			}
		}

		m.RenderFloat(buf)

		n := min(len(buf), total-len(pcm16))
		for _, s := range buf[:n] {
			pcm16 = append(pcm16, utils.Float32ToInt16(s))
		}
	}

	// No callback follows the last buffer, so release its events now.
	m.Flush()

	mixer.Logger().Debug("bounce rendered", "frames", len(pcm16)/m.Channels(), "requested", frames)
	return pcm16, nil
}

// Bounce renders frames of m with Render16 and writes them to w as a WAV
// stream in the device's rate and channel count.
func Bounce(m *mixer.Manager, w io.Writer, frames int, opts ...BounceOption) error {
	pcm16, err := Render16(m, frames, opts...)
	if err != nil {
		return err
	}
	if err := wav.WriteWAV16(w, m.SampleRate(), m.Channels(), pcm16); err != nil {
		return fmt.Errorf("writing wav: %w", err)
	}
	return nil
}
