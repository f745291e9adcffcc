// SPDX-License-Identifier: EPL-2.0

package mixer

import (
	"fmt"
	"os"

	"github.com/ik5/loopmix/audio"
)

// RegisterClip decodes headPath and tailPath and registers them as the clip
// name. The decoder is chosen by file extension. fadeMS is the fade length
// in milliseconds.
//
// The head must match the device sample rate and channel count. A tail that
// is missing, fails to decode or does not match is dropped and the clip is
// registered without one. Registering a name that exists is a no-op.
func (m *Manager) RegisterClip(name, headPath, tailPath string, fadeMS int) error {
	if _, ok := m.Clip(name); ok {
		return nil
	}

	head, err := m.load(headPath)
	if err != nil {
		return fmt.Errorf("loading head of clip %q: %w", name, err)
	}

	var tail []float32
	if tailPath != "" {
		tail, err = m.load(tailPath)
		if err != nil {
			Logger().Warn("tail unusable, registering clip without it",
				"clip", name, "path", tailPath, "err", err)
			tail = nil
		}
	}

	fade := fadeMS * m.spec.SampleRate / 1000 * m.spec.Channels
	return m.RegisterClipData(name, head, tail, fade)
}

func (m *Manager) load(path string) ([]float32, error) {
	dec, err := m.decoders.ForPath(path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w", err)
	}
	defer f.Close()

	src, err := dec.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	defer src.Close()

	if src.SampleRate() != m.spec.SampleRate || src.Channels() != m.spec.Channels {
		return nil, fmt.Errorf("%w: %s is %d Hz / %d ch, device is %d Hz / %d ch",
			ErrFormatMismatch, path, src.SampleRate(), src.Channels(), m.spec.SampleRate, m.spec.Channels)
	}

	samples, err := audio.ReadAll(src, src.BufSize())
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return samples, nil
}
