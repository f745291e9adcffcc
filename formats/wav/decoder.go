// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"fmt"
	"io"
	"math"

	goaudio "github.com/go-audio/audio"
	gowav "github.com/go-audio/wav"
	"github.com/ik5/loopmix/audio"
)

// WAV audio format tags from the fmt chunk.
const (
	formatPCM   = 1
	formatFloat = 3
)

// pcmReader is an interface for gowav.Decoder to allow testing
type pcmReader interface {
	PCMBuffer(buf *goaudio.IntBuffer) (int, error)
}

type wavSource struct {
	dec        pcmReader
	sampleRate int
	channels   int
	bitDepth   int
	float      bool
	length     int64
	intBuf     *goaudio.IntBuffer
}

func (s *wavSource) SampleRate() int { return s.sampleRate }
func (s *wavSource) Channels() int   { return s.channels }
func (s *wavSource) Close() error    { return nil }
func (s *wavSource) Len() int64      { return s.length }

func (s *wavSource) BufSize() int {
	if s.intBuf != nil {
		return cap(s.intBuf.Data)
	}
	return 4096
}

func (s *wavSource) ReadSamples(dst []float32) (int, error) {
	if len(dst) == 0 {
		return 0, nil
	}

	// Reuse the int buffer unless dst outgrew it
	if s.intBuf == nil || cap(s.intBuf.Data) < len(dst) {
		s.intBuf = &goaudio.IntBuffer{
			Data: make([]int, len(dst)),
		}
	} else {
		s.intBuf.Data = s.intBuf.Data[:len(dst)]
	}

	// Read from decoder
	n, err := s.dec.PCMBuffer(s.intBuf)
	if n == 0 {
		if err != nil && err != io.EOF {
			return 0, fmt.Errorf("%w", err)
		}
		return 0, io.EOF
	}

	// Convert int samples to float32
	s.convert(dst[:n], s.intBuf.Data[:n])

	if err != nil && err != io.EOF {
		return n, fmt.Errorf("%w", err)
	}
	return n, nil
}

// convert normalizes decoded integers to float32 in [-1, 1].
func (s *wavSource) convert(dst []float32, src []int) {
	if s.float {
		// go-audio hands back the raw 32-bit word; reinterpret it.
		for i, v := range src {
			dst[i] = math.Float32frombits(uint32(int32(v)))
		}
		return
	}

	if s.bitDepth == 8 {
		// 8-bit WAV is unsigned with a 128 midpoint.
		for i, v := range src {
			dst[i] = float32(v-128) / 128.0
		}
		return
	}

	scale := 1.0 / float32(int64(1)<<(s.bitDepth-1))
	for i, v := range src {
		dst[i] = float32(v) * scale
	}
}

type Decoder struct{}

func (Decoder) Decode(r io.Reader) (audio.Source, error) {
	rs, err := audio.ReadSeeker(r)
	if err != nil {
		return nil, fmt.Errorf("%w", err)
	}

	// Check RIFF/WAVE header and read the fmt chunk
	dec := gowav.NewDecoder(rs)
	if !dec.IsValidFile() {
		return nil, ErrNotWavFile
	}

	// Skip to the start of the data chunk
	if err := dec.FwdToPCM(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnsupportedWavChunks, err)
	}

	bitDepth := int(dec.BitDepth)
	float := false

	switch dec.WavAudioFormat {
	case formatPCM:
		switch bitDepth {
		case 8, 16, 24, 32:
		default:
			return nil, fmt.Errorf("%w: %d-bit PCM", ErrUnsupportedEncoding, bitDepth)
		}
	case formatFloat:
		if bitDepth != 32 {
			return nil, fmt.Errorf("%w: %d-bit float", ErrUnsupportedEncoding, bitDepth)
		}
		float = true
	default:
		return nil, fmt.Errorf("%w: format tag %#x", ErrUnsupportedEncoding, dec.WavAudioFormat)
	}

	format := dec.Format()
	if format == nil || format.NumChannels < 1 {
		return nil, ErrInvalidChannels
	}

	return &wavSource{
		dec:        dec,
		sampleRate: format.SampleRate,
		channels:   format.NumChannels,
		bitDepth:   bitDepth,
		float:      float,
		length:     dec.PCMLen() / int64(bitDepth/8),
	}, nil
}
