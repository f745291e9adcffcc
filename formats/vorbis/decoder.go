// SPDX-License-Identifier: EPL-2.0

package vorbis

import (
	"fmt"
	"io"

	"github.com/ik5/loopmix/audio"
	"github.com/jfreymuth/oggvorbis"
)

// oggReader is an interface for oggvorbis.Reader to allow testing
type oggReader interface {
	SampleRate() int
	Channels() int
	Length() int64
	Read([]float32) (int, error)
}

type source struct {
	dec oggReader
}

func (s *source) SampleRate() int { return s.dec.SampleRate() }
func (s *source) Channels() int   { return s.dec.Channels() }
func (s *source) Close() error    { return nil }
func (s *source) BufSize() int    { return 4096 }

// Len reports interleaved samples, or -1 when the stream was not seekable.
func (s *source) Len() int64 {
	frames := s.dec.Length()
	if frames <= 0 {
		return -1
	}
	return frames * int64(s.dec.Channels())
}

func (s *source) ReadSamples(dst []float32) (int, error) {
	// Only ask for whole frames
	channels := s.dec.Channels()
	whole := len(dst) - len(dst)%channels
	if whole == 0 {
		return 0, nil
	}

	// oggvorbis fills whole frames directly into dst.
	n, err := s.dec.Read(dst[:whole])
	if err != nil && err != io.EOF {
		return n, fmt.Errorf("%w", err)
	}
	// No progress and no error means the stream is done
	if n == 0 && err == nil {
		return 0, io.EOF
	}
	return n, err
}

type Decoder struct{}

func (Decoder) Decode(r io.Reader) (audio.Source, error) {
	// A seekable input lets oggvorbis report the stream length.
	rs, err := audio.ReadSeeker(r)
	if err != nil {
		return nil, fmt.Errorf("%w", err)
	}

	dec, err := oggvorbis.NewReader(rs)
	if err != nil {
		return nil, fmt.Errorf("%w", err)
	}

	return &source{dec: dec}, nil
}
