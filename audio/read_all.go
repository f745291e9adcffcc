// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"bytes"
	"errors"
	"fmt"
	"io"
)

// ReadAll drains src and returns every interleaved sample it produced.
//
// When src implements Lengther the result is allocated once at its final
// size; otherwise it grows by doubling. bufferSize is the read chunk and is
// rounded down to a whole number of frames.
//
// Example:
//
//	src, _ := wav.Decoder{}.Decode(file)
//	samples, err := audio.ReadAll(src, 4096)
func ReadAll(src Source, bufferSize int) ([]float32, error) {
	channels := src.Channels()
	if channels <= 0 {
		return nil, ErrNoChannels
	}

	bufferSize -= bufferSize % channels
	if bufferSize <= 0 {
		bufferSize = channels * 1024
	}

	estimated := 0
	if l, ok := src.(Lengther); ok {
		if n := l.Len(); n > 0 {
			estimated = int(n)
		}
	}

	samples := make([]float32, 0, estimated)
	buf := make([]float32, bufferSize)

	for {
		n, err := src.ReadSamples(buf)
		if n > 0 {
			if cap(samples)-len(samples) < n {
				newCap := len(samples) + max(n, cap(samples))
				grown := make([]float32, len(samples), newCap)
				copy(grown, samples)
				samples = grown
			}
			samples = append(samples, buf[:n]...)
		}

		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			return nil, fmt.Errorf("%w", err)
		}

		if n == 0 {
			// A source that makes no progress and reports no error is done.
			break
		}
	}

	// Drop a trailing partial frame so callers always see whole frames.
	samples = samples[:len(samples)-len(samples)%channels]

	return samples, nil
}

// ReadSeeker returns r itself when it can seek, otherwise it buffers the
// remaining input in memory.
func ReadSeeker(r io.Reader) (io.ReadSeeker, error) {
	if rs, ok := r.(io.ReadSeeker); ok {
		return rs, nil
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("buffering input: %w", err)
	}
	return bytes.NewReader(data), nil
}
