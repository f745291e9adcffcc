// SPDX-License-Identifier: EPL-2.0

package audiotest

import (
	"fmt"
	"math"
	"os"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// WAV audio format tags as stored in the fmt chunk.
const (
	FormatPCM   = 1
	FormatFloat = 3
)

// WriteWAVFile encodes samples into a WAV file at path using go-audio's
// encoder. bitDepth is 8, 16, 24 or 32 for FormatPCM and 32 for FormatFloat.
func WriteWAVFile(path string, sampleRate, channels, bitDepth, format int, samples []float32) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%w", err)
	}
	defer f.Close()

	enc := wav.NewEncoder(f, sampleRate, bitDepth, channels, format)

	buf := &goaudio.IntBuffer{
		Format: &goaudio.Format{
			NumChannels: channels,
			SampleRate:  sampleRate,
		},
		Data:           make([]int, len(samples)),
		SourceBitDepth: bitDepth,
	}

	for i, s := range samples {
		if format == FormatFloat {
			buf.Data[i] = int(int32(math.Float32bits(s)))
			continue
		}
		buf.Data[i] = pcmValue(s, bitDepth)
	}

	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("encoding %s: %w", path, err)
	}

	if err := enc.Close(); err != nil {
		return fmt.Errorf("finalizing %s: %w", path, err)
	}
	return nil
}

func pcmValue(s float32, bitDepth int) int {
	full := float64(int64(1) << (bitDepth - 1))
	v := float64(s) * full
	v = math.Max(-full, math.Min(full-1, v))
	if bitDepth == 8 {
		// 8-bit WAV is unsigned.
		return int(math.Round(v)) + 128
	}
	return int(math.Round(v))
}
