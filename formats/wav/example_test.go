// SPDX-License-Identifier: EPL-2.0

package wav_test

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/ik5/loopmix/audio"
	"github.com/ik5/loopmix/formats/wav"
)

// Example_roundTrip writes a short stereo clip and decodes it back into the
// float samples a mixer clip is built from.
func Example_roundTrip() {
	original := []int16{-1000, 1000, -500, 500, 0, 0}

	wavData := new(bytes.Buffer)
	if err := wav.WriteWAV16(wavData, 8000, 2, original); err != nil {
		fmt.Printf("Encode error: %v\n", err)
		return
	}

	source, err := wav.Decoder{}.Decode(wavData)
	if err != nil {
		fmt.Printf("Decode error: %v\n", err)
		return
	}

	samples, err := audio.ReadAll(source, 64)
	if err != nil {
		fmt.Printf("Read error: %v\n", err)
		return
	}

	recovered := make([]int16, len(samples))
	for i, s := range samples {
		recovered[i] = int16(s * 32768.0)
	}

	fmt.Printf("%d Hz, %d channels, %d frames\n", source.SampleRate(), source.Channels(), len(samples)/source.Channels())
	fmt.Printf("Recovered: %v\n", recovered)
	// Output:
	// 8000 Hz, 2 channels, 3 frames
	// Recovered: [-1000 1000 -500 500 0 0]
}

// Example_errorNotWAV shows handling of invalid WAV files.
func Example_errorNotWAV() {
	invalidData := bytes.NewReader([]byte("This is not a WAV file"))

	_, err := wav.Decoder{}.Decode(invalidData)
	if errors.Is(err, wav.ErrNotWavFile) {
		fmt.Println("Detected: Not a valid WAV file")
	} else if err != nil {
		fmt.Printf("Other error: %v\n", err)
	}
	// Output: Detected: Not a valid WAV file
}

// Example_emptySamples writes a WAV file with no audio data.
func Example_emptySamples() {
	output := new(bytes.Buffer)
	if err := wav.WriteWAV16(output, 8000, 1, nil); err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}

	fmt.Printf("Wrote empty WAV: %d bytes (header only)\n", output.Len())
	// Output: Wrote empty WAV: 44 bytes (header only)
}
