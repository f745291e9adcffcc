// SPDX-License-Identifier: EPL-2.0

// Package wav provides WAV audio file decoding and encoding.
//
// It uses the github.com/go-audio library for RIFF parsing.
//
// # Supported Formats
//
// Decoding:
//   - PCM 8, 16, 24 and 32-bit integer
//   - IEEE float 32-bit
//   - Mono and multi-channel
//   - Any sample rate
//
// Encoding:
//   - PCM 16-bit via WriteWAV16
//
// # Decoding WAV Files
//
//	file, _ := os.Open("loop.wav")
//	source, err := wav.Decoder{}.Decode(file)
//	if err != nil {
//	    // Handle error
//	}
//	samples, err := audio.ReadAll(source, source.BufSize())
//
// # Writing WAV Files
//
// Use WriteWAV16 to create WAV files, for example when bouncing a mix:
//
//	samples := []int16{100, -100, 200, -200}
//	file, _ := os.Create("output.wav")
//	err := wav.WriteWAV16(file, 44100, 2, samples)
//
// # Error Handling
//
// The package defines several error types:
//   - ErrNotWavFile: The input is not a valid WAV file
//   - ErrUnsupportedWavChunks: No PCM data chunk could be located
//   - ErrUnsupportedEncoding: Format tag or bit depth is not supported
//   - ErrInvalidChannels: WriteWAV16 was given a channel count below one
//
// # File Format
//
// WriteWAV16 writes:
//   - RIFF header (12 bytes)
//   - fmt chunk (24 bytes): audio format, sample rate, channels, bit depth
//   - data chunk: interleaved little-endian samples
package wav
