// SPDX-License-Identifier: EPL-2.0

// Package mp3 provides MP3 audio file decoding.
//
// This package uses github.com/hajimehoshi/go-mp3 to decode MP3 files.
// go-mp3 always produces 16-bit stereo, so sources from this package
// report two channels regardless of the encoded layout. A mono mixing
// device therefore cannot register MP3 clips; the mixer rejects the
// channel mismatch instead of downmixing.
//
// # Decoding MP3 Files
//
//	file, _ := os.Open("pad.mp3")
//	source, err := mp3.Decoder{}.Decode(file)
//	if err != nil {
//	    // Handle error
//	}
//	samples, err := audio.ReadAll(source, source.BufSize())
//
// # Output Format
//
// MP3 decoder output:
//   - Sample format: float32 in range [-1.0, 1.0)
//   - Channels: 2 (stereo)
//   - Sample rate: Depends on the MP3 file (typically 44.1kHz or 48kHz)
//
// # Limitations
//
// Note:
//   - MP3 writing is not supported (decoding only)
//   - Encoder delay and padding are not trimmed, so MP3 is a poor fit for
//     loops that must be sample-accurate; prefer WAV or AIFF for heads
package mp3
