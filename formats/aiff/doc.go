// SPDX-License-Identifier: EPL-2.0

// Package aiff provides AIFF (Audio Interchange File Format) decoding.
//
// This package uses github.com/go-audio/aiff to decode AIFF files into
// interleaved float32 samples, so they can be registered as loop clips.
//
// # Supported Formats
//
// Currently supported:
//   - AIFF, uncompressed PCM
//   - 8, 16, 24 and 32-bit samples
//   - Mono and multi-channel
//   - Any sample rate
//
// AIFF-C compressed files are rejected with ErrUnsupportedBitDepth or
// ErrNotAiffFile depending on how far the header parses.
//
// # Decoding AIFF Files
//
//	file, _ := os.Open("drums.aif")
//	source, err := aiff.Decoder{}.Decode(file)
//	if err != nil {
//	    // Handle error
//	}
//	samples, err := audio.ReadAll(source, source.BufSize())
//
// The returned source reports its total length through audio.Lengther,
// which lets audio.ReadAll size its buffer in one allocation.
//
// # Error Handling
//
// The package defines several error types:
//   - ErrNotAiffFile: The input is not a valid AIFF file
//   - ErrUnsupportedBitDepth: Sample size other than 8/16/24/32 bits
//   - ErrUnsupportedAiffLayout: No channels in the COMM chunk
//
// AIFF stores samples big-endian; the go-audio decoder handles byte order.
package aiff
