// SPDX-License-Identifier: EPL-2.0

// Package vorbis provides Ogg Vorbis audio file decoding.
//
// This package uses github.com/jfreymuth/oggvorbis to decode Ogg Vorbis
// files. The decoder already produces float32 samples, so no conversion
// happens beyond interleaving, which oggvorbis performs itself.
//
// # Decoding Vorbis Files
//
//	file, _ := os.Open("tail.ogg")
//	source, err := vorbis.Decoder{}.Decode(file)
//	if err != nil {
//	    // Handle error
//	}
//	samples, err := audio.ReadAll(source, source.BufSize())
//
// # Channel Layout
//
// For stereo files, samples are interleaved:
//
//	[L0, R0, L1, R1, L2, R2, ...]
//
// # Length
//
// When the underlying reader is seekable, the source reports its total
// sample count through audio.Lengther. Otherwise Len returns -1.
package vorbis
