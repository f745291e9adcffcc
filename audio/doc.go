// SPDX-License-Identifier: EPL-2.0

// Package audio provides the decoding primitives used to load clips.
//
// This package contains:
//   - Source interface for decoded audio input
//   - Lengther for sources that know their size up front
//   - Format registry for decoder registration by file extension
//   - ReadAll for draining a source into memory
//
// # Source Interface
//
// The Source interface is what every decoder in formats/ returns:
//
//	type Source interface {
//	    SampleRate() int
//	    Channels() int
//	    ReadSamples(dst []float32) (int, error)
//	    BufSize() int
//	    Close() error
//	}
//
// Samples are interleaved float32 values in [-1, 1]. ReadSamples returns
// the number of values written, not frames.
//
// # Format Registry
//
// Decoders are looked up by format key. Keys are case-insensitive and the
// leading dot of a file extension is ignored, so a path can be resolved
// directly:
//
//	registry := audio.NewRegistry()
//	registry.Register(wav.Decoder{}, "wav", "wave")
//
//	decoder, err := registry.ForPath("loops/drums.WAV")
//
// The registry is safe for concurrent use.
//
// # Loading
//
// Loop clips are small and played from memory, so sources are read in full:
//
//	source, _ := decoder.Decode(file)
//	defer source.Close()
//	samples, err := audio.ReadAll(source, source.BufSize())
//
// No sample rate or channel conversion happens here. Callers compare
// SampleRate and Channels against their device and reject mismatches.
package audio
