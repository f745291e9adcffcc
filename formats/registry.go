// SPDX-License-Identifier: EPL-2.0

// Package formats wires every decoder in this module into a single
// audio.Registry keyed by file extension.
package formats

import (
	"github.com/ik5/loopmix/audio"
	"github.com/ik5/loopmix/formats/aiff"
	"github.com/ik5/loopmix/formats/mp3"
	"github.com/ik5/loopmix/formats/vorbis"
	"github.com/ik5/loopmix/formats/wav"
)

// NewRegistry returns a registry with the WAV, AIFF, MP3 and Ogg Vorbis
// decoders bound to their usual extensions.
func NewRegistry() *audio.Registry {
	r := audio.NewRegistry()
	Register(r)
	return r
}

// Register adds the decoders of this module to r.
func Register(r *audio.Registry) {
	r.Register(wav.Decoder{}, "wav", "wave")
	r.Register(aiff.Decoder{}, "aif", "aiff", "aifc")
	r.Register(mp3.Decoder{}, "mp3")
	r.Register(vorbis.Decoder{}, "ogg", "oga")
}
