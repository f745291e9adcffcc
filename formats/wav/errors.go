// SPDX-License-Identifier: EPL-2.0

package wav

import "errors"

var (
	ErrNotWavFile           = errors.New("not a WAV file")
	ErrUnsupportedWavChunks = errors.New("WAV file has no PCM data chunk")
	ErrUnsupportedEncoding  = errors.New("unsupported WAV sample encoding")
	ErrInvalidChannels      = errors.New("channel count must be positive")
)
