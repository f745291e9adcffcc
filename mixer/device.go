// SPDX-License-Identifier: EPL-2.0

package mixer

import "fmt"

// SampleFormat is the byte encoding the platform callback expects.
type SampleFormat int

const (
	// Float32LE is interleaved little-endian IEEE float32.
	Float32LE SampleFormat = iota
	// Int16LE is interleaved little-endian signed 16-bit PCM.
	Int16LE
)

func (f SampleFormat) String() string {
	switch f {
	case Float32LE:
		return "float32le"
	case Int16LE:
		return "int16le"
	default:
		return fmt.Sprintf("SampleFormat(%d)", int(f))
	}
}

// ParseSampleFormat accepts the names produced by String plus the short
// forms "f32" and "s16".
func ParseSampleFormat(s string) (SampleFormat, error) {
	switch s {
	case "float32le", "float32", "f32":
		return Float32LE, nil
	case "int16le", "int16", "s16":
		return Int16LE, nil
	default:
		return 0, fmt.Errorf("%w: unknown sample format %q", ErrInvalidDeviceSpec, s)
	}
}

// BytesPerSample is the size of one encoded sample.
func (f SampleFormat) BytesPerSample() int {
	if f == Int16LE {
		return 2
	}
	return 4
}

// DeviceSpec describes the output device the mixer renders for.
// BufferSize is in frames.
type DeviceSpec struct {
	SampleRate int
	Channels   int
	BufferSize int
	Format     SampleFormat
}

// DefaultDeviceSpec returns 44.1 kHz mono float32 with 4096-frame buffers.
func DefaultDeviceSpec() DeviceSpec {
	return DeviceSpec{
		SampleRate: 44100,
		Channels:   1,
		BufferSize: 4096,
		Format:     Float32LE,
	}
}

// Validate checks the spec for values the mixer cannot render with.
func (s DeviceSpec) Validate() error {
	if s.SampleRate <= 0 {
		return fmt.Errorf("%w: sample rate must be positive, got %d", ErrInvalidDeviceSpec, s.SampleRate)
	}
	if s.Channels <= 0 {
		return fmt.Errorf("%w: channels must be positive, got %d", ErrInvalidDeviceSpec, s.Channels)
	}
	if s.BufferSize <= 0 {
		return fmt.Errorf("%w: buffer size must be positive, got %d", ErrInvalidDeviceSpec, s.BufferSize)
	}
	if s.Format != Float32LE && s.Format != Int16LE {
		return fmt.Errorf("%w: %s", ErrInvalidDeviceSpec, s.Format)
	}
	return nil
}

// BufferSamples is the interleaved sample count of one device buffer.
func (s DeviceSpec) BufferSamples() int {
	return s.BufferSize * s.Channels
}

// BufferBytes is the byte size of one encoded device buffer.
func (s DeviceSpec) BufferBytes() int {
	return s.BufferSamples() * s.Format.BytesPerSample()
}
