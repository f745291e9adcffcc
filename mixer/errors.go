// SPDX-License-Identifier: EPL-2.0

package mixer

import "errors"

var (
	// ErrInvalidDeviceSpec is returned by New when the device configuration
	// cannot be rendered.
	ErrInvalidDeviceSpec = errors.New("invalid device spec")

	// ErrFormatMismatch indicates a clip whose sample rate or channel count
	// differs from the device. Clips are never converted.
	ErrFormatMismatch = errors.New("clip format does not match device")

	// ErrEmptyHead indicates a clip without any head samples.
	ErrEmptyHead = errors.New("clip head is empty")

	ErrMalformedCommand = errors.New("malformed command")
	ErrUnknownClip      = errors.New("unknown clip")
)
