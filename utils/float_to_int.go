// SPDX-License-Identifier: EPL-2.0

package utils

import "encoding/binary"

func Float32ToInt16(x float32) int16 {
	// Clamp and scale
	if x > 1 {
		x = 1
	} else if x < -1 {
		x = -1
	}

	// Use 32767 for positive max to avoid overflow
	return int16(x * 32767.0)
}

// PutInt16LE clamps every sample of src to 16-bit PCM and writes it to dst
// in little-endian order. dst must hold at least 2*len(src) bytes.
func PutInt16LE(dst []byte, src []float32) {
	if len(src) == 0 {
		return
	}
	_ = dst[2*len(src)-1]
	for i, x := range src {
		binary.LittleEndian.PutUint16(dst[2*i:], uint16(Float32ToInt16(x)))
	}
}
