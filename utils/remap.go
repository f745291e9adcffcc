// SPDX-License-Identifier: EPL-2.0

package utils

// Remap maps x from the range [m0, M0] onto [m1, M1] linearly.
// x outside [m0, M0] extrapolates. m0 must differ from M0.
func Remap(x, m0, M0, m1, M1 float32) float32 {
	return m1 + ((x-m0)/(M0-m0))*(M1-m1)
}
