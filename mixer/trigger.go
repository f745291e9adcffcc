// SPDX-License-Identifier: EPL-2.0

package mixer

// samplesTillTrigger returns how many samples separate pos from the next
// multiple of res, zero when pos is already on one. A resolution of zero
// means immediate.
func samplesTillTrigger(pos, res int) int {
	if res <= 0 {
		return 0
	}
	return (res - pos%res) % res
}

// nextTrigger is the smallest multiple of res that is >= pos.
func nextTrigger(pos, res int) int {
	return pos + samplesTillTrigger(pos, res)
}

// wrapPos returns pos modulo n in [0, n).
func wrapPos(pos, n int) int {
	return (pos%n + n) % n
}
