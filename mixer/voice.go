// SPDX-License-Identifier: EPL-2.0

package mixer

import (
	"fmt"
	"math"

	"github.com/ik5/loopmix/utils"
)

// State is the playback state of a Voice.
type State int

const (
	// StateStopped is terminal; the manager prunes stopped voices.
	StateStopped State = iota
	// StatePending waits for the next trigger boundary, then starts looping.
	StatePending
	// StateOneShot waits for the next trigger boundary, then plays the head
	// once and releases.
	StateOneShot
	// StateStarting plays the first pass of the head with a fade-in.
	StateStarting
	// StateLooping plays the head with the tail mixed in at the loop point.
	StateLooping
	// StateStopping keeps looping until a pass ends close enough to the
	// trigger boundary, then fades into the tail.
	StateStopping
	// StateTail plays the remainder of the release tail.
	StateTail
	// StateTailPending plays the release tail while waiting to restart.
	StateTailPending
	// StateTailOneShot plays the release tail while waiting for a one-shot.
	StateTailOneShot
)

func (s State) String() string {
	switch s {
	case StateStopped:
		return "stopped"
	case StatePending:
		return "pending"
	case StateOneShot:
		return "one-shot"
	case StateStarting:
		return "starting"
	case StateLooping:
		return "looping"
	case StateStopping:
		return "stopping"
	case StateTail:
		return "tail"
	case StateTailPending:
		return "tail-pending"
	case StateTailOneShot:
		return "tail-one-shot"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// playing reports whether the head is being rendered in s.
func (s State) playing() bool {
	return s == StateStarting || s == StateLooping || s == StateStopping
}

type eventMask uint8

const (
	maskStarted eventMask = 1 << iota
	maskReleased
	maskStopped
)

// Voice plays one Clip. All methods must be called from the render thread,
// or before the voice is shared with it.
type Voice struct {
	id         int
	clip       *Clip
	state      State
	prevState  State
	volume     float32
	triggerRes int
	startPos   int

	// tailCursor is the index into clip.data of the next release tail
	// sample, -1 when no release tail is sounding.
	tailCursor int

	fadingIn      bool
	fadeArmed     bool
	fadeTarget    float32
	releaseAtWrap bool
	loopTail      bool

	pendingVolume    float32
	hasPendingVolume bool

	// resume is StatePending or StateOneShot when a start request arrived
	// after the release fade was armed; it is applied at the wrap.
	resume    State
	resumeRes int

	events eventMask
}

// NewVoice returns a stopped voice for clip.
func NewVoice(id int, clip *Clip, volume float32) *Voice {
	v := &Voice{}
	v.reset(id, clip, volume)
	return v
}

func (v *Voice) reset(id int, clip *Clip, volume float32) {
	*v = Voice{
		id:         id,
		clip:       clip,
		volume:     clampVolume(volume),
		tailCursor: -1,
		resume:     StateStopped,
	}
}

func (v *Voice) ID() int                { return v.id }
func (v *Voice) Clip() *Clip            { return v.clip }
func (v *Voice) State() State           { return v.state }
func (v *Voice) Volume() float32        { return v.volume }
func (v *Voice) TriggerResolution() int { return v.triggerRes }

func (v *Voice) setState(next State) {
	v.prevState = v.state
	v.state = next
}

func clampVolume(vol float32) float32 {
	if math.IsNaN(float64(vol)) || vol < 0 {
		return 0
	}
	return min(vol, 1)
}

// SetVolume sets the voice volume, clamped to [0, 1]. While a fade is in
// progress the change is held back until the fade completes so the fade
// target stays consistent.
func (v *Voice) SetVolume(vol float32) {
	vol = clampVolume(vol)
	if v.fadeArmed || v.fadingIn {
		v.pendingVolume = vol
		v.hasPendingVolume = true
		return
	}
	v.volume = vol
}

func (v *Voice) applyPendingVolume() {
	if v.hasPendingVolume {
		v.volume = v.pendingVolume
		v.hasPendingVolume = false
	}
}

// SetPending requests a start on the next multiple of triggerRes. loop
// selects looping playback over a single release pass.
func (v *Voice) SetPending(triggerRes int, loop bool) {
	next := v.state
	switch v.state {
	case StateStopped, StatePending, StateOneShot:
		next = pick(loop, StatePending, StateOneShot)
	case StateTail, StateTailPending, StateTailOneShot:
		next = pick(loop, StateTailPending, StateTailOneShot)
	case StateStarting, StateLooping:
		return
	case StateStopping:
		if v.releaseAtWrap {
			v.resume = pick(loop, StatePending, StateOneShot)
			v.resumeRes = triggerRes
			return
		}
		if loop {
			v.setState(pick(v.prevState == StateStarting, StateStarting, StateLooping))
			v.triggerRes = triggerRes
		}
		return
	}

	v.setState(next)
	v.triggerRes = triggerRes
	v.startPos = 0
}

// SetStopping requests a release on the next multiple of triggerRes.
// Stopping a voice that is already releasing does not cut its tail short.
func (v *Voice) SetStopping(triggerRes int) {
	switch v.state {
	case StatePending, StateOneShot:
		v.setState(StateStopped)
		v.events |= maskStopped
	case StateTailPending, StateTailOneShot:
		v.setState(StateTail)
	case StateStarting, StateLooping:
		v.setState(StateStopping)
	case StateStopping:
		v.resume = StateStopped
	case StateTail, StateStopped:
		return
	}
	v.triggerRes = triggerRes
}

func pick(cond bool, a, b State) State {
	if cond {
		return a
	}
	return b
}

// Render adds the voice's output for the len(dst) samples starting at the
// absolute sample position pos. Stopped voices leave dst untouched.
//
// A voice whose volume is zero still advances its state machine; it just
// adds silence.
func (v *Voice) Render(dst []float32, pos int) {
	c := v.clip
	if v.state == StateStopped || c == nil || c.head == 0 {
		return
	}

	// Each pass renders up to the next state boundary
	done := 0
	for done < len(dst) && v.state != StateStopped {
		before := v.state
		var n int
		switch v.state {
		case StatePending, StateOneShot, StateTailPending, StateTailOneShot:
			n = v.renderPending(dst[done:], pos+done)
		case StateStarting, StateLooping, StateStopping:
			n = v.renderHead(dst[done:], pos+done)
		case StateTail:
			n = v.renderTail(dst[done:])
		}
		// No samples and no transition: nothing more to render
		if n == 0 && v.state == before {
			return
		}
		done += n
	}
}

// renderPending waits for the trigger boundary, mixing any release tail that
// is still sounding, and fires the start when the boundary falls in dst.
func (v *Voice) renderPending(dst []float32, pos int) int {
	till := samplesTillTrigger(pos, v.triggerRes)
	tailing := v.state == StateTailPending || v.state == StateTailOneShot

	// Trigger lies beyond this buffer; keep waiting
	if till >= len(dst) {
		if tailing {
			v.mixReleaseTail(dst)
			v.settleTail()
		}
		return len(dst)
	}

	// Ring the tail up to the trigger, then start
	if tailing {
		v.mixReleaseTail(dst[:till])
		v.settleTail()
	}
	v.fire(pos + till)
	return till
}

// settleTail drops a waiting voice back to its plain pending state once the
// release tail has run out.
func (v *Voice) settleTail() {
	if v.tailCursor >= 0 {
		return
	}
	switch v.state {
	case StateTailPending:
		v.setState(StatePending)
	case StateTailOneShot:
		v.setState(StateOneShot)
	}
}

// rebase moves the voice into a coordinate system whose origin is shift
// samples later, keeping the playhead where it is.
func (v *Voice) rebase(shift int) {
	if v.clip == nil || v.clip.head == 0 {
		return
	}
	v.startPos = wrapPos(v.startPos-shift, v.clip.head)
}

func (v *Voice) fire(pos int) {
	v.startPos = wrapPos(pos, v.clip.head)
	v.fadeArmed = false
	v.releaseAtWrap = false
	v.loopTail = false

	switch v.state {
	case StatePending, StateTailPending:
		v.setState(StateStarting)
		v.fadingIn = v.clip.fade > 0
	case StateOneShot, StateTailOneShot:
		v.setState(StateStopping)
	}
	v.events |= maskStarted
}

// renderHead renders one segment of the head, bounded by the fade-in end,
// the fade-out begin and the head end, and handles the boundary it reaches.
func (v *Voice) renderHead(dst []float32, pos int) int {
	c := v.clip
	h, fade := c.head, c.fade
	fadeBegin := h - fade

	// Position in the head for this segment
	pib := wrapPos(pos-v.startPos, h)

	// A fade still armed before the fade window means a wrap was skipped.
	if v.fadeArmed && pib < fadeBegin {
		v.wrap()
		if !v.state.playing() {
			return 0
		}
	}
	if v.fadingIn && pib >= fade {
		v.endFadeIn()
	}
	// Entering the fade window latches this pass's target
	if !v.fadeArmed && pib >= fadeBegin && fade > 0 {
		v.armFade(pos)
	}

	// Stop at whichever comes first: fade-in end, fade window, head end
	end := h
	if v.fadingIn && fade > pib {
		end = min(end, fade)
	}
	if pib < fadeBegin {
		end = min(end, fadeBegin)
	}
	n := min(end-pib, len(dst))

	vol := v.volume
	fadeIn := v.fadingIn
	loopTail := v.loopTail
	out := dst[:n]
	for k := range out {
		i := pib + k
		s := vol * c.data[i]
		// Ramp up from silence on the first pass
		if fadeIn {
			s = utils.Remap(float32(i), 0, float32(fade), 0, s)
		}
		// Ramp toward the sample that follows the wrap
		if i >= fadeBegin {
			s = utils.Remap(float32(i), float32(fadeBegin), float32(h), s, v.fadeTarget)
		}
		// Overlay the previous pass's tail
		if loopTail {
			s += vol * c.tailAt(i)
		}
		out[k] += s
	}
	// A release tail from an earlier stop keeps sounding underneath
	v.mixReleaseTail(out)

	switch {
	case pib+n == h:
		// Without a fade window the decision is made at the wrap
		if !v.fadeArmed {
			v.armFade(pos + n)
		}
		v.wrap()
	case v.fadingIn && pib+n >= fade:
		v.endFadeIn()
	}
	return n
}

// armFade latches the fade-out target for the current pass. A stopping
// voice releases on this pass when it is a one-shot or when the trigger
// boundary is less than one head away.
func (v *Voice) armFade(pos int) {
	c := v.clip
	v.fadeArmed = true

	// One-shots always release; loops release when the trigger is in this pass
	v.releaseAtWrap = v.state == StateStopping &&
		(v.prevState == StateOneShot || v.prevState == StateTailOneShot ||
			samplesTillTrigger(pos, v.triggerRes) < c.head)

	// Releasing fades into the tail alone, looping into head and tail
	if v.releaseAtWrap {
		v.fadeTarget = v.volume * c.tailAt(0)
	} else {
		v.fadeTarget = v.volume * (c.data[0] + c.tailAt(0))
	}
}

func (v *Voice) endFadeIn() {
	v.fadingIn = false
	if !v.fadeArmed {
		v.applyPendingVolume()
	}
}

// wrap handles the end of a head pass.
func (v *Voice) wrap() {
	v.fadeArmed = false
	v.fadingIn = false

	// Keep looping; the next pass carries this pass's tail
	if !v.releaseAtWrap {
		v.loopTail = true
		if v.state == StateStarting {
			v.setState(StateLooping)
		}
		v.applyPendingVolume()
		return
	}

	v.releaseAtWrap = false
	v.loopTail = false
	v.applyPendingVolume()

	// Release: play the tail alone, or stop if there is none
	if v.clip.TailLen() > 0 {
		v.setState(StateTail)
		v.tailCursor = v.clip.head
		v.events |= maskReleased
	} else {
		v.setState(StateStopped)
	}

	// A start that arrived during the release fade takes effect now
	if v.resume != StateStopped {
		loop := v.resume == StatePending
		v.resume = StateStopped
		v.SetPending(v.resumeRes, loop)
		return
	}
	if v.state == StateStopped {
		v.events |= maskStopped
	}
}

// renderTail plays the release tail and stops once it is exhausted.
func (v *Voice) renderTail(dst []float32) int {
	n := v.mixReleaseTail(dst)
	if v.tailCursor < 0 {
		v.setState(StateStopped)
		v.events |= maskStopped
	}
	return n
}

// mixReleaseTail adds up to len(dst) release tail samples and returns how
// many were added.
func (v *Voice) mixReleaseTail(dst []float32) int {
	if v.tailCursor < 0 {
		return 0
	}

	src := v.clip.data[v.tailCursor:]
	n := min(len(src), len(dst))
	vol := v.volume
	out := dst[:n]
	for i, s := range src[:n] {
		out[i] += vol * s
	}

	v.tailCursor += n
	if v.tailCursor >= len(v.clip.data) {
		v.tailCursor = -1
	}
	return n
}
