// SPDX-License-Identifier: EPL-2.0

package mixer

import (
	"fmt"

	"github.com/ik5/loopmix/utils"
)

// Clip is an immutable baked loop: the head, played on every pass, followed
// by the tail, played once at the loop point or during release.
//
// The tail is truncated so it ends no later than the head's fade-out begins,
// and its last fade samples are ramped to zero at construction.
type Clip struct {
	name string
	head int
	fade int
	data []float32
}

// NewClip copies head and tail into a new Clip. fadeSamples is clamped to
// [0, len(head)]. A nil or empty tail means the clip has no tail.
func NewClip(name string, head, tail []float32, fadeSamples int) (*Clip, error) {
	if len(head) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrEmptyHead, name)
	}

	h := len(head)
	fade := min(max(fadeSamples, 0), h)
	tailLen := min(len(tail), h-fade)

	data := make([]float32, h+tailLen)
	copy(data, head)
	copy(data[h:], tail[:tailLen])

	tailFade := min(fade, tailLen)
	fadeBegin := tailLen - tailFade
	for i := fadeBegin; i < tailLen; i++ {
		data[h+i] = utils.Remap(float32(i), float32(fadeBegin), float32(tailLen), data[h+i], 0)
	}

	return &Clip{name: name, head: h, fade: fade, data: data}, nil
}

func (c *Clip) Name() string { return c.name }

// NumSamples returns the head length, plus the tail length when includeTail
// is set.
func (c *Clip) NumSamples(includeTail bool) int {
	if includeTail {
		return len(c.data)
	}
	return c.head
}

func (c *Clip) NumFadeSamples() int { return c.fade }
func (c *Clip) TailLen() int        { return len(c.data) - c.head }

// Data returns the baked head+tail samples. Callers must not modify it.
func (c *Clip) Data() []float32 { return c.data }

// tailAt returns tail sample i, or 0 past the end of the tail.
func (c *Clip) tailAt(i int) float32 {
	if i < 0 || c.head+i >= len(c.data) {
		return 0
	}
	return c.data[c.head+i]
}

// ClipID is a stable handle to a registered clip. Handles are never reused.
type ClipID int

// clipTable is an immutable snapshot of the registered clips. The control
// thread publishes a new table on every registration.
type clipTable struct {
	byName  map[string]ClipID
	clips   []*Clip
	maxHead int
}

func (t *clipTable) get(id ClipID) *Clip {
	if t == nil || id < 0 || int(id) >= len(t.clips) {
		return nil
	}
	return t.clips[id]
}

func (t *clipTable) lookup(name string) (ClipID, bool) {
	if t == nil {
		return 0, false
	}
	id, ok := t.byName[name]
	return id, ok
}

func (t *clipTable) len() int {
	if t == nil {
		return 0
	}
	return len(t.clips)
}

// with returns a copy of t with c appended.
func (t *clipTable) with(c *Clip) *clipTable {
	next := &clipTable{
		byName: make(map[string]ClipID, t.len()+1),
		clips:  make([]*Clip, 0, t.len()+1),
	}
	if t != nil {
		for k, v := range t.byName {
			next.byName[k] = v
		}
		next.clips = append(next.clips, t.clips...)
		next.maxHead = t.maxHead
	}

	next.byName[c.name] = ClipID(len(next.clips))
	next.clips = append(next.clips, c)
	next.maxHead = max(next.maxHead, c.head)
	return next
}
