// SPDX-License-Identifier: EPL-2.0

package mixer

// voicePool is a fixed arena of voices. live keeps the slot indexes of the
// voices in use in start order; free holds the rest.
type voicePool struct {
	slots []Voice
	live  []int
	free  []int
}

func newVoicePool(n int) *voicePool {
	p := &voicePool{
		slots: make([]Voice, n),
		live:  make([]int, 0, n),
		free:  make([]int, n),
	}
	for i := range p.free {
		p.free[i] = n - 1 - i
	}
	return p
}

func (p *voicePool) len() int { return len(p.live) }

func (p *voicePool) at(i int) *Voice { return &p.slots[p.live[i]] }

func (p *voicePool) find(id int) *Voice {
	for _, slot := range p.live {
		if p.slots[slot].id == id {
			return &p.slots[slot]
		}
	}
	return nil
}

// acquire returns a reset voice, or nil when every slot is taken.
func (p *voicePool) acquire(id int, clip *Clip, volume float32) *Voice {
	if len(p.free) == 0 {
		return nil
	}

	slot := p.free[len(p.free)-1]
	p.free = p.free[:len(p.free)-1]
	p.live = append(p.live, slot)

	v := &p.slots[slot]
	v.reset(id, clip, volume)
	return v
}

// prune returns stopped voices to the free list.
func (p *voicePool) prune() {
	kept := p.live[:0]
	for _, slot := range p.live {
		if p.slots[slot].state == StateStopped {
			p.slots[slot].clip = nil
			p.free = append(p.free, slot)
			continue
		}
		kept = append(kept, slot)
	}
	p.live = kept
}
