// SPDX-License-Identifier: EPL-2.0

//go:build headless

package output

import "github.com/ik5/loopmix/mixer"

// Player drives a Renderer in real time without an audio device.
type Player struct {
	pump *Pump
}

func NewPlayer(spec mixer.DeviceSpec, r Renderer) (*Player, error) {
	pump, err := NewPump(spec, r, nil)
	if err != nil {
		return nil, err
	}

	mixer.Logger().Info("headless output", "buffer", bufferDuration(spec))
	return &Player{pump: pump}, nil
}

func (op *Player) Start()          { op.pump.Start() }
func (op *Player) Stop()           { op.pump.Stop() }
func (op *Player) IsStarted() bool { return op.pump.IsStarted() }

func (op *Player) PlayPause() bool {
	if op.pump.IsStarted() {
		op.pump.Stop()
		return false
	}
	op.pump.Start()
	return true
}

func (op *Player) Close() error {
	op.pump.Stop()
	return nil
}
