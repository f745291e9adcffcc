// SPDX-License-Identifier: EPL-2.0

package mixer

import (
	"fmt"
	"math"
)

// Command is a playback request submitted from the control thread. The set
// of commands is closed: SetVolume, Start, StartLoop, OneShot, Stop and
// StopLoop.
//
// Trigger resolutions are in interleaved samples and must be a multiple of
// the device channel count; zero means immediately.
type Command interface {
	command()
}

// SetVolume changes the volume of a live voice.
type SetVolume struct {
	VoiceID int
	Volume  float32
}

// Start starts every registered clip. The voice for clip i gets the id
// BaseID+i.
type Start struct {
	BaseID     int
	Volume     float32
	TriggerRes int
	Loop       bool
}

// StartLoop starts Clip looping on voice VoiceID, or re-arms that voice if
// it is already live.
type StartLoop struct {
	Clip       ClipID
	VoiceID    int
	Volume     float32
	TriggerRes int
}

// OneShot plays Clip's head once on voice VoiceID and releases into its
// tail.
type OneShot struct {
	Clip       ClipID
	VoiceID    int
	Volume     float32
	TriggerRes int
}

// Stop releases every live voice.
type Stop struct {
	TriggerRes int
}

// StopLoop releases voice VoiceID.
type StopLoop struct {
	VoiceID    int
	TriggerRes int
}

func (SetVolume) command() {}
func (Start) command()     {}
func (StartLoop) command() {}
func (OneShot) command()   {}
func (Stop) command()      {}
func (StopLoop) command()  {}

// validateCommand checks cmd against the registered clips and the device
// channel count.
func validateCommand(cmd Command, clips *clipTable, channels int) error {
	switch c := cmd.(type) {
	case SetVolume:
		return firstErr(checkVoice(c.VoiceID), checkVolume(c.Volume))
	case Start:
		return firstErr(checkVoice(c.BaseID), checkVolume(c.Volume), checkRes(c.TriggerRes, channels))
	case StartLoop:
		return firstErr(checkClip(c.Clip, clips), checkVoice(c.VoiceID), checkVolume(c.Volume), checkRes(c.TriggerRes, channels))
	case OneShot:
		return firstErr(checkClip(c.Clip, clips), checkVoice(c.VoiceID), checkVolume(c.Volume), checkRes(c.TriggerRes, channels))
	case Stop:
		return checkRes(c.TriggerRes, channels)
	case StopLoop:
		return firstErr(checkVoice(c.VoiceID), checkRes(c.TriggerRes, channels))
	case nil:
		return fmt.Errorf("%w: nil command", ErrMalformedCommand)
	default:
		return fmt.Errorf("%w: unsupported command %T", ErrMalformedCommand, cmd)
	}
}

func firstErr(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

func checkVoice(id int) error {
	if id < 0 {
		return fmt.Errorf("%w: negative voice id %d", ErrMalformedCommand, id)
	}
	return nil
}

func checkVolume(vol float32) error {
	if math.IsNaN(float64(vol)) {
		return fmt.Errorf("%w: volume is NaN", ErrMalformedCommand)
	}
	return nil
}

func checkRes(res, channels int) error {
	if res < 0 {
		return fmt.Errorf("%w: negative trigger resolution %d", ErrMalformedCommand, res)
	}
	if res%channels != 0 {
		return fmt.Errorf("%w: trigger resolution %d is not a whole number of %d-channel frames",
			ErrMalformedCommand, res, channels)
	}
	return nil
}

func checkClip(id ClipID, clips *clipTable) error {
	if clips.get(id) == nil {
		return fmt.Errorf("%w: id %d", ErrUnknownClip, id)
	}
	return nil
}
