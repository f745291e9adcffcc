// SPDX-License-Identifier: EPL-2.0

package script

import (
	"fmt"
	"math"

	lua "github.com/yuin/gopher-lua"

	"github.com/ik5/loopmix/mixer"
)

// Command kinds exposed to scripts as loopmix.CMD_*. The values are part of
// the script API and never change.
const (
	CmdSetVolume = 1
	CmdStart     = 2
	CmdStartLoop = 3
	CmdStop      = 5
	CmdStopLoop  = 6
	CmdOneShot   = 7
)

var commandNames = map[string]int{
	"CMD_SET_VOLUME": CmdSetVolume,
	"CMD_START":      CmdStart,
	"CMD_START_LOOP": CmdStartLoop,
	"CMD_STOP":       CmdStop,
	"CMD_STOP_LOOP":  CmdStopLoop,
	"CMD_ONE_SHOT":   CmdOneShot,
}

// parseCommand builds a mixer command from a kind and its payload table.
// A nil payload reads as an empty table.
func parseCommand(m *mixer.Manager, kind lua.LValue, payload lua.LValue) (mixer.Command, error) {
	k, ok := kind.(lua.LNumber)
	if !ok {
		return nil, fmt.Errorf("%w: kind must be a number, got %s", ErrMalformedPayload, kind.Type())
	}

	var t *lua.LTable
	switch p := payload.(type) {
	case *lua.LTable:
		t = p
	case *lua.LNilType:
	default:
		return nil, fmt.Errorf("%w: payload must be a table, got %s", ErrMalformedPayload, payload.Type())
	}

	f := fields{t: t}
	var cmd mixer.Command
	switch int(k) {
	case CmdSetVolume:
		cmd = mixer.SetVolume{
			VoiceID: f.int("id", true, 0),
			Volume:  f.volume(),
		}
	case CmdStart:
		cmd = mixer.Start{
			BaseID:     f.int("base", false, 0),
			Volume:     f.volume(),
			TriggerRes: f.int("trigger", false, 0),
			Loop:       f.bool("loop", true),
		}
	case CmdStartLoop:
		cmd = mixer.StartLoop{
			Clip:       f.clip(m),
			VoiceID:    f.int("id", true, 0),
			Volume:     f.volume(),
			TriggerRes: f.int("trigger", false, 0),
		}
	case CmdOneShot:
		cmd = mixer.OneShot{
			Clip:       f.clip(m),
			VoiceID:    f.int("id", true, 0),
			Volume:     f.volume(),
			TriggerRes: f.int("trigger", false, 0),
		}
	case CmdStop:
		cmd = mixer.Stop{TriggerRes: f.int("trigger", false, 0)}
	case CmdStopLoop:
		cmd = mixer.StopLoop{
			VoiceID:    f.int("id", true, 0),
			TriggerRes: f.int("trigger", false, 0),
		}
	default:
		return nil, fmt.Errorf("%w: %v", ErrUnknownCommand, k)
	}

	if f.err != nil {
		return nil, f.err
	}
	return cmd, nil
}

// fields reads typed values out of a payload table, keeping the first
// error. A nil table has no fields.
type fields struct {
	t   *lua.LTable
	err error
}

func (f *fields) get(key string) lua.LValue {
	if f.t == nil {
		return lua.LNil
	}
	return f.t.RawGetString(key)
}

func (f *fields) fail(format string, args ...any) {
	if f.err == nil {
		f.err = fmt.Errorf("%w: "+format, append([]any{ErrMalformedPayload}, args...)...)
	}
}

func (f *fields) number(key string, required bool, def float64) float64 {
	switch v := f.get(key).(type) {
	case lua.LNumber:
		return float64(v)
	case *lua.LNilType:
		if required {
			f.fail("missing field %q", key)
		}
		return def
	default:
		f.fail("field %q: expected number, got %s", key, v.Type())
		return def
	}
}

func (f *fields) int(key string, required bool, def int) int {
	n := f.number(key, required, float64(def))
	// Trunc keeps NaN and infinities, which fail the comparison or the range.
	if n != math.Trunc(n) || n > math.MaxInt32 || n < math.MinInt32 {
		f.fail("field %q: expected 32-bit integer, got %v", key, n)
		return def
	}
	return int(n)
}

func (f *fields) volume() float32 {
	return float32(f.number("volume", false, 1))
}

func (f *fields) bool(key string, def bool) bool {
	switch v := f.get(key).(type) {
	case lua.LBool:
		return bool(v)
	case *lua.LNilType:
		return def
	default:
		f.fail("field %q: expected boolean, got %s", key, v.Type())
		return def
	}
}

func (f *fields) clip(m *mixer.Manager) mixer.ClipID {
	v, ok := f.get("clip").(lua.LString)
	if !ok {
		f.fail("field %q: expected clip name", "clip")
		return -1
	}
	id, ok := m.Clip(string(v))
	if !ok {
		if f.err == nil {
			f.err = fmt.Errorf("%w: %q", mixer.ErrUnknownClip, string(v))
		}
		return -1
	}
	return id
}
