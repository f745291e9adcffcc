// SPDX-License-Identifier: EPL-2.0

package script

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	lua "github.com/yuin/gopher-lua"

	"github.com/ik5/loopmix/mixer"
)

// DefaultUpdateInterval is how often Run collects notifications and calls
// the script's update hook.
const DefaultUpdateInterval = 10 * time.Millisecond

// PlayPauser toggles playback. *output.Player implements it.
type PlayPauser interface {
	PlayPause() bool
}

// Host runs a Lua control script against a Manager.
//
// The script sees a global table named loopmix and may define the globals
// device, init and update. A Host is safe for concurrent use; calls into
// the script are serialized.
type Host struct {
	mutex  sync.Mutex
	state  *lua.LState
	mixer  *mixer.Manager
	player PlayPauser
	quit   bool
}

// New returns a Host with the loopmix table installed. Nothing is attached
// yet, so the script may only declare things at load time.
func New() *Host {
	h := &Host{state: lua.NewState()}

	mod := h.state.SetFuncs(h.state.NewTable(), map[string]lua.LGFunction{
		"register_clip":       h.registerClip,
		"send":                h.send,
		"send_batch":          h.sendBatch,
		"sample_rate":         h.sampleRate,
		"buffer_size":         h.bufferSize,
		"channels":            h.channels,
		"max_sample_count":    h.maxSampleCount,
		"num_samples_in_clip": h.numSamplesInClip,
		"buffers_completed":   h.buffersCompleted,
		"play_pause":          h.playPause,
		"quit":                h.quitScript,
		"log":                 h.log,
	})
	for name, kind := range commandNames {
		h.state.SetField(mod, name, lua.LNumber(kind))
	}
	h.state.SetGlobal("loopmix", mod)

	return h
}

// Close releases the interpreter.
func (h *Host) Close() {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	h.state.Close()
}

// DoFile runs the script at path.
func (h *Host) DoFile(path string) error {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	if err := h.state.DoFile(path); err != nil {
		return fmt.Errorf("running %s: %w", path, err)
	}
	mixer.Logger().Debug("script loaded", "path", path)
	return nil
}

// DoString runs src as a script chunk.
func (h *Host) DoString(src string) error {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	if err := h.state.DoString(src); err != nil {
		return fmt.Errorf("running script: %w", err)
	}
	return nil
}

// DeviceSpec returns base overridden by the fields of the script's device
// table: sample_rate, channels, buffer_size and format. A script without a
// device table gets base back unchanged.
func (h *Host) DeviceSpec(base mixer.DeviceSpec) (mixer.DeviceSpec, error) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	spec := base
	var t *lua.LTable
	switch v := h.state.GetGlobal("device").(type) {
	case *lua.LTable:
		t = v
	case *lua.LNilType:
		return spec, nil
	default:
		return spec, fmt.Errorf("%w: device must be a table, got %s", ErrMalformedPayload, v.Type())
	}

	f := fields{t: t}
	spec.SampleRate = f.int("sample_rate", false, spec.SampleRate)
	spec.Channels = f.int("channels", false, spec.Channels)
	spec.BufferSize = f.int("buffer_size", false, spec.BufferSize)
	if f.err != nil {
		return base, fmt.Errorf("device: %w", f.err)
	}

	switch v := t.RawGetString("format").(type) {
	case lua.LString:
		format, err := mixer.ParseSampleFormat(string(v))
		if err != nil {
			return base, fmt.Errorf("device: %w", err)
		}
		spec.Format = format
	case *lua.LNilType:
	default:
		return base, fmt.Errorf("%w: device: field \"format\": expected string, got %s", ErrMalformedPayload, v.Type())
	}

	return spec, nil
}

// Attach binds the loopmix functions to m.
func (h *Host) Attach(m *mixer.Manager) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	h.mixer = m
}

// SetPlayer makes loopmix.play_pause toggle p.
func (h *Host) SetPlayer(p PlayPauser) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	h.player = p
}

// Init calls the script's init hook, if it has one.
func (h *Host) Init() error {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	if h.mixer == nil {
		return ErrNotAttached
	}
	return h.callHook("init")
}

// Update collects the mixer's notifications and hands them to the script's
// update hook as update(buffers, events). Each event is a table with the
// fields kind, id and buffer.
func (h *Host) Update() (mixer.Notifications, error) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	if h.mixer == nil {
		return mixer.Notifications{}, ErrNotAttached
	}

	n := h.mixer.Update()

	events := h.state.CreateTable(len(n.Events), 0)
	for _, e := range n.Events {
		t := h.state.CreateTable(0, 3)
		t.RawSetString("kind", lua.LString(e.Kind.String()))
		t.RawSetString("id", lua.LNumber(e.VoiceID))
		t.RawSetString("buffer", lua.LNumber(e.Buffer))
		events.Append(t)
	}

	return n, h.callHook("update", lua.LNumber(n.Buffers), events)
}

// Done reports whether the script called loopmix.quit.
func (h *Host) Done() bool {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	return h.quit
}

// Run calls Update every interval until ctx ends, the script quits, or a
// hook fails. A non-positive interval uses DefaultUpdateInterval.
func (h *Host) Run(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = DefaultUpdateInterval
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if _, err := h.Update(); err != nil {
				return err
			}
			if h.Done() {
				return nil
			}
		}
	}
}

func (h *Host) callHook(name string, args ...lua.LValue) error {
	fn, ok := h.state.GetGlobal(name).(*lua.LFunction)
	if !ok {
		return nil
	}
	if err := h.state.CallByParam(lua.P{Fn: fn, NRet: 0, Protect: true}, args...); err != nil {
		return fmt.Errorf("%s hook: %w", name, err)
	}
	return nil
}

// manager returns the attached Manager or raises a script error.
func (h *Host) manager(L *lua.LState) *mixer.Manager {
	if h.mixer == nil {
		L.RaiseError("%s", ErrNotAttached)
	}
	return h.mixer
}

// result pushes true, or false and the error message.
func result(L *lua.LState, err error) int {
	if err != nil {
		L.Push(lua.LFalse)
		L.Push(lua.LString(err.Error()))
		return 2
	}
	L.Push(lua.LTrue)
	return 1
}

func (h *Host) registerClip(L *lua.LState) int {
	m := h.manager(L)
	name := L.CheckString(1)
	head := L.CheckString(2)
	tail := L.OptString(3, "")
	fadeMS := L.OptInt(4, 0)
	return result(L, m.RegisterClip(name, head, tail, fadeMS))
}

func (h *Host) send(L *lua.LState) int {
	m := h.manager(L)
	cmd, err := parseCommand(m, L.Get(1), L.Get(2))
	if err != nil {
		mixer.Logger().Warn("script command rejected", "err", err)
		return result(L, err)
	}
	return result(L, m.Submit(cmd))
}

// sendBatch takes a list of {kind, payload} pairs and queues the valid
// ones together.
func (h *Host) sendBatch(L *lua.LState) int {
	m := h.manager(L)
	list, ok := L.Get(1).(*lua.LTable)
	if !ok {
		return result(L, fmt.Errorf("%w: batch must be a table", ErrMalformedPayload))
	}
	if list.Len() == 0 {
		return result(L, fmt.Errorf("%w: empty batch", ErrMalformedPayload))
	}

	cmds := make([]mixer.Command, 0, list.Len())
	var errs []error
	for i := 1; i <= list.Len(); i++ {
		entry, ok := list.RawGetInt(i).(*lua.LTable)
		if !ok {
			errs = append(errs, fmt.Errorf("entry %d: %w: expected {kind, payload}", i, ErrMalformedPayload))
			continue
		}
		cmd, err := parseCommand(m, entry.RawGetInt(1), entry.RawGetInt(2))
		if err != nil {
			errs = append(errs, fmt.Errorf("entry %d: %w", i, err))
			continue
		}
		cmds = append(cmds, cmd)
	}

	if len(cmds) > 0 {
		if err := m.SubmitBatch(cmds); err != nil {
			errs = append(errs, err)
		}
	}
	return result(L, errors.Join(errs...))
}

func (h *Host) sampleRate(L *lua.LState) int {
	L.Push(lua.LNumber(h.manager(L).SampleRate()))
	return 1
}

func (h *Host) bufferSize(L *lua.LState) int {
	L.Push(lua.LNumber(h.manager(L).BufferSize()))
	return 1
}

func (h *Host) channels(L *lua.LState) int {
	L.Push(lua.LNumber(h.manager(L).Channels()))
	return 1
}

func (h *Host) maxSampleCount(L *lua.LState) int {
	L.Push(lua.LNumber(h.manager(L).MaxSampleCount()))
	return 1
}

func (h *Host) numSamplesInClip(L *lua.LState) int {
	m := h.manager(L)
	name := L.CheckString(1)
	includeTail := L.OptBool(2, false)
	L.Push(lua.LNumber(m.NumSamplesInClip(name, includeTail)))
	return 1
}

func (h *Host) buffersCompleted(L *lua.LState) int {
	L.Push(lua.LNumber(h.manager(L).BuffersCompleted()))
	return 1
}

func (h *Host) playPause(L *lua.LState) int {
	if h.player == nil {
		return result(L, ErrNoPlayer)
	}
	L.Push(lua.LBool(h.player.PlayPause()))
	return 1
}

func (h *Host) quitScript(L *lua.LState) int {
	h.quit = true
	return 0
}

func (h *Host) log(L *lua.LState) int {
	mixer.Logger().Info(L.CheckString(1), "source", "script")
	return 0
}
