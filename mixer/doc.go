// SPDX-License-Identifier: EPL-2.0

// Package mixer is a real-time mixing engine for seamless loops and
// one-shots.
//
// A Clip is a baked head and an optional tail. The head plays on every
// pass; its last fade samples are ramped toward the value the audio will
// have once it wraps, so loops join without a click. The tail is mixed in at
// the loop point and played alone when a voice is released.
//
// # Threads
//
// A Manager is shared by two threads:
//
//   - The control thread registers clips, submits commands and calls Update
//     to collect notifications.
//   - The render thread is the audio device callback. It calls Render (or
//     RenderFloat) which drains the queued commands, advances every voice
//     and mixes them.
//
// The two meet at a single mutex which the render thread takes once per
// callback. Everything else on the render path is preallocated.
//
// # Quantization
//
// Start and stop commands carry a trigger resolution R in samples. A start
// issued at absolute position S takes effect at the smallest multiple of R
// that is >= S. A stop lets the current pass finish and releases at the
// end of the first pass that ends within one head length of the next
// multiple of R. R = 0 means immediately.
//
// # Example
//
//	m, err := mixer.New(mixer.DefaultDeviceSpec())
//	if err != nil {
//	    return err
//	}
//	if err := m.RegisterClip("drums", "drums_head.wav", "drums_tail.wav", 10); err != nil {
//	    return err
//	}
//	drums, _ := m.Clip("drums")
//	_ = m.Submit(mixer.StartLoop{Clip: drums, VoiceID: 1, Volume: 1, TriggerRes: 0})
//
//	// in the device callback
//	m.Render(buf)
//
//	// on the control thread
//	n := m.Update()
package mixer
