// SPDX-License-Identifier: EPL-2.0

// Package loopmix is a real-time mixing engine for seamless audio loops and
// one-shot clips.
//
// A clip is a head, played in a loop, plus an optional tail that rings out
// when the loop is released. The last part of the head crossfades into the
// head's own beginning and into the tail, so loops repeat without clicks and
// stop without cutting off. Starts and stops can be quantized to a trigger
// resolution, keeping every voice locked to a shared sample clock.
//
// # Packages
//
//   - mixer: clips, voices, the Manager and its command queue
//   - audio: the decoded PCM source abstraction and decoder registry
//   - formats: WAV, AIFF, MP3 and Ogg Vorbis decoders
//   - output: plays a Manager on the audio device via oto
//   - script: drives a Manager from a Lua control script
//
// # Quick Start
//
//	m, _ := mixer.New(mixer.DefaultDeviceSpec())
//	_ = m.RegisterClip("pad", "pad_head.wav", "pad_tail.wav", 50)
//	pad, _ := m.Clip("pad")
//	_ = m.Submit(mixer.StartLoop{Clip: pad, VoiceID: 1, Volume: 0.8})
//
//	player, _ := output.NewPlayer(m.Spec(), m)
//	player.Start()
//	defer player.Close()
//
// # Offline Rendering
//
// Bounce renders a Manager without an audio device and writes the result as
// a 16-bit PCM WAV file:
//
//	f, _ := os.Create("mix.wav")
//	defer f.Close()
//	err := loopmix.Bounce(m, f, 10*m.SampleRate())
package loopmix
