// SPDX-License-Identifier: EPL-2.0

// Package script drives a mixer from a Lua control script.
//
// Scripts run in github.com/yuin/gopher-lua and talk to the mixer through
// the global loopmix table:
//
//	loopmix.register_clip(name, head_path [, tail_path [, fade_ms]])
//	loopmix.send(kind, payload)
//	loopmix.send_batch({{kind, payload}, ...})
//	loopmix.sample_rate(), loopmix.buffer_size(), loopmix.channels()
//	loopmix.max_sample_count(), loopmix.buffers_completed()
//	loopmix.num_samples_in_clip(name [, include_tail])
//	loopmix.play_pause(), loopmix.quit(), loopmix.log(message)
//
// Command kinds are loopmix.CMD_SET_VOLUME, CMD_START, CMD_START_LOOP,
// CMD_ONE_SHOT, CMD_STOP and CMD_STOP_LOOP. Payload fields are clip, id,
// volume (default 1), trigger (samples, default 0), base and loop (default
// true). send and send_batch return true, or false and a message when a
// payload is malformed or rejected.
//
// A script may declare a device table (sample_rate, channels, buffer_size,
// format) read before the mixer is created, an init function called once
// the mixer is attached, and update(buffers, events) called on every
// housekeeping tick.
package script
