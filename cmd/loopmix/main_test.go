package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/ik5/loopmix/audio"
	"github.com/ik5/loopmix/formats/wav"
	"github.com/ik5/loopmix/internal/audiotest"
	"github.com/ik5/loopmix/mixer"
)

func TestParseFlags_MissingScript(t *testing.T) {
	t.Parallel()

	if _, err := parseFlags([]string{"-rate", "8000"}, io.Discard); err == nil {
		t.Error("parseFlags() without -script succeeded")
	}
}

func TestConfig_DeviceSpecLayering(t *testing.T) {
	t.Parallel()

	fromScript := mixer.DeviceSpec{SampleRate: 22050, Channels: 2, BufferSize: 512, Format: mixer.Int16LE}

	tests := []struct {
		name    string
		args    []string
		want    mixer.DeviceSpec
		wantErr bool
	}{
		{
			name: "script values kept without flags",
			args: []string{"-script", "x.lua"},
			want: fromScript,
		},
		{
			name: "default-valued flag still wins when given",
			args: []string{"-script", "x.lua", "-rate", "44100"},
			want: mixer.DeviceSpec{SampleRate: 44100, Channels: 2, BufferSize: 512, Format: mixer.Int16LE},
		},
		{
			name: "every flag",
			args: []string{"-script", "x.lua", "-rate", "48000", "-channels", "1", "-buffer", "256", "-format", "f32"},
			want: mixer.DeviceSpec{SampleRate: 48000, Channels: 1, BufferSize: 256, Format: mixer.Float32LE},
		},
		{
			name:    "bad format",
			args:    []string{"-script", "x.lua", "-format", "u8"},
			wantErr: true,
		},
		{
			name:    "invalid result",
			args:    []string{"-script", "x.lua", "-channels", "0"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg, err := parseFlags(tt.args, io.Discard)
			if err != nil {
				t.Fatalf("parseFlags() error = %v", err)
			}

			got, err := cfg.deviceSpec(fromScript)
			if (err != nil) != tt.wantErr {
				t.Fatalf("deviceSpec() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("deviceSpec() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestRun_Bounce(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	head := filepath.Join(dir, "pad_head.wav")
	if err := audiotest.WriteWAVFile(head, 8000, 1, 16, audiotest.FormatPCM, audiotest.Constant(800, 0.5)); err != nil {
		t.Fatal(err)
	}

	driver := filepath.Join(dir, "driver.lua")
	src := fmt.Sprintf(`
device = {sample_rate = 8000, channels = 1, buffer_size = 80}

function init()
	assert(loopmix.register_clip("pad", %q, nil, 10))
	assert(loopmix.send(loopmix.CMD_START_LOOP, {clip = "pad", id = 1}))
end

ticks = 0
function update(buffers, events)
	ticks = ticks + 1
	if ticks == 5 then loopmix.quit() end
end
`, head)
	if err := os.WriteFile(driver, []byte(src), 0o644); err != nil {
		t.Fatal(err)
	}

	out := filepath.Join(dir, "mix.wav")
	if err := run([]string{"-script", driver, "-bounce", out, "-seconds", "1"}); err != nil {
		t.Fatalf("run() error = %v", err)
	}

	f, err := os.Open(out)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	decoded, err := wav.Decoder{}.Decode(f)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	samples, err := audio.ReadAll(decoded, 256)
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}

	// Four buffers render before the fifth update quits.
	if len(samples) != 4*80 {
		t.Errorf("bounced %d samples, want %d", len(samples), 4*80)
	}
}

func TestRun_MissingScript(t *testing.T) {
	t.Parallel()

	err := run([]string{"-script", filepath.Join(t.TempDir(), "none.lua"), "-bounce", "x.wav"})
	if err == nil {
		t.Error("run() with a missing script succeeded")
	}
}
