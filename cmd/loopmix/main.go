// SPDX-License-Identifier: EPL-2.0

// Command loopmix runs a Lua driver script against the mixer, either on the
// audio device or rendered offline to a WAV file.
//
// Usage:
//
//	loopmix -script driver.lua [-rate 48000] [-channels 2] [-buffer 1024] [-format int16le]
//	loopmix -script driver.lua -bounce mix.wav -seconds 30
//
// Device settings come from the defaults, then from the script's device
// table, then from flags given on the command line.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/ik5/loopmix"
	"github.com/ik5/loopmix/mixer"
	"github.com/ik5/loopmix/output"
	"github.com/ik5/loopmix/script"
)

type config struct {
	script  string
	bounce  string
	seconds float64
	verbose bool

	rate     int
	channels int
	buffer   int
	format   string

	// explicit holds the names of the flags given on the command line.
	explicit map[string]bool
}

func parseFlags(args []string, stderr io.Writer) (*config, error) {
	def := mixer.DefaultDeviceSpec()
	cfg := &config{explicit: map[string]bool{}}

	fs := flag.NewFlagSet("loopmix", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&cfg.script, "script", "", "Lua driver script (required)")
	fs.StringVar(&cfg.bounce, "bounce", "", "render offline to this WAV file instead of playing")
	fs.Float64Var(&cfg.seconds, "seconds", 10, "length of an offline render in seconds")
	fs.BoolVar(&cfg.verbose, "v", false, "log debug output to stderr")
	fs.IntVar(&cfg.rate, "rate", def.SampleRate, "device sample rate in Hz")
	fs.IntVar(&cfg.channels, "channels", def.Channels, "device channel count")
	fs.IntVar(&cfg.buffer, "buffer", def.BufferSize, "device buffer size in frames")
	fs.StringVar(&cfg.format, "format", def.Format.String(), "device sample format: float32le or int16le")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if cfg.script == "" {
		fs.Usage()
		return nil, errors.New("-script is required")
	}
	fs.Visit(func(f *flag.Flag) { cfg.explicit[f.Name] = true })

	return cfg, nil
}

// deviceSpec overrides spec with the device flags given on the command line.
func (c *config) deviceSpec(spec mixer.DeviceSpec) (mixer.DeviceSpec, error) {
	if c.explicit["rate"] {
		spec.SampleRate = c.rate
	}
	if c.explicit["channels"] {
		spec.Channels = c.channels
	}
	if c.explicit["buffer"] {
		spec.BufferSize = c.buffer
	}
	if c.explicit["format"] {
		format, err := mixer.ParseSampleFormat(c.format)
		if err != nil {
			return spec, err
		}
		spec.Format = format
	}
	return spec, spec.Validate()
}

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "loopmix:", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	cfg, err := parseFlags(args, os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}

	if cfg.verbose {
		mixer.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})))
	}

	host := script.New()
	defer host.Close()

	if err := host.DoFile(cfg.script); err != nil {
		return err
	}

	spec, err := host.DeviceSpec(mixer.DefaultDeviceSpec())
	if err != nil {
		return err
	}
	spec, err = cfg.deviceSpec(spec)
	if err != nil {
		return err
	}

	m, err := mixer.New(spec)
	if err != nil {
		return err
	}
	host.Attach(m)

	if err := host.Init(); err != nil {
		return err
	}

	if cfg.bounce != "" {
		return bounce(host, m, cfg.bounce, cfg.seconds)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return play(ctx, host, m)
}

func play(ctx context.Context, host *script.Host, m *mixer.Manager) error {
	player, err := output.NewPlayer(m.Spec(), m)
	if err != nil {
		return err
	}
	defer player.Close()

	host.SetPlayer(player)
	player.Start()

	err = host.Run(ctx, script.DefaultUpdateInterval)
	if errors.Is(err, context.Canceled) {
		mixer.Logger().Info("interrupted, stopping playback")
		return nil
	}
	return err
}

// bounce renders the session to path. The script's update hook runs before
// every buffer, and loopmix.quit ends the render early.
func bounce(host *script.Host, m *mixer.Manager, path string, seconds float64) error {
	frames := int(seconds * float64(m.SampleRate()))

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%w", err)
	}

	hook := func(int) error {
		if _, err := host.Update(); err != nil {
			return err
		}
		if host.Done() {
			return loopmix.ErrStopBounce
		}
		return nil
	}

	if err := loopmix.Bounce(m, f, frames, loopmix.WithBufferHook(hook)); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("%w", err)
	}

	// Let the script see the events of the final buffer.
	if _, err := host.Update(); err != nil {
		return err
	}

	mixer.Logger().Info("bounce written", "path", path, "seconds", seconds)
	return nil
}
