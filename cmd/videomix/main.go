// Package main provides the CLI entry point for videomix.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/user/videomix/pkg/adapters/logger"
	"github.com/user/videomix/pkg/adapters/memtransport"
	"github.com/user/videomix/pkg/adapters/pngsink"
	"github.com/user/videomix/pkg/adapters/testsrc"
	"github.com/user/videomix/pkg/config"
	"github.com/user/videomix/pkg/mixer"
	"github.com/user/videomix/pkg/ports"
	"github.com/user/videomix/pkg/scale"
	"github.com/user/videomix/pkg/video"
)

var version = "dev"

func main() {
	app := &cli.App{
		Name:    "videomix",
		Usage:   "Composite test video streams into a single output stream.",
		Version: version,
		Commands: []*cli.Command{
			mixCommand(),
			formatsCommand(),
			versionCommand(),
		},
	}
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func mixCommand() *cli.Command {
	return &cli.Command{
		Name:  "mix",
		Usage: "Run a composition described by a config file.",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"},
				Usage: "YAML configuration file (defaults apply without one)."},
			&cli.StringFlag{Name: "snapshot-dir", Aliases: []string{"s"},
				Usage: "Directory for PNG snapshots (overrides config)."},
			&cli.IntFlag{Name: "frames", Aliases: []string{"n"},
				Usage: "Number of output frames to produce (overrides config)."},
			&cli.StringFlag{Name: "log-level", Aliases: []string{"l"}, Value: "info",
				Usage: "Log level (debug, info, warn, error)."},
			&cli.BoolFlag{Name: "quiet", Aliases: []string{"Q"},
				Usage: "Suppress all log output."},
		},
		Action: func(c *cli.Context) error {
			cfg := config.Defaults()
			if path := c.String("config"); path != "" {
				loaded, err := config.LoadFromFile(path)
				if err != nil {
					return err
				}
				cfg = loaded
			}
			if dir := c.String("snapshot-dir"); dir != "" {
				cfg.SnapshotDir = dir
			}
			if n := c.Int("frames"); n != 0 {
				cfg.Frames = n
			}
			if c.IsSet("log-level") {
				cfg.LogLevel = c.String("log-level")
			}
			if c.Bool("quiet") {
				cfg.Quiet = true
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			var log ports.Logger
			if cfg.Quiet {
				log = logger.NewNoop()
			} else {
				log = logger.NewConsole(ports.ParseLogLevel(cfg.LogLevel))
			}
			return runMix(cfg, log)
		},
	}
}

func formatsCommand() *cli.Command {
	return &cli.Command{
		Name:  "formats",
		Usage: "List the supported pixel formats.",
		Action: func(c *cli.Context) error {
			for _, f := range video.Formats() {
				fmt.Printf("%-5s %d bytes for 320x240\n", f, f.FrameSize(320, 240))
			}
			return nil
		},
	}
}

func versionCommand() *cli.Command {
	return &cli.Command{
		Name:  "version",
		Usage: "Show version information.",
		Action: func(c *cli.Context) error {
			fmt.Printf("videomix %s\n", version)
			return nil
		},
	}
}

// runMix wires generators, mixer and sinks together and produces the
// requested number of output frames.
func runMix(cfg config.Config, log ports.Logger) error {
	format, err := video.ParseFormat(cfg.Format)
	if err != nil {
		return err
	}
	background, err := mixer.ParseBackground(cfg.Background)
	if err != nil {
		return err
	}
	method, err := scale.ParseMethod(cfg.Method)
	if err != nil {
		return err
	}

	snapshots := pngsink.New(cfg.SnapshotDir)
	source := memtransport.NewSource()
	sink := memtransport.NewSink(snapshots)
	m := mixer.New(source, sink, mixer.Options{
		Background: background,
		Method:     method,
		Logger:     log,
	})

	type stream struct {
		port int
		gen  *testsrc.Generator
		fps  video.Fraction
	}
	streams := make([]stream, 0, len(cfg.Streams))
	for i, sc := range cfg.Streams {
		pattern, err := testsrc.ParsePattern(sc.Pattern)
		if err != nil {
			return fmt.Errorf("stream %d: %w", i, err)
		}
		gen, err := testsrc.New(testsrc.Options{
			Pattern: pattern,
			Format:  format,
			Width:   sc.Width,
			Height:  sc.Height,
			FPS:     sc.FPS,
		})
		if err != nil {
			return fmt.Errorf("stream %d: %w", i, err)
		}

		p := m.AddPort()
		if err := m.SetPortCaps(p.ID, gen.Caps()); err != nil {
			return fmt.Errorf("stream %d: %w", i, err)
		}
		if err := m.SetPortZOrder(p.ID, sc.ZOrder); err != nil {
			return err
		}
		if err := m.SetPortPlacement(p.ID, sc.XPos, sc.YPos, sc.ScaleWidth, sc.ScaleHeight); err != nil {
			return err
		}
		if err := m.SetPortAlpha(p.ID, sc.Alpha); err != nil {
			return err
		}
		streams = append(streams, stream{port: p.ID, gen: gen, fps: sc.FPS})
	}

	out := m.OutputCaps()
	log.Info("Mixing %d streams into %s", len(streams), out)

	for _, s := range streams {
		n := inputFrameCount(cfg.Frames, s.fps, out.FPS)
		for _, f := range s.gen.Generate(n) {
			source.Send(s.port, f)
		}
	}

	for len(sink.Frames()) < cfg.Frames {
		if err := m.Collect(); err != nil {
			if errors.Is(err, mixer.ErrEOS) {
				break
			}
			return err
		}
	}

	frames := sink.Frames()
	log.Info("Composited %d frames", len(frames))

	if snapshots.Enabled() && len(frames) > 0 {
		last := len(frames) - 1
		if err := snapshots.SaveThumbnail(last, frames[last], cfg.ThumbnailSize); err != nil {
			return err
		}
		log.Info("Snapshots saved to %s", cfg.SnapshotDir)
	}

	m.Stop()
	return nil
}

// inputFrameCount converts an output frame budget into the number of
// input frames a stream at the given rate contributes over the same time.
func inputFrameCount(outFrames int, fps, outFPS video.Fraction) int {
	if fps.N <= 0 || outFPS.N <= 0 {
		return outFrames
	}
	num := outFrames * fps.N * outFPS.D
	den := outFPS.N * fps.D
	return (num + den - 1) / den
}
