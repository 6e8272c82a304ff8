package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/oscilla-audio/engine/internal/cli"
	"github.com/oscilla-audio/engine/internal/engine"
	"github.com/oscilla-audio/engine/internal/logging"
	"github.com/oscilla-audio/engine/internal/wav"
)

// RenderCmd drives the mix graph offline, faster than realtime, and writes
// the master bus (or a single stem) to a WAV file (§4.9).
type RenderCmd struct {
	Project  string  `arg:"" name:"project" help:"Project YAML file to render." type:"existingfile"`
	Output   string  `arg:"" name:"output" help:"Destination WAV file."`
	Duration float64 `help:"Seconds to render." default:"30"`
	Offset   float64 `help:"Start offset in seconds." default:"0"`
	Rate     int     `help:"Target sample rate." default:"48000"`
	Depth    string  `help:"Bit depth: pcm16, pcm24, or float32." default:"pcm24"`
	Stem     string  `help:"Render only this track id as an isolated stem."`
	NoNorm   bool    `help:"Skip peak normalization before writing."`
}

func (c *RenderCmd) Run() error {
	depth, err := parseBitDepth(c.Depth)
	if err != nil {
		return err
	}

	e := engine.New(float64(c.Rate))
	if err := e.Load(c.Project); err != nil {
		return fmt.Errorf("loading project: %w", err)
	}

	cli.PrintSection("Rendering")
	cli.PrintInfo("project", c.Project)
	cli.PrintInfo("duration", fmt.Sprintf("%.1fs", c.Duration))

	req := engine.RenderRequest{
		DurationSeconds:    c.Duration,
		StartOffsetSeconds: c.Offset,
		TargetSampleRate:   c.Rate,
		Progress: func(p float64) {
			fmt.Printf("\r  %3.0f%%", p*100)
		},
	}

	start := time.Now()
	var channels [][]float64
	if c.Stem != "" {
		channels, err = e.RenderStem(context.Background(), stemTrackID(c.Stem), req)
	} else {
		channels, err = e.RenderProject(context.Background(), req)
	}
	fmt.Println()
	if err != nil {
		return fmt.Errorf("render failed: %w", err)
	}
	wallClock := time.Since(start)

	if !c.NoNorm {
		wav.Normalize(channels, -0.1)
	}
	wav.Dither(channels, depth, nil)

	data, err := wav.Encode(channels, c.Rate, depth)
	if err != nil {
		return fmt.Errorf("encoding wav: %w", err)
	}
	if err := os.WriteFile(c.Output, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", c.Output, err)
	}

	peakDB, rmsDB := logging.PeakRMS(channels)
	report := logging.RenderReport{
		PeakDB:           peakDB,
		RMSDB:            rmsDB,
		DurationSeconds:  c.Duration,
		WallClockSeconds: wallClock.Seconds(),
		Stems:            []string{c.Output},
	}
	fmt.Println(report.String())
	cli.PrintRenderSummary(peakDB, rmsDB, c.Duration, wallClock, report.Stems)
	cli.PrintSuccess(fmt.Sprintf("wrote %s", c.Output))
	return nil
}

func parseBitDepth(name string) (wav.BitDepth, error) {
	switch name {
	case "pcm16":
		return wav.PCM16, nil
	case "pcm24":
		return wav.PCM24, nil
	case "float32":
		return wav.Float32, nil
	default:
		return 0, fmt.Errorf("unknown bit depth %q (want pcm16, pcm24, or float32)", name)
	}
}
