package main

import (
	"fmt"

	"github.com/oscilla-audio/engine/internal/cli"
	"github.com/oscilla-audio/engine/internal/engine"
)

// InfoCmd prints a project's tracks, routing and transport settings
// without rendering anything, for quickly sanity-checking a saved project
// file.
type InfoCmd struct {
	Project string `arg:"" name:"project" help:"Project YAML file to inspect." type:"existingfile"`
}

func (c *InfoCmd) Run() error {
	e := engine.New(48000)
	if err := e.Load(c.Project); err != nil {
		return fmt.Errorf("loading project: %w", err)
	}
	state := e.GetState()

	cli.PrintSection("Transport")
	cli.PrintInfo("bpm", fmt.Sprintf("%.1f", state.BPM))
	if state.Key != "" {
		cli.PrintInfo("key", fmt.Sprintf("%s %s", state.Key, state.Scale))
	}
	cli.PrintInfo("loop", fmt.Sprintf("%v [%.1f, %.1f)", state.LoopActive, state.LoopStart, state.LoopEnd))
	cli.PrintInfo("pdc", fmt.Sprintf("%v", state.PDCEnabled))

	cli.PrintSection(fmt.Sprintf("Tracks (%d)", len(state.Tracks)))
	for _, t := range state.Tracks {
		line := fmt.Sprintf("%-24s kind=%-9s vol=%.2f pan=%+.2f -> %s", t.Name, t.Kind, t.Volume, t.Pan, t.OutputTrackID)
		if t.IsMuted {
			line += " [muted]"
		}
		if t.IsSolo {
			line += " [solo]"
		}
		if t.IsArmed {
			line += " [armed]"
		}
		fmt.Printf("  %s\n", line)
		for _, ins := range t.Inserts {
			status := "enabled"
			if !ins.IsEnabled {
				status = "bypassed"
			}
			fmt.Printf("    insert: %-12s %s\n", ins.Kind, status)
		}
		for _, s := range t.Sends {
			fmt.Printf("    send -> %s: level=%.2f enabled=%v\n", s.DestinationID, s.Level, s.IsEnabled)
		}
		if len(t.Clips) > 0 {
			fmt.Printf("    clips: %d\n", len(t.Clips))
		}
		if len(t.Lanes) > 0 {
			fmt.Printf("    automation lanes: %d\n", len(t.Lanes))
		}
	}
	return nil
}
