package main

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/gordonklaus/portaudio"

	"github.com/oscilla-audio/engine/internal/cli"
	"github.com/oscilla-audio/engine/internal/engine"
)

// PlayCmd opens the default output device via PortAudio and drives the
// engine's block loop directly from the audio callback -- the realtime
// audio thread of §5, now backed by a real device (§ DOMAIN STACK).
type PlayCmd struct {
	Project string `arg:"" name:"project" help:"Project YAML file to play." type:"existingfile"`
}

func (c *PlayCmd) Run() error {
	e := engine.New(48000)
	if err := e.Load(c.Project); err != nil {
		return fmt.Errorf("loading project: %w", err)
	}

	if err := portaudio.Initialize(); err != nil {
		return fmt.Errorf("initializing audio device: %w", err)
	}
	defer portaudio.Terminate()

	stream, err := portaudio.OpenDefaultStream(0, 2, e.SampleRate(), engine.BlockSize, audioCallback(e))
	if err != nil {
		return fmt.Errorf("opening audio stream: %w", err)
	}
	defer stream.Close()

	if err := e.Play(nil); err != nil {
		return fmt.Errorf("starting transport: %w", err)
	}
	if err := stream.Start(); err != nil {
		return fmt.Errorf("starting audio stream: %w", err)
	}
	defer stream.Stop()

	cli.PrintBanner()
	p := tea.NewProgram(newMonitorModel(e))
	if _, err := p.Run(); err != nil {
		return err
	}
	return e.Stop()
}

// audioCallback adapts ProcessBlock's per-channel float64 output to the
// interleaved float32 buffer PortAudio's stream callback expects. out is
// exactly 2*engine.BlockSize long since the stream was opened with that
// frame count, so every sample ProcessBlock produces has a home.
func audioCallback(e *engine.Engine) func(out []float32) {
	return func(out []float32) {
		res := e.ProcessBlock()
		for i := 0; i < len(res.Left) && i*2+1 < len(out); i++ {
			out[i*2] = float32(res.Left[i])
			out[i*2+1] = float32(res.Right[i])
		}
	}
}
