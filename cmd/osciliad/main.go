package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kong"

	"github.com/oscilla-audio/engine/internal/cli"
)

// version is set via ldflags at build time.
// Local dev builds: "dev"
// Release builds: git tag (e.g. "0.1.0")
var version = "dev"

// CLI is the osciliad demo host's command surface: render a project
// offline, play it live through PortAudio, or print a summary of its
// tracks.
type CLI struct {
	Version bool `short:"v" help:"Show version information"`

	Render RenderCmd `cmd:"" help:"Render a project to a WAV file offline, faster than realtime."`
	Play   PlayCmd   `cmd:"" help:"Play a project live through the default audio device."`
	Info   InfoCmd   `cmd:"" help:"Print a summary of a project's tracks and routing."`
}

func main() {
	for _, a := range os.Args[1:] {
		if a == "-v" || a == "--version" {
			cli.PrintVersion(version)
			os.Exit(0)
		}
	}

	cliArgs := &CLI{}
	parser := kong.Must(cliArgs,
		kong.Name("osciliad"),
		kong.Description("Digital audio workstation engine demo host"),
		kong.UsageOnError(),
		kong.Vars{"version": version},
		kong.Help(cli.StyledHelpPrinter(kong.HelpOptions{Compact: true})),
	)

	ctx, err := parser.Parse(os.Args[1:])
	parser.FatalIfErrorf(err)

	if err := ctx.Run(); err != nil {
		cli.PrintError(fmt.Sprintf("%v", err))
		os.Exit(1)
	}
}
