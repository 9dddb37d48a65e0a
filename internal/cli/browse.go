package cli

import (
	"flag"
	"fmt"
	"io"

	"github.com/miseqtools/miseqinterop/internal/tui"
)

// cmdBrowse opens the interactive run browser.
func cmdBrowse(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("browse", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "", "config file path")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	runsDir := cfg.RunsDir
	if fs.NArg() > 0 {
		runsDir = fs.Arg(0)
	}
	if runsDir == "" {
		fmt.Fprintln(stderr, "Error: no runs directory given and none configured")
		return 2
	}

	browser := tui.NewBrowser(runsDir, cfg.DefaultReadLengths())
	if err := browser.Run(); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}
