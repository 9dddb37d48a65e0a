package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/miseqtools/miseqinterop/internal/logging"
	"github.com/miseqtools/miseqinterop/internal/watch"
)

// cmdWatch follows a runs directory and reports marker transitions as
// they happen. Runs until interrupted.
func cmdWatch(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("watch", flag.ContinueOnError)
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

	logger, err := logging.New(cfg.LogDir)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	defer logger.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	events, err := watch.Watch(ctx, runsDir, watch.WithLogf(logger.Printf))
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	fmt.Fprintf(stdout, "Watching %s for run changes (Ctrl-C to stop)\n", runsDir)
	logger.Printf("watch started on %s", runsDir)
	for ev := range events {
		fmt.Fprintf(stdout, "[%s] %s\n", ev.Kind, ev.Name)
		logger.Printf("%s: %s", ev.Kind, ev.Name)
	}
	logger.Printf("watch stopped")
	return 0
}
