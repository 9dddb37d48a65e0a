package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/miseqtools/miseqinterop/internal/server"
)

// cmdServe runs the HTTP API until interrupted.
func cmdServe(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	fs.SetOutput(stderr)
	listen := fs.String("listen", "", "listen address, overrides config")
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
	addr := cfg.Listen
	if *listen != "" {
		addr = *listen
	}

	srv := server.New(runsDir, server.WithReadLengths(cfg.DefaultReadLengths()))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errc := make(chan error, 1)
	go func() { errc <- srv.Start(addr) }()
	fmt.Fprintf(stdout, "Serving run API on %s (runs dir %s)\n", addr, runsDir)

	select {
	case err := <-errc:
		if err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return 1
		}
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			fmt.Fprintf(stderr, "Error: shutdown: %v\n", err)
			return 1
		}
	}
	return 0
}
