// Lullaby is a terminal music player with a live playback panel.
//
// Usage:
//
//	lullaby [-alternate] [-minimalist] [-shuffle] [-volume 0.5] [file|dir ...]
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	stdlog "log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"

	"github.com/hammamikhairi/lullaby/internal/audio"
	"github.com/hammamikhairi/lullaby/internal/domain"
	"github.com/hammamikhairi/lullaby/internal/engine"
	"github.com/hammamikhairi/lullaby/internal/library"
	"github.com/hammamikhairi/lullaby/internal/logger"
	"github.com/hammamikhairi/lullaby/internal/remote"
	"github.com/hammamikhairi/lullaby/internal/terminal"
	"github.com/hammamikhairi/lullaby/internal/ui"
)

func main() {
	os.Exit(run())
}

func run() int {
	_ = godotenv.Load()

	cfg := parseFlags(flag.CommandLine, os.Args[1:])

	// The panel owns the terminal, so logs only ever go to a file.
	var logOut io.Writer
	if cfg.logFile != "" {
		if dir := filepath.Dir(cfg.logFile); dir != "" && dir != "." {
			os.MkdirAll(dir, 0o755)
		}
		// LogToFile also points Go's default log package (used by the
		// audio libraries) at the file.
		f, err := tea.LogToFile(cfg.logFile, "lullaby")
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: could not open log file %s: %v (logging disabled)\n", cfg.logFile, err)
		} else {
			logOut = f
			defer f.Close()
		}
	}
	if logOut == nil {
		stdlog.SetOutput(io.Discard)
	}

	log := logger.New(cfg.logLevel, logOut)

	// Raw mode turns Ctrl+C into a key press; signals from outside the
	// terminal end the run through the same cleanup path.
	sigCtx, stopSignals := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)
	defer stopSignals()
	ctx, cancel := context.WithCancel(sigCtx)
	defer cancel()

	tracks, err := library.Scan(ctx, cfg.paths, log.Named("library"), library.WithFilter(audio.Supported))
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	if len(tracks) == 0 {
		fmt.Fprintf(os.Stderr, "error: no playable files in %s\n", strings.Join(cfg.paths, ", "))
		return 1
	}
	queue := library.NewMemory(tracks, log.Named("library"), library.WithShuffle(cfg.shuffle))

	out, err := audio.NewOutput(log.Named("audio"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}

	tty, err := terminal.Open()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}

	eng := engine.New(queue, out, log.Named("engine"), engine.WithVolume(cfg.volume))
	engineErr := make(chan error, 1)
	go func() { engineErr <- eng.Run(ctx) }()

	// The interface ends with the engine, e.g. after a remote quit.
	uiCtx, stopUI := context.WithCancel(ctx)
	defer stopUI()
	go func() {
		select {
		case <-eng.Done():
			stopUI()
		case <-uiCtx.Done():
		}
	}()

	opts := []ui.Option{
		ui.WithAlternate(cfg.alternate),
		ui.WithMinimalist(cfg.minimalist),
	}
	if cfg.socket != "" {
		opts = append(opts, ui.WithIntegration(func(state domain.StateReader, sink domain.CommandSink) (ui.Integration, error) {
			return remote.New(cfg.socket, state, sink, log.Named("remote")), nil
		}))
	}

	log.Info("lullaby starting (%d tracks, alternate=%t, minimalist=%t)", len(tracks), cfg.alternate, cfg.minimalist)
	uiErr := ui.New(tty, eng, eng, log.Named("ui"), opts...).Run(uiCtx)

	cancel()
	runErr := <-engineErr

	status := 0
	if uiErr != nil && !errors.Is(uiErr, domain.ErrEngineStopped) {
		log.Error("interface: %v", uiErr)
		fmt.Fprintf(os.Stderr, "error: %v\n", uiErr)
		status = 1
	}
	if runErr != nil {
		log.Error("engine: %v", runErr)
		fmt.Fprintf(os.Stderr, "error: %v\n", runErr)
		status = 1
	}
	return status
}
