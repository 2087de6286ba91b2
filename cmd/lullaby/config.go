package main

import (
	"flag"
	"os"
	"strconv"
	"strings"

	"github.com/hammamikhairi/lullaby/internal/logger"
)

// Environment variables providing flag defaults. A .env file in the working
// directory is loaded first.
const (
	envAlternate  = "LULLABY_ALTERNATE"
	envMinimalist = "LULLABY_MINIMALIST"
	envVolume     = "LULLABY_VOLUME"
	envShuffle    = "LULLABY_SHUFFLE"
	envSocket     = "LULLABY_SOCKET"
	envLogFile    = "LULLABY_LOG_FILE"
	envLogLevel   = "LULLABY_LOG_LEVEL"
	envMusicDir   = "LULLABY_MUSIC_DIR"
)

type config struct {
	alternate  bool
	minimalist bool
	shuffle    bool
	volume     float64
	socket     string
	logFile    string
	logLevel   logger.Level
	paths      []string
}

// parseFlags reads the command line. On bad input the flag set's error
// handling applies (the default set exits with usage).
func parseFlags(fs *flag.FlagSet, args []string) config {
	var cfg config

	fs.BoolVar(&cfg.alternate, "alternate", envBool(envAlternate, false), "draw the panel on the alternate screen")
	fs.BoolVar(&cfg.minimalist, "minimalist", envBool(envMinimalist, false), "hide the key legend")
	fs.BoolVar(&cfg.shuffle, "shuffle", envBool(envShuffle, false), "play tracks in random order")
	fs.Float64Var(&cfg.volume, "volume", envFloat(envVolume, 0.5), "starting volume, 0 to 1")
	fs.StringVar(&cfg.socket, "socket", os.Getenv(envSocket), "unix socket for remote control (empty disables)")
	fs.StringVar(&cfg.logFile, "log-file", os.Getenv(envLogFile), "file to write logs to (empty disables logging)")
	verbose := fs.Bool("verbose", false, "enable verbose/debug logging")
	quiet := fs.Bool("quiet", false, "disable all logging")
	_ = fs.Parse(args)

	cfg.logLevel = logger.ParseLevel(os.Getenv(envLogLevel))
	if *verbose {
		cfg.logLevel = logger.LevelVerbose
	}
	if *quiet {
		cfg.logLevel = logger.LevelOff
	}

	cfg.paths = fs.Args()
	if len(cfg.paths) == 0 {
		dir := os.Getenv(envMusicDir)
		if dir == "" {
			dir = "."
		}
		cfg.paths = []string{dir}
	}
	return cfg
}

func envBool(key string, def bool) bool {
	v, err := strconv.ParseBool(strings.TrimSpace(os.Getenv(key)))
	if err != nil {
		return def
	}
	return v
}

func envFloat(key string, def float64) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(os.Getenv(key)), 64)
	if err != nil {
		return def
	}
	return v
}
