// Package main runs the editing engine as a line-delimited JSON
// service: commands arrive one per line on stdin, responses and engine
// events leave one per line on stdout. Hosts that cannot link the
// engine directly (webviews, other runtimes) drive it this way.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/willwagner/markupeditor/internal/bridge"
	"github.com/willwagner/markupeditor/internal/config"
	"github.com/willwagner/markupeditor/internal/engine"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	var (
		configPath  string
		logLevel    string
		showVersion bool
	)
	flag.StringVar(&configPath, "config", "", "Path to configuration file")
	flag.StringVar(&configPath, "c", "", "Path to configuration file (shorthand)")
	flag.StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	flag.BoolVar(&showVersion, "version", false, "Show version information")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Markupeditor - embeddable structured document engine\n\n")
		fmt.Fprintf(os.Stderr, "Usage: markupeditor [options]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if showVersion {
		fmt.Printf("markupeditor %s (%s)\n", version, commit)
		return 0
	}

	logger, err := newLogger(logLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	defer logger.Sync()

	cfg, err := config.Load(configPath)
	if err != nil {
		logger.Warn("config load failed, using defaults", zap.Error(err))
	}
	eng := engine.New(engine.WithLogger(logger), engine.WithConfig(cfg))

	// Serialize writes: responses and events share stdout.
	var outMu sync.Mutex
	out := bufio.NewWriter(os.Stdout)
	writeLine := func(msg []byte) {
		outMu.Lock()
		defer outMu.Unlock()
		out.Write(msg)
		out.WriteByte('\n')
		out.Flush()
	}
	br := bridge.New(eng, writeLine)

	// Live config reload.
	if configPath != "" {
		watcher, err := config.Watch(configPath, func(next config.Config, err error) {
			if err != nil {
				logger.Warn("config reload failed", zap.Error(err))
				return
			}
			if err := eng.Reconfigure(next); err != nil {
				logger.Warn("config rejected", zap.Error(err))
			}
		})
		if err != nil {
			logger.Warn("config watch failed", zap.Error(err))
		} else {
			defer watcher.Close()
		}
	}

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-signals
		logger.Info("shutting down")
		os.Exit(0)
	}()

	logger.Info("ready", zap.String("version", version))
	sc := bufio.NewScanner(os.Stdin)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for sc.Scan() {
		line := sc.Bytes()
		if len(line) == 0 {
			continue
		}
		writeLine(br.Dispatch(line))
	}
	if err := sc.Err(); err != nil {
		logger.Error("stdin read failed", zap.Error(err))
		return 1
	}
	return 0
}

func newLogger(level string) (*zap.Logger, error) {
	var lvl zapcore.Level
	if err := lvl.Set(level); err != nil {
		return nil, fmt.Errorf("bad log level %q", level)
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	// Stdout carries the protocol; logs go to stderr only.
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	return cfg.Build()
}
