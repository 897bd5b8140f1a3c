// Package main runs the periscope server: a headless browser session
// streamed to thin clients over WebSocket, with client input events
// replayed into the browser.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/entrhq/periscope/pkg/browser"
	"github.com/entrhq/periscope/pkg/config"
	"github.com/entrhq/periscope/pkg/guard"
	"github.com/entrhq/periscope/pkg/logging"
	"github.com/entrhq/periscope/pkg/relay"
	"github.com/entrhq/periscope/pkg/server"
)

const version = "0.1.0"

// cliFlags holds command-line configuration.
type cliFlags struct {
	ConfigFile  string
	Port        string
	ShowVersion bool
}

func main() {
	flags := parseFlags()

	if flags.ShowVersion {
		fmt.Printf("periscope v%s\n", version)
		return
	}

	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Println("\nShutting down gracefully...")
		cancel()
	}()

	if err := run(ctx, flags); err != nil {
		cancel()
		log.Printf("Execution failed: %v", err)
		os.Exit(1)
	}
	cancel()
}

func parseFlags() *cliFlags {
	flags := &cliFlags{}

	flag.StringVar(&flags.ConfigFile, "config", "", "Path to configuration file (YAML)")
	flag.StringVar(&flags.Port, "port", "", "Listen port (overrides config)")
	flag.BoolVar(&flags.ShowVersion, "version", false, "Show version and exit")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Periscope - Remote Browser Viewport Relay\n\n")
		fmt.Fprintf(os.Stderr, "Usage: periscope [options]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nConfiguration is also read from PERISCOPE_-prefixed environment variables.\n")
	}

	flag.Parse()
	return flags
}

func run(ctx context.Context, flags *cliFlags) error {
	cfg, err := config.Load(flags.ConfigFile)
	if err != nil {
		return fmt.Errorf("configuration: %w", err)
	}
	if flags.Port != "" {
		cfg.Server.Port = flags.Port
	}

	logger, err := logging.NewLogger("main")
	if err != nil {
		// The fallback logger still works; note it and continue.
		log.Printf("WARNING: file logging unavailable: %v", err)
	}
	defer logger.Close()
	logger.Infof("periscope v%s starting", version)

	// Bring up the browser before accepting clients.
	browserLogger, _ := logging.NewLogger("browser")
	defer browserLogger.Close()
	manager := browser.NewManager(browserLogger)
	if err := manager.Initialize(); err != nil {
		return fmt.Errorf("browser init: %w", err)
	}
	defer func() {
		if err := manager.Shutdown(); err != nil {
			logger.Errorf("browser shutdown: %v", err)
		}
	}()

	session, err := manager.Start(browser.SessionOptions{
		Headless:          cfg.Browser.Headless,
		Viewport:          browser.Viewport{Width: cfg.Browser.ViewportWidth, Height: cfg.Browser.ViewportHeight},
		UserAgent:         cfg.Browser.UserAgent,
		NavigationTimeout: cfg.Browser.NavigationTimeoutMs,
		ClickSettle:       time.Duration(cfg.Browser.ClickSettleMs) * time.Millisecond,
		KeySettle:         time.Duration(cfg.Browser.KeySettleMs) * time.Millisecond,
		CookiesFile:       cfg.Browser.CookiesFile,
	})
	if err != nil {
		return fmt.Errorf("browser session: %w", err)
	}

	urlGuard, err := guard.New(cfg.Guard.AllowedURLs, cfg.Guard.DeniedURLs)
	if err != nil {
		return fmt.Errorf("guard patterns: %w", err)
	}

	relayLogger, _ := logging.NewLogger("relay")
	defer relayLogger.Close()

	registry := relay.NewRegistry()
	rly := relay.New(session, registry, relayLogger, relay.Options{
		QueueSize:    cfg.Relay.QueueSize,
		LowBandwidth: cfg.Relay.LowBandwidth,
		Guard:        urlGuard,
	})
	go rly.Run(ctx)

	serverLogger, _ := logging.NewLogger("server")
	defer serverLogger.Close()
	srv := server.New(cfg.Server, rly, registry, manager, serverLogger)

	logger.Infof("server running on http://%s", cfg.Server.Addr())
	logger.Infof("log file: %s", logger.LogPath())
	fmt.Printf("Periscope running on http://%s\n", cfg.Server.Addr())

	return srv.Run(ctx)
}
