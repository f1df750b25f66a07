/*
The server command listens on a TCP port and answers single-file requests:
each accepted connection carries one length-prefixed filename, and the
server replies with a status header followed by the file bytes when the
file exists on local storage.

Usage:

	server <port>

The port must be an integer between 1024 and 64000 (inclusive).
*/
package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/dillonpike/COSC264-File-Server/internal/config"
	"github.com/dillonpike/COSC264-File-Server/internal/logging"
	"github.com/dillonpike/COSC264-File-Server/internal/server"
)

func main() {
	// Setup structured logging first
	if err := logging.SetupLogger(); err != nil {
		slog.Error("Failed to setup logging", "error", err)
		os.Exit(1)
	}

	// Parse command line arguments
	cfg, err := config.ParseServerArgs(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	logging.LogConfig(cfg)

	// Set up signal handling for graceful shutdown
	setupSignalHandling()

	if err := server.Run(cfg); err != nil {
		logging.LogError(err, "server")
		os.Exit(1)
	}
}

// setupSignalHandling sets up handlers for OS signals to ensure clean shutdown
func setupSignalHandling() {
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-signals
		slog.Info("Received shutdown signal", "signal", sig)
		os.Exit(0)
	}()
}
