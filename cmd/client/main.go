/*
The client command downloads one file from a server: it connects, sends a
request naming the file, and writes the received bytes to a local file of
the same name, reporting size, elapsed time, and average throughput.

Usage:

	client <ip_address> <port> <filename>

The port must be an integer between 1024 and 64000 (inclusive). The client
refuses to run when the named file already exists locally, and it exits
non-zero on any non-success outcome, including a not-found reply.
*/
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/dillonpike/COSC264-File-Server/internal/client"
	"github.com/dillonpike/COSC264-File-Server/internal/config"
	"github.com/dillonpike/COSC264-File-Server/internal/logging"
)

func main() {
	// Setup structured logging first
	if err := logging.SetupLogger(); err != nil {
		slog.Error("Failed to setup logging", "error", err)
		os.Exit(1)
	}

	// Parse command line arguments
	cfg, err := config.ParseClientArgs(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	logging.LogConfig(cfg)

	if err := client.Run(cfg); err != nil {
		logging.LogError(err, "client")
		os.Exit(1)
	}
}
