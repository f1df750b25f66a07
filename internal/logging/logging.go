package logging

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/dillonpike/COSC264-File-Server/internal/config"
	"github.com/dillonpike/COSC264-File-Server/internal/errors"
	"github.com/dillonpike/COSC264-File-Server/internal/filesystem"
)

// SetupLogger initializes structured logging with file and console output
func SetupLogger() error {
	// Create logs directory if it doesn't exist
	if err := filesystem.EnsureDirectoryExists("logs"); err != nil {
		return err
	}

	// Create log file with timestamp
	logFileName := filepath.Join("logs",
		"fileserver_"+time.Now().Format("20060102_150405")+".log")

	logFile, err := os.Create(logFileName)
	if err != nil {
		// Continue with console logging only
		slog.Warn("Failed to create log file, using console only", "error", err)
		return nil
	}

	// Create multi-writer to log to both console and file
	multiWriter := io.MultiWriter(os.Stdout, logFile)

	opts := &slog.HandlerOptions{
		Level:     slog.LevelInfo,
		AddSource: false,
	}

	// Use text handler for better console readability
	handler := slog.NewTextHandler(multiWriter, opts)
	logger := slog.New(handler)

	slog.SetDefault(logger)
	return nil
}

// LogConfig logs the current configuration
func LogConfig(cfg *config.Config) {
	if cfg.IsServer {
		slog.Info("Server configuration",
			"port", cfg.Port,
			"buffer_size_kb", float64(cfg.BufferSize)/1024,
			"max_sessions", cfg.MaxSessions,
			"request_timeout_seconds", int(cfg.Timeout.Seconds()))
	} else {
		slog.Info("Client configuration",
			"server_address", cfg.ServerAddress,
			"filename", cfg.Filename,
			"buffer_size_kb", float64(cfg.BufferSize)/1024)
	}
}

// LogError logs an error with appropriate context
func LogError(err error, context string) {
	switch e := err.(type) {
	case *errors.NetworkError:
		slog.Error("Network error",
			"context", context,
			"operation", e.Op,
			"address", e.Addr,
			"error_type", "network")
	case *errors.FileSystemError:
		slog.Error("File system error",
			"context", context,
			"operation", e.Op,
			"error_type", "filesystem")
	case *errors.ProtocolError:
		slog.Error("Protocol error",
			"context", context,
			"operation", e.Op,
			"message", e.Message,
			"error_type", "protocol")
	case *errors.TransferError:
		slog.Error("Transfer error",
			"context", context,
			"operation", e.Op,
			"expected_bytes", e.Expected,
			"actual_bytes", e.Actual,
			"error_type", "transfer")
	case *errors.ValidationError:
		slog.Error("Validation error",
			"context", context,
			"field", e.Field,
			"message", e.Message,
			"error_type", "validation")
	default:
		slog.Error("Unhandled error",
			"context", context,
			"error", err,
			"error_type", "unknown")
	}
}

// LogRequest writes the server's per-request line. Completed and failed
// requests share one format; outcome distinguishes them and
// bytes_transferred is 0 whenever no file bytes were streamed.
func LogRequest(clientIP string, clientPort int, filename string, bytesTransferred int64, outcome string) {
	slog.Info("Request handled",
		"client_ip", clientIP,
		"client_port", clientPort,
		"filename", filename,
		"bytes_transferred", bytesTransferred,
		"outcome", outcome)
}

// LogTransferComplete logs successful transfer completion
func LogTransferComplete(filename string, size int64, duration time.Duration) {
	rate := float64(size) / (1024 * 1024) / duration.Seconds()
	slog.Info("Transfer completed successfully",
		"filename", filename,
		"size_bytes", size,
		"duration_seconds", duration.Seconds(),
		"average_rate_mbps", rate)
}
