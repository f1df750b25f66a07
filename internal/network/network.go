package network

import (
	"log/slog"
	"net"
	"time"

	"github.com/dillonpike/COSC264-File-Server/internal/config"
	"github.com/dillonpike/COSC264-File-Server/internal/errors"
)

// OptimizeTCPConnection applies TCP optimizations to a connection
func OptimizeTCPConnection(conn net.Conn) error {
	tcpConn, isTCP := conn.(*net.TCPConn)
	if !isTCP {
		return nil // Not a TCP connection, skip optimizations
	}

	// Enable keep-alive to detect dead connections
	if err := tcpConn.SetKeepAlive(true); err != nil {
		return errors.NewNetworkError("set_keepalive", conn.RemoteAddr().String(), err)
	}

	// Set keep-alive interval
	if err := tcpConn.SetKeepAlivePeriod(30 * time.Second); err != nil {
		slog.Warn("Failed to set TCP keepalive period", "error", err)
	}

	// Disable Nagle's algorithm so small headers go out immediately
	if err := tcpConn.SetNoDelay(true); err != nil {
		slog.Warn("Failed to disable Nagle's algorithm", "error", err)
	}

	// Set larger buffer sizes for high throughput
	if err := tcpConn.SetReadBuffer(config.TCPBufferSize); err != nil {
		slog.Warn("Failed to set TCP read buffer", "error", err)
	}

	if err := tcpConn.SetWriteBuffer(config.TCPBufferSize); err != nil {
		slog.Warn("Failed to set TCP write buffer", "error", err)
	}

	return nil
}
