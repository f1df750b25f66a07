package server

import (
	"bufio"
	"errors"
	"log/slog"
	"net"
	"os"
	"strconv"
	"time"

	"golang.org/x/net/netutil"

	"github.com/dillonpike/COSC264-File-Server/internal/config"
	apperrors "github.com/dillonpike/COSC264-File-Server/internal/errors"
	"github.com/dillonpike/COSC264-File-Server/internal/filesystem"
	"github.com/dillonpike/COSC264-File-Server/internal/logging"
	"github.com/dillonpike/COSC264-File-Server/internal/network"
	"github.com/dillonpike/COSC264-File-Server/internal/protocol"
	"github.com/dillonpike/COSC264-File-Server/internal/transfer"
)

// Run binds the listening socket and serves connections until the process
// shuts down. The listener is the only process-wide state; every session's
// data lives in a value scoped to its connection.
func Run(cfg *config.Config) error {
	listener, err := net.Listen("tcp", cfg.ListenAddress)
	if err != nil {
		return apperrors.NewNetworkError("listen", cfg.ListenAddress, err)
	}
	defer listener.Close()

	slog.Info("Server ready to accept connections", "address", listener.Addr().String())
	return Serve(listener, cfg)
}

// Serve accepts connections on listener until it is closed. Each accepted
// connection runs its own session goroutine, so a slow or failing client
// never affects the others. The listener is capped at cfg.MaxSessions
// concurrently serviced connections.
func Serve(listener net.Listener, cfg *config.Config) error {
	limited := netutil.LimitListener(listener, cfg.MaxSessions)

	for {
		conn, err := limited.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			slog.Error("Failed to accept connection", "error", err)
			continue
		}

		go handleConnection(conn, cfg)
	}
}

// session is the per-connection record. It is owned exclusively by the
// goroutine handling its connection.
type session struct {
	conn       net.Conn
	clientIP   string
	clientPort int
	filename   string
	bytesSent  int64
	start      time.Time
}

func newSession(conn net.Conn) *session {
	s := &session{conn: conn, start: time.Now()}
	if host, port, err := net.SplitHostPort(conn.RemoteAddr().String()); err == nil {
		s.clientIP = host
		s.clientPort, _ = strconv.Atoi(port)
	}
	return s
}

// handleConnection drives one session through its states: decode the
// request, look up the file, send the reply header, stream the file bytes,
// log the outcome. Every exit path closes the connection.
func handleConnection(conn net.Conn, cfg *config.Config) {
	defer conn.Close()

	sess := newSession(conn)
	slog.Info("New connection", "client_ip", sess.clientIP, "client_port", sess.clientPort)

	if err := network.OptimizeTCPConnection(conn); err != nil {
		slog.Warn("Failed to optimize TCP connection", "error", err)
	}

	reader := bufio.NewReaderSize(conn, cfg.BufferSize)
	writer := bufio.NewWriterSize(conn, cfg.BufferSize)

	// A silent client must not pin the session forever while we wait for
	// its request. The deadline is lifted before streaming.
	if err := conn.SetReadDeadline(time.Now().Add(cfg.Timeout)); err != nil {
		slog.Error("Failed to set request deadline", "error", err)
		return
	}

	filename, err := protocol.ReadRequest(reader)
	if err != nil {
		logging.LogError(err, "server")
		logging.LogRequest(sess.clientIP, sess.clientPort, "", 0, "malformed_request")
		return
	}
	sess.filename = filename

	if err := conn.SetReadDeadline(time.Time{}); err != nil {
		slog.Error("Failed to clear request deadline", "error", err)
		return
	}

	file, size, err := filesystem.OpenServedFile(filename)
	if err != nil {
		slog.Info("Requested file not available", "filename", filename, "reason", err)
		sendNotFound(sess, writer)
		return
	}
	defer file.Close()

	streamFile(sess, writer, file, size, cfg)
}

// sendNotFound answers a request whose file is absent or unservable. The
// miss is a first-class reply, not a connection failure.
func sendNotFound(sess *session, writer *bufio.Writer) {
	_, err := writer.Write(protocol.EncodeNotFoundHeader())
	if err == nil {
		err = writer.Flush()
	}
	if err != nil {
		logging.LogError(apperrors.NewNetworkError("send_header", sess.clientIP, err), "server")
	}
	logging.LogRequest(sess.clientIP, sess.clientPort, sess.filename, 0, "not_found")
}

// streamFile sends the found header and then exactly size file bytes.
func streamFile(sess *session, writer *bufio.Writer, file *os.File, size int64, cfg *config.Config) {
	if _, err := writer.Write(protocol.EncodeFoundHeader(uint32(size))); err != nil {
		logging.LogError(apperrors.NewNetworkError("send_header", sess.clientIP, err), "server")
		logging.LogRequest(sess.clientIP, sess.clientPort, sess.filename, 0, "send_failed")
		return
	}

	buffer := make([]byte, cfg.ChunkSize)
	sent, err := transfer.SendExact(writer, file, size, buffer)
	sess.bytesSent = sent
	if err == nil {
		err = writer.Flush()
	}
	if err != nil {
		logging.LogError(err, "server")
		logging.LogRequest(sess.clientIP, sess.clientPort, sess.filename, sess.bytesSent, "transfer_failed")
		return
	}

	logging.LogRequest(sess.clientIP, sess.clientPort, sess.filename, sess.bytesSent, "ok")
	slog.Info("File sent",
		"filename", sess.filename,
		"bytes", sess.bytesSent,
		"duration_seconds", time.Since(sess.start).Seconds())
}
