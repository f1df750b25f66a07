package client

import (
	"bufio"
	"fmt"
	"net"
	"os"
	"time"

	"github.com/dillonpike/COSC264-File-Server/internal/config"
	"github.com/dillonpike/COSC264-File-Server/internal/errors"
	"github.com/dillonpike/COSC264-File-Server/internal/filesystem"
	"github.com/dillonpike/COSC264-File-Server/internal/logging"
	"github.com/dillonpike/COSC264-File-Server/internal/network"
	"github.com/dillonpike/COSC264-File-Server/internal/progress"
	"github.com/dillonpike/COSC264-File-Server/internal/protocol"
	"github.com/dillonpike/COSC264-File-Server/internal/transfer"
)

// Run performs one transfer: connect, send the request, decode the reply
// header, receive the file into local storage, and report elapsed time and
// throughput. It returns a non-nil error for every non-success outcome,
// including a not-found reply.
func Run(cfg *config.Config) error {
	// Refuse to clobber a file that already exists locally.
	if _, err := os.Stat(cfg.Filename); err == nil {
		fmt.Println("File already exists and can be opened locally.")
		return errors.NewValidationError("filename", cfg.Filename,
			"destination file already exists")
	}

	conn, err := net.DialTimeout("tcp", cfg.ServerAddress, config.DialTimeout)
	if err != nil {
		fmt.Println("Couldn't connect to the server.")
		return errors.NewNetworkError("dial", cfg.ServerAddress, err)
	}
	defer conn.Close()

	if err := network.OptimizeTCPConnection(conn); err != nil {
		fmt.Println("Couldn't prepare the connection.")
		return err
	}

	reader := bufio.NewReaderSize(conn, cfg.BufferSize)
	writer := bufio.NewWriterSize(conn, cfg.BufferSize)

	if err := sendRequest(writer, cfg.Filename); err != nil {
		fmt.Println("Failed to send the file request.")
		return err
	}

	header, err := readHeader(conn, reader, cfg.Timeout)
	if err != nil {
		fmt.Println("Failed to read a valid response from the server.")
		return err
	}

	if !header.Found {
		fmt.Println("File couldn't be found or opened on the server.")
		return errors.NewFileSystemError("lookup", cfg.Filename, os.ErrNotExist)
	}

	return receiveFile(reader, header, cfg)
}

// sendRequest encodes and writes the file request.
func sendRequest(writer *bufio.Writer, filename string) error {
	request, err := protocol.EncodeRequest(filename)
	if err != nil {
		return err
	}
	if _, err := writer.Write(request); err != nil {
		return errors.NewNetworkError("send_request", filename, err)
	}
	if err := writer.Flush(); err != nil {
		return errors.NewNetworkError("send_request", filename, err)
	}
	return nil
}

// readHeader decodes the response header under a read deadline, then lifts
// the deadline so the body transfer can take as long as the link needs.
func readHeader(conn net.Conn, reader *bufio.Reader, timeout time.Duration) (protocol.ResponseHeader, error) {
	if err := conn.SetReadDeadline(time.Now().Add(timeout)); err != nil {
		return protocol.ResponseHeader{}, errors.NewNetworkError("set_deadline", conn.RemoteAddr().String(), err)
	}

	header, err := protocol.ReadResponseHeader(reader)
	if err != nil {
		return protocol.ResponseHeader{}, err
	}

	if err := conn.SetReadDeadline(time.Time{}); err != nil {
		return protocol.ResponseHeader{}, errors.NewNetworkError("set_deadline", conn.RemoteAddr().String(), err)
	}
	return header, nil
}

// receiveFile streams the declared byte count into a fresh destination
// file, timing the transfer. A failed transfer removes the partial file.
func receiveFile(reader *bufio.Reader, header protocol.ResponseHeader, cfg *config.Config) error {
	dest, err := filesystem.CreateDestination(cfg.Filename)
	if err != nil {
		fmt.Println("Failed to create the file.")
		return err
	}

	total := int64(header.FileLength)
	stats := progress.NewStats(cfg.Filename, total)

	var reporter *progress.Reporter
	if cfg.ShowProgress {
		fmt.Println("Downloading...")
		reporter = progress.NewReporter(stats)
		reporter.Start()
	}

	buffer := make([]byte, cfg.ChunkSize)
	received, err := transfer.RecvExact(reader, statsWriter{dest, stats}, total, buffer)
	stats.Finish()
	if reporter != nil {
		reporter.Stop()
	}

	if err != nil {
		dest.Close()
		filesystem.RemoveIncomplete(cfg.Filename)
		fmt.Println("Failed to receive the complete file.")
		return err
	}

	if err := dest.Close(); err != nil {
		filesystem.RemoveIncomplete(cfg.Filename)
		return errors.NewFileSystemError("close", cfg.Filename, err)
	}

	reportSuccess(cfg.Filename, received, stats)
	return nil
}

// statsWriter feeds the progress counter as bytes land on disk.
type statsWriter struct {
	dest  *os.File
	stats *progress.Stats
}

func (w statsWriter) Write(p []byte) (int, error) {
	n, err := w.dest.Write(p)
	w.stats.UpdateTransferred(int64(n))
	return n, err
}

// reportSuccess prints the user-facing summary and logs completion.
func reportSuccess(filename string, received int64, stats *progress.Stats) {
	elapsed := stats.Elapsed()

	fmt.Printf("Successfully downloaded %s.\nSize: %d bytes.\n", filename, received)
	fmt.Printf("Time taken: %.4f s\n", elapsed.Seconds())
	if elapsed > 0 {
		fmt.Printf("Average download speed: %.2f MB/s\n", stats.Throughput()/(1024*1024))
	} else {
		fmt.Println("Download time was too short to measure the download speed.")
	}

	logging.LogTransferComplete(filename, received, elapsed)
}
