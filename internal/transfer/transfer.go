// Package transfer implements the exact-count copy loops shared by both
// sides of a transfer. TCP offers no message boundaries and a single read
// or write may move fewer bytes than asked for, so both loops iterate
// against the byte count declared in the protocol header rather than
// trusting any single I/O call.
package transfer

import (
	"io"

	"github.com/dillonpike/COSC264-File-Server/internal/errors"
)

// SendExact copies exactly total bytes from src to stream using a bounded
// buffer. It returns the number of bytes actually written to the stream.
// A source that runs dry before total bytes were produced, or a stream
// write that fails, aborts the transfer.
func SendExact(stream io.Writer, src io.Reader, total int64, buffer []byte) (int64, error) {
	var sent int64

	for sent < total {
		chunk := buffer
		if remaining := total - sent; remaining < int64(len(chunk)) {
			chunk = chunk[:remaining]
		}

		n, err := io.ReadFull(src, chunk)
		if n > 0 {
			written, werr := stream.Write(chunk[:n])
			sent += int64(written)
			if werr != nil {
				return sent, errors.NewTransferError("send", total, sent, werr)
			}
		}
		if err != nil {
			// ReadFull only errors here when the source ended early.
			return sent, errors.NewTransferError("send", total, sent, err)
		}
	}

	return sent, nil
}

// RecvExact copies exactly total bytes from stream to sink. Short stream
// reads are retried until the full count arrives; a stream that closes
// early or a sink write that fails aborts the transfer.
func RecvExact(stream io.Reader, sink io.Writer, total int64, buffer []byte) (int64, error) {
	var received int64

	for received < total {
		chunk := buffer
		if remaining := total - received; remaining < int64(len(chunk)) {
			chunk = chunk[:remaining]
		}

		n, err := stream.Read(chunk)
		if n > 0 {
			written, werr := sink.Write(chunk[:n])
			received += int64(written)
			if werr != nil {
				return received, errors.NewTransferError("receive", total, received, werr)
			}
			if written < n {
				return received, errors.NewTransferError("receive", total, received, io.ErrShortWrite)
			}
		}
		if err != nil {
			if err == io.EOF && received == total {
				break
			}
			return received, errors.NewTransferError("receive", total, received, err)
		}
	}

	return received, nil
}
