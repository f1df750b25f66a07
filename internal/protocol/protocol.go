// Package protocol implements the fixed wire format for one file transfer.
//
// The client opens the exchange with a length-prefixed filename and the
// server answers with a one-byte status, followed by the file length and
// raw file bytes when the file exists:
//
//	Client -> Server : [uint16 BE filenameLen][filename bytes]
//	Server -> Client : [uint8 status]  (0 = found, 1 = not found)
//	                   if status == 0: [uint32 BE fileLength][file bytes]
//
// All multi-byte fields use network (big-endian) byte order. Filenames are
// between 1 and 1024 bytes; a length field outside that range is treated as
// a framing violation rather than trusted.
package protocol

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/dillonpike/COSC264-File-Server/internal/errors"
)

// Response status codes
const (
	StatusFound    = 0
	StatusNotFound = 1
)

// Filename length bounds carried in the request length field
const (
	MinFilenameLength = 1
	MaxFilenameLength = 1024
)

// Header field sizes
const (
	requestPrefixSize  = 2
	responseStatusSize = 1
	responseLengthSize = 4
)

// EncodeRequest produces the request message for filename: a 2-byte
// big-endian length prefix followed by the filename bytes.
func EncodeRequest(filename string) ([]byte, error) {
	if len(filename) < MinFilenameLength || len(filename) > MaxFilenameLength {
		return nil, errors.NewProtocolError("encode_request",
			fmt.Sprintf("filename must be between %d and %d bytes, got %d",
				MinFilenameLength, MaxFilenameLength, len(filename)), nil)
	}

	msg := make([]byte, requestPrefixSize+len(filename))
	binary.BigEndian.PutUint16(msg, uint16(len(filename)))
	copy(msg[requestPrefixSize:], filename)
	return msg, nil
}

// ReadRequest decodes a request message from the stream. It reads exactly
// the 2-byte length prefix and then exactly that many filename bytes.
// A zero or oversized length field, or a stream that closes before the
// full message arrives, is a framing violation.
func ReadRequest(r io.Reader) (string, error) {
	prefix := make([]byte, requestPrefixSize)
	if _, err := io.ReadFull(r, prefix); err != nil {
		return "", errors.NewProtocolError("read_request",
			"stream closed before filename length arrived", err)
	}

	filenameLen := int(binary.BigEndian.Uint16(prefix))
	if filenameLen < MinFilenameLength || filenameLen > MaxFilenameLength {
		return "", errors.NewProtocolError("read_request",
			fmt.Sprintf("filename length %d outside [%d, %d]",
				filenameLen, MinFilenameLength, MaxFilenameLength), nil)
	}

	filename := make([]byte, filenameLen)
	if _, err := io.ReadFull(r, filename); err != nil {
		return "", errors.NewProtocolError("read_request",
			fmt.Sprintf("stream closed before %d filename bytes arrived", filenameLen), err)
	}

	return string(filename), nil
}

// ResponseHeader is the decoded form of the server's reply header.
// FileLength is meaningful only when Found is true; it states exactly how
// many file bytes follow on the stream.
type ResponseHeader struct {
	Found      bool
	FileLength uint32
}

// EncodeFoundHeader produces the found reply header: status byte 0 and the
// 4-byte big-endian length of the file bytes that will follow.
func EncodeFoundHeader(fileLength uint32) []byte {
	header := make([]byte, responseStatusSize+responseLengthSize)
	header[0] = StatusFound
	binary.BigEndian.PutUint32(header[responseStatusSize:], fileLength)
	return header
}

// EncodeNotFoundHeader produces the not-found reply header: status byte 1
// with no length field.
func EncodeNotFoundHeader() []byte {
	return []byte{StatusNotFound}
}

// ReadResponseHeader decodes the server's reply header. It reads the status
// byte and, only for a found reply, the 4-byte file length. An unknown
// status byte or a stream that closes mid-header is a framing violation.
func ReadResponseHeader(r io.Reader) (ResponseHeader, error) {
	status := make([]byte, responseStatusSize)
	if _, err := io.ReadFull(r, status); err != nil {
		return ResponseHeader{}, errors.NewProtocolError("read_response",
			"stream closed before status byte arrived", err)
	}

	switch status[0] {
	case StatusNotFound:
		return ResponseHeader{Found: false}, nil
	case StatusFound:
		lengthField := make([]byte, responseLengthSize)
		if _, err := io.ReadFull(r, lengthField); err != nil {
			return ResponseHeader{}, errors.NewProtocolError("read_response",
				"stream closed before file length arrived", err)
		}
		return ResponseHeader{
			Found:      true,
			FileLength: binary.BigEndian.Uint32(lengthField),
		}, nil
	default:
		return ResponseHeader{}, errors.NewProtocolError("read_response",
			fmt.Sprintf("status byte must be %d or %d, got %d",
				StatusFound, StatusNotFound, status[0]), nil)
	}
}
