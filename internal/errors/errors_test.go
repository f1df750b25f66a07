package errors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidationError(t *testing.T) {
	field := "test_field"
	value := "test_value"
	reason := "invalid format"

	err := NewValidationError(field, value, reason)

	assert.Error(t, err)
	assert.Contains(t, err.Error(), field)
	assert.Contains(t, err.Error(), value)
	assert.Contains(t, err.Error(), reason)
	assert.Contains(t, err.Error(), "validation error")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestNetworkError(t *testing.T) {
	operation := "connect"
	address := "localhost:8000"
	cause := errors.New("connection refused")

	err := NewNetworkError(operation, address, cause)

	assert.Error(t, err)
	assert.Contains(t, err.Error(), operation)
	assert.Contains(t, err.Error(), address)
	assert.Contains(t, err.Error(), cause.Error())
	assert.Contains(t, err.Error(), "network error")
	assert.ErrorIs(t, err, ErrNetwork)
	assert.ErrorIs(t, err, cause)
}

func TestFileSystemError(t *testing.T) {
	operation := "read"
	path := "/test/file.txt"
	cause := errors.New("file not found")

	err := NewFileSystemError(operation, path, cause)

	assert.Error(t, err)
	assert.Contains(t, err.Error(), operation)
	assert.Contains(t, err.Error(), path)
	assert.Contains(t, err.Error(), cause.Error())
	assert.Contains(t, err.Error(), "file system error")
	assert.ErrorIs(t, err, ErrFileSystem)
}

func TestProtocolError(t *testing.T) {
	operation := "read_request"
	message := "invalid length field"
	cause := errors.New("unexpected EOF")

	err := NewProtocolError(operation, message, cause)

	assert.Error(t, err)
	assert.Contains(t, err.Error(), operation)
	assert.Contains(t, err.Error(), message)
	assert.Contains(t, err.Error(), cause.Error())
	assert.Contains(t, err.Error(), "protocol error")
	assert.ErrorIs(t, err, ErrProtocol)
}

func TestProtocolError_NoCause(t *testing.T) {
	err := NewProtocolError("read_response", "unknown status byte", nil)

	assert.Contains(t, err.Error(), "unknown status byte")
	assert.ErrorIs(t, err, ErrProtocol)
}

func TestTransferError(t *testing.T) {
	cause := errors.New("connection reset")

	err := NewTransferError("receive", 1000, 250, cause)

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "receive")
	assert.Contains(t, err.Error(), "250 of 1000")
	assert.Contains(t, err.Error(), cause.Error())
	assert.Contains(t, err.Error(), "transfer error")
	assert.ErrorIs(t, err, ErrTransfer)

	var transferErr *TransferError
	assert.ErrorAs(t, err, &transferErr)
	assert.EqualValues(t, 1000, transferErr.Expected)
	assert.EqualValues(t, 250, transferErr.Actual)
}
