package client

import (
	"net"
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/dillonpike/COSC264-File-Server/internal/config"
	"github.com/dillonpike/COSC264-File-Server/internal/errors"
	"github.com/dillonpike/COSC264-File-Server/internal/protocol"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chdir switches the working directory for one test so downloaded files
// land in a fresh location.
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(old) })
}

func clientConfig(addr, filename string) *config.Config {
	host, portStr, _ := net.SplitHostPort(addr)
	port, _ := strconv.Atoi(portStr)
	return &config.Config{
		Port:          port,
		ServerHost:    host,
		ServerAddress: addr,
		Filename:      filename,
		ChunkSize:     config.ChunkSize,
		BufferSize:    config.BufferSize,
		Timeout:       2 * time.Second,
	}
}

// fakeServer accepts one connection on loopback and hands it to handle.
func fakeServer(t *testing.T, handle func(conn net.Conn)) string {
	t.Helper()
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go func() {
		conn, err := listener.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		handle(conn)
	}()
	t.Cleanup(func() { listener.Close() })
	return listener.Addr().String()
}

func patternedData(n int) []byte {
	data := make([]byte, n)
	for i := range data {
		data[i] = byte(i * 13)
	}
	return data
}

func TestRunDownloadsFile(t *testing.T) {
	chdir(t, t.TempDir())
	content := patternedData(50000)

	addr := fakeServer(t, func(conn net.Conn) {
		filename, err := protocol.ReadRequest(conn)
		assert.NoError(t, err)
		assert.Equal(t, "remote.bin", filename)

		conn.Write(protocol.EncodeFoundHeader(uint32(len(content))))
		conn.Write(content)
	})

	err := Run(clientConfig(addr, "remote.bin"))
	require.NoError(t, err)

	data, err := os.ReadFile("remote.bin")
	require.NoError(t, err)
	assert.Equal(t, content, data)
}

func TestRunNotFound(t *testing.T) {
	chdir(t, t.TempDir())

	addr := fakeServer(t, func(conn net.Conn) {
		_, err := protocol.ReadRequest(conn)
		assert.NoError(t, err)
		conn.Write(protocol.EncodeNotFoundHeader())
	})

	err := Run(clientConfig(addr, "missing.bin"))
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrFileSystem)
	assert.NoFileExists(t, "missing.bin")
}

func TestRunRefusesExistingDestination(t *testing.T) {
	chdir(t, t.TempDir())
	require.NoError(t, os.WriteFile("already.bin", []byte("local"), 0644))

	// The refusal happens before any connection attempt.
	err := Run(clientConfig("127.0.0.1:1", "already.bin"))
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrValidation)

	data, err := os.ReadFile("already.bin")
	require.NoError(t, err)
	assert.Equal(t, []byte("local"), data)
}

func TestRunConnectionError(t *testing.T) {
	chdir(t, t.TempDir())

	// Grab a port that nothing is listening on.
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := listener.Addr().String()
	require.NoError(t, listener.Close())

	err = Run(clientConfig(addr, "unreachable.bin"))
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrNetwork)
	assert.NoFileExists(t, "unreachable.bin")
}

func TestRunMalformedResponse(t *testing.T) {
	chdir(t, t.TempDir())

	addr := fakeServer(t, func(conn net.Conn) {
		_, err := protocol.ReadRequest(conn)
		assert.NoError(t, err)
		conn.Write([]byte{0x07})
	})

	err := Run(clientConfig(addr, "garbled.bin"))
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrProtocol)
	assert.NoFileExists(t, "garbled.bin")
}

func TestRunTruncatedBodyRemovesPartialFile(t *testing.T) {
	chdir(t, t.TempDir())

	addr := fakeServer(t, func(conn net.Conn) {
		_, err := protocol.ReadRequest(conn)
		assert.NoError(t, err)

		// Declare 1000 bytes but deliver only 100 before closing.
		conn.Write(protocol.EncodeFoundHeader(1000))
		conn.Write(patternedData(100))
	})

	err := Run(clientConfig(addr, "truncated.bin"))
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrTransfer)
	assert.NoFileExists(t, "truncated.bin")
}
