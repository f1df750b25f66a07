package config

import (
	"fmt"
	"net"
	"strconv"
	"time"
)

// Constants for protocol and runtime defaults
const (
	MinPort = 1024
	MaxPort = 64000

	// Transfer buffer for the exact-count copy loops
	ChunkSize = 64 * 1024 // 64KB

	// Socket buffer for the buffered reader/writer pair
	BufferSize = 64 * 1024 // 64KB

	// Network constants
	TCPBufferSize  = 1024 * 1024 // 1MB
	DialTimeout    = 15 * time.Second
	RequestTimeout = 30 * time.Second

	// Upper bound on concurrently serviced connections
	MaxSessions = 64

	// File system constants
	LogDirPerms = 0755
)

// Config holds all configuration parameters for the application
type Config struct {
	// Server mode settings
	IsServer      bool
	Port          int
	ListenAddress string

	// Client mode settings
	ServerHost    string
	ServerAddress string
	Filename      string

	// Common parameters
	ChunkSize    int
	BufferSize   int
	Timeout      time.Duration
	ShowProgress bool
	MaxSessions  int
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Port < MinPort || c.Port > MaxPort {
		return fmt.Errorf("port must be between %d and %d (inclusive)", MinPort, MaxPort)
	}
	if c.ChunkSize <= 0 {
		return fmt.Errorf("chunk size must be positive")
	}
	if c.BufferSize <= 0 {
		return fmt.Errorf("buffer size must be positive")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.IsServer {
		if c.MaxSessions <= 0 {
			return fmt.Errorf("session limit must be positive")
		}
	} else {
		if c.ServerHost == "" {
			return fmt.Errorf("server address is required in client mode")
		}
		if c.Filename == "" {
			return fmt.Errorf("filename is required in client mode")
		}
	}
	return nil
}

// ParseServerArgs builds a server configuration from the positional
// command line arguments: <port>.
func ParseServerArgs(args []string) (*Config, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("usage: server <port>")
	}

	port, err := parsePort(args[0])
	if err != nil {
		return nil, err
	}

	config := &Config{
		IsServer:      true,
		Port:          port,
		ListenAddress: net.JoinHostPort("", strconv.Itoa(port)),
		ChunkSize:     ChunkSize,
		BufferSize:    BufferSize,
		Timeout:       RequestTimeout,
		MaxSessions:   MaxSessions,
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// ParseClientArgs builds a client configuration from the positional
// command line arguments: <ip_address> <port> <filename>.
func ParseClientArgs(args []string) (*Config, error) {
	if len(args) != 3 {
		return nil, fmt.Errorf("usage: client <ip_address> <port> <filename>")
	}

	host := args[0]
	if host == "" {
		return nil, fmt.Errorf("invalid IP address or domain name")
	}

	port, err := parsePort(args[1])
	if err != nil {
		return nil, err
	}

	config := &Config{
		IsServer:      false,
		Port:          port,
		ServerHost:    host,
		ServerAddress: net.JoinHostPort(host, strconv.Itoa(port)),
		Filename:      args[2],
		ChunkSize:     ChunkSize,
		BufferSize:    BufferSize,
		Timeout:       RequestTimeout,
		ShowProgress:  true,
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// parsePort converts a port argument and enforces the allowed range.
func parsePort(arg string) (int, error) {
	port, err := strconv.Atoi(arg)
	if err != nil {
		return 0, fmt.Errorf("port must be an integer, got %q", arg)
	}
	if port < MinPort || port > MaxPort {
		return 0, fmt.Errorf("port must be between %d and %d (inclusive)", MinPort, MaxPort)
	}
	return port, nil
}

// String returns a string representation of the config for logging
func (c *Config) String() string {
	mode := "Client"
	if c.IsServer {
		mode = "Server"
	}

	return fmt.Sprintf("Config{Mode: %s, Port: %d, ChunkSize: %d, BufferSize: %d}",
		mode, c.Port, c.ChunkSize, c.BufferSize)
}
