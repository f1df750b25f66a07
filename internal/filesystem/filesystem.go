package filesystem

import (
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/dillonpike/COSC264-File-Server/internal/config"
	"github.com/dillonpike/COSC264-File-Server/internal/errors"
)

// ValidateFilePath checks if a file path is safe and valid
func ValidateFilePath(path string) error {
	cleanPath := filepath.Clean(path)

	// Check for directory traversal attempts
	if strings.Contains(cleanPath, "..") {
		return errors.NewValidationError("file_path", path, "path contains directory traversal")
	}

	return nil
}

// OpenServedFile resolves a requested filename against the server's working
// directory and opens it for reading. Requests that escape the directory,
// name a directory, or name a file too large for the 4-byte length field
// are rejected; callers answer all rejections with a not-found reply.
func OpenServedFile(name string) (*os.File, int64, error) {
	if err := ValidateFilePath(name); err != nil {
		return nil, 0, err
	}

	cleanPath := filepath.Clean(name)
	if filepath.IsAbs(cleanPath) {
		return nil, 0, errors.NewValidationError("file_path", name, "absolute paths are not served")
	}

	stat, err := os.Stat(cleanPath)
	if err != nil {
		return nil, 0, errors.NewFileSystemError("stat", cleanPath, err)
	}
	if stat.IsDir() {
		return nil, 0, errors.NewValidationError("file_path", name, "directories are not served")
	}
	if stat.Size() > math.MaxUint32 {
		return nil, 0, errors.NewValidationError("file_size", stat.Size(),
			"file too large for the response length field")
	}

	file, err := os.Open(cleanPath)
	if err != nil {
		return nil, 0, errors.NewFileSystemError("open", cleanPath, err)
	}

	return file, stat.Size(), nil
}

// CreateDestination creates the client's output file. Creation is
// exclusive: an existing readable file at the path is never overwritten.
func CreateDestination(path string) (*os.File, error) {
	if err := ValidateFilePath(path); err != nil {
		return nil, err
	}

	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return nil, errors.NewFileSystemError("create", path, err)
	}

	return file, nil
}

// RemoveIncomplete deletes a partially written destination file after a
// failed transfer so the partial output is never mistaken for the real file.
func RemoveIncomplete(path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		slog.Warn("Failed to remove incomplete file", "path", path, "error", err)
	}
}

// EnsureDirectoryExists creates a directory if it doesn't exist
func EnsureDirectoryExists(dir string) error {
	if err := ValidateFilePath(dir); err != nil {
		return err
	}

	if err := os.MkdirAll(dir, config.LogDirPerms); err != nil {
		return errors.NewFileSystemError("mkdir", dir, err)
	}

	return nil
}
