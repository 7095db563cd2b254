// Package fsutil reads source files and writes generated ones without ever
// leaving a partially written file behind.
package fsutil

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/cespare/xxhash/v2"
)

// MaxFileSize bounds what ReadFile accepts. Larger inputs are almost
// certainly not hand-written Sage.
const MaxFileSize = 16 << 20

// Sentinel errors for error categorization via errors.Is.
var (
	// ErrNotFound indicates the file does not exist.
	ErrNotFound = errors.New("file not found")

	// ErrPermissionDenied indicates a permission error.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrIsDirectory indicates the path is a directory, not a file.
	ErrIsDirectory = errors.New("path is a directory")

	// ErrTooLarge indicates the file exceeds MaxFileSize.
	ErrTooLarge = errors.New("file too large")
)

// FileInfo captures the state of a file when it was read.
type FileInfo struct {
	Path string
	Mode os.FileMode
	Size int64

	// Hash is the xxhash of the content.
	Hash uint64
}

// ReadFile reads a regular file and returns its content with metadata.
func ReadFile(ctx context.Context, path string) ([]byte, *FileInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, fmt.Errorf("read file: %w", err)
	}

	stat, err := os.Stat(path)
	if err != nil {
		return nil, nil, categorize(path, err)
	}
	if stat.IsDir() {
		return nil, nil, fmt.Errorf("%w: %s", ErrIsDirectory, path)
	}
	if stat.Size() > MaxFileSize {
		return nil, nil, fmt.Errorf("%w: %s is %d bytes", ErrTooLarge, path, stat.Size())
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, categorize(path, err)
	}

	return content, &FileInfo{
		Path: path,
		Mode: stat.Mode(),
		Size: int64(len(content)),
		Hash: xxhash.Sum64(content),
	}, nil
}

func categorize(path string, err error) error {
	switch {
	case errors.Is(err, os.ErrNotExist):
		return fmt.Errorf("%w: %s: %w", ErrNotFound, path, err)
	case errors.Is(err, os.ErrPermission):
		return fmt.Errorf("%w: %s: %w", ErrPermissionDenied, path, err)
	default:
		return fmt.Errorf("read %s: %w", path, err)
	}
}
