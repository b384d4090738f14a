package platform

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// File permissions
const (
	DefaultDirPermissions = 0755
)

// HLS output names
const (
	PlaylistExtension = ".m3u8"
	SegmentExtension  = ".ts"
)

// CreateDirectoryIfNotExists creates directory if it doesn't exist
func CreateDirectoryIfNotExists(dirPath string) error {
	if _, err := os.Stat(dirPath); os.IsNotExist(err) {
		return os.MkdirAll(dirPath, DefaultDirPermissions)
	}
	return nil
}

// FileExists reports whether path names an existing regular file
func FileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// CountFiles counts the regular files in dir whose name ends with suffix
func CountFiles(dir, suffix string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to read directory %s: %w", dir, err)
	}
	n := 0
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), suffix) {
			n++
		}
	}
	return n, nil
}

// CountStreams counts the HLS playlists currently published in dir
func CountStreams(dir string) (int, error) {
	return CountFiles(dir, PlaylistExtension)
}

// SegmentPath returns the path of the n-th HLS segment for a stream id
func SegmentPath(dir, id string, n int) string {
	return filepath.Join(dir, fmt.Sprintf("%s-%d%s", id, n, SegmentExtension))
}
