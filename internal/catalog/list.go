package catalog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/h2non/filetype"
)

// sniffSize is enough header bytes for filetype to recognise every video format it knows
const sniffSize = 261

// ListEntry is one "id;path" line of a catalog list file
type ListEntry struct {
	ID   string
	Path string
}

// ReadList parses a semicolon separated list file with a header line
func ReadList(r io.Reader) ([]ListEntry, error) {
	cr := csv.NewReader(r)
	cr.Comma = ';'
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	var entries []ListEntry
	header := true
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read list: %w", err)
		}
		if header {
			header = false
			continue
		}
		if len(rec) < 2 || strings.TrimSpace(rec[0]) == "" || strings.TrimSpace(rec[1]) == "" {
			continue
		}
		entries = append(entries, ListEntry{ID: strings.TrimSpace(rec[0]), Path: strings.TrimSpace(rec[1])})
	}
	return entries, nil
}

// ReadListFile opens and parses a list file
func ReadListFile(name string) ([]ListEntry, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, fmt.Errorf("failed to open list %s: %w", name, err)
	}
	defer f.Close()
	return ReadList(f)
}

// ScanUploads lists the video files directly inside dir, sniffed by content
func ScanUploads(dir string) ([]ListEntry, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read uploads %s: %w", dir, err)
	}
	var out []ListEntry
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		ok, err := isVideo(filepath.Join(dir, e.Name()))
		if err != nil || !ok {
			continue
		}
		out = append(out, ListEntry{ID: e.Name(), Path: e.Name()})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func isVideo(name string) (bool, error) {
	f, err := os.Open(name)
	if err != nil {
		return false, err
	}
	defer f.Close()
	head := make([]byte, sniffSize)
	n, err := io.ReadFull(f, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) {
		return false, err
	}
	return filetype.IsVideo(head[:n]), nil
}

// TitleFromPath turns "dir/My_Movie.mp4" into "My Movie"
func TitleFromPath(p string) string {
	base := path.Base(filepath.ToSlash(p))
	base = strings.TrimSuffix(base, path.Ext(base))
	return strings.TrimSpace(strings.NewReplacer("_", " ", ".", " ").Replace(base))
}

// JoinURL appends a relative media path to a base URL
func JoinURL(base, p string) string {
	return strings.TrimSuffix(base, "/") + "/" + strings.TrimPrefix(p, "/")
}
