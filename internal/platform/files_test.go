package platform

import (
	"os"
	"path/filepath"
	"testing"
)

func TestCreateDirectoryIfNotExists(t *testing.T) {
	testDir := filepath.Join(t.TempDir(), "hls", "live")

	if err := CreateDirectoryIfNotExists(testDir); err != nil {
		t.Fatalf("Failed to create directory: %v", err)
	}
	if _, err := os.Stat(testDir); os.IsNotExist(err) {
		t.Fatalf("Directory was not created: %s", testDir)
	}
	if err := CreateDirectoryIfNotExists(testDir); err != nil {
		t.Fatalf("Failed to handle existing directory: %v", err)
	}
}

func TestCountStreams(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.m3u8", "b.m3u8", "a-0.ts", "a-1.ts", "notes.txt"} {
		if err := os.WriteFile(filepath.Join(dir, name), nil, 0644); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "c.m3u8"), 0755); err != nil {
		t.Fatal(err)
	}

	n, err := CountStreams(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 2 {
		t.Errorf("expected 2 streams, got %d", n)
	}

	n, err = CountStreams(filepath.Join(dir, "missing"))
	if err != nil || n != 0 {
		t.Errorf("expected 0 and no error for missing dir, got %d, %v", n, err)
	}
}

func TestSegmentPathAndFileExists(t *testing.T) {
	dir := t.TempDir()
	p := SegmentPath(dir, "vid", 3)
	if filepath.Base(p) != "vid-3.ts" {
		t.Errorf("expected vid-3.ts, got %s", filepath.Base(p))
	}
	if FileExists(p) {
		t.Error("expected segment to be missing")
	}
	if err := os.WriteFile(p, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	if !FileExists(p) {
		t.Error("expected segment to exist")
	}
	if FileExists(dir) {
		t.Error("expected directory not to count as file")
	}
}
