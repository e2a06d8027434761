package audioprobe

import (
	"os"
	"path/filepath"
	"testing"
)

func TestProbeFallbackTitle(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "My Great Episode.wav")
	if err := os.WriteFile(path, []byte("audio"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	result, err := Probe(path)
	if err != nil {
		t.Fatalf("Probe: %v", err)
	}

	if result.Title != "My Great Episode" {
		t.Fatalf("expected title fallback to file stem, got %q", result.Title)
	}
	if result.Filename != "My Great Episode.wav" {
		t.Fatalf("unexpected filename %q", result.Filename)
	}
	if result.DurationSeconds != nil {
		t.Fatalf("expected nil duration for non-mp3")
	}
}

func TestProbeFileSize(t *testing.T) {
	dir := t.TempDir()
	content := []byte("some audio content here")
	path := filepath.Join(dir, "clip.wav")
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	result, err := Probe(path)
	if err != nil {
		t.Fatalf("Probe: %v", err)
	}
	if result.FileSizeBytes != int64(len(content)) {
		t.Fatalf("expected size %d, got %d", len(content), result.FileSizeBytes)
	}
}

func TestProbeInvalidMP3(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "broken.mp3")
	if err := os.WriteFile(path, []byte("not really an mp3"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	result, err := Probe(path)
	if err != nil {
		t.Fatalf("Probe unexpected error: %v", err)
	}
	if result.DurationSeconds != nil {
		t.Fatalf("expected nil duration on decode failure")
	}
}

func TestProbeMissingFile(t *testing.T) {
	if _, err := Probe(filepath.Join(t.TempDir(), "missing.mp3")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestReadTagsAndOptionalString(t *testing.T) {
	title, artist, album := readTags("/no/such/file.wav")
	if title != "" || artist != nil || album != nil {
		t.Fatalf("expected empty metadata on failure")
	}

	if optionalString("   ") != nil {
		t.Fatalf("expected nil for whitespace input")
	}

	value := optionalString("value")
	if value == nil || *value != "value" {
		t.Fatalf("expected pointer to trimmed value")
	}
}

func TestComputeMP3DurationErrors(t *testing.T) {
	if _, err := computeMP3Duration("/does/not/exist.mp3"); err == nil {
		t.Fatalf("expected error when file is missing")
	}

	dir := t.TempDir()
	path := filepath.Join(dir, "bad.mp3")
	if err := os.WriteFile(path, []byte("garbage"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	if _, err := computeMP3Duration(path); err == nil {
		t.Fatalf("expected decode error for invalid mp3 data")
	}
}
