package sampler

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

// writeCounterFile creates a counter file in a temp dir with the given content.
func writeCounterFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fps_counter")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to create counter file: %v", err)
	}
	return path
}

func TestOpenFileSourceMissingFile(t *testing.T) {
	_, err := OpenFileSource(filepath.Join(t.TempDir(), "does-not-exist"))
	if err == nil {
		t.Fatal("expected error opening missing counter file")
	}
	if !errors.Is(err, ErrResourceUnavailable) {
		t.Errorf("error = %v, want ErrResourceUnavailable", err)
	}
}

func TestFileSourceProbe(t *testing.T) {
	path := writeCounterFile(t, "60\n")

	src, err := OpenFileSource(path)
	if err != nil {
		t.Fatalf("OpenFileSource() error = %v", err)
	}
	defer src.Close()

	raw, err := src.Probe()
	if err != nil {
		t.Fatalf("Probe() error = %v", err)
	}
	if raw != "60\n" {
		t.Errorf("Probe() = %q, want %q", raw, "60\n")
	}
}

func TestFileSourceProbeSeesRewrittenContent(t *testing.T) {
	path := writeCounterFile(t, "60")

	src, err := OpenFileSource(path)
	if err != nil {
		t.Fatalf("OpenFileSource() error = %v", err)
	}
	defer src.Close()

	if _, err := src.Probe(); err != nil {
		t.Fatalf("first Probe() error = %v", err)
	}

	// The producer rewrites the file in place between probes.
	if err := os.WriteFile(path, []byte("31"), 0o644); err != nil {
		t.Fatalf("failed to rewrite counter file: %v", err)
	}

	raw, err := src.Probe()
	if err != nil {
		t.Fatalf("second Probe() error = %v", err)
	}
	if raw != "31" {
		t.Errorf("Probe() after rewrite = %q, want %q", raw, "31")
	}
}

func TestFileSourceProbeEmptyFile(t *testing.T) {
	path := writeCounterFile(t, "")

	src, err := OpenFileSource(path)
	if err != nil {
		t.Fatalf("OpenFileSource() error = %v", err)
	}
	defer src.Close()

	raw, err := src.Probe()
	if err != nil {
		t.Fatalf("Probe() error = %v", err)
	}
	if raw != "" {
		t.Errorf("Probe() = %q, want empty", raw)
	}
}

func TestFileSourceCloseIdempotent(t *testing.T) {
	src, err := OpenFileSource(writeCounterFile(t, "1"))
	if err != nil {
		t.Fatalf("OpenFileSource() error = %v", err)
	}

	if err := src.Close(); err != nil {
		t.Errorf("first Close() error = %v", err)
	}
	if err := src.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}

	if _, err := src.Probe(); err == nil {
		t.Error("Probe() after Close should fail")
	}
}

func TestFileSourcePath(t *testing.T) {
	path := writeCounterFile(t, "1")
	src, err := OpenFileSource(path)
	if err != nil {
		t.Fatalf("OpenFileSource() error = %v", err)
	}
	defer src.Close()

	if src.Path() != path {
		t.Errorf("Path() = %q, want %q", src.Path(), path)
	}
}
