package fpsmeter

import (
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"
)

func TestConfigWatcherTriggersReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "overlay.lua")
	if err := os.WriteFile(path, []byte("-- v1"), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	var reloads atomic.Int32
	cw, err := newConfigWatcher(path, 10*time.Millisecond, func() error {
		reloads.Add(1)
		return nil
	}, nil)
	if err != nil {
		t.Fatalf("newConfigWatcher() error = %v", err)
	}
	cw.Start()
	defer cw.Stop()

	if err := os.WriteFile(path, []byte("-- v2"), 0o644); err != nil {
		t.Fatalf("failed to rewrite config: %v", err)
	}

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if reloads.Load() > 0 {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("watcher never triggered a reload")
}

func TestConfigWatcherIgnoresSiblingFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "overlay.lua")
	if err := os.WriteFile(path, []byte("-- config"), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	var reloads atomic.Int32
	cw, err := newConfigWatcher(path, 10*time.Millisecond, func() error {
		reloads.Add(1)
		return nil
	}, nil)
	if err != nil {
		t.Fatalf("newConfigWatcher() error = %v", err)
	}
	cw.Start()
	defer cw.Stop()

	if err := os.WriteFile(filepath.Join(dir, "other.txt"), []byte("x"), 0o644); err != nil {
		t.Fatalf("failed to write sibling: %v", err)
	}

	time.Sleep(100 * time.Millisecond)
	if got := reloads.Load(); got != 0 {
		t.Errorf("sibling file change triggered %d reloads", got)
	}
}

func TestConfigWatcherDebouncesBursts(t *testing.T) {
	path := filepath.Join(t.TempDir(), "overlay.lua")
	if err := os.WriteFile(path, []byte("-- v0"), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	var reloads atomic.Int32
	cw, err := newConfigWatcher(path, 50*time.Millisecond, func() error {
		reloads.Add(1)
		return nil
	}, nil)
	if err != nil {
		t.Fatalf("newConfigWatcher() error = %v", err)
	}
	cw.Start()
	defer cw.Stop()

	// A burst of writes inside one debounce window collapses to one reload.
	for i := 0; i < 5; i++ {
		if err := os.WriteFile(path, []byte("-- burst"), 0o644); err != nil {
			t.Fatalf("failed to rewrite config: %v", err)
		}
		time.Sleep(5 * time.Millisecond)
	}

	time.Sleep(300 * time.Millisecond)
	if got := reloads.Load(); got != 1 {
		t.Errorf("burst produced %d reloads, want 1", got)
	}
}

func TestConfigWatcherStopIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "overlay.lua")
	if err := os.WriteFile(path, []byte("-- config"), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cw, err := newConfigWatcher(path, 0, func() error { return nil }, nil)
	if err != nil {
		t.Fatalf("newConfigWatcher() error = %v", err)
	}
	cw.Start()
	cw.Stop()
	cw.Stop()
}

func TestConfigWatcherMissingDirFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "overlay.lua")
	if _, err := newConfigWatcher(path, 0, func() error { return nil }, nil); err == nil {
		t.Error("expected error watching a missing directory")
	}
}
