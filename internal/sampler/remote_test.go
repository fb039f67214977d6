package sampler

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestDialSSHSourceMissingKeyFile(t *testing.T) {
	_, err := DialSSHSource(SSHSourceConfig{
		Host:        "localhost",
		User:        "metrics",
		KeyFile:     filepath.Join(t.TempDir(), "no-such-key"),
		CounterPath: "/tmp/fps",
	})
	if err == nil {
		t.Fatal("expected error for missing key file")
	}
	if !errors.Is(err, ErrResourceUnavailable) {
		t.Errorf("error = %v, want ErrResourceUnavailable", err)
	}
}

func TestDialSSHSourceInvalidKey(t *testing.T) {
	keyPath := filepath.Join(t.TempDir(), "id_bad")
	if err := os.WriteFile(keyPath, []byte("not a private key"), 0o600); err != nil {
		t.Fatalf("failed to write key file: %v", err)
	}

	_, err := DialSSHSource(SSHSourceConfig{
		Host:        "localhost",
		User:        "metrics",
		KeyFile:     keyPath,
		CounterPath: "/tmp/fps",
	})
	if err == nil {
		t.Fatal("expected error for malformed key")
	}
	if !errors.Is(err, ErrResourceUnavailable) {
		t.Errorf("error = %v, want ErrResourceUnavailable", err)
	}
}

func TestShellQuote(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"/tmp/fps", "'/tmp/fps'"},
		{"/tmp/with space", "'/tmp/with space'"},
		{"/tmp/it's", `'/tmp/it'\''s'`},
	}

	for _, tt := range tests {
		if got := shellQuote(tt.input); got != tt.want {
			t.Errorf("shellQuote(%q) = %s, want %s", tt.input, got, tt.want)
		}
	}
}
