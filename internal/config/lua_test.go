package config

import (
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func parseString(t *testing.T, lua string) *Config {
	t.Helper()
	p, err := NewParser()
	if err != nil {
		t.Fatalf("NewParser() error = %v", err)
	}
	defer p.Close()

	cfg, err := p.Parse([]byte(lua))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	return cfg
}

func TestParseFullConfig(t *testing.T) {
	cfg := parseString(t, `
overlay.config = {
    counter_path = "/tmp/fps_counter",
    update_interval = 0.5,
    text_template = "frames: %d",
    font_size = 24,
    text_color = "#00ff00",
    floating = false,
    click_through = false,
    translucent = false,
}
`)

	if cfg.CounterPath != "/tmp/fps_counter" {
		t.Errorf("CounterPath = %q", cfg.CounterPath)
	}
	if cfg.UpdateInterval != 500*time.Millisecond {
		t.Errorf("UpdateInterval = %v, want 500ms", cfg.UpdateInterval)
	}
	if cfg.TextTemplate != "frames: %d" {
		t.Errorf("TextTemplate = %q", cfg.TextTemplate)
	}
	if cfg.FontSize != 24 {
		t.Errorf("FontSize = %v, want 24", cfg.FontSize)
	}
	if cfg.TextColor != (color.RGBA{G: 255, A: 255}) {
		t.Errorf("TextColor = %+v", cfg.TextColor)
	}
	if cfg.Floating || cfg.ClickThrough || cfg.Translucent {
		t.Error("window flags should all be false")
	}
}

func TestParseMissingKeysKeepDefaults(t *testing.T) {
	cfg := parseString(t, `overlay.config = { counter_path = "/tmp/fps" }`)

	def := DefaultConfig()
	if cfg.UpdateInterval != def.UpdateInterval {
		t.Errorf("UpdateInterval = %v, want default %v", cfg.UpdateInterval, def.UpdateInterval)
	}
	if cfg.TextTemplate != def.TextTemplate {
		t.Errorf("TextTemplate = %q, want default %q", cfg.TextTemplate, def.TextTemplate)
	}
	if cfg.FontSize != def.FontSize {
		t.Errorf("FontSize = %v, want default %v", cfg.FontSize, def.FontSize)
	}
}

func TestParseEmptyContentYieldsDefaults(t *testing.T) {
	cfg := parseString(t, ``)

	def := DefaultConfig()
	if cfg.UpdateInterval != def.UpdateInterval || cfg.TextTemplate != def.TextTemplate {
		t.Errorf("empty config diverged from defaults: %+v", cfg)
	}
}

func TestParseRemoteConfig(t *testing.T) {
	cfg := parseString(t, `
overlay.config = {
    remote_host = "render-box",
    remote_user = "metrics",
    remote_key_file = "/home/metrics/.ssh/id_ed25519",
    remote_counter_path = "/var/run/fps",
}
`)

	if !cfg.Remote.Enabled() {
		t.Fatal("Remote.Enabled() = false")
	}
	if cfg.Remote.Host != "render-box" || cfg.Remote.User != "metrics" {
		t.Errorf("Remote = %+v", cfg.Remote)
	}
}

func TestParseExpandsEnvInPaths(t *testing.T) {
	t.Setenv("FPS_TEST_RUN_DIR", "/run/game")

	cfg := parseString(t, `overlay.config = { counter_path = "${FPS_TEST_RUN_DIR}/fps" }`)

	if cfg.CounterPath != "/run/game/fps" {
		t.Errorf("CounterPath = %q, want %q", cfg.CounterPath, "/run/game/fps")
	}
}

func TestParseLuaComputedValues(t *testing.T) {
	cfg := parseString(t, `
local base = 2
overlay.config = {
    counter_path = "/tmp/fps",
    update_interval = base / 4,
}
`)

	if cfg.UpdateInterval != 500*time.Millisecond {
		t.Errorf("UpdateInterval = %v, want 500ms", cfg.UpdateInterval)
	}
}

func TestParseSyntaxError(t *testing.T) {
	p, err := NewParser()
	if err != nil {
		t.Fatalf("NewParser() error = %v", err)
	}
	defer p.Close()

	if _, err := p.Parse([]byte(`overlay.config = {`)); err == nil {
		t.Error("expected error for malformed Lua")
	}
}

func TestParseRuntimeError(t *testing.T) {
	p, err := NewParser()
	if err != nil {
		t.Fatalf("NewParser() error = %v", err)
	}
	defer p.Close()

	if _, err := p.Parse([]byte(`error("boom")`)); err == nil {
		t.Error("expected error from failing Lua chunk")
	}
}

func TestParseInvalidColor(t *testing.T) {
	p, err := NewParser()
	if err != nil {
		t.Fatalf("NewParser() error = %v", err)
	}
	defer p.Close()

	_, err = p.Parse([]byte(`overlay.config = { text_color = "chartreuse" }`))
	if err == nil || !strings.Contains(err.Error(), "text_color") {
		t.Errorf("Parse() error = %v, want text_color error", err)
	}
}

func TestParseRunawayScriptIsLimited(t *testing.T) {
	p, err := NewParser()
	if err != nil {
		t.Fatalf("NewParser() error = %v", err)
	}
	defer p.Close()

	if _, err := p.Parse([]byte(`while true do end`)); err == nil {
		t.Error("expected the CPU limit to abort an infinite loop")
	}
}

func TestParseFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "overlay.lua")
	content := `overlay.config = { counter_path = "/tmp/fps", font_size = 20 }`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	p, err := NewParser()
	if err != nil {
		t.Fatalf("NewParser() error = %v", err)
	}
	defer p.Close()

	cfg, err := p.ParseFile(path)
	if err != nil {
		t.Fatalf("ParseFile() error = %v", err)
	}
	if cfg.CounterPath != "/tmp/fps" || cfg.FontSize != 20 {
		t.Errorf("parsed config = %+v", cfg)
	}
}

func TestParseFileMissing(t *testing.T) {
	p, err := NewParser()
	if err != nil {
		t.Fatalf("NewParser() error = %v", err)
	}
	defer p.Close()

	if _, err := p.ParseFile(filepath.Join(t.TempDir(), "nope.lua")); err == nil {
		t.Error("expected error for missing config file")
	}
}

func TestParseReader(t *testing.T) {
	p, err := NewParser()
	if err != nil {
		t.Fatalf("NewParser() error = %v", err)
	}
	defer p.Close()

	cfg, err := p.ParseReader(strings.NewReader(`overlay.config = { counter_path = "/tmp/fps" }`))
	if err != nil {
		t.Fatalf("ParseReader() error = %v", err)
	}
	if cfg.CounterPath != "/tmp/fps" {
		t.Errorf("CounterPath = %q", cfg.CounterPath)
	}
}
