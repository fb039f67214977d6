// Package config loads and validates overlay configuration from Lua files,
// executed in a sandboxed runtime with resource limits.
package config

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"
	"time"
)

// Config holds the overlay configuration.
type Config struct {
	// CounterPath is the local counter file to sample. Ignored when Remote is
	// enabled.
	CounterPath string
	// UpdateInterval is the sampling period.
	UpdateInterval time.Duration
	// TextTemplate formats the sampled value. Must contain exactly one %d verb.
	TextTemplate string
	// FontSize is the overlay text size in points.
	FontSize float64
	// TextColor is the overlay text color.
	TextColor color.RGBA
	// Floating keeps the overlay above other windows.
	Floating bool
	// ClickThrough lets pointer events pass through the overlay.
	ClickThrough bool
	// Translucent renders the overlay background transparent.
	Translucent bool
	// Remote samples the counter over SSH instead of a local file.
	Remote RemoteConfig
}

// RemoteConfig describes an SSH-reachable counter file.
type RemoteConfig struct {
	Host        string
	User        string
	KeyFile     string
	CounterPath string
}

// Enabled reports whether remote sampling is configured.
func (r RemoteConfig) Enabled() bool {
	return r.Host != ""
}

// DefaultConfig returns the configuration used when the Lua file sets nothing.
func DefaultConfig() Config {
	return Config{
		UpdateInterval: time.Second,
		TextTemplate:   "FPS: %d",
		FontSize:       16,
		TextColor:      color.RGBA{R: 255, G: 255, B: 255, A: 255},
		Floating:       true,
		ClickThrough:   true,
		Translucent:    true,
	}
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	if c.Remote.Enabled() {
		if c.Remote.User == "" {
			return fmt.Errorf("remote_user is required when remote_host is set")
		}
		if c.Remote.KeyFile == "" {
			return fmt.Errorf("remote_key_file is required when remote_host is set")
		}
		if c.Remote.CounterPath == "" {
			return fmt.Errorf("remote_counter_path is required when remote_host is set")
		}
	} else if c.CounterPath == "" {
		return fmt.Errorf("counter_path is required")
	}

	if c.UpdateInterval <= 0 {
		return fmt.Errorf("update_interval must be positive, got %v", c.UpdateInterval)
	}
	if c.FontSize <= 0 {
		return fmt.Errorf("font_size must be positive, got %v", c.FontSize)
	}
	if err := validateTemplate(c.TextTemplate); err != nil {
		return err
	}
	return nil
}

// validateTemplate requires exactly one %d verb so Sprintf cannot misrender
// the sampled value.
func validateTemplate(template string) error {
	count := 0
	for i := 0; i < len(template)-1; i++ {
		if template[i] != '%' {
			continue
		}
		switch template[i+1] {
		case 'd':
			count++
			i++
		case '%':
			i++
		default:
			return fmt.Errorf("text_template contains unsupported verb %%%c", template[i+1])
		}
	}
	if count != 1 {
		return fmt.Errorf("text_template must contain exactly one %%d, got %d", count)
	}
	return nil
}

// parseColor parses a hex color string in RRGGBB or RRGGBBAA form, with an
// optional leading '#'.
func parseColor(s string) (color.RGBA, error) {
	hex := strings.TrimPrefix(s, "#")
	if len(hex) != 6 && len(hex) != 8 {
		return color.RGBA{}, fmt.Errorf("color %q must be RRGGBB or RRGGBBAA", s)
	}

	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("color %q is not valid hex: %v", s, err)
	}

	if len(hex) == 6 {
		return color.RGBA{
			R: uint8(v >> 16),
			G: uint8(v >> 8),
			B: uint8(v),
			A: 255,
		}, nil
	}
	return color.RGBA{
		R: uint8(v >> 24),
		G: uint8(v >> 16),
		B: uint8(v >> 8),
		A: uint8(v),
	}, nil
}
