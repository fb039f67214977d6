package config

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/arnodel/golua/lib"
	rt "github.com/arnodel/golua/runtime"
)

// Lua execution resource limits. A configuration file is a few table
// assignments; anything needing more than this is misbehaving.
const (
	luaCPULimit    = 10_000_000
	luaMemoryLimit = 50 * 1024 * 1024
)

// Parser parses Lua configuration files. The file is executed in a sandboxed
// Golua runtime under CPU and memory limits and the result is read from the
// overlay.config table:
//
//	overlay.config = {
//	    counter_path = "/sys/class/drm/card0/fps",
//	    update_interval = 1.0,
//	    text_template = "FPS: %d",
//	}
type Parser struct {
	runtime *rt.Runtime
	cleanup func()
	mu      sync.Mutex
}

// NewParser creates a Parser with a fresh Lua runtime.
func NewParser() (*Parser, error) {
	runtime := rt.New(io.Discard)
	cleanup := lib.LoadAll(runtime)
	return &Parser{
		runtime: runtime,
		cleanup: cleanup,
	}, nil
}

// ParseFile reads and parses the configuration file at path.
func (p *Parser) ParseFile(path string) (*Config, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	return p.Parse(content)
}

// ParseReader parses configuration content from r.
func (p *Parser) ParseReader(r io.Reader) (*Config, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	return p.Parse(content)
}

// Parse executes the Lua content and extracts the configuration. Missing keys
// keep their defaults; environment references in path values are expanded.
func (p *Parser) Parse(content []byte) (cfg *Config, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	// Golua panics when a resource limit is exceeded; surface that as a
	// parse error.
	defer func() {
		if r := recover(); r != nil {
			cfg = nil
			err = fmt.Errorf("Lua configuration exceeded resource limits: %v", r)
		}
	}()

	p.initOverlayGlobal()

	closure, err := p.runtime.CompileAndLoadLuaChunk(
		"config",
		content,
		rt.TableValue(p.runtime.GlobalEnv()),
	)
	if err != nil {
		return nil, fmt.Errorf("compiling Lua configuration: %w", err)
	}

	ctx := rt.RuntimeContextDef{
		HardLimits: rt.RuntimeResources{
			Cpu:    luaCPULimit,
			Memory: luaMemoryLimit,
		},
	}
	p.runtime.PushContext(ctx)
	defer p.runtime.PopContext()

	thread := p.runtime.MainThread()
	if _, err := rt.Call1(thread, rt.FunctionValue(closure)); err != nil {
		return nil, fmt.Errorf("executing Lua configuration: %w", err)
	}

	cfg, err = p.extractConfig()
	if err != nil {
		return nil, err
	}
	expandEnvConfig(cfg)
	return cfg, nil
}

// Close releases the parser's Lua runtime.
func (p *Parser) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.cleanup != nil {
		p.cleanup()
		p.cleanup = nil
	}
	return nil
}

// initOverlayGlobal seeds the overlay global with an empty config table.
func (p *Parser) initOverlayGlobal() {
	overlayTable := rt.NewTable()
	overlayTable.Set(rt.StringValue("config"), rt.TableValue(rt.NewTable()))
	p.runtime.GlobalEnv().Set(rt.StringValue("overlay"), rt.TableValue(overlayTable))
}

// extractConfig reads the overlay.config table into a Config.
func (p *Parser) extractConfig() (*Config, error) {
	cfg := DefaultConfig()

	overlayVal := p.runtime.GlobalEnv().Get(rt.StringValue("overlay"))
	if overlayVal == rt.NilValue {
		return &cfg, nil
	}
	overlayTable, ok := overlayVal.TryTable()
	if !ok {
		return nil, fmt.Errorf("overlay is not a table")
	}

	configVal := overlayTable.Get(rt.StringValue("config"))
	table, ok := configVal.TryTable()
	if !ok {
		return &cfg, nil
	}

	if val := getTableString(table, "counter_path"); val != nil {
		cfg.CounterPath = *val
	}
	if val := getTableFloat(table, "update_interval"); val != nil {
		cfg.UpdateInterval = time.Duration(*val * float64(time.Second))
	}
	if val := getTableString(table, "text_template"); val != nil {
		cfg.TextTemplate = *val
	}
	if val := getTableFloat(table, "font_size"); val != nil {
		cfg.FontSize = *val
	}
	if val := getTableString(table, "text_color"); val != nil {
		c, err := parseColor(*val)
		if err != nil {
			return nil, fmt.Errorf("invalid text_color: %w", err)
		}
		cfg.TextColor = c
	}
	if val := getTableBool(table, "floating"); val != nil {
		cfg.Floating = *val
	}
	if val := getTableBool(table, "click_through"); val != nil {
		cfg.ClickThrough = *val
	}
	if val := getTableBool(table, "translucent"); val != nil {
		cfg.Translucent = *val
	}

	if val := getTableString(table, "remote_host"); val != nil {
		cfg.Remote.Host = *val
	}
	if val := getTableString(table, "remote_user"); val != nil {
		cfg.Remote.User = *val
	}
	if val := getTableString(table, "remote_key_file"); val != nil {
		cfg.Remote.KeyFile = *val
	}
	if val := getTableString(table, "remote_counter_path"); val != nil {
		cfg.Remote.CounterPath = *val
	}

	return &cfg, nil
}

// getTableString retrieves a string value from a Lua table, or nil if the key
// is absent or not a string.
func getTableString(table *rt.Table, key string) *string {
	val := table.Get(rt.StringValue(key))
	if val == rt.NilValue {
		return nil
	}
	if s, ok := val.TryString(); ok {
		return &s
	}
	return nil
}

// getTableBool retrieves a boolean value from a Lua table, or nil if the key
// is absent or not a boolean.
func getTableBool(table *rt.Table, key string) *bool {
	val := table.Get(rt.StringValue(key))
	if val == rt.NilValue {
		return nil
	}
	if b, ok := val.TryBool(); ok {
		return &b
	}
	return nil
}

// getTableFloat retrieves a numeric value from a Lua table, or nil if the key
// is absent or not a number.
func getTableFloat(table *rt.Table, key string) *float64 {
	val := table.Get(rt.StringValue(key))
	if val == rt.NilValue {
		return nil
	}
	if n, ok := val.TryFloat(); ok {
		return &n
	}
	if n, ok := val.TryInt(); ok {
		f := float64(n)
		return &f
	}
	return nil
}
