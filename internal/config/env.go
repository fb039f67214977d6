package config

import (
	"os"
	"regexp"
	"strings"
)

// envVarPattern matches ${VAR}, ${VAR:-default} and $VAR references in
// configuration values.
var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}|\$([a-zA-Z_][a-zA-Z0-9_]*)`)

// ExpandEnv expands environment variable references in a string. Supported
// forms are ${VAR}, ${VAR:-default} and $VAR; unset variables without a
// default expand to the empty string.
func ExpandEnv(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		if strings.HasPrefix(match, "${") && strings.HasSuffix(match, "}") {
			inner := match[2 : len(match)-1]
			if idx := strings.Index(inner, ":-"); idx >= 0 {
				if val := os.Getenv(inner[:idx]); val != "" {
					return val
				}
				return inner[idx+2:]
			}
			return os.Getenv(inner)
		}
		return os.Getenv(match[1:])
	})
}

// expandEnvConfig expands environment references in the path-like fields of
// cfg in place. The text template is left untouched: it may legitimately
// contain a literal dollar sign.
func expandEnvConfig(cfg *Config) {
	if cfg == nil {
		return
	}
	cfg.CounterPath = ExpandEnv(cfg.CounterPath)
	cfg.Remote.Host = ExpandEnv(cfg.Remote.Host)
	cfg.Remote.User = ExpandEnv(cfg.Remote.User)
	cfg.Remote.KeyFile = ExpandEnv(cfg.Remote.KeyFile)
	cfg.Remote.CounterPath = ExpandEnv(cfg.Remote.CounterPath)
}
