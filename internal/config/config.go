package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	yamlv3 "gopkg.in/yaml.v3"
)

// Load reads configuration from the given YAML file, then overlays
// environment variable overrides (RUDUD_*). Nested keys use a double
// underscore: RUDUD_SERVER__PORT overrides server.port.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	// Start from defaults.
	cfg := DefaultConfig()

	// Load YAML file if it exists.
	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("accessing config %s: %w", path, err)
	}

	if err := k.Load(env.Provider("RUDUD_", ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, "RUDUD_")), "__", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("loading env overrides: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	return cfg, nil
}

// Save writes the configuration to the given YAML file path.
func (c *Config) Save(path string) error {
	data, err := yamlv3.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// validProviders is the set of recognized provider names.
var validProviders = map[string]bool{
	"openai":     true,
	"anthropic":  true,
	"google":     true,
	"openrouter": true,
}

// validLogLevels matches what logrus.ParseLevel accepts.
var validLogLevels = map[string]bool{
	"panic": true, "fatal": true, "error": true,
	"warn": true, "info": true, "debug": true, "trace": true,
}

// Validate checks that the configuration contains valid values.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}

	if c.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}

	if c.Redis.Enabled && c.Redis.Addr == "" {
		return fmt.Errorf("redis.addr is required when redis is enabled")
	}

	if len(c.Providers) == 0 {
		return fmt.Errorf("at least one provider is required")
	}
	for i, p := range c.Providers {
		if !validProviders[p.Name] {
			return fmt.Errorf("invalid provider %q: must be one of openai, anthropic, google, openrouter", p.Name)
		}
		if p.Model == "" {
			return fmt.Errorf("providers[%d]: model is required", i)
		}
		if p.RPM < 0 {
			return fmt.Errorf("providers[%d]: rpm must be non-negative", i)
		}
	}

	if c.Router.AttemptTimeoutSeconds < 0 {
		return fmt.Errorf("router.attempt_timeout_seconds must be non-negative")
	}
	if c.Signals.BranchTimeoutSeconds < 0 {
		return fmt.Errorf("signals.branch_timeout_seconds must be non-negative")
	}

	if c.Knowledge.TopK < 1 {
		return fmt.Errorf("knowledge.top_k must be at least 1")
	}
	if c.Knowledge.MinSimilarity < 0 || c.Knowledge.MinSimilarity > 1 {
		return fmt.Errorf("knowledge.min_similarity must be within [0, 1]")
	}
	if c.Knowledge.CacheTTLMinutes < 0 {
		return fmt.Errorf("knowledge.cache_ttl_minutes must be non-negative")
	}

	if c.Log.Level != "" && !validLogLevels[c.Log.Level] {
		return fmt.Errorf("invalid log.level %q", c.Log.Level)
	}
	if c.Log.Format != "" && c.Log.Format != "text" && c.Log.Format != "json" {
		return fmt.Errorf("invalid log.format %q: must be text or json", c.Log.Format)
	}

	return nil
}
