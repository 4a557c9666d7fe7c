// Package config parses the compiler's TOML configuration file -- a
// single [api] table naming the main module, an optional target dialect,
// and an optional base directory for a relative main path. The teacher carries
// no config file of its own; this follows the pack's go-toml/v2 usage
// (bennypowers-cem, ludo-technologies-jscan) for the shape.
package config

import (
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/oalang/apic/internal/errors"
)

// API holds the [api] table of a config file.
type API struct {
	Main   string `toml:"main"`
	Target string `toml:"target"`
	Base   string `toml:"base"`
}

// Config is the root of a parsed config file.
type Config struct {
	API API `toml:"api"`
}

// Load reads and parses a TOML config file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.New(errors.ModuleNotFound, "config", err.Error()).WithCode(errors.CFG001))
	}
	return Parse(data)
}

// Parse parses TOML config source already in memory.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.Wrap(errors.New(errors.ParseFailed, "config", err.Error()).WithCode(errors.CFG001))
	}
	if cfg.API.Main == "" {
		return nil, errors.Wrap(errors.New(errors.EmptyPath, "config",
			"[api] table must set main").WithCode(errors.CFG002))
	}
	return &cfg, nil
}
