// Package config loads engine settings from TOML and watches the file
// for live reload.
package config

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/willwagner/markupeditor/internal/schema"
)

// Config holds the host-tunable engine settings.
type Config struct {
	// MaxUndoDepth bounds the undo stack; 0 means the default.
	MaxUndoDepth int `toml:"max_undo_depth"`

	// TableBorder is the border style applied to inserted tables.
	TableBorder string `toml:"table_border"`

	// PrettyIndent is the indentation unit for pretty serialization.
	PrettyIndent string `toml:"pretty_indent"`

	// SearchCaseSensitive sets the default search case mode.
	SearchCaseSensitive bool `toml:"search_case_sensitive"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		MaxUndoDepth: 1000,
		TableBorder:  schema.BorderCell,
		PrettyIndent: "  ",
	}
}

// Load reads settings from a TOML file, applying defaults for missing
// keys. A missing file is not an error; the defaults are returned.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config file %s: %w", path, err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Default(), fmt.Errorf("parsing config file %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Default(), err
	}
	return cfg, nil
}

// Validate checks value ranges.
func (c Config) Validate() error {
	if c.MaxUndoDepth < 0 {
		return fmt.Errorf("max_undo_depth must not be negative, got %d", c.MaxUndoDepth)
	}
	if c.TableBorder != "" && !schema.ValidBorder(c.TableBorder) {
		return fmt.Errorf("table_border must be one of outer, header, cell, none; got %q", c.TableBorder)
	}
	return nil
}
