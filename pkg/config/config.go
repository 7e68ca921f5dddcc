// Package config loads bf2py settings from YAML or TOML files.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/naoina/toml"
	"gopkg.in/yaml.v3"

	"bf2py/pkg/compiler"
)

// File holds every setting a config file may provide. Keys missing from a
// file keep the value they had before loading.
type File struct {
	TapeSize  int    `yaml:"tape_size" toml:"tape_size"`
	CellWidth int    `yaml:"cell_width" toml:"cell_width"`
	Layout    string `yaml:"layout" toml:"layout"`
	Indent    int    `yaml:"indent" toml:"indent"`
	OutDir    string `yaml:"out_dir" toml:"out_dir"`
	Jobs      int    `yaml:"jobs" toml:"jobs"`
}

// Defaults returns the settings used when neither a file nor a flag sets them.
func Defaults() File {
	cfg := compiler.DefaultConfig()
	return File{
		TapeSize:  cfg.TapeSize,
		CellWidth: cfg.CellWidth,
		Layout:    cfg.Layout.String(),
		Indent:    cfg.Indent,
	}
}

// Load reads path on top of base. The format is chosen by extension:
// .yaml and .yml for YAML, .toml for TOML.
func Load(path string, base File) (File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return base, fmt.Errorf("read %s: %w", path, err)
	}
	f, err := Parse(data, filepath.Ext(path), base)
	if err != nil {
		return base, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

// Parse decodes data in the format named by ext on top of base.
func Parse(data []byte, ext string, base File) (File, error) {
	f := base
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
			return base, fmt.Errorf("yaml parse: %w", err)
		}
	case ".toml":
		if err := toml.Unmarshal(data, &f); err != nil {
			return base, fmt.Errorf("toml parse: %w", err)
		}
	default:
		return base, fmt.Errorf("unsupported config format %q", ext)
	}
	return f, nil
}

// Compiler converts the settings to a validated compiler configuration.
func (f File) Compiler() (compiler.Config, error) {
	layout, err := compiler.ParseLayout(f.Layout)
	if err != nil {
		return compiler.Config{}, err
	}
	cfg := compiler.Config{
		TapeSize:  f.TapeSize,
		CellWidth: f.CellWidth,
		Layout:    layout,
		Indent:    f.Indent,
	}
	if err := cfg.Validate(); err != nil {
		return compiler.Config{}, err
	}
	return cfg, nil
}
