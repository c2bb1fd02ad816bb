// Package config handles knowhow.toml bootstrap configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/chazu/knowhow/vm"
)

// FileName is the configuration file looked for in a directory.
const FileName = "knowhow.toml"

// Config represents a knowhow.toml configuration.
type Config struct {
	Bootstrap Bootstrap `toml:"bootstrap"`
	Heap      Heap      `toml:"heap"`
	Log       Log       `toml:"log"`

	// Dir is the directory containing the knowhow.toml file (set at load time).
	Dir string `toml:"-"`
}

// Bootstrap configures the object model bootstrap.
type Bootstrap struct {
	DefaultRepr string `toml:"default-repr"`
	AnonName    string `toml:"anon-name"`
	RootName    string `toml:"root-name"`
}

// Heap configures the arena allocator.
type Heap struct {
	MaxObjects int `toml:"max-objects"`
}

// Log configures commonlog output.
type Log struct {
	Verbosity int    `toml:"verbosity"`
	File      string `toml:"file"`
}

// Default returns the configuration used when no knowhow.toml exists.
func Default() *Config {
	return &Config{
		Bootstrap: Bootstrap{
			DefaultRepr: vm.DefaultReprName,
			AnonName:    vm.DefaultAnonName,
			RootName:    vm.DefaultRootName,
		},
	}
}

// Load parses a knowhow.toml file from the given directory. Keys absent
// from the file keep their defaults.
func Load(dir string) (*Config, error) {
	path := filepath.Join(dir, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	c := Default()
	md, err := toml.Decode(string(data), c)
	if err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("%s: unknown key %q", path, undecoded[0].String())
	}
	if c.Heap.MaxObjects < 0 {
		return nil, fmt.Errorf("%s: heap.max-objects must not be negative", path)
	}

	c.Dir, err = filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("cannot resolve path %s: %w", dir, err)
	}
	return c, nil
}

// FindAndLoad walks up from startDir to find a knowhow.toml file and loads
// it. Returns the defaults if none is found.
func FindAndLoad(startDir string) (*Config, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, err
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, FileName)); err == nil {
			return Load(dir)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return Default(), nil
		}
		dir = parent
	}
}

// Options converts the configuration to bootstrap options.
func (c *Config) Options() vm.Options {
	return vm.Options{
		DefaultRepr: c.Bootstrap.DefaultRepr,
		AnonName:    c.Bootstrap.AnonName,
		RootName:    c.Bootstrap.RootName,
		MaxObjects:  c.Heap.MaxObjects,
	}
}
