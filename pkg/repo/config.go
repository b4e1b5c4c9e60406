package repo

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/odvcencio/rvcs/internal/fsutil"
	"github.com/odvcencio/rvcs/pkg/object"
)

// DefaultAuthor is recorded in commits unless the config overrides it.
const DefaultAuthor = "rvcs"

// Config stores repository-local settings read from .rvcs/config.toml.
type Config struct {
	Core  CoreConfig  `toml:"core"`
	Index IndexConfig `toml:"index"`
	Log   LogConfig   `toml:"log"`
}

type CoreConfig struct {
	Author string `toml:"author"`
}

type IndexConfig struct {
	// Strict makes a malformed index line fail the load instead of being
	// skipped with a warning.
	Strict bool `toml:"strict"`
}

type LogConfig struct {
	Level string `toml:"level"`
}

// DefaultConfig returns the settings used when no config file exists.
func DefaultConfig() *Config {
	return &Config{
		Core: CoreConfig{Author: DefaultAuthor},
		Log:  LogConfig{Level: "warn"},
	}
}

func (r *Repo) configPath() string {
	return filepath.Join(r.RvcsDir, "config.toml")
}

// ReadConfig reads .rvcs/config.toml. Missing config returns the defaults;
// keys absent from the file keep their default values.
func (r *Repo) ReadConfig() (*Config, error) {
	cfg := DefaultConfig()
	path := r.configPath()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", &object.IOError{Op: "read", Path: path, Err: err})
	}
	if _, err := toml.Decode(string(data), cfg); err != nil {
		return nil, fmt.Errorf("read config: %s: %w", path, err)
	}
	return cfg, nil
}

// WriteConfig atomically writes .rvcs/config.toml.
func (r *Repo) WriteConfig(cfg *Config) error {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("write config: encode: %w", err)
	}
	path := r.configPath()
	if err := fsutil.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write config: %w", &object.IOError{Op: "write", Path: path, Err: err})
	}
	r.Config = cfg
	return nil
}
