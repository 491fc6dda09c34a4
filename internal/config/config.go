package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Config holds the server's tunables. Everything has a usable default so a
// missing config file is not an error.
type Config struct {
	// Listen is the HTTP bind address.
	Listen string `toml:"listen"`
	// HeapCapacity fixes the max number of distinct song ids the
	// popularity index tracks. Fixed for the engine's lifetime.
	HeapCapacity int `toml:"heap_capacity"`
	// RedisAddr points at the song catalog store.
	RedisAddr string `toml:"redis_addr"`
	// RedisDB selects the catalog database.
	RedisDB int `toml:"redis_db"`
}

// Default returns the development defaults.
func Default() Config {
	return Config{
		Listen:       "127.0.0.1:8080",
		HeapCapacity: 256,
		RedisAddr:    "localhost:6379",
		RedisDB:      0,
	}
}

// Load reads the TOML config at path, falling back to defaults when the
// file does not exist. Unset fields keep their defaults.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config: %w", err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.Listen == "" {
		return fmt.Errorf("listen address must not be empty")
	}
	if c.HeapCapacity <= 0 {
		return fmt.Errorf("heap_capacity must be > 0, got %d", c.HeapCapacity)
	}
	return nil
}
