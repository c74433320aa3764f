package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"patrolarena/internal/sim"
)

// Config is the server process configuration. The room section maps onto
// sim.Config; unset fields keep their defaults.
type Config struct {
	Addr    string     `yaml:"addr"`
	LogFile string     `yaml:"log_file"`
	Room    sim.Config `yaml:"room"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Addr:    ":8080",
		LogFile: "patrolarena.log",
		Room:    sim.DefaultConfig(),
	}
}

// Load reads a YAML file over the defaults. An empty path returns the
// defaults untouched.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	return cfg.Normalized(), nil
}

// ApplyEnv layers environment overrides on top of the file. Only the knobs
// worth tuning per deployment are exposed; everything else stays in YAML.
func (cfg Config) ApplyEnv() Config {
	if v := os.Getenv("PATROLARENA_ADDR"); v != "" {
		cfg.Addr = v
	}
	if v := os.Getenv("PATROLARENA_LOG_FILE"); v != "" {
		cfg.LogFile = v
	}
	if v, err := strconv.Atoi(os.Getenv("PATROLARENA_TICK_RATE")); err == nil && v > 0 {
		cfg.Room.TickRate = v
	}
	if v, err := strconv.Atoi(os.Getenv("PATROLARENA_BROADCAST_RATE")); err == nil && v > 0 {
		cfg.Room.BroadcastRate = v
	}
	return cfg
}

// Normalized fills gaps left by a partial file.
func (cfg Config) Normalized() Config {
	if cfg.Addr == "" {
		cfg.Addr = ":8080"
	}
	if cfg.LogFile == "" {
		cfg.LogFile = "patrolarena.log"
	}
	cfg.Room = cfg.Room.Normalized()
	return cfg
}
