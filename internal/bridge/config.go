package bridge

import (
	"fmt"

	"github.com/BurntSushi/toml"
	log "github.com/sirupsen/logrus"
)

// Config is the bridge daemon's on-disk configuration.
//
//	[left]
//	endpoint = "serial:/dev/ttyUSB0?baud=115200"
//
//	[right]
//	endpoint = "tcp:10.0.0.5:7777"
//
//	metrics_addr = ":9812"   # optional
//	log_level = "info"       # optional
type Config struct {
	Left        EndpointConfig `toml:"left"`
	Right       EndpointConfig `toml:"right"`
	MetricsAddr string         `toml:"metrics_addr"`
	LogLevel    string         `toml:"log_level"`
}

type EndpointConfig struct {
	Endpoint string `toml:"endpoint"`
}

// LoadConfig reads and validates a TOML configuration file.
func LoadConfig(path string) (Config, error) {
	var cfg Config

	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("bridge: load config: %w", err)
	}

	if cfg.Left.Endpoint == "" {
		return Config{}, fmt.Errorf("bridge: config %s: left.endpoint is required", path)
	}
	if cfg.Right.Endpoint == "" {
		return Config{}, fmt.Errorf("bridge: config %s: right.endpoint is required", path)
	}

	if !meta.IsDefined("log_level") {
		cfg.LogLevel = "info"
	}
	if _, err := log.ParseLevel(cfg.LogLevel); err != nil {
		return Config{}, fmt.Errorf("bridge: config %s: log_level: %w", path, err)
	}

	return cfg, nil
}
