package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Server holds HTTP server tuning resolved from an optional YAML file.
// These knobs are operational and intentionally separate from Settings.
type Server struct {
	ShutdownGracePeriod  time.Duration
	ReadHeaderTimeout    time.Duration
	WriteTimeout         time.Duration
	IdleTimeout          time.Duration
	EnableRequestLogging bool
}

// yamlServer represents the YAML tuning file structure.
type yamlServer struct {
	ShutdownGracePeriod  string `yaml:"shutdown_grace_period"`
	ReadHeaderTimeout    string `yaml:"read_header_timeout"`
	WriteTimeout         string `yaml:"write_timeout"`
	IdleTimeout          string `yaml:"idle_timeout"`
	EnableRequestLogging *bool  `yaml:"enable_request_logging"`
}

// DefaultServer returns the server tuning used when no file is provided.
func DefaultServer() Server {
	return Server{
		ShutdownGracePeriod:  10 * time.Second,
		ReadHeaderTimeout:    5 * time.Second,
		WriteTimeout:         15 * time.Second,
		IdleTimeout:          60 * time.Second,
		EnableRequestLogging: true,
	}
}

// LoadServer reads server tuning from the YAML file at path. An empty path
// yields the defaults. Unparseable duration fields keep their defaults.
func LoadServer(path string) (Server, error) {
	srv := DefaultServer()
	if path == "" {
		return srv, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Server{}, fmt.Errorf("read server config: %w", err)
	}

	var raw yamlServer
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return Server{}, fmt.Errorf("parse server config: %w", err)
	}

	applyDuration(raw.ShutdownGracePeriod, &srv.ShutdownGracePeriod)
	applyDuration(raw.ReadHeaderTimeout, &srv.ReadHeaderTimeout)
	applyDuration(raw.WriteTimeout, &srv.WriteTimeout)
	applyDuration(raw.IdleTimeout, &srv.IdleTimeout)

	if raw.EnableRequestLogging != nil {
		srv.EnableRequestLogging = *raw.EnableRequestLogging
	}

	return srv, nil
}

func applyDuration(raw string, dst *time.Duration) {
	if raw == "" {
		return
	}
	if d, err := time.ParseDuration(raw); err == nil {
		*dst = d
	}
}
