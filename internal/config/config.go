// Package config loads planner configuration from an optional YAML file
// with environment overrides for the listen address.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Server struct {
	Addr           string  `yaml:"addr"`
	RateLimitRPS   float64 `yaml:"rateLimitRps"`
	RateLimitBurst int     `yaml:"rateLimitBurst"`
}

type Solver struct {
	AvgSpeedKmh         float64 `yaml:"avgSpeedKmh"`
	VisitBufferMinutes  int     `yaml:"visitBufferMinutes"`
	DropPenalty         int64   `yaml:"dropPenalty"`
	SpanCostCoefficient int64   `yaml:"spanCostCoefficient"`
	TimeLimitSeconds    int     `yaml:"timeLimitSeconds"`
	MaxIterations       int     `yaml:"maxIterations"`
	Seed                int64   `yaml:"seed"`
}

type Config struct {
	LogLevel string `yaml:"logLevel"`
	Server   Server `yaml:"server"`
	Solver   Solver `yaml:"solver"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		LogLevel: "info",
		Server: Server{
			Addr:           ":8080",
			RateLimitRPS:   20,
			RateLimitBurst: 40,
		},
		Solver: Solver{
			AvgSpeedKmh:         30,
			VisitBufferMinutes:  20,
			DropPenalty:         1_000_000,
			SpanCostCoefficient: 1,
			TimeLimitSeconds:    5,
		},
	}
}

// Load reads the YAML file at path over the defaults. An empty path keeps
// the defaults. PORT, when set, overrides the listen address.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}
	if v := os.Getenv("PORT"); v != "" {
		cfg.Server.Addr = ":" + v
	}
	return cfg, nil
}

// SolveTimeout converts the configured solver limit to a duration.
func (c Config) SolveTimeout() time.Duration {
	if c.Solver.TimeLimitSeconds <= 0 {
		return 5 * time.Second
	}
	return time.Duration(c.Solver.TimeLimitSeconds) * time.Second
}
