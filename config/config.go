// Package config loads the planner runtime configuration from YAML or JSON
// files with optional environment overrides.
package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Modes the planner can run in.
const (
	ModeScheduling = "scheduling"
	ModeTraffic    = "traffic"
	ModeIntegrated = "integrated"
	ModeDaily      = "daily"
)

type Config struct {
	Problem    string           `json:"problem"` // path to the problem manifest or XML file
	Output     string           `json:"output"`  // directory for result files
	Mode       string           `json:"mode"`
	Solver     SolverConfig     `json:"solver"`
	Integrated IntegratedConfig `json:"integrated"`
	SolveLog   SolveLogConfig   `json:"solveLog"`
	Metrics    MetricsConfig    `json:"metrics"`
}

type SolverConfig struct {
	TimeLimitSeconds int     `json:"timeLimitSeconds"`
	Gap              float64 `json:"gap"`
	Verbose          bool    `json:"verbose"`
}

type IntegratedConfig struct {
	MaxIterations int `json:"maxIterations"`
}

type SolveLogConfig struct {
	Backend string `json:"backend"` // "none", "jsonl" or "sqlite"
	Path    string `json:"path"`
}

type MetricsConfig struct {
	PrometheusEnabled bool   `json:"prometheusEnabled"`
	PrometheusPort    string `json:"prometheusPort"`
}

func (c *SolverConfig) SetDefaults() {
	if c.TimeLimitSeconds == 0 {
		c.TimeLimitSeconds = 3600
	}
	if c.Gap == 0 {
		c.Gap = 0.01
	}
}

func (c *IntegratedConfig) SetDefaults() {
	if c.MaxIterations == 0 {
		c.MaxIterations = 5
	}
}

func (c *SolveLogConfig) SetDefaults() {
	if c.Backend == "" {
		c.Backend = "none"
	}
}

func (c *MetricsConfig) SetDefaults() {
	if c.PrometheusPort == "" {
		c.PrometheusPort = ":9090"
	}
}

func (c *Config) Validate() error {
	switch c.Mode {
	case ModeScheduling, ModeTraffic, ModeIntegrated, ModeDaily:
	default:
		return fmt.Errorf("unknown mode: %q", c.Mode)
	}
	if c.Problem == "" {
		return fmt.Errorf("problem path is required")
	}
	if c.Integrated.MaxIterations < 1 {
		return fmt.Errorf("integrated.maxIterations must be >= 1")
	}
	switch c.SolveLog.Backend {
	case "none":
	case "jsonl", "sqlite":
		if c.SolveLog.Path == "" {
			return fmt.Errorf("solveLog.path is required for backend %q", c.SolveLog.Backend)
		}
	default:
		return fmt.Errorf("unknown solveLog backend: %q", c.SolveLog.Backend)
	}
	return nil
}

func Load(path string) (*Config, error) {
	k := koanf.New(".")
	ext := strings.ToLower(filepath.Ext(path))
	var parser koanf.Parser
	switch ext {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		return nil, fmt.Errorf("unsupported config format: %s", ext)
	}
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}
	// Optional environment overrides
	if err := k.Load(env.Provider("TCR_", "__", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "tcr_")
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.Solver.SetDefaults()
	cfg.Integrated.SetDefaults()
	cfg.SolveLog.SetDefaults()
	cfg.Metrics.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
