package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, data string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `problem: "problem.yaml"
output: "out"
mode: "integrated"
solver:
  timeLimitSeconds: 600
  gap: 0.05
  verbose: true
integrated:
  maxIterations: 3
solveLog:
  backend: "jsonl"
  path: "solves.jsonl"
metrics:
  prometheusEnabled: true
  prometheusPort: ":9191"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load error: %v", err)
	}
	checks := []struct {
		name string
		got  any
		want any
	}{
		{"problem", cfg.Problem, "problem.yaml"},
		{"output", cfg.Output, "out"},
		{"mode", cfg.Mode, ModeIntegrated},
		{"solver.timeLimitSeconds", cfg.Solver.TimeLimitSeconds, 600},
		{"solver.gap", cfg.Solver.Gap, 0.05},
		{"solver.verbose", cfg.Solver.Verbose, true},
		{"integrated.maxIterations", cfg.Integrated.MaxIterations, 3},
		{"solveLog.backend", cfg.SolveLog.Backend, "jsonl"},
		{"solveLog.path", cfg.SolveLog.Path, "solves.jsonl"},
		{"metrics.prometheusEnabled", cfg.Metrics.PrometheusEnabled, true},
		{"metrics.prometheusPort", cfg.Metrics.PrometheusPort, ":9191"},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s mismatch: %v", c.name, c.got)
		}
	}
}

func TestLoadDefaults(t *testing.T) {
	path := writeConfig(t, `problem: "problem.xml"
mode: "scheduling"
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load error: %v", err)
	}
	checks := []struct {
		name string
		got  any
		want any
	}{
		{"solver.timeLimitSeconds", cfg.Solver.TimeLimitSeconds, 3600},
		{"solver.gap", cfg.Solver.Gap, 0.01},
		{"integrated.maxIterations", cfg.Integrated.MaxIterations, 5},
		{"solveLog.backend", cfg.SolveLog.Backend, "none"},
		{"metrics.prometheusPort", cfg.Metrics.PrometheusPort, ":9090"},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s mismatch: %v", c.name, c.got)
		}
	}
}

func TestLoadEnvOverride(t *testing.T) {
	path := writeConfig(t, `problem: "problem.xml"
mode: "scheduling"
`)
	t.Setenv("TCR_MODE", "daily")
	t.Setenv("TCR_OUTPUT", "env-out")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load error: %v", err)
	}
	if cfg.Mode != ModeDaily {
		t.Errorf("mode = %q", cfg.Mode)
	}
	if cfg.Output != "env-out" {
		t.Errorf("output = %q", cfg.Output)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	cases := []struct {
		name string
		data string
	}{
		{"unknown mode", "problem: \"p.xml\"\nmode: \"replay\"\n"},
		{"missing problem", "mode: \"scheduling\"\n"},
		{"bad backend", "problem: \"p.xml\"\nmode: \"scheduling\"\nsolveLog:\n  backend: \"csv\"\n"},
		{"backend without path", "problem: \"p.xml\"\nmode: \"scheduling\"\nsolveLog:\n  backend: \"jsonl\"\n"},
	}
	for _, c := range cases {
		if _, err := Load(writeConfig(t, c.data)); err == nil {
			t.Errorf("%s: expected error", c.name)
		}
	}
}

func TestLoadUnsupportedFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("mode = \"scheduling\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}
