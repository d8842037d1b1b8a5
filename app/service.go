// Package app assembles the planner from configuration and runs one solve
// mode end to end: load problem, solve, write result files.
package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jsundin/tcrplan/config"
	"github.com/jsundin/tcrplan/core/loader"
	coremetrics "github.com/jsundin/tcrplan/core/metrics"
	"github.com/jsundin/tcrplan/core/mip"
	"github.com/jsundin/tcrplan/core/planner"
	"github.com/jsundin/tcrplan/core/solvelog"
	"github.com/jsundin/tcrplan/infra/glpk"
	"github.com/jsundin/tcrplan/infra/logger"
	"github.com/jsundin/tcrplan/infra/metrics"
	"github.com/jsundin/tcrplan/pkg/export"
)

// Service runs one planning mode over a loaded problem.
type Service struct {
	cfg    *config.Config
	log    logger.Logger
	store  solvelog.Store
	solver *recordingSolver
	opt    *planner.Optimizer
}

// New creates a Service from the configuration.
func New(cfg *config.Config) (*Service, error) {
	logg := logger.New("service")

	var sink coremetrics.Sink = coremetrics.NopSink{}
	if cfg.Metrics.PrometheusEnabled {
		s, err := metrics.NewPromSink()
		if err != nil {
			return nil, fmt.Errorf("prom sink: %w", err)
		}
		sink = s
	}

	var store solvelog.Store
	var err error
	switch cfg.SolveLog.Backend {
	case "jsonl":
		store, err = solvelog.NewJSONLStore(cfg.SolveLog.Path)
	case "sqlite":
		store, err = solvelog.NewSQLiteStore(cfg.SolveLog.Path)
	default:
		store = solvelog.NopStore{}
	}
	if err != nil {
		return nil, fmt.Errorf("solve log store: %w", err)
	}

	problem, err := loader.Load(cfg.Problem)
	if err != nil {
		return nil, fmt.Errorf("load problem: %w", err)
	}

	solver := newRecordingSolver(glpk.New(logger.New("glpk")), sink, store, logg)
	opt, err := planner.New(problem, solver, logger.New("planner"))
	if err != nil {
		return nil, err
	}

	return &Service{cfg: cfg, log: logg, store: store, solver: solver, opt: opt}, nil
}

// Run executes the configured mode and writes result files. It returns an
// error when the solve fails or the results cannot be written.
func (s *Service) Run(ctx context.Context) error {
	if s.cfg.Metrics.PrometheusEnabled {
		go func() {
			if err := metrics.StartPromServer(ctx, s.cfg.Metrics.PrometheusPort); err != nil {
				s.log.Errorf("prom server: %v", err)
			}
		}()
	}

	opts := mip.Options{
		TimeLimit: time.Duration(s.cfg.Solver.TimeLimitSeconds) * time.Second,
		Gap:       s.cfg.Solver.Gap,
		Verbose:   s.cfg.Solver.Verbose,
	}
	s.solver.SetMode(s.cfg.Mode)

	var ok bool
	switch s.cfg.Mode {
	case config.ModeScheduling:
		ok = s.opt.SolveScheduling(nil, opts)
	case config.ModeTraffic:
		ok = s.opt.SolveTraffic(nil, opts)
	case config.ModeIntegrated:
		ok = s.opt.SolveIntegrated(s.cfg.Integrated.MaxIterations, opts)
	case config.ModeDaily:
		ok = s.opt.SolveDaily(opts)
	default:
		return fmt.Errorf("unknown mode: %q", s.cfg.Mode)
	}
	if !ok {
		return fmt.Errorf("%s solve failed", s.cfg.Mode)
	}
	return s.writeResults()
}

func (s *Service) writeResults() error {
	if s.cfg.Output == "" {
		return nil
	}
	if err := os.MkdirAll(s.cfg.Output, 0755); err != nil {
		return err
	}
	results := s.opt.Results()

	if results.Sched != nil {
		err := s.writeFile("schedule_results.xml", func(f *os.File) error {
			return export.WriteScheduleXML(f, results.Sched, s.opt.Schedule(), s.opt.AffectedDays())
		})
		if err != nil {
			return err
		}
	}
	if results.Traffic != nil {
		err := s.writeFile("traffic_results.xml", func(f *os.File) error {
			return export.WriteTrafficXML(f, results.Traffic, s.opt.TrafficImpact(), time.Time{})
		})
		if err != nil {
			return err
		}
	}
	for day, dayResults := range results.Daily {
		name := fmt.Sprintf("traffic_%s.xml", day.Format("2006-01-02"))
		dr := dayResults
		d := day
		err := s.writeFile(name, func(f *os.File) error {
			return export.WriteTrafficXML(f, dr, s.opt.DailyTrafficImpact(d), d)
		})
		if err != nil {
			return err
		}
	}
	return s.writeFile("summary.txt", func(f *os.File) error {
		return export.WriteSummary(f, results)
	})
}

func (s *Service) writeFile(name string, write func(*os.File) error) error {
	path := filepath.Join(s.cfg.Output, name)
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		_ = f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	s.log.Infof("wrote %s", path)
	return f.Close()
}

// Close releases resources held by the service.
func (s *Service) Close() error { return s.store.Close() }
