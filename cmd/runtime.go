package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/termdojo/internal/config"
	"github.com/abhisek/termdojo/internal/dojo"
	"github.com/abhisek/termdojo/internal/metrics"
	"github.com/abhisek/termdojo/internal/proficiency"
	"github.com/abhisek/termdojo/internal/quizgen"
	"github.com/abhisek/termdojo/internal/store"
)

// runtime bundles the services a command runs against.
type runtime struct {
	cfg         config.Config
	store       *store.Store
	metrics     *metrics.Metrics
	generator   *quizgen.Generator
	proficiency *proficiency.Service
	engine      *dojo.Engine
}

func (r *runtime) Close() error {
	return r.store.Close()
}

// loadConfig reads the configuration and applies the --db flag, which
// takes priority over every other DSN source.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return cfg, err
	}
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		cfg.Database.DSN = p
		if cfg.Database.Driver != store.DriverPostgres {
			if err := store.EnsureDir(p); err != nil {
				return cfg, fmt.Errorf("create database dir: %w", err)
			}
		}
	}
	return cfg, nil
}

// openStore loads the configuration and opens the database it names.
func openStore(cmd *cobra.Command) (*store.Store, config.Config, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, cfg, err
	}
	dsn, err := cfg.ResolveDSN()
	if err != nil {
		return nil, cfg, fmt.Errorf("resolve database: %w", err)
	}
	s, err := store.Open(cfg.Database.Driver, dsn)
	if err != nil {
		return nil, cfg, fmt.Errorf("open database: %w", err)
	}
	return s, cfg, nil
}

// openRuntime wires the store, generator, proficiency service and dojo
// engine. Provider credentials are checked lazily on the first
// generation, so commands that never generate work without an API key.
func openRuntime(cmd *cobra.Command) (*runtime, error) {
	s, cfg, err := openStore(cmd)
	if err != nil {
		return nil, err
	}

	m := metrics.NewMetrics()
	gen := quizgen.New(cfg.LLM, s.PromptRepo(),
		quizgen.WithEventRepo(s.EventRepo()),
		quizgen.WithMetrics(m),
	)
	prof := proficiency.NewService(s.TermRepo(), s.StudyLogRepo(), m)

	return &runtime{
		cfg:         cfg,
		store:       s,
		metrics:     m,
		generator:   gen,
		proficiency: prof,
		engine:      dojo.NewEngine(s.TermRepo(), gen, prof, dojo.WithMetrics(m)),
	}, nil
}
