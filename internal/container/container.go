package container

import (
	"context"
	"fmt"
	"log"
	"time"

	"csvpilot/adapters/excel"
	"csvpilot/adapters/memory"
	"csvpilot/adapters/postgres"
	"csvpilot/adapters/python"
	"csvpilot/internal/config"
	"csvpilot/internal/correlation"
	"csvpilot/internal/preprocess"
	"csvpilot/internal/profile"
	"csvpilot/internal/selector"
	"csvpilot/internal/session"
	"csvpilot/internal/workflow"
	"csvpilot/ports"

	"github.com/jmoiron/sqlx"
)

// Container holds all application dependencies and manages their lifecycle
type Container struct {
	Config *config.Config

	// Infrastructure
	DB *sqlx.DB

	// Adapters
	Reader       *excel.DataReader
	PythonRunner *python.Runner
	Visualizer   ports.Visualizer
	Applier      *preprocess.Applier
	Preprocessor ports.Preprocessor
	Trainer      ports.ModelTrainer

	// Pipeline components
	Profiler          *profile.Profiler
	CorrelationEngine *correlation.Engine
	Selector          *selector.Selector
	Orchestrator      *workflow.Orchestrator

	// State
	Runs     ports.RunRepository
	Sessions ports.SessionStore
}

// New creates the container and wires every component. When no database URL
// is configured the run registry falls back to the in-memory implementation.
func New(cfg *config.Config) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	c := &Container{Config: cfg}

	c.Reader = excel.NewDataReader()
	c.Profiler = profile.NewProfiler(c.Reader)
	c.CorrelationEngine = correlation.NewEngine()
	c.Selector = selector.NewSelector()

	c.PythonRunner = python.NewRunner(
		cfg.Python.Binary,
		cfg.Python.ScriptsDir,
		cfg.Python.MaxConcurrent,
		cfg.Python.Timeout,
	)
	c.Visualizer = python.NewVisualizer(c.PythonRunner, cfg.Paths.OutputsDir)
	c.Trainer = python.NewTrainer(c.PythonRunner, cfg.Paths.OutputsDir)
	c.Applier = preprocess.NewApplier(c.Reader)
	c.Preprocessor = c.Applier

	c.Sessions = session.NewMemoryStore(cfg.Session.TTL)

	if err := c.initRunRegistry(); err != nil {
		return nil, fmt.Errorf("failed to initialize run registry: %w", err)
	}

	c.Orchestrator = workflow.NewOrchestrator(
		cfg,
		c.Reader,
		c.Profiler,
		c.CorrelationEngine,
		c.Selector,
		c.Visualizer,
		c.Preprocessor,
		c.Trainer,
		c.Runs,
		c.Sessions,
	)

	log.Printf("[Container] initialized (registry=%s)", c.registryKind())
	return c, nil
}

func (c *Container) initRunRegistry() error {
	if c.Config.Database.URL == "" {
		c.Runs = memory.NewRunRepository()
		return nil
	}

	db, err := sqlx.Connect("postgres", c.Config.Database.URL)
	if err != nil {
		return fmt.Errorf("database connection failed: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	repo := postgres.NewRunRepository(db)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := repo.InitSchema(ctx); err != nil {
		db.Close()
		return fmt.Errorf("schema initialization failed: %w", err)
	}

	c.DB = db
	c.Runs = repo
	return nil
}

func (c *Container) registryKind() string {
	if c.DB != nil {
		return "postgres"
	}
	return "memory"
}

// Close releases held resources
func (c *Container) Close() error {
	if c.DB != nil {
		return c.DB.Close()
	}
	return nil
}
