// Package service provides the main application service that integrates all components.
package service

import (
	"context"
	"fmt"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/objectregistry/internal/advisor"
	"github.com/objectregistry/internal/export"
	"github.com/objectregistry/internal/maintenance"
	"github.com/objectregistry/internal/repository"
	"github.com/objectregistry/internal/statistics"
	"github.com/objectregistry/internal/storage"
	"github.com/objectregistry/internal/workload"
	"github.com/objectregistry/pkg/config"
	"github.com/objectregistry/pkg/errors"
	"github.com/objectregistry/pkg/model"
	"github.com/objectregistry/pkg/registry"
	"github.com/objectregistry/pkg/telemetry"
	"github.com/objectregistry/pkg/utils"
	"github.com/objectregistry/pkg/writer"
)

// Service is the main application service.
type Service struct {
	config     *config.Config
	logger     utils.Logger
	clock      utils.Clock
	registry   *registry.Registry
	db         *repository.Repositories
	storage    storage.Storage
	exporter   *export.Exporter
	scheduler  *maintenance.Scheduler
	calculator *statistics.PopulationCalculator
	advisor    *advisor.Advisor

	// simMu serializes simulations so each run's maintenance pass is its own.
	simMu sync.Mutex
	last  *workload.Result

	histMu  sync.Mutex
	history map[string][]*model.MaintenanceReport

	running bool
}

// Option configures a Service.
type Option func(*Service)

// WithRepositories uses repos instead of connecting to the configured database.
func WithRepositories(repos *repository.Repositories) Option {
	return func(s *Service) {
		s.db = repos
	}
}

// WithStorage uses store instead of the configured report storage.
func WithStorage(store storage.Storage) Option {
	return func(s *Service) {
		s.storage = store
	}
}

// WithClock replaces the wall clock.
func WithClock(clock utils.Clock) Option {
	return func(s *Service) {
		s.clock = clock
	}
}

// New creates a new Service instance.
func New(cfg *config.Config, logger utils.Logger, opts ...Option) (*Service, error) {
	if cfg == nil {
		return nil, errors.New(errors.CodeConfigError, "config is nil")
	}
	if logger == nil {
		logger = utils.NewDefaultLogger(utils.LevelInfo, nil)
	}

	s := &Service{
		config:  cfg,
		logger:  logger,
		clock:   utils.NewRealClock(),
		advisor: advisor.NewAdvisor(),
		history: make(map[string][]*model.MaintenanceReport),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.calculator = statistics.NewPopulationCalculator(statistics.WithVerify(true))
	return s, nil
}

// Initialize initializes all service components.
func (s *Service) Initialize(ctx context.Context) error {
	s.logger.Info("Initializing service components...")

	if err := s.initRegistry(); err != nil {
		return fmt.Errorf("failed to initialize registry: %w", err)
	}

	if err := s.initDatabase(); err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}

	if err := s.initStorage(); err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}

	s.initScheduler()

	s.logger.Info("Service components initialized successfully")
	return nil
}

// initRegistry creates the registry from the sizing configuration.
func (s *Service) initRegistry() error {
	reg, err := registry.New(
		registry.WithInitialCapacity(s.config.Registry.InitialCapacity),
		registry.WithHashDensity(s.config.Registry.HashDensity),
		registry.WithLogger(s.logger),
	)
	if err != nil {
		return err
	}
	s.registry = reg
	s.logger.Info("Registry created with %d slots, capacity %d", reg.SlotLength(), reg.Capacity())
	return nil
}

// initDatabase connects the snapshot database when it is enabled.
func (s *Service) initDatabase() error {
	if s.db != nil {
		return nil
	}
	if !s.config.Database.Enabled {
		s.logger.Info("Database disabled, runs are not persisted")
		return nil
	}

	s.logger.Info("Connecting to database (%s)...", s.config.Database.Type)
	repos, err := repository.Connect(&s.config.Database)
	if err != nil {
		return err
	}
	s.db = repos
	s.logger.Info("Database connection established")
	return nil
}

// initStorage initializes report storage and the exporter on top of it.
func (s *Service) initStorage() error {
	compression, err := writer.ParseCompression(s.config.Storage.Compression)
	if err != nil {
		return err
	}

	if s.storage == nil {
		s.logger.Info("Initializing storage (%s)...", s.config.Storage.Type)
		store, err := storage.NewStorage(&s.config.Storage)
		if err != nil {
			return err
		}
		s.storage = store
	}

	s.exporter = export.New(s.storage, compression, s.logger)
	s.logger.Info("Storage initialized")
	return nil
}

// initScheduler creates the maintenance scheduler. Manual passes work even
// when periodic maintenance is disabled.
func (s *Service) initScheduler() {
	s.scheduler = maintenance.New(
		maintenance.FromConfig(&s.config.Maintenance),
		s.registry,
		maintenance.WithSink(s),
		maintenance.WithClock(s.clock),
		maintenance.WithLogger(s.logger),
	)
}

// SaveMaintenance keeps the report in the run's history and records it in the
// database when one is configured.
func (s *Service) SaveMaintenance(ctx context.Context, report *model.MaintenanceReport) error {
	s.histMu.Lock()
	s.history[report.RunUUID] = append(s.history[report.RunUUID], report)
	s.histMu.Unlock()

	if s.db == nil {
		return nil
	}
	return s.db.SaveMaintenance(ctx, report)
}

// MaintenanceHistory returns the passes recorded for a run in the order
// they ran.
func (s *Service) MaintenanceHistory(runUUID string) []*model.MaintenanceReport {
	s.histMu.Lock()
	defer s.histMu.Unlock()
	out := make([]*model.MaintenanceReport, len(s.history[runUUID]))
	copy(out, s.history[runUUID])
	return out
}

// Start starts periodic maintenance if it is enabled.
func (s *Service) Start(ctx context.Context) error {
	s.logger.Info("Starting service...")

	if s.config.Maintenance.Enabled {
		if err := s.scheduler.Start(ctx); err != nil {
			return fmt.Errorf("failed to start maintenance: %w", err)
		}
	}

	s.running = true
	s.logger.Info("Service started successfully")
	return nil
}

// Stop stops the service gracefully.
func (s *Service) Stop() error {
	s.logger.Info("Stopping service...")

	if s.scheduler != nil {
		s.scheduler.Stop()
	}

	if s.db != nil {
		if err := s.db.Close(); err != nil {
			s.logger.Error("Failed to close database connection: %v", err)
		}
	}

	s.running = false
	s.logger.Info("Service stopped")
	return nil
}

// IsRunning returns whether the service is running.
func (s *Service) IsRunning() bool {
	return s.running
}

// Registry returns the registry the service drives.
func (s *Service) Registry() *registry.Registry {
	return s.registry
}

// SimulateOptions selects what Simulate does besides running the workload.
type SimulateOptions struct {
	Save      bool // persist the run, snapshot and suggestions
	Export    bool // upload the population report and maintenance history
	NoCollect bool // skip the collection after the workload
}

// SimulationResult is the outcome of one Simulate call.
type SimulationResult struct {
	Run         *model.Run               `json:"run"`
	Won         int64                    `json:"won"`
	Lost        int64                    `json:"lost"`
	Retained    int                      `json:"retained"`
	Maintenance *model.MaintenanceReport `json:"maintenance,omitempty"`
	Report      *model.PopulationReport  `json:"report,omitempty"`
	Keys        []string                 `json:"keys,omitempty"`
}

// Simulate runs the configured workload, then one manual maintenance pass,
// then reports on the registry. Objects retained by the previous simulation
// are released first.
func (s *Service) Simulate(ctx context.Context, opts SimulateOptions) (*SimulationResult, error) {
	if s.registry == nil {
		return nil, errors.New(errors.CodeConfigError, "service is not initialized")
	}

	s.simMu.Lock()
	defer s.simMu.Unlock()

	ctx, span := telemetry.Tracer().Start(ctx, "registry.simulate")
	defer span.End()

	if s.last != nil {
		s.last.Release()
		s.last = nil
	}

	wcfg := workload.FromConfig(&s.config.Workload)
	if opts.NoCollect {
		wcfg.Collect = false
	}
	res, err := workload.New(s.registry, wcfg, s.clock, s.logger).Run(ctx)
	run := res.Run
	span.SetAttributes(attribute.String("run.id", run.RunUUID))

	if opts.Save && s.db != nil {
		if saveErr := s.db.Run.CreateRun(ctx, run); saveErr != nil {
			s.logger.Warn("Failed to save run %s: %v", run.RunUUID, saveErr)
		}
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "workload failed")
		return nil, err
	}
	s.last = res

	result := &SimulationResult{
		Run:      run,
		Won:      res.Won,
		Lost:     res.Lost,
		Retained: res.Retained(),
	}

	s.scheduler.SetRunUUID(run.RunUUID)
	result.Maintenance, err = s.scheduler.RunOnce(ctx, model.TriggerManual)
	if err != nil {
		s.logger.Warn("Maintenance after run %s: %v", run.RunUUID, err)
	}

	result.Report, err = s.Report(ctx, run.RunUUID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "report failed")
		return nil, err
	}
	span.SetAttributes(
		attribute.Int("registry.size", result.Report.Size),
		attribute.Bool("report.healthy", result.Report.Healthy()),
	)

	if opts.Save && s.db != nil {
		if err := s.save(ctx, result.Report); err != nil {
			return result, err
		}
	}

	if opts.Export {
		keys, err := s.export(ctx, result.Report)
		result.Keys = keys
		if err != nil {
			return result, err
		}
	}

	return result, nil
}

// Release drops the objects retained by the last simulation.
func (s *Service) Release() {
	s.simMu.Lock()
	defer s.simMu.Unlock()
	if s.last != nil {
		s.last.Release()
		s.last = nil
	}
}

// Report computes the population report of the registry and attaches the
// advisor's suggestions.
func (s *Service) Report(ctx context.Context, runUUID string) (*model.PopulationReport, error) {
	if s.registry == nil {
		return nil, errors.New(errors.CodeConfigError, "service is not initialized")
	}
	report, err := s.calculator.Calculate(ctx, s.registry, runUUID)
	if err != nil {
		return nil, err
	}
	report.Suggestions = s.advisor.Advise(&advisor.RuleContext{Report: report})
	if !report.Healthy() {
		s.logger.Warn("Registry report for run %s is unhealthy: %d suggestions", runUUID, len(report.Suggestions))
	}
	return report, nil
}

func (s *Service) save(ctx context.Context, report *model.PopulationReport) error {
	if err := s.db.Snapshot.SaveSnapshot(ctx, report); err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}
	if len(report.Suggestions) > 0 {
		if err := s.db.Suggestion.SaveSuggestions(ctx, report.Suggestions); err != nil {
			return fmt.Errorf("failed to save suggestions: %w", err)
		}
	}
	s.logger.Debug("Saved snapshot of run %s with %d suggestions", report.RunUUID, len(report.Suggestions))
	return nil
}

func (s *Service) export(ctx context.Context, report *model.PopulationReport) ([]string, error) {
	keys := make([]string, 0, 2)

	key, err := s.exporter.ExportPopulation(ctx, report)
	if err != nil {
		return keys, err
	}
	keys = append(keys, key)

	key, err = s.exporter.ExportMaintenance(ctx, report.RunUUID, s.MaintenanceHistory(report.RunUUID))
	if err != nil {
		return keys, err
	}
	keys = append(keys, key)

	s.logger.Info("Exported run %s to %s", report.RunUUID, s.exporter.URL(keys[0]))
	return keys, nil
}

// LoadReport reads an exported population report back from storage.
func (s *Service) LoadReport(ctx context.Context, runUUID string) (*model.PopulationReport, error) {
	if s.exporter == nil {
		return nil, errors.New(errors.CodeConfigError, "service is not initialized")
	}
	return s.exporter.LoadPopulation(ctx, runUUID)
}

// Runs returns the most recent persisted runs.
func (s *Service) Runs(ctx context.Context, limit int) ([]*model.Run, error) {
	if s.db == nil {
		return nil, errors.New(errors.CodeConfigError, "database is not enabled")
	}
	return s.db.Run.ListRuns(ctx, limit)
}

// Stats returns service statistics.
func (s *Service) Stats() ServiceStats {
	stats := ServiceStats{
		Running: s.running,
	}

	if s.registry != nil {
		stats.Registry = RegistryStats{
			Size:        s.registry.Size(),
			Capacity:    s.registry.Capacity(),
			SlotLength:  s.registry.SlotLength(),
			HashDensity: s.registry.HashDensity(),
		}
	}
	if s.scheduler != nil {
		stats.Maintenance = s.scheduler.Stats()
	}

	return stats
}

// HealthCheck performs a health check on the service.
func (s *Service) HealthCheck(ctx context.Context) error {
	if s.registry != nil {
		if err := s.registry.Verify(); err != nil {
			return fmt.Errorf("registry verification failed: %w", err)
		}
	}

	if s.db != nil {
		if err := s.db.HealthCheck(ctx); err != nil {
			return fmt.Errorf("database health check failed: %w", err)
		}
	}

	return nil
}

// RegistryStats holds the registry's current shape.
type RegistryStats struct {
	Size        int     `json:"size"`
	Capacity    int     `json:"capacity"`
	SlotLength  int     `json:"slot_length"`
	HashDensity float64 `json:"hash_density"`
}

// ServiceStats holds service statistics.
type ServiceStats struct {
	Running     bool              `json:"running"`
	Registry    RegistryStats     `json:"registry"`
	Maintenance maintenance.Stats `json:"maintenance"`
}
