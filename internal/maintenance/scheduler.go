// Package maintenance runs periodic orphan sweeps and table resizing against a
// registry.
package maintenance

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/objectregistry/pkg/config"
	"github.com/objectregistry/pkg/model"
	"github.com/objectregistry/pkg/telemetry"
	"github.com/objectregistry/pkg/utils"
)

// Target is the registry surface maintenance operates on.
type Target interface {
	Size() int
	Capacity() int
	SlotLength() int
	ClearOrphanEntries() int
	CleanUp() int
	Shrink() bool
}

// ReportSink receives the report of every maintenance pass.
type ReportSink interface {
	SaveMaintenance(ctx context.Context, report *model.MaintenanceReport) error
}

// Config holds scheduler configuration.
type Config struct {
	Interval    time.Duration // Time between passes
	CleanUp     bool          // Rehash after sweeping to compact buckets
	Shrink      bool          // Shrink sparse tables
	ShrinkRatio float64       // Shrink when size/capacity drops below this
}

// DefaultConfig returns default scheduler configuration.
func DefaultConfig() *Config {
	return &Config{
		Interval:    30 * time.Second,
		CleanUp:     true,
		Shrink:      false,
		ShrinkRatio: 0.25,
	}
}

// FromConfig creates scheduler config from application config.
func FromConfig(cfg *config.MaintenanceConfig) *Config {
	return &Config{
		Interval:    cfg.IntervalDuration(),
		CleanUp:     cfg.CleanUp,
		Shrink:      cfg.Shrink,
		ShrinkRatio: cfg.ShrinkRatio,
	}
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithSink records every report with sink.
func WithSink(sink ReportSink) Option {
	return func(s *Scheduler) {
		s.sink = sink
	}
}

// WithClock replaces the wall clock, mainly for tests.
func WithClock(clock utils.Clock) Option {
	return func(s *Scheduler) {
		s.clock = clock
	}
}

// WithLogger sets the logger.
func WithLogger(logger utils.Logger) Option {
	return func(s *Scheduler) {
		s.logger = logger
	}
}

// WithTracer replaces the global tracer.
func WithTracer(tracer trace.Tracer) Option {
	return func(s *Scheduler) {
		s.tracer = tracer
	}
}

// WithRunUUID tags reports with the workload run they belong to.
func WithRunUUID(runUUID string) Option {
	return func(s *Scheduler) {
		s.runUUID = runUUID
	}
}

// SetRunUUID tags later reports with runUUID.
func (s *Scheduler) SetRunUUID(runUUID string) {
	s.passMu.Lock()
	defer s.passMu.Unlock()
	s.runUUID = runUUID
}

// Scheduler triggers maintenance passes on a ticker.
type Scheduler struct {
	config  *Config
	target  Target
	sink    ReportSink
	clock   utils.Clock
	logger  utils.Logger
	tracer  trace.Tracer
	runUUID string

	passMu sync.Mutex // serializes passes
	mu     sync.Mutex
	stopCh chan struct{}
	wg     sync.WaitGroup

	running atomic.Bool
	passes  atomic.Int64
	swept   atomic.Int64
	failed  atomic.Int64
	last    atomic.Pointer[model.MaintenanceReport]
}

// New creates a new Scheduler.
func New(cfg *Config, target Target, opts ...Option) *Scheduler {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	s := &Scheduler{
		config: cfg,
		target: target,
		clock:  utils.NewRealClock(),
		logger: utils.NewDefaultLogger(utils.LevelInfo, nil),
		tracer: telemetry.Tracer(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start starts the ticker loop. It fails if the scheduler is already running
// or the interval is not positive.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.config.Interval <= 0 {
		return fmt.Errorf("maintenance interval must be positive, got %v", s.config.Interval)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running.Load() {
		return fmt.Errorf("maintenance scheduler already running")
	}

	s.logger.Info("Starting maintenance scheduler every %v", s.config.Interval)
	s.stopCh = make(chan struct{})
	s.running.Store(true)

	ticker := s.clock.NewTicker(s.config.Interval)
	s.wg.Add(1)
	go s.loop(ctx, ticker, s.stopCh)
	return nil
}

// Stop stops the ticker loop and waits for an in-flight pass to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running.Load() {
		s.mu.Unlock()
		return
	}
	s.logger.Info("Stopping maintenance scheduler...")
	close(s.stopCh)
	s.mu.Unlock()

	s.wg.Wait()
	s.running.Store(false)
	s.logger.Info("Maintenance scheduler stopped")
}

func (s *Scheduler) loop(ctx context.Context, ticker utils.Ticker, stopCh <-chan struct{}) {
	defer s.wg.Done()
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-stopCh:
			return
		case <-ticker.C():
			if _, err := s.RunOnce(ctx, model.TriggerTick); err != nil {
				s.logger.Warn("Maintenance pass failed: %v", err)
			}
		}
	}
}

// RunOnce performs one maintenance pass: sweep orphans, optionally compact,
// then shrink if the table is sparse. The report is returned even when the
// sink fails to record it.
func (s *Scheduler) RunOnce(ctx context.Context, trigger model.MaintenanceTrigger) (*model.MaintenanceReport, error) {
	s.passMu.Lock()
	defer s.passMu.Unlock()

	ctx, span := s.tracer.Start(ctx, "registry.maintenance",
		trace.WithAttributes(attribute.String("maintenance.trigger", string(trigger))))
	defer span.End()

	start := s.clock.Now()
	report := &model.MaintenanceReport{
		RunUUID:          s.runUUID,
		Trigger:          trigger,
		SizeBefore:       s.target.Size(),
		SlotLengthBefore: s.target.SlotLength(),
		StartedAt:        start,
	}

	if s.config.CleanUp {
		report.Swept = s.target.CleanUp()
		report.Compacted = true
	} else {
		report.Swept = s.target.ClearOrphanEntries()
	}

	if s.config.Shrink && s.sparse() {
		report.Shrunk = s.target.Shrink()
	}

	report.SizeAfter = s.target.Size()
	report.SlotLengthAfter = s.target.SlotLength()
	report.Duration = s.clock.Since(start)

	span.SetAttributes(
		attribute.Int("maintenance.swept", report.Swept),
		attribute.Bool("maintenance.shrunk", report.Shrunk),
		attribute.Int("registry.size", report.SizeAfter),
		attribute.Int("registry.slot_length", report.SlotLengthAfter),
	)

	s.passes.Add(1)
	s.swept.Add(int64(report.Swept))
	s.last.Store(report)

	if report.Changed() {
		s.logger.Info("Maintenance swept %d entries, slots %d -> %d, size %d",
			report.Swept, report.SlotLengthBefore, report.SlotLengthAfter, report.SizeAfter)
	} else {
		s.logger.Debug("Maintenance found nothing to do at size %d", report.SizeAfter)
	}

	if s.sink != nil {
		if err := s.sink.SaveMaintenance(ctx, report); err != nil {
			s.failed.Add(1)
			span.RecordError(err)
			span.SetStatus(codes.Error, "failed to record maintenance report")
			return report, fmt.Errorf("failed to record maintenance report: %w", err)
		}
	}
	return report, nil
}

// sparse applies the shrink policy to the current size and capacity.
func (s *Scheduler) sparse() bool {
	capacity := s.target.Capacity()
	if capacity <= 0 {
		return false
	}
	return float64(s.target.Size())/float64(capacity) < s.config.ShrinkRatio
}

// Stats returns current scheduler statistics.
func (s *Scheduler) Stats() Stats {
	return Stats{
		Running:      s.running.Load(),
		Passes:       s.passes.Load(),
		Swept:        s.swept.Load(),
		FailedSaves:  s.failed.Load(),
		LastReport:   s.last.Load(),
		IntervalSecs: s.config.Interval.Seconds(),
	}
}

// Stats holds scheduler statistics.
type Stats struct {
	Running      bool                     `json:"running"`
	Passes       int64                    `json:"passes"`
	Swept        int64                    `json:"swept"`
	FailedSaves  int64                    `json:"failed_saves"`
	LastReport   *model.MaintenanceReport `json:"last_report,omitempty"`
	IntervalSecs float64                  `json:"interval_secs"`
}
