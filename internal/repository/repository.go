// Package repository persists workload runs, population snapshots and
// maintenance history.
package repository

import (
	"context"

	"github.com/objectregistry/pkg/model"
)

// RunRepository defines the interface for workload run records.
type RunRepository interface {
	// CreateRun inserts a run and sets its ID.
	CreateRun(ctx context.Context, run *model.Run) error

	// UpdateRun writes the status and timestamps of an existing run.
	UpdateRun(ctx context.Context, run *model.Run) error

	// GetRunByUUID retrieves a run by its UUID.
	GetRunByUUID(ctx context.Context, runUUID string) (*model.Run, error)

	// ListRuns returns the most recent runs, newest first.
	ListRuns(ctx context.Context, limit int) ([]*model.Run, error)
}

// SnapshotRepository defines the interface for population snapshots.
type SnapshotRepository interface {
	// SaveSnapshot stores a population report.
	SaveSnapshot(ctx context.Context, report *model.PopulationReport) error

	// GetLatestSnapshot retrieves the newest report of a run.
	GetLatestSnapshot(ctx context.Context, runUUID string) (*model.PopulationReport, error)

	// CountUnhealthy returns the number of unhealthy snapshots of a run.
	CountUnhealthy(ctx context.Context, runUUID string) (int, error)
}

// MaintenanceRepository defines the interface for maintenance history.
type MaintenanceRepository interface {
	// SaveMaintenance stores the report of one maintenance pass.
	SaveMaintenance(ctx context.Context, report *model.MaintenanceReport) error

	// ListMaintenance returns the passes of a run in the order they started.
	ListMaintenance(ctx context.Context, runUUID string) ([]*model.MaintenanceReport, error)
}

// SuggestionRepository defines the interface for suggestion operations.
type SuggestionRepository interface {
	// SaveSuggestions saves multiple suggestions to the database.
	SaveSuggestions(ctx context.Context, suggestions []model.Suggestion) error

	// GetSuggestionsByRunUUID retrieves suggestions for a run.
	GetSuggestionsByRunUUID(ctx context.Context, runUUID string) ([]model.Suggestion, error)
}
