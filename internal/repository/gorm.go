package repository

import (
	"context"
	stderrors "errors"
	"time"

	"gorm.io/gorm"

	"github.com/objectregistry/pkg/errors"
	"github.com/objectregistry/pkg/model"
)

// GormRunRepository implements RunRepository using GORM.
type GormRunRepository struct {
	db *gorm.DB
}

// NewGormRunRepository creates a new GormRunRepository.
func NewGormRunRepository(db *gorm.DB) *GormRunRepository {
	return &GormRunRepository{db: db}
}

// CreateRun inserts a run and sets its ID.
func (r *GormRunRepository) CreateRun(ctx context.Context, run *model.Run) error {
	record, err := NewRegistryRun(run)
	if err != nil {
		return errors.Wrap(errors.CodeInvalidInput, "failed to encode run", err)
	}

	if err := r.db.WithContext(ctx).Create(record).Error; err != nil {
		return errors.Wrap(errors.CodeDatabaseError, "failed to create run", err)
	}

	run.ID = record.ID
	return nil
}

// UpdateRun writes the status and timestamps of an existing run.
func (r *GormRunRepository) UpdateRun(ctx context.Context, run *model.Run) error {
	result := r.db.WithContext(ctx).
		Model(&RegistryRun{}).
		Where("run_uuid = ?", run.RunUUID).
		Updates(map[string]interface{}{
			"status":      run.Status,
			"status_info": run.StatusInfo,
			"begin_time":  run.BeginTime,
			"end_time":    run.EndTime,
		})

	if result.Error != nil {
		return errors.Wrap(errors.CodeDatabaseError, "failed to update run", result.Error)
	}
	if result.RowsAffected == 0 {
		return errors.Newf(errors.CodeNotFound, "run not found: %s", run.RunUUID)
	}

	return nil
}

// GetRunByUUID retrieves a run by its UUID.
func (r *GormRunRepository) GetRunByUUID(ctx context.Context, runUUID string) (*model.Run, error) {
	var record RegistryRun

	err := r.db.WithContext(ctx).Where("run_uuid = ?", runUUID).First(&record).Error
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.Newf(errors.CodeNotFound, "run not found: %s", runUUID)
		}
		return nil, errors.Wrap(errors.CodeDatabaseError, "failed to get run", err)
	}

	return record.ToModel(), nil
}

// ListRuns returns the most recent runs, newest first.
func (r *GormRunRepository) ListRuns(ctx context.Context, limit int) ([]*model.Run, error) {
	var records []RegistryRun

	err := r.db.WithContext(ctx).
		Order("id DESC").
		Limit(limit).
		Find(&records).Error
	if err != nil {
		return nil, errors.Wrap(errors.CodeDatabaseError, "failed to query runs", err)
	}

	runs := make([]*model.Run, len(records))
	for i := range records {
		runs[i] = records[i].ToModel()
	}

	return runs, nil
}

// GormSnapshotRepository implements SnapshotRepository using GORM.
type GormSnapshotRepository struct {
	db *gorm.DB
}

// NewGormSnapshotRepository creates a new GormSnapshotRepository.
func NewGormSnapshotRepository(db *gorm.DB) *GormSnapshotRepository {
	return &GormSnapshotRepository{db: db}
}

// SaveSnapshot stores a population report.
func (r *GormSnapshotRepository) SaveSnapshot(ctx context.Context, report *model.PopulationReport) error {
	record, err := NewPopulationSnapshot(report)
	if err != nil {
		return errors.Wrap(errors.CodeInvalidInput, "failed to encode snapshot", err)
	}

	if err := r.db.WithContext(ctx).Create(record).Error; err != nil {
		return errors.Wrap(errors.CodeDatabaseError, "failed to save snapshot", err)
	}

	return nil
}

// GetLatestSnapshot retrieves the newest report of a run.
func (r *GormSnapshotRepository) GetLatestSnapshot(ctx context.Context, runUUID string) (*model.PopulationReport, error) {
	var record PopulationSnapshot

	err := r.db.WithContext(ctx).
		Where("run_uuid = ?", runUUID).
		Order("generated_at DESC").
		Order("id DESC").
		First(&record).Error
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.Newf(errors.CodeNotFound, "no snapshot for run: %s", runUUID)
		}
		return nil, errors.Wrap(errors.CodeDatabaseError, "failed to get snapshot", err)
	}

	return record.ToModel()
}

// CountUnhealthy returns the number of unhealthy snapshots of a run.
func (r *GormSnapshotRepository) CountUnhealthy(ctx context.Context, runUUID string) (int, error) {
	var count int64

	err := r.db.WithContext(ctx).
		Model(&PopulationSnapshot{}).
		Where("run_uuid = ? AND healthy = ?", runUUID, false).
		Count(&count).Error
	if err != nil {
		return 0, errors.Wrap(errors.CodeDatabaseError, "failed to count snapshots", err)
	}

	return int(count), nil
}

// GormMaintenanceRepository implements MaintenanceRepository using GORM.
type GormMaintenanceRepository struct {
	db *gorm.DB
}

// NewGormMaintenanceRepository creates a new GormMaintenanceRepository.
func NewGormMaintenanceRepository(db *gorm.DB) *GormMaintenanceRepository {
	return &GormMaintenanceRepository{db: db}
}

// SaveMaintenance stores the report of one maintenance pass.
func (r *GormMaintenanceRepository) SaveMaintenance(ctx context.Context, report *model.MaintenanceReport) error {
	if err := r.db.WithContext(ctx).Create(NewMaintenanceRun(report)).Error; err != nil {
		return errors.Wrap(errors.CodeDatabaseError, "failed to save maintenance run", err)
	}
	return nil
}

// ListMaintenance returns the passes of a run in the order they started.
func (r *GormMaintenanceRepository) ListMaintenance(ctx context.Context, runUUID string) ([]*model.MaintenanceReport, error) {
	var records []MaintenanceRun

	err := r.db.WithContext(ctx).
		Where("run_uuid = ?", runUUID).
		Order("started_at ASC").
		Order("id ASC").
		Find(&records).Error
	if err != nil {
		return nil, errors.Wrap(errors.CodeDatabaseError, "failed to query maintenance runs", err)
	}

	reports := make([]*model.MaintenanceReport, len(records))
	for i := range records {
		reports[i] = records[i].ToModel()
	}

	return reports, nil
}

// GormSuggestionRepository implements SuggestionRepository using GORM.
type GormSuggestionRepository struct {
	db *gorm.DB
}

// NewGormSuggestionRepository creates a new GormSuggestionRepository.
func NewGormSuggestionRepository(db *gorm.DB) *GormSuggestionRepository {
	return &GormSuggestionRepository{db: db}
}

// SaveSuggestions saves multiple suggestions to the database in one
// transaction. Suggestions without text are skipped.
func (r *GormSuggestionRepository) SaveSuggestions(ctx context.Context, suggestions []model.Suggestion) error {
	if len(suggestions) == 0 {
		return nil
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now()

		for _, sug := range suggestions {
			if sug.Suggestion == "" {
				continue
			}

			createdAt := sug.CreatedAt
			if createdAt.IsZero() {
				createdAt = now
			}

			record := &RegistrySuggestion{
				RunUUID:    sug.RunUUID,
				Rule:       sug.Rule,
				Severity:   string(sug.Severity),
				Suggestion: sug.Suggestion,
				Target:     sug.Target,
				CreatedAt:  createdAt,
			}

			if err := tx.Create(record).Error; err != nil {
				return errors.Wrap(errors.CodeDatabaseError, "failed to insert suggestion", err)
			}
		}

		return nil
	})
}

// GetSuggestionsByRunUUID retrieves suggestions for a run.
func (r *GormSuggestionRepository) GetSuggestionsByRunUUID(ctx context.Context, runUUID string) ([]model.Suggestion, error) {
	var records []RegistrySuggestion

	err := r.db.WithContext(ctx).Where("run_uuid = ?", runUUID).Order("id ASC").Find(&records).Error
	if err != nil {
		return nil, errors.Wrap(errors.CodeDatabaseError, "failed to query suggestions", err)
	}

	suggestions := make([]model.Suggestion, len(records))
	for i := range records {
		suggestions[i] = records[i].ToModel()
	}

	return suggestions, nil
}
