package repository

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/objectregistry/pkg/model"
)

// RegistryRun represents the registry_run table.
type RegistryRun struct {
	ID         int64           `gorm:"column:id;primaryKey;autoIncrement"`
	RunUUID    string          `gorm:"column:run_uuid;type:varchar(64);uniqueIndex"`
	Status     model.RunStatus `gorm:"column:status"`
	StatusInfo string          `gorm:"column:status_info;type:text"`
	Params     JSONField       `gorm:"column:params;type:json"`
	CreateTime time.Time       `gorm:"column:create_time"`
	BeginTime  *time.Time      `gorm:"column:begin_time"`
	EndTime    *time.Time      `gorm:"column:end_time"`
}

// TableName returns the table name for RegistryRun.
func (RegistryRun) TableName() string {
	return "registry_run"
}

// NewRegistryRun converts model.Run to a RegistryRun row.
func NewRegistryRun(run *model.Run) (*RegistryRun, error) {
	params, err := json.Marshal(run.Params)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal run params: %w", err)
	}
	return &RegistryRun{
		ID:         run.ID,
		RunUUID:    run.RunUUID,
		Status:     run.Status,
		StatusInfo: run.StatusInfo,
		Params:     params,
		CreateTime: run.CreateTime,
		BeginTime:  run.BeginTime,
		EndTime:    run.EndTime,
	}, nil
}

// ToModel converts RegistryRun to model.Run.
func (r *RegistryRun) ToModel() *model.Run {
	run := &model.Run{
		ID:         r.ID,
		RunUUID:    r.RunUUID,
		Status:     r.Status,
		StatusInfo: r.StatusInfo,
		CreateTime: r.CreateTime,
		BeginTime:  r.BeginTime,
		EndTime:    r.EndTime,
	}

	if r.Params != nil {
		_ = json.Unmarshal(r.Params, &run.Params)
	}

	return run
}

// PopulationSnapshot represents the population_snapshot table. The scalar
// columns duplicate fields of the report so snapshots can be filtered in SQL.
type PopulationSnapshot struct {
	ID          int64     `gorm:"column:id;primaryKey;autoIncrement"`
	RunUUID     string    `gorm:"column:run_uuid;type:varchar(64);index"`
	SlotLength  int       `gorm:"column:slot_length"`
	Size        int       `gorm:"column:size"`
	Live        int       `gorm:"column:live"`
	Hollow      int       `gorm:"column:hollow"`
	Orphan      int       `gorm:"column:orphan"`
	Healthy     bool      `gorm:"column:healthy"`
	Report      JSONField `gorm:"column:report;type:json"`
	GeneratedAt time.Time `gorm:"column:generated_at;index"`
}

// TableName returns the table name for PopulationSnapshot.
func (PopulationSnapshot) TableName() string {
	return "population_snapshot"
}

// NewPopulationSnapshot converts a report to a snapshot row.
func NewPopulationSnapshot(report *model.PopulationReport) (*PopulationSnapshot, error) {
	data, err := json.Marshal(report)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal population report: %w", err)
	}
	return &PopulationSnapshot{
		RunUUID:     report.RunUUID,
		SlotLength:  report.SlotLength,
		Size:        report.Size,
		Live:        report.States.Live,
		Hollow:      report.States.Hollow,
		Orphan:      report.States.Orphan,
		Healthy:     report.Healthy(),
		Report:      data,
		GeneratedAt: report.GeneratedAt,
	}, nil
}

// ToModel converts PopulationSnapshot to model.PopulationReport.
func (s *PopulationSnapshot) ToModel() (*model.PopulationReport, error) {
	report := model.NewPopulationReport(s.RunUUID)
	if s.Report != nil {
		if err := json.Unmarshal(s.Report, report); err != nil {
			return nil, fmt.Errorf("failed to unmarshal population report: %w", err)
		}
	}
	return report, nil
}

// MaintenanceRun represents the maintenance_run table.
type MaintenanceRun struct {
	ID               int64     `gorm:"column:id;primaryKey;autoIncrement"`
	RunUUID          string    `gorm:"column:run_uuid;type:varchar(64);index"`
	Trigger          string    `gorm:"column:trigger_kind;type:varchar(16)"`
	Swept            int       `gorm:"column:swept"`
	Compacted        bool      `gorm:"column:compacted"`
	Shrunk           bool      `gorm:"column:shrunk"`
	SizeBefore       int       `gorm:"column:size_before"`
	SizeAfter        int       `gorm:"column:size_after"`
	SlotLengthBefore int       `gorm:"column:slot_length_before"`
	SlotLengthAfter  int       `gorm:"column:slot_length_after"`
	StartedAt        time.Time `gorm:"column:started_at;index"`
	DurationMicros   int64     `gorm:"column:duration_us"`
}

// TableName returns the table name for MaintenanceRun.
func (MaintenanceRun) TableName() string {
	return "maintenance_run"
}

// NewMaintenanceRun converts a maintenance report to a row.
func NewMaintenanceRun(report *model.MaintenanceReport) *MaintenanceRun {
	return &MaintenanceRun{
		RunUUID:          report.RunUUID,
		Trigger:          string(report.Trigger),
		Swept:            report.Swept,
		Compacted:        report.Compacted,
		Shrunk:           report.Shrunk,
		SizeBefore:       report.SizeBefore,
		SizeAfter:        report.SizeAfter,
		SlotLengthBefore: report.SlotLengthBefore,
		SlotLengthAfter:  report.SlotLengthAfter,
		StartedAt:        report.StartedAt,
		DurationMicros:   report.Duration.Microseconds(),
	}
}

// ToModel converts MaintenanceRun to model.MaintenanceReport.
func (m *MaintenanceRun) ToModel() *model.MaintenanceReport {
	return &model.MaintenanceReport{
		RunUUID:          m.RunUUID,
		Trigger:          model.MaintenanceTrigger(m.Trigger),
		Swept:            m.Swept,
		Compacted:        m.Compacted,
		Shrunk:           m.Shrunk,
		SizeBefore:       m.SizeBefore,
		SizeAfter:        m.SizeAfter,
		SlotLengthBefore: m.SlotLengthBefore,
		SlotLengthAfter:  m.SlotLengthAfter,
		StartedAt:        m.StartedAt,
		Duration:         time.Duration(m.DurationMicros) * time.Microsecond,
	}
}

// RegistrySuggestion represents the registry_suggestion table.
type RegistrySuggestion struct {
	ID         int64     `gorm:"column:id;primaryKey;autoIncrement"`
	RunUUID    string    `gorm:"column:run_uuid;type:varchar(64);index"`
	Rule       string    `gorm:"column:rule;type:varchar(64)"`
	Severity   string    `gorm:"column:severity;type:varchar(16)"`
	Suggestion string    `gorm:"column:suggestion;type:text"`
	Target     string    `gorm:"column:target;type:varchar(64)"`
	CreatedAt  time.Time `gorm:"column:created_at"`
}

// TableName returns the table name for RegistrySuggestion.
func (RegistrySuggestion) TableName() string {
	return "registry_suggestion"
}

// ToModel converts RegistrySuggestion to model.Suggestion.
func (s *RegistrySuggestion) ToModel() model.Suggestion {
	return model.Suggestion{
		ID:         s.ID,
		RunUUID:    s.RunUUID,
		Rule:       s.Rule,
		Severity:   model.Severity(s.Severity),
		Suggestion: s.Suggestion,
		Target:     s.Target,
		CreatedAt:  s.CreatedAt,
	}
}

// AllModels lists every table for AutoMigrate.
func AllModels() []interface{} {
	return []interface{}{
		&RegistryRun{},
		&PopulationSnapshot{},
		&MaintenanceRun{},
		&RegistrySuggestion{},
	}
}

// JSONField is a custom type for handling JSON fields in GORM.
type JSONField []byte

// Value implements driver.Valuer interface.
func (j JSONField) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return []byte(j), nil
}

// Scan implements sql.Scanner interface.
func (j *JSONField) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}

	switch v := value.(type) {
	case []byte:
		*j = append((*j)[0:0], v...)
		return nil
	case string:
		*j = []byte(v)
		return nil
	default:
		return errors.New("unsupported type for JSONField")
	}
}

// MarshalJSON implements json.Marshaler interface.
func (j JSONField) MarshalJSON() ([]byte, error) {
	if j == nil {
		return []byte("null"), nil
	}
	return j, nil
}

// UnmarshalJSON implements json.Unmarshaler interface.
func (j *JSONField) UnmarshalJSON(data []byte) error {
	if data == nil || string(data) == "null" {
		*j = nil
		return nil
	}
	*j = append((*j)[0:0], data...)
	return nil
}
