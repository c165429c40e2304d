package model

import (
	"time"
)

// StateCounts counts registry entries by state.
type StateCounts struct {
	Live   int `json:"live"`
	Hollow int `json:"hollow"`
	Orphan int `json:"orphan"`
}

// Total returns the number of entries across all states.
func (c StateCounts) Total() int {
	return c.Live + c.Hollow + c.Orphan
}

// OrphanRatio returns the share of entries whose object has been collected.
func (c StateCounts) OrphanRatio() float64 {
	total := c.Total()
	if total == 0 {
		return 0
	}
	return float64(c.Orphan) / float64(total)
}

// TypePopulation is the number of live objects of one dynamic type.
type TypePopulation struct {
	TypeName   string  `json:"type"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// BucketLength counts id slots holding a given number of entries.
type BucketLength struct {
	Length     int     `json:"length"`
	Slots      int     `json:"slots"`
	Percentage float64 `json:"percentage"`
}

// PopulationReport summarizes the contents and shape of a registry.
type PopulationReport struct {
	RunUUID           string           `json:"run_id,omitempty"`
	SlotLength        int              `json:"slot_length"`
	Capacity          int              `json:"capacity"`
	HashDensity       float64          `json:"hash_density"`
	Size              int              `json:"size"`
	LoadFactor        float64          `json:"load_factor"`
	GrowthDisabled    bool             `json:"growth_disabled"`
	States            StateCounts      `json:"states"`
	TypeMappings      int              `json:"type_mappings"`
	DistinctTypes     int              `json:"distinct_types"`
	UnmappedTypes     int              `json:"unmapped_types"`
	TopTypes          []TypePopulation `json:"top_types"`
	Buckets           []BucketLength   `json:"buckets"`
	LongestIDBucket   int              `json:"longest_id_bucket"`
	LongestHashBucket int              `json:"longest_hash_bucket"`
	VerifyError       string           `json:"verify_error,omitempty"`
	Suggestions       []Suggestion     `json:"suggestions,omitempty"`
	GeneratedAt       time.Time        `json:"generated_at"`
}

// NewPopulationReport creates an empty report stamped with the current time.
func NewPopulationReport(runUUID string) *PopulationReport {
	return &PopulationReport{
		RunUUID:     runUUID,
		TopTypes:    make([]TypePopulation, 0),
		Buckets:     make([]BucketLength, 0),
		Suggestions: make([]Suggestion, 0),
		GeneratedAt: time.Now(),
	}
}

// Healthy returns true if the report carries no verification failure and no
// critical suggestion.
func (r *PopulationReport) Healthy() bool {
	if r.VerifyError != "" {
		return false
	}
	for _, s := range r.Suggestions {
		if s.Severity == SeverityCritical {
			return false
		}
	}
	return true
}

// MaintenanceTrigger records why a maintenance pass ran.
type MaintenanceTrigger string

const (
	TriggerTick   MaintenanceTrigger = "tick"
	TriggerManual MaintenanceTrigger = "manual"
)

// MaintenanceReport describes one maintenance pass over a registry.
type MaintenanceReport struct {
	RunUUID          string             `json:"run_id,omitempty"`
	Trigger          MaintenanceTrigger `json:"trigger"`
	Swept            int                `json:"swept"`
	Compacted        bool               `json:"compacted"`
	Shrunk           bool               `json:"shrunk"`
	SizeBefore       int                `json:"size_before"`
	SizeAfter        int                `json:"size_after"`
	SlotLengthBefore int                `json:"slot_length_before"`
	SlotLengthAfter  int                `json:"slot_length_after"`
	StartedAt        time.Time          `json:"started_at"`
	Duration         time.Duration      `json:"duration"`
}

// Changed returns true if the pass removed entries or resized the table.
func (r *MaintenanceReport) Changed() bool {
	return r.Swept > 0 || r.SlotLengthBefore != r.SlotLengthAfter
}
