// Package model defines the core data structures used throughout the application.
package model

import (
	"time"
)

// RunStatus represents the status of a workload run.
type RunStatus int

const (
	RunStatusPending   RunStatus = 0 // Created, not started
	RunStatusRunning   RunStatus = 1 // Producers running
	RunStatusCompleted RunStatus = 2 // Finished and reported
	RunStatusFailed    RunStatus = 3 // Aborted with an error
)

// String returns the string representation of RunStatus.
func (s RunStatus) String() string {
	switch s {
	case RunStatusPending:
		return "pending"
	case RunStatusRunning:
		return "running"
	case RunStatusCompleted:
		return "completed"
	case RunStatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// WorkloadParams holds the parameters a run was started with.
type WorkloadParams struct {
	Producers   int     `json:"producers"`
	Objects     int     `json:"objects"`
	Types       int     `json:"types"`
	RetainRatio float64 `json:"retain_ratio"`
}

// Run represents one workload simulation against a registry.
type Run struct {
	ID         int64          `json:"id"`
	RunUUID    string         `json:"run_id"`
	Status     RunStatus      `json:"status"`
	StatusInfo string         `json:"status_info,omitempty"`
	Params     WorkloadParams `json:"params"`
	CreateTime time.Time      `json:"create_time"`
	BeginTime  *time.Time     `json:"begin_time,omitempty"`
	EndTime    *time.Time     `json:"end_time,omitempty"`
}

// NewRun creates a pending run.
func NewRun(runUUID string, params WorkloadParams) *Run {
	return &Run{
		RunUUID:    runUUID,
		Status:     RunStatusPending,
		Params:     params,
		CreateTime: time.Now(),
	}
}

// Start marks the run as running at now.
func (r *Run) Start(now time.Time) {
	r.Status = RunStatusRunning
	r.BeginTime = &now
}

// Finish marks the run completed, or failed when err is non-nil.
func (r *Run) Finish(now time.Time, err error) {
	r.EndTime = &now
	if err != nil {
		r.Status = RunStatusFailed
		r.StatusInfo = err.Error()
		return
	}
	r.Status = RunStatusCompleted
}

// IsFinished returns true once the run has completed or failed.
func (r *Run) IsFinished() bool {
	return r.Status == RunStatusCompleted || r.Status == RunStatusFailed
}

// Duration returns the wall time between start and finish, or 0 if the run
// has not both started and finished.
func (r *Run) Duration() time.Duration {
	if r.BeginTime == nil || r.EndTime == nil {
		return 0
	}
	return r.EndTime.Sub(*r.BeginTime)
}
