package model

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunStatus_String(t *testing.T) {
	tests := []struct {
		status   RunStatus
		expected string
	}{
		{RunStatusPending, "pending"},
		{RunStatusRunning, "running"},
		{RunStatusCompleted, "completed"},
		{RunStatusFailed, "failed"},
		{RunStatus(99), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.status.String())
		})
	}
}

func TestRun_Lifecycle(t *testing.T) {
	params := WorkloadParams{Producers: 4, Objects: 100, Types: 3, RetainRatio: 0.5}
	run := NewRun("run-1", params)

	assert.Equal(t, RunStatusPending, run.Status)
	assert.Equal(t, params, run.Params)
	assert.False(t, run.IsFinished())
	assert.Zero(t, run.Duration())

	start := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	run.Start(start)
	assert.Equal(t, RunStatusRunning, run.Status)
	assert.False(t, run.IsFinished())

	run.Finish(start.Add(3*time.Second), nil)
	assert.Equal(t, RunStatusCompleted, run.Status)
	assert.True(t, run.IsFinished())
	assert.Equal(t, 3*time.Second, run.Duration())
}

func TestRun_FinishWithError(t *testing.T) {
	run := NewRun("run-2", WorkloadParams{})
	run.Start(time.Now())
	run.Finish(time.Now(), errors.New("producer failed"))

	assert.Equal(t, RunStatusFailed, run.Status)
	assert.Equal(t, "producer failed", run.StatusInfo)
	assert.True(t, run.IsFinished())
}

func TestStateCounts(t *testing.T) {
	c := StateCounts{Live: 6, Hollow: 2, Orphan: 2}
	assert.Equal(t, 10, c.Total())
	assert.InDelta(t, 0.2, c.OrphanRatio(), 1e-9)
	assert.Zero(t, StateCounts{}.OrphanRatio())
}

func TestPopulationReport_Healthy(t *testing.T) {
	r := NewPopulationReport("run-3")
	require.NotNil(t, r.TopTypes)
	assert.False(t, r.GeneratedAt.IsZero())
	assert.True(t, r.Healthy())

	r.Suggestions = append(r.Suggestions, Suggestion{Severity: SeverityWarning})
	assert.True(t, r.Healthy())

	r.Suggestions = append(r.Suggestions, Suggestion{Severity: SeverityCritical})
	assert.False(t, r.Healthy())

	r.Suggestions = nil
	r.VerifyError = "size mismatch"
	assert.False(t, r.Healthy())
}

func TestMaintenanceReport_Changed(t *testing.T) {
	assert.False(t, (&MaintenanceReport{SlotLengthBefore: 1024, SlotLengthAfter: 1024}).Changed())
	assert.True(t, (&MaintenanceReport{Swept: 1}).Changed())
	assert.True(t, (&MaintenanceReport{SlotLengthBefore: 2048, SlotLengthAfter: 1024}).Changed())
}
