package model

import (
	"time"
)

// Severity grades a suggestion.
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// Suggestion represents a tuning or maintenance hint derived from a report.
type Suggestion struct {
	ID         int64     `json:"id,omitempty"`
	RunUUID    string    `json:"run_id,omitempty"`
	Rule       string    `json:"rule"`
	Severity   Severity  `json:"severity"`
	Suggestion string    `json:"suggestion"`
	Target     string    `json:"target,omitempty"`
	CreatedAt  time.Time `json:"created_at,omitempty"`
}

// SuggestionBuilder helps build suggestions with a fluent interface.
type SuggestionBuilder struct {
	suggestion Suggestion
}

// NewSuggestionBuilder creates a new SuggestionBuilder.
func NewSuggestionBuilder() *SuggestionBuilder {
	return &SuggestionBuilder{
		suggestion: Suggestion{
			Severity:  SeverityInfo,
			CreatedAt: time.Now(),
		},
	}
}

// WithRunUUID sets the run UUID.
func (b *SuggestionBuilder) WithRunUUID(runUUID string) *SuggestionBuilder {
	b.suggestion.RunUUID = runUUID
	return b
}

// WithRule sets the name of the rule that produced the suggestion.
func (b *SuggestionBuilder) WithRule(rule string) *SuggestionBuilder {
	b.suggestion.Rule = rule
	return b
}

// WithSeverity sets the severity.
func (b *SuggestionBuilder) WithSeverity(severity Severity) *SuggestionBuilder {
	b.suggestion.Severity = severity
	return b
}

// WithSuggestion sets the suggestion text.
func (b *SuggestionBuilder) WithSuggestion(text string) *SuggestionBuilder {
	b.suggestion.Suggestion = text
	return b
}

// WithTarget sets what the suggestion is about, such as a type name.
func (b *SuggestionBuilder) WithTarget(target string) *SuggestionBuilder {
	b.suggestion.Target = target
	return b
}

// Build returns the built Suggestion.
func (b *SuggestionBuilder) Build() Suggestion {
	return b.suggestion
}

// IsEmpty returns true if the suggestion text is empty.
func (s *Suggestion) IsEmpty() bool {
	return s.Suggestion == ""
}
