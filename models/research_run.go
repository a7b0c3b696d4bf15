package models

import (
	"time"

	"github.com/google/uuid"
)

// ResearchRun records one ticker analysis for run history.
type ResearchRun struct {
	ID           uuid.UUID         `json:"id"`
	Ticker       string            `json:"ticker"`
	Analyzer     string            `json:"analyzer"`
	Status       ResearchRunStatus `json:"status"`
	Report       *CompositeReport  `json:"report,omitempty"`
	ErrorMessage string            `json:"error_message,omitempty"`
	DurationMs   int               `json:"duration_ms"`
	StartedAt    time.Time         `json:"started_at"`
	CompletedAt  *time.Time        `json:"completed_at,omitempty"`
}

type ResearchRunStatus string

const (
	ResearchRunStatusRunning   ResearchRunStatus = "running"
	ResearchRunStatusCompleted ResearchRunStatus = "completed"
	ResearchRunStatusFailed    ResearchRunStatus = "failed"
)

func NewResearchRun(analyzer, ticker string) *ResearchRun {
	return &ResearchRun{
		ID:        uuid.New(),
		Ticker:    ticker,
		Analyzer:  analyzer,
		Status:    ResearchRunStatusRunning,
		StartedAt: time.Now(),
	}
}

func (r *ResearchRun) Complete(report *CompositeReport) {
	now := time.Now()
	r.CompletedAt = &now
	r.Status = ResearchRunStatusCompleted
	r.Report = report
	r.DurationMs = int(now.Sub(r.StartedAt).Milliseconds())
}

func (r *ResearchRun) Fail(err error) {
	now := time.Now()
	r.CompletedAt = &now
	r.Status = ResearchRunStatusFailed
	r.ErrorMessage = err.Error()
	r.DurationMs = int(now.Sub(r.StartedAt).Milliseconds())
}
