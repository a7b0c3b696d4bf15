package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"research-machine/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// CreateResearchRun creates a new research run record
func (r *Repository) CreateResearchRun(ctx context.Context, run *models.ResearchRun) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO research_runs (id, analyzer, ticker, status, started_at)
		VALUES ($1, $2, $3, $4, $5)
	`, run.ID, run.Analyzer, run.Ticker, run.Status, run.StartedAt)

	if err != nil {
		return fmt.Errorf("failed to create research run: %w", err)
	}

	return nil
}

// UpdateResearchRun updates an existing research run with its outcome
func (r *Repository) UpdateResearchRun(ctx context.Context, run *models.ResearchRun) error {
	var report []byte
	if run.Report != nil {
		data, err := json.Marshal(run.Report)
		if err != nil {
			return fmt.Errorf("failed to marshal report: %w", err)
		}
		report = data
	}

	_, err := r.db.Exec(ctx, `
		UPDATE research_runs
		SET status = $2, report = $3, error_message = $4, duration_ms = $5, completed_at = $6
		WHERE id = $1
	`, run.ID, run.Status, report, run.ErrorMessage, run.DurationMs, run.CompletedAt)

	if err != nil {
		return fmt.Errorf("failed to update research run: %w", err)
	}

	return nil
}

// GetResearchRun returns a single research run by ID
func (r *Repository) GetResearchRun(ctx context.Context, id uuid.UUID) (*models.ResearchRun, error) {
	row := r.db.QueryRow(ctx, `
		SELECT id, analyzer, ticker, status, report, error_message, duration_ms, started_at, completed_at
		FROM research_runs WHERE id = $1
	`, id)

	run, err := scanResearchRun(row)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query research run: %w", err)
	}

	return run, nil
}

// GetResearchRuns returns research runs, optionally filtered by ticker,
// newest first
func (r *Repository) GetResearchRuns(ctx context.Context, ticker string, limit int) ([]models.ResearchRun, error) {
	if limit <= 0 {
		limit = 50
	}

	var rows pgx.Rows
	var err error

	if ticker == "" {
		rows, err = r.db.Query(ctx, `
			SELECT id, analyzer, ticker, status, report, error_message, duration_ms, started_at, completed_at
			FROM research_runs
			ORDER BY started_at DESC
			LIMIT $1
		`, limit)
	} else {
		rows, err = r.db.Query(ctx, `
			SELECT id, analyzer, ticker, status, report, error_message, duration_ms, started_at, completed_at
			FROM research_runs
			WHERE ticker = $1
			ORDER BY started_at DESC
			LIMIT $2
		`, ticker, limit)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to query research runs: %w", err)
	}
	defer rows.Close()

	var runs []models.ResearchRun
	for rows.Next() {
		run, err := scanResearchRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan research run: %w", err)
		}
		runs = append(runs, *run)
	}

	return runs, nil
}

// scanResearchRun reads one research run from a row
func scanResearchRun(row pgx.Row) (*models.ResearchRun, error) {
	var run models.ResearchRun
	var report []byte
	var errorMessage *string
	var durationMs *int

	err := row.Scan(&run.ID, &run.Analyzer, &run.Ticker, &run.Status, &report,
		&errorMessage, &durationMs, &run.StartedAt, &run.CompletedAt)
	if err != nil {
		return nil, err
	}

	if errorMessage != nil {
		run.ErrorMessage = *errorMessage
	}
	if durationMs != nil {
		run.DurationMs = *durationMs
	}
	if report != nil {
		var parsed models.CompositeReport
		if err := json.Unmarshal(report, &parsed); err != nil {
			return nil, fmt.Errorf("failed to unmarshal report: %w", err)
		}
		run.Report = &parsed
	}

	return &run, nil
}
