package repository

import (
	"context"
	"time"

	"research-machine/models"

	"github.com/google/uuid"
)

// RepositoryInterface defines all repository operations
type RepositoryInterface interface {
	// Health and lifecycle
	Close()
	Health(ctx context.Context) error

	// Research runs
	CreateResearchRun(ctx context.Context, run *models.ResearchRun) error
	UpdateResearchRun(ctx context.Context, run *models.ResearchRun) error
	GetResearchRun(ctx context.Context, id uuid.UUID) (*models.ResearchRun, error)
	GetResearchRuns(ctx context.Context, ticker string, limit int) ([]models.ResearchRun, error)

	// Cache
	GetCachedData(ctx context.Context, ticker, dataType string, out interface{}) (bool, error)
	SetCachedData(ctx context.Context, ticker, dataType string, data interface{}, ttl time.Duration) error
	InvalidateCache(ctx context.Context, ticker, dataType string) error
	InvalidateAllCacheForTicker(ctx context.Context, ticker string) error
	CleanExpiredCache(ctx context.Context) (int64, error)
}

// Compile-time interface verification
var _ RepositoryInterface = (*Repository)(nil)
