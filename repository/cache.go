package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
)

// GetCachedData loads the cached payload for a ticker and data type into out.
// It returns false when there is no unexpired entry.
func (r *Repository) GetCachedData(ctx context.Context, ticker, dataType string, out interface{}) (bool, error) {
	var data []byte

	// Let the database handle expiry check to avoid timezone issues
	err := r.pool.QueryRow(ctx, `
		SELECT data FROM market_data_cache
		WHERE ticker = $1 AND data_type = $2 AND expires_at > NOW()
	`, ticker, dataType).Scan(&data)

	if err == pgx.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to query cache: %w", err)
	}

	if err := json.Unmarshal(data, out); err != nil {
		return false, fmt.Errorf("failed to unmarshal cache data: %w", err)
	}

	return true, nil
}

// SetCachedData stores a payload in the cache with a TTL. The payload must
// be JSON-marshalable.
func (r *Repository) SetCachedData(ctx context.Context, ticker, dataType string, data interface{}, ttl time.Duration) error {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal cache data: %w", err)
	}

	_, err = r.pool.Exec(ctx, `
		INSERT INTO market_data_cache (ticker, data_type, data, expires_at)
		VALUES ($1, $2, $3, NOW() + $4::interval)
		ON CONFLICT (ticker, data_type)
		DO UPDATE SET data = EXCLUDED.data, expires_at = NOW() + $4::interval, created_at = NOW()
	`, ticker, dataType, jsonData, ttl.String())

	if err != nil {
		return fmt.Errorf("failed to set cache: %w", err)
	}

	return nil
}

// InvalidateCache removes cached data for a ticker and data type
func (r *Repository) InvalidateCache(ctx context.Context, ticker, dataType string) error {
	_, err := r.pool.Exec(ctx, `
		DELETE FROM market_data_cache WHERE ticker = $1 AND data_type = $2
	`, ticker, dataType)

	if err != nil {
		return fmt.Errorf("failed to invalidate cache: %w", err)
	}

	return nil
}

// InvalidateAllCacheForTicker removes all cached data for a ticker
func (r *Repository) InvalidateAllCacheForTicker(ctx context.Context, ticker string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM market_data_cache WHERE ticker = $1`, ticker)
	if err != nil {
		return fmt.Errorf("failed to invalidate cache: %w", err)
	}
	return nil
}

// CleanExpiredCache removes all expired cache entries
func (r *Repository) CleanExpiredCache(ctx context.Context) (int64, error) {
	result, err := r.pool.Exec(ctx, `DELETE FROM market_data_cache WHERE expires_at < NOW()`)
	if err != nil {
		return 0, fmt.Errorf("failed to clean expired cache: %w", err)
	}
	return result.RowsAffected(), nil
}
