package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/fleveque/stock-advisor/internal/model"
)

// LLMCallRepository handles persistence of LLM call tracking.
type LLMCallRepository interface {
	Create(ctx context.Context, call *model.LLMCall) error
	Count(ctx context.Context) (int64, error)
	CountSuccessful(ctx context.Context) (int64, error)
}

type sqliteLLMCallRepository struct {
	db *sqlx.DB
}

// NewLLMCallRepository creates a new SQLite-backed LLMCallRepository.
func NewLLMCallRepository(db *sqlx.DB) LLMCallRepository {
	return &sqliteLLMCallRepository{db: db}
}

func (r *sqliteLLMCallRepository) Create(ctx context.Context, call *model.LLMCall) error {
	result, err := r.db.NamedExecContext(ctx, `
		INSERT INTO llm_calls (provider, model, prompt_chars, success, duration_ms)
		VALUES (:provider, :model, :prompt_chars, :success, :duration_ms)
	`, call)
	if err != nil {
		return fmt.Errorf("creating llm call record: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("getting last insert id: %w", err)
	}
	call.ID = id
	return nil
}

func (r *sqliteLLMCallRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM llm_calls")
	return count, err
}

func (r *sqliteLLMCallRepository) CountSuccessful(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM llm_calls WHERE success = 1")
	return count, err
}

// RefreshRepository handles persistence of recommendation refresh cycles.
type RefreshRepository interface {
	Create(ctx context.Context, refresh *model.Refresh) error
	Count(ctx context.Context) (int64, error)
	CountFallback(ctx context.Context) (int64, error)
	LastRefreshAt(ctx context.Context) (*time.Time, error)
}

type sqliteRefreshRepository struct {
	db *sqlx.DB
}

// NewRefreshRepository creates a new SQLite-backed RefreshRepository.
func NewRefreshRepository(db *sqlx.DB) RefreshRepository {
	return &sqliteRefreshRepository{db: db}
}

func (r *sqliteRefreshRepository) Create(ctx context.Context, refresh *model.Refresh) error {
	result, err := r.db.NamedExecContext(ctx, `
		INSERT INTO refreshes (record_count, fallback, duration_ms)
		VALUES (:record_count, :fallback, :duration_ms)
	`, refresh)
	if err != nil {
		return fmt.Errorf("creating refresh record: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("getting last insert id: %w", err)
	}
	refresh.ID = id
	return nil
}

func (r *sqliteRefreshRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM refreshes")
	return count, err
}

func (r *sqliteRefreshRepository) CountFallback(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM refreshes WHERE fallback = 1")
	return count, err
}

// LastRefreshAt returns the time of the most recent refresh, or nil if none
// has been recorded yet.
func (r *sqliteRefreshRepository) LastRefreshAt(ctx context.Context) (*time.Time, error) {
	var last sql.NullTime
	err := r.db.GetContext(ctx, &last, "SELECT created_at FROM refreshes ORDER BY id DESC LIMIT 1")
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting last refresh time: %w", err)
	}
	if !last.Valid {
		return nil, nil
	}
	t := last.Time
	return &t, nil
}
