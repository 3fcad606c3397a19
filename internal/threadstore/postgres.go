package threadstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/soothe-labs/advicebot/internal/domain"
)

// Postgres keeps bindings in the thread_bindings table. Bindings are
// unbounded; rows are upserted by session id with updated_at
// bookkeeping.
type Postgres struct {
	db *pgxpool.Pool
}

func NewPostgres(db *pgxpool.Pool) *Postgres {
	return &Postgres{db: db}
}

func (s *Postgres) Get(ctx context.Context, sessionID string) (string, error) {
	var threadID string
	err := s.db.QueryRow(ctx,
		`SELECT thread_id FROM thread_bindings WHERE session_id = $1`,
		sessionID,
	).Scan(&threadID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", domain.ErrBindingNotFound
		}
		return "", fmt.Errorf("get binding: %w", err)
	}
	return threadID, nil
}

func (s *Postgres) Put(ctx context.Context, sessionID, threadID string) error {
	_, err := s.db.Exec(ctx,
		`INSERT INTO thread_bindings (session_id, thread_id)
		 VALUES ($1, $2)
		 ON CONFLICT (session_id)
		 DO UPDATE SET thread_id = EXCLUDED.thread_id, updated_at = now()`,
		sessionID, threadID,
	)
	if err != nil {
		return fmt.Errorf("put binding: %w", err)
	}
	return nil
}

// GetBinding returns the full binding row, for diagnostics.
func (s *Postgres) GetBinding(ctx context.Context, sessionID string) (*domain.ThreadBinding, error) {
	b := &domain.ThreadBinding{SessionID: sessionID}
	err := s.db.QueryRow(ctx,
		`SELECT thread_id, created_at, updated_at FROM thread_bindings WHERE session_id = $1`,
		sessionID,
	).Scan(&b.ThreadID, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrBindingNotFound
		}
		return nil, fmt.Errorf("get binding: %w", err)
	}
	return b, nil
}
