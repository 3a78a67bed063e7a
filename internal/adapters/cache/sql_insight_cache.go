package cache

import (
	"context"
	"database/sql"
	"errors"
	"flight-market-service/internal/platform/db"
	"flight-market-service/internal/platform/obs"
	"fmt"
	"time"
)

// SQLInsightCache stores generated narratives keyed by prompt digest, so an
// unchanged dataset does not trigger a second LLM call.
type SQLInsightCache struct {
	DB      *sql.DB
	Dialect db.Dialect
	now     func() time.Time
}

func NewSQLInsightCache(conn *sql.DB, dialect db.Dialect) *SQLInsightCache {
	return &SQLInsightCache{DB: conn, Dialect: dialect, now: time.Now}
}

func (s *SQLInsightCache) Get(ctx context.Context, digest string) (_ string, _ bool, err error) {
	defer obs.Time(ctx, "insight.cache.Get")(&err)

	if s.DB == nil {
		return "", false, errors.New("insight cache: db is nil")
	}

	var narrative string
	err = s.DB.QueryRowContext(ctx,
		db.Rebind(s.Dialect, `SELECT narrative FROM insight_cache WHERE digest = ?;`),
		digest,
	).Scan(&narrative)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get insight cache: %w", err)
	}

	return narrative, true, nil
}

func (s *SQLInsightCache) Put(ctx context.Context, digest string, narrative string) error {
	if s.DB == nil {
		return errors.New("insight cache: db is nil")
	}

	if digest == "" {
		return errors.New("insert insight cache: digest must not be empty")
	}

	q := db.Rebind(s.Dialect, `
	INSERT INTO insight_cache (digest, narrative, created_at)
	VALUES (?, ?, ?)
	ON CONFLICT (digest) DO UPDATE
	SET narrative = excluded.narrative,
		created_at = excluded.created_at;
	`)
	if _, err := s.DB.ExecContext(ctx, q, digest, narrative, s.now().UTC().Format(time.RFC3339Nano)); err != nil {
		return fmt.Errorf("insert insight cache digest=%s: %w", digest, err)
	}

	return nil
}
