package sale

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/loomhouse/fabricdesk/internal/platform/db"
)

// PGJournal persists journal entries in PostgreSQL.
type PGJournal struct {
	pool *pgxpool.Pool
}

// NewPGJournal constructs the journal.
func NewPGJournal(pool *pgxpool.Pool) *PGJournal {
	return &PGJournal{pool: pool}
}

// EnsureSchema creates the journal table when missing.
func (j *PGJournal) EnsureSchema(ctx context.Context) error {
	return db.InTx(ctx, j.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `CREATE TABLE IF NOT EXISTS sale_commit_journal (
	key TEXT PRIMARY KEY,
	scope TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL
)`); err != nil {
			return err
		}
		_, err := tx.Exec(ctx, `CREATE INDEX IF NOT EXISTS sale_commit_journal_scope_idx ON sale_commit_journal (scope)`)
		return err
	})
}

func (j *PGJournal) Applied(ctx context.Context, key string) (bool, error) {
	var exists bool
	err := j.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM sale_commit_journal WHERE key=$1)`, key).Scan(&exists)
	return exists, err
}

// Record inserts the key. A key already present counts as recorded.
func (j *PGJournal) Record(ctx context.Context, scope, key string) error {
	_, err := j.pool.Exec(ctx, `INSERT INTO sale_commit_journal (key, scope, created_at) VALUES ($1, $2, $3)`, key, scope, time.Now())
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil
		}
		return err
	}
	return nil
}

func (j *PGJournal) Forget(ctx context.Context, scope string) error {
	_, err := j.pool.Exec(ctx, `DELETE FROM sale_commit_journal WHERE scope=$1`, scope)
	return err
}

// Cleanup removes entries older than retention, left behind by abandoned sales.
func (j *PGJournal) Cleanup(ctx context.Context, olderThan time.Duration) error {
	cutoff := time.Now().Add(-olderThan)
	_, err := j.pool.Exec(ctx, `DELETE FROM sale_commit_journal WHERE created_at < $1`, cutoff)
	return err
}
