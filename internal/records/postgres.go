package records

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/solarops/solarops/internal/platform/database"
)

const uniqueViolation = "23505"

// Schema creates the shared records table. Every kind lives in the same
// table; the body column holds the JSON form of the record.
const Schema = `
CREATE TABLE IF NOT EXISTS records (
	kind       TEXT        NOT NULL,
	id         TEXT        NOT NULL,
	owner_ids  TEXT[]      NOT NULL DEFAULT '{}',
	body       JSONB       NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (kind, id)
);
CREATE INDEX IF NOT EXISTS records_owner_ids_idx ON records USING GIN (owner_ids);
`

// EnsureSchema applies Schema. It is idempotent.
func EnsureSchema(ctx context.Context, q database.Querier) error {
	if _, err := q.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("creating records schema: %w", err)
	}
	return nil
}

// PostgresRepository stores one record kind in the shared records table.
type PostgresRepository[T Owned] struct {
	q    database.Querier
	kind Kind
}

func NewPostgresRepository[T Owned](q database.Querier, kind Kind) *PostgresRepository[T] {
	return &PostgresRepository[T]{q: q, kind: kind}
}

func (r *PostgresRepository[T]) Create(ctx context.Context, rec T) (T, error) {
	var zero T
	if rec.RecordID() == "" {
		return zero, ErrMissingID
	}
	body, err := json.Marshal(rec)
	if err != nil {
		return zero, fmt.Errorf("encoding %s: %w", r.kind, err)
	}

	_, err = r.q.Exec(ctx,
		`INSERT INTO records (kind, id, owner_ids, body) VALUES ($1, $2, $3, $4)`,
		string(r.kind), rec.RecordID(), ownerArray(rec), body,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return zero, fmt.Errorf("%w: %s", ErrDuplicate, rec.RecordID())
		}
		return zero, fmt.Errorf("creating %s: %w", r.kind, err)
	}
	return rec, nil
}

func (r *PostgresRepository[T]) Get(ctx context.Context, id string) (T, error) {
	var zero T
	var body []byte
	err := r.q.QueryRow(ctx,
		`SELECT body FROM records WHERE kind = $1 AND id = $2`,
		string(r.kind), id,
	).Scan(&body)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return zero, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return zero, fmt.Errorf("getting %s: %w", r.kind, err)
	}
	return r.decode(body)
}

func (r *PostgresRepository[T]) List(ctx context.Context) ([]T, error) {
	rows, err := r.q.Query(ctx,
		`SELECT body FROM records WHERE kind = $1 ORDER BY created_at, id`,
		string(r.kind),
	)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", r.kind, err)
	}
	defer rows.Close()

	var out []T
	for rows.Next() {
		var body []byte
		if err := rows.Scan(&body); err != nil {
			return nil, fmt.Errorf("scanning %s: %w", r.kind, err)
		}
		rec, err := r.decode(body)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (r *PostgresRepository[T]) Update(ctx context.Context, rec T) (T, error) {
	var zero T
	body, err := json.Marshal(rec)
	if err != nil {
		return zero, fmt.Errorf("encoding %s: %w", r.kind, err)
	}

	tag, err := r.q.Exec(ctx,
		`UPDATE records SET owner_ids = $3, body = $4, updated_at = now()
		 WHERE kind = $1 AND id = $2`,
		string(r.kind), rec.RecordID(), ownerArray(rec), body,
	)
	if err != nil {
		return zero, fmt.Errorf("updating %s: %w", r.kind, err)
	}
	if tag.RowsAffected() == 0 {
		return zero, fmt.Errorf("%w: %s", ErrNotFound, rec.RecordID())
	}
	return rec, nil
}

func (r *PostgresRepository[T]) decode(body []byte) (T, error) {
	var rec T
	if err := json.Unmarshal(body, &rec); err != nil {
		return rec, fmt.Errorf("decoding %s: %w", r.kind, err)
	}
	return rec, nil
}

func ownerArray(rec Owned) []string {
	ids := rec.OwnerIDs()
	if ids == nil {
		return []string{}
	}
	return ids
}
