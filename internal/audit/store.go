package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/solarops/solarops/internal/platform/database"
)

// Schema creates the audit_events table.
const Schema = `
CREATE TABLE IF NOT EXISTS audit_events (
	id         UUID        PRIMARY KEY,
	actor_id   TEXT,
	action     TEXT        NOT NULL,
	module     TEXT,
	record_id  TEXT,
	metadata   JSONB,
	source     TEXT        NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS audit_events_created_at_idx ON audit_events (created_at DESC);
`

// Store handles audit event persistence in Postgres.
type Store struct {
	db database.Querier
}

func NewStore(db database.Querier) *Store {
	return &Store{db: db}
}

// EnsureSchema applies Schema. It is idempotent.
func EnsureSchema(ctx context.Context, q database.Querier) error {
	if _, err := q.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("creating audit schema: %w", err)
	}
	return nil
}

// InsertBatch writes a batch of events to the database.
func (s *Store) InsertBatch(ctx context.Context, events []Event) error {
	if len(events) == 0 {
		return nil
	}
	sql, args, err := buildBatchInsert(events)
	if err != nil {
		return fmt.Errorf("building batch insert: %w", err)
	}
	if _, err := s.db.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("inserting audit events: %w", err)
	}
	return nil
}

func buildBatchInsert(events []Event) (string, []any, error) {
	const cols = "(id, actor_id, action, module, record_id, metadata, source, created_at)"
	const width = 8
	placeholders := make([]string, 0, len(events))
	args := make([]any, 0, len(events)*width)

	for i, e := range events {
		base := i * width
		ph := make([]string, width)
		for j := range ph {
			ph[j] = fmt.Sprintf("$%d", base+j+1)
		}
		placeholders = append(placeholders, "("+strings.Join(ph, ", ")+")")

		var metaJSON []byte
		if e.Metadata != nil {
			var err error
			metaJSON, err = json.Marshal(e.Metadata)
			if err != nil {
				return "", nil, fmt.Errorf("marshaling metadata: %w", err)
			}
		}
		at := e.At
		if at.IsZero() {
			at = time.Now().UTC()
		}

		args = append(args, uuid.New(), nullable(e.ActorID), e.Action, nullable(e.Module), nullable(e.RecordID), metaJSON, e.Source, at)
	}

	sql := fmt.Sprintf("INSERT INTO audit_events %s VALUES %s", cols, strings.Join(placeholders, ", "))
	return sql, args, nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// ListEventsParams defines filters for querying audit events.
type ListEventsParams struct {
	Action  *string
	ActorID *string
	Module  *string
	After   *time.Time
	Before  *time.Time
	Limit   int
}

// StoredEvent is an event read back from the database.
type StoredEvent struct {
	ID        uuid.UUID       `json:"id"`
	ActorID   *string         `json:"actor_id"`
	Action    string          `json:"action"`
	Module    *string         `json:"module"`
	RecordID  *string         `json:"record_id"`
	Metadata  json.RawMessage `json:"metadata"`
	Source    string          `json:"source"`
	CreatedAt time.Time       `json:"created_at"`
}

// List returns events matching p, newest first.
func (s *Store) List(ctx context.Context, p ListEventsParams) ([]StoredEvent, error) {
	sql, args := buildListQuery(p)
	rows, err := s.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("querying audit events: %w", err)
	}
	defer rows.Close()

	events := []StoredEvent{}
	for rows.Next() {
		var e StoredEvent
		if err := rows.Scan(&e.ID, &e.ActorID, &e.Action, &e.Module, &e.RecordID, &e.Metadata, &e.Source, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning audit event: %w", err)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

func buildListQuery(p ListEventsParams) (string, []any) {
	var conditions []string
	var args []any
	argN := 1

	add := func(expr string, v any) {
		conditions = append(conditions, fmt.Sprintf(expr, argN))
		args = append(args, v)
		argN++
	}
	if p.Action != nil {
		add("action = $%d", *p.Action)
	}
	if p.ActorID != nil {
		add("actor_id = $%d", *p.ActorID)
	}
	if p.Module != nil {
		add("module = $%d", *p.Module)
	}
	if p.After != nil {
		add("created_at > $%d", *p.After)
	}
	if p.Before != nil {
		add("created_at < $%d", *p.Before)
	}

	where := ""
	if len(conditions) > 0 {
		where = "WHERE " + strings.Join(conditions, " AND ")
	}
	sql := fmt.Sprintf(
		`SELECT id, actor_id, action, module, record_id, metadata, source, created_at
		FROM audit_events
		%s
		ORDER BY created_at DESC
		LIMIT $%d`,
		where, argN,
	)
	args = append(args, p.Limit)

	return sql, args
}
