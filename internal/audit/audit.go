// Package audit keeps a trail of record changes made through the API.
package audit

import (
	"context"
	"time"
)

// Event represents a single auditable action.
type Event struct {
	ActorID  string // empty for system events
	Action   string // e.g. "record.created"
	Module   string
	RecordID string
	Metadata map[string]any
	Source   string // "api", "system"
	At       time.Time
}

const (
	ActionRecordCreated = "record.created"
	ActionRecordUpdated = "record.updated"
)

const (
	MetadataRequestID = "request_id"
	MetadataKind      = "kind"
)

const SourceAPI = "api"

// Logger is the audit logging interface. Log is fire-and-forget.
type Logger interface {
	Log(ctx context.Context, event Event)
	Close() error
}

// NopLogger is a no-op audit logger for testing and when audit is disabled.
type NopLogger struct{}

func (NopLogger) Log(context.Context, Event) {}
func (NopLogger) Close() error               { return nil }
