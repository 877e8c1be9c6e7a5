// Package records defines the business records shown by the dashboard and
// the repositories that store them. Stores know nothing about access
// control; callers filter through the access gate.
package records

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("record already exists")
	ErrMissingID = errors.New("record id is required")
)

// Owned is implemented by every stored record. OwnerIDs is empty for
// records that do not take part in row-level filtering.
type Owned interface {
	RecordID() string
	OwnerIDs() []string
}

// Repository stores one kind of record.
type Repository[T Owned] interface {
	Create(ctx context.Context, rec T) (T, error)
	Get(ctx context.Context, id string) (T, error)
	List(ctx context.Context) ([]T, error)
	Update(ctx context.Context, rec T) (T, error)
}

// NewID returns a fresh record id with the given prefix, e.g. "L-3f0c...".
func NewID(prefix string) string {
	id := uuid.NewString()
	if prefix == "" {
		return id
	}
	return prefix + "-" + id
}

func owners(ids ...string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if strings.TrimSpace(id) != "" {
			out = append(out, id)
		}
	}
	return out
}
