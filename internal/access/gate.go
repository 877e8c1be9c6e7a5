package access

import (
	"context"
	"errors"
	"fmt"

	"github.com/solarops/solarops/internal/identity"
	"github.com/solarops/solarops/internal/modules"
	"github.com/solarops/solarops/internal/records"
)

var (
	ErrUnauthenticated = errors.New("authentication required")
	ErrModuleDenied    = errors.New("module access denied")
	// ErrUnknownModule is returned for ids missing from the registry.
	ErrUnknownModule = modules.ErrUnknownModule
)

// Decision represents the result of a module gate check.
type Decision struct {
	Allowed bool   `json:"allowed"`
	Reason  string `json:"reason,omitempty"`
}

// Gate applies the policy to the module registry. Every data path enters
// a module through a Gate before loading records.
type Gate struct {
	registry *modules.Registry
}

func NewGate(registry *modules.Registry) *Gate {
	return &Gate{registry: registry}
}

// Check evaluates module entry without returning an error.
func (g *Gate) Check(id *identity.Identity, moduleID modules.ID) Decision {
	_, err := g.Enter(id, moduleID)
	if err != nil {
		return Decision{Allowed: false, Reason: err.Error()}
	}
	return Decision{Allowed: true}
}

// Enter returns the module if id may open it.
func (g *Gate) Enter(id *identity.Identity, moduleID modules.ID) (modules.Module, error) {
	m, err := g.registry.Lookup(moduleID)
	if err != nil {
		return modules.Module{}, err
	}
	if id == nil {
		return modules.Module{}, ErrUnauthenticated
	}
	if !CanAccessModule(id, m.AllowedDepartments) {
		return modules.Module{}, fmt.Errorf("%w: department %s may not open %s", ErrModuleDenied, id.Department, m.ID)
	}
	return m, nil
}

// Modules lists the modules id may open, in navigation order.
func (g *Gate) Modules(id *identity.Identity) []modules.Module {
	if id == nil {
		return nil
	}
	return g.registry.Visible(func(m modules.Module) bool {
		return CanAccessModule(id, m.AllowedDepartments)
	})
}

// Visible applies the row scope of m to one record. It assumes the module
// has already been entered.
func Visible(id *identity.Identity, m modules.Module, rec records.Owned) bool {
	if id == nil {
		return false
	}

	switch m.Scope {
	case modules.ScopeModule:
		return true
	case modules.ScopeOwner:
		owners := rec.OwnerIDs()
		if len(owners) == 0 {
			return CanAccessRecord(id, "")
		}
		for _, owner := range owners {
			if CanAccessRecord(id, owner) {
				return true
			}
		}
		return false
	case modules.ScopeSelfService:
		if CanAccessModule(id, m.FullViewDepartments) {
			return true
		}
		for _, owner := range rec.OwnerIDs() {
			if owner != "" && owner == id.ID {
				return true
			}
		}
		return false
	default:
		return false
	}
}

// Filter keeps the records of items that id may see inside m.
func Filter[T records.Owned](id *identity.Identity, m modules.Module, items []T) []T {
	out := make([]T, 0, len(items))
	for _, item := range items {
		if Visible(id, m, item) {
			out = append(out, item)
		}
	}
	return out
}

// Lister loads every record of one kind.
type Lister[T records.Owned] interface {
	List(ctx context.Context) ([]T, error)
}

// Getter loads one record by id.
type Getter[T records.Owned] interface {
	Get(ctx context.Context, id string) (T, error)
}

// List enters moduleID, loads the records from source and filters them.
// Nothing is loaded when entry is refused.
func List[T records.Owned](ctx context.Context, g *Gate, id *identity.Identity, moduleID modules.ID, source Lister[T]) ([]T, error) {
	m, err := g.Enter(id, moduleID)
	if err != nil {
		return nil, err
	}
	items, err := source.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading %s records: %w", m.ID, err)
	}
	return Filter(id, m, items), nil
}

// Get enters moduleID and loads one record. A record id may not see is
// reported as records.ErrNotFound so callers cannot test for existence.
func Get[T records.Owned](ctx context.Context, g *Gate, id *identity.Identity, moduleID modules.ID, source Getter[T], recordID string) (T, error) {
	var zero T
	m, err := g.Enter(id, moduleID)
	if err != nil {
		return zero, err
	}
	rec, err := source.Get(ctx, recordID)
	if err != nil {
		return zero, err
	}
	if !Visible(id, m, rec) {
		return zero, fmt.Errorf("%w: %s", records.ErrNotFound, recordID)
	}
	return rec, nil
}
