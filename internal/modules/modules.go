// Package modules holds the static table of navigable application modules
// and the departments permitted to open each of them.
package modules

import (
	"errors"
	"fmt"

	"github.com/solarops/solarops/internal/identity"
)

var (
	ErrUnknownModule = errors.New("unknown module")
	ErrEmptyPolicy   = errors.New("module declares no allowed departments")
)

// ID identifies a module.
type ID string

const (
	Dashboard ID = "dashboard"
	Business  ID = "business"
	Projects  ID = "projects"
	Inventory ID = "inventory"
	HR        ID = "hr"
	Finance   ID = "finance"
	Assistant ID = "assistant"
)

// Scope describes how records inside a module are filtered once the
// module gate has been passed.
type Scope int

const (
	// ScopeModule records carry no owner; module entry is the only gate.
	ScopeModule Scope = iota
	// ScopeOwner records are filtered per owner by role level.
	ScopeOwner
	// ScopeSelfService shows every row to FullViewDepartments members and
	// only the caller's own rows to everyone else.
	ScopeSelfService
)

func (s Scope) String() string {
	switch s {
	case ScopeModule:
		return "module"
	case ScopeOwner:
		return "owner"
	case ScopeSelfService:
		return "self_service"
	default:
		return fmt.Sprintf("scope(%d)", int(s))
	}
}

// Module is a registry entry. Entries are defined once and never mutated.
type Module struct {
	ID                  ID                   `json:"id"`
	Path                string               `json:"path"`
	Label               string               `json:"label"`
	AllowedDepartments  identity.Departments `json:"allowed_departments"`
	Scope               Scope                `json:"-"`
	FullViewDepartments identity.Departments `json:"-"`
}

// Registry is a read-only module table.
type Registry struct {
	modules []Module
	byID    map[ID]int
}

// NewRegistry builds a registry from the given entries, rejecting duplicate
// ids and entries with an empty allowed-department set.
func NewRegistry(entries []Module) (*Registry, error) {
	r := &Registry{
		modules: make([]Module, 0, len(entries)),
		byID:    make(map[ID]int, len(entries)),
	}
	for _, m := range entries {
		if _, ok := r.byID[m.ID]; ok {
			return nil, fmt.Errorf("duplicate module %q", m.ID)
		}
		r.byID[m.ID] = len(r.modules)
		r.modules = append(r.modules, m)
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return r, nil
}

// Validate reports configuration defects: an empty allowed set would lock
// out everyone below EXECUTIVE, and unknown departments never match.
func (r *Registry) Validate() error {
	for _, m := range r.modules {
		if len(m.AllowedDepartments) == 0 {
			return fmt.Errorf("%w: %s", ErrEmptyPolicy, m.ID)
		}
		for _, d := range m.AllowedDepartments {
			if !d.Valid() {
				return fmt.Errorf("module %s: %w: %q", m.ID, identity.ErrInvalidDepartment, d)
			}
		}
		if m.Scope == ScopeSelfService && len(m.FullViewDepartments) == 0 {
			return fmt.Errorf("module %s: self-service scope requires full-view departments", m.ID)
		}
	}
	return nil
}

// Lookup returns the module with the given id.
func (r *Registry) Lookup(id ID) (Module, error) {
	i, ok := r.byID[id]
	if !ok {
		return Module{}, fmt.Errorf("%w: %q", ErrUnknownModule, id)
	}
	return r.modules[i], nil
}

// All returns every module in navigation order.
func (r *Registry) All() []Module {
	out := make([]Module, len(r.modules))
	copy(out, r.modules)
	return out
}

// Visible returns the modules accepted by allow, in navigation order.
func (r *Registry) Visible(allow func(Module) bool) []Module {
	var out []Module
	for _, m := range r.modules {
		if allow(m) {
			out = append(out, m)
		}
	}
	return out
}

// Default returns the SolarOps module table.
func Default() *Registry {
	r, err := NewRegistry(DefaultModules())
	if err != nil {
		panic(fmt.Sprintf("default module registry: %v", err))
	}
	return r
}

func DefaultModules() []Module {
	return []Module{
		{
			ID: Dashboard, Path: "/", Label: "Tổng quan",
			AllowedDepartments: identity.AllDepartments(),
			Scope:              ScopeModule,
		},
		{
			ID: Business, Path: "/business", Label: "Kinh doanh",
			AllowedDepartments: identity.Departments{identity.DeptBoard, identity.DeptSales},
			Scope:              ScopeOwner,
		},
		{
			ID: Projects, Path: "/projects", Label: "Dự án",
			AllowedDepartments: identity.Departments{identity.DeptBoard, identity.DeptSales, identity.DeptTechnical},
			Scope:              ScopeOwner,
		},
		{
			ID: Inventory, Path: "/inventory", Label: "Kho vật tư",
			AllowedDepartments: identity.Departments{identity.DeptBoard, identity.DeptTechnical, identity.DeptWarehouse},
			Scope:              ScopeModule,
		},
		{
			ID: HR, Path: "/hr", Label: "Nhân sự",
			AllowedDepartments:  identity.AllDepartments(),
			Scope:               ScopeSelfService,
			FullViewDepartments: identity.Departments{identity.DeptBoard, identity.DeptHR},
		},
		{
			ID: Finance, Path: "/finance", Label: "Tài chính",
			AllowedDepartments: identity.Departments{identity.DeptBoard, identity.DeptFinance},
			Scope:              ScopeModule,
		},
		{
			ID: Assistant, Path: "/assistant", Label: "Trợ lý AI",
			AllowedDepartments: identity.Departments{identity.DeptBoard, identity.DeptTechnical, identity.DeptSales},
			Scope:              ScopeModule,
		},
	}
}
