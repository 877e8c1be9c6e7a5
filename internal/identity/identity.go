package identity

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound          = errors.New("identity not found")
	ErrInvalidIdentity   = errors.New("invalid identity")
	ErrInvalidRoleLevel  = errors.New("invalid role level")
	ErrInvalidDepartment = errors.New("invalid department")
	ErrDuplicateHandle   = errors.New("handle already exists in directory")
	ErrDuplicateID       = errors.New("id already exists in directory")
)

// RoleLevel is the hierarchical rank of an identity. EXECUTIVE dominates
// every other level; MANAGER and STAFF only differ at record level.
type RoleLevel string

const (
	RoleExecutive RoleLevel = "EXECUTIVE"
	RoleManager   RoleLevel = "MANAGER"
	RoleStaff     RoleLevel = "STAFF"
)

var roleLabels = map[RoleLevel]string{
	RoleExecutive: "Ban Điều Hành",
	RoleManager:   "Quản Lý",
	RoleStaff:     "Nhân Viên",
}

// RoleLevels returns every role level, highest rank first.
func RoleLevels() []RoleLevel {
	return []RoleLevel{RoleExecutive, RoleManager, RoleStaff}
}

func (r RoleLevel) Valid() bool {
	_, ok := roleLabels[r]
	return ok
}

// Label returns the human label shown next to the user's name.
func (r RoleLevel) Label() string {
	return roleLabels[r]
}

// ParseRoleLevel parses a role level case-insensitively.
func ParseRoleLevel(s string) (RoleLevel, error) {
	r := RoleLevel(strings.ToUpper(strings.TrimSpace(s)))
	if !r.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidRoleLevel, s)
	}
	return r, nil
}

// Department is the organizational unit an identity belongs to.
type Department string

const (
	DeptBoard     Department = "BOARD"
	DeptSales     Department = "SALES"
	DeptTechnical Department = "TECHNICAL"
	DeptFinance   Department = "FINANCE"
	DeptHR        Department = "HR"
	DeptWarehouse Department = "WAREHOUSE"
)

var departmentLabels = map[Department]string{
	DeptBoard:     "Ban Giám Đốc",
	DeptSales:     "Kinh Doanh",
	DeptTechnical: "Kỹ Thuật",
	DeptFinance:   "Tài Chính",
	DeptHR:        "Nhân Sự",
	DeptWarehouse: "Kho",
}

func (d Department) Valid() bool {
	_, ok := departmentLabels[d]
	return ok
}

func (d Department) Label() string {
	return departmentLabels[d]
}

// ParseDepartment parses a department case-insensitively.
func ParseDepartment(s string) (Department, error) {
	d := Department(strings.ToUpper(strings.TrimSpace(s)))
	if !d.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidDepartment, s)
	}
	return d, nil
}

// Departments is an ordered set of departments.
type Departments []Department

// AllDepartments lists every department. Modules visible to everyone must
// declare this set explicitly; an empty set admits executives only.
func AllDepartments() Departments {
	return Departments{DeptBoard, DeptSales, DeptTechnical, DeptFinance, DeptHR, DeptWarehouse}
}

func (ds Departments) Contains(d Department) bool {
	for _, candidate := range ds {
		if candidate == d {
			return true
		}
	}
	return false
}

func (ds Departments) Strings() []string {
	out := make([]string, len(ds))
	for i, d := range ds {
		out[i] = string(d)
	}
	return out
}

// Identity is an authenticated actor. It is immutable once issued.
type Identity struct {
	ID          string     `json:"id"`
	Handle      string     `json:"handle"`
	DisplayName string     `json:"displayName"`
	RoleLevel   RoleLevel  `json:"roleLevel"`
	Department  Department `json:"department"`
	Avatar      string     `json:"avatar,omitempty"`
}

// Validate checks that every required field is present and that the role
// level and department belong to their closed sets.
func (i *Identity) Validate() error {
	if i == nil {
		return fmt.Errorf("%w: nil identity", ErrInvalidIdentity)
	}
	if strings.TrimSpace(i.ID) == "" {
		return fmt.Errorf("%w: id is required", ErrInvalidIdentity)
	}
	if strings.TrimSpace(i.Handle) == "" {
		return fmt.Errorf("%w: handle is required", ErrInvalidIdentity)
	}
	if !i.RoleLevel.Valid() {
		return fmt.Errorf("%w: %w: %q", ErrInvalidIdentity, ErrInvalidRoleLevel, i.RoleLevel)
	}
	if !i.Department.Valid() {
		return fmt.Errorf("%w: %w: %q", ErrInvalidIdentity, ErrInvalidDepartment, i.Department)
	}
	return nil
}

// RoleLabel renders "<level> - <department>" for display.
func (i *Identity) RoleLabel() string {
	if i == nil {
		return ""
	}
	return i.RoleLevel.Label() + " - " + i.Department.Label()
}
