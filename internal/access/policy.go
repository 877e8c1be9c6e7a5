// Package access decides what the current identity may open and see.
//
// Two pure functions carry the policy. CanAccessModule gates entry to a
// module by department, with executives bypassing the gate. CanAccessRecord
// discriminates by role level once a module has been entered: executives
// and managers see every record, staff see only their own. Neither function
// touches the session or the directory.
package access

import "github.com/solarops/solarops/internal/identity"

// CanAccessModule reports whether id may enter a module restricted to
// required. An empty required set admits executives only.
func CanAccessModule(id *identity.Identity, required identity.Departments) bool {
	if id == nil {
		return false
	}
	if id.RoleLevel == identity.RoleExecutive {
		return true
	}
	return required.Contains(id.Department)
}

// CanAccessRecord reports whether id may see a record owned by ownerID
// inside a module it has already entered. The empty string is an absent
// owner and never matches.
func CanAccessRecord(id *identity.Identity, ownerID string) bool {
	if id == nil {
		return false
	}
	switch id.RoleLevel {
	case identity.RoleExecutive, identity.RoleManager:
		return true
	case identity.RoleStaff:
		return ownerID != "" && ownerID == id.ID
	default:
		return false
	}
}
