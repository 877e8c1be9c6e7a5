package identity

import (
	"fmt"
	"strings"
)

// Resolver resolves a login handle to an identity.
type Resolver interface {
	Resolve(handle string) (Identity, error)
}

// Directory is the fixed handle → identity mapping. It is built once at
// startup and is safe for concurrent readers since it is never mutated.
type Directory struct {
	byHandle map[string]Identity
	order    []string
}

// NewDirectory builds a directory from the given identities. Handles and ids
// must be unique (handles compared case-insensitively).
func NewDirectory(identities []Identity) (*Directory, error) {
	d := &Directory{
		byHandle: make(map[string]Identity, len(identities)),
		order:    make([]string, 0, len(identities)),
	}
	ids := make(map[string]struct{}, len(identities))

	for _, ident := range identities {
		if err := ident.Validate(); err != nil {
			return nil, fmt.Errorf("directory entry %q: %w", ident.Handle, err)
		}
		key := normalizeHandle(ident.Handle)
		if _, ok := d.byHandle[key]; ok {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateHandle, ident.Handle)
		}
		if _, ok := ids[ident.ID]; ok {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateID, ident.ID)
		}
		ids[ident.ID] = struct{}{}
		d.byHandle[key] = ident
		d.order = append(d.order, key)
	}
	return d, nil
}

// Resolve looks up a handle, ignoring case. Whitespace is significant.
func (d *Directory) Resolve(handle string) (Identity, error) {
	ident, ok := d.byHandle[normalizeHandle(handle)]
	if !ok {
		return Identity{}, fmt.Errorf("%w: %q", ErrNotFound, handle)
	}
	return ident, nil
}

// Identities returns the directory entries in declaration order.
func (d *Directory) Identities() []Identity {
	out := make([]Identity, 0, len(d.order))
	for _, key := range d.order {
		out = append(out, d.byHandle[key])
	}
	return out
}

func (d *Directory) Len() int {
	return len(d.order)
}

func normalizeHandle(handle string) string {
	return strings.ToLower(handle)
}

// DefaultIdentities returns the built-in accounts used when no directory is
// configured.
func DefaultIdentities() []Identity {
	return []Identity{
		{ID: "U_ADMIN", Handle: "admin", DisplayName: "System Admin", RoleLevel: RoleExecutive, Department: DeptBoard, Avatar: "AD"},
		{ID: "U_CEO", Handle: "ceo", DisplayName: "Nguyễn Văn Giám Đốc", RoleLevel: RoleExecutive, Department: DeptBoard, Avatar: "G"},
		{ID: "U_SM", Handle: "sales_manager", DisplayName: "Trần Trưởng Phòng", RoleLevel: RoleManager, Department: DeptSales, Avatar: "T"},
		{ID: "U_S1", Handle: "sales_staff_1", DisplayName: "Lê Sale Một", RoleLevel: RoleStaff, Department: DeptSales, Avatar: "S"},
		{ID: "U_S2", Handle: "sales_staff_2", DisplayName: "Phạm Sale Hai", RoleLevel: RoleStaff, Department: DeptSales, Avatar: "P"},
		{ID: "U_TM", Handle: "tech_manager", DisplayName: "Võ Kỹ Thuật", RoleLevel: RoleManager, Department: DeptTechnical, Avatar: "K"},
		{ID: "U_AC", Handle: "accountant", DisplayName: "Đặng Kế Toán", RoleLevel: RoleManager, Department: DeptFinance, Avatar: "KT"},
		{ID: "U_HR", Handle: "hr", DisplayName: "Ngô Nhân Sự", RoleLevel: RoleManager, Department: DeptHR, Avatar: "NS"},
	}
}

// NewDefaultDirectory builds the directory of built-in accounts.
func NewDefaultDirectory() *Directory {
	d, err := NewDirectory(DefaultIdentities())
	if err != nil {
		panic(fmt.Sprintf("default directory: %v", err))
	}
	return d
}
