// Package api serves the business records of every dashboard module.
//
// Each route enters its module through the access gate, loads records from
// the module's repository and drops the rows the caller may not see. A
// record the caller cannot see is reported as not found.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/solarops/solarops/internal/access"
	"github.com/solarops/solarops/internal/audit"
	"github.com/solarops/solarops/internal/auth"
	"github.com/solarops/solarops/internal/identity"
	"github.com/solarops/solarops/internal/modules"
	"github.com/solarops/solarops/internal/platform/middleware"
	"github.com/solarops/solarops/internal/records"
)

const maxBodyBytes = 64 << 10

var (
	errInvalid   = errors.New("invalid record")
	errForbidden = errors.New("forbidden")
)

// Handler serves the record endpoints.
type Handler struct {
	gate   *access.Gate
	stores Stores
	audit  audit.Logger
	logger *slog.Logger
	now    func() time.Time
}

// Option configures a Handler.
type Option func(*Handler)

// WithAuditLogger records record creations and updates.
func WithAuditLogger(l audit.Logger) Option {
	return func(h *Handler) { h.audit = l }
}

// WithLogger sets the logger for failures and refused module entries.
func WithLogger(l *slog.Logger) Option {
	return func(h *Handler) { h.logger = l }
}

// WithClock overrides the clock used for attendance timestamps and
// default dates.
func WithClock(now func() time.Time) Option {
	return func(h *Handler) { h.now = now }
}

func NewHandler(gate *access.Gate, stores Stores, opts ...Option) *Handler {
	h := &Handler{
		gate:   gate,
		stores: stores,
		audit:  audit.NopLogger{},
		logger: slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// RegisterRoutes mounts the record routes on mux. The mux must sit behind
// the auth middleware.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/v1/modules", h.HandleModules)

	h.handle(mux, "GET /api/v1/leads", modules.Business, h.listLeads)
	h.handle(mux, "POST /api/v1/leads", modules.Business, h.createLead)
	h.handle(mux, "GET /api/v1/leads/{id}", modules.Business, h.getLead)
	h.handle(mux, "PUT /api/v1/leads/{id}", modules.Business, h.updateLead)

	h.handle(mux, "GET /api/v1/projects", modules.Projects, h.listProjects)
	h.handle(mux, "POST /api/v1/projects", modules.Projects, h.createProject)
	h.handle(mux, "GET /api/v1/projects/{id}", modules.Projects, h.getProject)
	h.handle(mux, "PUT /api/v1/projects/{id}", modules.Projects, h.updateProject)

	h.handle(mux, "GET /api/v1/inventory", modules.Inventory, h.listInventory)
	h.handle(mux, "POST /api/v1/inventory", modules.Inventory, h.createInventoryItem)

	h.handle(mux, "GET /api/v1/finance/transactions", modules.Finance, h.listTransactions)
	h.handle(mux, "POST /api/v1/finance/transactions", modules.Finance, h.createTransaction)
	h.handle(mux, "GET /api/v1/finance/summary", modules.Finance, h.financeSummary)

	h.handle(mux, "GET /api/v1/hr/employees", modules.HR, h.listEmployees)
	h.handle(mux, "POST /api/v1/hr/employees", modules.HR, h.createEmployee)
	h.handle(mux, "GET /api/v1/hr/employees/{id}", modules.HR, h.getEmployee)
	h.handle(mux, "GET /api/v1/hr/attendance", modules.HR, h.listAttendance)
	h.handle(mux, "POST /api/v1/hr/attendance", modules.HR, h.checkIn)
	h.handle(mux, "GET /api/v1/hr/payroll", modules.HR, h.listPayroll)
	h.handle(mux, "POST /api/v1/hr/payroll", modules.HR, h.createPayroll)
	h.handle(mux, "GET /api/v1/hr/contracts", modules.HR, h.listContracts)
	h.handle(mux, "GET /api/v1/hr/attendance-summary", modules.HR, h.listAttendanceSummaries)
	h.handle(mux, "GET /api/v1/hr/benefits", modules.HR, h.listBenefits)
}

func (h *Handler) handle(mux *http.ServeMux, pattern string, moduleID modules.ID, fn http.HandlerFunc) {
	mux.Handle(pattern, access.RequireModule(h.gate, moduleID, access.WithDenialLogger(access.SlogDenials{Logger: h.logger}))(fn))
}

// HandleModules lists the modules the caller may open, in navigation order.
func (h *Handler) HandleModules(w http.ResponseWriter, r *http.Request) {
	id := auth.GetIdentity(r.Context())
	if id == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "authentication required"})
		return
	}
	visible := h.gate.Modules(id)
	if visible == nil {
		visible = []modules.Module{}
	}
	writeJSON(w, http.StatusOK, visible)
}

// --- leads ---

func (h *Handler) listLeads(w http.ResponseWriter, r *http.Request) {
	listRecords(h, w, r, modules.Business, h.stores.Leads, nil)
}

func (h *Handler) getLead(w http.ResponseWriter, r *http.Request) {
	getRecord(h, w, r, modules.Business, h.stores.Leads)
}

func (h *Handler) createLead(w http.ResponseWriter, r *http.Request) {
	createRecord(h, w, r, modules.Business, records.KindLead, h.stores.Leads,
		func(caller *identity.Identity, _ modules.Module, l *records.Lead) error {
			if strings.TrimSpace(l.Name) == "" {
				return invalid("name is required")
			}
			if l.Status == "" {
				l.Status = records.LeadNew
			}
			if !l.Status.Valid() {
				return invalid("unknown lead status")
			}
			l.ID = records.NewID("L")
			if l.Date == "" {
				l.Date = h.today()
			}
			l.OwnerID = caller.ID
			l.AssignedTo = caller.DisplayName
			return nil
		})
}

func (h *Handler) updateLead(w http.ResponseWriter, r *http.Request) {
	updateRecord(h, w, r, modules.Business, records.KindLead, h.stores.Leads,
		func(caller *identity.Identity, existing records.Lead, l *records.Lead) error {
			l.ID = existing.ID
			if l.Status == "" {
				l.Status = existing.Status
			}
			if !l.Status.Valid() {
				return invalid("unknown lead status")
			}
			if caller.RoleLevel == identity.RoleStaff {
				l.OwnerID = existing.OwnerID
				l.AssignedTo = existing.AssignedTo
			}
			return nil
		})
}

// --- projects ---

func (h *Handler) listProjects(w http.ResponseWriter, r *http.Request) {
	listRecords(h, w, r, modules.Projects, h.stores.Projects, nil)
}

func (h *Handler) getProject(w http.ResponseWriter, r *http.Request) {
	getRecord(h, w, r, modules.Projects, h.stores.Projects)
}

func (h *Handler) createProject(w http.ResponseWriter, r *http.Request) {
	createRecord(h, w, r, modules.Projects, records.KindProject, h.stores.Projects,
		func(caller *identity.Identity, _ modules.Module, p *records.Project) error {
			if strings.TrimSpace(p.Name) == "" {
				return invalid("name is required")
			}
			if p.Status == "" {
				p.Status = records.ProjectSurvey
			}
			if !p.Status.Valid() {
				return invalid("unknown project status")
			}
			p.ID = records.NewID("PJ")
			if p.StartDate == "" {
				p.StartDate = h.today()
			}
			// Staff cannot assign ownership. A sales staff creator becomes
			// the sales rep; anyone else leaves the project unassigned.
			if caller.RoleLevel == identity.RoleStaff {
				p.SalesRep, p.SalesRepID = unassigned, ""
				p.Surveyor, p.SurveyorID = unassigned, ""
				if caller.Department == identity.DeptSales {
					p.SalesRep, p.SalesRepID = caller.DisplayName, caller.ID
				}
			}
			return nil
		})
}

func (h *Handler) updateProject(w http.ResponseWriter, r *http.Request) {
	updateRecord(h, w, r, modules.Projects, records.KindProject, h.stores.Projects,
		func(caller *identity.Identity, existing records.Project, p *records.Project) error {
			p.ID = existing.ID
			if p.Status == "" {
				p.Status = existing.Status
			}
			if !p.Status.Valid() {
				return invalid("unknown project status")
			}
			if caller.RoleLevel == identity.RoleStaff {
				p.SalesRep, p.SalesRepID = existing.SalesRep, existing.SalesRepID
				p.Surveyor, p.SurveyorID = existing.Surveyor, existing.SurveyorID
			}
			return nil
		})
}

// --- inventory ---

func (h *Handler) listInventory(w http.ResponseWriter, r *http.Request) {
	var keep func(records.InventoryItem) bool
	if r.URL.Query().Get("low_stock") == "true" {
		keep = records.InventoryItem.LowStock
	}
	listRecords(h, w, r, modules.Inventory, h.stores.Inventory, keep)
}

func (h *Handler) createInventoryItem(w http.ResponseWriter, r *http.Request) {
	createRecord(h, w, r, modules.Inventory, records.KindInventory, h.stores.Inventory,
		func(_ *identity.Identity, _ modules.Module, item *records.InventoryItem) error {
			if strings.TrimSpace(item.Name) == "" {
				return invalid("name is required")
			}
			if item.Quantity < 0 || item.MinStock < 0 {
				return invalid("quantities must not be negative")
			}
			item.ID = records.NewID("INV")
			return nil
		})
}

// --- finance ---

func (h *Handler) listTransactions(w http.ResponseWriter, r *http.Request) {
	var keep func(records.Transaction) bool
	if t := records.TransactionType(r.URL.Query().Get("type")); t != "" {
		keep = func(tx records.Transaction) bool { return tx.Type == t }
	}
	listRecords(h, w, r, modules.Finance, h.stores.Transactions, keep)
}

func (h *Handler) createTransaction(w http.ResponseWriter, r *http.Request) {
	createRecord(h, w, r, modules.Finance, records.KindTransaction, h.stores.Transactions,
		func(_ *identity.Identity, _ modules.Module, tx *records.Transaction) error {
			if strings.TrimSpace(tx.Description) == "" {
				return invalid("description is required")
			}
			if tx.Amount <= 0 {
				return invalid("amount must be positive")
			}
			if !tx.Type.Valid() {
				return invalid("type must be INCOME or EXPENSE")
			}
			tx.ID = records.NewID("TRX")
			if tx.Date == "" {
				tx.Date = h.today()
			}
			if tx.Status == "" {
				tx.Status = "Chờ xử lý"
			}
			return nil
		})
}

type financeSummary struct {
	Income  int64 `json:"income"`
	Expense int64 `json:"expense"`
	Net     int64 `json:"net"`
	Count   int   `json:"count"`
}

func (h *Handler) financeSummary(w http.ResponseWriter, r *http.Request) {
	txs, err := access.List(r.Context(), h.gate, auth.GetIdentity(r.Context()), modules.Finance, h.stores.Transactions)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	var s financeSummary
	for _, tx := range txs {
		switch tx.Type {
		case records.TransactionIncome:
			s.Income += tx.Amount
		case records.TransactionExpense:
			s.Expense += tx.Amount
		}
	}
	s.Net = s.Income - s.Expense
	s.Count = len(txs)
	writeJSON(w, http.StatusOK, s)
}

// --- hr ---

func (h *Handler) listEmployees(w http.ResponseWriter, r *http.Request) {
	listRecords(h, w, r, modules.HR, h.stores.Employees, nil)
}

func (h *Handler) getEmployee(w http.ResponseWriter, r *http.Request) {
	getRecord(h, w, r, modules.HR, h.stores.Employees)
}

func (h *Handler) createEmployee(w http.ResponseWriter, r *http.Request) {
	createRecord(h, w, r, modules.HR, records.KindEmployee, h.stores.Employees,
		func(caller *identity.Identity, m modules.Module, e *records.Employee) error {
			if !access.CanAccessModule(caller, m.FullViewDepartments) {
				return errForbidden
			}
			if strings.TrimSpace(e.Name) == "" {
				return invalid("name is required")
			}
			if e.Level != "" {
				if _, err := identity.ParseRoleLevel(e.Level); err != nil {
					return invalid(err.Error())
				}
			}
			if e.Department != "" {
				if _, err := identity.ParseDepartment(e.Department); err != nil {
					return invalid(err.Error())
				}
			}
			e.ID = records.NewID("NV")
			if e.Status == "" {
				e.Status = records.EmployeeActive
			}
			if e.JoinDate == "" {
				e.JoinDate = h.today()
			}
			return nil
		})
}

func (h *Handler) listAttendance(w http.ResponseWriter, r *http.Request) {
	listRecords(h, w, r, modules.HR, h.stores.Attendance, nil)
}

// checkIn records attendance for the caller. The employee id always comes
// from the session, never from the body.
func (h *Handler) checkIn(w http.ResponseWriter, r *http.Request) {
	createRecord(h, w, r, modules.HR, records.KindAttendance, h.stores.Attendance,
		func(caller *identity.Identity, _ modules.Module, a *records.AttendanceLog) error {
			if !a.Method.Valid() {
				return invalid("unknown attendance method")
			}
			if a.Type == "" {
				a.Type = records.AttendanceCheckIn
			}
			if a.Type != records.AttendanceCheckIn && a.Type != records.AttendanceCheckOut {
				return invalid("type must be CHECK_IN or CHECK_OUT")
			}
			a.ID = records.NewID("LG")
			a.EmployeeID = caller.ID
			a.Timestamp = h.now().UTC()
			a.Valid = true
			return nil
		})
}

func (h *Handler) listPayroll(w http.ResponseWriter, r *http.Request) {
	listRecords(h, w, r, modules.HR, h.stores.Payroll, nil)
}

func (h *Handler) createPayroll(w http.ResponseWriter, r *http.Request) {
	createRecord(h, w, r, modules.HR, records.KindPayroll, h.stores.Payroll,
		func(caller *identity.Identity, m modules.Module, p *records.PayrollRecord) error {
			if !access.CanAccessModule(caller, m.FullViewDepartments) {
				return errForbidden
			}
			if strings.TrimSpace(p.EmployeeID) == "" {
				return invalid("employeeId is required")
			}
			if strings.TrimSpace(p.Month) == "" {
				return invalid("month is required")
			}
			p.ID = records.NewID("PL")
			p.ComputeNet()
			return nil
		})
}

func (h *Handler) listContracts(w http.ResponseWriter, r *http.Request) {
	listRecords(h, w, r, modules.HR, h.stores.Contracts, nil)
}

func (h *Handler) listAttendanceSummaries(w http.ResponseWriter, r *http.Request) {
	listRecords(h, w, r, modules.HR, h.stores.Timesheets, nil)
}

func (h *Handler) listBenefits(w http.ResponseWriter, r *http.Request) {
	listRecords(h, w, r, modules.HR, h.stores.Benefits, nil)
}

// --- shared ---

func listRecords[T records.Owned](h *Handler, w http.ResponseWriter, r *http.Request, moduleID modules.ID, repo records.Repository[T], keep func(T) bool) {
	items, err := access.List(r.Context(), h.gate, auth.GetIdentity(r.Context()), moduleID, repo)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if keep != nil {
		kept := items[:0]
		for _, item := range items {
			if keep(item) {
				kept = append(kept, item)
			}
		}
		items = kept
	}
	writeJSON(w, http.StatusOK, items)
}

func getRecord[T records.Owned](h *Handler, w http.ResponseWriter, r *http.Request, moduleID modules.ID, repo records.Repository[T]) {
	rec, err := access.Get(r.Context(), h.gate, auth.GetIdentity(r.Context()), moduleID, repo, r.PathValue("id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// createRecord decodes, prepares and stores a new record. prepare must set
// the record id; ids sent by the client are never trusted, so a create
// cannot reveal that a hidden record exists.
func createRecord[T records.Owned](
	h *Handler, w http.ResponseWriter, r *http.Request,
	moduleID modules.ID, kind records.Kind, repo records.Repository[T],
	prepare func(caller *identity.Identity, m modules.Module, rec *T) error,
) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	caller := auth.GetIdentity(r.Context())
	m, err := h.gate.Enter(caller, moduleID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	var rec T
	if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if err := prepare(caller, m, &rec); err != nil {
		h.writeError(w, r, err)
		return
	}

	created, err := repo.Create(r.Context(), rec)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.record(r.Context(), caller, audit.ActionRecordCreated, m.ID, kind, created.RecordID())
	writeJSON(w, http.StatusCreated, created)
}

func updateRecord[T records.Owned](
	h *Handler, w http.ResponseWriter, r *http.Request,
	moduleID modules.ID, kind records.Kind, repo records.Repository[T],
	merge func(caller *identity.Identity, existing T, incoming *T) error,
) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	caller := auth.GetIdentity(r.Context())
	existing, err := access.Get(r.Context(), h.gate, caller, moduleID, repo, r.PathValue("id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	var incoming T
	if err := json.NewDecoder(r.Body).Decode(&incoming); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if err := merge(caller, existing, &incoming); err != nil {
		h.writeError(w, r, err)
		return
	}

	updated, err := repo.Update(r.Context(), incoming)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.record(r.Context(), caller, audit.ActionRecordUpdated, moduleID, kind, updated.RecordID())
	writeJSON(w, http.StatusOK, updated)
}

func (h *Handler) record(ctx context.Context, caller *identity.Identity, action string, moduleID modules.ID, kind records.Kind, recordID string) {
	h.audit.Log(ctx, audit.Event{
		ActorID:  caller.ID,
		Action:   action,
		Module:   string(moduleID),
		RecordID: recordID,
		Metadata: map[string]any{
			audit.MetadataKind:      string(kind),
			audit.MetadataRequestID: middleware.GetRequestID(ctx),
		},
		Source: audit.SourceAPI,
	})
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, access.ErrUnauthenticated):
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "authentication required"})
	case errors.Is(err, access.ErrModuleDenied), errors.Is(err, errForbidden):
		writeJSON(w, http.StatusForbidden, map[string]string{"error": "forbidden", "reason": err.Error()})
	case errors.Is(err, errInvalid):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	case errors.Is(err, records.ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
	case errors.Is(err, records.ErrDuplicate):
		writeJSON(w, http.StatusConflict, map[string]string{"error": "record already exists"})
	default:
		h.logger.Error("record request failed",
			"error", err,
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", middleware.GetRequestID(r.Context()),
		)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
}

func (h *Handler) today() string {
	return h.now().Format(time.DateOnly)
}

func invalid(msg string) error {
	return fmt.Errorf("%w: %s", errInvalid, msg)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
