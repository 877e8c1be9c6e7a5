package records

import "time"

// Kind names a record type in shared storage.
type Kind string

const (
	KindLead              Kind = "lead"
	KindProject           Kind = "project"
	KindInventory         Kind = "inventory_item"
	KindTransaction       Kind = "transaction"
	KindEmployee          Kind = "employee"
	KindAttendance        Kind = "attendance_log"
	KindPayroll           Kind = "payroll_record"
	KindContract          Kind = "labor_contract"
	KindAttendanceSummary Kind = "attendance_summary"
	KindBenefit           Kind = "benefit_record"
)

type LeadStatus string

const (
	LeadNew             LeadStatus = "NEW"
	LeadContacted       LeadStatus = "CONTACTED"
	LeadSurveyScheduled LeadStatus = "SURVEY_SCHEDULED"
	LeadQuoteSent       LeadStatus = "QUOTE_SENT"
	LeadWon             LeadStatus = "WON"
	LeadLost            LeadStatus = "LOST"
)

func (s LeadStatus) Valid() bool {
	switch s {
	case LeadNew, LeadContacted, LeadSurveyScheduled, LeadQuoteSent, LeadWon, LeadLost:
		return true
	}
	return false
}

// Lead is a CRM prospect. OwnerID is the staff member who created or
// is assigned the lead.
type Lead struct {
	ID                string     `json:"id"`
	Name              string     `json:"name"`
	Phone             string     `json:"phone"`
	Source            string     `json:"source"`
	Status            LeadStatus `json:"status"`
	EstimatedCapacity float64    `json:"estimatedCapacity"`
	Notes             string     `json:"notes,omitempty"`
	Date              string     `json:"date"`
	OwnerID           string     `json:"ownerId,omitempty"`
	AssignedTo        string     `json:"assignedTo,omitempty"`
}

func (l Lead) RecordID() string   { return l.ID }
func (l Lead) OwnerIDs() []string { return owners(l.OwnerID) }

type ProjectStatus string

const (
	ProjectSurvey         ProjectStatus = "SURVEY"
	ProjectDesign         ProjectStatus = "DESIGN"
	ProjectPermitting     ProjectStatus = "PERMITTING"
	ProjectInstallation   ProjectStatus = "INSTALLATION"
	ProjectGridConnection ProjectStatus = "GRID_CONNECTION"
	ProjectCompleted      ProjectStatus = "COMPLETED"
)

func (s ProjectStatus) Valid() bool {
	switch s {
	case ProjectSurvey, ProjectDesign, ProjectPermitting, ProjectInstallation, ProjectGridConnection, ProjectCompleted:
		return true
	}
	return false
}

// Project is an installation job. Both the sales rep and the surveyor own it.
type Project struct {
	ID             string        `json:"id"`
	Name           string        `json:"name"`
	Customer       string        `json:"customer"`
	CapacityKWp    float64       `json:"capacityKWp"`
	Address        string        `json:"address"`
	Status         ProjectStatus `json:"status"`
	StartDate      string        `json:"startDate"`
	CompletionDate string        `json:"completionDate,omitempty"`
	Budget         int64         `json:"budget"`
	SalesRep       string        `json:"salesRep,omitempty"`
	SalesRepID     string        `json:"salesRepId,omitempty"`
	Surveyor       string        `json:"surveyor,omitempty"`
	SurveyorID     string        `json:"surveyorId,omitempty"`
}

func (p Project) RecordID() string   { return p.ID }
func (p Project) OwnerIDs() []string { return owners(p.SalesRepID, p.SurveyorID) }

// InventoryItem is warehouse stock. It has no owner.
type InventoryItem struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category"`
	Quantity int    `json:"quantity"`
	Unit     string `json:"unit"`
	MinStock int    `json:"minStock"`
}

func (i InventoryItem) RecordID() string   { return i.ID }
func (i InventoryItem) OwnerIDs() []string { return nil }

// LowStock reports whether the item is at or below its minimum level.
func (i InventoryItem) LowStock() bool { return i.Quantity <= i.MinStock }

type TransactionType string

const (
	TransactionIncome  TransactionType = "INCOME"
	TransactionExpense TransactionType = "EXPENSE"
)

func (t TransactionType) Valid() bool {
	return t == TransactionIncome || t == TransactionExpense
}

// Transaction is a finance ledger line. It has no owner.
type Transaction struct {
	ID          string          `json:"id"`
	Date        string          `json:"date"`
	Description string          `json:"description"`
	Amount      int64           `json:"amount"`
	Type        TransactionType `json:"type"`
	Category    string          `json:"category"`
	Status      string          `json:"status"`
}

func (t Transaction) RecordID() string   { return t.ID }
func (t Transaction) OwnerIDs() []string { return nil }

type EmployeeStatus string

const (
	EmployeeActive   EmployeeStatus = "ACTIVE"
	EmployeeOnLeave  EmployeeStatus = "ON_LEAVE"
	EmployeeResigned EmployeeStatus = "RESIGNED"
)

// Employee is an HR profile. Its owner is the employee themself. Editing
// Level or Department here does not change the identity directory.
type Employee struct {
	ID         string         `json:"id"`
	Name       string         `json:"name"`
	JobTitle   string         `json:"role"`
	Phone      string         `json:"phone"`
	Email      string         `json:"email"`
	Status     EmployeeStatus `json:"status"`
	JoinDate   string         `json:"joinDate"`
	Level      string         `json:"level"`
	Department string         `json:"department"`
	Handle     string         `json:"username,omitempty"`
}

func (e Employee) RecordID() string   { return e.ID }
func (e Employee) OwnerIDs() []string { return owners(e.ID) }

type AttendanceMethod string

const (
	AttendanceFingerprint AttendanceMethod = "FINGERPRINT"
	AttendanceFaceID      AttendanceMethod = "FACE_ID"
	AttendanceGPSPhoto    AttendanceMethod = "GPS_PHOTO"
)

func (m AttendanceMethod) Valid() bool {
	return m == AttendanceFingerprint || m == AttendanceFaceID || m == AttendanceGPSPhoto
}

const (
	AttendanceCheckIn  = "CHECK_IN"
	AttendanceCheckOut = "CHECK_OUT"
)

// AttendanceLog is a single check-in or check-out.
type AttendanceLog struct {
	ID         string           `json:"id"`
	EmployeeID string           `json:"employeeId"`
	Timestamp  time.Time        `json:"timestamp"`
	Type       string           `json:"type"`
	Method     AttendanceMethod `json:"method"`
	ImageURL   string           `json:"imageUrl,omitempty"`
	Location   string           `json:"location,omitempty"`
	Valid      bool             `json:"isValid"`
}

func (a AttendanceLog) RecordID() string   { return a.ID }
func (a AttendanceLog) OwnerIDs() []string { return owners(a.EmployeeID) }

// PayrollRecord is a monthly payslip.
type PayrollRecord struct {
	ID          string `json:"id"`
	EmployeeID  string `json:"employeeId"`
	Month       string `json:"month"`
	BasicSalary int64  `json:"basicSalary"`
	Allowances  int64  `json:"allowances"`
	Bonus       int64  `json:"bonus"`
	Deductions  int64  `json:"deductions"`
	NetSalary   int64  `json:"netSalary"`
	Status      string `json:"status"`
}

func (p PayrollRecord) RecordID() string   { return p.ID }
func (p PayrollRecord) OwnerIDs() []string { return owners(p.EmployeeID) }

// ComputeNet recalculates NetSalary from its components.
func (p *PayrollRecord) ComputeNet() {
	p.NetSalary = p.BasicSalary + p.Allowances + p.Bonus - p.Deductions
}

// LaborContract is an employment contract. Type and Status hold the
// Vietnamese labels the HR screen shows.
type LaborContract struct {
	ID         string `json:"id"`
	EmployeeID string `json:"employeeId"`
	Type       string `json:"type"`
	StartDate  string `json:"startDate"`
	EndDate    string `json:"endDate,omitempty"`
	Salary     int64  `json:"salary"`
	Status     string `json:"status"`
}

func (c LaborContract) RecordID() string   { return c.ID }
func (c LaborContract) OwnerIDs() []string { return owners(c.EmployeeID) }

// AttendanceSummary is one employee's working days for a month (MM/YYYY).
type AttendanceSummary struct {
	ID            string  `json:"id"`
	EmployeeID    string  `json:"employeeId"`
	Month         string  `json:"month"`
	StandardDays  float64 `json:"standardDays"`
	ActualDays    float64 `json:"actualDays"`
	LateHours     float64 `json:"lateHours"`
	OvertimeHours float64 `json:"overtimeHours"`
	LeaveDays     float64 `json:"leaveDays"`
}

func (a AttendanceSummary) RecordID() string   { return a.ID }
func (a AttendanceSummary) OwnerIDs() []string { return owners(a.EmployeeID) }

type BenefitRecord struct {
	ID              string   `json:"id"`
	EmployeeID      string   `json:"employeeId"`
	SocialInsurance bool     `json:"socialInsurance"`
	HealthInsurance bool     `json:"healthInsurance"`
	Welfare         []string `json:"welfare"`
}

func (b BenefitRecord) RecordID() string   { return b.ID }
func (b BenefitRecord) OwnerIDs() []string { return owners(b.EmployeeID) }
