package api

import (
	"context"
	"errors"
	"fmt"

	"github.com/solarops/solarops/internal/platform/database"
	"github.com/solarops/solarops/internal/records"
)

// Stores groups the repositories behind the record endpoints.
type Stores struct {
	Leads        records.Repository[records.Lead]
	Projects     records.Repository[records.Project]
	Inventory    records.Repository[records.InventoryItem]
	Transactions records.Repository[records.Transaction]
	Employees    records.Repository[records.Employee]
	Attendance   records.Repository[records.AttendanceLog]
	Payroll      records.Repository[records.PayrollRecord]
	Contracts    records.Repository[records.LaborContract]
	Timesheets   records.Repository[records.AttendanceSummary]
	Benefits     records.Repository[records.BenefitRecord]
}

// NewMemoryStores returns in-process stores holding the demo data set.
func NewMemoryStores() Stores {
	return Stores{
		Leads:        records.NewMemoryRepository(seedLeads()...),
		Projects:     records.NewMemoryRepository(seedProjects()...),
		Inventory:    records.NewMemoryRepository(seedInventory()...),
		Transactions: records.NewMemoryRepository(seedTransactions()...),
		Employees:    records.NewMemoryRepository(seedEmployees()...),
		Attendance:   records.NewMemoryRepository(seedAttendance()...),
		Payroll:      records.NewMemoryRepository(seedPayroll()...),
		Contracts:    records.NewMemoryRepository(seedContracts()...),
		Timesheets:   records.NewMemoryRepository(seedAttendanceSummaries()...),
		Benefits:     records.NewMemoryRepository(seedBenefits()...),
	}
}

// NewPostgresStores returns stores backed by the shared records table.
func NewPostgresStores(q database.Querier) Stores {
	return Stores{
		Leads:        records.NewPostgresRepository[records.Lead](q, records.KindLead),
		Projects:     records.NewPostgresRepository[records.Project](q, records.KindProject),
		Inventory:    records.NewPostgresRepository[records.InventoryItem](q, records.KindInventory),
		Transactions: records.NewPostgresRepository[records.Transaction](q, records.KindTransaction),
		Employees:    records.NewPostgresRepository[records.Employee](q, records.KindEmployee),
		Attendance:   records.NewPostgresRepository[records.AttendanceLog](q, records.KindAttendance),
		Payroll:      records.NewPostgresRepository[records.PayrollRecord](q, records.KindPayroll),
		Contracts:    records.NewPostgresRepository[records.LaborContract](q, records.KindContract),
		Timesheets:   records.NewPostgresRepository[records.AttendanceSummary](q, records.KindAttendanceSummary),
		Benefits:     records.NewPostgresRepository[records.BenefitRecord](q, records.KindBenefit),
	}
}

// Seed inserts the demo data set into s. Records that already exist are
// left untouched, so Seed can run on every start.
func Seed(ctx context.Context, s Stores) error {
	if err := seedInto(ctx, s.Leads, seedLeads()); err != nil {
		return err
	}
	if err := seedInto(ctx, s.Projects, seedProjects()); err != nil {
		return err
	}
	if err := seedInto(ctx, s.Inventory, seedInventory()); err != nil {
		return err
	}
	if err := seedInto(ctx, s.Transactions, seedTransactions()); err != nil {
		return err
	}
	if err := seedInto(ctx, s.Employees, seedEmployees()); err != nil {
		return err
	}
	if err := seedInto(ctx, s.Attendance, seedAttendance()); err != nil {
		return err
	}
	if err := seedInto(ctx, s.Payroll, seedPayroll()); err != nil {
		return err
	}
	if err := seedInto(ctx, s.Contracts, seedContracts()); err != nil {
		return err
	}
	if err := seedInto(ctx, s.Timesheets, seedAttendanceSummaries()); err != nil {
		return err
	}
	return seedInto(ctx, s.Benefits, seedBenefits())
}

func seedInto[T records.Owned](ctx context.Context, repo records.Repository[T], items []T) error {
	for _, item := range items {
		if _, err := repo.Create(ctx, item); err != nil && !errors.Is(err, records.ErrDuplicate) {
			return fmt.Errorf("seeding %s: %w", item.RecordID(), err)
		}
	}
	return nil
}
