package api

import (
	"time"

	"github.com/solarops/solarops/internal/records"
)

const unassigned = "Chưa phân công"

func seedLeads() []records.Lead {
	return []records.Lead{
		{ID: "L001", Name: "Nguyễn Văn An", Phone: "0912345678", Source: "Website", Status: records.LeadNew, EstimatedCapacity: 10, Date: "2023-10-20", OwnerID: "U_S1", AssignedTo: "Lê Sale Một"},
		{ID: "L002", Name: "Công ty TNHH ABC", Phone: "0987654321", Source: "Giới thiệu", Status: records.LeadSurveyScheduled, EstimatedCapacity: 150, Date: "2023-10-19", OwnerID: "U_S2", AssignedTo: "Phạm Sale Hai"},
		{ID: "L003", Name: "Trần Thị Bích", Phone: "0909090909", Source: "Facebook", Status: records.LeadContacted, EstimatedCapacity: 5, Date: "2023-10-21", OwnerID: "U_S1", AssignedTo: "Lê Sale Một"},
		{ID: "L004", Name: "Nhà máy Gỗ X", Phone: "0911223344", Source: "Giới thiệu", Status: records.LeadQuoteSent, EstimatedCapacity: 450, Date: "2023-10-15", OwnerID: "U_S2", AssignedTo: "Phạm Sale Hai"},
		{ID: "L005", Name: "Lê Văn Cường", Phone: "0933445566", Source: "Website", Status: records.LeadWon, EstimatedCapacity: 8, Date: "2023-10-10", OwnerID: "U_S1", AssignedTo: "Lê Sale Một"},
		{ID: "L006", Name: "Khách sạn Biển Nhớ", Phone: "0944556677", Source: "Khác", Status: records.LeadLost, EstimatedCapacity: 80, Date: "2023-10-12", OwnerID: "U_SM", AssignedTo: "Trần Trưởng Phòng"},
	}
}

func seedProjects() []records.Project {
	return []records.Project{
		{
			ID: "PJ-001", Name: "Nhà máy Dệt May Hòa Bình", Customer: "Công ty CP Dệt May HB",
			CapacityKWp: 450, Address: "KCN Hòa Khánh, Đà Nẵng", Status: records.ProjectInstallation,
			StartDate: "2023-10-15", Budget: 4500000000,
			SalesRep: "Lê Sale Một", SalesRepID: "U_S1", Surveyor: "Võ Kỹ Thuật", SurveyorID: "U_TM",
		},
		{
			ID: "PJ-002", Name: "Biệt thự anh Hùng", Customer: "Nguyễn Văn Hùng",
			CapacityKWp: 15, Address: "Thảo Điền, TP.HCM", Status: records.ProjectDesign,
			StartDate: "2023-11-01", Budget: 250000000,
			SalesRep: "Phạm Sale Hai", SalesRepID: "U_S2", Surveyor: "Võ Kỹ Thuật", SurveyorID: "U_TM",
		},
		{
			ID: "PJ-003", Name: "Trang trại Nông nghiệp Xanh", Customer: "HTX Nông nghiệp Xanh",
			CapacityKWp: 120, Address: "Củ Chi, TP.HCM", Status: records.ProjectSurvey,
			StartDate: "2023-11-05", Budget: 1800000000,
			SalesRep: "Lê Sale Một", SalesRepID: "U_S1", Surveyor: unassigned,
		},
		{
			ID: "PJ-004", Name: "Kho lạnh Biển Đông", Customer: "Công ty Thủy sản Biển Đông",
			CapacityKWp: 300, Address: "Vũng Tàu", Status: records.ProjectGridConnection,
			StartDate: "2023-09-10", Budget: 3200000000,
			SalesRep: "Phạm Sale Hai", SalesRepID: "U_S2", Surveyor: "Võ Kỹ Thuật", SurveyorID: "U_TM",
		},
	}
}

func seedInventory() []records.InventoryItem {
	return []records.InventoryItem{
		{ID: "INV-001", Name: "Canadian Solar 550W", Category: "Solar Panel", Quantity: 120, Unit: "Tấm", MinStock: 50},
		{ID: "INV-002", Name: "Longi Solar 450W", Category: "Solar Panel", Quantity: 35, Unit: "Tấm", MinStock: 50},
		{ID: "INV-003", Name: "Huawei SUN2000-100KTL", Category: "Inverter", Quantity: 5, Unit: "Cái", MinStock: 2},
		{ID: "INV-004", Name: "Growatt 5000TL", Category: "Inverter", Quantity: 12, Unit: "Cái", MinStock: 10},
		{ID: "INV-005", Name: "Cáp DC 4.0mm2", Category: "Cable", Quantity: 2500, Unit: "Mét", MinStock: 1000},
		{ID: "INV-006", Name: "Thanh Rail nhôm 4.2m", Category: "Mounting", Quantity: 200, Unit: "Thanh", MinStock: 100},
	}
}

func seedTransactions() []records.Transaction {
	return []records.Transaction{
		{ID: "TRX-001", Date: "2023-10-25", Description: "Thanh toán đợt 1 dự án Dệt May HB", Amount: 1500000000, Type: records.TransactionIncome, Category: "Doanh thu dự án", Status: "Hoàn thành"},
		{ID: "TRX-002", Date: "2023-10-24", Description: "Nhập lô pin Canadian Solar", Amount: 850000000, Type: records.TransactionExpense, Category: "Nhập hàng", Status: "Hoàn thành"},
		{ID: "TRX-003", Date: "2023-10-23", Description: "Chi phí lương tháng 9", Amount: 350000000, Type: records.TransactionExpense, Category: "Lương & Phúc lợi", Status: "Hoàn thành"},
		{ID: "TRX-004", Date: "2023-10-22", Description: "Thanh toán thiết kế biệt thự A.Hùng", Amount: 25000000, Type: records.TransactionIncome, Category: "Phí thiết kế", Status: "Hoàn thành"},
		{ID: "TRX-005", Date: "2023-10-20", Description: "Chi phí xăng xe, công tác phí", Amount: 12000000, Type: records.TransactionExpense, Category: "Công tác phí", Status: "Chờ xử lý"},
	}
}

func seedEmployees() []records.Employee {
	return []records.Employee{
		{ID: "NV001", Name: "Nguyễn Văn Giám Đốc", JobTitle: "Giám đốc điều hành", Phone: "0901234567", Email: "ceo@solarops.vn", Status: records.EmployeeActive, JoinDate: "2022-01-15", Level: "EXECUTIVE", Department: "BOARD"},
		{ID: "NV002", Name: "Trần Trưởng Phòng", JobTitle: "Trưởng phòng Kinh doanh", Phone: "0902345678", Email: "sm@solarops.vn", Status: records.EmployeeActive, JoinDate: "2022-03-01", Level: "MANAGER", Department: "SALES"},
		{ID: "NV003", Name: "Võ Kỹ Thuật", JobTitle: "Trưởng phòng Kỹ thuật", Phone: "0903456789", Email: "tm@solarops.vn", Status: records.EmployeeActive, JoinDate: "2023-05-20", Level: "MANAGER", Department: "TECHNICAL"},
		{ID: "NV004", Name: "Lê Sale Một", JobTitle: "Nhân viên Kinh doanh", Phone: "0904567890", Email: "s1@solarops.vn", Status: records.EmployeeActive, JoinDate: "2023-06-15", Level: "STAFF", Department: "SALES"},
		{ID: "NV005", Name: "Đặng Kế Toán", JobTitle: "Kế toán trưởng", Phone: "0905678901", Email: "ac@solarops.vn", Status: records.EmployeeActive, JoinDate: "2022-02-10", Level: "MANAGER", Department: "FINANCE"},
		{ID: "NV006", Name: "Ngô Nhân Sự", JobTitle: "Chuyên viên nhân sự", Phone: "0906789012", Email: "hr@solarops.vn", Status: records.EmployeeActive, JoinDate: "2023-01-10", Level: "MANAGER", Department: "HR"},
		{ID: "U_S1", Name: "Lê Sale Một", JobTitle: "Nhân viên Kinh doanh", Phone: "0904567890", Email: "s1@solarops.vn", Status: records.EmployeeActive, JoinDate: "2023-06-15", Level: "STAFF", Department: "SALES", Handle: "sales_staff_1"},
	}
}

func seedAttendance() []records.AttendanceLog {
	return []records.AttendanceLog{
		{ID: "LG1", EmployeeID: "NV003", Timestamp: time.Date(2023, 10, 24, 1, 0, 0, 0, time.UTC), Type: records.AttendanceCheckIn, Method: records.AttendanceGPSPhoto, Location: "10.762, 106.660 (Công trình Quận 10)", Valid: true},
		{ID: "LG2", EmployeeID: "U_S1", Timestamp: time.Date(2023, 10, 25, 1, 5, 0, 0, time.UTC), Type: records.AttendanceCheckIn, Method: records.AttendanceFingerprint, Location: "Văn phòng chính", Valid: true},
	}
}

func seedPayroll() []records.PayrollRecord {
	return []records.PayrollRecord{
		{ID: "PL001", EmployeeID: "NV001", Month: "09/2023", BasicSalary: 50000000, Allowances: 5000000, Bonus: 2000000, Deductions: 3000000, NetSalary: 54000000, Status: "Đã thanh toán"},
		{ID: "PL002", EmployeeID: "NV002", Month: "09/2023", BasicSalary: 30000000, Allowances: 3000000, Bonus: 5000000, Deductions: 2000000, NetSalary: 36000000, Status: "Đã thanh toán"},
		{ID: "PL003", EmployeeID: "NV003", Month: "09/2023", BasicSalary: 28000000, Allowances: 2000000, Bonus: 1000000, Deductions: 1500000, NetSalary: 29500000, Status: "Đã thanh toán"},
		{ID: "PL004", EmployeeID: "U_S1", Month: "09/2023", BasicSalary: 8000000, Allowances: 1000000, Bonus: 200000, Deductions: 0, NetSalary: 9200000, Status: "Đã thanh toán"},
	}
}

func seedContracts() []records.LaborContract {
	return []records.LaborContract{
		{ID: "HD001", EmployeeID: "NV001", Type: "Không thời hạn", StartDate: "2022-01-15", Salary: 50000000, Status: "Hiệu lực"},
		{ID: "HD002", EmployeeID: "NV002", Type: "Có thời hạn", StartDate: "2022-03-01", EndDate: "2024-03-01", Salary: 30000000, Status: "Hiệu lực"},
		{ID: "HD003", EmployeeID: "NV003", Type: "Có thời hạn", StartDate: "2023-05-20", EndDate: "2024-05-20", Salary: 28000000, Status: "Hiệu lực"},
		{ID: "HD004", EmployeeID: "NV004", Type: "Thử việc", StartDate: "2023-10-01", EndDate: "2023-11-30", Salary: 8000000, Status: "Hiệu lực"},
		{ID: "HD005", EmployeeID: "U_S1", Type: "Thử việc", StartDate: "2023-10-01", EndDate: "2023-11-30", Salary: 8000000, Status: "Hiệu lực"},
	}
}

func seedAttendanceSummaries() []records.AttendanceSummary {
	return []records.AttendanceSummary{
		{ID: "CC001", EmployeeID: "NV001", Month: "10/2023", StandardDays: 26, ActualDays: 26, OvertimeHours: 10},
		{ID: "CC002", EmployeeID: "NV002", Month: "10/2023", StandardDays: 26, ActualDays: 25, LateHours: 0.5, OvertimeHours: 4, LeaveDays: 1},
		{ID: "CC003", EmployeeID: "NV003", Month: "10/2023", StandardDays: 26, ActualDays: 26, OvertimeHours: 20},
		{ID: "CC004", EmployeeID: "U_S1", Month: "10/2023", StandardDays: 26, ActualDays: 24, LateHours: 2, LeaveDays: 2},
		{ID: "CC005", EmployeeID: "NV005", Month: "10/2023", StandardDays: 26, ActualDays: 26, OvertimeHours: 5},
		{ID: "CC006", EmployeeID: "NV006", Month: "10/2023", StandardDays: 26, ActualDays: 26},
	}
}

func seedBenefits() []records.BenefitRecord {
	return []records.BenefitRecord{
		{ID: "BF001", EmployeeID: "NV001", SocialInsurance: true, HealthInsurance: true, Welfare: []string{"Cơm trưa", "Xăng xe", "Điện thoại", "Gym"}},
		{ID: "BF002", EmployeeID: "NV002", SocialInsurance: true, HealthInsurance: true, Welfare: []string{"Cơm trưa", "Xăng xe", "Điện thoại"}},
		{ID: "BF003", EmployeeID: "NV003", SocialInsurance: true, HealthInsurance: true, Welfare: []string{"Cơm trưa", "Xăng xe", "Điện thoại", "Bảo hiểm tai nạn"}},
		{ID: "BF004", EmployeeID: "U_S1", Welfare: []string{"Cơm trưa"}},
	}
}
