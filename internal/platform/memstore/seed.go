package memstore

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"schoolhr/internal/domain/auth"
	"schoolhr/internal/domain/core"
)

// DemoSchoolID identifies the single school served by the memory driver.
const DemoSchoolID = "00000000-0000-0000-0000-000000000001"

// SeedDemo loads an admin login and a small staff roster for local runs.
func (s *Store) SeedDemo(adminEmail, adminPassword string) error {
	if strings.TrimSpace(adminEmail) != "" && strings.TrimSpace(adminPassword) != "" {
		hash, err := auth.HashPassword(adminPassword)
		if err != nil {
			return err
		}
		s.AddUser(auth.User{
			ID:           "00000000-0000-0000-0000-0000000000a1",
			SchoolID:     DemoSchoolID,
			Email:        adminEmail,
			FullName:     "Administrator",
			RoleName:     auth.RoleAdmin,
			PasswordHash: hash,
		})
	}

	joined := time.Date(2019, time.June, 1, 0, 0, 0, 0, time.UTC)
	s.AddEmployee(DemoSchoolID, core.Employee{
		ID:          "00000000-0000-0000-0000-0000000000e1",
		FullName:    "Jane Doe",
		Salary:      decimal.NewFromInt(22000),
		Designation: "Science Teacher",
		Department:  "Science",
		JoiningDate: &joined,
		BankAccount: &core.BankAccount{AccountNumber: "001234567890", RoutingCode: "SCHL0000123", HolderName: "Jane Doe", BankName: "City Bank", Primary: true},
	})
	s.AddEmployee(DemoSchoolID, core.Employee{
		ID:          "00000000-0000-0000-0000-0000000000e2",
		FullName:    "Amit Rao",
		Salary:      decimal.NewFromInt(15000),
		Designation: "Librarian",
		Department:  "Administration",
		JoiningDate: &joined,
	})
	return nil
}
