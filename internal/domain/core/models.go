package core

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	StatusActive   = "active"
	StatusInactive = "inactive"
	StatusOnLeave  = "on_leave"
)

// Employee is the read-only staff record consumed by attendance and payroll.
type Employee struct {
	ID          string          `json:"id"`
	FullName    string          `json:"fullName"`
	Status      string          `json:"status"`
	Salary      decimal.Decimal `json:"salary"`
	Designation string          `json:"designation"`
	Department  string          `json:"department"`
	JoiningDate *time.Time      `json:"joiningDate,omitempty"`
	BankAccount *BankAccount    `json:"bankAccount,omitempty"`
}

// BankAccount is the payout destination used by the bank transfer file.
type BankAccount struct {
	AccountNumber string `json:"accountNumber"`
	RoutingCode   string `json:"routingCode"`
	HolderName    string `json:"holderName"`
	BankName      string `json:"bankName"`
	Primary       bool   `json:"primary"`
}

// Usable reports whether the account carries enough data for a transfer line.
func (b *BankAccount) Usable() bool {
	return b != nil && b.AccountNumber != "" && b.RoutingCode != ""
}

// PickBankAccount returns the primary usable account, falling back to the first usable one.
func PickBankAccount(accounts []BankAccount) *BankAccount {
	var fallback *BankAccount
	for i := range accounts {
		acct := accounts[i]
		if !acct.Usable() {
			continue
		}
		if acct.Primary {
			return &acct
		}
		if fallback == nil {
			fallback = &acct
		}
	}
	return fallback
}
