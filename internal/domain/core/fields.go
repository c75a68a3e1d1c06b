package core

import "strings"

// MaskAccountNumber keeps the last four characters of an account number.
func MaskAccountNumber(number string) string {
	number = strings.TrimSpace(number)
	if len(number) <= 4 {
		return strings.Repeat("*", len(number))
	}
	return strings.Repeat("*", len(number)-4) + number[len(number)-4:]
}

// RedactBankAccount returns a copy of acct with the account number masked.
// Callers that may export bank files see the full number.
func RedactBankAccount(acct *BankAccount, canExport bool) *BankAccount {
	if acct == nil || canExport {
		return acct
	}
	out := *acct
	out.AccountNumber = MaskAccountNumber(acct.AccountNumber)
	return &out
}
