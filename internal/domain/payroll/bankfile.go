package payroll

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"
)

const bankFileTimeLayout = "2006-01-02 15:04:05 MST"

var fieldCleaner = strings.NewReplacer("|", " ", "\r", " ", "\n", " ", `"`, "'")

// Remarks is the transfer narration, e.g. "Salary 2024-03 - Jane Doe".
func Remarks(period, fullName string) string {
	return fmt.Sprintf("Salary %s - %s", period, fullName)
}

// BankFileName is the attachment name for a month's transfer file.
func BankFileName(period string) string {
	return fmt.Sprintf("bank-transfer-%s.txt", period)
}

// BankLine renders one payable row as its five pipe-delimited fields.
func BankLine(period string, row Row) []string {
	acct := row.BankAccount
	holder := acct.HolderName
	if strings.TrimSpace(holder) == "" {
		holder = row.FullName
	}
	return []string{
		cleanField(acct.AccountNumber),
		cleanField(acct.RoutingCode),
		cleanField(holder),
		row.Net.StringFixed(moneyPlaces),
		cleanField(Remarks(period, row.FullName)),
	}
}

// WriteBankFile writes the header block, the column header line, then one
// line per payable row. Skipped rows are never written.
func WriteBankFile(w io.Writer, file BankFile) error {
	header := []string{
		file.Title,
		"Generated: " + file.GeneratedAt.Format(bankFileTimeLayout),
		"Month: " + file.Period,
	}
	for _, line := range header {
		if _, err := io.WriteString(w, line+"\n"); err != nil {
			return err
		}
	}

	writer := csv.NewWriter(w)
	writer.Comma = '|'
	if err := writer.Write(BankFileColumns); err != nil {
		return err
	}
	for _, row := range file.Payable {
		if row.BankAccount == nil {
			continue
		}
		if err := writer.Write(BankLine(file.Period, row)); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// cleanField strips characters that would make the csv writer quote a field,
// keeping every line a plain pipe-delimited record.
func cleanField(value string) string {
	return strings.TrimSpace(fieldCleaner.Replace(value))
}

func generatedAt(now time.Time) time.Time {
	return now.UTC().Truncate(time.Second)
}
