package payroll

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"schoolhr/internal/domain/core"
)

func TestWriteBankFile(t *testing.T) {
	file := BankFile{
		Title:       "Salary Bank Transfer",
		Period:      "2024-03",
		GeneratedAt: time.Date(2024, 4, 1, 9, 30, 0, 0, time.UTC),
		Payable: []Row{
			{
				FullName:    "Jane Doe",
				Net:         dec("20000"),
				BankAccount: &core.BankAccount{AccountNumber: "001234567890", RoutingCode: "SCHL0000123", HolderName: "Jane Doe"},
				Payable:     true,
			},
			{
				FullName:    `Ravi "RK" Kumar`,
				Net:         dec("1234.5"),
				BankAccount: &core.BankAccount{AccountNumber: "99|88", RoutingCode: "CITY0000001"},
				Payable:     true,
			},
		},
		Skipped: []Row{{FullName: "No Bank", Net: dec("15000")}},
	}

	var buf bytes.Buffer
	if err := WriteBankFile(&buf, file); err != nil {
		t.Fatalf("write error: %v", err)
	}
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	want := []string{
		"Salary Bank Transfer",
		"Generated: 2024-04-01 09:30:00 UTC",
		"Month: 2024-03",
		"Account Number|Routing Code|Account Holder Name|Amount|Remarks",
		"001234567890|SCHL0000123|Jane Doe|20000.00|Salary 2024-03 - Jane Doe",
		"99 88|CITY0000001|Ravi 'RK' Kumar|1234.50|Salary 2024-03 - Ravi 'RK' Kumar",
	}
	if len(lines) != len(want) {
		t.Fatalf("expected %d lines, got %d:\n%s", len(want), len(lines), buf.String())
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Fatalf("line %d: expected %q, got %q", i, want[i], lines[i])
		}
	}
	if strings.Contains(buf.String(), "No Bank") {
		t.Fatal("skipped rows must not be written")
	}
}

func TestBankFileName(t *testing.T) {
	if got := BankFileName("2024-03"); got != "bank-transfer-2024-03.txt" {
		t.Fatalf("unexpected name %s", got)
	}
}
