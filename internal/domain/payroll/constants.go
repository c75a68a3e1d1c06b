package payroll

const (
	ElementTypeAllowance = "allowance"
	ElementTypeDeduction = "deduction"

	WarningMissingBank = "missing_bank_account"
	WarningNegativeNet = "non_positive_net"

	FormatJSON = "json"
	FormatBank = "bank"
	FormatXLSX = "xlsx"
)

const (
	CategoryProvidentFund  = "provident_fund"
	CategoryTaxWithholding = "tax_withholding"
	CategoryAdvance        = "advance"
	CategoryOtherDeduction = "other_deduction"
	CategoryHousing        = "housing"
	CategoryTransport      = "transport"
	CategoryMedical        = "medical"
	CategoryOtherAllowance = "other_allowance"
)

type category struct {
	Type  string
	Label string
}

var categories = map[string]category{
	CategoryProvidentFund:  {ElementTypeDeduction, "Provident Fund"},
	CategoryTaxWithholding: {ElementTypeDeduction, "Tax Withholding"},
	CategoryAdvance:        {ElementTypeDeduction, "Salary Advance"},
	CategoryOtherDeduction: {ElementTypeDeduction, "Other Deduction"},
	CategoryHousing:        {ElementTypeAllowance, "Housing Allowance"},
	CategoryTransport:      {ElementTypeAllowance, "Transport Allowance"},
	CategoryMedical:        {ElementTypeAllowance, "Medical Allowance"},
	CategoryOtherAllowance: {ElementTypeAllowance, "Other Allowance"},
}

// CategoryOrder fixes the display order of line items.
var CategoryOrder = []string{
	CategoryHousing,
	CategoryTransport,
	CategoryMedical,
	CategoryOtherAllowance,
	CategoryProvidentFund,
	CategoryTaxWithholding,
	CategoryAdvance,
	CategoryOtherDeduction,
}

func IsCategory(name string) bool {
	_, ok := categories[name]
	return ok
}

func CategoryType(name string) string {
	return categories[name].Type
}

func CategoryLabel(name string) string {
	if c, ok := categories[name]; ok {
		return c.Label
	}
	return name
}

// BankFileColumns is the column header line of the bank transfer file.
// Downstream import tooling depends on this order.
var BankFileColumns = []string{"Account Number", "Routing Code", "Account Holder Name", "Amount", "Remarks"}
