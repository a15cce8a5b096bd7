// Package preprocess turns raw case fields into decision-ready context text.
// The classifier reasons over these descriptions, not over raw numbers, so
// the category vocabulary here is the model's only grounding input.
package preprocess

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/sells-group/risk-cli/internal/model"
)

// Amount thresholds in rupees.
const (
	amountLow    = 20_000
	amountMedium = 100_000
	amountHigh   = 500_000
)

// Days-overdue thresholds.
const (
	overdueRecent   = 15
	overdueModerate = 45
	overdueLong     = 90
)

// Past-attempts thresholds.
const (
	attemptsFew      = 2
	attemptsMultiple = 5
)

var amountPrinter = message.NewPrinter(language.English)

func formatAmount(amount float64) string {
	return amountPrinter.Sprint(number.Decimal(amount, number.MaxFractionDigits(0)))
}

func categorizeAmount(amount float64) string {
	switch {
	case amount < amountLow:
		return "Low amount (below ₹20,000)"
	case amount < amountMedium:
		return "Medium amount (₹20,000 - ₹100,000)"
	case amount < amountHigh:
		return "High amount (₹100,000 - ₹500,000)"
	default:
		return fmt.Sprintf("Very high amount (above ₹500,000 - specifically ₹%s)", formatAmount(amount))
	}
}

func categorizeOverdue(days int) string {
	switch {
	case days <= overdueRecent:
		return fmt.Sprintf("Recently overdue (%d days - within grace period)", days)
	case days <= overdueModerate:
		return fmt.Sprintf("Moderately overdue (%d days - needs attention)", days)
	case days <= overdueLong:
		return fmt.Sprintf("Long overdue (%d days - serious concern)", days)
	default:
		return fmt.Sprintf("Critically overdue (%d days - immediate action required)", days)
	}
}

func categorizeAttempts(attempts int) string {
	switch {
	case attempts == 0:
		return "No recovery attempts made yet"
	case attempts <= attemptsFew:
		return fmt.Sprintf("Few recovery attempts (%d attempts)", attempts)
	case attempts <= attemptsMultiple:
		return fmt.Sprintf("Multiple failed recovery attempts (%d attempts)", attempts)
	default:
		return fmt.Sprintf("Exhaustive recovery attempts failed (%d attempts - customer unresponsive)", attempts)
	}
}

func categorizeCustomerType(customerType string) string {
	if strings.EqualFold(customerType, string(model.CustomerTypeBusiness)) {
		return "Business customer (higher stakes, formal recovery process needed)"
	}
	return "Individual customer (personal approach may work)"
}

// loanContexts frames each known loan type by its security and recovery
// priority. Unknown types fall through to a generic framing that still names
// the loan type.
var loanContexts = map[string]string{
	"Credit Card":   "Credit card debt (unsecured, typically smaller amounts)",
	"Personal Loan": "Personal loan (unsecured, medium priority)",
	"Home Loan":     "Home loan (secured by property, high recovery priority)",
	"Vehicle Loan":  "Vehicle loan (secured by vehicle, can be repossessed)",
	"Business Loan": "Business loan (complex recovery, may involve legal action)",
}

func categorizeLoanType(loanType string) string {
	if ctx, ok := loanContexts[loanType]; ok {
		return ctx
	}
	return fmt.Sprintf("%s (standard recovery process)", loanType)
}

// Preprocess derives the per-field category strings for a case. Returns nil
// for a nil case; it never fails otherwise.
func Preprocess(c *model.Case) *model.PreprocessedCase {
	if c == nil {
		return nil
	}
	return &model.PreprocessedCase{
		CaseID:       c.CaseID,
		CustomerName: c.CustomerName,

		RawAmount:       c.Amount,
		RawDaysOverdue:  c.DaysOverdue,
		RawPastAttempts: c.PastAttempts,

		AmountContext:   categorizeAmount(c.Amount),
		OverdueContext:  categorizeOverdue(c.DaysOverdue),
		AttemptsContext: categorizeAttempts(c.PastAttempts),
		CustomerContext: categorizeCustomerType(c.CustomerType),
		LoanContext:     categorizeLoanType(c.LoanType),
	}
}

// contextTemplate is the fixed prompt block the classifier receives. Its
// structure must stay byte-stable: it is the model's only view of the case.
const contextTemplate = `
CASE DETAILS FOR RISK ASSESSMENT:
==================================
Case ID: %s
Customer: %s

FINANCIAL CONTEXT:
- Amount: %s
- Loan Type: %s

OVERDUE STATUS:
- Duration: %s

RECOVERY HISTORY:
- Past Attempts: %s

CUSTOMER PROFILE:
- Type: %s
==================================
`

// RenderContext assembles the human-readable assessment block from a
// preprocessed case. Returns "" for nil input.
func RenderContext(pc *model.PreprocessedCase) string {
	if pc == nil {
		return ""
	}
	return fmt.Sprintf(contextTemplate,
		pc.CaseID,
		pc.CustomerName,
		pc.AmountContext,
		pc.LoanContext,
		pc.OverdueContext,
		pc.AttemptsContext,
		pc.CustomerContext,
	)
}
