package model

// CustomerType distinguishes individual debtors from business accounts.
type CustomerType string

const (
	CustomerTypeIndividual CustomerType = "Individual"
	CustomerTypeBusiness   CustomerType = "Business"
)

// Case is one overdue-debt account under recovery tracking. Cases come from
// the read-only case source and are never written back.
type Case struct {
	CaseID       string  `json:"case_id"`
	CustomerName string  `json:"customer_name"`
	Amount       float64 `json:"amount"`
	DaysOverdue  int     `json:"days_overdue"`
	PastAttempts int     `json:"past_attempts"`
	CustomerType string  `json:"customer_type"`
	LoanType     string  `json:"loan_type"`
	Priority     string  `json:"priority,omitempty"`
	AssignedDCA  string  `json:"assigned_dca,omitempty"`
	Region       string  `json:"region,omitempty"`
	SLADays      int     `json:"sla_days,omitempty"`
}

// PreprocessedCase holds the raw numeric fields alongside the descriptive
// category strings derived from them. Each category string is a function of
// exactly one raw field; nothing here is persisted or cached.
type PreprocessedCase struct {
	CaseID       string `json:"case_id"`
	CustomerName string `json:"customer_name"`

	RawAmount       float64 `json:"raw_amount"`
	RawDaysOverdue  int     `json:"raw_days_overdue"`
	RawPastAttempts int     `json:"raw_past_attempts"`

	AmountContext   string `json:"amount_context"`
	OverdueContext  string `json:"overdue_context"`
	AttemptsContext string `json:"attempts_context"`
	CustomerContext string `json:"customer_context"`
	LoanContext     string `json:"loan_context"`
}
