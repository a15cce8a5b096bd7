package model

import "time"

// ReviewStatusPending is the status every decision starts in. Decisions are
// append-only; review workflow happens outside this system.
const ReviewStatusPending = "pending_review"

// CaseSnapshot is the subset of raw case fields copied into a decision at
// classification time. It is never updated, even if the case later changes.
type CaseSnapshot struct {
	Amount       float64 `json:"amount"`
	DaysOverdue  int     `json:"days_overdue"`
	PastAttempts int     `json:"past_attempts"`
	CustomerType string  `json:"customer_type"`
	LoanType     string  `json:"loan_type"`
}

// DecisionSummary captures the classifier output persisted with a decision.
type DecisionSummary struct {
	RiskLevel         string  `json:"risk_level"`
	Confidence        float64 `json:"confidence"`
	Reason            string  `json:"reason"`
	RecommendedAction string  `json:"recommended_action"`
}

// Decision is one immutable audit entry for a classification event.
// DecisionID is sequential ("DEC00001", "DEC00002", ...), allocated by the
// ledger, which is the only component allowed to mutate the collection.
type Decision struct {
	DecisionID   string          `json:"decision_id"`
	CaseID       string          `json:"case_id"`
	CustomerName string          `json:"customer_name"`
	Timestamp    time.Time       `json:"timestamp"`
	Input        CaseSnapshot    `json:"input_data"`
	AIDecision   DecisionSummary `json:"ai_decision"`
	ReviewStatus string          `json:"status"`
}

// Statistics aggregates the ledger by risk level. Percentage pointers are nil
// when the ledger is empty so an empty ledger never divides by zero.
type Statistics struct {
	Total  int `json:"total"`
	High   int `json:"high"`
	Medium int `json:"medium"`
	Low    int `json:"low"`

	HighPercentage   *float64 `json:"high_percentage,omitempty"`
	MediumPercentage *float64 `json:"medium_percentage,omitempty"`
	LowPercentage    *float64 `json:"low_percentage,omitempty"`
}
