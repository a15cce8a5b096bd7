// Package ledger persists classification decisions for audit. The ledger is
// logically append-only: decisions are created once, never mutated, and only
// ClearAll (an explicit operator action) removes them. The ledger exclusively
// owns the decision sequence.
package ledger

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/sells-group/risk-cli/internal/model"
)

// Ledger is the decision audit store. Implementations must serialize
// StoreDecision internally: the sequence number is derived from the current
// record count and is only collision-free under a single writer at a time.
type Ledger interface {
	StoreDecision(ctx context.Context, c *model.Case, result *model.Classification) (*model.Decision, error)
	GetAll(ctx context.Context) ([]model.Decision, error)
	GetByCase(ctx context.Context, caseID string) ([]model.Decision, error)
	// GetLatestByCase returns the last-appended decision for a case (nil when
	// none exist). Last-appended, not max-timestamp: backfilled records would
	// win over older appends by design of the audit trail.
	GetLatestByCase(ctx context.Context, caseID string) (*model.Decision, error)
	GetByRiskLevel(ctx context.Context, level string) ([]model.Decision, error)
	Statistics(ctx context.Context) (*model.Statistics, error)
	// ClearAll truncates the ledger. Destructive; there is no soft delete.
	ClearAll(ctx context.Context) error
	Migrate(ctx context.Context) error
	Close() error
}

// decisionIDFormat renders the sequential audit identifier ("DEC00001").
const decisionIDFormat = "DEC%05d"

// newDecision builds the immutable audit record for sequence number seq,
// snapshotting the case inputs and the classifier output as of now.
func newDecision(seq int, c *model.Case, result *model.Classification) model.Decision {
	return model.Decision{
		DecisionID:   fmt.Sprintf(decisionIDFormat, seq),
		CaseID:       c.CaseID,
		CustomerName: c.CustomerName,
		Timestamp:    time.Now().UTC(),
		Input: model.CaseSnapshot{
			Amount:       c.Amount,
			DaysOverdue:  c.DaysOverdue,
			PastAttempts: c.PastAttempts,
			CustomerType: c.CustomerType,
			LoanType:     c.LoanType,
		},
		AIDecision: model.DecisionSummary{
			RiskLevel:         result.RiskLevel,
			Confidence:        result.Confidence,
			Reason:            result.Reason,
			RecommendedAction: result.RecommendedAction,
		},
		ReviewStatus: model.ReviewStatusPending,
	}
}

func roundPercentage(part, total int) float64 {
	return math.Round(float64(part)/float64(total)*1000) / 10
}

// computeStatistics aggregates decisions by risk level. An empty ledger gets
// zeroed counts and nil percentages so there is never a division by zero.
func computeStatistics(decisions []model.Decision) *model.Statistics {
	stats := &model.Statistics{Total: len(decisions)}
	if stats.Total == 0 {
		return stats
	}

	for _, d := range decisions {
		switch model.RiskLevel(d.AIDecision.RiskLevel) {
		case model.RiskHigh:
			stats.High++
		case model.RiskMedium:
			stats.Medium++
		case model.RiskLow:
			stats.Low++
		}
	}

	high := roundPercentage(stats.High, stats.Total)
	medium := roundPercentage(stats.Medium, stats.Total)
	low := roundPercentage(stats.Low, stats.Total)
	stats.HighPercentage = &high
	stats.MediumPercentage = &medium
	stats.LowPercentage = &low

	return stats
}
