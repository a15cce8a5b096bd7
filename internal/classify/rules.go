package classify

import (
	"context"
	"strings"

	"github.com/sells-group/risk-cli/internal/model"
)

// Indicator phrases come straight from the preprocessor's category
// vocabulary, so the rendered context is matchable without an LLM call.
var (
	highRiskIndicators = []string{
		"critically overdue",
		"exhaustive recovery attempts",
		"very high amount",
		"immediate action required",
	}
	lowRiskIndicators = []string{
		"recently overdue",
		"no recovery attempts",
		"low amount",
		"within grace period",
	}
)

// RuleClassifier is the deterministic demo-mode variant. It scans the
// rendered context for indicator phrases and needs no external service.
type RuleClassifier struct{}

// NewRuleClassifier returns the rule-based classifier.
func NewRuleClassifier() *RuleClassifier {
	return &RuleClassifier{}
}

// ClassifyRisk counts matched indicators: two or more high-risk phrases win,
// then two or more low-risk phrases, else medium. Always succeeds.
func (c *RuleClassifier) ClassifyRisk(_ context.Context, caseContext string) (*model.Classification, error) {
	lower := strings.ToLower(caseContext)

	var highScore, lowScore int
	for _, ind := range highRiskIndicators {
		if strings.Contains(lower, ind) {
			highScore++
		}
	}
	for _, ind := range lowRiskIndicators {
		if strings.Contains(lower, ind) {
			lowScore++
		}
	}

	var raw rawClassification
	switch {
	case highScore >= 2:
		raw = rawClassification{
			RiskLevel:           strPtr(string(model.RiskHigh)),
			Confidence:          floatPtr(0.85),
			RecoveryProbability: strPtr(string(model.RecoveryLow)),
			RecoveryPercentage:  intPtr(30),
			Reason:              strPtr("Case shows multiple high-risk indicators including long overdue duration and multiple failed recovery attempts."),
			RecommendedAction:   strPtr("Escalate to legal team for formal notice. Consider asset recovery if secured loan."),
		}
	case lowScore >= 2:
		raw = rawClassification{
			RiskLevel:           strPtr(string(model.RiskLow)),
			Confidence:          floatPtr(0.90),
			RecoveryProbability: strPtr(string(model.RecoveryVeryHigh)),
			RecoveryPercentage:  intPtr(85),
			Reason:              strPtr("Case is recently overdue with low amount. Customer likely to pay with gentle reminder."),
			RecommendedAction:   strPtr("Send automated payment reminder. Schedule follow-up call in 3 days."),
		}
	default:
		raw = rawClassification{
			RiskLevel:           strPtr(string(model.RiskMedium)),
			Confidence:          floatPtr(0.75),
			RecoveryProbability: strPtr(string(model.RecoveryModerate)),
			RecoveryPercentage:  intPtr(55),
			Reason:              strPtr("Case shows mixed indicators. Moderate attention required with proactive follow-up."),
			RecommendedAction:   strPtr("Assign to recovery agent for personal follow-up. Offer payment plan options."),
		}
	}

	result := completeFields(raw)
	return &result, nil
}
