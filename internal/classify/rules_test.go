package classify

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/risk-cli/internal/model"
	"github.com/sells-group/risk-cli/internal/preprocess"
)

func TestRuleClassifier_HighRisk(t *testing.T) {
	c := NewRuleClassifier()
	ctx := preprocess.RenderContext(preprocess.Preprocess(&model.Case{
		CaseID:       "CASE003",
		CustomerName: "ABC Enterprises",
		Amount:       600_000,
		DaysOverdue:  150,
		PastAttempts: 9,
		CustomerType: "Business",
		LoanType:     "Business Loan",
	}))

	result, err := c.ClassifyRisk(context.Background(), ctx)
	require.NoError(t, err)

	assert.Equal(t, "HIGH", result.RiskLevel)
	assert.InDelta(t, 0.85, result.Confidence, 0.001)
	assert.Equal(t, "LOW", result.RecoveryProbability)
	assert.Equal(t, 30, result.RecoveryPercentage)
}

func TestRuleClassifier_LowRisk(t *testing.T) {
	c := NewRuleClassifier()
	ctx := preprocess.RenderContext(preprocess.Preprocess(&model.Case{
		CaseID:       "CASE004",
		CustomerName: "Ravi Kumar",
		Amount:       15_000,
		DaysOverdue:  5,
		PastAttempts: 0,
		CustomerType: "Individual",
		LoanType:     "Personal Loan",
	}))

	result, err := c.ClassifyRisk(context.Background(), ctx)
	require.NoError(t, err)

	assert.Equal(t, "LOW", result.RiskLevel)
	assert.InDelta(t, 0.90, result.Confidence, 0.001)
	assert.Equal(t, "VERY HIGH", result.RecoveryProbability)
	assert.Equal(t, 85, result.RecoveryPercentage)
}

func TestRuleClassifier_MediumByDefault(t *testing.T) {
	c := NewRuleClassifier()

	result, err := c.ClassifyRisk(context.Background(), "nothing matches any indicator")
	require.NoError(t, err)

	assert.Equal(t, "MEDIUM", result.RiskLevel)
	assert.InDelta(t, 0.75, result.Confidence, 0.001)
	assert.Equal(t, "MODERATE", result.RecoveryProbability)
	assert.Equal(t, 55, result.RecoveryPercentage)
}

func TestRuleClassifier_SingleIndicatorIsNotEnough(t *testing.T) {
	c := NewRuleClassifier()

	result, err := c.ClassifyRisk(context.Background(), "the account is critically overdue")
	require.NoError(t, err)

	assert.Equal(t, "MEDIUM", result.RiskLevel)
}

func TestRuleClassifier_CaseInsensitive(t *testing.T) {
	c := NewRuleClassifier()

	result, err := c.ClassifyRisk(context.Background(), "CRITICALLY OVERDUE and VERY HIGH AMOUNT")
	require.NoError(t, err)

	assert.Equal(t, "HIGH", result.RiskLevel)
}

func TestRuleClassifier_Deterministic(t *testing.T) {
	c := NewRuleClassifier()
	ctx := "recently overdue, low amount, within grace period"

	first, err := c.ClassifyRisk(context.Background(), ctx)
	require.NoError(t, err)
	second, err := c.ClassifyRisk(context.Background(), ctx)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}
