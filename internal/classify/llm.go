package classify

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/risk-cli/internal/config"
	"github.com/sells-group/risk-cli/internal/model"
	"github.com/sells-group/risk-cli/pkg/anthropic"
)

const classifySystemPrompt = `You are an AI Risk Assessment Agent for a debt collection enterprise.
Your job is to classify overdue debt cases into risk categories and predict recovery probability.

RISK CATEGORIES:
1. LOW RISK - Customer likely to pay, minor delays, low amount
2. MEDIUM RISK - Needs attention, moderate delays/amounts, some recovery attempts failed
3. HIGH RISK - Serious concern, long overdue, high amounts, multiple failed attempts

RECOVERY PROBABILITY:
Based on case factors, estimate the likelihood of successful debt recovery:
- VERY HIGH (>80%): New overdue, cooperative customer, small amount
- HIGH (60-80%): Moderate overdue, some attempts, willing to negotiate
- MODERATE (40-60%): Longer overdue, multiple attempts, uncertain outcome
- LOW (20-40%): Severely overdue, many failed attempts, unresponsive
- VERY LOW (<20%): Written-off candidate, legal action needed

OUTPUT FORMAT (JSON only, no markdown):
{
    "risk_level": "LOW" or "MEDIUM" or "HIGH",
    "confidence": 0.0 to 1.0,
    "recovery_probability": "VERY HIGH" or "HIGH" or "MODERATE" or "LOW" or "VERY LOW",
    "recovery_percentage": 0 to 100,
    "reason": "2-3 sentence explanation",
    "recommended_action": "Suggested next step for recovery team"
}

IMPORTANT:
- Be objective and base decisions on the provided context
- Consider all factors: amount, overdue duration, past attempts, customer type
- Provide actionable recommendations
- Output ONLY valid JSON, no other text`

const classifyUserSuffix = "\nAnalyze this case and provide risk classification in JSON format."

// LLMClassifier sends rendered case context to Claude and interprets the
// response through the parse fallback chain. Service failures are contained
// here: callers always get a classification, never an error.
type LLMClassifier struct {
	client    anthropic.Client
	model     string
	maxTokens int64
	system    []anthropic.SystemBlock
	limiter   *rate.Limiter
}

// NewLLMClassifier builds the Claude-backed variant.
func NewLLMClassifier(client anthropic.Client, cfg config.AnthropicConfig) *LLMClassifier {
	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = 2
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 1024
	}
	return &LLMClassifier{
		client:    client,
		model:     cfg.Model,
		maxTokens: maxTokens,
		system:    anthropic.BuildCachedSystemBlocks(classifySystemPrompt),
		limiter:   rate.NewLimiter(rate.Limit(rps), 1),
	}
}

// ClassifyRisk submits the context and parses whatever comes back. Transport
// or service failures yield the ERROR sentinel result.
func (c *LLMClassifier) ClassifyRisk(ctx context.Context, caseContext string) (*model.Classification, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		result := Sentinel(err.Error()).Classification
		return &result, nil
	}

	resp, err := c.client.CreateMessage(ctx, anthropic.MessageRequest{
		Model:     c.model,
		MaxTokens: c.maxTokens,
		System:    c.system,
		Messages: []anthropic.Message{
			{Role: "user", Content: caseContext + classifyUserSuffix},
		},
	})
	if err != nil {
		zap.L().Warn("classify: service call failed", zap.Error(err))
		result := Sentinel(err.Error()).Classification
		return &result, nil
	}

	resp.Usage.LogUsage(c.model, "classify")

	parsed := ParseResponse(resp.Text())
	if parsed.Outcome == OutcomeHeuristic {
		zap.L().Warn("classify: response was not valid JSON, risk level extracted heuristically",
			zap.String("risk_level", parsed.Classification.RiskLevel),
		)
	}
	return &parsed.Classification, nil
}
