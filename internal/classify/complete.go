package classify

import (
	"strings"

	"github.com/sells-group/risk-cli/internal/model"
)

// rawClassification mirrors the JSON the model is asked to emit. Pointer
// fields distinguish "omitted" from zero values so the completion policy can
// fill deterministic defaults.
type rawClassification struct {
	RiskLevel           *string  `json:"risk_level"`
	Confidence          *float64 `json:"confidence"`
	RecoveryProbability *string  `json:"recovery_probability"`
	RecoveryPercentage  *int     `json:"recovery_percentage"`
	Reason              *string  `json:"reason"`
	RecommendedAction   *string  `json:"recommended_action"`
}

const (
	defaultRiskLevel  = "Unknown"
	defaultReason     = "No explanation provided"
	defaultConfidence = 0.8
	defaultAction     = "Follow standard recovery procedure"
)

// probabilityPercentages is the fixed probability → percentage mapping.
var probabilityPercentages = map[model.RecoveryProbability]int{
	model.RecoveryVeryHigh: 85,
	model.RecoveryHigh:     70,
	model.RecoveryModerate: 50,
	model.RecoveryLow:      30,
	model.RecoveryVeryLow:  15,
}

const defaultRecoveryPercentage = 50

// inferProbability derives a recovery probability from a risk level when the
// model omitted one: low risk recovers well, medium moderately, anything
// else poorly.
func inferProbability(riskLevel string) model.RecoveryProbability {
	switch model.RiskLevel(strings.ToUpper(riskLevel)) {
	case model.RiskLow:
		return model.RecoveryHigh
	case model.RiskMedium:
		return model.RecoveryModerate
	default:
		return model.RecoveryLow
	}
}

// completeFields applies the uniform field-completion policy: every omitted
// field gets a deterministic default, so callers downstream never see a
// partially-populated classification.
func completeFields(raw rawClassification) model.Classification {
	out := model.Classification{
		RiskLevel:         defaultRiskLevel,
		Confidence:        defaultConfidence,
		Reason:            defaultReason,
		RecommendedAction: defaultAction,
	}

	if raw.RiskLevel != nil {
		out.RiskLevel = *raw.RiskLevel
	}
	if raw.Confidence != nil {
		out.Confidence = *raw.Confidence
	}
	if raw.Reason != nil {
		out.Reason = *raw.Reason
	}
	if raw.RecommendedAction != nil {
		out.RecommendedAction = *raw.RecommendedAction
	}

	if raw.RecoveryProbability != nil {
		out.RecoveryProbability = *raw.RecoveryProbability
	} else {
		out.RecoveryProbability = string(inferProbability(out.RiskLevel))
	}

	if raw.RecoveryPercentage != nil {
		out.RecoveryPercentage = *raw.RecoveryPercentage
	} else if pct, ok := probabilityPercentages[model.RecoveryProbability(out.RecoveryProbability)]; ok {
		out.RecoveryPercentage = pct
	} else {
		out.RecoveryPercentage = defaultRecoveryPercentage
	}

	return out
}

// helpers for building rawClassification literals
func strPtr(s string) *string     { return &s }
func floatPtr(f float64) *float64 { return &f }
func intPtr(n int) *int           { return &n }
