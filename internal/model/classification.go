package model

// RiskLevel classifies how difficult a case will be to recover.
type RiskLevel string

const (
	RiskHigh   RiskLevel = "HIGH"
	RiskMedium RiskLevel = "MEDIUM"
	RiskLow    RiskLevel = "LOW"

	// RiskUnknown is assigned when the model output names no recognizable level.
	RiskUnknown RiskLevel = "UNKNOWN"
	// RiskError marks a sentinel result produced when the classifier service
	// itself failed; such results always carry zero confidence.
	RiskError RiskLevel = "ERROR"
)

// RecoveryProbability is the ordinal estimate of successful collection.
type RecoveryProbability string

const (
	RecoveryVeryHigh RecoveryProbability = "VERY HIGH"
	RecoveryHigh     RecoveryProbability = "HIGH"
	RecoveryModerate RecoveryProbability = "MODERATE"
	RecoveryLow      RecoveryProbability = "LOW"
	RecoveryVeryLow  RecoveryProbability = "VERY LOW"
)

// Classification is the output of a classifier. Every field is populated:
// the field-completion policy fills deterministic defaults for anything the
// raw model output omitted.
type Classification struct {
	RiskLevel           string  `json:"risk_level"`
	Confidence          float64 `json:"confidence"`
	RecoveryProbability string  `json:"recovery_probability"`
	RecoveryPercentage  int     `json:"recovery_percentage"`
	Reason              string  `json:"reason"`
	RecommendedAction   string  `json:"recommended_action"`
}
