package classify

import (
	"encoding/json"
	"strings"

	"github.com/sells-group/risk-cli/internal/model"
)

// Outcome tags which stage of the fallback chain produced a classification.
type Outcome string

const (
	// OutcomeParsed means the response decoded as JSON.
	OutcomeParsed Outcome = "parsed"
	// OutcomeHeuristic means the risk level was scraped out of free text.
	OutcomeHeuristic Outcome = "heuristic"
	// OutcomeFailed means the service call itself failed; the classification
	// is the ERROR sentinel.
	OutcomeFailed Outcome = "failed"
)

// ParsedResponse pairs a classification with the stage that produced it.
type ParsedResponse struct {
	Outcome        Outcome
	Classification model.Classification
}

const heuristicReasonLimit = 200

// ParseResponse interprets raw model output. JSON (possibly fence-wrapped)
// is decoded and completed; anything else degrades to heuristic risk-level
// extraction. It never fails.
func ParseResponse(text string) ParsedResponse {
	var raw rawClassification
	if err := json.Unmarshal([]byte(cleanJSON(text)), &raw); err == nil {
		return ParsedResponse{
			Outcome:        OutcomeParsed,
			Classification: completeFields(raw),
		}
	}

	reason := text
	if len(reason) > heuristicReasonLimit {
		reason = reason[:heuristicReasonLimit]
	}
	return ParsedResponse{
		Outcome: OutcomeHeuristic,
		Classification: completeFields(rawClassification{
			RiskLevel:         strPtr(string(extractRiskLevel(text))),
			Confidence:        floatPtr(0.7),
			Reason:            strPtr(reason),
			RecommendedAction: strPtr("Manual review recommended"),
		}),
	}
}

// Sentinel builds the ERROR classification for a failed service call. The
// result flows through field completion like any other, so every field is
// populated and downstream storage still receives a well-formed object.
func Sentinel(errMsg string) ParsedResponse {
	return ParsedResponse{
		Outcome: OutcomeFailed,
		Classification: completeFields(rawClassification{
			RiskLevel:         strPtr(string(model.RiskError)),
			Confidence:        floatPtr(0.0),
			Reason:            strPtr(errMsg),
			RecommendedAction: strPtr("Manual review required"),
		}),
	}
}

// extractRiskLevel scans unstructured text for a risk keyword, in fixed
// order, defaulting to UNKNOWN.
func extractRiskLevel(text string) model.RiskLevel {
	upper := strings.ToUpper(text)
	switch {
	case strings.Contains(upper, string(model.RiskHigh)):
		return model.RiskHigh
	case strings.Contains(upper, string(model.RiskMedium)):
		return model.RiskMedium
	case strings.Contains(upper, string(model.RiskLow)):
		return model.RiskLow
	default:
		return model.RiskUnknown
	}
}

// cleanJSON strips markdown code fences and isolates the outermost JSON
// object from a model response.
func cleanJSON(text string) string {
	text = strings.TrimSpace(text)

	// Strip markdown code fences.
	if strings.HasPrefix(text, "```json") {
		text = strings.TrimPrefix(text, "```json")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
	} else if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
	}

	// Find first { and last }.
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start >= 0 && end > start {
		text = text[start : end+1]
	}

	return strings.TrimSpace(text)
}
