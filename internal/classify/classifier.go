// Package classify holds the risk classification contract and its two
// variants: a Claude-backed classifier and a deterministic rule-based one.
// Both contain their own failures — ClassifyRisk always yields a well-formed
// Classification, possibly ERROR-tagged, and never a hard error.
package classify

import (
	"context"

	"github.com/sells-group/risk-cli/internal/model"
)

// Classifier turns rendered case context into a risk classification.
type Classifier interface {
	ClassifyRisk(ctx context.Context, caseContext string) (*model.Classification, error)
}
