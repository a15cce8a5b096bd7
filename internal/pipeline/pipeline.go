// Package pipeline composes case lookup, preprocessing, classification, and
// ledger storage into one synchronous run per case.
package pipeline

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/sells-group/risk-cli/internal/casesource"
	"github.com/sells-group/risk-cli/internal/classify"
	"github.com/sells-group/risk-cli/internal/ledger"
	"github.com/sells-group/risk-cli/internal/model"
	"github.com/sells-group/risk-cli/internal/preprocess"
)

// Pipeline wires the components together. Construct once per process; the
// case source is loaded at construction and never reloaded.
type Pipeline struct {
	source     *casesource.Source
	classifier classify.Classifier
	ledger     ledger.Ledger
}

func New(source *casesource.Source, classifier classify.Classifier, led ledger.Ledger) *Pipeline {
	return &Pipeline{source: source, classifier: classifier, ledger: led}
}

// ProcessCase runs one case through lookup, preprocess, classify, and
// (when store is true) ledger storage. It never returns a nil result and
// never panics: any unexpected failure is reported on the result's Error
// field with Success false.
func (p *Pipeline) ProcessCase(ctx context.Context, caseID string, store bool) (result *model.PipelineResult) {
	result = &model.PipelineResult{CaseID: caseID}

	defer func() {
		if r := recover(); r != nil {
			result.Success = false
			result.Error = fmt.Sprintf("%v", r)
			zap.L().Error("pipeline: unexpected failure",
				zap.String("case_id", caseID),
				zap.Any("panic", r),
			)
		}
	}()

	zap.L().Info("pipeline: fetching case", zap.String("case_id", caseID))
	c, ok := p.source.Get(caseID)
	if !ok {
		result.Error = fmt.Sprintf("Case %s not found in database", caseID)
		zap.L().Warn("pipeline: case not found", zap.String("case_id", caseID))
		return result
	}
	result.Case = c

	zap.L().Info("pipeline: preprocessing case",
		zap.String("case_id", caseID),
		zap.String("customer", c.CustomerName),
	)
	caseContext := preprocess.RenderContext(preprocess.Preprocess(c))
	result.Context = caseContext

	zap.L().Info("pipeline: classifying case", zap.String("case_id", caseID))
	classification, err := p.classifier.ClassifyRisk(ctx, caseContext)
	if err != nil {
		// Classifiers contain their own failures; a returned error is an
		// unexpected condition and fails the run.
		result.Error = err.Error()
		zap.L().Error("pipeline: classification failed",
			zap.String("case_id", caseID),
			zap.Error(err),
		)
		return result
	}
	result.Classification = classification
	zap.L().Info("pipeline: classified",
		zap.String("case_id", caseID),
		zap.String("risk_level", classification.RiskLevel),
		zap.Float64("confidence", classification.Confidence),
	)

	if store && classification != nil {
		decision, err := p.ledger.StoreDecision(ctx, c, classification)
		if err != nil {
			result.Error = err.Error()
			zap.L().Error("pipeline: store failed",
				zap.String("case_id", caseID),
				zap.Error(err),
			)
			return result
		}
		result.Decision = decision
		zap.L().Info("pipeline: decision stored",
			zap.String("case_id", caseID),
			zap.String("decision_id", decision.DecisionID),
		)
	}

	result.Success = true
	return result
}

// Thin accessors for the presentation surfaces (CLI and HTTP).

func (p *Pipeline) Cases() []model.Case {
	return p.source.All()
}

func (p *Pipeline) Case(caseID string) (*model.Case, bool) {
	return p.source.Get(caseID)
}

func (p *Pipeline) CaseSummary(caseID string) string {
	return p.source.Summary(caseID)
}

func (p *Pipeline) CaseIDs() []string {
	return p.source.IDs()
}

func (p *Pipeline) Decisions(ctx context.Context) ([]model.Decision, error) {
	return p.ledger.GetAll(ctx)
}

func (p *Pipeline) Statistics(ctx context.Context) (*model.Statistics, error) {
	return p.ledger.Statistics(ctx)
}
