package main

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/risk-cli/internal/casesource"
	"github.com/sells-group/risk-cli/internal/classify"
	"github.com/sells-group/risk-cli/internal/ledger"
	"github.com/sells-group/risk-cli/internal/pipeline"
	anthropicpkg "github.com/sells-group/risk-cli/pkg/anthropic"
)

// pipelineEnv bundles the long-lived components a command needs.
type pipelineEnv struct {
	Pipeline *pipeline.Pipeline
	Ledger   ledger.Ledger
	DemoMode bool
}

func (e *pipelineEnv) Close() {
	if err := e.Ledger.Close(); err != nil {
		zap.L().Warn("ledger close failed", zap.Error(err))
	}
}

func initLedger(ctx context.Context) (ledger.Ledger, error) {
	switch cfg.Ledger.Driver {
	case "jsonfile":
		return ledger.NewJSONFile(cfg.Ledger.Path)
	case "sqlite":
		dsn := cfg.Ledger.DatabaseURL
		if dsn == "" {
			dsn = "decisions.db"
		}
		return ledger.NewSQLite(dsn)
	case "postgres":
		return ledger.NewPostgres(ctx, cfg.Ledger.DatabaseURL)
	default:
		return nil, eris.Errorf("unsupported ledger driver: %s", cfg.Ledger.Driver)
	}
}

// initClassifier picks the classification variant. Mode "auto" uses the LLM
// when an API key is configured and otherwise falls back to the rule-based
// classifier, announced as demo mode.
func initClassifier() (classify.Classifier, bool) {
	mode := cfg.Classifier.Mode
	if mode == "auto" {
		if cfg.Anthropic.Key != "" {
			mode = "llm"
		} else {
			mode = "rules"
		}
	}

	if mode == "llm" && cfg.Anthropic.Key != "" {
		zap.L().Info("using Claude for classification", zap.String("model", cfg.Anthropic.Model))
		client := anthropicpkg.NewClient(cfg.Anthropic.Key)
		return classify.NewLLMClassifier(client, cfg.Anthropic), false
	}

	zap.L().Info("using demo mode (rule-based classification)")
	return classify.NewRuleClassifier(), true
}

func initPipeline(ctx context.Context) (*pipelineEnv, error) {
	led, err := initLedger(ctx)
	if err != nil {
		return nil, err
	}
	if err := led.Migrate(ctx); err != nil {
		led.Close()
		return nil, eris.Wrap(err, "migrate ledger")
	}

	classifier, demo := initClassifier()
	source := casesource.Load(cfg.CaseSource.Path)

	return &pipelineEnv{
		Pipeline: pipeline.New(source, classifier, led),
		Ledger:   led,
		DemoMode: demo,
	}, nil
}
