package main

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/risk-cli/internal/model"
)

var processNoStore bool

var processCmd = &cobra.Command{
	Use:   "process <case-id>",
	Short: "Run one case through the classification pipeline",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := initPipeline(cmd.Context())
		if err != nil {
			return err
		}
		defer env.Close()

		result := env.Pipeline.ProcessCase(cmd.Context(), args[0], !processNoStore)
		logResult(result)

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	},
}

func logResult(result *model.PipelineResult) {
	if !result.Success {
		zap.L().Warn("case processing failed",
			zap.String("case_id", result.CaseID),
			zap.String("error", result.Error),
		)
		return
	}

	fields := []zap.Field{
		zap.String("case_id", result.CaseID),
		zap.String("risk_level", result.Classification.RiskLevel),
		zap.Float64("confidence", result.Classification.Confidence),
	}
	if result.Decision != nil {
		fields = append(fields, zap.String("decision_id", result.Decision.DecisionID))
	}
	zap.L().Info("case processed", fields...)
}

func init() {
	processCmd.Flags().BoolVar(&processNoStore, "no-store", false, "classify without recording a ledger decision")
	rootCmd.AddCommand(processCmd)
}
