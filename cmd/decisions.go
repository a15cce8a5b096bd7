package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"github.com/tealeg/xlsx/v2"
	"go.uber.org/zap"

	"github.com/sells-group/risk-cli/internal/model"
)

var decisionsCmd = &cobra.Command{
	Use:   "decisions",
	Short: "Inspect the decision ledger",
}

var decisionsRiskFilter string

var decisionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recorded decisions as JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := initPipeline(cmd.Context())
		if err != nil {
			return err
		}
		defer env.Close()

		var decisions []model.Decision
		if decisionsRiskFilter != "" {
			decisions, err = env.Ledger.GetByRiskLevel(cmd.Context(), decisionsRiskFilter)
		} else {
			decisions, err = env.Ledger.GetAll(cmd.Context())
		}
		if err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(decisions)
	},
}

var decisionsStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show risk distribution statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := initPipeline(cmd.Context())
		if err != nil {
			return err
		}
		defer env.Close()

		stats, err := env.Ledger.Statistics(cmd.Context())
		if err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(stats)
	},
}

var decisionsClearYes bool

var decisionsClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete every recorded decision",
	RunE: func(cmd *cobra.Command, args []string) error {
		if !decisionsClearYes {
			return eris.New("refusing to clear the ledger without --yes")
		}

		env, err := initPipeline(cmd.Context())
		if err != nil {
			return err
		}
		defer env.Close()

		if err := env.Ledger.ClearAll(cmd.Context()); err != nil {
			return err
		}
		zap.L().Info("ledger cleared")
		return nil
	},
}

var decisionsExportOut string

var decisionsExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the ledger to an XLSX workbook",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := initPipeline(cmd.Context())
		if err != nil {
			return err
		}
		defer env.Close()

		decisions, err := env.Ledger.GetAll(cmd.Context())
		if err != nil {
			return err
		}

		if err := writeDecisionsXLSX(decisionsExportOut, decisions); err != nil {
			return err
		}

		zap.L().Info("ledger exported",
			zap.String("path", decisionsExportOut),
			zap.Int("decisions", len(decisions)),
		)
		return nil
	},
}

func writeDecisionsXLSX(path string, decisions []model.Decision) error {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Decisions")
	if err != nil {
		return eris.Wrap(err, "export: add sheet")
	}

	header := sheet.AddRow()
	for _, col := range []string{
		"Decision ID", "Case ID", "Customer", "Timestamp",
		"Amount", "Days Overdue", "Past Attempts", "Loan Type",
		"Risk Level", "Confidence", "Recommended Action", "Status",
	} {
		header.AddCell().Value = col
	}

	for _, d := range decisions {
		row := sheet.AddRow()
		row.AddCell().Value = d.DecisionID
		row.AddCell().Value = d.CaseID
		row.AddCell().Value = d.CustomerName
		row.AddCell().Value = d.Timestamp.Format(time.RFC3339)
		row.AddCell().SetFloat(d.Input.Amount)
		row.AddCell().SetInt(d.Input.DaysOverdue)
		row.AddCell().SetInt(d.Input.PastAttempts)
		row.AddCell().Value = d.Input.LoanType
		row.AddCell().Value = d.AIDecision.RiskLevel
		row.AddCell().SetFloat(d.AIDecision.Confidence)
		row.AddCell().Value = d.AIDecision.RecommendedAction
		row.AddCell().Value = d.ReviewStatus
	}

	if err := file.Save(path); err != nil {
		return eris.Wrapf(err, "export: save %s", path)
	}
	return nil
}

func init() {
	decisionsListCmd.Flags().StringVar(&decisionsRiskFilter, "risk", "", "filter by risk level (HIGH, MEDIUM, LOW)")
	decisionsClearCmd.Flags().BoolVar(&decisionsClearYes, "yes", false, "confirm the destructive clear")
	decisionsExportCmd.Flags().StringVar(&decisionsExportOut, "out", fmt.Sprintf("decisions-%s.xlsx", time.Now().Format("2006-01-02")), "output workbook path")

	decisionsCmd.AddCommand(decisionsListCmd)
	decisionsCmd.AddCommand(decisionsStatsCmd)
	decisionsCmd.AddCommand(decisionsClearCmd)
	decisionsCmd.AddCommand(decisionsExportCmd)
	rootCmd.AddCommand(decisionsCmd)
}
