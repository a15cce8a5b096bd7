package main

import (
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/risk-cli/internal/config"
)

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default config.yaml in the current directory",
	RunE: func(cmd *cobra.Command, args []string) error {
		const path = "config.yaml"

		if _, err := os.Stat(path); err == nil && !initForce {
			return eris.Errorf("%s already exists (use --force to overwrite)", path)
		}

		defaults := config.Config{
			CaseSource: config.CaseSourceConfig{Path: "database/cases.json"},
			Ledger: config.LedgerConfig{
				Driver: "jsonfile",
				Path:   "results/decisions.json",
			},
			Classifier: config.ClassifierConfig{Mode: "auto"},
			Anthropic: config.AnthropicConfig{
				Model:             "claude-haiku-4-5-20251001",
				MaxTokens:         1024,
				RequestsPerSecond: 2,
			},
			Batch:  config.BatchConfig{MaxConcurrentCases: 4},
			Server: config.ServerConfig{Port: 8080},
			Log:    config.LogConfig{Level: "info", Format: "json"},
		}

		data, err := yaml.Marshal(defaults)
		if err != nil {
			return eris.Wrap(err, "marshal default config")
		}
		if err := os.WriteFile(path, data, 0644); err != nil {
			return eris.Wrapf(err, "write %s", path)
		}

		zap.L().Info("wrote default config", zap.String("path", path))
		return nil
	},
}

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "overwrite an existing config.yaml")
	rootCmd.AddCommand(initCmd)
}
