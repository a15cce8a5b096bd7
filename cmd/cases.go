package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
)

var casesCmd = &cobra.Command{
	Use:   "cases",
	Short: "Inspect the case directory",
}

var casesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all cases",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := initPipeline(cmd.Context())
		if err != nil {
			return err
		}
		defer env.Close()

		for _, id := range env.Pipeline.CaseIDs() {
			fmt.Println(env.Pipeline.CaseSummary(id))
		}
		return nil
	},
}

var casesShowCmd = &cobra.Command{
	Use:   "show <case-id>",
	Short: "Show one case as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := initPipeline(cmd.Context())
		if err != nil {
			return err
		}
		defer env.Close()

		c, ok := env.Pipeline.Case(args[0])
		if !ok {
			return eris.Errorf("case %s not found", args[0])
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(c)
	},
}

func init() {
	casesCmd.AddCommand(casesListCmd)
	casesCmd.AddCommand(casesShowCmd)
	rootCmd.AddCommand(casesCmd)
}
