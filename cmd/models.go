package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/pulse/internal/cli"
)

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "Model usage breakdown",
	RunE:  runModels,
}

func init() {
	rootCmd.AddCommand(modelsCmd)
}

func runModels(_ *cobra.Command, _ []string) error {
	result, err := loadData()
	if err != nil {
		return err
	}

	models := result.Aggregate.ModelBreakdown
	if flagJSON {
		return printJSON(models)
	}
	if len(models) == 0 {
		fmt.Println("\n  No model data found.")
		return nil
	}

	var total int64
	for _, m := range models {
		total += m.TotalTokens
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle("MODEL USAGE"))
	fmt.Println()

	rows := make([][]string, 0, len(models))
	for _, m := range models {
		share := 0.0
		if total > 0 {
			share = float64(m.TotalTokens) / float64(total)
		}
		rows = append(rows, []string{
			shortModel(m.Model),
			cli.FormatNumber(int64(m.QueryCount)),
			cli.FormatTokens(m.InputTokens),
			cli.FormatTokens(m.OutputTokens),
			cli.FormatTokens(m.CacheReadTokens),
			cli.FormatTokens(m.TotalTokens),
			cli.FormatCost(m.Cost),
			cli.FormatPercent(share),
		})
	}

	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Model", "Queries", "Input", "Output", "Cache Read", "Tokens", "Cost", "Share"},
		Rows:    rows,
	}))

	return nil
}

// shortModel trims the vendor prefix: "claude-opus-4-6" -> "opus-4-6".
func shortModel(name string) string {
	return strings.TrimPrefix(name, "claude-")
}
