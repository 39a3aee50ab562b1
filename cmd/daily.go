package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/pulse/internal/cli"
)

var dailyCmd = &cobra.Command{
	Use:   "daily",
	Short: "Daily usage table",
	RunE:  runDaily,
}

func init() {
	rootCmd.AddCommand(dailyCmd)
}

func runDaily(_ *cobra.Command, _ []string) error {
	result, err := loadData()
	if err != nil {
		return err
	}

	days := result.Aggregate.DailyUsage
	if flagJSON {
		return printJSON(days)
	}
	if len(days) == 0 {
		fmt.Println("\n  No sessions found.")
		return nil
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("DAILY USAGE  %d days", len(days))))
	fmt.Println()

	rows := make([][]string, 0, len(days))
	trend := make([]float64, 0, len(days))
	for _, d := range days {
		rows = append(rows, []string{
			d.Date,
			cli.FormatNumber(int64(d.Sessions)),
			cli.FormatNumber(int64(d.Queries)),
			cli.FormatTokens(d.TotalTokens),
			cli.FormatCost(d.Cost),
		})
		trend = append(trend, d.Cost)
	}

	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Date", "Sessions", "Queries", "Tokens", "Cost"},
		Rows:    rows,
	}))

	if len(trend) > 1 {
		fmt.Printf("  Cost trend  %s\n\n", cli.RenderSparkline(trend))
	}

	return nil
}
