package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/pulse/internal/cli"
	"github.com/theirongolddev/pulse/internal/model"
	"github.com/theirongolddev/pulse/internal/pipeline"
)

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Usage totals with costs",
	RunE:  runSummary,
}

func init() {
	rootCmd.AddCommand(summaryCmd)
}

func runSummary(_ *cobra.Command, _ []string) error {
	result, err := loadData()
	if err != nil {
		return err
	}

	agg := result.Aggregate
	if flagJSON {
		return printJSON(agg)
	}
	if agg.Totals.TotalSessions == 0 {
		printEmpty()
		return nil
	}

	t := agg.Totals
	costs, _ := pipeline.AggregateCostBreakdown(agg.ModelBreakdown, appConfig.PriceTable())
	days := activeDays(agg.DailyUsage)

	fmt.Println()
	fmt.Println(cli.RenderTitle("CLAUDE CODE USAGE"))
	fmt.Println()

	rows := [][]string{
		{"Sessions", cli.FormatNumber(int64(t.TotalSessions))},
		{"Queries", cli.FormatNumber(int64(t.TotalQueries))},
		{"Thinking Turns", cli.FormatNumber(int64(t.TotalThinkingTurns))},
		{"Active Days", cli.FormatNumber(int64(days))},
		{"---"},
		{"Input Tokens", cli.FormatTokens(t.TotalInput)},
		{"Output Tokens", cli.FormatTokens(t.TotalOutput)},
		{"Cache Write", cli.FormatTokens(t.TotalCacheCreation)},
		{"Cache Read", cli.FormatTokens(t.TotalCacheRead)},
		{"Total Tokens", cli.FormatTokens(t.TotalTokens)},
		{"---"},
		{"Cost (est)", cli.FormatCost(t.TotalCost)},
		{"Cache Savings", cli.FormatCost(costs.CacheSavings)},
		{"Cache Hit Rate", cli.FormatPercent(t.CacheHitRate)},
		{"---"},
		{"Tokens/session", cli.FormatTokens(t.AvgTokensPerSession)},
		{"Tokens/query", cli.FormatTokens(t.AvgTokensPerQuery)},
	}
	if days > 0 {
		rows = append(rows, []string{"Cost/day", cli.FormatCost(t.TotalCost / float64(days))})
	}

	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Metric", "Value"},
		Rows:    rows,
	}))

	return nil
}

// activeDays counts dated buckets; sessions without timestamps don't count.
func activeDays(daily []model.DailyRollup) int {
	n := 0
	for _, d := range daily {
		if d.Date != model.DateUnknown {
			n++
		}
	}
	return n
}
