package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/pulse/internal/cli"
	"github.com/theirongolddev/pulse/internal/pipeline"
)

var costsCmd = &cobra.Command{
	Use:   "costs",
	Short: "Cost breakdown by token type and model",
	RunE:  runCosts,
}

func init() {
	rootCmd.AddCommand(costsCmd)
}

func runCosts(_ *cobra.Command, _ []string) error {
	result, err := loadData()
	if err != nil {
		return err
	}

	tokenCosts, modelCosts := pipeline.AggregateCostBreakdown(result.Aggregate.ModelBreakdown, appConfig.PriceTable())
	if flagJSON {
		return printJSON(struct {
			Totals pipeline.TokenTypeCosts       `json:"totals"`
			Models []pipeline.ModelCostBreakdown `json:"models"`
		}{tokenCosts, modelCosts})
	}
	if len(modelCosts) == 0 {
		fmt.Println("\n  No sessions found.")
		return nil
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle("COST BREAKDOWN"))
	fmt.Println()

	type tokenCost struct {
		name string
		cost float64
	}

	totalCost := tokenCosts.TotalCost
	costs := []tokenCost{
		{"Output", tokenCosts.OutputCost},
		{"Cache Write", tokenCosts.CacheWriteCost},
		{"Input", tokenCosts.InputCost},
		{"Cache Read", tokenCosts.CacheReadCost},
	}

	typeRows := make([][]string, 0, len(costs)+2)
	for _, tc := range costs {
		pct := ""
		if totalCost > 0 {
			pct = cli.FormatPercent(tc.cost / totalCost)
		}
		typeRows = append(typeRows, []string{tc.name, cli.FormatCost(tc.cost), pct})
	}
	typeRows = append(typeRows, []string{"---"})
	typeRows = append(typeRows, []string{"TOTAL", cli.FormatCost(totalCost), ""})

	fmt.Print(cli.RenderTable(cli.Table{
		Title:   "By Token Type",
		Headers: []string{"Type", "Cost", "Share"},
		Rows:    typeRows,
	}))

	modelRows := make([][]string, 0, len(modelCosts)+2)
	for _, mc := range modelCosts {
		modelRows = append(modelRows, []string{
			shortModel(mc.Model),
			cli.FormatCost(mc.InputCost),
			cli.FormatCost(mc.OutputCost),
			cli.FormatCost(mc.CacheWriteCost + mc.CacheReadCost),
			cli.FormatCost(mc.TotalCost),
		})
	}
	modelRows = append(modelRows, []string{"---"})
	modelRows = append(modelRows, []string{
		"TOTAL",
		cli.FormatCost(tokenCosts.InputCost),
		cli.FormatCost(tokenCosts.OutputCost),
		cli.FormatCost(tokenCosts.CacheWriteCost + tokenCosts.CacheReadCost),
		cli.FormatCost(totalCost),
	})

	fmt.Print(cli.RenderTable(cli.Table{
		Title:   "By Model",
		Headers: []string{"Model", "Input", "Output", "Cache", "Total"},
		Rows:    modelRows,
	}))

	fmt.Printf("  Cache Savings: %s saved vs. uncached input\n\n", cli.Cost(tokenCosts.CacheSavings))

	return nil
}
