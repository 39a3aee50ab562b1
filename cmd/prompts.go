package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/pulse/internal/cli"
)

var promptsCmd = &cobra.Command{
	Use:   "prompts",
	Short: "Most expensive prompts",
	RunE:  runPrompts,
}

var promptsLimit int

func init() {
	promptsCmd.Flags().IntVarP(&promptsLimit, "limit", "l", 10, "Number of prompts to show (0 for all kept)")
	rootCmd.AddCommand(promptsCmd)
}

func runPrompts(_ *cobra.Command, _ []string) error {
	result, err := loadData()
	if err != nil {
		return err
	}

	prompts := result.Aggregate.TopPrompts
	if promptsLimit > 0 && len(prompts) > promptsLimit {
		prompts = prompts[:promptsLimit]
	}

	if flagJSON {
		return printJSON(prompts)
	}
	if len(prompts) == 0 {
		fmt.Println("\n  No prompts found.")
		return nil
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("TOP PROMPTS  %d by tokens", len(prompts))))
	fmt.Println()

	rows := make([][]string, 0, len(prompts))
	for i, p := range prompts {
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			cli.Truncate(p.Prompt, 50),
			p.Date,
			shortModel(p.Model),
			cli.FormatTokens(p.TotalTokens),
			cli.FormatCost(p.Cost),
		})
	}

	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"#", "Prompt", "Date", "Model", "Tokens", "Cost"},
		Rows:    rows,
	}))

	return nil
}
