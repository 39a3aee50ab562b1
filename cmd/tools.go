package cmd

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/theirongolddev/pulse/internal/cli"
)

var toolsCmd = &cobra.Command{
	Use:   "tools",
	Short: "Tool invocation counts",
	RunE:  runTools,
}

func init() {
	rootCmd.AddCommand(toolsCmd)
}

func runTools(_ *cobra.Command, _ []string) error {
	result, err := loadData()
	if err != nil {
		return err
	}

	tools := result.Aggregate.ToolStats
	if flagJSON {
		return printJSON(tools)
	}
	if len(tools) == 0 {
		fmt.Println("\n  No tool calls found.")
		return nil
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle("TOOL USAGE"))
	fmt.Println()

	labelW := 0
	for _, t := range tools {
		if w := lipgloss.Width(t.Name); w > labelW {
			labelW = w
		}
	}
	labelW = min(labelW, 28)

	// Sorted by count descending, so the first entry is the max.
	maxCount := float64(tools[0].Count)
	for _, t := range tools {
		bar := cli.RenderHorizontalBar(cli.Truncate(t.Name, labelW), labelW, float64(t.Count), maxCount, 40)
		fmt.Printf("%s %s\n", bar, cli.FormatNumber(int64(t.Count)))
	}
	fmt.Println()

	return nil
}
