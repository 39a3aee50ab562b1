package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/pulse/internal/cli"
	"github.com/theirongolddev/pulse/internal/pipeline"
)

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "Most expensive sessions",
	RunE:  runSessions,
}

var (
	sessionsLimit   int
	sessionsProject string
	sessionsModel   string
)

func init() {
	sessionsCmd.Flags().IntVarP(&sessionsLimit, "limit", "l", 20, "Number of sessions to show (0 for all)")
	sessionsCmd.Flags().StringVarP(&sessionsProject, "project", "p", "", "Filter to project (substring match)")
	sessionsCmd.Flags().StringVarP(&sessionsModel, "model", "m", "", "Filter to primary model (substring match)")
	rootCmd.AddCommand(sessionsCmd)
}

func runSessions(_ *cobra.Command, _ []string) error {
	result, err := loadData()
	if err != nil {
		return err
	}

	// Already ordered by tokens descending.
	sessions := pipeline.FilterByProject(result.Aggregate.Sessions, sessionsProject)
	sessions = pipeline.FilterByModel(sessions, sessionsModel)
	if sessionsLimit > 0 && len(sessions) > sessionsLimit {
		sessions = sessions[:sessionsLimit]
	}

	if flagJSON {
		return printJSON(sessions)
	}
	if len(sessions) == 0 {
		fmt.Println("\n  No sessions found.")
		return nil
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("SESSIONS  Top %d by tokens", len(sessions))))
	fmt.Println()

	rows := make([][]string, 0, len(sessions))
	for _, s := range sessions {
		rows = append(rows, []string{
			s.Date,
			cli.Truncate(s.ProjectName, 16),
			shortModel(s.Model),
			cli.FormatNumber(int64(s.QueryCount)),
			cli.FormatTokens(s.TotalTokens),
			cli.FormatCost(s.Cost),
			cli.Truncate(s.FirstPrompt, 40),
		})
	}

	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Date", "Project", "Model", "Queries", "Tokens", "Cost", "First Prompt"},
		Rows:    rows,
	}))

	return nil
}
