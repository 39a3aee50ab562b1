package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/pulse/internal/cli"
)

var projectsCmd = &cobra.Command{
	Use:   "projects",
	Short: "Project usage ranking",
	RunE:  runProjects,
}

func init() {
	rootCmd.AddCommand(projectsCmd)
}

func runProjects(_ *cobra.Command, _ []string) error {
	result, err := loadData()
	if err != nil {
		return err
	}

	projects := result.Aggregate.Projects
	if flagJSON {
		return printJSON(projects)
	}
	if len(projects) == 0 {
		fmt.Println("\n  No project data found.")
		return nil
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle("PROJECTS"))
	fmt.Println()

	rows := make([][]string, 0, len(projects))
	for _, p := range projects {
		rows = append(rows, []string{
			cli.Truncate(p.Name, 18),
			cli.Truncate(p.Project, 36),
			cli.FormatNumber(int64(p.SessionCount)),
			cli.FormatNumber(int64(p.QueryCount)),
			cli.FormatTokens(p.TotalTokens),
			cli.FormatCost(p.Cost),
		})
	}

	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Project", "Path", "Sessions", "Queries", "Tokens", "Cost"},
		Rows:    rows,
	}))

	return nil
}
