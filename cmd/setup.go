package cmd

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/theirongolddev/pulse/internal/cli"
	"github.com/theirongolddev/pulse/internal/config"
	"github.com/theirongolddev/pulse/internal/source"
	"github.com/theirongolddev/pulse/internal/tui"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Interactive configuration wizard",
	RunE:  runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)
}

func runSetup(_ *cobra.Command, _ []string) error {
	cfg := appConfig

	files, _ := source.ScanDir(dataDir())
	projectCount := source.CountProjects(files)

	if err := tui.RunSetup(&cfg, len(files), projectCount); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			fmt.Println("  Setup canceled, nothing saved.")
			return nil
		}
		return err
	}

	if err := config.Save(cfg); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}
	appConfig = cfg

	fmt.Println()
	fmt.Printf("  Saved to %s\n", config.Path())
	fmt.Println(cli.Muted("  Run `pulse setup` anytime to reconfigure."))
	fmt.Println()

	return nil
}
