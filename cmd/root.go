package cmd

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/theirongolddev/pulse/internal/cli"
	"github.com/theirongolddev/pulse/internal/config"
	"github.com/theirongolddev/pulse/internal/pipeline"
	"github.com/theirongolddev/pulse/internal/tui"
	"github.com/theirongolddev/pulse/internal/tui/theme"
)

var (
	flagDataDir string
	flagRefresh bool
	flagNoCache bool
	flagQuiet   bool
	flagVerbose bool
	flagJSON    bool
)

// appConfig is loaded once before any command runs.
var appConfig = config.DefaultConfig()

var rootCmd = &cobra.Command{
	Use:               "pulse",
	Short:             "Claude Code usage analytics",
	Long:              "Analyze your Claude Code transcripts: tokens, costs, sessions, prompts and tools.",
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
	RunE:              runSummary,
}

// Execute is the main entry point called from main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagDataDir, "data-dir", "d", "", "Claude data directory (default ~/.claude)")
	rootCmd.PersistentFlags().BoolVar(&flagRefresh, "refresh", false, "Ignore cached records and reparse every file")
	rootCmd.PersistentFlags().BoolVar(&flagNoCache, "no-cache", false, "Skip the SQLite cache entirely")
	rootCmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "Suppress progress output")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Log cache and file diagnostics to stderr")
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "Print JSON instead of tables")
}

func loadConfig(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "  %s\n", cli.Warn(fmt.Sprintf("Ignoring config: %v", err)))
	}
	appConfig = cfg

	theme.SetActive(cfg.Appearance.Theme)
	cli.ApplyTheme(theme.Active)
	return nil
}

func dataDir() string {
	if flagDataDir != "" {
		return flagDataDir
	}
	return appConfig.ClaudeDir()
}

func pipelineOptions() pipeline.Options {
	opts := pipeline.Options{
		DataDir:      dataDir(),
		ForceRefresh: flagRefresh,
		UseCache:     !flagNoCache && !appConfig.Cache.Disabled,
		CachePath:    appConfig.Cache.Path,
		Workers:      appConfig.General.Workers,
		TopPrompts:   appConfig.General.TopPrompts,
		Prices:       appConfig.PriceTable(),
	}
	if flagVerbose {
		opts.Logf = log.Printf
	}
	return opts
}

// loadData is the shared data loading path used by all commands.
// On an interactive terminal the scan runs behind a progress bar.
func loadData() (*pipeline.Result, error) {
	opts := pipelineOptions()

	if !flagQuiet && !flagVerbose && term.IsTerminal(int(os.Stderr.Fd())) {
		result, elapsed, err := tui.RunWithProgress(opts, os.Stderr)
		if err != nil {
			return nil, err
		}
		reportLoad(result, elapsed)
		return result, nil
	}

	if !flagQuiet {
		fmt.Fprintf(os.Stderr, "  Scanning sessions...\n")
		opts.Progress = func(current, total int) {
			if current%100 == 0 || current == total {
				fmt.Fprintf(os.Stderr, "\r  Parsing [%d/%d]", current, total)
			}
		}
	}

	start := time.Now()
	result, err := pipeline.Run(opts)
	if err != nil {
		return nil, err
	}
	reportLoad(result, time.Since(start))
	return result, nil
}

func reportLoad(result *pipeline.Result, elapsed time.Duration) {
	if flagQuiet || result.TotalFiles == 0 {
		return
	}

	took := elapsed.Round(time.Millisecond)
	switch {
	case result.Reparsed == 0:
		fmt.Fprintf(os.Stderr, "\r  Loaded %s sessions from cache (%d projects) in %s    \n",
			cli.FormatNumber(int64(result.CacheHits)), result.ProjectCount, took)
	case result.CacheHits == 0:
		fmt.Fprintf(os.Stderr, "\r  Parsed %s sessions across %d projects in %s    \n",
			cli.FormatNumber(int64(result.Reparsed)), result.ProjectCount, took)
	default:
		fmt.Fprintf(os.Stderr, "\r  %s cached + %d reparsed (%d projects) in %s    \n",
			cli.FormatNumber(int64(result.CacheHits)), result.Reparsed, result.ProjectCount, took)
	}

	if result.FileErrors > 0 {
		fmt.Fprintf(os.Stderr, "  %s\n", cli.Warn(fmt.Sprintf("%d files could not be read", result.FileErrors)))
	}
	if result.ParseErrors > 0 {
		fmt.Fprintf(os.Stderr, "  %s\n", cli.Muted(fmt.Sprintf("%d malformed lines skipped", result.ParseErrors)))
	}
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printEmpty() {
	fmt.Println("\n  No Claude Code sessions found.")
	fmt.Printf("  Looked in %s\n", dataDir())
}
