// Package cmd implements the pulse CLI commands.
package cmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/pulse/internal/config"
	"github.com/theirongolddev/pulse/internal/store"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show current configuration",
	RunE:  runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func runConfig(_ *cobra.Command, _ []string) error {
	cfg := appConfig

	fmt.Printf("  Config file: %s\n", config.Path())
	if config.Exists() {
		fmt.Println("  Status: loaded")
	} else {
		fmt.Println("  Status: using defaults (no config file)")
	}
	fmt.Println()

	fmt.Println("  [General]")
	fmt.Printf("    Claude directory: %s\n", cfg.ClaudeDir())
	fmt.Printf("    Top prompts:      %d\n", cfg.General.TopPrompts)
	if cfg.General.Workers > 0 {
		fmt.Printf("    Workers:          %d\n", cfg.General.Workers)
	} else {
		fmt.Println("    Workers:          auto")
	}
	fmt.Println()

	fmt.Println("  [Cache]")
	cachePath := cfg.Cache.Path
	if cachePath == "" {
		cachePath = store.DefaultPath()
	}
	fmt.Printf("    Enabled: %v\n", !cfg.Cache.Disabled)
	fmt.Printf("    Path:    %s\n", cachePath)
	fmt.Println()

	fmt.Println("  [Server]")
	fmt.Printf("    Address: %s\n", cfg.Server.Addr)
	fmt.Println()

	fmt.Println("  [Appearance]")
	fmt.Printf("    Theme: %s\n", cfg.Appearance.Theme)
	fmt.Println()

	fmt.Println("  [Pricing]")
	if len(cfg.Pricing.Overrides) == 0 {
		fmt.Println("    Overrides: none")
	} else {
		keys := make([]string, 0, len(cfg.Pricing.Overrides))
		for k := range cfg.Pricing.Overrides {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		table := cfg.PriceTable()
		for _, k := range keys {
			if _, ok := config.DefaultPricing[k]; !ok {
				fmt.Printf("    %-10s unknown key, ignored\n", k)
				continue
			}
			p := table.Lookup(k)
			fmt.Printf("    %-10s in $%.2f  out $%.2f  write $%.2f  read $%.2f  /MTok\n",
				k, p.InputPerMTok, p.OutputPerMTok, p.CacheWritePerMTok, p.CacheReadPerMTok)
		}
	}
	fmt.Println()

	fmt.Println("  Run `pulse setup` to reconfigure.")
	return nil
}
