package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/pulse/internal/server"
)

var flagServeAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the usage aggregate as JSON over local HTTP",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&flagServeAddr, "addr", "", "HTTP listen address (default from config, 127.0.0.1:3456)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(_ *cobra.Command, _ []string) error {
	addr := flagServeAddr
	if addr == "" {
		addr = appConfig.Server.Addr
	}
	if addr == "" {
		addr = server.DefaultAddr
	}

	srv := server.New(server.Config{
		Addr:    addr,
		Options: pipelineOptions(),
	})

	fmt.Printf("  pulse listening on http://%s\n", addr)
	fmt.Printf("  Usage:  http://%s/api/usage\n", addr)
	fmt.Printf("  Reading %s\n", dataDir())

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := srv.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
