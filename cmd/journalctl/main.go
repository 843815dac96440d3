// journalctl is the local driver for the waybook core: onboarding, posts,
// personas, daily memories, stats and account maintenance against the
// configured store.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/waybook/waybook/internal/config"
	"github.com/waybook/waybook/internal/factory"
	"github.com/waybook/waybook/internal/logger"
	"github.com/waybook/waybook/internal/store"
)

var (
	verboseFlag bool
	rootCmd     = &cobra.Command{
		Use:   "journalctl",
		Short: "Local journaling core: posts, personas and daily memories",
	}
)

func main() {
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "Enable debug logging")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// withStore opens the configured store, runs fn and closes the store again.
// Every subcommand goes through here.
func withStore(fn func(ctx context.Context, st store.Store, log zerolog.Logger) error) error {
	ctx := context.Background()

	cfg, err := config.New()
	if err != nil {
		return err
	}
	level := zerolog.InfoLevel
	if verboseFlag {
		level = zerolog.DebugLevel
	}
	log := logger.NewConsole(level)

	st, err := factory.NewStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	return fn(ctx, st, log)
}

// loadConfig is for subcommands that need settings beyond the store.
func loadConfig() (*config.Config, error) { return config.New() }

func printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintln(os.Stdout, string(data))
	return nil
}
