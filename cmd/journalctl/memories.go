package main

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/waybook/waybook/internal/services"
	"github.com/waybook/waybook/internal/store"
)

func init() {
	memoriesCmd := &cobra.Command{Use: "memories", Short: "Daily memory operations"}

	generateCmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate today's memories",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			return withStore(func(ctx context.Context, st store.Store, log zerolog.Logger) error {
				rng := rand.New(rand.NewSource(time.Now().UnixNano()))
				batch, err := services.NewMemoryService(st, log).
					GenerateDailyMemories(ctx, time.Now().UTC(), rng, cfg.MemoryMaxRandom)
				if err != nil {
					return err
				}
				if len(batch) == 0 {
					fmt.Fprintln(os.Stdout, "no new memories today")
					return nil
				}
				return printJSON(batch)
			})
		},
	}
	memoriesCmd.AddCommand(generateCmd)

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "Show today's memories",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(func(ctx context.Context, st store.Store, log zerolog.Logger) error {
				batch, err := services.NewMemoryService(st, log).TodaysMemories(ctx, time.Now().UTC())
				if err != nil {
					return err
				}
				return printJSON(batch)
			})
		},
	}
	memoriesCmd.AddCommand(listCmd)

	viewCmd := &cobra.Command{
		Use:   "view MEMORY_ID...",
		Short: "Mark memories as viewed",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(func(ctx context.Context, st store.Store, log zerolog.Logger) error {
				return services.NewMemoryService(st, log).MarkViewed(ctx, args...)
			})
		},
	}
	memoriesCmd.AddCommand(viewCmd)

	var note string
	noteCmd := &cobra.Command{
		Use:   "note MEMORY_ID",
		Short: "Attach a reflection note to a memory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(func(ctx context.Context, st store.Store, log zerolog.Logger) error {
				m, err := services.NewMemoryService(st, log).AddNote(ctx, args[0], note)
				if err != nil {
					return err
				}
				return printJSON(m)
			})
		},
	}
	noteCmd.Flags().StringVarP(&note, "text", "t", "", "Note text (required)")
	_ = noteCmd.MarkFlagRequired("text")
	memoriesCmd.AddCommand(noteCmd)

	cleanupCmd := &cobra.Command{
		Use:   "cleanup",
		Short: "Sweep memories past the retention window",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			return withStore(func(ctx context.Context, st store.Store, log zerolog.Logger) error {
				n, err := services.NewMemoryService(st, log).
					Cleanup(ctx, time.Now().UTC(), cfg.MemoryRetentionDays, cfg.MemoryKeepUnviewed)
				if err != nil {
					return err
				}
				fmt.Fprintf(os.Stdout, "removed %d memories\n", n)
				return nil
			})
		},
	}
	memoriesCmd.AddCommand(cleanupCmd)

	rootCmd.AddCommand(memoriesCmd)
}
