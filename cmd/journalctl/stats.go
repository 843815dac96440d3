package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/waybook/waybook/internal/services"
	"github.com/waybook/waybook/internal/store"
)

func init() {
	statsCmd := &cobra.Command{
		Use:   "stats",
		Short: "Show posting and memory statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(func(ctx context.Context, st store.Store, log zerolog.Logger) error {
				u, err := st.Users().Current(ctx)
				if err != nil {
					return err
				}
				if u == nil {
					return fmt.Errorf("no user; run: journalctl onboard")
				}

				current, longest, err := services.NewUserService(st, log).
					RefreshStreaks(ctx, u.ID, time.Now().UTC())
				if err != nil {
					return err
				}
				avg, dist, err := services.NewPostService(st, log).
					MoodSummary(ctx, store.PostFilter{})
				if err != nil {
					return err
				}
				tags, err := st.Posts().TopActivityTags(ctx, 5)
				if err != nil {
					return err
				}
				memStats, err := st.Memories().Stats(ctx)
				if err != nil {
					return err
				}

				out := map[string]any{
					"totalPosts":       u.TotalPosts,
					"currentStreak":    current,
					"longestStreak":    longest,
					"averageMood":      avg,
					"moodDistribution": dist,
					"topActivityTags":  tags,
					"memories":         memStats,
				}
				return printJSON(out)
			})
		},
	}
	rootCmd.AddCommand(statsCmd)

	exportCmd := &cobra.Command{
		Use:   "export",
		Short: "Export the account as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(func(ctx context.Context, st store.Store, log zerolog.Logger) error {
				export, err := services.NewUserService(st, log).ExportAccount(ctx)
				if err != nil {
					return err
				}
				return printJSON(export)
			})
		},
	}
	rootCmd.AddCommand(exportCmd)

	var confirm bool
	deleteAccountCmd := &cobra.Command{
		Use:   "delete-account",
		Short: "Delete the user and all data",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !confirm {
				return fmt.Errorf("pass --yes to confirm account deletion")
			}
			return withStore(func(ctx context.Context, st store.Store, log zerolog.Logger) error {
				u, err := st.Users().Current(ctx)
				if err != nil {
					return err
				}
				if u == nil {
					fmt.Fprintln(os.Stdout, "nothing to delete")
					return nil
				}
				return services.NewUserService(st, log).DeleteAccount(ctx, u.ID)
			})
		},
	}
	deleteAccountCmd.Flags().BoolVar(&confirm, "yes", false, "Confirm deletion")
	rootCmd.AddCommand(deleteAccountCmd)
}
