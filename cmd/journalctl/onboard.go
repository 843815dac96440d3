package main

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/waybook/waybook/internal/services"
	"github.com/waybook/waybook/internal/store"
)

func init() {
	var name, email string

	onboardCmd := &cobra.Command{
		Use:   "onboard",
		Short: "Set up the user and default persona",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(func(ctx context.Context, st store.Store, log zerolog.Logger) error {
				u, p, err := services.NewOnboardingService(st, log).Onboard(ctx, name, email)
				if err != nil {
					return err
				}
				fmt.Fprintf(os.Stdout, "welcome %s (persona %q)\n", u.Name, p.Name)
				return nil
			})
		},
	}
	onboardCmd.Flags().StringVarP(&name, "name", "n", "", "Display name (required)")
	onboardCmd.Flags().StringVarP(&email, "email", "e", "", "Email (optional)")
	_ = onboardCmd.MarkFlagRequired("name")
	rootCmd.AddCommand(onboardCmd)

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show onboarding state and the current user",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(func(ctx context.Context, st store.Store, log zerolog.Logger) error {
				done, err := services.NewOnboardingService(st, log).Complete(ctx)
				if err != nil {
					return err
				}
				if !done {
					fmt.Fprintln(os.Stdout, "not onboarded; run: journalctl onboard --name <name>")
					return nil
				}
				u, err := st.Users().Current(ctx)
				if err != nil {
					return err
				}
				return printJSON(u)
			})
		},
	}
	rootCmd.AddCommand(statusCmd)
}
