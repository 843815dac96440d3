package main

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/waybook/waybook/internal/model"
	"github.com/waybook/waybook/internal/services"
	"github.com/waybook/waybook/internal/store"
)

func init() {
	personasCmd := &cobra.Command{Use: "personas", Short: "Persona operations"}

	var name, color, icon, preset string
	addCmd := &cobra.Command{
		Use:   "add",
		Short: "Create a persona",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(func(ctx context.Context, st store.Store, log zerolog.Logger) error {
				svc := services.NewPersonaService(st, log)
				if preset != "" {
					p, err := svc.CreateFromPreset(ctx, preset)
					if err != nil {
						return err
					}
					fmt.Fprintf(os.Stdout, "created persona %s (%s)\n", p.Name, p.ID)
					return nil
				}
				if name == "" {
					return fmt.Errorf("--name or --preset required")
				}
				p, err := svc.Create(ctx, &model.Persona{
					Name:  name,
					Color: model.PersonaColor(color),
					Icon:  model.PersonaIcon(icon),
				})
				if err != nil {
					return err
				}
				fmt.Fprintf(os.Stdout, "created persona %s (%s)\n", p.Name, p.ID)
				return nil
			})
		},
	}
	addCmd.Flags().StringVarP(&name, "name", "n", "", "Persona name")
	addCmd.Flags().StringVar(&color, "color", string(model.ColorBlue), "Persona color")
	addCmd.Flags().StringVar(&icon, "icon", string(model.IconBook), "Persona icon")
	addCmd.Flags().StringVar(&preset, "preset", "", "Create from a built-in preset instead")
	personasCmd.AddCommand(addCmd)

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List personas",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(func(ctx context.Context, st store.Store, log zerolog.Logger) error {
				ps, err := services.NewPersonaService(st, log).List(ctx)
				if err != nil {
					return err
				}
				return printJSON(ps)
			})
		},
	}
	personasCmd.AddCommand(listCmd)

	defaultCmd := &cobra.Command{
		Use:   "set-default PERSONA_ID",
		Short: "Make a persona the default",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(func(ctx context.Context, st store.Store, log zerolog.Logger) error {
				u, err := st.Users().Current(ctx)
				if err != nil {
					return err
				}
				if u == nil {
					return fmt.Errorf("no user; run: journalctl onboard")
				}
				return services.NewPersonaService(st, log).SetDefault(ctx, u.ID, args[0])
			})
		},
	}
	personasCmd.AddCommand(defaultCmd)

	deleteCmd := &cobra.Command{
		Use:   "delete PERSONA_ID",
		Short: "Delete a persona and its posts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(func(ctx context.Context, st store.Store, log zerolog.Logger) error {
				return services.NewPersonaService(st, log).Delete(ctx, args[0])
			})
		},
	}
	personasCmd.AddCommand(deleteCmd)

	rootCmd.AddCommand(personasCmd)
}
