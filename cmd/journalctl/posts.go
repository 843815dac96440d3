package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/waybook/waybook/internal/model"
	"github.com/waybook/waybook/internal/services"
	"github.com/waybook/waybook/internal/store"
)

func init() {
	postsCmd := &cobra.Command{Use: "posts", Short: "Post operations"}

	var caption, personaID, location string
	var mood int
	var gratitude, rant, dream bool
	var tags, people []string
	addCmd := &cobra.Command{
		Use:   "add",
		Short: "Create a text post",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(func(ctx context.Context, st store.Store, log zerolog.Logger) error {
				pid := personaID
				if pid == "" {
					u, err := st.Users().Current(ctx)
					if err != nil {
						return err
					}
					if u == nil {
						return fmt.Errorf("no user; run: journalctl onboard")
					}
					def, err := st.Personas().DefaultPersona(ctx, u.ID)
					if err != nil {
						return err
					}
					if def == nil {
						return fmt.Errorf("no default persona; pass --persona")
					}
					pid = def.ID
				}
				p := &model.Post{
					PersonaID:    pid,
					Caption:      caption,
					Mood:         mood,
					PostType:     model.PostTypeText,
					ActivityTags: tags,
					PeopleTags:   people,
					IsGratitude:  gratitude,
					IsRant:       rant,
					IsDream:      dream,
				}
				if location != "" {
					p.Location = &location
				}
				created, err := services.NewPostService(st, log).Create(ctx, p)
				if err != nil {
					return err
				}
				fmt.Fprintf(os.Stdout, "created post %s\n", created.ID)
				return nil
			})
		},
	}
	addCmd.Flags().StringVarP(&caption, "caption", "c", "", "Caption (required)")
	addCmd.Flags().IntVarP(&mood, "mood", "m", 5, "Mood 1-10")
	addCmd.Flags().StringVarP(&personaID, "persona", "p", "", "Persona id (defaults to the default persona)")
	addCmd.Flags().StringVarP(&location, "location", "l", "", "Location")
	addCmd.Flags().StringSliceVarP(&tags, "tag", "t", nil, "Activity tag (repeatable)")
	addCmd.Flags().StringSliceVar(&people, "with", nil, "Person mentioned (repeatable)")
	addCmd.Flags().BoolVar(&gratitude, "gratitude", false, "Mark as gratitude entry")
	addCmd.Flags().BoolVar(&rant, "rant", false, "Mark as rant")
	addCmd.Flags().BoolVar(&dream, "dream", false, "Mark as dream")
	_ = addCmd.MarkFlagRequired("caption")
	postsCmd.AddCommand(addCmd)

	var limit, offset int
	var search string
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List visible posts, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(func(ctx context.Context, st store.Store, log zerolog.Logger) error {
				svc := services.NewPostService(st, log)
				var (
					posts []*model.Post
					err   error
				)
				if search != "" {
					posts, err = svc.SearchCaption(ctx, search)
				} else {
					posts, err = svc.Feed(ctx, time.Now().UTC(), limit, offset)
				}
				if err != nil {
					return err
				}
				return printJSON(posts)
			})
		},
	}
	listCmd.Flags().IntVar(&limit, "limit", 20, "Page size")
	listCmd.Flags().IntVar(&offset, "offset", 0, "Page offset")
	listCmd.Flags().StringVarP(&search, "search", "q", "", "Caption substring search")
	postsCmd.AddCommand(listCmd)

	deleteCmd := &cobra.Command{
		Use:   "delete POST_ID",
		Short: "Delete a post",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(func(ctx context.Context, st store.Store, log zerolog.Logger) error {
				return services.NewPostService(st, log).Delete(ctx, args[0])
			})
		},
	}
	postsCmd.AddCommand(deleteCmd)

	cleanupCmd := &cobra.Command{
		Use:   "cleanup-rants",
		Short: "Delete rants past their auto-delete date",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(func(ctx context.Context, st store.Store, log zerolog.Logger) error {
				n, err := services.NewPostService(st, log).CleanupExpiredRants(ctx, time.Now().UTC())
				if err != nil {
					return err
				}
				fmt.Fprintf(os.Stdout, "removed %d expired rants\n", n)
				return nil
			})
		},
	}
	postsCmd.AddCommand(cleanupCmd)

	rootCmd.AddCommand(postsCmd)
}
