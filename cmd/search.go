package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go-mod.ewintr.nl/ytsum/model"
	"go-mod.ewintr.nl/ytsum/storage"
)

func newSearchCommand(a *app) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Find summaries by meaning",
		Long: `Search asks the semantic index for the summaries closest to the query. Without
a configured index (WEAVIATE_HOST) it falls back to a plain text match.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if limit <= 0 {
				return fmt.Errorf("limit must be positive, got %d", limit)
			}

			ctx := cmd.Context()
			svc, err := a.open(ctx)
			if err != nil {
				return err
			}
			defer svc.Close()

			var found []*model.Summary
			if svc.index == nil {
				all, err := svc.summaries.Search(ctx, args[0])
				if err != nil {
					return err
				}
				if len(all) > limit {
					all = all[:limit]
				}
				found = all
			} else {
				ids, err := svc.index.Search(ctx, args[0], limit)
				if err != nil {
					return err
				}
				for _, id := range ids {
					summary, err := svc.summaries.GetByVideoID(ctx, id)
					switch {
					case errors.Is(err, storage.ErrNotFound):
						continue
					case err != nil:
						return err
					}
					found = append(found, summary)
				}
			}

			writeList(cmd.OutOrStdout(), found)
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "maximum number of results")

	return cmd
}
