package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go-mod.ewintr.nl/ytsum/model"
	"golang.org/x/exp/slog"
)

func newReindexCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "reindex",
		Short: "Rebuild the semantic index from the stored summaries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			svc, err := a.open(ctx)
			if err != nil {
				return err
			}
			defer svc.Close()

			if svc.weaviate == nil {
				return errors.New("no search index configured, set WEAVIATE_HOST")
			}
			if err := svc.weaviate.ResetSchema(ctx); err != nil {
				return err
			}

			done, err := svc.summaries.FindByStatus(ctx, model.StatusDone)
			if err != nil {
				return err
			}
			count := 0
			for _, summary := range done {
				if err := svc.weaviate.Save(ctx, summary); err != nil {
					a.logger.Error("failed to index summary", slog.String("key", summary.Key), slog.String("error", err.Error()))
					continue
				}
				count++
			}
			fmt.Fprintf(cmd.OutOrStdout(), "indexed %d of %d summaries\n", count, len(done))

			return nil
		},
	}
}
