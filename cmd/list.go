package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go-mod.ewintr.nl/ytsum/model"
)

func newListCommand(a *app) *cobra.Command {
	var query, status string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored summaries, most recently updated first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			wanted := model.SummaryStatus(status)
			if wanted != "" && !wanted.Valid() {
				return fmt.Errorf("unknown status %q", status)
			}

			ctx := cmd.Context()
			svc, err := a.open(ctx)
			if err != nil {
				return err
			}
			defer svc.Close()

			summaries, err := svc.summaries.Search(ctx, query)
			if err != nil {
				return err
			}
			if wanted != "" {
				filtered := make([]*model.Summary, 0, len(summaries))
				for _, s := range summaries {
					if s.Status == wanted {
						filtered = append(filtered, s)
					}
				}
				summaries = filtered
			}

			writeList(cmd.OutOrStdout(), summaries)
			return nil
		},
	}
	cmd.Flags().StringVarP(&query, "search", "s", "", "only show summaries containing this text")
	cmd.Flags().StringVar(&status, "status", "", "only show summaries with this status (queued, in_progress, done, error)")

	return cmd
}
