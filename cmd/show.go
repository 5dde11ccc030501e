package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go-mod.ewintr.nl/ytsum/model"
	"go-mod.ewintr.nl/ytsum/storage"
	"go-mod.ewintr.nl/ytsum/youtube"
)

// resolve finds a summary by video url, stored url or plain video id.
func resolve(ctx context.Context, summaries *storage.Summaries, arg string) (*model.Summary, error) {
	if id, ok := youtube.ParseVideoID(arg); ok {
		return summaries.GetByVideoID(ctx, id)
	}

	summary, err := summaries.GetByVideoID(ctx, model.YoutubeVideoID(arg))
	if !errors.Is(err, storage.ErrNotFound) {
		return summary, err
	}

	return summaries.GetByURL(ctx, arg)
}

func newShowCommand(a *app) *cobra.Command {
	var copyOut, raw bool

	cmd := &cobra.Command{
		Use:   "show <url|id>",
		Short: "Show a stored summary",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			svc, err := a.open(ctx)
			if err != nil {
				return err
			}
			defer svc.Close()

			summary, err := resolve(ctx, svc.summaries, args[0])
			if err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}
			if err := writeSummary(cmd.OutOrStdout(), summary, raw); err != nil {
				return err
			}
			if copyOut {
				return copyMarkdown(cmd.ErrOrStderr(), summary)
			}

			return nil
		},
	}
	cmd.Flags().BoolVar(&copyOut, "copy", false, "copy the summary to the clipboard")
	cmd.Flags().BoolVar(&raw, "raw", false, "print markdown without rendering")

	return cmd
}

func newDeleteCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <url|id>",
		Short: "Delete a stored summary",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			svc, err := a.open(ctx)
			if err != nil {
				return err
			}
			defer svc.Close()

			summary, err := resolve(ctx, svc.summaries, args[0])
			if err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}
			if err := svc.runner.Remove(ctx, summary); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", summary.DisplayTitle())

			return nil
		},
	}
}
