package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go-mod.ewintr.nl/ytsum/process"
)

func newSummarizeCommand(a *app) *cobra.Command {
	var rerun, noStream, copyOut, raw bool

	cmd := &cobra.Command{
		Use:   "summarize <url> [question]",
		Short: "Summarize a video, or show the stored summary",
		Long: `Summarize asks the LLM for a summary of the video and stores it. When a
summary already exists it is shown instead, unless --rerun is given.

The optional question replaces the default instruction, for example:
  ytsum summarize https://youtu.be/dQw4w9WgXcQ "Which instruments are used?"`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			svc, err := a.open(ctx)
			if err != nil {
				return err
			}
			defer svc.Close()

			out := cmd.OutOrStdout()
			job := process.Job{URL: args[0], Rerun: rerun}
			if len(args) == 2 {
				job.Question = args[1]
			}
			streamed := false
			if !noStream {
				job.OnChunk = func(chunk string) {
					streamed = true
					fmt.Fprint(out, chunk)
				}
			}

			res, err := svc.runner.Summarize(ctx, job)
			if err != nil {
				if streamed {
					fmt.Fprintln(out)
				}
				return err
			}

			switch {
			case streamed:
				fmt.Fprintln(out)
			default:
				if res.Cached {
					fmt.Fprintln(cmd.ErrOrStderr(), mutedStyle.Render("stored summary, use --rerun to generate a new one"))
				}
				if err := writeSummary(out, res.Summary, raw); err != nil {
					return err
				}
			}

			if copyOut {
				return copyMarkdown(cmd.ErrOrStderr(), res.Summary)
			}

			return nil
		},
	}
	cmd.Flags().BoolVar(&rerun, "rerun", false, "generate a new summary even if one is stored")
	cmd.Flags().BoolVar(&noStream, "no-stream", false, "wait for the complete summary instead of streaming it")
	cmd.Flags().BoolVar(&copyOut, "copy", false, "copy the summary to the clipboard")
	cmd.Flags().BoolVar(&raw, "raw", false, "print markdown without rendering")

	return cmd
}
