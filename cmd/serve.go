package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"go-mod.ewintr.nl/ytsum/fetch"
	"go-mod.ewintr.nl/ytsum/handler"
	"go-mod.ewintr.nl/ytsum/process"
	"golang.org/x/exp/slog"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

func newServeCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API, the summary queue and the feed reader",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.open(cmd.Context())
			if err != nil {
				return err
			}
			defer svc.Close()

			if svc.summarizer == nil {
				a.logger.Warn("no llm api key configured, queued summaries will fail", slog.String("provider", a.cfg.LLMProvider))
			}

			g, ctx := errgroup.WithContext(cmd.Context())

			limiter := rate.NewLimiter(rate.Every(time.Minute/time.Duration(a.cfg.LLMRate)), 1)
			pipeline := process.NewPipeline(svc.runner, svc.summaries, limiter, a.logger)
			g.Go(func() error {
				return pipeline.Run(ctx)
			})

			if a.cfg.MinifluxEndpoint != "" {
				mflx := fetch.NewMiniflux(fetch.MinifluxInfo{
					Endpoint: a.cfg.MinifluxEndpoint,
					ApiKey:   a.cfg.MinifluxAPIKey,
				})
				fetcher := fetch.NewFetcher(mflx, pipeline, a.cfg.FetchInterval, a.logger)
				g.Go(func() error {
					return fetcher.Run(ctx)
				})
			}

			srv := &http.Server{
				Addr:              fmt.Sprintf(":%d", a.cfg.APIPort),
				Handler:           handler.NewServer(svc.summaries, pipeline, svc.runner, svc.index, a.logger),
				ReadHeaderTimeout: 10 * time.Second,
			}
			g.Go(func() error {
				a.logger.Info("http server started", slog.Int("port", a.cfg.APIPort))
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					return fmt.Errorf("http server failed: %w", err)
				}
				return nil
			})
			g.Go(func() error {
				<-ctx.Done()
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				return srv.Shutdown(shutdownCtx)
			})

			err = g.Wait()
			a.logger.Info("service stopped")

			return err
		},
	}
}
