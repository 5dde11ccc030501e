package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go-mod.ewintr.nl/ytsum/config"
	"go-mod.ewintr.nl/ytsum/process"
	"go-mod.ewintr.nl/ytsum/storage"
	"go-mod.ewintr.nl/ytsum/summarize"
	"go-mod.ewintr.nl/ytsum/youtube"
	"golang.org/x/exp/slog"
	"google.golang.org/api/option"
	ytapi "google.golang.org/api/youtube/v3"
)

type app struct {
	cfg    config.Config
	logger *slog.Logger
}

func NewRootCommand(lookup config.LookupFunc) *cobra.Command {
	a := &app{}
	var (
		configPath string
		verbose    bool
	)

	root := &cobra.Command{
		Use:   "ytsum",
		Short: "Summarize YouTube videos with an LLM and keep the results",
		Long: `ytsum asks an LLM for a summary of a YouTube video and stores the result
locally, so it can be shown, searched and listed later.

Run 'ytsum serve' to expose the summaries over HTTP and work through queued
requests in the background.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level := slog.LevelInfo
			if verbose {
				level = slog.LevelDebug
			}
			a.logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

			cfg, err := config.Load(configPath, cmd.Flags().Changed("config"), lookup)
			if err != nil {
				return err
			}
			a.cfg = cfg
			a.logger.Debug("loaded config", slog.String("storage", cfg.Storage), slog.String("provider", cfg.LLMProvider))

			return nil
		},
	}
	root.PersistentFlags().StringVar(&configPath, "config", config.DefaultPath(), "preferences file")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log debug messages")

	root.AddCommand(
		newSummarizeCommand(a),
		newListCommand(a),
		newShowCommand(a),
		newDeleteCommand(a),
		newSearchCommand(a),
		newServeCommand(a),
		newReindexCommand(a),
	)

	return root
}

type services struct {
	summaries  *storage.Summaries
	summarizer summarize.Summarizer
	index      storage.SummaryVecRepository
	weaviate   *storage.Weaviate
	runner     *process.Runner
	closers    []func() error
}

func (s *services) Close() error {
	var errs []error
	for _, c := range s.closers {
		errs = append(errs, c())
	}
	return errors.Join(errs...)
}

// open builds everything a command needs from the configuration. A missing
// llm api key is not an error here, only summarizing needs one.
func (a *app) open(ctx context.Context) (*services, error) {
	svc := &services{}

	repo, err := a.openRepository(ctx, svc)
	if err != nil {
		return nil, err
	}
	svc.summaries = storage.NewSummaries(repo)

	sum, err := summarize.New(ctx, a.cfg.LLMProvider, summarize.Config{
		APIKey:    a.cfg.APIKey(),
		Model:     a.cfg.LLMModel,
		MaxTokens: a.cfg.MaxTokens,
	})
	switch {
	case errors.Is(err, summarize.ErrMissingAPIKey):
		a.logger.Debug("no llm api key configured", slog.String("provider", a.cfg.LLMProvider))
	case err != nil:
		svc.Close()
		return nil, err
	default:
		svc.summarizer = sum
	}

	if a.cfg.WeaviateHost != "" {
		if w := a.openIndex(ctx); w != nil {
			svc.weaviate = w
			svc.index = w
		}
	}

	metadata, err := a.metadataFetcher(ctx)
	if err != nil {
		svc.Close()
		return nil, err
	}
	svc.runner = process.NewRunner(svc.summaries, svc.summarizer, metadata, svc.index, a.cfg.DefaultPrompt, a.logger)

	return svc, nil
}

func (a *app) openRepository(ctx context.Context, svc *services) (storage.SummaryRelRepository, error) {
	switch a.cfg.Storage {
	case config.StorageSQLite:
		db, err := storage.NewSQLite(a.cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("unable to open sqlite: %w", err)
		}
		svc.closers = append(svc.closers, db.Close)
		return db, nil
	case config.StoragePostgres:
		db, err := storage.OpenPostgres(a.cfg.Postgres.Info())
		if err != nil {
			return nil, fmt.Errorf("unable to connect to postgres: %w", err)
		}
		svc.closers = append(svc.closers, db.Close)
		return db, nil
	case config.StorageRedis:
		db, err := storage.NewRedis(ctx, a.cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("unable to connect to redis: %w", err)
		}
		svc.closers = append(svc.closers, db.Close)
		return db, nil
	case config.StorageMemory:
		return storage.NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown storage %q", a.cfg.Storage)
	}
}

// openIndex returns nil when the index cannot be reached, search is then
// unavailable but everything else keeps working.
func (a *app) openIndex(ctx context.Context) *storage.Weaviate {
	index, err := storage.NewWeaviate(storage.WeaviateInfo{
		Scheme:       a.cfg.WeaviateScheme,
		Host:         a.cfg.WeaviateHost,
		ApiKey:       a.cfg.WeaviateAPIKey,
		OpenAIApiKey: a.cfg.OpenAIAPIKey,
	})
	if err != nil {
		a.logger.Warn("unable to create weaviate client", slog.String("error", err.Error()))
		return nil
	}
	if err := index.EnsureSchema(ctx); err != nil {
		a.logger.Warn("unable to prepare weaviate schema", slog.String("error", err.Error()))
		return nil
	}

	return index
}

func (a *app) metadataFetcher(ctx context.Context) (youtube.MetadataFetcher, error) {
	chain := youtube.Chain{youtube.NewOEmbed(youtube.DefaultOEmbedEndpoint, 3)}
	if a.cfg.YoutubeAPIKey != "" {
		ytClient, err := ytapi.NewService(ctx, option.WithAPIKey(a.cfg.YoutubeAPIKey))
		if err != nil {
			return nil, fmt.Errorf("unable to create youtube service: %w", err)
		}
		chain = append(chain, youtube.NewDataAPI(ytClient))
	}

	return chain, nil
}
