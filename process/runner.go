package process

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go-mod.ewintr.nl/ytsum/model"
	"go-mod.ewintr.nl/ytsum/storage"
	"go-mod.ewintr.nl/ytsum/summarize"
	"go-mod.ewintr.nl/ytsum/youtube"
	"golang.org/x/exp/slog"
)

var (
	ErrNoURL         = errors.New("no url given")
	ErrInvalidURL    = errors.New("not a youtube video url")
	ErrMissingAPIKey = summarize.ErrMissingAPIKey
)

type Job struct {
	URL      string
	Question string
	// Rerun ignores a stored summary and generates a new one.
	Rerun bool
	// OnChunk, when set, receives the text while it is generated.
	OnChunk func(string)
}

type Result struct {
	Summary *model.Summary
	Cached  bool
}

type Runner struct {
	summaries     *storage.Summaries
	summarizer    summarize.Summarizer
	metadata      youtube.MetadataFetcher
	index         storage.SummaryVecRepository
	defaultPrompt string
	logger        *slog.Logger
}

// NewRunner creates a runner. summarizer is nil when no api key is configured,
// metadata and index are optional.
func NewRunner(summaries *storage.Summaries, summarizer summarize.Summarizer, metadata youtube.MetadataFetcher, index storage.SummaryVecRepository, defaultPrompt string, logger *slog.Logger) *Runner {
	return &Runner{
		summaries:     summaries,
		summarizer:    summarizer,
		metadata:      metadata,
		index:         index,
		defaultPrompt: defaultPrompt,
		logger:        logger,
	}
}

func checkURL(input string) (string, error) {
	url := strings.TrimSpace(input)
	if url == "" {
		return "", ErrNoURL
	}
	if !youtube.IsYoutubeURL(url) {
		return "", ErrInvalidURL
	}

	return url, nil
}

func (r *Runner) Summarize(ctx context.Context, job Job) (*Result, error) {
	url, err := checkURL(job.URL)
	if err != nil {
		return nil, err
	}

	videoID, hasID := youtube.ParseVideoID(url)
	if hasID && !job.Rerun {
		existing, err := r.summaries.GetByVideoID(ctx, videoID)
		switch {
		case err == nil && existing.Markdown != "":
			r.logger.Debug("using stored summary", slog.String("video", string(videoID)))
			return &Result{Summary: existing, Cached: true}, nil
		case err != nil && !errors.Is(err, storage.ErrNotFound):
			return nil, err
		}
	}

	if r.summarizer == nil {
		return nil, ErrMissingAPIKey
	}

	md := r.fetchMetadata(ctx, url)
	question := strings.TrimSpace(job.Question)
	if hasID {
		update := storage.StatusUpdate{
			VideoID: videoID,
			URL:     url,
			Status:  model.StatusInProgress,
			Model:   storage.Ptr(r.summarizer.Model()),
			Error:   storage.Ptr(""),
		}
		if !md.Empty() {
			update.Title = storage.Ptr(md.Title)
			update.Channel = storage.Ptr(md.Channel)
			update.ThumbnailURL = storage.Ptr(md.ThumbnailURL)
		}
		if question != "" {
			update.Question = storage.Ptr(question)
		}
		if _, err := r.summaries.UpsertStatus(ctx, update); err != nil {
			return nil, err
		}
	}

	r.logger.Info("generating summary", slog.String("url", url), slog.String("summarizer", r.summarizer.Name()), slog.String("model", r.summarizer.Model()))
	req := summarize.Request{
		URL:         url,
		Instruction: summarize.ResolveInstruction(question, r.defaultPrompt),
		Title:       md.Title,
		Channel:     md.Channel,
	}
	var text string
	if job.OnChunk != nil {
		text, err = r.summarizer.Stream(ctx, req, job.OnChunk)
	} else {
		text, err = r.summarizer.Summarize(ctx, req)
	}
	if err != nil {
		r.logger.Error("failed to generate summary", slog.String("url", url), slog.String("error", err.Error()))
		if hasID {
			r.recordFailure(ctx, videoID, url, err)
		}
		return nil, fmt.Errorf("failed to generate summary: %w", err)
	}

	if !hasID {
		return &Result{Summary: &model.Summary{
			URL:          url,
			Title:        md.Title,
			Channel:      md.Channel,
			ThumbnailURL: md.ThumbnailURL,
			Question:     question,
			Model:        r.summarizer.Model(),
			Status:       model.StatusDone,
			Markdown:     text,
		}}, nil
	}

	summary, err := r.summaries.UpdateMarkdown(ctx, model.BuildKey(videoID), text, &storage.Extra{
		Status: storage.Ptr(model.StatusDone),
		Error:  storage.Ptr(""),
	})
	if err != nil {
		return nil, err
	}
	r.addToIndex(ctx, summary)

	return &Result{Summary: summary}, nil
}

// Enqueue stores the request with status queued, to be picked up later.
func (r *Runner) Enqueue(ctx context.Context, rawURL, question string) (*model.Summary, error) {
	url, err := checkURL(rawURL)
	if err != nil {
		return nil, err
	}
	videoID, ok := youtube.ParseVideoID(url)
	if !ok {
		return nil, ErrInvalidURL
	}

	update := storage.StatusUpdate{
		VideoID: videoID,
		URL:     url,
		Status:  model.StatusQueued,
		Error:   storage.Ptr(""),
	}
	if q := strings.TrimSpace(question); q != "" {
		update.Question = storage.Ptr(q)
	}

	return r.summaries.UpsertStatus(ctx, update)
}

// Remove deletes the record and its index entry.
func (r *Runner) Remove(ctx context.Context, summary *model.Summary) error {
	if err := r.summaries.Remove(ctx, summary.Key); err != nil {
		return err
	}
	if r.index != nil {
		if err := r.index.Delete(ctx, summary); err != nil {
			r.logger.Warn("failed to remove summary from index", slog.String("key", summary.Key), slog.String("error", err.Error()))
		}
	}

	return nil
}

func (r *Runner) fetchMetadata(ctx context.Context, url string) youtube.Metadata {
	if r.metadata == nil {
		return youtube.Metadata{}
	}
	md, err := r.metadata.FetchMetadata(ctx, url)
	if err != nil {
		r.logger.Warn("no metadata for video", slog.String("url", url), slog.String("error", err.Error()))
		return youtube.Metadata{}
	}

	return md
}

func (r *Runner) recordFailure(ctx context.Context, videoID model.YoutubeVideoID, url string, cause error) {
	if _, err := r.summaries.UpsertStatus(context.WithoutCancel(ctx), storage.StatusUpdate{
		VideoID: videoID,
		URL:     url,
		Status:  model.StatusError,
		Error:   storage.Ptr(cause.Error()),
	}); err != nil {
		r.logger.Error("failed to record summary error", slog.String("video", string(videoID)), slog.String("error", err.Error()))
	}
}

func (r *Runner) addToIndex(ctx context.Context, summary *model.Summary) {
	if r.index == nil {
		return
	}
	if err := r.index.Save(ctx, summary); err != nil {
		r.logger.Warn("failed to index summary", slog.String("key", summary.Key), slog.String("error", err.Error()))
	}
}
