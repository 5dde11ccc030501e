package fetch

import (
	"context"
	"time"

	"go-mod.ewintr.nl/ytsum/model"
	"go-mod.ewintr.nl/ytsum/youtube"
	"golang.org/x/exp/slog"
)

type Entry struct {
	EntryID int64
	FeedID  int64
	URL     string
	Title   string
}

type FeedReader interface {
	Unread() ([]Entry, error)
	MarkRead(entryIDs ...int64) error
}

type Enqueuer interface {
	Enqueue(ctx context.Context, url, question string) (*model.Summary, error)
}

// Fetcher periodically turns unread feed entries that point to a YouTube
// video into queued summaries.
type Fetcher struct {
	interval   time.Duration
	feedReader FeedReader
	enqueuer   Enqueuer
	logger     *slog.Logger
}

func NewFetcher(feedReader FeedReader, enqueuer Enqueuer, interval time.Duration, logger *slog.Logger) *Fetcher {
	return &Fetcher{
		interval:   interval,
		feedReader: feedReader,
		enqueuer:   enqueuer,
		logger:     logger,
	}
}

func (f *Fetcher) Run(ctx context.Context) error {
	f.logger.Info("started feed reader", slog.String("interval", f.interval.String()))
	ticker := time.NewTicker(f.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			f.logger.Info("stopped feed reader")
			return nil
		case <-ticker.C:
			f.ReadFeeds(ctx)
		}
	}
}

func (f *Fetcher) ReadFeeds(ctx context.Context) {
	entries, err := f.feedReader.Unread()
	if err != nil {
		f.logger.Error("failed to fetch unread entries", slog.String("error", err.Error()))
		return
	}
	f.logger.Info("fetched unread entries", slog.Int("count", len(entries)))
	if len(entries) == 0 {
		return
	}

	read := make([]int64, 0, len(entries))
	for _, entry := range entries {
		if _, ok := youtube.ParseVideoID(entry.URL); !ok {
			f.logger.Debug("skipping entry", slog.String("url", entry.URL))
			read = append(read, entry.EntryID)
			continue
		}
		// an entry that fails to enqueue stays unread and is tried again next tick
		if _, err := f.enqueuer.Enqueue(ctx, entry.URL, ""); err != nil {
			f.logger.Error("failed to enqueue entry", slog.String("url", entry.URL), slog.String("error", err.Error()))
			continue
		}
		read = append(read, entry.EntryID)
	}

	if err := f.feedReader.MarkRead(read...); err != nil {
		f.logger.Error("failed to mark entries as read", slog.String("error", err.Error()))
	}
}
