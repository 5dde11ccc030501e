package storage

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"go-mod.ewintr.nl/ytsum/model"
)

// StatusUpdate creates or updates the record of a video. Nil fields leave the
// stored value alone, a non-nil empty string clears it.
type StatusUpdate struct {
	VideoID      model.YoutubeVideoID
	URL          string
	Status       model.SummaryStatus
	Title        *string
	Channel      *string
	ThumbnailURL *string
	Question     *string
	Model        *string
	Error        *string
}

// Extra holds the optional fields that UpdateMarkdown applies after the
// markdown itself.
type Extra struct {
	Status       *model.SummaryStatus
	Title        *string
	Channel      *string
	ThumbnailURL *string
	Error        *string
}

type Option func(*Summaries)

func WithClock(now func() time.Time) Option {
	return func(s *Summaries) {
		s.now = now
	}
}

// Summaries implements the record operations on top of any repository. The
// read-modify-write operations are serialized.
type Summaries struct {
	repo SummaryRelRepository
	now  func() time.Time
	mu   sync.Mutex
}

func NewSummaries(repo SummaryRelRepository, opts ...Option) *Summaries {
	s := &Summaries{
		repo: repo,
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// timestamps are kept with millisecond precision, as they are stored
func (s *Summaries) timestamp() time.Time {
	return time.UnixMilli(s.now().UnixMilli())
}

func (s *Summaries) Save(ctx context.Context, summary *model.Summary) error {
	if summary.Key == "" {
		if summary.VideoID == "" {
			return fmt.Errorf("summary has no key and no video id")
		}
		summary.Key = model.BuildKey(summary.VideoID)
	}

	if err := s.repo.Save(ctx, summary); err != nil {
		return fmt.Errorf("could not save summary %s: %w", summary.Key, err)
	}

	return nil
}

// GetByVideoID returns ErrNotFound for missing and for unreadable entries.
func (s *Summaries) GetByVideoID(ctx context.Context, videoID model.YoutubeVideoID) (*model.Summary, error) {
	return s.getByKey(ctx, model.BuildKey(videoID))
}

func (s *Summaries) getByKey(ctx context.Context, key string) (*model.Summary, error) {
	summary, err := s.repo.FindByKey(ctx, key)
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrCorrupt):
		return nil, ErrNotFound
	case err != nil:
		return nil, fmt.Errorf("could not find summary %s: %w", key, err)
	}

	return summary, nil
}

func (s *Summaries) GetByURL(ctx context.Context, url string) (*model.Summary, error) {
	all, err := s.All(ctx)
	if err != nil {
		return nil, err
	}
	for _, summary := range all {
		if summary.URL == url {
			return summary, nil
		}
	}

	return nil, ErrNotFound
}

// All returns every readable record, most recently updated first.
func (s *Summaries) All(ctx context.Context) ([]*model.Summary, error) {
	all, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("could not list summaries: %w", err)
	}
	sort.SliceStable(all, func(i, j int) bool {
		return all[i].UpdatedAt.After(all[j].UpdatedAt)
	})

	return all, nil
}

func (s *Summaries) FindByStatus(ctx context.Context, statuses ...model.SummaryStatus) ([]*model.Summary, error) {
	all, err := s.All(ctx)
	if err != nil {
		return nil, err
	}

	found := make([]*model.Summary, 0, len(all))
	for _, summary := range all {
		for _, status := range statuses {
			if summary.Status == status {
				found = append(found, summary)
				break
			}
		}
	}

	return found, nil
}

func (s *Summaries) Search(ctx context.Context, query string) ([]*model.Summary, error) {
	all, err := s.All(ctx)
	if err != nil {
		return nil, err
	}

	found := make([]*model.Summary, 0, len(all))
	for _, summary := range all {
		if summary.Matches(query) {
			found = append(found, summary)
		}
	}

	return found, nil
}

// UpsertStatus merges the update onto the existing record, or creates a fresh
// one when there is none or when the stored entry cannot be read. A fresh
// record starts without markdown and without error.
func (s *Summaries) UpsertStatus(ctx context.Context, u StatusUpdate) (*model.Summary, error) {
	if u.VideoID == "" {
		return nil, fmt.Errorf("status update without video id")
	}
	if !u.Status.Valid() {
		return nil, fmt.Errorf("invalid status %q", u.Status)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := model.BuildKey(u.VideoID)
	now := s.timestamp()

	summary, err := s.repo.FindByKey(ctx, key)
	switch {
	case err == nil:
		summary.VideoID = u.VideoID
		summary.URL = u.URL
		summary.Status = u.Status
		summary.UpdatedAt = now
		setString(&summary.Error, u.Error)
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrCorrupt):
		summary = &model.Summary{
			Key:       key,
			VideoID:   u.VideoID,
			URL:       u.URL,
			Status:    u.Status,
			CreatedAt: now,
			UpdatedAt: now,
		}
	default:
		return nil, fmt.Errorf("could not find summary %s: %w", key, err)
	}

	setString(&summary.Title, u.Title)
	setString(&summary.Channel, u.Channel)
	setString(&summary.ThumbnailURL, u.ThumbnailURL)
	setString(&summary.Question, u.Question)
	setString(&summary.Model, u.Model)

	if err := s.repo.Save(ctx, summary); err != nil {
		return nil, fmt.Errorf("could not save summary %s: %w", key, err)
	}

	return summary, nil
}

// UpdateMarkdown stores generated text on an existing record. Nothing is
// written when the record is missing or unreadable.
func (s *Summaries) UpdateMarkdown(ctx context.Context, key, markdown string, extra *Extra) (*model.Summary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	summary, err := s.getByKey(ctx, key)
	if err != nil {
		return nil, err
	}

	summary.Markdown = markdown
	summary.UpdatedAt = s.timestamp()
	if extra != nil {
		if extra.Status != nil {
			if !extra.Status.Valid() {
				return nil, fmt.Errorf("invalid status %q", *extra.Status)
			}
			summary.Status = *extra.Status
		}
		setString(&summary.Title, extra.Title)
		setString(&summary.Channel, extra.Channel)
		setString(&summary.ThumbnailURL, extra.ThumbnailURL)
		setString(&summary.Error, extra.Error)
	}

	if err := s.repo.Save(ctx, summary); err != nil {
		return nil, fmt.Errorf("could not save summary %s: %w", key, err)
	}

	return summary, nil
}

func (s *Summaries) Remove(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.repo.Delete(ctx, key); err != nil {
		return fmt.Errorf("could not remove summary %s: %w", key, err)
	}

	return nil
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}
