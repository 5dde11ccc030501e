package process

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"time"

	"go-mod.ewintr.nl/ytsum/model"
	"go-mod.ewintr.nl/ytsum/storage"
	"go-mod.ewintr.nl/ytsum/summarize"
	"go-mod.ewintr.nl/ytsum/youtube"
	"golang.org/x/exp/slog"
)

type fakeSummarizer struct {
	mu       sync.Mutex
	text     string
	err      error
	requests []summarize.Request
}

func (f *fakeSummarizer) Name() string  { return "fake summarizer" }
func (f *fakeSummarizer) Model() string { return "fake-model" }

func (f *fakeSummarizer) Summarize(_ context.Context, req summarize.Request) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)
	if f.err != nil {
		return "", f.err
	}

	return f.text, nil
}

func (f *fakeSummarizer) Stream(ctx context.Context, req summarize.Request, onChunk func(string)) (string, error) {
	text, err := f.Summarize(ctx, req)
	if err != nil {
		return "", err
	}
	for _, word := range strings.SplitAfter(text, " ") {
		onChunk(word)
	}

	return text, nil
}

func (f *fakeSummarizer) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return len(f.requests)
}

type fakeMetadata struct {
	md  youtube.Metadata
	err error
}

func (f fakeMetadata) FetchMetadata(_ context.Context, _ string) (youtube.Metadata, error) {
	return f.md, f.err
}

type fakeIndex struct {
	mu      sync.Mutex
	saved   []string
	deleted []string
	err     error
}

func (f *fakeIndex) Save(_ context.Context, s *model.Summary) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saved = append(f.saved, s.Key)
	return f.err
}

func (f *fakeIndex) Delete(_ context.Context, s *model.Summary) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, s.Key)
	return f.err
}

func (f *fakeIndex) Search(_ context.Context, _ string, _ int) ([]model.YoutubeVideoID, error) {
	return nil, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testSummaries() *storage.Summaries {
	now := time.UnixMilli(1_700_000_000_000)
	return storage.NewSummaries(storage.NewMemory(), storage.WithClock(func() time.Time {
		now = now.Add(time.Second)
		return now
	}))
}

var errBoom = errors.New("boom")
