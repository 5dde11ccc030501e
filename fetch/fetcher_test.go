package fetch

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go-mod.ewintr.nl/ytsum/model"
	"go.uber.org/goleak"
	"golang.org/x/exp/slog"
)

type fakeReader struct {
	entries []Entry
	err     error
	read    []int64
}

func (f *fakeReader) Unread() ([]Entry, error) {
	return f.entries, f.err
}

func (f *fakeReader) MarkRead(ids ...int64) error {
	f.read = append(f.read, ids...)
	return nil
}

type fakeEnqueuer struct {
	urls []string
	fail map[string]bool
}

func (f *fakeEnqueuer) Enqueue(_ context.Context, url, _ string) (*model.Summary, error) {
	if f.fail[url] {
		return nil, errors.New("storage down")
	}
	f.urls = append(f.urls, url)
	return &model.Summary{URL: url, Status: model.StatusQueued}, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestReadFeeds(t *testing.T) {
	reader := &fakeReader{entries: []Entry{
		{EntryID: 1, URL: "https://www.youtube.com/watch?v=aaaaaaaaaaa"},
		{EntryID: 2, URL: "https://blog.example.com/post"},
		{EntryID: 3, URL: "https://youtu.be/bbbbbbbbbbb"},
		{EntryID: 4, URL: "https://www.youtube.com/watch?v=ccccccccccc"},
	}}
	enqueuer := &fakeEnqueuer{fail: map[string]bool{"https://www.youtube.com/watch?v=ccccccccccc": true}}

	NewFetcher(reader, enqueuer, time.Minute, testLogger()).ReadFeeds(context.Background())

	assert.Equal(t, []string{
		"https://www.youtube.com/watch?v=aaaaaaaaaaa",
		"https://youtu.be/bbbbbbbbbbb",
	}, enqueuer.urls)
	assert.Equal(t, []int64{1, 2, 3}, reader.read)
}

func TestReadFeedsError(t *testing.T) {
	reader := &fakeReader{err: errors.New("miniflux down")}
	enqueuer := &fakeEnqueuer{}

	NewFetcher(reader, enqueuer, time.Minute, testLogger()).ReadFeeds(context.Background())

	assert.Empty(t, enqueuer.urls)
	assert.Empty(t, reader.read)
}

func TestFetcherRun(t *testing.T) {
	defer goleak.VerifyNone(t)

	ctx, cancel := context.WithCancel(context.Background())
	fetcher := NewFetcher(&fakeReader{}, &fakeEnqueuer{}, time.Millisecond, testLogger())
	done := make(chan error)
	go func() {
		done <- fetcher.Run(ctx)
	}()

	time.Sleep(5 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("fetcher did not stop")
	}
}
