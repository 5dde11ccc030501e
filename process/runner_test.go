package process

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go-mod.ewintr.nl/ytsum/model"
	"go-mod.ewintr.nl/ytsum/storage"
	"go-mod.ewintr.nl/ytsum/summarize"
	"go-mod.ewintr.nl/ytsum/youtube"
)

const videoURL = "https://www.youtube.com/watch?v=dQw4w9WgXcQ"

func TestRunnerSummarizeInvalid(t *testing.T) {
	runner := NewRunner(testSummaries(), &fakeSummarizer{text: "x"}, nil, nil, "", testLogger())

	for _, tc := range []struct {
		name string
		url  string
		exp  error
	}{
		{name: "empty", url: "  ", exp: ErrNoURL},
		{name: "other site", url: "https://vimeo.com/123", exp: ErrInvalidURL},
		{name: "garbage", url: "not a url", exp: ErrInvalidURL},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, err := runner.Summarize(context.Background(), Job{URL: tc.url})
			assert.ErrorIs(t, err, tc.exp)
		})
	}
}

func TestRunnerSummarize(t *testing.T) {
	ctx := context.Background()
	summaries := testSummaries()
	sum := &fakeSummarizer{text: "- point one"}
	index := &fakeIndex{}
	md := fakeMetadata{md: youtube.Metadata{Title: "Never", Channel: "Rick", ThumbnailURL: "thumb.jpg"}}
	runner := NewRunner(summaries, sum, md, index, "default prompt", testLogger())

	res, err := runner.Summarize(ctx, Job{URL: videoURL, Question: " what happens? "})
	require.NoError(t, err)
	assert.False(t, res.Cached)
	assert.Equal(t, "- point one", res.Summary.Markdown)
	assert.Equal(t, model.StatusDone, res.Summary.Status)

	stored, err := summaries.GetByVideoID(ctx, "dQw4w9WgXcQ")
	require.NoError(t, err)
	assert.Equal(t, model.StatusDone, stored.Status)
	assert.Equal(t, "Never", stored.Title)
	assert.Equal(t, "Rick", stored.Channel)
	assert.Equal(t, "thumb.jpg", stored.ThumbnailURL)
	assert.Equal(t, "what happens?", stored.Question)
	assert.Equal(t, "fake-model", stored.Model)
	assert.Equal(t, videoURL, stored.URL)
	assert.Empty(t, stored.Error)
	assert.True(t, stored.UpdatedAt.After(stored.CreatedAt))

	require.Len(t, sum.requests, 1)
	assert.Equal(t, "what happens?", sum.requests[0].Instruction)
	assert.Equal(t, "Never", sum.requests[0].Title)
	assert.Equal(t, []string{model.BuildKey("dQw4w9WgXcQ")}, index.saved)
}

func TestRunnerSummarizeDefaultPrompt(t *testing.T) {
	sum := &fakeSummarizer{text: "text"}
	runner := NewRunner(testSummaries(), sum, nil, nil, "list the chapters", testLogger())

	_, err := runner.Summarize(context.Background(), Job{URL: videoURL})
	require.NoError(t, err)
	require.Len(t, sum.requests, 1)
	assert.Equal(t, "list the chapters", sum.requests[0].Instruction)
}

func TestRunnerSummarizeCached(t *testing.T) {
	ctx := context.Background()
	summaries := testSummaries()
	require.NoError(t, summaries.Save(ctx, &model.Summary{
		VideoID:  "dQw4w9WgXcQ",
		URL:      videoURL,
		Status:   model.StatusDone,
		Markdown: "stored",
	}))

	t.Run("without summarizer", func(t *testing.T) {
		runner := NewRunner(summaries, nil, nil, nil, "", testLogger())
		res, err := runner.Summarize(ctx, Job{URL: "https://youtu.be/dQw4w9WgXcQ"})
		require.NoError(t, err)
		assert.True(t, res.Cached)
		assert.Equal(t, "stored", res.Summary.Markdown)
	})

	t.Run("rerun", func(t *testing.T) {
		sum := &fakeSummarizer{text: "fresh"}
		runner := NewRunner(summaries, sum, nil, nil, "", testLogger())
		res, err := runner.Summarize(ctx, Job{URL: videoURL, Rerun: true})
		require.NoError(t, err)
		assert.False(t, res.Cached)
		assert.Equal(t, "fresh", res.Summary.Markdown)
		assert.Equal(t, 1, sum.calls())
	})
}

func TestRunnerSummarizeMissingKey(t *testing.T) {
	ctx := context.Background()
	summaries := testSummaries()
	runner := NewRunner(summaries, nil, nil, nil, "", testLogger())

	_, err := runner.Summarize(ctx, Job{URL: videoURL})
	assert.ErrorIs(t, err, ErrMissingAPIKey)
	assert.ErrorIs(t, err, summarize.ErrMissingAPIKey)

	_, err = summaries.GetByVideoID(ctx, "dQw4w9WgXcQ")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestRunnerSummarizeStream(t *testing.T) {
	runner := NewRunner(testSummaries(), &fakeSummarizer{text: "one two three"}, nil, nil, "", testLogger())

	var chunks []string
	res, err := runner.Summarize(context.Background(), Job{
		URL:     videoURL,
		OnChunk: func(c string) { chunks = append(chunks, c) },
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"one ", "two ", "three"}, chunks)
	assert.Equal(t, "one two three", res.Summary.Markdown)
}

func TestRunnerSummarizeFailure(t *testing.T) {
	ctx := context.Background()
	summaries := testSummaries()
	require.NoError(t, summaries.Save(ctx, &model.Summary{
		VideoID:  "dQw4w9WgXcQ",
		URL:      videoURL,
		Status:   model.StatusDone,
		Markdown: "old",
	}))
	index := &fakeIndex{}
	runner := NewRunner(summaries, &fakeSummarizer{err: errBoom}, nil, index, "", testLogger())

	_, err := runner.Summarize(ctx, Job{URL: videoURL, Rerun: true})
	assert.ErrorIs(t, err, errBoom)

	stored, err := summaries.GetByVideoID(ctx, "dQw4w9WgXcQ")
	require.NoError(t, err)
	assert.Equal(t, model.StatusError, stored.Status)
	assert.Equal(t, "boom", stored.Error)
	assert.Equal(t, "old", stored.Markdown)
	assert.Empty(t, index.saved)
}

func TestRunnerSummarizeMetadataFailure(t *testing.T) {
	ctx := context.Background()
	summaries := testSummaries()
	md := fakeMetadata{err: youtube.ErrNoMetadata}
	runner := NewRunner(summaries, &fakeSummarizer{text: "text"}, md, &fakeIndex{err: errBoom}, "", testLogger())

	res, err := runner.Summarize(ctx, Job{URL: videoURL})
	require.NoError(t, err)
	assert.Equal(t, model.StatusDone, res.Summary.Status)
	assert.Empty(t, res.Summary.Title)
}

func TestRunnerSummarizeWithoutVideoID(t *testing.T) {
	ctx := context.Background()
	summaries := testSummaries()
	runner := NewRunner(summaries, &fakeSummarizer{text: "feed summary"}, nil, nil, "", testLogger())

	res, err := runner.Summarize(ctx, Job{URL: "https://www.youtube.com/feed/trending"})
	require.NoError(t, err)
	assert.Equal(t, "feed summary", res.Summary.Markdown)
	assert.Empty(t, res.Summary.Key)

	all, err := summaries.All(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestRunnerEnqueue(t *testing.T) {
	ctx := context.Background()
	summaries := testSummaries()
	runner := NewRunner(summaries, nil, nil, nil, "", testLogger())

	summary, err := runner.Enqueue(ctx, "https://youtu.be/dQw4w9WgXcQ", "key points?")
	require.NoError(t, err)
	assert.Equal(t, model.StatusQueued, summary.Status)
	assert.Equal(t, "key points?", summary.Question)
	assert.Equal(t, model.BuildKey("dQw4w9WgXcQ"), summary.Key)

	_, err = runner.Enqueue(ctx, "https://www.youtube.com/feed/trending", "")
	assert.ErrorIs(t, err, ErrInvalidURL)
	_, err = runner.Enqueue(ctx, "", "")
	assert.ErrorIs(t, err, ErrNoURL)
}

func TestRunnerRemove(t *testing.T) {
	ctx := context.Background()
	summaries := testSummaries()
	index := &fakeIndex{}
	runner := NewRunner(summaries, nil, nil, index, "", testLogger())

	summary, err := runner.Enqueue(ctx, videoURL, "")
	require.NoError(t, err)
	require.NoError(t, runner.Remove(ctx, summary))

	_, err = summaries.GetByVideoID(ctx, "dQw4w9WgXcQ")
	assert.ErrorIs(t, err, storage.ErrNotFound)
	assert.Equal(t, []string{summary.Key}, index.deleted)
}
