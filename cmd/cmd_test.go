package cmd

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go-mod.ewintr.nl/ytsum/model"
	"go-mod.ewintr.nl/ytsum/process"
	"go-mod.ewintr.nl/ytsum/storage"
)

func seedSQLite(t *testing.T) map[string]string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "summaries.db")
	db, err := storage.NewSQLite(path)
	require.NoError(t, err)
	defer db.Close()

	summaries := storage.NewSummaries(db)
	for _, s := range []*model.Summary{
		{VideoID: "aaaaaaaaaaa", URL: "https://youtu.be/aaaaaaaaaaa", Title: "Go channels", Channel: "Gopher TV", Status: model.StatusDone, Markdown: "- select", CreatedAt: time.UnixMilli(1000), UpdatedAt: time.UnixMilli(1000)},
		{VideoID: "bbbbbbbbbbb", URL: "https://www.youtube.com/watch?v=bbbbbbbbbbb", Title: "Rust traits", Status: model.StatusError, Error: "quota exceeded", CreatedAt: time.UnixMilli(2000), UpdatedAt: time.UnixMilli(2000)},
		{VideoID: "ccccccccccc", URL: "https://youtu.be/ccccccccccc", Title: "Go generics", Status: model.StatusQueued, CreatedAt: time.UnixMilli(3000), UpdatedAt: time.UnixMilli(3000)},
	} {
		require.NoError(t, summaries.Save(context.Background(), s))
	}

	return map[string]string{
		"STORAGE":     "sqlite",
		"SQLITE_PATH": path,
	}
}

func run(t *testing.T, env map[string]string, args ...string) (string, error) {
	t.Helper()
	root := NewRootCommand(func(key string) (string, bool) {
		val, ok := env[key]
		return val, ok
	})
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(append([]string{"--config", ""}, args...))

	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestList(t *testing.T) {
	env := seedSQLite(t)

	out, err := run(t, env, "list")
	require.NoError(t, err)
	ia := bytes.Index([]byte(out), []byte("Go channels"))
	ib := bytes.Index([]byte(out), []byte("Rust traits"))
	ic := bytes.Index([]byte(out), []byte("Go generics"))
	require.True(t, ia >= 0 && ib >= 0 && ic >= 0, out)
	assert.True(t, ic < ib && ib < ia, "newest first:\n%s", out)
	assert.Contains(t, out, "[queued]")
	assert.Contains(t, out, "Gopher TV")

	out, err = run(t, env, "list", "--status", "error")
	require.NoError(t, err)
	assert.Contains(t, out, "Rust traits")
	assert.NotContains(t, out, "Go channels")

	out, err = run(t, env, "list", "--search", "GO")
	require.NoError(t, err)
	assert.Contains(t, out, "Go channels")
	assert.Contains(t, out, "Go generics")
	assert.NotContains(t, out, "Rust traits")

	out, err = run(t, env, "list", "--search", "python")
	require.NoError(t, err)
	assert.Contains(t, out, "no summaries found")

	_, err = run(t, env, "list", "--status", "working")
	assert.Error(t, err)
}

func TestShow(t *testing.T) {
	env := seedSQLite(t)

	for _, arg := range []string{"aaaaaaaaaaa", "https://youtu.be/aaaaaaaaaaa", "https://www.youtube.com/watch?v=aaaaaaaaaaa"} {
		out, err := run(t, env, "show", arg, "--raw")
		require.NoError(t, err, arg)
		assert.Equal(t, "- select\n", out, arg)
	}

	out, err := run(t, env, "show", "bbbbbbbbbbb")
	require.NoError(t, err)
	assert.Contains(t, out, "Rust traits")
	assert.Contains(t, out, "[error]")
	assert.Contains(t, out, "quota exceeded")

	_, err = run(t, env, "show", "zzzzzzzzzzz")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestShowCopy(t *testing.T) {
	env := seedSQLite(t)
	var copied string
	orig := clipboardWriteAll
	clipboardWriteAll = func(text string) error {
		copied = text
		return nil
	}
	defer func() { clipboardWriteAll = orig }()

	_, err := run(t, env, "show", "aaaaaaaaaaa", "--raw", "--copy")
	require.NoError(t, err)
	assert.Equal(t, "- select", copied)

	_, err = run(t, env, "show", "ccccccccccc", "--copy")
	assert.Error(t, err)
}

func TestSummarize(t *testing.T) {
	env := seedSQLite(t)

	out, err := run(t, env, "summarize", "https://youtu.be/aaaaaaaaaaa", "--raw")
	require.NoError(t, err)
	assert.Equal(t, "- select\n", out)

	_, err = run(t, env, "summarize", "https://youtu.be/ddddddddddd")
	assert.ErrorIs(t, err, process.ErrMissingAPIKey)

	_, err = run(t, env, "summarize", "https://vimeo.com/1")
	assert.ErrorIs(t, err, process.ErrInvalidURL)

	_, err = run(t, env, "summarize")
	assert.Error(t, err)
}

func TestDelete(t *testing.T) {
	env := seedSQLite(t)

	out, err := run(t, env, "delete", "https://www.youtube.com/watch?v=bbbbbbbbbbb")
	require.NoError(t, err)
	assert.Equal(t, "deleted Rust traits\n", out)

	_, err = run(t, env, "show", "bbbbbbbbbbb")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	_, err = run(t, env, "delete", "bbbbbbbbbbb")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestSearchWithoutIndex(t *testing.T) {
	env := seedSQLite(t)

	out, err := run(t, env, "search", "go", "-n", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "Go generics")
	assert.NotContains(t, out, "Go channels")

	_, err = run(t, env, "search", "go", "-n", "0")
	assert.Error(t, err)
}

func TestInvalidConfig(t *testing.T) {
	_, err := run(t, map[string]string{"STORAGE": "s3"}, "list")
	assert.Error(t, err)
}

func TestReindexWithoutIndex(t *testing.T) {
	env := seedSQLite(t)

	_, err := run(t, env, "reindex")
	assert.ErrorContains(t, err, "no search index configured")
}
