package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go-mod.ewintr.nl/ytsum/model"
)

// sqlStore holds the queries shared by the postgres and sqlite backends.
// Queries are written with ? placeholders and passed through rebind.
type sqlStore struct {
	db     *sql.DB
	rebind func(string) string
}

const summaryColumns = `summary_key, video_id, url, title, channel, thumbnail_url, question, model, status, created_at, updated_at, markdown, error`

func (s *sqlStore) Save(ctx context.Context, summary *model.Summary) error {
	query := `INSERT INTO summary (` + summaryColumns + `)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (summary_key)
DO UPDATE SET
  video_id = EXCLUDED.video_id,
  url = EXCLUDED.url,
  title = EXCLUDED.title,
  channel = EXCLUDED.channel,
  thumbnail_url = EXCLUDED.thumbnail_url,
  question = EXCLUDED.question,
  model = EXCLUDED.model,
  status = EXCLUDED.status,
  created_at = EXCLUDED.created_at,
  updated_at = EXCLUDED.updated_at,
  markdown = EXCLUDED.markdown,
  error = EXCLUDED.error`
	if _, err := s.db.ExecContext(ctx, s.rebind(query),
		summary.Key,
		string(summary.VideoID),
		summary.URL,
		summary.Title,
		summary.Channel,
		summary.ThumbnailURL,
		summary.Question,
		summary.Model,
		string(summary.Status),
		summary.CreatedAt.UnixMilli(),
		summary.UpdatedAt.UnixMilli(),
		summary.Markdown,
		summary.Error,
	); err != nil {
		return err
	}

	return nil
}

func (s *sqlStore) FindByKey(ctx context.Context, key string) (*model.Summary, error) {
	query := `SELECT ` + summaryColumns + ` FROM summary WHERE summary_key = ?`
	summary, err := scanSummary(s.db.QueryRowContext(ctx, s.rebind(query), key))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return summary, nil
}

func (s *sqlStore) FindAll(ctx context.Context) ([]*model.Summary, error) {
	query := `SELECT ` + summaryColumns + ` FROM summary ORDER BY updated_at DESC`
	rows, err := s.db.QueryContext(ctx, s.rebind(query))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	summaries := []*model.Summary{}
	for rows.Next() {
		summary, err := scanSummary(rows)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, summary)
	}

	return summaries, rows.Err()
}

func (s *sqlStore) Delete(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, s.rebind(`DELETE FROM summary WHERE summary_key = ?`), key)

	return err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSummary(row scanner) (*model.Summary, error) {
	var (
		summary            model.Summary
		videoID, status    string
		createdAt, updated int64
	)
	if err := row.Scan(
		&summary.Key,
		&videoID,
		&summary.URL,
		&summary.Title,
		&summary.Channel,
		&summary.ThumbnailURL,
		&summary.Question,
		&summary.Model,
		&status,
		&createdAt,
		&updated,
		&summary.Markdown,
		&summary.Error,
	); err != nil {
		return nil, err
	}
	summary.VideoID = model.YoutubeVideoID(videoID)
	summary.Status = model.SummaryStatus(status)
	summary.CreatedAt = time.UnixMilli(createdAt)
	summary.UpdatedAt = time.UnixMilli(updated)

	return &summary, nil
}

// migrate applies the wanted migrations that are not in the migration table
// yet. Each one runs in a transaction together with its bookkeeping row.
func (s *sqlStore) migrate(wanted []string, migrationTable string) error {
	if _, err := s.db.Exec(migrationTable); err != nil {
		return fmt.Errorf("could not create migration table: %w", err)
	}

	applied, err := s.appliedMigrations()
	if err != nil {
		return err
	}
	missing, err := compareMigrations(wanted, applied)
	if err != nil {
		return err
	}
	for i, query := range missing {
		if err := s.applyMigration(query); err != nil {
			return fmt.Errorf("could not run migration %d: %w", len(applied)+i+1, err)
		}
	}

	return nil
}

func (s *sqlStore) appliedMigrations() ([]string, error) {
	rows, err := s.db.Query(`SELECT query FROM migration ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("could not read migrations: %w", err)
	}
	defer rows.Close()

	var applied []string
	for rows.Next() {
		var query string
		if err := rows.Scan(&query); err != nil {
			return nil, err
		}
		applied = append(applied, query)
	}

	return applied, rows.Err()
}

func (s *sqlStore) applyMigration(query string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(query); err != nil {
		return err
	}
	if _, err := tx.Exec(s.rebind(`INSERT INTO migration (query) VALUES (?)`), query); err != nil {
		return err
	}

	return tx.Commit()
}

// compareMigrations returns the wanted migrations that still have to run. The
// applied ones must be an unchanged prefix of wanted.
func compareMigrations(wanted, applied []string) ([]string, error) {
	if len(applied) > len(wanted) {
		return nil, fmt.Errorf("database has %d migrations, only %d are known", len(applied), len(wanted))
	}
	for i, query := range applied {
		if wanted[i] != query {
			return nil, fmt.Errorf("migration %d differs from the applied one: %q", i+1, wanted[i])
		}
	}

	return wanted[len(applied):], nil
}

func noRebind(query string) string {
	return query
}

// dollarRebind turns ? placeholders into $1, $2, ...
func dollarRebind(query string) string {
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}

	return b.String()
}
