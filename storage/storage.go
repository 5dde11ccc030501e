package storage

import (
	"context"
	"errors"

	"go-mod.ewintr.nl/ytsum/model"
)

var (
	ErrNotFound = errors.New("summary not found")
	ErrCorrupt  = errors.New("summary entry is corrupt")
)

// SummaryRelRepository is the key-value store for summary records. Records
// are addressed by their key, see model.BuildKey.
type SummaryRelRepository interface {
	Save(ctx context.Context, summary *model.Summary) error
	FindByKey(ctx context.Context, key string) (*model.Summary, error)
	// FindAll skips entries that cannot be decoded.
	FindAll(ctx context.Context) ([]*model.Summary, error)
	// Delete does not fail on a missing key.
	Delete(ctx context.Context, key string) error
}

type SummaryVecRepository interface {
	Save(ctx context.Context, summary *model.Summary) error
	Delete(ctx context.Context, summary *model.Summary) error
	Search(ctx context.Context, query string, limit int) ([]model.YoutubeVideoID, error)
}

func Ptr[T any](v T) *T {
	return &v
}
