package youtube

import (
	"context"
	"errors"
)

var ErrNoMetadata = errors.New("no metadata available")

type Metadata struct {
	Title        string
	Channel      string
	ThumbnailURL string
}

func (m Metadata) Empty() bool {
	return m.Title == "" && m.Channel == "" && m.ThumbnailURL == ""
}

type MetadataFetcher interface {
	FetchMetadata(ctx context.Context, videoURL string) (Metadata, error)
}

// Chain asks each fetcher in turn and returns the first non-empty result.
type Chain []MetadataFetcher

func (c Chain) FetchMetadata(ctx context.Context, videoURL string) (Metadata, error) {
	var errs []error
	for _, f := range c {
		md, err := f.FetchMetadata(ctx, videoURL)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if !md.Empty() {
			return md, nil
		}
	}
	if len(errs) > 0 {
		return Metadata{}, errors.Join(errs...)
	}

	return Metadata{}, ErrNoMetadata
}
