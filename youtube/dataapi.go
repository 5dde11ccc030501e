package youtube

import (
	"context"
	"fmt"

	"google.golang.org/api/youtube/v3"
)

// DataAPI looks up metadata through the YouTube Data API. It needs an API key,
// so it is only used as a fallback behind oEmbed.
type DataAPI struct {
	Client *youtube.Service
}

func NewDataAPI(client *youtube.Service) *DataAPI {
	return &DataAPI{Client: client}
}

func (y *DataAPI) FetchMetadata(ctx context.Context, videoURL string) (Metadata, error) {
	id, ok := ParseVideoID(videoURL)
	if !ok {
		return Metadata{}, fmt.Errorf("%w: no video id in %q", ErrNoMetadata, videoURL)
	}

	response, err := y.Client.Videos.
		List([]string{"snippet"}).
		Id(string(id)).
		Context(ctx).
		Do()
	if err != nil {
		return Metadata{}, fmt.Errorf("could not list video: %w", err)
	}

	for _, item := range response.Items {
		if item.Snippet == nil {
			continue
		}
		md := Metadata{
			Title:   item.Snippet.Title,
			Channel: item.Snippet.ChannelTitle,
		}
		if th := item.Snippet.Thumbnails; th != nil {
			for _, t := range []*youtube.Thumbnail{th.High, th.Medium, th.Default} {
				if t != nil && t.Url != "" {
					md.ThumbnailURL = t.Url
					break
				}
			}
		}

		return md, nil
	}

	return Metadata{}, fmt.Errorf("%w: video %s not found", ErrNoMetadata, id)
}
