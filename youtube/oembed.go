package youtube

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/hashicorp/go-retryablehttp"
)

const DefaultOEmbedEndpoint = "https://www.youtube.com/oembed"

// OEmbed reads title, channel and thumbnail from the public oEmbed endpoint.
// No API key is needed.
type OEmbed struct {
	endpoint string
	client   *http.Client
}

func NewOEmbed(endpoint string, retries int) *OEmbed {
	rc := retryablehttp.NewClient()
	rc.RetryMax = retries
	rc.RetryWaitMin = 100 * time.Millisecond
	rc.RetryWaitMax = 2 * time.Second
	rc.HTTPClient.Timeout = 10 * time.Second
	rc.Logger = nil

	return &OEmbed{
		endpoint: endpoint,
		client:   rc.StandardClient(),
	}
}

func (o *OEmbed) FetchMetadata(ctx context.Context, videoURL string) (Metadata, error) {
	endpoint := fmt.Sprintf("%s?url=%s&format=json", o.endpoint, url.QueryEscape(videoURL))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Metadata{}, fmt.Errorf("could not create oembed request: %w", err)
	}
	res, err := o.client.Do(req)
	if err != nil {
		return Metadata{}, fmt.Errorf("could not fetch oembed: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return Metadata{}, fmt.Errorf("%w: oembed returned status %d", ErrNoMetadata, res.StatusCode)
	}

	var body struct {
		Title        string `json:"title"`
		AuthorName   string `json:"author_name"`
		ThumbnailURL string `json:"thumbnail_url"`
	}
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return Metadata{}, fmt.Errorf("%w: could not decode oembed: %v", ErrNoMetadata, err)
	}

	return Metadata{
		Title:        body.Title,
		Channel:      body.AuthorName,
		ThumbnailURL: body.ThumbnailURL,
	}, nil
}
