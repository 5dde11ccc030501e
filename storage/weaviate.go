package storage

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/weaviate/weaviate-go-client/v4/weaviate"
	"github.com/weaviate/weaviate-go-client/v4/weaviate/auth"
	"github.com/weaviate/weaviate-go-client/v4/weaviate/fault"
	"github.com/weaviate/weaviate-go-client/v4/weaviate/graphql"
	"github.com/weaviate/weaviate/entities/models"
	"go-mod.ewintr.nl/ytsum/model"
)

const (
	className = "Summary"
)

type WeaviateInfo struct {
	Scheme       string
	Host         string
	ApiKey       string
	OpenAIApiKey string
}

// Weaviate indexes finished summaries for semantic search. The object id is
// derived from the record key, so a video has at most one object.
type Weaviate struct {
	client *weaviate.Client
}

func NewWeaviate(wi WeaviateInfo) (*Weaviate, error) {
	config := weaviate.Config{
		Scheme: wi.Scheme,
		Host:   wi.Host,
		Headers: map[string]string{
			"X-OpenAI-Api-Key": wi.OpenAIApiKey,
		},
	}
	if config.Scheme == "" {
		config.Scheme = "https"
	}
	if wi.ApiKey != "" {
		config.AuthConfig = auth.ApiKey{Value: wi.ApiKey}
	}

	c, err := weaviate.NewClient(config)
	if err != nil {
		return nil, err
	}

	return &Weaviate{client: c}, nil
}

func summaryClass() *models.Class {
	textProperty := func(name string) *models.Property {
		return &models.Property{Name: name, DataType: []string{"text"}}
	}

	return &models.Class{
		Class:      className,
		Vectorizer: "text2vec-openai",
		ModuleConfig: map[string]any{
			"text2vec-openai": map[string]any{
				"model":        "ada",
				"modelVersion": "002",
				"type":         "text",
			},
		},
		Properties: []*models.Property{
			textProperty("videoId"),
			textProperty("url"),
			textProperty("title"),
			textProperty("channel"),
			textProperty("question"),
			textProperty("markdown"),
		},
	}
}

func isStatus(err error, status int) bool {
	var wErr *fault.WeaviateClientError
	return errors.As(err, &wErr) && wErr.StatusCode == status
}

// EnsureSchema creates the class when it does not exist yet.
func (w *Weaviate) EnsureSchema(ctx context.Context) error {
	_, err := w.client.Schema().ClassGetter().WithClassName(className).Do(ctx)
	switch {
	case err == nil:
		return nil
	case isStatus(err, http.StatusNotFound):
		return w.client.Schema().ClassCreator().WithClass(summaryClass()).Do(ctx)
	default:
		return err
	}
}

func (w *Weaviate) ResetSchema(ctx context.Context) error {
	// delete old
	if err := w.client.Schema().ClassDeleter().WithClassName(className).Do(ctx); err != nil {
		// a missing class is answered with 400
		var wErr *fault.WeaviateClientError
		if !errors.As(err, &wErr) || wErr.StatusCode != http.StatusBadRequest {
			return fmt.Errorf("could not delete class %s: %w", className, err)
		}
	}

	// create new
	return w.client.Schema().ClassCreator().WithClass(summaryClass()).Do(ctx)
}

func summaryProperties(s *model.Summary) map[string]any {
	return map[string]any{
		"videoId":  string(s.VideoID),
		"url":      s.URL,
		"title":    s.Title,
		"channel":  s.Channel,
		"question": s.Question,
		"markdown": s.Markdown,
	}
}

func (w *Weaviate) Save(ctx context.Context, summary *model.Summary) error {
	sID := summary.ObjectID().String()
	// check it already exists
	exists, err := w.client.Data().
		Checker().
		WithID(sID).
		WithClassName(className).
		Do(ctx)
	if err != nil {
		return err
	}

	if exists {
		return w.client.Data().
			Updater().
			WithID(sID).
			WithClassName(className).
			WithProperties(summaryProperties(summary)).
			Do(ctx)
	}

	_, err = w.client.Data().
		Creator().
		WithClassName(className).
		WithID(sID).
		WithProperties(summaryProperties(summary)).
		Do(ctx)

	return err
}

func (w *Weaviate) Delete(ctx context.Context, summary *model.Summary) error {
	err := w.client.Data().
		Deleter().
		WithClassName(className).
		WithID(summary.ObjectID().String()).
		Do(ctx)
	if err != nil && !isStatus(err, http.StatusNotFound) {
		return err
	}

	return nil
}

func (w *Weaviate) Search(ctx context.Context, query string, limit int) ([]model.YoutubeVideoID, error) {
	nearText := w.client.GraphQL().
		NearTextArgBuilder().
		WithConcepts([]string{query})

	resp, err := w.client.GraphQL().
		Get().
		WithClassName(className).
		WithFields(graphql.Field{Name: "videoId"}).
		WithNearText(nearText).
		WithLimit(limit).
		Do(ctx)
	if err != nil {
		return nil, err
	}

	return parseSearchResponse(resp)
}

func parseSearchResponse(resp *models.GraphQLResponse) ([]model.YoutubeVideoID, error) {
	if len(resp.Errors) > 0 {
		msgs := make([]string, 0, len(resp.Errors))
		for _, e := range resp.Errors {
			msgs = append(msgs, e.Message)
		}
		return nil, fmt.Errorf("search failed: %s", strings.Join(msgs, "; "))
	}

	get, ok := resp.Data["Get"].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("unexpected search response: no Get")
	}
	objects, ok := get[className].([]any)
	if !ok {
		return []model.YoutubeVideoID{}, nil
	}

	ids := make([]model.YoutubeVideoID, 0, len(objects))
	for _, o := range objects {
		props, ok := o.(map[string]any)
		if !ok {
			continue
		}
		if id, ok := props["videoId"].(string); ok && id != "" {
			ids = append(ids, model.YoutubeVideoID(id))
		}
	}

	return ids, nil
}
