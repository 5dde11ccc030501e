package summarize

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

const DefaultGeminiModel = "gemini-2.5-pro"

// Gemini hands the video url to the model as a file part, so the model
// watches the video itself instead of reading a transcript.
type Gemini struct {
	client *genai.Client
	cfg    Config
}

func NewGemini(ctx context.Context, cfg Config) (*Gemini, error) {
	if cfg.APIKey == "" {
		return nil, ErrMissingAPIKey
	}
	cfg = cfg.withDefaults(DefaultGeminiModel)

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      cfg.APIKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{BaseURL: cfg.BaseURL},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return &Gemini{
		client: client,
		cfg:    cfg,
	}, nil
}

func (g *Gemini) Name() string {
	return "gemini summarizer"
}

func (g *Gemini) Model() string {
	return g.cfg.Model
}

func (g *Gemini) request(req Request) ([]*genai.Content, *genai.GenerateContentConfig) {
	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromText(req.Instruction),
			genai.NewPartFromURI(req.URL, "video/mp4"),
		}, genai.RoleUser),
	}
	config := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(g.cfg.Temperature),
		MaxOutputTokens: int32(g.cfg.MaxTokens),
	}

	return contents, config
}

func (g *Gemini) Summarize(ctx context.Context, req Request) (string, error) {
	contents, config := g.request(req)
	resp, err := g.client.Models.GenerateContent(ctx, g.cfg.Model, contents, config)
	if err != nil {
		return "", fmt.Errorf("failed to generate summary: %w", err)
	}

	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyResponse
	}

	return text, nil
}

func (g *Gemini) Stream(ctx context.Context, req Request, onChunk func(string)) (string, error) {
	contents, config := g.request(req)

	var sb strings.Builder
	for resp, err := range g.client.Models.GenerateContentStream(ctx, g.cfg.Model, contents, config) {
		if err != nil {
			return sb.String(), fmt.Errorf("failed to stream summary: %w", err)
		}
		chunk := resp.Text()
		if chunk == "" {
			continue
		}
		sb.WriteString(chunk)
		if onChunk != nil {
			onChunk(chunk)
		}
	}
	if strings.TrimSpace(sb.String()) == "" {
		return "", ErrEmptyResponse
	}

	return sb.String(), nil
}
