package summarize

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/sashabaranov/go-openai"
)

const DefaultOpenAIModel = openai.GPT4o

const summarizePrompt = `You are a helpful assistant. Your task is to summarize a YouTube video for a user, following the instruction the user gives you.
You will not add introductory sentences like "This video is about", or "Summary of...". Answer in markdown.
`

// OpenAI works with any OpenAI compatible endpoint. These models cannot watch
// the video, they only get the url and the metadata.
type OpenAI struct {
	client *openai.Client
	cfg    Config
}

func NewOpenAI(cfg Config) *OpenAI {
	cfg = cfg.withDefaults(DefaultOpenAIModel)
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	return &OpenAI{
		client: openai.NewClientWithConfig(clientCfg),
		cfg:    cfg,
	}
}

func (o *OpenAI) Name() string {
	return "openai summarizer"
}

func (o *OpenAI) Model() string {
	return o.cfg.Model
}

func userContent(req Request) string {
	var sb strings.Builder
	sb.WriteString(req.Instruction)
	sb.WriteString("\n\nVideo: " + req.URL)
	if req.Title != "" {
		sb.WriteString("\nTitle: " + req.Title)
	}
	if req.Channel != "" {
		sb.WriteString("\nChannel: " + req.Channel)
	}

	return sb.String()
}

func (o *OpenAI) request(req Request) openai.ChatCompletionRequest {
	return openai.ChatCompletionRequest{
		Model:       o.cfg.Model,
		MaxTokens:   o.cfg.MaxTokens,
		Temperature: o.cfg.Temperature,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: summarizePrompt,
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: userContent(req),
			},
		},
	}
}

func (o *OpenAI) Summarize(ctx context.Context, req Request) (string, error) {
	resp, err := o.client.CreateChatCompletion(ctx, o.request(req))
	if err != nil {
		return "", fmt.Errorf("failed to fetch summary: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyResponse
	}

	text := resp.Choices[len(resp.Choices)-1].Message.Content
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyResponse
	}

	return text, nil
}

func (o *OpenAI) Stream(ctx context.Context, req Request, onChunk func(string)) (string, error) {
	stream, err := o.client.CreateChatCompletionStream(ctx, o.request(req))
	if err != nil {
		return "", fmt.Errorf("failed to start summary stream: %w", err)
	}
	defer stream.Close()

	var sb strings.Builder
	for {
		resp, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return sb.String(), fmt.Errorf("failed to stream summary: %w", err)
		}
		if len(resp.Choices) == 0 {
			continue
		}
		chunk := resp.Choices[0].Delta.Content
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
