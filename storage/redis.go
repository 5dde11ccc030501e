package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go-mod.ewintr.nl/ytsum/model"
)

// Redis keeps every summary as a JSON string under its own key, the plain
// key-value layout the records were designed for.
type Redis struct {
	client *redis.Client
}

func NewRedis(ctx context.Context, redisURL string) (*Redis, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	client := redis.NewClient(opts)
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis unreachable: %w", err)
	}

	return NewRedisFromClient(client), nil
}

func NewRedisFromClient(client *redis.Client) *Redis {
	return &Redis{client: client}
}

type redisRecord struct {
	Key          string `json:"key"`
	VideoID      string `json:"videoId"`
	URL          string `json:"url"`
	Title        string `json:"title,omitempty"`
	Channel      string `json:"channel,omitempty"`
	ThumbnailURL string `json:"thumbnailUrl,omitempty"`
	Question     string `json:"question,omitempty"`
	Model        string `json:"model,omitempty"`
	Status       string `json:"status"`
	CreatedAt    int64  `json:"createdAt"`
	UpdatedAt    int64  `json:"updatedAt"`
	Markdown     string `json:"markdown,omitempty"`
	Error        string `json:"error,omitempty"`
}

func encodeRecord(s *model.Summary) ([]byte, error) {
	return json.Marshal(redisRecord{
		Key:          s.Key,
		VideoID:      string(s.VideoID),
		URL:          s.URL,
		Title:        s.Title,
		Channel:      s.Channel,
		ThumbnailURL: s.ThumbnailURL,
		Question:     s.Question,
		Model:        s.Model,
		Status:       string(s.Status),
		CreatedAt:    s.CreatedAt.UnixMilli(),
		UpdatedAt:    s.UpdatedAt.UnixMilli(),
		Markdown:     s.Markdown,
		Error:        s.Error,
	})
}

func decodeRecord(data []byte) (*model.Summary, error) {
	var r redisRecord
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}

	return &model.Summary{
		Key:          r.Key,
		VideoID:      model.YoutubeVideoID(r.VideoID),
		URL:          r.URL,
		Title:        r.Title,
		Channel:      r.Channel,
		ThumbnailURL: r.ThumbnailURL,
		Question:     r.Question,
		Model:        r.Model,
		Status:       model.SummaryStatus(r.Status),
		CreatedAt:    time.UnixMilli(r.CreatedAt),
		UpdatedAt:    time.UnixMilli(r.UpdatedAt),
		Markdown:     r.Markdown,
		Error:        r.Error,
	}, nil
}

func (r *Redis) Save(ctx context.Context, summary *model.Summary) error {
	data, err := encodeRecord(summary)
	if err != nil {
		return err
	}

	return r.client.Set(ctx, summary.Key, data, 0).Err()
}

func (r *Redis) FindByKey(ctx context.Context, key string) (*model.Summary, error) {
	data, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return decodeRecord(data)
}

func (r *Redis) FindAll(ctx context.Context) ([]*model.Summary, error) {
	keys := []string{}
	iter := r.client.Scan(ctx, 0, model.KeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}

	summaries := make([]*model.Summary, 0, len(keys))
	for start := 0; start < len(keys); start += 100 {
		end := min(start+100, len(keys))
		values, err := r.client.MGet(ctx, keys[start:end]...).Result()
		if err != nil {
			return nil, err
		}
		for _, v := range values {
			raw, ok := v.(string)
			if !ok {
				continue
			}
			summary, err := decodeRecord([]byte(raw))
			if err != nil {
				continue
			}
			summaries = append(summaries, summary)
		}
	}

	return summaries, nil
}

func (r *Redis) Delete(ctx context.Context, key string) error {
	return r.client.Del(ctx, key).Err()
}

func (r *Redis) Close() error {
	return r.client.Close()
}
