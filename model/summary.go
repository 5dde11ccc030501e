package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type SummaryStatus string

const (
	StatusQueued     SummaryStatus = "queued"
	StatusInProgress SummaryStatus = "in_progress"
	StatusDone       SummaryStatus = "done"
	StatusError      SummaryStatus = "error"
)

func (s SummaryStatus) Valid() bool {
	switch s {
	case StatusQueued, StatusInProgress, StatusDone, StatusError:
		return true
	}
	return false
}

type YoutubeVideoID string

const KeyPrefix = "summary:"

// BuildKey returns the storage key for a video. There is exactly one key per
// video id, which is what keeps at most one summary per video.
func BuildKey(videoID YoutubeVideoID) string {
	return KeyPrefix + string(videoID)
}

func IsSummaryKey(key string) bool {
	return strings.HasPrefix(key, KeyPrefix)
}

// objectNamespace seeds the deterministic object ids handed to the vector index.
var objectNamespace = uuid.MustParse("8b0a2a3c-2f5e-4bcb-9a57-5d1f3f6f2c11")

type Summary struct {
	Key          string
	VideoID      YoutubeVideoID
	URL          string
	Title        string
	Channel      string
	ThumbnailURL string
	Question     string
	Model        string
	Status       SummaryStatus
	CreatedAt    time.Time
	UpdatedAt    time.Time
	Markdown     string
	Error        string
}

func (s *Summary) ObjectID() uuid.UUID {
	return uuid.NewSHA1(objectNamespace, []byte(s.Key))
}

// Matches reports whether the lowercased query occurs in the title, channel,
// url or markdown. An empty query matches everything.
func (s *Summary) Matches(query string) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return true
	}
	for _, field := range []string{s.Title, s.Channel, s.URL, s.Markdown} {
		if strings.Contains(strings.ToLower(field), q) {
			return true
		}
	}
	return false
}

// DisplayTitle falls back to the url when no title is known.
func (s *Summary) DisplayTitle() string {
	if s.Title != "" {
		return s.Title
	}
	return s.URL
}
