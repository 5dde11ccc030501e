package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"go-mod.ewintr.nl/ytsum/model"
	"go-mod.ewintr.nl/ytsum/process"
	"go-mod.ewintr.nl/ytsum/storage"
	"golang.org/x/exp/slog"
)

type Enqueuer interface {
	Enqueue(ctx context.Context, url, question string) (*model.Summary, error)
}

type Remover interface {
	Remove(ctx context.Context, summary *model.Summary) error
}

type respSummary struct {
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

func newRespSummary(s *model.Summary) respSummary {
	return respSummary{
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
	}
}

func newRespSummaries(summaries []*model.Summary) []respSummary {
	resp := make([]respSummary, 0, len(summaries))
	for _, s := range summaries {
		resp = append(resp, newRespSummary(s))
	}

	return resp
}

type SummaryAPI struct {
	summaries *storage.Summaries
	queue     Enqueuer
	remover   Remover
	logger    *slog.Logger
}

func NewSummaryAPI(summaries *storage.Summaries, queue Enqueuer, remover Remover, logger *slog.Logger) *SummaryAPI {
	return &SummaryAPI{
		summaries: summaries,
		queue:     queue,
		remover:   remover,
		logger:    logger,
	}
}

func (sa *SummaryAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	videoID, _ := ShiftPath(r.URL.Path)

	switch {
	case r.Method == http.MethodGet && videoID == "":
		sa.List(w, r)
	case r.Method == http.MethodGet:
		sa.Get(w, r, model.YoutubeVideoID(videoID))
	case r.Method == http.MethodPost && videoID == "":
		sa.Create(w, r)
	case r.Method == http.MethodDelete && videoID != "":
		sa.Delete(w, r, model.YoutubeVideoID(videoID))
	default:
		Error(w, http.StatusNotFound, "not found", fmt.Errorf("method %s with subpath %q was not registered in the summary api", r.Method, videoID))
	}
}

func (sa *SummaryAPI) List(w http.ResponseWriter, r *http.Request) {
	status := model.SummaryStatus(r.URL.Query().Get("status"))
	if status != "" && !status.Valid() {
		Error(w, http.StatusBadRequest, "invalid status", fmt.Errorf("unknown status %q", status))
		return
	}

	summaries, err := sa.summaries.Search(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		sa.returnErr(r.Context(), w, http.StatusInternalServerError, "could not list summaries", err)
		return
	}
	if status != "" {
		filtered := make([]*model.Summary, 0, len(summaries))
		for _, s := range summaries {
			if s.Status == status {
				filtered = append(filtered, s)
			}
		}
		summaries = filtered
	}

	JSON(w, http.StatusOK, newRespSummaries(summaries))
}

func (sa *SummaryAPI) Get(w http.ResponseWriter, r *http.Request, videoID model.YoutubeVideoID) {
	summary, ok := sa.find(w, r, videoID)
	if !ok {
		return
	}

	JSON(w, http.StatusOK, newRespSummary(summary))
}

func (sa *SummaryAPI) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		URL      string `json:"url"`
		Question string `json:"question"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		Error(w, http.StatusBadRequest, "could not decode request", err)
		return
	}

	summary, err := sa.queue.Enqueue(r.Context(), req.URL, req.Question)
	switch {
	case errors.Is(err, process.ErrNoURL), errors.Is(err, process.ErrInvalidURL):
		Error(w, http.StatusBadRequest, "invalid url", err, req.URL)
		return
	case err != nil:
		sa.returnErr(r.Context(), w, http.StatusInternalServerError, "could not queue summary", err)
		return
	}

	JSON(w, http.StatusAccepted, newRespSummary(summary))
}

func (sa *SummaryAPI) Delete(w http.ResponseWriter, r *http.Request, videoID model.YoutubeVideoID) {
	summary, ok := sa.find(w, r, videoID)
	if !ok {
		return
	}
	if err := sa.remover.Remove(r.Context(), summary); err != nil {
		sa.returnErr(r.Context(), w, http.StatusInternalServerError, "could not remove summary", err)
		return
	}

	Message(w, http.StatusOK, "summary removed", summary.Key)
}

func (sa *SummaryAPI) find(w http.ResponseWriter, r *http.Request, videoID model.YoutubeVideoID) (*model.Summary, bool) {
	summary, err := sa.summaries.GetByVideoID(r.Context(), videoID)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		Error(w, http.StatusNotFound, "summary not found", err, string(videoID))
		return nil, false
	case err != nil:
		sa.returnErr(r.Context(), w, http.StatusInternalServerError, "could not get summary", err)
		return nil, false
	}

	return summary, true
}

func (sa *SummaryAPI) returnErr(_ context.Context, w http.ResponseWriter, status int, message string, err error, details ...any) {
	sa.logger.Error(message, slog.String("err", err.Error()), slog.String("details", fmt.Sprintf("%+v", details)))
	Error(w, status, message, err, details...)
}
