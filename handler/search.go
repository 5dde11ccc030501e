package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"go-mod.ewintr.nl/ytsum/model"
	"go-mod.ewintr.nl/ytsum/storage"
	"golang.org/x/exp/slog"
)

const defaultSearchLimit = 10

type SearchAPI struct {
	summaries *storage.Summaries
	index     storage.SummaryVecRepository
	logger    *slog.Logger
}

func NewSearchAPI(summaries *storage.Summaries, index storage.SummaryVecRepository, logger *slog.Logger) *SearchAPI {
	return &SearchAPI{
		summaries: summaries,
		index:     index,
		logger:    logger,
	}
}

func (sa *SearchAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	sub, _ := ShiftPath(r.URL.Path)

	switch {
	case sa.index == nil:
		Error(w, http.StatusNotFound, "not found", errors.New("no search index configured"))
	case r.Method == http.MethodGet && sub == "":
		sa.Search(w, r)
	default:
		Error(w, http.StatusNotFound, "not found", fmt.Errorf("method %s with subpath %q was not registered in the search api", r.Method, sub))
	}
}

func (sa *SearchAPI) Search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		Error(w, http.StatusBadRequest, "missing query", errors.New("parameter q is required"))
		return
	}
	limit := defaultSearchLimit
	if l := r.URL.Query().Get("limit"); l != "" {
		n, err := strconv.Atoi(l)
		if err != nil || n <= 0 {
			Error(w, http.StatusBadRequest, "invalid limit", fmt.Errorf("limit %q is not a positive number", l))
			return
		}
		limit = n
	}

	ids, err := sa.index.Search(r.Context(), query, limit)
	if err != nil {
		sa.logger.Error("could not search summaries", slog.String("err", err.Error()))
		Error(w, http.StatusInternalServerError, "could not search summaries", err)
		return
	}

	found := make([]*model.Summary, 0, len(ids))
	for _, id := range ids {
		summary, err := sa.summaries.GetByVideoID(r.Context(), id)
		switch {
		case errors.Is(err, storage.ErrNotFound):
			// index can lag behind a removal
			continue
		case err != nil:
			Error(w, http.StatusInternalServerError, "could not get summary", err, string(id))
			return
		}
		found = append(found, summary)
	}

	JSON(w, http.StatusOK, newRespSummaries(found))
}
