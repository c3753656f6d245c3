package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/YasNanNan2/FutariNote/internal/middleware"
	"github.com/YasNanNan2/FutariNote/internal/repository"
)

type TimelineHandler struct {
	timelineRepo repository.TimelineRepository
}

func NewTimelineHandler(timelineRepo repository.TimelineRepository) *TimelineHandler {
	return &TimelineHandler{timelineRepo: timelineRepo}
}

func (handler *TimelineHandler) List(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, _ = strconv.Atoi(raw)
	}

	entries, err := handler.timelineRepo.FindAll(r.Context(), *user.GroupID, limit)
	if err != nil {
		slog.Error("loading timeline", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load timeline")
		return
	}
	writeJSON(w, http.StatusOK, entries)
}
