package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/YasNanNan2/FutariNote/internal/events"
	"github.com/YasNanNan2/FutariNote/internal/middleware"
	"github.com/YasNanNan2/FutariNote/internal/models"
	"github.com/YasNanNan2/FutariNote/internal/repository"
	"github.com/YasNanNan2/FutariNote/internal/services"
)

type StampHandler struct {
	stampRepo    repository.StampRepository
	groupRepo    repository.GroupRepository
	stampService *services.StampService
	hub          *events.Hub
}

func NewStampHandler(
	stampRepo repository.StampRepository,
	groupRepo repository.GroupRepository,
	stampService *services.StampService,
	hub *events.Hub,
) *StampHandler {
	return &StampHandler{
		stampRepo:    stampRepo,
		groupRepo:    groupRepo,
		stampService: stampService,
		hub:          hub,
	}
}

func (handler *StampHandler) List(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, _ = strconv.Atoi(raw)
	}

	stamps, err := handler.stampRepo.FindAll(r.Context(), *user.GroupID, limit)
	if err != nil {
		slog.Error("loading stamps", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load stamps")
		return
	}
	writeJSON(w, http.StatusOK, stamps)
}

type sendStampRequest struct {
	To        string  `json:"to"`
	StampType string  `json:"stampType"`
	TaskID    *string `json:"taskId"`
}

func (handler *StampHandler) Send(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())

	var request sendStampRequest
	if err := decodeJSON(r, &request); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	stamp, err := handler.stampService.Send(r.Context(), user, request.To, models.StampType(request.StampType), request.TaskID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidStampType):
			writeError(w, http.StatusBadRequest, "unknown stamp type")
		case errors.Is(err, services.ErrSelfStamp):
			writeError(w, http.StatusBadRequest, "cannot send a stamp to yourself")
		case errors.Is(err, services.ErrRecipientNotMember):
			writeError(w, http.StatusBadRequest, "recipient is not a member of your group")
		default:
			slog.Error("sending stamp", "error", err)
			writeError(w, http.StatusInternalServerError, "failed to send stamp")
		}
		return
	}

	handler.hub.Publish(events.Event{Type: events.EventStampSent, GroupID: stamp.GroupID, Payload: stamp})
	writeJSON(w, http.StatusCreated, stamp)
}

func (handler *StampHandler) Totals(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())

	totals, err := handler.groupRepo.StampTotals(r.Context(), *user.GroupID)
	if err != nil {
		slog.Error("loading stamp totals", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load stamp totals")
		return
	}
	writeJSON(w, http.StatusOK, totals)
}

func (handler *StampHandler) Weekly(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())

	stats, err := handler.stampService.Weekly(r.Context(), *user.GroupID)
	if err != nil {
		slog.Error("deriving weekly stats", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to derive weekly stats")
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
