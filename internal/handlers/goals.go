package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/YasNanNan2/FutariNote/internal/events"
	"github.com/YasNanNan2/FutariNote/internal/middleware"
	"github.com/YasNanNan2/FutariNote/internal/models"
	"github.com/YasNanNan2/FutariNote/internal/repository"
	"github.com/go-chi/chi/v5"
)

type GoalHandler struct {
	goalRepo     repository.GoalRepository
	timelineRepo repository.TimelineRepository
	hub          *events.Hub
}

func NewGoalHandler(goalRepo repository.GoalRepository, timelineRepo repository.TimelineRepository, hub *events.Hub) *GoalHandler {
	return &GoalHandler{goalRepo: goalRepo, timelineRepo: timelineRepo, hub: hub}
}

func (handler *GoalHandler) List(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())

	goals, err := handler.goalRepo.FindAll(r.Context(), *user.GroupID)
	if err != nil {
		slog.Error("loading goals", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load goals")
		return
	}
	writeJSON(w, http.StatusOK, goals)
}

type goalRequest struct {
	Title         string `json:"title"`
	Deadline      string `json:"deadline"`
	Icon          string `json:"icon"`
	TargetAmount  *int64 `json:"targetAmount"`
	CurrentAmount *int64 `json:"currentAmount"`
	Achieved      *bool  `json:"achieved"`
}

func (handler *GoalHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())

	var request goalRequest
	if err := decodeJSON(r, &request); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if request.Title == "" || request.Deadline == "" {
		writeError(w, http.StatusBadRequest, "title and deadline are required")
		return
	}
	if request.Icon != "" && !models.ValidGoalIcon(request.Icon) {
		writeError(w, http.StatusBadRequest, "invalid icon")
		return
	}

	goal := models.Goal{
		GroupID:      *user.GroupID,
		Title:        request.Title,
		Deadline:     request.Deadline,
		Icon:         request.Icon,
		TargetAmount: request.TargetAmount,
		CreatedBy:    user.ID,
	}
	if request.CurrentAmount != nil {
		goal.CurrentAmount = *request.CurrentAmount
	}

	created, err := handler.goalRepo.Create(r.Context(), goal)
	if err != nil {
		slog.Error("creating goal", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create goal")
		return
	}

	handler.hub.Publish(events.Event{Type: events.EventGoalCreated, GroupID: created.GroupID, Payload: created})
	writeJSON(w, http.StatusCreated, created)
}

func (handler *GoalHandler) Update(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())
	goalID := chi.URLParam(r, "id")

	goal, err := handler.goalRepo.FindByID(r.Context(), *user.GroupID, goalID)
	if err != nil {
		writeError(w, http.StatusNotFound, "goal not found")
		return
	}

	var request goalRequest
	if err := decodeJSON(r, &request); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if request.Title != "" {
		goal.Title = request.Title
	}
	if request.Deadline != "" {
		goal.Deadline = request.Deadline
	}
	if request.Icon != "" {
		if !models.ValidGoalIcon(request.Icon) {
			writeError(w, http.StatusBadRequest, "invalid icon")
			return
		}
		goal.Icon = request.Icon
	}
	if request.TargetAmount != nil {
		goal.TargetAmount = request.TargetAmount
	}
	if request.CurrentAmount != nil {
		goal.CurrentAmount = *request.CurrentAmount
	}

	if request.Achieved != nil && *request.Achieved && !goal.Achieved {
		now := time.Now()
		goal.Achieved = true
		goal.AchievedAt = &now

		if _, err := handler.timelineRepo.Create(r.Context(), models.TimelineEntry{
			GroupID:     goal.GroupID,
			EntryType:   models.TimelineGoalAchieved,
			ActorUserID: user.ID,
			RefID:       &goal.ID,
			Title:       goal.Title,
		}); err != nil {
			slog.Warn("recording achievement on timeline", "error", err)
		}
	}

	if err := handler.goalRepo.Update(r.Context(), goal); err != nil {
		slog.Error("updating goal", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update goal")
		return
	}

	handler.hub.Publish(events.Event{Type: events.EventGoalUpdated, GroupID: goal.GroupID, Payload: goal})
	writeJSON(w, http.StatusOK, goal)
}

func (handler *GoalHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())
	goalID := chi.URLParam(r, "id")

	if err := handler.goalRepo.Delete(r.Context(), *user.GroupID, goalID); err != nil {
		slog.Error("deleting goal", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete goal")
		return
	}

	handler.hub.Publish(events.Event{Type: events.EventGoalDeleted, GroupID: *user.GroupID, Payload: goalID})
	w.WriteHeader(http.StatusOK)
}
