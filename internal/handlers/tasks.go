package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/YasNanNan2/FutariNote/internal/events"
	"github.com/YasNanNan2/FutariNote/internal/middleware"
	"github.com/YasNanNan2/FutariNote/internal/models"
	"github.com/YasNanNan2/FutariNote/internal/repository"
	"github.com/YasNanNan2/FutariNote/internal/services"
	"github.com/go-chi/chi/v5"
)

type TaskHandler struct {
	taskRepo    repository.TaskRepository
	taskService *services.TaskService
	hub         *events.Hub
}

func NewTaskHandler(taskRepo repository.TaskRepository, taskService *services.TaskService, hub *events.Hub) *TaskHandler {
	return &TaskHandler{taskRepo: taskRepo, taskService: taskService, hub: hub}
}

func (handler *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())
	filter := repository.TaskFilter{}

	if month := r.URL.Query().Get("month"); month != "" {
		filter.Month = &month
	}
	if date := r.URL.Query().Get("date"); date != "" {
		filter.Date = &date
	}
	if assignee := r.URL.Query().Get("assignee"); assignee != "" {
		filter.Assignee = &assignee
	}

	tasks, err := handler.taskRepo.FindAll(r.Context(), *user.GroupID, filter)
	if err != nil {
		slog.Error("loading tasks", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load tasks")
		return
	}
	writeJSON(w, http.StatusOK, tasks)
}

type taskRequest struct {
	Title    string `json:"title"`
	Date     string `json:"date"`
	Assignee string `json:"assignee"`
	Category string `json:"category"`
}

func (handler *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())

	var request taskRequest
	if err := decodeJSON(r, &request); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if request.Title == "" || request.Date == "" {
		writeError(w, http.StatusBadRequest, "title and date are required")
		return
	}
	category := models.TaskCategory(request.Category)
	if !category.Valid() {
		writeError(w, http.StatusBadRequest, "unknown category")
		return
	}
	if request.Assignee != "" {
		if err := handler.taskService.ValidateAssignee(r.Context(), *user.GroupID, request.Assignee); err != nil {
			if errors.Is(err, services.ErrAssigneeNotMember) {
				writeError(w, http.StatusBadRequest, "assignee must be a member's user id")
				return
			}
			slog.Error("validating assignee", "error", err)
			writeError(w, http.StatusInternalServerError, "failed to validate assignee")
			return
		}
	}

	task, err := handler.taskRepo.Create(r.Context(), models.Task{
		GroupID:        *user.GroupID,
		Title:          request.Title,
		Date:           request.Date,
		AssigneeUserID: request.Assignee,
		Category:       category,
		CreatedBy:      user.ID,
	})
	if err != nil {
		slog.Error("creating task", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create task")
		return
	}

	handler.hub.Publish(events.Event{Type: events.EventTaskCreated, GroupID: task.GroupID, Payload: task})
	writeJSON(w, http.StatusCreated, task)
}

func (handler *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())
	taskID := chi.URLParam(r, "id")

	var request taskRequest
	if err := decodeJSON(r, &request); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if request.Category != "" && !models.TaskCategory(request.Category).Valid() {
		writeError(w, http.StatusBadRequest, "unknown category")
		return
	}
	if request.Assignee != "" {
		if err := handler.taskService.ValidateAssignee(r.Context(), *user.GroupID, request.Assignee); err != nil {
			if errors.Is(err, services.ErrAssigneeNotMember) {
				writeError(w, http.StatusBadRequest, "assignee must be a member's user id")
				return
			}
			slog.Error("validating assignee", "error", err)
			writeError(w, http.StatusInternalServerError, "failed to validate assignee")
			return
		}
	}

	task, err := handler.taskRepo.FindByID(r.Context(), *user.GroupID, taskID)
	if err != nil {
		writeError(w, http.StatusNotFound, "task not found")
		return
	}

	// Omitted fields keep their current value, matching the goal handler.
	if request.Title != "" {
		task.Title = request.Title
	}
	if request.Date != "" {
		task.Date = request.Date
	}
	if request.Assignee != "" {
		task.AssigneeUserID = request.Assignee
	}
	if request.Category != "" {
		task.Category = models.TaskCategory(request.Category)
	}

	if err := handler.taskRepo.Update(r.Context(), task); err != nil {
		slog.Error("updating task", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update task")
		return
	}

	handler.hub.Publish(events.Event{Type: events.EventTaskUpdated, GroupID: task.GroupID, Payload: task})
	writeJSON(w, http.StatusOK, task)
}

func (handler *TaskHandler) Complete(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())
	taskID := chi.URLParam(r, "id")

	task, err := handler.taskService.Complete(r.Context(), *user.GroupID, taskID, user.ID)
	if err != nil {
		if errors.Is(err, services.ErrTaskAlreadyComplete) {
			writeError(w, http.StatusConflict, "task is already completed")
			return
		}
		slog.Error("completing task", "error", err)
		writeError(w, http.StatusNotFound, "task not found")
		return
	}

	handler.hub.Publish(events.Event{Type: events.EventTaskCompleted, GroupID: task.GroupID, Payload: task})
	writeJSON(w, http.StatusOK, task)
}

func (handler *TaskHandler) Uncomplete(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())
	taskID := chi.URLParam(r, "id")

	task, err := handler.taskService.Uncomplete(r.Context(), *user.GroupID, taskID)
	if err != nil {
		if errors.Is(err, services.ErrTaskNotComplete) {
			writeError(w, http.StatusConflict, "task is not completed")
			return
		}
		slog.Error("uncompleting task", "error", err)
		writeError(w, http.StatusNotFound, "task not found")
		return
	}

	handler.hub.Publish(events.Event{Type: events.EventTaskUpdated, GroupID: task.GroupID, Payload: task})
	writeJSON(w, http.StatusOK, task)
}

func (handler *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())
	taskID := chi.URLParam(r, "id")

	if err := handler.taskRepo.Delete(r.Context(), *user.GroupID, taskID); err != nil {
		slog.Error("deleting task", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete task")
		return
	}

	handler.hub.Publish(events.Event{Type: events.EventTaskDeleted, GroupID: *user.GroupID, Payload: taskID})
	w.WriteHeader(http.StatusOK)
}

// Reconcile runs the legacy-assignee migration for the caller's group.
func (handler *TaskHandler) Reconcile(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())

	updated, unmatched, err := handler.taskService.ReconcileAssignees(r.Context(), *user.GroupID)
	if err != nil {
		slog.Error("reconciling assignees", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to reconcile assignees")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"updated":   updated,
		"unmatched": unmatched,
	})
}
