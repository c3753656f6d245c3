package handlers

import (
	"log/slog"
	"net/http"

	"github.com/YasNanNan2/FutariNote/internal/events"
	"github.com/YasNanNan2/FutariNote/internal/middleware"
	"github.com/YasNanNan2/FutariNote/internal/repository"
	"github.com/YasNanNan2/FutariNote/internal/services"
)

type GroupHandler struct {
	groupRepo      repository.GroupRepository
	groupService   *services.GroupService
	accountService *services.AccountService
	authService    *services.AuthService
	hub            *events.Hub
}

func NewGroupHandler(
	groupRepo repository.GroupRepository,
	groupService *services.GroupService,
	accountService *services.AccountService,
	authService *services.AuthService,
	hub *events.Hub,
) *GroupHandler {
	return &GroupHandler{
		groupRepo:      groupRepo,
		groupService:   groupService,
		accountService: accountService,
		authService:    authService,
		hub:            hub,
	}
}

func (handler *GroupHandler) Get(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())

	group, err := handler.groupRepo.FindByID(r.Context(), *user.GroupID)
	if err != nil {
		slog.Error("loading group", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load group")
		return
	}
	writeJSON(w, http.StatusOK, group)
}

type joinRequest struct {
	Code string `json:"code"`
}

// Join resolves an invite code into group membership. Soft business
// outcomes map onto status codes and a machine-readable outcome field
// instead of error-message matching.
func (handler *GroupHandler) Join(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())

	var request joinRequest
	if err := decodeJSON(r, &request); err != nil || request.Code == "" {
		writeError(w, http.StatusBadRequest, "invite code is required")
		return
	}

	result, err := handler.groupService.Join(r.Context(), user, request.Code)
	if err != nil {
		slog.Error("joining group", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to join group")
		return
	}

	switch result.Outcome {
	case services.OutcomeJoined:
		handler.hub.Publish(events.Event{Type: events.EventMemberJoined, GroupID: result.GroupID, Payload: user})
		writeJSON(w, http.StatusOK, result)
	case services.OutcomeAlreadyMember:
		// idempotent re-join, success-equivalent for the caller
		writeJSON(w, http.StatusOK, result)
	case services.OutcomeInvalidCode, services.OutcomeExpiredCode, services.OutcomeSelfJoin:
		writeJSON(w, http.StatusUnprocessableEntity, result)
	case services.OutcomeAlreadyInAnotherGroup:
		writeJSON(w, http.StatusConflict, result)
	default:
		writeError(w, http.StatusInternalServerError, "unknown join outcome")
	}
}

func (handler *GroupHandler) Leave(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())

	if err := handler.groupService.Leave(r.Context(), user); err != nil {
		if err == services.ErrNotInGroup {
			writeError(w, http.StatusConflict, "not in a group")
			return
		}
		slog.Error("leaving group", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to leave group")
		return
	}

	if user.GroupID != nil {
		handler.hub.Publish(events.Event{Type: events.EventMemberLeft, GroupID: *user.GroupID, Payload: user.ID})
	}
	w.WriteHeader(http.StatusOK)
}

func (handler *GroupHandler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())

	result, err := handler.accountService.DeleteAccount(r.Context(), user)
	if err != nil {
		slog.Error("deleting account", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete account")
		return
	}

	handler.authService.ClearSession(w)
	writeJSON(w, http.StatusOK, result)
}
