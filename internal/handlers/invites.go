package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/YasNanNan2/FutariNote/internal/middleware"
	"github.com/YasNanNan2/FutariNote/internal/services"
	"github.com/go-chi/chi/v5"
)

type InviteHandler struct {
	inviteService *services.InviteService
	baseURL       string
}

func NewInviteHandler(inviteService *services.InviteService, baseURL string) *InviteHandler {
	return &InviteHandler{inviteService: inviteService, baseURL: baseURL}
}

type inviteResponse struct {
	Code      string  `json:"code"`
	UserID    string  `json:"userId"`
	GroupID   *string `json:"groupId"`
	ExpiresAt string  `json:"expiresAt"`
	InviteURL string  `json:"inviteUrl"`
}

func (handler *InviteHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())

	invite, err := handler.inviteService.CreateInviteCode(r.Context(), user)
	if err != nil {
		if errors.Is(err, services.ErrCodeGenerationExhausted) {
			writeError(w, http.StatusServiceUnavailable, "could not generate a unique invite code")
			return
		}
		slog.Error("creating invite code", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create invite code")
		return
	}

	writeJSON(w, http.StatusCreated, inviteResponse{
		Code:      invite.Code,
		UserID:    invite.IssuerUserID,
		GroupID:   invite.GroupID,
		ExpiresAt: invite.ExpiresAt.Format("2006-01-02T15:04:05Z07:00"),
		InviteURL: handler.baseURL + "/join?code=" + invite.Code,
	})
}

func (handler *InviteHandler) Mine(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())

	invite, err := handler.inviteService.GetMyInviteCode(r.Context(), user)
	if err != nil {
		slog.Error("looking up invite code", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to look up invite code")
		return
	}
	if invite == nil {
		writeJSON(w, http.StatusOK, nil)
		return
	}

	writeJSON(w, http.StatusOK, inviteResponse{
		Code:      invite.Code,
		UserID:    invite.IssuerUserID,
		GroupID:   invite.GroupID,
		ExpiresAt: invite.ExpiresAt.Format("2006-01-02T15:04:05Z07:00"),
		InviteURL: handler.baseURL + "/join?code=" + invite.Code,
	})
}

func (handler *InviteHandler) Validate(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")

	validation, err := handler.inviteService.ValidateInviteCode(r.Context(), code)
	if err != nil {
		slog.Error("validating invite code", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to validate invite code")
		return
	}
	writeJSON(w, http.StatusOK, validation)
}
