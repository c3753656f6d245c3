package handlers

import (
	"log/slog"
	"net/http"

	"github.com/YasNanNan2/FutariNote/internal/middleware"
	"github.com/YasNanNan2/FutariNote/internal/models"
	"github.com/YasNanNan2/FutariNote/internal/repository"
)

type UserHandler struct {
	userRepo repository.UserRepository
}

func NewUserHandler(userRepo repository.UserRepository) *UserHandler {
	return &UserHandler{userRepo: userRepo}
}

func (handler *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())
	writeJSON(w, http.StatusOK, user)
}

type updateMeRequest struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

func (handler *UserHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())

	var request updateMeRequest
	if err := decodeJSON(r, &request); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if request.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	if request.Color != "" && !models.ValidMemberColor(request.Color) {
		writeError(w, http.StatusBadRequest, "color must be one of the palette colors")
		return
	}
	if request.Color == "" {
		request.Color = user.Color
	}

	if err := handler.userRepo.UpdateProfile(r.Context(), user.ID, request.Name, request.Color); err != nil {
		slog.Error("updating profile", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update profile")
		return
	}

	user.Name = request.Name
	user.Color = request.Color
	writeJSON(w, http.StatusOK, user)
}
