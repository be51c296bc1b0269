package handler

import (
	"net/http"

	"coursehub/internal/app/service"
	"coursehub/internal/common"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type AuthHandler struct {
	authService *service.AuthService
	log         *zap.Logger
}

func NewAuthHandler(authService *service.AuthService, log *zap.Logger) *AuthHandler {
	return &AuthHandler{authService: authService, log: log}
}

// RegisterRoutes mounts the public auth routes.
func (h *AuthHandler) RegisterRoutes(r chi.Router) {
	r.Post("/login", h.login)
}

func (h *AuthHandler) login(w http.ResponseWriter, r *http.Request) {
	var req service.LoginRequest
	if err := common.DecodeJSON(r, &req); err != nil {
		respondErr(w, r, h.log, err)
		return
	}
	resp, err := h.authService.Login(r.Context(), req)
	if err != nil {
		respondErr(w, r, h.log, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, resp)
}
