package handler

import (
	"net/http"

	"coursehub/internal/app/service"
	"coursehub/internal/common"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// UserHandler serves the admin user directory. Mount it behind AdminOnly.
type UserHandler struct {
	userService *service.UserService
	log         *zap.Logger
}

func NewUserHandler(userService *service.UserService, log *zap.Logger) *UserHandler {
	return &UserHandler{userService: userService, log: log}
}

func (h *UserHandler) RegisterRoutes(r chi.Router) {
	r.Get("/users", h.listUsers)
	r.Get("/lecturers", h.listLecturers)
	r.Get("/admin/students", h.listStudents)
	r.Post("/add-user", h.addUser)
}

func (h *UserHandler) listUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.userService.ListUsers(r.Context())
	if err != nil {
		respondErr(w, r, h.log, err)
		return
	}
	common.RespondWithKey(w, http.StatusOK, "users", users)
}

func (h *UserHandler) listLecturers(w http.ResponseWriter, r *http.Request) {
	lecturers, err := h.userService.ListLecturers(r.Context())
	if err != nil {
		respondErr(w, r, h.log, err)
		return
	}
	common.RespondWithKey(w, http.StatusOK, "lecturers", lecturers)
}

func (h *UserHandler) listStudents(w http.ResponseWriter, r *http.Request) {
	students, err := h.userService.ListStudents(r.Context())
	if err != nil {
		respondErr(w, r, h.log, err)
		return
	}
	common.RespondWithKey(w, http.StatusOK, "students", students)
}

func (h *UserHandler) addUser(w http.ResponseWriter, r *http.Request) {
	var req service.AddUserRequest
	if err := common.DecodeJSON(r, &req); err != nil {
		respondErr(w, r, h.log, err)
		return
	}
	u, err := h.userService.AddUser(r.Context(), req)
	if err != nil {
		respondErr(w, r, h.log, err)
		return
	}
	common.RespondWithJSON(w, http.StatusCreated, common.Envelope{Success: true, Message: "User created", Data: u})
}
