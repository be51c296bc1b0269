package handler

import (
	"net/http"

	"coursehub/internal/api/middleware"
	"coursehub/internal/app/service"
	"coursehub/internal/common"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type GradeHandler struct {
	gradeService *service.GradeService
	log          *zap.Logger
}

func NewGradeHandler(gradeService *service.GradeService, log *zap.Logger) *GradeHandler {
	return &GradeHandler{gradeService: gradeService, log: log}
}

func (h *GradeHandler) RegisterRoutes(r chi.Router) {
	r.Get("/grades/{studentId}", h.studentGrades)

	r.Group(func(staff chi.Router) {
		staff.Use(middleware.StaffOnly)
		staff.Post("/grades", h.setCourseGrade)
		staff.Post("/homework-submissions/grade", h.setSubmissionGrade)
	})
}

func (h *GradeHandler) studentGrades(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "studentId")
	if err == nil {
		err = selfOrStaff(r, id)
	}
	if err != nil {
		respondErr(w, r, h.log, err)
		return
	}
	grades, err := h.gradeService.StudentGrades(r.Context(), id)
	if err != nil {
		respondErr(w, r, h.log, err)
		return
	}
	common.RespondOK(w, "", grades)
}

func (h *GradeHandler) setCourseGrade(w http.ResponseWriter, r *http.Request) {
	var req service.SetGradeRequest
	if err := common.DecodeJSON(r, &req); err != nil {
		respondErr(w, r, h.log, err)
		return
	}
	if err := h.gradeService.SetCourseGrade(r.Context(), req); err != nil {
		respondErr(w, r, h.log, err)
		return
	}
	common.RespondOK(w, "Grade saved", nil)
}

func (h *GradeHandler) setSubmissionGrade(w http.ResponseWriter, r *http.Request) {
	var req service.GradeSubmissionRequest
	if err := common.DecodeJSON(r, &req); err != nil {
		respondErr(w, r, h.log, err)
		return
	}
	if err := h.gradeService.SetSubmissionGrade(r.Context(), req); err != nil {
		respondErr(w, r, h.log, err)
		return
	}
	common.RespondOK(w, "Grade saved", nil)
}
