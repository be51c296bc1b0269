package handler

import (
	"net/http"

	"coursehub/internal/api/middleware"
	"coursehub/internal/app/service"
	"coursehub/internal/common"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type EnrollmentHandler struct {
	enrollmentService *service.EnrollmentService
	log               *zap.Logger
}

func NewEnrollmentHandler(enrollmentService *service.EnrollmentService, log *zap.Logger) *EnrollmentHandler {
	return &EnrollmentHandler{enrollmentService: enrollmentService, log: log}
}

func (h *EnrollmentHandler) RegisterRoutes(r chi.Router) {
	r.Post("/enroll", h.enroll)
	r.Delete("/enroll", h.cancel)

	r.Group(func(staff chi.Router) {
		staff.Use(middleware.StaffOnly)
		staff.Get("/course-students/{offerId}", h.courseStudents)
		staff.Get("/lecturer/course-students/{offerId}", h.registrations)
		staff.Get("/course-registrations/{offerId}", h.registrations)
	})

	r.With(middleware.AdminOnly).Post("/student/enroll", h.adminEnroll)
}

func (h *EnrollmentHandler) decode(w http.ResponseWriter, r *http.Request) (service.EnrollRequest, bool) {
	var req service.EnrollRequest
	err := common.DecodeJSON(r, &req)
	if err == nil {
		err = selfOrStaff(r, int64(req.StudentID))
	}
	if err != nil {
		respondErr(w, r, h.log, err)
		return req, false
	}
	return req, true
}

func (h *EnrollmentHandler) enroll(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decode(w, r)
	if !ok {
		return
	}
	if err := h.enrollmentService.Enroll(r.Context(), req); err != nil {
		respondErr(w, r, h.log, err)
		return
	}
	common.RespondOK(w, "Enrolled successfully", nil)
}

func (h *EnrollmentHandler) cancel(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decode(w, r)
	if !ok {
		return
	}
	if err := h.enrollmentService.Cancel(r.Context(), req); err != nil {
		respondErr(w, r, h.log, err)
		return
	}
	common.RespondOK(w, "Enrollment cancelled", nil)
}

type adminEnrollRequest struct {
	StudentID common.ID `json:"studentId"`
	OfferID   common.ID `json:"offerId"`
}

// adminEnroll registers a student on an admin's behalf through the same seat ledger.
func (h *EnrollmentHandler) adminEnroll(w http.ResponseWriter, r *http.Request) {
	var req adminEnrollRequest
	if err := common.DecodeJSON(r, &req); err != nil {
		respondErr(w, r, h.log, err)
		return
	}
	err := h.enrollmentService.Enroll(r.Context(), service.EnrollRequest{StudentID: req.StudentID, OfferID: req.OfferID})
	if err != nil {
		respondErr(w, r, h.log, err)
		return
	}
	common.RespondOK(w, "Student enrolled", nil)
}

func (h *EnrollmentHandler) courseStudents(w http.ResponseWriter, r *http.Request) {
	offerID, err := pathID(r, "offerId")
	if err != nil {
		respondErr(w, r, h.log, err)
		return
	}
	students, err := h.enrollmentService.CourseStudents(r.Context(), offerID)
	if err != nil {
		respondErr(w, r, h.log, err)
		return
	}
	common.RespondOK(w, "", students)
}

func (h *EnrollmentHandler) registrations(w http.ResponseWriter, r *http.Request) {
	offerID, err := pathID(r, "offerId")
	if err != nil {
		respondErr(w, r, h.log, err)
		return
	}
	students, err := h.enrollmentService.Registrations(r.Context(), offerID)
	if err != nil {
		respondErr(w, r, h.log, err)
		return
	}
	common.RespondWithKey(w, http.StatusOK, "students", students)
}
