package handler

import (
	"net/http"

	"coursehub/internal/api/middleware"
	"coursehub/internal/app/service"
	"coursehub/internal/common"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type CatalogHandler struct {
	catalogService *service.CatalogService
	log            *zap.Logger
}

func NewCatalogHandler(catalogService *service.CatalogService, log *zap.Logger) *CatalogHandler {
	return &CatalogHandler{catalogService: catalogService, log: log}
}

func (h *CatalogHandler) RegisterPublicRoutes(r chi.Router) {
	r.Get("/courses", h.listOpenOffers)
}

func (h *CatalogHandler) RegisterRoutes(r chi.Router) {
	r.Get("/my-courses/{studentId}", h.myCourses)
	r.Get("/tuition/{studentId}", h.tuition)
	r.Get("/student/enrolled/{studentId}", h.studentCourses)
	r.Get("/student/available-courses/{studentId}", h.availableOffers)

	r.With(middleware.StaffOnly).Get("/lecturer-courses/{lecturerId}", h.lecturerOffers)

	r.Group(func(admin chi.Router) {
		admin.Use(middleware.AdminOnly)
		admin.Get("/admin/courses", h.listAllOffers)
		admin.Post("/add-course", h.createOffer)
		admin.Put("/admin/add-seats/{offerId}", h.addSeats)
	})
}

func (h *CatalogHandler) listOpenOffers(w http.ResponseWriter, r *http.Request) {
	offers, err := h.catalogService.ListOpenOffers(r.Context())
	if err != nil {
		respondErr(w, r, h.log, err)
		return
	}
	common.RespondOK(w, "", offers)
}

// studentID reads {studentId} and checks the caller may see that student.
func (h *CatalogHandler) studentID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := pathID(r, "studentId")
	if err == nil {
		err = selfOrStaff(r, id)
	}
	if err != nil {
		respondErr(w, r, h.log, err)
		return 0, false
	}
	return id, true
}

func (h *CatalogHandler) myCourses(w http.ResponseWriter, r *http.Request) {
	id, ok := h.studentID(w, r)
	if !ok {
		return
	}
	courses, err := h.catalogService.MyCourses(r.Context(), id)
	if err != nil {
		respondErr(w, r, h.log, err)
		return
	}
	common.RespondOK(w, "", courses)
}

func (h *CatalogHandler) tuition(w http.ResponseWriter, r *http.Request) {
	id, ok := h.studentID(w, r)
	if !ok {
		return
	}
	t, err := h.catalogService.Tuition(r.Context(), id)
	if err != nil {
		respondErr(w, r, h.log, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    t.Lines,
		"total":   t.Total,
	})
}

func (h *CatalogHandler) studentCourses(w http.ResponseWriter, r *http.Request) {
	id, ok := h.studentID(w, r)
	if !ok {
		return
	}
	courses, err := h.catalogService.StudentCourses(r.Context(), id)
	if err != nil {
		respondErr(w, r, h.log, err)
		return
	}
	common.RespondWithKey(w, http.StatusOK, "courses", courses)
}

func (h *CatalogHandler) availableOffers(w http.ResponseWriter, r *http.Request) {
	id, ok := h.studentID(w, r)
	if !ok {
		return
	}
	courses, err := h.catalogService.AvailableOffers(r.Context(), id)
	if err != nil {
		respondErr(w, r, h.log, err)
		return
	}
	common.RespondWithKey(w, http.StatusOK, "courses", courses)
}

func (h *CatalogHandler) lecturerOffers(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "lecturerId")
	if err != nil {
		respondErr(w, r, h.log, err)
		return
	}
	offers, err := h.catalogService.LecturerOffers(r.Context(), id)
	if err != nil {
		respondErr(w, r, h.log, err)
		return
	}
	common.RespondOK(w, "", offers)
}

func (h *CatalogHandler) listAllOffers(w http.ResponseWriter, r *http.Request) {
	offers, err := h.catalogService.ListAllOffers(r.Context())
	if err != nil {
		respondErr(w, r, h.log, err)
		return
	}
	common.RespondWithKey(w, http.StatusOK, "courses", offers)
}

func (h *CatalogHandler) createOffer(w http.ResponseWriter, r *http.Request) {
	var req service.CreateOfferRequest
	if err := common.DecodeJSON(r, &req); err != nil {
		respondErr(w, r, h.log, err)
		return
	}
	offer, err := h.catalogService.CreateOffer(r.Context(), req)
	if err != nil {
		respondErr(w, r, h.log, err)
		return
	}
	common.RespondWithJSON(w, http.StatusCreated, common.Envelope{Success: true, Message: "Course added", Data: offer})
}

func (h *CatalogHandler) addSeats(w http.ResponseWriter, r *http.Request) {
	offerID, err := pathID(r, "offerId")
	if err != nil {
		respondErr(w, r, h.log, err)
		return
	}
	var req service.AddSeatsRequest
	if err := common.DecodeJSON(r, &req); err != nil {
		respondErr(w, r, h.log, err)
		return
	}
	if err := h.catalogService.AddSeats(r.Context(), offerID, req); err != nil {
		respondErr(w, r, h.log, err)
		return
	}
	common.RespondOK(w, "Seats added", nil)
}
