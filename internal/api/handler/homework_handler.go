package handler

import (
	"net/http"

	"coursehub/internal/api/middleware"
	"coursehub/internal/app/service"
	"coursehub/internal/common"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type HomeworkHandler struct {
	homeworkService *service.HomeworkService
	maxUploadBytes  int64
	log             *zap.Logger
}

func NewHomeworkHandler(homeworkService *service.HomeworkService, maxUploadBytes int64, log *zap.Logger) *HomeworkHandler {
	return &HomeworkHandler{homeworkService: homeworkService, maxUploadBytes: maxUploadBytes, log: log}
}

func (h *HomeworkHandler) RegisterRoutes(r chi.Router) {
	r.Get("/homework/{id}", h.listByOffer)
	r.Post("/submit-homework", h.submit)
	r.Get("/submission/{assignmentId}/{studentId}", h.latestSubmission)
	r.Get("/submission/{assignmentId}/{studentId}/history", h.submissionHistory)
	r.Delete("/submission/{submissionId}", h.deleteSubmission)

	r.Group(func(staff chi.Router) {
		staff.Use(middleware.StaffOnly)
		staff.Post("/homework", h.createAssignment)
		staff.Delete("/homework/{id}", h.deleteAssignment)
		staff.Post("/homework/close/{id}", h.close)
		staff.Get("/homework-submissions/{assignmentId}", h.submissions)
	})
}

func (h *HomeworkHandler) createAssignment(w http.ResponseWriter, r *http.Request) {
	cleanup, err := parseMultipart(w, r, h.maxUploadBytes)
	defer cleanup()
	if err != nil {
		respondErr(w, r, h.log, err)
		return
	}
	offerID, err := formInt(r, "course_offer_id")
	if err != nil {
		respondErr(w, r, h.log, err)
		return
	}
	upload, closeUpload, err := formFile(r)
	defer closeUpload()
	if err != nil {
		respondErr(w, r, h.log, err)
		return
	}

	req := service.CreateAssignmentRequest{
		CourseOfferID: offerID,
		Title:         r.FormValue("title"),
		Description:   r.FormValue("description"),
		DueDate:       r.FormValue("due_date"),
	}
	a, err := h.homeworkService.CreateAssignment(r.Context(), req, upload)
	if err != nil {
		respondErr(w, r, h.log, err)
		return
	}
	common.RespondWithJSON(w, http.StatusCreated, common.Envelope{Success: true, Message: "Homework added", Data: a})
}

func (h *HomeworkHandler) listByOffer(w http.ResponseWriter, r *http.Request) {
	offerID, err := pathID(r, "id")
	if err != nil {
		respondErr(w, r, h.log, err)
		return
	}
	list, err := h.homeworkService.ListByOffer(r.Context(), offerID)
	if err != nil {
		respondErr(w, r, h.log, err)
		return
	}
	common.RespondOK(w, "", list)
}

func (h *HomeworkHandler) deleteAssignment(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondErr(w, r, h.log, err)
		return
	}
	if err := h.homeworkService.DeleteAssignment(r.Context(), id); err != nil {
		respondErr(w, r, h.log, err)
		return
	}
	common.RespondOK(w, "Homework deleted", nil)
}

func (h *HomeworkHandler) close(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondErr(w, r, h.log, err)
		return
	}
	if err := h.homeworkService.Close(r.Context(), id); err != nil {
		respondErr(w, r, h.log, err)
		return
	}
	common.RespondOK(w, "Submissions closed", nil)
}

func (h *HomeworkHandler) submit(w http.ResponseWriter, r *http.Request) {
	cleanup, err := parseMultipart(w, r, h.maxUploadBytes)
	defer cleanup()
	if err != nil {
		respondErr(w, r, h.log, err)
		return
	}
	var req service.SubmitRequest
	if req.AssignmentID, err = formInt(r, "assignment_id"); err != nil {
		respondErr(w, r, h.log, err)
		return
	}
	if req.StudentID, err = formInt(r, "student_id"); err != nil {
		respondErr(w, r, h.log, err)
		return
	}
	if req.StudentID != 0 {
		if err := selfOnly(r, req.StudentID); err != nil {
			respondErr(w, r, h.log, err)
			return
		}
	}
	upload, closeUpload, err := formFile(r)
	defer closeUpload()
	if err != nil {
		respondErr(w, r, h.log, err)
		return
	}

	sub, err := h.homeworkService.Submit(r.Context(), req, upload)
	if err != nil {
		respondErr(w, r, h.log, err)
		return
	}
	common.RespondWithJSON(w, http.StatusCreated, common.Envelope{Success: true, Message: "Homework submitted", Data: sub})
}

// assignmentAndStudent reads both path ids and checks the caller may see the student.
func (h *HomeworkHandler) assignmentAndStudent(w http.ResponseWriter, r *http.Request) (int64, int64, bool) {
	assignmentID, err := pathID(r, "assignmentId")
	if err != nil {
		respondErr(w, r, h.log, err)
		return 0, 0, false
	}
	studentID, err := pathID(r, "studentId")
	if err == nil {
		err = selfOrStaff(r, studentID)
	}
	if err != nil {
		respondErr(w, r, h.log, err)
		return 0, 0, false
	}
	return assignmentID, studentID, true
}

func (h *HomeworkHandler) latestSubmission(w http.ResponseWriter, r *http.Request) {
	assignmentID, studentID, ok := h.assignmentAndStudent(w, r)
	if !ok {
		return
	}
	sub, err := h.homeworkService.LatestSubmission(r.Context(), assignmentID, studentID)
	if err != nil {
		respondErr(w, r, h.log, err)
		return
	}
	// a missing submission is {"data": null}, not an error
	common.RespondWithKey(w, http.StatusOK, "data", sub)
}

func (h *HomeworkHandler) submissionHistory(w http.ResponseWriter, r *http.Request) {
	assignmentID, studentID, ok := h.assignmentAndStudent(w, r)
	if !ok {
		return
	}
	history, err := h.homeworkService.SubmissionHistory(r.Context(), assignmentID, studentID)
	if err != nil {
		respondErr(w, r, h.log, err)
		return
	}
	common.RespondOK(w, "", history)
}

func (h *HomeworkHandler) deleteSubmission(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "submissionId")
	if err != nil {
		respondErr(w, r, h.log, err)
		return
	}
	if err := h.homeworkService.DeleteSubmission(r.Context(), actor(r), id); err != nil {
		respondErr(w, r, h.log, err)
		return
	}
	common.RespondOK(w, "Submission deleted", nil)
}

func (h *HomeworkHandler) submissions(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "assignmentId")
	if err != nil {
		respondErr(w, r, h.log, err)
		return
	}
	subs, err := h.homeworkService.Submissions(r.Context(), id)
	if err != nil {
		respondErr(w, r, h.log, err)
		return
	}
	common.RespondOK(w, "", subs)
}
