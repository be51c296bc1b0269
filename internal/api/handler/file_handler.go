package handler

import (
	"net/http"

	"coursehub/internal/api/middleware"
	"coursehub/internal/app/service"
	"coursehub/internal/common"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type FileHandler struct {
	fileService    *service.FileService
	maxUploadBytes int64
	log            *zap.Logger
}

func NewFileHandler(fileService *service.FileService, maxUploadBytes int64, log *zap.Logger) *FileHandler {
	return &FileHandler{fileService: fileService, maxUploadBytes: maxUploadBytes, log: log}
}

func (h *FileHandler) RegisterRoutes(r chi.Router) {
	r.Get("/course-files/{id}", h.list)

	r.Group(func(staff chi.Router) {
		staff.Use(middleware.StaffOnly)
		staff.Post("/course-files", h.upload)
		staff.Delete("/course-files/{id}", h.delete)
	})
}

func (h *FileHandler) upload(w http.ResponseWriter, r *http.Request) {
	cleanup, err := parseMultipart(w, r, h.maxUploadBytes)
	defer cleanup()
	if err != nil {
		respondErr(w, r, h.log, err)
		return
	}
	var req service.UploadFileRequest
	if req.OfferID, err = formInt(r, "offer_id"); err != nil {
		respondErr(w, r, h.log, err)
		return
	}
	if req.LecturerID, err = formInt(r, "lecturer_id"); err != nil {
		respondErr(w, r, h.log, err)
		return
	}
	if req.LecturerID == 0 {
		req.LecturerID = caller(r).UserID
	}
	upload, closeUpload, err := formFile(r)
	defer closeUpload()
	if err != nil {
		respondErr(w, r, h.log, err)
		return
	}

	f, err := h.fileService.Upload(r.Context(), req, upload)
	if err != nil {
		respondErr(w, r, h.log, err)
		return
	}
	common.RespondWithJSON(w, http.StatusCreated, common.Envelope{Success: true, Message: "File uploaded", Data: f})
}

func (h *FileHandler) list(w http.ResponseWriter, r *http.Request) {
	offerID, err := pathID(r, "id")
	if err != nil {
		respondErr(w, r, h.log, err)
		return
	}
	files, err := h.fileService.List(r.Context(), offerID)
	if err != nil {
		respondErr(w, r, h.log, err)
		return
	}
	common.RespondOK(w, "", files)
}

func (h *FileHandler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondErr(w, r, h.log, err)
		return
	}
	if err := h.fileService.Delete(r.Context(), id); err != nil {
		respondErr(w, r, h.log, err)
		return
	}
	common.RespondOK(w, "File deleted", nil)
}
