package handler

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"strconv"

	"coursehub/internal/api/middleware"
	"coursehub/internal/app/service"
	"coursehub/internal/common"
	"coursehub/internal/platform/observability"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// respondErr writes err to the client. Server errors are logged and reported.
func respondErr(w http.ResponseWriter, r *http.Request, log *zap.Logger, err error) {
	if common.HTTPStatusFromError(err) >= http.StatusInternalServerError {
		log.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("request_id", chiMiddleware.GetReqID(r.Context())),
			zap.Error(err),
		)
		observability.CaptureErr(err)
	}
	common.RespondWithErr(w, err)
}

func pathID(r *http.Request, name string) (int64, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, common.NewValidationError(fmt.Sprintf("%s must be a positive integer", name),
			common.FieldError{Field: name, Error: "invalid id"})
	}
	return id, nil
}

func caller(r *http.Request) middleware.Identity {
	id, _ := middleware.IdentityFrom(r.Context())
	return id
}

func actor(r *http.Request) service.Actor {
	id := caller(r)
	return service.Actor{ID: id.UserID, Role: id.Role}
}

// selfOrStaff rejects callers acting on another student's data.
func selfOrStaff(r *http.Request, userID int64) error {
	if !caller(r).CanActFor(userID) {
		return fmt.Errorf("user %d: %w", userID, common.ErrForbidden)
	}
	return nil
}

// selfOnly rejects anyone but userID, staff included.
func selfOnly(r *http.Request, userID int64) error {
	if caller(r).UserID != userID {
		return fmt.Errorf("user %d: %w", userID, common.ErrForbidden)
	}
	return nil
}

// parseMultipart reads a multipart body limited to maxBytes. The returned
// cleanup removes any temporary files.
func parseMultipart(w http.ResponseWriter, r *http.Request, maxBytes int64) (func(), error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return func() {}, common.NewValidationError("upload exceeds the size limit",
				common.FieldError{Field: "file", Error: "too large"})
		}
		return func() {}, common.NewValidationError("invalid multipart form: " + err.Error())
	}
	return func() { _ = r.MultipartForm.RemoveAll() }, nil
}

// formFile returns the upload named "file", or nil when none was sent.
func formFile(r *http.Request) (*service.Upload, func(), error) {
	f, hdr, err := r.FormFile("file")
	if errors.Is(err, http.ErrMissingFile) {
		return nil, func() {}, nil
	}
	if err != nil {
		return nil, func() {}, common.NewValidationError("invalid file: " + err.Error())
	}
	return &service.Upload{Name: hdr.Filename, Body: f}, func() { closeFile(f) }, nil
}

func closeFile(f multipart.File) { _ = f.Close() }

// formInt parses an optional integer form field. Absent fields yield zero so
// request validation reports them.
func formInt(r *http.Request, name string) (int64, error) {
	raw := r.FormValue(name)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, common.NewValidationError(name+" must be an integer",
			common.FieldError{Field: name, Error: "not an integer"})
	}
	return v, nil
}
