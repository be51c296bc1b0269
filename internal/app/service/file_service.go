package service

import (
	"context"

	"coursehub/internal/common"
	"coursehub/internal/domain/model"
	"coursehub/internal/domain/repository"
	"coursehub/internal/platform/storage"

	"go.uber.org/zap"
)

type FileService struct {
	fileRepo repository.FileRepository
	store    FileStore
	janitor  FileJanitor
	log      *zap.Logger
}

func NewFileService(fileRepo repository.FileRepository, store FileStore, janitor FileJanitor, log *zap.Logger) *FileService {
	return &FileService{fileRepo: fileRepo, store: store, janitor: janitor, log: log}
}

type UploadFileRequest struct {
	OfferID    int64 `json:"offer_id" validate:"required,gt=0"`
	LecturerID int64 `json:"lecturer_id" validate:"required,gt=0"`
}

// Upload stores a course file. The stored object is removed again if the row
// cannot be written.
func (s *FileService) Upload(ctx context.Context, req UploadFileRequest, upload *Upload) (*model.CourseFile, error) {
	if err := common.Validate(req); err != nil {
		return nil, err
	}
	if err := requireUpload(upload); err != nil {
		return nil, err
	}

	key := storage.NewKey(storage.AreaCourseFiles, upload.Name)
	if err := s.store.Put(ctx, key, upload.Body); err != nil {
		return nil, common.Errorf("storing upload: %w", err)
	}
	f := &model.CourseFile{
		CourseOfferID: req.OfferID,
		LecturerID:    req.LecturerID,
		FilePath:      key,
		OriginalName:  upload.Name,
	}
	if err := s.fileRepo.Create(ctx, f); err != nil {
		if delErr := s.store.Delete(ctx, key); delErr != nil {
			s.log.Warn("removing orphaned upload", zap.String("key", key), zap.Error(delErr))
		}
		return nil, err
	}
	return f, nil
}

func (s *FileService) List(ctx context.Context, offerID int64) ([]model.CourseFile, error) {
	return s.fileRepo.ListByOffer(ctx, offerID)
}

func (s *FileService) Delete(ctx context.Context, fileID int64) error {
	f, err := s.fileRepo.Delete(ctx, fileID)
	if err != nil {
		return err
	}
	if err := s.janitor.Discard(ctx, f.FilePath); err != nil {
		s.log.Error("scheduling upload cleanup", zap.String("key", f.FilePath), zap.Error(err))
	}
	return nil
}
