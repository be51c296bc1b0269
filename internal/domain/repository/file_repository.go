package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"coursehub/internal/common"
	"coursehub/internal/domain/model"
)

type FileRepository interface {
	Create(ctx context.Context, f *model.CourseFile) error
	ListByOffer(ctx context.Context, offerID int64) ([]model.CourseFile, error)
	// Delete removes the row and returns it so its stored object can be discarded.
	Delete(ctx context.Context, id int64) (*model.CourseFile, error)
}

type pgFileRepository struct {
	db *sql.DB
}

func NewPgFileRepository(db *sql.DB) FileRepository {
	return &pgFileRepository{db: db}
}

func (r *pgFileRepository) Create(ctx context.Context, f *model.CourseFile) error {
	query := `INSERT INTO course_files (course_offer_id, lecturer_id, file_path, original_name)
	          VALUES ($1, $2, $3, $4) RETURNING id, uploaded_at`
	err := r.db.QueryRowContext(ctx, query, f.CourseOfferID, f.LecturerID, f.FilePath, f.OriginalName).Scan(&f.ID, &f.UploadedAt)
	if err != nil {
		if pgCode(err) == foreignKeyViolation {
			return fmt.Errorf("course offer or lecturer: %w", common.ErrNotFound)
		}
		return fmt.Errorf("pgFileRepository.Create: %w", err)
	}
	return nil
}

func (r *pgFileRepository) ListByOffer(ctx context.Context, offerID int64) ([]model.CourseFile, error) {
	query := `SELECT id, course_offer_id, lecturer_id, file_path, original_name, uploaded_at
	          FROM course_files WHERE course_offer_id = $1
	          ORDER BY uploaded_at, id`
	rows, err := r.db.QueryContext(ctx, query, offerID)
	if err != nil {
		return nil, fmt.Errorf("pgFileRepository.ListByOffer: %w", err)
	}
	defer rows.Close()

	files := []model.CourseFile{}
	for rows.Next() {
		var f model.CourseFile
		if err := rows.Scan(&f.ID, &f.CourseOfferID, &f.LecturerID, &f.FilePath, &f.OriginalName, &f.UploadedAt); err != nil {
			return nil, fmt.Errorf("pgFileRepository.ListByOffer scan: %w", err)
		}
		files = append(files, f)
	}
	return files, rows.Err()
}

func (r *pgFileRepository) Delete(ctx context.Context, id int64) (*model.CourseFile, error) {
	query := `DELETE FROM course_files WHERE id = $1
	          RETURNING id, course_offer_id, lecturer_id, file_path, original_name, uploaded_at`
	f := &model.CourseFile{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(&f.ID, &f.CourseOfferID, &f.LecturerID, &f.FilePath, &f.OriginalName, &f.UploadedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("course file %d: %w", id, common.ErrNotFound)
		}
		return nil, fmt.Errorf("pgFileRepository.Delete: %w", err)
	}
	return f, nil
}
