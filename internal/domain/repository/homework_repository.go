package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"coursehub/internal/common"
	"coursehub/internal/domain/model"
	"coursehub/internal/platform/database"
)

type HomeworkRepository interface {
	CreateAssignment(ctx context.Context, a *model.HomeworkAssignment) error
	FindAssignment(ctx context.Context, id int64) (*model.HomeworkAssignment, error)
	// ListByOffer orders by due date and fills SubmissionCount.
	ListByOffer(ctx context.Context, offerID int64) ([]model.HomeworkAssignment, error)
	// Close is idempotent; an unknown assignment is ErrNotFound.
	Close(ctx context.Context, id int64) error
	// DeleteAssignment removes the assignment and all of its submissions at
	// once and returns the storage keys they referenced. Deleting a missing
	// assignment succeeds with no keys.
	DeleteAssignment(ctx context.Context, id int64) ([]string, error)

	// CreateSubmission appends a submission unless the assignment is closed.
	CreateSubmission(ctx context.Context, s *model.HomeworkSubmission) error
	FindSubmission(ctx context.Context, id int64) (*model.HomeworkSubmission, error)
	LatestSubmission(ctx context.Context, assignmentID, studentID int64) (*model.HomeworkSubmission, error)
	SubmissionHistory(ctx context.Context, assignmentID, studentID int64) ([]model.HomeworkSubmission, error)
	ListSubmissions(ctx context.Context, assignmentID int64) ([]model.SubmissionView, error)
	GradeSubmission(ctx context.Context, id int64, grade float64) error
	// DeleteSubmission returns the removed row's storage key; ok is false
	// when nothing was deleted.
	DeleteSubmission(ctx context.Context, id int64) (key string, ok bool, err error)
}

type pgHomeworkRepository struct {
	db *sql.DB
}

func NewPgHomeworkRepository(db *sql.DB) HomeworkRepository {
	return &pgHomeworkRepository{db: db}
}

func (r *pgHomeworkRepository) CreateAssignment(ctx context.Context, a *model.HomeworkAssignment) error {
	query := `INSERT INTO homework_assignments (course_offer_id, title, description, due_date, file_path)
	          VALUES ($1, $2, $3, $4, $5) RETURNING id, is_closed`
	err := r.db.QueryRowContext(ctx, query, a.CourseOfferID, a.Title, a.Description, a.DueDate, a.FilePath).Scan(&a.ID, &a.IsClosed)
	if err != nil {
		if pgCode(err) == foreignKeyViolation {
			return fmt.Errorf("course offer %d: %w", a.CourseOfferID, common.ErrNotFound)
		}
		return fmt.Errorf("pgHomeworkRepository.CreateAssignment: %w", err)
	}
	return nil
}

func (r *pgHomeworkRepository) FindAssignment(ctx context.Context, id int64) (*model.HomeworkAssignment, error) {
	query := `SELECT a.id, a.course_offer_id, a.title, a.description, a.due_date, a.file_path, a.is_closed,
	                 (SELECT COUNT(*) FROM homework_submissions s WHERE s.assignment_id = a.id)
	          FROM homework_assignments a WHERE a.id = $1`
	a := &model.HomeworkAssignment{}
	var file sql.NullString
	err := r.db.QueryRowContext(ctx, query, id).Scan(&a.ID, &a.CourseOfferID, &a.Title, &a.Description, &a.DueDate, &file, &a.IsClosed, &a.SubmissionCount)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgHomeworkRepository.FindAssignment: %w", err)
	}
	a.FilePath = nullString(file)
	return a, nil
}

func (r *pgHomeworkRepository) ListByOffer(ctx context.Context, offerID int64) ([]model.HomeworkAssignment, error) {
	query := `SELECT a.id, a.course_offer_id, a.title, a.description, a.due_date, a.file_path, a.is_closed, COUNT(s.id)
	          FROM homework_assignments a
	          LEFT JOIN homework_submissions s ON s.assignment_id = a.id
	          WHERE a.course_offer_id = $1
	          GROUP BY a.id
	          ORDER BY a.due_date, a.id`
	rows, err := r.db.QueryContext(ctx, query, offerID)
	if err != nil {
		return nil, fmt.Errorf("pgHomeworkRepository.ListByOffer: %w", err)
	}
	defer rows.Close()

	assignments := []model.HomeworkAssignment{}
	for rows.Next() {
		var a model.HomeworkAssignment
		var file sql.NullString
		if err := rows.Scan(&a.ID, &a.CourseOfferID, &a.Title, &a.Description, &a.DueDate, &file, &a.IsClosed, &a.SubmissionCount); err != nil {
			return nil, fmt.Errorf("pgHomeworkRepository.ListByOffer scan: %w", err)
		}
		a.FilePath = nullString(file)
		assignments = append(assignments, a)
	}
	return assignments, rows.Err()
}

func (r *pgHomeworkRepository) Close(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `UPDATE homework_assignments SET is_closed = TRUE WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("pgHomeworkRepository.Close: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("homework assignment %d: %w", id, common.ErrNotFound)
	}
	return nil
}

func (r *pgHomeworkRepository) DeleteAssignment(ctx context.Context, id int64) ([]string, error) {
	var keys []string
	err := database.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		var attachment sql.NullString
		err := tx.QueryRowContext(ctx, `SELECT file_path FROM homework_assignments WHERE id = $1 FOR UPDATE`, id).Scan(&attachment)
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("pgHomeworkRepository.DeleteAssignment lock: %w", err)
		}

		rows, err := tx.QueryContext(ctx, `DELETE FROM homework_submissions WHERE assignment_id = $1 RETURNING file_path`, id)
		if err != nil {
			return fmt.Errorf("pgHomeworkRepository.DeleteAssignment submissions: %w", err)
		}
		defer rows.Close()
		for rows.Next() {
			var key string
			if err := rows.Scan(&key); err != nil {
				return fmt.Errorf("pgHomeworkRepository.DeleteAssignment scan: %w", err)
			}
			keys = append(keys, key)
		}
		if err := rows.Err(); err != nil {
			return fmt.Errorf("pgHomeworkRepository.DeleteAssignment rows: %w", err)
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM homework_assignments WHERE id = $1`, id); err != nil {
			return fmt.Errorf("pgHomeworkRepository.DeleteAssignment assignment: %w", err)
		}
		if attachment.Valid && attachment.String != "" {
			keys = append(keys, attachment.String)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return keys, nil
}

func (r *pgHomeworkRepository) CreateSubmission(ctx context.Context, s *model.HomeworkSubmission) error {
	// the closed check and the insert are one statement; FOR SHARE makes a
	// concurrent Close wait for this insert to commit
	query := `INSERT INTO homework_submissions (assignment_id, student_id, file_path, original_name)
	          SELECT a.id, $2, $3, $4
	          FROM homework_assignments a
	          WHERE a.id = $1 AND NOT a.is_closed
	          FOR SHARE
	          RETURNING id, submitted_at`
	err := r.db.QueryRowContext(ctx, query, s.AssignmentID, s.StudentID, s.FilePath, s.OriginalName).Scan(&s.ID, &s.SubmittedAt)
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		ok, lookupErr := exists(ctx, r.db, `SELECT 1 FROM homework_assignments WHERE id = $1`, s.AssignmentID)
		if lookupErr != nil {
			return fmt.Errorf("pgHomeworkRepository.CreateSubmission lookup: %w", lookupErr)
		}
		if !ok {
			return fmt.Errorf("homework assignment %d: %w", s.AssignmentID, common.ErrNotFound)
		}
		return common.ErrAssignmentClosed
	}
	if pgCode(err) == foreignKeyViolation {
		return fmt.Errorf("student %d: %w", s.StudentID, common.ErrNotFound)
	}
	return fmt.Errorf("pgHomeworkRepository.CreateSubmission: %w", err)
}

const submissionColumns = `id, assignment_id, student_id, file_path, original_name, submitted_at, grade`

func scanSubmission(scan func(dest ...any) error) (model.HomeworkSubmission, error) {
	var s model.HomeworkSubmission
	var grade sql.NullFloat64
	if err := scan(&s.ID, &s.AssignmentID, &s.StudentID, &s.FilePath, &s.OriginalName, &s.SubmittedAt, &grade); err != nil {
		return s, err
	}
	s.Grade = nullFloat(grade)
	return s, nil
}

func (r *pgHomeworkRepository) FindSubmission(ctx context.Context, id int64) (*model.HomeworkSubmission, error) {
	s, err := scanSubmission(r.db.QueryRowContext(ctx, `SELECT `+submissionColumns+` FROM homework_submissions WHERE id = $1`, id).Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgHomeworkRepository.FindSubmission: %w", err)
	}
	return &s, nil
}

func (r *pgHomeworkRepository) LatestSubmission(ctx context.Context, assignmentID, studentID int64) (*model.HomeworkSubmission, error) {
	query := `SELECT ` + submissionColumns + ` FROM homework_submissions
	          WHERE assignment_id = $1 AND student_id = $2
	          ORDER BY submitted_at DESC, id DESC
	          LIMIT 1`
	s, err := scanSubmission(r.db.QueryRowContext(ctx, query, assignmentID, studentID).Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgHomeworkRepository.LatestSubmission: %w", err)
	}
	return &s, nil
}

func (r *pgHomeworkRepository) SubmissionHistory(ctx context.Context, assignmentID, studentID int64) ([]model.HomeworkSubmission, error) {
	query := `SELECT ` + submissionColumns + ` FROM homework_submissions
	          WHERE assignment_id = $1 AND student_id = $2
	          ORDER BY submitted_at DESC, id DESC`
	rows, err := r.db.QueryContext(ctx, query, assignmentID, studentID)
	if err != nil {
		return nil, fmt.Errorf("pgHomeworkRepository.SubmissionHistory: %w", err)
	}
	defer rows.Close()

	history := []model.HomeworkSubmission{}
	for rows.Next() {
		s, err := scanSubmission(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("pgHomeworkRepository.SubmissionHistory scan: %w", err)
		}
		history = append(history, s)
	}
	return history, rows.Err()
}

func (r *pgHomeworkRepository) ListSubmissions(ctx context.Context, assignmentID int64) ([]model.SubmissionView, error) {
	query := `SELECT hs.id, u.id, u.full_name, u.email, hs.file_path, hs.original_name, hs.submitted_at, hs.grade
	          FROM homework_submissions hs
	          JOIN users u ON u.id = hs.student_id
	          WHERE hs.assignment_id = $1
	          ORDER BY hs.submitted_at DESC, hs.id DESC`
	rows, err := r.db.QueryContext(ctx, query, assignmentID)
	if err != nil {
		return nil, fmt.Errorf("pgHomeworkRepository.ListSubmissions: %w", err)
	}
	defer rows.Close()

	subs := []model.SubmissionView{}
	for rows.Next() {
		var v model.SubmissionView
		var grade sql.NullFloat64
		if err := rows.Scan(&v.SubmissionID, &v.StudentID, &v.FullName, &v.Email, &v.FilePath, &v.OriginalName, &v.SubmittedAt, &grade); err != nil {
			return nil, fmt.Errorf("pgHomeworkRepository.ListSubmissions scan: %w", err)
		}
		v.Grade = nullFloat(grade)
		subs = append(subs, v)
	}
	return subs, rows.Err()
}

func (r *pgHomeworkRepository) GradeSubmission(ctx context.Context, id int64, grade float64) error {
	res, err := r.db.ExecContext(ctx, `UPDATE homework_submissions SET grade = $1 WHERE id = $2`, grade, id)
	if err != nil {
		return fmt.Errorf("pgHomeworkRepository.GradeSubmission: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("submission %d: %w", id, common.ErrNotFound)
	}
	return nil
}

func (r *pgHomeworkRepository) DeleteSubmission(ctx context.Context, id int64) (string, bool, error) {
	var key string
	err := r.db.QueryRowContext(ctx, `DELETE FROM homework_submissions WHERE id = $1 RETURNING file_path`, id).Scan(&key)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("pgHomeworkRepository.DeleteSubmission: %w", err)
	}
	return key, true, nil
}

func nullString(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	s := v.String
	return &s
}
