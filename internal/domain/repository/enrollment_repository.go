package repository

import (
	"context"
	"database/sql"
	"fmt"

	"coursehub/internal/common"
	"coursehub/internal/domain/model"
	"coursehub/internal/platform/database"
)

// EnrollmentRepository is the seat ledger: an enrollment row exists exactly
// when the offer's remaining_seats was decremented for it.
type EnrollmentRepository interface {
	// Enroll fails with ErrNotFound, ErrNoSeatsAvailable or ErrAlreadyEnrolled,
	// checked in that order. On failure remaining_seats is unchanged.
	Enroll(ctx context.Context, studentID, offerID int64) error
	// Cancel reports whether an enrollment was removed. Seats are only
	// returned when one was.
	Cancel(ctx context.Context, studentID, offerID int64) (bool, error)

	ListCourseStudents(ctx context.Context, offerID int64) ([]model.CourseStudent, error)
	ListRegistrations(ctx context.Context, offerID int64) ([]model.Registration, error)
}

type pgEnrollmentRepository struct {
	db *sql.DB
}

func NewPgEnrollmentRepository(db *sql.DB) EnrollmentRepository {
	return &pgEnrollmentRepository{db: db}
}

func (r *pgEnrollmentRepository) Enroll(ctx context.Context, studentID, offerID int64) error {
	return database.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		// the conditional decrement row-locks the offer, so concurrent enrolls
		// at the last seat serialize here and only one sees remaining_seats > 0
		res, err := tx.ExecContext(ctx,
			`UPDATE course_offers SET remaining_seats = remaining_seats - 1 WHERE id = $1 AND remaining_seats > 0`, offerID)
		if err != nil {
			return fmt.Errorf("pgEnrollmentRepository.Enroll decrement: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			ok, err := exists(ctx, tx, `SELECT 1 FROM course_offers WHERE id = $1`, offerID)
			if err != nil {
				return fmt.Errorf("pgEnrollmentRepository.Enroll lookup: %w", err)
			}
			if !ok {
				return fmt.Errorf("course offer %d: %w", offerID, common.ErrNotFound)
			}
			return common.ErrNoSeatsAvailable
		}

		res, err = tx.ExecContext(ctx,
			`INSERT INTO enrollments (student_id, course_offer_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`, studentID, offerID)
		if err != nil {
			if pgCode(err) == foreignKeyViolation {
				return fmt.Errorf("student %d: %w", studentID, common.ErrNotFound)
			}
			return fmt.Errorf("pgEnrollmentRepository.Enroll insert: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return common.ErrAlreadyEnrolled
		}
		return nil
	})
}

func (r *pgEnrollmentRepository) Cancel(ctx context.Context, studentID, offerID int64) (bool, error) {
	removed := false
	err := database.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`DELETE FROM enrollments WHERE student_id = $1 AND course_offer_id = $2`, studentID, offerID)
		if err != nil {
			return fmt.Errorf("pgEnrollmentRepository.Cancel delete: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return nil
		}
		removed = true
		_, err = tx.ExecContext(ctx,
			`UPDATE course_offers SET remaining_seats = remaining_seats + 1 WHERE id = $1 AND remaining_seats < max_seats`, offerID)
		if err != nil {
			return fmt.Errorf("pgEnrollmentRepository.Cancel increment: %w", err)
		}
		return nil
	})
	if err != nil {
		return false, err
	}
	return removed, nil
}

func (r *pgEnrollmentRepository) ListCourseStudents(ctx context.Context, offerID int64) ([]model.CourseStudent, error) {
	query := `SELECT u.id, u.full_name, u.email, g.grade
	          FROM enrollments e
	          JOIN users u ON u.id = e.student_id
	          LEFT JOIN grades g ON g.student_id = e.student_id AND g.course_offer_id = e.course_offer_id
	          WHERE e.course_offer_id = $1
	          ORDER BY u.full_name, u.id`
	rows, err := r.db.QueryContext(ctx, query, offerID)
	if err != nil {
		return nil, fmt.Errorf("pgEnrollmentRepository.ListCourseStudents: %w", err)
	}
	defer rows.Close()

	students := []model.CourseStudent{}
	for rows.Next() {
		var s model.CourseStudent
		var grade sql.NullFloat64
		if err := rows.Scan(&s.ID, &s.FullName, &s.Email, &grade); err != nil {
			return nil, fmt.Errorf("pgEnrollmentRepository.ListCourseStudents scan: %w", err)
		}
		s.Grade = nullFloat(grade)
		students = append(students, s)
	}
	return students, rows.Err()
}

func (r *pgEnrollmentRepository) ListRegistrations(ctx context.Context, offerID int64) ([]model.Registration, error) {
	query := `SELECT u.id, u.full_name, u.email, e.submitted_at, g.grade
	          FROM enrollments e
	          JOIN users u ON u.id = e.student_id
	          LEFT JOIN grades g ON g.student_id = e.student_id AND g.course_offer_id = e.course_offer_id
	          WHERE e.course_offer_id = $1
	          ORDER BY e.submitted_at, u.id`
	rows, err := r.db.QueryContext(ctx, query, offerID)
	if err != nil {
		return nil, fmt.Errorf("pgEnrollmentRepository.ListRegistrations: %w", err)
	}
	defer rows.Close()

	regs := []model.Registration{}
	for rows.Next() {
		var reg model.Registration
		var grade sql.NullFloat64
		if err := rows.Scan(&reg.StudentID, &reg.FullName, &reg.Email, &reg.EnrolledAt, &grade); err != nil {
			return nil, fmt.Errorf("pgEnrollmentRepository.ListRegistrations scan: %w", err)
		}
		reg.Grade = nullFloat(grade)
		regs = append(regs, reg)
	}
	return regs, rows.Err()
}
