package repository

import (
	"context"
	"database/sql"
	"fmt"

	"coursehub/internal/common"
	"coursehub/internal/domain/model"
)

type GradeRepository interface {
	// Upsert keeps one grade per (student, offer); the latest write wins.
	Upsert(ctx context.Context, g model.Grade) error
	ListByStudent(ctx context.Context, studentID int64) ([]model.StudentGrade, error)
}

type pgGradeRepository struct {
	db *sql.DB
}

func NewPgGradeRepository(db *sql.DB) GradeRepository {
	return &pgGradeRepository{db: db}
}

func (r *pgGradeRepository) Upsert(ctx context.Context, g model.Grade) error {
	query := `INSERT INTO grades (student_id, course_offer_id, grade)
	          VALUES ($1, $2, $3)
	          ON CONFLICT (student_id, course_offer_id)
	          DO UPDATE SET grade = EXCLUDED.grade`
	if _, err := r.db.ExecContext(ctx, query, g.StudentID, g.CourseOfferID, g.Grade); err != nil {
		if pgCode(err) == foreignKeyViolation {
			return fmt.Errorf("student or course offer: %w", common.ErrNotFound)
		}
		return fmt.Errorf("pgGradeRepository.Upsert: %w", err)
	}
	return nil
}

func (r *pgGradeRepository) ListByStudent(ctx context.Context, studentID int64) ([]model.StudentGrade, error) {
	query := `SELECT co.id, c.name, u.full_name, g.grade
	          FROM enrollments e
	          JOIN course_offers co ON e.course_offer_id = co.id
	          JOIN courses c ON co.course_id = c.id
	          JOIN users u ON co.lecturer_id = u.id
	          LEFT JOIN grades g ON g.student_id = e.student_id AND g.course_offer_id = co.id
	          WHERE e.student_id = $1
	          ORDER BY co.id`
	rows, err := r.db.QueryContext(ctx, query, studentID)
	if err != nil {
		return nil, fmt.Errorf("pgGradeRepository.ListByStudent: %w", err)
	}
	defer rows.Close()

	grades := []model.StudentGrade{}
	for rows.Next() {
		var g model.StudentGrade
		var grade sql.NullFloat64
		if err := rows.Scan(&g.OfferID, &g.Name, &g.Lecturer, &grade); err != nil {
			return nil, fmt.Errorf("pgGradeRepository.ListByStudent scan: %w", err)
		}
		g.Grade = nullFloat(grade)
		grades = append(grades, g)
	}
	return grades, rows.Err()
}
