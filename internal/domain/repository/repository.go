package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// Set bundles every repository the services need. Both the Postgres and the
// in-memory store provide one.
type Set struct {
	Users       UserRepository
	Courses     CourseRepository
	Enrollments EnrollmentRepository
	Grades      GradeRepository
	Homework    HomeworkRepository
	Files       FileRepository
	Messages    MessageRepository
}

func NewPgSet(db *sql.DB) Set {
	return Set{
		Users:       NewPgUserRepository(db),
		Courses:     NewPgCourseRepository(db),
		Enrollments: NewPgEnrollmentRepository(db),
		Grades:      NewPgGradeRepository(db),
		Homework:    NewPgHomeworkRepository(db),
		Files:       NewPgFileRepository(db),
		Messages:    NewPgMessageRepository(db),
	}
}

// queryer is satisfied by both *sql.DB and *sql.Tx.
type queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
)

func exists(ctx context.Context, q queryer, query string, args ...any) (bool, error) {
	var ok bool
	if err := q.QueryRowContext(ctx, "SELECT EXISTS ("+query+")", args...).Scan(&ok); err != nil {
		return false, err
	}
	return ok, nil
}
