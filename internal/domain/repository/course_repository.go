package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"coursehub/internal/common"
	"coursehub/internal/domain/model"
	"coursehub/internal/platform/database"
)

type CourseRepository interface {
	// CreateOffer inserts the course and its first offer together; remaining
	// seats start at max seats.
	CreateOffer(ctx context.Context, courseName string, offer *model.CourseOffer) error
	FindOffer(ctx context.Context, id int64) (*model.CourseOffer, error)
	AddSeats(ctx context.Context, offerID int64, delta int) error

	ListOpenOffers(ctx context.Context) ([]model.OpenOffer, error)
	ListAllOffers(ctx context.Context) ([]model.AdminOffer, error)
	ListByLecturer(ctx context.Context, lecturerID int64) ([]model.LecturerOffer, error)
	ListEnrolledByStudent(ctx context.Context, studentID int64) ([]model.EnrolledCourse, error)
	ListStudentCourses(ctx context.Context, studentID int64) ([]model.StudentCourse, error)
	ListAvailableForStudent(ctx context.Context, studentID int64) ([]model.AvailableOffer, error)
	Tuition(ctx context.Context, studentID int64) ([]model.TuitionLine, error)

	// SeatDrift lists offers whose remaining_seats is out of bounds or
	// disagrees with max_seats minus their enrollment count.
	SeatDrift(ctx context.Context) ([]model.SeatDrift, error)
}

type pgCourseRepository struct {
	db *sql.DB
}

func NewPgCourseRepository(db *sql.DB) CourseRepository {
	return &pgCourseRepository{db: db}
}

func (r *pgCourseRepository) CreateOffer(ctx context.Context, courseName string, o *model.CourseOffer) error {
	return database.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		if err := tx.QueryRowContext(ctx, `INSERT INTO courses (name) VALUES ($1) RETURNING id`, courseName).Scan(&o.CourseID); err != nil {
			return fmt.Errorf("pgCourseRepository.CreateOffer course: %w", err)
		}
		query := `INSERT INTO course_offers (course_id, lecturer_id, schedule, price, max_seats, remaining_seats)
		          VALUES ($1, $2, $3, $4, $5, $5) RETURNING id, remaining_seats`
		err := tx.QueryRowContext(ctx, query, o.CourseID, o.LecturerID, o.Schedule, o.Price, o.MaxSeats).Scan(&o.ID, &o.RemainingSeats)
		if err != nil {
			if pgCode(err) == foreignKeyViolation {
				return fmt.Errorf("lecturer %d: %w", o.LecturerID, common.ErrNotFound)
			}
			return fmt.Errorf("pgCourseRepository.CreateOffer offer: %w", err)
		}
		return nil
	})
}

func (r *pgCourseRepository) FindOffer(ctx context.Context, id int64) (*model.CourseOffer, error) {
	query := `SELECT id, course_id, lecturer_id, schedule, price, max_seats, remaining_seats
	          FROM course_offers WHERE id = $1`
	o := &model.CourseOffer{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(&o.ID, &o.CourseID, &o.LecturerID, &o.Schedule, &o.Price, &o.MaxSeats, &o.RemainingSeats)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgCourseRepository.FindOffer: %w", err)
	}
	return o, nil
}

func (r *pgCourseRepository) AddSeats(ctx context.Context, offerID int64, delta int) error {
	query := `UPDATE course_offers
	          SET max_seats = max_seats + $1, remaining_seats = remaining_seats + $1
	          WHERE id = $2`
	res, err := r.db.ExecContext(ctx, query, delta, offerID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "22003" {
			return common.ErrSeatsOutOfRange
		}
		return fmt.Errorf("pgCourseRepository.AddSeats: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("course offer %d: %w", offerID, common.ErrNotFound)
	}
	return nil
}

func (r *pgCourseRepository) ListOpenOffers(ctx context.Context) ([]model.OpenOffer, error) {
	query := `SELECT co.id, c.name, u.full_name, co.schedule, co.price, co.remaining_seats
	          FROM course_offers co
	          JOIN courses c ON co.course_id = c.id
	          JOIN users u ON co.lecturer_id = u.id
	          WHERE co.remaining_seats > 0
	          ORDER BY co.id`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("pgCourseRepository.ListOpenOffers: %w", err)
	}
	defer rows.Close()

	offers := []model.OpenOffer{}
	for rows.Next() {
		var o model.OpenOffer
		if err := rows.Scan(&o.OfferID, &o.Name, &o.Lecturer, &o.Schedule, &o.Price, &o.RemainingSeats); err != nil {
			return nil, fmt.Errorf("pgCourseRepository.ListOpenOffers scan: %w", err)
		}
		offers = append(offers, o)
	}
	return offers, rows.Err()
}

func (r *pgCourseRepository) ListAllOffers(ctx context.Context) ([]model.AdminOffer, error) {
	query := `SELECT co.id, c.name, u.full_name, co.schedule, co.max_seats, co.remaining_seats
	          FROM course_offers co
	          JOIN courses c ON co.course_id = c.id
	          JOIN users u ON co.lecturer_id = u.id
	          ORDER BY co.id`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("pgCourseRepository.ListAllOffers: %w", err)
	}
	defer rows.Close()

	offers := []model.AdminOffer{}
	for rows.Next() {
		var o model.AdminOffer
		if err := rows.Scan(&o.OfferID, &o.CourseName, &o.LecturerName, &o.Schedule, &o.MaxSeats, &o.RemainingSeats); err != nil {
			return nil, fmt.Errorf("pgCourseRepository.ListAllOffers scan: %w", err)
		}
		offers = append(offers, o)
	}
	return offers, rows.Err()
}

func (r *pgCourseRepository) ListByLecturer(ctx context.Context, lecturerID int64) ([]model.LecturerOffer, error) {
	query := `SELECT co.id, c.name, co.schedule,
	                 (SELECT COUNT(*) FROM enrollments e WHERE e.course_offer_id = co.id)
	          FROM course_offers co
	          JOIN courses c ON co.course_id = c.id
	          WHERE co.lecturer_id = $1
	          ORDER BY co.id`
	rows, err := r.db.QueryContext(ctx, query, lecturerID)
	if err != nil {
		return nil, fmt.Errorf("pgCourseRepository.ListByLecturer: %w", err)
	}
	defer rows.Close()

	offers := []model.LecturerOffer{}
	for rows.Next() {
		var o model.LecturerOffer
		if err := rows.Scan(&o.OfferID, &o.Name, &o.Schedule, &o.NumStudents); err != nil {
			return nil, fmt.Errorf("pgCourseRepository.ListByLecturer scan: %w", err)
		}
		offers = append(offers, o)
	}
	return offers, rows.Err()
}

func (r *pgCourseRepository) ListEnrolledByStudent(ctx context.Context, studentID int64) ([]model.EnrolledCourse, error) {
	query := `SELECT co.id, c.name, u.full_name, co.schedule
	          FROM enrollments e
	          JOIN course_offers co ON e.course_offer_id = co.id
	          JOIN courses c ON co.course_id = c.id
	          JOIN users u ON co.lecturer_id = u.id
	          WHERE e.student_id = $1
	          ORDER BY co.id`
	rows, err := r.db.QueryContext(ctx, query, studentID)
	if err != nil {
		return nil, fmt.Errorf("pgCourseRepository.ListEnrolledByStudent: %w", err)
	}
	defer rows.Close()

	courses := []model.EnrolledCourse{}
	for rows.Next() {
		var c model.EnrolledCourse
		if err := rows.Scan(&c.OfferID, &c.Name, &c.Lecturer, &c.Schedule); err != nil {
			return nil, fmt.Errorf("pgCourseRepository.ListEnrolledByStudent scan: %w", err)
		}
		courses = append(courses, c)
	}
	return courses, rows.Err()
}

func (r *pgCourseRepository) ListStudentCourses(ctx context.Context, studentID int64) ([]model.StudentCourse, error) {
	query := `SELECT co.id, c.name, co.schedule, u.full_name, g.grade
	          FROM enrollments e
	          JOIN course_offers co ON e.course_offer_id = co.id
	          JOIN courses c ON co.course_id = c.id
	          JOIN users u ON co.lecturer_id = u.id
	          LEFT JOIN grades g ON g.student_id = e.student_id AND g.course_offer_id = co.id
	          WHERE e.student_id = $1
	          ORDER BY co.id`
	rows, err := r.db.QueryContext(ctx, query, studentID)
	if err != nil {
		return nil, fmt.Errorf("pgCourseRepository.ListStudentCourses: %w", err)
	}
	defer rows.Close()

	courses := []model.StudentCourse{}
	for rows.Next() {
		var c model.StudentCourse
		var grade sql.NullFloat64
		if err := rows.Scan(&c.OfferID, &c.CourseName, &c.Schedule, &c.LecturerName, &grade); err != nil {
			return nil, fmt.Errorf("pgCourseRepository.ListStudentCourses scan: %w", err)
		}
		c.Grade = nullFloat(grade)
		courses = append(courses, c)
	}
	return courses, rows.Err()
}

func (r *pgCourseRepository) ListAvailableForStudent(ctx context.Context, studentID int64) ([]model.AvailableOffer, error) {
	query := `SELECT co.id, c.name, co.schedule
	          FROM course_offers co
	          JOIN courses c ON co.course_id = c.id
	          WHERE NOT EXISTS (
	              SELECT 1 FROM enrollments e WHERE e.course_offer_id = co.id AND e.student_id = $1
	          )
	          ORDER BY co.id`
	rows, err := r.db.QueryContext(ctx, query, studentID)
	if err != nil {
		return nil, fmt.Errorf("pgCourseRepository.ListAvailableForStudent: %w", err)
	}
	defer rows.Close()

	offers := []model.AvailableOffer{}
	for rows.Next() {
		var o model.AvailableOffer
		if err := rows.Scan(&o.OfferID, &o.CourseName, &o.Schedule); err != nil {
			return nil, fmt.Errorf("pgCourseRepository.ListAvailableForStudent scan: %w", err)
		}
		offers = append(offers, o)
	}
	return offers, rows.Err()
}

func (r *pgCourseRepository) Tuition(ctx context.Context, studentID int64) ([]model.TuitionLine, error) {
	query := `SELECT co.id, c.name, co.price
	          FROM enrollments e
	          JOIN course_offers co ON e.course_offer_id = co.id
	          JOIN courses c ON co.course_id = c.id
	          WHERE e.student_id = $1
	          ORDER BY co.id`
	rows, err := r.db.QueryContext(ctx, query, studentID)
	if err != nil {
		return nil, fmt.Errorf("pgCourseRepository.Tuition: %w", err)
	}
	defer rows.Close()

	lines := []model.TuitionLine{}
	for rows.Next() {
		var l model.TuitionLine
		if err := rows.Scan(&l.OfferID, &l.Name, &l.Price); err != nil {
			return nil, fmt.Errorf("pgCourseRepository.Tuition scan: %w", err)
		}
		lines = append(lines, l)
	}
	return lines, rows.Err()
}

func (r *pgCourseRepository) SeatDrift(ctx context.Context) ([]model.SeatDrift, error) {
	query := `SELECT co.id, co.max_seats, co.remaining_seats, COUNT(e.student_id)
	          FROM course_offers co
	          LEFT JOIN enrollments e ON e.course_offer_id = co.id
	          GROUP BY co.id
	          HAVING co.remaining_seats < 0
	              OR co.remaining_seats > co.max_seats
	              OR co.remaining_seats <> co.max_seats - COUNT(e.student_id)
	          ORDER BY co.id`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("pgCourseRepository.SeatDrift: %w", err)
	}
	defer rows.Close()

	drift := []model.SeatDrift{}
	for rows.Next() {
		var d model.SeatDrift
		if err := rows.Scan(&d.OfferID, &d.MaxSeats, &d.RemainingSeats, &d.Enrolled); err != nil {
			return nil, fmt.Errorf("pgCourseRepository.SeatDrift scan: %w", err)
		}
		drift = append(drift, d)
	}
	return drift, rows.Err()
}

func nullFloat(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}
