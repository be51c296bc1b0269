package repository

import (
	"context"
	"database/sql"
	"fmt"

	"coursehub/internal/common"
	"coursehub/internal/domain/model"
)

type MessageRepository interface {
	CreateTicket(ctx context.Context, m *model.StudentMessage) error
	ListTicketsByStudent(ctx context.Context, studentID int64) ([]model.StudentMessage, error)
	// ListAllTickets returns every ticket newest first with its sender.
	ListAllTickets(ctx context.Context) ([]model.TicketView, error)
	// RespondTicket sets admin_response once; a second answer is ErrAlreadyAnswered.
	RespondTicket(ctx context.Context, id int64, response string) error

	CreatePost(ctx context.Context, m *model.CourseMessage) error
	// ListPosts returns an offer's forum oldest first with author names.
	ListPosts(ctx context.Context, offerID int64) ([]model.CourseMessage, error)
}

type pgMessageRepository struct {
	db *sql.DB
}

func NewPgMessageRepository(db *sql.DB) MessageRepository {
	return &pgMessageRepository{db: db}
}

func (r *pgMessageRepository) CreateTicket(ctx context.Context, m *model.StudentMessage) error {
	query := `INSERT INTO student_messages (student_id, message) VALUES ($1, $2) RETURNING id, sent_at`
	if err := r.db.QueryRowContext(ctx, query, m.StudentID, m.Message).Scan(&m.ID, &m.SentAt); err != nil {
		if pgCode(err) == foreignKeyViolation {
			return fmt.Errorf("student %d: %w", m.StudentID, common.ErrNotFound)
		}
		return fmt.Errorf("pgMessageRepository.CreateTicket: %w", err)
	}
	return nil
}

func (r *pgMessageRepository) ListTicketsByStudent(ctx context.Context, studentID int64) ([]model.StudentMessage, error) {
	query := `SELECT id, student_id, message, sent_at, admin_response
	          FROM student_messages WHERE student_id = $1
	          ORDER BY sent_at DESC, id DESC`
	rows, err := r.db.QueryContext(ctx, query, studentID)
	if err != nil {
		return nil, fmt.Errorf("pgMessageRepository.ListTicketsByStudent: %w", err)
	}
	defer rows.Close()

	msgs := []model.StudentMessage{}
	for rows.Next() {
		var m model.StudentMessage
		var resp sql.NullString
		if err := rows.Scan(&m.ID, &m.StudentID, &m.Message, &m.SentAt, &resp); err != nil {
			return nil, fmt.Errorf("pgMessageRepository.ListTicketsByStudent scan: %w", err)
		}
		m.AdminResponse = nullString(resp)
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}

func (r *pgMessageRepository) ListAllTickets(ctx context.Context) ([]model.TicketView, error) {
	query := `SELECT m.id, m.student_id, m.message, m.sent_at, m.admin_response, u.full_name, u.email
	          FROM student_messages m
	          JOIN users u ON m.student_id = u.id
	          ORDER BY m.sent_at DESC, m.id DESC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("pgMessageRepository.ListAllTickets: %w", err)
	}
	defer rows.Close()

	tickets := []model.TicketView{}
	for rows.Next() {
		var t model.TicketView
		var resp sql.NullString
		if err := rows.Scan(&t.ID, &t.StudentID, &t.Message, &t.SentAt, &resp, &t.FullName, &t.Email); err != nil {
			return nil, fmt.Errorf("pgMessageRepository.ListAllTickets scan: %w", err)
		}
		t.AdminResponse = nullString(resp)
		tickets = append(tickets, t)
	}
	return tickets, rows.Err()
}

func (r *pgMessageRepository) RespondTicket(ctx context.Context, id int64, response string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE student_messages SET admin_response = $1 WHERE id = $2 AND admin_response IS NULL`, response, id)
	if err != nil {
		return fmt.Errorf("pgMessageRepository.RespondTicket: %w", err)
	}
	if n, _ := res.RowsAffected(); n > 0 {
		return nil
	}
	ok, err := exists(ctx, r.db, `SELECT 1 FROM student_messages WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("pgMessageRepository.RespondTicket lookup: %w", err)
	}
	if !ok {
		return fmt.Errorf("message %d: %w", id, common.ErrNotFound)
	}
	return common.ErrAlreadyAnswered
}

func (r *pgMessageRepository) CreatePost(ctx context.Context, m *model.CourseMessage) error {
	query := `INSERT INTO course_messages (offer_id, user_id, message, sender_role)
	          VALUES ($1, $2, $3, $4) RETURNING id, timestamp`
	if err := r.db.QueryRowContext(ctx, query, m.OfferID, m.UserID, m.Message, m.SenderRole).Scan(&m.ID, &m.Timestamp); err != nil {
		if pgCode(err) == foreignKeyViolation {
			return fmt.Errorf("course offer or user: %w", common.ErrNotFound)
		}
		return fmt.Errorf("pgMessageRepository.CreatePost: %w", err)
	}
	return nil
}

func (r *pgMessageRepository) ListPosts(ctx context.Context, offerID int64) ([]model.CourseMessage, error) {
	query := `SELECT cm.id, cm.offer_id, cm.user_id, cm.message, cm.timestamp, cm.sender_role, u.full_name
	          FROM course_messages cm
	          JOIN users u ON cm.user_id = u.id
	          WHERE cm.offer_id = $1
	          ORDER BY cm.timestamp, cm.id`
	rows, err := r.db.QueryContext(ctx, query, offerID)
	if err != nil {
		return nil, fmt.Errorf("pgMessageRepository.ListPosts: %w", err)
	}
	defer rows.Close()

	posts := []model.CourseMessage{}
	for rows.Next() {
		var m model.CourseMessage
		if err := rows.Scan(&m.ID, &m.OfferID, &m.UserID, &m.Message, &m.Timestamp, &m.SenderRole, &m.FullName); err != nil {
			return nil, fmt.Errorf("pgMessageRepository.ListPosts scan: %w", err)
		}
		posts = append(posts, m)
	}
	return posts, rows.Err()
}
