package model

import "time"

// StudentMessage is a support ticket from a student to the administrators.
type StudentMessage struct {
	ID            int64     `json:"id"`
	StudentID     int64     `json:"student_id"`
	Message       string    `json:"message"`
	SentAt        time.Time `json:"sent_at"`
	AdminResponse *string   `json:"admin_response"`
}

type TicketView struct {
	StudentMessage
	FullName string `json:"full_name"`
	Email    string `json:"email"`
}

// CourseMessage is a post in an offer's forum.
type CourseMessage struct {
	ID         int64     `json:"id"`
	OfferID    int64     `json:"offer_id"`
	UserID     int64     `json:"user_id"`
	Message    string    `json:"message"`
	Timestamp  time.Time `json:"timestamp"`
	SenderRole string    `json:"sender_role"`
	FullName   string    `json:"full_name,omitempty"`
}
