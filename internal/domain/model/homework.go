package model

import "time"

type HomeworkAssignment struct {
	ID              int64     `json:"id"`
	CourseOfferID   int64     `json:"course_offer_id"`
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	DueDate         time.Time `json:"due_date"`
	FilePath        *string   `json:"file_path"`
	IsClosed        bool      `json:"is_closed"`
	SubmissionCount int       `json:"submission_count"`
}

// HomeworkSubmission rows are append-only per student; the newest one is current.
type HomeworkSubmission struct {
	ID           int64     `json:"id"`
	AssignmentID int64     `json:"assignment_id"`
	StudentID    int64     `json:"student_id"`
	FilePath     string    `json:"file_path"`
	OriginalName string    `json:"original_name"`
	SubmittedAt  time.Time `json:"submitted_at"`
	Grade        *float64  `json:"grade"`
}

// SubmissionView is a submission as listed to the lecturer, with its author.
type SubmissionView struct {
	SubmissionID int64     `json:"submission_id"`
	StudentID    int64     `json:"student_id"`
	FullName     string    `json:"full_name"`
	Email        string    `json:"email"`
	FilePath     string    `json:"file_path"`
	OriginalName string    `json:"original_name"`
	SubmittedAt  time.Time `json:"submitted_at"`
	Grade        *float64  `json:"grade"`
}
