package model

import "time"

type Enrollment struct {
	StudentID     int64     `json:"student_id"`
	CourseOfferID int64     `json:"course_offer_id"`
	SubmittedAt   time.Time `json:"submitted_at"`
}

type Grade struct {
	StudentID     int64   `json:"student_id"`
	CourseOfferID int64   `json:"course_offer_id"`
	Grade         float64 `json:"grade"`
}

// StudentGrade is one row of a student's grade sheet; Grade is nil until set.
type StudentGrade struct {
	OfferID  int64    `json:"offer_id"`
	Name     string   `json:"name"`
	Lecturer string   `json:"lecturer"`
	Grade    *float64 `json:"grade"`
}

type CourseStudent struct {
	ID       int64    `json:"id"`
	FullName string   `json:"full_name"`
	Email    string   `json:"email"`
	Grade    *float64 `json:"grade"`
}

type Registration struct {
	StudentID  int64     `json:"student_id"`
	FullName   string    `json:"full_name"`
	Email      string    `json:"email"`
	EnrolledAt time.Time `json:"enrolled_at"`
	Grade      *float64  `json:"grade"`
}
