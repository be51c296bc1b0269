package model

import "time"

type CourseFile struct {
	ID            int64     `json:"id"`
	CourseOfferID int64     `json:"course_offer_id"`
	LecturerID    int64     `json:"lecturer_id"`
	FilePath      string    `json:"file_path"`
	OriginalName  string    `json:"original_name"`
	UploadedAt    time.Time `json:"uploaded_at"`
}
