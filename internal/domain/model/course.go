package model

type Course struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// CourseOffer is a scheduled run of a course. It owns its seat count.
type CourseOffer struct {
	ID             int64   `json:"id"`
	CourseID       int64   `json:"course_id"`
	LecturerID     int64   `json:"lecturer_id"`
	Schedule       string  `json:"schedule"`
	Price          float64 `json:"price"`
	MaxSeats       int     `json:"max_seats"`
	RemainingSeats int     `json:"remaining_seats"`
}

type OpenOffer struct {
	OfferID        int64   `json:"offer_id"`
	Name           string  `json:"name"`
	Lecturer       string  `json:"lecturer"`
	Schedule       string  `json:"schedule"`
	Price          float64 `json:"price"`
	RemainingSeats int     `json:"remaining_seats"`
}

type AdminOffer struct {
	OfferID        int64  `json:"offer_id"`
	CourseName     string `json:"course_name"`
	LecturerName   string `json:"lecturer_name"`
	Schedule       string `json:"schedule"`
	MaxSeats       int    `json:"max_seats"`
	RemainingSeats int    `json:"remaining_seats"`
}

type LecturerOffer struct {
	OfferID     int64  `json:"offer_id"`
	Name        string `json:"name"`
	Schedule    string `json:"schedule"`
	NumStudents int    `json:"num_students"`
}

type EnrolledCourse struct {
	OfferID  int64  `json:"offer_id"`
	Name     string `json:"name"`
	Lecturer string `json:"lecturer"`
	Schedule string `json:"schedule"`
}

// StudentCourse is an enrolled offer together with the student's grade in it.
type StudentCourse struct {
	OfferID      int64    `json:"offer_id"`
	CourseName   string   `json:"course_name"`
	Schedule     string   `json:"schedule"`
	LecturerName string   `json:"lecturer_name"`
	Grade        *float64 `json:"grade"`
}

type AvailableOffer struct {
	OfferID    int64  `json:"offer_id"`
	CourseName string `json:"course_name"`
	Schedule   string `json:"schedule"`
}

type TuitionLine struct {
	OfferID int64   `json:"offer_id"`
	Name    string  `json:"name"`
	Price   float64 `json:"price"`
}

// SeatDrift describes an offer whose remaining_seats disagrees with its enrollments.
type SeatDrift struct {
	OfferID        int64 `json:"offer_id"`
	MaxSeats       int   `json:"max_seats"`
	RemainingSeats int   `json:"remaining_seats"`
	Enrolled       int   `json:"enrolled"`
}

func (d SeatDrift) Expected() int { return d.MaxSeats - d.Enrolled }
