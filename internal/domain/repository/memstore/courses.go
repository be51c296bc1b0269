package memstore

import (
	"context"
	"fmt"
	"math"

	"coursehub/internal/common"
	"coursehub/internal/domain/model"
)

// maxSeatCount matches the INTEGER seat columns in Postgres.
const maxSeatCount = math.MaxInt32

type courseRepo struct{ d *DB }

func (r courseRepo) CreateOffer(ctx context.Context, courseName string, o *model.CourseOffer) error {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	if _, ok := r.d.users[o.LecturerID]; !ok {
		return fmt.Errorf("lecturer %d: %w", o.LecturerID, common.ErrNotFound)
	}
	course := &model.Course{ID: r.d.nextID(), Name: courseName}
	r.d.courses[course.ID] = course

	o.ID = r.d.nextID()
	o.CourseID = course.ID
	o.RemainingSeats = o.MaxSeats
	stored := *o
	r.d.offers[o.ID] = &stored
	return nil
}

func (r courseRepo) FindOffer(ctx context.Context, id int64) (*model.CourseOffer, error) {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	o, ok := r.d.offers[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	cp := *o
	return &cp, nil
}

func (r courseRepo) AddSeats(ctx context.Context, offerID int64, delta int) error {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	o, ok := r.d.offers[offerID]
	if !ok {
		return fmt.Errorf("course offer %d: %w", offerID, common.ErrNotFound)
	}
	if delta > maxSeatCount-o.MaxSeats {
		return common.ErrSeatsOutOfRange
	}
	o.MaxSeats += delta
	o.RemainingSeats += delta
	return nil
}

func (r courseRepo) ListOpenOffers(ctx context.Context) ([]model.OpenOffer, error) {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	out := []model.OpenOffer{}
	for _, o := range sortedOffers(r.d) {
		if o.RemainingSeats <= 0 {
			continue
		}
		out = append(out, model.OpenOffer{
			OfferID: o.ID, Name: r.d.courseName(o), Lecturer: r.d.userName(o.LecturerID),
			Schedule: o.Schedule, Price: o.Price, RemainingSeats: o.RemainingSeats,
		})
	}
	return out, nil
}

func (r courseRepo) ListAllOffers(ctx context.Context) ([]model.AdminOffer, error) {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	out := []model.AdminOffer{}
	for _, o := range sortedOffers(r.d) {
		out = append(out, model.AdminOffer{
			OfferID: o.ID, CourseName: r.d.courseName(o), LecturerName: r.d.userName(o.LecturerID),
			Schedule: o.Schedule, MaxSeats: o.MaxSeats, RemainingSeats: o.RemainingSeats,
		})
	}
	return out, nil
}

func (r courseRepo) ListByLecturer(ctx context.Context, lecturerID int64) ([]model.LecturerOffer, error) {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	out := []model.LecturerOffer{}
	for _, o := range sortedOffers(r.d) {
		if o.LecturerID != lecturerID {
			continue
		}
		out = append(out, model.LecturerOffer{
			OfferID: o.ID, Name: r.d.courseName(o), Schedule: o.Schedule, NumStudents: r.d.enrolledCount(o.ID),
		})
	}
	return out, nil
}

// enrolledOffers must be called with mu held.
func (r courseRepo) enrolledOffers(studentID int64) []*model.CourseOffer {
	out := []*model.CourseOffer{}
	for _, o := range sortedOffers(r.d) {
		if _, ok := r.d.enrollments[pair{studentID, o.ID}]; ok {
			out = append(out, o)
		}
	}
	return out
}

func (r courseRepo) ListEnrolledByStudent(ctx context.Context, studentID int64) ([]model.EnrolledCourse, error) {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	out := []model.EnrolledCourse{}
	for _, o := range r.enrolledOffers(studentID) {
		out = append(out, model.EnrolledCourse{
			OfferID: o.ID, Name: r.d.courseName(o), Lecturer: r.d.userName(o.LecturerID), Schedule: o.Schedule,
		})
	}
	return out, nil
}

func (r courseRepo) ListStudentCourses(ctx context.Context, studentID int64) ([]model.StudentCourse, error) {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	out := []model.StudentCourse{}
	for _, o := range r.enrolledOffers(studentID) {
		out = append(out, model.StudentCourse{
			OfferID: o.ID, CourseName: r.d.courseName(o), Schedule: o.Schedule,
			LecturerName: r.d.userName(o.LecturerID), Grade: r.d.grade(studentID, o.ID),
		})
	}
	return out, nil
}

func (r courseRepo) ListAvailableForStudent(ctx context.Context, studentID int64) ([]model.AvailableOffer, error) {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	out := []model.AvailableOffer{}
	for _, o := range sortedOffers(r.d) {
		if _, ok := r.d.enrollments[pair{studentID, o.ID}]; ok {
			continue
		}
		out = append(out, model.AvailableOffer{OfferID: o.ID, CourseName: r.d.courseName(o), Schedule: o.Schedule})
	}
	return out, nil
}

func (r courseRepo) Tuition(ctx context.Context, studentID int64) ([]model.TuitionLine, error) {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	out := []model.TuitionLine{}
	for _, o := range r.enrolledOffers(studentID) {
		out = append(out, model.TuitionLine{OfferID: o.ID, Name: r.d.courseName(o), Price: o.Price})
	}
	return out, nil
}

func (r courseRepo) SeatDrift(ctx context.Context) ([]model.SeatDrift, error) {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	out := []model.SeatDrift{}
	for _, o := range sortedOffers(r.d) {
		d := model.SeatDrift{OfferID: o.ID, MaxSeats: o.MaxSeats, RemainingSeats: o.RemainingSeats, Enrolled: r.d.enrolledCount(o.ID)}
		if d.RemainingSeats < 0 || d.RemainingSeats > d.MaxSeats || d.RemainingSeats != d.Expected() {
			out = append(out, d)
		}
	}
	return out, nil
}

// CorruptSeats overwrites an offer's remaining seats without touching its
// enrollments. It exists so the seat audit can be exercised.
func (d *DB) CorruptSeats(offerID int64, remaining int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if o, ok := d.offers[offerID]; ok {
		o.RemainingSeats = remaining
	}
}
