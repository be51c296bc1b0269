// Package memstore keeps every table in process memory behind one mutex. Each
// repository method holds the lock for its whole body, which gives it the
// same all-or-nothing behaviour as the Postgres transactions.
package memstore

import (
	"sort"
	"sync"
	"time"

	"coursehub/internal/domain/model"
	"coursehub/internal/domain/repository"
)

type pair struct{ student, offer int64 }

type DB struct {
	mu  sync.Mutex
	now func() time.Time

	users       map[int64]*model.User
	courses     map[int64]*model.Course
	offers      map[int64]*model.CourseOffer
	enrollments map[pair]time.Time
	grades      map[pair]float64
	files       map[int64]*model.CourseFile
	assignments map[int64]*model.HomeworkAssignment
	submissions map[int64]*model.HomeworkSubmission
	tickets     map[int64]*model.StudentMessage
	posts       map[int64]*model.CourseMessage

	seq int64
}

func New() *DB {
	return &DB{
		now:         time.Now,
		users:       map[int64]*model.User{},
		courses:     map[int64]*model.Course{},
		offers:      map[int64]*model.CourseOffer{},
		enrollments: map[pair]time.Time{},
		grades:      map[pair]float64{},
		files:       map[int64]*model.CourseFile{},
		assignments: map[int64]*model.HomeworkAssignment{},
		submissions: map[int64]*model.HomeworkSubmission{},
		tickets:     map[int64]*model.StudentMessage{},
		posts:       map[int64]*model.CourseMessage{},
	}
}

// Set returns the repositories backed by this store.
func (d *DB) Set() repository.Set {
	return repository.Set{
		Users:       userRepo{d},
		Courses:     courseRepo{d},
		Enrollments: enrollmentRepo{d},
		Grades:      gradeRepo{d},
		Homework:    homeworkRepo{d},
		Files:       fileRepo{d},
		Messages:    messageRepo{d},
	}
}

// SetClock replaces the time source; tests use it to order rows deterministically.
func (d *DB) SetClock(now func() time.Time) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.now = now
}

// nextID must be called with mu held. IDs are unique across tables.
func (d *DB) nextID() int64 {
	d.seq++
	return d.seq
}

func (d *DB) enrolledCount(offerID int64) int {
	n := 0
	for p := range d.enrollments {
		if p.offer == offerID {
			n++
		}
	}
	return n
}

func (d *DB) grade(studentID, offerID int64) *float64 {
	g, ok := d.grades[pair{studentID, offerID}]
	if !ok {
		return nil
	}
	return &g
}

func (d *DB) courseName(o *model.CourseOffer) string {
	if c, ok := d.courses[o.CourseID]; ok {
		return c.Name
	}
	return ""
}

func (d *DB) userName(id int64) string {
	if u, ok := d.users[id]; ok {
		return u.FullName
	}
	return ""
}

func sortedOffers(d *DB) []*model.CourseOffer {
	out := make([]*model.CourseOffer, 0, len(d.offers))
	for _, o := range d.offers {
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func floatPtr(f *float64) *float64 {
	if f == nil {
		return nil
	}
	v := *f
	return &v
}

func strPtr(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
