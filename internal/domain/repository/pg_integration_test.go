//go:build integration

package repository_test

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coursehub/internal/common"
	"coursehub/internal/domain/model"
	"coursehub/internal/domain/repository"
	"coursehub/internal/testutil/testdb"
)

var h *testdb.DBHandle

func TestMain(m *testing.M) {
	var err error
	h, err = testdb.Start(context.Background())
	if err != nil {
		panic(err)
	}
	code := m.Run()
	h.Close()
	os.Exit(code)
}

type fixture struct {
	repos    repository.Set
	lecturer int64
	students []int64
	offer    int64
}

func setup(t *testing.T, seats, students int) fixture {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, h.Reset(ctx))

	f := fixture{repos: repository.NewPgSet(h.DB)}
	lec := &model.User{FullName: "Dana Lecturer", Email: "dana@example.com", HashedPassword: "x", Role: model.RoleLecturer}
	require.NoError(t, f.repos.Users.Create(ctx, lec))
	f.lecturer = lec.ID

	for i := 0; i < students; i++ {
		s := &model.User{FullName: "Student", Email: fmt.Sprintf("student%d@example.com", i), HashedPassword: "x", Role: model.RoleStudent}
		require.NoError(t, f.repos.Users.Create(ctx, s))
		f.students = append(f.students, s.ID)
	}

	offer := &model.CourseOffer{LecturerID: lec.ID, Schedule: "Mon 10:00", Price: 1200, MaxSeats: seats}
	require.NoError(t, f.repos.Courses.CreateOffer(ctx, "Databases", offer))
	assert.Equal(t, seats, offer.RemainingSeats)
	f.offer = offer.ID
	return f
}

func remaining(t *testing.T, f fixture) int {
	t.Helper()
	o, err := f.repos.Courses.FindOffer(context.Background(), f.offer)
	require.NoError(t, err)
	return o.RemainingSeats
}

func TestEnroll_ConcurrentLastSeat(t *testing.T) {
	f := setup(t, 1, 20)
	ctx := context.Background()

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		noSeats   int
	)
	for _, sid := range f.students {
		wg.Add(1)
		go func(sid int64) {
			defer wg.Done()
			err := f.repos.Enrollments.Enroll(ctx, sid, f.offer)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case errors.Is(err, common.ErrNoSeatsAvailable):
				noSeats++
			default:
				t.Errorf("unexpected enroll error: %v", err)
			}
		}(sid)
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
	assert.Equal(t, len(f.students)-1, noSeats)
	assert.Equal(t, 0, remaining(t, f))

	drift, err := f.repos.Courses.SeatDrift(ctx)
	require.NoError(t, err)
	assert.Empty(t, drift)
}

func TestEnroll_FailureOrderAndRoundTrip(t *testing.T) {
	f := setup(t, 2, 1)
	ctx := context.Background()
	sid := f.students[0]

	assert.ErrorIs(t, f.repos.Enrollments.Enroll(ctx, sid, 9999), common.ErrNotFound)

	require.NoError(t, f.repos.Enrollments.Enroll(ctx, sid, f.offer))
	assert.ErrorIs(t, f.repos.Enrollments.Enroll(ctx, sid, f.offer), common.ErrAlreadyEnrolled)
	assert.Equal(t, 1, remaining(t, f))

	removed, err := f.repos.Enrollments.Cancel(ctx, sid, f.offer)
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = f.repos.Enrollments.Cancel(ctx, sid, f.offer)
	require.NoError(t, err)
	assert.False(t, removed)
	assert.Equal(t, 2, remaining(t, f))

	require.NoError(t, f.repos.Enrollments.Enroll(ctx, sid, f.offer))
	assert.Equal(t, 1, remaining(t, f))
	students, err := f.repos.Enrollments.ListCourseStudents(ctx, f.offer)
	require.NoError(t, err)
	assert.Len(t, students, 1)
}

func TestAddSeats(t *testing.T) {
	f := setup(t, 1, 1)
	ctx := context.Background()
	require.NoError(t, f.repos.Enrollments.Enroll(ctx, f.students[0], f.offer))

	require.NoError(t, f.repos.Courses.AddSeats(ctx, f.offer, 3))
	o, err := f.repos.Courses.FindOffer(ctx, f.offer)
	require.NoError(t, err)
	assert.Equal(t, 4, o.MaxSeats)
	assert.Equal(t, 3, o.RemainingSeats)

	assert.ErrorIs(t, f.repos.Courses.AddSeats(ctx, 9999, 1), common.ErrNotFound)

	err = f.repos.Courses.AddSeats(ctx, f.offer, math.MaxInt32)
	assert.ErrorIs(t, err, common.ErrSeatsOutOfRange)
	o, err = f.repos.Courses.FindOffer(ctx, f.offer)
	require.NoError(t, err)
	assert.Equal(t, 4, o.MaxSeats)
	assert.Equal(t, 3, o.RemainingSeats)
}

func TestGradeUpsert_LatestWins(t *testing.T) {
	f := setup(t, 5, 1)
	ctx := context.Background()
	sid := f.students[0]
	require.NoError(t, f.repos.Enrollments.Enroll(ctx, sid, f.offer))

	require.NoError(t, f.repos.Grades.Upsert(ctx, model.Grade{StudentID: sid, CourseOfferID: f.offer, Grade: 85}))
	require.NoError(t, f.repos.Grades.Upsert(ctx, model.Grade{StudentID: sid, CourseOfferID: f.offer, Grade: 90}))

	var count int
	require.NoError(t, h.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM grades`).Scan(&count))
	assert.Equal(t, 1, count)

	grades, err := f.repos.Grades.ListByStudent(ctx, sid)
	require.NoError(t, err)
	require.Len(t, grades, 1)
	require.NotNil(t, grades[0].Grade)
	assert.Equal(t, 90.0, *grades[0].Grade)
}

func TestHomeworkLifecycle(t *testing.T) {
	f := setup(t, 5, 1)
	ctx := context.Background()
	sid := f.students[0]
	attachment := "homeworks/a-brief.pdf"

	a := &model.HomeworkAssignment{CourseOfferID: f.offer, Title: "HW1", DueDate: time.Now().Add(48 * time.Hour), FilePath: &attachment}
	require.NoError(t, f.repos.Homework.CreateAssignment(ctx, a))

	first := &model.HomeworkSubmission{AssignmentID: a.ID, StudentID: sid, FilePath: "submissions/1.pdf", OriginalName: "1.pdf"}
	require.NoError(t, f.repos.Homework.CreateSubmission(ctx, first))
	second := &model.HomeworkSubmission{AssignmentID: a.ID, StudentID: sid, FilePath: "submissions/2.pdf", OriginalName: "2.pdf"}
	require.NoError(t, f.repos.Homework.CreateSubmission(ctx, second))

	latest, err := f.repos.Homework.LatestSubmission(ctx, a.ID, sid)
	require.NoError(t, err)
	assert.Equal(t, second.ID, latest.ID)

	require.NoError(t, f.repos.Homework.GradeSubmission(ctx, second.ID, 77))
	assert.ErrorIs(t, f.repos.Homework.GradeSubmission(ctx, 9999, 50), common.ErrNotFound)

	require.NoError(t, f.repos.Homework.Close(ctx, a.ID))
	require.NoError(t, f.repos.Homework.Close(ctx, a.ID))
	late := &model.HomeworkSubmission{AssignmentID: a.ID, StudentID: sid, FilePath: "submissions/3.pdf"}
	assert.ErrorIs(t, f.repos.Homework.CreateSubmission(ctx, late), common.ErrAssignmentClosed)

	listed, err := f.repos.Homework.ListByOffer(ctx, f.offer)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.True(t, listed[0].IsClosed)
	assert.Equal(t, 2, listed[0].SubmissionCount)

	keys, err := f.repos.Homework.DeleteAssignment(ctx, a.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"submissions/1.pdf", "submissions/2.pdf", attachment}, keys)

	subs, err := f.repos.Homework.ListSubmissions(ctx, a.ID)
	require.NoError(t, err)
	assert.Empty(t, subs)

	keys, err = f.repos.Homework.DeleteAssignment(ctx, a.ID)
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestRespondTicket_Once(t *testing.T) {
	f := setup(t, 1, 1)
	ctx := context.Background()

	m := &model.StudentMessage{StudentID: f.students[0], Message: "my grade is missing"}
	require.NoError(t, f.repos.Messages.CreateTicket(ctx, m))

	require.NoError(t, f.repos.Messages.RespondTicket(ctx, m.ID, "fixed"))
	assert.ErrorIs(t, f.repos.Messages.RespondTicket(ctx, m.ID, "again"), common.ErrAlreadyAnswered)
	assert.ErrorIs(t, f.repos.Messages.RespondTicket(ctx, 9999, "x"), common.ErrNotFound)
}

func TestTouchLastLogin_ReturnsPrevious(t *testing.T) {
	f := setup(t, 1, 0)
	ctx := context.Background()

	prev, err := f.repos.Users.TouchLastLogin(ctx, f.lecturer)
	require.NoError(t, err)
	assert.Nil(t, prev)

	u, err := f.repos.Users.FindByID(ctx, f.lecturer)
	require.NoError(t, err)
	require.NotNil(t, u.LastLogin)

	prev, err = f.repos.Users.TouchLastLogin(ctx, f.lecturer)
	require.NoError(t, err)
	require.NotNil(t, prev)
	assert.WithinDuration(t, *u.LastLogin, *prev, time.Millisecond)
}
