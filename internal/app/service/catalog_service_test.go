package service

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coursehub/internal/common"
	"coursehub/internal/domain/model"
)

func TestCreateOffer(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	lec := env.addUser(t, "Dr. Haddad", "haddad@example.com", model.RoleLecturer)
	stu := env.addUser(t, "Sami", "sami@example.com", model.RoleStudent)

	offer, err := env.catalog.CreateOffer(ctx, CreateOfferRequest{CourseName: "Algorithms", LecturerID: common.ID(lec), Price: 900, MaxSeats: 30})
	require.NoError(t, err)
	assert.Equal(t, 30, offer.RemainingSeats)
	assert.NotZero(t, offer.CourseID)

	_, err = env.catalog.CreateOffer(ctx, CreateOfferRequest{CourseName: "X", LecturerID: common.ID(stu), MaxSeats: 1})
	assert.ErrorIs(t, err, common.ErrValidation)

	_, err = env.catalog.CreateOffer(ctx, CreateOfferRequest{CourseName: "X", LecturerID: 4242, MaxSeats: 1})
	assert.ErrorIs(t, err, common.ErrNotFound)

	_, err = env.catalog.CreateOffer(ctx, CreateOfferRequest{CourseName: "X", LecturerID: common.ID(lec), MaxSeats: 0})
	assert.ErrorIs(t, err, common.ErrValidation)

	_, err = env.catalog.CreateOffer(ctx, CreateOfferRequest{CourseName: "X", LecturerID: common.ID(lec), MaxSeats: 2, Price: -1})
	assert.ErrorIs(t, err, common.ErrValidation)

	all, err := env.catalog.ListAllOffers(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "Algorithms", all[0].CourseName)
	assert.Equal(t, "Dr. Haddad", all[0].LecturerName)
}

func TestAddSeats(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	lec := env.addUser(t, "L", "l@example.com", model.RoleLecturer)
	offer := env.addOffer(t, lec, "Networks", 2, 100)

	require.NoError(t, env.catalog.AddSeats(ctx, offer, AddSeatsRequest{AddSeats: 5}))
	o, err := env.repos.Courses.FindOffer(ctx, offer)
	require.NoError(t, err)
	assert.Equal(t, 7, o.MaxSeats)
	assert.Equal(t, 7, o.RemainingSeats)

	assert.ErrorIs(t, env.catalog.AddSeats(ctx, offer, AddSeatsRequest{AddSeats: 0}), common.ErrValidation)
	assert.ErrorIs(t, env.catalog.AddSeats(ctx, offer, AddSeatsRequest{AddSeats: -3}), common.ErrValidation)
	assert.ErrorIs(t, env.catalog.AddSeats(ctx, 999, AddSeatsRequest{AddSeats: 1}), common.ErrNotFound)
	assert.ErrorIs(t, env.catalog.AddSeats(ctx, offer, AddSeatsRequest{AddSeats: 10001}), common.ErrValidation)
}

func TestAddSeats_Overflow(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	lec := env.addUser(t, "L", "l@example.com", model.RoleLecturer)
	offer := env.addOffer(t, lec, "Networks", 2, 100)

	err := env.repos.Courses.AddSeats(ctx, offer, math.MaxInt)
	assert.ErrorIs(t, err, common.ErrSeatsOutOfRange)
	assert.ErrorIs(t, err, common.ErrValidation)

	o, err := env.repos.Courses.FindOffer(ctx, offer)
	require.NoError(t, err)
	assert.Equal(t, 2, o.MaxSeats)
	assert.Equal(t, 2, o.RemainingSeats)
}

func TestStudentViews(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	lec := env.addUser(t, "Lecturer", "lec@example.com", model.RoleLecturer)
	stu := env.addUser(t, "Student", "stu@example.com", model.RoleStudent)
	other := env.addUser(t, "Other", "other@example.com", model.RoleStudent)
	full := env.addOffer(t, lec, "Full Course", 1, 500)
	open := env.addOffer(t, lec, "Open Course", 10, 750.5)
	env.addOffer(t, lec, "Untaken", 3, 10)

	require.NoError(t, env.enrollment.Enroll(ctx, EnrollRequest{StudentID: common.ID(other), OfferID: common.ID(full)}))
	require.NoError(t, env.enrollment.Enroll(ctx, EnrollRequest{StudentID: common.ID(stu), OfferID: common.ID(open)}))

	openOffers, err := env.catalog.ListOpenOffers(ctx)
	require.NoError(t, err)
	for _, o := range openOffers {
		assert.NotEqual(t, full, o.OfferID, "full offers are not listed")
		assert.Positive(t, o.RemainingSeats)
	}
	assert.Len(t, openOffers, 2)

	mine, err := env.catalog.MyCourses(ctx, stu)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "Open Course", mine[0].Name)
	assert.Equal(t, "Lecturer", mine[0].Lecturer)

	available, err := env.catalog.AvailableOffers(ctx, stu)
	require.NoError(t, err)
	assert.Len(t, available, 2)

	require.NoError(t, env.grades.SetCourseGrade(ctx, SetGradeRequest{StudentID: common.ID(stu), OfferID: common.ID(open), Grade: gradePtr(88)}))
	courses, err := env.catalog.StudentCourses(ctx, stu)
	require.NoError(t, err)
	require.Len(t, courses, 1)
	require.NotNil(t, courses[0].Grade)
	assert.Equal(t, 88.0, *courses[0].Grade)

	tuition, err := env.catalog.Tuition(ctx, stu)
	require.NoError(t, err)
	assert.Len(t, tuition.Lines, 1)
	assert.Equal(t, 750.5, tuition.Total)

	byLecturer, err := env.catalog.LecturerOffers(ctx, lec)
	require.NoError(t, err)
	require.Len(t, byLecturer, 3)
	assert.Equal(t, 1, byLecturer[0].NumStudents)
	assert.Equal(t, 1, byLecturer[1].NumStudents)
	assert.Equal(t, 0, byLecturer[2].NumStudents)
}
