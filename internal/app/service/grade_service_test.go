package service

import (
	"context"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coursehub/internal/common"
	"coursehub/internal/domain/model"
)

func TestSetCourseGrade_Upsert(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	lec := env.addUser(t, "L", "l@example.com", model.RoleLecturer)
	stu := env.addUser(t, "S", "s@example.com", model.RoleStudent)
	offer := env.addOffer(t, lec, "Stats", 5, 0)
	require.NoError(t, env.enrollment.Enroll(ctx, EnrollRequest{StudentID: common.ID(stu), OfferID: common.ID(offer)}))

	require.NoError(t, env.grades.SetCourseGrade(ctx, SetGradeRequest{StudentID: common.ID(stu), OfferID: common.ID(offer), Grade: gradePtr(85)}))
	require.NoError(t, env.grades.SetCourseGrade(ctx, SetGradeRequest{StudentID: common.ID(stu), OfferID: common.ID(offer), Grade: gradePtr(90)}))

	grades, err := env.grades.StudentGrades(ctx, stu)
	require.NoError(t, err)
	require.Len(t, grades, 1)
	require.NotNil(t, grades[0].Grade)
	assert.Equal(t, 90.0, *grades[0].Grade)

	// zero is a grade, not a missing one
	require.NoError(t, env.grades.SetCourseGrade(ctx, SetGradeRequest{StudentID: common.ID(stu), OfferID: common.ID(offer), Grade: gradePtr(0)}))
}

func TestSetCourseGrade_Invalid(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	for _, g := range []float64{-1, 100.01, math.NaN()} {
		err := env.grades.SetCourseGrade(ctx, SetGradeRequest{StudentID: 1, OfferID: 1, Grade: gradePtr(g)})
		assert.ErrorIs(t, err, common.ErrInvalidGrade)
		assert.ErrorIs(t, err, common.ErrValidation)
	}
	assert.ErrorIs(t, env.grades.SetCourseGrade(ctx, SetGradeRequest{StudentID: 1, OfferID: 1}), common.ErrValidation)
	assert.ErrorIs(t, env.grades.SetCourseGrade(ctx, SetGradeRequest{StudentID: 1, OfferID: 1, Grade: gradePtr(50)}), common.ErrNotFound)
}

func TestSetSubmissionGrade(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	lec := env.addUser(t, "L", "l@example.com", model.RoleLecturer)
	stu := env.addUser(t, "S", "s@example.com", model.RoleStudent)
	offer := env.addOffer(t, lec, "Stats", 5, 0)

	a, err := env.homework.CreateAssignment(ctx, CreateAssignmentRequest{CourseOfferID: offer, Title: "HW", DueDate: time.Now().Format("2006-01-02")}, nil)
	require.NoError(t, err)
	sub, err := env.homework.Submit(ctx, SubmitRequest{AssignmentID: a.ID, StudentID: stu}, &Upload{Name: "a.txt", Body: strings.NewReader("x")})
	require.NoError(t, err)

	require.NoError(t, env.grades.SetSubmissionGrade(ctx, GradeSubmissionRequest{SubmissionID: common.ID(sub.ID), Grade: gradePtr(64.5)}))
	latest, err := env.homework.LatestSubmission(ctx, a.ID, stu)
	require.NoError(t, err)
	require.NotNil(t, latest.Grade)
	assert.Equal(t, 64.5, *latest.Grade)

	assert.ErrorIs(t, env.grades.SetSubmissionGrade(ctx, GradeSubmissionRequest{SubmissionID: 9999, Grade: gradePtr(1)}), common.ErrNotFound)
	assert.ErrorIs(t, env.grades.SetSubmissionGrade(ctx, GradeSubmissionRequest{SubmissionID: common.ID(sub.ID), Grade: gradePtr(101)}), common.ErrInvalidGrade)
}
