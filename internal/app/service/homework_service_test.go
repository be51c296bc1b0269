package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coursehub/internal/common"
	"coursehub/internal/domain/model"
)

type homeworkFixture struct {
	env      *testEnv
	lecturer int64
	student  int64
	offer    int64
}

func newHomeworkFixture(t *testing.T) homeworkFixture {
	env := newTestEnv(t)
	lec := env.addUser(t, "L", "l@example.com", model.RoleLecturer)
	return homeworkFixture{
		env:      env,
		lecturer: lec,
		student:  env.addUser(t, "S", "s@example.com", model.RoleStudent),
		offer:    env.addOffer(t, lec, "Operating Systems", 10, 0),
	}
}

func upload(name, body string) *Upload {
	return &Upload{Name: name, Body: strings.NewReader(body)}
}

func TestCreateAssignment(t *testing.T) {
	f := newHomeworkFixture(t)
	ctx := context.Background()

	a, err := f.env.homework.CreateAssignment(ctx, CreateAssignmentRequest{
		CourseOfferID: f.offer, Title: "Scheduler", Description: "round robin", DueDate: "2025-05-01T23:59",
	}, upload("Brief.PDF", "brief"))
	require.NoError(t, err)
	require.NotNil(t, a.FilePath)
	assert.True(t, strings.HasPrefix(*a.FilePath, "homeworks/"))
	assert.True(t, f.env.stored(*a.FilePath))
	assert.Equal(t, time.Date(2025, 5, 1, 23, 59, 0, 0, time.UTC), a.DueDate)
	assert.False(t, a.IsClosed)

	_, err = f.env.homework.CreateAssignment(ctx, CreateAssignmentRequest{CourseOfferID: f.offer, DueDate: "2025-05-01"}, nil)
	var vErr *common.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "title", vErr.Fields[0].Field)

	_, err = f.env.homework.CreateAssignment(ctx, CreateAssignmentRequest{CourseOfferID: f.offer, Title: "T"}, nil)
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "due_date", vErr.Fields[0].Field)

	_, err = f.env.homework.CreateAssignment(ctx, CreateAssignmentRequest{CourseOfferID: f.offer, Title: "T", DueDate: "next week"}, nil)
	assert.ErrorIs(t, err, common.ErrValidation)

	_, err = f.env.homework.CreateAssignment(ctx, CreateAssignmentRequest{CourseOfferID: 999, Title: "T", DueDate: "2025-05-01"}, upload("x.txt", "x"))
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestSubmit_Lifecycle(t *testing.T) {
	f := newHomeworkFixture(t)
	ctx := context.Background()
	a, err := f.env.homework.CreateAssignment(ctx, CreateAssignmentRequest{CourseOfferID: f.offer, Title: "HW1", DueDate: "2025-05-01"}, nil)
	require.NoError(t, err)

	none, err := f.env.homework.LatestSubmission(ctx, a.ID, f.student)
	require.NoError(t, err)
	assert.Nil(t, none)

	_, err = f.env.homework.Submit(ctx, SubmitRequest{AssignmentID: a.ID, StudentID: f.student}, nil)
	assert.ErrorIs(t, err, common.ErrMissingFile)

	first, err := f.env.homework.Submit(ctx, SubmitRequest{AssignmentID: a.ID, StudentID: f.student}, upload("draft.txt", "v1"))
	require.NoError(t, err)
	second, err := f.env.homework.Submit(ctx, SubmitRequest{AssignmentID: a.ID, StudentID: f.student}, upload("final.txt", "v2"))
	require.NoError(t, err)
	assert.Equal(t, "final.txt", second.OriginalName)

	latest, err := f.env.homework.LatestSubmission(ctx, a.ID, f.student)
	require.NoError(t, err)
	assert.Equal(t, second.ID, latest.ID)

	history, err := f.env.homework.SubmissionHistory(ctx, a.ID, f.student)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, second.ID, history[0].ID)
	assert.Equal(t, first.ID, history[1].ID)

	require.NoError(t, f.env.homework.Close(ctx, a.ID))
	require.NoError(t, f.env.homework.Close(ctx, a.ID))
	_, err = f.env.homework.Submit(ctx, SubmitRequest{AssignmentID: a.ID, StudentID: f.student}, upload("late.txt", "late"))
	assert.ErrorIs(t, err, common.ErrAssignmentClosed)
	assert.ErrorIs(t, f.env.homework.Close(ctx, 999), common.ErrNotFound)

	list, err := f.env.homework.ListByOffer(ctx, f.offer)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.True(t, list[0].IsClosed)
	assert.Equal(t, 2, list[0].SubmissionCount)

	subs, err := f.env.homework.Submissions(ctx, a.ID)
	require.NoError(t, err)
	require.Len(t, subs, 2)
	assert.Equal(t, "S", subs[0].FullName)

	_, err = f.env.homework.Submit(ctx, SubmitRequest{AssignmentID: 999, StudentID: f.student}, upload("x.txt", "x"))
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestDeleteAssignment_RemovesSubmissionsAndFiles(t *testing.T) {
	f := newHomeworkFixture(t)
	ctx := context.Background()
	a, err := f.env.homework.CreateAssignment(ctx, CreateAssignmentRequest{CourseOfferID: f.offer, Title: "HW", DueDate: "2025-05-01"}, upload("brief.txt", "b"))
	require.NoError(t, err)
	sub, err := f.env.homework.Submit(ctx, SubmitRequest{AssignmentID: a.ID, StudentID: f.student}, upload("ans.txt", "a"))
	require.NoError(t, err)
	require.True(t, f.env.stored(sub.FilePath))

	require.NoError(t, f.env.homework.DeleteAssignment(ctx, a.ID))

	subs, err := f.env.homework.Submissions(ctx, a.ID)
	require.NoError(t, err)
	assert.Empty(t, subs)
	assert.False(t, f.env.stored(sub.FilePath))
	assert.False(t, f.env.stored(*a.FilePath))

	require.NoError(t, f.env.homework.DeleteAssignment(ctx, a.ID))
}

func TestDeleteSubmission(t *testing.T) {
	f := newHomeworkFixture(t)
	ctx := context.Background()
	intruder := f.env.addUser(t, "I", "i@example.com", model.RoleStudent)
	a, err := f.env.homework.CreateAssignment(ctx, CreateAssignmentRequest{CourseOfferID: f.offer, Title: "HW", DueDate: "2025-05-01"}, nil)
	require.NoError(t, err)
	sub, err := f.env.homework.Submit(ctx, SubmitRequest{AssignmentID: a.ID, StudentID: f.student}, upload("ans.txt", "a"))
	require.NoError(t, err)

	err = f.env.homework.DeleteSubmission(ctx, Actor{ID: intruder, Role: model.RoleStudent}, sub.ID)
	assert.ErrorIs(t, err, common.ErrForbidden)
	assert.True(t, f.env.stored(sub.FilePath))

	require.NoError(t, f.env.homework.DeleteSubmission(ctx, Actor{ID: f.student, Role: model.RoleStudent}, sub.ID))
	assert.False(t, f.env.stored(sub.FilePath))

	require.NoError(t, f.env.homework.DeleteSubmission(ctx, Actor{ID: f.lecturer, Role: model.RoleLecturer}, sub.ID))
}
