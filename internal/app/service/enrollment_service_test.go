package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coursehub/internal/common"
	"coursehub/internal/domain/model"
)

func TestEnroll_Conflicts(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	lec := env.addUser(t, "L", "l@example.com", model.RoleLecturer)
	stu := env.addUser(t, "S", "s@example.com", model.RoleStudent)
	offer := env.addOffer(t, lec, "Compilers", 3, 0)

	require.NoError(t, env.enrollment.Enroll(ctx, EnrollRequest{StudentID: common.ID(stu), OfferID: common.ID(offer)}))
	assert.Equal(t, 2, env.remaining(t, offer))

	err := env.enrollment.Enroll(ctx, EnrollRequest{StudentID: common.ID(stu), OfferID: common.ID(offer)})
	assert.ErrorIs(t, err, common.ErrAlreadyEnrolled)
	assert.ErrorIs(t, err, common.ErrConflict)
	assert.Equal(t, 2, env.remaining(t, offer))

	assert.ErrorIs(t, env.enrollment.Enroll(ctx, EnrollRequest{StudentID: common.ID(stu), OfferID: 777}), common.ErrNotFound)
	assert.ErrorIs(t, env.enrollment.Enroll(ctx, EnrollRequest{StudentID: 777, OfferID: common.ID(offer)}), common.ErrNotFound)
	assert.ErrorIs(t, env.enrollment.Enroll(ctx, EnrollRequest{StudentID: common.ID(lec), OfferID: common.ID(offer)}), common.ErrValidation)
	assert.ErrorIs(t, env.enrollment.Enroll(ctx, EnrollRequest{OfferID: common.ID(offer)}), common.ErrValidation)
}

func TestEnroll_NoSeats(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	lec := env.addUser(t, "L", "l@example.com", model.RoleLecturer)
	a := env.addUser(t, "A", "a@example.com", model.RoleStudent)
	b := env.addUser(t, "B", "b@example.com", model.RoleStudent)
	offer := env.addOffer(t, lec, "Seminar", 1, 0)

	require.NoError(t, env.enrollment.Enroll(ctx, EnrollRequest{StudentID: common.ID(a), OfferID: common.ID(offer)}))
	assert.ErrorIs(t, env.enrollment.Enroll(ctx, EnrollRequest{StudentID: common.ID(b), OfferID: common.ID(offer)}), common.ErrNoSeatsAvailable)
	assert.Equal(t, 0, env.remaining(t, offer))
}

func TestCancel(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	lec := env.addUser(t, "L", "l@example.com", model.RoleLecturer)
	stu := env.addUser(t, "S", "s@example.com", model.RoleStudent)
	offer := env.addOffer(t, lec, "Graphics", 4, 0)

	err := env.enrollment.Cancel(ctx, EnrollRequest{StudentID: common.ID(stu), OfferID: common.ID(offer)})
	assert.ErrorIs(t, err, common.ErrNotEnrolled)
	assert.Equal(t, 4, env.remaining(t, offer))

	require.NoError(t, env.enrollment.Enroll(ctx, EnrollRequest{StudentID: common.ID(stu), OfferID: common.ID(offer)}))
	require.NoError(t, env.enrollment.Cancel(ctx, EnrollRequest{StudentID: common.ID(stu), OfferID: common.ID(offer)}))
	assert.ErrorIs(t, env.enrollment.Cancel(ctx, EnrollRequest{StudentID: common.ID(stu), OfferID: common.ID(offer)}), common.ErrNotEnrolled)
	assert.Equal(t, 4, env.remaining(t, offer))

	require.NoError(t, env.enrollment.Enroll(ctx, EnrollRequest{StudentID: common.ID(stu), OfferID: common.ID(offer)}))
	assert.Equal(t, 3, env.remaining(t, offer))
	students, err := env.enrollment.CourseStudents(ctx, offer)
	require.NoError(t, err)
	assert.Len(t, students, 1)
}

func TestEnroll_ConcurrentLastSeat(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	lec := env.addUser(t, "L", "l@example.com", model.RoleLecturer)
	offer := env.addOffer(t, lec, "Popular", 1, 0)

	var students []int64
	for i := 0; i < 25; i++ {
		students = append(students, env.addUser(t, "S", fmt.Sprintf("s%d@example.com", i), model.RoleStudent))
	}

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
	)
	for _, sid := range students {
		wg.Add(1)
		go func(sid int64) {
			defer wg.Done()
			err := env.enrollment.Enroll(ctx, EnrollRequest{StudentID: common.ID(sid), OfferID: common.ID(offer)})
			if err != nil && !errors.Is(err, common.ErrNoSeatsAvailable) {
				t.Errorf("unexpected enroll error: %v", err)
			}
			if err == nil {
				mu.Lock()
				successes++
				mu.Unlock()
			}
		}(sid)
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
	assert.Equal(t, 0, env.remaining(t, offer))
	regs, err := env.enrollment.Registrations(ctx, offer)
	require.NoError(t, err)
	assert.Len(t, regs, 1)
}
