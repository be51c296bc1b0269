package worker

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"coursehub/internal/domain/model"
	"coursehub/internal/domain/repository/memstore"
	"coursehub/internal/platform/metrics"
)

func TestSeatAudit(t *testing.T) {
	ctx := context.Background()
	db := memstore.New()
	repos := db.Set()

	lec := &model.User{FullName: "L", Email: "l@example.com", Role: model.RoleLecturer}
	stu := &model.User{FullName: "S", Email: "s@example.com", Role: model.RoleStudent}
	require.NoError(t, repos.Users.Create(ctx, lec))
	require.NoError(t, repos.Users.Create(ctx, stu))

	healthy := &model.CourseOffer{LecturerID: lec.ID, Schedule: "Mon", MaxSeats: 3}
	broken := &model.CourseOffer{LecturerID: lec.ID, Schedule: "Tue", MaxSeats: 3}
	require.NoError(t, repos.Courses.CreateOffer(ctx, "Algebra", healthy))
	require.NoError(t, repos.Courses.CreateOffer(ctx, "Geometry", broken))
	require.NoError(t, repos.Enrollments.Enroll(ctx, stu.ID, healthy.ID))

	core, logs := observer.New(zapcore.WarnLevel)
	audit := NewSeatAudit(repos.Courses, zap.New(core))

	require.NoError(t, audit.Run(ctx))
	assert.Equal(t, 0.0, testutil.ToFloat64(metrics.SeatDriftOffers))
	assert.Zero(t, logs.Len())

	db.CorruptSeats(broken.ID, 1)
	require.NoError(t, audit.Run(ctx))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.SeatDriftOffers))
	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, broken.ID, fields["offer_id"])
	assert.Equal(t, int64(3), fields["expected_remaining"])

	offer, err := repos.Courses.FindOffer(ctx, broken.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, offer.RemainingSeats)
}
