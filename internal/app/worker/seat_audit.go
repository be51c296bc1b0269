package worker

import (
	"context"
	"fmt"

	"coursehub/internal/domain/repository"
	"coursehub/internal/platform/metrics"

	"go.uber.org/zap"
)

// SeatAudit reports offers whose seat counter no longer matches their
// enrollments. It only reads.
type SeatAudit struct {
	courseRepo repository.CourseRepository
	log        *zap.Logger
}

func NewSeatAudit(courseRepo repository.CourseRepository, log *zap.Logger) *SeatAudit {
	return &SeatAudit{courseRepo: courseRepo, log: log}
}

func (a *SeatAudit) Run(ctx context.Context) error {
	drift, err := a.courseRepo.SeatDrift(ctx)
	if err != nil {
		return fmt.Errorf("seat audit: %w", err)
	}
	metrics.SeatDriftOffers.Set(float64(len(drift)))
	for _, d := range drift {
		a.log.Warn("seat counter drift",
			zap.Int64("offer_id", d.OfferID),
			zap.Int("max_seats", d.MaxSeats),
			zap.Int("remaining_seats", d.RemainingSeats),
			zap.Int("enrolled", d.Enrolled),
			zap.Int("expected_remaining", d.Expected()),
		)
	}
	return nil
}
