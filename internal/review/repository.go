package review

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/pawmates/pawmates-api/internal/schedule"
)

var (
	ErrReviewNotFound = errors.New("review not found")
)

// AppointmentSource is the slice of the scheduling domain the review
// service needs: loading the appointment a review refers to.
type AppointmentSource interface {
	GetAppointment(ctx context.Context, id uuid.UUID) (*schedule.Appointment, error)
}

// Repository contains all DB interactions needed by the review service.
type Repository interface {
	// UpsertReview inserts the review, or overwrites rating, comment
	// and updated_at in place when the (user, appointment) pair already
	// has one.
	UpsertReview(ctx context.Context, rev *Review) error

	GetReview(ctx context.Context, id uuid.UUID) (*Review, error)
	DeleteReview(ctx context.Context, id uuid.UUID) error

	ListRatings(ctx context.Context, vetID uuid.UUID) ([]int, error)
	SetVetAggregate(ctx context.Context, vetID uuid.UUID, averageRating float64, totalReviews int) error
}
