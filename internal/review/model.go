package review

import (
	"time"

	"github.com/google/uuid"
)

type Review struct {
	ID             uuid.UUID
	UserID         uuid.UUID
	VeterinarianID uuid.UUID
	AppointmentID  uuid.UUID
	Rating         int
	Comment        *string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Aggregate recomputes a vet's rating summary from the full rating
// list. It is deliberately a pure function invoked after every review
// mutation rather than a lifecycle hook, so "aggregate matches list"
// holds by construction.
func Aggregate(ratings []int) (averageRating float64, totalReviews int) {
	if len(ratings) == 0 {
		return 0, 0
	}
	sum := 0
	for _, r := range ratings {
		sum += r
	}
	return float64(sum) / float64(len(ratings)), len(ratings)
}
