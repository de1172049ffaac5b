package review

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/pawmates/pawmates-api/internal/schedule"
)

var (
	ErrInvalidRating      = errors.New("rating must be between 1 and 5")
	ErrNotYourAppointment = errors.New("you can only review your own appointments")
	ErrNotCompleted       = errors.New("only completed appointments can be reviewed")
	ErrNotYourReview      = errors.New("you can only delete your own reviews")
)

type Service struct {
	repo  Repository
	appts AppointmentSource
}

func NewService(repo Repository, appts AppointmentSource) *Service {
	return &Service{repo: repo, appts: appts}
}

// Submit records a review for a completed appointment. A second
// submission for the same appointment overwrites the first in place,
// so a user holds at most one review per appointment.
func (s *Service) Submit(ctx context.Context, userID, appointmentID uuid.UUID, rating int, comment *string) (*Review, error) {
	if rating < 1 || rating > 5 {
		return nil, ErrInvalidRating
	}

	appt, err := s.appts.GetAppointment(ctx, appointmentID)
	if err != nil {
		return nil, err
	}
	if appt.UserID != userID {
		return nil, ErrNotYourAppointment
	}
	if appt.Status != schedule.StatusCompleted {
		return nil, ErrNotCompleted
	}

	rev := &Review{
		ID:             uuid.New(),
		UserID:         userID,
		VeterinarianID: appt.VeterinarianID,
		AppointmentID:  appointmentID,
		Rating:         rating,
		Comment:        comment,
	}
	if err := s.repo.UpsertReview(ctx, rev); err != nil {
		return nil, fmt.Errorf("upsert review: %w", err)
	}

	if err := s.refreshAggregate(ctx, appt.VeterinarianID); err != nil {
		return nil, err
	}

	return rev, nil
}

func (s *Service) Delete(ctx context.Context, userID, reviewID uuid.UUID) error {
	rev, err := s.repo.GetReview(ctx, reviewID)
	if err != nil {
		return err
	}
	if rev.UserID != userID {
		return ErrNotYourReview
	}

	if err := s.repo.DeleteReview(ctx, reviewID); err != nil {
		return err
	}

	return s.refreshAggregate(ctx, rev.VeterinarianID)
}

func (s *Service) refreshAggregate(ctx context.Context, vetID uuid.UUID) error {
	ratings, err := s.repo.ListRatings(ctx, vetID)
	if err != nil {
		return fmt.Errorf("list ratings: %w", err)
	}

	avg, total := Aggregate(ratings)
	if err := s.repo.SetVetAggregate(ctx, vetID, avg, total); err != nil {
		return fmt.Errorf("set vet aggregate: %w", err)
	}
	return nil
}
