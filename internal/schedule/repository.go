package schedule

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrVetNotFound         = errors.New("veterinarian not found")
	ErrAppointmentNotFound = errors.New("appointment not found")

	// ErrSlotTaken is returned both by the overlap pre-check and by the
	// unique index on (veterinarian_id, date, start_time). The index is
	// authoritative; the pre-check only exists for a friendlier error.
	ErrSlotTaken = errors.New("this time slot is already booked")
)

// Repository contains all DB interactions needed by the service.
type Repository interface {
	GetVeterinarian(ctx context.Context, id uuid.UUID) (*Veterinarian, error)

	// ListWindows returns the vet's availability windows for one day
	// name, available ones only, ordered by start time.
	ListWindows(ctx context.Context, vetID uuid.UUID, day string) ([]AvailabilityWindow, error)

	// ListBlockingAppointments returns appointments that occupy slots on
	// the given date: status pending or scheduled. Cancelled and
	// completed appointments never block.
	ListBlockingAppointments(ctx context.Context, vetID uuid.UUID, date time.Time) ([]Appointment, error)

	CreateAppointment(ctx context.Context, appt *Appointment) error
	GetAppointment(ctx context.Context, id uuid.UUID) (*Appointment, error)
	UpdateAppointmentStatus(ctx context.Context, id uuid.UUID, status Status, notes *string) (*Appointment, error)

	ListAppointmentsByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]Appointment, error)
	ListAppointmentsByVet(ctx context.Context, vetID uuid.UUID, limit, offset int) ([]Appointment, error)
}
