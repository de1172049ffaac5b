package schedule

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/pawmates/pawmates-api/internal/config"
	redisclient "github.com/pawmates/pawmates-api/internal/redis"
)

const dateLayout = "2006-01-02"

var (
	ErrInvalidDate    = errors.New("invalid date format")
	ErrPastDate       = errors.New("cannot book appointments in the past")
	ErrInvalidClock   = errors.New("start and end times must be HH:MM with end after start")
	ErrEmptyReason    = errors.New("a reason for the visit is required")
	ErrDayUnavailable = errors.New("veterinarian is not available on this day")
	ErrOutsideWindow  = errors.New("requested time is outside the veterinarian's availability")
	ErrInvalidStatus  = errors.New("invalid appointment status")

	ErrNotAppointmentVet   = errors.New("only the appointment's veterinarian may update its status")
	ErrNotAppointmentOwner = errors.New("only the appointment's owner may cancel it")
	ErrCancelCompleted     = errors.New("completed appointments cannot be cancelled")

	ErrSlotContended = errors.New("slot is currently being booked, please retry")
)

type Service struct {
	repo   Repository
	locker redisclient.Locker
	cfg    config.Config
}

func NewService(repo Repository, locker redisclient.Locker, cfg config.Config) *Service {
	return &Service{
		repo:   repo,
		locker: locker,
		cfg:    cfg,
	}
}

func (s *Service) slotMinutes() int {
	m := int(s.cfg.SlotDuration / time.Minute)
	if m <= 0 {
		m = 30
	}
	return m
}

// AvailableSlots expands a vet's weekly availability windows for one
// date into fixed-size slots, minus slots occupied by pending or
// scheduled appointments. A day with no windows yields an empty list,
// not an error.
func (s *Service) AvailableSlots(ctx context.Context, vetID uuid.UUID, date string) (*DaySchedule, error) {
	if _, err := s.repo.GetVeterinarian(ctx, vetID); err != nil {
		return nil, err
	}

	day, err := time.Parse(dateLayout, date)
	if err != nil {
		return nil, ErrInvalidDate
	}

	windows, err := s.repo.ListWindows(ctx, vetID, dayName(day))
	if err != nil {
		return nil, fmt.Errorf("list availability windows: %w", err)
	}

	sched := &DaySchedule{
		Date:      date,
		DayOfWeek: dayName(day),
		Slots:     []SlotRange{},
	}
	if len(windows) == 0 {
		return sched, nil
	}

	booked, err := s.repo.ListBlockingAppointments(ctx, vetID, day)
	if err != nil {
		return nil, fmt.Errorf("list appointments: %w", err)
	}

	type interval struct{ start, end int }
	taken := make([]interval, 0, len(booked))
	for _, a := range booked {
		start, err := parseClock(a.StartTime)
		if err != nil {
			return nil, fmt.Errorf("appointment %s: %w", a.ID, err)
		}
		end, err := parseClock(a.EndTime)
		if err != nil {
			return nil, fmt.Errorf("appointment %s: %w", a.ID, err)
		}
		taken = append(taken, interval{start, end})
	}

	size := s.slotMinutes()

	// Windows are walked independently and their slot lists
	// concatenated. A partial slot at the tail of a window is dropped.
	for _, w := range windows {
		winStart, err := parseClock(w.StartTime)
		if err != nil {
			return nil, fmt.Errorf("window %s: %w", w.ID, err)
		}
		winEnd, err := parseClock(w.EndTime)
		if err != nil {
			return nil, fmt.Errorf("window %s: %w", w.ID, err)
		}

		for start := winStart; start+size <= winEnd; start += size {
			end := start + size
			free := true
			for _, t := range taken {
				if overlaps(start, end, t.start, t.end) {
					free = false
					break
				}
			}
			if free {
				sched.Slots = append(sched.Slots, SlotRange{
					StartTime: formatClock(start),
					EndTime:   formatClock(end),
				})
			}
		}
	}

	return sched, nil
}

type BookingRequest struct {
	UserID         uuid.UUID
	VeterinarianID uuid.UUID
	PetID          *uuid.UUID
	Date           string
	StartTime      string
	EndTime        string
	Reason         string
	Notes          *string
}

// Book validates a requested slot against the vet's availability and
// existing appointments, then creates a pending appointment. The
// conflict pre-check runs under a Redis lock keyed by the exact slot,
// but the unique index on (veterinarian_id, date, start_time) remains
// the final arbiter between racing requests.
func (s *Service) Book(ctx context.Context, req BookingRequest) (*Appointment, error) {
	if _, err := s.repo.GetVeterinarian(ctx, req.VeterinarianID); err != nil {
		return nil, err
	}

	day, err := time.Parse(dateLayout, req.Date)
	if err != nil {
		return nil, ErrInvalidDate
	}

	now := time.Now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	if day.Before(today) {
		return nil, ErrPastDate
	}

	reqStart, err := parseClock(req.StartTime)
	if err != nil {
		return nil, ErrInvalidClock
	}
	reqEnd, err := parseClock(req.EndTime)
	if err != nil {
		return nil, ErrInvalidClock
	}
	if reqEnd <= reqStart {
		return nil, ErrInvalidClock
	}

	if req.Reason == "" {
		return nil, ErrEmptyReason
	}

	windows, err := s.repo.ListWindows(ctx, req.VeterinarianID, dayName(day))
	if err != nil {
		return nil, fmt.Errorf("list availability windows: %w", err)
	}
	if len(windows) == 0 {
		return nil, ErrDayUnavailable
	}

	// The request must fit inside any one of the day's windows.
	contained := false
	for _, w := range windows {
		winStart, err := parseClock(w.StartTime)
		if err != nil {
			return nil, fmt.Errorf("window %s: %w", w.ID, err)
		}
		winEnd, err := parseClock(w.EndTime)
		if err != nil {
			return nil, fmt.Errorf("window %s: %w", w.ID, err)
		}
		if reqStart >= winStart && reqEnd <= winEnd {
			contained = true
			break
		}
	}
	if !contained {
		return nil, ErrOutsideWindow
	}

	var created *Appointment

	err = s.locker.WithBookingLock(ctx, req.VeterinarianID, req.Date, req.StartTime, func(lockCtx context.Context) error {
		booked, err := s.repo.ListBlockingAppointments(lockCtx, req.VeterinarianID, day)
		if err != nil {
			return fmt.Errorf("list appointments: %w", err)
		}
		for _, a := range booked {
			aStart, err := parseClock(a.StartTime)
			if err != nil {
				return fmt.Errorf("appointment %s: %w", a.ID, err)
			}
			aEnd, err := parseClock(a.EndTime)
			if err != nil {
				return fmt.Errorf("appointment %s: %w", a.ID, err)
			}
			if overlaps(reqStart, reqEnd, aStart, aEnd) {
				return ErrSlotTaken
			}
		}

		appt := &Appointment{
			ID:             uuid.New(),
			UserID:         req.UserID,
			VeterinarianID: req.VeterinarianID,
			PetID:          req.PetID,
			Date:           day,
			StartTime:      req.StartTime,
			EndTime:        req.EndTime,
			Status:         StatusPending,
			Reason:         req.Reason,
			Notes:          req.Notes,
		}
		if err := s.repo.CreateAppointment(lockCtx, appt); err != nil {
			return err
		}

		created = appt
		return nil
	})

	if err != nil {
		if errors.Is(err, redisclient.ErrLockNotAcquired) {
			return nil, ErrSlotContended
		}
		return nil, err
	}

	return created, nil
}

// UpdateStatus lets the owning veterinarian move an appointment to any
// valid status. Beyond the role check there is no transition guard;
// cancellation by the pet owner goes through Cancel instead.
func (s *Service) UpdateStatus(ctx context.Context, apptID, actorID uuid.UUID, status Status, notes *string) (*Appointment, error) {
	appt, err := s.repo.GetAppointment(ctx, apptID)
	if err != nil {
		return nil, err
	}
	if appt.VeterinarianID != actorID {
		return nil, ErrNotAppointmentVet
	}
	if !status.Valid() {
		return nil, ErrInvalidStatus
	}

	return s.repo.UpdateAppointmentStatus(ctx, apptID, status, notes)
}

// Cancel lets the owning user cancel an appointment that has not been
// completed yet.
func (s *Service) Cancel(ctx context.Context, apptID, actorID uuid.UUID) (*Appointment, error) {
	appt, err := s.repo.GetAppointment(ctx, apptID)
	if err != nil {
		return nil, err
	}
	if appt.UserID != actorID {
		return nil, ErrNotAppointmentOwner
	}
	if appt.Status == StatusCompleted {
		return nil, ErrCancelCompleted
	}

	return s.repo.UpdateAppointmentStatus(ctx, apptID, StatusCancelled, nil)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return s.repo.GetAppointment(ctx, id)
}

func (s *Service) ListForUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]Appointment, error) {
	limit, offset = clampPage(limit, offset)
	return s.repo.ListAppointmentsByUser(ctx, userID, limit, offset)
}

func (s *Service) ListForVet(ctx context.Context, vetID uuid.UUID, limit, offset int) ([]Appointment, error) {
	limit, offset = clampPage(limit, offset)
	return s.repo.ListAppointmentsByVet(ctx, vetID, limit, offset)
}

func clampPage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
