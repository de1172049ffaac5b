package schedule

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/pawmates/pawmates-api/internal/config"
)

// memRepo is an in-memory Repository for service tests. It enforces
// the same slot uniqueness rule as the partial unique index: at most
// one pending or scheduled appointment per (vet, date, start time).
type memRepo struct {
	mu      sync.Mutex
	vets    map[uuid.UUID]*Veterinarian
	windows []AvailabilityWindow
	appts   map[uuid.UUID]*Appointment
}

func newMemRepo() *memRepo {
	return &memRepo{
		vets:  make(map[uuid.UUID]*Veterinarian),
		appts: make(map[uuid.UUID]*Appointment),
	}
}

func (r *memRepo) GetVeterinarian(ctx context.Context, id uuid.UUID) (*Veterinarian, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.vets[id]
	if !ok {
		return nil, ErrVetNotFound
	}
	out := *v
	return &out, nil
}

func (r *memRepo) ListWindows(ctx context.Context, vetID uuid.UUID, day string) ([]AvailabilityWindow, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []AvailabilityWindow
	for _, w := range r.windows {
		if w.VeterinarianID == vetID && w.Day == day && w.IsAvailable {
			out = append(out, w)
		}
	}
	return out, nil
}

func (r *memRepo) ListBlockingAppointments(ctx context.Context, vetID uuid.UUID, date time.Time) ([]Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Appointment
	for _, a := range r.appts {
		if a.VeterinarianID == vetID && a.Date.Equal(date) &&
			(a.Status == StatusPending || a.Status == StatusScheduled) {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (r *memRepo) CreateAppointment(ctx context.Context, appt *Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.appts {
		if a.VeterinarianID == appt.VeterinarianID && a.Date.Equal(appt.Date) &&
			a.StartTime == appt.StartTime &&
			(a.Status == StatusPending || a.Status == StatusScheduled) {
			return ErrSlotTaken
		}
	}
	now := time.Now()
	appt.CreatedAt = now
	appt.UpdatedAt = now
	stored := *appt
	r.appts[appt.ID] = &stored
	return nil
}

func (r *memRepo) GetAppointment(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.appts[id]
	if !ok {
		return nil, ErrAppointmentNotFound
	}
	out := *a
	return &out, nil
}

func (r *memRepo) UpdateAppointmentStatus(ctx context.Context, id uuid.UUID, status Status, notes *string) (*Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.appts[id]
	if !ok {
		return nil, ErrAppointmentNotFound
	}
	a.Status = status
	if notes != nil {
		a.Notes = notes
	}
	a.UpdatedAt = time.Now()
	out := *a
	return &out, nil
}

func (r *memRepo) ListAppointmentsByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Appointment
	for _, a := range r.appts {
		if a.UserID == userID {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (r *memRepo) ListAppointmentsByVet(ctx context.Context, vetID uuid.UUID, limit, offset int) ([]Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Appointment
	for _, a := range r.appts {
		if a.VeterinarianID == vetID {
			out = append(out, *a)
		}
	}
	return out, nil
}

// memLocker serializes critical sections the way the Redis lock does.
type memLocker struct {
	mu sync.Mutex
}

func (l *memLocker) WithBookingLock(ctx context.Context, vetID uuid.UUID, date, startTime string, fn func(ctx context.Context) error) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return fn(ctx)
}

func newTestService(repo *memRepo) *Service {
	return NewService(repo, &memLocker{}, config.Config{SlotDuration: 30 * time.Minute})
}

// nextWeekday returns the next future date falling on the given
// weekday, as YYYY-MM-DD, at least a week out so the past-date check
// never interferes.
func nextWeekday(wd time.Weekday) string {
	d := time.Now().UTC().AddDate(0, 0, 7)
	for d.Weekday() != wd {
		d = d.AddDate(0, 0, 1)
	}
	return d.Format("2006-01-02")
}

func addVet(r *memRepo) uuid.UUID {
	id := uuid.New()
	r.vets[id] = &Veterinarian{ID: id, Name: "Dr. Reyes"}
	return id
}

func addWindow(r *memRepo, vetID uuid.UUID, day, start, end string) {
	r.windows = append(r.windows, AvailabilityWindow{
		ID:             uuid.New(),
		VeterinarianID: vetID,
		Day:            day,
		StartTime:      start,
		EndTime:        end,
		IsAvailable:    true,
	})
}

func mustBook(t *testing.T, svc *Service, req BookingRequest) *Appointment {
	t.Helper()
	appt, err := svc.Book(context.Background(), req)
	if err != nil {
		t.Fatalf("book: %v", err)
	}
	return appt
}

func bookingReq(vetID uuid.UUID, date, start, end string) BookingRequest {
	return BookingRequest{
		UserID:         uuid.New(),
		VeterinarianID: vetID,
		Date:           date,
		StartTime:      start,
		EndTime:        end,
		Reason:         "annual checkup",
	}
}

// ----- availability -----

func TestAvailableSlotsFullWindow(t *testing.T) {
	repo := newMemRepo()
	vet := addVet(repo)
	addWindow(repo, vet, "monday", "09:00", "10:00")
	svc := newTestService(repo)

	sched, err := svc.AvailableSlots(context.Background(), vet, nextWeekday(time.Monday))
	if err != nil {
		t.Fatalf("available slots: %v", err)
	}

	if sched.DayOfWeek != "monday" {
		t.Errorf("day of week = %q, want monday", sched.DayOfWeek)
	}
	want := []SlotRange{
		{StartTime: "09:00", EndTime: "09:30"},
		{StartTime: "09:30", EndTime: "10:00"},
	}
	assertSlots(t, sched.Slots, want)
}

func TestAvailableSlotsSubtractsPendingAppointment(t *testing.T) {
	repo := newMemRepo()
	vet := addVet(repo)
	addWindow(repo, vet, "monday", "09:00", "10:00")
	svc := newTestService(repo)

	date := nextWeekday(time.Monday)
	mustBook(t, svc, bookingReq(vet, date, "09:00", "09:30"))

	sched, err := svc.AvailableSlots(context.Background(), vet, date)
	if err != nil {
		t.Fatalf("available slots: %v", err)
	}
	assertSlots(t, sched.Slots, []SlotRange{{StartTime: "09:30", EndTime: "10:00"}})
}

func TestAvailableSlotsIgnoresCancelledAndCompleted(t *testing.T) {
	repo := newMemRepo()
	vet := addVet(repo)
	addWindow(repo, vet, "monday", "09:00", "10:00")
	svc := newTestService(repo)

	date := nextWeekday(time.Monday)
	for i, status := range []Status{StatusCancelled, StatusCompleted} {
		start := []string{"09:00", "09:30"}[i]
		appt := mustBook(t, svc, bookingReq(vet, date, start, formatClockAfter(t, start, 30)))
		if _, err := repo.UpdateAppointmentStatus(context.Background(), appt.ID, status, nil); err != nil {
			t.Fatal(err)
		}
	}

	sched, err := svc.AvailableSlots(context.Background(), vet, date)
	if err != nil {
		t.Fatalf("available slots: %v", err)
	}
	want := []SlotRange{
		{StartTime: "09:00", EndTime: "09:30"},
		{StartTime: "09:30", EndTime: "10:00"},
	}
	assertSlots(t, sched.Slots, want)
}

func TestAvailableSlotsDropsPartialTrailingSlot(t *testing.T) {
	repo := newMemRepo()
	vet := addVet(repo)
	addWindow(repo, vet, "monday", "09:00", "09:45")
	svc := newTestService(repo)

	sched, err := svc.AvailableSlots(context.Background(), vet, nextWeekday(time.Monday))
	if err != nil {
		t.Fatalf("available slots: %v", err)
	}
	assertSlots(t, sched.Slots, []SlotRange{{StartTime: "09:00", EndTime: "09:30"}})
}

func TestAvailableSlotsMultipleWindowsConcatenated(t *testing.T) {
	repo := newMemRepo()
	vet := addVet(repo)
	addWindow(repo, vet, "monday", "09:00", "10:00")
	addWindow(repo, vet, "monday", "14:00", "15:00")
	svc := newTestService(repo)

	sched, err := svc.AvailableSlots(context.Background(), vet, nextWeekday(time.Monday))
	if err != nil {
		t.Fatalf("available slots: %v", err)
	}
	want := []SlotRange{
		{StartTime: "09:00", EndTime: "09:30"},
		{StartTime: "09:30", EndTime: "10:00"},
		{StartTime: "14:00", EndTime: "14:30"},
		{StartTime: "14:30", EndTime: "15:00"},
	}
	assertSlots(t, sched.Slots, want)
}

func TestAvailableSlotsEmptyDay(t *testing.T) {
	repo := newMemRepo()
	vet := addVet(repo)
	addWindow(repo, vet, "monday", "09:00", "10:00")
	svc := newTestService(repo)

	sched, err := svc.AvailableSlots(context.Background(), vet, nextWeekday(time.Tuesday))
	if err != nil {
		t.Fatalf("available slots: %v", err)
	}
	if len(sched.Slots) != 0 {
		t.Fatalf("expected no slots, got %v", sched.Slots)
	}
}

func TestAvailableSlotsVetNotFound(t *testing.T) {
	svc := newTestService(newMemRepo())

	_, err := svc.AvailableSlots(context.Background(), uuid.New(), nextWeekday(time.Monday))
	if !errors.Is(err, ErrVetNotFound) {
		t.Fatalf("expected ErrVetNotFound, got %v", err)
	}
}

// ----- booking -----

func TestBookOutsideAvailability(t *testing.T) {
	repo := newMemRepo()
	vet := addVet(repo)
	addWindow(repo, vet, "monday", "09:00", "10:00")
	svc := newTestService(repo)

	_, err := svc.Book(context.Background(), bookingReq(vet, nextWeekday(time.Monday), "08:30", "09:00"))
	if !errors.Is(err, ErrOutsideWindow) {
		t.Fatalf("expected ErrOutsideWindow, got %v", err)
	}
}

func TestBookSecondWindowAccepted(t *testing.T) {
	repo := newMemRepo()
	vet := addVet(repo)
	addWindow(repo, vet, "monday", "09:00", "10:00")
	addWindow(repo, vet, "monday", "14:00", "17:00")
	svc := newTestService(repo)

	appt := mustBook(t, svc, bookingReq(vet, nextWeekday(time.Monday), "14:30", "15:00"))
	if appt.Status != StatusPending {
		t.Fatalf("status = %s, want pending", appt.Status)
	}
}

func TestBookSlotTaken(t *testing.T) {
	repo := newMemRepo()
	vet := addVet(repo)
	addWindow(repo, vet, "monday", "09:00", "10:00")
	svc := newTestService(repo)

	date := nextWeekday(time.Monday)
	mustBook(t, svc, bookingReq(vet, date, "09:00", "09:30"))

	_, err := svc.Book(context.Background(), bookingReq(vet, date, "09:00", "09:30"))
	if !errors.Is(err, ErrSlotTaken) {
		t.Fatalf("expected ErrSlotTaken, got %v", err)
	}
}

func TestBookOverlappingNotIdentical(t *testing.T) {
	repo := newMemRepo()
	vet := addVet(repo)
	addWindow(repo, vet, "monday", "09:00", "12:00")
	svc := newTestService(repo)

	date := nextWeekday(time.Monday)
	mustBook(t, svc, bookingReq(vet, date, "09:00", "10:00"))

	// Different start time, but overlapping the booked hour.
	_, err := svc.Book(context.Background(), bookingReq(vet, date, "09:30", "10:00"))
	if !errors.Is(err, ErrSlotTaken) {
		t.Fatalf("expected ErrSlotTaken, got %v", err)
	}
}

func TestBookBackToBackAllowed(t *testing.T) {
	repo := newMemRepo()
	vet := addVet(repo)
	addWindow(repo, vet, "monday", "09:00", "12:00")
	svc := newTestService(repo)

	date := nextWeekday(time.Monday)
	mustBook(t, svc, bookingReq(vet, date, "09:00", "09:30"))
	mustBook(t, svc, bookingReq(vet, date, "09:30", "10:00"))
}

func TestBookUniqueIndexIsAuthoritative(t *testing.T) {
	// Even if the pre-check misses (no blocking rows listed), the
	// storage uniqueness constraint still rejects the duplicate and
	// the caller sees the same error.
	repo := newMemRepo()
	vet := addVet(repo)
	addWindow(repo, vet, "monday", "09:00", "10:00")

	date := nextWeekday(time.Monday)
	day, _ := time.Parse("2006-01-02", date)
	seed := &Appointment{
		ID:             uuid.New(),
		UserID:         uuid.New(),
		VeterinarianID: vet,
		Date:           day,
		StartTime:      "09:00",
		EndTime:        "09:30",
		Status:         StatusPending,
		Reason:         "checkup",
	}
	if err := repo.CreateAppointment(context.Background(), seed); err != nil {
		t.Fatal(err)
	}

	dup := *seed
	dup.ID = uuid.New()
	if err := repo.CreateAppointment(context.Background(), &dup); !errors.Is(err, ErrSlotTaken) {
		t.Fatalf("expected ErrSlotTaken from storage, got %v", err)
	}
}

func TestBookValidationFailures(t *testing.T) {
	repo := newMemRepo()
	vet := addVet(repo)
	addWindow(repo, vet, "monday", "09:00", "10:00")
	svc := newTestService(repo)

	monday := nextWeekday(time.Monday)

	tests := []struct {
		name string
		req  BookingRequest
		want error
	}{
		{"unknown vet", bookingReq(uuid.New(), monday, "09:00", "09:30"), ErrVetNotFound},
		{"bad date", bookingReq(vet, "31-12-2026", "09:00", "09:30"), ErrInvalidDate},
		{"past date", bookingReq(vet, "2020-01-06", "09:00", "09:30"), ErrPastDate},
		{"bad clock", bookingReq(vet, monday, "9am", "10am"), ErrInvalidClock},
		{"end before start", bookingReq(vet, monday, "09:30", "09:00"), ErrInvalidClock},
		{"day off", bookingReq(vet, nextWeekday(time.Sunday), "09:00", "09:30"), ErrDayUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Book(context.Background(), tt.req)
			if !errors.Is(err, tt.want) {
				t.Fatalf("got %v, want %v", err, tt.want)
			}
		})
	}
}

func TestBookEmptyReason(t *testing.T) {
	repo := newMemRepo()
	vet := addVet(repo)
	addWindow(repo, vet, "monday", "09:00", "10:00")
	svc := newTestService(repo)

	req := bookingReq(vet, nextWeekday(time.Monday), "09:00", "09:30")
	req.Reason = ""
	if _, err := svc.Book(context.Background(), req); !errors.Is(err, ErrEmptyReason) {
		t.Fatalf("expected ErrEmptyReason, got %v", err)
	}
}

// ----- lifecycle -----

func TestUpdateStatus(t *testing.T) {
	repo := newMemRepo()
	vet := addVet(repo)
	addWindow(repo, vet, "monday", "09:00", "10:00")
	svc := newTestService(repo)

	appt := mustBook(t, svc, bookingReq(vet, nextWeekday(time.Monday), "09:00", "09:30"))

	if _, err := svc.UpdateStatus(context.Background(), appt.ID, uuid.New(), StatusScheduled, nil); !errors.Is(err, ErrNotAppointmentVet) {
		t.Fatalf("expected ErrNotAppointmentVet, got %v", err)
	}

	if _, err := svc.UpdateStatus(context.Background(), appt.ID, vet, Status("approved"), nil); !errors.Is(err, ErrInvalidStatus) {
		t.Fatalf("expected ErrInvalidStatus, got %v", err)
	}

	updated, err := svc.UpdateStatus(context.Background(), appt.ID, vet, StatusScheduled, nil)
	if err != nil {
		t.Fatalf("update status: %v", err)
	}
	if updated.Status != StatusScheduled {
		t.Fatalf("status = %s, want scheduled", updated.Status)
	}
}

func TestCancel(t *testing.T) {
	repo := newMemRepo()
	vet := addVet(repo)
	addWindow(repo, vet, "monday", "09:00", "10:00")
	svc := newTestService(repo)

	appt := mustBook(t, svc, bookingReq(vet, nextWeekday(time.Monday), "09:00", "09:30"))

	if _, err := svc.Cancel(context.Background(), appt.ID, uuid.New()); !errors.Is(err, ErrNotAppointmentOwner) {
		t.Fatalf("expected ErrNotAppointmentOwner, got %v", err)
	}

	cancelled, err := svc.Cancel(context.Background(), appt.ID, appt.UserID)
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if cancelled.Status != StatusCancelled {
		t.Fatalf("status = %s, want cancelled", cancelled.Status)
	}
}

func TestCancelCompletedFails(t *testing.T) {
	repo := newMemRepo()
	vet := addVet(repo)
	addWindow(repo, vet, "monday", "09:00", "10:00")
	svc := newTestService(repo)

	appt := mustBook(t, svc, bookingReq(vet, nextWeekday(time.Monday), "09:00", "09:30"))
	if _, err := svc.UpdateStatus(context.Background(), appt.ID, vet, StatusCompleted, nil); err != nil {
		t.Fatal(err)
	}

	if _, err := svc.Cancel(context.Background(), appt.ID, appt.UserID); !errors.Is(err, ErrCancelCompleted) {
		t.Fatalf("expected ErrCancelCompleted, got %v", err)
	}
}

func TestCancelScheduledSucceeds(t *testing.T) {
	repo := newMemRepo()
	vet := addVet(repo)
	addWindow(repo, vet, "monday", "09:00", "10:00")
	svc := newTestService(repo)

	appt := mustBook(t, svc, bookingReq(vet, nextWeekday(time.Monday), "09:00", "09:30"))
	if _, err := svc.UpdateStatus(context.Background(), appt.ID, vet, StatusScheduled, nil); err != nil {
		t.Fatal(err)
	}

	cancelled, err := svc.Cancel(context.Background(), appt.ID, appt.UserID)
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if cancelled.Status != StatusCancelled {
		t.Fatalf("status = %s, want cancelled", cancelled.Status)
	}
}

// ----- helpers -----

func assertSlots(t *testing.T, got, want []SlotRange) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("got %d slots %v, want %d %v", len(got), got, len(want), want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("slot %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func formatClockAfter(t *testing.T, start string, mins int) string {
	t.Helper()
	m, err := parseClock(start)
	if err != nil {
		t.Fatal(err)
	}
	return formatClock(m + mins)
}
