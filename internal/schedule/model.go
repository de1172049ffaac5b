package schedule

import (
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusScheduled Status = "scheduled"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusScheduled, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// dayNames is indexed by time.Weekday (Sunday = 0).
var dayNames = [...]string{
	"sunday",
	"monday",
	"tuesday",
	"wednesday",
	"thursday",
	"friday",
	"saturday",
}

func dayName(t time.Time) string {
	return dayNames[int(t.Weekday())]
}

type Veterinarian struct {
	ID            uuid.UUID
	Name          string
	Specialty     *string
	AverageRating float64
	TotalReviews  int
}

// AvailabilityWindow is one weekly template entry on a vet's profile.
// Times are zero-padded 24h "HH:MM" strings. A day may carry several
// windows; they are walked independently and never merged.
type AvailabilityWindow struct {
	ID             uuid.UUID
	VeterinarianID uuid.UUID
	Day            string
	StartTime      string
	EndTime        string
	IsAvailable    bool
}

type Appointment struct {
	ID             uuid.UUID
	UserID         uuid.UUID
	VeterinarianID uuid.UUID
	PetID          *uuid.UUID
	Date           time.Time // calendar date, midnight UTC
	StartTime      string
	EndTime        string
	Status         Status
	Reason         string
	Notes          *string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// SlotRange is a bookable interval offered to callers.
type SlotRange struct {
	StartTime string
	EndTime   string
}

// DaySchedule is the availability result for one vet on one date.
type DaySchedule struct {
	Date      string
	DayOfWeek string
	Slots     []SlotRange
}
