package api

import (
	"time"

	"github.com/google/uuid"

	"github.com/pawmates/pawmates-api/internal/schedule"
)

type SlotResponse struct {
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

type AvailabilityResponse struct {
	Date           string         `json:"date"`
	DayOfWeek      string         `json:"day_of_week"`
	AvailableSlots []SlotResponse `json:"available_slots"`
}

type BookAppointmentRequest struct {
	VeterinarianID string  `json:"veterinarian_id"`
	PetID          *string `json:"pet_id,omitempty"`
	Date           string  `json:"date"`
	StartTime      string  `json:"start_time"`
	EndTime        string  `json:"end_time"`
	Reason         string  `json:"reason"`
	Notes          *string `json:"notes,omitempty"`
}

type UpdateStatusRequest struct {
	Status string  `json:"status"`
	Notes  *string `json:"notes,omitempty"`
}

type AppointmentResponse struct {
	ID             uuid.UUID  `json:"id"`
	UserID         uuid.UUID  `json:"user_id"`
	VeterinarianID uuid.UUID  `json:"veterinarian_id"`
	PetID          *uuid.UUID `json:"pet_id,omitempty"`
	Date           string     `json:"date"`
	StartTime      string     `json:"start_time"`
	EndTime        string     `json:"end_time"`
	Status         string     `json:"status"`
	Reason         string     `json:"reason"`
	Notes          *string    `json:"notes,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

func toAppointmentResponse(a *schedule.Appointment) AppointmentResponse {
	return AppointmentResponse{
		ID:             a.ID,
		UserID:         a.UserID,
		VeterinarianID: a.VeterinarianID,
		PetID:          a.PetID,
		Date:           a.Date.Format("2006-01-02"),
		StartTime:      a.StartTime,
		EndTime:        a.EndTime,
		Status:         string(a.Status),
		Reason:         a.Reason,
		Notes:          a.Notes,
		CreatedAt:      a.CreatedAt,
		UpdatedAt:      a.UpdatedAt,
	}
}

type VoteRequest struct {
	VoteType string `json:"vote_type"`
}

type VoteResponse struct {
	UpvoteCount   int `json:"upvote_count"`
	DownvoteCount int `json:"downvote_count"`
}

type ActivityResponse struct {
	UserID            uuid.UUID  `json:"user_id"`
	UpvotesGiven      int        `json:"upvotes_given"`
	DownvotesGiven    int        `json:"downvotes_given"`
	UpvotesReceived   int        `json:"upvotes_received"`
	DownvotesReceived int        `json:"downvotes_received"`
	ReputationScore   int        `json:"reputation_score"`
	PostsCreated      int        `json:"posts_created"`
	CommentsCreated   int        `json:"comments_created"`
	LastPostAt        *time.Time `json:"last_post_at,omitempty"`
	LastVoteAt        *time.Time `json:"last_vote_at,omitempty"`
}

type SubmitReviewRequest struct {
	Rating  int     `json:"rating"`
	Comment *string `json:"comment,omitempty"`
}

type ReviewResponse struct {
	ID             uuid.UUID `json:"id"`
	UserID         uuid.UUID `json:"user_id"`
	VeterinarianID uuid.UUID `json:"veterinarian_id"`
	AppointmentID  uuid.UUID `json:"appointment_id"`
	Rating         int       `json:"rating"`
	Comment        *string   `json:"comment,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
