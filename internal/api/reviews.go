package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/pawmates/pawmates-api/internal/review"
	"github.com/pawmates/pawmates-api/internal/schedule"
)

func submitReviewHandler(svc *review.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := actorID(w, r)
		if !ok {
			return
		}

		apptID, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_appointment_id", "id must be a valid UUID")
			return
		}

		var req SubmitReviewRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		rev, err := svc.Submit(r.Context(), userID, apptID, req.Rating, req.Comment)
		if err != nil {
			handleReviewError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, ReviewResponse{
			ID:             rev.ID,
			UserID:         rev.UserID,
			VeterinarianID: rev.VeterinarianID,
			AppointmentID:  rev.AppointmentID,
			Rating:         rev.Rating,
			Comment:        rev.Comment,
			CreatedAt:      rev.CreatedAt,
			UpdatedAt:      rev.UpdatedAt,
		})
	}
}

func deleteReviewHandler(svc *review.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := actorID(w, r)
		if !ok {
			return
		}

		reviewID, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_review_id", "id must be a valid UUID")
			return
		}

		if err := svc.Delete(r.Context(), userID, reviewID); err != nil {
			handleReviewError(w, err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

func handleReviewError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, review.ErrReviewNotFound):
		writeError(w, http.StatusNotFound, "review_not_found", err.Error())
	case errors.Is(err, schedule.ErrAppointmentNotFound):
		writeError(w, http.StatusNotFound, "appointment_not_found", err.Error())
	case errors.Is(err, review.ErrNotYourAppointment),
		errors.Is(err, review.ErrNotYourReview):
		writeError(w, http.StatusForbidden, "forbidden", err.Error())
	case errors.Is(err, review.ErrInvalidRating),
		errors.Is(err, review.ErrNotCompleted):
		writeError(w, http.StatusBadRequest, "invalid_review", err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
	}
}
