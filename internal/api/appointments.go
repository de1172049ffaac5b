package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	redisclient "github.com/pawmates/pawmates-api/internal/redis"
	"github.com/pawmates/pawmates-api/internal/schedule"
)

func availabilityHandler(svc *schedule.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		vetID, err := uuid.Parse(chi.URLParam(r, "vetID"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_vet_id", "vetID must be a valid UUID")
			return
		}

		date := r.URL.Query().Get("date")
		if date == "" {
			writeError(w, http.StatusBadRequest, "missing_date", "date query parameter is required")
			return
		}

		sched, err := svc.AvailableSlots(r.Context(), vetID, date)
		if err != nil {
			handleScheduleError(w, err)
			return
		}

		resp := AvailabilityResponse{
			Date:           sched.Date,
			DayOfWeek:      sched.DayOfWeek,
			AvailableSlots: make([]SlotResponse, 0, len(sched.Slots)),
		}
		for _, s := range sched.Slots {
			resp.AvailableSlots = append(resp.AvailableSlots, SlotResponse{StartTime: s.StartTime, EndTime: s.EndTime})
		}

		writeJSON(w, http.StatusOK, resp)
	}
}

func bookAppointmentHandler(svc *schedule.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := actorID(w, r)
		if !ok {
			return
		}

		var req BookAppointmentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		vetID, err := uuid.Parse(req.VeterinarianID)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_vet_id", "veterinarian_id must be a valid UUID")
			return
		}

		var petID *uuid.UUID
		if req.PetID != nil {
			id, err := uuid.Parse(*req.PetID)
			if err != nil {
				writeError(w, http.StatusBadRequest, "invalid_pet_id", "pet_id must be a valid UUID")
				return
			}
			petID = &id
		}

		appt, err := svc.Book(r.Context(), schedule.BookingRequest{
			UserID:         userID,
			VeterinarianID: vetID,
			PetID:          petID,
			Date:           req.Date,
			StartTime:      req.StartTime,
			EndTime:        req.EndTime,
			Reason:         req.Reason,
			Notes:          req.Notes,
		})
		if err != nil {
			handleScheduleError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, toAppointmentResponse(appt))
	}
}

func updateStatusHandler(svc *schedule.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := actorID(w, r)
		if !ok {
			return
		}

		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_appointment_id", "id must be a valid UUID")
			return
		}

		var req UpdateStatusRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		appt, err := svc.UpdateStatus(r.Context(), id, actor, schedule.Status(req.Status), req.Notes)
		if err != nil {
			handleScheduleError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, toAppointmentResponse(appt))
	}
}

func cancelAppointmentHandler(svc *schedule.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := actorID(w, r)
		if !ok {
			return
		}

		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_appointment_id", "id must be a valid UUID")
			return
		}

		appt, err := svc.Cancel(r.Context(), id, actor)
		if err != nil {
			handleScheduleError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, toAppointmentResponse(appt))
	}
}

func getAppointmentHandler(svc *schedule.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_appointment_id", "id must be a valid UUID")
			return
		}

		appt, err := svc.Get(r.Context(), id)
		if err != nil {
			handleScheduleError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, toAppointmentResponse(appt))
	}
}

func listAppointmentsHandler(svc *schedule.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := actorID(w, r)
		if !ok {
			return
		}

		limit, offset := pageParams(r)
		appts, err := svc.ListForUser(r.Context(), userID, limit, offset)
		if err != nil {
			handleScheduleError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, toAppointmentList(appts))
	}
}

func listVetAppointmentsHandler(svc *schedule.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		vetID, err := uuid.Parse(chi.URLParam(r, "vetID"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_vet_id", "vetID must be a valid UUID")
			return
		}

		limit, offset := pageParams(r)
		appts, err := svc.ListForVet(r.Context(), vetID, limit, offset)
		if err != nil {
			handleScheduleError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, toAppointmentList(appts))
	}
}

func toAppointmentList(appts []schedule.Appointment) []AppointmentResponse {
	out := make([]AppointmentResponse, 0, len(appts))
	for i := range appts {
		out = append(out, toAppointmentResponse(&appts[i]))
	}
	return out
}

func pageParams(r *http.Request) (limit, offset int) {
	limit, _ = strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ = strconv.Atoi(r.URL.Query().Get("offset"))
	return limit, offset
}

func handleScheduleError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, schedule.ErrVetNotFound):
		writeError(w, http.StatusNotFound, "vet_not_found", err.Error())
	case errors.Is(err, schedule.ErrAppointmentNotFound):
		writeError(w, http.StatusNotFound, "appointment_not_found", err.Error())
	case errors.Is(err, schedule.ErrNotAppointmentVet),
		errors.Is(err, schedule.ErrNotAppointmentOwner):
		writeError(w, http.StatusForbidden, "forbidden", err.Error())
	case errors.Is(err, schedule.ErrInvalidDate),
		errors.Is(err, schedule.ErrPastDate),
		errors.Is(err, schedule.ErrInvalidClock),
		errors.Is(err, schedule.ErrEmptyReason),
		errors.Is(err, schedule.ErrDayUnavailable),
		errors.Is(err, schedule.ErrOutsideWindow),
		errors.Is(err, schedule.ErrInvalidStatus),
		errors.Is(err, schedule.ErrCancelCompleted):
		writeError(w, http.StatusBadRequest, "invalid_booking", err.Error())
	case errors.Is(err, schedule.ErrSlotTaken):
		// Semantically a conflict, transported as 400 for API parity.
		writeError(w, http.StatusBadRequest, "slot_already_booked", err.Error())
	case errors.Is(err, schedule.ErrSlotContended),
		errors.Is(err, redisclient.ErrLockNotAcquired):
		writeError(w, http.StatusConflict, "slot_being_booked", "slot is currently being booked, please retry shortly")
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
	}
}
