package schedule

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgRepository struct {
	pool *pgxpool.Pool
}

func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

// Helpers

func scanVeterinarian(row pgx.Row) (*Veterinarian, error) {
	var v Veterinarian
	var specialty *string

	err := row.Scan(
		&v.ID,
		&v.Name,
		&specialty,
		&v.AverageRating,
		&v.TotalReviews,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrVetNotFound
		}
		return nil, err
	}

	v.Specialty = specialty
	return &v, nil
}

func scanAppointment(row pgx.Row) (*Appointment, error) {
	var a Appointment
	var petID *uuid.UUID
	var notes *string

	err := row.Scan(
		&a.ID,
		&a.UserID,
		&a.VeterinarianID,
		&petID,
		&a.Date,
		&a.StartTime,
		&a.EndTime,
		&a.Status,
		&a.Reason,
		&notes,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAppointmentNotFound
		}
		return nil, err
	}

	a.PetID = petID
	a.Notes = notes
	return &a, nil
}

const appointmentColumns = `id, user_id, veterinarian_id, pet_id, date, start_time, end_time, status, reason, notes, created_at, updated_at`

// Interface methods

func (r *PgRepository) GetVeterinarian(ctx context.Context, id uuid.UUID) (*Veterinarian, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, name, specialty, average_rating, total_reviews
		FROM users
		WHERE id = $1 AND role = 'veterinarian'
	`, id)
	return scanVeterinarian(row)
}

func (r *PgRepository) ListWindows(ctx context.Context, vetID uuid.UUID, day string) ([]AvailabilityWindow, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, veterinarian_id, day, start_time, end_time, is_available
		FROM availability_slots
		WHERE veterinarian_id = $1 AND day = $2 AND is_available
		ORDER BY start_time
	`, vetID, day)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []AvailabilityWindow
	for rows.Next() {
		var w AvailabilityWindow
		err := rows.Scan(&w.ID, &w.VeterinarianID, &w.Day, &w.StartTime, &w.EndTime, &w.IsAvailable)
		if err != nil {
			return nil, err
		}
		result = append(result, w)
	}

	return result, rows.Err()
}

func (r *PgRepository) ListBlockingAppointments(ctx context.Context, vetID uuid.UUID, date time.Time) ([]Appointment, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE veterinarian_id = $1
		  AND date = $2
		  AND status IN ('pending', 'scheduled')
		ORDER BY start_time
	`, vetID, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Appointment
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *a)
	}

	return result, rows.Err()
}

func (r *PgRepository) CreateAppointment(ctx context.Context, appt *Appointment) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO appointments (id, user_id, veterinarian_id, pet_id, date, start_time, end_time, status, reason, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, now(), now())
		RETURNING `+appointmentColumns+`
	`, appt.ID, appt.UserID, appt.VeterinarianID, appt.PetID, appt.Date,
		appt.StartTime, appt.EndTime, appt.Status, appt.Reason, appt.Notes)

	created, err := scanAppointment(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			// Lost the race on (veterinarian_id, date, start_time).
			return ErrSlotTaken
		}
		return err
	}

	*appt = *created
	return nil
}

func (r *PgRepository) GetAppointment(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE id = $1
	`, id)
	return scanAppointment(row)
}

func (r *PgRepository) UpdateAppointmentStatus(ctx context.Context, id uuid.UUID, status Status, notes *string) (*Appointment, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE appointments
		SET status = $2,
		    notes = COALESCE($3, notes),
		    updated_at = now()
		WHERE id = $1
		RETURNING `+appointmentColumns+`
	`, id, status, notes)

	return scanAppointment(row)
}

func (r *PgRepository) ListAppointmentsByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]Appointment, error) {
	return r.listAppointments(ctx, `user_id`, userID, limit, offset)
}

func (r *PgRepository) ListAppointmentsByVet(ctx context.Context, vetID uuid.UUID, limit, offset int) ([]Appointment, error) {
	return r.listAppointments(ctx, `veterinarian_id`, vetID, limit, offset)
}

func (r *PgRepository) listAppointments(ctx context.Context, column string, id uuid.UUID, limit, offset int) ([]Appointment, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE `+column+` = $1
		ORDER BY date DESC, start_time DESC
		LIMIT $2 OFFSET $3
	`, id, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Appointment
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *a)
	}

	return result, rows.Err()
}
