package review

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgRepository struct {
	pool *pgxpool.Pool
}

func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

func (r *PgRepository) UpsertReview(ctx context.Context, rev *Review) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO reviews (id, user_id, veterinarian_id, appointment_id, rating, comment, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, now(), now())
		ON CONFLICT (user_id, appointment_id) DO UPDATE
		SET rating = EXCLUDED.rating,
		    comment = EXCLUDED.comment,
		    updated_at = now()
		RETURNING id, created_at, updated_at
	`, rev.ID, rev.UserID, rev.VeterinarianID, rev.AppointmentID, rev.Rating, rev.Comment)

	return row.Scan(&rev.ID, &rev.CreatedAt, &rev.UpdatedAt)
}

func (r *PgRepository) GetReview(ctx context.Context, id uuid.UUID) (*Review, error) {
	var rev Review
	err := r.pool.QueryRow(ctx, `
		SELECT id, user_id, veterinarian_id, appointment_id, rating, comment, created_at, updated_at
		FROM reviews
		WHERE id = $1
	`, id).Scan(
		&rev.ID, &rev.UserID, &rev.VeterinarianID, &rev.AppointmentID,
		&rev.Rating, &rev.Comment, &rev.CreatedAt, &rev.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrReviewNotFound
		}
		return nil, err
	}

	return &rev, nil
}

func (r *PgRepository) DeleteReview(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM reviews WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrReviewNotFound
	}
	return nil
}

func (r *PgRepository) ListRatings(ctx context.Context, vetID uuid.UUID) ([]int, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT rating FROM reviews WHERE veterinarian_id = $1
	`, vetID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ratings []int
	for rows.Next() {
		var n int
		if err := rows.Scan(&n); err != nil {
			return nil, err
		}
		ratings = append(ratings, n)
	}

	return ratings, rows.Err()
}

func (r *PgRepository) SetVetAggregate(ctx context.Context, vetID uuid.UUID, averageRating float64, totalReviews int) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE users
		SET average_rating = $2,
		    total_reviews = $3,
		    updated_at = now()
		WHERE id = $1
	`, vetID, averageRating, totalReviews)
	return err
}
