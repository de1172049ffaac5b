package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Migrate applies the schema in order. Statements are idempotent so the
// server can run this on every startup.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id UUID PRIMARY KEY,
			name TEXT NOT NULL,
			email TEXT UNIQUE NOT NULL,
			role TEXT NOT NULL CHECK (role IN ('adopter', 'shelter', 'veterinarian')),
			specialty TEXT,
			average_rating DOUBLE PRECISION NOT NULL DEFAULT 0,
			total_reviews INT NOT NULL DEFAULT 0,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);`,
		`CREATE TABLE IF NOT EXISTS availability_slots (
			id UUID PRIMARY KEY,
			veterinarian_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			day TEXT NOT NULL CHECK (day IN ('sunday','monday','tuesday','wednesday','thursday','friday','saturday')),
			start_time TEXT NOT NULL,
			end_time TEXT NOT NULL,
			is_available BOOLEAN NOT NULL DEFAULT TRUE
		);`,
		`CREATE INDEX IF NOT EXISTS idx_availability_vet_day
			ON availability_slots (veterinarian_id, day);`,
		`CREATE TABLE IF NOT EXISTS appointments (
			id UUID PRIMARY KEY,
			user_id UUID NOT NULL REFERENCES users(id),
			veterinarian_id UUID NOT NULL REFERENCES users(id),
			pet_id UUID,
			date DATE NOT NULL,
			start_time TEXT NOT NULL,
			end_time TEXT NOT NULL,
			status TEXT NOT NULL CHECK (status IN ('pending','scheduled','completed','cancelled')),
			reason TEXT NOT NULL,
			notes TEXT,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);`,
		// The true arbiter for double bookings. Partial so a cancelled
		// or completed appointment frees its slot for rebooking; the
		// in-service overlap pre-check is best effort only.
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_appointments_vet_slot
			ON appointments (veterinarian_id, date, start_time)
			WHERE status IN ('pending', 'scheduled');`,
		`CREATE INDEX IF NOT EXISTS idx_appointments_user_date
			ON appointments (user_id, date);`,
		`CREATE TABLE IF NOT EXISTS reviews (
			id UUID PRIMARY KEY,
			user_id UUID NOT NULL REFERENCES users(id),
			veterinarian_id UUID NOT NULL REFERENCES users(id),
			appointment_id UUID NOT NULL REFERENCES appointments(id),
			rating INT NOT NULL CHECK (rating BETWEEN 1 AND 5),
			comment TEXT,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			UNIQUE (user_id, appointment_id)
		);`,
		`CREATE TABLE IF NOT EXISTS forum_posts (
			id UUID PRIMARY KEY,
			author_id UUID NOT NULL REFERENCES users(id),
			title TEXT NOT NULL,
			content TEXT NOT NULL,
			upvote_count INT NOT NULL DEFAULT 0,
			downvote_count INT NOT NULL DEFAULT 0,
			last_activity_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);`,
		`CREATE TABLE IF NOT EXISTS forum_comments (
			id UUID PRIMARY KEY,
			post_id UUID NOT NULL REFERENCES forum_posts(id) ON DELETE CASCADE,
			author_id UUID NOT NULL REFERENCES users(id),
			parent_comment_id UUID REFERENCES forum_comments(id),
			content TEXT NOT NULL,
			upvote_count INT NOT NULL DEFAULT 0,
			downvote_count INT NOT NULL DEFAULT 0,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);`,
		`CREATE TABLE IF NOT EXISTS forum_votes (
			id UUID PRIMARY KEY,
			target_type TEXT NOT NULL CHECK (target_type IN ('post','comment')),
			target_id UUID NOT NULL,
			user_id UUID NOT NULL REFERENCES users(id),
			vote_type TEXT NOT NULL CHECK (vote_type IN ('upvote','downvote')),
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			UNIQUE (target_type, target_id, user_id)
		);`,
		`CREATE TABLE IF NOT EXISTS forum_user_activity (
			user_id UUID PRIMARY KEY REFERENCES users(id),
			upvotes_given INT NOT NULL DEFAULT 0,
			downvotes_given INT NOT NULL DEFAULT 0,
			upvotes_received INT NOT NULL DEFAULT 0,
			downvotes_received INT NOT NULL DEFAULT 0,
			reputation_score INT NOT NULL DEFAULT 0,
			posts_created INT NOT NULL DEFAULT 0,
			comments_created INT NOT NULL DEFAULT 0,
			last_post_at TIMESTAMPTZ,
			last_vote_at TIMESTAMPTZ
		);`,
	}

	for i, s := range stmts {
		if _, err := pool.Exec(ctx, s); err != nil {
			return fmt.Errorf("migrate statement %d: %w", i, err)
		}
	}
	return nil
}
