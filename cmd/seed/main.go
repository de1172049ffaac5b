package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pawmates/pawmates-api/internal/db"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("seed starting")

	dsn := os.Getenv("POSTGRES_DSN")
	if dsn == "" {
		log.Fatal("POSTGRES_DSN is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := db.ConnectPostgres(ctx, dsn)
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer pool.Close()

	if err := db.Migrate(context.Background(), pool); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	gofakeit.Seed(time.Now().UnixNano())

	vets, err := seedVeterinarians(context.Background(), pool, 50)
	if err != nil {
		log.Fatalf("seed veterinarians: %v", err)
	}
	adopters, err := seedAdopters(context.Background(), pool, 2000)
	if err != nil {
		log.Fatalf("seed adopters: %v", err)
	}
	if err := seedForum(context.Background(), pool, adopters, 300); err != nil {
		log.Fatalf("seed forum: %v", err)
	}

	log.Printf("seed complete: %d vets, %d adopters", len(vets), len(adopters))
}

func seedVeterinarians(ctx context.Context, pool *pgxpool.Pool, count int) ([]uuid.UUID, error) {
	log.Printf("seeding %d veterinarians", count)

	specialties := []string{
		"Small Animal Medicine",
		"Feline Medicine",
		"Exotic Pets",
		"Dermatology",
		"Orthopedics",
		"Dentistry",
		"Behavioral Medicine",
		"Emergency & Critical Care",
	}

	// Typical weekday windows; some vets also take Saturday mornings.
	weekdays := []string{"monday", "tuesday", "wednesday", "thursday", "friday"}

	tx, err := pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	ids := make([]uuid.UUID, 0, count)
	for i := 0; i < count; i++ {
		id := uuid.New()
		name := "Dr. " + gofakeit.Name()
		spec := specialties[gofakeit.Number(0, len(specialties)-1)]

		_, err := tx.Exec(ctx, `
			INSERT INTO users (id, name, email, role, specialty, created_at, updated_at)
			VALUES ($1, $2, $3, 'veterinarian', $4, now(), now())
		`, id, name, gofakeit.Email(), spec)
		if err != nil {
			return nil, err
		}

		for _, day := range weekdays {
			_, err := tx.Exec(ctx, `
				INSERT INTO availability_slots (id, veterinarian_id, day, start_time, end_time, is_available)
				VALUES ($1, $2, $3, '09:00', '12:00', TRUE),
				       ($4, $2, $3, '14:00', '17:30', TRUE)
			`, uuid.New(), id, day, uuid.New())
			if err != nil {
				return nil, err
			}
		}
		if gofakeit.Bool() {
			_, err := tx.Exec(ctx, `
				INSERT INTO availability_slots (id, veterinarian_id, day, start_time, end_time, is_available)
				VALUES ($1, $2, 'saturday', '09:00', '13:00', TRUE)
			`, uuid.New(), id)
			if err != nil {
				return nil, err
			}
		}

		ids = append(ids, id)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	log.Println("veterinarians seeded")
	return ids, nil
}

func seedAdopters(ctx context.Context, pool *pgxpool.Pool, count int) ([]uuid.UUID, error) {
	log.Printf("seeding %d adopters", count)

	const batchSize = 500

	ids := make([]uuid.UUID, 0, count)
	for offset := 0; offset < count; offset += batchSize {
		end := offset + batchSize
		if end > count {
			end = count
		}

		tx, err := pool.Begin(ctx)
		if err != nil {
			return nil, err
		}

		for i := offset; i < end; i++ {
			id := uuid.New()
			_, err := tx.Exec(ctx, `
				INSERT INTO users (id, name, email, role, created_at, updated_at)
				VALUES ($1, $2, $3, 'adopter', now(), now())
			`, id, gofakeit.Name(), gofakeit.Email())
			if err != nil {
				_ = tx.Rollback(ctx)
				return nil, err
			}
			ids = append(ids, id)
		}

		if err := tx.Commit(ctx); err != nil {
			return nil, err
		}

		log.Printf("adopters seeded: %d/%d", end, count)
	}

	log.Println("adopters seeded")
	return ids, nil
}

func seedForum(ctx context.Context, pool *pgxpool.Pool, authors []uuid.UUID, postCount int) error {
	log.Printf("seeding %d forum posts", postCount)

	topics := []string{
		"Tips for a rescue dog's first week home",
		"How do you handle separation anxiety?",
		"Best food for a senior cat?",
		"Crate training progress thread",
		"Vet recommended a dental cleaning, worth it?",
		"Introducing a kitten to an older dog",
	}

	tx, err := pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for i := 0; i < postCount; i++ {
		postID := uuid.New()
		author := authors[gofakeit.Number(0, len(authors)-1)]
		title := topics[gofakeit.Number(0, len(topics)-1)]

		_, err := tx.Exec(ctx, `
			INSERT INTO forum_posts (id, author_id, title, content, created_at, updated_at)
			VALUES ($1, $2, $3, $4, now(), now())
		`, postID, author, title, gofakeit.Paragraph(1, 3, 12, " "))
		if err != nil {
			return err
		}

		for c := 0; c < gofakeit.Number(0, 5); c++ {
			commenter := authors[gofakeit.Number(0, len(authors)-1)]
			_, err := tx.Exec(ctx, `
				INSERT INTO forum_comments (id, post_id, author_id, content, created_at, updated_at)
				VALUES ($1, $2, $3, $4, now(), now())
			`, uuid.New(), postID, commenter, gofakeit.Sentence(10))
			if err != nil {
				return err
			}
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}

	log.Println("forum seeded")
	return nil
}
