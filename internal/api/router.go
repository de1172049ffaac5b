package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/pawmates/pawmates-api/internal/forum"
	"github.com/pawmates/pawmates-api/internal/review"
	"github.com/pawmates/pawmates-api/internal/schedule"
)

type RouterConfig struct {
	Schedule *schedule.Service
	Forum    *forum.Service
	Reviews  *review.Service
	PgPool   *pgxpool.Pool
	Redis    *redis.Client
	Env      string
	Version  string
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Apply middleware
	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware)

	// Health endpoints
	health := NewHealthHandler(cfg.PgPool, cfg.Redis, cfg.Env, cfg.Version)
	r.Get("/health/live", health.Liveness)
	r.Get("/health/ready", health.Readiness)

	// Availability and booking
	r.Get("/vets/{vetID}/availability", availabilityHandler(cfg.Schedule))
	r.Get("/vets/{vetID}/appointments", listVetAppointmentsHandler(cfg.Schedule))
	r.Post("/appointments", bookAppointmentHandler(cfg.Schedule))
	r.Get("/appointments", listAppointmentsHandler(cfg.Schedule))
	r.Get("/appointments/{id}", getAppointmentHandler(cfg.Schedule))
	r.Patch("/appointments/{id}/status", updateStatusHandler(cfg.Schedule))
	r.Patch("/appointments/{id}/cancel", cancelAppointmentHandler(cfg.Schedule))

	// Reviews
	r.Post("/appointments/{id}/review", submitReviewHandler(cfg.Reviews))
	r.Delete("/reviews/{id}", deleteReviewHandler(cfg.Reviews))

	// Forum voting
	r.Post("/forum/posts/{id}/vote", voteHandler(cfg.Forum, forum.TargetPost))
	r.Post("/forum/comments/{id}/vote", voteHandler(cfg.Forum, forum.TargetComment))
	r.Get("/forum/users/{userID}/activity", activityHandler(cfg.Forum))

	return r
}
