package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/pawmates/pawmates-api/internal/config"
	"github.com/pawmates/pawmates-api/internal/db"
	"github.com/pawmates/pawmates-api/internal/forum"
)

// The reconcile worker repairs the denormalized upvote/downvote
// counters on posts and comments from the vote rows. Under normal
// operation every vote lands in one transaction and nothing drifts;
// this exists for the aftermath of manual data surgery or restores.
func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("reconcile-worker starting up")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config load error: %v", err)
	}

	log.Printf("running reconcile worker in env=%s interval=%s", cfg.Env, cfg.WorkerInterval)

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Connect Postgres
	pgCtx, cancelPg := context.WithTimeout(rootCtx, 10*time.Second)
	pgPool, err := db.ConnectPostgres(pgCtx, cfg.PostgresDSN)
	cancelPg()
	if err != nil {
		log.Fatalf("postgres connection error: %v", err)
	}
	defer pgPool.Close()
	log.Println("connected to Postgres")

	svc := forum.NewService(forum.NewPgRepository(pgPool))

	// Run once at startup
	runOnce(rootCtx, svc)

	ticker := time.NewTicker(cfg.WorkerInterval)
	defer ticker.Stop()

	for {
		select {
		case <-rootCtx.Done():
			log.Println("shutdown signal received, stopping reconcile worker")
			return
		case <-ticker.C:
			runOnce(rootCtx, svc)
		}
	}
}

func runOnce(ctx context.Context, svc *forum.Service) {
	runCtx, cancel := context.WithTimeout(ctx, 20*time.Second)
	defer cancel()

	start := time.Now()
	repaired, err := svc.Reconcile(runCtx)
	if err != nil {
		log.Printf("reconcile run error: %v", err)
		return
	}
	log.Printf("reconcile run complete in %s, repaired=%d", time.Since(start), repaired)
}
