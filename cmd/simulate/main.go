package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"math/rand"
	"net/http"
	"os"
	"sort"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pawmates/pawmates-api/internal/db"
)

// simulate drives concurrent booking and voting traffic against a
// running api-server, to observe how slot conflicts and vote counters
// behave under contention.

type SimConfig struct {
	APIBaseURL   string
	Duration     time.Duration
	Workers      int
	BookingRatio float64
	VoteRatio    float64
	UserLimit    int
	PostLimit    int
	PostgresDSN  string
}

type DataPool struct {
	Users []uuid.UUID
	Vets  []uuid.UUID
	Posts []uuid.UUID
}

type OperationMetrics struct {
	Total     int64
	Success   int64
	Conflict  int64
	Error     int64
	Latencies []time.Duration
	mu        sync.Mutex
}

func (om *OperationMetrics) Record(latency time.Duration, success bool, conflict bool) {
	atomic.AddInt64(&om.Total, 1)
	if success {
		atomic.AddInt64(&om.Success, 1)
	} else if conflict {
		atomic.AddInt64(&om.Conflict, 1)
	} else {
		atomic.AddInt64(&om.Error, 1)
	}

	om.mu.Lock()
	om.Latencies = append(om.Latencies, latency)
	om.mu.Unlock()
}

func (om *OperationMetrics) Stats() (avg, min, max, p50, p95 time.Duration) {
	om.mu.Lock()
	defer om.mu.Unlock()

	if len(om.Latencies) == 0 {
		return 0, 0, 0, 0, 0
	}

	latencies := make([]time.Duration, len(om.Latencies))
	copy(latencies, om.Latencies)

	sort.Slice(latencies, func(i, j int) bool {
		return latencies[i] < latencies[j]
	})

	var sum time.Duration
	for _, l := range latencies {
		sum += l
	}

	avg = sum / time.Duration(len(latencies))
	min = latencies[0]
	max = latencies[len(latencies)-1]
	p50 = latencies[len(latencies)*50/100]
	p95Idx := len(latencies) * 95 / 100
	if p95Idx >= len(latencies) {
		p95Idx = len(latencies) - 1
	}
	p95 = latencies[p95Idx]
	return
}

type Simulator struct {
	cfg      SimConfig
	pool     *DataPool
	client   *http.Client
	bookings *OperationMetrics
	votes    *OperationMetrics
	reads    *OperationMetrics
}

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("simulate starting")

	cfg := loadConfig()
	if cfg.PostgresDSN == "" {
		log.Fatal("POSTGRES_DSN is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	pgPool, err := db.ConnectPostgres(ctx, cfg.PostgresDSN)
	cancel()
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer pgPool.Close()

	dataPool, err := loadDataPool(context.Background(), pgPool, cfg)
	if err != nil {
		log.Fatalf("load data pool: %v", err)
	}
	log.Printf("data pool: %d users, %d vets, %d posts",
		len(dataPool.Users), len(dataPool.Vets), len(dataPool.Posts))

	sim := &Simulator{
		cfg:      cfg,
		pool:     dataPool,
		client:   &http.Client{Timeout: 10 * time.Second},
		bookings: &OperationMetrics{},
		votes:    &OperationMetrics{},
		reads:    &OperationMetrics{},
	}

	sim.Run()
	sim.PrintReport()
}

func loadConfig() SimConfig {
	return SimConfig{
		APIBaseURL:   getEnv("SIM_API_URL", "http://127.0.0.1:8080"),
		Duration:     getDuration("SIM_DURATION", 30*time.Second),
		Workers:      getInt("SIM_WORKERS", 16),
		BookingRatio: getFloat("SIM_BOOKING_RATIO", 0.4),
		VoteRatio:    getFloat("SIM_VOTE_RATIO", 0.4),
		UserLimit:    getInt("SIM_USER_LIMIT", 500),
		PostLimit:    getInt("SIM_POST_LIMIT", 200),
		PostgresDSN:  os.Getenv("POSTGRES_DSN"),
	}
}

func loadDataPool(ctx context.Context, pool *pgxpool.Pool, cfg SimConfig) (*DataPool, error) {
	dp := &DataPool{}

	load := func(query string, limit int, dst *[]uuid.UUID) error {
		rows, err := pool.Query(ctx, query, limit)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			var id uuid.UUID
			if err := rows.Scan(&id); err != nil {
				return err
			}
			*dst = append(*dst, id)
		}
		return rows.Err()
	}

	if err := load(`SELECT id FROM users WHERE role = 'adopter' LIMIT $1`, cfg.UserLimit, &dp.Users); err != nil {
		return nil, err
	}
	if err := load(`SELECT id FROM users WHERE role = 'veterinarian' LIMIT $1`, cfg.UserLimit, &dp.Vets); err != nil {
		return nil, err
	}
	if err := load(`SELECT id FROM forum_posts LIMIT $1`, cfg.PostLimit, &dp.Posts); err != nil {
		return nil, err
	}

	if len(dp.Users) == 0 || len(dp.Vets) == 0 {
		return nil, fmt.Errorf("no seed data found, run cmd/seed first")
	}
	return dp, nil
}

func (s *Simulator) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.Duration)
	defer cancel()

	log.Printf("running %d workers for %s", s.cfg.Workers, s.cfg.Duration)

	var wg sync.WaitGroup
	for i := 0; i < s.cfg.Workers; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			s.worker(ctx, id)
		}(i)
	}
	wg.Wait()
}

func (s *Simulator) worker(ctx context.Context, workerID int) {
	rng := rand.New(rand.NewSource(time.Now().UnixNano() + int64(workerID)))

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		roll := rng.Float64()
		switch {
		case roll < s.cfg.BookingRatio:
			s.doBooking(ctx, rng)
		case roll < s.cfg.BookingRatio+s.cfg.VoteRatio:
			s.doVote(ctx, rng)
		default:
			s.doAvailability(ctx, rng)
		}
	}
}

// doBooking deliberately books from a small set of near-future slots so
// that workers collide and exercise the conflict path.
func (s *Simulator) doBooking(ctx context.Context, rng *rand.Rand) {
	user := s.pool.Users[rng.Intn(len(s.pool.Users))]
	vet := s.pool.Vets[rng.Intn(len(s.pool.Vets))]

	date := time.Now().UTC().AddDate(0, 0, 1+rng.Intn(5)).Format("2006-01-02")
	startHour := 9 + rng.Intn(3)
	startMin := 30 * rng.Intn(2)
	start := fmt.Sprintf("%02d:%02d", startHour, startMin)
	end := fmt.Sprintf("%02d:%02d", startHour, startMin+30)
	if startMin == 30 {
		end = fmt.Sprintf("%02d:00", startHour+1)
	}

	body, _ := json.Marshal(map[string]any{
		"veterinarian_id": vet.String(),
		"date":            date,
		"start_time":      start,
		"end_time":        end,
		"reason":          "checkup",
	})

	s.post(ctx, s.bookings, user, "/appointments", body, http.StatusCreated)
}

func (s *Simulator) doVote(ctx context.Context, rng *rand.Rand) {
	if len(s.pool.Posts) == 0 {
		return
	}
	user := s.pool.Users[rng.Intn(len(s.pool.Users))]
	post := s.pool.Posts[rng.Intn(len(s.pool.Posts))]

	voteType := "upvote"
	if rng.Float64() < 0.3 {
		voteType = "downvote"
	}
	body, _ := json.Marshal(map[string]string{"vote_type": voteType})

	s.post(ctx, s.votes, user, fmt.Sprintf("/forum/posts/%s/vote", post), body, http.StatusOK)
}

func (s *Simulator) doAvailability(ctx context.Context, rng *rand.Rand) {
	vet := s.pool.Vets[rng.Intn(len(s.pool.Vets))]
	date := time.Now().UTC().AddDate(0, 0, 1+rng.Intn(7)).Format("2006-01-02")
	url := fmt.Sprintf("%s/vets/%s/availability?date=%s", s.cfg.APIBaseURL, vet, date)

	start := time.Now()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return
	}
	resp, err := s.client.Do(req)
	latency := time.Since(start)
	if err != nil {
		s.reads.Record(latency, false, false)
		return
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	s.reads.Record(latency, resp.StatusCode == http.StatusOK, false)
}

func (s *Simulator) post(ctx context.Context, om *OperationMetrics, actor uuid.UUID, path string, body []byte, wantStatus int) {
	start := time.Now()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.APIBaseURL+path, bytes.NewReader(body))
	if err != nil {
		return
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-ID", actor.String())

	resp, err := s.client.Do(req)
	latency := time.Since(start)
	if err != nil {
		om.Record(latency, false, false)
		return
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()

	conflict := resp.StatusCode == http.StatusConflict || resp.StatusCode == http.StatusBadRequest
	om.Record(latency, resp.StatusCode == wantStatus, conflict)
}

func (s *Simulator) PrintReport() {
	fmt.Println()
	fmt.Println("==================== simulation report ====================")
	printOperationReport("bookings", s.bookings)
	printOperationReport("votes", s.votes)
	printOperationReport("availability reads", s.reads)
	fmt.Println("===========================================================")
}

func printOperationReport(name string, om *OperationMetrics) {
	total := atomic.LoadInt64(&om.Total)
	if total == 0 {
		fmt.Printf("%-20s no operations\n", name)
		return
	}

	avg, min, max, p50, p95 := om.Stats()
	fmt.Printf("%-20s total=%d success=%d conflict=%d error=%d\n",
		name, total,
		atomic.LoadInt64(&om.Success),
		atomic.LoadInt64(&om.Conflict),
		atomic.LoadInt64(&om.Error))
	fmt.Printf("%-20s latency avg=%s min=%s max=%s p50=%s p95=%s\n",
		"", avg, min, max, p50, p95)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func getInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}
