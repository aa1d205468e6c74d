// Package jobs runs background housekeeping. Nothing here mutates poll data;
// projects expire passively and votes are never deleted.
package jobs

import (
	"context"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/robfig/cron/v3"
)

type Scheduler struct {
	db *pgxpool.Pool
	c  *cron.Cron
}

func NewScheduler(db *pgxpool.Pool) *Scheduler {
	return &Scheduler{db: db}
}

// Start schedules the nightly stats sweep (12:00 AM).
func (s *Scheduler) Start() {
	s.c = cron.New(cron.WithSeconds())

	_, err := s.c.AddFunc("0 0 0 * * *", func() {
		s.runNightlyStats()
	})
	if err != nil {
		slog.Error("failed to create cron job", "error", err)
		return
	}

	slog.Info("cron scheduler started (nightly stats at 12:00AM)")
	s.c.Start()
}

func (s *Scheduler) Stop() {
	if s.c != nil {
		s.c.Stop()
	}
}

// runNightlyStats logs aggregate activity: total projects and votes, plus
// how many projects crossed their expiration in the last 24 hours.
func (s *Scheduler) runNightlyStats() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	const q = `
select
  (select count(*) from projects),
  (select count(*) from votes),
  (select count(*) from projects where expires_at >= now() - interval '24 hours' and expires_at < now());
`
	var projects, votes, newlyExpired int64
	if err := s.db.QueryRow(ctx, q).Scan(&projects, &votes, &newlyExpired); err != nil {
		slog.Error("nightly stats query failed", "error", err)
		return
	}

	slog.Info("nightly stats",
		"projects", projects,
		"votes", votes,
		"expired_last_24h", newlyExpired,
	)
}
