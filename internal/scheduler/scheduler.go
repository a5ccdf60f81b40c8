// Package scheduler manages periodic background jobs: a safety-net drain
// kick and a dashboard refresh.
package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"pricetrack/internal/config"
	"pricetrack/internal/remote"
	"pricetrack/internal/sync"
	"pricetrack/internal/trend"
)

// refreshFetchLimit bounds how much history the periodic refresh pulls.
const refreshFetchLimit = 100

// Scheduler manages scheduled tasks.
type Scheduler struct {
	cron     *cron.Cron
	engine   *sync.Engine
	gateway  remote.Gateway
	analyzer *trend.Analyzer
	cfg      config.SyncConfig
	logger   *zap.Logger
}

// NewScheduler creates a new scheduler instance.
func NewScheduler(cfg config.SyncConfig, engine *sync.Engine, gateway remote.Gateway, analyzer *trend.Analyzer, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Scheduler{
		cron:     cron.New(),
		engine:   engine,
		gateway:  gateway,
		analyzer: analyzer,
		cfg:      cfg,
		logger:   logger,
	}
}

// Start registers the jobs and starts the cron runner.
func (s *Scheduler) Start() {
	s.logger.Info("starting scheduler",
		zap.String("drain_schedule", s.cfg.DrainSpec),
		zap.String("refresh_schedule", s.cfg.RefreshSpec))

	// Connectivity edges drive the primary drain trigger; the scheduled
	// kick covers edges missed while the prober was between ticks.
	if _, err := s.cron.AddFunc(s.cfg.DrainSpec, s.kickDrain); err != nil {
		s.logger.Error("failed to schedule drain kick", zap.Error(err))
	}

	if _, err := s.cron.AddFunc(s.cfg.RefreshSpec, s.refreshDashboard); err != nil {
		s.logger.Error("failed to schedule dashboard refresh", zap.Error(err))
	}

	s.cron.Start()
}

// Stop stops the scheduler.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	s.cron.Stop()
}

func (s *Scheduler) kickDrain() {
	if s.engine.Pending() == 0 {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	s.engine.Drain(ctx)
}

func (s *Scheduler) refreshDashboard() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	entries, err := s.gateway.List(ctx, refreshFetchLimit)
	if err != nil {
		s.logger.Warn("dashboard refresh skipped, remote unavailable", zap.Error(err))
		return
	}

	// Entries arrive newest first; analysis wants chronological order.
	for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
		entries[i], entries[j] = entries[j], entries[i]
	}

	report := s.analyzer.Analyze(entries)

	s.logger.Info("dashboard refreshed",
		zap.Int("entries", len(entries)),
		zap.Int("suppliers", len(report.Suppliers)),
		zap.Int("alerts", len(report.Alerts)))
}
