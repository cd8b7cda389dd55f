package scheduler

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/kaveyan18/resolve-desk/internal/observability"
	"github.com/kaveyan18/resolve-desk/internal/repository"
)

// Sweeper is one periodic batch job over qualifying tickets.
type Sweeper interface {
	RunSweep(ctx context.Context) (int, error)
}

// Scheduler is the single process-wide timer loop. Each tick runs the
// assignment sweep (guarded by SystemSettings) and then the SLA escalation
// sweep; the jobs are independent and either may fail without affecting the
// other. The tick period follows the settings record, re-read every tick.
type Scheduler struct {
	assignments Sweeper
	escalations Sweeper
	settings    repository.SettingsRepository
	fallback    time.Duration
	metrics     *observability.Metrics
	logger      *zap.Logger
}

// New creates a scheduler. fallback is the tick period used when the
// settings record cannot be read.
func New(assignments, escalations Sweeper, settings repository.SettingsRepository, fallback time.Duration, metrics *observability.Metrics, logger *zap.Logger) *Scheduler {
	if fallback <= 0 {
		fallback = time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if metrics == nil {
		metrics = observability.NewMetrics()
	}
	return &Scheduler{
		assignments: assignments,
		escalations: escalations,
		settings:    settings,
		fallback:    fallback,
		metrics:     metrics,
		logger:      logger,
	}
}

// Run blocks until ctx is done. A tick that fails is logged and the loop
// continues on its next interval.
func (s *Scheduler) Run(ctx context.Context) {
	timer := time.NewTimer(s.fallback)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
			next := s.tick(ctx)
			timer.Reset(next)
		}
	}
}

// tick runs both sweeps and returns the period until the next tick.
func (s *Scheduler) tick(ctx context.Context) (next time.Duration) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("scheduler tick panicked", zap.Any("panic", r))
			next = s.fallback
		}
	}()

	next = s.fallback
	autoAssign := false

	settings, err := s.settings.Get(ctx)
	if err != nil {
		s.logger.Warn("settings unavailable, skipping assignment sweep", zap.Error(err))
	} else {
		autoAssign = settings.AutoAssignEnabled
		next = settings.SweepInterval()
	}

	if autoAssign {
		assigned, err := s.assignments.RunSweep(ctx)
		if err != nil {
			s.logger.Error("assignment sweep failed", zap.Error(err))
		} else {
			s.metrics.RecordSweep("assignment", assigned)
			if assigned > 0 {
				s.logger.Info("assignment sweep completed", zap.Int("assigned", assigned))
			}
		}
	}

	escalated, err := s.escalations.RunSweep(ctx)
	if err != nil {
		s.logger.Error("escalation sweep failed", zap.Error(err))
	} else {
		s.metrics.RecordSweep("escalation", escalated)
		if escalated > 0 {
			s.logger.Info("escalation sweep completed", zap.Int("escalated", escalated))
		}
	}

	return next
}
