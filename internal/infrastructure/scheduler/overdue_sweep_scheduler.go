package scheduler

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	apporder "github.com/medrent/backend/internal/application/order"
)

// ErrSchedulerNotRunning is returned when trying to trigger a run on a
// stopped scheduler
var ErrSchedulerNotRunning = errors.New("scheduler is not running")

// OverdueSweepScheduler periodically flags rentals whose coverage window
// has lapsed without renewal or pickup
type OverdueSweepScheduler struct {
	service   *apporder.SalesOrderService
	logger    *zap.Logger
	config    OverdueSweepConfig
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
}

// OverdueSweepConfig holds configuration for the overdue sweep scheduler
type OverdueSweepConfig struct {
	// Enabled determines if the scheduler is active
	Enabled bool

	// Interval is how often the sweep runs
	Interval time.Duration

	// SweepTimeout is the maximum time for a single sweep run
	SweepTimeout time.Duration
}

// DefaultOverdueSweepConfig returns default configuration
func DefaultOverdueSweepConfig() OverdueSweepConfig {
	return OverdueSweepConfig{
		Enabled:      true,
		Interval:     time.Hour,
		SweepTimeout: 5 * time.Minute,
	}
}

// NewOverdueSweepScheduler creates a new overdue sweep scheduler
func NewOverdueSweepScheduler(service *apporder.SalesOrderService, logger *zap.Logger, config OverdueSweepConfig) *OverdueSweepScheduler {
	if config.Interval <= 0 {
		config.Interval = time.Hour
	}
	if config.SweepTimeout <= 0 {
		config.SweepTimeout = 5 * time.Minute
	}
	return &OverdueSweepScheduler{
		service: service,
		logger:  logger,
		config:  config,
	}
}

// Start starts the sweep loop
func (s *OverdueSweepScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return nil
	}
	if !s.config.Enabled {
		s.mu.Unlock()
		s.logger.Info("Overdue sweep scheduler is disabled")
		return nil
	}
	s.isRunning = true
	s.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.wg.Add(1)
	go s.run(ctx)

	s.logger.Info("Overdue sweep scheduler started",
		zap.Duration("interval", s.config.Interval),
	)
	return nil
}

// Stop gracefully stops the scheduler
func (s *OverdueSweepScheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("Overdue sweep scheduler stopped gracefully")
		return nil
	case <-ctx.Done():
		s.logger.Warn("Overdue sweep scheduler stop timed out")
		return ctx.Err()
	}
}

func (s *OverdueSweepScheduler) run(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	// sweep once at startup so a restarted instance catches up immediately
	s.execute(ctx)

	for {
		select {
		case <-ctx.Done():
			s.logger.Debug("Overdue sweep loop stopping")
			return
		case <-ticker.C:
			s.execute(ctx)
		}
	}
}

func (s *OverdueSweepScheduler) execute(ctx context.Context) {
	sweepCtx, cancel := context.WithTimeout(ctx, s.config.SweepTimeout)
	defer cancel()

	startTime := time.Now()
	flagged, err := s.service.SweepOverdue(sweepCtx, time.Now())
	duration := time.Since(startTime)

	if err != nil {
		s.logger.Error("Overdue sweep failed",
			zap.Duration("duration", duration),
			zap.Error(err),
		)
		return
	}
	if flagged > 0 {
		s.logger.Info("Overdue sweep completed",
			zap.Duration("duration", duration),
			zap.Int("flagged", flagged),
		)
	}
}

// TriggerImmediateSweep runs a sweep outside the regular interval
func (s *OverdueSweepScheduler) TriggerImmediateSweep(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return ErrSchedulerNotRunning
	}
	s.wg.Add(1)
	s.mu.Unlock()

	go func() {
		defer s.wg.Done()
		s.execute(ctx)
	}()
	return nil
}

// IsRunning returns whether the scheduler is running
func (s *OverdueSweepScheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isRunning
}
