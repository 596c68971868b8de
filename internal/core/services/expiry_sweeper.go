package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/alpha-og/railway-reservation-system-sub001/internal/core/domain"
	"github.com/alpha-og/railway-reservation-system-sub001/internal/core/ports"
	"github.com/sirupsen/logrus"
)

const (
	DefaultSweepInterval  = 2 * time.Minute
	DefaultSweepThreshold = 10 * time.Minute
	DefaultSweepBatchSize = 100
	DefaultSweepLeaseTTL  = time.Minute
)

type SweeperConfig struct {
	Threshold time.Duration
	BatchSize int
	LeaseTTL  time.Duration
}

func (c SweeperConfig) normalized() SweeperConfig {
	if c.Threshold <= 0 {
		c.Threshold = DefaultSweepThreshold
	}
	if c.BatchSize <= 0 {
		c.BatchSize = DefaultSweepBatchSize
	}
	if c.LeaseTTL <= 0 {
		c.LeaseTTL = DefaultSweepLeaseTTL
	}
	return c
}

// TickerFunc returns a channel of ticks and a function that stops it.
type TickerFunc func(interval time.Duration) (<-chan time.Time, func())

func realTicker(interval time.Duration) (<-chan time.Time, func()) {
	t := time.NewTicker(interval)
	return t.C, t.Stop
}

var ErrSweeperRunning = errors.New("expiry sweeper already running")

// ExpirySweeper cancels PENDING bookings that never received a completed
// payment within the threshold. Each booking is expired in its own
// transaction, so an interrupted run keeps what it already committed.
type ExpirySweeper struct {
	repo      ports.BookingRepository
	publisher ports.EventPublisher
	lease     ports.Lease
	logger    *logrus.Logger
	cfg       SweeperConfig
	now       func() time.Time
	ticker    TickerFunc

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

func NewExpirySweeper(repo ports.BookingRepository, publisher ports.EventPublisher, lease ports.Lease, logger *logrus.Logger, cfg SweeperConfig) *ExpirySweeper {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &ExpirySweeper{
		repo:      repo,
		publisher: publisher,
		lease:     lease,
		logger:    logger,
		cfg:       cfg.normalized(),
		now:       time.Now,
		ticker:    realTicker,
	}
}

func (s *ExpirySweeper) WithClock(now func() time.Time) *ExpirySweeper {
	s.now = now
	return s
}

func (s *ExpirySweeper) WithTicker(ticker TickerFunc) *ExpirySweeper {
	s.ticker = ticker
	return s
}

// Start runs a sweep on every tick until Stop is called.
func (s *ExpirySweeper) Start(interval time.Duration) error {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		return ErrSweeperRunning
	}

	ctx, cancel := context.WithCancel(context.Background())
	ticks, stopTicker := s.ticker(interval)
	done := make(chan struct{})
	s.cancel = cancel
	s.done = done

	s.logger.WithFields(logrus.Fields{
		"interval":   interval.String(),
		"threshold":  s.cfg.Threshold.String(),
		"batch_size": s.cfg.BatchSize,
	}).Info("expiry sweeper started")

	go func() {
		defer close(done)
		defer stopTicker()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticks:
				// Errors are logged inside RunOnce; the next tick retries.
				_, _ = s.RunOnce(ctx)
			}
		}
	}()
	return nil
}

// Stop halts the loop and waits for an in-flight sweep to return.
func (s *ExpirySweeper) Stop() {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.cancel, s.done = nil, nil
	s.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
	s.logger.Info("expiry sweeper stopped")
}

// RunOnce performs a single sweep and returns how many bookings it cancelled.
// It never panics; failures come back as domain.SchedulerTransientError.
func (s *ExpirySweeper) RunOnce(ctx context.Context) (cancelled int, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = domain.SchedulerTransientError{Op: "run", Err: fmt.Errorf("panic: %v", r)}
			s.logger.WithError(err).Error("expiry sweep failed")
		}
	}()

	if s.lease != nil {
		ok, leaseErr := s.lease.Acquire(ctx, s.cfg.LeaseTTL)
		if leaseErr != nil {
			err = domain.SchedulerTransientError{Op: "acquire lease", Err: leaseErr}
			s.logger.WithError(err).Warn("expiry sweep skipped")
			return 0, err
		}
		if !ok {
			s.logger.Debug("expiry sweep skipped, lease held elsewhere")
			return 0, nil
		}
		defer func() {
			if relErr := s.lease.Release(context.WithoutCancel(ctx)); relErr != nil {
				s.logger.WithError(relErr).Warn("failed to release sweeper lease")
			}
		}()
	}

	now := s.now().UTC()
	cutoff := now.Add(-s.cfg.Threshold)

	candidates, listErr := s.repo.ListExpirable(ctx, cutoff, s.cfg.BatchSize)
	if listErr != nil {
		err = domain.SchedulerTransientError{Op: "select", Err: listErr}
		s.logger.WithError(err).Error("expiry sweep failed")
		return 0, err
	}

	reason := fmt.Sprintf("no completed payment within %s", s.cfg.Threshold)
	var failures []error
	for _, candidate := range candidates {
		if ctx.Err() != nil {
			failures = append(failures, ctx.Err())
			break
		}

		expired, expErr := s.repo.Expire(ctx, domain.TransitionCommand{
			BookingID: candidate.ID,
			ActorID:   candidate.UserID,
			Reason:    reason,
			At:        now,
		})
		if expErr != nil {
			failures = append(failures, fmt.Errorf("booking %s: %w", candidate.ID, expErr))
			s.logger.WithError(expErr).WithField("booking_id", candidate.ID).Warn("failed to expire booking")
			continue
		}
		if expired == nil {
			// Paid or confirmed since it was selected.
			continue
		}

		cancelled++
		s.logger.WithFields(logrus.Fields{"booking_id": expired.ID, "pnr": expired.PNR}).Info("booking expired")
		if s.publisher != nil {
			if pubErr := s.publisher.Publish(ctx, domain.NewBookingEvent(domain.EventBookingExpired, expired, now)); pubErr != nil {
				s.logger.WithError(pubErr).WithField("booking_id", expired.ID).Warn("failed to publish booking event")
			}
		}
	}

	s.logger.WithFields(logrus.Fields{
		"candidates": len(candidates),
		"cancelled":  cancelled,
	}).Info("expiry sweep finished")

	if len(failures) > 0 {
		err = domain.SchedulerTransientError{Op: "expire", Err: errors.Join(failures...)}
		s.logger.WithError(err).Error("expiry sweep finished with errors")
	}
	return cancelled, err
}
