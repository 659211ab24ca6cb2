// Package scheduler runs periodic maintenance jobs on a cron schedule.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// InviteExpirer rejects invites whose expiry has passed
type InviteExpirer interface {
	ExpireInvites(ctx context.Context) (int64, error)
}

type Scheduler struct {
	cron    *cron.Cron
	logger  *zap.Logger
	invites InviteExpirer
	timeout time.Duration
}

// New registers the maintenance jobs. Nothing runs until Start.
func New(invites InviteExpirer, opts ...Option) (*Scheduler, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.Cron == nil {
		o.Cron = cron.New(cron.WithLocation(o.Location))
	}

	s := &Scheduler{
		cron:    o.Cron,
		logger:  o.Logger,
		invites: invites,
		timeout: o.JobTimeout,
	}

	if _, err := s.cron.AddFunc(o.InviteExpirySpec, s.expireInvites); err != nil {
		return nil, fmt.Errorf("invalid invite expiry schedule %q: %w", o.InviteExpirySpec, err)
	}
	return s, nil
}

func (s *Scheduler) Start() {
	s.logger.Info("Scheduler: starting", zap.Int("jobs", len(s.cron.Entries())))
	s.cron.Start()
}

// Stop prevents new runs and waits for running jobs until ctx is done
func (s *Scheduler) Stop(ctx context.Context) error {
	done := s.cron.Stop()
	select {
	case <-done.Done():
		s.logger.Info("Scheduler: stopped")
		return nil
	case <-ctx.Done():
		return fmt.Errorf("scheduler stop: %w", ctx.Err())
	}
}

func (s *Scheduler) expireInvites() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	start := time.Now()
	n, err := s.invites.ExpireInvites(ctx)
	if err != nil {
		s.logger.Error("Scheduler: invite expiry failed", zap.Error(err))
		return
	}
	s.logger.Debug("Scheduler: invite expiry finished",
		zap.Int64("expired", n),
		zap.Duration("took", time.Since(start)))
}
