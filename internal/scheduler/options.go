package scheduler

import (
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

type options struct {
	Logger           *zap.Logger
	Cron             *cron.Cron
	Location         *time.Location
	InviteExpirySpec string
	JobTimeout       time.Duration
}

// Option applies configuration to the scheduler.
type Option func(*options)

func defaultOptions() options {
	return options{
		Logger:           zap.NewNop(),
		Location:         time.UTC,
		InviteExpirySpec: "@every 15m",
		JobTimeout:       time.Minute,
	}
}

// WithLogger injects the logger jobs report to.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		o.Logger = l
	}
}

// WithCron supplies a preconfigured cron scheduler instance.
func WithCron(c *cron.Cron) Option {
	return func(o *options) {
		o.Cron = c
	}
}

// WithLocation sets the scheduler timezone location.
func WithLocation(loc *time.Location) Option {
	return func(o *options) {
		o.Location = loc
	}
}

// WithInviteExpirySpec sets the cron expression of the invite expiry sweep.
func WithInviteExpirySpec(spec string) Option {
	return func(o *options) {
		o.InviteExpirySpec = spec
	}
}

// WithJobTimeout bounds the duration of a single job run.
func WithJobTimeout(d time.Duration) Option {
	return func(o *options) {
		o.JobTimeout = d
	}
}
