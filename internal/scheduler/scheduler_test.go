package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type fakeExpirer struct {
	calls atomic.Int32
	n     int64
	err   error
}

func (f *fakeExpirer) ExpireInvites(ctx context.Context) (int64, error) {
	f.calls.Add(1)
	return f.n, f.err
}

func TestNewRejectsInvalidSpec(t *testing.T) {
	_, err := New(&fakeExpirer{}, WithInviteExpirySpec("not a schedule"))
	require.Error(t, err)
}

func TestNewRegistersInviteExpiry(t *testing.T) {
	engine := cron.New(cron.WithLocation(time.UTC))
	s, err := New(&fakeExpirer{}, WithCron(engine), WithInviteExpirySpec("@every 1h"))
	require.NoError(t, err)
	assert.Len(t, s.cron.Entries(), 1)
}

func TestExpireInvitesJob(t *testing.T) {
	f := &fakeExpirer{n: 3}
	s, err := New(f)
	require.NoError(t, err)

	s.expireInvites()
	assert.Equal(t, int32(1), f.calls.Load())
}

func TestExpireInvitesJobLogsFailure(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	f := &fakeExpirer{err: errors.New("db down")}
	s, err := New(f, WithLogger(zap.New(core)))
	require.NoError(t, err)

	s.expireInvites()
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "Scheduler: invite expiry failed", logs.All()[0].Message)
}

func TestStartStop(t *testing.T) {
	f := &fakeExpirer{}
	s, err := New(f, WithInviteExpirySpec("@every 1h"))
	require.NoError(t, err)

	s.Start()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, s.Stop(ctx))
}
