package bot

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/popov-vn/ai-agent/internal/bot/tasks"
	"github.com/popov-vn/ai-agent/internal/config"
	"github.com/popov-vn/ai-agent/internal/database"
)

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type blockingListener struct {
	started chan struct{}
}

func (l *blockingListener) Start(ctx context.Context) {
	close(l.started)
	<-ctx.Done()
}

type returningListener struct{}

func (returningListener) Start(context.Context) {}

type pingStore struct {
	database.Store
	err error
}

func (s pingStore) Ping(context.Context) error { return s.err }

func newTestScheduler(t *testing.T, cfg *config.SchedulerConfig, taskMap map[string]tasks.ScheduledTaskFunc) *Scheduler {
	t.Helper()
	s, err := NewScheduler(discard(), cfg, taskMap)
	require.NoError(t, err)
	return s
}

func TestSchedulerStartSkipsInvalidTasks(t *testing.T) {
	t.Parallel()

	noop := func(context.Context) error { return nil }
	cfg := &config.SchedulerConfig{Tasks: map[string]config.TaskConfig{
		"enabled":      {Enabled: true, Schedule: "0 0 3 * * *"},
		"disabled":     {Enabled: false, Schedule: "0 0 3 * * *"},
		"unregistered": {Enabled: true, Schedule: "0 0 3 * * *"},
		"no_schedule":  {Enabled: true},
		"bad_schedule": {Enabled: true, Schedule: "not a cron"},
	}}
	s := newTestScheduler(t, cfg, map[string]tasks.ScheduledTaskFunc{
		"enabled":      noop,
		"disabled":     noop,
		"no_schedule":  noop,
		"bad_schedule": noop,
	})

	require.NoError(t, s.Start())
	t.Cleanup(func() { _ = s.Stop() })

	assert.Equal(t, []string{"enabled"}, s.Jobs())
	assert.Error(t, s.Start(), "second start must fail")
}

func TestSchedulerWithoutTasks(t *testing.T) {
	t.Parallel()

	s := newTestScheduler(t, nil, nil)
	require.NoError(t, s.Start())
	assert.Empty(t, s.Jobs())
	require.NoError(t, s.Stop())
	require.NoError(t, s.Stop(), "stopping twice is a no-op")
}

func TestBotRunStopsOnCancel(t *testing.T) {
	t.Parallel()

	listener := &blockingListener{started: make(chan struct{})}
	b := NewBot(discard(), &config.Config{}, pingStore{}, listener, newTestScheduler(t, nil, nil))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- b.Run(ctx) }()

	select {
	case <-listener.started:
	case <-time.After(5 * time.Second):
		t.Fatal("listener not started")
	}
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("bot did not stop")
	}
}

func TestBotRunListenerExitIsError(t *testing.T) {
	t.Parallel()

	b := NewBot(discard(), &config.Config{}, nil, returningListener{}, newTestScheduler(t, nil, nil))
	err := b.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "stopped unexpectedly")
}

func TestBotRunFailsOnUnavailableStore(t *testing.T) {
	t.Parallel()

	b := NewBot(discard(), &config.Config{}, pingStore{err: errors.New("disk gone")}, returningListener{}, newTestScheduler(t, nil, nil))
	err := b.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "history store unavailable")
}
