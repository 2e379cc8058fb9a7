package daemon

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/wallhelper/internal/config"
	"git.home.luguber.info/inful/wallhelper/internal/daypart"
	ferrors "git.home.luguber.info/inful/wallhelper/internal/foundation/errors"
	"git.home.luguber.info/inful/wallhelper/internal/metrics"
	"git.home.luguber.info/inful/wallhelper/internal/registry"
)

type countingApplier struct {
	mu     sync.Mutex
	images []string
}

func (a *countingApplier) Apply(_ context.Context, _, image string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.images = append(a.images, image)
	return nil
}

func (a *countingApplier) count() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.images)
}

func testDaemonSettings() *config.Settings {
	return &config.Settings{
		Boundaries:       daypart.DefaultBoundaries(),
		WallpaperCommand: "setbg {{image}}",
		AlwaysChange:     true,
		UpdateInterval:   10 * time.Minute,
		ReselectDelay:    time.Second,
		ReselectBackoff:  config.RetryBackoffLinear,
	}
}

func testRegistry() *registry.Registry {
	return registry.New("/w", map[daypart.Name]registry.Bucket{
		daypart.Morning: {"/w/dayparts/morning/a.jpg", "/w/dayparts/morning/b.jpg"},
	}, nil)
}

func TestNew_RequiresInputs(t *testing.T) {
	_, err := New(nil, testRegistry(), Options{})
	require.Error(t, err)
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryDaemon))

	_, err = New(testDaemonSettings(), nil, Options{})
	require.Error(t, err)
}

func TestNew_InvalidStatusCron(t *testing.T) {
	_, err := New(testDaemonSettings(), testRegistry(), Options{StatusCron: "every now and then"})
	require.Error(t, err)
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryValidation))
}

func TestDaemon_RunAndStop(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.Date(2026, 4, 2, 8, 0, 0, 0, time.Local))
	app := &countingApplier{}

	d, err := New(testDaemonSettings(), testRegistry(), Options{
		Applier:     app,
		Clock:       clock,
		MetricsAddr: "127.0.0.1:0",
		Logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	require.NoError(t, err)
	assert.Equal(t, StatusStopped, d.GetStatus())

	done := make(chan error, 1)
	go func() { done <- d.Run(context.Background()) }()

	require.Eventually(t, func() bool { return app.count() == 1 }, 5*time.Second, 10*time.Millisecond)
	require.Eventually(t, func() bool { return d.GetStatus() == StatusRunning }, 5*time.Second, 10*time.Millisecond)

	resp, err := http.Get("http://" + d.MetricsAddr() + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	waitCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, clock.BlockUntilContext(waitCtx, 1))
	clock.Advance(10 * time.Minute)
	require.Eventually(t, func() bool { return app.count() == 2 }, 5*time.Second, 10*time.Millisecond)

	require.NoError(t, d.Stop(context.Background()))
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("daemon did not stop")
	}

	assert.Equal(t, StatusStopped, d.GetStatus())
	snap := d.Snapshot()
	assert.Equal(t, 2, snap.Ticks[metrics.OutcomeApplied])
	assert.Equal(t, "morning", snap.Daypart)
}

func TestDaemon_ContextCancelStops(t *testing.T) {
	d, err := New(testDaemonSettings(), registry.New("/w", nil, nil), Options{
		Applier: &countingApplier{},
		Clock:   clockwork.NewFakeClock(),
		Logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	require.NoError(t, err)
	assert.Empty(t, d.MetricsAddr())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- d.Run(ctx) }()

	require.Eventually(t, func() bool { return d.Snapshot().Ticks[metrics.OutcomeEmpty] == 1 }, 5*time.Second, 10*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("daemon did not stop")
	}
}

func TestDaemon_RunTwiceRejected(t *testing.T) {
	d, err := New(testDaemonSettings(), testRegistry(), Options{
		Applier: &countingApplier{},
		Clock:   clockwork.NewFakeClock(),
		Logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- d.Run(ctx) }()
	require.Eventually(t, func() bool { return d.GetStatus() == StatusRunning }, 5*time.Second, 10*time.Millisecond)

	err = d.Run(ctx)
	require.Error(t, err)
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryDaemon))

	cancel()
	require.NoError(t, <-done)
}
