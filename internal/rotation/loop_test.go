package rotation

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/wallhelper/internal/config"
	"git.home.luguber.info/inful/wallhelper/internal/daypart"
	"git.home.luguber.info/inful/wallhelper/internal/metrics"
	"git.home.luguber.info/inful/wallhelper/internal/registry"
	"git.home.luguber.info/inful/wallhelper/internal/selector"
)

type staticSettings config.Settings

func (s staticSettings) Current() config.Settings { return config.Settings(s) }

type applyCall struct {
	command string
	image   string
}

type recordingApplier struct {
	mu    sync.Mutex
	calls []applyCall
	err   error
}

func (a *recordingApplier) Apply(_ context.Context, command, image string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.calls = append(a.calls, applyCall{command: command, image: image})
	return a.err
}

func (a *recordingApplier) snapshot() []applyCall {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]applyCall(nil), a.calls...)
}

type fixedRandom struct {
	mu     sync.Mutex
	values []int
	n      int
}

func (f *fixedRandom) IntN(n int) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	v := f.values[f.n%len(f.values)]
	f.n++
	return v % n
}

type countingRecorder struct {
	metrics.NoopRecorder
	mu    sync.Mutex
	ticks map[metrics.TickOutcome]int
}

func (r *countingRecorder) IncTick(o metrics.TickOutcome) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.ticks == nil {
		r.ticks = map[metrics.TickOutcome]int{}
	}
	r.ticks[o]++
}

func testSettings() config.Settings {
	return config.Settings{
		Boundaries:       daypart.DefaultBoundaries(),
		WallpaperCommand: "setbg '{{image}}'",
		AlwaysChange:     true,
		UpdateInterval:   30 * time.Minute,
		ReselectDelay:    time.Second,
		ReselectBackoff:  config.RetryBackoffLinear,
	}
}

func at(hour int) *clockwork.FakeClock {
	return clockwork.NewFakeClockAt(time.Date(2026, 3, 14, hour, 0, 0, 0, time.Local))
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestLoop(reg *registry.Registry, s config.Settings, a Applier, clock clockwork.Clock, rnd selector.Random, opts ...Option) *Loop {
	base := []Option{WithClock(clock), WithRandom(rnd), WithLogger(quietLogger())}
	return New(reg, staticSettings(s), a, append(base, opts...)...)
}

func TestTick_AppliesDaypartImage(t *testing.T) {
	reg := registry.New("/w", map[daypart.Name]registry.Bucket{
		daypart.Morning: {"/w/dayparts/morning/a.jpg", "/w/dayparts/morning/b.jpg"},
	}, nil)
	app := &recordingApplier{}
	rec := &countingRecorder{}
	loop := newTestLoop(reg, testSettings(), app, at(7), &fixedRandom{values: []int{1}}, WithRecorder(rec))

	st, res, err := loop.Tick(context.Background(), State{})
	require.NoError(t, err)

	assert.Equal(t, metrics.OutcomeApplied, res.Outcome)
	assert.Equal(t, daypart.Morning, res.Daypart)
	assert.Equal(t, 7, res.Hour)
	assert.Equal(t, 30*time.Minute, res.Wait)
	assert.NotEmpty(t, res.TickID)
	assert.Equal(t, "/w/dayparts/morning/b.jpg", st.LastApplied)
	assert.Equal(t, []applyCall{{
		command: "setbg '/w/dayparts/morning/b.jpg'",
		image:   "/w/dayparts/morning/b.jpg",
	}}, app.snapshot())
	assert.Equal(t, 1, rec.ticks[metrics.OutcomeApplied])
}

func TestTick_HourBucketWins(t *testing.T) {
	reg := registry.New("/w", map[daypart.Name]registry.Bucket{
		daypart.Night: {"/w/dayparts/night/a.jpg"},
	}, map[int]registry.Bucket{
		23: {"/w/hours/23/late.jpg"},
	})
	app := &recordingApplier{}
	loop := newTestLoop(reg, testSettings(), app, at(23), &fixedRandom{values: []int{0}})

	st, res, err := loop.Tick(context.Background(), State{})
	require.NoError(t, err)
	assert.Equal(t, daypart.Night, res.Daypart)
	assert.Equal(t, selector.SourceHour, res.Selection.Source)
	assert.Equal(t, "/w/hours/23/late.jpg", st.LastApplied)
}

func TestTick_GateDenialBacksOff(t *testing.T) {
	reg := registry.New("/w", map[daypart.Name]registry.Bucket{
		daypart.Day: {"/w/a.jpg", "/w/b.jpg"},
	}, nil)
	app := &recordingApplier{}
	rec := &countingRecorder{}
	loop := newTestLoop(reg, testSettings(), app, at(13), &fixedRandom{values: []int{0}}, WithRecorder(rec))

	st := State{LastApplied: "/w/a.jpg"}
	st, res, err := loop.Tick(context.Background(), st)
	require.NoError(t, err)
	assert.Equal(t, metrics.OutcomeSkipped, res.Outcome)
	assert.Equal(t, time.Second, res.Wait)
	assert.Equal(t, 1, st.Denials)

	st, res, err = loop.Tick(context.Background(), st)
	require.NoError(t, err)
	assert.Equal(t, metrics.OutcomeSkipped, res.Outcome)
	assert.Equal(t, 2*time.Second, res.Wait)
	assert.Equal(t, 2, st.Denials)

	assert.Empty(t, app.snapshot())
	assert.Equal(t, "/w/a.jpg", st.LastApplied)
	assert.Equal(t, 2, rec.ticks[metrics.OutcomeSkipped])
}

func TestTick_DenialResetsAfterApply(t *testing.T) {
	reg := registry.New("/w", map[daypart.Name]registry.Bucket{
		daypart.Day: {"/w/a.jpg", "/w/b.jpg"},
	}, nil)
	app := &recordingApplier{}
	loop := newTestLoop(reg, testSettings(), app, at(13), &fixedRandom{values: []int{1}})

	st, res, err := loop.Tick(context.Background(), State{LastApplied: "/w/a.jpg", Denials: 4})
	require.NoError(t, err)
	assert.Equal(t, metrics.OutcomeApplied, res.Outcome)
	assert.Equal(t, State{LastApplied: "/w/b.jpg"}, st)
}

func TestTick_SingleImageBucketRepeats(t *testing.T) {
	reg := registry.New("/w", map[daypart.Name]registry.Bucket{
		daypart.Evening: {"/w/only.jpg"},
	}, nil)
	app := &recordingApplier{}
	loop := newTestLoop(reg, testSettings(), app, at(19), &fixedRandom{values: []int{0}})

	st, res, err := loop.Tick(context.Background(), State{LastApplied: "/w/only.jpg"})
	require.NoError(t, err)
	assert.Equal(t, metrics.OutcomeApplied, res.Outcome)
	assert.Equal(t, "/w/only.jpg", st.LastApplied)
	assert.Len(t, app.snapshot(), 1)
}

func TestTick_AlwaysChangeDisabledRepeats(t *testing.T) {
	reg := registry.New("/w", map[daypart.Name]registry.Bucket{
		daypart.Day: {"/w/a.jpg", "/w/b.jpg"},
	}, nil)
	s := testSettings()
	s.AlwaysChange = false
	app := &recordingApplier{}
	loop := newTestLoop(reg, s, app, at(13), &fixedRandom{values: []int{0}})

	_, res, err := loop.Tick(context.Background(), State{LastApplied: "/w/a.jpg"})
	require.NoError(t, err)
	assert.Equal(t, metrics.OutcomeApplied, res.Outcome)
}

func TestTick_EmptySelectionWaitsFullInterval(t *testing.T) {
	reg := registry.New("/w", nil, nil)
	app := &recordingApplier{}
	loop := newTestLoop(reg, testSettings(), app, at(2), nil)

	st, res, err := loop.Tick(context.Background(), State{LastApplied: "/w/old.jpg"})
	require.NoError(t, err)
	assert.Equal(t, metrics.OutcomeEmpty, res.Outcome)
	assert.Equal(t, daypart.Night, res.Daypart)
	assert.False(t, res.Selection.Found)
	assert.Equal(t, 30*time.Minute, res.Wait)
	assert.Equal(t, "/w/old.jpg", st.LastApplied)
	assert.Empty(t, app.snapshot())
}

func TestTick_ApplyFailureKeepsLastApplied(t *testing.T) {
	reg := registry.New("/w", map[daypart.Name]registry.Bucket{
		daypart.Morning: {"/w/a.jpg", "/w/b.jpg"},
	}, nil)
	app := &recordingApplier{err: errors.New("exit status 1")}
	loop := newTestLoop(reg, testSettings(), app, at(8), &fixedRandom{values: []int{1}})

	st, res, err := loop.Tick(context.Background(), State{LastApplied: "/w/a.jpg"})
	require.NoError(t, err)
	assert.Equal(t, metrics.OutcomeApplyFailed, res.Outcome)
	require.Error(t, res.Err)
	assert.Equal(t, "/w/a.jpg", st.LastApplied)
	assert.Equal(t, 30*time.Minute, res.Wait)
	assert.Len(t, app.snapshot(), 1)
}

func TestTick_ReadsSettingsEveryTick(t *testing.T) {
	reg := registry.New("/w", map[daypart.Name]registry.Bucket{
		daypart.Morning: {"/w/a.jpg"},
	}, nil)
	initial := testSettings()
	store := config.NewStore(&initial)
	app := &recordingApplier{}
	loop := New(reg, store, app, WithClock(at(7)), WithRandom(&fixedRandom{values: []int{0}}), WithLogger(quietLogger()))

	_, res, err := loop.Tick(context.Background(), State{})
	require.NoError(t, err)
	assert.Equal(t, 30*time.Minute, res.Wait)

	next := testSettings()
	next.UpdateInterval = 5 * time.Minute
	next.WallpaperCommand = "other {{image}}"
	store.Swap(&next)

	_, res, err = loop.Tick(context.Background(), State{})
	require.NoError(t, err)
	assert.Equal(t, 5*time.Minute, res.Wait)
	assert.Equal(t, "other /w/a.jpg", res.Command)
}

func TestRun_TicksOnClockAndStopsOnCancel(t *testing.T) {
	reg := registry.New("/w", map[daypart.Name]registry.Bucket{
		daypart.Morning: {"/w/a.jpg", "/w/b.jpg"},
	}, nil)
	app := &recordingApplier{}
	clock := at(7)

	var mu sync.Mutex
	var results []Result
	observer := func(_ State, r Result) {
		mu.Lock()
		defer mu.Unlock()
		results = append(results, r)
	}
	loop := newTestLoop(reg, testSettings(), app, clock, &fixedRandom{values: []int{0, 1}}, WithObserver(observer))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- loop.Run(ctx) }()

	waitCtx, waitCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer waitCancel()

	require.NoError(t, clock.BlockUntilContext(waitCtx, 1))
	assert.Len(t, app.snapshot(), 1)

	clock.Advance(30 * time.Minute)
	require.Eventually(t, func() bool { return len(app.snapshot()) == 2 }, 5*time.Second, 10*time.Millisecond)
	require.NoError(t, clock.BlockUntilContext(waitCtx, 1))

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not stop after cancel")
	}

	calls := app.snapshot()
	assert.Equal(t, "/w/a.jpg", calls[0].image)
	assert.Equal(t, "/w/b.jpg", calls[1].image)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, results, 2)
	assert.Equal(t, metrics.OutcomeApplied, results[1].Outcome)
}

func TestRun_CancelledBeforeStart(t *testing.T) {
	reg := registry.New("/w", nil, nil)
	app := &recordingApplier{}
	loop := newTestLoop(reg, testSettings(), app, at(7), nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, loop.Run(ctx))
	assert.Empty(t, app.snapshot())
}
