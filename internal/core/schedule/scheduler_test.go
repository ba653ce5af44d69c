package schedule

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEngine struct {
	mu      sync.Mutex
	running bool
	starts  int
	stops   int
}

func (engine *fakeEngine) RequestStart() {
	engine.mu.Lock()
	engine.running = true
	engine.starts++
	engine.mu.Unlock()
}

func (engine *fakeEngine) RequestStop() {
	engine.mu.Lock()
	engine.running = false
	engine.stops++
	engine.mu.Unlock()
}

func (engine *fakeEngine) IsRunning() bool {
	engine.mu.Lock()
	defer engine.mu.Unlock()
	return engine.running
}

func (engine *fakeEngine) counts() (int, int) {
	engine.mu.Lock()
	defer engine.mu.Unlock()
	return engine.starts, engine.stops
}

var testMonday = time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC)

func newTestScheduler(engine *fakeEngine, config *Config, now *time.Time) *Scheduler {
	return New(engine,
		func() Config { return *config },
		Options{
			TickInterval: time.Hour,
			Now:          func() time.Time { return *now },
		}, nil)
}

func TestSchedulerStartsOnceInsideWindow(t *testing.T) {
	engine := &fakeEngine{}
	config := weekdayConfig(TimeOfDay{Hour: 16}, TimeOfDay{Hour: 22})
	now := testMonday.Add(17 * time.Hour)
	scheduler := newTestScheduler(engine, &config, &now)

	scheduler.Tick(now)
	scheduler.Tick(now.Add(time.Minute))
	scheduler.Tick(now.Add(2 * time.Minute))

	starts, stops := engine.counts()
	assert.Equal(t, 1, starts)
	assert.Zero(t, stops)
	assert.True(t, engine.IsRunning())
}

func TestSchedulerStopsWhenWindowEnds(t *testing.T) {
	engine := &fakeEngine{}
	config := weekdayConfig(TimeOfDay{Hour: 16}, TimeOfDay{Hour: 22})
	now := testMonday.Add(17 * time.Hour)
	scheduler := newTestScheduler(engine, &config, &now)

	scheduler.Tick(now)
	require.True(t, engine.IsRunning())

	scheduler.Tick(testMonday.Add(22*time.Hour + time.Minute))

	starts, stops := engine.counts()
	assert.Equal(t, 1, starts)
	assert.Equal(t, 1, stops)
	assert.False(t, engine.IsRunning())

	// Re-entering the window the next active day starts again.
	tuesday := testMonday.Add(24 * time.Hour)
	scheduler.Tick(tuesday.Add(16*time.Hour + 30*time.Minute))
	starts, _ = engine.counts()
	assert.Equal(t, 2, starts)
}

func TestSchedulerLeavesManualSessionAlone(t *testing.T) {
	engine := &fakeEngine{}
	config := weekdayConfig(TimeOfDay{Hour: 16}, TimeOfDay{Hour: 22})
	now := testMonday.Add(12 * time.Hour)
	scheduler := newTestScheduler(engine, &config, &now)

	// The user started a session outside the window.
	engine.RequestStart()
	scheduler.NoteManualStart()

	scheduler.Tick(now)
	scheduler.Tick(testMonday.Add(17 * time.Hour))
	scheduler.Tick(testMonday.Add(23 * time.Hour))

	// The scheduler never stops a session it did not start, and an already
	// running session is not started a second time.
	assert.True(t, engine.IsRunning())
	starts, stops := engine.counts()
	assert.Equal(t, 1, starts) // the manual start only
	assert.Zero(t, stops)
}

func TestManualStopSuppressesUntilWindowReentry(t *testing.T) {
	engine := &fakeEngine{}
	config := weekdayConfig(TimeOfDay{Hour: 16}, TimeOfDay{Hour: 22})
	now := testMonday.Add(17 * time.Hour)
	scheduler := newTestScheduler(engine, &config, &now)

	scheduler.Tick(now)
	require.True(t, engine.IsRunning())

	// User stops inside the window: no auto-restart for the rest of it.
	engine.RequestStop()
	scheduler.NoteManualStop()
	scheduler.Tick(now.Add(time.Minute))
	scheduler.Tick(now.Add(time.Hour))
	assert.False(t, engine.IsRunning())

	// Leaving the window rearms the latch...
	scheduler.Tick(testMonday.Add(23 * time.Hour))

	// ...so the next window starts a session again.
	tuesday := testMonday.Add(24 * time.Hour)
	now = tuesday.Add(16*time.Hour + 5*time.Minute)
	scheduler.Tick(now)
	assert.True(t, engine.IsRunning())
}

func TestManualStartClearsSuppression(t *testing.T) {
	engine := &fakeEngine{}
	config := weekdayConfig(TimeOfDay{Hour: 16}, TimeOfDay{Hour: 22})
	now := testMonday.Add(17 * time.Hour)
	scheduler := newTestScheduler(engine, &config, &now)

	scheduler.Tick(now)
	engine.RequestStop()
	scheduler.NoteManualStop()

	// User starts again by hand, then stops outside the suppression path.
	engine.RequestStart()
	scheduler.NoteManualStart()
	engine.RequestStop()

	scheduler.Tick(now.Add(10 * time.Minute))
	assert.True(t, engine.IsRunning())
}

func TestSchedulerDisabledDoesNothing(t *testing.T) {
	engine := &fakeEngine{}
	config := weekdayConfig(TimeOfDay{Hour: 16}, TimeOfDay{Hour: 22})
	config.Enabled = false
	now := testMonday.Add(17 * time.Hour)
	scheduler := newTestScheduler(engine, &config, &now)

	scheduler.Tick(now)

	starts, stops := engine.counts()
	assert.Zero(t, starts)
	assert.Zero(t, stops)
}
