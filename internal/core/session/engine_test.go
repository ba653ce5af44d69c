package session

import (
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"driftglow/internal/core/model"
)

type fakeGateway struct {
	mu     sync.Mutex
	active map[model.FeatureID]bool
	calls  []string
	failOn map[model.FeatureID]bool
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		active: map[model.FeatureID]bool{},
		failOn: map[model.FeatureID]bool{},
	}
}

func (gateway *fakeGateway) Enable(feature model.FeatureID) error {
	gateway.mu.Lock()
	defer gateway.mu.Unlock()
	if gateway.failOn[feature] {
		return fmt.Errorf("enable %s: broken", feature)
	}
	gateway.active[feature] = true
	gateway.calls = append(gateway.calls, "enable:"+string(feature))
	return nil
}

func (gateway *fakeGateway) Disable(feature model.FeatureID) error {
	gateway.mu.Lock()
	defer gateway.mu.Unlock()
	if gateway.failOn[feature] {
		return fmt.Errorf("disable %s: broken", feature)
	}
	delete(gateway.active, feature)
	gateway.calls = append(gateway.calls, "disable:"+string(feature))
	return nil
}

func (gateway *fakeGateway) Active() []model.FeatureID {
	gateway.mu.Lock()
	defer gateway.mu.Unlock()
	features := make([]model.FeatureID, 0, len(gateway.active))
	for feature := range gateway.active {
		features = append(features, feature)
	}
	sort.Slice(features, func(i, j int) bool { return features[i] < features[j] })
	return features
}

func (gateway *fakeGateway) callLog() []string {
	gateway.mu.Lock()
	defer gateway.mu.Unlock()
	return append([]string(nil), gateway.calls...)
}

// newTestEngine uses a minute-long tick so each tick(now) call in a test
// advances exactly one session minute without waiting on the wall clock.
func newTestEngine(gateway *fakeGateway) *Engine {
	return New(gateway, Config{TickInterval: time.Minute}, nil)
}

func drain(ch <-chan Event) []Event {
	var events []Event
	for {
		select {
		case event := <-ch:
			events = append(events, event)
		default:
			return events
		}
	}
}

func findEvent(events []Event, eventType EventType) (Event, bool) {
	for _, event := range events {
		if event.Type == eventType {
			return event, true
		}
	}
	return Event{}, false
}

func TestStartSessionAppliesMinuteZeroEvents(t *testing.T) {
	gateway := newFakeGateway()
	engine := newTestEngine(gateway)
	defer engine.Close()

	timeline := model.NewTimeline("test", 5)
	timeline.AddStart("flash", 0)

	require.NoError(t, engine.StartSession(timeline))
	assert.Equal(t, StateRunning, engine.State())
	assert.Equal(t, []model.FeatureID{"flash"}, gateway.Active())

	assert.ErrorIs(t, engine.StartSession(timeline), ErrAlreadyRunning)
}

func TestSessionRunsToCompletion(t *testing.T) {
	gateway := newFakeGateway()
	engine := newTestEngine(gateway)
	defer engine.Close()
	events := engine.Subscribe(64)

	timeline := model.NewTimeline("test", 5)
	start := timeline.AddStart("flash", 0)
	_, err := timeline.AddStop(start.ID, 3)
	require.NoError(t, err)
	timeline.AddStart("tint", 1)

	now := time.Date(2026, 8, 24, 16, 0, 0, 0, time.UTC)
	require.NoError(t, engine.StartSession(timeline))

	for minute := 1; minute <= 5; minute++ {
		engine.tick(now.Add(time.Duration(minute) * time.Minute))
	}

	assert.Equal(t, StateIdle, engine.State())
	assert.Equal(t, StateCompleted, engine.LastOutcome())
	assert.Empty(t, gateway.Active())

	completed, ok := findEvent(drain(events), EventCompleted)
	require.True(t, ok)
	assert.True(t, completed.Completed)
	assert.Greater(t, completed.XP, 0)
	assert.Equal(t, 5*time.Minute, completed.Elapsed)
}

func TestStopSessionRestoresBaseline(t *testing.T) {
	gateway := newFakeGateway()
	require.NoError(t, gateway.Enable("tint"))
	engine := newTestEngine(gateway)
	defer engine.Close()
	events := engine.Subscribe(64)

	timeline := model.NewTimeline("test", 5)
	timeline.AddStart("flash", 0)

	now := time.Date(2026, 8, 24, 16, 0, 0, 0, time.UTC)
	require.NoError(t, engine.StartSession(timeline))
	engine.tick(now.Add(1 * time.Minute))
	engine.tick(now.Add(2 * time.Minute))

	engine.StopSession(false)

	// Features enabled by the session are switched off, the pre-session
	// feature survives.
	assert.Equal(t, []model.FeatureID{"tint"}, gateway.Active())
	assert.Equal(t, StateIdle, engine.State())
	assert.Equal(t, StateStoppedEarly, engine.LastOutcome())

	completed, ok := findEvent(drain(events), EventCompleted)
	require.True(t, ok)
	assert.False(t, completed.Completed)
	assert.Zero(t, completed.XP)

	// Stopping again is a no-op.
	engine.StopSession(false)
	assert.Empty(t, drain(events))
}

func TestStopSessionCanAwardCompletionXP(t *testing.T) {
	gateway := newFakeGateway()
	engine := newTestEngine(gateway)
	defer engine.Close()
	events := engine.Subscribe(16)

	timeline := model.NewTimeline("test", 5)
	require.NoError(t, engine.StartSession(timeline))

	engine.StopSession(true)

	completed, ok := findEvent(drain(events), EventCompleted)
	require.True(t, ok)
	assert.Greater(t, completed.XP, 0)
	assert.False(t, completed.Completed)
	assert.Equal(t, StateStoppedEarly, engine.LastOutcome())
}

func TestCoincidingStopRunsBeforeStart(t *testing.T) {
	gateway := newFakeGateway()
	engine := newTestEngine(gateway)
	defer engine.Close()

	timeline := model.NewTimeline("test", 5)
	start := timeline.AddStart("flash", 0)
	_, err := timeline.AddStop(start.ID, 2)
	require.NoError(t, err)
	timeline.AddStart("flash", 2)

	now := time.Date(2026, 8, 24, 16, 0, 0, 0, time.UTC)
	require.NoError(t, engine.StartSession(timeline))
	engine.tick(now.Add(1 * time.Minute))
	engine.tick(now.Add(2 * time.Minute))

	// The minute-2 stop lands before the minute-2 restart, so the feature
	// stays on afterwards.
	assert.Equal(t, []model.FeatureID{"flash"}, gateway.Active())
	assert.Equal(t, []string{"enable:flash", "disable:flash", "enable:flash"}, gateway.callLog())
}

func TestGatewayFailureSkipsEventOnly(t *testing.T) {
	gateway := newFakeGateway()
	gateway.failOn["bubbles"] = true
	engine := newTestEngine(gateway)
	defer engine.Close()
	events := engine.Subscribe(64)

	timeline := model.NewTimeline("test", 2)
	timeline.AddStart("bubbles", 1)
	timeline.AddStart("flash", 1)

	now := time.Date(2026, 8, 24, 16, 0, 0, 0, time.UTC)
	require.NoError(t, engine.StartSession(timeline))
	engine.tick(now.Add(1 * time.Minute))
	engine.tick(now.Add(2 * time.Minute))

	assert.Equal(t, StateCompleted, engine.LastOutcome())

	completed, ok := findEvent(drain(events), EventCompleted)
	require.True(t, ok)
	assert.True(t, completed.Completed)
}

func TestTickAccumulatesSubMinuteIntervals(t *testing.T) {
	gateway := newFakeGateway()
	engine := New(gateway, Config{TickInterval: 20 * time.Second}, nil)
	defer engine.Close()

	timeline := model.NewTimeline("test", 5)
	timeline.AddStart("flash", 1)

	now := time.Date(2026, 8, 24, 16, 0, 0, 0, time.UTC)
	require.NoError(t, engine.StartSession(timeline))

	engine.tick(now.Add(20 * time.Second))
	engine.tick(now.Add(40 * time.Second))
	assert.Empty(t, gateway.Active())

	engine.tick(now.Add(60 * time.Second))
	assert.Equal(t, []model.FeatureID{"flash"}, gateway.Active())
}

func TestSubscribeAfterCloseReturnsClosedChannel(t *testing.T) {
	engine := newTestEngine(newFakeGateway())
	engine.Close()

	events := engine.Subscribe(4)
	_, open := <-events
	assert.False(t, open)
}

func TestProgressEventsReportPercent(t *testing.T) {
	gateway := newFakeGateway()
	engine := newTestEngine(gateway)
	defer engine.Close()
	events := engine.Subscribe(64)

	timeline := model.NewTimeline("test", 4)
	now := time.Date(2026, 8, 24, 16, 0, 0, 0, time.UTC)
	require.NoError(t, engine.StartSession(timeline))
	engine.tick(now.Add(1 * time.Minute))
	engine.tick(now.Add(2 * time.Minute))

	var last Event
	for _, event := range drain(events) {
		if event.Type == EventProgress {
			last = event
		}
	}
	assert.InDelta(t, 0.5, last.Percent, 0.001)
	assert.Equal(t, 2*time.Minute, last.Elapsed)
	assert.Equal(t, 2*time.Minute, last.Remaining)
}
