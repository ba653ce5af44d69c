package session

import (
	"errors"
	"log/slog"
	"sync"
	"time"

	"driftglow/internal/core/model"
)

// ErrAlreadyRunning indicates a session is active and a new one was rejected.
var ErrAlreadyRunning = errors.New("session already running")

// FeatureGateway switches effects on and off. Calls are idempotent and may
// fail per-call without halting the engine.
type FeatureGateway interface {
	Enable(feature model.FeatureID) error
	Disable(feature model.FeatureID) error
	Active() []model.FeatureID
}

// Config contains runtime options for Engine.
type Config struct {
	// TickInterval is both the wall-clock tick period and the amount of
	// session time each tick advances. One second by default.
	TickInterval time.Duration
	Now          func() time.Time
}

// Engine drives a single timeline through real time, applying its events to
// the feature gateway and emitting progress and completion events.
type Engine struct {
	mu         sync.Mutex
	gateway    FeatureGateway
	options    Config
	logger     *slog.Logger
	state      State
	outcome    State
	timeline   *model.Timeline
	elapsed    time.Duration
	lastMinute int
	baseline   map[model.FeatureID]bool
	events     []chan Event
	stopCh     chan struct{}
	running    bool
	closed     bool
}

// New creates an Engine bound to a feature gateway.
func New(gateway FeatureGateway, options Config, logger *slog.Logger) *Engine {
	if options.TickInterval <= 0 {
		options.TickInterval = time.Second
	}
	if options.Now == nil {
		options.Now = time.Now
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		gateway: gateway,
		options: options,
		logger:  logger,
		state:   StateIdle,
		outcome: StateIdle,
	}
}

// Subscribe registers a new observer channel. After Close the returned
// channel is already closed, so a ranging consumer exits immediately.
func (engine *Engine) Subscribe(buffer int) <-chan Event {
	if buffer <= 0 {
		buffer = 1
	}
	ch := make(chan Event, buffer)
	engine.mu.Lock()
	if engine.closed {
		engine.mu.Unlock()
		close(ch)
		return ch
	}
	engine.events = append(engine.events, ch)
	engine.mu.Unlock()
	return ch
}

// State returns the current engine state.
func (engine *Engine) State() State {
	engine.mu.Lock()
	defer engine.mu.Unlock()
	return engine.state
}

// LastOutcome reports how the most recent session ended.
func (engine *Engine) LastOutcome() State {
	engine.mu.Lock()
	defer engine.mu.Unlock()
	return engine.outcome
}

// IsRunning reports whether a session is active.
func (engine *Engine) IsRunning() bool {
	return engine.State() == StateRunning
}

// StartSession begins playing a timeline. The engine snapshots the gateway
// state as the baseline to restore, applies every minute-zero event, and
// starts ticking. Fails with ErrAlreadyRunning if a session is active.
func (engine *Engine) StartSession(timeline *model.Timeline) error {
	engine.mu.Lock()
	if engine.state == StateRunning {
		engine.mu.Unlock()
		return ErrAlreadyRunning
	}
	if engine.closed {
		engine.mu.Unlock()
		return errors.New("engine closed")
	}

	engine.timeline = timeline.Clone()
	engine.elapsed = 0
	engine.lastMinute = 0
	engine.baseline = engine.snapshotLocked()
	engine.state = StateRunning
	engine.outcome = StateRunning
	engine.stopCh = make(chan struct{})
	engine.running = true

	now := engine.options.Now()
	for _, event := range engine.timeline.SortedEvents() {
		if event.Minute != 0 {
			continue
		}
		engine.applyLocked(event, now)
	}
	engine.emitProgressLocked(now)
	engine.mu.Unlock()

	engine.logger.Info("session started",
		"timeline", timeline.Name,
		"duration_minutes", timeline.DurationMinutes,
	)

	go engine.run()
	return nil
}

// StopSession ends the session early, restoring the baseline feature state.
// The completed flag only controls whether the completion event carries XP;
// the outcome is StoppedEarly either way. Calling it with no session active
// is a no-op.
func (engine *Engine) StopSession(completed bool) {
	engine.mu.Lock()
	if engine.state != StateRunning {
		engine.mu.Unlock()
		return
	}
	engine.finishLocked(StateStoppedEarly, completed)
	engine.mu.Unlock()
}

// Close stops any running session and closes observer channels.
func (engine *Engine) Close() {
	engine.mu.Lock()
	if engine.closed {
		engine.mu.Unlock()
		return
	}
	if engine.state == StateRunning {
		engine.finishLocked(StateStoppedEarly, false)
	}
	engine.closed = true
	events := engine.events
	engine.events = nil
	engine.mu.Unlock()

	for _, ch := range events {
		close(ch)
	}
}

func (engine *Engine) run() {
	engine.mu.Lock()
	stopCh := engine.stopCh
	engine.mu.Unlock()

	ticker := time.NewTicker(engine.options.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
			engine.tick(engine.options.Now())
		}
	}
}

// tick advances session time by one tick interval, applying every event whose
// minute falls in the newly crossed boundary range.
func (engine *Engine) tick(now time.Time) {
	engine.mu.Lock()
	defer engine.mu.Unlock()
	if !engine.running {
		return
	}

	engine.elapsed += engine.options.TickInterval
	duration := time.Duration(engine.timeline.DurationMinutes) * time.Minute

	boundary := int(engine.elapsed / time.Minute)
	done := engine.elapsed >= duration
	if done {
		boundary = engine.timeline.DurationMinutes
	}

	if boundary > engine.lastMinute {
		for _, event := range engine.timeline.SortedEvents() {
			if event.Minute <= engine.lastMinute || event.Minute > boundary {
				continue
			}
			engine.applyLocked(event, now)
		}
		engine.lastMinute = boundary
	}

	engine.emitProgressLocked(now)

	if done {
		engine.finishLocked(StateCompleted, true)
	}
}

// applyLocked forwards one timeline event to the gateway. A gateway failure
// is logged and skipped; a single feature must not halt the session.
func (engine *Engine) applyLocked(event model.Event, now time.Time) {
	var err error
	switch event.Kind {
	case model.EventStart:
		err = engine.gateway.Enable(event.Feature)
	case model.EventStop:
		err = engine.gateway.Disable(event.Feature)
	}
	if err != nil {
		engine.logger.Warn("apply timeline event",
			"feature", string(event.Feature),
			"kind", string(event.Kind),
			"minute", event.Minute,
			"error", err,
		)
		return
	}

	engine.emitLocked(Event{
		Type:     EventPhaseChange,
		Timeline: engine.timeline.Name,
		Feature:  event.Feature,
		Kind:     event.Kind,
		Elapsed:  engine.elapsed,
		At:       now,
	})
}

func (engine *Engine) finishLocked(outcome State, awardXP bool) {
	duration := time.Duration(engine.timeline.DurationMinutes) * time.Minute

	engine.restoreBaselineLocked()

	xp := 0
	if awardXP {
		xp = model.CalculateDifficulty(engine.timeline).XP
	}

	engine.running = false
	close(engine.stopCh)
	engine.outcome = outcome
	engine.state = StateIdle

	elapsed := engine.elapsed
	if elapsed > duration {
		elapsed = duration
	}

	engine.emitLocked(Event{
		Type:      EventCompleted,
		Timeline:  engine.timeline.Name,
		Elapsed:   elapsed,
		XP:        xp,
		Completed: outcome == StateCompleted,
		At:        engine.options.Now(),
	})

	engine.logger.Info("session finished",
		"timeline", engine.timeline.Name,
		"outcome", string(outcome),
		"xp", xp,
	)
}

func (engine *Engine) snapshotLocked() map[model.FeatureID]bool {
	baseline := map[model.FeatureID]bool{}
	for _, feature := range engine.gateway.Active() {
		baseline[feature] = true
	}
	return baseline
}

// restoreBaselineLocked returns the gateway to the exact feature set captured
// at session start.
func (engine *Engine) restoreBaselineLocked() {
	current := map[model.FeatureID]bool{}
	for _, feature := range engine.gateway.Active() {
		current[feature] = true
	}

	for feature := range current {
		if !engine.baseline[feature] {
			if err := engine.gateway.Disable(feature); err != nil {
				engine.logger.Warn("restore baseline", "feature", string(feature), "error", err)
			}
		}
	}
	for feature := range engine.baseline {
		if !current[feature] {
			if err := engine.gateway.Enable(feature); err != nil {
				engine.logger.Warn("restore baseline", "feature", string(feature), "error", err)
			}
		}
	}
}

func (engine *Engine) emitProgressLocked(now time.Time) {
	duration := time.Duration(engine.timeline.DurationMinutes) * time.Minute
	remaining := duration - engine.elapsed
	if remaining < 0 {
		remaining = 0
	}
	percent := 1.0
	if duration > 0 {
		percent = float64(engine.elapsed) / float64(duration)
	}
	if percent > 1 {
		percent = 1
	}

	engine.emitLocked(Event{
		Type:      EventProgress,
		Timeline:  engine.timeline.Name,
		Elapsed:   engine.elapsed,
		Remaining: remaining,
		Percent:   percent,
		At:        now,
	})
}

func (engine *Engine) emitLocked(event Event) {
	events := append([]chan Event(nil), engine.events...)
	for _, ch := range events {
		select {
		case ch <- event:
		default:
		}
	}
}
