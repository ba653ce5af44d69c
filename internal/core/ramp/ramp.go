package ramp

import (
	"errors"
	"log/slog"
	"sync"
	"time"
)

// ErrAlreadyRunning indicates the ramp is active and Start was rejected.
var ErrAlreadyRunning = errors.New("ramp already running")

// ParameterStore is the shared numeric parameter state the ramp scales.
// Ceilings are policy constants owned by the store, not the ramp.
type ParameterStore interface {
	Get(name string) float64
	Set(name string, value float64)
	MaxAllowed(name string) float64
}

// EngineControl lets the ramp request the main engine stop on completion.
type EngineControl interface {
	RequestStop()
}

// Config contains runtime options for Ramp.
type Config struct {
	TickInterval time.Duration
	Now          func() time.Time
}

// Ramp linearly scales a set of parameters from their captured baseline
// toward baseline*multiplier over a fixed duration. Stopping restores every
// baseline value exactly.
type Ramp struct {
	mu      sync.Mutex
	store   ParameterStore
	control EngineControl
	options Config
	logger  *slog.Logger

	running       bool
	stopCh        chan struct{}
	baseline      map[string]float64
	startedAt     time.Time
	duration      time.Duration
	multiplier    float64
	endOnComplete bool
	completed     bool
}

// New creates a Ramp bound to a parameter store.
func New(store ParameterStore, options Config, logger *slog.Logger) *Ramp {
	if options.TickInterval <= 0 {
		options.TickInterval = 2 * time.Second
	}
	if options.Now == nil {
		options.Now = time.Now
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Ramp{store: store, options: options, logger: logger}
}

// SetControl injects the engine control used when endOnComplete is set.
func (ramp *Ramp) SetControl(control EngineControl) {
	ramp.mu.Lock()
	ramp.control = control
	ramp.mu.Unlock()
}

// IsRunning reports whether the ramp is active.
func (ramp *Ramp) IsRunning() bool {
	ramp.mu.Lock()
	defer ramp.mu.Unlock()
	return ramp.running
}

// Start captures the current value of each linked parameter and begins
// ticking toward the multiplier target.
func (ramp *Ramp) Start(linked []string, durationMinutes int, multiplier float64, endOnComplete bool) error {
	ramp.mu.Lock()
	if ramp.running {
		ramp.mu.Unlock()
		return ErrAlreadyRunning
	}
	if durationMinutes < 1 {
		durationMinutes = 1
	}
	if multiplier < 1 {
		multiplier = 1
	}

	ramp.baseline = make(map[string]float64, len(linked))
	for _, name := range linked {
		ramp.baseline[name] = ramp.store.Get(name)
	}
	ramp.startedAt = ramp.options.Now()
	ramp.duration = time.Duration(durationMinutes) * time.Minute
	ramp.multiplier = multiplier
	ramp.endOnComplete = endOnComplete
	ramp.completed = false
	ramp.stopCh = make(chan struct{})
	ramp.running = true
	ramp.mu.Unlock()

	ramp.logger.Info("ramp started",
		"parameters", len(linked),
		"duration_minutes", durationMinutes,
		"multiplier", multiplier,
	)

	go ramp.run()
	return nil
}

// Stop cancels the ramp and restores every linked parameter to its captured
// baseline value exactly. Idempotent.
func (ramp *Ramp) Stop() {
	ramp.mu.Lock()
	if !ramp.running {
		ramp.mu.Unlock()
		return
	}
	ramp.running = false
	close(ramp.stopCh)

	for name, value := range ramp.baseline {
		ramp.store.Set(name, value)
	}
	ramp.baseline = nil
	ramp.mu.Unlock()

	ramp.logger.Info("ramp stopped")
}

func (ramp *Ramp) run() {
	ramp.mu.Lock()
	stopCh := ramp.stopCh
	ramp.mu.Unlock()

	ticker := time.NewTicker(ramp.options.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
			if control := ramp.tick(ramp.options.Now()); control != nil {
				// Engine shutdown calls Stop on this ramp in turn.
				control.RequestStop()
			}
		}
	}
}

// tick writes the interpolated value for every linked parameter. It returns
// the engine control to notify when the ramp just completed with
// endOnComplete set, nil otherwise; the caller invokes it outside the lock.
func (ramp *Ramp) tick(now time.Time) EngineControl {
	ramp.mu.Lock()
	defer ramp.mu.Unlock()
	if !ramp.running {
		return nil
	}

	progress := float64(now.Sub(ramp.startedAt)) / float64(ramp.duration)
	if progress < 0 {
		progress = 0
	}
	if progress > 1 {
		progress = 1
	}

	current := 1 + (ramp.multiplier-1)*progress
	for name, baseline := range ramp.baseline {
		value := baseline * current
		if max := ramp.store.MaxAllowed(name); max > 0 && value > max {
			value = max
		}
		ramp.store.Set(name, value)
	}

	if progress >= 1 && !ramp.completed {
		ramp.completed = true
		ramp.logger.Info("ramp complete", "end_on_complete", ramp.endOnComplete)
		if ramp.endOnComplete {
			return ramp.control
		}
	}
	return nil
}
