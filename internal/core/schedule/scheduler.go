package schedule

import (
	"log/slog"
	"sync"
	"time"
)

// EngineControl is the start/stop seam the scheduler drives.
type EngineControl interface {
	RequestStart()
	RequestStop()
	IsRunning() bool
}

// Options contains runtime options for Scheduler.
type Options struct {
	TickInterval time.Duration
	Now          func() time.Time
}

// Scheduler compares wall-clock day and time against the weekly window and
// requests engine start/stop accordingly.
type Scheduler struct {
	mu       sync.Mutex
	control  EngineControl
	configFn func() Config
	options  Options
	logger   *slog.Logger

	autoStarted        bool
	manuallySuppressed bool
	stopCh             chan struct{}
	running            bool
}

// New creates a Scheduler. configFn is read on every tick so configuration
// edits take effect without a restart.
func New(control EngineControl, configFn func() Config, options Options, logger *slog.Logger) *Scheduler {
	if options.TickInterval <= 0 {
		options.TickInterval = 30 * time.Second
	}
	if options.Now == nil {
		options.Now = time.Now
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		control:  control,
		configFn: configFn,
		options:  options,
		logger:   logger,
	}
}

// Start launches the control loop, ticking once immediately.
func (scheduler *Scheduler) Start() {
	scheduler.mu.Lock()
	if scheduler.running {
		scheduler.mu.Unlock()
		return
	}
	scheduler.running = true
	scheduler.stopCh = make(chan struct{})
	stopCh := scheduler.stopCh
	scheduler.mu.Unlock()

	go func() {
		scheduler.Tick(scheduler.options.Now())
		ticker := time.NewTicker(scheduler.options.TickInterval)
		defer ticker.Stop()
		for {
			select {
			case <-stopCh:
				return
			case now := <-ticker.C:
				scheduler.Tick(now)
			}
		}
	}()
}

// Stop terminates the control loop.
func (scheduler *Scheduler) Stop() {
	scheduler.mu.Lock()
	if !scheduler.running {
		scheduler.mu.Unlock()
		return
	}
	scheduler.running = false
	close(scheduler.stopCh)
	scheduler.mu.Unlock()
}

// Tick runs one scheduling decision. Inside the window it starts the engine
// once; leaving the window stops an auto-started engine and rearms the latch.
func (scheduler *Scheduler) Tick(now time.Time) {
	config := scheduler.configFn()
	if !config.Enabled {
		return
	}

	inWindow := IsInWindow(now, config)

	scheduler.mu.Lock()
	var action func()
	switch {
	case inWindow && !scheduler.control.IsRunning() && !scheduler.autoStarted && !scheduler.manuallySuppressed:
		scheduler.autoStarted = true
		action = scheduler.control.RequestStart
		scheduler.logger.Info("schedule window entered", "window", config.Start.String()+"-"+config.End.String())
	case !inWindow && scheduler.control.IsRunning() && scheduler.autoStarted:
		scheduler.autoStarted = false
		action = scheduler.control.RequestStop
		scheduler.logger.Info("schedule window exited")
	case !inWindow:
		scheduler.autoStarted = false
		scheduler.manuallySuppressed = false
	}
	scheduler.mu.Unlock()

	if action != nil {
		action()
	}
}

// NoteManualStart records a user-initiated start, clearing the suppression
// latch so the window behaves normally again.
func (scheduler *Scheduler) NoteManualStart() {
	scheduler.mu.Lock()
	scheduler.manuallySuppressed = false
	scheduler.mu.Unlock()
}

// NoteManualStop records a user-initiated stop. Inside the window this
// suppresses auto-restart until the window is exited and re-entered.
func (scheduler *Scheduler) NoteManualStop() {
	config := scheduler.configFn()
	inWindow := config.Enabled && IsInWindow(scheduler.options.Now(), config)

	scheduler.mu.Lock()
	if inWindow {
		scheduler.manuallySuppressed = true
	}
	scheduler.autoStarted = false
	scheduler.mu.Unlock()
}
