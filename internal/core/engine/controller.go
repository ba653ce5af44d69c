package engine

import (
	"log/slog"
	"sync"

	"driftglow/internal/core/model"
	"driftglow/internal/core/ramp"
	"driftglow/internal/core/session"
)

// RampPlan describes how the intensity ramp runs alongside a session.
type RampPlan struct {
	Enabled         bool
	Parameters      []string
	DurationMinutes int
	Multiplier      float64
	EndsSession     bool
}

// PhraseSink is implemented by gateways that render timeline phrase pools.
type PhraseSink interface {
	SetPhrases(phrases []string)
}

// Controller owns the session engine and the intensity ramp and exposes the
// single start/stop surface shared by the tray, the scheduler, and the ramp.
type Controller struct {
	mu       sync.Mutex
	session  *session.Engine
	ramp     *ramp.Ramp
	gateway  session.FeatureGateway
	logger   *slog.Logger
	timeline func() *model.Timeline
	rampPlan func() RampPlan
}

// New creates a Controller. timeline supplies the default timeline for
// scheduler-initiated starts; rampPlan is read on each start.
func New(sessionEngine *session.Engine, intensityRamp *ramp.Ramp, gateway session.FeatureGateway, timeline func() *model.Timeline, rampPlan func() RampPlan, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{
		session:  sessionEngine,
		ramp:     intensityRamp,
		gateway:  gateway,
		logger:   logger,
		timeline: timeline,
		rampPlan: rampPlan,
	}
}

// RequestStart starts a run with the default timeline. Used by the scheduler;
// a run already in progress is left alone.
func (controller *Controller) RequestStart() {
	timeline := controller.timeline()
	if timeline == nil {
		controller.logger.Warn("start requested with no timeline configured")
		return
	}
	if err := controller.StartTimeline(timeline); err != nil {
		controller.logger.Warn("start request rejected", "error", err)
	}
}

// StartTimeline starts a run playing the given timeline, feeding its phrase
// pools to the gateway and starting the ramp when the plan enables it.
func (controller *Controller) StartTimeline(timeline *model.Timeline) error {
	controller.mu.Lock()
	defer controller.mu.Unlock()

	if sink, ok := controller.gateway.(PhraseSink); ok {
		sink.SetPhrases(flattenPools(timeline.PhrasePools))
	}
	if err := controller.session.StartSession(timeline); err != nil {
		return err
	}

	plan := controller.rampPlan()
	if plan.Enabled && !controller.ramp.IsRunning() {
		if err := controller.ramp.Start(plan.Parameters, plan.DurationMinutes, plan.Multiplier, plan.EndsSession); err != nil {
			controller.logger.Warn("ramp start rejected", "error", err)
		}
	}
	return nil
}

// RequestStop ends the run: the session is stopped as abandoned and the ramp
// restores its baseline. Safe to call with nothing running.
func (controller *Controller) RequestStop() {
	controller.session.StopSession(false)
	controller.ramp.Stop()
}

// IsRunning reports whether a session is active.
func (controller *Controller) IsRunning() bool {
	return controller.session.IsRunning()
}

// StartRamp starts the ramp on its own, independent of any session.
func (controller *Controller) StartRamp() error {
	plan := controller.rampPlan()
	return controller.ramp.Start(plan.Parameters, plan.DurationMinutes, plan.Multiplier, plan.EndsSession)
}

// StopRamp stops the ramp, restoring parameter baselines.
func (controller *Controller) StopRamp() {
	controller.ramp.Stop()
}

// RampRunning reports whether the ramp is active.
func (controller *Controller) RampRunning() bool {
	return controller.ramp.IsRunning()
}

// Shutdown stops everything and restores baselines. Called on app exit.
func (controller *Controller) Shutdown() {
	controller.RequestStop()
	controller.session.Close()
}

func flattenPools(pools map[string][]string) []string {
	var phrases []string
	for _, pool := range pools {
		phrases = append(phrases, pool...)
	}
	return phrases
}
