package engine

import (
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"driftglow/internal/core/model"
	"driftglow/internal/core/ramp"
	"driftglow/internal/core/session"
)

type fakeGateway struct {
	mu      sync.Mutex
	active  map[model.FeatureID]bool
	phrases []string
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{active: map[model.FeatureID]bool{}}
}

func (gateway *fakeGateway) Enable(feature model.FeatureID) error {
	gateway.mu.Lock()
	defer gateway.mu.Unlock()
	gateway.active[feature] = true
	return nil
}

func (gateway *fakeGateway) Disable(feature model.FeatureID) error {
	gateway.mu.Lock()
	defer gateway.mu.Unlock()
	delete(gateway.active, feature)
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

func (gateway *fakeGateway) SetPhrases(phrases []string) {
	gateway.mu.Lock()
	gateway.phrases = append([]string(nil), phrases...)
	gateway.mu.Unlock()
}

func (gateway *fakeGateway) currentPhrases() []string {
	gateway.mu.Lock()
	defer gateway.mu.Unlock()
	return append([]string(nil), gateway.phrases...)
}

type fakeStore struct {
	mu     sync.Mutex
	values map[string]float64
}

func (store *fakeStore) Get(name string) float64 {
	store.mu.Lock()
	defer store.mu.Unlock()
	return store.values[name]
}

func (store *fakeStore) Set(name string, value float64) {
	store.mu.Lock()
	store.values[name] = value
	store.mu.Unlock()
}

func (store *fakeStore) MaxAllowed(string) float64 { return 0 }

type testRig struct {
	controller *Controller
	gateway    *fakeGateway
	store      *fakeStore
}

func newTestRig(t *testing.T, plan RampPlan) *testRig {
	t.Helper()
	gateway := newFakeGateway()
	store := &fakeStore{values: map[string]float64{"flash_rate": 10}}

	sessionEngine := session.New(gateway, session.Config{TickInterval: time.Hour}, nil)
	intensityRamp := ramp.New(store, ramp.Config{TickInterval: time.Hour}, nil)

	timeline := model.NewTimeline("default", 5)
	timeline.AddStart("flash", 0)
	timeline.PhrasePools["calm"] = []string{"drift", "settle"}

	controller := New(sessionEngine, intensityRamp,
		gateway,
		func() *model.Timeline { return timeline },
		func() RampPlan { return plan },
		nil)
	intensityRamp.SetControl(controller)
	t.Cleanup(controller.Shutdown)

	return &testRig{controller: controller, gateway: gateway, store: store}
}

func TestRequestStartUsesDefaultTimeline(t *testing.T) {
	rig := newTestRig(t, RampPlan{})

	rig.controller.RequestStart()

	assert.True(t, rig.controller.IsRunning())
	assert.Equal(t, []model.FeatureID{"flash"}, rig.gateway.Active())

	phrases := rig.gateway.currentPhrases()
	sort.Strings(phrases)
	assert.Equal(t, []string{"drift", "settle"}, phrases)
}

func TestStartTimelineLaunchesRampWhenEnabled(t *testing.T) {
	rig := newTestRig(t, RampPlan{
		Enabled:         true,
		Parameters:      []string{"flash_rate"},
		DurationMinutes: 10,
		Multiplier:      2,
	})

	rig.controller.RequestStart()
	assert.True(t, rig.controller.RampRunning())

	rig.controller.RequestStop()
	assert.False(t, rig.controller.IsRunning())
	assert.False(t, rig.controller.RampRunning())
	assert.Equal(t, float64(10), rig.store.Get("flash_rate"))
	assert.Empty(t, rig.gateway.Active())
}

func TestRequestStartWhileRunningIsIgnored(t *testing.T) {
	rig := newTestRig(t, RampPlan{})

	rig.controller.RequestStart()
	rig.controller.RequestStart()

	assert.True(t, rig.controller.IsRunning())
}

func TestRequestStopWithNothingRunning(t *testing.T) {
	rig := newTestRig(t, RampPlan{})

	rig.controller.RequestStop()
	assert.False(t, rig.controller.IsRunning())
}

func TestStandaloneRamp(t *testing.T) {
	rig := newTestRig(t, RampPlan{
		Parameters:      []string{"flash_rate"},
		DurationMinutes: 10,
		Multiplier:      3,
	})

	require.NoError(t, rig.controller.StartRamp())
	assert.True(t, rig.controller.RampRunning())
	assert.False(t, rig.controller.IsRunning())

	rig.controller.StopRamp()
	assert.False(t, rig.controller.RampRunning())
	assert.Equal(t, float64(10), rig.store.Get("flash_rate"))
}
