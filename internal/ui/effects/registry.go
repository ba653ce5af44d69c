package effects

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"sort"
	"sync"
	"time"

	"driftglow/internal/core/model"
	"driftglow/internal/ui/overlay"
)

// renderer is one running effect. Stop must cancel its animation goroutine
// and detach its canvas objects.
type renderer interface {
	Start(ctx context.Context)
	Stop()
}

// Registry is the feature gateway: it maps feature IDs to overlay renderers
// and tracks which are active. Enable and Disable are idempotent.
type Registry struct {
	mu      sync.Mutex
	surface *overlay.Window
	store   *Store
	logger  *slog.Logger
	rng     *rand.Rand
	phrases []string
	active  map[model.FeatureID]*activeEffect
}

type activeEffect struct {
	renderer renderer
	cancel   context.CancelFunc
}

// NewRegistry creates the gateway bound to an overlay surface and the shared
// parameter store.
func NewRegistry(surface *overlay.Window, store *Store, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		surface: surface,
		store:   store,
		logger:  logger,
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
		active:  map[model.FeatureID]*activeEffect{},
	}
}

// SetPhrases replaces the phrase list used by text-emitting effects.
func (registry *Registry) SetPhrases(phrases []string) {
	registry.mu.Lock()
	registry.phrases = append([]string(nil), phrases...)
	registry.mu.Unlock()
}

// Enable switches a feature on. Enabling an active feature is a no-op;
// unknown features fail without affecting anything else.
func (registry *Registry) Enable(feature model.FeatureID) error {
	registry.mu.Lock()
	defer registry.mu.Unlock()

	if _, ok := registry.active[feature]; ok {
		return nil
	}

	effect, err := registry.buildLocked(feature)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	registry.active[feature] = &activeEffect{renderer: effect, cancel: cancel}
	effect.Start(ctx)
	registry.logger.Debug("effect enabled", "feature", string(feature))
	return nil
}

// Disable switches a feature off. Disabling an inactive feature is a no-op.
func (registry *Registry) Disable(feature model.FeatureID) error {
	registry.mu.Lock()
	effect, ok := registry.active[feature]
	if ok {
		delete(registry.active, feature)
	}
	registry.mu.Unlock()

	if !ok {
		return nil
	}
	effect.cancel()
	effect.renderer.Stop()
	registry.logger.Debug("effect disabled", "feature", string(feature))
	return nil
}

// Active returns the currently enabled features in stable order.
func (registry *Registry) Active() []model.FeatureID {
	registry.mu.Lock()
	defer registry.mu.Unlock()

	features := make([]model.FeatureID, 0, len(registry.active))
	for feature := range registry.active {
		features = append(features, feature)
	}
	sort.Slice(features, func(i, j int) bool { return features[i] < features[j] })
	return features
}

// DisableAll switches every active feature off.
func (registry *Registry) DisableAll() {
	for _, feature := range registry.Active() {
		_ = registry.Disable(feature)
	}
}

func (registry *Registry) buildLocked(feature model.FeatureID) (renderer, error) {
	// Each renderer animates on its own goroutine, so it gets its own rng.
	rng := rand.New(rand.NewSource(registry.rng.Int63()))

	switch feature {
	case "flash":
		return newFlash(registry.surface, registry.store, rng), nil
	case "subliminal":
		return newSubliminal(registry.surface, registry.store, rng, registry.phraseFn()), nil
	case "bubbles":
		return newBubbles(registry.surface, registry.store, rng), nil
	case "corner_gif":
		return newCornerSprite(registry.surface, rng), nil
	case "tint":
		return newTint(registry.surface, registry.store), nil
	default:
		return nil, fmt.Errorf("unknown feature %q", feature)
	}
}

// phraseFn samples the current phrase list; renderers hold the function, not
// the slice, so SetPhrases takes effect mid-run.
func (registry *Registry) phraseFn() func() string {
	return func() string {
		registry.mu.Lock()
		defer registry.mu.Unlock()
		if len(registry.phrases) == 0 {
			return ""
		}
		return registry.phrases[registry.rng.Intn(len(registry.phrases))]
	}
}
