package effects

import "sync"

// DefaultParameters seeds the store with baseline effect parameters.
var DefaultParameters = map[string]float64{
	"flash_rate":     6,    // pulses per minute
	"phrase_rate":    10,   // phrases per minute
	"bubble_density": 12,   // concurrent bubbles
	"tint_opacity":   0.25, // 0..1
	"volume":         0.5,  // 0..1
}

// DefaultParameterLimits caps each parameter. The ramp reads these ceilings
// instead of owning them.
var DefaultParameterLimits = map[string]float64{
	"flash_rate":     30,
	"phrase_rate":    60,
	"bubble_density": 60,
	"tint_opacity":   0.6,
	"volume":         1,
}

// Store is the in-memory parameter store shared by renderers and the
// intensity ramp. Access is serialized by a mutex.
type Store struct {
	mu     sync.Mutex
	values map[string]float64
	limits map[string]float64
}

// NewStore creates a Store seeded with the default parameters and limits.
func NewStore() *Store {
	values := make(map[string]float64, len(DefaultParameters))
	for name, value := range DefaultParameters {
		values[name] = value
	}
	limits := make(map[string]float64, len(DefaultParameterLimits))
	for name, limit := range DefaultParameterLimits {
		limits[name] = limit
	}
	return &Store{values: values, limits: limits}
}

// Get returns the current value of a parameter, zero if unknown.
func (store *Store) Get(name string) float64 {
	store.mu.Lock()
	defer store.mu.Unlock()
	return store.values[name]
}

// Set writes a parameter value, clamped to the parameter's ceiling.
func (store *Store) Set(name string, value float64) {
	store.mu.Lock()
	defer store.mu.Unlock()
	if limit, ok := store.limits[name]; ok && value > limit {
		value = limit
	}
	if value < 0 {
		value = 0
	}
	store.values[name] = value
}

// MaxAllowed returns the ceiling for a parameter, zero if uncapped.
func (store *Store) MaxAllowed(name string) float64 {
	store.mu.Lock()
	defer store.mu.Unlock()
	return store.limits[name]
}
