package service

import (
	"math/rand"
	"sync"
	"time"

	"github.com/brunoga/deep"

	"github.com/zooguide/backend/internal/domain"
	"github.com/zooguide/backend/pkg/utils"
)

// FacilitySnapshot is an immutable copy of the registry at one version
type FacilitySnapshot struct {
	Version    uint64            `json:"version"`
	TakenAt    time.Time         `json:"taken_at"`
	Facilities []domain.Facility `json:"facilities"`

	index map[string]int
}

func newSnapshot(version uint64, at time.Time, facilities []domain.Facility) FacilitySnapshot {
	index := make(map[string]int, len(facilities))
	for i, f := range facilities {
		index[f.ID] = i
	}
	return FacilitySnapshot{Version: version, TakenAt: at, Facilities: facilities, index: index}
}

// Find returns the facility with id
func (s FacilitySnapshot) Find(id string) (domain.Facility, bool) {
	i, ok := s.index[id]
	if !ok {
		return domain.Facility{}, false
	}
	return s.Facilities[i], true
}

// Has reports whether id is a known facility
func (s FacilitySnapshot) Has(id string) bool {
	_, ok := s.index[id]
	return ok
}

// SnapshotSource hands out consistent facility snapshots
type SnapshotSource interface {
	Snapshot() FacilitySnapshot
}

// FacilityRegistry is the single owner of live facility occupancy.
// Tick is the only mutator; every reader works on a Snapshot.
type FacilityRegistry struct {
	mu         sync.RWMutex
	facilities []domain.Facility
	version    uint64
	rng        *rand.Rand
	clock      Clock
	metrics    *Metrics
}

// RegistryOption customizes a FacilityRegistry
type RegistryOption func(*FacilityRegistry)

// WithRand sets the random source used by Tick and seeding
func WithRand(rng *rand.Rand) RegistryOption {
	return func(r *FacilityRegistry) { r.rng = rng }
}

// WithRegistryClock sets the clock stamped on snapshots
func WithRegistryClock(c Clock) RegistryOption {
	return func(r *FacilityRegistry) { r.clock = c }
}

// WithRegistryMetrics attaches metrics observed on every tick
func WithRegistryMetrics(m *Metrics) RegistryOption {
	return func(r *FacilityRegistry) { r.metrics = m }
}

// WithRandomizedVisitors replaces seed visitor counts with random ones in [0, capacity)
func WithRandomizedVisitors() RegistryOption {
	return func(r *FacilityRegistry) {
		for i := range r.facilities {
			if r.facilities[i].Capacity > 0 {
				r.facilities[i].SetVisitors(r.rng.Intn(r.facilities[i].Capacity))
			}
		}
	}
}

// NewFacilityRegistry creates a registry from seed facilities. Options are
// applied in order, so WithRand must precede WithRandomizedVisitors.
func NewFacilityRegistry(seed []domain.Facility, opts ...RegistryOption) *FacilityRegistry {
	r := &FacilityRegistry{
		facilities: deep.MustCopy(seed),
		rng:        rand.New(rand.NewSource(time.Now().UnixNano())),
		clock:      SystemClock{},
	}
	for i := range r.facilities {
		f := &r.facilities[i]
		f.SetVisitors(utils.Clamp(f.Visitors, 0, f.MaxVisitors()))
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Snapshot returns a deep copy of the current state
func (r *FacilityRegistry) Snapshot() FacilitySnapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.snapshotLocked()
}

func (r *FacilityRegistry) snapshotLocked() FacilitySnapshot {
	return newSnapshot(r.version, r.clock.Now(), deep.MustCopy(r.facilities))
}

// Tick applies one step of the occupancy random walk: each facility gains
// between -4 and +3 visitors, clamped to [0, floor(capacity*1.3)].
func (r *FacilityRegistry) Tick() FacilitySnapshot {
	r.mu.Lock()
	for i := range r.facilities {
		f := &r.facilities[i]
		delta := r.rng.Intn(8) - 4
		f.SetVisitors(utils.Clamp(f.Visitors+delta, 0, f.MaxVisitors()))
	}
	r.version++
	snap := r.snapshotLocked()
	r.mu.Unlock()

	r.metrics.observeTick(snap)
	return snap
}
