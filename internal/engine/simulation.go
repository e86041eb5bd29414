// Simulation holds the systems being animated and fans out phase frames.
package engine

import (
	"log/slog"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/talgya/planetgen/internal/system"
)

// subscriberBuffer is the per-subscriber frame backlog. Slow subscribers
// drop frames rather than block the tick.
const subscriberBuffer = 16

// Frame is the orbital phase of every body in one system after a tick.
type Frame struct {
	System uuid.UUID          `json:"system"`
	Tick   uint64             `json:"tick"`
	Phases map[string]float64 `json:"phases"`
}

// Simulation is the live set of animated systems. All access to a held
// system goes through its lock.
type Simulation struct {
	Animator Animator

	mu       sync.RWMutex
	systems  map[uuid.UUID]*system.System
	lastTick uint64

	subMu   sync.Mutex
	subs    map[int]subscriber
	nextSub int
}

type subscriber struct {
	system uuid.UUID
	ch     chan Frame
}

// NewSimulation creates an empty simulation.
func NewSimulation(speedFactor float64) *Simulation {
	return &Simulation{
		Animator: Animator{SpeedFactor: speedFactor},
		systems:  make(map[uuid.UUID]*system.System),
		subs:     make(map[int]subscriber),
	}
}

// CurrentTick returns the most recently processed tick number.
func (s *Simulation) CurrentTick() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastTick
}

// Add starts animating sys.
func (s *Simulation) Add(sys *system.System) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.systems[sys.ID] = sys
}

// Remove stops animating a system.
func (s *Simulation) Remove(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.systems, id)
}

// Len returns the number of held systems.
func (s *Simulation) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.systems)
}

// View calls fn with the system under the read lock. fn must not retain sys.
func (s *Simulation) View(id uuid.UUID, fn func(sys *system.System)) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sys, ok := s.systems[id]
	if ok {
		fn(sys)
	}
	return ok
}

// IDs returns the held system IDs in sorted order.
func (s *Simulation) IDs() []uuid.UUID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]uuid.UUID, 0, len(s.systems))
	for id := range s.systems {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })
	return ids
}

// TickOrbits advances every system by dt simulated seconds and publishes a
// frame per system to its subscribers. It is the engine's OnTick.
func (s *Simulation) TickOrbits(tick uint64, dt float64) {
	s.mu.Lock()
	s.lastTick = tick
	frames := make(map[uuid.UUID]Frame, len(s.systems))
	for id, sys := range s.systems {
		s.Animator.Advance(sys, dt)
		frames[id] = snapshot(id, tick, sys)
	}
	s.mu.Unlock()

	s.publish(frames)
}

// Snapshot returns the current frame of a held system.
func (s *Simulation) Snapshot(id uuid.UUID) (Frame, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sys, ok := s.systems[id]
	if !ok {
		return Frame{}, false
	}
	return snapshot(id, s.lastTick, sys), true
}

func snapshot(id uuid.UUID, tick uint64, sys *system.System) Frame {
	f := Frame{System: id, Tick: tick, Phases: make(map[string]float64, sys.Len())}
	for _, b := range sys.Bodies() {
		if b.Planet != nil {
			f.Phases[b.Name] = b.Position.T
		}
	}
	return f
}

// Subscribe registers for frames of one system. Call Unsubscribe with the
// returned ID when done.
func (s *Simulation) Subscribe(sysID uuid.UUID) (int, <-chan Frame) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	id := s.nextSub
	s.nextSub++
	ch := make(chan Frame, subscriberBuffer)
	s.subs[id] = subscriber{system: sysID, ch: ch}
	return id, ch
}

// Unsubscribe removes a subscriber and closes its channel.
func (s *Simulation) Unsubscribe(id int) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	if sub, ok := s.subs[id]; ok {
		close(sub.ch)
		delete(s.subs, id)
	}
}

func (s *Simulation) publish(frames map[uuid.UUID]Frame) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	for id, sub := range s.subs {
		f, ok := frames[sub.system]
		if !ok {
			continue
		}
		select {
		case sub.ch <- f:
		default:
			slog.Debug("dropping frame for slow subscriber", "sub_id", id, "system", sub.system)
		}
	}
}
