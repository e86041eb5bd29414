// Package engine provides the tick loop that animates generated systems.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sync/atomic"
	"time"

	"github.com/talgya/planetgen/internal/phys"
)

// Tick schedule.
const (
	DefaultInterval  = 100 * time.Millisecond
	DefaultTimeScale = phys.SecondsPerDay // one simulated day per real second
	TicksPerSimDay   = 10                 // at the default interval and time scale
)

// Engine drives the animation forward.
type Engine struct {
	Interval  time.Duration // Base tick interval
	TimeScale float64       // Simulated seconds per real second

	// Callbacks, populated during setup.
	OnTick func(tick uint64, dt float64) // Every tick; dt in simulated seconds
	OnDay  func(tick uint64)             // Every TicksPerSimDay ticks

	speed   atomic.Uint64 // float64 bits; multiplier on tick rate, 0 = paused
	tick    atomic.Uint64
	running atomic.Bool
	stop    chan struct{}
}

// NewEngine creates an engine with default settings.
func NewEngine() *Engine {
	e := &Engine{
		Interval:  DefaultInterval,
		TimeScale: DefaultTimeScale,
		stop:      make(chan struct{}, 1),
	}
	e.SetSpeed(1)
	return e
}

// Speed returns the tick-rate multiplier: 1.0 is real time, 0 is paused.
func (e *Engine) Speed() float64 {
	return math.Float64frombits(e.speed.Load())
}

// SetSpeed changes the tick-rate multiplier. Safe to call while Run is active.
func (e *Engine) SetSpeed(speed float64) {
	e.speed.Store(math.Float64bits(speed))
}

// Tick returns the current tick counter.
func (e *Engine) Tick() uint64 {
	return e.tick.Load()
}

// Running reports whether Run is active.
func (e *Engine) Running() bool {
	return e.running.Load()
}

// StepSeconds is the simulated time covered by one tick.
func (e *Engine) StepSeconds() float64 {
	return e.Interval.Seconds() * e.TimeScale
}

// Run starts the loop. Blocks until ctx is done or Stop is called.
func (e *Engine) Run(ctx context.Context) {
	if e.stop == nil {
		e.stop = make(chan struct{}, 1)
	}
	e.running.Store(true)
	defer e.running.Store(false)
	slog.Info("engine started", "tick", e.Tick(), "speed", e.Speed(), "interval", e.Interval)

	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("engine stopped", "tick", e.Tick(), "reason", ctx.Err())
			return
		case <-e.stop:
			slog.Info("engine stopped", "tick", e.Tick())
			return
		case <-timer.C:
		}

		speed := e.Speed()
		if speed <= 0 {
			// Paused: check again shortly.
			timer.Reset(100 * time.Millisecond)
			continue
		}

		start := time.Now()
		e.Step()

		target := time.Duration(float64(e.Interval) / speed)
		wait := target - time.Since(start)
		if wait < 0 {
			wait = 0
		}
		timer.Reset(wait)
	}
}

// Stop halts the loop.
func (e *Engine) Stop() {
	if e.stop == nil {
		return
	}
	select {
	case e.stop <- struct{}{}:
	default:
	}
}

// Step advances the engine by one tick.
func (e *Engine) Step() {
	tick := e.tick.Add(1)

	if e.OnTick != nil {
		e.OnTick(tick, e.StepSeconds())
	}
	if tick%TicksPerSimDay == 0 && e.OnDay != nil {
		e.OnDay(tick)
	}
}

// SimTime returns a human-readable simulated time for a tick.
func SimTime(tick uint64, stepSeconds float64) string {
	seconds := float64(tick) * stepSeconds
	days := seconds / phys.SecondsPerDay
	years := int(days / phys.DaysPerYear)
	day := days - float64(years)*phys.DaysPerYear
	return fmt.Sprintf("Year %d Day %.1f", years+1, day+1)
}
