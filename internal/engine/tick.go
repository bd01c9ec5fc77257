package engine

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/talgya/agentik/internal/entropy"
)

// Runner owns the live world for a long-running process and serializes every
// Step on it. Readers get clones, never the world itself.
type Runner struct {
	mu       sync.Mutex
	world    *World
	rng      entropy.Source
	running  bool
	speed    float64       // Multiplier: 1.0 = one step per Interval, 0 = paused
	Interval time.Duration // Base step interval

	// OnStep receives a clone after every step. Called without the lock held.
	OnStep func(w *World)
}

// NewRunner creates a stopped runner around w.
func NewRunner(w *World, rng entropy.Source) *Runner {
	return &Runner{
		world:    w,
		rng:      rng,
		speed:    1.0,
		Interval: time.Second,
	}
}

// Start lets Run advance the world.
func (r *Runner) Start() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.running = true
}

// Stop pauses automatic stepping. StepOnce still works.
func (r *Runner) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.running = false
}

// Running reports whether automatic stepping is on.
func (r *Runner) Running() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.running
}

// SetSpeed changes the step rate multiplier. Non-positive pauses.
func (r *Runner) SetSpeed(speed float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.speed = speed
}

// Speed returns the current multiplier.
func (r *Runner) Speed() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.speed
}

// Replace swaps in a new world, e.g. when a scenario is (re)started, and
// returns a copy taken before any step can touch it. The runner owns w
// afterwards.
func (r *Runner) Replace(w *World) *World {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.world = w
	return w.Clone()
}

// Snapshot returns a deep copy of the current world.
func (r *Runner) Snapshot() *World {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.world.Clone()
}

// StepOnce advances the world one tick and returns a copy of the result.
func (r *Runner) StepOnce() *World {
	r.mu.Lock()
	r.world = Step(r.world, r.rng)
	snap := r.world.Clone()
	r.mu.Unlock()

	if r.OnStep != nil {
		r.OnStep(snap)
	}
	return snap
}

// Run steps the world while running, until ctx is cancelled.
func (r *Runner) Run(ctx context.Context) {
	slog.Info("simulation engine started", "tick", r.Snapshot().Tick, "interval", r.Interval)

	for {
		select {
		case <-ctx.Done():
			slog.Info("simulation engine stopped", "tick", r.Snapshot().Tick)
			return
		default:
		}

		r.mu.Lock()
		running, speed := r.running, r.speed
		r.mu.Unlock()

		if !running || speed <= 0 {
			// Paused; sleep briefly and check again.
			sleepCtx(ctx, 100*time.Millisecond)
			continue
		}

		start := time.Now()
		r.StepOnce()

		// Sleep for the remainder of the interval, adjusted for speed.
		elapsed := time.Since(start)
		target := time.Duration(float64(r.Interval) / speed)
		if elapsed < target {
			sleepCtx(ctx, target-elapsed)
		}
	}
}

func sleepCtx(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
