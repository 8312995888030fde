// Package clock abstracts the video playback clock. The sync core treats
// it as the sole source of truth for "now" on the media timeline.
package clock

import (
	"sync"
	"time"
)

// Clock is the player-side boundary: current position and duration in
// seconds, plus seeking.
type Clock interface {
	Position() float64
	Duration() float64
	Seek(seconds float64)
}

// Playhead is a headless Clock driven by the wall clock, so the core can
// run without a decoder. Position advances in real time while playing and
// clamps to [0, duration].
type Playhead struct {
	mu        sync.Mutex
	now       func() time.Time
	duration  float64
	base      float64
	startedAt time.Time
	playing   bool
}

func NewPlayhead(duration float64) *Playhead {
	return &Playhead{now: time.Now, duration: duration}
}

// newPlayheadAt is the test seam with an injected time source.
func newPlayheadAt(duration float64, now func() time.Time) *Playhead {
	return &Playhead{now: now, duration: duration}
}

func (p *Playhead) Play() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.playing {
		return
	}
	p.base = p.positionLocked()
	p.startedAt = p.now()
	p.playing = true
}

func (p *Playhead) Pause() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.playing {
		return
	}
	p.base = p.positionLocked()
	p.playing = false
}

func (p *Playhead) Playing() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.playing
}

func (p *Playhead) Seek(seconds float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.base = clamp(seconds, p.duration)
	p.startedAt = p.now()
}

func (p *Playhead) Position() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.positionLocked()
}

func (p *Playhead) Duration() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.duration
}

func (p *Playhead) positionLocked() float64 {
	if !p.playing {
		return clamp(p.base, p.duration)
	}
	elapsed := p.now().Sub(p.startedAt).Seconds()
	return clamp(p.base+elapsed, p.duration)
}

func clamp(v, max float64) float64 {
	if v < 0 {
		return 0
	}
	if max > 0 && v > max {
		return max
	}
	return v
}
