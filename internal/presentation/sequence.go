// Package presentation runs the fixed-length sequence shown while an
// illustration is being generated.
package presentation

import (
	"context"
	"time"
)

// Defaults for Sequence.
const (
	DefaultFrames   = 40
	DefaultInterval = 100 * time.Millisecond
)

// Sequence advances through Frames steps, one per Interval. A sequence with
// no frames finishes immediately.
type Sequence struct {
	Frames   int
	Interval time.Duration
	// OnFrame is called after each step with the 1-based frame number.
	OnFrame func(frame, total int)
}

// New returns a sequence with the given shape.
func New(frames int, interval time.Duration, onFrame func(frame, total int)) *Sequence {
	return &Sequence{Frames: frames, Interval: interval, OnFrame: onFrame}
}

// Duration is the nominal length of the sequence.
func (s *Sequence) Duration() time.Duration {
	if s.Frames <= 0 || s.Interval <= 0 {
		return 0
	}
	return time.Duration(s.Frames) * s.Interval
}

// Run blocks until every frame has played or ctx is done.
func (s *Sequence) Run(ctx context.Context) error {
	if s.Frames <= 0 {
		return nil
	}
	if s.Interval <= 0 {
		for i := 1; i <= s.Frames; i++ {
			s.emit(i)
		}
		return nil
	}

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()
	for i := 1; i <= s.Frames; i++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.emit(i)
		}
	}
	return nil
}

func (s *Sequence) emit(frame int) {
	if s.OnFrame != nil {
		s.OnFrame(frame, s.Frames)
	}
}
