// Package join provides an epoch-scoped counting barrier.
package join

import (
	"errors"
	"fmt"
	"sync"
)

// ErrStaleEpoch is returned for an arrival that belongs to an older round.
var ErrStaleEpoch = errors.New("stale epoch")

// ErrDuplicateArrival is returned when a party arrives twice in one round.
var ErrDuplicateArrival = errors.New("duplicate arrival")

// ErrUnknownParty is returned for a party that is not part of the round.
var ErrUnknownParty = errors.New("unknown party")

// Epoch identifies one round of the barrier.
type Epoch uint64

// Barrier waits for a fixed set of named parties. Each call to Begin opens a
// new round and invalidates every earlier one. It is safe for concurrent use.
type Barrier struct {
	mu      sync.Mutex
	epoch   Epoch
	pending map[string]bool
	open    bool
}

// New returns a barrier with no open round.
func New() *Barrier {
	return &Barrier{}
}

// Begin starts a round that completes once every party has arrived.
func (b *Barrier) Begin(parties ...string) Epoch {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.epoch++
	b.pending = make(map[string]bool, len(parties))
	for _, p := range parties {
		b.pending[p] = false
	}
	b.open = len(parties) > 0
	return b.epoch
}

// Cancel invalidates the current round without starting a new one.
func (b *Barrier) Cancel() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.epoch++
	b.pending = nil
	b.open = false
}

// Current returns the latest epoch.
func (b *Barrier) Current() Epoch {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.epoch
}

// Arrive records party for epoch. It returns true exactly once per round: for
// the arrival that completes it.
func (b *Barrier) Arrive(epoch Epoch, party string) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if epoch != b.epoch || !b.open {
		return false, fmt.Errorf("%w: %s arrived for epoch %d, current %d", ErrStaleEpoch, party, epoch, b.epoch)
	}
	arrived, ok := b.pending[party]
	if !ok {
		return false, fmt.Errorf("%w: %s", ErrUnknownParty, party)
	}
	if arrived {
		return false, fmt.Errorf("%w: %s in epoch %d", ErrDuplicateArrival, party, epoch)
	}
	b.pending[party] = true
	for _, done := range b.pending {
		if !done {
			return false, nil
		}
	}
	b.open = false
	return true, nil
}

// Remaining returns how many parties the current round still waits for.
func (b *Barrier) Remaining() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.open {
		return 0
	}
	n := 0
	for _, done := range b.pending {
		if !done {
			n++
		}
	}
	return n
}
