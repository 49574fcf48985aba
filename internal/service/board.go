package service

import (
	"context"
	"fmt"
	"sync"

	"parklot/internal/domain"
	"parklot/internal/repository"
)

// DisplayBoard holds the per-type free/booked counters. It is derived state:
// initialized from one full store scan at startup and from then on mutated
// only inside the same critical section as the spot write that changes
// booking or capacity. Readers take the read lock only and get a snapshot
// that is always internally consistent, if marginally stale.
type DisplayBoard struct {
	mu     sync.RWMutex
	free   map[domain.SpotType]int
	booked map[domain.SpotType]int

	// notify, when set, receives a snapshot after every counter change.
	// Called outside the lock.
	notify func(domain.BoardSnapshot)
}

// NewDisplayBoardFromStore performs the one permitted full recount: a scan
// of the store at startup. Steady-state updates are incremental.
func NewDisplayBoardFromStore(ctx context.Context, spots repository.SpotRepository) (*DisplayBoard, error) {
	b := &DisplayBoard{
		free:   make(map[domain.SpotType]int),
		booked: make(map[domain.SpotType]int),
	}
	for _, t := range domain.SpotTypes {
		free, err := spots.CountByTypeAndBooked(ctx, t, false)
		if err != nil {
			return nil, fmt.Errorf("initializing display board (%s free): %w", t, err)
		}
		booked, err := spots.CountByTypeAndBooked(ctx, t, true)
		if err != nil {
			return nil, fmt.Errorf("initializing display board (%s booked): %w", t, err)
		}
		b.free[t] = free
		b.booked[t] = booked
	}
	return b, nil
}

// SetNotifier registers the live-feed hook. Must be called before the board
// is shared with the services.
func (b *DisplayBoard) SetNotifier(fn func(domain.BoardSnapshot)) {
	b.notify = fn
}

func (b *DisplayBoard) Snapshot() domain.BoardSnapshot {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.snapshotLocked()
}

func (b *DisplayBoard) snapshotLocked() domain.BoardSnapshot {
	snap := domain.BoardSnapshot{
		Mini:    domain.TypeOccupancy{Free: b.free[domain.SpotMini], Booked: b.booked[domain.SpotMini]},
		Compact: domain.TypeOccupancy{Free: b.free[domain.SpotCompact], Booked: b.booked[domain.SpotCompact]},
		Large:   domain.TypeOccupancy{Free: b.free[domain.SpotLarge], Booked: b.booked[domain.SpotLarge]},
	}
	for _, t := range domain.SpotTypes {
		snap.TotalFree += b.free[t]
		snap.TotalBooked += b.booked[t]
	}
	return snap
}

func (b *DisplayBoard) apply(fn func()) {
	b.mu.Lock()
	fn()
	snap := b.snapshotLocked()
	b.mu.Unlock()

	if b.notify != nil {
		b.notify(snap)
	}
}

func (b *DisplayBoard) noteReserve(t domain.SpotType) {
	b.apply(func() {
		b.free[t]--
		b.booked[t]++
	})
}

func (b *DisplayBoard) noteRelease(t domain.SpotType) {
	b.apply(func() {
		b.booked[t]--
		b.free[t]++
	})
}

// noteAdd records freshly created capacity (always active and free).
func (b *DisplayBoard) noteAdd(t domain.SpotType, n int) {
	b.apply(func() {
		b.free[t] += n
	})
}

// noteActive records a maintenance toggle. Only free spots can be
// deactivated, so the booked counter is never involved.
func (b *DisplayBoard) noteActive(t domain.SpotType, active bool) {
	b.apply(func() {
		if active {
			b.free[t]++
		} else {
			b.free[t]--
		}
	})
}
