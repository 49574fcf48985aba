package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"parklot/internal/domain"
	"parklot/internal/repository"

	"github.com/rs/zerolog/log"
)

// AllocationService is the only writer of a spot's booked and active flags.
// Every state change updates the display board as part of the same call, so
// the counters never drift from spot state.
type AllocationService struct {
	spots repository.SpotRepository
	board *DisplayBoard

	// toggleMu serializes maintenance toggles so the read-check-write in
	// SetActive cannot interleave with another toggle of the same spot.
	// Reserve/Release do not take it; their atomicity lives in the store.
	toggleMu sync.Mutex
}

func NewAllocationService(spots repository.SpotRepository, board *DisplayBoard) *AllocationService {
	return &AllocationService{spots: spots, board: board}
}

// Reserve claims one free active spot of the requested type. A fully booked
// type returns domain.ErrNoSpotAvailable; callers treat that as "lot full",
// not as a fault.
func (s *AllocationService) Reserve(ctx context.Context, t domain.SpotType) (*domain.ParkingSpot, error) {
	spot, err := s.spots.ReserveFirstFree(ctx, t)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, domain.ErrNoSpotAvailable
		}
		return nil, fmt.Errorf("reserving %s spot: %w", t, err)
	}
	s.board.noteReserve(t)
	log.Info().Str("location", spot.Location).Str("type", string(t)).Msg("spot reserved")
	return spot, nil
}

// Release frees the spot at the location. Releasing an already-free spot is
// a no-op success so checkout retries stay safe; only then is the board left
// untouched. An unknown location fails with domain.ErrSpotNotFound.
func (s *AllocationService) Release(ctx context.Context, location string) error {
	spot, err := s.spots.Release(ctx, location)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.ErrSpotNotFound
		}
		return fmt.Errorf("releasing spot %s: %w", location, err)
	}
	if spot == nil {
		log.Warn().Str("location", location).Msg("release of already-free spot ignored")
		return nil
	}
	s.board.noteRelease(spot.Type)
	log.Info().Str("location", location).Msg("spot released")
	return nil
}

// SetActive toggles a spot in or out of maintenance. A booked spot cannot be
// deactivated; an inactive spot is invisible to Reserve even while free.
func (s *AllocationService) SetActive(ctx context.Context, location string, active bool) (*domain.ParkingSpot, error) {
	s.toggleMu.Lock()
	defer s.toggleMu.Unlock()

	current, err := s.spots.FindByLocation(ctx, location)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, domain.ErrSpotNotFound
		}
		return nil, fmt.Errorf("loading spot %s: %w", location, err)
	}
	if current.Active == active {
		return current, nil
	}

	spot, err := s.spots.SetActive(ctx, location, active)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, domain.ErrSpotNotFound
		}
		return nil, fmt.Errorf("toggling spot %s: %w", location, err)
	}
	s.board.noteActive(spot.Type, active)
	log.Info().Str("location", location).Bool("active", active).Msg("spot activation changed")
	return spot, nil
}

func (s *AllocationService) SpotsByType(ctx context.Context, t domain.SpotType) ([]domain.ParkingSpot, error) {
	return s.spots.FindByType(ctx, t)
}

func (s *AllocationService) Board() domain.BoardSnapshot {
	return s.board.Snapshot()
}
