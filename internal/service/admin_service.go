package service

import (
	"context"
	"fmt"
	"sync"

	"parklot/internal/domain"
	"parklot/internal/repository"

	"github.com/rs/zerolog/log"
)

// AdminService expands capacity. It is the only creator of spots and the
// only assigner of locations.
type AdminService struct {
	spots      repository.SpotRepository
	allocation *AllocationService
	board      *DisplayBoard

	// capacityMu spans next-location computation and insert. Without it two
	// concurrent expansions could compute the same location; the uniqueness
	// re-check below would then abort one of them loudly.
	capacityMu sync.Mutex
}

func NewAdminService(spots repository.SpotRepository, allocation *AllocationService, board *DisplayBoard) *AdminService {
	return &AdminService{spots: spots, allocation: allocation, board: board}
}

// AddSpots bulk-adds spots per type. The whole request is validated before
// any insert; invalid input never leaves partial state. A location collision
// mid-batch aborts immediately (integrity error, indicates broken locking)
// and the report shows what had already landed. Inserts are append-only and
// safe to retry on fresh locations, so nothing is rolled back.
func (s *AdminService) AddSpots(ctx context.Context, dto domain.AddSpotsDTO) (*domain.AddSpotsReport, error) {
	requested := make(map[domain.SpotType]int, len(dto.Counts))
	for typeName, count := range dto.Counts {
		t, err := domain.ParseSpotType(typeName)
		if err != nil {
			return nil, err
		}
		if count <= 0 {
			return nil, fmt.Errorf("%w: %s=%d", domain.ErrInvalidCount, typeName, count)
		}
		requested[t] = count
	}

	s.capacityMu.Lock()
	defer s.capacityMu.Unlock()

	report := &domain.AddSpotsReport{
		Added:  make(map[domain.SpotType]int),
		Totals: make(map[domain.SpotType]int),
	}

	for _, t := range domain.SpotTypes {
		count, ok := requested[t]
		if !ok {
			continue
		}
		for i := 0; i < count; i++ {
			existing, err := s.spots.FindByType(ctx, t)
			if err != nil {
				return report, fmt.Errorf("scanning %s spots: %w", t, err)
			}
			location := nextLocation(existing, t)

			exists, err := s.spots.ExistsByLocation(ctx, location)
			if err != nil {
				return report, fmt.Errorf("checking location %s: %w", location, err)
			}
			if exists {
				log.Error().Str("location", location).Msg("computed location already exists; aborting batch")
				return report, fmt.Errorf("%w: %s", domain.ErrLocationCollision, location)
			}

			spot := &domain.ParkingSpot{
				Type:       t,
				Location:   location,
				HourlyRate: t.HourlyRate(),
				IsBooked:   false,
				Active:     true,
			}
			if _, err := s.spots.Create(ctx, spot); err != nil {
				return report, fmt.Errorf("creating spot %s: %w", location, err)
			}
			// The board learns of each spot as it lands; an abort mid-batch
			// leaves the counters matching what was actually persisted.
			s.board.noteAdd(t, 1)
			report.Added[t]++
		}
	}

	for _, t := range domain.SpotTypes {
		total, err := s.spots.CountActiveByType(ctx, t)
		if err != nil {
			return report, fmt.Errorf("counting %s spots: %w", t, err)
		}
		report.Totals[t] = total
	}

	log.Info().Interface("added", report.Added).Msg("capacity expanded")
	return report, nil
}

// SetSpotActive is the maintenance toggle, delegated to the allocation
// engine, which owns the active flag.
func (s *AdminService) SetSpotActive(ctx context.Context, location string, active bool) (*domain.ParkingSpot, error) {
	return s.allocation.SetActive(ctx, location, active)
}
