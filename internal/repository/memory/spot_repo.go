// Package memory holds mutex-guarded in-memory implementations of the store
// interfaces. They back the test suite and the STORE=memory dev mode and obey
// the same atomicity contracts as the postgres adapters.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"parklot/internal/domain"
	"parklot/internal/repository"
)

type memSpotRepository struct {
	mu     sync.Mutex
	nextID int
	spots  map[string]*domain.ParkingSpot // keyed by location
}

func NewSpotRepository() repository.SpotRepository {
	return &memSpotRepository{spots: make(map[string]*domain.ParkingSpot)}
}

func (r *memSpotRepository) Create(_ context.Context, spot *domain.ParkingSpot) (*domain.ParkingSpot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.spots[spot.Location]; ok {
		return nil, repository.ErrDuplicateEntry
	}
	r.nextID++
	now := time.Now().UTC()
	stored := *spot
	stored.ID = r.nextID
	stored.CreatedAt = now
	stored.UpdatedAt = now
	r.spots[stored.Location] = &stored

	copied := stored
	return &copied, nil
}

func (r *memSpotRepository) FindByLocation(_ context.Context, location string) (*domain.ParkingSpot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	spot, ok := r.spots[location]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *spot
	return &copied, nil
}

func (r *memSpotRepository) ExistsByLocation(_ context.Context, location string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, ok := r.spots[location]
	return ok, nil
}

func (r *memSpotRepository) FindByType(_ context.Context, t domain.SpotType) ([]domain.ParkingSpot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var spots []domain.ParkingSpot
	for _, spot := range r.spots {
		if spot.Type == t {
			spots = append(spots, *spot)
		}
	}
	sort.Slice(spots, func(i, j int) bool { return spots[i].Location < spots[j].Location })
	return spots, nil
}

func (r *memSpotRepository) ReserveFirstFree(_ context.Context, t domain.SpotType) (*domain.ParkingSpot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	// Deterministic order so the claim matches the postgres adapter's
	// ORDER BY location; not part of the contract.
	locations := make([]string, 0, len(r.spots))
	for loc := range r.spots {
		locations = append(locations, loc)
	}
	sort.Strings(locations)

	for _, loc := range locations {
		spot := r.spots[loc]
		if spot.Type == t && spot.Active && !spot.IsBooked {
			spot.IsBooked = true
			spot.UpdatedAt = time.Now().UTC()
			copied := *spot
			return &copied, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *memSpotRepository) Release(_ context.Context, location string) (*domain.ParkingSpot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	spot, ok := r.spots[location]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if !spot.IsBooked {
		return nil, nil
	}
	spot.IsBooked = false
	spot.UpdatedAt = time.Now().UTC()
	copied := *spot
	return &copied, nil
}

func (r *memSpotRepository) SetActive(_ context.Context, location string, active bool) (*domain.ParkingSpot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	spot, ok := r.spots[location]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if !active && spot.IsBooked {
		return nil, domain.ErrSpotOccupied
	}
	spot.Active = active
	spot.UpdatedAt = time.Now().UTC()
	copied := *spot
	return &copied, nil
}

func (r *memSpotRepository) CountByTypeAndBooked(_ context.Context, t domain.SpotType, booked bool) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	count := 0
	for _, spot := range r.spots {
		if spot.Type == t && spot.Active && spot.IsBooked == booked {
			count++
		}
	}
	return count, nil
}

func (r *memSpotRepository) CountActiveByType(_ context.Context, t domain.SpotType) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	count := 0
	for _, spot := range r.spots {
		if spot.Type == t && spot.Active {
			count++
		}
	}
	return count, nil
}
