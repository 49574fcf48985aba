package repository

import (
	"context"
	"errors"
	"time"

	"parklot/internal/domain"
)

var ErrNotFound = errors.New("record not found")
var ErrDuplicateEntry = errors.New("record already exists")

type SpotRepository interface {
	Create(ctx context.Context, spot *domain.ParkingSpot) (*domain.ParkingSpot, error)
	FindByLocation(ctx context.Context, location string) (*domain.ParkingSpot, error)
	ExistsByLocation(ctx context.Context, location string) (bool, error)
	FindByType(ctx context.Context, t domain.SpotType) ([]domain.ParkingSpot, error)

	// ReserveFirstFree atomically claims one active, unbooked spot of the
	// given type and returns it with IsBooked already set. ErrNotFound means
	// the type is fully booked. Two concurrent calls never claim the same
	// spot.
	ReserveFirstFree(ctx context.Context, t domain.SpotType) (*domain.ParkingSpot, error)

	// Release clears IsBooked on the spot at the location and returns the
	// spot when it actually transitioned from booked to free. Releasing an
	// already-free spot returns (nil, nil). ErrNotFound if no spot has that
	// location.
	Release(ctx context.Context, location string) (*domain.ParkingSpot, error)

	// SetActive toggles a spot in or out of maintenance. Deactivating a
	// booked spot fails with domain.ErrSpotOccupied.
	SetActive(ctx context.Context, location string, active bool) (*domain.ParkingSpot, error)

	CountByTypeAndBooked(ctx context.Context, t domain.SpotType, booked bool) (int, error)
	CountActiveByType(ctx context.Context, t domain.SpotType) (int, error)
}

type TicketRepository interface {
	// Create persists a new open ticket. A second open ticket for the same
	// vehicle fails with ErrDuplicateEntry.
	Create(ctx context.Context, ticket *domain.Ticket) (*domain.Ticket, error)

	FindOpenByID(ctx context.Context, id string) (*domain.Ticket, error)
	FindOpenByVehicle(ctx context.Context, vehicleNo string) (*domain.Ticket, error)
	FindAllOpen(ctx context.Context) ([]domain.Ticket, error)
	UpdateVehicleNo(ctx context.Context, id string, vehicleNo string) (*domain.Ticket, error)

	// Complete moves the open ticket into the closed collection in one
	// atomic step. Exactly one of any number of concurrent calls for the
	// same id succeeds; the rest get ErrNotFound (the open record is gone).
	Complete(ctx context.Context, id string, exitTime time.Time, durationMinutes, totalCost int64) (*domain.ClosedTicket, error)

	FindClosedByID(ctx context.Context, id string) (*domain.ClosedTicket, error)

	// Delete removes an open ticket; used only to compensate a failed park.
	Delete(ctx context.Context, id string) error
}

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	FindByID(ctx context.Context, id int) (*domain.User, error)
	Count(ctx context.Context) (int, error)
}
