package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"parklot/internal/domain"
	"parklot/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gopkg.in/guregu/null.v4"
)

type TicketService struct {
	tickets    repository.TicketRepository
	allocation *AllocationService
	now        func() time.Time
}

func NewTicketService(tickets repository.TicketRepository, allocation *AllocationService) *TicketService {
	return &TicketService{
		tickets:    tickets,
		allocation: allocation,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// OpenTicket parks a vehicle: reserve a spot of the requested type, then
// persist the ticket. All-or-nothing; if the ticket write fails after the
// spot was reserved, the spot is released before the error is returned so no
// booking is left without a ticket.
func (s *TicketService) OpenTicket(ctx context.Context, dto domain.ParkRequestDTO) (*domain.Ticket, error) {
	spotType, err := domain.ParseSpotType(dto.SpotType)
	if err != nil {
		return nil, err
	}

	if _, err := s.tickets.FindOpenByVehicle(ctx, dto.VehicleNo); err == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrDuplicateOpenTicket, dto.VehicleNo)
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("checking open ticket for %s: %w", dto.VehicleNo, err)
	}

	spot, err := s.allocation.Reserve(ctx, spotType)
	if err != nil {
		return nil, err
	}

	ticket := &domain.Ticket{
		ID:           uuid.NewString(),
		OwnerName:    dto.OwnerName,
		OwnerContact: dto.OwnerContact,
		VehicleNo:    dto.VehicleNo,
		EntryTime:    s.now(),
		Spot: domain.SpotSnapshot{
			Location:   spot.Location,
			Type:       spot.Type,
			HourlyRate: spot.HourlyRate,
		},
	}

	created, err := s.tickets.Create(ctx, ticket)
	if err != nil {
		// Give the spot back before failing; a reservation without a ticket
		// would be unreachable forever. A canceled request is a common cause
		// of the failed write, so the compensation runs detached from ctx.
		if relErr := s.allocation.Release(context.WithoutCancel(ctx), spot.Location); relErr != nil {
			log.Error().Err(relErr).Str("location", spot.Location).
				Msg("failed to release spot after ticket write failure")
		}
		if errors.Is(err, repository.ErrDuplicateEntry) {
			return nil, fmt.Errorf("%w: %s", domain.ErrDuplicateOpenTicket, dto.VehicleNo)
		}
		return nil, fmt.Errorf("creating ticket for %s: %w", dto.VehicleNo, err)
	}

	log.Info().Str("ticket_id", created.ID).Str("vehicle", created.VehicleNo).
		Str("location", created.Spot.Location).Msg("ticket opened")
	return created, nil
}

// CloseTicket unparks: complete the ticket, compute the fee, free the spot.
// The completion step is the serialization point; of two concurrent closes
// exactly one gets the closed summary, the other ErrAlreadyCompleted.
func (s *TicketService) CloseTicket(ctx context.Context, id string) (*domain.ClosedTicket, error) {
	ticket, err := s.tickets.FindOpenByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// Already moved to the closed collection, or never existed.
			if _, closedErr := s.tickets.FindClosedByID(ctx, id); closedErr == nil {
				return nil, fmt.Errorf("%w: %s", domain.ErrAlreadyCompleted, id)
			}
			return nil, fmt.Errorf("%w: %s", domain.ErrTicketNotFound, id)
		}
		return nil, fmt.Errorf("loading ticket %s: %w", id, err)
	}

	exitTime := s.now()
	durationMinutes, totalCost := ComputeFee(ticket.EntryTime, exitTime, ticket.Spot.HourlyRate)

	closed, err := s.tickets.Complete(ctx, id, exitTime, durationMinutes, totalCost)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// Lost the race against a concurrent close.
			if _, closedErr := s.tickets.FindClosedByID(ctx, id); closedErr == nil {
				return nil, fmt.Errorf("%w: %s", domain.ErrAlreadyCompleted, id)
			}
			return nil, fmt.Errorf("%w: %s", domain.ErrTicketNotFound, id)
		}
		return nil, fmt.Errorf("completing ticket %s: %w", id, err)
	}

	// The completion is already committed, so the release must happen even
	// if the request died in the meantime; it runs detached from ctx.
	if err := s.allocation.Release(context.WithoutCancel(ctx), closed.Spot.Location); err != nil &&
		!errors.Is(err, domain.ErrSpotNotFound) {
		return nil, fmt.Errorf("releasing spot %s for ticket %s: %w", closed.Spot.Location, id, err)
	}

	log.Info().Str("ticket_id", id).Int64("duration_minutes", closed.DurationMinutes).
		Int64("total_cost", closed.TotalCost).Msg("ticket closed")
	return closed, nil
}

// UpdateVehicleNo changes the vehicle number on an open ticket. Completed
// tickets are immutable; a collision with another open ticket's vehicle
// fails like a duplicate park.
func (s *TicketService) UpdateVehicleNo(ctx context.Context, id, vehicleNo string) (*domain.Ticket, error) {
	updated, err := s.tickets.UpdateVehicleNo(ctx, id, vehicleNo)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			if _, closedErr := s.tickets.FindClosedByID(ctx, id); closedErr == nil {
				return nil, fmt.Errorf("%w: %s", domain.ErrAlreadyCompleted, id)
			}
			return nil, fmt.Errorf("%w: %s", domain.ErrTicketNotFound, id)
		}
		if errors.Is(err, repository.ErrDuplicateEntry) {
			return nil, fmt.Errorf("%w: %s", domain.ErrDuplicateOpenTicket, vehicleNo)
		}
		return nil, fmt.Errorf("updating vehicle on ticket %s: %w", id, err)
	}
	return updated, nil
}

// GetTicket returns the open ticket if one exists, otherwise the closed
// record projected back onto the ticket shape.
func (s *TicketService) GetTicket(ctx context.Context, id string) (*domain.Ticket, error) {
	ticket, err := s.tickets.FindOpenByID(ctx, id)
	if err == nil {
		return ticket, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("loading ticket %s: %w", id, err)
	}

	closed, err := s.tickets.FindClosedByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", domain.ErrTicketNotFound, id)
		}
		return nil, fmt.Errorf("loading closed ticket %s: %w", id, err)
	}
	return closedToTicket(closed), nil
}

func (s *TicketService) ListOpenTickets(ctx context.Context) ([]domain.Ticket, error) {
	return s.tickets.FindAllOpen(ctx)
}

func closedToTicket(closed *domain.ClosedTicket) *domain.Ticket {
	return &domain.Ticket{
		ID:              closed.ID,
		OwnerName:       closed.OwnerName,
		OwnerContact:    closed.OwnerContact,
		VehicleNo:       closed.VehicleNo,
		EntryTime:       closed.EntryTime,
		ExitTime:        null.TimeFrom(closed.ExitTime),
		DurationMinutes: null.IntFrom(closed.DurationMinutes),
		TotalCost:       null.IntFrom(closed.TotalCost),
		Completed:       true,
		Spot:            closed.Spot,
		CreatedAt:       closed.EntryTime,
		UpdatedAt:       closed.ClosedAt,
	}
}
