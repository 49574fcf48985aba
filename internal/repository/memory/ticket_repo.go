package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"parklot/internal/domain"
	"parklot/internal/repository"
)

type memTicketRepository struct {
	mu     sync.Mutex
	open   map[string]*domain.Ticket       // keyed by id
	closed map[string]*domain.ClosedTicket // keyed by id
}

func NewTicketRepository() repository.TicketRepository {
	return &memTicketRepository{
		open:   make(map[string]*domain.Ticket),
		closed: make(map[string]*domain.ClosedTicket),
	}
}

func (r *memTicketRepository) Create(_ context.Context, ticket *domain.Ticket) (*domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, t := range r.open {
		if t.VehicleNo == ticket.VehicleNo {
			return nil, repository.ErrDuplicateEntry
		}
	}
	now := time.Now().UTC()
	stored := *ticket
	stored.CreatedAt = now
	stored.UpdatedAt = now
	r.open[stored.ID] = &stored

	copied := stored
	return &copied, nil
}

func (r *memTicketRepository) FindOpenByID(_ context.Context, id string) (*domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ticket, ok := r.open[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *ticket
	return &copied, nil
}

func (r *memTicketRepository) FindOpenByVehicle(_ context.Context, vehicleNo string) (*domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, ticket := range r.open {
		if ticket.VehicleNo == vehicleNo {
			copied := *ticket
			return &copied, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *memTicketRepository) FindAllOpen(_ context.Context) ([]domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	tickets := make([]domain.Ticket, 0, len(r.open))
	for _, ticket := range r.open {
		tickets = append(tickets, *ticket)
	}
	sort.Slice(tickets, func(i, j int) bool { return tickets[i].EntryTime.Before(tickets[j].EntryTime) })
	return tickets, nil
}

func (r *memTicketRepository) UpdateVehicleNo(_ context.Context, id string, vehicleNo string) (*domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ticket, ok := r.open[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	for otherID, other := range r.open {
		if otherID != id && other.VehicleNo == vehicleNo {
			return nil, repository.ErrDuplicateEntry
		}
	}
	ticket.VehicleNo = vehicleNo
	ticket.UpdatedAt = time.Now().UTC()
	copied := *ticket
	return &copied, nil
}

func (r *memTicketRepository) Complete(_ context.Context, id string, exitTime time.Time, durationMinutes, totalCost int64) (*domain.ClosedTicket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ticket, ok := r.open[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	delete(r.open, id)

	closed := &domain.ClosedTicket{
		ID:              ticket.ID,
		OwnerName:       ticket.OwnerName,
		OwnerContact:    ticket.OwnerContact,
		VehicleNo:       ticket.VehicleNo,
		EntryTime:       ticket.EntryTime,
		ExitTime:        exitTime.In(time.UTC),
		DurationMinutes: durationMinutes,
		TotalCost:       totalCost,
		Spot:            ticket.Spot,
		ClosedAt:        time.Now().UTC(),
	}
	r.closed[id] = closed

	copied := *closed
	return &copied, nil
}

func (r *memTicketRepository) FindClosedByID(_ context.Context, id string) (*domain.ClosedTicket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	closed, ok := r.closed[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *closed
	return &copied, nil
}

func (r *memTicketRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.open[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.open, id)
	return nil
}
