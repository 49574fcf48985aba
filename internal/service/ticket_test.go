package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"parklot/internal/domain"
	"parklot/internal/repository"
	"parklot/internal/repository/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parkRequest(vehicleNo string, t domain.SpotType) domain.ParkRequestDTO {
	return domain.ParkRequestDTO{
		OwnerName:    "Ada Lovelace",
		OwnerContact: "ada@example.com",
		VehicleNo:    vehicleNo,
		SpotType:     string(t),
	}
}

func TestOpenTicketAssignsSpotSnapshot(t *testing.T) {
	env := newTestEnv(t)
	env.addSpots(t, domain.SpotCompact, 1)

	ticket, err := env.ticketSvc.OpenTicket(context.Background(), parkRequest("KA-01-HH-1234", domain.SpotCompact))
	require.NoError(t, err)

	assert.NotEmpty(t, ticket.ID)
	assert.False(t, ticket.Completed)
	assert.False(t, ticket.ExitTime.Valid)
	assert.Equal(t, "S2-R1-C1", ticket.Spot.Location)
	assert.Equal(t, int64(35), ticket.Spot.HourlyRate)
	assert.Equal(t, 1, env.board.Snapshot().Compact.Booked)
}

func TestOpenTicketInvalidTypeRejected(t *testing.T) {
	env := newTestEnv(t)
	dto := parkRequest("KA-01-HH-1234", domain.SpotMini)
	dto.SpotType = "oversize"

	_, err := env.ticketSvc.OpenTicket(context.Background(), dto)
	assert.ErrorIs(t, err, domain.ErrInvalidSpotType)
}

func TestOpenTicketDuplicateVehicleAllocatesNothing(t *testing.T) {
	env := newTestEnv(t)
	env.addSpots(t, domain.SpotMini, 2)

	_, err := env.ticketSvc.OpenTicket(context.Background(), parkRequest("KA-01-HH-1234", domain.SpotMini))
	require.NoError(t, err)

	_, err = env.ticketSvc.OpenTicket(context.Background(), parkRequest("KA-01-HH-1234", domain.SpotMini))
	assert.ErrorIs(t, err, domain.ErrDuplicateOpenTicket)

	snap := env.board.Snapshot()
	assert.Equal(t, 1, snap.Mini.Booked, "failed duplicate park must not hold a second spot")
	assert.Equal(t, 1, snap.Mini.Free)
}

func TestOpenTicketLotFull(t *testing.T) {
	env := newTestEnv(t)
	env.addSpots(t, domain.SpotLarge, 1)

	_, err := env.ticketSvc.OpenTicket(context.Background(), parkRequest("CAR-1", domain.SpotLarge))
	require.NoError(t, err)

	_, err = env.ticketSvc.OpenTicket(context.Background(), parkRequest("CAR-2", domain.SpotLarge))
	assert.ErrorIs(t, err, domain.ErrNoSpotAvailable)
}

// failingTicketRepo rejects Create so the compensation path can be observed.
type failingTicketRepo struct {
	repository.TicketRepository
}

func (r *failingTicketRepo) Create(context.Context, *domain.Ticket) (*domain.Ticket, error) {
	return nil, errors.New("store unavailable")
}

func TestOpenTicketReleasesSpotWhenTicketWriteFails(t *testing.T) {
	env := newTestEnv(t)
	env.addSpots(t, domain.SpotMini, 1)

	broken := NewTicketService(&failingTicketRepo{env.tickets}, env.allocation)
	_, err := broken.OpenTicket(context.Background(), parkRequest("KA-01-HH-1234", domain.SpotMini))
	require.Error(t, err)

	snap := env.board.Snapshot()
	assert.Equal(t, 1, snap.Mini.Free, "reserved spot must be given back on failed park")
	assert.Equal(t, 0, snap.Mini.Booked)
}

// ctxSpotRepo and ctxTicketRepo honor context cancellation the way the
// postgres adapters do; the memory stores ignore it.
type ctxSpotRepo struct {
	repository.SpotRepository
}

func (r *ctxSpotRepo) Release(ctx context.Context, location string) (*domain.ParkingSpot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return r.SpotRepository.Release(ctx, location)
}

type ctxTicketRepo struct {
	repository.TicketRepository
}

func (r *ctxTicketRepo) Create(ctx context.Context, ticket *domain.Ticket) (*domain.Ticket, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return r.TicketRepository.Create(ctx, ticket)
}

func TestOpenTicketCompensationSurvivesCanceledRequest(t *testing.T) {
	spots := &ctxSpotRepo{memory.NewSpotRepository()}
	board, err := NewDisplayBoardFromStore(context.Background(), spots)
	require.NoError(t, err)
	allocation := NewAllocationService(spots, board)
	admin := NewAdminService(spots, allocation, board)
	_, err = admin.AddSpots(context.Background(), domain.AddSpotsDTO{
		Counts: map[string]int{"mini": 1},
	})
	require.NoError(t, err)

	svc := NewTicketService(&ctxTicketRepo{memory.NewTicketRepository()}, allocation)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = svc.OpenTicket(ctx, parkRequest("KA-01-HH-1234", domain.SpotMini))
	require.Error(t, err)

	spot, err := spots.FindByLocation(context.Background(), "S1-R1-C1")
	require.NoError(t, err)
	assert.False(t, spot.IsBooked, "spot must be given back even though the request died")

	snap := board.Snapshot()
	assert.Equal(t, 1, snap.Mini.Free)
	assert.Equal(t, 0, snap.Mini.Booked)
}

func TestCloseTicketComputesFeeAndFreesSpot(t *testing.T) {
	env := newTestEnv(t)
	env.addSpots(t, domain.SpotCompact, 1)

	entry := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	env.ticketSvc.now = func() time.Time { return entry }
	ticket, err := env.ticketSvc.OpenTicket(context.Background(), parkRequest("KA-01-HH-1234", domain.SpotCompact))
	require.NoError(t, err)

	env.ticketSvc.now = func() time.Time { return entry.Add(3*time.Hour + 5*time.Minute) }
	closed, err := env.ticketSvc.CloseTicket(context.Background(), ticket.ID)
	require.NoError(t, err)

	assert.Equal(t, int64(185), closed.DurationMinutes)
	assert.Equal(t, int64(140), closed.TotalCost)
	assert.Equal(t, ticket.Spot.Location, closed.Spot.Location)

	snap := env.board.Snapshot()
	assert.Equal(t, 1, snap.Compact.Free)
	assert.Equal(t, 0, snap.Compact.Booked)
}

func TestCloseTicketTwiceReportsAlreadyCompleted(t *testing.T) {
	env := newTestEnv(t)
	env.addSpots(t, domain.SpotMini, 1)

	ticket, err := env.ticketSvc.OpenTicket(context.Background(), parkRequest("KA-01-HH-1234", domain.SpotMini))
	require.NoError(t, err)

	_, err = env.ticketSvc.CloseTicket(context.Background(), ticket.ID)
	require.NoError(t, err)
	before := env.board.Snapshot()

	_, err = env.ticketSvc.CloseTicket(context.Background(), ticket.ID)
	assert.ErrorIs(t, err, domain.ErrAlreadyCompleted)
	assert.Equal(t, before, env.board.Snapshot(), "retried close must not move counters")
}

func TestCloseUnknownTicket(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.ticketSvc.CloseTicket(context.Background(), "no-such-id")
	assert.ErrorIs(t, err, domain.ErrTicketNotFound)
}

func TestConcurrentClosesExactlyOneSucceeds(t *testing.T) {
	env := newTestEnv(t)
	env.addSpots(t, domain.SpotLarge, 1)

	ticket, err := env.ticketSvc.OpenTicket(context.Background(), parkRequest("KA-01-HH-1234", domain.SpotLarge))
	require.NoError(t, err)

	const attempts = 10
	var wg sync.WaitGroup
	successes := make(chan struct{}, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := env.ticketSvc.CloseTicket(context.Background(), ticket.ID); err == nil {
				successes <- struct{}{}
			}
		}()
	}
	wg.Wait()
	close(successes)

	count := 0
	for range successes {
		count++
	}
	assert.Equal(t, 1, count)

	snap := env.board.Snapshot()
	assert.Equal(t, 1, snap.Large.Free)
	assert.Equal(t, 0, snap.Large.Booked)
}

func TestUpdateVehicleNo(t *testing.T) {
	env := newTestEnv(t)
	env.addSpots(t, domain.SpotMini, 2)

	ticket, err := env.ticketSvc.OpenTicket(context.Background(), parkRequest("OLD-PLATE", domain.SpotMini))
	require.NoError(t, err)

	updated, err := env.ticketSvc.UpdateVehicleNo(context.Background(), ticket.ID, "NEW-PLATE")
	require.NoError(t, err)
	assert.Equal(t, "NEW-PLATE", updated.VehicleNo)
}

func TestUpdateVehicleNoCollision(t *testing.T) {
	env := newTestEnv(t)
	env.addSpots(t, domain.SpotMini, 2)

	_, err := env.ticketSvc.OpenTicket(context.Background(), parkRequest("PLATE-A", domain.SpotMini))
	require.NoError(t, err)
	ticketB, err := env.ticketSvc.OpenTicket(context.Background(), parkRequest("PLATE-B", domain.SpotMini))
	require.NoError(t, err)

	_, err = env.ticketSvc.UpdateVehicleNo(context.Background(), ticketB.ID, "PLATE-A")
	assert.ErrorIs(t, err, domain.ErrDuplicateOpenTicket)
}

func TestUpdateVehicleNoOnClosedTicketRefused(t *testing.T) {
	env := newTestEnv(t)
	env.addSpots(t, domain.SpotMini, 1)

	ticket, err := env.ticketSvc.OpenTicket(context.Background(), parkRequest("KA-01-HH-1234", domain.SpotMini))
	require.NoError(t, err)
	_, err = env.ticketSvc.CloseTicket(context.Background(), ticket.ID)
	require.NoError(t, err)

	_, err = env.ticketSvc.UpdateVehicleNo(context.Background(), ticket.ID, "NEW-PLATE")
	assert.ErrorIs(t, err, domain.ErrAlreadyCompleted)
}

func TestGetTicketFallsBackToClosedRecord(t *testing.T) {
	env := newTestEnv(t)
	env.addSpots(t, domain.SpotCompact, 1)

	ticket, err := env.ticketSvc.OpenTicket(context.Background(), parkRequest("KA-01-HH-1234", domain.SpotCompact))
	require.NoError(t, err)
	_, err = env.ticketSvc.CloseTicket(context.Background(), ticket.ID)
	require.NoError(t, err)

	got, err := env.ticketSvc.GetTicket(context.Background(), ticket.ID)
	require.NoError(t, err)
	assert.True(t, got.Completed)
	assert.True(t, got.ExitTime.Valid)
	assert.True(t, got.TotalCost.Valid)
}

func TestVehicleCanReparkAfterCheckout(t *testing.T) {
	env := newTestEnv(t)
	env.addSpots(t, domain.SpotMini, 1)

	first, err := env.ticketSvc.OpenTicket(context.Background(), parkRequest("KA-01-HH-1234", domain.SpotMini))
	require.NoError(t, err)
	_, err = env.ticketSvc.CloseTicket(context.Background(), first.ID)
	require.NoError(t, err)

	second, err := env.ticketSvc.OpenTicket(context.Background(), parkRequest("KA-01-HH-1234", domain.SpotMini))
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)
}
