package postgresql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"parklot/internal/domain"
	"parklot/internal/repository"

	"github.com/jackc/pgx/v5/pgconn"
)

type pgTicketRepository struct {
	db *sql.DB
}

func NewPgTicketRepository(db *sql.DB) repository.TicketRepository {
	return &pgTicketRepository{db: db}
}

const ticketColumns = `id, owner_name, owner_contact, vehicle_no, entry_time,
	spot_location, spot_type, spot_hourly_rate, created_at, updated_at`

func scanTicket(row interface{ Scan(...any) error }) (*domain.Ticket, error) {
	ticket := &domain.Ticket{}
	err := row.Scan(
		&ticket.ID, &ticket.OwnerName, &ticket.OwnerContact, &ticket.VehicleNo,
		&ticket.EntryTime, &ticket.Spot.Location, &ticket.Spot.Type,
		&ticket.Spot.HourlyRate, &ticket.CreatedAt, &ticket.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	ticket.EntryTime = ticket.EntryTime.In(time.UTC)
	ticket.CreatedAt = ticket.CreatedAt.In(time.UTC)
	ticket.UpdatedAt = ticket.UpdatedAt.In(time.UTC)
	return ticket, nil
}

func (r *pgTicketRepository) Create(ctx context.Context, ticket *domain.Ticket) (*domain.Ticket, error) {
	query := `INSERT INTO tickets
	           (id, owner_name, owner_contact, vehicle_no, entry_time, spot_location, spot_type, spot_hourly_rate, created_at, updated_at)
	           VALUES ($1, $2, $3, $4, $5, $6, $7, $8, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
	           RETURNING created_at, updated_at`
	err := r.db.QueryRowContext(ctx, query,
		ticket.ID, ticket.OwnerName, ticket.OwnerContact, ticket.VehicleNo,
		ticket.EntryTime, ticket.Spot.Location, ticket.Spot.Type, ticket.Spot.HourlyRate,
	).Scan(&ticket.CreatedAt, &ticket.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation && pgErr.ConstraintName == "tickets_vehicle_no_key" {
			return nil, fmt.Errorf("%w: vehicle '%s'", repository.ErrDuplicateEntry, ticket.VehicleNo)
		}
		return nil, fmt.Errorf("TicketRepository.Create: %w", err)
	}
	ticket.CreatedAt = ticket.CreatedAt.In(time.UTC)
	ticket.UpdatedAt = ticket.UpdatedAt.In(time.UTC)
	return ticket, nil
}

func (r *pgTicketRepository) FindOpenByID(ctx context.Context, id string) (*domain.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE id = $1`
	ticket, err := scanTicket(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("TicketRepository.FindOpenByID: %w", err)
	}
	return ticket, nil
}

func (r *pgTicketRepository) FindOpenByVehicle(ctx context.Context, vehicleNo string) (*domain.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE vehicle_no = $1`
	ticket, err := scanTicket(r.db.QueryRowContext(ctx, query, vehicleNo))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("TicketRepository.FindOpenByVehicle: %w", err)
	}
	return ticket, nil
}

func (r *pgTicketRepository) FindAllOpen(ctx context.Context) ([]domain.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets ORDER BY entry_time`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("TicketRepository.FindAllOpen: %w", err)
	}
	defer rows.Close()

	var tickets []domain.Ticket
	for rows.Next() {
		ticket, err := scanTicket(rows)
		if err != nil {
			return nil, fmt.Errorf("TicketRepository.FindAllOpen (scanning row): %w", err)
		}
		tickets = append(tickets, *ticket)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("TicketRepository.FindAllOpen (rows error): %w", err)
	}
	return tickets, nil
}

func (r *pgTicketRepository) UpdateVehicleNo(ctx context.Context, id string, vehicleNo string) (*domain.Ticket, error) {
	query := `UPDATE tickets
	           SET vehicle_no = $1, updated_at = CURRENT_TIMESTAMP
	           WHERE id = $2
	           RETURNING ` + ticketColumns
	ticket, err := scanTicket(r.db.QueryRowContext(ctx, query, vehicleNo, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation && pgErr.ConstraintName == "tickets_vehicle_no_key" {
			return nil, fmt.Errorf("%w: vehicle '%s'", repository.ErrDuplicateEntry, vehicleNo)
		}
		return nil, fmt.Errorf("TicketRepository.UpdateVehicleNo: %w", err)
	}
	return ticket, nil
}

// Complete deletes the open row and inserts the closed record in one
// transaction. The DELETE is the serialization point: whichever transaction
// gets the row wins, every other concurrent attempt sees zero rows.
func (r *pgTicketRepository) Complete(ctx context.Context, id string, exitTime time.Time, durationMinutes, totalCost int64) (*domain.ClosedTicket, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("TicketRepository.Complete (begin tx): %w", err)
	}
	defer tx.Rollback()

	deleteQuery := `DELETE FROM tickets WHERE id = $1 RETURNING ` + ticketColumns
	ticket, err := scanTicket(tx.QueryRowContext(ctx, deleteQuery, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("TicketRepository.Complete (claiming ticket): %w", err)
	}

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
	}

	insertQuery := `INSERT INTO closed_tickets
	           (id, owner_name, owner_contact, vehicle_no, entry_time, exit_time, duration_minutes, total_cost, spot_location, spot_type, spot_hourly_rate, closed_at)
	           VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, CURRENT_TIMESTAMP)
	           RETURNING closed_at`
	err = tx.QueryRowContext(ctx, insertQuery,
		closed.ID, closed.OwnerName, closed.OwnerContact, closed.VehicleNo,
		closed.EntryTime, closed.ExitTime, closed.DurationMinutes, closed.TotalCost,
		closed.Spot.Location, closed.Spot.Type, closed.Spot.HourlyRate,
	).Scan(&closed.ClosedAt)
	if err != nil {
		return nil, fmt.Errorf("TicketRepository.Complete (inserting closed record): %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("TicketRepository.Complete (commit): %w", err)
	}
	closed.ClosedAt = closed.ClosedAt.In(time.UTC)
	return closed, nil
}

func (r *pgTicketRepository) FindClosedByID(ctx context.Context, id string) (*domain.ClosedTicket, error) {
	closed := &domain.ClosedTicket{}
	query := `SELECT id, owner_name, owner_contact, vehicle_no, entry_time, exit_time,
	                 duration_minutes, total_cost, spot_location, spot_type, spot_hourly_rate, closed_at
	           FROM closed_tickets WHERE id = $1`
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&closed.ID, &closed.OwnerName, &closed.OwnerContact, &closed.VehicleNo,
		&closed.EntryTime, &closed.ExitTime, &closed.DurationMinutes, &closed.TotalCost,
		&closed.Spot.Location, &closed.Spot.Type, &closed.Spot.HourlyRate, &closed.ClosedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("TicketRepository.FindClosedByID: %w", err)
	}
	closed.EntryTime = closed.EntryTime.In(time.UTC)
	closed.ExitTime = closed.ExitTime.In(time.UTC)
	closed.ClosedAt = closed.ClosedAt.In(time.UTC)
	return closed, nil
}

func (r *pgTicketRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM tickets WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("TicketRepository.Delete: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("TicketRepository.Delete (checking rows affected): %w", err)
	}
	if rowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}
