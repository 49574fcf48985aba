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

type pgSpotRepository struct {
	db *sql.DB
}

func NewPgSpotRepository(db *sql.DB) repository.SpotRepository {
	return &pgSpotRepository{db: db}
}

const spotColumns = `id, spot_type, location, hourly_rate, is_booked, active, created_at, updated_at`

func scanSpot(row interface{ Scan(...any) error }) (*domain.ParkingSpot, error) {
	spot := &domain.ParkingSpot{}
	err := row.Scan(
		&spot.ID, &spot.Type, &spot.Location, &spot.HourlyRate,
		&spot.IsBooked, &spot.Active, &spot.CreatedAt, &spot.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	spot.CreatedAt = spot.CreatedAt.In(time.UTC)
	spot.UpdatedAt = spot.UpdatedAt.In(time.UTC)
	return spot, nil
}

func (r *pgSpotRepository) Create(ctx context.Context, spot *domain.ParkingSpot) (*domain.ParkingSpot, error) {
	query := `INSERT INTO parking_spots (spot_type, location, hourly_rate, is_booked, active, created_at, updated_at)
	           VALUES ($1, $2, $3, $4, $5, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
	           RETURNING id, created_at, updated_at`
	err := r.db.QueryRowContext(ctx, query,
		spot.Type, spot.Location, spot.HourlyRate, spot.IsBooked, spot.Active,
	).Scan(&spot.ID, &spot.CreatedAt, &spot.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation && pgErr.ConstraintName == "parking_spots_location_key" {
			return nil, fmt.Errorf("%w: location '%s'", repository.ErrDuplicateEntry, spot.Location)
		}
		return nil, fmt.Errorf("SpotRepository.Create: %w", err)
	}
	spot.CreatedAt = spot.CreatedAt.In(time.UTC)
	spot.UpdatedAt = spot.UpdatedAt.In(time.UTC)
	return spot, nil
}

func (r *pgSpotRepository) FindByLocation(ctx context.Context, location string) (*domain.ParkingSpot, error) {
	query := `SELECT ` + spotColumns + ` FROM parking_spots WHERE location = $1`
	spot, err := scanSpot(r.db.QueryRowContext(ctx, query, location))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("SpotRepository.FindByLocation: %w", err)
	}
	return spot, nil
}

func (r *pgSpotRepository) ExistsByLocation(ctx context.Context, location string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM parking_spots WHERE location = $1)`
	if err := r.db.QueryRowContext(ctx, query, location).Scan(&exists); err != nil {
		return false, fmt.Errorf("SpotRepository.ExistsByLocation: %w", err)
	}
	return exists, nil
}

func (r *pgSpotRepository) FindByType(ctx context.Context, t domain.SpotType) ([]domain.ParkingSpot, error) {
	query := `SELECT ` + spotColumns + ` FROM parking_spots WHERE spot_type = $1 ORDER BY location`
	rows, err := r.db.QueryContext(ctx, query, t)
	if err != nil {
		return nil, fmt.Errorf("SpotRepository.FindByType: %w", err)
	}
	defer rows.Close()

	var spots []domain.ParkingSpot
	for rows.Next() {
		spot, err := scanSpot(rows)
		if err != nil {
			return nil, fmt.Errorf("SpotRepository.FindByType (scanning row): %w", err)
		}
		spots = append(spots, *spot)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("SpotRepository.FindByType (rows error): %w", err)
	}
	return spots, nil
}

// ReserveFirstFree claims a spot in a single statement. SKIP LOCKED keeps
// concurrent reservations from ever selecting the same row; the loser simply
// moves on to the next free spot or gets no row at all.
func (r *pgSpotRepository) ReserveFirstFree(ctx context.Context, t domain.SpotType) (*domain.ParkingSpot, error) {
	query := `UPDATE parking_spots
	           SET is_booked = TRUE, updated_at = CURRENT_TIMESTAMP
	           WHERE id = (
	               SELECT id FROM parking_spots
	               WHERE spot_type = $1 AND active = TRUE AND is_booked = FALSE
	               ORDER BY location
	               FOR UPDATE SKIP LOCKED
	               LIMIT 1
	           )
	           RETURNING ` + spotColumns
	spot, err := scanSpot(r.db.QueryRowContext(ctx, query, t))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("SpotRepository.ReserveFirstFree: %w", err)
	}
	return spot, nil
}

func (r *pgSpotRepository) Release(ctx context.Context, location string) (*domain.ParkingSpot, error) {
	query := `UPDATE parking_spots
	           SET is_booked = FALSE, updated_at = CURRENT_TIMESTAMP
	           WHERE location = $1 AND is_booked = TRUE
	           RETURNING ` + spotColumns
	spot, err := scanSpot(r.db.QueryRowContext(ctx, query, location))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// No transition: either the spot is already free (fine,
			// idempotent) or the location does not exist at all.
			exists, exErr := r.ExistsByLocation(ctx, location)
			if exErr != nil {
				return nil, exErr
			}
			if !exists {
				return nil, repository.ErrNotFound
			}
			return nil, nil
		}
		return nil, fmt.Errorf("SpotRepository.Release: %w", err)
	}
	return spot, nil
}

func (r *pgSpotRepository) SetActive(ctx context.Context, location string, active bool) (*domain.ParkingSpot, error) {
	query := `UPDATE parking_spots
	           SET active = $1, updated_at = CURRENT_TIMESTAMP
	           WHERE location = $2 AND (is_booked = FALSE OR $1 = TRUE)
	           RETURNING ` + spotColumns
	spot, err := scanSpot(r.db.QueryRowContext(ctx, query, active, location))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// Distinguish "no such spot" from "booked, refusing to deactivate".
			exists, exErr := r.ExistsByLocation(ctx, location)
			if exErr != nil {
				return nil, exErr
			}
			if !exists {
				return nil, repository.ErrNotFound
			}
			return nil, domain.ErrSpotOccupied
		}
		return nil, fmt.Errorf("SpotRepository.SetActive: %w", err)
	}
	return spot, nil
}

func (r *pgSpotRepository) CountByTypeAndBooked(ctx context.Context, t domain.SpotType, booked bool) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM parking_spots WHERE spot_type = $1 AND is_booked = $2 AND active = TRUE`
	if err := r.db.QueryRowContext(ctx, query, t, booked).Scan(&count); err != nil {
		return 0, fmt.Errorf("SpotRepository.CountByTypeAndBooked: %w", err)
	}
	return count, nil
}

func (r *pgSpotRepository) CountActiveByType(ctx context.Context, t domain.SpotType) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM parking_spots WHERE spot_type = $1 AND active = TRUE`
	if err := r.db.QueryRowContext(ctx, query, t).Scan(&count); err != nil {
		return 0, fmt.Errorf("SpotRepository.CountActiveByType: %w", err)
	}
	return count, nil
}
