package repository

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/Indeera01/parkly-backend/internal/db"
	"github.com/Indeera01/parkly-backend/internal/entities"
	"github.com/Indeera01/parkly-backend/internal/errors"
)

var psq = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

const spaceColumns = `id, host_id, title, description, address, latitude, longitude,
	price_per_hour, price_per_day, max_vehicles, repeating_weekly,
	day_availability_schedule, availability_start, availability_end,
	available_days, is_active, created_at, updated_at`

type SpaceRepository struct {
	DB *sql.DB
}

func NewSpaceRepository(database *sql.DB) *SpaceRepository {
	return &SpaceRepository{DB: database}
}

func (r *SpaceRepository) Create(ctx context.Context, space *db.ParkingSpace) error {
	query := `
		INSERT INTO parking_spaces
		(id, host_id, title, description, address, latitude, longitude,
		 price_per_hour, price_per_day, max_vehicles, repeating_weekly,
		 day_availability_schedule, availability_start, availability_end,
		 available_days, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		RETURNING created_at, updated_at`
	err := r.DB.QueryRowContext(ctx, query,
		space.ID,
		space.HostID,
		space.Title,
		space.Description,
		space.Address,
		space.Latitude,
		space.Longitude,
		space.PricePerHour,
		space.PricePerDay,
		space.MaxVehicles,
		space.RepeatingWeekly,
		space.ScheduleEntries,
		space.AvailabilityStart,
		space.AvailabilityEnd,
		space.AvailableDays,
		space.IsActive,
	).Scan(&space.CreatedAt, &space.UpdatedAt)
	return errors.Persistence("create space", err)
}

func (r *SpaceRepository) GetByID(ctx context.Context, id string) (*db.ParkingSpace, error) {
	query := fmt.Sprintf(`SELECT %s FROM parking_spaces WHERE id = $1`, spaceColumns)
	space, err := scanSpace(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("space %s: %w", id, errors.ErrNotFound)
		}
		return nil, errors.Persistence("get space", err)
	}
	return space, nil
}

func (r *SpaceRepository) List(ctx context.Context, filter entities.SpaceFilter) ([]db.ParkingSpace, error) {
	builder := psq.Select(spaceColumns).
		From("parking_spaces").
		OrderBy("created_at DESC")

	if !filter.IncludeInactive {
		builder = builder.Where(sq.Eq{"is_active": true})
	}
	if filter.HostID != "" {
		builder = builder.Where(sq.Eq{"host_id": filter.HostID})
	}
	if filter.MinLat != nil && filter.MaxLat != nil {
		builder = builder.Where(sq.And{
			sq.GtOrEq{"latitude": *filter.MinLat},
			sq.LtOrEq{"latitude": *filter.MaxLat},
		})
	}
	if filter.MinLng != nil && filter.MaxLng != nil {
		builder = builder.Where(sq.And{
			sq.GtOrEq{"longitude": *filter.MinLng},
			sq.LtOrEq{"longitude": *filter.MaxLng},
		})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build space list query: %w", err)
	}

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Persistence("list spaces", err)
	}
	defer rows.Close()

	var spaces []db.ParkingSpace
	for rows.Next() {
		space, err := scanSpace(rows)
		if err != nil {
			return nil, errors.Persistence("scan space", err)
		}
		spaces = append(spaces, *space)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Persistence("list spaces", err)
	}
	return spaces, nil
}

func (r *SpaceRepository) Update(ctx context.Context, space *db.ParkingSpace) error {
	query := `
		UPDATE parking_spaces SET
			title = $2, description = $3, address = $4, latitude = $5, longitude = $6,
			price_per_hour = $7, price_per_day = $8, max_vehicles = $9,
			repeating_weekly = $10, day_availability_schedule = $11,
			availability_start = $12, availability_end = $13, available_days = $14,
			is_active = $15, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`
	err := r.DB.QueryRowContext(ctx, query,
		space.ID,
		space.Title,
		space.Description,
		space.Address,
		space.Latitude,
		space.Longitude,
		space.PricePerHour,
		space.PricePerDay,
		space.MaxVehicles,
		space.RepeatingWeekly,
		space.ScheduleEntries,
		space.AvailabilityStart,
		space.AvailabilityEnd,
		space.AvailableDays,
		space.IsActive,
	).Scan(&space.UpdatedAt)
	if stderrors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("space %s: %w", space.ID, errors.ErrNotFound)
	}
	return errors.Persistence("update space", err)
}

// Delete removes a listing. Bookings still open against it move to
// space_deleted in the same transaction so drivers see why their booking
// disappeared from the space.
func (r *SpaceRepository) Delete(ctx context.Context, id string) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return errors.Persistence("delete space", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		UPDATE bookings SET status = $1, updated_at = NOW()
		WHERE space_id = $2 AND status IN ($3, $4)`,
		db.BookingStatusSpaceDeleted, id, db.BookingStatusPending, db.BookingStatusConfirmed)
	if err != nil {
		return errors.Persistence("mark bookings space_deleted", err)
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM parking_spaces WHERE id = $1`, id)
	if err != nil {
		return errors.Persistence("delete space", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("space %s: %w", id, errors.ErrNotFound)
	}

	return errors.Persistence("delete space", tx.Commit())
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSpace(row rowScanner) (*db.ParkingSpace, error) {
	var space db.ParkingSpace
	err := row.Scan(
		&space.ID, &space.HostID, &space.Title, &space.Description, &space.Address,
		&space.Latitude, &space.Longitude,
		&space.PricePerHour, &space.PricePerDay, &space.MaxVehicles,
		&space.RepeatingWeekly, &space.ScheduleEntries,
		&space.AvailabilityStart, &space.AvailabilityEnd, &space.AvailableDays,
		&space.IsActive, &space.CreatedAt, &space.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &space, nil
}
