package repository

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/Indeera01/parkly-backend/internal/db"
	"github.com/Indeera01/parkly-backend/internal/errors"
)

type BookingRepository struct {
	DB *sql.DB
}

func NewBookingRepository(database *sql.DB) *BookingRepository {
	return &BookingRepository{DB: database}
}

// QueryAvailableCapacity asks the get_available_vehicle_capacity stored
// procedure how many vehicle slots remain free for the interval. The
// procedure owns the overlap arithmetic; this side treats its answer as
// ground truth.
func (r *BookingRepository) QueryAvailableCapacity(ctx context.Context, spaceID string, start, end time.Time) (int, error) {
	var available int
	err := r.DB.QueryRowContext(ctx,
		`SELECT get_available_vehicle_capacity($1, $2, $3)`,
		spaceID, start, end,
	).Scan(&available)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", errors.ErrOracleUnavailable, err)
	}
	return available, nil
}

func (r *BookingRepository) Create(ctx context.Context, booking *db.Booking) error {
	query := `
		INSERT INTO bookings
		(id, user_id, space_id, start_time, end_time, vehicle_count, total_price, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at`
	err := r.DB.QueryRowContext(ctx, query,
		booking.ID,
		booking.UserID,
		booking.SpaceID,
		booking.StartTime,
		booking.EndTime,
		booking.VehicleCount,
		booking.TotalPrice,
		booking.Status,
	).Scan(&booking.CreatedAt, &booking.UpdatedAt)
	return errors.Persistence("create booking", err)
}

func (r *BookingRepository) GetByID(ctx context.Context, id string) (*db.Booking, error) {
	var b db.Booking
	query := `
		SELECT id, user_id, space_id, start_time, end_time, vehicle_count,
		       total_price, status, created_at, updated_at
		FROM bookings WHERE id = $1`
	err := r.DB.QueryRowContext(ctx, query, id).Scan(
		&b.ID, &b.UserID, &b.SpaceID, &b.StartTime, &b.EndTime,
		&b.VehicleCount, &b.TotalPrice, &b.Status, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("booking %s: %w", id, errors.ErrNotFound)
		}
		return nil, errors.Persistence("get booking", err)
	}
	return &b, nil
}

// ListByUser returns the actor's bookings newest first, joined with the
// listing fields the bookings screen shows. The join is left because the
// space row may have been deleted since.
func (r *BookingRepository) ListByUser(ctx context.Context, userID, status string) ([]db.BookingWithSpace, error) {
	builder := psq.Select(
		"b.id", "b.user_id", "b.space_id", "b.start_time", "b.end_time",
		"b.vehicle_count", "b.total_price", "b.status", "b.created_at", "b.updated_at",
		"s.title", "s.address",
	).
		From("bookings b").
		LeftJoin("parking_spaces s ON s.id = b.space_id").
		Where(sq.Eq{"b.user_id": userID}).
		OrderBy("b.created_at DESC")

	if status != "" {
		builder = builder.Where(sq.Eq{"b.status": status})
	}

	return r.listBookings(ctx, builder)
}

// ListBySpace returns all bookings against a listing, newest first, for the
// host dashboard.
func (r *BookingRepository) ListBySpace(ctx context.Context, spaceID string) ([]db.BookingWithSpace, error) {
	builder := psq.Select(
		"b.id", "b.user_id", "b.space_id", "b.start_time", "b.end_time",
		"b.vehicle_count", "b.total_price", "b.status", "b.created_at", "b.updated_at",
		"s.title", "s.address",
	).
		From("bookings b").
		LeftJoin("parking_spaces s ON s.id = b.space_id").
		Where(sq.Eq{"b.space_id": spaceID}).
		OrderBy("b.created_at DESC")

	return r.listBookings(ctx, builder)
}

func (r *BookingRepository) listBookings(ctx context.Context, builder sq.SelectBuilder) ([]db.BookingWithSpace, error) {
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build booking list query: %w", err)
	}

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Persistence("list bookings", err)
	}
	defer rows.Close()

	var bookings []db.BookingWithSpace
	for rows.Next() {
		var b db.BookingWithSpace
		err := rows.Scan(
			&b.ID, &b.UserID, &b.SpaceID, &b.StartTime, &b.EndTime,
			&b.VehicleCount, &b.TotalPrice, &b.Status, &b.CreatedAt, &b.UpdatedAt,
			&b.SpaceTitle, &b.SpaceAddress,
		)
		if err != nil {
			return nil, errors.Persistence("scan booking", err)
		}
		bookings = append(bookings, b)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Persistence("list bookings", err)
	}
	return bookings, nil
}

func (r *BookingRepository) UpdateStatus(ctx context.Context, id, status string) error {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE bookings SET status = $1, updated_at = NOW() WHERE id = $2`,
		status, id)
	if err != nil {
		return errors.Persistence("update booking status", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("booking %s: %w", id, errors.ErrNotFound)
	}
	return nil
}

func (r *BookingRepository) Delete(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM bookings WHERE id = $1`, id)
	if err != nil {
		return errors.Persistence("delete booking", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("booking %s: %w", id, errors.ErrNotFound)
	}
	return nil
}
