package repository

import (
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"github.com/Indeera01/parkly-backend/internal/db"
)

type JobRepository struct {
	DB *sql.DB
}

func NewJobRepository(database *sql.DB) *JobRepository {
	return &JobRepository{DB: database}
}

// GetConfirmedIDsPastEndTime returns confirmed bookings whose end time has
// passed, candidates for the completed sweep.
func (r *JobRepository) GetConfirmedIDsPastEndTime() ([]string, error) {
	rows, err := r.DB.Query(
		`SELECT id FROM bookings WHERE status = $1 AND end_time < NOW()`,
		db.BookingStatusConfirmed)
	if err != nil {
		return nil, fmt.Errorf("query confirmed bookings past end time: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan booking id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate booking ids: %w", err)
	}
	return ids, nil
}

// UpdateStatuses moves every listed booking to the given status in one
// statement.
func (r *JobRepository) UpdateStatuses(ids []string, status string) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := r.DB.Exec(
		`UPDATE bookings SET status = $1, updated_at = NOW() WHERE id = ANY($2)`,
		status, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("update booking statuses: %w", err)
	}
	return nil
}
