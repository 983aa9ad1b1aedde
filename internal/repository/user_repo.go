package repository

import (
	"database/sql"
	stderrors "errors"
	"fmt"

	"github.com/Indeera01/parkly-backend/internal/errors"
)

// UserRepository reads the externally managed users table; this service
// never writes it.
type UserRepository struct {
	DB *sql.DB
}

func NewUserRepository(database *sql.DB) *UserRepository {
	return &UserRepository{DB: database}
}

func (r *UserRepository) GetEmail(userID string) (string, error) {
	var email string
	err := r.DB.QueryRow(`SELECT email FROM users WHERE id = $1`, userID).Scan(&email)
	if err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return "", fmt.Errorf("user %s: %w", userID, errors.ErrNotFound)
		}
		return "", errors.Persistence("get user email", err)
	}
	return email, nil
}
