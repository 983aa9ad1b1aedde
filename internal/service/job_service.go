package service

import (
	"log"

	"github.com/Indeera01/parkly-backend/internal/db"
)

// JobRepo is the sweep job's repository surface.
type JobRepo interface {
	GetConfirmedIDsPastEndTime() ([]string, error)
	UpdateStatuses(ids []string, status string) error
}

type JobService struct {
	repo JobRepo
}

func NewJobService(repo JobRepo) *JobService {
	return &JobService{repo: repo}
}

// SweepCompleted marks confirmed bookings whose end time has passed as
// completed. Runs on the cron schedule from main.
func (s *JobService) SweepCompleted() error {
	ids, err := s.repo.GetConfirmedIDsPastEndTime()
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		return nil
	}
	if err := s.repo.UpdateStatuses(ids, db.BookingStatusCompleted); err != nil {
		return err
	}
	log.Printf("sweep: marked %d booking(s) completed", len(ids))
	return nil
}
