package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/Indeera01/parkly-backend/internal/db"
	"github.com/Indeera01/parkly-backend/internal/entities"
	"github.com/Indeera01/parkly-backend/internal/errors"
)

// SpaceRepo is the full space repository surface the host flows need.
type SpaceRepo interface {
	Create(ctx context.Context, space *db.ParkingSpace) error
	GetByID(ctx context.Context, id string) (*db.ParkingSpace, error)
	List(ctx context.Context, filter entities.SpaceFilter) ([]db.ParkingSpace, error)
	Update(ctx context.Context, space *db.ParkingSpace) error
	Delete(ctx context.Context, id string) error
}

type SpaceService struct {
	spaces SpaceRepo
}

func NewSpaceService(spaces SpaceRepo) *SpaceService {
	return &SpaceService{spaces: spaces}
}

func (s *SpaceService) CreateSpace(ctx context.Context, actorID string, req entities.CreateSpaceRequest) (*entities.SpaceResponse, error) {
	space := &db.ParkingSpace{
		ID:       uuid.New().String(),
		HostID:   actorID,
		IsActive: true,
	}
	if err := applySpaceRequest(space, req); err != nil {
		return nil, err
	}
	if err := s.spaces.Create(ctx, space); err != nil {
		return nil, err
	}
	return spaceResponse(space)
}

func (s *SpaceService) GetSpace(ctx context.Context, id string) (*entities.SpaceResponse, error) {
	space, err := s.spaces.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return spaceResponse(space)
}

func (s *SpaceService) ListSpaces(ctx context.Context, filter entities.SpaceFilter) ([]entities.SpaceResponse, error) {
	spaces, err := s.spaces.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	out := make([]entities.SpaceResponse, 0, len(spaces))
	for i := range spaces {
		resp, err := spaceResponse(&spaces[i])
		if err != nil {
			return nil, err
		}
		out = append(out, *resp)
	}
	return out, nil
}

func (s *SpaceService) UpdateSpace(ctx context.Context, actorID, id string, req entities.UpdateSpaceRequest) (*entities.SpaceResponse, error) {
	space, err := s.ownedSpace(ctx, actorID, id)
	if err != nil {
		return nil, err
	}
	if err := applySpaceRequest(space, req.CreateSpaceRequest); err != nil {
		return nil, err
	}
	if req.IsActive != nil {
		space.IsActive = *req.IsActive
	}
	if err := s.spaces.Update(ctx, space); err != nil {
		return nil, err
	}
	return spaceResponse(space)
}

// DeleteSpace removes a host's listing; open bookings against it are moved
// to space_deleted by the repository in the same transaction.
func (s *SpaceService) DeleteSpace(ctx context.Context, actorID, id string) error {
	if _, err := s.ownedSpace(ctx, actorID, id); err != nil {
		return err
	}
	return s.spaces.Delete(ctx, id)
}

func (s *SpaceService) ownedSpace(ctx context.Context, actorID, id string) (*db.ParkingSpace, error) {
	space, err := s.spaces.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if space.HostID != actorID {
		return nil, fmt.Errorf("space %s does not belong to actor: %w", id, errors.ErrForbidden)
	}
	return space, nil
}

func applySpaceRequest(space *db.ParkingSpace, req entities.CreateSpaceRequest) error {
	if req.Title == "" || req.Address == "" {
		return fmt.Errorf("title and address are required: %w", errors.ErrInvalidSpace)
	}
	if req.Latitude == 0 && req.Longitude == 0 {
		return fmt.Errorf("location is required: %w", errors.ErrInvalidSpace)
	}
	if rate(req.PricePerHour) <= 0 && rate(req.PricePerDay) <= 0 {
		return fmt.Errorf("at least one of price_per_hour or price_per_day is required: %w", errors.ErrInvalidSpace)
	}

	space.Title = req.Title
	space.Description = req.Description
	space.Address = req.Address
	space.Latitude = req.Latitude
	space.Longitude = req.Longitude
	space.PricePerHour = req.PricePerHour
	space.PricePerDay = req.PricePerDay

	space.MaxVehicles = req.MaxVehicles
	if space.MaxVehicles < 1 {
		space.MaxVehicles = 1
	}

	space.RepeatingWeekly = true
	if req.RepeatingWeekly != nil {
		space.RepeatingWeekly = *req.RepeatingWeekly
	}

	if req.Schedule != nil {
		raw, err := json.Marshal(req.Schedule)
		if err != nil {
			return fmt.Errorf("encode schedule: %w", err)
		}
		space.ScheduleEntries = raw
	} else {
		space.ScheduleEntries = nil
	}

	space.AvailabilityStart = req.AvailabilityStart
	space.AvailabilityEnd = req.AvailabilityEnd
	space.AvailableDays = pq.Int64Array(req.AvailableDays)

	// Reject malformed schedules at write time instead of surprising every
	// later booking attempt.
	if _, err := space.Schedule(); err != nil {
		return fmt.Errorf("%w: %v", errors.ErrInvalidSpace, err)
	}
	return nil
}

func spaceResponse(space *db.ParkingSpace) (*entities.SpaceResponse, error) {
	var entries map[string]entities.ScheduleEntry
	if len(space.ScheduleEntries) > 0 {
		if err := json.Unmarshal(space.ScheduleEntries, &entries); err != nil {
			return nil, fmt.Errorf("space %s: decode schedule: %w", space.ID, err)
		}
	}
	return &entities.SpaceResponse{
		ID:                space.ID,
		HostID:            space.HostID,
		Title:             space.Title,
		Description:       space.Description,
		Address:           space.Address,
		Latitude:          space.Latitude,
		Longitude:         space.Longitude,
		PricePerHour:      space.PricePerHour,
		PricePerDay:       space.PricePerDay,
		MaxVehicles:       space.MaxVehicles,
		RepeatingWeekly:   space.RepeatingWeekly,
		Schedule:          entries,
		AvailabilityStart: space.AvailabilityStart,
		AvailabilityEnd:   space.AvailabilityEnd,
		AvailableDays:     space.AvailableDays,
		IsActive:          space.IsActive,
		CreatedAt:         space.CreatedAt,
		UpdatedAt:         space.UpdatedAt,
	}, nil
}
