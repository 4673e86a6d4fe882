package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/trailhead-app/backend/internal/domain"
	"github.com/trailhead-app/backend/internal/repo"
)

// HomeService implements the business logic for the user's home region.
type HomeService struct {
	home repo.HomeProfileRepo
}

// NewHomeService constructs a HomeService with its repository dependency.
func NewHomeService(home repo.HomeProfileRepo) *HomeService {
	return &HomeService{home: home}
}

// Get returns the user's home profile.
// Returns domain.ErrNotFound if the user never configured one.
func (s *HomeService) Get(ctx context.Context, userID uuid.UUID) (domain.HomeProfile, error) {
	profile, err := s.home.GetByUser(ctx, userID)
	if err != nil {
		return domain.HomeProfile{}, fmt.Errorf("service.HomeService.Get: %w", err)
	}
	return profile, nil
}

// Set creates or replaces the user's home profile. A profile with a nil
// HomeLocation clears the home region, which disables all near-home matching
// behavior for the user.
func (s *HomeService) Set(ctx context.Context, profile domain.HomeProfile) (domain.HomeProfile, error) {
	if err := validateHomeProfile(profile); err != nil {
		return domain.HomeProfile{}, fmt.Errorf("service.HomeService.Set: %w", err)
	}

	saved, err := s.home.Upsert(ctx, profile)
	if err != nil {
		return domain.HomeProfile{}, fmt.Errorf("service.HomeService.Set: %w", err)
	}
	return saved, nil
}

// validateHomeProfile checks coordinate ranges and the radius.
// Returns an error wrapping domain.ErrValidation on the first violation.
func validateHomeProfile(p domain.HomeProfile) error {
	if p.UserID == uuid.Nil {
		return fmt.Errorf("%w: user id is required", domain.ErrValidation)
	}
	if p.HomeLocation != nil {
		if p.HomeLocation.Latitude < -90 || p.HomeLocation.Latitude > 90 {
			return fmt.Errorf("%w: latitude must be between -90 and 90", domain.ErrValidation)
		}
		if p.HomeLocation.Longitude < -180 || p.HomeLocation.Longitude > 180 {
			return fmt.Errorf("%w: longitude must be between -180 and 180", domain.ErrValidation)
		}
	}
	if p.HomeRadiusKm < 0 {
		return fmt.Errorf("%w: radius_km must not be negative", domain.ErrValidation)
	}
	return nil
}
