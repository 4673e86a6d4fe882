// Package service contains the business logic for the Trailhead backend.
// Services validate inputs, enforce business rules, and orchestrate repo calls.
// No SQL lives here — services depend on repo interfaces, not implementations.
package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/trailhead-app/backend/internal/domain"
	"github.com/trailhead-app/backend/internal/repo"
)

// TripService implements business logic for Trip operations, including the
// append that files an item into a trip. It is the mutation gateway the
// matching engine calls once a decision is made.
type TripService struct {
	trips repo.TripRepo
}

// NewTripService constructs a TripService backed by the provided TripRepo.
func NewTripService(trips repo.TripRepo) *TripService {
	return &TripService{trips: trips}
}

// Create validates and persists a new trip.
// Returns domain.ErrValidation if input violates business rules.
func (s *TripService) Create(ctx context.Context, trip domain.Trip) (domain.Trip, error) {
	if err := validateTrip(trip); err != nil {
		return domain.Trip{}, err
	}
	result, err := s.trips.Create(ctx, trip)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.Create: %w", err)
	}
	return result, nil
}

// GetByID returns a single trip by ID, items included.
// Returns domain.ErrNotFound if no trip with that ID exists.
func (s *TripService) GetByID(ctx context.Context, id uuid.UUID) (domain.Trip, error) {
	result, err := s.trips.GetByID(ctx, id)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.GetByID: %w", err)
	}
	return result, nil
}

// ListByUser returns all of a user's trips ordered by end_date descending.
// Always returns a non-nil slice so callers can safely range over it.
func (s *TripService) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Trip, error) {
	trips, err := s.trips.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("service.TripService.ListByUser: %w", err)
	}
	if trips == nil {
		return []domain.Trip{}, nil
	}
	return trips, nil
}

// AddItem appends a candidate item to a trip, deriving the denormalized
// TripItem (item reference plus a copy of its coordinate) from the candidate.
// Re-adding an item already in the trip returns the existing member.
// Returns domain.ErrNotFound if the trip does not exist.
// Returns domain.ErrValidation if the candidate is malformed.
func (s *TripService) AddItem(ctx context.Context, tripID uuid.UUID, item domain.CandidateItem) (domain.TripItem, error) {
	if item.ID == uuid.Nil {
		return domain.TripItem{}, fmt.Errorf("%w: item id is required", domain.ErrValidation)
	}
	if !item.ItemType.Valid() {
		return domain.TripItem{}, fmt.Errorf("%w: unknown item type %q", domain.ErrValidation, item.ItemType)
	}

	loc := item.Location
	member := domain.TripItem{
		TripID:   tripID,
		ItemID:   item.ID,
		ItemType: item.ItemType,
		Location: &loc,
	}
	result, err := s.trips.AddItem(ctx, member)
	if err != nil {
		return domain.TripItem{}, fmt.Errorf("service.TripService.AddItem: %w", err)
	}
	return result, nil
}

// Delete removes a trip by ID.
// Returns domain.ErrNotFound if the trip does not exist.
func (s *TripService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.trips.Delete(ctx, id); err != nil {
		return fmt.Errorf("service.TripService.Delete: %w", err)
	}
	return nil
}

// validateTrip enforces business rules on create.
//   - Name must be non-empty (whitespace-only names are rejected).
//   - EndDate must not be before StartDate.
func validateTrip(trip domain.Trip) error {
	if strings.TrimSpace(trip.Name) == "" {
		return fmt.Errorf("%w: name is required", domain.ErrValidation)
	}
	if trip.EndDate.Before(trip.StartDate) {
		return fmt.Errorf("%w: end_date must not be before start_date", domain.ErrValidation)
	}
	return nil
}
