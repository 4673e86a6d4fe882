package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trailhead-app/backend/internal/domain"
	"github.com/trailhead-app/backend/internal/geo"
	"github.com/trailhead-app/backend/internal/repo"
	"github.com/trailhead-app/backend/internal/service"
)

// mockTripRepo is a hand-written test double for repo.TripRepo.
// Each method is a function field — set only the ones your test needs.
type mockTripRepo struct {
	create     func(ctx context.Context, trip domain.Trip) (domain.Trip, error)
	getByID    func(ctx context.Context, id uuid.UUID) (domain.Trip, error)
	listByUser func(ctx context.Context, userID uuid.UUID) ([]domain.Trip, error)
	addItem    func(ctx context.Context, item domain.TripItem) (domain.TripItem, error)
	delete     func(ctx context.Context, id uuid.UUID) error
}

func (m *mockTripRepo) Create(ctx context.Context, trip domain.Trip) (domain.Trip, error) {
	return m.create(ctx, trip)
}
func (m *mockTripRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Trip, error) {
	return m.getByID(ctx, id)
}
func (m *mockTripRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Trip, error) {
	return m.listByUser(ctx, userID)
}
func (m *mockTripRepo) AddItem(ctx context.Context, item domain.TripItem) (domain.TripItem, error) {
	return m.addItem(ctx, item)
}
func (m *mockTripRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return m.delete(ctx, id)
}

// compile-time check: mockTripRepo must satisfy repo.TripRepo.
var _ repo.TripRepo = (*mockTripRepo)(nil)

// ---- helpers ---------------------------------------------------------------

func validServiceTrip() domain.Trip {
	return domain.Trip{
		UserID:    testUser,
		Name:      "Summer Tour",
		StartDate: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC),
	}
}

func echoTripRepo() *mockTripRepo {
	// A repo that echoes whatever it receives back — useful for tests that
	// only care about validation logic, not what the DB returns.
	return &mockTripRepo{
		create:  func(_ context.Context, t domain.Trip) (domain.Trip, error) { return t, nil },
		addItem: func(_ context.Context, it domain.TripItem) (domain.TripItem, error) { return it, nil },
	}
}

// ---- Create tests ----------------------------------------------------------

func TestTripService_Create_Valid(t *testing.T) {
	svc := service.NewTripService(echoTripRepo())

	got, err := svc.Create(context.Background(), validServiceTrip())

	require.NoError(t, err)
	assert.Equal(t, "Summer Tour", got.Name)
}

func TestTripService_Create_MissingName(t *testing.T) {
	svc := service.NewTripService(echoTripRepo())

	trip := validServiceTrip()
	trip.Name = "   " // whitespace-only should be treated as empty

	_, err := svc.Create(context.Background(), trip)

	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestTripService_Create_EndDateBeforeStartDate(t *testing.T) {
	svc := service.NewTripService(echoTripRepo())

	trip := validServiceTrip()
	trip.EndDate = trip.StartDate.AddDate(0, 0, -1)

	_, err := svc.Create(context.Background(), trip)

	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestTripService_Create_SameDayTrip(t *testing.T) {
	svc := service.NewTripService(echoTripRepo())

	trip := validServiceTrip()
	trip.EndDate = trip.StartDate // a one-day trip is valid

	_, err := svc.Create(context.Background(), trip)

	assert.NoError(t, err)
}

func TestTripService_Create_RepoError(t *testing.T) {
	repoErr := errors.New("db exploded")
	r := &mockTripRepo{
		create: func(_ context.Context, _ domain.Trip) (domain.Trip, error) {
			return domain.Trip{}, repoErr
		},
	}
	svc := service.NewTripService(r)

	_, err := svc.Create(context.Background(), validServiceTrip())

	// The service should propagate repo errors unchanged.
	assert.ErrorIs(t, err, repoErr)
}

// ---- AddItem tests ---------------------------------------------------------

func TestTripService_AddItem_DerivesMemberFromCandidate(t *testing.T) {
	svc := service.NewTripService(echoTripRepo())
	tripID := uuid.New()

	item := domain.CandidateItem{
		ID:       uuid.New(),
		ItemType: domain.ItemTypeActivity,
		Name:     "Morning Ride",
		Date:     time.Now(),
		Location: geo.Point{Latitude: 52.52, Longitude: 13.405},
	}

	got, err := svc.AddItem(context.Background(), tripID, item)

	require.NoError(t, err)
	assert.Equal(t, tripID, got.TripID)
	assert.Equal(t, item.ID, got.ItemID)
	assert.Equal(t, domain.ItemTypeActivity, got.ItemType)
	require.NotNil(t, got.Location)
	assert.Equal(t, item.Location, *got.Location)
}

func TestTripService_AddItem_MissingID(t *testing.T) {
	svc := service.NewTripService(echoTripRepo())

	item := domain.CandidateItem{ItemType: domain.ItemTypeSpot}

	_, err := svc.AddItem(context.Background(), uuid.New(), item)

	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestTripService_AddItem_UnknownType(t *testing.T) {
	svc := service.NewTripService(echoTripRepo())

	item := domain.CandidateItem{ID: uuid.New(), ItemType: "photo"}

	_, err := svc.AddItem(context.Background(), uuid.New(), item)

	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestTripService_AddItem_TripNotFound(t *testing.T) {
	r := &mockTripRepo{
		addItem: func(_ context.Context, _ domain.TripItem) (domain.TripItem, error) {
			return domain.TripItem{}, domain.ErrNotFound
		},
	}
	svc := service.NewTripService(r)

	item := domain.CandidateItem{ID: uuid.New(), ItemType: domain.ItemTypeSpot}

	_, err := svc.AddItem(context.Background(), uuid.New(), item)

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// ---- ListByUser tests ------------------------------------------------------

func TestTripService_ListByUser_Empty(t *testing.T) {
	r := &mockTripRepo{
		listByUser: func(_ context.Context, _ uuid.UUID) ([]domain.Trip, error) { return nil, nil },
	}
	svc := service.NewTripService(r)

	got, err := svc.ListByUser(context.Background(), testUser)

	require.NoError(t, err)
	// Should return an empty slice, not nil — callers can safely range over it.
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestTripService_ListByUser(t *testing.T) {
	trips := []domain.Trip{validServiceTrip(), validServiceTrip()}
	r := &mockTripRepo{
		listByUser: func(_ context.Context, _ uuid.UUID) ([]domain.Trip, error) { return trips, nil },
	}
	svc := service.NewTripService(r)

	got, err := svc.ListByUser(context.Background(), testUser)

	require.NoError(t, err)
	assert.Len(t, got, 2)
}

// ---- GetByID / Delete tests ------------------------------------------------

func TestTripService_GetByID_NotFound(t *testing.T) {
	r := &mockTripRepo{
		getByID: func(_ context.Context, _ uuid.UUID) (domain.Trip, error) {
			return domain.Trip{}, domain.ErrNotFound
		},
	}
	svc := service.NewTripService(r)

	_, err := svc.GetByID(context.Background(), uuid.New())

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestTripService_Delete_NotFound(t *testing.T) {
	r := &mockTripRepo{
		delete: func(_ context.Context, _ uuid.UUID) error { return domain.ErrNotFound },
	}
	svc := service.NewTripService(r)

	err := svc.Delete(context.Background(), uuid.New())

	assert.ErrorIs(t, err, domain.ErrNotFound)
}
