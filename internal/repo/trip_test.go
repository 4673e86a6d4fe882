package repo_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trailhead-app/backend/internal/domain"
	"github.com/trailhead-app/backend/internal/geo"
	"github.com/trailhead-app/backend/internal/repo"
	"github.com/trailhead-app/backend/testutil"
)

// newTestTx opens a transaction against the test database. The transaction is
// automatically rolled back when the test finishes, giving free per-test
// isolation without any cleanup SQL.
//
// Requires TEST_DATABASE_URL to be set and all migrations to be applied
// against the test database before running these tests.
func newTestTx(t *testing.T) pgx.Tx {
	t.Helper()
	pool := testutil.NewPool(t)

	tx, err := pool.Begin(context.Background())
	require.NoError(t, err, "begin transaction")

	t.Cleanup(func() {
		_ = tx.Rollback(context.Background())
	})

	return tx
}

// tripFixture returns a domain.Trip with sensible defaults for use in tests.
// Callers can override individual fields after calling this function.
func tripFixture(userID uuid.UUID) domain.Trip {
	return domain.Trip{
		UserID:    userID,
		Name:      "Summer Tour",
		StartDate: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC),
		Notes:     "Test notes",
	}
}

func itemFixture(tripID uuid.UUID) domain.TripItem {
	return domain.TripItem{
		TripID:   tripID,
		ItemID:   uuid.New(),
		ItemType: domain.ItemTypeSpot,
		Location: &geo.Point{Latitude: 54.18, Longitude: 12.08},
	}
}

func TestTripRepo_Create(t *testing.T) {
	r := repo.NewTripRepo(newTestTx(t))
	ctx := context.Background()

	input := tripFixture(uuid.New())
	got, err := r.Create(ctx, input)

	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, got.ID, "ID should be DB-generated UUID")
	assert.Equal(t, input.UserID, got.UserID)
	assert.Equal(t, input.Name, got.Name)
	assert.True(t, got.StartDate.Equal(input.StartDate), "StartDate mismatch")
	assert.True(t, got.EndDate.Equal(input.EndDate), "EndDate mismatch")
	assert.NotNil(t, got.Items, "Items should be an empty slice, not nil")
	assert.False(t, got.CreatedAt.IsZero(), "CreatedAt should be set by DB")
}

func TestTripRepo_GetByID_WithItems(t *testing.T) {
	r := repo.NewTripRepo(newTestTx(t))
	ctx := context.Background()

	created, err := r.Create(ctx, tripFixture(uuid.New()))
	require.NoError(t, err)

	member, err := r.AddItem(ctx, itemFixture(created.ID))
	require.NoError(t, err)

	got, err := r.GetByID(ctx, created.ID)

	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
	require.Len(t, got.Items, 1)
	assert.Equal(t, member.ItemID, got.Items[0].ItemID)
	require.NotNil(t, got.Items[0].Location)
	assert.InDelta(t, 54.18, got.Items[0].Location.Latitude, 1e-9)
}

func TestTripRepo_GetByID_NotFound(t *testing.T) {
	r := repo.NewTripRepo(newTestTx(t))

	_, err := r.GetByID(context.Background(), uuid.New())

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestTripRepo_ListByUser_OrderAndScope(t *testing.T) {
	r := repo.NewTripRepo(newTestTx(t))
	ctx := context.Background()

	userID := uuid.New()

	older := tripFixture(userID)
	older.Name = "Older"
	newer := tripFixture(userID)
	newer.Name = "Newer"
	newer.StartDate = older.StartDate.AddDate(0, 1, 0)
	newer.EndDate = older.EndDate.AddDate(0, 1, 0)
	other := tripFixture(uuid.New())
	other.Name = "Someone Else's"

	_, err := r.Create(ctx, older)
	require.NoError(t, err)
	_, err = r.Create(ctx, newer)
	require.NoError(t, err)
	_, err = r.Create(ctx, other)
	require.NoError(t, err)

	trips, err := r.ListByUser(ctx, userID)

	require.NoError(t, err)
	require.Len(t, trips, 2, "must only return the user's own trips")
	// Ordered by end_date DESC — the later trip first.
	assert.Equal(t, "Newer", trips[0].Name)
	assert.Equal(t, "Older", trips[1].Name)
}

func TestTripRepo_ListByUser_Empty(t *testing.T) {
	r := repo.NewTripRepo(newTestTx(t))

	trips, err := r.ListByUser(context.Background(), uuid.New())

	require.NoError(t, err)
	assert.NotNil(t, trips)
	assert.Empty(t, trips)
}

func TestTripRepo_AddItem_ConflictReturnsExisting(t *testing.T) {
	r := repo.NewTripRepo(newTestTx(t))
	ctx := context.Background()

	created, err := r.Create(ctx, tripFixture(uuid.New()))
	require.NoError(t, err)

	item := itemFixture(created.ID)
	first, err := r.AddItem(ctx, item)
	require.NoError(t, err)

	second, err := r.AddItem(ctx, item)
	require.NoError(t, err)

	// The conditional append resolves both calls to the same row.
	assert.Equal(t, first.ID, second.ID)

	got, err := r.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Len(t, got.Items, 1, "no duplicate member row")
}

func TestTripRepo_AddItem_NilLocation(t *testing.T) {
	r := repo.NewTripRepo(newTestTx(t))
	ctx := context.Background()

	created, err := r.Create(ctx, tripFixture(uuid.New()))
	require.NoError(t, err)

	item := itemFixture(created.ID)
	item.Location = nil

	got, err := r.AddItem(ctx, item)

	require.NoError(t, err)
	assert.Nil(t, got.Location)
}

func TestTripRepo_AddItem_TripNotFound(t *testing.T) {
	r := repo.NewTripRepo(newTestTx(t))

	_, err := r.AddItem(context.Background(), itemFixture(uuid.New()))

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestTripRepo_Delete_CascadesItems(t *testing.T) {
	r := repo.NewTripRepo(newTestTx(t))
	ctx := context.Background()

	created, err := r.Create(ctx, tripFixture(uuid.New()))
	require.NoError(t, err)
	_, err = r.AddItem(ctx, itemFixture(created.ID))
	require.NoError(t, err)

	err = r.Delete(ctx, created.ID)
	require.NoError(t, err)

	_, err = r.GetByID(ctx, created.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound, "trip should be gone after delete")
}

func TestTripRepo_Delete_NotFound(t *testing.T) {
	r := repo.NewTripRepo(newTestTx(t))

	err := r.Delete(context.Background(), uuid.New())

	assert.ErrorIs(t, err, domain.ErrNotFound)
}
