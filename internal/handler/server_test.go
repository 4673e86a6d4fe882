package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/trailhead-app/backend/internal/domain"
	"github.com/trailhead-app/backend/internal/handler"
)

// mockTrips is a hand-written test double for handler.TripServicer.
// Each method is a function field — set only the ones your test needs.
type mockTrips struct {
	create     func(ctx context.Context, trip domain.Trip) (domain.Trip, error)
	getByID    func(ctx context.Context, id uuid.UUID) (domain.Trip, error)
	listByUser func(ctx context.Context, userID uuid.UUID) ([]domain.Trip, error)
	delete     func(ctx context.Context, id uuid.UUID) error
}

func (m *mockTrips) Create(ctx context.Context, trip domain.Trip) (domain.Trip, error) {
	return m.create(ctx, trip)
}
func (m *mockTrips) GetByID(ctx context.Context, id uuid.UUID) (domain.Trip, error) {
	return m.getByID(ctx, id)
}
func (m *mockTrips) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Trip, error) {
	return m.listByUser(ctx, userID)
}
func (m *mockTrips) Delete(ctx context.Context, id uuid.UUID) error {
	return m.delete(ctx, id)
}

// mockMatch is a hand-written test double for handler.MatchServicer.
type mockMatch struct {
	resolve         func(ctx context.Context, userID uuid.UUID, item domain.CandidateItem, now time.Time, prompt bool) (*domain.Trip, error)
	candidates      func(ctx context.Context, userID uuid.UUID, item domain.CandidateItem, now time.Time) ([]domain.Trip, error)
	recordDecline   func(ctx context.Context, userID uuid.UUID, item domain.CandidateItem, tripIDs []uuid.UUID)
	clearRejections func(ctx context.Context, userID uuid.UUID, itemID uuid.UUID, itemType domain.ItemType) error
	forceAdd        func(ctx context.Context, userID, tripID uuid.UUID, item domain.CandidateItem) (domain.TripItem, error)
}

func (m *mockMatch) Resolve(ctx context.Context, userID uuid.UUID, item domain.CandidateItem, now time.Time, prompt bool) (*domain.Trip, error) {
	return m.resolve(ctx, userID, item, now, prompt)
}
func (m *mockMatch) Candidates(ctx context.Context, userID uuid.UUID, item domain.CandidateItem, now time.Time) ([]domain.Trip, error) {
	return m.candidates(ctx, userID, item, now)
}
func (m *mockMatch) RecordDecline(ctx context.Context, userID uuid.UUID, item domain.CandidateItem, tripIDs []uuid.UUID) {
	m.recordDecline(ctx, userID, item, tripIDs)
}
func (m *mockMatch) ClearRejections(ctx context.Context, userID uuid.UUID, itemID uuid.UUID, itemType domain.ItemType) error {
	return m.clearRejections(ctx, userID, itemID, itemType)
}
func (m *mockMatch) ForceAddToTrip(ctx context.Context, userID, tripID uuid.UUID, item domain.CandidateItem) (domain.TripItem, error) {
	return m.forceAdd(ctx, userID, tripID, item)
}

// compile-time checks against the consumer interfaces.
var (
	_ handler.TripServicer  = (*mockTrips)(nil)
	_ handler.MatchServicer = (*mockMatch)(nil)
)

var testUserID = uuid.MustParse("7c9e2f40-1b5a-4d3c-8e6f-2a0b9d4c1e73")

// doRequest routes a request through the full chi router so URL params and
// method matching behave exactly as in production.
func doRequest(t *testing.T, s *handler.Server, method, path string, body any, withUser bool) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	if withUser {
		req.Header.Set("X-User-ID", testUserID.String())
	}
	rec := httptest.NewRecorder()
	s.Routes().ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

func TestGetHealth(t *testing.T) {
	s := handler.NewServer(nil, nil, nil)

	rec := doRequest(t, s, http.MethodGet, "/healthz", nil, false)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody[map[string]string](t, rec)
	require.Equal(t, "ok", body["status"])
}
