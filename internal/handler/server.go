// Package handler implements the HTTP handlers for the Trailhead API.
// All handlers are methods on Server. Methods are split into domain-specific
// files (health.go, trip.go, match.go) but all share the same Server struct
// so they can access its dependencies.
package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/trailhead-app/backend/internal/domain"
)

// TripServicer defines the business operations the trip handlers depend on.
// Defining the interface here (in the consumer package) follows the Go
// convention: "accept interfaces, return concrete types". It lets handler
// tests inject a mock without touching the database or service layer.
type TripServicer interface {
	Create(ctx context.Context, trip domain.Trip) (domain.Trip, error)
	GetByID(ctx context.Context, id uuid.UUID) (domain.Trip, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Trip, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// HomeServicer defines the home-region operations the home handlers depend on.
type HomeServicer interface {
	Get(ctx context.Context, userID uuid.UUID) (domain.HomeProfile, error)
	Set(ctx context.Context, profile domain.HomeProfile) (domain.HomeProfile, error)
}

// MatchServicer defines the matching-engine operations the save-flow
// endpoints depend on.
type MatchServicer interface {
	Resolve(ctx context.Context, userID uuid.UUID, item domain.CandidateItem, now time.Time, prompt bool) (*domain.Trip, error)
	Candidates(ctx context.Context, userID uuid.UUID, item domain.CandidateItem, now time.Time) ([]domain.Trip, error)
	RecordDecline(ctx context.Context, userID uuid.UUID, item domain.CandidateItem, tripIDs []uuid.UUID)
	ClearRejections(ctx context.Context, userID uuid.UUID, itemID uuid.UUID, itemType domain.ItemType) error
	ForceAddToTrip(ctx context.Context, userID, tripID uuid.UUID, item domain.CandidateItem) (domain.TripItem, error)
}

// Server holds the dependencies shared by all HTTP handlers.
type Server struct {
	trips TripServicer
	home  HomeServicer
	match MatchServicer
	now   func() time.Time
}

// NewServer constructs the Server with all its dependencies.
func NewServer(trips TripServicer, home HomeServicer, match MatchServicer) *Server {
	return &Server{trips: trips, home: home, match: match, now: time.Now}
}

// Routes returns the chi router for all API endpoints.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", s.GetHealth)

	r.Route("/trips", func(r chi.Router) {
		r.Post("/", s.CreateTrip)
		r.Get("/", s.ListTrips)
		r.Get("/{tripID}", s.GetTrip)
		r.Delete("/{tripID}", s.DeleteTrip)
		r.Post("/{tripID}/items", s.ForceAddItem)
	})

	r.Route("/home", func(r chi.Router) {
		r.Get("/", s.GetHome)
		r.Put("/", s.SetHome)
	})

	r.Route("/match", func(r chi.Router) {
		r.Post("/", s.ResolveMatch)
		r.Post("/candidates", s.ListCandidates)
		r.Post("/rejections", s.RecordRejections)
		r.Delete("/rejections", s.ClearRejections)
	})

	return r
}

// userID extracts the authenticated user from the X-User-ID header.
// Authentication itself lives in front of this service; the header is
// trusted here.
func userID(r *http.Request) (uuid.UUID, error) {
	return uuid.Parse(r.Header.Get("X-User-ID"))
}
