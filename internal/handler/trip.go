package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/trailhead-app/backend/internal/domain"
)

// createTripRequest is the body for POST /trips.
// Dates use the "2006-01-02" civil date format.
type createTripRequest struct {
	Name      string `json:"name"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	Notes     string `json:"notes,omitempty"`
}

// CreateTrip handles POST /trips.
func (s *Server) CreateTrip(w http.ResponseWriter, r *http.Request) {
	uid, err := userID(r)
	if err != nil {
		writeBadRequest(w, "missing or invalid X-User-ID header")
		return
	}

	var req createTripRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}

	start, err := parseDate(req.StartDate)
	if err != nil {
		writeBadRequest(w, "start_date must be formatted as 2006-01-02")
		return
	}
	end, err := parseDate(req.EndDate)
	if err != nil {
		writeBadRequest(w, "end_date must be formatted as 2006-01-02")
		return
	}

	trip := domain.Trip{
		UserID:    uid,
		Name:      req.Name,
		StartDate: start,
		EndDate:   end,
		Notes:     req.Notes,
	}

	created, err := s.trips.Create(r.Context(), trip)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// ListTrips handles GET /trips. Trips come back items included, ordered by
// end_date descending.
func (s *Server) ListTrips(w http.ResponseWriter, r *http.Request) {
	uid, err := userID(r)
	if err != nil {
		writeBadRequest(w, "missing or invalid X-User-ID header")
		return
	}

	trips, err := s.trips.ListByUser(r.Context(), uid)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, trips)
}

// GetTrip handles GET /trips/{tripID}.
func (s *Server) GetTrip(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "tripID"))
	if err != nil {
		writeBadRequest(w, "invalid trip id")
		return
	}

	trip, err := s.trips.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, trip)
}

// DeleteTrip handles DELETE /trips/{tripID}. Items go with the trip; rejection
// records stay, which is harmless because they are keyed by trip ID.
func (s *Server) DeleteTrip(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "tripID"))
	if err != nil {
		writeBadRequest(w, "invalid trip id")
		return
	}

	if err := s.trips.Delete(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ForceAddItem handles POST /trips/{tripID}/items — the explicit "add anyway"
// action. Prior rejections for the item are cleared and the item is filed
// into the trip without any candidate filtering.
func (s *Server) ForceAddItem(w http.ResponseWriter, r *http.Request) {
	uid, err := userID(r)
	if err != nil {
		writeBadRequest(w, "missing or invalid X-User-ID header")
		return
	}
	tripID, err := uuid.Parse(chi.URLParam(r, "tripID"))
	if err != nil {
		writeBadRequest(w, "invalid trip id")
		return
	}

	var req candidateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}
	item, err := req.toDomain()
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	member, err := s.match.ForceAddToTrip(r.Context(), uid, tripID, item)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, member)
}

// parseDate parses a "2006-01-02" civil date into UTC midnight.
func parseDate(s string) (time.Time, error) {
	return time.ParseInLocation("2006-01-02", s, time.UTC)
}
