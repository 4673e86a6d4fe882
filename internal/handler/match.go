package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/trailhead-app/backend/internal/domain"
	"github.com/trailhead-app/backend/internal/geo"
)

// candidateRequest is the wire form of an item being evaluated for trip
// membership. Date is RFC 3339; the caller sends the item's representative
// date (activity date, location date, or creation timestamp).
type candidateRequest struct {
	ID        string  `json:"id"`
	ItemType  string  `json:"item_type"`
	Name      string  `json:"name"`
	Date      string  `json:"date"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

func (c candidateRequest) toDomain() (domain.CandidateItem, error) {
	id, err := uuid.Parse(c.ID)
	if err != nil {
		return domain.CandidateItem{}, errors.New("invalid item id")
	}
	itemType := domain.ItemType(c.ItemType)
	if !itemType.Valid() {
		return domain.CandidateItem{}, errors.New("item_type must be activity or spot")
	}
	date, err := time.Parse(time.RFC3339, c.Date)
	if err != nil {
		return domain.CandidateItem{}, errors.New("date must be RFC 3339")
	}
	return domain.CandidateItem{
		ID:       id,
		ItemType: itemType,
		Name:     c.Name,
		Date:     date,
		Location: geo.Point{Latitude: c.Latitude, Longitude: c.Longitude},
	}, nil
}

// ResolveMatch handles POST /match — the silent auto-add path used by save
// flows that do not want interaction. Returns the assigned trip, or 204 when
// no trip matched.
func (s *Server) ResolveMatch(w http.ResponseWriter, r *http.Request) {
	uid, err := userID(r)
	if err != nil {
		writeBadRequest(w, "missing or invalid X-User-ID header")
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

	trip, err := s.match.Resolve(r.Context(), uid, item, s.now(), false)
	if err != nil {
		writeError(w, err)
		return
	}
	if trip == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, trip)
}

// ListCandidates handles POST /match/candidates. The client renders the
// choice itself; candidates come back ranked, best first, and an item the
// user already declined yields an empty list.
func (s *Server) ListCandidates(w http.ResponseWriter, r *http.Request) {
	uid, err := userID(r)
	if err != nil {
		writeBadRequest(w, "missing or invalid X-User-ID header")
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

	candidates, err := s.match.Candidates(r.Context(), uid, item, s.now())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, candidates)
}

// recordRejectionsRequest is the body for POST /match/rejections: the user
// answered "don't add" to a client-rendered choice, for these candidates.
type recordRejectionsRequest struct {
	Item    candidateRequest `json:"item"`
	TripIDs []string         `json:"trip_ids"`
}

// RecordRejections handles POST /match/rejections.
func (s *Server) RecordRejections(w http.ResponseWriter, r *http.Request) {
	uid, err := userID(r)
	if err != nil {
		writeBadRequest(w, "missing or invalid X-User-ID header")
		return
	}

	var req recordRejectionsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}
	item, err := req.Item.toDomain()
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	tripIDs := make([]uuid.UUID, 0, len(req.TripIDs))
	for _, raw := range req.TripIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			writeBadRequest(w, "invalid trip id in trip_ids")
			return
		}
		tripIDs = append(tripIDs, id)
	}

	s.match.RecordDecline(r.Context(), uid, item, tripIDs)
	w.WriteHeader(http.StatusNoContent)
}

// ClearRejections handles DELETE /match/rejections?item_id=&item_type=,
// putting an item back into matching rotation.
func (s *Server) ClearRejections(w http.ResponseWriter, r *http.Request) {
	uid, err := userID(r)
	if err != nil {
		writeBadRequest(w, "missing or invalid X-User-ID header")
		return
	}

	itemID, err := uuid.Parse(r.URL.Query().Get("item_id"))
	if err != nil {
		writeBadRequest(w, "invalid item_id")
		return
	}
	itemType := domain.ItemType(r.URL.Query().Get("item_type"))
	if !itemType.Valid() {
		writeBadRequest(w, "item_type must be activity or spot")
		return
	}

	if err := s.match.ClearRejections(r.Context(), uid, itemID, itemType); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
