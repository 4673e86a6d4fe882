package handler

import (
	"net/http"

	"github.com/trailhead-app/backend/internal/domain"
	"github.com/trailhead-app/backend/internal/geo"
)

// homeProfileRequest is the body for PUT /home. Latitude and longitude must
// be sent together or both omitted; omitting them clears the home region,
// which disables near-home matching for the user.
type homeProfileRequest struct {
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
	RadiusKm  float64  `json:"radius_km,omitempty"`
}

// GetHome handles GET /home. Returns 404 when no home region is configured.
func (s *Server) GetHome(w http.ResponseWriter, r *http.Request) {
	uid, err := userID(r)
	if err != nil {
		writeBadRequest(w, "missing or invalid X-User-ID header")
		return
	}

	profile, err := s.home.Get(r.Context(), uid)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

// SetHome handles PUT /home, creating or replacing the user's home region.
func (s *Server) SetHome(w http.ResponseWriter, r *http.Request) {
	uid, err := userID(r)
	if err != nil {
		writeBadRequest(w, "missing or invalid X-User-ID header")
		return
	}

	var req homeProfileRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}
	if (req.Latitude == nil) != (req.Longitude == nil) {
		writeBadRequest(w, "latitude and longitude must be sent together")
		return
	}

	profile := domain.HomeProfile{
		UserID:       uid,
		HomeRadiusKm: req.RadiusKm,
	}
	if req.Latitude != nil {
		profile.HomeLocation = &geo.Point{Latitude: *req.Latitude, Longitude: *req.Longitude}
	}

	saved, err := s.home.Set(r.Context(), profile)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, saved)
}
