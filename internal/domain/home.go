package domain

import (
	"github.com/google/uuid"

	"github.com/trailhead-app/backend/internal/geo"
)

// DefaultHomeRadiusKm is the home radius applied when a profile has a home
// location but no explicit radius.
const DefaultHomeRadiusKm = 2.0

// HomeProfile is the user's configured home region. HomeLocation is nil when
// the user never set a home, which disables all home-based matching logic.
// Read-only input to the matching engine.
type HomeProfile struct {
	UserID       uuid.UUID  `json:"user_id"`
	HomeLocation *geo.Point `json:"home_location,omitempty"`
	HomeRadiusKm float64    `json:"home_radius_km,omitempty"`
}

// RadiusKm returns the configured home radius, falling back to
// DefaultHomeRadiusKm when unset.
func (p HomeProfile) RadiusKm() float64 {
	if p.HomeRadiusKm > 0 {
		return p.HomeRadiusKm
	}
	return DefaultHomeRadiusKm
}
