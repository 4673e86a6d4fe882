// Package domain contains the core data types for the Trailhead journal
// backend. It depends only on the stdlib, uuid, and the internal geo package,
// and is imported by every other internal package (repo, service, handler).
package domain

import (
	"time"

	"github.com/google/uuid"

	"github.com/trailhead-app/backend/internal/geo"
)

// Trip represents a user-defined date range that activities and saved
// locations can be filed into. A trip is the top-level aggregate; trip items
// belong to a trip.
//
// StartDate and EndDate are inclusive civil dates stored at UTC midnight.
// Invariant: StartDate <= EndDate, enforced by the service layer on create.
type Trip struct {
	ID        uuid.UUID  `json:"id"`
	UserID    uuid.UUID  `json:"user_id"`
	Name      string     `json:"name"`
	StartDate time.Time  `json:"start_date"`
	EndDate   time.Time  `json:"end_date"`
	Notes     string     `json:"notes,omitempty"`
	Items     []TripItem `json:"items"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// ActiveAt reports whether now falls inside the trip's inclusive date range.
func (t Trip) ActiveAt(now time.Time) bool {
	day := now.UTC().Truncate(24 * time.Hour)
	return !day.Before(t.StartDate) && !day.After(t.EndDate)
}

// ContainsItem reports whether the trip already holds a member referencing
// the given item. Identity is (ItemID, ItemType), not the TripItem row ID.
func (t Trip) ContainsItem(itemID uuid.UUID, itemType ItemType) bool {
	for _, it := range t.Items {
		if it.ItemID == itemID && it.ItemType == itemType {
			return true
		}
	}
	return false
}

// TripItem is a trip's reference to an activity or saved location, with a
// denormalized copy of that item's coordinate (the first route point for
// activities) so distance checks never refetch the source record.
// Location is nil when the source item carried no coordinate.
// Append-only: created when an item is filed into a trip, never updated.
type TripItem struct {
	ID        uuid.UUID  `json:"id"`
	TripID    uuid.UUID  `json:"trip_id"`
	ItemID    uuid.UUID  `json:"item_id"`
	ItemType  ItemType   `json:"item_type"`
	Location  *geo.Point `json:"location,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}
