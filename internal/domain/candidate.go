package domain

import (
	"time"

	"github.com/google/uuid"

	"github.com/trailhead-app/backend/internal/geo"
)

// ItemType distinguishes the two kinds of journal entries a trip can hold.
type ItemType string

const (
	ItemTypeActivity ItemType = "activity"
	ItemTypeSpot     ItemType = "spot"
)

// Valid reports whether t is one of the known item types.
func (t ItemType) Valid() bool {
	return t == ItemTypeActivity || t == ItemTypeSpot
}

// CandidateItem is an activity or saved location being evaluated for trip
// membership. Transient: built by the save flow from the freshly created
// record, never persisted itself.
//
// Date is the item's representative date — activity date, location date, or
// creation timestamp, in that preference order; the caller resolves which.
// Location is the item's coordinate, or the first point of its route.
type CandidateItem struct {
	ID       uuid.UUID `json:"id"`
	ItemType ItemType  `json:"item_type"`
	Name     string    `json:"name"`
	Date     time.Time `json:"date"`
	Location geo.Point `json:"location"`
}
