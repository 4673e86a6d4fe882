package domain

import (
	"time"

	"github.com/google/uuid"
)

// RejectionRecord remembers that a user declined to add a specific item to a
// specific trip, so the matcher never proposes that pairing again.
// Created on decline, never updated; deleted only by an explicit clear
// (the "add anyway" flow) to allow re-proposal.
type RejectionRecord struct {
	UserID    uuid.UUID `json:"user_id"`
	ItemID    uuid.UUID `json:"item_id"`
	ItemType  ItemType  `json:"item_type"`
	TripID    uuid.UUID `json:"trip_id"`
	CreatedAt time.Time `json:"created_at"`
}
