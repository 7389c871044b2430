// Package entity contains the core business objects of the project.
package entity

import (
	"time"

	"github.com/google/uuid"
)

// ShoppingItem is a thing to buy. Titles are unique (case-sensitive exact
// match on the trimmed value); creating a duplicate fails, it never merges.
type ShoppingItem struct {
	ID          uuid.UUID // The unique identifier for the item.
	Title       string    // Trimmed, non-blank, unique title.
	Note        string    // Optional free-form note.
	IsPurchased bool      // Whether the item has been bought.
	PlaceCount  int       // Derived count of linked places.
	CreatedAt   time.Time // Timestamp of when this item was created.
	UpdatedAt   time.Time // Timestamp of the last modification.
}

// ItemPlaceLink associates an item with a place where it can be bought.
// Deleting either side cascades to delete the link.
type ItemPlaceLink struct {
	ItemID    uuid.UUID // The linked shopping item.
	PlaceID   uuid.UUID // The linked place.
	CreatedAt time.Time // Timestamp of when the link was created.
}
