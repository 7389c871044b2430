// Package repository defines the interfaces for the persistence layer.
package repository

import (
	"context"
	"errors"

	"kaimono/internal/domain/entity"

	"github.com/google/uuid"
)

// Domain-specific errors for item persistence.
var (
	// ErrItemNotFound is returned when a shopping item is not found.
	ErrItemNotFound = errors.New("shopping item not found")
	// ErrDuplicateItemTitle is returned when an item with the same trimmed
	// title already exists.
	ErrDuplicateItemTitle = errors.New("item title already exists")
	// ErrLinkNotFound is returned when an item-place link is not found.
	ErrLinkNotFound = errors.New("item place link not found")
)

// ItemRepository defines the interface for shopping-item database operations.
type ItemRepository interface {
	// CreateItem persists a new shopping item.
	CreateItem(ctx context.Context, item *entity.ShoppingItem) error

	// FindItemByID retrieves an item by its unique ID.
	FindItemByID(ctx context.Context, id uuid.UUID) (*entity.ShoppingItem, error)

	// FindItemByTitle retrieves an item by its exact trimmed title.
	FindItemByTitle(ctx context.Context, title string) (*entity.ShoppingItem, error)

	// ListItems retrieves all items with their linked-place counts, newest
	// first.
	ListItems(ctx context.Context) ([]*entity.ShoppingItem, error)

	// FindUnpurchasedItemsByPlace retrieves the unpurchased items linked to
	// a place, ordered by updatedAt ascending.
	FindUnpurchasedItemsByPlace(ctx context.Context, placeID uuid.UUID) ([]*entity.ShoppingItem, error)

	// SetPurchased updates an item's purchased flag.
	SetPurchased(ctx context.Context, id uuid.UUID, isPurchased bool) error

	// UpdateNote updates an item's note.
	UpdateNote(ctx context.Context, id uuid.UUID, note string) error

	// DeleteItem removes an item and its link rows.
	DeleteItem(ctx context.Context, id uuid.UUID) error

	// LinkItemToPlace creates an item-place association. Linking an already
	// linked pair is a no-op.
	LinkItemToPlace(ctx context.Context, itemID, placeID uuid.UUID) error

	// UnlinkItemFromPlace removes an item-place association.
	UnlinkItemFromPlace(ctx context.Context, itemID, placeID uuid.UUID) error

	// DeleteLinksForPlace removes all link rows referencing a place.
	DeleteLinksForPlace(ctx context.Context, placeID uuid.UUID) error
}
