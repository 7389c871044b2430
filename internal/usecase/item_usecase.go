package usecase

import (
	"context"

	"kaimono/internal/domain/entity"

	"github.com/google/uuid"
)

// CreateItemInput carries the fields for creating a shopping item.
type CreateItemInput struct {
	Title string `json:"title"`
	Note  string `json:"note"`
}

// ItemUsecase defines the interface for shopping-item use cases. Every
// mutation that can change place activity schedules a geofence sync.
type ItemUsecase interface {
	// CreateItem persists a new item. The title is trimmed; blank or
	// duplicate titles fail without side effects.
	CreateItem(ctx context.Context, input CreateItemInput) (*entity.ShoppingItem, error)

	// ListItems retrieves all items with linked-place counts.
	ListItems(ctx context.Context) ([]*entity.ShoppingItem, error)

	// SetPurchased marks an item bought or unbought.
	SetPurchased(ctx context.Context, itemID uuid.UUID, purchased bool) error

	// UpdateNote replaces an item's note.
	UpdateNote(ctx context.Context, itemID uuid.UUID, note string) error

	// DeleteItem removes an item and its place links.
	DeleteItem(ctx context.Context, itemID uuid.UUID) error

	// LinkToPlace associates an item with a place.
	LinkToPlace(ctx context.Context, itemID, placeID uuid.UUID) error

	// UnlinkFromPlace removes the association.
	UnlinkFromPlace(ctx context.Context, itemID, placeID uuid.UUID) error
}
