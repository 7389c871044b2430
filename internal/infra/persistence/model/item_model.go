package model

import (
	"time"

	"github.com/google/uuid"
)

// ShoppingItemModel is the GORM-specific struct for the 'shopping_items'
// table. Titles are stored trimmed and carry a unique index.
type ShoppingItemModel struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v7()"`
	Title       string    `gorm:"type:varchar(255);not null;uniqueIndex:idx_items_title"`
	Note        string    `gorm:"type:text;not null;default:''"`
	IsPurchased bool      `gorm:"not null;default:false"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TableName explicitly sets the table name for GORM.
func (ShoppingItemModel) TableName() string {
	return "shopping_items"
}

// ItemPlaceLinkModel is the GORM-specific struct for the 'item_place_links'
// join table.
type ItemPlaceLinkModel struct {
	ItemID    uuid.UUID `gorm:"type:uuid;primary_key"`
	PlaceID   uuid.UUID `gorm:"type:uuid;primary_key;index"`
	CreatedAt time.Time
}

// TableName explicitly sets the table name for GORM.
func (ItemPlaceLinkModel) TableName() string {
	return "item_place_links"
}
