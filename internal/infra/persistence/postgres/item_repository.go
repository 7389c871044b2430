// Package postgres contains the concrete implementation of the persistence layer using GORM and PostgreSQL.
package postgres

import (
	"context"

	"kaimono/internal/domain/entity"
	domainerrors "kaimono/internal/domain/errors"
	"kaimono/internal/domain/repository"
	"kaimono/internal/infra/persistence/model"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// itemRepository implements the repository.ItemRepository interface.
type itemRepository struct {
	db *gorm.DB
}

// NewItemRepository is the constructor for itemRepository.
func NewItemRepository(db *gorm.DB) repository.ItemRepository {
	return &itemRepository{
		db: db,
	}
}

// CreateItem persists a new shopping item.
func (repo *itemRepository) CreateItem(ctx context.Context, item *entity.ShoppingItem) error {
	itemM := fromItemDomain(item)

	if err := repo.db.WithContext(ctx).Create(itemM).Error; err != nil {
		if isUniqueConstraintViolation(err) {
			return repository.ErrDuplicateItemTitle
		}
		if isNotNullConstraintViolation(err) {
			return domainerrors.ErrValidationFailed.WrapMessage("missing required item information")
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to create item")
	}

	item.ID = itemM.ID
	item.CreatedAt = itemM.CreatedAt
	item.UpdatedAt = itemM.UpdatedAt

	return nil
}

// FindItemByID retrieves an item by its unique ID.
func (repo *itemRepository) FindItemByID(ctx context.Context, id uuid.UUID) (*entity.ShoppingItem, error) {
	var itemM model.ShoppingItemModel

	if err := repo.db.WithContext(ctx).
		Where("id = ?", id).
		First(&itemM).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrItemNotFound
		}

		return nil, errors.Wrap(err, "failed to find item by ID")
	}

	item := toItemDomain(&itemM)
	if err := repo.fillPlaceCounts(ctx, item); err != nil {
		return nil, err
	}

	return item, nil
}

// FindItemByTitle retrieves an item by its exact trimmed title.
func (repo *itemRepository) FindItemByTitle(ctx context.Context, title string) (*entity.ShoppingItem, error) {
	var itemM model.ShoppingItemModel

	if err := repo.db.WithContext(ctx).
		Where("title = ?", title).
		First(&itemM).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrItemNotFound
		}

		return nil, errors.Wrap(err, "failed to find item by title")
	}

	return toItemDomain(&itemM), nil
}

// ListItems retrieves all items with linked-place counts, newest first.
func (repo *itemRepository) ListItems(ctx context.Context) ([]*entity.ShoppingItem, error) {
	type itemRow struct {
		model.ShoppingItemModel
		PlaceCount int
	}

	var rows []*itemRow
	if err := repo.db.WithContext(ctx).
		Model(&model.ShoppingItemModel{}).
		Select("shopping_items.*, COUNT(item_place_links.place_id) AS place_count").
		Joins("LEFT JOIN item_place_links ON item_place_links.item_id = shopping_items.id").
		Group("shopping_items.id").
		Order("shopping_items.created_at DESC").
		Find(&rows).Error; err != nil {
		return nil, errors.Wrap(err, "failed to list items")
	}

	items := make([]*entity.ShoppingItem, 0, len(rows))
	for _, row := range rows {
		item := toItemDomain(&row.ShoppingItemModel)
		item.PlaceCount = row.PlaceCount
		items = append(items, item)
	}

	return items, nil
}

// FindUnpurchasedItemsByPlace retrieves the unpurchased items linked to a
// place, ordered by updatedAt ascending. This order fixes the reminder line
// order.
func (repo *itemRepository) FindUnpurchasedItemsByPlace(ctx context.Context, placeID uuid.UUID) ([]*entity.ShoppingItem, error) {
	var itemModels []*model.ShoppingItemModel

	if err := repo.db.WithContext(ctx).
		Model(&model.ShoppingItemModel{}).
		Joins("JOIN item_place_links ON item_place_links.item_id = shopping_items.id").
		Where("item_place_links.place_id = ? AND shopping_items.is_purchased = ?", placeID, false).
		Order("shopping_items.updated_at ASC").
		Find(&itemModels).Error; err != nil {
		return nil, errors.Wrap(err, "failed to find unpurchased items by place")
	}

	items := make([]*entity.ShoppingItem, 0, len(itemModels))
	for _, itemM := range itemModels {
		items = append(items, toItemDomain(itemM))
	}

	return items, nil
}

// SetPurchased updates an item's purchased flag.
func (repo *itemRepository) SetPurchased(ctx context.Context, id uuid.UUID, isPurchased bool) error {
	result := repo.db.WithContext(ctx).
		Model(&model.ShoppingItemModel{}).
		Where("id = ?", id).
		Update("is_purchased", isPurchased)

	if result.Error != nil {
		return errors.Wrap(result.Error, "failed to update purchased flag")
	}

	if result.RowsAffected == 0 {
		return repository.ErrItemNotFound
	}

	return nil
}

// UpdateNote updates an item's note.
func (repo *itemRepository) UpdateNote(ctx context.Context, id uuid.UUID, note string) error {
	result := repo.db.WithContext(ctx).
		Model(&model.ShoppingItemModel{}).
		Where("id = ?", id).
		Update("note", note)

	if result.Error != nil {
		return errors.Wrap(result.Error, "failed to update note")
	}

	if result.RowsAffected == 0 {
		return repository.ErrItemNotFound
	}

	return nil
}

// DeleteItem removes an item and its link rows in one transaction; a failed
// link delete must never leave orphan links behind a committed item delete.
// Gorm opens a savepoint instead when the repo is already bound to an outer
// transaction.
func (repo *itemRepository) DeleteItem(ctx context.Context, id uuid.UUID) error {
	return repo.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Where("id = ?", id).Delete(&model.ShoppingItemModel{})
		if result.Error != nil {
			return errors.Wrap(result.Error, "failed to delete item")
		}

		if result.RowsAffected == 0 {
			return repository.ErrItemNotFound
		}

		if err := tx.Where("item_id = ?", id).
			Delete(&model.ItemPlaceLinkModel{}).Error; err != nil {
			return errors.Wrap(err, "failed to delete item links")
		}

		return nil
	})
}

// LinkItemToPlace creates an item-place association. Re-linking an existing
// pair is a no-op.
func (repo *itemRepository) LinkItemToPlace(ctx context.Context, itemID, placeID uuid.UUID) error {
	linkM := &model.ItemPlaceLinkModel{ItemID: itemID, PlaceID: placeID}

	if err := repo.db.WithContext(ctx).Create(linkM).Error; err != nil {
		if isUniqueConstraintViolation(err) {
			return nil
		}
		if isForeignKeyConstraintViolation(err) {
			return repository.ErrPlaceNotFound
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to link item to place")
	}

	return nil
}

// UnlinkItemFromPlace removes an item-place association.
func (repo *itemRepository) UnlinkItemFromPlace(ctx context.Context, itemID, placeID uuid.UUID) error {
	result := repo.db.WithContext(ctx).
		Where("item_id = ? AND place_id = ?", itemID, placeID).
		Delete(&model.ItemPlaceLinkModel{})

	if result.Error != nil {
		return errors.Wrap(result.Error, "failed to unlink item from place")
	}

	if result.RowsAffected == 0 {
		return repository.ErrLinkNotFound
	}

	return nil
}

// DeleteLinksForPlace removes all link rows referencing a place.
func (repo *itemRepository) DeleteLinksForPlace(ctx context.Context, placeID uuid.UUID) error {
	if err := repo.db.WithContext(ctx).
		Where("place_id = ?", placeID).
		Delete(&model.ItemPlaceLinkModel{}).Error; err != nil {
		return errors.Wrap(err, "failed to delete links for place")
	}

	return nil
}

// fillPlaceCounts loads the linked-place count for a single item.
func (repo *itemRepository) fillPlaceCounts(ctx context.Context, item *entity.ShoppingItem) error {
	var count int64

	if err := repo.db.WithContext(ctx).
		Model(&model.ItemPlaceLinkModel{}).
		Where("item_id = ?", item.ID).
		Count(&count).Error; err != nil {
		return errors.Wrap(err, "failed to count item links")
	}

	item.PlaceCount = int(count)

	return nil
}

// --- Mapper Functions ---

// toItemDomain converts a GORM ShoppingItemModel to a domain ShoppingItem entity.
func toItemDomain(data *model.ShoppingItemModel) *entity.ShoppingItem {
	if data == nil {
		return nil
	}

	return &entity.ShoppingItem{
		ID:          data.ID,
		Title:       data.Title,
		Note:        data.Note,
		IsPurchased: data.IsPurchased,
		CreatedAt:   data.CreatedAt,
		UpdatedAt:   data.UpdatedAt,
	}
}

// fromItemDomain converts a domain ShoppingItem entity to a GORM ShoppingItemModel.
func fromItemDomain(data *entity.ShoppingItem) *model.ShoppingItemModel {
	if data == nil {
		return nil
	}

	return &model.ShoppingItemModel{
		ID:          data.ID,
		Title:       data.Title,
		Note:        data.Note,
		IsPurchased: data.IsPurchased,
		CreatedAt:   data.CreatedAt,
		UpdatedAt:   data.UpdatedAt,
	}
}
