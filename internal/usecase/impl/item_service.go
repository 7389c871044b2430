package impl

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"kaimono/internal/domain/entity"
	domainerrors "kaimono/internal/domain/errors"
	"kaimono/internal/domain/repository"
	"kaimono/internal/domain/service"
	"kaimono/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

type itemService struct {
	txManager repository.TransactionManager
	itemRepo  repository.ItemRepository
	scheduler service.SyncScheduler
	logger    *slog.Logger
}

// ItemServiceParams holds dependencies for the item service, injected by Fx.
type ItemServiceParams struct {
	fx.In

	TxManager repository.TransactionManager
	ItemRepo  repository.ItemRepository
	Scheduler service.SyncScheduler
	Logger    *slog.Logger
}

// NewItemService creates a new item service instance
func NewItemService(params ItemServiceParams) usecase.ItemUsecase {
	return &itemService{
		txManager: params.TxManager,
		itemRepo:  params.ItemRepo,
		scheduler: params.Scheduler,
		logger:    params.Logger,
	}
}

// CreateItem persists a new shopping item. The title is trimmed first; blank
// or duplicate titles fail with zero side effects.
func (s *itemService) CreateItem(ctx context.Context, input usecase.CreateItemInput) (*entity.ShoppingItem, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, domainerrors.ErrBlankTitle
	}

	_, err := s.itemRepo.FindItemByTitle(ctx, title)
	if err == nil {
		return nil, domainerrors.ErrDuplicateItemTitle
	}
	if !errors.Is(err, repository.ErrItemNotFound) {
		return nil, errors.Wrap(err, "failed to check title duplicate")
	}

	now := time.Now()
	item := &entity.ShoppingItem{
		ID:        uuid.New(),
		Title:     title,
		Note:      strings.TrimSpace(input.Note),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.itemRepo.CreateItem(ctx, item); err != nil {
		if errors.Is(err, repository.ErrDuplicateItemTitle) {
			return nil, domainerrors.ErrDuplicateItemTitle
		}

		return nil, errors.Wrap(err, "failed to create item")
	}

	// A brand-new item has no links yet, so the active set is untouched and
	// no sync is needed.
	return item, nil
}

// ListItems retrieves all items with linked-place counts.
func (s *itemService) ListItems(ctx context.Context) ([]*entity.ShoppingItem, error) {
	items, err := s.itemRepo.ListItems(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list items")
	}

	return items, nil
}

// SetPurchased marks an item bought or unbought, then schedules a sync since
// purchase state feeds the active-place derivation.
func (s *itemService) SetPurchased(ctx context.Context, itemID uuid.UUID, purchased bool) error {
	if err := s.itemRepo.SetPurchased(ctx, itemID, purchased); err != nil {
		if errors.Is(err, repository.ErrItemNotFound) {
			return domainerrors.ErrItemNotFound
		}

		return errors.Wrap(err, "failed to update purchased flag")
	}

	s.scheduler.ScheduleSync(ctx)

	return nil
}

// UpdateNote replaces an item's note. Notes never affect place activity.
func (s *itemService) UpdateNote(ctx context.Context, itemID uuid.UUID, note string) error {
	if err := s.itemRepo.UpdateNote(ctx, itemID, strings.TrimSpace(note)); err != nil {
		if errors.Is(err, repository.ErrItemNotFound) {
			return domainerrors.ErrItemNotFound
		}

		return errors.Wrap(err, "failed to update note")
	}

	return nil
}

// DeleteItem removes an item and its place links in one transaction, then
// schedules a sync. Like place deletion, the cascade must commit or roll
// back as a unit.
func (s *itemService) DeleteItem(ctx context.Context, itemID uuid.UUID) error {
	err := s.txManager.Execute(ctx, func(factory repository.RepositoryFactory) error {
		return factory.NewItemRepository().DeleteItem(ctx, itemID)
	})
	if err != nil {
		if errors.Is(err, repository.ErrItemNotFound) {
			return domainerrors.ErrItemNotFound
		}

		return errors.Wrap(err, "failed to delete item")
	}

	s.logger.Info("item deleted", slog.String("item_id", itemID.String()))
	s.scheduler.ScheduleSync(ctx)

	return nil
}

// LinkToPlace associates an item with a place, then schedules a sync.
func (s *itemService) LinkToPlace(ctx context.Context, itemID, placeID uuid.UUID) error {
	if err := s.itemRepo.LinkItemToPlace(ctx, itemID, placeID); err != nil {
		switch {
		case errors.Is(err, repository.ErrItemNotFound):
			return domainerrors.ErrItemNotFound
		case errors.Is(err, repository.ErrPlaceNotFound):
			return domainerrors.ErrPlaceNotFound
		default:
			return errors.Wrap(err, "failed to link item to place")
		}
	}

	s.scheduler.ScheduleSync(ctx)

	return nil
}

// UnlinkFromPlace removes the association, then schedules a sync.
func (s *itemService) UnlinkFromPlace(ctx context.Context, itemID, placeID uuid.UUID) error {
	if err := s.itemRepo.UnlinkItemFromPlace(ctx, itemID, placeID); err != nil {
		if errors.Is(err, repository.ErrLinkNotFound) {
			return domainerrors.ErrNotFound
		}

		return errors.Wrap(err, "failed to unlink item from place")
	}

	s.scheduler.ScheduleSync(ctx)

	return nil
}
