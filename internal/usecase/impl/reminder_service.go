package impl

import (
	"context"
	stderrors "errors"
	"log/slog"
	"time"

	"kaimono/config"
	"kaimono/internal/domain/entity"
	"kaimono/internal/domain/repository"
	"kaimono/internal/domain/service"
	"kaimono/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// ErrUnknownReminderAction is returned for an action identifier the workflow
// does not recognize.
var ErrUnknownReminderAction = errors.New("unknown reminder action")

type reminderService struct {
	placeRepo repository.PlaceRepository
	itemRepo  repository.ItemRepository
	stateRepo repository.NotificationStateRepository
	notifier  service.ReminderNotifier
	scheduler service.SyncScheduler
	policy    ReminderPolicy
	config    *config.Config
	logger    *slog.Logger
	now       func() time.Time
}

// ReminderServiceParams holds dependencies for the reminder service, injected by Fx.
type ReminderServiceParams struct {
	fx.In

	PlaceRepo repository.PlaceRepository
	ItemRepo  repository.ItemRepository
	StateRepo repository.NotificationStateRepository
	Notifier  service.ReminderNotifier
	Scheduler service.SyncScheduler
	Config    *config.Config
	Logger    *slog.Logger
}

// NewReminderService creates a new reminder workflow instance
func NewReminderService(params ReminderServiceParams) usecase.ReminderUsecase {
	return &reminderService{
		placeRepo: params.PlaceRepo,
		itemRepo:  params.ItemRepo,
		stateRepo: params.StateRepo,
		notifier:  params.Notifier,
		scheduler: params.Scheduler,
		policy:    ReminderPolicy{Cooldown: params.Config.Reminder.Cooldown},
		config:    params.Config,
		logger:    params.Logger,
		now:       time.Now,
	}
}

// loadState returns the place's notification state, mapping a missing row to
// nil ("never notified, never snoozed").
func (s *reminderService) loadState(ctx context.Context, placeID uuid.UUID) (*entity.PlaceNotificationState, error) {
	state, err := s.stateRepo.FindStateByPlace(ctx, placeID)
	if err != nil {
		if errors.Is(err, repository.ErrNotificationStateNotFound) {
			return nil, nil
		}

		return nil, errors.Wrap(err, "failed to find notification state")
	}

	return state, nil
}

// ShouldNotify reports whether a reminder may fire for the place now.
func (s *reminderService) ShouldNotify(ctx context.Context, placeID uuid.UUID, now time.Time) (bool, error) {
	state, err := s.loadState(ctx, placeID)
	if err != nil {
		return false, err
	}

	return s.policy.ShouldNotify(state, now), nil
}

// RecordNotification stores lastNotifiedAt=now and clears any snooze.
func (s *reminderService) RecordNotification(ctx context.Context, placeID uuid.UUID, now time.Time) error {
	state, err := s.loadState(ctx, placeID)
	if err != nil {
		return err
	}

	next := s.policy.Notified(state, now)
	next.PlaceID = placeID

	return errors.Wrap(s.stateRepo.SaveState(ctx, next), "failed to save notification state")
}

// Snooze suppresses reminders for the place, preserving lastNotifiedAt.
func (s *reminderService) Snooze(ctx context.Context, placeID uuid.UUID, duration time.Duration) error {
	if duration <= 0 {
		duration = s.config.Reminder.DefaultSnooze
	}

	state, err := s.loadState(ctx, placeID)
	if err != nil {
		return err
	}

	next := s.policy.Snoozed(state, duration, s.now())
	next.PlaceID = placeID

	return errors.Wrap(s.stateRepo.SaveState(ctx, next), "failed to save notification state")
}

// OnGeofenceEntered runs the dispatch workflow for each entered place
// independently. Deleted places are a race with the trigger, not an error;
// they and places with nothing unpurchased are skipped. Failures are joined
// and surfaced so the caller can signal a retry, but never abort the batch.
func (s *reminderService) OnGeofenceEntered(ctx context.Context, placeIDs []uuid.UUID) error {
	var errs []error
	for _, placeID := range placeIDs {
		if err := s.dispatchForPlace(ctx, placeID); err != nil {
			s.logger.Error("reminder dispatch failed",
				slog.String("place_id", placeID.String()),
				slog.Any("error", err),
			)
			errs = append(errs, err)
		}
	}

	return stderrors.Join(errs...)
}

func (s *reminderService) dispatchForPlace(ctx context.Context, placeID uuid.UUID) error {
	now := s.now()

	place, err := s.placeRepo.FindPlaceByID(ctx, placeID)
	if err != nil {
		if errors.Is(err, repository.ErrPlaceNotFound) {
			s.logger.Debug("entered place no longer exists, skipping",
				slog.String("place_id", placeID.String()),
			)

			return nil
		}

		return errors.Wrap(err, "failed to find entered place")
	}

	items, err := s.itemRepo.FindUnpurchasedItemsByPlace(ctx, place.ID)
	if err != nil {
		return errors.Wrap(err, "failed to load unpurchased items")
	}
	if len(items) == 0 {
		return nil
	}

	state, err := s.loadState(ctx, place.ID)
	if err != nil {
		return err
	}
	if !s.policy.ShouldNotify(state, now) {
		s.logger.Debug("reminder suppressed by snooze or cooldown",
			slog.String("place_id", place.ID.String()),
		)

		return nil
	}

	itemIDs := make([]uuid.UUID, 0, len(items))
	for _, item := range items {
		itemIDs = append(itemIDs, item.ID)
	}

	message := composeReminderMessage(place.Name, items)
	if err := s.notifier.ShowReminder(ctx, place.ID, itemIDs, message); err != nil {
		return errors.Wrap(err, "failed to show reminder")
	}

	if err := s.RecordNotification(ctx, place.ID, now); err != nil {
		return err
	}

	if err := s.placeRepo.TouchLastUsed(ctx, place.ID); err != nil {
		// The reminder already fired; last-used is cosmetic.
		s.logger.Warn("failed to touch place last-used",
			slog.String("place_id", place.ID.String()),
			slog.Any("error", err),
		)
	}

	s.logger.Info("reminder delivered",
		slog.String("place_id", place.ID.String()),
		slog.Int("items", len(items)),
	)

	return nil
}

// HandleNotificationAction applies an invoked reminder action and withdraws
// the reminder. Purchase and delete actions change place activity, so a
// sync is scheduled afterwards.
func (s *reminderService) HandleNotificationAction(ctx context.Context, action string, placeID uuid.UUID, itemIDs []uuid.UUID) error {
	switch action {
	case entity.ReminderActionMarkPurchased:
		for _, itemID := range itemIDs {
			if err := s.itemRepo.SetPurchased(ctx, itemID, true); err != nil {
				if errors.Is(err, repository.ErrItemNotFound) {
					continue
				}

				return errors.Wrap(err, "failed to mark item purchased")
			}
		}
	case entity.ReminderActionDeleteItems:
		for _, itemID := range itemIDs {
			if err := s.itemRepo.DeleteItem(ctx, itemID); err != nil {
				if errors.Is(err, repository.ErrItemNotFound) {
					continue
				}

				return errors.Wrap(err, "failed to delete item")
			}
		}
	case entity.ReminderActionOpenDetail:
		// Navigation happens on the device; nothing to mutate here.
	default:
		return errors.Wrapf(ErrUnknownReminderAction, "action %q", action)
	}

	if err := s.notifier.CancelReminder(ctx, placeID); err != nil {
		s.logger.Warn("failed to cancel reminder",
			slog.String("place_id", placeID.String()),
			slog.Any("error", err),
		)
	}

	if action == entity.ReminderActionMarkPurchased || action == entity.ReminderActionDeleteItems {
		s.scheduler.ScheduleSync(ctx)
	}

	return nil
}
