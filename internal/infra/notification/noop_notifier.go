package notification

import (
	"context"
	"log/slog"

	"kaimono/internal/domain/entity"
	"kaimono/internal/domain/service"

	"github.com/google/uuid"
)

// noopNotifier logs reminders instead of delivering them. Used when Firebase
// is not configured, typically in local development.
type noopNotifier struct {
	logger *slog.Logger
}

// NewNoopNotifier creates a notifier that only logs
func NewNoopNotifier(logger *slog.Logger) service.ReminderNotifier {
	return &noopNotifier{logger: logger}
}

func (n *noopNotifier) ShowReminder(ctx context.Context, placeID uuid.UUID, itemIDs []uuid.UUID, message *entity.ReminderMessage) error {
	n.logger.Info("reminder suppressed, no notifier configured",
		slog.String("place_id", placeID.String()),
		slog.String("title", message.Title),
		slog.Int("item_count", len(itemIDs)))

	return nil
}

func (n *noopNotifier) CancelReminder(ctx context.Context, placeID uuid.UUID) error {
	n.logger.Debug("reminder cancel suppressed, no notifier configured",
		slog.String("place_id", placeID.String()))

	return nil
}
