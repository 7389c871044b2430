// Package notification delivers composed reminders through Firebase Cloud
// Messaging.
package notification

import (
	"context"
	"fmt"
	"strings"

	"kaimono/internal/domain/entity"
	"kaimono/internal/domain/service"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"github.com/google/uuid"
	"google.golang.org/api/option"
)

const defaultReminderTopic = "shopping-reminders"

type fcmNotifier struct {
	client *messaging.Client
	topic  string
}

// NewFCMNotifier creates a new FCM-backed reminder notifier instance
func NewFCMNotifier(ctx context.Context, credentialsPath, topic string) (service.ReminderNotifier, error) {
	opt := option.WithCredentialsFile(credentialsPath)
	app, err := firebase.NewApp(ctx, nil, opt)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Firebase app: %w", err)
	}

	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get messaging client: %w", err)
	}

	if topic == "" {
		topic = defaultReminderTopic
	}

	return &fcmNotifier{
		client: client,
		topic:  topic,
	}, nil
}

// ShowReminder delivers a composed reminder for a place. The data payload
// carries the place id, the item ids and the action identifiers the device
// needs to send action events back.
func (n *fcmNotifier) ShowReminder(ctx context.Context, placeID uuid.UUID, itemIDs []uuid.UUID, message *entity.ReminderMessage) error {
	ids := make([]string, 0, len(itemIDs))
	for _, itemID := range itemIDs {
		ids = append(ids, itemID.String())
	}

	body := strings.Join(message.Lines, "\n")
	if message.Summary != nil {
		body += "\n" + *message.Summary
	}

	data := map[string]string{
		"place_id": placeID.String(),
		"item_ids": strings.Join(ids, ","),
		// Collapsing on the place replaces a stale reminder instead of
		// stacking a second one.
		"collapse_key": entity.GeofenceRequestID(placeID),
		"actions": strings.Join([]string{
			entity.ReminderActionMarkPurchased,
			entity.ReminderActionDeleteItems,
			entity.ReminderActionOpenDetail,
		}, ","),
	}

	msg := &messaging.Message{
		Topic: n.topic,
		Notification: &messaging.Notification{
			Title: message.Title,
			Body:  body,
		},
		Data: data,
	}

	if _, err := n.client.Send(ctx, msg); err != nil {
		return fmt.Errorf("failed to send reminder: %w", err)
	}

	return nil
}

// CancelReminder withdraws any visible reminder for a place. FCM has no
// server-side retraction, so this sends a data-only message the device uses
// to dismiss the matching notification.
func (n *fcmNotifier) CancelReminder(ctx context.Context, placeID uuid.UUID) error {
	msg := &messaging.Message{
		Topic: n.topic,
		Data: map[string]string{
			"cancel":   "true",
			"place_id": placeID.String(),
		},
	}

	if _, err := n.client.Send(ctx, msg); err != nil {
		return fmt.Errorf("failed to send cancel message: %w", err)
	}

	return nil
}
