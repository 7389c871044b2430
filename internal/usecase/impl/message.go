package impl

import (
	"fmt"
	"strings"

	"kaimono/internal/domain/entity"
)

const (
	reminderTitleSuffix = " で買うもの"
	reminderLinePrefix  = "・"
)

// composeReminderMessage builds the reminder content for a place. Items must
// already be ordered by updatedAt ascending; line order follows item order.
//
// Title is the place name plus a fixed suffix. With more than one item the
// summary is "ほか<N-1>件"; with exactly one item it is that item's note when
// non-blank and absent otherwise.
func composeReminderMessage(placeName string, items []*entity.ShoppingItem) *entity.ReminderMessage {
	lines := make([]string, 0, len(items))
	for _, item := range items {
		lines = append(lines, reminderLinePrefix+item.Title)
	}

	message := &entity.ReminderMessage{
		Title: placeName + reminderTitleSuffix,
		Lines: lines,
	}

	switch {
	case len(items) > 1:
		summary := fmt.Sprintf("ほか%d件", len(items)-1)
		message.Summary = &summary
	case len(items) == 1:
		if note := strings.TrimSpace(items[0].Note); note != "" {
			message.Summary = &note
		}
	}

	return message
}
