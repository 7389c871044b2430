// Package entity contains the core business objects of the project.
package entity

// ReminderMessage is the composed content of a shopping reminder
// notification for one place.
type ReminderMessage struct {
	Title   string   `json:"title"`             // "<place name> で買うもの"
	Lines   []string `json:"lines"`             // One "・<item title>" line per unpurchased item, updatedAt ascending.
	Summary *string  `json:"summary,omitempty"` // "ほか<N-1>件" for multiple items, the item note for a single item, nil otherwise.
}

// Reminder action identifiers attached to every delivered notification.
// Invoking an action on the device sends a notification-action event back
// carrying the action, the place id and the item ids.
const (
	ReminderActionMarkPurchased = "mark_purchased"
	ReminderActionDeleteItems   = "delete_items"
	ReminderActionOpenDetail    = "open_detail"
)
