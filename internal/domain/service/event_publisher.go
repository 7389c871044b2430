package service

import (
	"context"
)

// Inbound event types. Every callback-style signal from the device arrives
// as one tagged InboundEvent through a single dispatcher, not as a class
// hierarchy.
const (
	EventTypeGeofenceTransition = "geofence_transition"
	EventTypeNotificationAction = "notification_action"
)

// Geofence transition kinds reported by the device facility.
const (
	TransitionEnter = "enter"
	TransitionExit  = "exit"
	// TransitionError signals an inconsistency reported by the facility
	// (e.g. registrations evicted). It carries no place ids but still
	// triggers a self-heal sync.
	TransitionError = "error"
)

// GeofenceTransition is the payload of a geofence transition event.
type GeofenceTransition struct {
	Transition string   `json:"transition"` // enter, exit or error
	PlaceIDs   []string `json:"place_ids"`  // Triggering place ids.
}

// NotificationAction is the payload of an invoked reminder action.
type NotificationAction struct {
	Action  string   `json:"action"`
	PlaceID string   `json:"place_id"`
	ItemIDs []string `json:"item_ids"`
}

// InboundEvent is the tagged union delivered to the worker. Exactly one of
// the payload fields matching Type is set.
type InboundEvent struct {
	RequestID  string              `json:"request_id,omitempty"` // For distributed tracing
	Type       string              `json:"type"`
	Transition *GeofenceTransition `json:"transition,omitempty"`
	Action     *NotificationAction `json:"action,omitempty"`
}

// EventPublisher defines the interface for publishing inbound events to the
// worker's queue.
type EventPublisher interface {
	// PublishInboundEvent publishes an event for async processing.
	PublishInboundEvent(ctx context.Context, event *InboundEvent) error

	// Close releases any resources held by the publisher
	Close() error
}
