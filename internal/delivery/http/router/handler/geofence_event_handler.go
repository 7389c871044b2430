package handler

import (
	"log/slog"
	"net/http"

	deliveryctx "kaimono/internal/delivery/context"
	"kaimono/internal/delivery/http/response"
	domainerrors "kaimono/internal/domain/errors"
	"kaimono/internal/domain/service"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// GeofenceEventHandlerParams holds dependencies for GeofenceEventHandler, injected by Fx.
type GeofenceEventHandlerParams struct {
	fx.In

	Publisher service.EventPublisher
	Logger    *slog.Logger
}

// GeofenceEventHandler accepts device callbacks (geofence transitions and
// reminder actions) and hands them to the worker queue. The API process never
// runs the dispatch workflow itself.
type GeofenceEventHandler struct {
	publisher service.EventPublisher
	logger    *slog.Logger
}

// NewGeofenceEventHandler is the constructor for GeofenceEventHandler
func NewGeofenceEventHandler(params GeofenceEventHandlerParams) *GeofenceEventHandler {
	return &GeofenceEventHandler{
		publisher: params.Publisher,
		logger:    params.Logger,
	}
}

// InboundEventRequest represents the request body for a device event
type InboundEventRequest struct {
	Type       string                      `json:"type" validate:"required,oneof=geofence_transition notification_action"`
	Transition *service.GeofenceTransition `json:"transition"`
	Action     *service.NotificationAction `json:"action"`
}

// PublishEvent handles queueing a device event for async processing
func (h *GeofenceEventHandler) PublishEvent(c echo.Context) error {
	var req InboundEventRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid event input")
	}

	if err := c.Validate(&req); err != nil {
		return h.handleAppError(c, err)
	}

	switch req.Type {
	case service.EventTypeGeofenceTransition:
		if req.Transition == nil {
			return response.BadRequest(c, "INVALID_INPUT", "Missing transition payload")
		}
	case service.EventTypeNotificationAction:
		if req.Action == nil {
			return response.BadRequest(c, "INVALID_INPUT", "Missing action payload")
		}
	}

	event := &service.InboundEvent{
		RequestID:  deliveryctx.GetRequestID(c),
		Type:       req.Type,
		Transition: req.Transition,
		Action:     req.Action,
	}

	if err := h.publisher.PublishInboundEvent(c.Request().Context(), event); err != nil {
		h.logger.Error("failed to publish inbound event",
			slog.String("type", req.Type),
			slog.Any("error", err))

		return h.handleAppError(c, err)
	}

	return response.Success(c, http.StatusAccepted, map[string]string{"request_id": event.RequestID}, "Event accepted")
}

// handleAppError handles application errors
func (h *GeofenceEventHandler) handleAppError(c echo.Context, err error) error {
	var appErr domainerrors.AppError
	if errors.As(err, &appErr) {
		return response.Error(c, appErr.HTTPCode(), appErr.ErrorCode(), appErr.Message(), appErr.Details())
	}

	return errors.WithStack(err)
}
