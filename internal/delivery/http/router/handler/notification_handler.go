package handler

import (
	"log/slog"
	"net/http"
	"time"

	"kaimono/internal/delivery/http/response"
	domainerrors "kaimono/internal/domain/errors"
	"kaimono/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// NotificationHandlerParams holds dependencies for NotificationHandler, injected by Fx.
type NotificationHandlerParams struct {
	fx.In

	ReminderUC usecase.ReminderUsecase
	Logger     *slog.Logger
}

// NotificationHandler holds dependencies for reminder-state handlers
type NotificationHandler struct {
	reminderUC usecase.ReminderUsecase
	logger     *slog.Logger
}

// NewNotificationHandler is the constructor for NotificationHandler
func NewNotificationHandler(params NotificationHandlerParams) *NotificationHandler {
	return &NotificationHandler{
		reminderUC: params.ReminderUC,
		logger:     params.Logger,
	}
}

// SnoozeRequest represents the request body for snoozing a place's reminders.
// DurationMinutes zero or omitted applies the configured default.
type SnoozeRequest struct {
	DurationMinutes int `json:"duration_minutes" validate:"min=0,max=10080"`
}

// Snooze handles suppressing reminders for a place
func (h *NotificationHandler) Snooze(c echo.Context) error {
	placeID, err := uuid.Parse(c.Param("placeId"))
	if err != nil {
		return response.BadRequest(c, "INVALID_ID", "Invalid place ID")
	}

	var req SnoozeRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid snooze input")
	}

	if err := c.Validate(&req); err != nil {
		return h.handleAppError(c, err)
	}

	duration := time.Duration(req.DurationMinutes) * time.Minute
	if err := h.reminderUC.Snooze(c.Request().Context(), placeID, duration); err != nil {
		return h.handleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, map[string]string{"message": "Reminders snoozed successfully"}, "Reminders snoozed successfully")
}

// Eligibility handles checking whether a reminder may fire for a place now
func (h *NotificationHandler) Eligibility(c echo.Context) error {
	placeID, err := uuid.Parse(c.Param("placeId"))
	if err != nil {
		return response.BadRequest(c, "INVALID_ID", "Invalid place ID")
	}

	eligible, err := h.reminderUC.ShouldNotify(c.Request().Context(), placeID, time.Now())
	if err != nil {
		return h.handleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, map[string]bool{"eligible": eligible}, "Eligibility retrieved successfully")
}

// handleAppError handles application errors
func (h *NotificationHandler) handleAppError(c echo.Context, err error) error {
	var appErr domainerrors.AppError
	if errors.As(err, &appErr) {
		return response.Error(c, appErr.HTTPCode(), appErr.ErrorCode(), appErr.Message(), appErr.Details())
	}

	return errors.WithStack(err)
}
