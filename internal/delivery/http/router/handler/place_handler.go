package handler

import (
	"log/slog"
	"net/http"

	"kaimono/internal/delivery/http/response"
	domainerrors "kaimono/internal/domain/errors"
	"kaimono/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// PlaceHandlerParams holds dependencies for PlaceHandler, injected by Fx.
type PlaceHandlerParams struct {
	fx.In

	PlaceUC usecase.PlaceUsecase
	Logger  *slog.Logger
}

// PlaceHandler holds dependencies for place-related handlers
type PlaceHandler struct {
	placeUC usecase.PlaceUsecase
	logger  *slog.Logger
}

// NewPlaceHandler is the constructor for PlaceHandler
func NewPlaceHandler(params PlaceHandlerParams) *PlaceHandler {
	return &PlaceHandler{
		placeUC: params.PlaceUC,
		logger:  params.Logger,
	}
}

// RegisterPlaceRequest represents the request body for registering a place.
// Coordinates arrive as fixed-point E6 integers, the same unit they are
// stored and compared in.
type RegisterPlaceRequest struct {
	Name        string `json:"name" validate:"required,max=255"`
	LatitudeE6  int64  `json:"latitude_e6" validate:"min=-90000000,max=90000000"`
	LongitudeE6 int64  `json:"longitude_e6" validate:"min=-180000000,max=180000000"`
	Note        string `json:"note"`
}

// ValidatePlaceRequest represents the request body for the pre-registration check
type ValidatePlaceRequest struct {
	LatitudeE6  int64 `json:"latitude_e6" validate:"min=-90000000,max=90000000"`
	LongitudeE6 int64 `json:"longitude_e6" validate:"min=-180000000,max=180000000"`
}

// SetWatchRequest represents the request body for the watch toggle
type SetWatchRequest struct {
	Watch *bool `json:"watch" validate:"required"`
}

// RegisterPlace handles registering a new place
func (h *PlaceHandler) RegisterPlace(c echo.Context) error {
	var req RegisterPlaceRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid place input")
	}

	if err := c.Validate(&req); err != nil {
		return h.handleAppError(c, err)
	}

	place, err := h.placeUC.RegisterPlace(c.Request().Context(), usecase.RegisterPlaceInput{
		Name:        req.Name,
		LatitudeE6:  req.LatitudeE6,
		LongitudeE6: req.LongitudeE6,
		Note:        req.Note,
	})
	if err != nil {
		return h.handleAppError(c, err)
	}

	return response.Success(c, http.StatusCreated, place, "Place registered successfully")
}

// ValidatePlace handles the pre-registration check without inserting
func (h *PlaceHandler) ValidatePlace(c echo.Context) error {
	var req ValidatePlaceRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid place input")
	}

	if err := c.Validate(&req); err != nil {
		return h.handleAppError(c, err)
	}

	if err := h.placeUC.ValidateRegistration(c.Request().Context(), req.LatitudeE6, req.LongitudeE6); err != nil {
		return h.handleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, map[string]bool{"valid": true}, "Place can be registered")
}

// ListPlaces handles retrieving all registered places
func (h *PlaceHandler) ListPlaces(c echo.Context) error {
	places, err := h.placeUC.ListPlaces(c.Request().Context())
	if err != nil {
		return h.handleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, places, "Places retrieved successfully")
}

// SetWatch handles toggling whether a place may be geofenced
func (h *PlaceHandler) SetWatch(c echo.Context) error {
	placeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return response.BadRequest(c, "INVALID_ID", "Invalid place ID")
	}

	var req SetWatchRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid watch input")
	}

	if err := c.Validate(&req); err != nil {
		return h.handleAppError(c, err)
	}

	if err := h.placeUC.SetWatch(c.Request().Context(), placeID, *req.Watch); err != nil {
		return h.handleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, map[string]bool{"watch": *req.Watch}, "Watch flag updated successfully")
}

// DeletePlace handles removing a place and its dependent rows
func (h *PlaceHandler) DeletePlace(c echo.Context) error {
	placeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return response.BadRequest(c, "INVALID_ID", "Invalid place ID")
	}

	if err := h.placeUC.DeletePlace(c.Request().Context(), placeID); err != nil {
		return h.handleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, map[string]string{"message": "Place deleted successfully"}, "Place deleted successfully")
}

// handleAppError handles application errors
func (h *PlaceHandler) handleAppError(c echo.Context, err error) error {
	var appErr domainerrors.AppError
	if errors.As(err, &appErr) {
		return response.Error(c, appErr.HTTPCode(), appErr.ErrorCode(), appErr.Message(), appErr.Details())
	}

	return errors.WithStack(err)
}

// HealthCheck is a simple handler to check if the service is up.
func HealthCheck(c echo.Context) error {
	return response.Success(c, http.StatusOK, map[string]string{"status": "ok"}, "Service is healthy")
}
