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

// ItemHandlerParams holds dependencies for ItemHandler, injected by Fx.
type ItemHandlerParams struct {
	fx.In

	ItemUC usecase.ItemUsecase
	Logger *slog.Logger
}

// ItemHandler holds dependencies for shopping-item handlers
type ItemHandler struct {
	itemUC usecase.ItemUsecase
	logger *slog.Logger
}

// NewItemHandler is the constructor for ItemHandler
func NewItemHandler(params ItemHandlerParams) *ItemHandler {
	return &ItemHandler{
		itemUC: params.ItemUC,
		logger: params.Logger,
	}
}

// CreateItemRequest represents the request body for creating an item
type CreateItemRequest struct {
	Title string `json:"title" validate:"required,max=255"`
	Note  string `json:"note"`
}

// SetPurchasedRequest represents the request body for the purchased toggle
type SetPurchasedRequest struct {
	Purchased *bool `json:"purchased" validate:"required"`
}

// UpdateNoteRequest represents the request body for replacing an item's note
type UpdateNoteRequest struct {
	Note string `json:"note"`
}

// CreateItem handles creating a new shopping item
func (h *ItemHandler) CreateItem(c echo.Context) error {
	var req CreateItemRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid item input")
	}

	if err := c.Validate(&req); err != nil {
		return h.handleAppError(c, err)
	}

	item, err := h.itemUC.CreateItem(c.Request().Context(), usecase.CreateItemInput{
		Title: req.Title,
		Note:  req.Note,
	})
	if err != nil {
		return h.handleAppError(c, err)
	}

	return response.Success(c, http.StatusCreated, item, "Item created successfully")
}

// ListItems handles retrieving all items
func (h *ItemHandler) ListItems(c echo.Context) error {
	items, err := h.itemUC.ListItems(c.Request().Context())
	if err != nil {
		return h.handleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, items, "Items retrieved successfully")
}

// SetPurchased handles marking an item bought or unbought
func (h *ItemHandler) SetPurchased(c echo.Context) error {
	itemID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return response.BadRequest(c, "INVALID_ID", "Invalid item ID")
	}

	var req SetPurchasedRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid purchased input")
	}

	if err := c.Validate(&req); err != nil {
		return h.handleAppError(c, err)
	}

	if err := h.itemUC.SetPurchased(c.Request().Context(), itemID, *req.Purchased); err != nil {
		return h.handleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, map[string]bool{"purchased": *req.Purchased}, "Purchased flag updated successfully")
}

// UpdateNote handles replacing an item's note
func (h *ItemHandler) UpdateNote(c echo.Context) error {
	itemID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return response.BadRequest(c, "INVALID_ID", "Invalid item ID")
	}

	var req UpdateNoteRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid note input")
	}

	if err := h.itemUC.UpdateNote(c.Request().Context(), itemID, req.Note); err != nil {
		return h.handleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, map[string]string{"note": req.Note}, "Note updated successfully")
}

// DeleteItem handles removing an item and its place links
func (h *ItemHandler) DeleteItem(c echo.Context) error {
	itemID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return response.BadRequest(c, "INVALID_ID", "Invalid item ID")
	}

	if err := h.itemUC.DeleteItem(c.Request().Context(), itemID); err != nil {
		return h.handleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, map[string]string{"message": "Item deleted successfully"}, "Item deleted successfully")
}

// LinkToPlace handles associating an item with a place
func (h *ItemHandler) LinkToPlace(c echo.Context) error {
	itemID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return response.BadRequest(c, "INVALID_ID", "Invalid item ID")
	}

	placeID, err := uuid.Parse(c.Param("placeId"))
	if err != nil {
		return response.BadRequest(c, "INVALID_ID", "Invalid place ID")
	}

	if err := h.itemUC.LinkToPlace(c.Request().Context(), itemID, placeID); err != nil {
		return h.handleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, map[string]string{"message": "Item linked successfully"}, "Item linked successfully")
}

// UnlinkFromPlace handles removing an item-place association
func (h *ItemHandler) UnlinkFromPlace(c echo.Context) error {
	itemID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return response.BadRequest(c, "INVALID_ID", "Invalid item ID")
	}

	placeID, err := uuid.Parse(c.Param("placeId"))
	if err != nil {
		return response.BadRequest(c, "INVALID_ID", "Invalid place ID")
	}

	if err := h.itemUC.UnlinkFromPlace(c.Request().Context(), itemID, placeID); err != nil {
		return h.handleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, map[string]string{"message": "Item unlinked successfully"}, "Item unlinked successfully")
}

// handleAppError handles application errors
func (h *ItemHandler) handleAppError(c echo.Context, err error) error {
	var appErr domainerrors.AppError
	if errors.As(err, &appErr) {
		return response.Error(c, appErr.HTTPCode(), appErr.ErrorCode(), appErr.Message(), appErr.Details())
	}

	return errors.WithStack(err)
}
