// Package router contains routing and server setup for the HTTP delivery.
package router

import (
	"kaimono/internal/delivery/http/router/handler"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

type RouterParams struct {
	fx.In

	PlaceHandler        *handler.PlaceHandler
	ItemHandler         *handler.ItemHandler
	NotificationHandler *handler.NotificationHandler
	EventHandler        *handler.GeofenceEventHandler
}

// router holds all the handlers that need to be registered.
type router struct {
	placeHandler        *handler.PlaceHandler
	itemHandler         *handler.ItemHandler
	notificationHandler *handler.NotificationHandler
	eventHandler        *handler.GeofenceEventHandler
}

// NewRouter is the constructor for the Router.
// Fx will inject the required handlers here.
func NewRouter(params RouterParams) *router {
	return &router{
		placeHandler:        params.PlaceHandler,
		itemHandler:         params.ItemHandler,
		notificationHandler: params.NotificationHandler,
		eventHandler:        params.EventHandler,
	}
}

// RegisterRoutes sets up all the API routes for the application.
func (r *router) RegisterRoutes(e *echo.Echo) {
	// Health check endpoint
	e.GET("/health", handler.HealthCheck)

	// Place routes
	placeGroup := e.Group("/places")
	{
		placeGroup.POST("", r.placeHandler.RegisterPlace)
		placeGroup.GET("", r.placeHandler.ListPlaces)
		placeGroup.POST("/validate", r.placeHandler.ValidatePlace)
		placeGroup.PATCH("/:id/watch", r.placeHandler.SetWatch)
		placeGroup.DELETE("/:id", r.placeHandler.DeletePlace)
	}

	// Shopping item routes
	itemGroup := e.Group("/items")
	{
		itemGroup.POST("", r.itemHandler.CreateItem)
		itemGroup.GET("", r.itemHandler.ListItems)
		itemGroup.PATCH("/:id/purchased", r.itemHandler.SetPurchased)
		itemGroup.PATCH("/:id/note", r.itemHandler.UpdateNote)
		itemGroup.DELETE("/:id", r.itemHandler.DeleteItem)
		itemGroup.POST("/:id/places/:placeId", r.itemHandler.LinkToPlace)
		itemGroup.DELETE("/:id/places/:placeId", r.itemHandler.UnlinkFromPlace)
	}

	// Reminder state routes
	notificationGroup := e.Group("/notifications")
	{
		notificationGroup.POST("/:placeId/snooze", r.notificationHandler.Snooze)
		notificationGroup.GET("/:placeId/eligibility", r.notificationHandler.Eligibility)
	}

	// Device event intake, forwarded to the worker queue
	e.POST("/events", r.eventHandler.PublishEvent)
}
