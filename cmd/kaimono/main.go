package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"kaimono/config"
	"kaimono/internal/delivery"
	"kaimono/internal/delivery/http"
	"kaimono/internal/delivery/http/middleware"
	"kaimono/internal/delivery/http/router/handler"
	"kaimono/internal/domain/service"
	"kaimono/internal/infra/geofence"
	logs "kaimono/internal/infra/log"
	"kaimono/internal/infra/notification"
	"kaimono/internal/infra/persistence/postgres"
	"kaimono/internal/infra/pubsub"
	"kaimono/internal/infra/scheduler"
	"kaimono/internal/usecase/impl"

	"go.uber.org/fx"
)

type startServerParams struct {
	fx.In
	fx.Lifecycle

	Deliveries []delivery.Delivery `group:"deliveries"`
}

func main() {
	fx.New(
		injectInfra(),
		injectRepo(),
		injectService(),
		injectUsecase(),
		injectDelivery(),
		injectMiddleware(),
		injectHandler(),
		fx.Invoke(
			startServer,
		),
	).Run()
}

func injectInfra() fx.Option {
	return fx.Provide(
		config.New,
		logs.New,
		context.Background,
		postgres.New,
	)
}

func injectRepo() fx.Option {
	return fx.Options(
		fx.Provide(
			postgres.NewPlaceRepository,
			postgres.NewItemRepository,
			postgres.NewGeofenceRegistrationRepository,
			postgres.NewNotificationStateRepository,
			postgres.NewTransactionManager,
			postgres.NewSyncCoordinatorLock,
		),
	)
}

func injectService() fx.Option {
	return fx.Options(
		pubsub.Module,
		fx.Provide(
			geofence.NewGateway,
			scheduler.New,
			newReminderNotifier,
		),
	)
}

// newReminderNotifier creates the FCM notifier, or a logging stand-in when
// Firebase is not configured
func newReminderNotifier(ctx context.Context, cfg *config.Config, logger *slog.Logger) (service.ReminderNotifier, error) {
	if cfg.Firebase == nil {
		return notification.NewNoopNotifier(logger), nil
	}

	notifier, err := notification.NewFCMNotifier(ctx, cfg.Firebase.CredentialsPath, cfg.Reminder.Topic)
	if err != nil {
		return nil, fmt.Errorf("failed to create FCM notifier: %w", err)
	}

	return notifier, nil
}

func injectUsecase() fx.Option {
	return fx.Options(
		fx.Provide(
			impl.NewGeofenceSyncService,
			impl.NewReminderService,
			impl.NewPlaceService,
			impl.NewItemService,
		),
	)
}

func injectMiddleware() fx.Option {
	return fx.Options(
		fx.Provide(
			middleware.NewErrorMiddleware,
		),
	)
}

func injectHandler() fx.Option {
	return fx.Options(
		fx.Provide(
			handler.NewPlaceHandler,
			handler.NewItemHandler,
			handler.NewNotificationHandler,
			handler.NewGeofenceEventHandler,
		),
	)
}

func injectDelivery() fx.Option {
	return fx.Options(
		fx.Provide(
			fx.Annotate(
				http.NewServer,
				fx.ResultTags(`group:"deliveries"`),
			),
		),
	)
}

func startServer(ctx context.Context, params startServerParams) {
	for _, delivery := range params.Deliveries {
		go func() {
			if err := delivery.Serve(ctx); err != nil {
				slog.Error("Failed to start server", slog.Any("error", err))
				os.Exit(1)
			}
		}()
	}
}
