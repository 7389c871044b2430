// Package geofence talks to the device-side geofencing facility over HTTP.
package geofence

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"time"

	"kaimono/config"
	"kaimono/internal/domain/entity"
	"kaimono/internal/domain/service"

	"github.com/pkg/errors"
	"go.uber.org/fx"
)

const defaultGatewayTimeout = 10 * time.Second

// httpGateway implements GeofencingGateway against the facility's JSON API.
type httpGateway struct {
	endpoint   string
	httpClient *http.Client
	logger     *slog.Logger
}

// noopGateway is used when no gateway endpoint is configured. Plans are
// still built and the snapshot still advances, which keeps local
// development working without a device bridge.
type noopGateway struct {
	logger *slog.Logger
}

func (g *noopGateway) AddGeofences(_ context.Context, specs []entity.GeofenceSpec) error {
	g.logger.Debug("[NoopGeofence] add skipped", slog.Int("count", len(specs)))

	return nil
}

func (g *noopGateway) RemoveGeofences(_ context.Context, requestIDs []string) error {
	g.logger.Debug("[NoopGeofence] remove skipped", slog.Int("count", len(requestIDs)))

	return nil
}

// GatewayParams holds dependencies for the geofencing gateway, injected by Fx.
type GatewayParams struct {
	fx.In

	Config *config.Config
	Logger *slog.Logger
}

// NewGateway creates a GeofencingGateway based on configuration
func NewGateway(params GatewayParams) service.GeofencingGateway {
	cfg := params.Config.Geofence
	if cfg == nil || cfg.GatewayEndpoint == "" {
		params.Logger.Info("Geofence gateway not configured, using no-op gateway")

		return &noopGateway{logger: params.Logger}
	}

	timeout := cfg.GatewayTimeout
	if timeout <= 0 {
		timeout = defaultGatewayTimeout
	}

	return &httpGateway{
		endpoint: cfg.GatewayEndpoint,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: params.Logger,
	}
}

type addRequest struct {
	Geofences []entity.GeofenceSpec `json:"geofences"`
}

type removeRequest struct {
	RequestIDs []string `json:"request_ids"`
}

// AddGeofences registers all given specs in one request.
func (g *httpGateway) AddGeofences(ctx context.Context, specs []entity.GeofenceSpec) error {
	if len(specs) == 0 {
		return nil
	}

	if err := g.post(ctx, g.endpoint+"/geofences", addRequest{Geofences: specs}); err != nil {
		return errors.Wrap(err, "failed to add geofences")
	}

	g.logger.Debug("geofences added", slog.Int("count", len(specs)))

	return nil
}

// RemoveGeofences unregisters the given request ids. The facility answers
// 404 when none of the ids are known; that still means "not registered",
// which is the state we wanted.
func (g *httpGateway) RemoveGeofences(ctx context.Context, requestIDs []string) error {
	if len(requestIDs) == 0 {
		return nil
	}

	err := g.post(ctx, g.endpoint+"/geofences/remove", removeRequest{RequestIDs: requestIDs})
	if err != nil && !isNotFound(err) {
		return errors.Wrap(err, "failed to remove geofences")
	}

	g.logger.Debug("geofences removed", slog.Int("count", len(requestIDs)))

	return nil
}

func (g *httpGateway) post(ctx context.Context, url string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return errors.WithStack(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return errors.WithStack(err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return errors.WithStack(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))

		return &statusError{status: resp.StatusCode, body: string(snippet)}
	}

	return nil
}

type statusError struct {
	status int
	body   string
}

func (e *statusError) Error() string {
	return "gateway returned status " + http.StatusText(e.status) + ": " + e.body
}

func isNotFound(err error) bool {
	var se *statusError

	return errors.As(err, &se) && se.status == http.StatusNotFound
}
