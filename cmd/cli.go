package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/frahmantamala/sensor-monitoring/internal"
	"github.com/frahmantamala/sensor-monitoring/internal/auth"
	"github.com/frahmantamala/sensor-monitoring/internal/core/events"
	"github.com/frahmantamala/sensor-monitoring/internal/credential"
	"github.com/frahmantamala/sensor-monitoring/internal/gateway"
	"github.com/frahmantamala/sensor-monitoring/pkg/logger"
)

// cliDeps bundles what every dashboard CLI command needs: the gateway client,
// the keyring-backed session and the in-process event bus.
type cliDeps struct {
	Config  *internal.Config
	Logger  *slog.Logger
	Gateway *gateway.Client
	Auth    *auth.Service
	Bus     *events.EventBus
}

func newCLIDeps() (*cliDeps, error) {
	cfg, err := loadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger.Init(cfg.Observability.Logging.Level, cfg.Observability.Logging.Format)
	lg := logger.L()

	gw := gateway.NewClient(cfg.Gateway, lg)
	creds := credential.NewKeyring(cfg.Session.KeyringService)
	authService := auth.NewService(gw, creds, lg)

	bus := events.NewEventBus(lg)
	registerActivityTrail(bus, lg)

	return &cliDeps{
		Config:  cfg,
		Logger:  lg,
		Gateway: gw,
		Auth:    authService,
		Bus:     bus,
	}, nil
}

// registerActivityTrail subscribes the session's activity log to the
// notification lifecycle. The desktop shell hangs its badge refresh off the
// same events.
func registerActivityTrail(bus *events.EventBus, lg *slog.Logger) {
	trail := func(_ context.Context, event events.Event) error {
		lg.Info("notification activity", "event_type", event.Type, "data", event.Data)
		return nil
	}
	bus.Subscribe(events.EventTypeNotificationsLoaded, trail)
	bus.Subscribe(events.EventTypeNotificationRead, trail)
	bus.Subscribe(events.EventTypeNotificationStatus, trail)
	bus.Subscribe(events.EventTypeNotificationRemoved, trail)
}
