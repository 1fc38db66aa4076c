package devserver

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/go-chi/chi"

	"github.com/frahmantamala/sensor-monitoring/internal"
	"github.com/frahmantamala/sensor-monitoring/internal/transport/middleware"
	"github.com/frahmantamala/sensor-monitoring/internal/transport/swagger"
)

// NewRouter wires the development gateway's REST surface. Paths mirror the
// production backend: the dashboard client must not be able to tell which one
// it is talking to.
func NewRouter(handler *Handler, cfg internal.ServerConfig, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RecoveryMiddleware(logger))
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.CORS(cfg.AllowedOrigins))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api", func(api chi.Router) {
		api.Post("/login", handler.Login)

		api.Route("/notifications", func(n chi.Router) {
			n.Get("/", handler.ListNotifications)
			n.Put("/{notificationID}/read", handler.MarkNotificationRead)
			n.Put("/{notificationID}/status", handler.UpdateNotificationStatus)
			n.Post("/request-access", handler.RequestCompanyAccess)
			n.Post("/request-sensor-access", handler.RequestSensorAccess)
			n.Post("/respond-access", handler.RespondAccessRequest)
		})

		api.Route("/networks", func(nw chi.Router) {
			nw.Get("/", handler.ListNetworks)
			nw.Get("/{networkID}/sensors", handler.ListSensors)
			nw.Get("/{networkID}/sensors/{sensorID}/data", handler.SensorData)
		})

		api.Route("/reports", func(rep chi.Router) {
			rep.Get("/", handler.ListReports)
			rep.Post("/", handler.CreateReport)
		})

		api.Route("/users", func(u chi.Router) {
			u.Get("/", handler.ListUsers)
			u.Put("/{username}", handler.UpdateUser)
		})
	})

	// API docs for whoever points a browser at the dev gateway.
	r.Mount("/swagger", swagger.Handler())
	r.Get("/openapi.yml", serveOpenAPISpec(cfg.OpenAPIPath, logger))

	return r
}

func serveOpenAPISpec(path string, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		data, err := os.ReadFile(path)
		if err != nil {
			logger.Error("failed to read OpenAPI spec", "path", path, "error", err)
			http.Error(w, "spec not available", http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/yaml")
		_, _ = w.Write(data)
	}
}
