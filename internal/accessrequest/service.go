package accessrequest

import (
	"context"
	"log/slog"

	"github.com/frahmantamala/sensor-monitoring/internal"
	"github.com/frahmantamala/sensor-monitoring/internal/access"
	"github.com/frahmantamala/sensor-monitoring/internal/notification"
)

// GatewayAPI is the slice of the remote gateway the workflow needs.
type GatewayAPI interface {
	RequestSensorAccess(ctx context.Context, dto SensorAccessRequestDTO) error
	RequestCompanyAccess(ctx context.Context, dto CompanyAccessRequestDTO) error
	RespondAccessRequest(ctx context.Context, dto RespondAccessRequestDTO) error
}

// NotificationStore is the slice of the notification store the workflow
// mutates when a request is resolved.
type NotificationStore interface {
	Get(notificationID string) (*notification.Notification, bool)
	Remove(ctx context.Context, notificationID string) error
}

// Service creates and resolves access requests. All operations are
// fire-and-report: no retry, no queueing; a failed call leaves both the local
// store and the backend untouched as far as this client knows.
type Service struct {
	gateway GatewayAPI
	store   NotificationStore
	logger  *slog.Logger
}

func NewService(gateway GatewayAPI, store NotificationStore, logger *slog.Logger) *Service {
	return &Service{
		gateway: gateway,
		store:   store,
		logger:  logger,
	}
}

// RequestSensorAccess emits an access_request notification addressed to the
// company's admin role. The requester is not the recipient, so nothing is
// fabricated into the local notification list.
func (s *Service) RequestSensorAccess(ctx context.Context, requester access.Actor, sensorID, networkID, company string) error {
	dto := SensorAccessRequestDTO{
		RequesterUsername: requester.Username,
		SensorID:          sensorID,
		NetworkID:         networkID,
		Company:           company,
	}
	if err := dto.Validate(); err != nil {
		return internal.NewValidationError(err.Error(), internal.ErrCodeValidationFailed).WithCause(err)
	}

	if err := s.gateway.RequestSensorAccess(ctx, dto); err != nil {
		s.logger.Error("sensor access request failed",
			"error", err,
			"requester", requester.Username,
			"sensor_id", sensorID)
		return err
	}

	s.logger.Info("sensor access requested",
		"requester", requester.Username,
		"sensor_id", sensorID,
		"network_id", networkID,
		"company", company)
	return nil
}

// RequestCompanyAccess emits an access_request notification addressed to a
// named admin.
func (s *Service) RequestCompanyAccess(ctx context.Context, requesterUsername, company, adminUsername string) error {
	dto := CompanyAccessRequestDTO{
		RequesterUsername: requesterUsername,
		Company:           company,
		AdminUsername:     adminUsername,
	}
	if err := dto.Validate(); err != nil {
		return internal.NewValidationError(err.Error(), internal.ErrCodeValidationFailed).WithCause(err)
	}

	if err := s.gateway.RequestCompanyAccess(ctx, dto); err != nil {
		s.logger.Error("company access request failed",
			"error", err,
			"requester", requesterUsername,
			"company", company)
		return err
	}

	s.logger.Info("company access requested",
		"requester", requesterUsername,
		"company", company,
		"admin", adminUsername)
	return nil
}

// RespondToAccessRequest resolves a pending request. The responder must be an
// admin; the backend re-checks the role on its side as well. On confirmed
// success the notification leaves the local list entirely, so a second call
// with the same id reports not-found. On gateway failure the record stays
// pending and visible.
func (s *Service) RespondToAccessRequest(ctx context.Context, responder access.Actor, notificationID string, decision notification.Status) error {
	if responder.Role != access.RoleAdmin {
		s.logger.Warn("respond to access request denied: admin required",
			"username", responder.Username,
			"role", responder.Role)
		return internal.ErrAdminRequired
	}

	dto := RespondAccessRequestDTO{
		NotificationID:    notificationID,
		Response:          string(decision),
		ResponderUsername: responder.Username,
	}
	if err := dto.Validate(); err != nil {
		return internal.NewValidationError(err.Error(), internal.ErrCodeInvalidStatus).WithCause(err)
	}

	pending, ok := s.store.Get(notificationID)
	if !ok {
		return internal.ErrNotificationNotFound
	}
	if !pending.IsAccessRequest() || !pending.CanTransitionTo(decision) {
		s.logger.Warn("rejected access request decision locally",
			"notification_id", notificationID,
			"type", pending.Type,
			"current_status", pending.Status,
			"decision", decision)
		return internal.ErrInvalidTransition
	}

	if err := s.gateway.RespondAccessRequest(ctx, dto); err != nil {
		s.logger.Error("access request decision failed remotely",
			"error", err,
			"notification_id", notificationID,
			"decision", decision)
		return err
	}

	// Resolved requests are removed, not relabeled.
	if err := s.store.Remove(ctx, notificationID); err != nil {
		return err
	}

	s.logger.Info("access request resolved",
		"notification_id", notificationID,
		"decision", decision,
		"responder", responder.Username)
	return nil
}
