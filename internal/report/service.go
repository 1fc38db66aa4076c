package report

import (
	"context"
	"log/slog"
	"sync"

	"github.com/frahmantamala/sensor-monitoring/internal"
)

type GatewayAPI interface {
	FetchReports(ctx context.Context, username string) ([]*Report, error)
	CreateReport(ctx context.Context, dto CreateReportDTO) error
}

// Service tracks the session's report history. Creating a report record is
// followed by a full list refresh, matching the dashboard behavior of showing
// the new entry immediately.
type Service struct {
	gateway GatewayAPI
	logger  *slog.Logger

	mu      sync.RWMutex
	reports []*Report
}

func NewService(gateway GatewayAPI, logger *slog.Logger) *Service {
	return &Service{
		gateway: gateway,
		logger:  logger,
	}
}

func (s *Service) Load(ctx context.Context, username string) ([]*Report, error) {
	reports, err := s.gateway.FetchReports(ctx, username)
	if err != nil {
		s.logger.Error("failed to load reports", "error", err, "username", username)
		return nil, err
	}

	s.mu.Lock()
	s.reports = reports
	s.mu.Unlock()

	return reports, nil
}

// Create validates locally, records the report through the gateway and then
// reloads the list. Validation failures never reach the network.
func (s *Service) Create(ctx context.Context, dto CreateReportDTO) ([]*Report, error) {
	if err := dto.Validate(); err != nil {
		s.logger.Error("report validation failed", "error", err, "username", dto.Username)
		return nil, internal.NewValidationError(err.Error(), internal.ErrCodeInvalidReportType).WithCause(err)
	}

	if err := s.gateway.CreateReport(ctx, dto); err != nil {
		s.logger.Error("failed to create report", "error", err, "username", dto.Username, "sensor_id", dto.SensorID)
		return nil, err
	}

	s.logger.Info("report recorded",
		"username", dto.Username,
		"sensor_id", dto.SensorID,
		"report_type", dto.ReportType)

	return s.Load(ctx, dto.Username)
}

func (s *Service) Reports() []*Report {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*Report, len(s.reports))
	copy(result, s.reports)
	return result
}
