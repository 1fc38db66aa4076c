package sensor

import (
	"context"
	"log/slog"
	"sync"

	"github.com/frahmantamala/sensor-monitoring/internal"
	"github.com/frahmantamala/sensor-monitoring/internal/access"
)

// GatewayAPI is the slice of the remote gateway the browsing service needs.
type GatewayAPI interface {
	FetchNetworks(ctx context.Context, company string) ([]*Network, error)
	FetchSensors(ctx context.Context, networkID string) ([]*Sensor, error)
	FetchSensorData(ctx context.Context, networkID, sensorID string) ([]DataRow, error)
}

// Service holds the session snapshot of networks and sensors and gates
// sensor detail reads through the access model. Like the notification store
// it is constructed by the shell and injected where needed.
type Service struct {
	gateway GatewayAPI
	logger  *slog.Logger

	mu       sync.RWMutex
	networks []*Network
	sensors  map[string][]*Sensor // keyed by network id
}

func NewService(gateway GatewayAPI, logger *slog.Logger) *Service {
	return &Service{
		gateway: gateway,
		logger:  logger,
		sensors: make(map[string][]*Sensor),
	}
}

// LoadNetworks fetches the networks visible to a company ("" for all) and
// replaces the network snapshot.
func (s *Service) LoadNetworks(ctx context.Context, company string) ([]*Network, error) {
	networks, err := s.gateway.FetchNetworks(ctx, company)
	if err != nil {
		s.logger.Error("failed to load networks", "error", err, "company", company)
		return nil, err
	}

	s.mu.Lock()
	s.networks = networks
	s.mu.Unlock()

	return networks, nil
}

// LoadSensors fetches a network's sensor list and replaces that network's
// snapshot slot.
func (s *Service) LoadSensors(ctx context.Context, networkID string) ([]*Sensor, error) {
	sensors, err := s.gateway.FetchSensors(ctx, networkID)
	if err != nil {
		s.logger.Error("failed to load sensors", "error", err, "network_id", networkID)
		return nil, err
	}

	s.mu.Lock()
	s.sensors[networkID] = sensors
	s.mu.Unlock()

	return sensors, nil
}

// CanAccess applies the access model to a sensor already in the snapshot.
func (s *Service) CanAccess(actor access.Actor, networkID, sensorID string) (bool, error) {
	sensor := s.cachedSensor(networkID, sensorID)
	if sensor == nil {
		return false, internal.ErrSensorNotFound
	}
	return access.CanAccessSensor(actor, sensor.AccessUsers), nil
}

// SensorData fetches the tabular readings for one sensor. The access check
// runs first; a denied actor causes no network call.
func (s *Service) SensorData(ctx context.Context, actor access.Actor, networkID, sensorID string) ([]DataRow, []string, error) {
	allowed, err := s.CanAccess(actor, networkID, sensorID)
	if err != nil {
		return nil, nil, err
	}
	if !allowed {
		s.logger.Warn("sensor data access denied",
			"username", actor.Username,
			"sensor_id", sensorID,
			"network_id", networkID)
		return nil, nil, internal.ErrSensorAccessDenied
	}

	rows, err := s.gateway.FetchSensorData(ctx, networkID, sensorID)
	if err != nil {
		s.logger.Error("failed to load sensor data", "error", err, "sensor_id", sensorID)
		return nil, nil, err
	}

	return rows, Headers(rows), nil
}

// Networks returns the current network snapshot.
func (s *Service) Networks() []*Network {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*Network, len(s.networks))
	copy(result, s.networks)
	return result
}

// Sensors returns the cached sensor list for a network.
func (s *Service) Sensors(networkID string) []*Sensor {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cached := s.sensors[networkID]
	result := make([]*Sensor, len(cached))
	copy(result, cached)
	return result
}

func (s *Service) cachedSensor(networkID, sensorID string) *Sensor {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, sensor := range s.sensors[networkID] {
		if sensor.SensorID == sensorID {
			return sensor
		}
	}
	return nil
}
