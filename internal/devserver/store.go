package devserver

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/frahmantamala/sensor-monitoring/internal"
	networkDatamodel "github.com/frahmantamala/sensor-monitoring/internal/core/datamodel/network"
	notificationDatamodel "github.com/frahmantamala/sensor-monitoring/internal/core/datamodel/notification"
	reportDatamodel "github.com/frahmantamala/sensor-monitoring/internal/core/datamodel/report"
	userDatamodel "github.com/frahmantamala/sensor-monitoring/internal/core/datamodel/user"
)

// Store is the development gateway's persistence layer. It backs the same
// REST surface the dashboard client consumes, so integration work does not
// depend on the production backend being reachable.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// ----------------- USERS -----------------

func (s *Store) UserByUsername(username string) (*userDatamodel.User, error) {
	var u userDatamodel.User
	err := s.db.Where("username = ? AND is_active = ?", username, true).First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrUserNotFound
		}
		return nil, internal.NewInternalError("failed to query user", err)
	}
	return &u, nil
}

func (s *Store) ListUsers(company string) ([]*userDatamodel.User, error) {
	query := s.db.Where("is_active = ?", true)
	if company != "" {
		query = query.Where("company = ?", company)
	}

	var users []*userDatamodel.User
	if err := query.Order("username").Find(&users).Error; err != nil {
		return nil, internal.NewInternalError("failed to list users", err)
	}
	return users, nil
}

func (s *Store) UpdateUserRole(username, role string) error {
	result := s.db.Model(&userDatamodel.User{}).
		Where("username = ? AND is_active = ?", username, true).
		Updates(map[string]interface{}{"role": role, "updated_at": time.Now()})
	if result.Error != nil {
		return internal.NewInternalError("failed to update user role", result.Error)
	}
	if result.RowsAffected == 0 {
		return internal.ErrUserNotFound
	}
	return nil
}

func (s *Store) SetUserCompany(username, company string) error {
	result := s.db.Model(&userDatamodel.User{}).
		Where("username = ? AND is_active = ?", username, true).
		Updates(map[string]interface{}{"company": company, "updated_at": time.Now()})
	if result.Error != nil {
		return internal.NewInternalError("failed to set user company", result.Error)
	}
	if result.RowsAffected == 0 {
		return internal.ErrUserNotFound
	}
	return nil
}

// DeleteUser deactivates the account rather than removing the row, so
// history referencing the username stays resolvable.
func (s *Store) DeleteUser(username string) error {
	result := s.db.Model(&userDatamodel.User{}).
		Where("username = ? AND is_active = ?", username, true).
		Updates(map[string]interface{}{"is_active": false, "updated_at": time.Now()})
	if result.Error != nil {
		return internal.NewInternalError("failed to delete user", result.Error)
	}
	if result.RowsAffected == 0 {
		return internal.ErrUserNotFound
	}
	return nil
}

// ----------------- NETWORKS & SENSORS -----------------

func (s *Store) ListNetworks(company string) ([]*networkDatamodel.Network, error) {
	query := s.db.Order("name")
	if company != "" {
		query = query.Where("company = ?", company)
	}

	var networks []*networkDatamodel.Network
	if err := query.Find(&networks).Error; err != nil {
		return nil, internal.NewInternalError("failed to list networks", err)
	}
	return networks, nil
}

func (s *Store) NetworkByID(networkID string) (*networkDatamodel.Network, error) {
	var n networkDatamodel.Network
	err := s.db.Where("id = ?", networkID).First(&n).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrNetworkNotFound
		}
		return nil, internal.NewInternalError("failed to query network", err)
	}
	return &n, nil
}

func (s *Store) ListSensors(networkID string) ([]*networkDatamodel.Sensor, error) {
	var sensors []*networkDatamodel.Sensor
	err := s.db.Where("network_id = ?", networkID).Order("sensor_id").Find(&sensors).Error
	if err != nil {
		return nil, internal.NewInternalError("failed to list sensors", err)
	}
	return sensors, nil
}

func (s *Store) SensorByID(networkID, sensorID string) (*networkDatamodel.Sensor, error) {
	var sn networkDatamodel.Sensor
	err := s.db.Where("network_id = ? AND sensor_id = ?", networkID, sensorID).First(&sn).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrSensorNotFound
		}
		return nil, internal.NewInternalError("failed to query sensor", err)
	}
	return &sn, nil
}

// GrantSensorAccess appends the username to the sensor allow-list. Granting
// twice is a no-op.
func (s *Store) GrantSensorAccess(networkID, sensorID, username string) error {
	sn, err := s.SensorByID(networkID, sensorID)
	if err != nil {
		return err
	}

	for _, existing := range sn.AccessUsers {
		if existing == username {
			return nil
		}
	}
	sn.AccessUsers = append(sn.AccessUsers, username)

	if err := s.db.Model(sn).Update("access_users", sn.AccessUsers).Error; err != nil {
		return internal.NewInternalError("failed to grant sensor access", err)
	}
	return nil
}

// ----------------- NOTIFICATIONS -----------------

// ListNotifications returns notifications addressed to the username OR to the
// role, newest first. That is the recipient model: personal messages name a
// username, role-wide broadcasts name a role.
func (s *Store) ListNotifications(username, role string) ([]*notificationDatamodel.Notification, error) {
	var notifications []*notificationDatamodel.Notification
	err := s.db.
		Where("recipient_username = ? OR (recipient_role <> '' AND recipient_role = ?)", username, role).
		Order("timestamp DESC").
		Find(&notifications).Error
	if err != nil {
		return nil, internal.NewInternalError("failed to list notifications", err)
	}
	return notifications, nil
}

func (s *Store) NotificationByID(id string) (*notificationDatamodel.Notification, error) {
	var n notificationDatamodel.Notification
	err := s.db.Where("id = ?", id).First(&n).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrNotificationNotFound
		}
		return nil, internal.NewInternalError("failed to query notification", err)
	}
	return &n, nil
}

func (s *Store) CreateNotification(n *notificationDatamodel.Notification) error {
	if err := s.db.Create(n).Error; err != nil {
		return internal.NewInternalError("failed to create notification", err)
	}
	return nil
}

// MarkNotificationRead sets read=true. There is deliberately no way to set it
// back to false.
func (s *Store) MarkNotificationRead(id string) error {
	result := s.db.Model(&notificationDatamodel.Notification{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"read": true, "updated_at": time.Now()})
	if result.Error != nil {
		return internal.NewInternalError("failed to mark notification read", result.Error)
	}
	if result.RowsAffected == 0 {
		return internal.ErrNotificationNotFound
	}
	return nil
}

// UpdateNotificationStatus writes the new status and flips read, mirroring
// what a status decision means for the recipient.
func (s *Store) UpdateNotificationStatus(id, status string) error {
	result := s.db.Model(&notificationDatamodel.Notification{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"status": status, "read": true, "updated_at": time.Now()})
	if result.Error != nil {
		return internal.NewInternalError("failed to update notification status", result.Error)
	}
	if result.RowsAffected == 0 {
		return internal.ErrNotificationNotFound
	}
	return nil
}

// ----------------- REPORTS -----------------

func (s *Store) ListReports(username string) ([]*reportDatamodel.Report, error) {
	query := s.db.Order("created_at DESC")
	if username != "" {
		query = query.Where("username = ?", username)
	}

	var reports []*reportDatamodel.Report
	if err := query.Find(&reports).Error; err != nil {
		return nil, internal.NewInternalError("failed to list reports", err)
	}
	return reports, nil
}

func (s *Store) CreateReport(r *reportDatamodel.Report) error {
	if err := s.db.Create(r).Error; err != nil {
		return internal.NewInternalError("failed to create report", err)
	}
	return nil
}

// ----------------- MIGRATION HELPER -----------------

// AutoMigrate creates the schema for environments that do not run the SQL
// migrations, sqlite in-memory tests mostly.
func (s *Store) AutoMigrate() error {
	err := s.db.AutoMigrate(
		&userDatamodel.User{},
		&networkDatamodel.Network{},
		&networkDatamodel.Sensor{},
		&networkDatamodel.SensorReading{},
		&notificationDatamodel.Notification{},
		&reportDatamodel.Report{},
	)
	if err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}
	return nil
}
