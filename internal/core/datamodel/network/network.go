package network

import "time"

type Network struct {
	ID        string    `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name" gorm:"not null"`
	Company   string    `json:"company" gorm:"index"`
	Users     []string  `json:"users" gorm:"serializer:json"`
	CreatedAt time.Time `json:"created_at" gorm:"column:created_at"`
	UpdatedAt time.Time `json:"updated_at" gorm:"column:updated_at"`
}

// TableName returns the table name for GORM
func (Network) TableName() string {
	return "networks"
}

// Sensor persists the per-sensor access allow-list alongside the sensor
// metadata the dashboard shows.
type Sensor struct {
	SensorID    string    `json:"sensorId" gorm:"primaryKey;column:sensor_id"`
	NetworkID   string    `json:"networkId" gorm:"column:network_id;index;not null"`
	Location    string    `json:"location"`
	Region      string    `json:"region"`
	IsActive    bool      `json:"isActive" gorm:"column:is_active;default:true"`
	Lat         float64   `json:"lat" gorm:"column:lat"`
	Lng         float64   `json:"lng" gorm:"column:lng"`
	AccessUsers []string  `json:"accessUsers" gorm:"column:access_users;serializer:json"`
	LastUpdated time.Time `json:"lastUpdated" gorm:"column:last_updated"`
}

// TableName returns the table name for GORM
func (Sensor) TableName() string {
	return "sensors"
}

// SensorReading is one time-series row. Payload keeps the measured columns as
// JSON because different sensor models report different fields.
type SensorReading struct {
	ID         int64     `json:"id" gorm:"primaryKey"`
	SensorID   string    `json:"sensor_id" gorm:"column:sensor_id;index;not null"`
	NetworkID  string    `json:"network_id" gorm:"column:network_id;index;not null"`
	RecordedAt time.Time `json:"recorded_at" gorm:"column:recorded_at;index"`
	Payload    string    `json:"payload" gorm:"column:payload;type:text"`
}

// TableName returns the table name for GORM
func (SensorReading) TableName() string {
	return "sensor_readings"
}
