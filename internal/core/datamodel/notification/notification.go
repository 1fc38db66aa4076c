package notification

import "time"

// Notification is the persisted, flattened shape of a dashboard notification.
// The nested sender/recipient/sensor wire objects are split into columns here
// and reassembled by the domain converters.
type Notification struct {
	ID                string    `json:"id" gorm:"primaryKey"`
	Type              string    `json:"type" gorm:"not null"`
	SenderUserID      *int64    `json:"sender_user_id,omitempty" gorm:"column:sender_user_id"`
	SenderUsername    string    `json:"sender_username" gorm:"column:sender_username"`
	SenderRole        string    `json:"sender_role" gorm:"column:sender_role"`
	RecipientUsername string    `json:"recipient_username" gorm:"column:recipient_username;index"`
	RecipientRole     string    `json:"recipient_role" gorm:"column:recipient_role;index"`
	SensorID          string    `json:"sensor_id" gorm:"column:sensor_id"`
	NetworkID         string    `json:"network_id" gorm:"column:network_id"`
	Company           string    `json:"company" gorm:"column:company"`
	Message           string    `json:"message" gorm:"not null"`
	Status            string    `json:"status" gorm:"not null"`
	Read              bool      `json:"read" gorm:"default:false"`
	Timestamp         time.Time `json:"timestamp" gorm:"column:timestamp"`
	CreatedAt         time.Time `json:"created_at" gorm:"column:created_at"`
	UpdatedAt         time.Time `json:"updated_at" gorm:"column:updated_at"`
}

// TableName returns the table name for GORM
func (Notification) TableName() string {
	return "notifications"
}
