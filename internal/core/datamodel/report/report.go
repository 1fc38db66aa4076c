package report

import "time"

type Report struct {
	ID         string    `json:"id" gorm:"primaryKey"`
	Username   string    `json:"username" gorm:"index;not null"`
	SensorID   string    `json:"sensorId" gorm:"column:sensor_id;not null"`
	ReportType string    `json:"reportType" gorm:"column:report_type;not null"`
	CreatedAt  time.Time `json:"createdAt" gorm:"column:created_at"`
}

// TableName returns the table name for GORM
func (Report) TableName() string {
	return "reports"
}
