package report

import (
	"errors"
	"time"

	reportDatamodel "github.com/frahmantamala/sensor-monitoring/internal/core/datamodel/report"
)

type Report struct {
	ID         string    `json:"id"`
	Username   string    `json:"username"`
	SensorID   string    `json:"sensorId"`
	ReportType string    `json:"reportType"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Report download formats the dashboard offers.
const (
	TypePNG = "png"
	TypePDF = "pdf"
	TypeTXT = "txt"
)

// CreateReportDTO is the payload for recording a report download.
type CreateReportDTO struct {
	Username   string `json:"username"`
	SensorID   string `json:"sensorId"`
	ReportType string `json:"reportType"`
}

// Validate validates the CreateReportDTO
func (dto CreateReportDTO) Validate() error {
	if dto.Username == "" {
		return errors.New("username is required")
	}
	if dto.SensorID == "" {
		return errors.New("sensor id is required")
	}
	switch dto.ReportType {
	case TypePNG, TypePDF, TypeTXT:
		return nil
	default:
		return errors.New("report type must be one of png, pdf, txt")
	}
}

func FromDataModel(dm *reportDatamodel.Report) *Report {
	return &Report{
		ID:         dm.ID,
		Username:   dm.Username,
		SensorID:   dm.SensorID,
		ReportType: dm.ReportType,
		CreatedAt:  dm.CreatedAt,
	}
}

func FromDataModelSlice(dms []*reportDatamodel.Report) []*Report {
	result := make([]*Report, len(dms))
	for i, dm := range dms {
		result[i] = FromDataModel(dm)
	}
	return result
}
