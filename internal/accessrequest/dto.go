package accessrequest

import "errors"

// SensorAccessRequestDTO asks the company's admins for access to one sensor.
type SensorAccessRequestDTO struct {
	RequesterUsername string `json:"requesterUsername"`
	SensorID          string `json:"sensorId"`
	NetworkID         string `json:"networkId"`
	Company           string `json:"company"`
}

// Validate validates the SensorAccessRequestDTO
func (dto SensorAccessRequestDTO) Validate() error {
	if dto.RequesterUsername == "" {
		return errors.New("requester username is required")
	}
	if dto.SensorID == "" {
		return errors.New("sensor id is required")
	}
	if dto.NetworkID == "" {
		return errors.New("network id is required")
	}
	if dto.Company == "" {
		return errors.New("company is required")
	}
	return nil
}

// CompanyAccessRequestDTO asks a named admin to take the requester into a
// company.
type CompanyAccessRequestDTO struct {
	RequesterUsername string `json:"requesterUsername"`
	Company           string `json:"company"`
	AdminUsername     string `json:"adminUsername"`
}

// Validate validates the CompanyAccessRequestDTO
func (dto CompanyAccessRequestDTO) Validate() error {
	if dto.RequesterUsername == "" {
		return errors.New("requester username is required")
	}
	if dto.Company == "" {
		return errors.New("company is required")
	}
	if dto.AdminUsername == "" {
		return errors.New("admin username is required")
	}
	return nil
}

// RespondAccessRequestDTO carries an admin's decision on a pending request.
// ResponderUsername lets the backend re-check the responder's role on its
// side.
type RespondAccessRequestDTO struct {
	NotificationID    string `json:"notificationId"`
	Response          string `json:"response"`
	ResponderUsername string `json:"responderUsername,omitempty"`
}

// Validate validates the RespondAccessRequestDTO
func (dto RespondAccessRequestDTO) Validate() error {
	if dto.NotificationID == "" {
		return errors.New("notification id is required")
	}
	if dto.Response != "approved" && dto.Response != "rejected" {
		return errors.New("response must be either 'approved' or 'rejected'")
	}
	return nil
}
