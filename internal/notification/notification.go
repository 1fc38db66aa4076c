package notification

import (
	"time"

	"github.com/frahmantamala/sensor-monitoring/internal/access"
	notificationDatamodel "github.com/frahmantamala/sensor-monitoring/internal/core/datamodel/notification"
)

type Type string

const (
	TypeAccessRequest Type = "access_request"
	TypeDirectMessage Type = "direct_message"
	TypeSystemAlert   Type = "system_alert"
)

type Status string

const (
	StatusPending      Status = "pending"
	StatusApproved     Status = "approved"
	StatusRejected     Status = "rejected"
	StatusAcknowledged Status = "acknowledged"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected, StatusAcknowledged:
		return true
	}
	return false
}

// Terminal reports whether the status ends the notification's lifecycle.
func (s Status) Terminal() bool {
	return s == StatusApproved || s == StatusRejected || s == StatusAcknowledged
}

// Party identifies one side of a notification, either a named user or every
// holder of a role.
type Party struct {
	UserID   *int64 `json:"userId,omitempty"`
	Username string `json:"username,omitempty"`
	Role     string `json:"role,omitempty"`
}

type SensorRef struct {
	SensorID  string `json:"sensorId"`
	NetworkID string `json:"networkId"`
}

type Notification struct {
	ID        string     `json:"id"`
	Type      Type       `json:"type"`
	Sender    *Party     `json:"sender,omitempty"`
	Recipient Party      `json:"recipient"`
	Sensor    *SensorRef `json:"sensor,omitempty"`
	Company   string     `json:"company,omitempty"`
	Message   string     `json:"message"`
	Status    Status     `json:"status"`
	Read      bool       `json:"read"`
	Timestamp time.Time  `json:"timestamp"`
}

func (n *Notification) IsAccessRequest() bool {
	return n.Type == TypeAccessRequest
}

func (n *Notification) IsPending() bool {
	return n.Status == StatusPending
}

// AddressedTo reports whether the notification targets the actor, by exact
// username or by role broadcast.
func (n *Notification) AddressedTo(actor access.Actor) bool {
	if n.Recipient.Username != "" && n.Recipient.Username == actor.Username {
		return true
	}
	return n.Recipient.Role != "" && n.Recipient.Role == actor.Role.String()
}

// CanTransitionTo encodes the status state machine: access requests move only
// pending -> approved/rejected, everything else only forward to acknowledged.
// A status never regresses and a self-transition is not a transition.
func (n *Notification) CanTransitionTo(next Status) bool {
	if !next.Valid() || next == n.Status {
		return false
	}
	if n.IsAccessRequest() {
		return n.Status == StatusPending && (next == StatusApproved || next == StatusRejected)
	}
	return next == StatusAcknowledged
}

// Apply mirrors a confirmed gateway decision onto the record. It also flips
// read: acting on a notification implies having seen it.
func (n *Notification) Apply(next Status) {
	n.Status = next
	n.Read = true
}

func ToDataModel(n *Notification) *notificationDatamodel.Notification {
	dm := &notificationDatamodel.Notification{
		ID:                n.ID,
		Type:              string(n.Type),
		RecipientUsername: n.Recipient.Username,
		RecipientRole:     n.Recipient.Role,
		Company:           n.Company,
		Message:           n.Message,
		Status:            string(n.Status),
		Read:              n.Read,
		Timestamp:         n.Timestamp,
	}
	if n.Sender != nil {
		dm.SenderUserID = n.Sender.UserID
		dm.SenderUsername = n.Sender.Username
		dm.SenderRole = n.Sender.Role
	}
	if n.Sensor != nil {
		dm.SensorID = n.Sensor.SensorID
		dm.NetworkID = n.Sensor.NetworkID
	}
	return dm
}

func FromDataModel(dm *notificationDatamodel.Notification) *Notification {
	n := &Notification{
		ID:   dm.ID,
		Type: Type(dm.Type),
		Recipient: Party{
			Username: dm.RecipientUsername,
			Role:     dm.RecipientRole,
		},
		Company:   dm.Company,
		Message:   dm.Message,
		Status:    Status(dm.Status),
		Read:      dm.Read,
		Timestamp: dm.Timestamp,
	}
	if dm.SenderUsername != "" || dm.SenderRole != "" || dm.SenderUserID != nil {
		n.Sender = &Party{
			UserID:   dm.SenderUserID,
			Username: dm.SenderUsername,
			Role:     dm.SenderRole,
		}
	}
	if dm.SensorID != "" {
		n.Sensor = &SensorRef{
			SensorID:  dm.SensorID,
			NetworkID: dm.NetworkID,
		}
	}
	return n
}

func FromDataModelSlice(dms []*notificationDatamodel.Notification) []*Notification {
	result := make([]*Notification, len(dms))
	for i, dm := range dms {
		result[i] = FromDataModel(dm)
	}
	return result
}
