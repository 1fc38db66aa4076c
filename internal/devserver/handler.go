package devserver

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/frahmantamala/sensor-monitoring/internal"
	"github.com/frahmantamala/sensor-monitoring/internal/access"
	"github.com/frahmantamala/sensor-monitoring/internal/accessrequest"
	reportDatamodel "github.com/frahmantamala/sensor-monitoring/internal/core/datamodel/report"
	"github.com/frahmantamala/sensor-monitoring/internal/notification"
	"github.com/frahmantamala/sensor-monitoring/internal/report"
	"github.com/frahmantamala/sensor-monitoring/internal/sensor"
	"github.com/frahmantamala/sensor-monitoring/internal/transport"
	"github.com/frahmantamala/sensor-monitoring/internal/user"
)

// Handler implements the development gateway's REST surface. It is the same
// contract the dashboard client speaks against the production backend, backed
// by a local database instead.
type Handler struct {
	*transport.BaseHandler
	store    *Store
	readings *ReadingStore
}

func NewHandler(store *Store, readings *ReadingStore, logger *slog.Logger) *Handler {
	return &Handler{
		BaseHandler: transport.NewBaseHandler(logger),
		store:       store,
		readings:    readings,
	}
}

// ----------------- AUTH -----------------

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	dm, err := h.store.UserByUsername(req.Username)
	if err != nil {
		// Same answer for unknown user and wrong password.
		h.WriteError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(dm.PasswordHash), []byte(req.Password)); err != nil {
		h.WriteError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"user": user.FromDataModel(dm),
	})
}

// ----------------- NOTIFICATIONS -----------------

func (h *Handler) ListNotifications(w http.ResponseWriter, r *http.Request) {
	username := r.URL.Query().Get("username")
	role := r.URL.Query().Get("role")
	if username == "" {
		h.WriteError(w, http.StatusBadRequest, "username query parameter is required")
		return
	}

	dms, err := h.store.ListNotifications(username, role)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, notification.FromDataModelSlice(dms))
}

func (h *Handler) MarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "notificationID")
	if err := h.store.MarkNotificationRead(id); err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) UpdateNotificationStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "notificationID")

	var req struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	dm, err := h.store.NotificationByID(id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	// The backend enforces the same state machine the client checks, so a
	// stale or hand-crafted client cannot regress a status.
	next := notification.Status(req.Status)
	if !notification.FromDataModel(dm).CanTransitionTo(next) {
		h.HandleServiceError(w, internal.ErrInvalidTransition)
		return
	}

	if err := h.store.UpdateNotificationStatus(id, req.Status); err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) RequestCompanyAccess(w http.ResponseWriter, r *http.Request) {
	var dto accessrequest.CompanyAccessRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := dto.Validate(); err != nil {
		h.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	requester, err := h.store.UserByUsername(dto.RequesterUsername)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	request := &notification.Notification{
		ID:        uuid.New().String(),
		Type:      notification.TypeAccessRequest,
		Sender:    &notification.Party{UserID: &requester.ID, Username: requester.Username, Role: requester.Role},
		Recipient: notification.Party{Username: dto.AdminUsername},
		Company:   dto.Company,
		Message:   fmt.Sprintf("%s requests access to company %s", dto.RequesterUsername, dto.Company),
		Status:    notification.StatusPending,
		Timestamp: time.Now(),
	}
	if err := h.store.CreateNotification(notification.ToDataModel(request)); err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, request)
}

func (h *Handler) RequestSensorAccess(w http.ResponseWriter, r *http.Request) {
	var dto accessrequest.SensorAccessRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := dto.Validate(); err != nil {
		h.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	requester, err := h.store.UserByUsername(dto.RequesterUsername)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	if _, err := h.store.SensorByID(dto.NetworkID, dto.SensorID); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	// Addressed to the admin role: every admin of the company sees it.
	request := &notification.Notification{
		ID:        uuid.New().String(),
		Type:      notification.TypeAccessRequest,
		Sender:    &notification.Party{UserID: &requester.ID, Username: requester.Username, Role: requester.Role},
		Recipient: notification.Party{Role: access.RoleAdmin.String()},
		Sensor:    &notification.SensorRef{SensorID: dto.SensorID, NetworkID: dto.NetworkID},
		Company:   dto.Company,
		Message:   fmt.Sprintf("%s requests access to sensor %s", dto.RequesterUsername, dto.SensorID),
		Status:    notification.StatusPending,
		Timestamp: time.Now(),
	}
	if err := h.store.CreateNotification(notification.ToDataModel(request)); err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, request)
}

// RespondAccessRequest resolves a pending access request and applies what the
// decision means: approval of a sensor request puts the requester on the
// sensor allow-list, approval of a company request assigns the company. The
// responder's role is re-checked here regardless of what the client already
// validated.
func (h *Handler) RespondAccessRequest(w http.ResponseWriter, r *http.Request) {
	var dto accessrequest.RespondAccessRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := dto.Validate(); err != nil {
		h.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	if dto.ResponderUsername != "" {
		responder, err := h.store.UserByUsername(dto.ResponderUsername)
		if err != nil {
			h.HandleServiceError(w, err)
			return
		}
		if responder.Role != access.RoleAdmin.String() {
			h.HandleServiceError(w, internal.ErrAdminRequired)
			return
		}
	}

	dm, err := h.store.NotificationByID(dto.NotificationID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	record := notification.FromDataModel(dm)
	decision := notification.Status(dto.Response)
	if !record.IsAccessRequest() || !record.CanTransitionTo(decision) {
		h.HandleServiceError(w, internal.ErrInvalidTransition)
		return
	}

	if decision == notification.StatusApproved {
		if record.Sensor != nil {
			err = h.store.GrantSensorAccess(record.Sensor.NetworkID, record.Sensor.SensorID, dm.SenderUsername)
		} else if dm.Company != "" {
			err = h.store.SetUserCompany(dm.SenderUsername, dm.Company)
		}
		if err != nil {
			h.HandleServiceError(w, err)
			return
		}
	}

	if err := h.store.UpdateNotificationStatus(dm.ID, dto.Response); err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ----------------- NETWORKS & SENSORS -----------------

func (h *Handler) ListNetworks(w http.ResponseWriter, r *http.Request) {
	dms, err := h.store.ListNetworks(r.URL.Query().Get("company"))
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	networks := make([]*sensor.Network, len(dms))
	for i, dm := range dms {
		networks[i] = sensor.NetworkFromDataModel(dm)
	}
	h.WriteJSON(w, http.StatusOK, networks)
}

func (h *Handler) ListSensors(w http.ResponseWriter, r *http.Request) {
	networkID := chi.URLParam(r, "networkID")
	if _, err := h.store.NetworkByID(networkID); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	dms, err := h.store.ListSensors(networkID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	sensors := make([]*sensor.Sensor, len(dms))
	for i, dm := range dms {
		sensors[i] = sensor.FromDataModel(dm)
	}
	h.WriteJSON(w, http.StatusOK, sensors)
}

func (h *Handler) SensorData(w http.ResponseWriter, r *http.Request) {
	networkID := chi.URLParam(r, "networkID")
	sensorID := chi.URLParam(r, "sensorID")

	if _, err := h.store.SensorByID(networkID, sensorID); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	rows, err := h.readings.Rows(networkID, sensorID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, rows)
}

// ----------------- REPORTS -----------------

func (h *Handler) ListReports(w http.ResponseWriter, r *http.Request) {
	dms, err := h.store.ListReports(r.URL.Query().Get("username"))
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, report.FromDataModelSlice(dms))
}

func (h *Handler) CreateReport(w http.ResponseWriter, r *http.Request) {
	var dto report.CreateReportDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := dto.Validate(); err != nil {
		h.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	dm := &reportDatamodel.Report{
		ID:         uuid.New().String(),
		Username:   dto.Username,
		SensorID:   dto.SensorID,
		ReportType: dto.ReportType,
		CreatedAt:  time.Now(),
	}
	if err := h.store.CreateReport(dm); err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, report.FromDataModel(dm))
}

// ----------------- USERS -----------------

func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	dms, err := h.store.ListUsers(r.URL.Query().Get("company"))
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, user.FromDataModelSlice(dms))
}

// UpdateUser handles both role changes and deletion. The dashboard's user
// admin screen speaks one PUT endpoint for both, distinguished by the body.
func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")

	var req struct {
		Role   string `json:"role"`
		Action string `json:"action"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	switch {
	case req.Action == "delete":
		if err := h.store.DeleteUser(username); err != nil {
			h.HandleServiceError(w, err)
			return
		}
	case req.Role != "":
		role, err := access.ParseRole(req.Role)
		if err != nil {
			h.WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
		if err := h.store.UpdateUserRole(username, role.String()); err != nil {
			h.HandleServiceError(w, err)
			return
		}
	default:
		h.WriteError(w, http.StatusBadRequest, "either role or action is required")
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
