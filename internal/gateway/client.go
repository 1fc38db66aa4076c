package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/frahmantamala/sensor-monitoring/internal"
	"github.com/frahmantamala/sensor-monitoring/internal/access"
	"github.com/frahmantamala/sensor-monitoring/internal/accessrequest"
	"github.com/frahmantamala/sensor-monitoring/internal/notification"
	"github.com/frahmantamala/sensor-monitoring/internal/report"
	"github.com/frahmantamala/sensor-monitoring/internal/sensor"
	"github.com/frahmantamala/sensor-monitoring/internal/user"
)

// Client talks to the REST backend the dashboard treats as the system of
// record. Identity travels as plain username/role parameters; trust in those
// parameters is the surrounding deployment's problem, not this layer's.
type Client struct {
	baseURL    string
	timeout    time.Duration
	httpClient *http.Client
	logger     *slog.Logger
}

func NewClient(cfg internal.GatewayConfig, logger *slog.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		timeout:    timeout,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// ----------------- AUTH -----------------

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	User *user.User `json:"user"`
}

func (c *Client) Login(ctx context.Context, username, password string) (*user.User, error) {
	var resp loginResponse
	err := c.send(ctx, http.MethodPost, "/login", loginRequest{Username: username, Password: password}, &resp)
	if err != nil {
		if appErr, ok := internal.IsAppError(err); ok && appErr.StatusCode == http.StatusUnauthorized {
			return nil, internal.ErrInvalidCredentials
		}
		return nil, err
	}
	if resp.User == nil {
		return nil, internal.NewExternalError("login response missing user", nil)
	}
	return resp.User, nil
}

// ----------------- NOTIFICATIONS -----------------

func (c *Client) FetchNotifications(ctx context.Context, username, role string) ([]*notification.Notification, error) {
	query := url.Values{}
	query.Set("username", username)
	query.Set("role", role)

	var notifications []*notification.Notification
	if err := c.get(ctx, "/notifications", query, &notifications); err != nil {
		return nil, err
	}
	return notifications, nil
}

func (c *Client) MarkNotificationRead(ctx context.Context, notificationID string) error {
	path := fmt.Sprintf("/notifications/%s/read", url.PathEscape(notificationID))
	return c.send(ctx, http.MethodPut, path, nil, nil)
}

func (c *Client) UpdateNotificationStatus(ctx context.Context, notificationID string, status notification.Status) error {
	path := fmt.Sprintf("/notifications/%s/status", url.PathEscape(notificationID))
	body := map[string]string{"status": string(status)}
	return c.send(ctx, http.MethodPut, path, body, nil)
}

func (c *Client) RequestSensorAccess(ctx context.Context, dto accessrequest.SensorAccessRequestDTO) error {
	return c.send(ctx, http.MethodPost, "/notifications/request-sensor-access", dto, nil)
}

func (c *Client) RequestCompanyAccess(ctx context.Context, dto accessrequest.CompanyAccessRequestDTO) error {
	return c.send(ctx, http.MethodPost, "/notifications/request-access", dto, nil)
}

func (c *Client) RespondAccessRequest(ctx context.Context, dto accessrequest.RespondAccessRequestDTO) error {
	return c.send(ctx, http.MethodPost, "/notifications/respond-access", dto, nil)
}

// ----------------- NETWORKS & SENSORS -----------------

func (c *Client) FetchNetworks(ctx context.Context, company string) ([]*sensor.Network, error) {
	query := url.Values{}
	if company != "" {
		query.Set("company", company)
	}

	var networks []*sensor.Network
	if err := c.get(ctx, "/networks", query, &networks); err != nil {
		return nil, err
	}
	return networks, nil
}

func (c *Client) FetchSensors(ctx context.Context, networkID string) ([]*sensor.Sensor, error) {
	path := fmt.Sprintf("/networks/%s/sensors", url.PathEscape(networkID))

	var sensors []*sensor.Sensor
	if err := c.get(ctx, path, nil, &sensors); err != nil {
		return nil, err
	}
	return sensors, nil
}

func (c *Client) FetchSensorData(ctx context.Context, networkID, sensorID string) ([]sensor.DataRow, error) {
	path := fmt.Sprintf("/networks/%s/sensors/%s/data", url.PathEscape(networkID), url.PathEscape(sensorID))

	var rows []sensor.DataRow
	if err := c.get(ctx, path, nil, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// ----------------- REPORTS -----------------

func (c *Client) FetchReports(ctx context.Context, username string) ([]*report.Report, error) {
	query := url.Values{}
	if username != "" {
		query.Set("username", username)
	}

	var reports []*report.Report
	if err := c.get(ctx, "/reports", query, &reports); err != nil {
		return nil, err
	}
	return reports, nil
}

func (c *Client) CreateReport(ctx context.Context, dto report.CreateReportDTO) error {
	return c.send(ctx, http.MethodPost, "/reports", dto, nil)
}

// ----------------- USERS -----------------

func (c *Client) FetchUsers(ctx context.Context, company string) ([]*user.User, error) {
	query := url.Values{}
	if company != "" {
		query.Set("company", company)
	}

	var users []*user.User
	if err := c.get(ctx, "/users", query, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (c *Client) UpdateUserRole(ctx context.Context, username string, role access.Role) error {
	path := fmt.Sprintf("/users/%s", url.PathEscape(username))
	body := map[string]string{"role": role.String()}
	return c.send(ctx, http.MethodPut, path, body, nil)
}

func (c *Client) DeleteUser(ctx context.Context, username string) error {
	path := fmt.Sprintf("/users/%s", url.PathEscape(username))
	body := map[string]string{"action": "delete"}
	return c.send(ctx, http.MethodPut, path, body, nil)
}

// ----------------- TRANSPORT -----------------

func (c *Client) get(ctx context.Context, path string, query url.Values, out interface{}) error {
	fullURL := c.baseURL + path
	if len(query) > 0 {
		fullURL += "?" + query.Encode()
	}

	reqCtx, cancel := internal.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, fullURL, nil)
	if err != nil {
		return internal.NewLoadError("failed to create request", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("gateway request failed",
			"method", http.MethodGet,
			"url", fullURL,
			"username", internal.UsernameFromContext(ctx),
			"error", err)
		return internal.NewLoadError("gateway unreachable", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return c.errorFromResponse(http.MethodGet, fullURL, resp)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return internal.NewLoadError("failed to decode gateway response", err)
		}
	}
	return nil
}

func (c *Client) send(ctx context.Context, method, path string, body, out interface{}) error {
	fullURL := c.baseURL + path

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return internal.NewExternalError("failed to marshal request body", err)
		}
		reader = bytes.NewBuffer(payload)
	}

	reqCtx, cancel := internal.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, method, fullURL, reader)
	if err != nil {
		return internal.NewExternalError("failed to create request", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("gateway request failed",
			"method", method,
			"url", fullURL,
			"username", internal.UsernameFromContext(ctx),
			"error", err)
		return internal.NewExternalError("gateway unreachable", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return c.errorFromResponse(method, fullURL, resp)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return internal.NewExternalError("failed to decode gateway response", err)
		}
	}
	return nil
}

// errorFromResponse maps a non-2xx gateway answer onto the error taxonomy.
// The body's error message is surfaced when it parses; otherwise the status
// line has to do.
func (c *Client) errorFromResponse(method, fullURL string, resp *http.Response) error {
	message := fmt.Sprintf("gateway returned status %d", resp.StatusCode)

	var envelope struct {
		Error *struct {
			Message string `json:"message"`
		} `json:"error"`
		Message string `json:"message"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err == nil {
		if envelope.Error != nil && envelope.Error.Message != "" {
			message = envelope.Error.Message
		} else if envelope.Message != "" {
			message = envelope.Message
		}
	}

	c.logger.Warn("gateway rejected request",
		"method", method,
		"url", fullURL,
		"status_code", resp.StatusCode,
		"message", message)

	switch resp.StatusCode {
	case http.StatusUnauthorized:
		return internal.NewUnauthorizedError(message, internal.ErrCodeNotAuthenticated)
	case http.StatusForbidden:
		return internal.NewForbiddenError(message, internal.ErrCodeAdminRequired)
	case http.StatusNotFound:
		return internal.NewNotFoundError(message, internal.ErrCodeResourceNotFound)
	default:
		if method == http.MethodGet {
			return internal.NewLoadError(message, nil)
		}
		return internal.NewExternalError(message, nil)
	}
}
