package auth

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/frahmantamala/sensor-monitoring/internal"
	"github.com/frahmantamala/sensor-monitoring/internal/access"
	"github.com/frahmantamala/sensor-monitoring/internal/user"
)

// SessionKey is the keyring slot holding the serialized session identity.
const SessionKey = "session"

type GatewayAPI interface {
	Login(ctx context.Context, username, password string) (*user.User, error)
}

// CredentialStore persists the session identity between invocations.
type CredentialStore interface {
	Get(key string) (string, error)
	Set(key, value string) error
	Delete(key string) error
}

// Service owns the login session. Identity here is the plain
// {username, role, company} triple the gateway hands back; there is no token
// at this layer by design.
type Service struct {
	gateway GatewayAPI
	creds   CredentialStore
	logger  *slog.Logger
}

func NewService(gateway GatewayAPI, creds CredentialStore, logger *slog.Logger) *Service {
	return &Service{
		gateway: gateway,
		creds:   creds,
		logger:  logger,
	}
}

// Login authenticates against the gateway and persists the returned identity.
func (s *Service) Login(ctx context.Context, username, password string) (*user.User, error) {
	u, err := s.gateway.Login(ctx, username, password)
	if err != nil {
		s.logger.Error("login failed", "error", err, "username", username)
		return nil, err
	}

	payload, err := json.Marshal(u)
	if err != nil {
		return nil, internal.NewInternalError("failed to serialize session", err)
	}
	if err := s.creds.Set(SessionKey, string(payload)); err != nil {
		return nil, internal.NewInternalError("failed to persist session", err)
	}

	s.logger.Info("logged in", "username", u.Username, "role", u.Role)
	return u, nil
}

// CurrentUser returns the persisted session identity.
func (s *Service) CurrentUser() (*user.User, error) {
	payload, err := s.creds.Get(SessionKey)
	if err != nil {
		return nil, internal.ErrNotAuthenticated
	}

	var u user.User
	if err := json.Unmarshal([]byte(payload), &u); err != nil {
		// A corrupt session is unrecoverable; drop it.
		_ = s.creds.Delete(SessionKey)
		return nil, internal.ErrNotAuthenticated
	}

	return &u, nil
}

// CurrentActor is CurrentUser projected onto the access model.
func (s *Service) CurrentActor() (access.Actor, error) {
	u, err := s.CurrentUser()
	if err != nil {
		return access.Actor{}, err
	}
	return u.Actor(), nil
}

func (s *Service) Logout() error {
	if err := s.creds.Delete(SessionKey); err != nil {
		s.logger.Debug("logout: no session to delete", "error", err)
	}
	s.logger.Info("logged out")
	return nil
}
