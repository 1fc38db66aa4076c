package user

import (
	"context"
	"log/slog"

	"github.com/frahmantamala/sensor-monitoring/internal"
	"github.com/frahmantamala/sensor-monitoring/internal/access"
)

type GatewayAPI interface {
	FetchUsers(ctx context.Context, company string) ([]*User, error)
	UpdateUserRole(ctx context.Context, username string, role access.Role) error
	DeleteUser(ctx context.Context, username string) error
}

// Service is the write path behind the user administration page. Role and
// company data it mutates is what the access model reads, so every input is
// validated against the closed role set before touching the gateway.
type Service struct {
	gateway GatewayAPI
	logger  *slog.Logger
}

func NewService(gateway GatewayAPI, logger *slog.Logger) *Service {
	return &Service{
		gateway: gateway,
		logger:  logger,
	}
}

// List fetches the accounts of one company, or every account when company is
// empty (the grouped view shown to users without a company).
func (s *Service) List(ctx context.Context, company string) ([]*User, error) {
	users, err := s.gateway.FetchUsers(ctx, company)
	if err != nil {
		s.logger.Error("failed to fetch users", "error", err, "company", company)
		return nil, err
	}
	return users, nil
}

// UpdateRole changes an account's role. Only admins reach this surface; the
// backend re-checks regardless.
func (s *Service) UpdateRole(ctx context.Context, username, newRole string) error {
	role, err := access.ParseRole(newRole)
	if err != nil {
		return internal.NewValidationError(err.Error(), internal.ErrCodeInvalidRole).WithCause(err)
	}

	if err := s.gateway.UpdateUserRole(ctx, username, role); err != nil {
		s.logger.Error("failed to update user role", "error", err, "username", username, "role", role)
		return err
	}

	s.logger.Info("user role updated", "username", username, "role", role)
	return nil
}

func (s *Service) Delete(ctx context.Context, username string) error {
	if err := s.gateway.DeleteUser(ctx, username); err != nil {
		s.logger.Error("failed to delete user", "error", err, "username", username)
		return err
	}

	s.logger.Info("user deleted", "username", username)
	return nil
}
