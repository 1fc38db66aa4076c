package auth_test

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/sensor-monitoring/internal"
	"github.com/frahmantamala/sensor-monitoring/internal/access"
	"github.com/frahmantamala/sensor-monitoring/internal/auth"
	"github.com/frahmantamala/sensor-monitoring/internal/user"
)

func TestAuth(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Auth Suite")
}

// Mock gateway for testing
type mockGateway struct {
	user       *user.User
	loginError error
}

func (m *mockGateway) Login(_ context.Context, username, password string) (*user.User, error) {
	if m.loginError != nil {
		return nil, m.loginError
	}
	return m.user, nil
}

// In-memory credential store for testing
type mockCredentialStore struct {
	values   map[string]string
	setError error
}

func newMockCredentialStore() *mockCredentialStore {
	return &mockCredentialStore{values: make(map[string]string)}
}

func (m *mockCredentialStore) Get(key string) (string, error) {
	value, ok := m.values[key]
	if !ok {
		return "", errors.New("not found")
	}
	return value, nil
}

func (m *mockCredentialStore) Set(key, value string) error {
	if m.setError != nil {
		return m.setError
	}
	m.values[key] = value
	return nil
}

func (m *mockCredentialStore) Delete(key string) error {
	delete(m.values, key)
	return nil
}

var _ = Describe("Service", func() {
	var (
		gateway *mockGateway
		creds   *mockCredentialStore
		service *auth.Service
		ctx     context.Context
	)

	company := "acme"

	BeforeEach(func() {
		gateway = &mockGateway{
			user: &user.User{ID: 1, Username: "bob", Name: "Bob", Role: "admin", Company: &company},
		}
		creds = newMockCredentialStore()
		logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
		service = auth.NewService(gateway, creds, logger)
		ctx = context.Background()
	})

	Describe("Login", func() {
		It("should persist the returned identity", func() {
			u, err := service.Login(ctx, "bob", "password")
			Expect(err).NotTo(HaveOccurred())
			Expect(u.Username).To(Equal("bob"))
			Expect(creds.values).To(HaveKey(auth.SessionKey))
		})

		It("should not persist anything when the gateway rejects", func() {
			gateway.loginError = internal.ErrInvalidCredentials

			_, err := service.Login(ctx, "bob", "wrong")
			Expect(errors.Is(err, internal.ErrInvalidCredentials)).To(BeTrue())
			Expect(creds.values).To(BeEmpty())
		})
	})

	Describe("CurrentUser", func() {
		It("should return the persisted identity", func() {
			_, err := service.Login(ctx, "bob", "password")
			Expect(err).NotTo(HaveOccurred())

			u, err := service.CurrentUser()
			Expect(err).NotTo(HaveOccurred())
			Expect(u.Username).To(Equal("bob"))
			Expect(u.CompanyName()).To(Equal("acme"))
		})

		It("should report not-authenticated without a session", func() {
			_, err := service.CurrentUser()
			Expect(errors.Is(err, internal.ErrNotAuthenticated)).To(BeTrue())
		})

		It("should drop a corrupt session and report not-authenticated", func() {
			creds.values[auth.SessionKey] = "{not json"

			_, err := service.CurrentUser()
			Expect(errors.Is(err, internal.ErrNotAuthenticated)).To(BeTrue())
			Expect(creds.values).NotTo(HaveKey(auth.SessionKey))
		})
	})

	Describe("CurrentActor", func() {
		It("should project the session onto the access model", func() {
			_, err := service.Login(ctx, "bob", "password")
			Expect(err).NotTo(HaveOccurred())

			actor, err := service.CurrentActor()
			Expect(err).NotTo(HaveOccurred())
			Expect(actor).To(Equal(access.Actor{Username: "bob", Role: access.RoleAdmin}))
		})
	})

	Describe("Logout", func() {
		It("should drop the session", func() {
			_, err := service.Login(ctx, "bob", "password")
			Expect(err).NotTo(HaveOccurred())

			Expect(service.Logout()).To(Succeed())
			_, err = service.CurrentUser()
			Expect(errors.Is(err, internal.ErrNotAuthenticated)).To(BeTrue())
		})

		It("should tolerate a missing session", func() {
			Expect(service.Logout()).To(Succeed())
		})
	})
})
