package gateway_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/sensor-monitoring/internal"
	"github.com/frahmantamala/sensor-monitoring/internal/accessrequest"
	"github.com/frahmantamala/sensor-monitoring/internal/gateway"
	"github.com/frahmantamala/sensor-monitoring/internal/notification"
	"github.com/frahmantamala/sensor-monitoring/pkg/logger"
)

func TestGateway(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Gateway Suite")
}

// recordedRequest captures what the backend saw.
type recordedRequest struct {
	Method string
	Path   string
	Query  map[string]string
	Body   map[string]interface{}
}

var _ = Describe("Client", func() {
	var (
		server   *httptest.Server
		client   *gateway.Client
		ctx      context.Context
		requests []recordedRequest
		respond  func(w http.ResponseWriter, r *http.Request)
	)

	BeforeEach(func() {
		requests = nil
		respond = func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{}`))
		}

		server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			recorded := recordedRequest{
				Method: r.Method,
				Path:   r.URL.Path,
				Query:  map[string]string{},
			}
			for key := range r.URL.Query() {
				recorded.Query[key] = r.URL.Query().Get(key)
			}
			if r.Body != nil {
				var body map[string]interface{}
				if err := json.NewDecoder(r.Body).Decode(&body); err == nil {
					recorded.Body = body
				}
			}
			requests = append(requests, recorded)
			respond(w, r)
		}))

		client = gateway.NewClient(internal.GatewayConfig{
			BaseURL: server.URL,
			Timeout: 2 * time.Second,
		}, logger.L())
		ctx = context.Background()
	})

	AfterEach(func() {
		server.Close()
	})

	Describe("Login", func() {
		It("should unwrap the user envelope", func() {
			respond = func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(`{"user":{"id":1,"username":"bob","role":"admin","company":"acme"}}`))
			}

			u, err := client.Login(ctx, "bob", "password")
			Expect(err).NotTo(HaveOccurred())
			Expect(u.Username).To(Equal("bob"))
			Expect(requests[0].Path).To(Equal("/login"))
			Expect(requests[0].Body).To(HaveKeyWithValue("username", "bob"))
		})

		It("should map a 401 to invalid credentials", func() {
			respond = func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"message":"invalid credentials"}`))
			}

			_, err := client.Login(ctx, "bob", "wrong")
			Expect(err).To(MatchError(internal.ErrInvalidCredentials))
		})
	})

	Describe("FetchNotifications", func() {
		It("should pass username and role and decode the wire shape", func() {
			respond = func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(`[{
					"id": "n1",
					"type": "access_request",
					"sender": {"username": "alice", "role": "user"},
					"recipient": {"role": "admin"},
					"sensor": {"sensorId": "s-101", "networkId": "net-1"},
					"message": "alice requests access",
					"status": "pending",
					"read": false,
					"timestamp": "2026-08-01T10:00:00Z"
				}]`))
			}

			notifications, err := client.FetchNotifications(ctx, "bob", "admin")
			Expect(err).NotTo(HaveOccurred())
			Expect(requests[0].Path).To(Equal("/notifications"))
			Expect(requests[0].Query).To(HaveKeyWithValue("username", "bob"))
			Expect(requests[0].Query).To(HaveKeyWithValue("role", "admin"))

			Expect(notifications).To(HaveLen(1))
			n := notifications[0]
			Expect(n.Type).To(Equal(notification.TypeAccessRequest))
			Expect(n.Sender.Username).To(Equal("alice"))
			Expect(n.Recipient.Role).To(Equal("admin"))
			Expect(n.Sensor.SensorID).To(Equal("s-101"))
			Expect(n.Status).To(Equal(notification.StatusPending))
		})
	})

	Describe("notification writes", func() {
		It("should PUT to the read endpoint", func() {
			Expect(client.MarkNotificationRead(ctx, "n1")).To(Succeed())
			Expect(requests[0].Method).To(Equal(http.MethodPut))
			Expect(requests[0].Path).To(Equal("/notifications/n1/read"))
		})

		It("should PUT the status payload", func() {
			Expect(client.UpdateNotificationStatus(ctx, "n1", notification.StatusAcknowledged)).To(Succeed())
			Expect(requests[0].Path).To(Equal("/notifications/n1/status"))
			Expect(requests[0].Body).To(HaveKeyWithValue("status", "acknowledged"))
		})

		It("should POST the respond-access payload unchanged", func() {
			dto := accessrequest.RespondAccessRequestDTO{
				NotificationID:    "n1",
				Response:          "approved",
				ResponderUsername: "bob",
			}
			Expect(client.RespondAccessRequest(ctx, dto)).To(Succeed())
			Expect(requests[0].Path).To(Equal("/notifications/respond-access"))
			Expect(requests[0].Body).To(HaveKeyWithValue("notificationId", "n1"))
			Expect(requests[0].Body).To(HaveKeyWithValue("response", "approved"))
		})
	})

	Describe("error mapping", func() {
		It("should surface the backend's error envelope message on 404", func() {
			respond = func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusNotFound)
				_, _ = w.Write([]byte(`{"error":{"message":"no such notification"}}`))
			}

			err := client.MarkNotificationRead(ctx, "ghost")
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.StatusCode).To(Equal(http.StatusNotFound))
			Expect(appErr.Message).To(Equal("no such notification"))
		})

		It("should map a 403 to the forbidden taxonomy", func() {
			respond = func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusForbidden)
				_, _ = w.Write([]byte(`{"message":"admin required"}`))
			}

			err := client.RespondAccessRequest(ctx, accessrequest.RespondAccessRequestDTO{
				NotificationID: "n1",
				Response:       "approved",
			})
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.StatusCode).To(Equal(http.StatusForbidden))
		})

		It("should classify a failed GET as a load error", func() {
			respond = func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
			}

			_, err := client.FetchNotifications(ctx, "bob", "admin")
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(internal.ErrorTypeLoad))
		})
	})

	Describe("user admin writes", func() {
		It("should PUT the new role", func() {
			Expect(client.UpdateUserRole(ctx, "alice", "moderator")).To(Succeed())
			Expect(requests[0].Path).To(Equal("/users/alice"))
			Expect(requests[0].Body).To(HaveKeyWithValue("role", "moderator"))
		})

		It("should express deletion as a PUT action", func() {
			Expect(client.DeleteUser(ctx, "alice")).To(Succeed())
			Expect(requests[0].Method).To(Equal(http.MethodPut))
			Expect(requests[0].Body).To(HaveKeyWithValue("action", "delete"))
		})
	})
})
