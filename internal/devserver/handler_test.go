package devserver_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/jmoiron/sqlx"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/frahmantamala/sensor-monitoring/internal"
	networkDatamodel "github.com/frahmantamala/sensor-monitoring/internal/core/datamodel/network"
	notificationDatamodel "github.com/frahmantamala/sensor-monitoring/internal/core/datamodel/notification"
	userDatamodel "github.com/frahmantamala/sensor-monitoring/internal/core/datamodel/user"
	"github.com/frahmantamala/sensor-monitoring/internal/devserver"
	"github.com/frahmantamala/sensor-monitoring/pkg/logger"
)

var _ = Describe("Handler", func() {
	var (
		db     *gorm.DB
		server http.Handler
	)

	acme := "acme"

	seed := func() {
		hash, err := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.MinCost)
		Expect(err).NotTo(HaveOccurred())

		users := []*userDatamodel.User{
			{Username: "alice", Name: "Alice", Role: "user", Company: &acme, PasswordHash: string(hash), IsActive: true},
			{Username: "bob", Name: "Bob", Role: "admin", Company: &acme, PasswordHash: string(hash), IsActive: true},
		}
		for _, u := range users {
			Expect(db.Create(u).Error).To(Succeed())
		}

		Expect(db.Create(&networkDatamodel.Network{ID: "net-1", Name: "Plant Floor", Company: acme}).Error).To(Succeed())
		Expect(db.Create(&networkDatamodel.Sensor{
			SensorID: "s-101", NetworkID: "net-1", Location: "Loading Dock",
			IsActive: true, AccessUsers: []string{}, LastUpdated: time.Now(),
		}).Error).To(Succeed())

		Expect(db.Create(&notificationDatamodel.Notification{
			ID: "req-1", Type: "access_request",
			SenderUsername: "alice", SenderRole: "user",
			RecipientRole: "admin", SensorID: "s-101", NetworkID: "net-1", Company: acme,
			Message: "alice requests access to sensor s-101",
			Status:  "pending", Timestamp: time.Now(),
		}).Error).To(Succeed())

		payload, err := json.Marshal(map[string]interface{}{"temperature": 21.5, "humidity": 40})
		Expect(err).NotTo(HaveOccurred())
		Expect(db.Create(&networkDatamodel.SensorReading{
			SensorID: "s-101", NetworkID: "net-1", RecordedAt: time.Now(), Payload: string(payload),
		}).Error).To(Succeed())
	}

	BeforeEach(func() {
		db = openTestDB()
		store := devserver.NewStore(db)
		Expect(store.AutoMigrate()).To(Succeed())
		seed()

		sqlDB, err := db.DB()
		Expect(err).NotTo(HaveOccurred())
		readings := devserver.NewReadingStore(sqlx.NewDb(sqlDB, "sqlite3"))

		handler := devserver.NewHandler(store, readings, logger.L())
		server = devserver.NewRouter(handler, internal.ServerConfig{AllowedOrigins: "*"}, logger.L())
	})

	do := func(method, path string, body interface{}) *httptest.ResponseRecorder {
		var reader *bytes.Buffer
		if body != nil {
			payload, err := json.Marshal(body)
			Expect(err).NotTo(HaveOccurred())
			reader = bytes.NewBuffer(payload)
		} else {
			reader = bytes.NewBuffer(nil)
		}
		req := httptest.NewRequest(method, path, reader)
		recorder := httptest.NewRecorder()
		server.ServeHTTP(recorder, req)
		return recorder
	}

	Describe("POST /api/login", func() {
		It("should return the user envelope for valid credentials", func() {
			resp := do(http.MethodPost, "/api/login", map[string]string{"username": "bob", "password": "password"})
			Expect(resp.Code).To(Equal(http.StatusOK))

			var body struct {
				User struct {
					Username string `json:"username"`
					Role     string `json:"role"`
				} `json:"user"`
			}
			Expect(json.Unmarshal(resp.Body.Bytes(), &body)).To(Succeed())
			Expect(body.User.Username).To(Equal("bob"))
			Expect(body.User.Role).To(Equal("admin"))
		})

		It("should answer 401 for a wrong password and an unknown user alike", func() {
			Expect(do(http.MethodPost, "/api/login", map[string]string{"username": "bob", "password": "nope"}).Code).
				To(Equal(http.StatusUnauthorized))
			Expect(do(http.MethodPost, "/api/login", map[string]string{"username": "ghost", "password": "password"}).Code).
				To(Equal(http.StatusUnauthorized))
		})
	})

	Describe("GET /api/notifications", func() {
		It("should return role broadcasts to an admin", func() {
			resp := do(http.MethodGet, "/api/notifications?username=bob&role=admin", nil)
			Expect(resp.Code).To(Equal(http.StatusOK))

			var notifications []map[string]interface{}
			Expect(json.Unmarshal(resp.Body.Bytes(), &notifications)).To(Succeed())
			Expect(notifications).To(HaveLen(1))
			Expect(notifications[0]["id"]).To(Equal("req-1"))
		})

		It("should not leak the request to its sender", func() {
			resp := do(http.MethodGet, "/api/notifications?username=alice&role=user", nil)
			Expect(resp.Code).To(Equal(http.StatusOK))

			var notifications []map[string]interface{}
			Expect(json.Unmarshal(resp.Body.Bytes(), &notifications)).To(Succeed())
			Expect(notifications).To(BeEmpty())
		})
	})

	Describe("PUT /api/notifications/{id}/status", func() {
		It("should enforce the state machine server-side", func() {
			resp := do(http.MethodPut, "/api/notifications/req-1/status", map[string]string{"status": "acknowledged"})
			Expect(resp.Code).To(Equal(http.StatusBadRequest))
		})
	})

	Describe("POST /api/notifications/respond-access", func() {
		It("should grant sensor access and resolve the request on approval", func() {
			resp := do(http.MethodPost, "/api/notifications/respond-access", map[string]string{
				"notificationId":    "req-1",
				"response":          "approved",
				"responderUsername": "bob",
			})
			Expect(resp.Code).To(Equal(http.StatusOK))

			var sensor networkDatamodel.Sensor
			Expect(db.Where("sensor_id = ?", "s-101").First(&sensor).Error).To(Succeed())
			Expect(sensor.AccessUsers).To(ContainElement("alice"))

			var request notificationDatamodel.Notification
			Expect(db.Where("id = ?", "req-1").First(&request).Error).To(Succeed())
			Expect(request.Status).To(Equal("approved"))
			Expect(request.Read).To(BeTrue())
		})

		It("should refuse a non-admin responder and change nothing", func() {
			resp := do(http.MethodPost, "/api/notifications/respond-access", map[string]string{
				"notificationId":    "req-1",
				"response":          "rejected",
				"responderUsername": "alice",
			})
			Expect(resp.Code).To(Equal(http.StatusForbidden))

			var request notificationDatamodel.Notification
			Expect(db.Where("id = ?", "req-1").First(&request).Error).To(Succeed())
			Expect(request.Status).To(Equal("pending"))
		})

		It("should refuse to resolve the same request twice", func() {
			first := do(http.MethodPost, "/api/notifications/respond-access", map[string]string{
				"notificationId":    "req-1",
				"response":          "rejected",
				"responderUsername": "bob",
			})
			Expect(first.Code).To(Equal(http.StatusOK))

			second := do(http.MethodPost, "/api/notifications/respond-access", map[string]string{
				"notificationId":    "req-1",
				"response":          "approved",
				"responderUsername": "bob",
			})
			Expect(second.Code).To(Equal(http.StatusBadRequest))
		})

		It("should not grant sensor access on rejection", func() {
			resp := do(http.MethodPost, "/api/notifications/respond-access", map[string]string{
				"notificationId":    "req-1",
				"response":          "rejected",
				"responderUsername": "bob",
			})
			Expect(resp.Code).To(Equal(http.StatusOK))

			var sensor networkDatamodel.Sensor
			Expect(db.Where("sensor_id = ?", "s-101").First(&sensor).Error).To(Succeed())
			Expect(sensor.AccessUsers).NotTo(ContainElement("alice"))
		})
	})

	Describe("POST /api/notifications/request-sensor-access", func() {
		It("should create a pending request addressed to the admin role", func() {
			resp := do(http.MethodPost, "/api/notifications/request-sensor-access", map[string]string{
				"requesterUsername": "alice",
				"sensorId":          "s-101",
				"networkId":         "net-1",
				"company":           "acme",
			})
			Expect(resp.Code).To(Equal(http.StatusCreated))

			var created map[string]interface{}
			Expect(json.Unmarshal(resp.Body.Bytes(), &created)).To(Succeed())
			Expect(created["status"]).To(Equal("pending"))
			Expect(created["type"]).To(Equal("access_request"))
		})

		It("should answer 404 for an unknown sensor", func() {
			resp := do(http.MethodPost, "/api/notifications/request-sensor-access", map[string]string{
				"requesterUsername": "alice",
				"sensorId":          "ghost",
				"networkId":         "net-1",
				"company":           "acme",
			})
			Expect(resp.Code).To(Equal(http.StatusNotFound))
		})
	})

	Describe("GET /api/networks/{id}/sensors/{sid}/data", func() {
		It("should merge the payload columns into flat rows", func() {
			resp := do(http.MethodGet, "/api/networks/net-1/sensors/s-101/data", nil)
			Expect(resp.Code).To(Equal(http.StatusOK))

			var rows []map[string]interface{}
			Expect(json.Unmarshal(resp.Body.Bytes(), &rows)).To(Succeed())
			Expect(rows).To(HaveLen(1))
			Expect(rows[0]).To(HaveKeyWithValue("sensorId", "s-101"))
			Expect(rows[0]).To(HaveKeyWithValue("temperature", 21.5))
			Expect(rows[0]).To(HaveKey("timestamp"))
		})

		It("should answer 404 for an unknown sensor", func() {
			resp := do(http.MethodGet, "/api/networks/net-1/sensors/ghost/data", nil)
			Expect(resp.Code).To(Equal(http.StatusNotFound))
		})
	})

	Describe("PUT /api/users/{username}", func() {
		It("should change the role", func() {
			resp := do(http.MethodPut, "/api/users/alice", map[string]string{"role": "moderator"})
			Expect(resp.Code).To(Equal(http.StatusOK))

			var u userDatamodel.User
			Expect(db.Where("username = ?", "alice").First(&u).Error).To(Succeed())
			Expect(u.Role).To(Equal("moderator"))
		})

		It("should deactivate on the delete action", func() {
			resp := do(http.MethodPut, "/api/users/alice", map[string]string{"action": "delete"})
			Expect(resp.Code).To(Equal(http.StatusOK))

			listed := do(http.MethodGet, fmt.Sprintf("/api/users?company=%s", acme), nil)
			var users []map[string]interface{}
			Expect(json.Unmarshal(listed.Body.Bytes(), &users)).To(Succeed())
			Expect(users).To(HaveLen(1))
			Expect(users[0]["username"]).To(Equal("bob"))
		})

		It("should reject a role outside the closed set", func() {
			resp := do(http.MethodPut, "/api/users/alice", map[string]string{"role": "superuser"})
			Expect(resp.Code).To(Equal(http.StatusBadRequest))
		})
	})
})
