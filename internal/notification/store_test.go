package notification_test

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"sync"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/sensor-monitoring/internal"
	"github.com/frahmantamala/sensor-monitoring/internal/access"
	"github.com/frahmantamala/sensor-monitoring/internal/core/events"
	"github.com/frahmantamala/sensor-monitoring/internal/notification"
)

// Mock gateway for testing
type mockGateway struct {
	notifications []*notification.Notification
	fetchError    error
	markReadError error
	statusError   error

	fetchCalls    int
	markReadCalls []string
	statusCalls   []string
}

func (m *mockGateway) FetchNotifications(_ context.Context, username, role string) ([]*notification.Notification, error) {
	m.fetchCalls++
	if m.fetchError != nil {
		return nil, m.fetchError
	}
	return m.notifications, nil
}

func (m *mockGateway) MarkNotificationRead(_ context.Context, notificationID string) error {
	m.markReadCalls = append(m.markReadCalls, notificationID)
	return m.markReadError
}

func (m *mockGateway) UpdateNotificationStatus(_ context.Context, notificationID string, status notification.Status) error {
	m.statusCalls = append(m.statusCalls, notificationID)
	return m.statusError
}

// eventRecorder collects published events; the bus delivers them from its own
// goroutines, so access is guarded.
type eventRecorder struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *eventRecorder) handle(_ context.Context, event events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

func (r *eventRecorder) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	types := make([]string, len(r.events))
	for i, event := range r.events {
		types[i] = event.Type
	}
	return types
}

func pendingRequest(id string) *notification.Notification {
	return &notification.Notification{
		ID:        id,
		Type:      notification.TypeAccessRequest,
		Recipient: notification.Party{Role: "admin"},
		Message:   "access request",
		Status:    notification.StatusPending,
	}
}

func systemAlert(id string) *notification.Notification {
	return &notification.Notification{
		ID:        id,
		Type:      notification.TypeSystemAlert,
		Recipient: notification.Party{Username: "bob"},
		Message:   "alert",
		Status:    notification.StatusPending,
	}
}

var _ = Describe("Store", func() {
	var (
		gateway *mockGateway
		store   *notification.Store
		actor   access.Actor
		ctx     context.Context
		logger  *slog.Logger
	)

	BeforeEach(func() {
		gateway = &mockGateway{}
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
		store = notification.NewStore(gateway, nil, logger)
		actor = access.Actor{Username: "bob", Role: access.RoleAdmin}
		ctx = context.Background()
	})

	Describe("Load", func() {
		It("should replace the snapshot with exactly what the gateway returned", func() {
			gateway.notifications = []*notification.Notification{pendingRequest("n1"), systemAlert("n2")}

			loaded, err := store.Load(ctx, actor)
			Expect(err).NotTo(HaveOccurred())
			Expect(loaded).To(HaveLen(2))
			Expect(loaded[0].ID).To(Equal("n1"))
			Expect(loaded[1].ID).To(Equal("n2"))

			gateway.notifications = []*notification.Notification{systemAlert("n3")}
			loaded, err = store.Load(ctx, actor)
			Expect(err).NotTo(HaveOccurred())
			Expect(loaded).To(HaveLen(1))
			Expect(loaded[0].ID).To(Equal("n3"))

			_, found := store.Get("n1")
			Expect(found).To(BeFalse())
		})

		It("should keep the previous snapshot and record the error on failure", func() {
			gateway.notifications = []*notification.Notification{pendingRequest("n1")}
			_, err := store.Load(ctx, actor)
			Expect(err).NotTo(HaveOccurred())

			gateway.fetchError = errors.New("gateway down")
			_, err = store.Load(ctx, actor)
			Expect(err).To(HaveOccurred())

			Expect(store.All()).To(HaveLen(1))
			Expect(store.LoadError()).To(HaveOccurred())
		})

		It("should clear the recorded error after a successful reload", func() {
			gateway.fetchError = errors.New("gateway down")
			_, err := store.Load(ctx, actor)
			Expect(err).To(HaveOccurred())
			Expect(store.LoadError()).To(HaveOccurred())

			gateway.fetchError = nil
			gateway.notifications = []*notification.Notification{pendingRequest("n1")}
			_, err = store.Load(ctx, actor)
			Expect(err).NotTo(HaveOccurred())
			Expect(store.LoadError()).To(BeNil())
		})
	})

	Describe("MarkRead", func() {
		BeforeEach(func() {
			gateway.notifications = []*notification.Notification{systemAlert("n1")}
			_, err := store.Load(ctx, actor)
			Expect(err).NotTo(HaveOccurred())
		})

		It("should persist through the gateway and patch the local record", func() {
			Expect(store.MarkRead(ctx, "n1")).To(Succeed())

			n, found := store.Get("n1")
			Expect(found).To(BeTrue())
			Expect(n.Read).To(BeTrue())
			Expect(gateway.markReadCalls).To(Equal([]string{"n1"}))
		})

		It("should issue a second PUT for an already-read notification and stay read", func() {
			Expect(store.MarkRead(ctx, "n1")).To(Succeed())
			Expect(store.MarkRead(ctx, "n1")).To(Succeed())

			n, _ := store.Get("n1")
			Expect(n.Read).To(BeTrue())
			Expect(gateway.markReadCalls).To(HaveLen(2))
		})

		It("should leave the record unread when the gateway fails", func() {
			gateway.markReadError = errors.New("gateway down")
			Expect(store.MarkRead(ctx, "n1")).NotTo(Succeed())

			n, _ := store.Get("n1")
			Expect(n.Read).To(BeFalse())
		})
	})

	Describe("ChangeStatus", func() {
		BeforeEach(func() {
			gateway.notifications = []*notification.Notification{pendingRequest("req"), systemAlert("alert")}
			_, err := store.Load(ctx, actor)
			Expect(err).NotTo(HaveOccurred())
		})

		It("should apply a confirmed transition and flip read", func() {
			Expect(store.ChangeStatus(ctx, "req", notification.StatusApproved)).To(Succeed())

			n, _ := store.Get("req")
			Expect(n.Status).To(Equal(notification.StatusApproved))
			Expect(n.Read).To(BeTrue())
			Expect(gateway.statusCalls).To(Equal([]string{"req"}))
		})

		It("should reject an illegal transition locally without any gateway call", func() {
			err := store.ChangeStatus(ctx, "req", notification.StatusAcknowledged)
			Expect(errors.Is(err, internal.ErrInvalidTransition)).To(BeTrue())
			Expect(gateway.statusCalls).To(BeEmpty())
		})

		It("should report not-found for an unknown id without any gateway call", func() {
			err := store.ChangeStatus(ctx, "ghost", notification.StatusApproved)
			Expect(errors.Is(err, internal.ErrNotificationNotFound)).To(BeTrue())
			Expect(gateway.statusCalls).To(BeEmpty())
		})

		It("should keep the local record untouched when the gateway fails", func() {
			gateway.statusError = errors.New("gateway down")
			Expect(store.ChangeStatus(ctx, "req", notification.StatusApproved)).NotTo(Succeed())

			n, _ := store.Get("req")
			Expect(n.Status).To(Equal(notification.StatusPending))
			Expect(n.Read).To(BeFalse())
		})

		It("should acknowledge an informational notification", func() {
			Expect(store.ChangeStatus(ctx, "alert", notification.StatusAcknowledged)).To(Succeed())

			n, _ := store.Get("alert")
			Expect(n.Status).To(Equal(notification.StatusAcknowledged))
		})
	})

	Describe("Remove", func() {
		BeforeEach(func() {
			gateway.notifications = []*notification.Notification{pendingRequest("req")}
			_, err := store.Load(ctx, actor)
			Expect(err).NotTo(HaveOccurred())
		})

		It("should drop the record from the snapshot", func() {
			Expect(store.Remove(ctx, "req")).To(Succeed())
			Expect(store.All()).To(BeEmpty())
		})

		It("should report not-found on a second removal", func() {
			Expect(store.Remove(ctx, "req")).To(Succeed())

			err := store.Remove(ctx, "req")
			Expect(errors.Is(err, internal.ErrNotificationNotFound)).To(BeTrue())
		})
	})

	Describe("event publication", func() {
		var (
			recorded *eventRecorder
		)

		BeforeEach(func() {
			bus := events.NewEventBus(logger)
			recorded = &eventRecorder{}
			for _, eventType := range []string{
				events.EventTypeNotificationsLoaded,
				events.EventTypeNotificationRead,
				events.EventTypeNotificationStatus,
				events.EventTypeNotificationRemoved,
			} {
				bus.Subscribe(eventType, recorded.handle)
			}

			store = notification.NewStore(gateway, bus, logger)
			gateway.notifications = []*notification.Notification{pendingRequest("req")}
		})

		It("should publish the whole lifecycle to subscribers", func() {
			_, err := store.Load(ctx, actor)
			Expect(err).NotTo(HaveOccurred())
			Expect(store.MarkRead(ctx, "req")).To(Succeed())
			Expect(store.ChangeStatus(ctx, "req", notification.StatusApproved)).To(Succeed())
			Expect(store.Remove(ctx, "req")).To(Succeed())

			Eventually(recorded.types).Should(ConsistOf(
				events.EventTypeNotificationsLoaded,
				events.EventTypeNotificationRead,
				events.EventTypeNotificationStatus,
				events.EventTypeNotificationRemoved,
			))
		})

		It("should publish nothing for a locally rejected transition", func() {
			_, err := store.Load(ctx, actor)
			Expect(err).NotTo(HaveOccurred())
			Eventually(recorded.types).Should(HaveLen(1))

			Expect(store.ChangeStatus(ctx, "req", notification.StatusAcknowledged)).NotTo(Succeed())
			Consistently(recorded.types).Should(HaveLen(1))
		})
	})

	Describe("UnreadCount", func() {
		It("should count only unread notifications", func() {
			read := systemAlert("n1")
			read.Read = true
			gateway.notifications = []*notification.Notification{read, systemAlert("n2"), pendingRequest("n3")}

			_, err := store.Load(ctx, actor)
			Expect(err).NotTo(HaveOccurred())
			Expect(store.UnreadCount()).To(Equal(2))
		})
	})
})
