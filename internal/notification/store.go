package notification

import (
	"context"
	"log/slog"
	"sync"

	"github.com/frahmantamala/sensor-monitoring/internal"
	"github.com/frahmantamala/sensor-monitoring/internal/access"
	"github.com/frahmantamala/sensor-monitoring/internal/core/events"
)

// GatewayAPI is the slice of the remote gateway the store needs.
type GatewayAPI interface {
	FetchNotifications(ctx context.Context, username, role string) ([]*Notification, error)
	MarkNotificationRead(ctx context.Context, notificationID string) error
	UpdateNotificationStatus(ctx context.Context, notificationID string, status Status) error
}

// Store holds the session's notification snapshot. It is constructed by the
// application shell and handed to whoever needs it; there is no package-level
// instance. Mutations are two-phase: the gateway confirms first, the local
// record is patched after. Overlapping operations are not serialized beyond
// the mutex needed for memory safety; the last response to land wins, which
// is acceptable at the human-approval cadence this data moves at.
type Store struct {
	gateway GatewayAPI
	bus     *events.EventBus
	logger  *slog.Logger

	mu            sync.RWMutex
	notifications []*Notification
	loadErr       error
}

// NewStore creates a notification store. The event bus may be nil when no UI
// shell is listening.
func NewStore(gateway GatewayAPI, bus *events.EventBus, logger *slog.Logger) *Store {
	return &Store{
		gateway: gateway,
		bus:     bus,
		logger:  logger,
	}
}

// Load fetches every notification addressed to the actor and replaces the
// whole snapshot with the result, in gateway order. On failure the previous
// snapshot stays untouched and the error is kept for display.
func (s *Store) Load(ctx context.Context, actor access.Actor) ([]*Notification, error) {
	fetched, err := s.gateway.FetchNotifications(ctx, actor.Username, actor.Role.String())
	if err != nil {
		s.logger.Error("failed to load notifications", "error", err, "username", actor.Username)

		s.mu.Lock()
		s.loadErr = err
		s.mu.Unlock()
		return nil, err
	}

	s.mu.Lock()
	s.notifications = fetched
	s.loadErr = nil
	s.mu.Unlock()

	s.logger.Info("notifications loaded", "username", actor.Username, "count", len(fetched))
	s.publish(ctx, events.NewNotificationsLoadedEvent(actor.Username, len(fetched)))

	return s.All(), nil
}

// MarkRead persists read=true through the gateway and patches the local
// record on success. There is deliberately no already-read short-circuit: a
// second call issues a second PUT, which the backend treats as a no-op, and
// the local record stays read. Read never goes back to false.
func (s *Store) MarkRead(ctx context.Context, notificationID string) error {
	if err := s.gateway.MarkNotificationRead(ctx, notificationID); err != nil {
		s.logger.Error("failed to mark notification read", "error", err, "notification_id", notificationID)
		return err
	}

	s.mu.Lock()
	if n := s.find(notificationID); n != nil {
		n.Read = true
	}
	s.mu.Unlock()

	s.publish(ctx, events.NewNotificationReadEvent(notificationID))
	return nil
}

// ChangeStatus validates the transition against the local record before any
// network traffic; an illegal transition never reaches the gateway. On
// confirmed success the record takes the new status and becomes read.
func (s *Store) ChangeStatus(ctx context.Context, notificationID string, next Status) error {
	s.mu.RLock()
	n := s.find(notificationID)
	var current *Notification
	if n != nil {
		copied := *n
		current = &copied
	}
	s.mu.RUnlock()

	if current == nil {
		return internal.ErrNotificationNotFound
	}
	if !current.CanTransitionTo(next) {
		s.logger.Warn("rejected status transition locally",
			"notification_id", notificationID,
			"current_status", current.Status,
			"requested_status", next)
		return internal.ErrInvalidTransition
	}

	if err := s.gateway.UpdateNotificationStatus(ctx, notificationID, next); err != nil {
		s.logger.Error("failed to update notification status",
			"error", err,
			"notification_id", notificationID,
			"status", next)
		return err
	}

	s.mu.Lock()
	if n := s.find(notificationID); n != nil {
		n.Apply(next)
	}
	s.mu.Unlock()

	s.publish(ctx, events.NewNotificationStatusEvent(notificationID, string(next)))
	return nil
}

// Remove drops a record from the snapshot, used when a resolved access
// request leaves the visible list. Removing an id twice is an error; the
// second caller acted on a record that no longer exists.
func (s *Store) Remove(ctx context.Context, notificationID string) error {
	s.mu.Lock()
	idx := -1
	for i, n := range s.notifications {
		if n.ID == notificationID {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.mu.Unlock()
		return internal.ErrNotificationNotFound
	}
	s.notifications = append(s.notifications[:idx], s.notifications[idx+1:]...)
	s.mu.Unlock()

	s.publish(ctx, events.NewNotificationRemovedEvent(notificationID))
	return nil
}

// Get returns a copy of the matching record.
func (s *Store) Get(notificationID string) (*Notification, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if n := s.find(notificationID); n != nil {
		copied := *n
		return &copied, true
	}
	return nil, false
}

// All returns the snapshot in load order.
func (s *Store) All() []*Notification {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*Notification, len(s.notifications))
	for i, n := range s.notifications {
		copied := *n
		result[i] = &copied
	}
	return result
}

func (s *Store) UnreadCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, n := range s.notifications {
		if !n.Read {
			count++
		}
	}
	return count
}

// LoadError returns the error recorded by the most recent failed Load, or nil
// after a successful one.
func (s *Store) LoadError() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loadErr
}

// find must be called with the mutex held.
func (s *Store) find(notificationID string) *Notification {
	for _, n := range s.notifications {
		if n.ID == notificationID {
			return n
		}
	}
	return nil
}

func (s *Store) publish(ctx context.Context, event events.Event) {
	if s.bus != nil {
		s.bus.Publish(ctx, event)
	}
}
