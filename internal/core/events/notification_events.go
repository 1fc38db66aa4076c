package events

// Notification lifecycle events published by the notification store.
const (
	EventTypeNotificationsLoaded = "notifications.loaded"
	EventTypeNotificationRead    = "notification.read"
	EventTypeNotificationStatus  = "notification.status_changed"
	EventTypeNotificationRemoved = "notification.removed"
)

func NewNotificationsLoadedEvent(username string, count int) Event {
	return New(EventTypeNotificationsLoaded, map[string]interface{}{
		"username": username,
		"count":    count,
	})
}

func NewNotificationReadEvent(notificationID string) Event {
	return New(EventTypeNotificationRead, map[string]interface{}{
		"notification_id": notificationID,
	})
}

func NewNotificationStatusEvent(notificationID, status string) Event {
	return New(EventTypeNotificationStatus, map[string]interface{}{
		"notification_id": notificationID,
		"status":          status,
	})
}

func NewNotificationRemovedEvent(notificationID string) Event {
	return New(EventTypeNotificationRemoved, map[string]interface{}{
		"notification_id": notificationID,
	})
}
