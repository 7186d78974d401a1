package mq

import "time"

// Routing keys published on the reminders exchange.
const (
	RoutingKeyNotificationCreated = "notification.created"
	RoutingKeyUnreadChanged       = "notification.unread_changed"
)

type NotificationCreatedPayload struct {
	NotificationID int64     `json:"notification_id"`
	Kind           string    `json:"kind"`
	Title          string    `json:"title"`
	Message        string    `json:"message"`
	Priority       string    `json:"priority"`
	CreatedAt      time.Time `json:"created_at"`
}

type UnreadChangedPayload struct {
	Unread    int       `json:"unread"`
	ChangedAt time.Time `json:"changed_at"`
}
