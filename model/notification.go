// model/notification.go
package model

import "time"

type NotificationStatus string

const (
	NotificationUnread NotificationStatus = "unread"
	NotificationRead   NotificationStatus = "read"
)

type Notification struct {
	ID         int64              `json:"id"`
	ReceiverID int64              `json:"receiver_id"`
	PropertyID *int64             `json:"property_id,omitempty"`
	BookingID  *int64             `json:"booking_id,omitempty"`
	Message    string             `json:"message"`
	Status     NotificationStatus `json:"status"`
	CreatedAt  time.Time          `json:"created_at"`
}
