// Package queue defines lifecycle event payloads published to the message
// broker. Consumers get enough to log or notify without querying the
// primary database.
package queue

const (
	BookingRequested = "booking.requested"
	BookingApproved  = "booking.approved"
	BookingRejected  = "booking.rejected"
	BookingCancelled = "booking.cancelled"
)

type BookingEvent struct {
	Kind       string  `json:"kind"`
	BookingID  int64   `json:"booking_id"`
	PropertyID int64   `json:"property_id"`
	RenterID   int64   `json:"renter_id"`
	OwnerID    int64   `json:"owner_id"`
	Amount     float64 `json:"amount"`
	OccurredAt string  `json:"occurred_at"`
}
