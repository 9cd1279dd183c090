// model/booking.go
package model

import "time"

type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingConfirmed BookingStatus = "confirmed"
	BookingRejected  BookingStatus = "rejected"
	BookingCancelled BookingStatus = "cancelled"
)

// Active reports whether the status still blocks a new booking for the same
// (renter, property) pair.
func (s BookingStatus) Active() bool {
	return s == BookingPending || s == BookingConfirmed
}

type Payment struct {
	Amount float64 `json:"amount"`
	Method string  `json:"method"`
	Status string  `json:"status"`
}

type Booking struct {
	ID         int64         `json:"id"`
	PropertyID int64         `json:"property_id"`
	RenterID   int64         `json:"renter_id"`
	OwnerID    int64         `json:"owner_id"`
	Status     BookingStatus `json:"status"`
	Payment    Payment       `json:"payment"`
	CreatedAt  time.Time     `json:"created_at"`
}
