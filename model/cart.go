// model/cart.go
package model

import "time"

type CartItem struct {
	ID         int64     `json:"id"`
	RenterID   int64     `json:"renter_id"`
	PropertyID int64     `json:"property_id"`
	AddedAt    time.Time `json:"added_at"`
}
