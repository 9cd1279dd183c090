// model/property.go
package model

import "time"

type PropertyStatus string

const (
	PropertyPending   PropertyStatus = "pending"
	PropertyAvailable PropertyStatus = "available"
	PropertyRented    PropertyStatus = "rented"
	PropertyRejected  PropertyStatus = "rejected"
)

type Location struct {
	City         string `json:"city"`
	State        string `json:"state,omitempty"`
	Address      string `json:"address,omitempty"`
	FullLocation string `json:"full_location,omitempty"`
}

type Property struct {
	ID          int64          `json:"id"`
	OwnerID     int64          `json:"owner_id"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Category    string         `json:"category"`
	Price       float64        `json:"price"`
	RentType    string         `json:"rent_type"`
	Bedrooms    int            `json:"bedrooms"`
	Bathrooms   int            `json:"bathrooms"`
	Amenities   []string       `json:"amenities"`
	Location    Location       `json:"location"`
	Images      []string       `json:"images"`
	Featured    bool           `json:"featured"`
	Status      PropertyStatus `json:"status"`
	CreatedAt   time.Time      `json:"created_at"`
}
