package property

type LocationReq struct {
	City         string `json:"city" validate:"required"`
	State        string `json:"state"`
	Address      string `json:"address"`
	FullLocation string `json:"full_location"`
}

type CreatePropertyReq struct {
	Title       string      `json:"title" validate:"required"`
	Description string      `json:"description" validate:"required"`
	Category    string      `json:"category" validate:"omitempty,oneof=House Apartment Villa"`
	Price       float64     `json:"price" validate:"required,gt=0"`
	RentType    string      `json:"rent_type" validate:"omitempty,oneof=perMonth perNight"`
	Bedrooms    int         `json:"bedrooms" validate:"omitempty,gte=1"`
	Bathrooms   int         `json:"bathrooms" validate:"omitempty,gte=1"`
	Amenities   []string    `json:"amenities"`
	Location    LocationReq `json:"location"`
	Images      []string    `json:"images"`
	Featured    bool        `json:"featured"`
}
