package booking

type CreateBookingReq struct {
	PropertyID int64  `json:"property_id" validate:"required,gt=0"`
	Method     string `json:"method" validate:"omitempty,oneof=offline card transfer"`
}
