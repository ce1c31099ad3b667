package domain

import "time"

type RoomType struct {
	ID          string    `json:"_id"`
	Type        string    `json:"type"`
	Description string    `json:"description"`
	Price       float64   `json:"price"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type RoomTypeInput struct {
	Type        string   `json:"type" validate:"required"`
	Description string   `json:"description" validate:"required"`
	Price       *float64 `json:"price" validate:"required"`
}

func (in RoomTypeInput) Validate() error { return validateStruct("roomType", in) }

func NewRoomType(in RoomTypeInput, now time.Time) (RoomType, error) {
	if err := in.Validate(); err != nil {
		return RoomType{}, err
	}
	return RoomType{
		Type:        in.Type,
		Description: in.Description,
		Price:       *in.Price,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}
