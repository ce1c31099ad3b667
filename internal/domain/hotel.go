package domain

import "time"

// Hotel is the stored hotel document. Reviews and RoomTypes hold ids only.
type Hotel struct {
	ID        string    `json:"_id"`
	Name      string    `json:"name"`
	Location  string    `json:"location"`
	Price     float64   `json:"price"`
	Rooms     int       `json:"rooms"`
	Reviews   []string  `json:"reviews"`
	RoomTypes []string  `json:"roomTypes"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// HotelView is a Hotel with its reviews resolved to full documents.
type HotelView struct {
	ID        string    `json:"_id"`
	Name      string    `json:"name"`
	Location  string    `json:"location"`
	Price     float64   `json:"price"`
	Rooms     int       `json:"rooms"`
	Reviews   []Review  `json:"reviews"`
	RoomTypes []string  `json:"roomTypes"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type HotelInput struct {
	Name     string   `json:"name" validate:"required,min=3"`
	Location string   `json:"location" validate:"required"`
	Price    *float64 `json:"price" validate:"required,min=0"`
	Rooms    *int     `json:"rooms" validate:"required,min=1"`
}

func (in HotelInput) Validate() error { return validateStruct("hotel", in) }

// NewHotel validates in and returns a Hotel with empty reference lists.
// The id is left for the store to assign.
func NewHotel(in HotelInput, now time.Time) (Hotel, error) {
	if err := in.Validate(); err != nil {
		return Hotel{}, err
	}
	return Hotel{
		Name:      in.Name,
		Location:  in.Location,
		Price:     *in.Price,
		Rooms:     *in.Rooms,
		Reviews:   []string{},
		RoomTypes: []string{},
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// View pairs h with already-resolved reviews.
func (h Hotel) View(reviews []Review) HotelView {
	if reviews == nil {
		reviews = []Review{}
	}
	roomTypes := h.RoomTypes
	if roomTypes == nil {
		roomTypes = []string{}
	}
	return HotelView{
		ID:        h.ID,
		Name:      h.Name,
		Location:  h.Location,
		Price:     h.Price,
		Rooms:     h.Rooms,
		Reviews:   reviews,
		RoomTypes: roomTypes,
		CreatedAt: h.CreatedAt,
		UpdatedAt: h.UpdatedAt,
	}
}
