package domain

import (
	"context"
	"errors"
)

// ErrNotFound reports that a referenced document does not exist. Ids that are
// malformed for the active backend are reported the same way.
var ErrNotFound = errors.New("not found")

// Store persists hotels, reviews and room types. Implementations assign ids
// on create and keep the hotel reference lists in insertion order.
type Store interface {
	// Hotels
	CreateHotel(ctx context.Context, h *Hotel) error
	ListHotels(ctx context.Context) ([]Hotel, error)
	GetHotel(ctx context.Context, id string) (Hotel, error)
	// DeleteHotel removes the hotel and every review that references it.
	DeleteHotel(ctx context.Context, id string) error

	// Reviews
	// AddReview inserts r and appends its id to the owning hotel's reviews.
	// Either both writes land or neither does. ErrNotFound if r.Hotel is gone.
	AddReview(ctx context.Context, r *Review) error
	FindReviews(ctx context.Context, ids []string) ([]Review, error)
	// DeleteReview removes the review, pulls its id from hotelID's list and
	// returns the deleted review. A missing hotel is not an error.
	DeleteReview(ctx context.Context, hotelID, reviewID string) (Review, error)

	// Room types
	CreateRoomType(ctx context.Context, rt *RoomType) error
	GetRoomType(ctx context.Context, id string) (RoomType, error)
	FindRoomTypes(ctx context.Context, ids []string) ([]RoomType, error)
	// LinkRoomType appends roomTypeID to the hotel's roomTypes without
	// de-duplication. ErrNotFound if the hotel is gone.
	LinkRoomType(ctx context.Context, hotelID, roomTypeID string) error

	Ping(ctx context.Context) error
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
}

// CatalogSource yields catalog entries for the bulk importer.
type CatalogSource interface {
	Load(ctx context.Context) ([]CatalogEntry, error)
}

// CatalogEntry is one hotel of an import catalog together with the reviews
// and room types to attach to it.
type CatalogEntry struct {
	Name      string          `json:"name"`
	Location  string          `json:"location"`
	Price     *float64        `json:"price"`
	Rooms     *int            `json:"rooms"`
	Reviews   []ReviewInput   `json:"reviews"`
	RoomTypes []RoomTypeInput `json:"roomTypes"`
}

func (e CatalogEntry) Hotel() HotelInput {
	return HotelInput{Name: e.Name, Location: e.Location, Price: e.Price, Rooms: e.Rooms}
}
