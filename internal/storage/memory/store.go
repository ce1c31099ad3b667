// Package memory keeps every document in process memory. It backs
// STORE_DRIVER=memory and the unit tests of the layers above the store.
package memory

import (
	"context"
	"slices"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"hotelhub/internal/domain"
)

type Store struct {
	mu        sync.RWMutex
	hotels    map[string]domain.Hotel
	order     []string // hotel ids in insertion order
	reviews   map[string]domain.Review
	roomTypes map[string]domain.RoomType
	now       func() time.Time
}

func New() *Store {
	return &Store{
		hotels:    map[string]domain.Hotel{},
		reviews:   map[string]domain.Review{},
		roomTypes: map[string]domain.RoomType{},
		now:       func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) },
	}
}

func newID() string { return primitive.NewObjectID().Hex() }

// copies keep callers from aliasing the stored slices
func cloneHotel(h domain.Hotel) domain.Hotel {
	h.Reviews = append([]string{}, h.Reviews...)
	h.RoomTypes = append([]string{}, h.RoomTypes...)
	return h
}

func (s *Store) CreateHotel(_ context.Context, h *domain.Hotel) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	h.ID = newID()
	s.hotels[h.ID] = cloneHotel(*h)
	s.order = append(s.order, h.ID)
	return nil
}

func (s *Store) ListHotels(_ context.Context) ([]domain.Hotel, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Hotel, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, cloneHotel(s.hotels[id]))
	}
	return out, nil
}

func (s *Store) GetHotel(_ context.Context, id string) (domain.Hotel, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	h, ok := s.hotels[id]
	if !ok {
		return domain.Hotel{}, domain.ErrNotFound
	}
	return cloneHotel(h), nil
}

func (s *Store) DeleteHotel(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.hotels[id]; !ok {
		return domain.ErrNotFound
	}
	delete(s.hotels, id)
	s.order = slices.DeleteFunc(s.order, func(v string) bool { return v == id })
	for rid, r := range s.reviews {
		if r.Hotel == id {
			delete(s.reviews, rid)
		}
	}
	return nil
}

func (s *Store) AddReview(_ context.Context, r *domain.Review) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	h, ok := s.hotels[r.Hotel]
	if !ok {
		return domain.ErrNotFound
	}
	r.ID = newID()
	s.reviews[r.ID] = *r
	h.Reviews = append(h.Reviews, r.ID)
	h.UpdatedAt = s.now()
	s.hotels[h.ID] = h
	return nil
}

func (s *Store) FindReviews(_ context.Context, ids []string) ([]domain.Review, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Review, 0, len(ids))
	for _, id := range ids {
		if r, ok := s.reviews[id]; ok {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *Store) DeleteReview(_ context.Context, hotelID, reviewID string) (domain.Review, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.reviews[reviewID]
	if !ok {
		return domain.Review{}, domain.ErrNotFound
	}
	delete(s.reviews, reviewID)
	if h, ok := s.hotels[hotelID]; ok {
		h.Reviews = slices.DeleteFunc(h.Reviews, func(v string) bool { return v == reviewID })
		h.UpdatedAt = s.now()
		s.hotels[hotelID] = h
	}
	return r, nil
}

func (s *Store) CreateRoomType(_ context.Context, rt *domain.RoomType) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rt.ID = newID()
	s.roomTypes[rt.ID] = *rt
	return nil
}

func (s *Store) GetRoomType(_ context.Context, id string) (domain.RoomType, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rt, ok := s.roomTypes[id]
	if !ok {
		return domain.RoomType{}, domain.ErrNotFound
	}
	return rt, nil
}

func (s *Store) FindRoomTypes(_ context.Context, ids []string) ([]domain.RoomType, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.RoomType, 0, len(ids))
	for _, id := range ids {
		if rt, ok := s.roomTypes[id]; ok {
			out = append(out, rt)
		}
	}
	return out, nil
}

func (s *Store) LinkRoomType(_ context.Context, hotelID, roomTypeID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	h, ok := s.hotels[hotelID]
	if !ok {
		return domain.ErrNotFound
	}
	h.RoomTypes = append(h.RoomTypes, roomTypeID)
	h.UpdatedAt = s.now()
	s.hotels[hotelID] = h
	return nil
}

func (s *Store) Ping(context.Context) error { return nil }
