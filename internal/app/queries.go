package app

import (
	"context"
	"fmt"
	"time"

	"hotelhub/internal/domain"
)

type QueryService struct {
	store    domain.Store
	cache    domain.Cache
	cacheTTL time.Duration
}

// NewQueryService builds the read side. c may be nil to disable caching.
func NewQueryService(s domain.Store, c domain.Cache, ttl time.Duration) *QueryService {
	return &QueryService{store: s, cache: c, cacheTTL: ttl}
}

func hotelKey(id string) string { return fmt.Sprintf("hotel:%s", id) }

// ListHotels returns every hotel with its reviews resolved.
func (s *QueryService) ListHotels(ctx context.Context) ([]domain.HotelView, error) {
	hotels, err := s.store.ListHotels(ctx)
	if err != nil {
		return nil, err
	}
	var ids []string
	for _, h := range hotels {
		ids = append(ids, h.Reviews...)
	}
	var reviews []domain.Review
	if len(ids) > 0 {
		if reviews, err = s.store.FindReviews(ctx, ids); err != nil {
			return nil, err
		}
	}
	out := make([]domain.HotelView, 0, len(hotels))
	for _, h := range hotels {
		out = append(out, h.View(resolve(h.Reviews, reviews, reviewID)))
	}
	return out, nil
}

// GetHotel returns one hotel with its reviews resolved, served from the cache
// when possible.
func (s *QueryService) GetHotel(ctx context.Context, id string) (domain.HotelView, error) {
	key := hotelKey(id)
	var hv domain.HotelView
	if s.cache != nil {
		if ok, _ := s.cache.Get(ctx, key, &hv); ok {
			return hv, nil
		}
	}
	h, err := s.store.GetHotel(ctx, id)
	if err != nil {
		return domain.HotelView{}, err
	}
	reviews, err := s.store.FindReviews(ctx, h.Reviews)
	if err != nil {
		return domain.HotelView{}, err
	}
	hv = h.View(resolve(h.Reviews, reviews, reviewID))
	// A write that evicts between the store read above and this Set leaves
	// the older view cached until the TTL expires, so it must never be 0.
	if s.cache != nil {
		_ = s.cache.Set(ctx, key, hv, max(int(s.cacheTTL.Seconds()), 1))
	}
	return hv, nil
}

func (s *QueryService) HotelReviews(ctx context.Context, hotelID string) ([]domain.Review, error) {
	hv, err := s.GetHotel(ctx, hotelID)
	if err != nil {
		return nil, err
	}
	return hv.Reviews, nil
}

// HotelRoomTypes resolves the hotel's roomTypes list. A room type linked
// twice is returned twice.
func (s *QueryService) HotelRoomTypes(ctx context.Context, hotelID string) ([]domain.RoomType, error) {
	hv, err := s.GetHotel(ctx, hotelID)
	if err != nil {
		return nil, err
	}
	if len(hv.RoomTypes) == 0 {
		return []domain.RoomType{}, nil
	}
	rts, err := s.store.FindRoomTypes(ctx, hv.RoomTypes)
	if err != nil {
		return nil, err
	}
	return resolve(hv.RoomTypes, rts, roomTypeID), nil
}

func reviewID(r domain.Review) string     { return r.ID }
func roomTypeID(r domain.RoomType) string { return r.ID }

// resolve orders docs by ids, keeping duplicates and dropping ids whose
// document no longer exists.
func resolve[T any](ids []string, docs []T, key func(T) string) []T {
	byID := make(map[string]T, len(docs))
	for _, d := range docs {
		byID[key(d)] = d
	}
	out := make([]T, 0, len(ids))
	for _, id := range ids {
		if d, ok := byID[id]; ok {
			out = append(out, d)
		}
	}
	return out
}
