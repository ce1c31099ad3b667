package app

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"hotelhub/internal/domain"
)

type CommandService struct {
	store domain.Store
	cache domain.Cache
	now   func() time.Time
}

// NewCommandService builds the write side. c may be nil; when set, every
// write that changes a hotel evicts that hotel's cached view.
func NewCommandService(s domain.Store, c domain.Cache) *CommandService {
	return &CommandService{store: s, cache: c, now: now}
}

// now is millisecond precision, the finest a Mongo date keeps, so a created
// document reads back exactly as it was returned.
func now() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}

func (s *CommandService) CreateHotel(ctx context.Context, in domain.HotelInput) (domain.Hotel, error) {
	h, err := domain.NewHotel(in, s.now())
	if err != nil {
		return domain.Hotel{}, err
	}
	if err := s.store.CreateHotel(ctx, &h); err != nil {
		return domain.Hotel{}, fmt.Errorf("create hotel: %w", err)
	}
	return h, nil
}

// DeleteHotel removes the hotel together with its reviews. Room types are
// shared between hotels and are left in place.
func (s *CommandService) DeleteHotel(ctx context.Context, id string) error {
	if err := s.store.DeleteHotel(ctx, id); err != nil {
		return err
	}
	s.invalidateHotel(ctx, id)
	return nil
}

// CreateReview requires the hotel to exist before the input is validated.
func (s *CommandService) CreateReview(ctx context.Context, hotelID string, in domain.ReviewInput) (domain.Review, error) {
	if _, err := s.store.GetHotel(ctx, hotelID); err != nil {
		return domain.Review{}, err
	}
	in.Hotel = hotelID
	r, err := domain.NewReview(in, s.now())
	if err != nil {
		return domain.Review{}, err
	}
	if err := s.store.AddReview(ctx, &r); err != nil {
		return domain.Review{}, err
	}
	s.invalidateHotel(ctx, hotelID)
	return r, nil
}

// DeleteReview evicts the hotel named in the route and, when it differs, the
// hotel the review actually belonged to.
func (s *CommandService) DeleteReview(ctx context.Context, hotelID, reviewID string) error {
	rv, err := s.store.DeleteReview(ctx, hotelID, reviewID)
	if err != nil {
		return err
	}
	s.invalidateHotel(ctx, hotelID)
	if rv.Hotel != "" && rv.Hotel != hotelID {
		s.invalidateHotel(ctx, rv.Hotel)
	}
	return nil
}

func (s *CommandService) CreateRoomType(ctx context.Context, in domain.RoomTypeInput) (domain.RoomType, error) {
	rt, err := domain.NewRoomType(in, s.now())
	if err != nil {
		return domain.RoomType{}, err
	}
	if err := s.store.CreateRoomType(ctx, &rt); err != nil {
		return domain.RoomType{}, fmt.Errorf("create room type: %w", err)
	}
	return rt, nil
}

// LinkRoomType checks both documents concurrently, then appends the room type
// to the hotel. Linking the same room type twice stores it twice.
func (s *CommandService) LinkRoomType(ctx context.Context, hotelID, roomTypeID string) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		_, err := s.store.GetHotel(gctx, hotelID)
		return err
	})
	g.Go(func() error {
		_, err := s.store.GetRoomType(gctx, roomTypeID)
		return err
	})
	if err := g.Wait(); err != nil {
		return err
	}
	if err := s.store.LinkRoomType(ctx, hotelID, roomTypeID); err != nil {
		return err
	}
	s.invalidateHotel(ctx, hotelID)
	return nil
}

func (s *CommandService) invalidateHotel(ctx context.Context, id string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, hotelKey(id)); err != nil {
		log.Warn().Err(err).Str("hotel", id).Msg("cache eviction failed")
	}
}
