package memory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"hotelhub/internal/domain"
	"hotelhub/internal/storage/memory"
)

func seedHotel(t *testing.T, s *memory.Store) domain.Hotel {
	t.Helper()
	h := domain.Hotel{Name: "Test Hotel", Location: "California", Price: 150, Rooms: 100,
		Reviews: []string{}, RoomTypes: []string{}, CreatedAt: time.Now(), UpdatedAt: time.Now()}
	if err := s.CreateHotel(context.Background(), &h); err != nil {
		t.Fatalf("CreateHotel: %v", err)
	}
	if h.ID == "" {
		t.Fatal("expected id to be assigned")
	}
	return h
}

func TestStore_ReviewLifecycle(t *testing.T) {
	ctx := context.Background()
	s := memory.New()
	h := seedHotel(t, s)

	r := domain.Review{Author: "John Doe", Comment: "Great hotel!", Rating: 5, Hotel: h.ID}
	if err := s.AddReview(ctx, &r); err != nil {
		t.Fatalf("AddReview: %v", err)
	}
	got, _ := s.GetHotel(ctx, h.ID)
	if len(got.Reviews) != 1 || got.Reviews[0] != r.ID {
		t.Fatalf("review not linked: %+v", got.Reviews)
	}

	// mutating a returned hotel must not leak into the store
	got.Reviews[0] = "tampered"
	again, _ := s.GetHotel(ctx, h.ID)
	if again.Reviews[0] != r.ID {
		t.Fatalf("store aliased caller slice")
	}

	if _, err := s.DeleteReview(ctx, h.ID, r.ID); err != nil {
		t.Fatalf("DeleteReview: %v", err)
	}
	got, _ = s.GetHotel(ctx, h.ID)
	if len(got.Reviews) != 0 {
		t.Fatalf("review not pulled: %+v", got.Reviews)
	}
	if _, err := s.DeleteReview(ctx, h.ID, r.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestStore_AddReviewUnknownHotel(t *testing.T) {
	s := memory.New()
	r := domain.Review{Author: "a", Comment: "c", Rating: 3, Hotel: "missing"}
	if err := s.AddReview(context.Background(), &r); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if rs, _ := s.FindReviews(context.Background(), []string{r.ID}); len(rs) != 0 {
		t.Fatalf("orphan review stored: %+v", rs)
	}
}

func TestStore_DeleteHotelCascadesReviews(t *testing.T) {
	ctx := context.Background()
	s := memory.New()
	h := seedHotel(t, s)
	r := domain.Review{Author: "a", Comment: "c", Rating: 4, Hotel: h.ID}
	_ = s.AddReview(ctx, &r)

	if err := s.DeleteHotel(ctx, h.ID); err != nil {
		t.Fatalf("DeleteHotel: %v", err)
	}
	if rs, _ := s.FindReviews(ctx, []string{r.ID}); len(rs) != 0 {
		t.Fatalf("expected review to be removed with its hotel")
	}
	if err := s.DeleteHotel(ctx, h.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	// pulling from a deleted hotel is a no-op, not a failure
	r2 := domain.Review{Author: "a", Comment: "c", Rating: 4, Hotel: seedHotel(t, s).ID}
	_ = s.AddReview(ctx, &r2)
	got, err := s.DeleteReview(ctx, h.ID, r2.ID)
	if err != nil {
		t.Fatalf("DeleteReview with stale hotel: %v", err)
	}
	if got.ID != r2.ID || got.Hotel != r2.Hotel {
		t.Fatalf("deleted review should name its own hotel, got %+v", got)
	}
}

func TestStore_LinkRoomTypeKeepsDuplicates(t *testing.T) {
	ctx := context.Background()
	s := memory.New()
	h := seedHotel(t, s)
	rt := domain.RoomType{Type: "Suite", Description: "A luxurious suite.", Price: 250}
	_ = s.CreateRoomType(ctx, &rt)

	for i := 0; i < 2; i++ {
		if err := s.LinkRoomType(ctx, h.ID, rt.ID); err != nil {
			t.Fatalf("LinkRoomType: %v", err)
		}
	}
	got, _ := s.GetHotel(ctx, h.ID)
	if len(got.RoomTypes) != 2 || got.RoomTypes[0] != rt.ID || got.RoomTypes[1] != rt.ID {
		t.Fatalf("expected duplicate link, got %+v", got.RoomTypes)
	}
	if err := s.LinkRoomType(ctx, "missing", rt.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestStore_ListHotelsInsertionOrder(t *testing.T) {
	s := memory.New()
	a := seedHotel(t, s)
	b := seedHotel(t, s)
	hs, err := s.ListHotels(context.Background())
	if err != nil {
		t.Fatalf("ListHotels: %v", err)
	}
	if len(hs) != 2 || hs[0].ID != a.ID || hs[1].ID != b.ID {
		t.Fatalf("unexpected order: %+v", hs)
	}
}
