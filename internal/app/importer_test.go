package app_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"hotelhub/internal/app"
	"hotelhub/internal/domain"
	"hotelhub/internal/storage/memory"
)

type fakeSource struct {
	entries []domain.CatalogEntry
	err     error
}

func (f fakeSource) Load(ctx context.Context) ([]domain.CatalogEntry, error) { return f.entries, f.err }

// countingStore tracks how many CreateHotel calls run at once.
type countingStore struct {
	*memory.Store
	mu       sync.Mutex
	inFlight int32
	peak     int32
}

func (s *countingStore) CreateHotel(ctx context.Context, h *domain.Hotel) error {
	n := atomic.AddInt32(&s.inFlight, 1)
	s.mu.Lock()
	if n > s.peak {
		s.peak = n
	}
	s.mu.Unlock()
	time.Sleep(5 * time.Millisecond)
	defer atomic.AddInt32(&s.inFlight, -1)
	return s.Store.CreateHotel(ctx, h)
}

func catalogEntry(name string, rating int) domain.CatalogEntry {
	return domain.CatalogEntry{
		Name: name, Location: "Coast", Price: ptr(120.0), Rooms: ptr(10),
		Reviews: []domain.ReviewInput{
			{Author: "Ann", Comment: "Lovely", Rating: ptr(rating)},
		},
		RoomTypes: []domain.RoomTypeInput{
			{Type: "Double", Description: "Two beds", Price: ptr(90.0)},
		},
	}
}

func TestImport_RunCountsAndLinks(t *testing.T) {
	store := memory.New()
	cmd := app.NewCommandService(store, nil)
	src := fakeSource{entries: []domain.CatalogEntry{
		catalogEntry("Seaside Hotel", 5),
		catalogEntry("Harbor Hotel", 4),
		catalogEntry("Broken Hotel", 9), // rating out of range
		{Name: "No"},                    // invalid hotel
	}}

	stats, err := app.NewImportService(src, cmd).Run(context.Background(), 2)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	// the broken-rating hotel is created before its review fails
	if stats.Hotels != 2 || stats.Reviews != 2 || stats.RoomTypes != 2 || stats.Failed != 2 {
		t.Fatalf("unexpected stats: %+v", stats)
	}

	hs, _ := store.ListHotels(context.Background())
	linked := 0
	for _, h := range hs {
		if h.Name == "Seaside Hotel" || h.Name == "Harbor Hotel" {
			if len(h.Reviews) != 1 || len(h.RoomTypes) != 1 {
				t.Fatalf("hotel %s not fully linked: %+v", h.Name, h)
			}
			linked++
		}
	}
	if linked != 2 {
		t.Fatalf("expected 2 linked hotels, got %d", linked)
	}
}

func TestImport_BoundsConcurrency(t *testing.T) {
	store := &countingStore{Store: memory.New()}
	cmd := app.NewCommandService(store, nil)
	var entries []domain.CatalogEntry
	for i := 0; i < 12; i++ {
		entries = append(entries, domain.CatalogEntry{Name: "Hotel", Location: "X", Price: ptr(1.0), Rooms: ptr(1)})
	}

	stats, err := app.NewImportService(fakeSource{entries: entries}, cmd).Run(context.Background(), 3)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if stats.Hotels != 12 {
		t.Fatalf("expected 12 hotels, got %+v", stats)
	}
	if store.peak > 3 {
		t.Fatalf("expected at most 3 concurrent imports, saw %d", store.peak)
	}
}

func TestImport_LoadError(t *testing.T) {
	boom := errors.New("feed unavailable")
	_, err := app.NewImportService(fakeSource{err: boom}, app.NewCommandService(memory.New(), nil)).Run(context.Background(), 1)
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped load error, got %v", err)
	}
}
