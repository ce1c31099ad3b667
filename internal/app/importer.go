package app

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"hotelhub/internal/domain"
)

// ImportService loads a catalog and writes it through the CommandService, so
// imported data obeys the same validation and reference rules as the API.
type ImportService struct {
	src domain.CatalogSource
	cmd *CommandService
}

func NewImportService(src domain.CatalogSource, cmd *CommandService) *ImportService {
	return &ImportService{src: src, cmd: cmd}
}

type ImportStats struct {
	Hotels    int64 `json:"hotels"`
	Reviews   int64 `json:"reviews"`
	RoomTypes int64 `json:"roomTypes"`
	Failed    int64 `json:"failed"`
}

// Run imports every catalog entry with at most workers entries in flight.
// A failing entry is logged and counted; it does not stop the run.
func (s *ImportService) Run(ctx context.Context, workers int) (ImportStats, error) {
	entries, err := s.src.Load(ctx)
	if err != nil {
		return ImportStats{}, fmt.Errorf("load catalog: %w", err)
	}
	if workers <= 0 {
		workers = 1
	}

	var (
		stats ImportStats
		wg    sync.WaitGroup
		sem   = semaphore.NewWeighted(int64(workers))
	)
	for i, e := range entries {
		// acquire before launching the goroutine; release inside it
		if err := sem.Acquire(ctx, 1); err != nil {
			wg.Wait()
			return stats, err
		}
		wg.Add(1)
		go func(idx int, e domain.CatalogEntry) {
			defer wg.Done()
			defer sem.Release(1)

			id, nr, nt, err := s.ImportHotel(ctx, e)
			if err != nil {
				atomic.AddInt64(&stats.Failed, 1)
				log.Warn().Int("entry", idx).Str("name", e.Name).Err(err).Msg("import failed")
				return
			}
			atomic.AddInt64(&stats.Hotels, 1)
			atomic.AddInt64(&stats.Reviews, int64(nr))
			atomic.AddInt64(&stats.RoomTypes, int64(nt))
			log.Debug().Str("id", id).Str("name", e.Name).Msg("import ok")
		}(i, e)
	}
	wg.Wait()
	return stats, nil
}

// ImportHotel creates the hotel, its reviews and its room types, linking each
// room type to the hotel. It stops at the first failing write; documents
// created before the failure are kept.
func (s *ImportService) ImportHotel(ctx context.Context, e domain.CatalogEntry) (id string, reviews, roomTypes int, err error) {
	h, err := s.cmd.CreateHotel(ctx, e.Hotel())
	if err != nil {
		return "", 0, 0, err
	}
	for _, rin := range e.Reviews {
		if _, err := s.cmd.CreateReview(ctx, h.ID, rin); err != nil {
			return h.ID, reviews, roomTypes, fmt.Errorf("review by %q: %w", rin.Author, err)
		}
		reviews++
	}
	for _, tin := range e.RoomTypes {
		rt, err := s.cmd.CreateRoomType(ctx, tin)
		if err != nil {
			return h.ID, reviews, roomTypes, fmt.Errorf("room type %q: %w", tin.Type, err)
		}
		if err := s.cmd.LinkRoomType(ctx, h.ID, rt.ID); err != nil {
			return h.ID, reviews, roomTypes, fmt.Errorf("link room type %q: %w", tin.Type, err)
		}
		roomTypes++
	}
	return h.ID, reviews, roomTypes, nil
}
