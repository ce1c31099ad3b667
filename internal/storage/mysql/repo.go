package mysql

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"hotelhub/internal/adapters/observability"
	"hotelhub/internal/domain"
)

const backend = "mysql"

type Repo struct {
	db  *sql.DB
	now func() time.Time
}

func New(db *sql.DB) *Repo {
	return &Repo{db: db, now: func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) }}
}

func observe(op string, start time.Time, err *error) {
	observability.ObserveStore(backend, op, start, *err)
}

// ids are UUID strings; anything else cannot name a row
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// inClause returns "(?,?,...)" and the args for the well-formed ids.
func inClause(ids []string) (string, []any) {
	args := make([]any, 0, len(ids))
	for _, id := range ids {
		if validID(id) {
			args = append(args, id)
		}
	}
	if len(args) == 0 {
		return "", nil
	}
	return "(" + strings.TrimSuffix(strings.Repeat("?,", len(args)), ",") + ")", args
}

// withTx runs fn inside a transaction and commits when fn returns nil.
func (r *Repo) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func lockHotel(ctx context.Context, tx *sql.Tx, id string) error {
	var got string
	if err := tx.QueryRowContext(ctx, lockHotelSQL, id).Scan(&got); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrNotFound
		}
		return err
	}
	return nil
}

func (r *Repo) CreateHotel(ctx context.Context, h *domain.Hotel) (err error) {
	defer observe("create_hotel", time.Now(), &err)
	id := uuid.NewString()
	err = r.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, insertHotelSQL,
			id, h.Name, h.Location, h.Price, h.Rooms, h.CreatedAt, h.UpdatedAt,
		); err != nil {
			return err
		}
		for _, rid := range h.Reviews {
			if _, err := tx.ExecContext(ctx, insertReviewRefSQL, id, rid); err != nil {
				return err
			}
		}
		for _, tid := range h.RoomTypes {
			if _, err := tx.ExecContext(ctx, insertRoomTypeRefSQL, id, tid); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	h.ID = id
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanHotel(s rowScanner) (domain.Hotel, error) {
	var h domain.Hotel
	err := s.Scan(&h.ID, &h.Name, &h.Location, &h.Price, &h.Rooms, &h.CreatedAt, &h.UpdatedAt)
	h.Reviews = []string{}
	h.RoomTypes = []string{}
	return h, err
}

// refsByHotel groups an ordered (hotel_id, ref_id) listing by hotel.
func (r *Repo) refsByHotel(ctx context.Context, query string) (map[string][]string, error) {
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := map[string][]string{}
	for rows.Next() {
		var hid, ref string
		if err := rows.Scan(&hid, &ref); err != nil {
			return nil, err
		}
		out[hid] = append(out[hid], ref)
	}
	return out, rows.Err()
}

func (r *Repo) refsOf(ctx context.Context, query, hotelID string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, query, hotelID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []string{}
	for rows.Next() {
		var ref string
		if err := rows.Scan(&ref); err != nil {
			return nil, err
		}
		out = append(out, ref)
	}
	return out, rows.Err()
}

func (r *Repo) ListHotels(ctx context.Context) (out []domain.Hotel, err error) {
	defer observe("list_hotels", time.Now(), &err)
	rows, err := r.db.QueryContext(ctx, selectHotelsSQL)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out = []domain.Hotel{}
	for rows.Next() {
		h, err := scanHotel(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}

	reviews, err := r.refsByHotel(ctx, selectAllReviewRefsSQL)
	if err != nil {
		return nil, err
	}
	roomTypes, err := r.refsByHotel(ctx, selectAllRoomTypeRefsSQL)
	if err != nil {
		return nil, err
	}
	for i := range out {
		if refs, ok := reviews[out[i].ID]; ok {
			out[i].Reviews = refs
		}
		if refs, ok := roomTypes[out[i].ID]; ok {
			out[i].RoomTypes = refs
		}
	}
	return out, nil
}

func (r *Repo) GetHotel(ctx context.Context, id string) (_ domain.Hotel, err error) {
	defer observe("get_hotel", time.Now(), &err)
	if !validID(id) {
		return domain.Hotel{}, domain.ErrNotFound
	}
	h, err := scanHotel(r.db.QueryRowContext(ctx, selectHotelSQL, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			err = domain.ErrNotFound
		}
		return domain.Hotel{}, err
	}
	if h.Reviews, err = r.refsOf(ctx, selectReviewRefsSQL, id); err != nil {
		return domain.Hotel{}, err
	}
	if h.RoomTypes, err = r.refsOf(ctx, selectRoomTypeRefsSQL, id); err != nil {
		return domain.Hotel{}, err
	}
	return h, nil
}

// DeleteHotel removes the hotel and its reviews in one transaction; the
// reference rows go with the hotel through ON DELETE CASCADE.
func (r *Repo) DeleteHotel(ctx context.Context, id string) (err error) {
	defer observe("delete_hotel", time.Now(), &err)
	if !validID(id) {
		return domain.ErrNotFound
	}
	return r.withTx(ctx, func(tx *sql.Tx) error {
		if err := lockHotel(ctx, tx, id); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, deleteHotelReviewsSQL, id); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, deleteHotelSQL, id)
		return err
	})
}

func (r *Repo) AddReview(ctx context.Context, rv *domain.Review) (err error) {
	defer observe("add_review", time.Now(), &err)
	if !validID(rv.Hotel) {
		return domain.ErrNotFound
	}
	id := uuid.NewString()
	err = r.withTx(ctx, func(tx *sql.Tx) error {
		if err := lockHotel(ctx, tx, rv.Hotel); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, insertReviewSQL,
			id, rv.Hotel, rv.Author, rv.Comment, rv.Rating, rv.CreatedAt, rv.UpdatedAt,
		); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, insertReviewRefSQL, rv.Hotel, id); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, touchHotelSQL, r.now(), rv.Hotel)
		return err
	})
	if err != nil {
		return err
	}
	rv.ID = id
	return nil
}

func (r *Repo) FindReviews(ctx context.Context, ids []string) (out []domain.Review, err error) {
	defer observe("find_reviews", time.Now(), &err)
	in, args := inClause(ids)
	if in == "" {
		return []domain.Review{}, nil
	}
	rows, err := r.db.QueryContext(ctx, selectReviewsPrefix+in, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out = []domain.Review{}
	for rows.Next() {
		var rv domain.Review
		if err := rows.Scan(&rv.ID, &rv.Hotel, &rv.Author, &rv.Comment, &rv.Rating, &rv.CreatedAt, &rv.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, rv)
	}
	return out, rows.Err()
}

func (r *Repo) DeleteReview(ctx context.Context, hotelID, reviewID string) (rv domain.Review, err error) {
	defer observe("delete_review", time.Now(), &err)
	if !validID(reviewID) {
		return domain.Review{}, domain.ErrNotFound
	}
	err = r.withTx(ctx, func(tx *sql.Tx) error {
		if err := tx.QueryRowContext(ctx, lockReviewSQL, reviewID).Scan(
			&rv.ID, &rv.Hotel, &rv.Author, &rv.Comment, &rv.Rating, &rv.CreatedAt, &rv.UpdatedAt,
		); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return domain.ErrNotFound
			}
			return err
		}
		if _, err := tx.ExecContext(ctx, deleteReviewSQL, reviewID); err != nil {
			return err
		}
		// a missing hotel simply matches no rows
		if _, err := tx.ExecContext(ctx, deleteReviewRefSQL, hotelID, reviewID); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, touchHotelSQL, r.now(), hotelID)
		return err
	})
	if err != nil {
		return domain.Review{}, err
	}
	return rv, nil
}

func (r *Repo) CreateRoomType(ctx context.Context, rt *domain.RoomType) (err error) {
	defer observe("create_room_type", time.Now(), &err)
	id := uuid.NewString()
	if _, err = r.db.ExecContext(ctx, insertRoomTypeSQL,
		id, rt.Type, rt.Description, rt.Price, rt.CreatedAt, rt.UpdatedAt,
	); err != nil {
		return err
	}
	rt.ID = id
	return nil
}

func scanRoomType(s rowScanner) (domain.RoomType, error) {
	var rt domain.RoomType
	err := s.Scan(&rt.ID, &rt.Type, &rt.Description, &rt.Price, &rt.CreatedAt, &rt.UpdatedAt)
	return rt, err
}

func (r *Repo) GetRoomType(ctx context.Context, id string) (_ domain.RoomType, err error) {
	defer observe("get_room_type", time.Now(), &err)
	if !validID(id) {
		return domain.RoomType{}, domain.ErrNotFound
	}
	rt, err := scanRoomType(r.db.QueryRowContext(ctx, selectRoomTypeSQL, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			err = domain.ErrNotFound
		}
		return domain.RoomType{}, err
	}
	return rt, nil
}

func (r *Repo) FindRoomTypes(ctx context.Context, ids []string) (out []domain.RoomType, err error) {
	defer observe("find_room_types", time.Now(), &err)
	in, args := inClause(ids)
	if in == "" {
		return []domain.RoomType{}, nil
	}
	rows, err := r.db.QueryContext(ctx, selectRoomTypesPrefix+in, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out = []domain.RoomType{}
	for rows.Next() {
		rt, err := scanRoomType(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rt)
	}
	return out, rows.Err()
}

func (r *Repo) LinkRoomType(ctx context.Context, hotelID, roomTypeID string) (err error) {
	defer observe("link_room_type", time.Now(), &err)
	if !validID(hotelID) {
		return domain.ErrNotFound
	}
	return r.withTx(ctx, func(tx *sql.Tx) error {
		if err := lockHotel(ctx, tx, hotelID); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, insertRoomTypeRefSQL, hotelID, roomTypeID); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, touchHotelSQL, r.now(), hotelID)
		return err
	})
}

func (r *Repo) Ping(ctx context.Context) (err error) {
	defer observe("ping", time.Now(), &err)
	return r.db.PingContext(ctx)
}
