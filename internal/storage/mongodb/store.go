// Package mongodb persists hotels, reviews and room types as MongoDB
// documents. Hotels keep ordered arrays of review and room type ObjectIDs;
// the arrays are only ever changed with $push and $pull.
package mongodb

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"hotelhub/internal/adapters/observability"
	"hotelhub/internal/domain"
)

const backend = "mongo"

const (
	hotelsColl    = "hotels"
	reviewsColl   = "reviews"
	roomTypesColl = "roomtypes"
)

type hotelDoc struct {
	ID        primitive.ObjectID   `bson:"_id"`
	Name      string               `bson:"name"`
	Location  string               `bson:"location"`
	Price     float64              `bson:"price"`
	Rooms     int                  `bson:"rooms"`
	Reviews   []primitive.ObjectID `bson:"reviews"`
	RoomTypes []primitive.ObjectID `bson:"roomTypes"`
	CreatedAt time.Time            `bson:"createdAt"`
	UpdatedAt time.Time            `bson:"updatedAt"`
}

type reviewDoc struct {
	ID        primitive.ObjectID `bson:"_id"`
	Author    string             `bson:"author"`
	Comment   string             `bson:"comment"`
	Rating    int                `bson:"rating"`
	Hotel     primitive.ObjectID `bson:"hotel"`
	CreatedAt time.Time          `bson:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt"`
}

type roomTypeDoc struct {
	ID          primitive.ObjectID `bson:"_id"`
	Type        string             `bson:"type"`
	Description string             `bson:"description"`
	Price       float64            `bson:"price"`
	CreatedAt   time.Time          `bson:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt"`
}

type Store struct {
	db        *mongo.Database
	hotels    *mongo.Collection
	reviews   *mongo.Collection
	roomTypes *mongo.Collection
	now       func() time.Time
}

func New(db *mongo.Database) *Store {
	return &Store{
		db:        db,
		hotels:    db.Collection(hotelsColl),
		reviews:   db.Collection(reviewsColl),
		roomTypes: db.Collection(roomTypesColl),
		now:       func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) },
	}
}

// Connect dials uri and checks the primary is reachable.
func Connect(ctx context.Context, uri string) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return client, nil
}

// EnsureIndexes creates the secondary index used by the hotel cascade delete.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.reviews.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "hotel", Value: 1}},
	})
	return err
}

func observe(op string, start time.Time, err *error) {
	observability.ObserveStore(backend, op, start, *err)
}

func oid(id string) (primitive.ObjectID, bool) {
	v, err := primitive.ObjectIDFromHex(id)
	return v, err == nil
}

// oids converts the well-formed ids and drops the rest.
func oids(ids []string) []primitive.ObjectID {
	out := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		if v, ok := oid(id); ok {
			out = append(out, v)
		}
	}
	return out
}

func hexes(ids []primitive.ObjectID) []string {
	out := make([]string, len(ids))
	for i, v := range ids {
		out[i] = v.Hex()
	}
	return out
}

func (d hotelDoc) toDomain() domain.Hotel {
	return domain.Hotel{
		ID:        d.ID.Hex(),
		Name:      d.Name,
		Location:  d.Location,
		Price:     d.Price,
		Rooms:     d.Rooms,
		Reviews:   hexes(d.Reviews),
		RoomTypes: hexes(d.RoomTypes),
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

func (d reviewDoc) toDomain() domain.Review {
	return domain.Review{
		ID:        d.ID.Hex(),
		Author:    d.Author,
		Comment:   d.Comment,
		Rating:    d.Rating,
		Hotel:     d.Hotel.Hex(),
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

func (d roomTypeDoc) toDomain() domain.RoomType {
	return domain.RoomType{
		ID:          d.ID.Hex(),
		Type:        d.Type,
		Description: d.Description,
		Price:       d.Price,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

func (s *Store) CreateHotel(ctx context.Context, h *domain.Hotel) (err error) {
	defer observe("create_hotel", time.Now(), &err)
	doc := hotelDoc{
		ID:        primitive.NewObjectID(),
		Name:      h.Name,
		Location:  h.Location,
		Price:     h.Price,
		Rooms:     h.Rooms,
		Reviews:   oids(h.Reviews),
		RoomTypes: oids(h.RoomTypes),
		CreatedAt: h.CreatedAt,
		UpdatedAt: h.UpdatedAt,
	}
	if _, err = s.hotels.InsertOne(ctx, doc); err != nil {
		return err
	}
	h.ID = doc.ID.Hex()
	return nil
}

func (s *Store) ListHotels(ctx context.Context) (out []domain.Hotel, err error) {
	defer observe("list_hotels", time.Now(), &err)
	cur, err := s.hotels.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, err
	}
	var docs []hotelDoc
	if err = cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	out = make([]domain.Hotel, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toDomain())
	}
	return out, nil
}

func (s *Store) GetHotel(ctx context.Context, id string) (_ domain.Hotel, err error) {
	defer observe("get_hotel", time.Now(), &err)
	key, ok := oid(id)
	if !ok {
		return domain.Hotel{}, domain.ErrNotFound
	}
	var d hotelDoc
	if err = s.hotels.FindOne(ctx, bson.M{"_id": key}).Decode(&d); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			err = domain.ErrNotFound
		}
		return domain.Hotel{}, err
	}
	return d.toDomain(), nil
}

func (s *Store) DeleteHotel(ctx context.Context, id string) (err error) {
	defer observe("delete_hotel", time.Now(), &err)
	key, ok := oid(id)
	if !ok {
		return domain.ErrNotFound
	}
	res, err := s.hotels.DeleteOne(ctx, bson.M{"_id": key})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return domain.ErrNotFound
	}
	// The hotel is gone once DeleteOne returns, so a failed cascade only
	// leaves unreachable reviews behind and the delete still succeeds.
	cctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if _, cerr := s.reviews.DeleteMany(cctx, bson.M{"hotel": key}); cerr != nil {
		log.Warn().Err(cerr).Str("hotel", id).Msg("review cascade failed, orphaned reviews left")
	}
	return nil
}

// AddReview inserts the review and then pushes its id onto the hotel. When
// the push fails or the hotel has vanished the inserted review is removed
// again so no orphan stays behind.
func (s *Store) AddReview(ctx context.Context, r *domain.Review) (err error) {
	defer observe("add_review", time.Now(), &err)
	hotel, ok := oid(r.Hotel)
	if !ok {
		return domain.ErrNotFound
	}
	doc := reviewDoc{
		ID:        primitive.NewObjectID(),
		Author:    r.Author,
		Comment:   r.Comment,
		Rating:    r.Rating,
		Hotel:     hotel,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
	if _, err = s.reviews.InsertOne(ctx, doc); err != nil {
		return err
	}
	res, err := s.hotels.UpdateOne(ctx, bson.M{"_id": hotel}, bson.M{
		"$push": bson.M{"reviews": doc.ID},
		"$set":  bson.M{"updatedAt": s.now()},
	})
	if err == nil && res.MatchedCount == 0 {
		err = domain.ErrNotFound
	}
	if err != nil {
		cctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		_, _ = s.reviews.DeleteOne(cctx, bson.M{"_id": doc.ID})
		return err
	}
	r.ID = doc.ID.Hex()
	return nil
}

func (s *Store) FindReviews(ctx context.Context, ids []string) (out []domain.Review, err error) {
	defer observe("find_reviews", time.Now(), &err)
	keys := oids(ids)
	if len(keys) == 0 {
		return []domain.Review{}, nil
	}
	cur, err := s.reviews.Find(ctx, bson.M{"_id": bson.M{"$in": keys}})
	if err != nil {
		return nil, err
	}
	var docs []reviewDoc
	if err = cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	out = make([]domain.Review, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toDomain())
	}
	return out, nil
}

func (s *Store) DeleteReview(ctx context.Context, hotelID, reviewID string) (_ domain.Review, err error) {
	defer observe("delete_review", time.Now(), &err)
	key, ok := oid(reviewID)
	if !ok {
		return domain.Review{}, domain.ErrNotFound
	}
	var d reviewDoc
	if err = s.reviews.FindOneAndDelete(ctx, bson.M{"_id": key}).Decode(&d); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			err = domain.ErrNotFound
		}
		return domain.Review{}, err
	}
	hotel, ok := oid(hotelID)
	if !ok {
		return d.toDomain(), nil
	}
	// zero matches means the hotel is gone, which is fine here
	if _, err = s.hotels.UpdateOne(ctx, bson.M{"_id": hotel}, bson.M{
		"$pull": bson.M{"reviews": key},
		"$set":  bson.M{"updatedAt": s.now()},
	}); err != nil {
		return domain.Review{}, err
	}
	return d.toDomain(), nil
}

func (s *Store) CreateRoomType(ctx context.Context, rt *domain.RoomType) (err error) {
	defer observe("create_room_type", time.Now(), &err)
	doc := roomTypeDoc{
		ID:          primitive.NewObjectID(),
		Type:        rt.Type,
		Description: rt.Description,
		Price:       rt.Price,
		CreatedAt:   rt.CreatedAt,
		UpdatedAt:   rt.UpdatedAt,
	}
	if _, err = s.roomTypes.InsertOne(ctx, doc); err != nil {
		return err
	}
	rt.ID = doc.ID.Hex()
	return nil
}

func (s *Store) GetRoomType(ctx context.Context, id string) (_ domain.RoomType, err error) {
	defer observe("get_room_type", time.Now(), &err)
	key, ok := oid(id)
	if !ok {
		return domain.RoomType{}, domain.ErrNotFound
	}
	var d roomTypeDoc
	if err = s.roomTypes.FindOne(ctx, bson.M{"_id": key}).Decode(&d); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			err = domain.ErrNotFound
		}
		return domain.RoomType{}, err
	}
	return d.toDomain(), nil
}

func (s *Store) FindRoomTypes(ctx context.Context, ids []string) (out []domain.RoomType, err error) {
	defer observe("find_room_types", time.Now(), &err)
	keys := oids(ids)
	if len(keys) == 0 {
		return []domain.RoomType{}, nil
	}
	cur, err := s.roomTypes.Find(ctx, bson.M{"_id": bson.M{"$in": keys}})
	if err != nil {
		return nil, err
	}
	var docs []roomTypeDoc
	if err = cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	out = make([]domain.RoomType, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toDomain())
	}
	return out, nil
}

func (s *Store) LinkRoomType(ctx context.Context, hotelID, roomTypeID string) (err error) {
	defer observe("link_room_type", time.Now(), &err)
	hotel, ok := oid(hotelID)
	if !ok {
		return domain.ErrNotFound
	}
	rt, ok := oid(roomTypeID)
	if !ok {
		return domain.ErrNotFound
	}
	res, err := s.hotels.UpdateOne(ctx, bson.M{"_id": hotel}, bson.M{
		"$push": bson.M{"roomTypes": rt},
		"$set":  bson.M{"updatedAt": s.now()},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.Client().Ping(ctx, readpref.Primary())
}
