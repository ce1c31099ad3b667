package mongodb

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
)

func (s *Store) CountReviews(ctx context.Context) (int64, error) {
	return s.reviews.CountDocuments(ctx, bson.M{})
}
