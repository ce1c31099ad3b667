//go:build integration || !unit

package mongodb_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"hotelhub/internal/domain"
	"hotelhub/internal/storage/mongodb"
)

func startMongo(t *testing.T) *mongo.Database {
	t.Helper()
	pool, err := dockertest.NewPool("")
	if err != nil {
		t.Fatalf("dockertest: %v", err)
	}
	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: "mongo",
		Tag:        "7",
		Cmd:        []string{"--setParameter", "enableTestCommands=1"},
	}, func(hc *docker.HostConfig) {
		hc.AutoRemove = true
		hc.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		t.Fatalf("run mongo: %v", err)
	}
	t.Cleanup(func() { _ = pool.Purge(resource) })

	uri := fmt.Sprintf("mongodb://127.0.0.1:%s", resource.GetPort("27017/tcp"))
	var client *mongo.Client
	if err := pool.Retry(func() error {
		var e error
		client, e = mongodb.Connect(context.Background(), uri)
		return e
	}); err != nil {
		t.Fatalf("connect mongo: %v", err)
	}
	t.Cleanup(func() { _ = client.Disconnect(context.Background()) })
	return client.Database("hotelhub_test")
}

func TestStore_Mongo_Lifecycle(t *testing.T) {
	st := mongodb.New(startMongo(t))
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := st.EnsureIndexes(ctx); err != nil {
		t.Fatalf("EnsureIndexes: %v", err)
	}
	if err := st.Ping(ctx); err != nil {
		t.Fatalf("Ping: %v", err)
	}

	now := time.Now().UTC().Truncate(time.Millisecond)
	h := domain.Hotel{Name: "Grand", Location: "Paris", Price: 200, Rooms: 50,
		Reviews: []string{}, RoomTypes: []string{}, CreatedAt: now, UpdatedAt: now}
	if err := st.CreateHotel(ctx, &h); err != nil {
		t.Fatalf("CreateHotel: %v", err)
	}
	if len(h.ID) != 24 {
		t.Fatalf("expected ObjectID hex, got %q", h.ID)
	}

	r1 := domain.Review{Author: "Ann", Comment: "Great", Rating: 5, Hotel: h.ID, CreatedAt: now, UpdatedAt: now}
	r2 := domain.Review{Author: "Bob", Comment: "Fine", Rating: 3, Hotel: h.ID, CreatedAt: now, UpdatedAt: now}
	for _, r := range []*domain.Review{&r1, &r2} {
		if err := st.AddReview(ctx, r); err != nil {
			t.Fatalf("AddReview: %v", err)
		}
	}

	rt := domain.RoomType{Type: "Suite", Description: "Big", Price: 300, CreatedAt: now, UpdatedAt: now}
	if err := st.CreateRoomType(ctx, &rt); err != nil {
		t.Fatalf("CreateRoomType: %v", err)
	}
	for i := 0; i < 2; i++ {
		if err := st.LinkRoomType(ctx, h.ID, rt.ID); err != nil {
			t.Fatalf("LinkRoomType: %v", err)
		}
	}

	got, err := st.GetHotel(ctx, h.ID)
	if err != nil {
		t.Fatalf("GetHotel: %v", err)
	}
	if len(got.Reviews) != 2 || got.Reviews[0] != r1.ID || got.Reviews[1] != r2.ID {
		t.Fatalf("reviews out of order: %v", got.Reviews)
	}
	if len(got.RoomTypes) != 2 || got.RoomTypes[0] != rt.ID || got.RoomTypes[1] != rt.ID {
		t.Fatalf("room types not duplicated: %v", got.RoomTypes)
	}

	revs, err := st.FindReviews(ctx, append(got.Reviews, "not-an-id"))
	if err != nil || len(revs) != 2 {
		t.Fatalf("FindReviews: %v %+v", err, revs)
	}

	if _, err := st.DeleteReview(ctx, h.ID, r1.ID); err != nil {
		t.Fatalf("DeleteReview: %v", err)
	}
	if _, err := st.DeleteReview(ctx, h.ID, r1.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("second DeleteReview: want ErrNotFound, got %v", err)
	}
	got, _ = st.GetHotel(ctx, h.ID)
	if len(got.Reviews) != 1 || got.Reviews[0] != r2.ID {
		t.Fatalf("pull failed: %v", got.Reviews)
	}

	if err := st.DeleteHotel(ctx, h.ID); err != nil {
		t.Fatalf("DeleteHotel: %v", err)
	}
	if revs, _ := st.FindReviews(ctx, []string{r2.ID}); len(revs) != 0 {
		t.Fatalf("reviews should cascade, got %+v", revs)
	}
	if _, err := st.GetRoomType(ctx, rt.ID); err != nil {
		t.Fatalf("room types must survive hotel delete: %v", err)
	}
	if _, err := st.GetHotel(ctx, "xyz"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("malformed id: want ErrNotFound, got %v", err)
	}
}

func TestStore_Mongo_AddReviewToMissingHotelLeavesNoOrphan(t *testing.T) {
	st := mongodb.New(startMongo(t))
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	ghost := "65a1b2c3d4e5f60718293a4b"
	r := domain.Review{Author: "Ann", Comment: "x", Rating: 4, Hotel: ghost}
	if err := st.AddReview(ctx, &r); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
	n, err := st.CountReviews(ctx)
	if err != nil {
		t.Fatalf("CountReviews: %v", err)
	}
	if n != 0 {
		t.Fatalf("compensation failed, %d reviews left", n)
	}
}

func TestStore_Mongo_DeleteHotelSucceedsWhenCascadeFails(t *testing.T) {
	db := startMongo(t)
	st := mongodb.New(db)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	h := domain.Hotel{Name: "Grand", Location: "Paris", Price: 200, Rooms: 50, Reviews: []string{}, RoomTypes: []string{}}
	if err := st.CreateHotel(ctx, &h); err != nil {
		t.Fatalf("CreateHotel: %v", err)
	}
	r := domain.Review{Author: "Ann", Comment: "Great", Rating: 5, Hotel: h.ID}
	if err := st.AddReview(ctx, &r); err != nil {
		t.Fatalf("AddReview: %v", err)
	}

	// let the hotel delete through, fail every delete after it
	admin := db.Client().Database("admin")
	if err := admin.RunCommand(ctx, bson.D{
		{Key: "configureFailPoint", Value: "failCommand"},
		{Key: "mode", Value: bson.M{"skip": 1}},
		{Key: "data", Value: bson.M{"failCommands": []string{"delete"}, "errorCode": 2}},
	}).Err(); err != nil {
		t.Fatalf("configureFailPoint: %v", err)
	}
	err := st.DeleteHotel(ctx, h.ID)
	_ = admin.RunCommand(context.Background(), bson.D{
		{Key: "configureFailPoint", Value: "failCommand"},
		{Key: "mode", Value: "off"},
	}).Err()
	if err != nil {
		t.Fatalf("DeleteHotel should succeed once the hotel is gone, got %v", err)
	}

	if _, err := st.GetHotel(ctx, h.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("hotel should be gone, got %v", err)
	}
	if n, _ := st.CountReviews(ctx); n != 1 {
		t.Fatalf("expected the orphaned review to remain, got %d", n)
	}
}
