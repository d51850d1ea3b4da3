package data

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// WishlistsStore performs wishlist DB operations.
type WishlistsStore struct {
	coll *mongo.Collection
}

// NewWishlistsStore returns a WishlistsStore using the provided collection.
func NewWishlistsStore(coll *mongo.Collection) *WishlistsStore {
	return &WishlistsStore{coll: coll}
}

// ListProductIDs returns the wishlisted product ids of a user in the order
// they were added.
func (s *WishlistsStore) ListProductIDs(ctx context.Context, userID bson.ObjectID) ([]bson.ObjectID, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})
	cursor, err := s.coll.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var entries []WishlistEntry
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, err
	}
	ids := make([]bson.ObjectID, 0, len(entries))
	for _, e := range entries {
		ids = append(ids, e.ProductID)
	}
	return ids, nil
}

// AddProduct wishlists a product. Adding an existing pair is a no-op.
func (s *WishlistsStore) AddProduct(ctx context.Context, userID, productID bson.ObjectID) error {
	_, err := s.coll.InsertOne(ctx, &WishlistEntry{
		UserID:    userID,
		ProductID: productID,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil && !mongo.IsDuplicateKeyError(err) {
		return err
	}
	return nil
}

// RemoveProduct drops a product from a user's wishlist. Missing pairs are
// not an error.
func (s *WishlistsStore) RemoveProduct(ctx context.Context, userID, productID bson.ObjectID) error {
	_, err := s.coll.DeleteOne(ctx, bson.M{"user_id": userID, "product_id": productID})
	return err
}

// RemoveProductEverywhere drops a deleted listing from every wishlist and
// returns the users whose wishlist changed.
func (s *WishlistsStore) RemoveProductEverywhere(ctx context.Context, productID bson.ObjectID) ([]bson.ObjectID, error) {
	filter := bson.M{"product_id": productID}

	cursor, err := s.coll.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	var entries []WishlistEntry
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, nil
	}

	if _, err := s.coll.DeleteMany(ctx, filter); err != nil {
		return nil, err
	}
	users := make([]bson.ObjectID, 0, len(entries))
	for _, e := range entries {
		users = append(users, e.UserID)
	}
	return users, nil
}
