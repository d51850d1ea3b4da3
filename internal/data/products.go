package data

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// ProductsStore performs listing DB operations. Ownership is part of every
// write filter, so only the seller can change or remove a listing.
type ProductsStore struct {
	coll *mongo.Collection
}

// NewProductsStore returns a ProductsStore using the provided collection.
func NewProductsStore(coll *mongo.Collection) *ProductsStore {
	return &ProductsStore{coll: coll}
}

// newestFirst orders by creation time with _id as tie breaker so offset
// paging is stable.
var newestFirst = bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}

// InsertProduct stores a new listing. Status is always Active on creation.
func (s *ProductsStore) InsertProduct(ctx context.Context, p *Product) (*Product, error) {
	now := time.Now().UTC()
	p.ID = bson.NilObjectID
	p.Status = StatusActive
	p.CreatedAt, p.UpdatedAt = now, now
	if p.Images == nil {
		p.Images = []string{}
	}

	result, err := s.coll.InsertOne(ctx, p)
	if err != nil {
		return nil, err
	}
	p.ID = result.InsertedID.(bson.ObjectID)
	return p, nil
}

// ListActive returns one window of Active listings, newest first.
func (s *ProductsStore) ListActive(ctx context.Context, offset, limit int64) ([]*Product, error) {
	opts := options.Find().SetSort(newestFirst).SetSkip(offset)
	if limit > 0 {
		opts.SetLimit(limit)
	}
	return s.find(ctx, bson.M{"status": StatusActive}, opts)
}

// GetProduct returns one listing.
func (s *ProductsStore) GetProduct(ctx context.Context, id bson.ObjectID) (*Product, error) {
	var p Product
	if err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&p); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// GetProducts returns the listings found for ids, newest first; unknown
// ids are skipped.
func (s *ProductsStore) GetProducts(ctx context.Context, ids []bson.ObjectID) ([]*Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	return s.find(ctx, bson.M{"_id": bson.M{"$in": ids}}, options.Find().SetSort(newestFirst))
}

// ListBySeller returns every listing of a seller regardless of status.
func (s *ProductsStore) ListBySeller(ctx context.Context, sellerID bson.ObjectID) ([]*Product, error) {
	return s.find(ctx, bson.M{"seller_id": sellerID}, options.Find().SetSort(newestFirst))
}

// UpdateProduct applies patch to a listing owned by sellerID.
func (s *ProductsStore) UpdateProduct(ctx context.Context, id, sellerID bson.ObjectID, patch ProductPatch) (*Product, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var p Product
	err := s.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": id, "seller_id": sellerID},
		bson.M{"$set": patch.setDoc(time.Now().UTC())},
		opts,
	).Decode(&p)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, s.missOrForbidden(ctx, id)
		}
		return nil, err
	}
	return &p, nil
}

// DeleteProduct hard-deletes a listing owned by sellerID.
func (s *ProductsStore) DeleteProduct(ctx context.Context, id, sellerID bson.ObjectID) error {
	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": id, "seller_id": sellerID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return s.missOrForbidden(ctx, id)
	}
	return nil
}

// missOrForbidden tells apart "no such listing" from "not yours" after an
// owner-filtered write matched nothing.
func (s *ProductsStore) missOrForbidden(ctx context.Context, id bson.ObjectID) error {
	n, err := s.coll.CountDocuments(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if n > 0 {
		return ErrForbidden
	}
	return ErrNotFound
}

func (s *ProductsStore) find(ctx context.Context, filter bson.M, opts *options.FindOptionsBuilder) ([]*Product, error) {
	cursor, err := s.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var out []*Product
	if err := cursor.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (p ProductPatch) setDoc(now time.Time) bson.M {
	set := bson.M{"updated_at": now}
	if p.Title != nil {
		set["title"] = *p.Title
	}
	if p.Description != nil {
		set["description"] = *p.Description
	}
	if p.Price != nil {
		set["price"] = *p.Price
	}
	if p.Negotiable != nil {
		set["negotiable"] = *p.Negotiable
	}
	if p.Condition != nil {
		set["condition"] = *p.Condition
	}
	if p.Category != nil {
		set["category"] = *p.Category
	}
	if p.Location != nil {
		set["location"] = *p.Location
	}
	if p.Images != nil {
		images := *p.Images
		if images == nil {
			images = []string{}
		}
		set["images"] = images
	}
	if p.Status != nil {
		set["status"] = *p.Status
	}
	return set
}
