// Package db manages MongoDB connections and collections.
package db

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
)

// DefaultDatabase is used when New is given an empty database name.
const DefaultDatabase = "campus_market"

// Collection names.
const (
	Users     = "users"
	Profiles  = "profiles"
	Products  = "products"
	Wishlists = "wishlists"
	Messages  = "messages"
)

// Client wraps mongo.Client and exposes collections.
type Client struct {
	// client is the underlying MongoDB connection (thread-safe, can be reused)
	client *mongo.Client

	// db is the market database; collections are created on first write
	db *mongo.Database
}

// New connects to MongoDB and returns a Client.
func New(ctx context.Context, mongoURI, database string) (*Client, error) {
	if database == "" {
		database = DefaultDatabase
	}

	// fail fast if MongoDB is unreachable
	opts := options.Client().
		ApplyURI(mongoURI).
		SetConnectTimeout(10 * time.Second)

	client, err := mongo.Connect(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	// Connect is lazy; the ping is the actual connection test
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	return &Client{
		client: client,
		db:     client.Database(database),
	}, nil
}

// UsersCollection holds credentials (email + bcrypt hash).
func (c *Client) UsersCollection() *mongo.Collection { return c.db.Collection(Users) }

// ProfilesCollection holds public profile data keyed by user id.
func (c *Client) ProfilesCollection() *mongo.Collection { return c.db.Collection(Profiles) }

// ProductsCollection holds listings.
func (c *Client) ProductsCollection() *mongo.Collection { return c.db.Collection(Products) }

// WishlistsCollection holds (user_id, product_id) pairs.
func (c *Client) WishlistsCollection() *mongo.Collection { return c.db.Collection(Wishlists) }

// MessagesCollection holds direct messages.
func (c *Client) MessagesCollection() *mongo.Collection { return c.db.Collection(Messages) }

// Ping checks the primary is reachable; used by the readiness check.
func (c *Client) Ping(ctx context.Context) error {
	return c.client.Ping(ctx, readpref.Primary())
}

// Close disconnects from MongoDB.
func (c *Client) Close(ctx context.Context) error {
	return c.client.Disconnect(ctx)
}

// DropAll removes every market collection. Tests only.
func (c *Client) DropAll(ctx context.Context) error {
	for _, name := range []string{Users, Profiles, Products, Wishlists, Messages} {
		if err := c.db.Collection(name).Drop(ctx); err != nil {
			return fmt.Errorf("drop %s: %w", name, err)
		}
	}
	return nil
}

// CreateIndexes creates the indexes the data stores rely on.
func (c *Client) CreateIndexes(ctx context.Context) error {
	// unique email: duplicate registration fails with a duplicate key error
	_, err := c.UsersCollection().Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("failed to create users index: %w", err)
	}

	// catalog page: status filter, newest first; seller listing
	_, err = c.ProductsCollection().Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "seller_id", Value: 1}, {Key: "created_at", Value: -1}}},
	})
	if err != nil {
		return fmt.Errorf("failed to create product indexes: %w", err)
	}

	// one entry per (user, product)
	_, err = c.WishlistsCollection().Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "product_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("failed to create wishlist index: %w", err)
	}

	_, err = c.MessagesCollection().Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "conversation_key", Value: 1}, {Key: "sent_at", Value: 1}}},
		{Keys: bson.D{{Key: "sender_id", Value: 1}, {Key: "sent_at", Value: 1}}},
		{Keys: bson.D{{Key: "receiver_id", Value: 1}, {Key: "sent_at", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("failed to create message indexes: %w", err)
	}

	return nil
}
