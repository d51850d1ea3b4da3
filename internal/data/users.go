// Package data provides DB models and stores.
package data

import (
	"context"
	"errors"
	"time"

	"github.com/PaulBabatuyi/campusMarket-gRPC/internal/normalize"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

// UsersStore performs user DB operations.
type UsersStore struct {
	// coll is the "users" collection; holds credentials only
	coll *mongo.Collection
}

// NewUsersStore returns a UsersStore using the provided collection.
func NewUsersStore(coll *mongo.Collection) *UsersStore {
	return &UsersStore{coll: coll}
}

// CreateUser inserts a new user document with hashed password.
func (u *UsersStore) CreateUser(ctx context.Context, email, hashedPassword string) (*User, error) {
	now := time.Now().UTC()
	user := &User{
		Email:     normalize.Email(email),
		Password:  hashedPassword, // already hashed by auth.HashPassword
		CreatedAt: now,
		UpdatedAt: now,
	}

	result, err := u.coll.InsertOne(ctx, user)
	if err != nil {
		// unique email index
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrDuplicate
		}
		return nil, err
	}

	// the id ends up in the JWT via auth.GenerateToken
	user.ID = result.InsertedID.(bson.ObjectID)
	return user, nil
}

// GetUserByEmail finds a user by email.
func (u *UsersStore) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	var user User
	err := u.coll.FindOne(ctx, bson.M{"email": normalize.Email(email)}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// GetUserByID finds a user by ObjectID.
func (u *UsersStore) GetUserByID(ctx context.Context, id bson.ObjectID) (*User, error) {
	var user User
	err := u.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// UserExists checks if a user exists by email.
func (u *UsersStore) UserExists(ctx context.Context, email string) (bool, error) {
	// CountDocuments is cheaper than FindOne when only existence matters
	count, err := u.coll.CountDocuments(ctx, bson.M{"email": normalize.Email(email)})
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// UserExistsByID checks if a user exists by id.
func (u *UsersStore) UserExistsByID(ctx context.Context, id bson.ObjectID) (bool, error) {
	count, err := u.coll.CountDocuments(ctx, bson.M{"_id": id})
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// DeleteUser removes a user; used to roll back a registration whose
// profile could not be written.
func (u *UsersStore) DeleteUser(ctx context.Context, id bson.ObjectID) error {
	_, err := u.coll.DeleteOne(ctx, bson.M{"_id": id})
	return err
}
