package data

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// ProfilesStore performs profile DB operations.
type ProfilesStore struct {
	coll *mongo.Collection
}

// NewProfilesStore returns a ProfilesStore using the provided collection.
func NewProfilesStore(coll *mongo.Collection) *ProfilesStore {
	return &ProfilesStore{coll: coll}
}

// CreateProfile inserts the profile of a freshly registered user.
func (s *ProfilesStore) CreateProfile(ctx context.Context, p *Profile) error {
	now := time.Now().UTC()
	p.CreatedAt, p.UpdatedAt = now, now
	if _, err := s.coll.InsertOne(ctx, p); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicate
		}
		return err
	}
	return nil
}

// GetProfile returns the profile of one user.
func (s *ProfilesStore) GetProfile(ctx context.Context, id bson.ObjectID) (*Profile, error) {
	var p Profile
	if err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&p); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// GetProfiles returns the profiles found for ids; missing ids are skipped.
func (s *ProfilesStore) GetProfiles(ctx context.Context, ids []bson.ObjectID) ([]*Profile, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	cursor, err := s.coll.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var out []*Profile
	if err := cursor.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateProfile merges patch into the stored profile and returns the result.
func (s *ProfilesStore) UpdateProfile(ctx context.Context, id bson.ObjectID, patch ProfilePatch) (*Profile, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var p Profile
	err := s.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": patch.setDoc(time.Now().UTC())}, opts).Decode(&p)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (p ProfilePatch) setDoc(now time.Time) bson.M {
	set := bson.M{"updated_at": now}
	if p.FullName != nil {
		set["full_name"] = *p.FullName
	}
	if p.StudentID != nil {
		set["student_id"] = *p.StudentID
	}
	if p.PhoneNumber != nil {
		set["phone_number"] = *p.PhoneNumber
	}
	if p.HostelDetails != nil {
		set["hostel_details"] = *p.HostelDetails
	}
	if p.AvatarURL != nil {
		set["avatar_url"] = *p.AvatarURL
	}
	return set
}
