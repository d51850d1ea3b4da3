package data

import (
	"context"
	"time"

	"github.com/PaulBabatuyi/campusMarket-gRPC/internal/normalize"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// MessagesStore provides message database operations.
type MessagesStore struct {
	coll *mongo.Collection
}

// NewMessagesStore returns a MessagesStore using given collection.
func NewMessagesStore(coll *mongo.Collection) *MessagesStore {
	return &MessagesStore{coll: coll}
}

// SaveMessage inserts a message document and returns the saved record.
// New messages are always unread.
func (m *MessagesStore) SaveMessage(ctx context.Context, senderID, receiverID bson.ObjectID, content, productID string) (*Message, error) {
	msg := &Message{
		ConversationKey: normalize.ConversationKey(senderID.Hex(), receiverID.Hex()),
		SenderID:        senderID,
		ReceiverID:      receiverID,
		Content:         content,
		ProductID:       productID,
		SentAt:          time.Now().UTC(),
		Read:            false,
	}

	result, err := m.coll.InsertOne(ctx, msg)
	if err != nil {
		return nil, err
	}
	msg.ID = result.InsertedID.(bson.ObjectID)
	return msg, nil
}

// ListForUser returns every message the user sent or received, oldest first.
func (m *MessagesStore) ListForUser(ctx context.Context, userID bson.ObjectID) ([]*Message, error) {
	filter := bson.M{
		"$or": bson.A{
			bson.M{"sender_id": userID},
			bson.M{"receiver_id": userID},
		},
	}
	opts := options.Find().SetSort(bson.D{{Key: "sent_at", Value: 1}, {Key: "_id", Value: 1}})

	cursor, err := m.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var messages []*Message
	if err := cursor.All(ctx, &messages); err != nil {
		return nil, err
	}
	return messages, nil
}

// MarkConversationRead flips read on every unread message otherID sent in
// the conversation with userID, returning how many changed.
func (m *MessagesStore) MarkConversationRead(ctx context.Context, userID, otherID bson.ObjectID) (int64, error) {
	filter := bson.M{
		"conversation_key": normalize.ConversationKey(userID.Hex(), otherID.Hex()),
		"sender_id":        otherID,
		"read":             false,
	}
	res, err := m.coll.UpdateMany(ctx, filter, bson.M{"$set": bson.M{"read": true}})
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}
