package data

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Product statuses.
const (
	StatusActive   = "Active"
	StatusSold     = "Sold"
	StatusReserved = "Reserved"
)

// User maps to users collection (id, email, password hash, timestamps)
type User struct {
	ID        bson.ObjectID `bson:"_id,omitempty"`
	Email     string        `bson:"email"`
	Password  string        `bson:"password"`
	CreatedAt time.Time     `bson:"created_at"`
	UpdatedAt time.Time     `bson:"updated_at"`
}

// Profile maps to profiles collection; _id is the owning user's id.
type Profile struct {
	ID            bson.ObjectID `bson:"_id"`
	Email         string        `bson:"email"`
	FullName      string        `bson:"full_name"`
	StudentID     string        `bson:"student_id"`
	PhoneNumber   string        `bson:"phone_number,omitempty"`
	HostelDetails string        `bson:"hostel_details,omitempty"`
	AvatarURL     string        `bson:"avatar_url,omitempty"`
	CreatedAt     time.Time     `bson:"created_at"`
	UpdatedAt     time.Time     `bson:"updated_at"`
}

// ProfilePatch is a field-level merge; nil fields are left untouched.
type ProfilePatch struct {
	FullName      *string
	StudentID     *string
	PhoneNumber   *string
	HostelDetails *string
	AvatarURL     *string
}

// Product maps to products collection
type Product struct {
	ID          bson.ObjectID `bson:"_id,omitempty"`
	Title       string        `bson:"title"`
	Description string        `bson:"description"`
	Price       int64         `bson:"price"`
	Negotiable  bool          `bson:"negotiable"`
	Condition   string        `bson:"condition"`
	Category    string        `bson:"category"`
	Location    string        `bson:"location"`
	Images      []string      `bson:"images"`
	SellerID    bson.ObjectID `bson:"seller_id"`
	Status      string        `bson:"status"`
	CreatedAt   time.Time     `bson:"created_at"`
	UpdatedAt   time.Time     `bson:"updated_at"`
}

// ProductPatch is a partial product update; nil fields are left untouched.
type ProductPatch struct {
	Title       *string
	Description *string
	Price       *int64
	Negotiable  *bool
	Condition   *string
	Category    *string
	Location    *string
	Images      *[]string
	Status      *string
}

// WishlistEntry maps to wishlists collection
type WishlistEntry struct {
	ID        bson.ObjectID `bson:"_id,omitempty"`
	UserID    bson.ObjectID `bson:"user_id"`
	ProductID bson.ObjectID `bson:"product_id"`
	CreatedAt time.Time     `bson:"created_at"`
}

// Message maps to messages collection. ConversationKey is derived from the
// two participants (see normalize.ConversationKey).
type Message struct {
	ID              bson.ObjectID `bson:"_id,omitempty"`
	ConversationKey string        `bson:"conversation_key"`
	SenderID        bson.ObjectID `bson:"sender_id"`
	ReceiverID      bson.ObjectID `bson:"receiver_id"`
	Content         string        `bson:"content"`
	ProductID       string        `bson:"product_id,omitempty"`
	SentAt          time.Time     `bson:"sent_at"`
	Read            bool          `bson:"read"`
}
