package market

import "time"

// Tables published on the change feed.
const (
	TableProducts  = "products"
	TableWishlists = "wishlists"
	TableMessages  = "messages"
)

const (
	StatusActive   = "Active"
	StatusSold     = "Sold"
	StatusReserved = "Reserved"
)

// MaxImages caps the image list of a listing.
const MaxImages = 5

// UnknownSeller is shown when a listing's seller has no profile.
const UnknownSeller = "Unknown User"

// AuthSession is the authenticated session held by the backend client.
type AuthSession struct {
	Token     string
	UserID    string
	Email     string
	ExpiresAt time.Time
}

// AuthEvent is delivered to session-change listeners. Session is nil after
// sign-out or expiry.
type AuthEvent struct {
	Session *AuthSession
}

// UserInfo is the signed-in user as the presentation layer sees it.
type UserInfo struct {
	ID            string
	Email         string
	FullName      string
	StudentID     string
	PhoneNumber   string
	HostelDetails string
	AvatarURL     string
}

// Profile is a row of the profiles table.
type Profile struct {
	ID            string
	Email         string
	FullName      string
	StudentID     string
	PhoneNumber   string
	HostelDetails string
	AvatarURL     string
	UpdatedAt     time.Time
}

// ProfileUpdate carries the fields to change; nil leaves a field as is.
type ProfileUpdate struct {
	FullName      *string `validate:"omitempty,min=1,max=120"`
	StudentID     *string `validate:"omitempty,min=1,max=40"`
	PhoneNumber   *string `validate:"omitempty,max=32"`
	HostelDetails *string `validate:"omitempty,max=200"`
	AvatarURL     *string `validate:"omitempty,max=1024"`
}

func (u ProfileUpdate) applyTo(p *Profile) {
	if u.FullName != nil {
		p.FullName = *u.FullName
	}
	if u.StudentID != nil {
		p.StudentID = *u.StudentID
	}
	if u.PhoneNumber != nil {
		p.PhoneNumber = *u.PhoneNumber
	}
	if u.HostelDetails != nil {
		p.HostelDetails = *u.HostelDetails
	}
	if u.AvatarURL != nil {
		p.AvatarURL = *u.AvatarURL
	}
}

// RegisterData is what the sign-up form collects.
type RegisterData struct {
	Email           string
	Password        string
	ConfirmPassword string // checked only when set
	FullName        string
	StudentID       string
	PhoneNumber     string
	HostelDetails   string
}

// SignUp is the payload handed to the backend; the profile fields travel
// as account metadata.
type SignUp struct {
	Email         string
	Password      string
	FullName      string
	StudentID     string
	PhoneNumber   string
	HostelDetails string
}

// ProductRow is a products row as the backend returns it.
type ProductRow struct {
	ID          string
	Title       string
	Description string
	Price       int64
	Negotiable  bool
	Condition   string
	Category    string
	Location    string
	Images      []string
	SellerID    string
	Status      string
	CreatedAt   time.Time
}

// NewProduct is the insert payload, in backend column names.
type NewProduct struct {
	Title       string
	Description string
	Price       int64
	Negotiable  bool
	Condition   string
	Category    string
	Location    string
	Images      []string
}

// ProductPatch is the update payload, in backend column names.
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

// Product is a listing joined with its seller's public profile.
type Product struct {
	ID           string
	Name         string
	Description  string
	Price        int64
	Negotiable   bool
	Condition    string
	Category     string
	Location     string
	Images       []string
	SellerID     string
	SellerName   string
	SellerAvatar string
	SellerPhone  string
	Status       string
	CreatedAt    time.Time
}

// ProductInput is the listing form.
type ProductInput struct {
	Name        string   `validate:"required,max=200"`
	Description string   `validate:"max=5000"`
	Price       int64    `validate:"gte=0"`
	Negotiable  bool
	Condition   string   `validate:"required,product_condition"`
	Category    string   `validate:"required,max=80"`
	Location    string   `validate:"required,max=200"`
	Images      []string `validate:"max=5,dive,required"`
}

func (in ProductInput) row() NewProduct {
	images := in.Images
	if images == nil {
		images = []string{}
	}
	return NewProduct{
		Title:       in.Name,
		Description: in.Description,
		Price:       in.Price,
		Negotiable:  in.Negotiable,
		Condition:   in.Condition,
		Category:    in.Category,
		Location:    in.Location,
		Images:      images,
	}
}

// ProductUpdate carries the listing fields to change; nil leaves a field as is.
type ProductUpdate struct {
	Name        *string   `validate:"omitempty,min=1,max=200"`
	Description *string   `validate:"omitempty,max=5000"`
	Price       *int64    `validate:"omitempty,gte=0"`
	Negotiable  *bool
	Condition   *string   `validate:"omitempty,product_condition"`
	Category    *string   `validate:"omitempty,min=1,max=80"`
	Location    *string   `validate:"omitempty,min=1,max=200"`
	Images      *[]string `validate:"omitempty,max=5"`
	Status      *string   `validate:"omitempty,product_status"`
}

func (u ProductUpdate) patch() ProductPatch {
	return ProductPatch{
		Title:       u.Name,
		Description: u.Description,
		Price:       u.Price,
		Negotiable:  u.Negotiable,
		Condition:   u.Condition,
		Category:    u.Category,
		Location:    u.Location,
		Images:      u.Images,
		Status:      u.Status,
	}
}

// Message is one chat message.
type Message struct {
	ID         string
	SenderID   string
	ReceiverID string
	Content    string
	ProductID  string
	Timestamp  time.Time
	Read       bool
}

// Conversation summarizes the messages exchanged with one other user.
type Conversation struct {
	OtherUserID   string
	Name          string
	Avatar        string
	LastMessage   string
	LastMessageAt time.Time
	UnreadCount   int
}

// ChangeEvent reports that a row of Table changed.
type ChangeEvent struct {
	Table    string
	Op       string
	RecordID string
}
