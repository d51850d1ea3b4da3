// Package v1 defines the market.v1 wire contract: request/response messages,
// the MarketService descriptor and its client/server bindings.
//
// Messages travel as JSON over gRPC (see codec.go), so the types here are
// plain Go structs. Validation rules live in the `validate` struct tags and
// are enforced by the server before a handler runs.
package v1

import "time"

// Tables exposed through the realtime change feed.
const (
	TableProducts  = "products"
	TableWishlists = "wishlists"
	TableMessages  = "messages"
)

// Change operations carried by ChangeEvent.Op.
const (
	OpInsert = "INSERT"
	OpUpdate = "UPDATE"
	OpDelete = "DELETE"
)

// Product conditions accepted by CreateProduct/UpdateProduct.
const (
	ConditionNew     = "New"
	ConditionLikeNew = "Like New"
	ConditionGood    = "Good"
	ConditionFair    = "Fair"
	ConditionPoor    = "Poor"
)

// Product statuses.
const (
	StatusActive   = "Active"
	StatusSold     = "Sold"
	StatusReserved = "Reserved"
)

// Image kinds accepted by CreateImageUpload.
const (
	ImageKindProduct = "product"
	ImageKindAvatar  = "avatar"
)

// MaxProductImages caps the image list of a listing.
const MaxProductImages = 5

type RegisterRequest struct {
	Email         string `json:"email" validate:"required,email"`
	Password      string `json:"password" validate:"required"`
	FullName      string `json:"full_name" validate:"required,max=120"`
	StudentID     string `json:"student_id" validate:"required,max=40"`
	PhoneNumber   string `json:"phone_number,omitempty" validate:"max=32"`
	HostelDetails string `json:"hostel_details,omitempty" validate:"max=200"`
}

func (r *RegisterRequest) GetEmail() string {
	if r == nil {
		return ""
	}
	return r.Email
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (r *LoginRequest) GetEmail() string {
	if r == nil {
		return ""
	}
	return r.Email
}

// AuthResponse is returned by Register and Login. Token is empty when the
// account was created but no session was issued.
type AuthResponse struct {
	Token     string    `json:"token,omitempty"`
	UserID    string    `json:"user_id"`
	Email     string    `json:"email"`
	ExpiresAt time.Time `json:"expires_at"`
}

type LogoutRequest struct{}

type Empty struct{}

type Profile struct {
	ID            string    `json:"id"`
	Email         string    `json:"email,omitempty"`
	FullName      string    `json:"full_name"`
	StudentID     string    `json:"student_id"`
	PhoneNumber   string    `json:"phone_number,omitempty"`
	HostelDetails string    `json:"hostel_details,omitempty"`
	AvatarURL     string    `json:"avatar_url,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type GetProfileRequest struct {
	UserID string `json:"user_id" validate:"required"`
}

type GetProfilesRequest struct {
	UserIDs []string `json:"user_ids" validate:"max=50,dive,required"`
}

type GetProfilesResponse struct {
	Profiles []*Profile `json:"profiles"`
}

// UpdateProfileRequest carries one optional field per mutable profile
// attribute; nil means "leave untouched".
type UpdateProfileRequest struct {
	FullName      *string `json:"full_name,omitempty" validate:"omitempty,min=1,max=120"`
	StudentID     *string `json:"student_id,omitempty" validate:"omitempty,min=1,max=40"`
	PhoneNumber   *string `json:"phone_number,omitempty" validate:"omitempty,max=32"`
	HostelDetails *string `json:"hostel_details,omitempty" validate:"omitempty,max=200"`
	AvatarURL     *string `json:"avatar_url,omitempty" validate:"omitempty,max=1024"`
}

type Product struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Price       int64     `json:"price"`
	Negotiable  bool      `json:"negotiable"`
	Condition   string    `json:"condition"`
	Category    string    `json:"category"`
	Location    string    `json:"location"`
	Images      []string  `json:"images"`
	SellerID    string    `json:"seller_id"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type ListProductsRequest struct {
	Offset int64 `json:"offset" validate:"gte=0"`
	Limit  int64 `json:"limit" validate:"gte=0,lte=100"`
}

type ListProductsResponse struct {
	Products []*Product `json:"products"`
}

type GetProductsRequest struct {
	IDs []string `json:"ids" validate:"max=50,dive,required"`
}

type ListSellerProductsRequest struct {
	SellerID string `json:"seller_id" validate:"required"`
}

type CreateProductRequest struct {
	Title       string   `json:"title" validate:"required,max=200"`
	Description string   `json:"description" validate:"max=5000"`
	Price       int64    `json:"price" validate:"gte=0"`
	Negotiable  bool     `json:"negotiable"`
	Condition   string   `json:"condition" validate:"required,product_condition"`
	Category    string   `json:"category" validate:"required,max=80"`
	Location    string   `json:"location" validate:"required,max=200"`
	Images      []string `json:"images" validate:"max=5,dive,required"`
}

type CreateProductResponse struct {
	ID string `json:"id"`
}

// UpdateProductRequest carries one optional field per mutable product
// attribute; nil means "leave untouched".
type UpdateProductRequest struct {
	ID          string    `json:"id" validate:"required"`
	Title       *string   `json:"title,omitempty" validate:"omitempty,min=1,max=200"`
	Description *string   `json:"description,omitempty" validate:"omitempty,max=5000"`
	Price       *int64    `json:"price,omitempty" validate:"omitempty,gte=0"`
	Negotiable  *bool     `json:"negotiable,omitempty"`
	Condition   *string   `json:"condition,omitempty" validate:"omitempty,product_condition"`
	Category    *string   `json:"category,omitempty" validate:"omitempty,min=1,max=80"`
	Location    *string   `json:"location,omitempty" validate:"omitempty,min=1,max=200"`
	Images      *[]string `json:"images,omitempty" validate:"omitempty,max=5"`
	Status      *string   `json:"status,omitempty" validate:"omitempty,product_status"`
}

type DeleteProductRequest struct {
	ID string `json:"id" validate:"required"`
}

type ListWishlistRequest struct{}

type ListWishlistResponse struct {
	ProductIDs []string `json:"product_ids"`
}

type WishlistRequest struct {
	ProductID string `json:"product_id" validate:"required"`
}

type Message struct {
	ID         string    `json:"id"`
	SenderID   string    `json:"sender_id"`
	ReceiverID string    `json:"receiver_id"`
	Content    string    `json:"content"`
	ProductID  string    `json:"product_id,omitempty"`
	SentAt     time.Time `json:"sent_at"`
	Read       bool      `json:"read"`
}

type SendMessageRequest struct {
	ReceiverID string `json:"receiver_id" validate:"required"`
	Content    string `json:"content" validate:"required,max=2000"`
	ProductID  string `json:"product_id,omitempty"`
}

type ListMessagesRequest struct{}

type ListMessagesResponse struct {
	Messages []*Message `json:"messages"`
}

type MarkReadRequest struct {
	OtherUserID string `json:"other_user_id" validate:"required"`
}

type MarkReadResponse struct {
	Updated int64 `json:"updated"`
}

type CreateImageUploadRequest struct {
	Kind        string `json:"kind" validate:"required,oneof=product avatar"`
	ContentType string `json:"content_type" validate:"required"`
}

type CreateImageUploadResponse struct {
	UploadURL string    `json:"upload_url"`
	ImageURL  string    `json:"image_url"`
	ExpiresAt time.Time `json:"expires_at"`
}

type SubscribeRequest struct {
	Table string `json:"table" validate:"required,oneof=products wishlists messages"`
}

// ChangeEvent notifies subscribers that a row of Table changed. UserIDs,
// when set, restricts delivery to those users.
type ChangeEvent struct {
	Table    string    `json:"table"`
	Op       string    `json:"op"`
	RecordID string    `json:"record_id"`
	UserIDs  []string  `json:"user_ids,omitempty"`
	At       time.Time `json:"at"`
}
