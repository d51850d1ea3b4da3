package market

import "context"

// AuthBackend is the auth module of the backend client.
type AuthBackend interface {
	SignIn(ctx context.Context, email, password string) (*AuthSession, error)
	// SignUp returns a nil session when the account needs a separate sign-in.
	SignUp(ctx context.Context, in SignUp) (*AuthSession, error)
	SignOut(ctx context.Context) error
	// OnAuthStateChange registers fn for every session change and returns
	// a function removing it.
	OnAuthStateChange(fn func(AuthEvent)) func()
}

// ProfileLookup reads public profiles.
type ProfileLookup interface {
	GetProfiles(ctx context.Context, userIDs []string) ([]Profile, error)
}

// ProfileBackend reads and updates profiles.
type ProfileBackend interface {
	ProfileLookup
	GetProfile(ctx context.Context, userID string) (*Profile, error)
	// UpdateProfile changes the signed-in user's profile.
	UpdateProfile(ctx context.Context, u ProfileUpdate) (*Profile, error)
}

// SessionBackend is what Session needs.
type SessionBackend interface {
	AuthBackend
	ProfileBackend
}

// ProductSource reads products and their sellers.
type ProductSource interface {
	ProfileLookup
	GetProducts(ctx context.Context, ids []string) ([]ProductRow, error)
}

// CatalogBackend is what Catalog needs.
type CatalogBackend interface {
	ProfileLookup
	ListActiveProducts(ctx context.Context, offset, limit int) ([]ProductRow, error)
	// ListSellerProducts returns a seller's listings in any status.
	ListSellerProducts(ctx context.Context, sellerID string) ([]ProductRow, error)
	InsertProduct(ctx context.Context, p NewProduct) (string, error)
	UpdateProduct(ctx context.Context, id string, p ProductPatch) error
	DeleteProduct(ctx context.Context, id string) error
}

// WishlistBackend is what Wishlist needs.
type WishlistBackend interface {
	ProductSource
	ListWishlist(ctx context.Context) ([]string, error)
	AddToWishlist(ctx context.Context, productID string) error
	RemoveFromWishlist(ctx context.Context, productID string) error
}

// MessageBackend is what Messages needs.
type MessageBackend interface {
	ProfileLookup
	SendMessage(ctx context.Context, receiverID, content, productID string) (*Message, error)
	ListMessages(ctx context.Context) ([]Message, error)
	MarkRead(ctx context.Context, otherUserID string) (int64, error)
}

// ChangeFeed streams change events for one table. The channel closes when
// ctx ends or the stream breaks.
type ChangeFeed interface {
	Subscribe(ctx context.Context, table string) (<-chan ChangeEvent, error)
}

// SessionInfo reports who is signed in; the empty string means nobody.
type SessionInfo interface {
	UserID() string
}

// Cache is durable client-side storage. Load reports whether v was filled.
type Cache interface {
	Load(ctx context.Context, key string, v any) bool
	Put(ctx context.Context, key string, v any) error
}
