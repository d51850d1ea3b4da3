package main

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.uber.org/zap"
	"google.golang.org/grpc"

	v1 "github.com/PaulBabatuyi/campusMarket-gRPC/api/market/v1"
	"github.com/PaulBabatuyi/campusMarket-gRPC/internal/auth"
	"github.com/PaulBabatuyi/campusMarket-gRPC/internal/data"
	"github.com/PaulBabatuyi/campusMarket-gRPC/internal/realtime"
	"github.com/PaulBabatuyi/campusMarket-gRPC/internal/storage"
	"github.com/PaulBabatuyi/campusMarket-gRPC/internal/validation"
)

type UserStore interface {
	CreateUser(ctx context.Context, email, hashedPassword string) (*data.User, error)
	GetUserByEmail(ctx context.Context, email string) (*data.User, error)
	UserExistsByID(ctx context.Context, id bson.ObjectID) (bool, error)
	DeleteUser(ctx context.Context, id bson.ObjectID) error
}

type ProfileStore interface {
	CreateProfile(ctx context.Context, p *data.Profile) error
	GetProfile(ctx context.Context, id bson.ObjectID) (*data.Profile, error)
	GetProfiles(ctx context.Context, ids []bson.ObjectID) ([]*data.Profile, error)
	UpdateProfile(ctx context.Context, id bson.ObjectID, patch data.ProfilePatch) (*data.Profile, error)
}

type ProductStore interface {
	InsertProduct(ctx context.Context, p *data.Product) (*data.Product, error)
	ListActive(ctx context.Context, offset, limit int64) ([]*data.Product, error)
	GetProduct(ctx context.Context, id bson.ObjectID) (*data.Product, error)
	GetProducts(ctx context.Context, ids []bson.ObjectID) ([]*data.Product, error)
	ListBySeller(ctx context.Context, sellerID bson.ObjectID) ([]*data.Product, error)
	UpdateProduct(ctx context.Context, id, sellerID bson.ObjectID, patch data.ProductPatch) (*data.Product, error)
	DeleteProduct(ctx context.Context, id, sellerID bson.ObjectID) error
}

type WishlistStore interface {
	ListProductIDs(ctx context.Context, userID bson.ObjectID) ([]bson.ObjectID, error)
	AddProduct(ctx context.Context, userID, productID bson.ObjectID) error
	RemoveProduct(ctx context.Context, userID, productID bson.ObjectID) error
	RemoveProductEverywhere(ctx context.Context, productID bson.ObjectID) ([]bson.ObjectID, error)
}

type MessageStore interface {
	SaveMessage(ctx context.Context, senderID, receiverID bson.ObjectID, content, productID string) (*data.Message, error)
	ListForUser(ctx context.Context, userID bson.ObjectID) ([]*data.Message, error)
	MarkConversationRead(ctx context.Context, userID, otherID bson.ObjectID) (int64, error)
}

// ImageStorage signs direct uploads. Nil disables CreateImageUpload.
type ImageStorage interface {
	CreateUpload(ctx context.Context, kind, ownerID, contentType string) (*storage.Upload, error)
}

var (
	_ UserStore     = (*data.UsersStore)(nil)
	_ ProfileStore  = (*data.ProfilesStore)(nil)
	_ ProductStore  = (*data.ProductsStore)(nil)
	_ WishlistStore = (*data.WishlistsStore)(nil)
	_ MessageStore  = (*data.MessagesStore)(nil)
	_ ImageStorage  = (*storage.S3ImageStorage)(nil)
)

// Deps is everything a Server is built from. Log, Validate and Policy
// default when zero.
type Deps struct {
	Users     UserStore
	Profiles  ProfileStore
	Products  ProductStore
	Wishlists WishlistStore
	Messages  MessageStore
	Images    ImageStorage

	Auth      *auth.JWTManager
	Blacklist auth.TokenBlacklist
	Policy    auth.Policy
	Broker    realtime.Broker
	Hub       *realtime.Hub
	Validate  *validator.Validate
	Log       *zap.Logger
}

// Server implements the market service on top of the stores.
type Server struct {
	v1.UnimplementedMarketServiceServer

	users     UserStore
	profiles  ProfileStore
	products  ProductStore
	wishlists WishlistStore
	msgs      MessageStore
	images    ImageStorage

	auth      *auth.JWTManager
	blacklist auth.TokenBlacklist
	policy    auth.Policy
	broker    realtime.Broker
	hub       *realtime.Hub
	validate  *validator.Validate
	log       *zap.Logger
}

// newServer returns a ready-to-use Server.
func newServer(d Deps) *Server {
	s := &Server{
		users:     d.Users,
		profiles:  d.Profiles,
		products:  d.Products,
		wishlists: d.Wishlists,
		msgs:      d.Messages,
		images:    d.Images,
		auth:      d.Auth,
		blacklist: d.Blacklist,
		policy:    d.Policy,
		broker:    d.Broker,
		hub:       d.Hub,
		validate:  d.Validate,
		log:       d.Log,
	}
	if s.log == nil {
		s.log = zap.NewNop()
	}
	if s.validate == nil {
		s.validate = validation.New()
	}
	if s.policy == (auth.Policy{}) {
		s.policy = auth.DefaultPolicy()
	}
	if s.hub == nil {
		s.hub = realtime.NewHub(s.log)
	}
	if s.broker == nil {
		s.broker = realtime.NewLocalBroker(s.hub)
	}
	return s
}

// registerService registers the MarketService on the given gRPC server.
func registerService(s *grpc.Server, srv *Server) {
	v1.RegisterMarketServiceServer(s, srv)
}
