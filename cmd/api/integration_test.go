package main

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	v1 "github.com/PaulBabatuyi/campusMarket-gRPC/api/market/v1"
	"github.com/PaulBabatuyi/campusMarket-gRPC/internal/auth"
	"github.com/PaulBabatuyi/campusMarket-gRPC/internal/data"
	"github.com/PaulBabatuyi/campusMarket-gRPC/internal/db"
)

// mongoServer builds a Server on the real stores.
func mongoServer(t *testing.T) *Server {
	uri := os.Getenv("MONGODB_URI")
	if uri == "" {
		t.Skip("MONGODB_URI not set; skipping integration test")
	}

	ctx := context.Background()
	c, err := db.New(ctx, uri, "campus_market_api_test")
	require.NoError(t, err)
	_ = c.DropAll(ctx)
	require.NoError(t, c.CreateIndexes(ctx))
	t.Cleanup(func() {
		_ = c.DropAll(context.Background())
		_ = c.Close(context.Background())
	})

	return newServer(Deps{
		Users:     data.NewUsersStore(c.UsersCollection()),
		Profiles:  data.NewProfilesStore(c.ProfilesCollection()),
		Products:  data.NewProductsStore(c.ProductsCollection()),
		Wishlists: data.NewWishlistsStore(c.WishlistsCollection()),
		Messages:  data.NewMessagesStore(c.MessagesCollection()),
		Auth:      auth.NewJWTManager("integration-secret", time.Hour),
		Blacklist: auth.NewInMemoryTokenBlacklist(),
		Broker:    &recordingBroker{},
	})
}

func registerAs(t *testing.T, srv *Server, email string) context.Context {
	t.Helper()
	resp, err := srv.Register(context.Background(), &v1.RegisterRequest{
		Email:     email,
		Password:  "secret1",
		FullName:  "Integration " + email[:1],
		StudentID: "R" + email[:1],
	})
	require.NoError(t, err)
	id, err := bson.ObjectIDFromHex(resp.UserID)
	require.NoError(t, err)
	return asUser(id)
}

func TestIntegration_MarketFlow(t *testing.T) {
	srv := mongoServer(t)
	seller := registerAs(t, srv, "s@rguktrkv.ac.in")
	buyer := registerAs(t, srv, "b@rguktrkv.ac.in")

	_, err := srv.Register(context.Background(), &v1.RegisterRequest{
		Email: "S@rguktrkv.ac.in", Password: "secret1", FullName: "Dup", StudentID: "R9",
	})
	require.Equal(t, codes.AlreadyExists, status.Code(err))

	created, err := srv.CreateProduct(seller, validProduct())
	require.NoError(t, err)

	page, err := srv.ListProducts(buyer, &v1.ListProductsRequest{})
	require.NoError(t, err)
	require.Len(t, page.Products, 1)
	assert.Equal(t, created.ID, page.Products[0].ID)
	assert.Equal(t, v1.StatusActive, page.Products[0].Status)

	_, err = srv.AddToWishlist(buyer, &v1.WishlistRequest{ProductID: created.ID})
	require.NoError(t, err)
	_, err = srv.AddToWishlist(buyer, &v1.WishlistRequest{ProductID: created.ID})
	require.NoError(t, err, "adding twice is idempotent")

	sellerClaims, _ := getClaimsFromContext(seller)
	msg, err := srv.SendMessage(buyer, &v1.SendMessageRequest{
		ReceiverID: sellerClaims.UserID,
		Content:    "Is the lamp available?",
		ProductID:  created.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, created.ID, msg.ProductID)

	buyerClaims, _ := getClaimsFromContext(buyer)
	read, err := srv.MarkRead(seller, &v1.MarkReadRequest{OtherUserID: buyerClaims.UserID})
	require.NoError(t, err)
	assert.Equal(t, int64(1), read.Updated)

	_, err = srv.DeleteProduct(buyer, &v1.DeleteProductRequest{ID: created.ID})
	require.Equal(t, codes.PermissionDenied, status.Code(err))

	_, err = srv.DeleteProduct(seller, &v1.DeleteProductRequest{ID: created.ID})
	require.NoError(t, err)

	wl, err := srv.ListWishlist(buyer, &v1.ListWishlistRequest{})
	require.NoError(t, err)
	assert.Empty(t, wl.ProductIDs)
}
