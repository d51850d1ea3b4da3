package main

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	v1 "github.com/PaulBabatuyi/campusMarket-gRPC/api/market/v1"
	"github.com/PaulBabatuyi/campusMarket-gRPC/internal/auth"
	"github.com/PaulBabatuyi/campusMarket-gRPC/internal/data"
)

func newTestServer(t *testing.T) (*Server, *memStore, *recordingBroker) {
	t.Helper()
	store := newMemStore()
	broker := &recordingBroker{}
	srv := newServer(Deps{
		Users:     store,
		Profiles:  store,
		Products:  store,
		Wishlists: store,
		Messages:  store,
		Auth:      auth.NewJWTManager("test-secret", time.Hour),
		Blacklist: auth.NewInMemoryTokenBlacklist(),
		Broker:    broker,
	})
	return srv, store, broker
}

func asUser(id bson.ObjectID) context.Context {
	claims := &auth.Claims{
		UserID: id.Hex(),
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        "jti-" + id.Hex(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	return context.WithValue(context.Background(), authContextKey{}, claims)
}

func requireCode(t *testing.T, err error, want codes.Code) {
	t.Helper()
	require.Error(t, err)
	assert.Equal(t, want, status.Code(err), "error: %v", err)
}

func validRegister() *v1.RegisterRequest {
	return &v1.RegisterRequest{
		Email:     "ravi@rguktrkv.ac.in",
		Password:  "secret1",
		FullName:  " Ravi Kumar ",
		StudentID: "R200123",
	}
}

func TestRegister(t *testing.T) {
	srv, store, _ := newTestServer(t)

	resp, err := srv.Register(context.Background(), validRegister())
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, "ravi@rguktrkv.ac.in", resp.Email)

	id, err := bson.ObjectIDFromHex(resp.UserID)
	require.NoError(t, err)
	p, err := store.GetProfile(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "Ravi Kumar", p.FullName)

	claims, err := srv.auth.VerifyToken(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, resp.UserID, claims.UserID)
}

func TestRegister_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(r *v1.RegisterRequest)
	}{
		{"foreign domain", func(r *v1.RegisterRequest) { r.Email = "ravi@gmail.com" }},
		{"short password", func(r *v1.RegisterRequest) { r.Password = "12345" }},
		{"missing name", func(r *v1.RegisterRequest) { r.FullName = "" }},
		{"missing student id", func(r *v1.RegisterRequest) { r.StudentID = "" }},
		{"bad email", func(r *v1.RegisterRequest) { r.Email = "not-an-email" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, store, _ := newTestServer(t)
			req := validRegister()
			tt.mutate(req)

			_, err := srv.Register(context.Background(), req)
			requireCode(t, err, codes.InvalidArgument)
			assert.Empty(t, store.users)
		})
	}
}

func TestRegister_Duplicate(t *testing.T) {
	srv, _, _ := newTestServer(t)
	_, err := srv.Register(context.Background(), validRegister())
	require.NoError(t, err)

	_, err = srv.Register(context.Background(), validRegister())
	requireCode(t, err, codes.AlreadyExists)
}

func TestRegister_RollsBackUserWithoutProfile(t *testing.T) {
	srv, store, _ := newTestServer(t)
	store.profileErr = errors.New("disk full")

	_, err := srv.Register(context.Background(), validRegister())
	requireCode(t, err, codes.Internal)
	assert.Empty(t, store.users)
}

func TestLogin(t *testing.T) {
	srv, _, _ := newTestServer(t)
	_, err := srv.Register(context.Background(), validRegister())
	require.NoError(t, err)

	resp, err := srv.Login(context.Background(), &v1.LoginRequest{Email: "RAVI@rguktrkv.ac.in", Password: "secret1"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)

	_, err = srv.Login(context.Background(), &v1.LoginRequest{Email: "ravi@rguktrkv.ac.in", Password: "wrong-pass"})
	requireCode(t, err, codes.Unauthenticated)
	assert.Equal(t, "Invalid login credentials", status.Convert(err).Message())

	_, err = srv.Login(context.Background(), &v1.LoginRequest{Email: "nobody@rguktrkv.ac.in", Password: "secret1"})
	requireCode(t, err, codes.Unauthenticated)

	_, err = srv.Login(context.Background(), &v1.LoginRequest{Email: "ravi@gmail.com", Password: "secret1"})
	requireCode(t, err, codes.InvalidArgument)
}

func TestLogout_BlacklistsToken(t *testing.T) {
	srv, store, _ := newTestServer(t)
	me := store.addUser("a@rguktrkv.ac.in", "A")
	ctx := asUser(me)

	_, err := srv.Logout(ctx, &v1.LogoutRequest{})
	require.NoError(t, err)

	revoked, err := srv.blacklist.IsBlacklisted(context.Background(), "jti-"+me.Hex())
	require.NoError(t, err)
	assert.True(t, revoked)
}

func TestProfiles_EmailOnlyForOwner(t *testing.T) {
	srv, store, _ := newTestServer(t)
	me := store.addUser("a@rguktrkv.ac.in", "A")
	other := store.addUser("b@rguktrkv.ac.in", "B")

	resp, err := srv.GetProfiles(asUser(me), &v1.GetProfilesRequest{UserIDs: []string{me.Hex(), other.Hex(), bson.NewObjectID().Hex()}})
	require.NoError(t, err)
	require.Len(t, resp.Profiles, 2)
	for _, p := range resp.Profiles {
		if p.ID == me.Hex() {
			assert.Equal(t, "a@rguktrkv.ac.in", p.Email)
		} else {
			assert.Empty(t, p.Email)
		}
	}

	_, err = srv.GetProfiles(asUser(me), &v1.GetProfilesRequest{UserIDs: []string{"zzz"}})
	requireCode(t, err, codes.InvalidArgument)
}

func TestUpdateProfile_Merges(t *testing.T) {
	srv, store, _ := newTestServer(t)
	me := store.addUser("a@rguktrkv.ac.in", "A")
	phone := " 98765 43210 "

	p, err := srv.UpdateProfile(asUser(me), &v1.UpdateProfileRequest{PhoneNumber: &phone})
	require.NoError(t, err)
	assert.Equal(t, "A", p.FullName)
	assert.Equal(t, "98765 43210", p.PhoneNumber)
}

func validProduct() *v1.CreateProductRequest {
	return &v1.CreateProductRequest{
		Title:     "Desk Lamp",
		Price:     450,
		Condition: v1.ConditionGood,
		Category:  "Home & Decor",
		Location:  "Hostel B",
		Images:    []string{"https://cdn.example/lamp.jpg"},
	}
}

func TestCreateProduct(t *testing.T) {
	srv, store, broker := newTestServer(t)
	me := store.addUser("a@rguktrkv.ac.in", "A")

	resp, err := srv.CreateProduct(asUser(me), validProduct())
	require.NoError(t, err)

	require.Len(t, store.products, 1)
	assert.Equal(t, resp.ID, store.products[0].ID.Hex())
	assert.Equal(t, me, store.products[0].SellerID)
	assert.Equal(t, data.StatusActive, store.products[0].Status)

	ev := broker.last()
	require.NotNil(t, ev)
	assert.Equal(t, v1.TableProducts, ev.Table)
	assert.Equal(t, v1.OpInsert, ev.Op)
	assert.Empty(t, ev.UserIDs, "product changes go to everyone")
}

func TestCreateProduct_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(r *v1.CreateProductRequest)
	}{
		{"condition", func(r *v1.CreateProductRequest) { r.Condition = "Broken" }},
		{"negative price", func(r *v1.CreateProductRequest) { r.Price = -1 }},
		{"too many images", func(r *v1.CreateProductRequest) {
			r.Images = []string{"a", "b", "c", "d", "e", "f"}
		}},
		{"missing title", func(r *v1.CreateProductRequest) { r.Title = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, store, broker := newTestServer(t)
			me := store.addUser("a@rguktrkv.ac.in", "A")
			req := validProduct()
			tt.mutate(req)

			_, err := srv.CreateProduct(asUser(me), req)
			requireCode(t, err, codes.InvalidArgument)
			assert.Empty(t, store.products)
			assert.Zero(t, broker.count())
		})
	}
}

func TestUpdateProduct_OwnerOnly(t *testing.T) {
	srv, store, _ := newTestServer(t)
	owner := store.addUser("a@rguktrkv.ac.in", "A")
	other := store.addUser("b@rguktrkv.ac.in", "B")
	created, err := srv.CreateProduct(asUser(owner), validProduct())
	require.NoError(t, err)

	sold := v1.StatusSold
	_, err = srv.UpdateProduct(asUser(other), &v1.UpdateProductRequest{ID: created.ID, Status: &sold})
	requireCode(t, err, codes.PermissionDenied)

	p, err := srv.UpdateProduct(asUser(owner), &v1.UpdateProductRequest{ID: created.ID, Status: &sold})
	require.NoError(t, err)
	assert.Equal(t, v1.StatusSold, p.Status)
	assert.Equal(t, int64(450), p.Price)

	bogus := "Lost"
	_, err = srv.UpdateProduct(asUser(owner), &v1.UpdateProductRequest{ID: created.ID, Status: &bogus})
	requireCode(t, err, codes.InvalidArgument)

	_, err = srv.UpdateProduct(asUser(owner), &v1.UpdateProductRequest{ID: bson.NewObjectID().Hex(), Status: &sold})
	requireCode(t, err, codes.NotFound)
}

func TestListProducts_ActiveWindow(t *testing.T) {
	srv, store, _ := newTestServer(t)
	me := store.addUser("a@rguktrkv.ac.in", "A")
	for range 12 {
		_, err := srv.CreateProduct(asUser(me), validProduct())
		require.NoError(t, err)
	}
	store.products[0].Status = data.StatusSold

	first, err := srv.ListProducts(asUser(me), &v1.ListProductsRequest{})
	require.NoError(t, err)
	assert.Len(t, first.Products, defaultPageSize)

	second, err := srv.ListProducts(asUser(me), &v1.ListProductsRequest{Offset: 10, Limit: 10})
	require.NoError(t, err)
	assert.Len(t, second.Products, 1)

	mine, err := srv.ListSellerProducts(asUser(me), &v1.ListSellerProductsRequest{SellerID: me.Hex()})
	require.NoError(t, err)
	assert.Len(t, mine.Products, 12, "seller view includes sold listings")
}

func TestDeleteProduct_CleansWishlists(t *testing.T) {
	srv, store, broker := newTestServer(t)
	owner := store.addUser("a@rguktrkv.ac.in", "A")
	fan := store.addUser("b@rguktrkv.ac.in", "B")
	created, err := srv.CreateProduct(asUser(owner), validProduct())
	require.NoError(t, err)
	_, err = srv.AddToWishlist(asUser(fan), &v1.WishlistRequest{ProductID: created.ID})
	require.NoError(t, err)

	_, err = srv.DeleteProduct(asUser(fan), &v1.DeleteProductRequest{ID: created.ID})
	requireCode(t, err, codes.PermissionDenied)

	_, err = srv.DeleteProduct(asUser(owner), &v1.DeleteProductRequest{ID: created.ID})
	require.NoError(t, err)
	assert.Empty(t, store.products)
	assert.Empty(t, store.wishlists)

	ev := broker.last()
	assert.Equal(t, v1.TableWishlists, ev.Table)
	assert.Equal(t, v1.OpDelete, ev.Op)
	assert.Equal(t, []string{fan.Hex()}, ev.UserIDs)
}

func TestWishlist(t *testing.T) {
	srv, store, broker := newTestServer(t)
	owner := store.addUser("a@rguktrkv.ac.in", "A")
	me := store.addUser("b@rguktrkv.ac.in", "B")
	created, err := srv.CreateProduct(asUser(owner), validProduct())
	require.NoError(t, err)

	_, err = srv.AddToWishlist(asUser(me), &v1.WishlistRequest{ProductID: bson.NewObjectID().Hex()})
	requireCode(t, err, codes.NotFound)

	_, err = srv.AddToWishlist(asUser(me), &v1.WishlistRequest{ProductID: created.ID})
	require.NoError(t, err)
	assert.Equal(t, []string{me.Hex()}, broker.last().UserIDs)

	list, err := srv.ListWishlist(asUser(me), &v1.ListWishlistRequest{})
	require.NoError(t, err)
	assert.Equal(t, []string{created.ID}, list.ProductIDs)

	_, err = srv.RemoveFromWishlist(asUser(me), &v1.WishlistRequest{ProductID: created.ID})
	require.NoError(t, err)
	list, err = srv.ListWishlist(asUser(me), &v1.ListWishlistRequest{})
	require.NoError(t, err)
	assert.Empty(t, list.ProductIDs)
}

func TestSendMessage(t *testing.T) {
	srv, store, broker := newTestServer(t)
	me := store.addUser("a@rguktrkv.ac.in", "A")
	other := store.addUser("b@rguktrkv.ac.in", "B")

	msg, err := srv.SendMessage(asUser(me), &v1.SendMessageRequest{ReceiverID: other.Hex(), Content: " I'm in Hostel <B> & free at 5 "})
	require.NoError(t, err)
	assert.Equal(t, "I'm in Hostel <B> & free at 5", msg.Content, "stored as sent, only trimmed")
	assert.False(t, msg.Read)

	ev := broker.last()
	assert.Equal(t, v1.TableMessages, ev.Table)
	assert.ElementsMatch(t, []string{me.Hex(), other.Hex()}, ev.UserIDs)

	_, err = srv.SendMessage(asUser(me), &v1.SendMessageRequest{ReceiverID: bson.NewObjectID().Hex(), Content: "hi"})
	requireCode(t, err, codes.NotFound)

	_, err = srv.SendMessage(asUser(me), &v1.SendMessageRequest{ReceiverID: other.Hex(), Content: "   "})
	requireCode(t, err, codes.InvalidArgument)
}

func TestMarkRead(t *testing.T) {
	srv, store, broker := newTestServer(t)
	me := store.addUser("a@rguktrkv.ac.in", "A")
	other := store.addUser("b@rguktrkv.ac.in", "B")
	_, err := srv.SendMessage(asUser(other), &v1.SendMessageRequest{ReceiverID: me.Hex(), Content: "one"})
	require.NoError(t, err)
	_, err = srv.SendMessage(asUser(other), &v1.SendMessageRequest{ReceiverID: me.Hex(), Content: "two"})
	require.NoError(t, err)
	_, err = srv.SendMessage(asUser(me), &v1.SendMessageRequest{ReceiverID: other.Hex(), Content: "mine"})
	require.NoError(t, err)
	published := broker.count()

	resp, err := srv.MarkRead(asUser(me), &v1.MarkReadRequest{OtherUserID: other.Hex()})
	require.NoError(t, err)
	assert.Equal(t, int64(2), resp.Updated)
	assert.Equal(t, published+1, broker.count())

	resp, err = srv.MarkRead(asUser(me), &v1.MarkReadRequest{OtherUserID: other.Hex()})
	require.NoError(t, err)
	assert.Zero(t, resp.Updated)
	assert.Equal(t, published+1, broker.count(), "nothing changed, nothing published")

	list, err := srv.ListMessages(asUser(other), &v1.ListMessagesRequest{})
	require.NoError(t, err)
	require.Len(t, list.Messages, 3)
	assert.False(t, list.Messages[2].Read, "own messages are untouched")
}

func TestCreateImageUpload(t *testing.T) {
	srv, store, _ := newTestServer(t)
	me := store.addUser("a@rguktrkv.ac.in", "A")

	_, err := srv.CreateImageUpload(asUser(me), &v1.CreateImageUploadRequest{Kind: "avatar", ContentType: "image/png"})
	requireCode(t, err, codes.FailedPrecondition)

	srv.images = fakeImages{}
	resp, err := srv.CreateImageUpload(asUser(me), &v1.CreateImageUploadRequest{Kind: "avatar", ContentType: "image/png"})
	require.NoError(t, err)
	assert.Contains(t, resp.ImageURL, "avatar/"+me.Hex())

	_, err = srv.CreateImageUpload(asUser(me), &v1.CreateImageUploadRequest{Kind: "avatar", ContentType: "application/pdf"})
	requireCode(t, err, codes.InvalidArgument)

	_, err = srv.CreateImageUpload(asUser(me), &v1.CreateImageUploadRequest{Kind: "banner", ContentType: "image/png"})
	requireCode(t, err, codes.InvalidArgument)
}

func TestHandlersRequireClaims(t *testing.T) {
	srv, _, _ := newTestServer(t)
	_, err := srv.CreateProduct(context.Background(), validProduct())
	requireCode(t, err, codes.Unauthenticated)
}
