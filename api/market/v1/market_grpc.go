package v1

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const ServiceName = "market.v1.MarketService"

const (
	MarketService_Register_FullMethodName           = "/market.v1.MarketService/Register"
	MarketService_Login_FullMethodName              = "/market.v1.MarketService/Login"
	MarketService_Logout_FullMethodName             = "/market.v1.MarketService/Logout"
	MarketService_GetProfile_FullMethodName         = "/market.v1.MarketService/GetProfile"
	MarketService_GetProfiles_FullMethodName        = "/market.v1.MarketService/GetProfiles"
	MarketService_UpdateProfile_FullMethodName      = "/market.v1.MarketService/UpdateProfile"
	MarketService_ListProducts_FullMethodName       = "/market.v1.MarketService/ListProducts"
	MarketService_GetProducts_FullMethodName        = "/market.v1.MarketService/GetProducts"
	MarketService_ListSellerProducts_FullMethodName = "/market.v1.MarketService/ListSellerProducts"
	MarketService_CreateProduct_FullMethodName      = "/market.v1.MarketService/CreateProduct"
	MarketService_UpdateProduct_FullMethodName      = "/market.v1.MarketService/UpdateProduct"
	MarketService_DeleteProduct_FullMethodName      = "/market.v1.MarketService/DeleteProduct"
	MarketService_ListWishlist_FullMethodName       = "/market.v1.MarketService/ListWishlist"
	MarketService_AddToWishlist_FullMethodName      = "/market.v1.MarketService/AddToWishlist"
	MarketService_RemoveFromWishlist_FullMethodName = "/market.v1.MarketService/RemoveFromWishlist"
	MarketService_SendMessage_FullMethodName        = "/market.v1.MarketService/SendMessage"
	MarketService_ListMessages_FullMethodName       = "/market.v1.MarketService/ListMessages"
	MarketService_MarkRead_FullMethodName           = "/market.v1.MarketService/MarkRead"
	MarketService_CreateImageUpload_FullMethodName  = "/market.v1.MarketService/CreateImageUpload"
	MarketService_Subscribe_FullMethodName          = "/market.v1.MarketService/Subscribe"
)

// MarketService_SubscribeServer is the server side of the Subscribe stream.
type MarketService_SubscribeServer = grpc.ServerStreamingServer[ChangeEvent]

// MarketService_SubscribeClient is the client side of the Subscribe stream.
type MarketService_SubscribeClient = grpc.ServerStreamingClient[ChangeEvent]

// MarketServiceServer is the server API for MarketService.
type MarketServiceServer interface {
	Register(context.Context, *RegisterRequest) (*AuthResponse, error)
	Login(context.Context, *LoginRequest) (*AuthResponse, error)
	Logout(context.Context, *LogoutRequest) (*Empty, error)
	GetProfile(context.Context, *GetProfileRequest) (*Profile, error)
	GetProfiles(context.Context, *GetProfilesRequest) (*GetProfilesResponse, error)
	UpdateProfile(context.Context, *UpdateProfileRequest) (*Profile, error)
	ListProducts(context.Context, *ListProductsRequest) (*ListProductsResponse, error)
	GetProducts(context.Context, *GetProductsRequest) (*ListProductsResponse, error)
	ListSellerProducts(context.Context, *ListSellerProductsRequest) (*ListProductsResponse, error)
	CreateProduct(context.Context, *CreateProductRequest) (*CreateProductResponse, error)
	UpdateProduct(context.Context, *UpdateProductRequest) (*Product, error)
	DeleteProduct(context.Context, *DeleteProductRequest) (*Empty, error)
	ListWishlist(context.Context, *ListWishlistRequest) (*ListWishlistResponse, error)
	AddToWishlist(context.Context, *WishlistRequest) (*Empty, error)
	RemoveFromWishlist(context.Context, *WishlistRequest) (*Empty, error)
	SendMessage(context.Context, *SendMessageRequest) (*Message, error)
	ListMessages(context.Context, *ListMessagesRequest) (*ListMessagesResponse, error)
	MarkRead(context.Context, *MarkReadRequest) (*MarkReadResponse, error)
	CreateImageUpload(context.Context, *CreateImageUploadRequest) (*CreateImageUploadResponse, error)
	Subscribe(*SubscribeRequest, MarketService_SubscribeServer) error
	mustEmbedUnimplementedMarketServiceServer()
}

// UnimplementedMarketServiceServer must be embedded to have forward compatible implementations.
type UnimplementedMarketServiceServer struct{}

func (UnimplementedMarketServiceServer) Register(context.Context, *RegisterRequest) (*AuthResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method Register not implemented")
}
func (UnimplementedMarketServiceServer) Login(context.Context, *LoginRequest) (*AuthResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method Login not implemented")
}
func (UnimplementedMarketServiceServer) Logout(context.Context, *LogoutRequest) (*Empty, error) {
	return nil, status.Error(codes.Unimplemented, "method Logout not implemented")
}
func (UnimplementedMarketServiceServer) GetProfile(context.Context, *GetProfileRequest) (*Profile, error) {
	return nil, status.Error(codes.Unimplemented, "method GetProfile not implemented")
}
func (UnimplementedMarketServiceServer) GetProfiles(context.Context, *GetProfilesRequest) (*GetProfilesResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method GetProfiles not implemented")
}
func (UnimplementedMarketServiceServer) UpdateProfile(context.Context, *UpdateProfileRequest) (*Profile, error) {
	return nil, status.Error(codes.Unimplemented, "method UpdateProfile not implemented")
}
func (UnimplementedMarketServiceServer) ListProducts(context.Context, *ListProductsRequest) (*ListProductsResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method ListProducts not implemented")
}
func (UnimplementedMarketServiceServer) GetProducts(context.Context, *GetProductsRequest) (*ListProductsResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method GetProducts not implemented")
}
func (UnimplementedMarketServiceServer) ListSellerProducts(context.Context, *ListSellerProductsRequest) (*ListProductsResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method ListSellerProducts not implemented")
}
func (UnimplementedMarketServiceServer) CreateProduct(context.Context, *CreateProductRequest) (*CreateProductResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method CreateProduct not implemented")
}
func (UnimplementedMarketServiceServer) UpdateProduct(context.Context, *UpdateProductRequest) (*Product, error) {
	return nil, status.Error(codes.Unimplemented, "method UpdateProduct not implemented")
}
func (UnimplementedMarketServiceServer) DeleteProduct(context.Context, *DeleteProductRequest) (*Empty, error) {
	return nil, status.Error(codes.Unimplemented, "method DeleteProduct not implemented")
}
func (UnimplementedMarketServiceServer) ListWishlist(context.Context, *ListWishlistRequest) (*ListWishlistResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method ListWishlist not implemented")
}
func (UnimplementedMarketServiceServer) AddToWishlist(context.Context, *WishlistRequest) (*Empty, error) {
	return nil, status.Error(codes.Unimplemented, "method AddToWishlist not implemented")
}
func (UnimplementedMarketServiceServer) RemoveFromWishlist(context.Context, *WishlistRequest) (*Empty, error) {
	return nil, status.Error(codes.Unimplemented, "method RemoveFromWishlist not implemented")
}
func (UnimplementedMarketServiceServer) SendMessage(context.Context, *SendMessageRequest) (*Message, error) {
	return nil, status.Error(codes.Unimplemented, "method SendMessage not implemented")
}
func (UnimplementedMarketServiceServer) ListMessages(context.Context, *ListMessagesRequest) (*ListMessagesResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method ListMessages not implemented")
}
func (UnimplementedMarketServiceServer) MarkRead(context.Context, *MarkReadRequest) (*MarkReadResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method MarkRead not implemented")
}
func (UnimplementedMarketServiceServer) CreateImageUpload(context.Context, *CreateImageUploadRequest) (*CreateImageUploadResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method CreateImageUpload not implemented")
}
func (UnimplementedMarketServiceServer) Subscribe(*SubscribeRequest, MarketService_SubscribeServer) error {
	return status.Error(codes.Unimplemented, "method Subscribe not implemented")
}
func (UnimplementedMarketServiceServer) mustEmbedUnimplementedMarketServiceServer() {}

// RegisterMarketServiceServer registers srv on s.
func RegisterMarketServiceServer(s grpc.ServiceRegistrar, srv MarketServiceServer) {
	s.RegisterService(&MarketService_ServiceDesc, srv)
}

// unaryHandler adapts a typed server method into a grpc.MethodHandler.
func unaryHandler[Req, Res any](fullMethod string, call func(MarketServiceServer, context.Context, *Req) (*Res, error)) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(MarketServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(MarketServiceServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

func subscribeHandler(srv any, stream grpc.ServerStream) error {
	in := new(SubscribeRequest)
	if err := stream.RecvMsg(in); err != nil {
		return err
	}
	return srv.(MarketServiceServer).Subscribe(in, &grpc.GenericServerStream[SubscribeRequest, ChangeEvent]{ServerStream: stream})
}

// MarketService_ServiceDesc is the grpc.ServiceDesc for MarketService.
var MarketService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*MarketServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Register", Handler: unaryHandler(MarketService_Register_FullMethodName, MarketServiceServer.Register)},
		{MethodName: "Login", Handler: unaryHandler(MarketService_Login_FullMethodName, MarketServiceServer.Login)},
		{MethodName: "Logout", Handler: unaryHandler(MarketService_Logout_FullMethodName, MarketServiceServer.Logout)},
		{MethodName: "GetProfile", Handler: unaryHandler(MarketService_GetProfile_FullMethodName, MarketServiceServer.GetProfile)},
		{MethodName: "GetProfiles", Handler: unaryHandler(MarketService_GetProfiles_FullMethodName, MarketServiceServer.GetProfiles)},
		{MethodName: "UpdateProfile", Handler: unaryHandler(MarketService_UpdateProfile_FullMethodName, MarketServiceServer.UpdateProfile)},
		{MethodName: "ListProducts", Handler: unaryHandler(MarketService_ListProducts_FullMethodName, MarketServiceServer.ListProducts)},
		{MethodName: "GetProducts", Handler: unaryHandler(MarketService_GetProducts_FullMethodName, MarketServiceServer.GetProducts)},
		{MethodName: "ListSellerProducts", Handler: unaryHandler(MarketService_ListSellerProducts_FullMethodName, MarketServiceServer.ListSellerProducts)},
		{MethodName: "CreateProduct", Handler: unaryHandler(MarketService_CreateProduct_FullMethodName, MarketServiceServer.CreateProduct)},
		{MethodName: "UpdateProduct", Handler: unaryHandler(MarketService_UpdateProduct_FullMethodName, MarketServiceServer.UpdateProduct)},
		{MethodName: "DeleteProduct", Handler: unaryHandler(MarketService_DeleteProduct_FullMethodName, MarketServiceServer.DeleteProduct)},
		{MethodName: "ListWishlist", Handler: unaryHandler(MarketService_ListWishlist_FullMethodName, MarketServiceServer.ListWishlist)},
		{MethodName: "AddToWishlist", Handler: unaryHandler(MarketService_AddToWishlist_FullMethodName, MarketServiceServer.AddToWishlist)},
		{MethodName: "RemoveFromWishlist", Handler: unaryHandler(MarketService_RemoveFromWishlist_FullMethodName, MarketServiceServer.RemoveFromWishlist)},
		{MethodName: "SendMessage", Handler: unaryHandler(MarketService_SendMessage_FullMethodName, MarketServiceServer.SendMessage)},
		{MethodName: "ListMessages", Handler: unaryHandler(MarketService_ListMessages_FullMethodName, MarketServiceServer.ListMessages)},
		{MethodName: "MarkRead", Handler: unaryHandler(MarketService_MarkRead_FullMethodName, MarketServiceServer.MarkRead)},
		{MethodName: "CreateImageUpload", Handler: unaryHandler(MarketService_CreateImageUpload_FullMethodName, MarketServiceServer.CreateImageUpload)},
	},
	Streams: []grpc.StreamDesc{
		{StreamName: "Subscribe", Handler: subscribeHandler, ServerStreams: true},
	},
	Metadata: "market/v1/market.go",
}

// MarketServiceClient is the client API for MarketService. Every call is
// sent with the JSON content-subtype.
type MarketServiceClient interface {
	Register(ctx context.Context, in *RegisterRequest, opts ...grpc.CallOption) (*AuthResponse, error)
	Login(ctx context.Context, in *LoginRequest, opts ...grpc.CallOption) (*AuthResponse, error)
	Logout(ctx context.Context, in *LogoutRequest, opts ...grpc.CallOption) (*Empty, error)
	GetProfile(ctx context.Context, in *GetProfileRequest, opts ...grpc.CallOption) (*Profile, error)
	GetProfiles(ctx context.Context, in *GetProfilesRequest, opts ...grpc.CallOption) (*GetProfilesResponse, error)
	UpdateProfile(ctx context.Context, in *UpdateProfileRequest, opts ...grpc.CallOption) (*Profile, error)
	ListProducts(ctx context.Context, in *ListProductsRequest, opts ...grpc.CallOption) (*ListProductsResponse, error)
	GetProducts(ctx context.Context, in *GetProductsRequest, opts ...grpc.CallOption) (*ListProductsResponse, error)
	ListSellerProducts(ctx context.Context, in *ListSellerProductsRequest, opts ...grpc.CallOption) (*ListProductsResponse, error)
	CreateProduct(ctx context.Context, in *CreateProductRequest, opts ...grpc.CallOption) (*CreateProductResponse, error)
	UpdateProduct(ctx context.Context, in *UpdateProductRequest, opts ...grpc.CallOption) (*Product, error)
	DeleteProduct(ctx context.Context, in *DeleteProductRequest, opts ...grpc.CallOption) (*Empty, error)
	ListWishlist(ctx context.Context, in *ListWishlistRequest, opts ...grpc.CallOption) (*ListWishlistResponse, error)
	AddToWishlist(ctx context.Context, in *WishlistRequest, opts ...grpc.CallOption) (*Empty, error)
	RemoveFromWishlist(ctx context.Context, in *WishlistRequest, opts ...grpc.CallOption) (*Empty, error)
	SendMessage(ctx context.Context, in *SendMessageRequest, opts ...grpc.CallOption) (*Message, error)
	ListMessages(ctx context.Context, in *ListMessagesRequest, opts ...grpc.CallOption) (*ListMessagesResponse, error)
	MarkRead(ctx context.Context, in *MarkReadRequest, opts ...grpc.CallOption) (*MarkReadResponse, error)
	CreateImageUpload(ctx context.Context, in *CreateImageUploadRequest, opts ...grpc.CallOption) (*CreateImageUploadResponse, error)
	Subscribe(ctx context.Context, in *SubscribeRequest, opts ...grpc.CallOption) (MarketService_SubscribeClient, error)
}

type marketServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewMarketServiceClient wraps cc.
func NewMarketServiceClient(cc grpc.ClientConnInterface) MarketServiceClient {
	return &marketServiceClient{cc}
}

func invoke[Res any](ctx context.Context, cc grpc.ClientConnInterface, method string, in any, opts []grpc.CallOption) (*Res, error) {
	out := new(Res)
	callOpts := append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	if err := cc.Invoke(ctx, method, in, out, callOpts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *marketServiceClient) Register(ctx context.Context, in *RegisterRequest, opts ...grpc.CallOption) (*AuthResponse, error) {
	return invoke[AuthResponse](ctx, c.cc, MarketService_Register_FullMethodName, in, opts)
}
func (c *marketServiceClient) Login(ctx context.Context, in *LoginRequest, opts ...grpc.CallOption) (*AuthResponse, error) {
	return invoke[AuthResponse](ctx, c.cc, MarketService_Login_FullMethodName, in, opts)
}
func (c *marketServiceClient) Logout(ctx context.Context, in *LogoutRequest, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[Empty](ctx, c.cc, MarketService_Logout_FullMethodName, in, opts)
}
func (c *marketServiceClient) GetProfile(ctx context.Context, in *GetProfileRequest, opts ...grpc.CallOption) (*Profile, error) {
	return invoke[Profile](ctx, c.cc, MarketService_GetProfile_FullMethodName, in, opts)
}
func (c *marketServiceClient) GetProfiles(ctx context.Context, in *GetProfilesRequest, opts ...grpc.CallOption) (*GetProfilesResponse, error) {
	return invoke[GetProfilesResponse](ctx, c.cc, MarketService_GetProfiles_FullMethodName, in, opts)
}
func (c *marketServiceClient) UpdateProfile(ctx context.Context, in *UpdateProfileRequest, opts ...grpc.CallOption) (*Profile, error) {
	return invoke[Profile](ctx, c.cc, MarketService_UpdateProfile_FullMethodName, in, opts)
}
func (c *marketServiceClient) ListProducts(ctx context.Context, in *ListProductsRequest, opts ...grpc.CallOption) (*ListProductsResponse, error) {
	return invoke[ListProductsResponse](ctx, c.cc, MarketService_ListProducts_FullMethodName, in, opts)
}
func (c *marketServiceClient) GetProducts(ctx context.Context, in *GetProductsRequest, opts ...grpc.CallOption) (*ListProductsResponse, error) {
	return invoke[ListProductsResponse](ctx, c.cc, MarketService_GetProducts_FullMethodName, in, opts)
}
func (c *marketServiceClient) ListSellerProducts(ctx context.Context, in *ListSellerProductsRequest, opts ...grpc.CallOption) (*ListProductsResponse, error) {
	return invoke[ListProductsResponse](ctx, c.cc, MarketService_ListSellerProducts_FullMethodName, in, opts)
}
func (c *marketServiceClient) CreateProduct(ctx context.Context, in *CreateProductRequest, opts ...grpc.CallOption) (*CreateProductResponse, error) {
	return invoke[CreateProductResponse](ctx, c.cc, MarketService_CreateProduct_FullMethodName, in, opts)
}
func (c *marketServiceClient) UpdateProduct(ctx context.Context, in *UpdateProductRequest, opts ...grpc.CallOption) (*Product, error) {
	return invoke[Product](ctx, c.cc, MarketService_UpdateProduct_FullMethodName, in, opts)
}
func (c *marketServiceClient) DeleteProduct(ctx context.Context, in *DeleteProductRequest, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[Empty](ctx, c.cc, MarketService_DeleteProduct_FullMethodName, in, opts)
}
func (c *marketServiceClient) ListWishlist(ctx context.Context, in *ListWishlistRequest, opts ...grpc.CallOption) (*ListWishlistResponse, error) {
	return invoke[ListWishlistResponse](ctx, c.cc, MarketService_ListWishlist_FullMethodName, in, opts)
}
func (c *marketServiceClient) AddToWishlist(ctx context.Context, in *WishlistRequest, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[Empty](ctx, c.cc, MarketService_AddToWishlist_FullMethodName, in, opts)
}
func (c *marketServiceClient) RemoveFromWishlist(ctx context.Context, in *WishlistRequest, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[Empty](ctx, c.cc, MarketService_RemoveFromWishlist_FullMethodName, in, opts)
}
func (c *marketServiceClient) SendMessage(ctx context.Context, in *SendMessageRequest, opts ...grpc.CallOption) (*Message, error) {
	return invoke[Message](ctx, c.cc, MarketService_SendMessage_FullMethodName, in, opts)
}
func (c *marketServiceClient) ListMessages(ctx context.Context, in *ListMessagesRequest, opts ...grpc.CallOption) (*ListMessagesResponse, error) {
	return invoke[ListMessagesResponse](ctx, c.cc, MarketService_ListMessages_FullMethodName, in, opts)
}
func (c *marketServiceClient) MarkRead(ctx context.Context, in *MarkReadRequest, opts ...grpc.CallOption) (*MarkReadResponse, error) {
	return invoke[MarkReadResponse](ctx, c.cc, MarketService_MarkRead_FullMethodName, in, opts)
}
func (c *marketServiceClient) CreateImageUpload(ctx context.Context, in *CreateImageUploadRequest, opts ...grpc.CallOption) (*CreateImageUploadResponse, error) {
	return invoke[CreateImageUploadResponse](ctx, c.cc, MarketService_CreateImageUpload_FullMethodName, in, opts)
}

func (c *marketServiceClient) Subscribe(ctx context.Context, in *SubscribeRequest, opts ...grpc.CallOption) (MarketService_SubscribeClient, error) {
	callOpts := append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	stream, err := c.cc.NewStream(ctx, &MarketService_ServiceDesc.Streams[0], MarketService_Subscribe_FullMethodName, callOpts...)
	if err != nil {
		return nil, err
	}
	x := &grpc.GenericClientStream[SubscribeRequest, ChangeEvent]{ClientStream: stream}
	if err := x.ClientStream.SendMsg(in); err != nil {
		return nil, err
	}
	if err := x.ClientStream.CloseSend(); err != nil {
		return nil, err
	}
	return x, nil
}
