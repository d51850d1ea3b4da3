package main

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	v1 "github.com/PaulBabatuyi/campusMarket-gRPC/api/market/v1"
	"github.com/PaulBabatuyi/campusMarket-gRPC/internal/auth"
	"github.com/PaulBabatuyi/campusMarket-gRPC/internal/logger"
)

const requestIDHeader = "x-request-id"

// publicMethods can be called without a token.
var publicMethods = map[string]bool{
	v1.MarketService_Register_FullMethodName: true,
	v1.MarketService_Login_FullMethodName:    true,
}

// context key type for storing auth claims in context
type authContextKey struct{}

// getClaimsFromContext extracts auth claims from the context, if present.
func getClaimsFromContext(ctx context.Context) (*auth.Claims, bool) {
	v := ctx.Value(authContextKey{})
	if v == nil {
		return nil, false
	}
	c, ok := v.(*auth.Claims)
	return c, ok
}

// requestID reuses the caller's x-request-id or makes a new one.
func requestID(ctx context.Context) string {
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if ids := md.Get(requestIDHeader); len(ids) > 0 && ids[0] != "" {
			return ids[0]
		}
	}
	return uuid.NewString()
}

// loggingUnaryInterceptor tags the context with a request id and writes
// one access log line per call.
func loggingUnaryInterceptor(log *zap.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		start := time.Now()
		id := requestID(ctx)
		ctx, reqLog := logger.WithRequestID(ctx, log, id)
		_ = grpc.SetHeader(ctx, metadata.Pairs(requestIDHeader, id))

		resp, err := handler(ctx, req)
		accessLog(reqLog, info.FullMethod, start, err)
		return resp, err
	}
}

// loggingStreamInterceptor is the stream equivalent of loggingUnaryInterceptor.
func loggingStreamInterceptor(log *zap.Logger) grpc.StreamServerInterceptor {
	return func(srv interface{}, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
		start := time.Now()
		id := requestID(ss.Context())
		ctx, _ := logger.WithRequestID(ss.Context(), log, id)
		_ = ss.SetHeader(metadata.Pairs(requestIDHeader, id))

		wrapped := &wrappedServerStream{ServerStream: ss, ctx: ctx}
		err := handler(srv, wrapped)
		// the auth interceptor may have swapped in a logger tagged with the user
		accessLog(logger.FromContext(wrapped.ctx), info.FullMethod, start, err)
		return err
	}
}

func accessLog(log *zap.Logger, method string, start time.Time, err error) {
	code := status.Code(err)
	fields := []zap.Field{
		zap.String("method", method),
		zap.String("code", code.String()),
		zap.Duration("duration", time.Since(start)),
	}
	switch code {
	case codes.OK, codes.Canceled:
		log.Info("rpc", fields...)
	case codes.Internal, codes.Unknown, codes.DataLoss:
		log.Error("rpc", append(fields, zap.Error(err))...)
	default:
		log.Warn("rpc", append(fields, zap.Error(err))...)
	}
}

// authenticate checks the bearer token of ctx, including revocation, and
// returns a context carrying the claims.
func authenticate(ctx context.Context, j *auth.JWTManager, blacklist auth.TokenBlacklist) (context.Context, error) {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return nil, status.Errorf(codes.Unauthenticated, "missing metadata")
	}
	authHeaders := md.Get("authorization")
	if len(authHeaders) == 0 {
		return nil, status.Errorf(codes.Unauthenticated, "missing authorization header")
	}

	token := strings.TrimSpace(strings.TrimPrefix(authHeaders[0], "Bearer"))
	if token == "" {
		return nil, status.Errorf(codes.Unauthenticated, "invalid token")
	}

	claims, err := j.VerifyToken(token)
	if err != nil {
		return nil, status.Errorf(codes.Unauthenticated, "unauthenticated: %v", err)
	}
	if blacklist != nil && claims.ID != "" {
		revoked, err := blacklist.IsBlacklisted(ctx, claims.ID)
		if err != nil {
			logger.FromContext(ctx).Error("blacklist lookup failed", zap.Error(err))
			return nil, status.Errorf(codes.Unavailable, "session check unavailable")
		}
		if revoked {
			return nil, status.Errorf(codes.Unauthenticated, "session has been signed out")
		}
	}

	// attach claims into context for handlers
	ctx = context.WithValue(ctx, authContextKey{}, claims)
	ctx, _ = logger.WithUserID(ctx, logger.FromContext(ctx), claims.UserID)
	return ctx, nil
}

// authUnaryInterceptor returns a UnaryServerInterceptor that enforces JWT authentication
// for all methods except publicMethods (Register, Login).
func authUnaryInterceptor(j *auth.JWTManager, blacklist auth.TokenBlacklist) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		if publicMethods[info.FullMethod] {
			return handler(ctx, req)
		}
		ctx, err := authenticate(ctx, j, blacklist)
		if err != nil {
			return nil, err
		}
		return handler(ctx, req)
	}
}

// authStreamInterceptor is the stream equivalent of authUnaryInterceptor.
func authStreamInterceptor(j *auth.JWTManager, blacklist auth.TokenBlacklist) grpc.StreamServerInterceptor {
	return func(srv interface{}, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
		if publicMethods[info.FullMethod] {
			return handler(srv, ss)
		}
		ctx, err := authenticate(ss.Context(), j, blacklist)
		if err != nil {
			return err
		}
		if w, ok := ss.(*wrappedServerStream); ok {
			// let the access log see the user
			w.ctx = ctx
			return handler(srv, w)
		}
		return handler(srv, &wrappedServerStream{ServerStream: ss, ctx: ctx})
	}
}

// wrappedServerStream wraps grpc.ServerStream to override Context()
type wrappedServerStream struct {
	grpc.ServerStream
	ctx context.Context
}

// Context returns the wrapped context (with claims)
func (w *wrappedServerStream) Context() context.Context { return w.ctx }
