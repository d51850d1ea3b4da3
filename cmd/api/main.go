// Command api serves the Campus Market gRPC service.
package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"

	v1 "github.com/PaulBabatuyi/campusMarket-gRPC/api/market/v1"
	"github.com/PaulBabatuyi/campusMarket-gRPC/internal/auth"
	"github.com/PaulBabatuyi/campusMarket-gRPC/internal/config"
	"github.com/PaulBabatuyi/campusMarket-gRPC/internal/data"
	"github.com/PaulBabatuyi/campusMarket-gRPC/internal/db"
	"github.com/PaulBabatuyi/campusMarket-gRPC/internal/health"
	"github.com/PaulBabatuyi/campusMarket-gRPC/internal/logger"
	"github.com/PaulBabatuyi/campusMarket-gRPC/internal/middleware"
	"github.com/PaulBabatuyi/campusMarket-gRPC/internal/realtime"
	"github.com/PaulBabatuyi/campusMarket-gRPC/internal/storage"
	"github.com/PaulBabatuyi/campusMarket-gRPC/internal/validation"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if err := cfg.ValidateServer(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(&logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format, Output: cfg.Log.Output})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("server exited", zap.Error(err))
		_ = log.Sync()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, log *zap.Logger) error {
	// Initialize database
	connectCtx, cancel := context.WithTimeout(ctx, cfg.Mongo.ConnectTimeout)
	defer cancel()
	dbClient, err := db.New(connectCtx, cfg.Mongo.URI, cfg.Mongo.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to DB: %w", err)
	}
	defer func() {
		_ = dbClient.Close(context.Background())
	}()

	// Ensure indexes exist
	if err := dbClient.CreateIndexes(connectCtx); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}

	jwtMgr, err := newJWTManager(cfg.JWT)
	if err != nil {
		return err
	}

	checks := map[string]health.Checker{"mongo": dbClient.Ping}
	hub := realtime.NewHub(log.Named("hub"))
	g, ctx := errgroup.WithContext(ctx)

	// Redis shares revoked tokens and change events across instances;
	// without it both stay in process.
	var (
		blacklist auth.TokenBlacklist
		broker    realtime.Broker
	)
	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer rdb.Close()
		if err := rdb.Ping(connectCtx).Err(); err != nil {
			return fmt.Errorf("failed to connect to redis: %w", err)
		}
		checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }

		blacklist = auth.NewRedisTokenBlacklist(rdb)
		rb := realtime.NewRedisBroker(rdb, hub,
			realtime.WithChannel(cfg.Redis.Channel),
			realtime.WithLogger(log.Named("broker")))
		broker = rb
		g.Go(func() error { return rb.Run(ctx) })
	} else {
		log.Warn("redis not configured; token revocation and change feed are local to this instance")
		blacklist = auth.NewInMemoryTokenBlacklist()
		broker = realtime.NewLocalBroker(hub)
	}

	var images ImageStorage
	if cfg.Storage.Bucket != "" {
		s3, err := storage.NewS3ImageStorage(&cfg.Storage, storage.WithLogger(log.Named("storage")))
		if err != nil {
			return fmt.Errorf("failed to init image storage: %w", err)
		}
		images = s3
	}

	// Create stores
	srv := newServer(Deps{
		Users:     data.NewUsersStore(dbClient.UsersCollection()),
		Profiles:  data.NewProfilesStore(dbClient.ProfilesCollection()),
		Products:  data.NewProductsStore(dbClient.ProductsCollection()),
		Wishlists: data.NewWishlistsStore(dbClient.WishlistsCollection()),
		Messages:  data.NewMessagesStore(dbClient.MessagesCollection()),
		Images:    images,
		Auth:      jwtMgr,
		Blacklist: blacklist,
		Policy: auth.Policy{
			EmailDomain:       cfg.Auth.EmailDomain,
			MinPasswordLength: cfg.Auth.MinPasswordLength,
		},
		Broker:   broker,
		Hub:      hub,
		Validate: validation.New(),
		Log:      log,
	})

	// Rate limit Register and Login (small burst to allow a couple of quick retries)
	limiterStore := middleware.NewLimiterStore(cfg.RateLimit.RequestsPerMinute, cfg.RateLimit.Burst, cfg.RateLimit.CleanupInterval)
	defer limiterStore.Stop()
	limited := middleware.Methods(v1.MarketService_Register_FullMethodName, v1.MarketService_Login_FullMethodName)

	var serverOpts []grpc.ServerOption
	if cfg.TLS.CertFile != "" {
		creds, err := credentials.NewServerTLSFromFile(cfg.TLS.CertFile, cfg.TLS.KeyFile)
		if err != nil {
			return fmt.Errorf("failed to load TLS certs: %w", err)
		}
		serverOpts = append(serverOpts, grpc.Creds(creds))
	} else {
		log.Warn("TLS not configured; serving plaintext gRPC")
	}

	// access log -> rate limiter -> auth
	serverOpts = append(serverOpts,
		grpc.ChainUnaryInterceptor(
			loggingUnaryInterceptor(log),
			middleware.RateLimitUnaryInterceptor(limiterStore, limited, log),
			authUnaryInterceptor(jwtMgr, blacklist),
		),
		grpc.ChainStreamInterceptor(
			loggingStreamInterceptor(log),
			authStreamInterceptor(jwtMgr, blacklist),
		),
	)

	grpcServer := grpc.NewServer(serverOpts...)
	registerService(grpcServer, srv)

	listenAddr := ":" + cfg.App.Port
	lis, err := net.Listen("tcp", listenAddr)
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}
	healthServer := &http.Server{
		Addr:              ":" + cfg.App.HealthPort,
		Handler:           health.NewRouter(log.Named("health"), checks),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g.Go(func() error {
		log.Info("gRPC server listening", zap.String("addr", listenAddr), zap.String("env", cfg.App.Env))
		return grpcServer.Serve(lis)
	})
	g.Go(func() error {
		log.Info("health server listening", zap.String("addr", healthServer.Addr))
		if err := healthServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	// Graceful shutdown on SIGINT/SIGTERM or when any part fails
	g.Go(func() error {
		<-ctx.Done()
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = healthServer.Shutdown(shutdownCtx)
		grpcServer.GracefulStop()
		return nil
	})

	return g.Wait()
}

// newJWTManager uses the rotation key set when configured, otherwise the
// single secret.
func newJWTManager(cfg config.JWTConfig) (*auth.JWTManager, error) {
	if cfg.Keys == "" {
		return auth.NewJWTManager(cfg.Secret, cfg.Expiration), nil
	}
	keys, err := config.ParseJWTKeys(cfg.Keys)
	if err != nil {
		return nil, err
	}
	return auth.NewJWTManagerFromKeys(keys, cfg.ActiveKid, cfg.Expiration), nil
}
