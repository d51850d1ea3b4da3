package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/PaulBabatuyi/campusMarket-gRPC/internal/auth"
	"github.com/PaulBabatuyi/campusMarket-gRPC/internal/client"
	"github.com/PaulBabatuyi/campusMarket-gRPC/internal/config"
	"github.com/PaulBabatuyi/campusMarket-gRPC/internal/localstore"
	"github.com/PaulBabatuyi/campusMarket-gRPC/internal/logger"
	"github.com/PaulBabatuyi/campusMarket-gRPC/internal/market"
)

// Backend is everything the commands need from the server connection.
type Backend interface {
	market.SessionBackend
	market.CatalogBackend
	market.WishlistBackend
	market.MessageBackend
	market.ChangeFeed
	UploadImage(ctx context.Context, kind, path string) (string, error)
}

// App wires the stores over one backend.
type App struct {
	Backend  Backend
	Session  *market.Session
	Catalog  *market.Catalog
	Wishlist *market.Wishlist
	Messages *market.Messages
	Timeout  time.Duration

	closers []func() error
}

func NewApp(b Backend, opts ...market.Option) *App {
	session := market.NewSession(b, opts...)
	return &App{
		Backend:  b,
		Session:  session,
		Catalog:  market.NewCatalog(b, b, session, opts...),
		Wishlist: market.NewWishlist(b, b, session, opts...),
		Messages: market.NewMessages(b, b, session, opts...),
		Timeout:  10 * time.Second,
	}
}

// OnClose registers fn to run when the app is closed, last registered first.
func (a *App) OnClose(fn func() error) { a.closers = append(a.closers, fn) }

func (a *App) Close() error {
	a.Session.Close()
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	return errors.Join(errs...)
}

// Opener builds the App for a command run.
type Opener func(ro *RootOptions, notify market.Notifier, extra ...market.Option) (*App, error)

// DefaultOpener reads configuration, opens the local cache and dials the
// server.
func DefaultOpener(ro *RootOptions, notify market.Notifier, extra ...market.Option) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "load configuration", err)
	}
	if ro.Addr != "" {
		cfg.Client.Addr = ro.Addr
	}
	if ro.Insecure {
		cfg.Client.Insecure = true
	}

	level := "warn"
	if ro.Verbose {
		level = "debug"
	}
	log, err := logger.New(&logger.Config{Level: level, Format: "console", Output: "stderr"})
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "create logger", err)
	}

	store, err := localstore.Open(cfg.Client.CachePath, log)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "open local cache", err)
	}
	conn, err := client.Dial(cfg.Client, client.WithLogger(log), client.WithStore(store))
	if err != nil {
		_ = store.Close()
		return nil, WrapExitError(ExitCommandError, fmt.Sprintf("connect to %s", cfg.Client.Addr), err)
	}

	opts := append([]market.Option{
		market.WithLogger(log),
		market.WithNotifier(notify),
		market.WithCache(store),
		market.WithPolicy(auth.Policy{
			EmailDomain:       cfg.Auth.EmailDomain,
			MinPasswordLength: cfg.Auth.MinPasswordLength,
		}),
	}, extra...)
	app := NewApp(conn, opts...)
	app.Timeout = cfg.Client.Timeout
	app.OnClose(store.Close)
	app.OnClose(conn.Close)
	app.OnClose(func() error { _ = log.Sync(); return nil })
	log.Debug("marketctl ready", zap.String("addr", cfg.Client.Addr), zap.String("cache", cfg.Client.CachePath))
	return app, nil
}
