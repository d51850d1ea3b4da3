// Package client is the gRPC client of MarketService. It owns the
// authenticated session, attaches the bearer token to every call and
// satisfies the backend interfaces of package market.
package client

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"

	v1 "github.com/PaulBabatuyi/campusMarket-gRPC/api/market/v1"
	"github.com/PaulBabatuyi/campusMarket-gRPC/internal/config"
	"github.com/PaulBabatuyi/campusMarket-gRPC/internal/market"
)

// CacheKeySession is where the session is persisted between runs.
const CacheKeySession = "session"

// Store persists the session. *localstore.Store satisfies it.
type Store interface {
	Load(ctx context.Context, key string, v any) bool
	Put(ctx context.Context, key string, v any) error
	Delete(ctx context.Context, key string) error
}

type Option func(*Client)

func WithLogger(log *zap.Logger) Option {
	return func(c *Client) { c.log = log }
}

// WithStore persists the session so it survives restarts.
func WithStore(s Store) Option {
	return func(c *Client) { c.store = s }
}

type Client struct {
	rpc  v1.MarketServiceClient
	conn *grpc.ClientConn // nil when the caller owns the connection

	log   *zap.Logger
	store Store

	mu           sync.RWMutex
	session      *market.AuthSession
	listeners    map[int]func(market.AuthEvent)
	nextListener int
}

// Dial connects to the server described by cfg.
func Dial(cfg config.ClientConfig, opts ...Option) (*Client, error) {
	creds := credentials.NewClientTLSFromCert(nil, "")
	if cfg.Insecure {
		creds = insecure.NewCredentials()
	}
	conn, err := grpc.NewClient(cfg.Addr, grpc.WithTransportCredentials(creds))
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", cfg.Addr, err)
	}
	c := New(conn, opts...)
	c.conn = conn
	return c, nil
}

// New wraps an existing connection.
func New(cc grpc.ClientConnInterface, opts ...Option) *Client {
	c := &Client{
		rpc:       v1.NewMarketServiceClient(cc),
		log:       zap.NewNop(),
		listeners: make(map[int]func(market.AuthEvent)),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.restore()
	return c
}

func (c *Client) Close() error {
	if c.conn == nil {
		return nil
	}
	return c.conn.Close()
}

func (c *Client) restore() {
	if c.store == nil {
		return
	}
	ctx := context.Background()
	var s market.AuthSession
	if !c.store.Load(ctx, CacheKeySession, &s) {
		return
	}
	if s.Token == "" || (!s.ExpiresAt.IsZero() && time.Now().After(s.ExpiresAt)) {
		c.log.Debug("stored session expired", zap.String("user_id", s.UserID))
		_ = c.store.Delete(ctx, CacheKeySession)
		return
	}
	c.session = &s
}

// Session returns a copy of the current session, or nil.
func (c *Client) Session() *market.AuthSession {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.session == nil {
		return nil
	}
	s := *c.session
	return &s
}

// OnAuthStateChange registers fn. When a session already exists fn is
// called with it before OnAuthStateChange returns.
func (c *Client) OnAuthStateChange(fn func(market.AuthEvent)) func() {
	c.mu.Lock()
	id := c.nextListener
	c.nextListener++
	c.listeners[id] = fn
	var current *market.AuthSession
	if c.session != nil {
		s := *c.session
		current = &s
	}
	c.mu.Unlock()

	if current != nil {
		fn(market.AuthEvent{Session: current})
	}
	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.listeners, id)
	}
}

func (c *Client) setSession(s *market.AuthSession) {
	c.mu.Lock()
	c.session = s
	fns := make([]func(market.AuthEvent), 0, len(c.listeners))
	for _, fn := range c.listeners {
		fns = append(fns, fn)
	}
	c.mu.Unlock()

	if c.store != nil {
		ctx := context.Background()
		var err error
		if s == nil {
			err = c.store.Delete(ctx, CacheKeySession)
		} else {
			err = c.store.Put(ctx, CacheKeySession, s)
		}
		if err != nil {
			c.log.Warn("session store write failed", zap.Error(err))
		}
	}

	for _, fn := range fns {
		var ev market.AuthEvent
		if s != nil {
			cp := *s
			ev.Session = &cp
		}
		fn(ev)
	}
}

// outgoing attaches the bearer token, when there is one.
func (c *Client) outgoing(ctx context.Context) context.Context {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.session == nil {
		return ctx
	}
	return metadata.AppendToOutgoingContext(ctx, "authorization", "Bearer "+c.session.Token)
}

// fail converts err and drops the session when the server no longer
// accepts its token.
func (c *Client) fail(err error) error {
	err = convertError(err)
	if errors.Is(err, market.ErrUnauthenticated) && c.Session() != nil {
		c.log.Info("session rejected by server; signing out locally")
		c.setSession(nil)
	}
	return err
}

func (c *Client) authenticated(resp *v1.AuthResponse) *market.AuthSession {
	if resp.Token == "" {
		return nil
	}
	return &market.AuthSession{
		Token:     resp.Token,
		UserID:    resp.UserID,
		Email:     resp.Email,
		ExpiresAt: resp.ExpiresAt,
	}
}

func (c *Client) SignIn(ctx context.Context, email, password string) (*market.AuthSession, error) {
	resp, err := c.rpc.Login(ctx, &v1.LoginRequest{Email: email, Password: password})
	if err != nil {
		return nil, convertError(err)
	}
	s := c.authenticated(resp)
	if s == nil {
		return nil, &market.BackendError{Message: "server returned no session"}
	}
	c.setSession(s)
	return c.Session(), nil
}

func (c *Client) SignUp(ctx context.Context, in market.SignUp) (*market.AuthSession, error) {
	resp, err := c.rpc.Register(ctx, &v1.RegisterRequest{
		Email:         in.Email,
		Password:      in.Password,
		FullName:      in.FullName,
		StudentID:     in.StudentID,
		PhoneNumber:   in.PhoneNumber,
		HostelDetails: in.HostelDetails,
	})
	if err != nil {
		return nil, convertError(err)
	}
	s := c.authenticated(resp)
	if s == nil {
		return nil, nil
	}
	c.setSession(s)
	return c.Session(), nil
}

// SignOut revokes the token on the server. The local session is dropped
// whatever the server answers.
func (c *Client) SignOut(ctx context.Context) error {
	if c.Session() == nil {
		return nil
	}
	_, err := c.rpc.Logout(c.outgoing(ctx), &v1.LogoutRequest{})
	c.setSession(nil)
	if err != nil {
		return convertError(err)
	}
	return nil
}
