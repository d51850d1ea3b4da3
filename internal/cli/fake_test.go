package cli

import (
	"bytes"
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/PaulBabatuyi/campusMarket-gRPC/internal/auth"
	"github.com/PaulBabatuyi/campusMarket-gRPC/internal/market"
	"github.com/PaulBabatuyi/campusMarket-gRPC/internal/retry"
)

// stubBackend is an in-memory Backend.
type stubBackend struct {
	mu        sync.Mutex
	session   *market.AuthSession
	listeners []func(market.AuthEvent)
	passwords map[string]string
	profiles  map[string]market.Profile
	products  []market.ProductRow
	wishlist  []string
	messages  []market.Message
	uploads   []string
	nextID    int
}

func newStubBackend() *stubBackend {
	return &stubBackend{
		passwords: map[string]string{},
		profiles:  map[string]market.Profile{},
	}
}

func (b *stubBackend) signedIn(userID string) *stubBackend {
	b.session = &market.AuthSession{Token: "t-" + userID, UserID: userID, Email: userID + "@rguktrkv.ac.in", ExpiresAt: time.Now().Add(time.Hour)}
	return b
}

func (b *stubBackend) emit() {
	b.mu.Lock()
	ev := market.AuthEvent{Session: b.session}
	ls := append([]func(market.AuthEvent){}, b.listeners...)
	b.mu.Unlock()
	for _, fn := range ls {
		fn(ev)
	}
}

func (b *stubBackend) me() string {
	if b.session == nil {
		return ""
	}
	return b.session.UserID
}

func (b *stubBackend) SignIn(ctx context.Context, email, password string) (*market.AuthSession, error) {
	b.mu.Lock()
	pw, ok := b.passwords[email]
	if !ok || pw != password {
		b.mu.Unlock()
		return nil, &market.BackendError{Message: "Invalid login credentials", Kind: market.ErrUnauthenticated}
	}
	b.session = &market.AuthSession{Token: "t", UserID: "u-" + email[:3], Email: email, ExpiresAt: time.Now().Add(time.Hour)}
	s := *b.session
	b.mu.Unlock()
	b.emit()
	return &s, nil
}

func (b *stubBackend) SignUp(ctx context.Context, in market.SignUp) (*market.AuthSession, error) {
	b.mu.Lock()
	b.passwords[in.Email] = in.Password
	b.mu.Unlock()
	return b.SignIn(ctx, in.Email, in.Password)
}

func (b *stubBackend) SignOut(ctx context.Context) error {
	b.mu.Lock()
	b.session = nil
	b.mu.Unlock()
	b.emit()
	return nil
}

func (b *stubBackend) OnAuthStateChange(fn func(market.AuthEvent)) func() {
	b.mu.Lock()
	b.listeners = append(b.listeners, fn)
	s := b.session
	b.mu.Unlock()
	if s != nil {
		fn(market.AuthEvent{Session: s})
	}
	return func() {}
}

func (b *stubBackend) GetProfile(ctx context.Context, userID string) (*market.Profile, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	p, ok := b.profiles[userID]
	if !ok {
		return nil, &market.BackendError{Message: "not found", Kind: market.ErrNotFound}
	}
	return &p, nil
}

func (b *stubBackend) GetProfiles(ctx context.Context, ids []string) ([]market.Profile, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []market.Profile
	for _, id := range ids {
		if p, ok := b.profiles[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (b *stubBackend) UpdateProfile(ctx context.Context, u market.ProfileUpdate) (*market.Profile, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	p := b.profiles[b.me()]
	p.ID = b.me()
	if u.FullName != nil {
		p.FullName = *u.FullName
	}
	if u.AvatarURL != nil {
		p.AvatarURL = *u.AvatarURL
	}
	b.profiles[p.ID] = p
	return &p, nil
}

func (b *stubBackend) ListActiveProducts(ctx context.Context, offset, limit int) ([]market.ProductRow, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	var active []market.ProductRow
	for _, p := range b.products {
		if p.Status == market.StatusActive {
			active = append(active, p)
		}
	}
	if offset >= len(active) {
		return nil, nil
	}
	return active[offset:min(offset+limit, len(active))], nil
}

func (b *stubBackend) ListSellerProducts(ctx context.Context, sellerID string) ([]market.ProductRow, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []market.ProductRow
	for _, p := range b.products {
		if p.SellerID == sellerID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (b *stubBackend) GetProducts(ctx context.Context, ids []string) ([]market.ProductRow, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []market.ProductRow
	for _, p := range b.products {
		for _, id := range ids {
			if p.ID == id {
				out = append(out, p)
			}
		}
	}
	return out, nil
}

func (b *stubBackend) InsertProduct(ctx context.Context, p market.NewProduct) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	id := fmt.Sprintf("p%d", b.nextID)
	b.products = append(b.products, market.ProductRow{
		ID: id, Title: p.Title, Description: p.Description, Price: p.Price, Negotiable: p.Negotiable,
		Condition: p.Condition, Category: p.Category, Location: p.Location, Images: p.Images,
		SellerID: b.me(), Status: market.StatusActive, CreatedAt: time.Now(),
	})
	return id, nil
}

func (b *stubBackend) UpdateProduct(ctx context.Context, id string, p market.ProductPatch) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := range b.products {
		if b.products[i].ID == id {
			if p.Price != nil {
				b.products[i].Price = *p.Price
			}
			if p.Status != nil {
				b.products[i].Status = *p.Status
			}
			return nil
		}
	}
	return &market.BackendError{Message: "product not found", Kind: market.ErrNotFound}
}

func (b *stubBackend) DeleteProduct(ctx context.Context, id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := range b.products {
		if b.products[i].ID == id {
			b.products = append(b.products[:i], b.products[i+1:]...)
			return nil
		}
	}
	return &market.BackendError{Message: "product not found", Kind: market.ErrNotFound}
}

func (b *stubBackend) ListWishlist(ctx context.Context) ([]string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string{}, b.wishlist...), nil
}

func (b *stubBackend) AddToWishlist(ctx context.Context, productID string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.wishlist = append(b.wishlist, productID)
	return nil
}

func (b *stubBackend) RemoveFromWishlist(ctx context.Context, productID string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, id := range b.wishlist {
		if id == productID {
			b.wishlist = append(b.wishlist[:i], b.wishlist[i+1:]...)
			break
		}
	}
	return nil
}

func (b *stubBackend) SendMessage(ctx context.Context, receiverID, content, productID string) (*market.Message, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	m := market.Message{
		ID: fmt.Sprintf("m%d", b.nextID), SenderID: b.me(), ReceiverID: receiverID,
		Content: content, ProductID: productID, Timestamp: time.Now(),
	}
	b.messages = append(b.messages, m)
	return &m, nil
}

func (b *stubBackend) ListMessages(ctx context.Context) ([]market.Message, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]market.Message{}, b.messages...), nil
}

func (b *stubBackend) MarkRead(ctx context.Context, otherUserID string) (int64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	var n int64
	for i, m := range b.messages {
		if m.SenderID == otherUserID && m.ReceiverID == b.me() && !m.Read {
			b.messages[i].Read = true
			n++
		}
	}
	return n, nil
}

func (b *stubBackend) Subscribe(ctx context.Context, table string) (<-chan market.ChangeEvent, error) {
	ch := make(chan market.ChangeEvent)
	go func() {
		<-ctx.Done()
		close(ch)
	}()
	return ch, nil
}

func (b *stubBackend) UploadImage(ctx context.Context, kind, path string) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.uploads = append(b.uploads, path)
	return "https://img.example/" + kind + "/" + path, nil
}

func stubOpener(b *stubBackend) Opener {
	return func(ro *RootOptions, notify market.Notifier, extra ...market.Option) (*App, error) {
		opts := append([]market.Option{
			market.WithNotifier(notify),
			market.WithPolicy(auth.DefaultPolicy()),
			market.WithRetryPolicy(retry.Policy{Attempts: 1, Delay: time.Millisecond}),
			market.WithPageDelay(0),
		}, extra...)
		return NewApp(b, opts...), nil
	}
}

// execute runs marketctl with args against b and returns stdout and stderr.
func execute(t *testing.T, b *stubBackend, args ...string) (string, string, error) {
	t.Helper()
	cmd := NewRootCommand(stubOpener(b))
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}

func mustExecute(t *testing.T, b *stubBackend, args ...string) string {
	t.Helper()
	out, errOut, err := execute(t, b, args...)
	require.NoError(t, err, "stderr: %s", errOut)
	return out
}
