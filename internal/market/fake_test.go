package market

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/PaulBabatuyi/campusMarket-gRPC/internal/normalize"
	"github.com/PaulBabatuyi/campusMarket-gRPC/internal/retry"
)

var fastRetry = retry.Policy{Attempts: 3, Delay: time.Millisecond}

type staticSession string

func (s staticSession) UserID() string { return string(s) }

type recordingNotifier struct {
	mu        sync.Mutex
	successes []string
	errors    []string
}

func (n *recordingNotifier) Success(msg string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.successes = append(n.successes, msg)
}

func (n *recordingNotifier) Error(msg string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.errors = append(n.errors, msg)
}

func (n *recordingNotifier) lastSuccess() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.successes) == 0 {
		return ""
	}
	return n.successes[len(n.successes)-1]
}

func (n *recordingNotifier) lastError() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.errors) == 0 {
		return ""
	}
	return n.errors[len(n.errors)-1]
}

// fakeBackend is an in-memory backend. The signed-in user for table
// operations is whatever session the test set up.
type fakeBackend struct {
	mu sync.Mutex

	listeners    map[int]func(AuthEvent)
	nextListener int
	session      *AuthSession
	signInErr    error
	signUpErr    error
	signOutErr   error
	noAutoLogin  bool
	authCalls    int
	signedUp     []SignUp

	profiles        map[string]Profile
	profileErr      error
	profileUpdates  []ProfileUpdate
	getProfilesErr  error
	getProfilesArgs [][]string

	products    []ProductRow
	pageFails   map[int]int // offset -> failures left
	pageCalls   map[int]int
	pageGate    chan struct{} // first call of offset 0 waits on it after reading
	pageEntered chan struct{}
	inserted    []NewProduct
	patches     map[string]ProductPatch
	mutateErr   error
	sellerErr   error
	deleted     []string

	wishlist        []string
	wishlistFails   int
	wishlistCalls   int
	addCalls        int
	getProductsArgs [][]string

	messages    []Message
	markRead    []string
	listGate    chan struct{} // next ListMessages waits on it after reading
	listEntered chan struct{}
	nextID   int
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		listeners: make(map[int]func(AuthEvent)),
		profiles:  make(map[string]Profile),
		pageFails: make(map[int]int),
		pageCalls: make(map[int]int),
		patches:   make(map[string]ProductPatch),
	}
}

func (f *fakeBackend) emit(s *AuthSession) {
	f.mu.Lock()
	f.session = s
	fns := make([]func(AuthEvent), 0, len(f.listeners))
	for _, fn := range f.listeners {
		fns = append(fns, fn)
	}
	f.mu.Unlock()
	for _, fn := range fns {
		fn(AuthEvent{Session: s})
	}
}

func (f *fakeBackend) OnAuthStateChange(fn func(AuthEvent)) func() {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := f.nextListener
	f.nextListener++
	f.listeners[id] = fn
	return func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		delete(f.listeners, id)
	}
}

func (f *fakeBackend) SignIn(_ context.Context, email, _ string) (*AuthSession, error) {
	f.mu.Lock()
	f.authCalls++
	err := f.signInErr
	f.mu.Unlock()
	if err != nil {
		return nil, err
	}
	s := &AuthSession{Token: "tok", UserID: "u1", Email: normalize.Email(email), ExpiresAt: time.Now().Add(time.Hour)}
	f.emit(s)
	return s, nil
}

func (f *fakeBackend) SignUp(_ context.Context, in SignUp) (*AuthSession, error) {
	f.mu.Lock()
	f.authCalls++
	f.signedUp = append(f.signedUp, in)
	err, noAuto := f.signUpErr, f.noAutoLogin
	f.mu.Unlock()
	if err != nil {
		return nil, err
	}
	if noAuto {
		return nil, nil
	}
	s := &AuthSession{Token: "tok", UserID: "u1", Email: normalize.Email(in.Email)}
	f.emit(s)
	return s, nil
}

func (f *fakeBackend) SignOut(context.Context) error {
	f.mu.Lock()
	err := f.signOutErr
	f.mu.Unlock()
	if err != nil {
		return err
	}
	f.emit(nil)
	return nil
}

func (f *fakeBackend) GetProfile(_ context.Context, userID string) (*Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.profileErr != nil {
		return nil, f.profileErr
	}
	p, ok := f.profiles[userID]
	if !ok {
		return nil, &BackendError{Message: "profile not found", Kind: ErrNotFound}
	}
	return &p, nil
}

func (f *fakeBackend) GetProfiles(_ context.Context, ids []string) ([]Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.getProfilesArgs = append(f.getProfilesArgs, slices.Clone(ids))
	if f.getProfilesErr != nil {
		return nil, f.getProfilesErr
	}
	var out []Profile
	for _, id := range ids {
		if p, ok := f.profiles[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeBackend) UpdateProfile(_ context.Context, u ProfileUpdate) (*Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.mutateErr != nil {
		return nil, f.mutateErr
	}
	f.profileUpdates = append(f.profileUpdates, u)
	p := f.profiles[f.session.UserID]
	p.ID = f.session.UserID
	u.applyTo(&p)
	f.profiles[p.ID] = p
	return &p, nil
}

func (f *fakeBackend) ListSellerProducts(_ context.Context, sellerID string) ([]ProductRow, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sellerErr != nil {
		return nil, f.sellerErr
	}
	var out []ProductRow
	for _, r := range f.products {
		if r.SellerID == sellerID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeBackend) ListActiveProducts(_ context.Context, offset, limit int) ([]ProductRow, error) {
	f.mu.Lock()
	f.pageCalls[offset]++
	if f.pageFails[offset] > 0 {
		f.pageFails[offset]--
		f.mu.Unlock()
		return nil, fmt.Errorf("page %d unavailable", offset)
	}
	var page []ProductRow
	if offset < len(f.products) {
		page = slices.Clone(f.products[offset:min(offset+limit, len(f.products))])
	}
	gate, entered := f.pageGate, f.pageEntered
	if offset == 0 && gate != nil {
		f.pageGate, f.pageEntered = nil, nil
	}
	f.mu.Unlock()

	if offset == 0 && gate != nil {
		close(entered)
		<-gate
	}
	return page, nil
}

func (f *fakeBackend) GetProducts(_ context.Context, ids []string) ([]ProductRow, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.getProductsArgs = append(f.getProductsArgs, slices.Clone(ids))
	var out []ProductRow
	for _, p := range f.products {
		if slices.Contains(ids, p.ID) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeBackend) InsertProduct(_ context.Context, p NewProduct) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.mutateErr != nil {
		return "", f.mutateErr
	}
	f.nextID++
	id := fmt.Sprintf("p-new-%d", f.nextID)
	f.inserted = append(f.inserted, p)
	f.products = append([]ProductRow{{
		ID: id, Title: p.Title, Price: p.Price, Condition: p.Condition,
		Category: p.Category, Location: p.Location, Images: p.Images,
		SellerID: f.session.UserID, Status: StatusActive, CreatedAt: time.Now(),
	}}, f.products...)
	return id, nil
}

func (f *fakeBackend) UpdateProduct(_ context.Context, id string, p ProductPatch) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.mutateErr != nil {
		return f.mutateErr
	}
	f.patches[id] = p
	for i := range f.products {
		if f.products[i].ID == id && p.Title != nil {
			f.products[i].Title = *p.Title
		}
	}
	return nil
}

func (f *fakeBackend) DeleteProduct(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.mutateErr != nil {
		return f.mutateErr
	}
	f.deleted = append(f.deleted, id)
	f.products = slices.DeleteFunc(f.products, func(p ProductRow) bool { return p.ID == id })
	return nil
}

func (f *fakeBackend) ListWishlist(context.Context) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.wishlistCalls++
	if f.wishlistFails > 0 {
		f.wishlistFails--
		return nil, fmt.Errorf("wishlist unavailable")
	}
	return slices.Clone(f.wishlist), nil
}

func (f *fakeBackend) AddToWishlist(_ context.Context, productID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.addCalls++
	if f.wishlistFails > 0 {
		f.wishlistFails--
		return fmt.Errorf("wishlist unavailable")
	}
	if !slices.Contains(f.wishlist, productID) {
		f.wishlist = append(f.wishlist, productID)
	}
	return nil
}

func (f *fakeBackend) RemoveFromWishlist(_ context.Context, productID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.mutateErr != nil {
		return f.mutateErr
	}
	f.wishlist = slices.DeleteFunc(f.wishlist, func(id string) bool { return id == productID })
	return nil
}

func (f *fakeBackend) SendMessage(_ context.Context, receiverID, content, productID string) (*Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.mutateErr != nil {
		return nil, f.mutateErr
	}
	f.nextID++
	m := Message{
		ID:         fmt.Sprintf("m-%d", f.nextID),
		SenderID:   f.session.UserID,
		ReceiverID: receiverID,
		Content:    content,
		ProductID:  productID,
		Timestamp:  time.Now(),
	}
	f.messages = append(f.messages, m)
	return &m, nil
}

func (f *fakeBackend) ListMessages(context.Context) ([]Message, error) {
	f.mu.Lock()
	msgs := slices.Clone(f.messages)
	gate, entered := f.listGate, f.listEntered
	f.listGate, f.listEntered = nil, nil
	f.mu.Unlock()

	if gate != nil {
		close(entered)
		<-gate
	}
	return msgs, nil
}

func (f *fakeBackend) MarkRead(_ context.Context, otherUserID string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.markRead = append(f.markRead, otherUserID)
	var n int64
	for i := range f.messages {
		if f.messages[i].SenderID == otherUserID && !f.messages[i].Read {
			f.messages[i].Read = true
			n++
		}
	}
	return n, nil
}

type fakeFeed struct {
	mu     sync.Mutex
	chans  map[string]chan ChangeEvent
	tables []string
}

func newFakeFeed() *fakeFeed {
	return &fakeFeed{chans: make(map[string]chan ChangeEvent)}
}

func (f *fakeFeed) ch(table string) chan ChangeEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.chans[table]
	if !ok {
		c = make(chan ChangeEvent, 8)
		f.chans[table] = c
	}
	return c
}

func (f *fakeFeed) Subscribe(_ context.Context, table string) (<-chan ChangeEvent, error) {
	c := f.ch(table)
	f.mu.Lock()
	f.tables = append(f.tables, table)
	f.mu.Unlock()
	return c, nil
}

func (f *fakeFeed) send(table, op, id string) {
	f.ch(table) <- ChangeEvent{Table: table, Op: op, RecordID: id}
}

func (f *fakeFeed) subscribed() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.tables)
}

// memCache is a Cache backed by a map of JSON-able values.
type memCache struct {
	mu   sync.Mutex
	data map[string]any
}

func (c *memCache) Load(_ context.Context, key string, v any) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	got, ok := c.data[key]
	if !ok {
		return false
	}
	snap, ok := got.(messageSnapshot)
	dst, ok2 := v.(*messageSnapshot)
	if !ok || !ok2 {
		return false
	}
	*dst = snap
	return true
}

func (c *memCache) Put(_ context.Context, key string, v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.data == nil {
		c.data = make(map[string]any)
	}
	c.data[key] = v
	return nil
}

func row(id, seller string, price int64, age time.Duration) ProductRow {
	return ProductRow{
		ID:        id,
		Title:     "Item " + id,
		Price:     price,
		Condition: "Good",
		Category:  "Books",
		Location:  "Hostel A",
		SellerID:  seller,
		Status:    StatusActive,
		CreatedAt: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC).Add(-age),
	}
}

// rows returns n Active products newest first, all sold by seller.
func rows(n int, seller string) []ProductRow {
	out := make([]ProductRow, n)
	for i := range out {
		out[i] = row(fmt.Sprintf("p%02d", i), seller, int64(100*(i+1)), time.Duration(i)*time.Hour)
	}
	return out
}
