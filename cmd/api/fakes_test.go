package main

import (
	"context"
	"slices"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	v1 "github.com/PaulBabatuyi/campusMarket-gRPC/api/market/v1"
	"github.com/PaulBabatuyi/campusMarket-gRPC/internal/data"
	"github.com/PaulBabatuyi/campusMarket-gRPC/internal/normalize"
	"github.com/PaulBabatuyi/campusMarket-gRPC/internal/storage"
)

// memStore is an in-memory stand-in for every data store.
type memStore struct {
	mu        sync.Mutex
	users     map[bson.ObjectID]*data.User
	profiles  map[bson.ObjectID]*data.Profile
	products  []*data.Product
	wishlists []data.WishlistEntry
	messages  []*data.Message

	profileErr error
}

func newMemStore() *memStore {
	return &memStore{
		users:    map[bson.ObjectID]*data.User{},
		profiles: map[bson.ObjectID]*data.Profile{},
	}
}

func (m *memStore) CreateUser(_ context.Context, email, hashed string) (*data.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	email = normalize.Email(email)
	for _, u := range m.users {
		if u.Email == email {
			return nil, data.ErrDuplicate
		}
	}
	u := &data.User{ID: bson.NewObjectID(), Email: email, Password: hashed, CreatedAt: time.Now()}
	m.users[u.ID] = u
	return u, nil
}

func (m *memStore) GetUserByEmail(_ context.Context, email string) (*data.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == normalize.Email(email) {
			return u, nil
		}
	}
	return nil, data.ErrNotFound
}

func (m *memStore) UserExistsByID(_ context.Context, id bson.ObjectID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.users[id]
	return ok, nil
}

func (m *memStore) DeleteUser(_ context.Context, id bson.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.users, id)
	return nil
}

func (m *memStore) CreateProfile(_ context.Context, p *data.Profile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.profileErr != nil {
		return m.profileErr
	}
	cp := *p
	m.profiles[p.ID] = &cp
	return nil
}

func (m *memStore) GetProfile(_ context.Context, id bson.ObjectID) (*data.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.profiles[id]
	if !ok {
		return nil, data.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *memStore) GetProfiles(_ context.Context, ids []bson.ObjectID) ([]*data.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*data.Profile
	for _, id := range ids {
		if p, ok := m.profiles[id]; ok {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *memStore) UpdateProfile(_ context.Context, id bson.ObjectID, patch data.ProfilePatch) (*data.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.profiles[id]
	if !ok {
		return nil, data.ErrNotFound
	}
	set := func(dst *string, v *string) {
		if v != nil {
			*dst = *v
		}
	}
	set(&p.FullName, patch.FullName)
	set(&p.StudentID, patch.StudentID)
	set(&p.PhoneNumber, patch.PhoneNumber)
	set(&p.HostelDetails, patch.HostelDetails)
	set(&p.AvatarURL, patch.AvatarURL)
	cp := *p
	return &cp, nil
}

func (m *memStore) InsertProduct(_ context.Context, p *data.Product) (*data.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *p
	cp.ID = bson.NewObjectID()
	cp.Status = data.StatusActive
	cp.CreatedAt = time.Now()
	m.products = append(m.products, &cp)
	out := cp
	return &out, nil
}

func (m *memStore) ListActive(_ context.Context, offset, limit int64) ([]*data.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var active []*data.Product
	for i := len(m.products) - 1; i >= 0; i-- {
		if m.products[i].Status == data.StatusActive {
			active = append(active, m.products[i])
		}
	}
	if offset >= int64(len(active)) {
		return nil, nil
	}
	end := min(offset+limit, int64(len(active)))
	return active[offset:end], nil
}

func (m *memStore) GetProduct(_ context.Context, id bson.ObjectID) (*data.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.products {
		if p.ID == id {
			cp := *p
			return &cp, nil
		}
	}
	return nil, data.ErrNotFound
}

func (m *memStore) GetProducts(_ context.Context, ids []bson.ObjectID) ([]*data.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*data.Product
	for _, p := range m.products {
		if slices.Contains(ids, p.ID) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *memStore) ListBySeller(_ context.Context, seller bson.ObjectID) ([]*data.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*data.Product
	for _, p := range m.products {
		if p.SellerID == seller {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *memStore) owned(id, seller bson.ObjectID) (int, error) {
	for i, p := range m.products {
		if p.ID == id {
			if p.SellerID != seller {
				return -1, data.ErrForbidden
			}
			return i, nil
		}
	}
	return -1, data.ErrNotFound
}

func (m *memStore) UpdateProduct(_ context.Context, id, seller bson.ObjectID, patch data.ProductPatch) (*data.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	i, err := m.owned(id, seller)
	if err != nil {
		return nil, err
	}
	p := m.products[i]
	if patch.Title != nil {
		p.Title = *patch.Title
	}
	if patch.Price != nil {
		p.Price = *patch.Price
	}
	if patch.Status != nil {
		p.Status = *patch.Status
	}
	if patch.Images != nil {
		p.Images = *patch.Images
	}
	cp := *p
	return &cp, nil
}

func (m *memStore) DeleteProduct(_ context.Context, id, seller bson.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	i, err := m.owned(id, seller)
	if err != nil {
		return err
	}
	m.products = slices.Delete(m.products, i, i+1)
	return nil
}

func (m *memStore) ListProductIDs(_ context.Context, user bson.ObjectID) ([]bson.ObjectID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []bson.ObjectID
	for _, e := range m.wishlists {
		if e.UserID == user {
			out = append(out, e.ProductID)
		}
	}
	return out, nil
}

func (m *memStore) AddProduct(_ context.Context, user, product bson.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.wishlists {
		if e.UserID == user && e.ProductID == product {
			return nil
		}
	}
	m.wishlists = append(m.wishlists, data.WishlistEntry{ID: bson.NewObjectID(), UserID: user, ProductID: product})
	return nil
}

func (m *memStore) RemoveProduct(_ context.Context, user, product bson.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.wishlists = slices.DeleteFunc(m.wishlists, func(e data.WishlistEntry) bool {
		return e.UserID == user && e.ProductID == product
	})
	return nil
}

func (m *memStore) RemoveProductEverywhere(_ context.Context, product bson.ObjectID) ([]bson.ObjectID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var users []bson.ObjectID
	m.wishlists = slices.DeleteFunc(m.wishlists, func(e data.WishlistEntry) bool {
		if e.ProductID == product {
			users = append(users, e.UserID)
			return true
		}
		return false
	})
	return users, nil
}

func (m *memStore) SaveMessage(_ context.Context, sender, receiver bson.ObjectID, content, productID string) (*data.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	msg := &data.Message{
		ID:              bson.NewObjectID(),
		ConversationKey: normalize.ConversationKey(sender.Hex(), receiver.Hex()),
		SenderID:        sender,
		ReceiverID:      receiver,
		Content:         content,
		ProductID:       productID,
		SentAt:          time.Now(),
	}
	m.messages = append(m.messages, msg)
	cp := *msg
	return &cp, nil
}

func (m *memStore) ListForUser(_ context.Context, user bson.ObjectID) ([]*data.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*data.Message
	for _, msg := range m.messages {
		if msg.SenderID == user || msg.ReceiverID == user {
			cp := *msg
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *memStore) MarkConversationRead(_ context.Context, user, other bson.ObjectID) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, msg := range m.messages {
		if msg.SenderID == other && msg.ReceiverID == user && !msg.Read {
			msg.Read = true
			n++
		}
	}
	return n, nil
}

// addUser registers a user with a profile directly.
func (m *memStore) addUser(email, name string) bson.ObjectID {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := bson.NewObjectID()
	m.users[id] = &data.User{ID: id, Email: email}
	m.profiles[id] = &data.Profile{ID: id, Email: email, FullName: name}
	return id
}

// recordingBroker keeps every published event.
type recordingBroker struct {
	mu     sync.Mutex
	events []*v1.ChangeEvent
}

func (b *recordingBroker) Publish(_ context.Context, ev *v1.ChangeEvent) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, ev)
	return nil
}

func (b *recordingBroker) last() *v1.ChangeEvent {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.events) == 0 {
		return nil
	}
	return b.events[len(b.events)-1]
}

func (b *recordingBroker) count() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.events)
}

type fakeImages struct{}

func (fakeImages) CreateUpload(_ context.Context, kind, owner, contentType string) (*storage.Upload, error) {
	if contentType != "image/png" {
		return nil, storage.ErrUnsupportedType
	}
	key := kind + "/" + owner + "/x.png"
	return &storage.Upload{UploadURL: "https://s3.example/" + key + "?sig", ImageURL: "https://cdn.example/" + key, Key: key, ExpiresAt: time.Now().Add(time.Minute)}, nil
}
