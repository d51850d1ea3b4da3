package market

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/PaulBabatuyi/campusMarket-gRPC/internal/normalize"
)

// CacheKeyMessages is where the message snapshot is kept in the local cache.
const CacheKeyMessages = "messages"

type messageSnapshot struct {
	UserID  string               `json:"user_id"`
	Buckets map[string][]Message `json:"buckets"`
}

type participant struct {
	name   string
	avatar string
}

// Messages keeps the signed-in user's messages bucketed by conversation
// key, and the conversation summaries derived from them.
type Messages struct {
	backend MessageBackend
	feed    ChangeFeed
	session SessionInfo
	opts    options

	gen atomic.Uint64

	mu            sync.RWMutex
	owner         string
	buckets       map[string][]Message
	conversations []Conversation
	people        map[string]participant
}

// NewMessages builds the store and, when a cache is configured, restores the
// last snapshot for the current user.
func NewMessages(backend MessageBackend, feed ChangeFeed, session SessionInfo, opts ...Option) *Messages {
	m := &Messages{
		backend: backend,
		feed:    feed,
		session: session,
		opts:    newOptions(opts),
		buckets: make(map[string][]Message),
		people:  make(map[string]participant),
	}
	if m.opts.cache == nil {
		return m
	}
	var snap messageSnapshot
	if !m.opts.cache.Load(context.Background(), CacheKeyMessages, &snap) {
		return m
	}
	if me := session.UserID(); me != "" && snap.UserID == me && snap.Buckets != nil {
		m.owner = me
		m.buckets = snap.Buckets
		m.recompute()
	}
	return m
}

// SendMessage delivers content to receiverID, optionally about productID.
func (m *Messages) SendMessage(ctx context.Context, receiverID, content, productID string) error {
	me := m.session.UserID()
	if me == "" {
		m.opts.notify.Error("You must be logged in to send messages")
		return ErrUnauthenticated
	}
	if strings.TrimSpace(content) == "" {
		m.opts.notify.Error("Message cannot be empty")
		return ErrEmptyMessage
	}
	if receiverID == "" {
		m.opts.notify.Error("Choose who to message")
		return fmt.Errorf("%w: receiver", ErrMissingField)
	}

	msg, err := m.backend.SendMessage(ctx, receiverID, content, productID)
	if err != nil {
		m.opts.log.Warn("send message failed", zap.String("receiver_id", receiverID), zap.Error(err))
		m.opts.notify.Error(userMessage(err))
		return fmt.Errorf("send message: %w", err)
	}
	// a fetch listed before this send must not replace the buckets
	m.gen.Add(1)
	m.resolve(ctx, []string{receiverID})

	m.mu.Lock()
	m.adopt(me)
	key := normalize.ConversationKey(me, receiverID)
	if !slices.ContainsFunc(m.buckets[key], func(x Message) bool { return x.ID == msg.ID }) {
		m.buckets[key] = append(m.buckets[key], *msg)
	}
	m.recompute()
	snap := m.snapshot()
	m.mu.Unlock()

	m.persist(ctx, snap)
	return nil
}

// MarkAsRead marks every message from otherUserID to the signed-in user as
// read.
func (m *Messages) MarkAsRead(ctx context.Context, otherUserID string) error {
	me := m.session.UserID()
	if me == "" {
		m.opts.notify.Error("You must be logged in to read messages")
		return ErrUnauthenticated
	}
	if _, err := m.backend.MarkRead(ctx, otherUserID); err != nil {
		m.opts.log.Warn("mark read failed", zap.String("other_user_id", otherUserID), zap.Error(err))
		m.opts.notify.Error(userMessage(err))
		return fmt.Errorf("mark as read: %w", err)
	}
	m.gen.Add(1)

	m.mu.Lock()
	m.adopt(me)
	key := normalize.ConversationKey(me, otherUserID)
	for i, msg := range m.buckets[key] {
		if msg.SenderID == otherUserID && !msg.Read {
			m.buckets[key][i].Read = true
		}
	}
	m.recompute()
	snap := m.snapshot()
	m.mu.Unlock()

	m.persist(ctx, snap)
	return nil
}

// FetchMessages replaces the buckets with the backend's copy and resolves
// the other participants' names.
func (m *Messages) FetchMessages(ctx context.Context) error {
	me := m.session.UserID()
	if me == "" {
		return nil
	}
	gen := m.gen.Add(1)

	msgs, err := m.backend.ListMessages(ctx)
	if err != nil {
		m.opts.log.Warn("message fetch failed", zap.Error(err))
		return fmt.Errorf("fetch messages: %w", err)
	}

	buckets := make(map[string][]Message)
	var others []string
	for _, msg := range msgs {
		other := otherParty(msg, me)
		key := normalize.ConversationKey(me, other)
		if _, ok := buckets[key]; !ok {
			others = append(others, other)
		}
		buckets[key] = append(buckets[key], msg)
	}
	for _, b := range buckets {
		slices.SortStableFunc(b, func(x, y Message) int { return x.Timestamp.Compare(y.Timestamp) })
	}
	m.resolve(ctx, others)

	m.mu.Lock()
	if m.gen.Load() != gen {
		m.mu.Unlock()
		return nil
	}
	m.owner = me
	m.buckets = buckets
	m.recompute()
	snap := m.snapshot()
	m.mu.Unlock()

	m.persist(ctx, snap)
	return nil
}

// resolve caches display names for ids not seen yet.
func (m *Messages) resolve(ctx context.Context, ids []string) {
	m.mu.RLock()
	var missing []string
	for _, id := range ids {
		if _, ok := m.people[id]; !ok && id != "" {
			missing = append(missing, id)
		}
	}
	m.mu.RUnlock()

	for _, chunk := range chunks(missing, profileBatch) {
		profiles, err := m.backend.GetProfiles(ctx, chunk)
		if err != nil {
			m.opts.log.Warn("participant profiles unavailable", zap.Strings("user_ids", chunk), zap.Error(err))
			continue
		}
		m.mu.Lock()
		for _, p := range profiles {
			m.people[p.ID] = participant{name: p.FullName, avatar: p.AvatarURL}
		}
		m.mu.Unlock()
	}
}

// adopt resets the buckets when they belong to another user. Callers hold mu.
func (m *Messages) adopt(me string) {
	if m.owner != me {
		m.owner = me
		m.buckets = make(map[string][]Message)
	}
}

// recompute rebuilds the conversation summaries. Callers hold mu.
func (m *Messages) recompute() {
	byOther := make(map[string]*Conversation)
	for _, bucket := range m.buckets {
		for _, msg := range bucket {
			other := otherParty(msg, m.owner)
			c, ok := byOther[other]
			if !ok {
				c = &Conversation{OtherUserID: other}
				byOther[other] = c
			}
			if c.LastMessageAt.IsZero() || !msg.Timestamp.Before(c.LastMessageAt) {
				c.LastMessage = msg.Content
				c.LastMessageAt = msg.Timestamp
			}
			if msg.SenderID == other && !msg.Read {
				c.UnreadCount++
			}
		}
	}

	convs := make([]Conversation, 0, len(byOther))
	for other, c := range byOther {
		if p, ok := m.people[other]; ok && p.name != "" {
			c.Name, c.Avatar = p.name, p.avatar
		} else {
			c.Name = placeholderName(other)
		}
		convs = append(convs, *c)
	}
	slices.SortFunc(convs, func(a, b Conversation) int {
		if c := b.LastMessageAt.Compare(a.LastMessageAt); c != 0 {
			return c
		}
		return cmp.Compare(a.OtherUserID, b.OtherUserID)
	})
	m.conversations = convs
}

// snapshot copies the buckets for the cache. Callers hold mu.
func (m *Messages) snapshot() messageSnapshot {
	buckets := make(map[string][]Message, len(m.buckets))
	for k, v := range m.buckets {
		buckets[k] = slices.Clone(v)
	}
	return messageSnapshot{UserID: m.owner, Buckets: buckets}
}

func (m *Messages) persist(ctx context.Context, snap messageSnapshot) {
	if m.opts.cache == nil {
		return
	}
	if err := m.opts.cache.Put(ctx, CacheKeyMessages, snap); err != nil {
		m.opts.log.Warn("message cache write failed", zap.Error(err))
	}
}

// Conversations returns the summaries, newest first.
func (m *Messages) Conversations() []Conversation {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.owner != m.session.UserID() {
		return nil
	}
	return slices.Clone(m.conversations)
}

// Thread returns the messages exchanged with otherUserID, oldest first.
func (m *Messages) Thread(otherUserID string) []Message {
	me := m.session.UserID()
	m.mu.RLock()
	defer m.mu.RUnlock()
	if me == "" || m.owner != me {
		return nil
	}
	out := slices.Clone(m.buckets[normalize.ConversationKey(me, otherUserID)])
	slices.SortStableFunc(out, func(x, y Message) int { return x.Timestamp.Compare(y.Timestamp) })
	return out
}

// UnreadTotal is the number of unread messages across all conversations.
func (m *Messages) UnreadTotal() int {
	total := 0
	for _, c := range m.Conversations() {
		total += c.UnreadCount
	}
	return total
}

// Watch refetches messages on every messages change until ctx ends.
func (m *Messages) Watch(ctx context.Context) error {
	return watch(ctx, m.feed, TableMessages, m.opts, m.FetchMessages)
}

func otherParty(msg Message, me string) string {
	if normalize.ID(msg.SenderID) == normalize.ID(me) {
		return msg.ReceiverID
	}
	return msg.SenderID
}

func placeholderName(id string) string {
	return "User " + id[:min(4, len(id))]
}
