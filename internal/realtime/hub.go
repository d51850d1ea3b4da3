// Package realtime fans change events out to subscribed streams.
package realtime

import (
	"slices"
	"sync"

	v1 "github.com/PaulBabatuyi/campusMarket-gRPC/api/market/v1"
	"go.uber.org/zap"
)

// DefaultBuffer is the per-subscription queue length.
const DefaultBuffer = 32

// Subscription receives the events of one table addressed to its user.
// C is closed when the subscription is removed, either by Unsubscribe or
// because the subscriber fell behind.
type Subscription struct {
	C <-chan *v1.ChangeEvent

	id     int64
	table  string
	userID string
	ch     chan *v1.ChangeEvent
}

// Table returns the subscribed table.
func (s *Subscription) Table() string { return s.table }

// Hub manages active change-feed subscriptions per table. A single Hub is
// fed either directly (LocalBroker) or from Redis (RedisBroker).
type Hub struct {
	mu     sync.RWMutex
	subs   map[string]map[int64]*Subscription
	nextID int64
	log    *zap.Logger
}

// NewHub creates a new hub instance.
func NewHub(log *zap.Logger) *Hub {
	if log == nil {
		log = zap.NewNop()
	}
	return &Hub{subs: make(map[string]map[int64]*Subscription), log: log}
}

// Subscribe registers userID for changes to table.
func (h *Hub) Subscribe(table, userID string, buffer int) *Subscription {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	ch := make(chan *v1.ChangeEvent, buffer)

	h.mu.Lock()
	defer h.mu.Unlock()

	h.nextID++
	s := &Subscription{C: ch, id: h.nextID, table: table, userID: userID, ch: ch}
	if _, ok := h.subs[table]; !ok {
		h.subs[table] = make(map[int64]*Subscription)
	}
	h.subs[table][s.id] = s
	return s
}

// Unsubscribe removes s and closes its channel. Safe to call twice.
func (h *Hub) Unsubscribe(s *Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(s)
}

func (h *Hub) removeLocked(s *Subscription) {
	conns, ok := h.subs[s.table]
	if !ok {
		return
	}
	if _, ok := conns[s.id]; !ok {
		return
	}
	delete(conns, s.id)
	close(s.ch)
	if len(conns) == 0 {
		delete(h.subs, s.table)
	}
}

// Count returns the number of live subscriptions on table.
func (h *Hub) Count(table string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[table])
}

// Publish delivers ev to every subscriber of ev.Table in its audience.
// An empty ev.UserIDs means everyone. Delivery never blocks: a subscriber
// whose queue is full is dropped so it can reconnect and resync. Publish
// returns how many subscribers received the event.
func (h *Hub) Publish(ev *v1.ChangeEvent) int {
	var delivered int
	var slow []*Subscription

	h.mu.RLock()
	for _, s := range h.subs[ev.Table] {
		if len(ev.UserIDs) > 0 && !slices.Contains(ev.UserIDs, s.userID) {
			continue
		}
		select {
		case s.ch <- ev:
			delivered++
		default:
			slow = append(slow, s)
		}
	}
	h.mu.RUnlock()

	if len(slow) > 0 {
		h.mu.Lock()
		for _, s := range slow {
			h.log.Warn("dropping slow subscriber",
				zap.String("table", s.table),
				zap.String("user_id", s.userID))
			h.removeLocked(s)
		}
		h.mu.Unlock()
	}
	return delivered
}
