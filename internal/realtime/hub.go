package realtime

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/kaveyan18/resolve-desk/internal/domain"
)

// Room channel names on the Redis side. One channel per ticket.
const channelPrefix = "chat:ticket:"

const subscriberBuffer = 16

// Hub is the room-scoped pub/sub channel keyed by ticket id. With a Redis
// client configured, publishes travel through Redis so rooms span processes;
// without one, delivery is in-process only.
type Hub struct {
	mu     sync.RWMutex
	rooms  map[string]map[*Subscriber]struct{}
	redis  *redis.Client
	logger *zap.Logger
}

// NewHub creates a hub. client may be nil for single-process delivery.
func NewHub(client *redis.Client, logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		rooms:  make(map[string]map[*Subscriber]struct{}),
		redis:  client,
		logger: logger,
	}
}

// Subscriber receives the messages broadcast to one room. A slow subscriber
// has messages dropped rather than blocking the room; missed messages are
// recoverable from the persisted log only.
type Subscriber struct {
	C chan domain.ChatMessage

	ticketID string
	hub      *Hub
	once     sync.Once
}

// Close removes the subscriber from its room.
func (s *Subscriber) Close() {
	s.once.Do(func() {
		s.hub.leave(s)
		close(s.C)
	})
}

// Join registers a subscriber on the ticket's room. Authorization is the
// caller's concern; the connection already carries a verified actor.
func (h *Hub) Join(ticketID string) *Subscriber {
	sub := &Subscriber{
		C:        make(chan domain.ChatMessage, subscriberBuffer),
		ticketID: ticketID,
		hub:      h,
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	room, ok := h.rooms[ticketID]
	if !ok {
		room = make(map[*Subscriber]struct{})
		h.rooms[ticketID] = room
	}
	room[sub] = struct{}{}
	return sub
}

func (h *Hub) leave(sub *Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	room, ok := h.rooms[sub.ticketID]
	if !ok {
		return
	}
	delete(room, sub)
	if len(room) == 0 {
		delete(h.rooms, sub.ticketID)
	}
}

// OnMessage invokes handler for every message broadcast to the ticket's room
// until ctx is done.
func (h *Hub) OnMessage(ctx context.Context, ticketID string, handler func(domain.ChatMessage)) {
	sub := h.Join(ticketID)
	go func() {
		defer sub.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-sub.C:
				if !ok {
					return
				}
				handler(msg)
			}
		}
	}()
}

// Publish broadcasts a persisted message to the ticket's room. With Redis
// configured the message goes through the channel and comes back via Run;
// otherwise it is delivered to local subscribers directly.
func (h *Hub) Publish(ctx context.Context, msg domain.ChatMessage) {
	if h.redis == nil {
		h.deliverLocal(msg)
		return
	}
	payload, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("chat message marshal failed", zap.String("ticket_id", msg.TicketID), zap.Error(err))
		return
	}
	if err := h.redis.Publish(ctx, channelPrefix+msg.TicketID, payload).Err(); err != nil {
		h.logger.Warn("redis publish failed, delivering locally",
			zap.String("ticket_id", msg.TicketID), zap.Error(err))
		h.deliverLocal(msg)
	}
}

// Run consumes the Redis chat channels and fans messages out to local
// subscribers. It blocks until ctx is done; it is a no-op without Redis.
func (h *Hub) Run(ctx context.Context) error {
	if h.redis == nil {
		<-ctx.Done()
		return nil
	}
	pubsub := h.redis.PSubscribe(ctx, channelPrefix+"*")
	defer pubsub.Close()

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case raw, ok := <-ch:
			if !ok {
				return nil
			}
			var msg domain.ChatMessage
			if err := json.Unmarshal([]byte(raw.Payload), &msg); err != nil {
				h.logger.Warn("discarding malformed chat payload",
					zap.String("channel", raw.Channel), zap.Error(err))
				continue
			}
			h.deliverLocal(msg)
		}
	}
}

func (h *Hub) deliverLocal(msg domain.ChatMessage) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for sub := range h.rooms[msg.TicketID] {
		select {
		case sub.C <- msg:
		default:
			h.logger.Debug("dropping chat message for slow subscriber",
				zap.String("ticket_id", msg.TicketID))
		}
	}
}
