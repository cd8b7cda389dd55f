package realtime

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kaveyan18/resolve-desk/internal/domain"
)

func testMessage(ticketID, text string) domain.ChatMessage {
	return domain.ChatMessage{
		ID:         "msg-1",
		TicketID:   ticketID,
		SenderID:   "user-1",
		SenderName: "Rita",
		SenderRole: domain.RoleUser,
		Text:       text,
	}
}

func receive(t *testing.T, sub *Subscriber) domain.ChatMessage {
	t.Helper()
	select {
	case msg := <-sub.C:
		return msg
	case <-time.After(time.Second):
		t.Fatal("no message received")
		return domain.ChatMessage{}
	}
}

func TestPublishFansOutToRoomSubscribers(t *testing.T) {
	hub := NewHub(nil, nil)
	first := hub.Join("ticket-1")
	second := hub.Join("ticket-1")
	defer first.Close()
	defer second.Close()

	hub.Publish(context.Background(), testMessage("ticket-1", "hello"))

	assert.Equal(t, "hello", receive(t, first).Text)
	assert.Equal(t, "hello", receive(t, second).Text)
}

func TestPublishIsScopedToRoom(t *testing.T) {
	hub := NewHub(nil, nil)
	room1 := hub.Join("ticket-1")
	room2 := hub.Join("ticket-2")
	defer room1.Close()
	defer room2.Close()

	hub.Publish(context.Background(), testMessage("ticket-1", "hello"))

	assert.Equal(t, "hello", receive(t, room1).Text)
	select {
	case msg := <-room2.C:
		t.Fatalf("unexpected message in other room: %q", msg.Text)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestClosedSubscriberStopsReceiving(t *testing.T) {
	hub := NewHub(nil, nil)
	sub := hub.Join("ticket-1")
	sub.Close()
	// Close is idempotent.
	sub.Close()

	hub.Publish(context.Background(), testMessage("ticket-1", "hello"))

	_, open := <-sub.C
	assert.False(t, open)
}

func TestSlowSubscriberDropsInsteadOfBlocking(t *testing.T) {
	hub := NewHub(nil, nil)
	sub := hub.Join("ticket-1")
	defer sub.Close()

	done := make(chan struct{})
	go func() {
		defer close(done)
		// Overflow the buffer; Publish must not block.
		for i := 0; i < subscriberBuffer*2; i++ {
			hub.Publish(context.Background(), testMessage("ticket-1", "flood"))
		}
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish blocked on slow subscriber")
	}
	assert.Len(t, sub.C, subscriberBuffer)
}

func TestOnMessageDeliversUntilContextDone(t *testing.T) {
	hub := NewHub(nil, nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var mu sync.Mutex
	var got []string
	received := make(chan struct{}, 1)
	hub.OnMessage(ctx, "ticket-1", func(msg domain.ChatMessage) {
		mu.Lock()
		got = append(got, msg.Text)
		mu.Unlock()
		received <- struct{}{}
	})

	hub.Publish(context.Background(), testMessage("ticket-1", "first"))

	select {
	case <-received:
	case <-time.After(time.Second):
		t.Fatal("handler not invoked")
	}

	mu.Lock()
	require.Equal(t, []string{"first"}, got)
	mu.Unlock()

	cancel()
	// The subscription winds down; later publishes must not reach the handler.
	time.Sleep(20 * time.Millisecond)
	hub.Publish(context.Background(), testMessage("ticket-1", "late"))
	time.Sleep(20 * time.Millisecond)

	mu.Lock()
	assert.Equal(t, []string{"first"}, got)
	mu.Unlock()
}
