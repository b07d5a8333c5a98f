package ws

import (
	"testing"

	"github.com/peterldowns/testy/check"
)

func TestBroadcastReachesAllClients(t *testing.T) {
	hub := NewHub()
	a := NewClient(nil, 4)
	b := NewClient(nil, 4)
	hub.AddClient("room-1", a)
	hub.AddClient("room-1", b)

	hub.Broadcast("room-1", WSMessage{Type: "notice", Data: "hello"})

	check.Equal(t, 1, len(a.outbox))
	check.Equal(t, 1, len(b.outbox))

	msg := <-a.Outbox()
	check.Equal(t, "notice", msg.Type)
}

func TestBroadcastIsScopedToRoom(t *testing.T) {
	hub := NewHub()
	a := NewClient(nil, 4)
	b := NewClient(nil, 4)
	hub.AddClient("room-1", a)
	hub.AddClient("room-2", b)

	hub.Broadcast("room-1", WSMessage{Type: "notice"})

	check.Equal(t, 1, len(a.outbox))
	check.Equal(t, 0, len(b.outbox))
}

func TestSlowClientIsDropped(t *testing.T) {
	hub := NewHub()
	slow := NewClient(nil, 1)
	fast := NewClient(nil, 4)
	hub.AddClient("room-1", slow)
	hub.AddClient("room-1", fast)

	// First message fills the slow client's buffer, second overflows it.
	hub.Broadcast("room-1", WSMessage{Type: "one"})
	hub.Broadcast("room-1", WSMessage{Type: "two"})

	check.Equal(t, 2, len(fast.outbox))
	check.Equal(t, 1, len(slow.outbox))

	// The slow client was removed: further broadcasts skip it.
	hub.Broadcast("room-1", WSMessage{Type: "three"})
	check.Equal(t, 3, len(fast.outbox))
	check.Equal(t, 1, len(slow.outbox))
}

func TestSendAfterCloseReportsFalse(t *testing.T) {
	c := NewClient(nil, 4)
	c.Close()
	check.False(t, c.Send(WSMessage{Type: "late"}))
	c.Close() // idempotent
}
