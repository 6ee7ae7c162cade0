package websocket

import (
	"bytes"
	"testing"
	"time"
)

func TestSendTo_DeliversToClient(t *testing.T) {
	h := NewHub()
	go h.Run()
	c := NewClient(h, nil, "")
	h.Register <- c

	h.SendTo(c, []byte("hello"))

	select {
	case got := <-c.Send:
		if !bytes.Equal(got, []byte("hello")) {
			t.Fatalf("expected hello, got %s", got)
		}
	case <-time.After(time.Second):
		t.Fatal("message never delivered")
	}
}

func TestSendTo_DroppedClientDoesNotPanic(t *testing.T) {
	h := NewHub()
	go h.Run()
	c := NewClient(h, nil, "")
	h.Register <- c

	// Saturate the client's buffer so the next delivery drops it.
	for i := 0; i < cap(c.Send); i++ {
		c.Send <- []byte("fill")
	}
	h.SendTo(c, []byte("overflow"))

	// The hub has now closed c.Send. A late reply for the dropped
	// client must be discarded, not crash the process.
	h.SendTo(c, []byte("late"))
}

func TestPublish_GlobalAndScopedDelivery(t *testing.T) {
	h := NewHub()
	go h.Run()

	global := NewClient(h, nil, "")
	scoped := NewClient(h, nil, "post-1")
	other := NewClient(h, nil, "post-2")
	h.Register <- global
	h.Register <- scoped
	h.Register <- other

	h.Publish("post-1", []byte("update"))

	for _, c := range []*Client{global, scoped} {
		select {
		case got := <-c.Send:
			if !bytes.Equal(got, []byte("update")) {
				t.Fatalf("expected update, got %s", got)
			}
		case <-time.After(time.Second):
			t.Fatal("update never delivered")
		}
	}
	select {
	case got := <-other.Send:
		t.Fatalf("client scoped to another post received %s", got)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestPublish_SubscribedGlobalClientReceivesOnce(t *testing.T) {
	h := NewHub()
	go h.Run()
	c := NewClient(h, nil, "")
	h.Register <- c
	h.Subscribe(c, "post-1")

	h.Publish("post-1", []byte("update"))

	select {
	case <-c.Send:
	case <-time.After(time.Second):
		t.Fatal("update never delivered")
	}
	select {
	case got := <-c.Send:
		t.Fatalf("duplicate delivery: %s", got)
	case <-time.After(50 * time.Millisecond):
	}
}
