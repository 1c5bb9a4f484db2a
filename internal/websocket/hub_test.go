package websocket

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func waitForPayload(t *testing.T, ch chan []byte) []byte {
	t.Helper()
	select {
	case msg := <-ch:
		return msg
	case <-time.After(time.Second):
		t.Fatalf("timed out waiting for hub delivery")
		return nil
	}
}

func TestBroadcastDeliveredOnlyToOwningTenant(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	tenantA := uuid.New()
	tenantB := uuid.New()
	clientA := &Client{Hub: hub, Send: make(chan []byte, 4), TenantID: tenantA}
	clientB := &Client{Hub: hub, Send: make(chan []byte, 4), TenantID: tenantB}
	hub.register <- clientA
	hub.register <- clientB

	payload := []byte(`{"event":"inventory.updated","data":{"remaining":60}}`)
	hub.Broadcast <- Event{TenantID: tenantA, Payload: payload}

	got := waitForPayload(t, clientA.Send)
	if string(got) != string(payload) {
		t.Fatalf("unexpected payload for subscriber: %s", got)
	}

	select {
	case msg := <-clientB.Send:
		t.Fatalf("client of another tenant received event: %s", msg)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestBroadcastReachesEverySubscriberOfTheTenant(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	tenantID := uuid.New()
	first := &Client{Hub: hub, Send: make(chan []byte, 4), TenantID: tenantID}
	second := &Client{Hub: hub, Send: make(chan []byte, 4), TenantID: tenantID}
	hub.register <- first
	hub.register <- second

	hub.Broadcast <- Event{TenantID: tenantID, Payload: []byte(`{"event":"cable.updated"}`)}

	for _, client := range []*Client{first, second} {
		if got := waitForPayload(t, client.Send); string(got) != `{"event":"cable.updated"}` {
			t.Fatalf("unexpected payload: %s", got)
		}
	}
}

func TestUnregisterStopsDelivery(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	tenantID := uuid.New()
	client := &Client{Hub: hub, Send: make(chan []byte, 4), TenantID: tenantID}
	hub.register <- client
	hub.unregister <- client

	hub.Broadcast <- Event{TenantID: tenantID, Payload: []byte(`{}`)}

	// The hub closes Send on unregister, so a receive yields the closed state
	// rather than the payload.
	select {
	case msg, ok := <-client.Send:
		if ok {
			t.Fatalf("unregistered client received event: %s", msg)
		}
	case <-time.After(time.Second):
		t.Fatalf("send channel was not closed on unregister")
	}
}
