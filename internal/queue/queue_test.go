package queue

import (
	"context"
	"testing"
	"time"
)

func TestInMemoryPublishConsume(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	q := NewInMemory(4)
	if err := q.Publish(ctx, Message{Type: "registration", Body: []byte(`{"to":"a@b.c"}`)}); err != nil {
		t.Fatalf("publish: %v", err)
	}

	msgs, err := q.Consume(ctx)
	if err != nil {
		t.Fatalf("consume: %v", err)
	}
	select {
	case msg := <-msgs:
		if msg.Type != "registration" {
			t.Fatalf("unexpected type %q", msg.Type)
		}
		if string(msg.Body) != `{"to":"a@b.c"}` {
			t.Fatalf("unexpected body %q", msg.Body)
		}
	case <-time.After(time.Second):
		t.Fatal("message not delivered")
	}
}

func TestSerializeRoundTrip(t *testing.T) {
	msg := Message{Type: "profile-update", Body: []byte("body|with|pipes")}
	got, err := deserialize(serialize(msg))
	if err != nil {
		t.Fatalf("deserialize: %v", err)
	}
	if got.Type != msg.Type || string(got.Body) != string(msg.Body) {
		t.Fatalf("round trip mismatch: %+v", got)
	}
}
