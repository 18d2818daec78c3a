package ws

import (
	"testing"
)

func TestDeserialize(t *testing.T) {
	t.Run("send_message frame", func(t *testing.T) {
		raw := []byte(`{"type":"send_message","payload":{"room_id":"room-1","body":"hello"}}`)

		msg, err := Deserialize(raw)
		if err != nil {
			t.Fatalf("Deserialize failed: %v", err)
		}
		send, ok := msg.(*MessageSend)
		if !ok {
			t.Fatalf("Expected *MessageSend, got %T", msg)
		}
		if send.RoomID != "room-1" || send.Body != "hello" {
			t.Errorf("Unexpected frame %+v", send)
		}
	})

	t.Run("mark_read frame", func(t *testing.T) {
		raw := []byte(`{"type":"mark_read","payload":{"room_id":"room-1"}}`)

		msg, err := Deserialize(raw)
		if err != nil {
			t.Fatalf("Deserialize failed: %v", err)
		}
		read, ok := msg.(*MessageMarkRead)
		if !ok {
			t.Fatalf("Expected *MessageMarkRead, got %T", msg)
		}
		if read.RoomID != "room-1" {
			t.Errorf("Unexpected frame %+v", read)
		}
	})

	t.Run("ping frame without payload", func(t *testing.T) {
		msg, err := Deserialize([]byte(`{"type":"ping"}`))
		if err != nil {
			t.Fatalf("Deserialize failed: %v", err)
		}
		if _, ok := msg.(*MessagePing); !ok {
			t.Fatalf("Expected *MessagePing, got %T", msg)
		}
	})

	t.Run("unknown type fails", func(t *testing.T) {
		if _, err := Deserialize([]byte(`{"type":"bogus","payload":{}}`)); err == nil {
			t.Error("Expected unknown type to fail")
		}
	})

	t.Run("malformed JSON fails", func(t *testing.T) {
		if _, err := Deserialize([]byte(`{not json`)); err == nil {
			t.Error("Expected malformed frame to fail")
		}
	})
}

func TestSerializeRoundTrip(t *testing.T) {
	original := &MessageSend{RoomID: "room-9", Body: "round trip"}

	raw, err := Serialize(original)
	if err != nil {
		t.Fatalf("Serialize failed: %v", err)
	}

	msg, err := Deserialize(raw)
	if err != nil {
		t.Fatalf("Deserialize failed: %v", err)
	}
	send, ok := msg.(*MessageSend)
	if !ok {
		t.Fatalf("Expected *MessageSend, got %T", msg)
	}
	if send.RoomID != original.RoomID || send.Body != original.Body {
		t.Errorf("Round trip changed the frame: %+v", send)
	}
}

func TestTypeRegistry(t *testing.T) {
	registry := GetTypeRegistry()
	for _, msgType := range []string{MsgSendMessage, MsgMarkRead, MsgPing} {
		if _, ok := registry[msgType]; !ok {
			t.Errorf("Expected %q to be registered", msgType)
		}
	}
}
