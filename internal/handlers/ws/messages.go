package ws

import (
	"time"

	"github.com/gofiber/websocket/v2"
)

const (
	MsgSendMessage = "send_message"
	MsgMarkRead    = "mark_read"
	MsgPing        = "ping"
)

// MessageSend carries a chat message over the socket. The sender is taken
// from the authenticated connection, never from the payload.
type MessageSend struct {
	RoomID string `json:"room_id"`
	Body   string `json:"body"`
}

func (msg *MessageSend) GetType() string {
	return MsgSendMessage
}

func (msg *MessageSend) Process(ctx *MessageContext) error {
	stored, err := ctx.FanoutService.SendMessage(msg.RoomID, ctx.Username, msg.Body)
	if err != nil {
		return err
	}
	_ = ctx.RoomCache.InvalidateMessages(msg.RoomID)

	// Ack with the persisted message so the client learns the server ID
	// and timestamp.
	return ctx.Conn.WriteJSON(map[string]interface{}{
		"type":    "sent",
		"message": stored.ToResponse(),
	})
}

// MessageMarkRead moves the sender's last-seen watermark in a room.
type MessageMarkRead struct {
	RoomID string `json:"room_id"`
}

func (msg *MessageMarkRead) GetType() string {
	return MsgMarkRead
}

func (msg *MessageMarkRead) Process(ctx *MessageContext) error {
	_, err := ctx.MembershipService.TouchLastSeen(msg.RoomID, ctx.Username)
	return err
}

// MessagePing is an application-level keepalive.
type MessagePing struct{}

func (msg *MessagePing) GetType() string {
	return MsgPing
}

func (msg *MessagePing) Process(ctx *MessageContext) error {
	return ctx.Conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"pong","ts":"`+time.Now().UTC().Format(time.RFC3339)+`"}`))
}
