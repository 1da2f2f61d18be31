// Package chat defines the normalized event and reply types exchanged with the
// chat-platform webhook boundary. The transport itself (webhook parsing,
// signature verification, delivery retries) lives outside this repository; the
// core only consumes Events and produces Replies.
package chat

import "time"

// EventType discriminates inbound chat events.
type EventType int

const (
	// EventTypeMessage is a free-text message from a user.
	EventTypeMessage EventType = iota
	// EventTypePostback carries the opaque payload of a pressed card action.
	EventTypePostback
)

func (t EventType) String() string {
	switch t {
	case EventTypeMessage:
		return "message"
	case EventTypePostback:
		return "postback"
	default:
		return "unknown"
	}
}

// Event is a normalized inbound chat event from the platform webhook.
type Event struct {
	Type        EventType `json:"type"`
	UserID      string    `json:"user_id"`
	DisplayName string    `json:"display_name,omitempty"`
	Text        string    `json:"text,omitempty"`
	// PostbackData is the opaque payload round-tripped through the
	// confirmation card's confirm action.
	PostbackData string    `json:"postback_data,omitempty"`
	Timestamp    time.Time `json:"timestamp"`
}

// ReplyType discriminates outbound reply actions.
type ReplyType int

const (
	// ReplyTypeText is a plain text reply.
	ReplyTypeText ReplyType = iota
	// ReplyTypeConfirm is a structured confirmation card.
	ReplyTypeConfirm
)

// ConfirmCard is the structured confirmation prompt shown for a resolved
// track. The confirm button carries the candidate and token as opaque data;
// the reject button sends RejectText back as a plain message. The labels are
// the localized button captions.
type ConfirmCard struct {
	Title        string `json:"title"`
	Artist       string `json:"artist"`
	ArtworkURL   string `json:"artwork_url"`
	Body         string `json:"body"`
	ConfirmData  string `json:"confirm_data"`
	ConfirmLabel string `json:"confirm_label"`
	RejectText   string `json:"reject_text"`
	RejectLabel  string `json:"reject_label"`
}

// Reply is the outbound reply action handed back to the transport. Delivery
// is at-least-once; the transport may retry.
type Reply struct {
	Type    ReplyType    `json:"type"`
	Text    string       `json:"text,omitempty"`
	Confirm *ConfirmCard `json:"confirm,omitempty"`
}

// TextReply builds a plain text reply.
func TextReply(text string) *Reply {
	return &Reply{Type: ReplyTypeText, Text: text}
}

// ConfirmReply builds a confirmation card reply.
func ConfirmReply(card ConfirmCard) *Reply {
	return &Reply{Type: ReplyTypeConfirm, Confirm: &card}
}
