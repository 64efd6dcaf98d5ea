package model

import "time"

type MessageType string

const (
	MessageTypeText  MessageType = "text"
	MessageTypeImage MessageType = "image"
	MessageTypeFile  MessageType = "file"
	MessageTypeVoice MessageType = "voice"
)

// Valid reports whether t is one of the four stored message types.
func (t MessageType) Valid() bool {
	switch t {
	case MessageTypeText, MessageTypeImage, MessageTypeFile, MessageTypeVoice:
		return true
	}
	return false
}

// Message is append-only: rows are never updated after insert.
type Message struct {
	ID        int64       `json:"id"`
	ChatID    int64       `json:"chat_id"`
	SenderID  int64       `json:"sender_id"`
	Type      MessageType `json:"type"`
	Content   *string     `json:"content"`
	FileURL   *string     `json:"file_url"`
	FileName  *string     `json:"file_name"`
	CreatedAt time.Time   `json:"created_at"`
}

type MessageRead struct {
	MessageID int64     `json:"message_id"`
	UserID    int64     `json:"user_id"`
	ReadAt    time.Time `json:"read_at"`
}
