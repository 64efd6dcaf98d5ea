package model

import "time"

// Result types of the /api/messages actions.

type ChatListItem struct {
	ID              int64      `json:"id"`
	Type            ChatType   `json:"type"`
	Title           *string    `json:"title"`
	AvatarURL       *string    `json:"avatar_url"`
	LastMessage     *string    `json:"last_message"`
	LastMessageTime *time.Time `json:"last_message_time"`
	UnreadCount     int64      `json:"unread_count"`
}

type ChatsResponse struct {
	Chats []ChatListItem `json:"chats"`
}

type MessageView struct {
	ID           int64       `json:"id"`
	SenderID     int64       `json:"sender_id"`
	SenderName   string      `json:"sender_name"`
	SenderAvatar *string     `json:"sender_avatar"`
	Type         MessageType `json:"type"`
	Content      *string     `json:"content"`
	FileURL      *string     `json:"file_url"`
	FileName     *string     `json:"file_name"`
	CreatedAt    time.Time   `json:"created_at"`
	IsMine       bool        `json:"is_mine"`
}

type MessagesResponse struct {
	Messages []MessageView `json:"messages"`
}

type UsersResponse struct {
	Users []UserPublic `json:"users"`
}

type SendMessageResult struct {
	MessageID int64     `json:"message_id"`
	ChatID    int64     `json:"chat_id"`
	CreatedAt time.Time `json:"created_at"`
}

type CreateGroupResult struct {
	ChatID int64 `json:"chat_id"`
}

type MarkReadResult struct {
	Status string `json:"status"`
}

type MarkChatReadResult struct {
	Marked int64 `json:"marked"`
}

// Result types of the identity service.

type SendCodeResult struct {
	Message   string `json:"message"`
	ExpiresIn int    `json:"expires_in"`
	Code      string `json:"code,omitempty"`
}

type AuthResult struct {
	Token string     `json:"token"`
	User  UserPublic `json:"user"`
}

type UserResult struct {
	User UserPublic `json:"user"`
}

type SessionsResponse struct {
	Sessions []Session `json:"sessions"`
}

type UploadResult struct {
	FileURL  string `json:"file_url"`
	FileName string `json:"file_name"`
	FileSize int64  `json:"file_size"`
}
