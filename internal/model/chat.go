package model

import (
	"fmt"
	"time"
)

type ChatType string

const (
	ChatTypePrivate ChatType = "private"
	ChatTypeGroup   ChatType = "group"
)

type MemberRole string

const (
	MemberRoleAdmin  MemberRole = "admin"
	MemberRoleMember MemberRole = "member"
)

type Chat struct {
	ID         int64     `json:"id"`
	ChatType   ChatType  `json:"chat_type"`
	Title      *string   `json:"title"`
	AvatarURL  *string   `json:"avatar_url"`
	CreatedBy  int64     `json:"created_by"`
	CreatedAt  time.Time `json:"created_at"`
	PrivateKey *string   `json:"-"`
}

type ChatMember struct {
	ChatID   int64      `json:"chat_id"`
	UserID   int64      `json:"user_id"`
	Role     MemberRole `json:"member_role"`
	JoinedAt time.Time  `json:"joined_at"`
}

// PrivateKey returns the canonical "<min>:<max>" key of a user pair, so (a,b) and (b,a) map to one chat.
func PrivateKey(a, b int64) string {
	if a > b {
		a, b = b, a
	}
	return fmt.Sprintf("%d:%d", a, b)
}
