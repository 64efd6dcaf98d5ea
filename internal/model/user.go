package model

import "time"

const DefaultFullName = "User"

type User struct {
	ID        int64     `json:"id"`
	Phone     string    `json:"phone"`
	FullName  string    `json:"full_name"`
	AvatarURL *string   `json:"avatar_url"`
	Status    string    `json:"status"`
	IsOnline  bool      `json:"is_online"`
	CreatedAt time.Time `json:"created_at"`
}

// UserPublic is what search results and auth responses expose.
type UserPublic struct {
	ID        int64   `json:"id"`
	Phone     string  `json:"phone"`
	FullName  string  `json:"full_name"`
	AvatarURL *string `json:"avatar_url"`
	Status    string  `json:"status"`
	IsOnline  bool    `json:"is_online"`
}

func (u *User) ToPublic() UserPublic {
	return UserPublic{
		ID:        u.ID,
		Phone:     u.Phone,
		FullName:  u.FullName,
		AvatarURL: u.AvatarURL,
		Status:    u.Status,
		IsOnline:  u.IsOnline,
	}
}
