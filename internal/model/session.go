package model

import "time"

type Session struct {
	ID         string    `json:"id"`
	UserID     int64     `json:"user_id"`
	Token      string    `json:"-"`
	DeviceInfo string    `json:"device_info"`
	CreatedAt  time.Time `json:"created_at"`
	ExpiresAt  time.Time `json:"expires_at"`
}
