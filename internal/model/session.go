package model

import "time"

// Session ties a login token to the owner and the business they act for.
type Session struct {
	ID         int64     `json:"id"`
	Token      string    `json:"token"`
	UserID     int64     `json:"user_id"`
	BusinessID int64     `json:"business_id"`
	ExpiresAt  time.Time `json:"expires_at"`
	CreatedAt  time.Time `json:"created_at"`
}
