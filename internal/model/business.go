package model

import (
	"time"

	"github.com/dukerupert/menuboard/internal/schedule"
)

type Business struct {
	ID             int64     `json:"id"`
	OwnerID        int64     `json:"owner_id"`
	Name           string    `json:"name"`
	Slug           string    `json:"slug"`
	Tagline        string    `json:"tagline"`
	Description    string    `json:"description"`
	Address        string    `json:"address"`
	City           string    `json:"city"`
	Phone          string    `json:"phone"`
	Website        string    `json:"website"`
	ThemePrimary   string    `json:"theme_primary"`
	ThemeSecondary string    `json:"theme_secondary"`
	ShowHours      bool      `json:"show_hours"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

type BusinessHour struct {
	ID         int64            `json:"id"`
	BusinessID int64            `json:"business_id"`
	Day        schedule.DayCode `json:"day"`
	OpensAt    *schedule.Clock  `json:"opens_at"`
	ClosesAt   *schedule.Clock  `json:"closes_at"`
	IsClosed   bool             `json:"is_closed"`
	IsVisible  bool             `json:"is_visible"`
}
