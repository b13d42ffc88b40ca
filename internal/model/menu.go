package model

import (
	"time"

	"github.com/dukerupert/menuboard/internal/schedule"
)

// DefaultItemSortOrder places new items after anything ranked by hand.
const DefaultItemSortOrder = 100

type Category struct {
	ID          int64     `json:"id"`
	BusinessID  int64     `json:"business_id"`
	Title       string    `json:"title"`
	Slug        string    `json:"slug"`
	Description string    `json:"description"`
	Order       int       `json:"order"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type Item struct {
	ID              int64           `json:"id"`
	CategoryID      int64           `json:"category_id"`
	Name            string          `json:"name"`
	Description     string          `json:"description"`
	Price           int             `json:"price"`
	DiscountPercent *int            `json:"discount_percent"`
	SpecialPrice    *int            `json:"special_price"`
	Badge           string          `json:"badge"`
	Tags            string          `json:"tags"`
	Ingredients     string          `json:"ingredients"`
	Calories        *int            `json:"calories"`
	ImageKey        string          `json:"image_key,omitempty"`
	IsActive        bool            `json:"is_active"`
	IsFeatured      bool            `json:"is_featured"`
	IsFullTime      bool            `json:"is_full_time"`
	AvailableDays   schedule.DaySet `json:"available_days"`
	AvailableFrom   *schedule.Clock `json:"available_from"`
	AvailableTo     *schedule.Clock `json:"available_to"`
	DisplayStart    *schedule.Date  `json:"display_start"`
	DisplayEnd      *schedule.Date  `json:"display_end"`
	SortOrder       int             `json:"sort_order"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// Normalize clears the weekly schedule of full-time items, which must never
// carry day or time restrictions.
func (i *Item) Normalize() {
	if i.IsFullTime {
		i.AvailableDays = nil
		i.AvailableFrom = nil
		i.AvailableTo = nil
	}
}

// Window returns the item's daily availability window.
func (i Item) Window() schedule.Window {
	return schedule.Window{From: i.AvailableFrom, To: i.AvailableTo}
}

// FinalPrice is the special price when set, otherwise the price less any discount.
func (i Item) FinalPrice() int {
	if i.SpecialPrice != nil {
		return *i.SpecialPrice
	}
	if i.DiscountPercent != nil && *i.DiscountPercent > 0 {
		return i.Price - i.Price**i.DiscountPercent/100
	}
	return i.Price
}
