// Package visibility decides whether a menu item is shown at a given instant.
package visibility

import (
	"sort"
	"time"

	"github.com/dukerupert/menuboard/internal/model"
	"github.com/dukerupert/menuboard/internal/schedule"
)

// IsVisible reports whether item should be shown to visitors at instant.
// The checks run in a fixed order and stop at the first one that fails:
//
//  1. inactive items are never visible
//  2. before DisplayStart (by date) is not visible
//  3. after DisplayEnd (by date) is not visible
//  4. full-time items are visible, days and hours are ignored
//  5. today's day code must be in AvailableDays, unless the set is empty
//  6. the time of day must be within [AvailableFrom, AvailableTo] when both are set
//
// An empty day set on a non-full-time item places no day restriction. Forms
// never save that combination, so rows that hit it are suspect data rather
// than an intended "every day" schedule; the lenient reading is kept.
//
// Windows that wrap midnight (From after To) never match.
func IsVisible(item model.Item, instant time.Time) bool {
	if !item.IsActive {
		return false
	}

	today := schedule.DateOf(instant)
	if item.DisplayStart != nil && today.Before(*item.DisplayStart) {
		return false
	}
	if item.DisplayEnd != nil && today.After(*item.DisplayEnd) {
		return false
	}

	if item.IsFullTime {
		return true
	}

	if !item.AvailableDays.IsEmpty() && !item.AvailableDays.Contains(schedule.DayCodeOf(instant)) {
		return false
	}

	return item.Window().Contains(schedule.ClockOf(instant))
}

// ListVisibleItems orders items by rank and keeps those visible at instant.
// The same instant is used for every item so a page renders one consistent
// snapshot. The input slice is not modified.
func ListVisibleItems(items []model.Item, instant time.Time) []model.Item {
	sorted := make([]model.Item, len(items))
	copy(sorted, items)
	SortItems(sorted)

	visible := make([]model.Item, 0, len(sorted))
	for _, item := range sorted {
		if IsVisible(item, instant) {
			visible = append(visible, item)
		}
	}
	return visible
}

// SortItems orders items by SortOrder, then ID.
func SortItems(items []model.Item) {
	sort.Slice(items, func(i, j int) bool {
		if items[i].SortOrder != items[j].SortOrder {
			return items[i].SortOrder < items[j].SortOrder
		}
		return items[i].ID < items[j].ID
	})
}

// SortCategories orders categories by Order, then ID.
func SortCategories(categories []model.Category) {
	sort.Slice(categories, func(i, j int) bool {
		if categories[i].Order != categories[j].Order {
			return categories[i].Order < categories[j].Order
		}
		return categories[i].ID < categories[j].ID
	})
}
