// Package menu composes the public read views of a business's menu.
package menu

import (
	"sort"
	"strings"
	"time"

	"github.com/dukerupert/menuboard/internal/model"
	"github.com/dukerupert/menuboard/internal/schedule"
	"github.com/dukerupert/menuboard/internal/visibility"
)

// Section is one category on the public menu with its visible items.
type Section struct {
	Category  model.Category `json:"category"`
	Items     []model.Item   `json:"items"`
	ItemCount int            `json:"item_count"`
}

// Page is a business's public menu as of one instant.
type Page struct {
	Business   model.Business       `json:"business"`
	Hours      []model.BusinessHour `json:"hours"`
	OpenNow    bool                 `json:"open_now"`
	Query      string               `json:"query"`
	Sections   []Section            `json:"sections"`
	TotalItems int                  `json:"total_items"`
	AsOf       time.Time            `json:"as_of"`
}

// BuildPage lays out the active categories of business in rank order, each
// holding the items visible at instant that match query. Categories with no
// matching items are kept with an empty list.
func BuildPage(business model.Business, categories []model.Category, items []model.Item, hours []model.BusinessHour, query string, instant time.Time) Page {
	query = strings.TrimSpace(query)

	byCategory := make(map[int64][]model.Item)
	for _, item := range items {
		byCategory[item.CategoryID] = append(byCategory[item.CategoryID], item)
	}

	cats := make([]model.Category, 0, len(categories))
	for _, c := range categories {
		if c.IsActive && c.BusinessID == business.ID {
			cats = append(cats, c)
		}
	}
	visibility.SortCategories(cats)

	page := Page{
		Business: business,
		Query:    query,
		Sections: make([]Section, 0, len(cats)),
		AsOf:     instant,
		OpenNow:  OpenNow(hours, instant),
	}

	for _, h := range hours {
		if h.IsVisible {
			page.Hours = append(page.Hours, h)
		}
	}

	for _, c := range cats {
		visible := visibility.ListVisibleItems(byCategory[c.ID], instant)
		matched := visible[:0]
		for _, item := range visible {
			if MatchesQuery(item, query) {
				matched = append(matched, item)
			}
		}
		page.Sections = append(page.Sections, Section{Category: c, Items: matched, ItemCount: len(matched)})
		page.TotalItems += len(matched)
	}
	return page
}

// MatchesQuery reports whether query appears, ignoring case, in the item's
// name, description, tags or badge. An empty query matches everything.
func MatchesQuery(item model.Item, query string) bool {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return true
	}
	for _, field := range []string{item.Name, item.Description, item.Tags, item.Badge} {
		if strings.Contains(strings.ToLower(field), query) {
			return true
		}
	}
	return false
}

// OpenNow reports whether the business is open at instant according to the
// hours row for that weekday. A day that is closed or missing either bound
// counts as closed.
func OpenNow(hours []model.BusinessHour, instant time.Time) bool {
	today := schedule.DayCodeOf(instant)
	for _, h := range hours {
		if h.Day != today {
			continue
		}
		if h.IsClosed || h.OpensAt == nil || h.ClosesAt == nil {
			return false
		}
		w := schedule.Window{From: h.OpensAt, To: h.ClosesAt}
		return w.Contains(schedule.ClockOf(instant))
	}
	return false
}

// Related returns up to limit other active items from item's category, in
// rank order.
func Related(items []model.Item, item model.Item, limit int) []model.Item {
	var related []model.Item
	for _, other := range items {
		if other.ID == item.ID || other.CategoryID != item.CategoryID || !other.IsActive {
			continue
		}
		related = append(related, other)
	}
	visibility.SortItems(related)
	if limit > 0 && len(related) > limit {
		related = related[:limit]
	}
	return related
}

// SearchGroup is one business's matching items.
type SearchGroup struct {
	Business model.Business `json:"business"`
	Items    []model.Item   `json:"items"`
}

// GroupSearchResults keeps the items visible at instant and groups them by
// the business returned from businessOf, ordered by business name. Items
// whose business is unknown are dropped.
func GroupSearchResults(items []model.Item, businessOf func(categoryID int64) (model.Business, bool), instant time.Time) []SearchGroup {
	groups := make(map[int64]*SearchGroup)
	for _, item := range visibility.ListVisibleItems(items, instant) {
		biz, ok := businessOf(item.CategoryID)
		if !ok {
			continue
		}
		g, ok := groups[biz.ID]
		if !ok {
			g = &SearchGroup{Business: biz}
			groups[biz.ID] = g
		}
		g.Items = append(g.Items, item)
	}

	out := make([]SearchGroup, 0, len(groups))
	for _, g := range groups {
		out = append(out, *g)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Business.Name != out[j].Business.Name {
			return out[i].Business.Name < out[j].Business.Name
		}
		return out[i].Business.ID < out[j].Business.ID
	})
	return out
}
