// Package seed loads a demo menu from YAML and writes it through the stores.
package seed

import (
	"database/sql"
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/dukerupert/menuboard/internal/model"
	"github.com/dukerupert/menuboard/internal/ordering"
	"github.com/dukerupert/menuboard/internal/schedule"
	"github.com/dukerupert/menuboard/internal/store"
)

// Demo is the bundled demo cafe.
//
//go:embed demo.yaml
var Demo []byte

type File struct {
	Owner      Owner      `yaml:"owner"`
	Business   Business   `yaml:"business"`
	Hours      []Hour     `yaml:"hours"`
	Categories []Category `yaml:"categories"`
}

type Owner struct {
	Email    string `yaml:"email"`
	Name     string `yaml:"name"`
	Password string `yaml:"password"`
}

type Business struct {
	Name           string `yaml:"name"`
	Tagline        string `yaml:"tagline"`
	Description    string `yaml:"description"`
	Address        string `yaml:"address"`
	City           string `yaml:"city"`
	Phone          string `yaml:"phone"`
	Website        string `yaml:"website"`
	ThemePrimary   string `yaml:"theme_primary"`
	ThemeSecondary string `yaml:"theme_secondary"`
	ShowHours      *bool  `yaml:"show_hours"`
}

// Hour is one weekday. A day with no times is closed.
type Hour struct {
	Day    string `yaml:"day"`
	Opens  string `yaml:"opens"`
	Closes string `yaml:"closes"`
	Hidden bool   `yaml:"hidden"`
}

type Category struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	Inactive    bool   `yaml:"inactive"`
	Items       []Item `yaml:"items"`
}

// Item is a menu item. It is full-time unless days or times are given.
type Item struct {
	Name            string `yaml:"name"`
	Description     string `yaml:"description"`
	Price           int    `yaml:"price"`
	DiscountPercent *int   `yaml:"discount_percent"`
	SpecialPrice    *int   `yaml:"special_price"`
	Badge           string `yaml:"badge"`
	Tags            string `yaml:"tags"`
	Ingredients     string `yaml:"ingredients"`
	Calories        *int   `yaml:"calories"`
	Inactive        bool   `yaml:"inactive"`
	Featured        bool   `yaml:"featured"`
	Days            string `yaml:"days"`
	From            string `yaml:"from"`
	To              string `yaml:"to"`
	DisplayStart    string `yaml:"display_start"`
	DisplayEnd      string `yaml:"display_end"`
}

// Load reads and validates a seed file.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	return Parse(data)
}

func Parse(data []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse seed file: %w", err)
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

func (f *File) Validate() error {
	if f.Owner.Email == "" || f.Owner.Password == "" {
		return fmt.Errorf("owner email and password are required")
	}
	if strings.TrimSpace(f.Business.Name) == "" {
		return fmt.Errorf("business name is required")
	}
	for _, h := range f.Hours {
		if _, err := h.toModel(); err != nil {
			return err
		}
	}
	for _, c := range f.Categories {
		if strings.TrimSpace(c.Title) == "" {
			return fmt.Errorf("category title is required")
		}
		for _, it := range c.Items {
			if _, err := it.toModel(0); err != nil {
				return fmt.Errorf("%s: %w", c.Title, err)
			}
		}
	}
	return nil
}

func (h Hour) toModel() (model.BusinessHour, error) {
	day := schedule.DayCode(strings.ToLower(strings.TrimSpace(h.Day)))
	if !day.Valid() {
		return model.BusinessHour{}, fmt.Errorf("unknown day %q", h.Day)
	}
	out := model.BusinessHour{Day: day, IsVisible: !h.Hidden, IsClosed: h.Opens == "" && h.Closes == ""}
	if out.IsClosed {
		return out, nil
	}
	opens, err := parseClock(h.Opens)
	if err != nil {
		return out, fmt.Errorf("%s opens: %w", day, err)
	}
	closes, err := parseClock(h.Closes)
	if err != nil {
		return out, fmt.Errorf("%s closes: %w", day, err)
	}
	if opens == nil || closes == nil || *opens >= *closes {
		return out, fmt.Errorf("%s: closing time must be after opening time", day)
	}
	out.OpensAt, out.ClosesAt = opens, closes
	return out, nil
}

func (it Item) toModel(categoryID int64) (model.Item, error) {
	if strings.TrimSpace(it.Name) == "" {
		return model.Item{}, fmt.Errorf("item name is required")
	}
	if it.Price < 0 {
		return model.Item{}, fmt.Errorf("%s: price must not be negative", it.Name)
	}
	item := model.Item{
		CategoryID:      categoryID,
		Name:            strings.TrimSpace(it.Name),
		Description:     it.Description,
		Price:           it.Price,
		DiscountPercent: it.DiscountPercent,
		SpecialPrice:    it.SpecialPrice,
		Badge:           it.Badge,
		Tags:            it.Tags,
		Ingredients:     it.Ingredients,
		Calories:        it.Calories,
		IsActive:        !it.Inactive,
		IsFeatured:      it.Featured,
		SortOrder:       model.DefaultItemSortOrder,
		IsFullTime:      it.Days == "" && it.From == "" && it.To == "",
		AvailableDays:   schedule.ParseDaySet(it.Days),
	}
	if bad := item.AvailableDays.Invalid(); len(bad) > 0 {
		return item, fmt.Errorf("%s: unknown day %q", it.Name, bad[0])
	}

	var err error
	if item.AvailableFrom, err = parseClock(it.From); err != nil {
		return item, fmt.Errorf("%s from: %w", it.Name, err)
	}
	if item.AvailableTo, err = parseClock(it.To); err != nil {
		return item, fmt.Errorf("%s to: %w", it.Name, err)
	}
	if item.DisplayStart, err = parseDate(it.DisplayStart); err != nil {
		return item, fmt.Errorf("%s display_start: %w", it.Name, err)
	}
	if item.DisplayEnd, err = parseDate(it.DisplayEnd); err != nil {
		return item, fmt.Errorf("%s display_end: %w", it.Name, err)
	}
	item.Normalize()
	return item, nil
}

func parseClock(s string) (*schedule.Clock, error) {
	if s = strings.TrimSpace(s); s == "" {
		return nil, nil
	}
	c, err := schedule.ParseClock(s)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func parseDate(s string) (*schedule.Date, error) {
	if s = strings.TrimSpace(s); s == "" {
		return nil, nil
	}
	d, err := schedule.ParseDate(s)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// Result summarises what Apply wrote.
type Result struct {
	BusinessID   int64
	BusinessSlug string
	Categories   int
	Items        int
}

// Apply writes f into db. Running it again updates the same owner,
// business, categories and items (matched by email, owner, title and name)
// rather than duplicating them. Categories and items are ranked in file order.
func Apply(db *sql.DB, f *File) (*Result, error) {
	users := store.NewUserStore(db)
	businesses := store.NewBusinessStore(db)
	categories := store.NewCategoryStore(db)
	items := store.NewItemStore(db)
	coordinator := ordering.NewCoordinator(store.NewRankStore(db))

	user, err := users.GetByEmail(f.Owner.Email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		if user, err = users.Create(f.Owner.Email, f.Owner.Name, f.Owner.Password); err != nil {
			return nil, err
		}
	}
	actor := ordering.Actor{UserID: user.ID}

	biz, err := businesses.GetByOwner(user.ID)
	if err != nil {
		return nil, err
	}
	if biz == nil {
		if biz, err = businesses.Create(user.ID, f.Business.Name); err != nil {
			return nil, err
		}
	}

	b := f.Business
	profile := store.BusinessProfile{
		Name:           b.Name,
		Tagline:        b.Tagline,
		Description:    b.Description,
		Address:        b.Address,
		City:           b.City,
		Phone:          b.Phone,
		Website:        b.Website,
		ThemePrimary:   firstNonEmpty(b.ThemePrimary, biz.ThemePrimary),
		ThemeSecondary: firstNonEmpty(b.ThemeSecondary, biz.ThemeSecondary),
		ShowHours:      b.ShowHours == nil || *b.ShowHours,
	}
	if biz, err = businesses.Update(biz.ID, profile); err != nil {
		return nil, err
	}

	hours := make([]model.BusinessHour, 0, len(f.Hours))
	for _, h := range f.Hours {
		hour, err := h.toModel()
		if err != nil {
			return nil, err
		}
		hours = append(hours, hour)
	}
	if err := businesses.UpdateHours(biz.ID, hours); err != nil {
		return nil, err
	}

	existing, err := categories.ListByBusiness(biz.ID)
	if err != nil {
		return nil, err
	}
	byTitle := make(map[string]model.Category, len(existing))
	for _, c := range existing {
		byTitle[c.Title] = c
	}

	res := &Result{BusinessID: biz.ID, BusinessSlug: biz.Slug}
	var categoryIDs []int64
	for _, c := range f.Categories {
		cat, err := upsertCategory(categories, biz.ID, byTitle, c)
		if err != nil {
			return nil, err
		}
		categoryIDs = append(categoryIDs, cat.ID)
		res.Categories++

		itemIDs, err := upsertItems(items, cat.ID, c.Items)
		if err != nil {
			return nil, err
		}
		if err := coordinator.ReorderItems(actor, biz.ID, cat.ID, itemIDs); err != nil {
			return nil, fmt.Errorf("rank items of %s: %w", c.Title, err)
		}
		res.Items += len(itemIDs)
	}
	if err := coordinator.ReorderCategories(actor, biz.ID, categoryIDs); err != nil {
		return nil, fmt.Errorf("rank categories: %w", err)
	}
	return res, nil
}

func upsertCategory(cs *store.CategoryStore, businessID int64, byTitle map[string]model.Category, c Category) (*model.Category, error) {
	title := strings.TrimSpace(c.Title)
	if cur, ok := byTitle[title]; ok {
		return cs.Update(cur.ID, title, c.Description, !c.Inactive)
	}
	return cs.Create(businessID, title, c.Description, !c.Inactive)
}

func upsertItems(is *store.ItemStore, categoryID int64, entries []Item) ([]int64, error) {
	existing, err := is.ListByCategory(categoryID)
	if err != nil {
		return nil, err
	}
	byName := make(map[string]model.Item, len(existing))
	for _, it := range existing {
		byName[it.Name] = it
	}

	ids := make([]int64, 0, len(entries))
	for _, entry := range entries {
		item, err := entry.toModel(categoryID)
		if err != nil {
			return nil, err
		}
		var saved *model.Item
		if cur, ok := byName[item.Name]; ok {
			item.ID, item.SortOrder, item.ImageKey = cur.ID, cur.SortOrder, cur.ImageKey
			saved, err = is.Update(item)
		} else {
			saved, err = is.Create(item)
		}
		if err != nil {
			return nil, err
		}
		ids = append(ids, saved.ID)
	}
	return ids, nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
