package store

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/dukerupert/menuboard/internal/model"
	"github.com/dukerupert/menuboard/internal/schedule"
)

type ItemStore struct {
	db *sql.DB
}

func NewItemStore(db *sql.DB) *ItemStore {
	return &ItemStore{db: db}
}

func scanItem(scanner interface{ Scan(...any) error }) (*model.Item, error) {
	var item model.Item
	var discount, special, calories sql.NullInt64
	var active, featured, fullTime int
	var days string
	var from, to, start, end sql.NullString

	err := scanner.Scan(
		&item.ID, &item.CategoryID, &item.Name, &item.Description, &item.Price,
		&discount, &special, &item.Badge, &item.Tags, &item.Ingredients, &calories,
		&item.ImageKey, &active, &featured, &fullTime, &days, &from, &to,
		&start, &end, &item.SortOrder, &item.CreatedAt, &item.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	item.DiscountPercent = intPtr(discount)
	item.SpecialPrice = intPtr(special)
	item.Calories = intPtr(calories)
	item.IsActive = active != 0
	item.IsFeatured = featured != 0
	item.IsFullTime = fullTime != 0
	item.AvailableDays = schedule.ParseDaySet(days)

	if item.AvailableFrom, err = parseNullClock(from); err != nil {
		return nil, fmt.Errorf("item %d available_from: %w", item.ID, err)
	}
	if item.AvailableTo, err = parseNullClock(to); err != nil {
		return nil, fmt.Errorf("item %d available_to: %w", item.ID, err)
	}
	if item.DisplayStart, err = parseNullDate(start); err != nil {
		return nil, fmt.Errorf("item %d display_start: %w", item.ID, err)
	}
	if item.DisplayEnd, err = parseNullDate(end); err != nil {
		return nil, fmt.Errorf("item %d display_end: %w", item.ID, err)
	}
	return &item, nil
}

const itemCols = `id, category_id, name, description, price, discount_percent, special_price, badge, tags, ingredients, calories, image_key, is_active, is_featured, is_full_time, available_days, available_from, available_to, display_start, display_end, sort_order, created_at, updated_at`

// qualified prefixes every item column with alias, for joins.
func qualified(alias string) string {
	cols := strings.Split(itemCols, ", ")
	for i, c := range cols {
		cols[i] = alias + "." + c
	}
	return strings.Join(cols, ", ")
}

// Create inserts item. A zero SortOrder is replaced by the default rank.
func (s *ItemStore) Create(item model.Item) (*model.Item, error) {
	item.Normalize()

	result, err := s.db.Exec(
		`INSERT INTO menu_items (category_id, name, description, price, discount_percent, special_price, badge, tags,
		 ingredients, calories, is_active, is_featured, is_full_time, available_days, available_from, available_to,
		 display_start, display_end, sort_order)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		item.CategoryID, item.Name, item.Description, item.Price, nullInt(item.DiscountPercent),
		nullInt(item.SpecialPrice), item.Badge, item.Tags, item.Ingredients, nullInt(item.Calories),
		boolToInt(item.IsActive), boolToInt(item.IsFeatured), boolToInt(item.IsFullTime),
		item.AvailableDays.String(), nullClock(item.AvailableFrom), nullClock(item.AvailableTo),
		nullDate(item.DisplayStart), nullDate(item.DisplayEnd), item.SortOrder,
	)
	if err != nil {
		return nil, fmt.Errorf("insert item: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

// Update writes every editable field of item, including its category and rank.
func (s *ItemStore) Update(item model.Item) (*model.Item, error) {
	item.Normalize()

	_, err := s.db.Exec(
		`UPDATE menu_items SET category_id = ?, name = ?, description = ?, price = ?, discount_percent = ?,
		 special_price = ?, badge = ?, tags = ?, ingredients = ?, calories = ?, is_active = ?, is_featured = ?,
		 is_full_time = ?, available_days = ?, available_from = ?, available_to = ?, display_start = ?,
		 display_end = ?, sort_order = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?`,
		item.CategoryID, item.Name, item.Description, item.Price, nullInt(item.DiscountPercent),
		nullInt(item.SpecialPrice), item.Badge, item.Tags, item.Ingredients, nullInt(item.Calories),
		boolToInt(item.IsActive), boolToInt(item.IsFeatured), boolToInt(item.IsFullTime),
		item.AvailableDays.String(), nullClock(item.AvailableFrom), nullClock(item.AvailableTo),
		nullDate(item.DisplayStart), nullDate(item.DisplayEnd), item.SortOrder, item.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("update item: %w", err)
	}
	return s.GetByID(item.ID)
}

func (s *ItemStore) SetImageKey(id int64, key string) error {
	_, err := s.db.Exec(`UPDATE menu_items SET image_key = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`, key, id)
	if err != nil {
		return fmt.Errorf("set image key: %w", err)
	}
	return nil
}

func (s *ItemStore) Delete(id int64) error {
	_, err := s.db.Exec(`DELETE FROM menu_items WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete item: %w", err)
	}
	return nil
}

func (s *ItemStore) GetByID(id int64) (*model.Item, error) {
	row := s.db.QueryRow(`SELECT `+itemCols+` FROM menu_items WHERE id = ?`, id)
	item, err := scanItem(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get item: %w", err)
	}
	return item, nil
}

// GetForBusiness returns the item only if its category belongs to businessID.
func (s *ItemStore) GetForBusiness(businessID, id int64) (*model.Item, error) {
	row := s.db.QueryRow(
		`SELECT `+qualified("i")+` FROM menu_items i JOIN menu_categories c ON c.id = i.category_id
		 WHERE i.id = ? AND c.business_id = ?`,
		id, businessID,
	)
	item, err := scanItem(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get item: %w", err)
	}
	return item, nil
}

// ListByCategory returns the category's items in rank order (sort_order, then id).
func (s *ItemStore) ListByCategory(categoryID int64) ([]model.Item, error) {
	return s.query(
		`SELECT `+itemCols+` FROM menu_items WHERE category_id = ? ORDER BY sort_order ASC, id ASC`,
		categoryID,
	)
}

// ListByBusiness returns every item of the business, ordered by category rank
// and then item rank.
func (s *ItemStore) ListByBusiness(businessID int64) ([]model.Item, error) {
	return s.query(
		`SELECT `+qualified("i")+` FROM menu_items i JOIN menu_categories c ON c.id = i.category_id
		 WHERE c.business_id = ?
		 ORDER BY c."order" ASC, c.id ASC, i.sort_order ASC, i.id ASC`,
		businessID,
	)
}

// ListFeatured returns the most recently updated active featured items
// across all businesses.
func (s *ItemStore) ListFeatured(limit int) ([]model.Item, error) {
	return s.query(
		`SELECT `+itemCols+` FROM menu_items WHERE is_active = 1 AND is_featured = 1
		 ORDER BY updated_at DESC, id DESC LIMIT ?`,
		limit,
	)
}

// Search returns active items whose name, description, tags or category
// title match query, optionally limited to one business. Results are
// ordered by business name, then item rank. Visibility is not applied.
func (s *ItemStore) Search(query string, businessID int64) ([]model.Item, error) {
	like := "%" + escapeLike(strings.TrimSpace(query)) + "%"
	q := `SELECT ` + qualified("i") + ` FROM menu_items i
		JOIN menu_categories c ON c.id = i.category_id
		JOIN businesses b ON b.id = c.business_id
		WHERE i.is_active = 1
		AND (i.name LIKE ? ESCAPE '\' OR i.description LIKE ? ESCAPE '\' OR i.tags LIKE ? ESCAPE '\'
		     OR c.title LIKE ? ESCAPE '\' OR b.name LIKE ? ESCAPE '\')`
	args := []any{like, like, like, like, like}
	if businessID != 0 {
		q += ` AND b.id = ?`
		args = append(args, businessID)
	}
	q += ` ORDER BY b.name ASC, i.sort_order ASC, i.id ASC`
	return s.query(q, args...)
}

func (s *ItemStore) query(q string, args ...any) ([]model.Item, error) {
	rows, err := s.db.Query(q, args...)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	defer rows.Close()

	var items []model.Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}
