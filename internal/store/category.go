package store

import (
	"database/sql"
	"fmt"

	"github.com/dukerupert/menuboard/internal/model"
)

type CategoryStore struct {
	db *sql.DB
}

func NewCategoryStore(db *sql.DB) *CategoryStore {
	return &CategoryStore{db: db}
}

func scanCategory(scanner interface{ Scan(...any) error }) (*model.Category, error) {
	var c model.Category
	var active int
	err := scanner.Scan(
		&c.ID, &c.BusinessID, &c.Title, &c.Slug, &c.Description,
		&c.Order, &active, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	c.IsActive = active != 0
	return &c, nil
}

const categoryCols = `id, business_id, title, slug, description, "order", is_active, created_at, updated_at`

// Create appends a category to the end of the business's menu.
func (s *CategoryStore) Create(businessID int64, title, description string, isActive bool) (*model.Category, error) {
	slug, err := uniqueSlug(slugify(title), func(slug string) (bool, error) {
		var n int
		err := s.db.QueryRow(
			`SELECT COUNT(*) FROM menu_categories WHERE business_id = ? AND slug = ?`, businessID, slug,
		).Scan(&n)
		return n > 0, err
	})
	if err != nil {
		return nil, fmt.Errorf("pick slug: %w", err)
	}

	result, err := s.db.Exec(
		`INSERT INTO menu_categories (business_id, title, slug, description, "order", is_active)
		 VALUES (?, ?, ?, ?, (SELECT COALESCE(MAX("order"), -1) + 1 FROM menu_categories WHERE business_id = ?), ?)`,
		businessID, title, slug, description, businessID, boolToInt(isActive),
	)
	if err != nil {
		return nil, fmt.Errorf("insert category: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *CategoryStore) GetByID(id int64) (*model.Category, error) {
	row := s.db.QueryRow(`SELECT `+categoryCols+` FROM menu_categories WHERE id = ?`, id)
	c, err := scanCategory(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get category: %w", err)
	}
	return c, nil
}

// GetForBusiness returns the category only if it belongs to businessID.
func (s *CategoryStore) GetForBusiness(businessID, id int64) (*model.Category, error) {
	row := s.db.QueryRow(`SELECT `+categoryCols+` FROM menu_categories WHERE id = ? AND business_id = ?`, id, businessID)
	c, err := scanCategory(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get category: %w", err)
	}
	return c, nil
}

// ListByBusiness returns all categories in rank order (order, then id).
func (s *CategoryStore) ListByBusiness(businessID int64) ([]model.Category, error) {
	return s.list(`WHERE business_id = ?`, businessID)
}

// ListActiveByBusiness returns active categories in rank order.
func (s *CategoryStore) ListActiveByBusiness(businessID int64) ([]model.Category, error) {
	return s.list(`WHERE business_id = ? AND is_active = 1`, businessID)
}

func (s *CategoryStore) list(where string, args ...any) ([]model.Category, error) {
	rows, err := s.db.Query(`SELECT `+categoryCols+` FROM menu_categories `+where+` ORDER BY "order" ASC, id ASC`, args...)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var categories []model.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, *c)
	}
	return categories, rows.Err()
}

func (s *CategoryStore) Update(id int64, title, description string, isActive bool) (*model.Category, error) {
	_, err := s.db.Exec(
		`UPDATE menu_categories SET title = ?, description = ?, is_active = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		title, description, boolToInt(isActive), id,
	)
	if err != nil {
		return nil, fmt.Errorf("update category: %w", err)
	}
	return s.GetByID(id)
}

// Delete removes the category and its items. Sibling ranks are not renumbered.
func (s *CategoryStore) Delete(id int64) error {
	_, err := s.db.Exec(`DELETE FROM menu_categories WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	return nil
}
