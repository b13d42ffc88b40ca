package store

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/dukerupert/menuboard/internal/model"
	"github.com/dukerupert/menuboard/internal/schedule"
)

type BusinessStore struct {
	db *sql.DB
}

func NewBusinessStore(db *sql.DB) *BusinessStore {
	return &BusinessStore{db: db}
}

func scanBusiness(scanner interface{ Scan(...any) error }) (*model.Business, error) {
	var b model.Business
	var showHours int
	err := scanner.Scan(
		&b.ID, &b.OwnerID, &b.Name, &b.Slug, &b.Tagline, &b.Description,
		&b.Address, &b.City, &b.Phone, &b.Website, &b.ThemePrimary,
		&b.ThemeSecondary, &showHours, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	b.ShowHours = showHours != 0
	return &b, nil
}

const businessCols = `id, owner_id, name, slug, tagline, description, address, city, phone, website, theme_primary, theme_secondary, show_hours, created_at, updated_at`

// BusinessProfile holds the owner-editable fields of a business.
type BusinessProfile struct {
	Name           string
	Tagline        string
	Description    string
	Address        string
	City           string
	Phone          string
	Website        string
	ThemePrimary   string
	ThemeSecondary string
	ShowHours      bool
}

// Create inserts a business with a unique slug and one hours row per weekday.
func (s *BusinessStore) Create(ownerID int64, name string) (*model.Business, error) {
	slug, err := uniqueSlug(slugify(name), func(slug string) (bool, error) {
		var n int
		err := s.db.QueryRow(`SELECT COUNT(*) FROM businesses WHERE slug = ?`, slug).Scan(&n)
		return n > 0, err
	})
	if err != nil {
		return nil, fmt.Errorf("pick slug: %w", err)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.Exec(
		`INSERT INTO businesses (owner_id, name, slug) VALUES (?, ?, ?)`,
		ownerID, name, slug,
	)
	if err != nil {
		return nil, fmt.Errorf("insert business: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}

	for _, day := range schedule.Week() {
		if _, err := tx.Exec(
			`INSERT INTO business_hours (business_id, day_of_week) VALUES (?, ?)`,
			id, string(day),
		); err != nil {
			return nil, fmt.Errorf("insert hours: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return s.GetByID(id)
}

func (s *BusinessStore) GetByID(id int64) (*model.Business, error) {
	row := s.db.QueryRow(`SELECT `+businessCols+` FROM businesses WHERE id = ?`, id)
	b, err := scanBusiness(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get business: %w", err)
	}
	return b, nil
}

func (s *BusinessStore) GetBySlug(slug string) (*model.Business, error) {
	row := s.db.QueryRow(`SELECT `+businessCols+` FROM businesses WHERE slug = ?`, slug)
	b, err := scanBusiness(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get business by slug: %w", err)
	}
	return b, nil
}

// GetByOwner returns the owner's first business, or nil.
func (s *BusinessStore) GetByOwner(ownerID int64) (*model.Business, error) {
	row := s.db.QueryRow(`SELECT `+businessCols+` FROM businesses WHERE owner_id = ? ORDER BY id LIMIT 1`, ownerID)
	b, err := scanBusiness(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get business by owner: %w", err)
	}
	return b, nil
}

// List returns businesses by name, optionally filtered by a case-insensitive
// match on name, tagline, city or description.
func (s *BusinessStore) List(query string) ([]model.Business, error) {
	q := `SELECT ` + businessCols + ` FROM businesses`
	var args []any
	if query = strings.TrimSpace(query); query != "" {
		like := "%" + escapeLike(query) + "%"
		q += ` WHERE name LIKE ? ESCAPE '\' OR tagline LIKE ? ESCAPE '\' OR city LIKE ? ESCAPE '\' OR description LIKE ? ESCAPE '\'`
		args = append(args, like, like, like, like)
	}
	q += ` ORDER BY name ASC, id ASC`

	rows, err := s.db.Query(q, args...)
	if err != nil {
		return nil, fmt.Errorf("list businesses: %w", err)
	}
	defer rows.Close()

	var businesses []model.Business
	for rows.Next() {
		b, err := scanBusiness(rows)
		if err != nil {
			return nil, fmt.Errorf("scan business: %w", err)
		}
		businesses = append(businesses, *b)
	}
	return businesses, rows.Err()
}

func (s *BusinessStore) Update(id int64, p BusinessProfile) (*model.Business, error) {
	_, err := s.db.Exec(
		`UPDATE businesses SET name = ?, tagline = ?, description = ?, address = ?, city = ?, phone = ?, website = ?,
		 theme_primary = ?, theme_secondary = ?, show_hours = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		p.Name, p.Tagline, p.Description, p.Address, p.City, p.Phone, p.Website,
		p.ThemePrimary, p.ThemeSecondary, boolToInt(p.ShowHours), id,
	)
	if err != nil {
		return nil, fmt.Errorf("update business: %w", err)
	}
	return s.GetByID(id)
}

// --- Hours ---

func scanHour(scanner interface{ Scan(...any) error }) (*model.BusinessHour, error) {
	var h model.BusinessHour
	var day string
	var opens, closes sql.NullString
	var closed, visible int
	if err := scanner.Scan(&h.ID, &h.BusinessID, &day, &opens, &closes, &closed, &visible); err != nil {
		return nil, err
	}
	h.Day = schedule.DayCode(day)
	h.IsClosed = closed != 0
	h.IsVisible = visible != 0

	var err error
	if h.OpensAt, err = parseNullClock(opens); err != nil {
		return nil, err
	}
	if h.ClosesAt, err = parseNullClock(closes); err != nil {
		return nil, err
	}
	return &h, nil
}

const hourCols = `id, business_id, day_of_week, opens_at, closes_at, is_closed, is_visible`

// ListHours returns the business's hours in week order (Saturday first).
func (s *BusinessStore) ListHours(businessID int64) ([]model.BusinessHour, error) {
	rows, err := s.db.Query(`SELECT `+hourCols+` FROM business_hours WHERE business_id = ?`, businessID)
	if err != nil {
		return nil, fmt.Errorf("list hours: %w", err)
	}
	defer rows.Close()

	byDay := make(map[schedule.DayCode]model.BusinessHour)
	for rows.Next() {
		h, err := scanHour(rows)
		if err != nil {
			return nil, fmt.Errorf("scan hour: %w", err)
		}
		byDay[h.Day] = *h
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	var hours []model.BusinessHour
	for _, day := range schedule.Week() {
		if h, ok := byDay[day]; ok {
			hours = append(hours, h)
		}
	}
	return hours, nil
}

// UpdateHours replaces the hours of the listed days in one transaction.
func (s *BusinessStore) UpdateHours(businessID int64, hours []model.BusinessHour) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	for _, h := range hours {
		if _, err := tx.Exec(
			`INSERT INTO business_hours (business_id, day_of_week, opens_at, closes_at, is_closed, is_visible)
			 VALUES (?, ?, ?, ?, ?, ?)
			 ON CONFLICT (business_id, day_of_week) DO UPDATE SET
			   opens_at = excluded.opens_at, closes_at = excluded.closes_at,
			   is_closed = excluded.is_closed, is_visible = excluded.is_visible`,
			businessID, string(h.Day), nullClock(h.OpensAt), nullClock(h.ClosesAt),
			boolToInt(h.IsClosed), boolToInt(h.IsVisible),
		); err != nil {
			return fmt.Errorf("update hours %s: %w", h.Day, err)
		}
	}
	return tx.Commit()
}

// Counts summarises a business's catalog for the owner dashboard.
type Counts struct {
	Categories int `json:"categories"`
	Items      int `json:"items"`
	Active     int `json:"active_items"`
	Featured   int `json:"featured_items"`
}

func (s *BusinessStore) Counts(businessID int64) (Counts, error) {
	var c Counts
	err := s.db.QueryRow(`SELECT COUNT(*) FROM menu_categories WHERE business_id = ?`, businessID).Scan(&c.Categories)
	if err != nil {
		return c, fmt.Errorf("count categories: %w", err)
	}
	err = s.db.QueryRow(
		`SELECT COUNT(*), COALESCE(SUM(i.is_active), 0), COALESCE(SUM(i.is_featured), 0)
		 FROM menu_items i JOIN menu_categories c ON c.id = i.category_id
		 WHERE c.business_id = ?`,
		businessID,
	).Scan(&c.Items, &c.Active, &c.Featured)
	if err != nil {
		return c, fmt.Errorf("count items: %w", err)
	}
	return c, nil
}
