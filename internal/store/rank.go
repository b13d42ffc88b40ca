package store

import (
	"database/sql"
	"fmt"

	"github.com/dukerupert/menuboard/internal/ordering"
)

// RankStore persists manual menu order. It implements ordering.Repository.
type RankStore struct {
	db *sql.DB
}

var _ ordering.Repository = (*RankStore)(nil)

func NewRankStore(db *sql.DB) *RankStore {
	return &RankStore{db: db}
}

func (s *RankStore) BusinessOwner(businessID int64) (int64, bool, error) {
	return s.lookup(`SELECT owner_id FROM businesses WHERE id = ?`, businessID)
}

func (s *RankStore) CategoryBusiness(categoryID int64) (int64, bool, error) {
	return s.lookup(`SELECT business_id FROM menu_categories WHERE id = ?`, categoryID)
}

func (s *RankStore) ItemCategory(itemID int64) (int64, bool, error) {
	return s.lookup(`SELECT category_id FROM menu_items WHERE id = ?`, itemID)
}

func (s *RankStore) lookup(q string, id int64) (int64, bool, error) {
	var parent int64
	err := s.db.QueryRow(q, id).Scan(&parent)
	if err == sql.ErrNoRows {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("lookup %d: %w", id, err)
	}
	return parent, true, nil
}

// ApplyCategoryRanks sets "order" to each id's position in ids. Either
// every row is updated or none is.
func (s *RankStore) ApplyCategoryRanks(businessID int64, ids []int64) error {
	return s.apply(
		`UPDATE menu_categories SET "order" = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ? AND business_id = ?`,
		businessID, ids, "category",
	)
}

// ApplyItemRanks sets sort_order to each id's position in ids. Either
// every row is updated or none is.
func (s *RankStore) ApplyItemRanks(categoryID int64, ids []int64) error {
	return s.apply(
		`UPDATE menu_items SET sort_order = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ? AND category_id = ?`,
		categoryID, ids, "item",
	)
}

func (s *RankStore) apply(q string, parentID int64, ids []int64, noun string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(q)
	if err != nil {
		return fmt.Errorf("prepare rank update: %w", err)
	}
	defer stmt.Close()

	for rank, id := range ids {
		result, err := stmt.Exec(rank, id, parentID)
		if err != nil {
			return fmt.Errorf("rank %s %d: %w", noun, id, err)
		}
		n, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("rows affected: %w", err)
		}
		if n != 1 {
			// Moved or deleted since validation.
			return &ordering.Error{Kind: ordering.KindOutOfScope, ID: id, Msg: noun + " no longer belongs to the parent"}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit ranks: %w", err)
	}
	return nil
}
