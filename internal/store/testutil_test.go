package store

import (
	"database/sql"
	"testing"

	"github.com/dukerupert/menuboard/internal/database"
	"github.com/dukerupert/menuboard/internal/model"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// seedBusiness creates an owner and their business.
func seedBusiness(t *testing.T, db *sql.DB, email, name string) (*model.User, *model.Business) {
	t.Helper()
	user, err := NewUserStore(db).Create(email, "Owner", "password123")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	biz, err := NewBusinessStore(db).Create(user.ID, name)
	if err != nil {
		t.Fatalf("create business: %v", err)
	}
	return user, biz
}

func seedCategory(t *testing.T, db *sql.DB, businessID int64, title string) *model.Category {
	t.Helper()
	c, err := NewCategoryStore(db).Create(businessID, title, "", true)
	if err != nil {
		t.Fatalf("create category: %v", err)
	}
	return c
}

func seedItem(t *testing.T, db *sql.DB, categoryID int64, name string) *model.Item {
	t.Helper()
	item, err := NewItemStore(db).Create(model.Item{
		CategoryID: categoryID,
		Name:       name,
		Price:      1000,
		IsActive:   true,
		IsFullTime: true,
		SortOrder:  model.DefaultItemSortOrder,
	})
	if err != nil {
		t.Fatalf("create item: %v", err)
	}
	return item
}
