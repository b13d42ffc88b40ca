package store

import (
	"testing"
)

func TestCategoryCreateAppendsRank(t *testing.T) {
	db := setupTestDB(t)
	_, biz := seedBusiness(t, db, "a@example.com", "Cafe")
	_, other := seedBusiness(t, db, "b@example.com", "Other")

	a := seedCategory(t, db, biz.ID, "Hot Drinks")
	b := seedCategory(t, db, biz.ID, "Hot Drinks")
	c := seedCategory(t, db, other.ID, "Hot Drinks")

	if a.Order != 0 || b.Order != 1 {
		t.Errorf("orders = %d, %d, want 0, 1", a.Order, b.Order)
	}
	if c.Order != 0 {
		t.Errorf("other business order = %d, want 0", c.Order)
	}
	if a.Slug != "hot-drinks" || b.Slug != "hot-drinks-1" || c.Slug != "hot-drinks" {
		t.Errorf("slugs = %q, %q, %q", a.Slug, b.Slug, c.Slug)
	}
}

func TestCategoryListOrderAndActive(t *testing.T) {
	db := setupTestDB(t)
	_, biz := seedBusiness(t, db, "a@example.com", "Cafe")
	cs := NewCategoryStore(db)

	a := seedCategory(t, db, biz.ID, "A")
	b := seedCategory(t, db, biz.ID, "B")
	if _, err := db.Exec(`UPDATE menu_categories SET "order" = 0 WHERE id = ?`, b.ID); err != nil {
		t.Fatalf("set order: %v", err)
	}
	if _, err := cs.Update(a.ID, "A", "", false); err != nil {
		t.Fatalf("update: %v", err)
	}

	all, err := cs.ListByBusiness(biz.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 2 || all[0].ID != a.ID || all[1].ID != b.ID {
		t.Errorf("tie on order should break by id, got %+v", all)
	}

	active, err := cs.ListActiveByBusiness(biz.ID)
	if err != nil {
		t.Fatalf("list active: %v", err)
	}
	if len(active) != 1 || active[0].ID != b.ID {
		t.Errorf("active = %+v", active)
	}
}

func TestCategoryGetForBusiness(t *testing.T) {
	db := setupTestDB(t)
	_, biz := seedBusiness(t, db, "a@example.com", "Cafe")
	_, other := seedBusiness(t, db, "b@example.com", "Other")
	cat := seedCategory(t, db, biz.ID, "Drinks")
	cs := NewCategoryStore(db)

	got, err := cs.GetForBusiness(other.ID, cat.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != nil {
		t.Error("expected nil for foreign business")
	}
}

func TestCategoryDeleteCascadesItems(t *testing.T) {
	db := setupTestDB(t)
	_, biz := seedBusiness(t, db, "a@example.com", "Cafe")
	cat := seedCategory(t, db, biz.ID, "Drinks")
	item := seedItem(t, db, cat.ID, "Latte")

	if err := NewCategoryStore(db).Delete(cat.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	got, err := NewItemStore(db).GetByID(item.ID)
	if err != nil {
		t.Fatalf("get item: %v", err)
	}
	if got != nil {
		t.Error("expected item to be deleted with its category")
	}
}
