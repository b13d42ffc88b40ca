package seed

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dukerupert/menuboard/internal/database"
	"github.com/dukerupert/menuboard/internal/schedule"
	"github.com/dukerupert/menuboard/internal/store"
)

func TestParseDemo(t *testing.T) {
	f, err := Parse(Demo)
	require.NoError(t, err)
	assert.Equal(t, "Cafe Iman", f.Business.Name)
	assert.Len(t, f.Hours, 7)
	require.Len(t, f.Categories, 2)
	assert.Len(t, f.Categories[0].Items, 2)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "menu.yaml")
	require.NoError(t, os.WriteFile(path, Demo, 0o644))

	f, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "owner@example.com", f.Owner.Email)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestParseRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"no owner", "business: {name: X}"},
		{"no business", "owner: {email: a@example.com, password: pw}"},
		{"bad day", `
owner: {email: a@example.com, password: pw}
business: {name: X}
hours: [{day: someday}]`},
		{"hours reversed", `
owner: {email: a@example.com, password: pw}
business: {name: X}
hours: [{day: mon, opens: "18:00", closes: "08:00"}]`},
		{"bad item time", `
owner: {email: a@example.com, password: pw}
business: {name: X}
categories: [{title: Food, items: [{name: Soup, days: mon, from: "late", to: "23:00"}]}]`},
		{"malformed", "owner: ["},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			assert.Error(t, err)
		})
	}
}

func TestApply(t *testing.T) {
	db, err := database.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	f, err := Parse(Demo)
	require.NoError(t, err)

	res, err := Apply(db, f)
	require.NoError(t, err)
	assert.Equal(t, "cafe-iman", res.BusinessSlug)
	assert.Equal(t, 2, res.Categories)
	assert.Equal(t, 3, res.Items)

	cats, err := store.NewCategoryStore(db).ListByBusiness(res.BusinessID)
	require.NoError(t, err)
	require.Len(t, cats, 2)
	assert.Equal(t, "Hot Drinks", cats[0].Title)
	assert.Equal(t, 0, cats[0].Order)

	items, err := store.NewItemStore(db).ListByCategory(cats[0].ID)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "Double Espresso", items[0].Name)
	assert.True(t, items[0].IsFullTime)
	assert.Equal(t, "Caramel Latte", items[1].Name)
	assert.False(t, items[1].IsFullTime)
	assert.True(t, items[1].AvailableDays.Contains(schedule.Thu))
	assert.False(t, items[1].AvailableDays.Contains(schedule.Fri))

	hours, err := store.NewBusinessStore(db).ListHours(res.BusinessID)
	require.NoError(t, err)
	assert.True(t, hours[6].IsClosed)

	// Applying again updates in place.
	again, err := Apply(db, f)
	require.NoError(t, err)
	assert.Equal(t, res.BusinessID, again.BusinessID)
	cats, err = store.NewCategoryStore(db).ListByBusiness(res.BusinessID)
	require.NoError(t, err)
	assert.Len(t, cats, 2)
	counts, err := store.NewBusinessStore(db).Counts(res.BusinessID)
	require.NoError(t, err)
	assert.Equal(t, 3, counts.Items)
}
