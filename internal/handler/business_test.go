package handler

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dukerupert/menuboard/internal/model"
	"github.com/dukerupert/menuboard/internal/store"
)

func TestDashboardCounts(t *testing.T) {
	e := newTestEnv(t)
	u, biz := e.seedOwner(t, "o@example.com", "Sunrise")
	cat := e.seedCategory(t, biz.ID, "Drinks")
	e.seedItem(t, cat.ID, "Espresso")
	e.seedItem(t, cat.ID, "Mocha")

	rec := serve(e.business.Dashboard, asOwner(request(t, "GET", "/api/dashboard", nil), u.ID, biz.ID))
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decode[struct {
		Counts store.Counts `json:"counts"`
	}](t, rec)
	assert.Equal(t, store.Counts{Categories: 1, Items: 2, Active: 2}, resp.Counts)
}

func TestUpdateBusiness(t *testing.T) {
	e := newTestEnv(t)
	u, biz := e.seedOwner(t, "o@example.com", "Sunrise")

	rec := serve(e.business.Update, asOwner(request(t, "PUT", "/api/business", map[string]any{
		"name": "Sunrise Roasters", "city": "Shiraz", "show_hours": false,
	}), u.ID, biz.ID))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	got := decode[model.Business](t, rec)
	assert.Equal(t, "Sunrise Roasters", got.Name)
	assert.Equal(t, "Shiraz", got.City)
	assert.False(t, got.ShowHours)
	assert.Equal(t, biz.Slug, got.Slug)

	rec = serve(e.business.Update, asOwner(request(t, "PUT", "/api/business", map[string]any{"name": " "}), u.ID, biz.ID))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateHours(t *testing.T) {
	e := newTestEnv(t)
	u, biz := e.seedOwner(t, "o@example.com", "Sunrise")

	rec := serve(e.business.UpdateHours, asOwner(request(t, "PUT", "/api/business/hours", []map[string]any{
		{"day": "sat", "opens_at": "08:00", "closes_at": "22:00"},
		{"day": "fri", "is_closed": true, "is_visible": false},
	}), u.ID, biz.ID))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	hours := decode[[]hourView](t, rec)
	require.Len(t, hours, 7)
	assert.Equal(t, "Saturday", hours[0].Label)
	require.NotNil(t, hours[0].OpensAt)
	assert.Equal(t, 8, hours[0].OpensAt.Hour())
	assert.True(t, hours[6].IsClosed)
	assert.False(t, hours[6].IsVisible)
}

func TestUpdateHoursValidation(t *testing.T) {
	e := newTestEnv(t)
	u, biz := e.seedOwner(t, "o@example.com", "Sunrise")

	tests := []struct {
		name string
		row  map[string]any
	}{
		{"unknown day", map[string]any{"day": "xyz"}},
		{"closes before opens", map[string]any{"day": "mon", "opens_at": "18:00", "closes_at": "09:00"}},
		{"one bound", map[string]any{"day": "mon", "opens_at": "09:00"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := asOwner(request(t, "PUT", "/api/business/hours", []map[string]any{tt.row}), u.ID, biz.ID)
			rec := serve(e.business.UpdateHours, req)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}
