package handler

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dukerupert/menuboard/internal/model"
)

func TestCategoryCRUD(t *testing.T) {
	e := newTestEnv(t)
	u, biz := e.seedOwner(t, "o@example.com", "Sunrise")

	rec := serve(e.category.Create, asOwner(request(t, "POST", "/api/categories",
		map[string]any{"title": "Hot Drinks"}), u.ID, biz.ID))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[model.Category](t, rec)
	assert.Equal(t, "hot-drinks", created.Slug)
	assert.True(t, created.IsActive)

	rec = serve(e.category.Update, asOwner(request(t, "PUT", "/", map[string]any{
		"title": "Coffee", "is_active": false,
	}, "id", idStr(created.ID)), u.ID, biz.ID))
	require.Equal(t, http.StatusOK, rec.Code)
	updated := decode[model.Category](t, rec)
	assert.Equal(t, "Coffee", updated.Title)
	assert.False(t, updated.IsActive)

	rec = serve(e.category.List, asOwner(request(t, "GET", "/api/categories", nil), u.ID, biz.ID))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]model.Category](t, rec), 1)

	rec = serve(e.category.Delete, asOwner(request(t, "DELETE", "/", nil, "id", idStr(created.ID)), u.ID, biz.ID))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	got, err := e.categories.GetByID(created.ID)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestCategoryRequiresTitle(t *testing.T) {
	e := newTestEnv(t)
	u, biz := e.seedOwner(t, "o@example.com", "Sunrise")

	rec := serve(e.category.Create, asOwner(request(t, "POST", "/api/categories",
		map[string]any{"title": "  "}), u.ID, biz.ID))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCategoryOfAnotherBusiness(t *testing.T) {
	e := newTestEnv(t)
	u, biz := e.seedOwner(t, "a@example.com", "Alpha")
	_, other := e.seedOwner(t, "b@example.com", "Beta")
	foreign := e.seedCategory(t, other.ID, "Theirs")

	rec := serve(e.category.Update, asOwner(request(t, "PUT", "/", map[string]any{"title": "Mine"},
		"id", idStr(foreign.ID)), u.ID, biz.ID))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = serve(e.category.Delete, asOwner(request(t, "DELETE", "/", nil, "id", idStr(foreign.ID)), u.ID, biz.ID))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	got, err := e.categories.GetByID(foreign.ID)
	require.NoError(t, err)
	assert.Equal(t, "Theirs", got.Title)
}
