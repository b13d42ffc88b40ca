package handler

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dukerupert/menuboard/internal/auth"
	"github.com/dukerupert/menuboard/internal/database"
	"github.com/dukerupert/menuboard/internal/media"
	"github.com/dukerupert/menuboard/internal/model"
	"github.com/dukerupert/menuboard/internal/notes"
	"github.com/dukerupert/menuboard/internal/ordering"
	"github.com/dukerupert/menuboard/internal/store"
	"github.com/dukerupert/menuboard/internal/visibility"
)

// testEnv wires every store and handler against an in-memory database.
type testEnv struct {
	db         *sql.DB
	users      *store.UserStore
	businesses *store.BusinessStore
	categories *store.CategoryStore
	items      *store.ItemStore
	sessions   *store.SessionStore
	notes      *notes.Service

	auth     *AuthHandler
	menu     *MenuHandler
	note     *NoteHandler
	business *BusinessHandler
	category *CategoryHandler
	item     *ItemHandler
	reorder  *ReorderHandler
}

// testNow is a Saturday afternoon.
var testNow = time.Date(2025, 3, 15, 14, 30, 0, 0, time.UTC)

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db, err := database.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	e := &testEnv{
		db:         db,
		users:      store.NewUserStore(db),
		businesses: store.NewBusinessStore(db),
		categories: store.NewCategoryStore(db),
		items:      store.NewItemStore(db),
		sessions:   store.NewSessionStore(db),
		notes:      notes.NewService(store.NewKVStore(db), 0),
	}
	ms := media.New(media.Config{})

	e.auth = NewAuthHandler(e.users, e.businesses, e.sessions, false, logger)
	e.menu = NewMenuHandler(e.businesses, e.categories, e.items, e.notes, ms, visibility.FixedClock(testNow), logger)
	e.note = NewNoteHandler(e.businesses, e.items, e.notes, false, logger)
	e.business = NewBusinessHandler(e.businesses, nil, logger)
	e.category = NewCategoryHandler(e.categories, nil, logger)
	e.item = NewItemHandler(e.items, e.categories, ms, nil, logger)
	e.reorder = NewReorderHandler(ordering.NewCoordinator(store.NewRankStore(db)), e.categories, e.items, nil, logger)
	return e
}

func (e *testEnv) seedOwner(t *testing.T, email, name string) (*model.User, *model.Business) {
	t.Helper()
	u, err := e.users.Create(email, "Owner", "password123")
	require.NoError(t, err)
	b, err := e.businesses.Create(u.ID, name)
	require.NoError(t, err)
	return u, b
}

func (e *testEnv) seedCategory(t *testing.T, businessID int64, title string) *model.Category {
	t.Helper()
	c, err := e.categories.Create(businessID, title, "", true)
	require.NoError(t, err)
	return c
}

func (e *testEnv) seedItem(t *testing.T, categoryID int64, name string) *model.Item {
	t.Helper()
	i, err := e.items.Create(model.Item{CategoryID: categoryID, Name: name, Price: 1000, IsActive: true, IsFullTime: true, SortOrder: model.DefaultItemSortOrder})
	require.NoError(t, err)
	return i
}

// request builds a request with a JSON body (nil for none) and path values
// given as name, value pairs.
func request(t *testing.T, method, target string, body any, pathValues ...string) *http.Request {
	t.Helper()
	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, target, r)
	for i := 0; i+1 < len(pathValues); i += 2 {
		req.SetPathValue(pathValues[i], pathValues[i+1])
	}
	return req
}

// asOwner attaches the owner's auth context to req.
func asOwner(req *http.Request, userID, businessID int64) *http.Request {
	return req.WithContext(auth.WithAuth(req.Context(), auth.AuthContext{UserID: userID, BusinessID: businessID}))
}

func serve(h http.HandlerFunc, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func idStr(id int64) string {
	return strconv.FormatInt(id, 10)
}

func storeProfile(b *model.Business, showHours bool) store.BusinessProfile {
	return store.BusinessProfile{Name: b.Name, ThemePrimary: b.ThemePrimary, ThemeSecondary: b.ThemeSecondary, ShowHours: showHours}
}
