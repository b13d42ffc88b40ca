package server

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dukerupert/menuboard/internal/database"
	"github.com/dukerupert/menuboard/internal/visibility"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	db, err := database.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	now := time.Date(2025, 3, 15, 10, 0, 0, 0, time.UTC)
	srv := New(db, Options{Clock: visibility.FixedClock(now), LoginRateLimit: 3}, logger)

	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)
	return ts
}

func newClient(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &http.Client{Jar: jar}
}

func do(t *testing.T, c *http.Client, method, url, body string) (int, map[string]any) {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out map[string]any
	data, _ := io.ReadAll(resp.Body)
	if len(data) > 0 && data[0] == '{' {
		require.NoError(t, json.Unmarshal(data, &out), string(data))
	}
	return resp.StatusCode, out
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)
	code, body := do(t, http.DefaultClient, "GET", ts.URL+"/health", "")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", body["status"])
}

func TestOwnerRoutesRequireSession(t *testing.T) {
	ts := newTestServer(t)
	for _, path := range []string{"/api/dashboard", "/api/categories", "/api/menu-order"} {
		code, _ := do(t, http.DefaultClient, "GET", ts.URL+path, "")
		assert.Equal(t, http.StatusUnauthorized, code, path)
	}
	code, _ := do(t, http.DefaultClient, "POST", ts.URL+"/api/menu-order/categories", `{"categories":[]}`)
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestOwnerFlowPublishesMenu(t *testing.T) {
	ts := newTestServer(t)
	owner := newClient(t)

	code, _ := do(t, owner, "POST", ts.URL+"/register",
		`{"email":"owner@example.com","name":"Owner","password":"password123","business_name":"Night Owl"}`)
	require.Equal(t, http.StatusCreated, code)

	code, cat := do(t, owner, "POST", ts.URL+"/api/categories", `{"title":"Coffee"}`)
	require.Equal(t, http.StatusCreated, code)
	catID := int64(cat["id"].(float64))

	for _, name := range []string{"Mocha", "Americano"} {
		code, _ = do(t, owner, "POST", ts.URL+"/api/items",
			`{"category_id":`+itoa(catID)+`,"name":"`+name+`","price":1000}`)
		require.Equal(t, http.StatusCreated, code)
	}

	code, order := do(t, owner, "GET", ts.URL+"/api/menu-order", "")
	require.Equal(t, http.StatusOK, code)
	items := order["categories"].([]any)[0].(map[string]any)["items"].([]any)
	require.Len(t, items, 2)
	americano := int64(items[1].(map[string]any)["id"].(float64))
	mocha := int64(items[0].(map[string]any)["id"].(float64))

	code, resp := do(t, owner, "POST", ts.URL+"/api/menu-order/items",
		`{"category_id":`+itoa(catID)+`,"items":[`+itoa(americano)+`,`+itoa(mocha)+`]}`)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, resp["success"])

	visitor := newClient(t)
	code, page := do(t, visitor, "GET", ts.URL+"/api/menus/night-owl", "")
	require.Equal(t, http.StatusOK, code)
	section := page["sections"].([]any)[0].(map[string]any)
	listed := section["items"].([]any)
	require.Len(t, listed, 2)
	assert.Equal(t, "Americano", listed[0].(map[string]any)["name"])
	assert.Equal(t, "Mocha", listed[1].(map[string]any)["name"])
}

func TestLoginRateLimited(t *testing.T) {
	ts := newTestServer(t)
	var code int
	for i := 0; i < 4; i++ {
		code, _ = do(t, http.DefaultClient, "POST", ts.URL+"/login", `{"email":"x@example.com","password":"nope"}`)
	}
	assert.Equal(t, http.StatusTooManyRequests, code)
}

func itoa(n int64) string {
	b, _ := json.Marshal(n)
	return string(b)
}
