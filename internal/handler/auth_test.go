package handler

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dukerupert/menuboard/internal/middleware"
	"github.com/dukerupert/menuboard/internal/model"
)

type authResponse struct {
	User     model.User     `json:"user"`
	Business model.Business `json:"business"`
}

func sessionCookie(resp *http.Response) *http.Cookie {
	for _, c := range resp.Cookies() {
		if c.Name == middleware.SessionCookieName {
			return c
		}
	}
	return nil
}

func TestRegisterCreatesBusinessAndSession(t *testing.T) {
	e := newTestEnv(t)

	rec := serve(e.auth.Register, request(t, "POST", "/register", map[string]string{
		"email":         "ali@example.com",
		"name":          "Ali",
		"password":      "password123",
		"business_name": "Blue Door",
	}))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	resp := decode[authResponse](t, rec)
	assert.Equal(t, "ali@example.com", resp.User.Email)
	assert.Equal(t, "Blue Door", resp.Business.Name)
	assert.Equal(t, "blue-door", resp.Business.Slug)

	c := sessionCookie(rec.Result())
	require.NotNil(t, c)
	assert.True(t, c.HttpOnly)

	sess, err := e.sessions.GetByToken(c.Value)
	require.NoError(t, err)
	require.NotNil(t, sess)
	assert.Equal(t, resp.Business.ID, sess.BusinessID)

	hours, err := e.businesses.ListHours(resp.Business.ID)
	require.NoError(t, err)
	assert.Len(t, hours, 7)
}

func TestRegisterDefaultsBusinessName(t *testing.T) {
	e := newTestEnv(t)

	rec := serve(e.auth.Register, request(t, "POST", "/register", map[string]string{
		"email": "sara@example.com", "name": "Sara", "password": "password123",
	}))
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "Cafe Sara", decode[authResponse](t, rec).Business.Name)
}

func TestRegisterRejectsBadInput(t *testing.T) {
	e := newTestEnv(t)

	tests := []struct {
		name string
		body map[string]string
	}{
		{"bad email", map[string]string{"email": "nope", "password": "password123"}},
		{"short password", map[string]string{"email": "a@example.com", "password": "short"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(e.auth.Register, request(t, "POST", "/register", tt.body))
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	e := newTestEnv(t)
	e.seedOwner(t, "dup@example.com", "First")

	rec := serve(e.auth.Register, request(t, "POST", "/register", map[string]string{
		"email": "dup@example.com", "password": "password123",
	}))
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestLogin(t *testing.T) {
	e := newTestEnv(t)
	_, biz := e.seedOwner(t, "owner@example.com", "Corner Cafe")

	rec := serve(e.auth.Login, request(t, "POST", "/login", map[string]string{
		"email": "owner@example.com", "password": "password123",
	}))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, biz.ID, decode[authResponse](t, rec).Business.ID)
	assert.NotNil(t, sessionCookie(rec.Result()))

	rec = serve(e.auth.Login, request(t, "POST", "/login", map[string]string{
		"email": "owner@example.com", "password": "wrong-password",
	}))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Nil(t, sessionCookie(rec.Result()))
}

func TestLoginCreatesMissingBusiness(t *testing.T) {
	e := newTestEnv(t)
	_, err := e.users.Create("solo@example.com", "Reza", "password123")
	require.NoError(t, err)

	rec := serve(e.auth.Login, request(t, "POST", "/login", map[string]string{
		"email": "solo@example.com", "password": "password123",
	}))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Cafe Reza", decode[authResponse](t, rec).Business.Name)
}

func TestLogoutClearsSession(t *testing.T) {
	e := newTestEnv(t)
	u, biz := e.seedOwner(t, "out@example.com", "Exit Cafe")
	sess, err := e.sessions.Create(u.ID, biz.ID)
	require.NoError(t, err)

	req := request(t, "POST", "/logout", nil)
	req.AddCookie(&http.Cookie{Name: middleware.SessionCookieName, Value: sess.Token})
	rec := serve(e.auth.Logout, req)
	require.Equal(t, http.StatusOK, rec.Code)

	c := sessionCookie(rec.Result())
	require.NotNil(t, c)
	assert.Equal(t, -1, c.MaxAge)

	got, err := e.sessions.GetByToken(sess.Token)
	require.NoError(t, err)
	assert.Nil(t, got)
}
