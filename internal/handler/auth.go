package handler

import (
	"log/slog"
	"net/http"
	"net/mail"
	"strings"
	"time"

	"github.com/dukerupert/menuboard/internal/middleware"
	"github.com/dukerupert/menuboard/internal/store"
)

const minPasswordLength = 8

type AuthHandler struct {
	userStore     *store.UserStore
	businessStore *store.BusinessStore
	sessionStore  *store.SessionStore
	secureCookie  bool
	logger        *slog.Logger
}

func NewAuthHandler(us *store.UserStore, bs *store.BusinessStore, ss *store.SessionStore, secureCookie bool, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		userStore:     us,
		businessStore: bs,
		sessionStore:  ss,
		secureCookie:  secureCookie,
		logger:        logger,
	}
}

type registerRequest struct {
	Email        string `json:"email"`
	Name         string `json:"name"`
	Password     string `json:"password"`
	BusinessName string `json:"business_name"`
}

// Register creates an owner account with its business and logs it in.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	req.Email = strings.TrimSpace(req.Email)
	req.Name = strings.TrimSpace(req.Name)
	req.BusinessName = strings.TrimSpace(req.BusinessName)
	if _, err := mail.ParseAddress(req.Email); err != nil {
		writeError(w, http.StatusBadRequest, "a valid email is required")
		return
	}
	if len(req.Password) < minPasswordLength {
		writeError(w, http.StatusBadRequest, "password must be at least 8 characters")
		return
	}
	if req.BusinessName == "" {
		req.BusinessName = "Cafe " + firstNonEmpty(req.Name, req.Email)
	}

	existing, err := h.userStore.GetByEmail(req.Email)
	if err != nil {
		h.logger.Error("register lookup", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if existing != nil {
		writeError(w, http.StatusConflict, "an account with this email already exists")
		return
	}

	user, err := h.userStore.Create(req.Email, req.Name, req.Password)
	if err != nil {
		h.logger.Error("create user", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create account")
		return
	}

	biz, err := h.businessStore.Create(user.ID, req.BusinessName)
	if err != nil {
		h.logger.Error("create business", "user_id", user.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create business")
		return
	}

	if !h.startSession(w, user.ID, biz.ID) {
		return
	}
	h.logger.Info("owner registered", "user_id", user.ID, "business_id", biz.ID)
	writeJSON(w, http.StatusCreated, map[string]any{"user": user, "business": biz})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	user, err := h.userStore.Authenticate(req.Email, req.Password)
	if err != nil {
		h.logger.Error("authenticate", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if user == nil {
		writeError(w, http.StatusUnauthorized, "invalid email or password")
		return
	}

	biz, err := h.businessStore.GetByOwner(user.ID)
	if err != nil {
		h.logger.Error("login business lookup", "user_id", user.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if biz == nil {
		biz, err = h.businessStore.Create(user.ID, "Cafe "+firstNonEmpty(user.Name, user.Email))
		if err != nil {
			h.logger.Error("create business", "user_id", user.ID, "error", err)
			writeError(w, http.StatusInternalServerError, "failed to create business")
			return
		}
	}

	if !h.startSession(w, user.ID, biz.ID) {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"user": user, "business": biz})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(middleware.SessionCookieName); err == nil && cookie.Value != "" {
		if err := h.sessionStore.Delete(cookie.Value); err != nil {
			h.logger.Error("delete session", "error", err)
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *AuthHandler) startSession(w http.ResponseWriter, userID, businessID int64) bool {
	sess, err := h.sessionStore.Create(userID, businessID)
	if err != nil {
		h.logger.Error("create session", "user_id", userID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to start session")
		return false
	}
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    sess.Token,
		Path:     "/",
		Expires:  sess.ExpiresAt,
		MaxAge:   int(store.SessionTTL / time.Second),
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
	return true
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
