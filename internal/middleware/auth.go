package middleware

import (
	"encoding/json"
	"net/http"

	"github.com/dukerupert/menuboard/internal/auth"
	"github.com/dukerupert/menuboard/internal/store"
)

// SessionCookieName is the cookie carrying an owner's session token.
const SessionCookieName = "menuboard_session"

// RequireAuth validates the session cookie and populates AuthContext. The
// session's business must still belong to the session's user.
func RequireAuth(sessionStore *store.SessionStore, businessStore *store.BusinessStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(SessionCookieName)
			if err != nil || cookie.Value == "" {
				unauthorized(w)
				return
			}

			sess, err := sessionStore.GetByToken(cookie.Value)
			if err != nil || sess == nil {
				unauthorized(w)
				return
			}

			biz, err := businessStore.GetByID(sess.BusinessID)
			if err != nil || biz == nil || biz.OwnerID != sess.UserID {
				unauthorized(w)
				return
			}

			ac := auth.AuthContext{
				UserID:     sess.UserID,
				BusinessID: sess.BusinessID,
				SessionID:  sess.ID,
			}

			ctx := auth.WithAuth(r.Context(), ac)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func unauthorized(w http.ResponseWriter) {
	writeError(w, http.StatusUnauthorized, "login required")
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]any{"success": false, "error": msg})
}
