package middleware

import (
	"context"
	"net/http"

	"github.com/example/shopmate/internal/session"
)

// CookieName carries the signed session identifier.
const CookieName = "shopmate_sid"

type contextKey string

const sessionContextKey contextKey = "session"

// Session ensures every request carries a session identity: an opaque ID
// minted on first contact and carried in a signed cookie. Possession of the
// cookie is the only authorization there is. Invalid or expired tokens are
// silently replaced with a fresh identity.
func Session(tokens *session.TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sessionID := ""
			if cookie, err := r.Cookie(CookieName); err == nil {
				if id, err := tokens.Verify(cookie.Value); err == nil {
					sessionID = id
				}
			}

			if sessionID == "" {
				sessionID = session.NewSessionID()
				if signed, expiresAt, err := tokens.Issue(sessionID); err == nil {
					http.SetCookie(w, &http.Cookie{
						Name:     CookieName,
						Value:    signed,
						Path:     "/",
						Expires:  expiresAt,
						HttpOnly: true,
						SameSite: http.SameSiteLaxMode,
					})
				}
			}

			ctx := context.WithValue(r.Context(), sessionContextKey, sessionID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// SessionID returns the session identity for a request.
func SessionID(ctx context.Context) string {
	id, _ := ctx.Value(sessionContextKey).(string)
	return id
}
