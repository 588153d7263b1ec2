package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	h "evently/internal/delivery/http/helpers"
	"evently/internal/domain"
)

// SessionCookie is the cookie Clerk's frontend SDK sets on same-origin requests.
const SessionCookie = "__session"

// Messages sent with 401 responses.
const (
	msgNoSession      = "no Clerk session: send the session token as a Bearer token or __session cookie"
	msgBadAuthScheme  = "Authorization header must use the Bearer scheme"
	msgSessionInvalid = "Clerk session token is invalid or expired"
)

type contextKey string

const clerkUserKey contextKey = "clerkUserID"

// SetUserID returns a context carrying the Clerk user id of the caller.
func SetUserID(ctx context.Context, clerkUserID string) context.Context {
	return context.WithValue(ctx, clerkUserKey, clerkUserID)
}

// UserIDFromContext returns the caller's Clerk user id. ok is false for
// unauthenticated requests.
func UserIDFromContext(ctx context.Context) (string, bool) {
	id, _ := ctx.Value(clerkUserKey).(string)
	return id, id != ""
}

// sessionToken pulls the Clerk session token from the request. The header wins
// over the cookie. badScheme is set when an Authorization header is present
// but is not a Bearer credential.
func sessionToken(r *http.Request) (token string, badScheme bool) {
	if auth := r.Header.Get("Authorization"); auth != "" {
		scheme, cred, _ := strings.Cut(auth, " ")
		if !strings.EqualFold(scheme, "Bearer") {
			return "", true
		}
		return strings.TrimSpace(cred), false
	}
	if c, err := r.Cookie(SessionCookie); err == nil {
		return strings.TrimSpace(c.Value), false
	}
	return "", false
}

// RequireAuth only calls next for requests carrying a valid Clerk session
// token. The caller's Clerk user id is stored in the request context.
func RequireAuth(verifier domain.TokenVerifier, logger *slog.Logger) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			token, badScheme := sessionToken(r)
			switch {
			case badScheme:
				h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, msgBadAuthScheme)
				return
			case token == "":
				h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, msgNoSession)
				return
			}
			clerkID, err := verifier.Verify(token)
			if err != nil {
				logger.DebugContext(r.Context(), "clerk session rejected", "path", r.URL.Path, "err", err)
				h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, msgSessionInvalid)
				return
			}
			next(w, r.WithContext(SetUserID(r.Context(), clerkID)))
		}
	}
}
