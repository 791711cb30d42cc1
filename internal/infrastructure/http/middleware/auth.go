// Package middleware contains the HTTP middleware chain: authentication,
// security headers, request logging, and rate limiting.
package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/cocinadelpatito/v1/internal/infrastructure/security"
	"github.com/cocinadelpatito/v1/pkg/errors"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type contextKey string

const (
	userIDKey    contextKey = "user_id"
	sessionIDKey contextKey = "session_id"
)

// SessionCookieName is the cookie checked when no Authorization header
// is present.
const SessionCookieName = "session"

// WithUserID returns a context carrying the authenticated user id.
func WithUserID(ctx context.Context, userID uuid.UUID) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// UserIDFromContext returns the authenticated user id, or uuid.Nil for
// anonymous requests.
func UserIDFromContext(ctx context.Context) uuid.UUID {
	if id, ok := ctx.Value(userIDKey).(uuid.UUID); ok {
		return id
	}
	return uuid.Nil
}

// SessionIDFromContext returns the session id for the request, if any.
func SessionIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(sessionIDKey).(string); ok {
		return id
	}
	return ""
}

// Authenticate requires a valid, unrevoked session. Requests without one
// are rejected with 401 before reaching the handler.
func Authenticate(auth *security.AuthService, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, err := authenticate(r, auth)
			if err != nil {
				writeAuthError(w, r, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalAuthenticate attaches the caller's identity when a valid
// session is present and continues anonymously otherwise. Public
// endpoints use this so owners can see their own private recipes.
func OptionalAuthenticate(auth *security.AuthService, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, err := authenticate(r, auth)
			if err != nil {
				// Invalid credentials on an optional route degrade to
				// anonymous rather than failing the request.
				next.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func authenticate(r *http.Request, auth *security.AuthService) (context.Context, error) {
	token := ExtractToken(r)
	if token == "" {
		return nil, errors.NewUnauthenticatedError("")
	}

	claims, err := auth.ValidateToken(token)
	if err != nil {
		return nil, err
	}

	active, err := auth.IsSessionActive(r.Context(), claims.SessionID)
	if err != nil {
		return nil, errors.NewDatabaseError("check session", err)
	}
	if !active {
		return nil, errors.NewUnauthenticatedError("Session has been revoked")
	}

	ctx := context.WithValue(r.Context(), userIDKey, claims.UserID)
	ctx = context.WithValue(ctx, sessionIDKey, claims.SessionID)
	return ctx, nil
}

// ExtractToken pulls the session token from the Authorization header or,
// failing that, the session cookie.
func ExtractToken(r *http.Request) string {
	if header := r.Header.Get("Authorization"); header != "" {
		if strings.HasPrefix(header, "Bearer ") {
			return strings.TrimPrefix(header, "Bearer ")
		}
		return ""
	}
	if cookie, err := r.Cookie(SessionCookieName); err == nil {
		return cookie.Value
	}
	return ""
}

func writeAuthError(w http.ResponseWriter, r *http.Request, err error) {
	appErr := errors.Wrap(err, "authentication failed")
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(appErr.StatusCode())
	//nolint:errcheck
	json.NewEncoder(w).Encode(errors.ToErrorResponse(appErr, chimiddleware.GetReqID(r.Context())))
}
