package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cocinadelpatito/v1/internal/infrastructure/config"
	"github.com/cocinadelpatito/v1/internal/infrastructure/security"
	"github.com/cocinadelpatito/v1/pkg/errors"
)

func newTestAuthMiddleware(t *testing.T) func(http.Handler) http.Handler {
	t.Helper()
	cfg := &config.Config{}
	cfg.Auth.SessionSecret = "test-secret-do-not-use"
	cfg.Auth.SessionTTL = time.Hour

	// The rejection paths under test never reach the repositories.
	auth := security.NewAuthService(nil, nil, cfg, zap.NewNop())
	return Authenticate(auth, zap.NewNop())
}

func TestAuthenticate(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	t.Run("MissingToken_ShouldRejectWithErrorEnvelope", func(t *testing.T) {
		handler := newTestAuthMiddleware(t)(next)

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/users/me", nil))

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

		var body errors.ErrorResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
		assert.Equal(t, errors.CodeUnauthenticated, body.Error.Code)
		assert.NotEmpty(t, body.Error.Message)
	})

	t.Run("MalformedToken_ShouldRejectWithErrorEnvelope", func(t *testing.T) {
		handler := newTestAuthMiddleware(t)(next)

		req := httptest.NewRequest(http.MethodGet, "/api/v1/users/me", nil)
		req.Header.Set("Authorization", "Bearer not-a-token")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)

		var body errors.ErrorResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
		assert.Equal(t, errors.CodeUnauthenticated, body.Error.Code)
	})
}

func TestOptionalAuthenticate(t *testing.T) {
	t.Run("MissingToken_ShouldContinueAnonymously", func(t *testing.T) {
		cfg := &config.Config{}
		cfg.Auth.SessionSecret = "test-secret-do-not-use"
		cfg.Auth.SessionTTL = time.Hour
		auth := security.NewAuthService(nil, nil, cfg, zap.NewNop())

		var seen uuid.UUID
		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seen = UserIDFromContext(r.Context())
			w.WriteHeader(http.StatusOK)
		})

		rec := httptest.NewRecorder()
		OptionalAuthenticate(auth, zap.NewNop())(next).
			ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/recipes/abc", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, uuid.Nil, seen)
	})
}
