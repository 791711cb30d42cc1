package security

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cocinadelpatito/v1/internal/domain/user"
	"github.com/cocinadelpatito/v1/internal/infrastructure/config"
	"github.com/cocinadelpatito/v1/internal/testutil"
	apperrors "github.com/cocinadelpatito/v1/pkg/errors"
)

type memoryUserRepo struct {
	mu   sync.Mutex
	rows map[uuid.UUID]*user.User
}

func newMemoryUserRepo() *memoryUserRepo {
	return &memoryUserRepo{rows: make(map[uuid.UUID]*user.User)}
}

func (m *memoryUserRepo) Create(_ context.Context, u *user.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows[u.ID()] = u
	return nil
}

func (m *memoryUserRepo) Save(ctx context.Context, u *user.User) error {
	return m.Create(ctx, u)
}

func (m *memoryUserRepo) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.rows, id)
	return nil
}

func (m *memoryUserRepo) FindByID(_ context.Context, id uuid.UUID) (*user.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.rows[id], nil
}

func (m *memoryUserRepo) FindByEmail(_ context.Context, email string) (*user.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.rows {
		if u.Email() == email {
			return u, nil
		}
	}
	return nil, nil
}

type memorySessionStore struct {
	mu       sync.Mutex
	sessions map[string]uuid.UUID
}

func newMemorySessionStore() *memorySessionStore {
	return &memorySessionStore{sessions: make(map[string]uuid.UUID)}
}

func (m *memorySessionStore) Register(_ context.Context, sessionID string, userID uuid.UUID, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[sessionID] = userID
	return nil
}

func (m *memorySessionStore) IsActive(_ context.Context, sessionID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.sessions[sessionID]
	return ok, nil
}

func (m *memorySessionStore) Revoke(_ context.Context, sessionID string, _ uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, sessionID)
	return nil
}

func (m *memorySessionStore) RevokeAllForUser(_ context.Context, userID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, uid := range m.sessions {
		if uid == userID {
			delete(m.sessions, id)
		}
	}
	return nil
}

func newTestAuthService() (*AuthService, *memoryUserRepo, *memorySessionStore) {
	cfg := &config.Config{}
	cfg.Auth.SessionSecret = "test-secret-do-not-use"
	cfg.Auth.SessionTTL = time.Hour

	users := newMemoryUserRepo()
	sessions := newMemorySessionStore()
	return NewAuthService(users, sessions, cfg, zap.NewNop()), users, sessions
}

func TestRegister(t *testing.T) {
	ctx := context.Background()

	t.Run("creates account and opens a session", func(t *testing.T) {
		svc, _, sessions := newTestAuthService()

		result, err := svc.Register(ctx, "pato@example.com", "Pato", "supersecret1")

		require.NoError(t, err)
		assert.NotEmpty(t, result.Token)
		assert.Equal(t, "pato@example.com", result.User.Email)

		claims, err := svc.ValidateToken(result.Token)
		require.NoError(t, err)
		assert.Equal(t, result.User.ID, claims.UserID)

		active, err := sessions.IsActive(ctx, claims.SessionID)
		require.NoError(t, err)
		assert.True(t, active)
	})

	t.Run("duplicate email is a conflict", func(t *testing.T) {
		svc, _, _ := newTestAuthService()

		_, err := svc.Register(ctx, "pato@example.com", "Pato", "supersecret1")
		require.NoError(t, err)

		_, err = svc.Register(ctx, "pato@example.com", "Otro", "supersecret2")
		assert.True(t, apperrors.Is(err, apperrors.CodeEmailAlreadyExists))
	})

	t.Run("weak password is a validation error", func(t *testing.T) {
		svc, _, _ := newTestAuthService()

		_, err := svc.Register(ctx, "pato@example.com", "Pato", "short")
		assert.True(t, apperrors.Is(err, apperrors.CodeValidationFailed))
	})
}

func TestLogin(t *testing.T) {
	ctx := context.Background()

	t.Run("valid credentials open a session", func(t *testing.T) {
		svc, _, _ := newTestAuthService()
		_, err := svc.Register(ctx, "pato@example.com", "Pato", "supersecret1")
		require.NoError(t, err)

		result, err := svc.Login(ctx, "pato@example.com", "supersecret1")
		require.NoError(t, err)
		assert.NotEmpty(t, result.Token)
	})

	t.Run("pre-created account logs in with its password", func(t *testing.T) {
		svc, users, _ := newTestAuthService()
		account := testutil.NewUser()
		require.NoError(t, users.Create(ctx, account))

		result, err := svc.Login(ctx, account.Email(), testutil.DefaultPassword)
		require.NoError(t, err)
		assert.Equal(t, account.ID(), result.User.ID)
		assert.Equal(t, account.Email(), result.User.Email)
	})

	t.Run("wrong password and unknown email fail identically", func(t *testing.T) {
		svc, _, _ := newTestAuthService()
		_, err := svc.Register(ctx, "pato@example.com", "Pato", "supersecret1")
		require.NoError(t, err)

		_, errWrongPassword := svc.Login(ctx, "pato@example.com", "wrong-password")
		_, errUnknownEmail := svc.Login(ctx, "nadie@example.com", "supersecret1")

		assert.True(t, apperrors.Is(errWrongPassword, apperrors.CodeInvalidCredentials))
		assert.True(t, apperrors.Is(errUnknownEmail, apperrors.CodeInvalidCredentials))
		assert.Equal(t, errWrongPassword.Error(), errUnknownEmail.Error())
	})
}

func TestLogout(t *testing.T) {
	ctx := context.Background()

	t.Run("revokes the session", func(t *testing.T) {
		svc, _, sessions := newTestAuthService()
		result, err := svc.Register(ctx, "pato@example.com", "Pato", "supersecret1")
		require.NoError(t, err)

		require.NoError(t, svc.Logout(ctx, result.Token))

		claims, err := svc.ValidateToken(result.Token)
		require.NoError(t, err, "the token itself stays well-formed")
		active, err := sessions.IsActive(ctx, claims.SessionID)
		require.NoError(t, err)
		assert.False(t, active)
	})

	t.Run("garbage token is not an error", func(t *testing.T) {
		svc, _, _ := newTestAuthService()
		assert.NoError(t, svc.Logout(ctx, "not-a-token"))
	})
}

func TestValidateToken(t *testing.T) {
	t.Run("rejects tampered tokens", func(t *testing.T) {
		svc, _, _ := newTestAuthService()
		result, err := svc.Register(context.Background(), "pato@example.com", "Pato", "supersecret1")
		require.NoError(t, err)

		_, err = svc.ValidateToken(result.Token + "x")
		assert.True(t, apperrors.Is(err, apperrors.CodeUnauthenticated))
	})

	t.Run("rejects tokens signed with another secret", func(t *testing.T) {
		svcA, _, _ := newTestAuthService()
		result, err := svcA.Register(context.Background(), "pato@example.com", "Pato", "supersecret1")
		require.NoError(t, err)

		cfg := &config.Config{}
		cfg.Auth.SessionSecret = "a-different-secret"
		cfg.Auth.SessionTTL = time.Hour
		svcB := NewAuthService(newMemoryUserRepo(), newMemorySessionStore(), cfg, zap.NewNop())

		_, err = svcB.ValidateToken(result.Token)
		assert.True(t, apperrors.Is(err, apperrors.CodeUnauthenticated))
	})
}
