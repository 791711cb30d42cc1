package user

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"

	domainuser "github.com/cocinadelpatito/v1/internal/domain/user"
	"github.com/cocinadelpatito/v1/internal/ports/inbound"
	"github.com/cocinadelpatito/v1/internal/testutil"
	"github.com/cocinadelpatito/v1/pkg/errors"
)

type memoryUserRepo struct {
	mu   sync.Mutex
	rows map[uuid.UUID]*domainuser.User
}

func newMemoryUserRepo() *memoryUserRepo {
	return &memoryUserRepo{rows: make(map[uuid.UUID]*domainuser.User)}
}

func (m *memoryUserRepo) Create(_ context.Context, u *domainuser.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows[u.ID()] = u
	return nil
}

func (m *memoryUserRepo) Save(_ context.Context, u *domainuser.User) error {
	return m.Create(context.Background(), u)
}

func (m *memoryUserRepo) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.rows, id)
	return nil
}

func (m *memoryUserRepo) FindByID(_ context.Context, id uuid.UUID) (*domainuser.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.rows[id], nil
}

func (m *memoryUserRepo) FindByEmail(_ context.Context, email string) (*domainuser.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.rows {
		if u.Email() == email {
			return u, nil
		}
	}
	return nil, nil
}

type stubSessionStore struct {
	revokedUsers []uuid.UUID
}

func (s *stubSessionStore) Register(_ context.Context, _ string, _ uuid.UUID, _ time.Duration) error {
	return nil
}

func (s *stubSessionStore) IsActive(_ context.Context, _ string) (bool, error) {
	return true, nil
}

func (s *stubSessionStore) Revoke(_ context.Context, _ string, _ uuid.UUID) error {
	return nil
}

func (s *stubSessionStore) RevokeAllForUser(_ context.Context, userID uuid.UUID) error {
	s.revokedUsers = append(s.revokedUsers, userID)
	return nil
}

type stubImageStore struct {
	uploads int
	url     string
}

func (s *stubImageStore) UploadProfileImage(_ context.Context, _ uuid.UUID, _ []byte, _ string) (string, error) {
	s.uploads++
	return s.url, nil
}

// pngBytes encodes a real PNG of the given dimensions.
func pngBytes(t *testing.T, width, height int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, width, height))))
	return buf.Bytes()
}

// UserServiceTestSuite tests the user application service
type UserServiceTestSuite struct {
	suite.Suite
	repo     *memoryUserRepo
	sessions *stubSessionStore
	images   *stubImageStore
	service  inbound.UserService
	ctx      context.Context
	account  *domainuser.User
}

func (suite *UserServiceTestSuite) SetupTest() {
	suite.repo = newMemoryUserRepo()
	suite.sessions = &stubSessionStore{}
	suite.images = &stubImageStore{url: "https://cdn.example.com/avatar.jpg"}
	suite.service = NewUserService(suite.repo, suite.sessions, suite.images, zap.NewNop())
	suite.ctx = context.Background()

	account := testutil.NewUser()
	require.NoError(suite.T(), suite.repo.Create(suite.ctx, account))
	suite.account = account
}

func (suite *UserServiceTestSuite) TestGetProfile() {
	suite.Run("ExistingUser_ShouldReturnProfile", func() {
		profile, err := suite.service.GetProfile(suite.ctx, suite.account.ID())

		require.NoError(suite.T(), err)
		assert.Equal(suite.T(), suite.account.Name(), profile.Name)
		assert.Equal(suite.T(), suite.account.Email(), profile.Email)
	})

	suite.Run("Anonymous_ShouldBeUnauthenticated", func() {
		_, err := suite.service.GetProfile(suite.ctx, uuid.Nil)
		assert.True(suite.T(), errors.Is(err, errors.CodeUnauthenticated))
	})

	suite.Run("UnknownUser_ShouldBeNotFound", func() {
		_, err := suite.service.GetProfile(suite.ctx, uuid.New())
		assert.True(suite.T(), errors.Is(err, errors.CodeUserNotFound))
	})
}

func (suite *UserServiceTestSuite) TestUpdateProfile() {
	suite.Run("PartialPatch_OnlyChangesSetFields", func() {
		originalName := suite.account.Name()

		bio := "Chef de fin de semana"
		profile, err := suite.service.UpdateProfile(suite.ctx, inbound.UpdateProfileCommand{
			UserID: suite.account.ID(),
			Bio:    &bio,
		})

		require.NoError(suite.T(), err)
		assert.Equal(suite.T(), originalName, profile.Name)
		assert.Equal(suite.T(), "Chef de fin de semana", profile.Bio)
	})

	suite.Run("BlankName_ShouldFailValidation", func() {
		blank := " "
		_, err := suite.service.UpdateProfile(suite.ctx, inbound.UpdateProfileCommand{
			UserID: suite.account.ID(),
			Name:   &blank,
		})
		assert.True(suite.T(), errors.Is(err, errors.CodeValidationFailed))
	})
}

func (suite *UserServiceTestSuite) TestUploadProfileImage() {
	suite.Run("ValidPNG_ShouldStoreAndUpdateProfile", func() {
		profile, err := suite.service.UploadProfileImage(suite.ctx, inbound.UploadImageCommand{
			UserID:      suite.account.ID(),
			Data:        pngBytes(suite.T(), 512, 512),
			ContentType: "image/png",
		})

		require.NoError(suite.T(), err)
		assert.Equal(suite.T(), 1, suite.images.uploads)
		assert.Equal(suite.T(), "https://cdn.example.com/avatar.jpg", profile.Image)
	})

	suite.Run("OversizedDimensions_ShouldFailValidation", func() {
		_, err := suite.service.UploadProfileImage(suite.ctx, inbound.UploadImageCommand{
			UserID:      suite.account.ID(),
			Data:        pngBytes(suite.T(), 1025, 100),
			ContentType: "image/png",
		})
		assert.True(suite.T(), errors.Is(err, errors.CodeValidationFailed))
	})

	suite.Run("DisallowedContentType_ShouldFailValidation", func() {
		_, err := suite.service.UploadProfileImage(suite.ctx, inbound.UploadImageCommand{
			UserID:      suite.account.ID(),
			Data:        []byte("GIF89a..."),
			ContentType: "image/gif",
		})
		assert.True(suite.T(), errors.Is(err, errors.CodeValidationFailed))
	})

	suite.Run("OversizedPayload_ShouldFailValidation", func() {
		_, err := suite.service.UploadProfileImage(suite.ctx, inbound.UploadImageCommand{
			UserID:      suite.account.ID(),
			Data:        make([]byte, maxImageBytes+1),
			ContentType: "image/jpeg",
		})
		assert.True(suite.T(), errors.Is(err, errors.CodeValidationFailed))
	})

	suite.Run("CorruptedJPEG_ShouldFailValidation", func() {
		_, err := suite.service.UploadProfileImage(suite.ctx, inbound.UploadImageCommand{
			UserID:      suite.account.ID(),
			Data:        []byte("definitely not a jpeg"),
			ContentType: "image/jpeg",
		})
		assert.True(suite.T(), errors.Is(err, errors.CodeValidationFailed))
	})

	suite.Run("WebP_PassesWithoutDimensionCheck", func() {
		_, err := suite.service.UploadProfileImage(suite.ctx, inbound.UploadImageCommand{
			UserID:      suite.account.ID(),
			Data:        []byte("RIFF....WEBPVP8 "),
			ContentType: "image/webp",
		})
		assert.NoError(suite.T(), err)
	})
}

func (suite *UserServiceTestSuite) TestDeleteAccount() {
	suite.Run("WrongConfirmation_ShouldFailWithoutDeleting", func() {
		err := suite.service.DeleteAccount(suite.ctx, suite.account.ID(), "delete")

		assert.True(suite.T(), errors.Is(err, errors.CodeValidationFailed))

		still, repoErr := suite.repo.FindByID(suite.ctx, suite.account.ID())
		require.NoError(suite.T(), repoErr)
		assert.NotNil(suite.T(), still)
	})

	suite.Run("ExactConfirmation_DeletesAndRevokesSessions", func() {
		err := suite.service.DeleteAccount(suite.ctx, suite.account.ID(), DeleteConfirmationToken)

		require.NoError(suite.T(), err)

		gone, repoErr := suite.repo.FindByID(suite.ctx, suite.account.ID())
		require.NoError(suite.T(), repoErr)
		assert.Nil(suite.T(), gone)
		assert.Contains(suite.T(), suite.sessions.revokedUsers, suite.account.ID())
	})
}

func TestUserServiceTestSuite(t *testing.T) {
	suite.Run(t, new(UserServiceTestSuite))
}
