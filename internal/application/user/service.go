// Package user provides the application layer for profile and account
// management.
package user

import (
	"bytes"
	"context"
	"image"
	"strings"

	// Registered so image.DecodeConfig can probe uploaded dimensions.
	_ "image/jpeg"
	_ "image/png"

	"github.com/cocinadelpatito/v1/internal/domain/user"
	"github.com/cocinadelpatito/v1/internal/ports/inbound"
	"github.com/cocinadelpatito/v1/internal/ports/outbound"
	"github.com/cocinadelpatito/v1/pkg/errors"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DeleteConfirmationToken is the literal a caller must supply to delete
// their account.
const DeleteConfirmationToken = "DELETE"

// Image upload limits, matching the product's upload policy.
const (
	maxImageBytes  = 2 << 20 // 2 MiB
	maxImageWidth  = 1024
	maxImageHeight = 1024
)

var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
}

// UserService implements the profile use cases
type UserService struct {
	userRepo outbound.UserRepository
	sessions outbound.SessionStore
	images   outbound.ImageStore
	logger   *zap.Logger
}

// NewUserService creates a new user service
func NewUserService(
	userRepo outbound.UserRepository,
	sessions outbound.SessionStore,
	images outbound.ImageStore,
	logger *zap.Logger,
) inbound.UserService {
	return &UserService{
		userRepo: userRepo,
		sessions: sessions,
		images:   images,
		logger:   logger.Named("user-service"),
	}
}

// GetProfile returns the requester's profile.
func (s *UserService) GetProfile(ctx context.Context, userID uuid.UUID) (*inbound.ProfileDTO, error) {
	entity, err := s.loadUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return entityToProfile(entity), nil
}

// UpdateProfile applies a presence-based patch to the requester's
// profile. Omitted fields are left unchanged.
func (s *UserService) UpdateProfile(ctx context.Context, cmd inbound.UpdateProfileCommand) (*inbound.ProfileDTO, error) {
	entity, err := s.loadUser(ctx, cmd.UserID)
	if err != nil {
		return nil, err
	}

	patch := user.ProfilePatch{Name: cmd.Name, Bio: cmd.Bio}
	if err := entity.ApplyProfilePatch(patch); err != nil {
		return nil, errors.NewValidationError(err.Error())
	}

	if err := s.userRepo.Save(ctx, entity); err != nil {
		return nil, errors.NewDatabaseError("update profile", err)
	}

	s.logger.Info("profile updated", zap.String("user_id", cmd.UserID.String()))
	return entityToProfile(entity), nil
}

// UploadProfileImage validates the image, stores it, and points the
// profile at the stored object's public URL.
func (s *UserService) UploadProfileImage(ctx context.Context, cmd inbound.UploadImageCommand) (*inbound.ProfileDTO, error) {
	entity, err := s.loadUser(ctx, cmd.UserID)
	if err != nil {
		return nil, err
	}

	if err := validateImage(cmd.Data, cmd.ContentType); err != nil {
		return nil, err
	}

	imageURL, err := s.images.UploadProfileImage(ctx, cmd.UserID, cmd.Data, cmd.ContentType)
	if err != nil {
		return nil, errors.NewUpstreamError("object storage", err)
	}

	entity.SetImageURL(imageURL)
	if err := s.userRepo.Save(ctx, entity); err != nil {
		return nil, errors.NewDatabaseError("update profile image", err)
	}

	s.logger.Info("profile image updated",
		zap.String("user_id", cmd.UserID.String()),
		zap.String("image_url", imageURL),
	)
	return entityToProfile(entity), nil
}

// DeleteAccount removes the account after an explicit confirmation. The
// database cascade removes owned recipes; sessions are revoked here.
func (s *UserService) DeleteAccount(ctx context.Context, userID uuid.UUID, confirmation string) error {
	if confirmation != DeleteConfirmationToken {
		return errors.NewValidationError("Invalid confirmation token. Please type DELETE to confirm.")
	}

	entity, err := s.loadUser(ctx, userID)
	if err != nil {
		return err
	}

	if err := s.userRepo.Delete(ctx, entity.ID()); err != nil {
		return errors.NewDatabaseError("delete account", err)
	}

	if err := s.sessions.RevokeAllForUser(ctx, userID); err != nil {
		// The account is gone; session revocation failure is logged but
		// does not undo the deletion.
		s.logger.Error("failed to revoke sessions after account deletion",
			zap.String("user_id", userID.String()),
			zap.Error(err),
		)
	}

	s.logger.Info("account deleted", zap.String("user_id", userID.String()))
	return nil
}

func (s *UserService) loadUser(ctx context.Context, userID uuid.UUID) (*user.User, error) {
	if userID == uuid.Nil {
		return nil, errors.NewUnauthenticatedError("")
	}

	entity, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, errors.NewDatabaseError("find user", err)
	}
	if entity == nil {
		return nil, errors.NewUserNotFoundError(userID.String())
	}
	return entity, nil
}

// validateImage checks size, content type, and, where the format is
// decodable by the standard library, pixel dimensions.
func validateImage(data []byte, contentType string) error {
	if len(data) == 0 {
		return errors.NewValidationError("Image data is empty")
	}
	if len(data) > maxImageBytes {
		return errors.NewValidationError("Image size exceeds the 2MB limit")
	}
	if !allowedImageTypes[strings.ToLower(contentType)] {
		return errors.NewValidationError("Invalid image type. Only JPEG, PNG, and WebP are allowed")
	}

	// WebP has no stdlib decoder; size and type checks still apply.
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		if strings.ToLower(contentType) == "image/webp" {
			return nil
		}
		return errors.NewValidationError("Invalid or corrupted image file")
	}
	if cfg.Width > maxImageWidth || cfg.Height > maxImageHeight {
		return errors.NewValidationError("Image dimensions exceed the maximum allowed (1024x1024px)")
	}
	return nil
}

func entityToProfile(entity *user.User) *inbound.ProfileDTO {
	return &inbound.ProfileDTO{
		ID:    entity.ID(),
		Name:  entity.Name(),
		Email: entity.Email(),
		Image: entity.ImageURL(),
		Bio:   entity.Bio(),
	}
}
