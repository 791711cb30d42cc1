// Package outbound defines the interfaces for outbound ports (secondary/driven adapters)
// These are the interfaces that the application uses to interact with external systems
package outbound

import (
	"context"
	"time"

	"github.com/cocinadelpatito/v1/internal/domain/recipe"
	"github.com/cocinadelpatito/v1/internal/domain/user"
	"github.com/google/uuid"
)

// RecipeRepository defines the interface for saved recipe persistence
type RecipeRepository interface {
	Create(ctx context.Context, recipe *recipe.SavedRecipe) error
	Save(ctx context.Context, recipe *recipe.SavedRecipe) error
	// DeleteOwned removes the recipe in a single owner-scoped statement.
	// It does not report whether a row existed.
	DeleteOwned(ctx context.Context, id, ownerID uuid.UUID) error

	// FindByID returns (nil, nil) when no recipe exists with the id.
	FindByID(ctx context.Context, id uuid.UUID) (*recipe.SavedRecipe, error)
	// FindByOwner returns all recipes owned by ownerID, newest first
	// with id as the tie-break key.
	FindByOwner(ctx context.Context, ownerID uuid.UUID) ([]*recipe.SavedRecipe, error)
	// FindPublic returns public recipes across all users, newest first,
	// each paired with its author's display fields.
	FindPublic(ctx context.Context, limit, offset int) ([]PublicRecipe, error)
}

// PublicRecipe pairs a public recipe with minimal author display data.
type PublicRecipe struct {
	Recipe      *recipe.SavedRecipe
	AuthorName  string
	AuthorImage string
}

// UserRepository defines the interface for user persistence
type UserRepository interface {
	Create(ctx context.Context, user *user.User) error
	Save(ctx context.Context, user *user.User) error
	// Delete removes the user; owned recipes are removed by the
	// database cascade.
	Delete(ctx context.Context, id uuid.UUID) error
	// FindByID returns (nil, nil) when no user exists with the id.
	FindByID(ctx context.Context, id uuid.UUID) (*user.User, error)
	// FindByEmail returns (nil, nil) when no user has the email.
	FindByEmail(ctx context.Context, email string) (*user.User, error)
}

// SessionStore registers issued sessions so they can be revoked
// server-side on logout and account deletion.
type SessionStore interface {
	Register(ctx context.Context, sessionID string, userID uuid.UUID, ttl time.Duration) error
	IsActive(ctx context.Context, sessionID string) (bool, error)
	Revoke(ctx context.Context, sessionID string, userID uuid.UUID) error
	RevokeAllForUser(ctx context.Context, userID uuid.UUID) error
}

// ChatMessage is one provider-format message.
type ChatMessage struct {
	Role    string
	Content string
}

// ChatModel streams completions from the hosted model provider.
type ChatModel interface {
	// StreamChat sends the system prompt and messages and invokes
	// onDelta for each output text fragment. It returns when the stream
	// ends or fails; a mid-stream failure leaves already-delivered
	// deltas in place.
	StreamChat(ctx context.Context, system string, messages []ChatMessage, onDelta func(delta string) error) error
}

// ImageStore persists uploaded images and returns their public URL.
type ImageStore interface {
	UploadProfileImage(ctx context.Context, userID uuid.UUID, data []byte, contentType string) (string, error)
}
