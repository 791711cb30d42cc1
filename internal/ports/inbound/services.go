// Package inbound defines the interfaces for inbound ports (primary/driving adapters)
// These are the interfaces that the application exposes to the outside world
package inbound

import (
	"context"
	"encoding/json"
	"time"

	"github.com/cocinadelpatito/v1/internal/domain/catalog"
	"github.com/google/uuid"
)

// RecipeService defines the use cases for saved recipe management.
// This is the primary port that HTTP handlers use.
type RecipeService interface {
	// Commands
	CreateRecipe(ctx context.Context, cmd CreateRecipeCommand) (*RecipeDTO, error)
	UpdateRecipe(ctx context.Context, cmd UpdateRecipeCommand) (*RecipeDTO, error)
	// DeleteRecipe removes the requester's recipe. It is idempotent:
	// deleting an id that does not exist (or is not owned by the
	// requester) succeeds without error.
	DeleteRecipe(ctx context.Context, recipeID, userID uuid.UUID) error

	// Queries
	ListRecipes(ctx context.Context, userID uuid.UUID) ([]RecipeDTO, error)
	ListPublicRecipes(ctx context.Context, params PublicListParams) ([]PublicRecipeDTO, error)
	ListRecentRecipes(ctx context.Context, limit int) ([]PublicRecipeDTO, error)
	// GetPublicRecipe is the single read entry point shared by the
	// shared-recipe page and same-user private previews. requesterID is
	// uuid.Nil for anonymous requesters.
	GetPublicRecipe(ctx context.Context, recipeID, requesterID uuid.UUID) (*RecipeDTO, error)
	// Discover applies the catalog filter/search refinement over public
	// recipe summaries.
	Discover(ctx context.Context, query DiscoverQuery) ([]catalog.Summary, error)
}

// UserService defines the profile and account use cases.
type UserService interface {
	GetProfile(ctx context.Context, userID uuid.UUID) (*ProfileDTO, error)
	UpdateProfile(ctx context.Context, cmd UpdateProfileCommand) (*ProfileDTO, error)
	UploadProfileImage(ctx context.Context, cmd UploadImageCommand) (*ProfileDTO, error)
	// DeleteAccount removes the account and, by cascade, all owned
	// recipes and sessions. The confirmation must equal "DELETE".
	DeleteAccount(ctx context.Context, userID uuid.UUID, confirmation string) error
}

// ChatService relays a conversation to the model provider and streams
// the response. Implementations must reject before any model call when
// the transcript cannot be converted.
type ChatService interface {
	// Relay converts turns to provider messages and streams model output
	// deltas to sink until the stream completes or fails. Errors from
	// the provider propagate; no retry is attempted.
	Relay(ctx context.Context, turns []ChatTurn, sink StreamSink) error
}

// StreamSink receives streamed model output incrementally.
type StreamSink interface {
	// Delta is called for each text fragment as it arrives.
	Delta(text string) error
}

// ChatTurn is one prior conversation turn as sent by the UI.
type ChatTurn struct {
	Role  string     `json:"role"`
	Parts []ChatPart `json:"parts"`
}

// ChatPart is a typed message fragment. Only "text" parts are forwarded
// to the model; other types are silently dropped.
type ChatPart struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

// Command objects

// CreateRecipeCommand contains data for creating a new recipe
type CreateRecipeCommand struct {
	OwnerID  uuid.UUID
	Title    string
	Content  json.RawMessage
	ImageURL string
	IsPublic *bool
}

// UpdateRecipeCommand contains a presence-based patch for a recipe.
// Nil fields are left unchanged.
type UpdateRecipeCommand struct {
	RecipeID uuid.UUID
	UserID   uuid.UUID
	Title    *string
	ImageURL *string
	IsPublic *bool
}

// UpdateProfileCommand contains a presence-based profile patch.
type UpdateProfileCommand struct {
	UserID uuid.UUID
	Name   *string
	Bio    *string
}

// UploadImageCommand carries a decoded profile image upload.
type UploadImageCommand struct {
	UserID      uuid.UUID
	Data        []byte
	ContentType string
}

// Query objects

// PublicListParams bounds public listings. Limit is clamped to
// [1, 50] with a default of 20; offset is clamped to >= 0.
type PublicListParams struct {
	Limit  int
	Offset int
}

// DiscoverQuery parameterizes the catalog refinement surface.
type DiscoverQuery struct {
	Filter catalog.FilterOption
	Query  string
	Limit  int
}

// DTOs

// RecipeDTO is the full recipe record returned to its owner or, for
// public recipes, to any requester.
type RecipeDTO struct {
	ID        uuid.UUID       `json:"id"`
	UserID    uuid.UUID       `json:"userId"`
	Title     string          `json:"title"`
	Content   json.RawMessage `json:"content"`
	ImageURL  string          `json:"imageUrl"`
	IsPublic  bool            `json:"isPublic"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// PublicRecipeDTO joins a public recipe with minimal author display.
type PublicRecipeDTO struct {
	RecipeDTO
	AuthorName  string `json:"authorName"`
	AuthorImage string `json:"authorImage,omitempty"`
}

// ProfileDTO is the account profile projection.
type ProfileDTO struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
	Image string    `json:"image,omitempty"`
	Bio   string    `json:"bio,omitempty"`
}
