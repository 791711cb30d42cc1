// Package recipe contains the core domain logic for saved recipes:
// ownership, visibility and the mutation rules that every entry point
// must enforce.
package recipe

import (
	"encoding/json"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
)

// PlaceholderImageURL is used when a recipe is created without a valid
// image reference.
const PlaceholderImageURL = "https://images.unsplash.com/photo-1495521821757-a1efb0d6f87a?w=400&h=300&fit=crop"

// SavedRecipe is a user-owned recipe document. The content payload is
// opaque: it is stored and returned as-is, typically a serialized chat
// transcript or a recipe-attributes object.
type SavedRecipe struct {
	id        uuid.UUID
	ownerID   uuid.UUID
	title     string
	content   json.RawMessage
	imageURL  string
	isPublic  bool
	createdAt time.Time
	updatedAt time.Time
}

// NewSavedRecipe creates a recipe owned by ownerID. The title must be
// non-empty; a missing or syntactically invalid imageURL falls back to
// the placeholder. Visibility defaults to private.
func NewSavedRecipe(ownerID uuid.UUID, title string, content json.RawMessage, imageURL string) (*SavedRecipe, error) {
	if err := validateTitle(title); err != nil {
		return nil, err
	}
	if ownerID == uuid.Nil {
		return nil, ErrOwnerRequired
	}

	now := time.Now()
	return &SavedRecipe{
		id:        uuid.New(),
		ownerID:   ownerID,
		title:     title,
		content:   content,
		imageURL:  normalizeImageURL(imageURL),
		isPublic:  false,
		createdAt: now,
		updatedAt: now,
	}, nil
}

// Reconstruct rebuilds a recipe from persisted state without validation.
func Reconstruct(id, ownerID uuid.UUID, title string, content json.RawMessage, imageURL string, isPublic bool, createdAt, updatedAt time.Time) *SavedRecipe {
	return &SavedRecipe{
		id:        id,
		ownerID:   ownerID,
		title:     title,
		content:   content,
		imageURL:  imageURL,
		isPublic:  isPublic,
		createdAt: createdAt,
		updatedAt: updatedAt,
	}
}

// ID returns the recipe's unique identifier
func (r *SavedRecipe) ID() uuid.UUID { return r.id }

// OwnerID returns the owning user's identifier. Immutable after creation.
func (r *SavedRecipe) OwnerID() uuid.UUID { return r.ownerID }

// Title returns the recipe title
func (r *SavedRecipe) Title() string { return r.title }

// Content returns the opaque content payload as stored
func (r *SavedRecipe) Content() json.RawMessage { return r.content }

// ImageURL returns the image reference
func (r *SavedRecipe) ImageURL() string { return r.imageURL }

// IsPublic reports whether the recipe is readable by any requester
func (r *SavedRecipe) IsPublic() bool { return r.isPublic }

// CreatedAt returns when the recipe was created
func (r *SavedRecipe) CreatedAt() time.Time { return r.createdAt }

// UpdatedAt returns when the recipe was last updated
func (r *SavedRecipe) UpdatedAt() time.Time { return r.updatedAt }

// CanBeReadBy reports whether requester may read this recipe: public
// recipes are readable by anyone, private recipes only by their owner.
// uuid.Nil is the anonymous requester and is never an owner.
func (r *SavedRecipe) CanBeReadBy(requester uuid.UUID) bool {
	if r.isPublic {
		return true
	}
	return requester != uuid.Nil && requester == r.ownerID
}

// CanBeWrittenBy reports whether requester may mutate or delete this
// recipe. There is no public-write path.
func (r *SavedRecipe) CanBeWrittenBy(requester uuid.UUID) bool {
	return requester != uuid.Nil && requester == r.ownerID
}

// Patch carries optional recipe updates. A nil field is left unchanged.
type Patch struct {
	Title    *string
	ImageURL *string
	IsPublic *bool
}

// ApplyPatch applies the provided fields and bumps updatedAt. An empty
// patch leaves all mutable fields unchanged but still bumps updatedAt.
func (r *SavedRecipe) ApplyPatch(patch Patch) error {
	if patch.Title != nil {
		if err := validateTitle(*patch.Title); err != nil {
			return err
		}
	}

	if patch.Title != nil {
		r.title = *patch.Title
	}
	if patch.ImageURL != nil {
		r.imageURL = normalizeImageURL(*patch.ImageURL)
	}
	if patch.IsPublic != nil {
		r.isPublic = *patch.IsPublic
	}
	r.updatedAt = time.Now()
	return nil
}

func validateTitle(title string) error {
	if strings.TrimSpace(title) == "" {
		return ErrTitleRequired
	}
	return nil
}

// normalizeImageURL keeps syntactically valid absolute URLs and replaces
// everything else with the placeholder.
func normalizeImageURL(raw string) string {
	if raw == "" {
		return PlaceholderImageURL
	}
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return PlaceholderImageURL
	}
	return raw
}
