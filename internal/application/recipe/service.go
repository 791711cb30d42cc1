// Package recipe provides the application layer for saved recipe
// management. It enforces the visibility and ownership policy on every
// entry point.
package recipe

import (
	"context"

	"github.com/cocinadelpatito/v1/internal/domain/catalog"
	"github.com/cocinadelpatito/v1/internal/domain/recipe"
	"github.com/cocinadelpatito/v1/internal/ports/inbound"
	"github.com/cocinadelpatito/v1/internal/ports/outbound"
	"github.com/cocinadelpatito/v1/pkg/errors"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Listing bounds per the API contract.
const (
	defaultPublicLimit = 20
	maxPublicLimit     = 50
	defaultRecentLimit = 10
	maxRecentLimit     = 20
)

// RecipeService implements the recipe use cases
type RecipeService struct {
	recipeRepo outbound.RecipeRepository
	logger     *zap.Logger
}

// NewRecipeService creates a new recipe service
func NewRecipeService(recipeRepo outbound.RecipeRepository, logger *zap.Logger) inbound.RecipeService {
	return &RecipeService{
		recipeRepo: recipeRepo,
		logger:     logger.Named("recipe-service"),
	}
}

// CreateRecipe persists a new recipe owned by the requester. Visibility
// defaults to private when the command does not set it.
func (s *RecipeService) CreateRecipe(ctx context.Context, cmd inbound.CreateRecipeCommand) (*inbound.RecipeDTO, error) {
	if cmd.OwnerID == uuid.Nil {
		return nil, errors.NewUnauthenticatedError("")
	}

	entity, err := recipe.NewSavedRecipe(cmd.OwnerID, cmd.Title, cmd.Content, cmd.ImageURL)
	if err != nil {
		return nil, errors.NewValidationError(err.Error())
	}

	if cmd.IsPublic != nil && *cmd.IsPublic {
		public := true
		if err := entity.ApplyPatch(recipe.Patch{IsPublic: &public}); err != nil {
			return nil, errors.NewValidationError(err.Error())
		}
	}

	if err := s.recipeRepo.Create(ctx, entity); err != nil {
		return nil, errors.NewDatabaseError("create recipe", err)
	}

	s.logger.Info("recipe created",
		zap.String("recipe_id", entity.ID().String()),
		zap.String("owner_id", cmd.OwnerID.String()),
	)

	return entityToDTO(entity), nil
}

// ListRecipes returns all recipes owned by the requester, newest first.
// There is no pagination on the owner listing.
func (s *RecipeService) ListRecipes(ctx context.Context, userID uuid.UUID) ([]inbound.RecipeDTO, error) {
	if userID == uuid.Nil {
		return nil, errors.NewUnauthenticatedError("")
	}

	entities, err := s.recipeRepo.FindByOwner(ctx, userID)
	if err != nil {
		return nil, errors.NewDatabaseError("list recipes", err)
	}

	dtos := make([]inbound.RecipeDTO, len(entities))
	for i, entity := range entities {
		dtos[i] = *entityToDTO(entity)
	}
	return dtos, nil
}

// ListPublicRecipes returns public recipes across all users joined with
// author display fields. Accessible without authentication.
func (s *RecipeService) ListPublicRecipes(ctx context.Context, params inbound.PublicListParams) ([]inbound.PublicRecipeDTO, error) {
	limit := clampLimit(params.Limit, defaultPublicLimit, maxPublicLimit)
	offset := params.Offset
	if offset < 0 {
		offset = 0
	}

	return s.listPublic(ctx, limit, offset)
}

// ListRecentRecipes is the trending surface: the newest public recipes,
// capped at 20, no offset.
func (s *RecipeService) ListRecentRecipes(ctx context.Context, limit int) ([]inbound.PublicRecipeDTO, error) {
	return s.listPublic(ctx, clampLimit(limit, defaultRecentLimit, maxRecentLimit), 0)
}

func (s *RecipeService) listPublic(ctx context.Context, limit, offset int) ([]inbound.PublicRecipeDTO, error) {
	rows, err := s.recipeRepo.FindPublic(ctx, limit, offset)
	if err != nil {
		return nil, errors.NewDatabaseError("list public recipes", err)
	}

	dtos := make([]inbound.PublicRecipeDTO, len(rows))
	for i, row := range rows {
		dtos[i] = inbound.PublicRecipeDTO{
			RecipeDTO:   *entityToDTO(row.Recipe),
			AuthorName:  row.AuthorName,
			AuthorImage: row.AuthorImage,
		}
	}
	return dtos, nil
}

// GetPublicRecipe applies the read predicate: missing id is NotFound,
// public recipes are readable by anyone, private recipes only by their
// owner. requesterID is uuid.Nil for anonymous requesters.
func (s *RecipeService) GetPublicRecipe(ctx context.Context, recipeID, requesterID uuid.UUID) (*inbound.RecipeDTO, error) {
	entity, err := s.recipeRepo.FindByID(ctx, recipeID)
	if err != nil {
		return nil, errors.NewDatabaseError("find recipe", err)
	}
	if entity == nil {
		return nil, errors.NewRecipeNotFoundError(recipeID.String())
	}

	if !entity.CanBeReadBy(requesterID) {
		return nil, errors.NewForbiddenError("You do not have access to this recipe")
	}

	return entityToDTO(entity), nil
}

// UpdateRecipe applies a presence-based patch to a recipe owned by the
// requester. An empty patch still bumps the updated timestamp.
func (s *RecipeService) UpdateRecipe(ctx context.Context, cmd inbound.UpdateRecipeCommand) (*inbound.RecipeDTO, error) {
	if cmd.UserID == uuid.Nil {
		return nil, errors.NewUnauthenticatedError("")
	}

	entity, err := s.recipeRepo.FindByID(ctx, cmd.RecipeID)
	if err != nil {
		return nil, errors.NewDatabaseError("find recipe", err)
	}
	if entity == nil {
		return nil, errors.NewRecipeNotFoundError(cmd.RecipeID.String())
	}

	if !entity.CanBeWrittenBy(cmd.UserID) {
		return nil, errors.NewForbiddenError("Only the recipe owner can update it")
	}

	patch := recipe.Patch{
		Title:    cmd.Title,
		ImageURL: cmd.ImageURL,
		IsPublic: cmd.IsPublic,
	}
	if err := entity.ApplyPatch(patch); err != nil {
		return nil, errors.NewValidationError(err.Error())
	}

	if err := s.recipeRepo.Save(ctx, entity); err != nil {
		return nil, errors.NewDatabaseError("update recipe", err)
	}

	s.logger.Info("recipe updated",
		zap.String("recipe_id", entity.ID().String()),
		zap.Bool("is_public", entity.IsPublic()),
	)

	return entityToDTO(entity), nil
}

// DeleteRecipe removes the requester's recipe in a single owner-scoped
// statement. No existence check is made: deleting an unknown id, or an
// id owned by someone else, is an acknowledged no-op.
func (s *RecipeService) DeleteRecipe(ctx context.Context, recipeID, userID uuid.UUID) error {
	if userID == uuid.Nil {
		return errors.NewUnauthenticatedError("")
	}

	if err := s.recipeRepo.DeleteOwned(ctx, recipeID, userID); err != nil {
		return errors.NewDatabaseError("delete recipe", err)
	}

	s.logger.Info("recipe deleted",
		zap.String("recipe_id", recipeID.String()),
		zap.String("owner_id", userID.String()),
	)
	return nil
}

// Discover builds summaries from public recipes and applies the catalog
// refinement, filter before search.
func (s *RecipeService) Discover(ctx context.Context, query inbound.DiscoverQuery) ([]catalog.Summary, error) {
	limit := clampLimit(query.Limit, defaultPublicLimit, maxPublicLimit)

	rows, err := s.recipeRepo.FindPublic(ctx, limit, 0)
	if err != nil {
		return nil, errors.NewDatabaseError("list public recipes", err)
	}

	summaries := make([]catalog.Summary, len(rows))
	for i, row := range rows {
		summaries[i] = toSummary(row)
	}

	return catalog.Refine(summaries, query.Filter, query.Query), nil
}

func toSummary(row outbound.PublicRecipe) catalog.Summary {
	cookTime, calories, difficulty, category, tags := catalog.DecodeHints(row.Recipe.Content())
	return catalog.Summary{
		ID:              row.Recipe.ID().String(),
		Title:           row.Recipe.Title(),
		ImageURL:        row.Recipe.ImageURL(),
		AuthorName:      row.AuthorName,
		CookTimeMinutes: cookTime,
		Calories:        calories,
		Difficulty:      difficulty,
		Category:        category,
		Tags:            tags,
	}
}

func entityToDTO(entity *recipe.SavedRecipe) *inbound.RecipeDTO {
	return &inbound.RecipeDTO{
		ID:        entity.ID(),
		UserID:    entity.OwnerID(),
		Title:     entity.Title(),
		Content:   entity.Content(),
		ImageURL:  entity.ImageURL(),
		IsPublic:  entity.IsPublic(),
		CreatedAt: entity.CreatedAt(),
		UpdatedAt: entity.UpdatedAt(),
	}
}

func clampLimit(limit, def, max int) int {
	switch {
	case limit <= 0:
		return def
	case limit > max:
		return max
	default:
		return limit
	}
}
