package gorm

import (
	"context"
	"errors"
	"fmt"

	"github.com/cocinadelpatito/v1/internal/domain/recipe"
	"github.com/cocinadelpatito/v1/internal/ports/outbound"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// RecipeRepository implements outbound.RecipeRepository using GORM
type RecipeRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewRecipeRepository creates a new recipe repository
func NewRecipeRepository(db *gorm.DB, logger *zap.Logger) outbound.RecipeRepository {
	return &RecipeRepository{
		db:     db,
		logger: logger.Named("recipe-repository"),
	}
}

// Create inserts a new recipe row
func (r *RecipeRepository) Create(ctx context.Context, entity *recipe.SavedRecipe) error {
	model := recipeToModel(entity)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return fmt.Errorf("failed to create recipe: %w", err)
	}
	return nil
}

// Save updates an existing recipe row
func (r *RecipeRepository) Save(ctx context.Context, entity *recipe.SavedRecipe) error {
	model := recipeToModel(entity)
	if err := r.db.WithContext(ctx).Save(model).Error; err != nil {
		return fmt.Errorf("failed to save recipe: %w", err)
	}
	return nil
}

// DeleteOwned removes the recipe in a single statement scoped to both id
// and owner. A zero rows-affected result is not an error: the caller
// treats deletion as idempotent.
func (r *RecipeRepository) DeleteOwned(ctx context.Context, id, ownerID uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, ownerID).
		Delete(&SavedRecipeModel{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete recipe: %w", result.Error)
	}

	r.logger.Debug("recipe delete executed",
		zap.String("recipe_id", id.String()),
		zap.Int64("rows_affected", result.RowsAffected),
	)
	return nil
}

// FindByID returns (nil, nil) when no recipe exists with the id.
func (r *RecipeRepository) FindByID(ctx context.Context, id uuid.UUID) (*recipe.SavedRecipe, error) {
	var model SavedRecipeModel
	err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find recipe: %w", err)
	}
	return recipeToEntity(&model), nil
}

// FindByOwner returns all recipes owned by ownerID, newest first. The id
// column breaks creation-time ties so ordering stays deterministic.
func (r *RecipeRepository) FindByOwner(ctx context.Context, ownerID uuid.UUID) ([]*recipe.SavedRecipe, error) {
	var models []SavedRecipeModel
	err := r.db.WithContext(ctx).
		Where("user_id = ?", ownerID).
		Order("created_at DESC, id DESC").
		Find(&models).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list recipes by owner: %w", err)
	}

	entities := make([]*recipe.SavedRecipe, len(models))
	for i := range models {
		entities[i] = recipeToEntity(&models[i])
	}
	return entities, nil
}

// FindPublic returns public recipes across all users, newest first, each
// joined with its author's display fields.
func (r *RecipeRepository) FindPublic(ctx context.Context, limit, offset int) ([]outbound.PublicRecipe, error) {
	var models []SavedRecipeModel
	err := r.db.WithContext(ctx).
		Preload("Author").
		Where("is_public = ?", true).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Offset(offset).
		Find(&models).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list public recipes: %w", err)
	}

	rows := make([]outbound.PublicRecipe, len(models))
	for i := range models {
		row := outbound.PublicRecipe{Recipe: recipeToEntity(&models[i])}
		if models[i].Author != nil {
			row.AuthorName = models[i].Author.Name
			row.AuthorImage = models[i].Author.ImageURL
		}
		rows[i] = row
	}
	return rows, nil
}
