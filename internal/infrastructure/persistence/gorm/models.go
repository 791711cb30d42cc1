// Package gorm contains the GORM persistence adapters. Database models
// live here, separate from domain entities; mapping between the two is
// explicit.
package gorm

import (
	"encoding/json"
	"time"

	"github.com/cocinadelpatito/v1/internal/domain/recipe"
	"github.com/cocinadelpatito/v1/internal/domain/user"
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// UserModel is the database row for an account.
type UserModel struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	Email        string    `gorm:"uniqueIndex;not null"`
	Name         string    `gorm:"not null"`
	PasswordHash string    `gorm:"not null"`
	ImageURL     string
	Bio          string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// TableName returns the table name
func (UserModel) TableName() string {
	return "user"
}

// SavedRecipeModel is the database row for a saved recipe. Content is
// stored as jsonb and never interpreted by the persistence layer.
type SavedRecipeModel struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey"`
	UserID    uuid.UUID      `gorm:"type:uuid;not null;index"`
	Title     string         `gorm:"not null"`
	Content   datatypes.JSON `gorm:"type:jsonb"`
	ImageURL  string
	IsPublic  bool      `gorm:"not null;default:false;index"`
	CreatedAt time.Time `gorm:"index:idx_saved_recipe_created,sort:desc"`
	UpdatedAt time.Time

	Author *UserModel `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name
func (SavedRecipeModel) TableName() string {
	return "saved_recipe"
}

func userToModel(entity *user.User) *UserModel {
	return &UserModel{
		ID:           entity.ID(),
		Email:        entity.Email(),
		Name:         entity.Name(),
		PasswordHash: entity.PasswordHash(),
		ImageURL:     entity.ImageURL(),
		Bio:          entity.Bio(),
		CreatedAt:    entity.CreatedAt(),
		UpdatedAt:    entity.UpdatedAt(),
	}
}

func userToEntity(model *UserModel) *user.User {
	return user.Reconstruct(
		model.ID,
		model.Email,
		model.Name,
		model.PasswordHash,
		model.ImageURL,
		model.Bio,
		model.CreatedAt,
		model.UpdatedAt,
	)
}

func recipeToModel(entity *recipe.SavedRecipe) *SavedRecipeModel {
	return &SavedRecipeModel{
		ID:        entity.ID(),
		UserID:    entity.OwnerID(),
		Title:     entity.Title(),
		Content:   datatypes.JSON(entity.Content()),
		ImageURL:  entity.ImageURL(),
		IsPublic:  entity.IsPublic(),
		CreatedAt: entity.CreatedAt(),
		UpdatedAt: entity.UpdatedAt(),
	}
}

func recipeToEntity(model *SavedRecipeModel) *recipe.SavedRecipe {
	return recipe.Reconstruct(
		model.ID,
		model.UserID,
		model.Title,
		json.RawMessage(model.Content),
		model.ImageURL,
		model.IsPublic,
		model.CreatedAt,
		model.UpdatedAt,
	)
}
