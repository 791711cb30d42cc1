// Package testutil provides factories for test data.
package testutil

import (
	"encoding/json"
	"fmt"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"

	"github.com/cocinadelpatito/v1/internal/domain/recipe"
	"github.com/cocinadelpatito/v1/internal/domain/user"
)

// DefaultPassword is the plaintext password behind every factory user.
const DefaultPassword = "test-password-123"

// NewUser creates a valid user entity with fake data.
func NewUser() *user.User {
	entity, err := user.NewUser(
		gofakeit.Email(),
		gofakeit.Name(),
		DefaultPassword,
	)
	if err != nil {
		panic(fmt.Sprintf("testutil: failed to build user: %v", err))
	}
	return entity
}

// NewRecipe creates a valid private recipe owned by ownerID.
func NewRecipe(ownerID uuid.UUID) *recipe.SavedRecipe {
	entity, err := recipe.NewSavedRecipe(
		ownerID,
		gofakeit.Dinner(),
		RecipeContent(30, 450, "Easy", "Dinner", []string{"comfort food"}),
		gofakeit.URL(),
	)
	if err != nil {
		panic(fmt.Sprintf("testutil: failed to build recipe: %v", err))
	}
	return entity
}

// RecipeContent builds a content payload carrying catalog hints.
func RecipeContent(cookTime, calories int, difficulty, category string, tags []string) json.RawMessage {
	payload := map[string]interface{}{
		"cookTime":   cookTime,
		"calories":   calories,
		"difficulty": difficulty,
		"category":   category,
		"tags":       tags,
		"steps":      []string{gofakeit.Sentence(8), gofakeit.Sentence(8)},
	}
	data, err := json.Marshal(payload)
	if err != nil {
		panic(fmt.Sprintf("testutil: failed to marshal content: %v", err))
	}
	return data
}
