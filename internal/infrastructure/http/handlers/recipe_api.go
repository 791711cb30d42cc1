package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cocinadelpatito/v1/internal/domain/catalog"
	"github.com/cocinadelpatito/v1/internal/infrastructure/http/middleware"
	"github.com/cocinadelpatito/v1/internal/ports/inbound"
	"github.com/cocinadelpatito/v1/pkg/errors"
)

// RecipeHandler serves the saved recipe endpoints.
type RecipeHandler struct {
	recipes         inbound.RecipeService
	maxContentBytes int64
	logger          *zap.Logger
}

// NewRecipeHandler creates a new recipe handler
func NewRecipeHandler(recipes inbound.RecipeService, maxContentBytes int64, logger *zap.Logger) *RecipeHandler {
	return &RecipeHandler{
		recipes:         recipes,
		maxContentBytes: maxContentBytes,
		logger:          logger.Named("recipe-handler"),
	}
}

type createRecipeRequest struct {
	Title    string          `json:"title" validate:"required"`
	Content  json.RawMessage `json:"content"`
	ImageURL string          `json:"imageUrl"`
	IsPublic *bool           `json:"isPublic"`
}

type updateRecipeRequest struct {
	Title    *string `json:"title"`
	ImageURL *string `json:"imageUrl"`
	IsPublic *bool   `json:"isPublic"`
}

// Create handles POST /api/v1/recipes
func (h *RecipeHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createRecipeRequest
	if err := decodeJSON(w, r, h.maxContentBytes, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, r, h.logger, errors.NewValidationError(err.Error()))
		return
	}

	dto, err := h.recipes.CreateRecipe(r.Context(), inbound.CreateRecipeCommand{
		OwnerID:  middleware.UserIDFromContext(r.Context()),
		Title:    req.Title,
		Content:  req.Content,
		ImageURL: req.ImageURL,
		IsPublic: req.IsPublic,
	})
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, dto)
}

// List handles GET /api/v1/recipes, the owner's full listing.
func (h *RecipeHandler) List(w http.ResponseWriter, r *http.Request) {
	dtos, err := h.recipes.ListRecipes(r.Context(), middleware.UserIDFromContext(r.Context()))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, dtos)
}

// ListPublic handles GET /api/v1/recipes/public
func (h *RecipeHandler) ListPublic(w http.ResponseWriter, r *http.Request) {
	dtos, err := h.recipes.ListPublicRecipes(r.Context(), inbound.PublicListParams{
		Limit:  queryInt(r, "limit"),
		Offset: queryInt(r, "offset"),
	})
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, dtos)
}

// ListRecent handles GET /api/v1/recipes/recent
func (h *RecipeHandler) ListRecent(w http.ResponseWriter, r *http.Request) {
	dtos, err := h.recipes.ListRecentRecipes(r.Context(), queryInt(r, "limit"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, dtos)
}

// Discover handles GET /api/v1/recipes/discover, the filter and search
// surface over public recipe summaries.
func (h *RecipeHandler) Discover(w http.ResponseWriter, r *http.Request) {
	summaries, err := h.recipes.Discover(r.Context(), inbound.DiscoverQuery{
		Filter: catalog.FilterOption(r.URL.Query().Get("filter")),
		Query:  r.URL.Query().Get("q"),
		Limit:  queryInt(r, "limit"),
	})
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, summaries)
}

// Get handles GET /api/v1/recipes/{id}. Runs behind optional
// authentication so owners can view their private recipes.
func (h *RecipeHandler) Get(w http.ResponseWriter, r *http.Request) {
	recipeID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, h.logger, errors.NewBadRequestError("Invalid recipe id"))
		return
	}

	dto, err := h.recipes.GetPublicRecipe(r.Context(), recipeID, middleware.UserIDFromContext(r.Context()))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, dto)
}

// Update handles PATCH /api/v1/recipes/{id}
func (h *RecipeHandler) Update(w http.ResponseWriter, r *http.Request) {
	recipeID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, h.logger, errors.NewBadRequestError("Invalid recipe id"))
		return
	}

	var req updateRecipeRequest
	if err := decodeJSON(w, r, h.maxContentBytes, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	dto, err := h.recipes.UpdateRecipe(r.Context(), inbound.UpdateRecipeCommand{
		RecipeID: recipeID,
		UserID:   middleware.UserIDFromContext(r.Context()),
		Title:    req.Title,
		ImageURL: req.ImageURL,
		IsPublic: req.IsPublic,
	})
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, dto)
}

// Delete handles DELETE /api/v1/recipes/{id}. Always 204 for the owner,
// whether or not the recipe existed.
func (h *RecipeHandler) Delete(w http.ResponseWriter, r *http.Request) {
	recipeID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, h.logger, errors.NewBadRequestError("Invalid recipe id"))
		return
	}

	if err := h.recipes.DeleteRecipe(r.Context(), recipeID, middleware.UserIDFromContext(r.Context())); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func queryInt(r *http.Request, key string) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return 0
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	return n
}
