// Package repositories defines interfaces for data access layers.
package repositories

import (
	"context"

	"github.com/wrenlet/decant/internal/domain/entities"
)

// RecipeRepository defines the interface for loading package recipes
type RecipeRepository interface {
	// GetRecipe loads a single recipe by package name
	GetRecipe(ctx context.Context, name string) (*entities.Recipe, error)

	// ListRecipes returns every available recipe
	ListRecipes(ctx context.Context) ([]*entities.Recipe, error)

	// GetRecipesByPlatform returns the recipes that support a platform
	GetRecipesByPlatform(ctx context.Context, platform string) ([]*entities.Recipe, error)
}
