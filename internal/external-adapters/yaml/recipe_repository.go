package yaml

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/wrenlet/decant/internal/domain/entities"
	"github.com/wrenlet/decant/internal/domain/interfaces"
)

// RecipeRepository implements repositories.RecipeRepository using YAML files,
// one recipe per <name>.yml in a flat directory
type RecipeRepository struct {
	recipesDir string
	parser     *RecipeParser
	logger     interfaces.Logger
}

// NewRecipeRepository creates a new YAML-based recipe repository
func NewRecipeRepository(recipesDir string, logger interfaces.Logger) *RecipeRepository {
	if logger == nil {
		logger = &interfaces.NoOpLogger{}
	}
	return &RecipeRepository{
		recipesDir: recipesDir,
		parser:     NewRecipeParser(),
		logger:     logger,
	}
}

// GetRecipe retrieves a package recipe by name
func (r *RecipeRepository) GetRecipe(_ context.Context, name string) (*entities.Recipe, error) {
	filePath := filepath.Join(r.recipesDir, name+".yml")

	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		return nil, fmt.Errorf("recipe not found: %s", name)
	}

	return r.parser.ParseFile(filePath)
}

// ListRecipes returns all available package recipes
func (r *RecipeRepository) ListRecipes(_ context.Context) ([]*entities.Recipe, error) {
	entries, err := os.ReadDir(r.recipesDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read recipes directory: %w", err)
	}

	recipes := make([]*entities.Recipe, 0)
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".yml") {
			continue
		}

		recipe, err := r.parser.ParseFile(filepath.Join(r.recipesDir, entry.Name()))
		if err != nil {
			// A broken recipe should not hide the rest
			r.logger.Warn("failed to parse recipe",
				interfaces.F("file", entry.Name()),
				interfaces.F("error", err))
			continue
		}

		recipes = append(recipes, recipe)
	}

	return recipes, nil
}

// GetRecipesByPlatform returns recipes that support a specific platform
func (r *RecipeRepository) GetRecipesByPlatform(ctx context.Context, platform string) ([]*entities.Recipe, error) {
	all, err := r.ListRecipes(ctx)
	if err != nil {
		return nil, err
	}

	filtered := make([]*entities.Recipe, 0)
	for _, recipe := range all {
		if _, ok := recipe.Download.Platforms[platform]; ok {
			filtered = append(filtered, recipe)
		}
	}

	return filtered, nil
}
