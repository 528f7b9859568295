package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"sort"

	"github.com/wrenlet/decant/internal/domain/entities"
	"github.com/wrenlet/decant/internal/domain/interfaces"
	"github.com/wrenlet/decant/internal/external-adapters/yaml"
)

func runList(ctx context.Context, args []string) {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	var (
		recipesDir = fs.String("recipes-dir", "recipes", "Path to recipes directory")
		platform   = fs.String("platform", "", "Only list recipes supporting this platform")
	)

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: decant list [options]

List available package recipes.

Options:
`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing flags: %v\n", err)
		os.Exit(1)
	}

	repo := yaml.NewRecipeRepository(*recipesDir, &interfaces.StderrLogger{})

	var recipes []*entities.Recipe
	var err error
	if *platform != "" {
		recipes, err = repo.GetRecipesByPlatform(ctx, *platform)
	} else {
		recipes, err = repo.ListRecipes(ctx)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	sort.Slice(recipes, func(i, j int) bool { return recipes[i].Name < recipes[j].Name })

	for _, recipe := range recipes {
		if recipe.Description != "" {
			fmt.Printf("%-20s %s\n", recipe.Name, recipe.Description)
		} else {
			fmt.Println(recipe.Name)
		}
	}
}
