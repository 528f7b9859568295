package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/wrenlet/decant/internal/domain-adapters/gateways"
	"github.com/wrenlet/decant/internal/domain/interfaces"
	"github.com/wrenlet/decant/internal/external-adapters/yaml"
)

func runLatest(ctx context.Context, args []string) {
	fs := flag.NewFlagSet("latest", flag.ExitOnError)
	recipesDir := fs.String("recipes-dir", "recipes", "Path to recipes directory")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: decant latest <package> [options]

Resolve and print the latest upstream version for a package recipe.

Options:
`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing flags: %v\n", err)
		os.Exit(1)
	}

	if fs.NArg() < 1 {
		fmt.Fprintf(os.Stderr, "Error: package name is required\n\n")
		fs.Usage()
		os.Exit(1)
	}

	repo := yaml.NewRecipeRepository(*recipesDir, &interfaces.StderrLogger{})
	recipe, err := repo.GetRecipe(ctx, fs.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	version, err := gateways.NewVersionFetcher().FetchLatestVersion(recipe)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Println(version)
}
