package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/wrenlet/decant/internal/domain/interfaces"
)

func runFetch(ctx context.Context, args []string) {
	fs := flag.NewFlagSet("fetch", flag.ExitOnError)
	var (
		platform   = fs.String("platform", "", "Target platform (e.g., linux-x86_64)")
		recipesDir = fs.String("recipes-dir", "recipes", "Path to recipes directory")
		cacheDir   = fs.String("cache-dir", filepath.Join(".decant", "cache"), "Directory for verified archives")
		proxy      = fs.String("proxy", os.Getenv("HTTPS_PROXY"), "HTTP(S) forward proxy endpoint")
		noProgress = fs.Bool("no-progress", false, "Disable the download progress bar")
		verbose    = fs.Bool("verbose", false, "Enable debug output")
	)

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: decant fetch <package> [version] [options]

Fetch a package archive, verify it against the recipe's pinned digest and
leave it in the cache without extracting. Re-running with a verified cached
copy performs no network access.

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

	packageName := fs.Arg(0)
	version := ""
	if fs.NArg() >= 2 {
		version = fs.Arg(1)
	}
	if *platform == "" {
		*platform = detectPlatform()
	}

	orch, err := buildOrchestrator(pipelineOptions{
		recipesDir: *recipesDir,
		cacheDir:   *cacheDir,
		proxy:      *proxy,
		progress:   !*noProgress,
		logger:     &interfaces.StderrLogger{Verbose: *verbose},
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	result, err := orch.FetchPackage(ctx, packageName, version, *platform)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if !result.Verified {
		fmt.Printf("%s: no pinned digest, nothing fetched\n", packageName)
		return
	}

	fmt.Printf("Cached %s %s at %s\n", result.Artifact.Name, result.Artifact.Version, result.Artifact.Path)
}
