package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/wrenlet/decant/internal/domain/interfaces"
)

func runInstall(ctx context.Context, args []string) {
	fs := flag.NewFlagSet("install", flag.ExitOnError)
	var (
		platform   = fs.String("platform", "", "Target platform (e.g., linux-x86_64)")
		recipesDir = fs.String("recipes-dir", "recipes", "Path to recipes directory")
		cacheDir   = fs.String("cache-dir", filepath.Join(".decant", "cache"), "Directory for verified archives")
		workDir    = fs.String("work-dir", ".", "Directory to extract into")
		proxy      = fs.String("proxy", os.Getenv("HTTPS_PROXY"), "HTTP(S) forward proxy endpoint")
		noProgress = fs.Bool("no-progress", false, "Disable the download progress bar")
		verbose    = fs.Bool("verbose", false, "Enable debug output")
	)

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: decant install <package> [version] [options]

Fetch a package archive, verify it against the recipe's pinned digest,
cache it and extract it into the working directory.

Examples:
  decant install helm                       # Latest version, auto-detect platform
  decant install helm 3.13.0                # Specific version
  decant install helm 3.13.0 --platform linux-x86_64

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
		workDir:    *workDir,
		proxy:      *proxy,
		progress:   !*noProgress,
		logger:     &interfaces.StderrLogger{Verbose: *verbose},
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	result, err := orch.InstallPackage(ctx, packageName, version, *platform)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if !result.Verified {
		// Recipe pins no digest for this platform: trusted local build
		fmt.Printf("%s: no pinned digest, local build trusted\n", packageName)
		return
	}

	fmt.Printf("Installed %s %s (%s)\n", result.Artifact.Name, result.Artifact.Version, *platform)
	fmt.Printf("  archive:   %s\n", result.Artifact.Path)
	fmt.Printf("  extracted: %s\n", result.ExtractedTo)
	fmt.Printf("  fetch %.1fs, extract %.1fs\n",
		result.FetchDuration.Seconds(), result.ExtractDuration.Seconds())
}
