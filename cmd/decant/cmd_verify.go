package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/wrenlet/decant/internal/domain/interfaces"
)

func runVerify(ctx context.Context, args []string) {
	fs := flag.NewFlagSet("verify", flag.ExitOnError)
	var (
		platform   = fs.String("platform", "", "Target platform (e.g., linux-x86_64)")
		recipesDir = fs.String("recipes-dir", "recipes", "Path to recipes directory")
		cacheDir   = fs.String("cache-dir", filepath.Join(".decant", "cache"), "Directory for verified archives")
		verbose    = fs.Bool("verbose", false, "Enable debug output")
	)

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: decant verify <package> [version] [options]

Digest-check the cached archive for a package against the recipe's pinned
digest. The artifact itself is never fetched; only version resolution may
touch the network when no version is given.

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
		logger:     &interfaces.StderrLogger{Verbose: *verbose},
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	report, err := orch.VerifyPackage(ctx, packageName, version, *platform)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	switch {
	case !report.Cached:
		fmt.Printf("%s %s: not cached (%s)\n", report.Package, report.Version, report.Path)
		os.Exit(1)
	case report.Expected == "":
		fmt.Printf("%s %s: cached, no pinned digest to verify against\n", report.Package, report.Version)
	case report.Verified:
		fmt.Printf("%s %s: OK (%s)\n", report.Package, report.Version, report.Actual)
	default:
		fmt.Printf("%s %s: MISMATCH\n  expected %s\n  actual   %s\n",
			report.Package, report.Version, report.Expected, report.Actual)
		os.Exit(1)
	}
}
