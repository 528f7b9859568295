// Package main provides the decant CLI for fetching, verifying and
// extracting prebuilt binary archives.
package main

import (
	"context"
	"fmt"
	"os"
	"runtime"

	"github.com/wrenlet/decant/internal/domain-adapters/gateways"
	orchestrators "github.com/wrenlet/decant/internal/domain-orchestrators"
	"github.com/wrenlet/decant/internal/domain/interfaces"
	"github.com/wrenlet/decant/internal/external-adapters/yaml"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	ctx := context.Background()
	command := os.Args[1]

	// Dispatch to subcommand
	switch command {
	case "install":
		runInstall(ctx, os.Args[2:])
	case "fetch":
		runFetch(ctx, os.Args[2:])
	case "verify":
		runVerify(ctx, os.Args[2:])
	case "latest":
		runLatest(ctx, os.Args[2:])
	case "list":
		runList(ctx, os.Args[2:])
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`decant - verified prebuilt binary fetcher

Usage:
  decant <command> [options]

Commands:
  install  Fetch, verify and extract a package archive
  fetch    Fetch and verify a package archive into the cache
  verify   Digest-check the cached archive for a package
  latest   Resolve and print the latest upstream version
  list     List available package recipes

Use "decant <command> --help" for more information about a command.`)
}

func detectPlatform() string {
	os := runtime.GOOS
	arch := runtime.GOARCH

	// Map Go's GOARCH to common platform names
	archMap := map[string]string{
		"amd64": "x86_64",
		"arm64": "arm64",
		"386":   "i386",
	}

	mappedArch := archMap[arch]
	if mappedArch == "" {
		mappedArch = arch
	}

	return fmt.Sprintf("%s-%s", os, mappedArch)
}

// pipelineOptions collects the flags shared by install, fetch and verify
type pipelineOptions struct {
	recipesDir string
	cacheDir   string
	workDir    string
	proxy      string
	progress   bool
	logger     interfaces.Logger
}

func buildOrchestrator(opts pipelineOptions) (*orchestrators.InstallOrchestrator, error) {
	fetcher, err := gateways.NewArtifactFetcher(gateways.FetcherOptions{
		ProxyURL:     opts.proxy,
		ShowProgress: opts.progress,
		Logger:       opts.logger,
	})
	if err != nil {
		return nil, err
	}

	return orchestrators.NewInstallOrchestrator(
		yaml.NewRecipeRepository(opts.recipesDir, opts.logger),
		gateways.NewVersionFetcher(),
		gateways.NewURLResolver(),
		fetcher,
		gateways.NewExtractor(opts.logger),
		gateways.NewSignatureVerifier(),
		gateways.NewDigestVerifier(),
		orchestrators.InstallOrchestratorConfig{
			CacheDir: opts.cacheDir,
			WorkDir:  opts.workDir,
			Logger:   opts.logger,
		},
	), nil
}
